package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/legwork/qrcodes/qr"
)

const maxModuleSize = 64

type qrDataResponse struct {
	Payload string `json:"payload"`
	QRPNG   string `json:"qr_png"`
}

// render encodes the text query parameter, or the configured payload when
// absent, honouring an optional size (pixels per module).
func (s *Server) render(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	q := r.URL.Query()

	payload := s.Options.Payload
	if q.Has("text") {
		payload = q.Get("text")
	}

	size := s.Options.ModuleSize
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxModuleSize {
			writeError(w, http.StatusBadRequest, "size must be between 1 and 64")
			return "", nil, false
		}
		size = n
	}

	png, err := qr.NewEncoder(s.Options.Level, size, s.Options.Border).PNG(payload)
	if err != nil {
		var encErr *qr.EncodingError
		if errors.As(err, &encErr) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return "", nil, false
	}
	return payload, png, true
}

func (s *Server) handleQRImage(w http.ResponseWriter, r *http.Request) {
	_, png, ok := s.render(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleQRData(w http.ResponseWriter, r *http.Request) {
	payload, png, ok := s.render(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, qrDataResponse{
		Payload: payload,
		QRPNG:   base64.StdEncoding.EncodeToString(png),
	})
}
