package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Level is the error-correction level of the symbol.
type Level = qrcode.RecoveryLevel

const (
	LevelLow     Level = qrcode.Low
	LevelMedium  Level = qrcode.Medium
	LevelHigh    Level = qrcode.High
	LevelHighest Level = qrcode.Highest
)

// ParseLevel maps a config string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return LevelLow, nil
	case "", "medium", "m":
		return LevelMedium, nil
	case "high", "q":
		return LevelHigh, nil
	case "highest", "h":
		return LevelHighest, nil
	}
	return LevelMedium, fmt.Errorf("unknown error-correction level %q", s)
}

// Encoder turns a payload into a raster QR image.
type Encoder interface {
	Encode(payload string) (image.Image, error)
}

// SymbolEncoder is the go-qrcode backed Encoder. The symbol version is
// picked automatically from the payload length.
type SymbolEncoder struct {
	level      Level
	moduleSize int
	border     bool
}

// NewEncoder returns an Encoder drawing moduleSize pixels per module.
// A non-positive moduleSize falls back to DefaultModuleSize.
func NewEncoder(level Level, moduleSize int, border bool) *SymbolEncoder {
	if moduleSize <= 0 {
		moduleSize = DefaultModuleSize
	}
	return &SymbolEncoder{level: level, moduleSize: moduleSize, border: border}
}

func (e *SymbolEncoder) symbol(payload string) (*qrcode.QRCode, error) {
	if payload == "" {
		return nil, &EncodingError{Payload: payload, Err: ErrEmptyPayload}
	}
	q, err := qrcode.New(payload, e.level)
	if err != nil {
		return nil, &EncodingError{Payload: payload, Err: err}
	}
	q.DisableBorder = !e.border
	return q, nil
}

// Encode implements Encoder.
func (e *SymbolEncoder) Encode(payload string) (image.Image, error) {
	q, err := e.symbol(payload)
	if err != nil {
		return nil, err
	}
	// Negative size means pixels per module in go-qrcode.
	return q.Image(-e.moduleSize), nil
}

// Preview writes a compact text rendering of the payload's symbol to w,
// suitable for a terminal.
func (e *SymbolEncoder) Preview(w io.Writer, payload string) error {
	q, err := e.symbol(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, q.ToSmallString(false))
	return err
}

// PNG encodes payload and returns the PNG bytes.
func (e *SymbolEncoder) PNG(payload string) ([]byte, error) {
	img, err := e.Encode(payload)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return buf.Bytes(), nil
}
