package qr

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    Level
		wantErr bool
	}{
		"empty defaults to medium": {in: "", want: LevelMedium},
		"low":                      {in: "low", want: LevelLow},
		"medium upper":             {in: "MEDIUM", want: LevelMedium},
		"high":                     {in: "high", want: LevelHigh},
		"highest letter":           {in: "h", want: LevelHighest},
		"unknown":                  {in: "ultra", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_ModuleGeometry(t *testing.T) {
	img, err := NewEncoder(LevelMedium, 10, true).Encode(DefaultPayload)
	require.NoError(t, err)

	b := img.Bounds()
	require.Equal(t, b.Dx(), b.Dy())
	require.Zero(t, b.Dx()%10)

	// Symbols are 21+4(v-1) modules wide, plus a 4-module quiet zone per side.
	modules := b.Dx()/10 - 8
	assert.GreaterOrEqual(t, modules, 21)
	assert.Zero(t, (modules-21)%4)
}

func TestEncode_Deterministic(t *testing.T) {
	enc := NewEncoder(LevelMedium, DefaultModuleSize, true)
	a, err := enc.PNG(DefaultPayload)
	require.NoError(t, err)
	b, err := enc.PNG(DefaultPayload)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_CapacityBoundary(t *testing.T) {
	enc := NewEncoder(LevelMedium, 1, false)

	_, err := enc.Encode(strings.Repeat("a", 2331))
	require.NoError(t, err)

	_, err = enc.Encode(strings.Repeat("a", 2332))
	require.Error(t, err)
	var encErr *EncodingError
	assert.True(t, errors.As(err, &encErr))
}

func TestEncode_RoundTrip(t *testing.T) {
	payloads := map[string]string{
		"default url": DefaultPayload,
		"numeric":     "0123456789",
		"long url":    "https://leg-work.vercel.app/dashboard?bill=HB-1234&section=4.2&view=diff",
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			data, err := NewEncoder(LevelMedium, DefaultModuleSize, true).PNG(payload)
			require.NoError(t, err)

			text, err := Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, payload, text)
		})
	}
}

func TestEncode_PNGHeader(t *testing.T) {
	data, err := NewEncoder(LevelHigh, 4, true).PNG(DefaultPayload)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, cfg.Width, cfg.Height)
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(LevelMedium, 0, true).Preview(&buf, DefaultPayload))
	assert.NotEmpty(t, buf.String())

	err := NewEncoder(LevelMedium, 0, true).Preview(&buf, "")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}
