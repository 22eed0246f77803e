package qr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_NotPNG(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not a png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode png")
}

func TestDecodeFile_Missing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeFile_WrittenImage(t *testing.T) {
	img, err := NewEncoder(LevelLow, 8, true).Encode("https://leg-work.vercel.app/dashboard")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "code.png")
	require.NoError(t, WriteImage(img, path))

	text, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://leg-work.vercel.app/dashboard", text)
}
