package qr

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
)

// DecodeImage reads the text carried by a QR symbol in img.
func DecodeImage(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("prepare bitmap: %w", err)
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("decode QR code: %w", err)
	}
	return result.GetText(), nil
}

// Decode reads a PNG from r and decodes the QR symbol in it.
func Decode(r io.Reader) (string, error) {
	img, err := png.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode png: %w", err)
	}
	return DecodeImage(img)
}

// DecodeFile opens the PNG at path and decodes the QR symbol in it.
func DecodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
