// Package qr encodes a payload into a QR code PNG on disk and reads it back.
package qr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	DefaultPayload    = "https://leg-work.vercel.app/"
	DefaultOutputDir  = "qrcodes"
	DefaultFilename   = "leg-work_qr.png"
	DefaultModuleSize = 10
)

// Options describes what to encode and where to put it.
type Options struct {
	Payload    string
	OutputDir  string
	Filename   string
	Level      Level
	ModuleSize int
	Border     bool
}

// DefaultOptions returns the options for the leg-work landing page code.
func DefaultOptions() Options {
	return Options{
		Payload:    DefaultPayload,
		OutputDir:  DefaultOutputDir,
		Filename:   DefaultFilename,
		Level:      LevelMedium,
		ModuleSize: DefaultModuleSize,
		Border:     true,
	}
}

// Encoder returns the encoder described by Level, ModuleSize and Border.
func (o Options) Encoder() *SymbolEncoder {
	return NewEncoder(o.Level, o.ModuleSize, o.Border)
}

// OutputPath joins OutputDir and Filename.
func (o Options) OutputPath() string {
	return filepath.Join(o.OutputDir, o.Filename)
}

// Result describes a written image.
type Result struct {
	Path   string
	Size   int64
	SHA256 string
}

// Generator runs the directory → encode → write pipeline.
type Generator struct {
	enc Encoder
	log *slog.Logger
}

// NewGenerator returns a Generator. With a nil enc each Generate call
// encodes with opts.Encoder(); a non-nil enc replaces that and the
// Level, ModuleSize and Border options go unused. A nil log discards output.
func NewGenerator(enc Encoder, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{enc: enc, log: log}
}

// Generate writes the QR image for opts.Payload to opts.OutputPath(),
// overwriting any existing file there. A directory created before a later
// step fails is left in place.
func (g *Generator) Generate(opts Options) (Result, error) {
	if err := EnsureDirectory(opts.OutputDir); err != nil {
		return Result{}, err
	}
	g.log.Debug("output directory ready", "dir", opts.OutputDir)

	enc := g.enc
	if enc == nil {
		enc = opts.Encoder()
	}
	img, err := enc.Encode(opts.Payload)
	if err != nil {
		return Result{}, err
	}
	b := img.Bounds()
	g.log.Debug("payload encoded", "bytes", len(opts.Payload), "width", b.Dx(), "height", b.Dy())

	path := opts.OutputPath()
	res, err := writeImage(img, path)
	if err != nil {
		return Result{}, err
	}
	g.log.Info("image written", "path", res.Path, "size", res.Size, "sha256", res.SHA256)
	return res, nil
}

// EnsureDirectory creates dir and any missing parents. An existing
// directory is left untouched.
func EnsureDirectory(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &DirectoryCreationError{Dir: dir, Err: err}
	}
	return nil
}

// WriteImage PNG-encodes img to path, truncating any existing file.
func WriteImage(img image.Image, path string) error {
	_, err := writeImage(img, path)
	return err
}

func writeImage(img image.Image, path string) (Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return Result{}, &FileWriteError{Path: path, Err: err}
	}

	h := sha256.New()
	cw := &countingWriter{w: io.MultiWriter(f, h)}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(cw, img); err != nil {
		f.Close()
		return Result{}, &FileWriteError{Path: path, Err: fmt.Errorf("png: %w", err)}
	}
	if err := f.Close(); err != nil {
		return Result{}, &FileWriteError{Path: path, Err: err}
	}

	return Result{Path: path, Size: cw.n, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
