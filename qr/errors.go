package qr

import (
	"errors"
	"fmt"
)

// ErrEmptyPayload is wrapped by an EncodingError when there is nothing to encode.
var ErrEmptyPayload = errors.New("payload is empty")

// DirectoryCreationError reports that the output directory could not be created.
type DirectoryCreationError struct {
	Dir string
	Err error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("create output dir %s: %v", e.Dir, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error { return e.Err }

// EncodingError reports that a payload could not be turned into a QR symbol,
// usually because it exceeds the capacity of the largest version.
type EncodingError struct {
	Payload string
	Err     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %d-byte payload: %v", len(e.Payload), e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// FileWriteError reports an I/O failure while persisting the image.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("write image %s: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }
