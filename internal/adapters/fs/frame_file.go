package fs

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/art2ascii/artview/internal/ports"
)

// Read failure codes reported in logs and status.
const (
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeReadError        = "READ_ERROR"
)

// ReadError describes a frame-data file that could not be read.
type ReadError struct {
	Code string
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s (%s): %v", e.Path, e.Code, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ErrorCode implements ports.CodedError.
func (e *ReadError) ErrorCode() string {
	return e.Code
}

// FrameFile reads the frame-data file written by the converter.
type FrameFile struct {
	path string
}

// NewFrameFile creates a FrameFile for the given path.
func NewFrameFile(path string) *FrameFile {
	return &FrameFile{path: path}
}

// Path returns the file path.
func (f *FrameFile) Path() string {
	return f.path
}

// Read returns the whole file as UTF-8 text.
func (f *FrameFile) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", &ReadError{Code: errorToCode(err), Path: f.path, Err: err}
	}
	return string(data), nil
}

func errorToCode(err error) string {
	if os.IsNotExist(err) {
		return ErrCodeFileNotFound
	}
	if os.IsPermission(err) {
		return ErrCodePermissionDenied
	}
	if strings.Contains(err.Error(), "permission denied") {
		return ErrCodePermissionDenied
	}
	return ErrCodeReadError
}

var _ ports.FrameSource = (*FrameFile)(nil)
