package squeeze

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/hashicorp/go-multierror"
)

// DefaultFileMode is the permission of files created by FileSink.
const DefaultFileMode fs.FileMode = 0o644

// Sink receives one complete encoded artifact per Put call.
type Sink interface {
	Put(data []byte) error
}

// FileSink writes to a path. An existing destination is removed and
// recreated; the replacement is not atomic.
type FileSink struct {
	Path string
	Mode fs.FileMode
}

// NewFileSink creates a sink for path with DefaultFileMode.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path, Mode: DefaultFileMode}
}

// Put implements Sink. The file handle is released on every path.
func (s *FileSink) Put(data []byte) (err error) {
	mode := s.Mode
	if mode == 0 {
		mode = DefaultFileMode
	}

	if rmErr := os.Remove(s.Path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w: %q: %v", ErrIO, ErrRemoveFile, s.Path, rmErr)
	}

	f, err := os.OpenFile(s.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("%w: %w: %q: %v", ErrIO, ErrCreateFile, s.Path, err)
	}

	var result *multierror.Error
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			result = multierror.Append(result, fmt.Errorf("%w: %w: %q: %v", ErrIO, ErrCloseFile, s.Path, closeErr))
		}
		err = result.ErrorOrNil()
	}()

	if _, writeErr := f.Write(data); writeErr != nil {
		result = multierror.Append(result, fmt.Errorf("%w: %w: %q: %v", ErrIO, ErrWriteFile, s.Path, writeErr))
		return nil
	}
	if syncErr := f.Sync(); syncErr != nil {
		result = multierror.Append(result, fmt.Errorf("%w: %w: %q: %v", ErrIO, ErrSyncFile, s.Path, syncErr))
	}

	return nil
}

// WriterSink writes each artifact to W.
type WriterSink struct {
	W io.Writer
}

// Put implements Sink.
func (s WriterSink) Put(data []byte) error {
	n, err := s.W.Write(data)
	if err != nil {
		return fmt.Errorf("%w: %w: %v", ErrIO, ErrWriteFile, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: %w: %v", ErrIO, ErrWriteFile, io.ErrShortWrite)
	}

	return nil
}

// BufferSink keeps the most recent artifact in memory.
type BufferSink struct {
	data []byte
}

// Put implements Sink.
func (s *BufferSink) Put(data []byte) error {
	s.data = append(s.data[:0], data...)
	return nil
}

// Bytes returns the stored artifact.
func (s *BufferSink) Bytes() []byte {
	return s.data
}

// Len returns the stored artifact size.
func (s *BufferSink) Len() int {
	return len(s.data)
}
