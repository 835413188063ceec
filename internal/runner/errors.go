package runner

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which step of a file's sequence failed.
type ErrorKind int

const (
	// KindRead means the file could not be read.
	KindRead ErrorKind = iota
	// KindWrite means the atomic replace failed; the original file is intact.
	KindWrite
	// KindCancelled means the run was cancelled before the file was scheduled.
	KindCancelled
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FileError is recorded against a single file. It never aborts the batch.
type FileError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// Error implements the error interface for FileError.
func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *FileError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a FileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FileError
	return errors.As(err, &fe) && fe.Kind == kind
}
