package upload

import (
	"errors"
	"fmt"
)

// Kind classifies an ingestion failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTooLarge means the file exceeded the configured size cap.
	KindTooLarge
	// KindIO covers read, write and close failures, including aborted streams.
	KindIO
	// KindDecode means the multipart stream could not be decoded or held no file.
	KindDecode
	// KindNoTarget means no usable entry identifier was declared for the upload.
	KindNoTarget
)

func (k Kind) String() string {
	switch k {
	case KindTooLarge:
		return "upload_too_large"
	case KindIO:
		return "upload_io_failure"
	case KindDecode:
		return "upload_decode_failure"
	case KindNoTarget:
		return "upload_no_target"
	default:
		return "unknown"
	}
}

// ErrTooLarge is wrapped by every KindTooLarge error.
var ErrTooLarge = errors.New("upload exceeds maximum size")

// Error is the failure result of an ingestion call. Any partially written
// target has already been removed when an *Error is returned.
type Error struct {
	Kind    Kind
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Message
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of an ingestion error, or KindUnknown.
func KindOf(err error) Kind {
	var uerr *Error
	if errors.As(err, &uerr) {
		return uerr.Kind
	}
	return KindUnknown
}
