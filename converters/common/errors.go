package common

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by codecs and the pipeline.
var (
	ErrInputMissing     = errors.New("input missing")
	ErrMalformedInput   = errors.New("malformed input")
	ErrUnsupportedShape = errors.New("unsupported shape")
	ErrEmptyInput       = errors.New("empty input")
	ErrEncoding         = errors.New("encoding failed")
)

// Error describes a conversion failure of a given kind for a format.
type Error struct {
	Kind   error  // one of the Err* kinds above
	Format string // "csv", "excel", "json", ...
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Format != "" {
		msg = e.Format + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Malformed reports bytes that do not parse as the declared format.
func Malformed(format string, err error) error {
	return &Error{Kind: ErrMalformedInput, Format: format, Err: err}
}

// Unsupported reports valid input the target cannot represent.
func Unsupported(format, msg string, args ...interface{}) error {
	return &Error{Kind: ErrUnsupportedShape, Format: format, Msg: fmt.Sprintf(msg, args...)}
}

// Empty reports zero rows where a schema must be derived from data.
func Empty(format, msg string, args ...interface{}) error {
	return &Error{Kind: ErrEmptyInput, Format: format, Msg: fmt.Sprintf(msg, args...)}
}

// Encoding reports a failure while serializing the target format.
func Encoding(format string, err error) error {
	return &Error{Kind: ErrEncoding, Format: format, Err: err}
}

// Missing reports that no input file was provided.
func Missing(msg string) error {
	return &Error{Kind: ErrInputMissing, Msg: msg}
}

// IsUserError reports whether err is caused by the uploaded input rather
// than by the service.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInputMissing) ||
		errors.Is(err, ErrUnsupportedShape) ||
		errors.Is(err, ErrEmptyInput)
}
