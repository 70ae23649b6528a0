package docpipe

import (
	"fmt"
	"strings"
)

// ErrorKind classifies an extraction failure so transports can map it to a
// status without string matching.
type ErrorKind int

const (
	// KindUnsupportedFormat: the filename extension is not in the registry.
	// Raised before any temporary resource is touched.
	KindUnsupportedFormat ErrorKind = iota
	// KindMalformedInput: the bytes do not conform to the format implied by
	// the extension, or an underlying parser rejected them.
	KindMalformedInput
	// KindResource: temporary-resource creation or write failed.
	KindResource
	// KindTooLarge: the upload exceeds the configured size limit. A client
	// problem, distinct from a parse failure.
	KindTooLarge
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindMalformedInput:
		return "malformed_input"
	case KindResource:
		return "resource"
	case KindTooLarge:
		return "too_large"
	}
	return "unknown"
}

// Error is an extraction failure tagged with its kind. The wrapped error, when
// present, preserves the underlying parser message for diagnostics.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func errUnsupported(ext string) *Error {
	return &Error{
		Kind: KindUnsupportedFormat,
		Message: fmt.Sprintf("Unsupported format: %s. Supported: %s",
			ext, strings.Join(SupportedExtensions(), ", ")),
	}
}

func errMalformed(format Format, err error) *Error {
	return &Error{
		Kind:    KindMalformedInput,
		Message: fmt.Sprintf("parse %s", format),
		Err:     err,
	}
}

func errResource(err error) *Error {
	return &Error{Kind: KindResource, Message: "spool upload", Err: err}
}

func errTooLarge(size, max int64) *Error {
	return &Error{
		Kind:    KindTooLarge,
		Message: fmt.Sprintf("file too large: %d bytes (max %d)", size, max),
	}
}
