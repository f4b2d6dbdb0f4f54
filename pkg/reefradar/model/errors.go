package model

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes surfaced to callers. Codes are part of
// the API contract and must not change between releases.
const (
	CodeInvalidFormat     = "INVALID_AUDIO_FORMAT"
	CodeAudioTooShort     = "AUDIO_TOO_SHORT"
	CodeAudioTooLong      = "AUDIO_TOO_LONG"
	CodeEmptyBatch        = "EMPTY_BATCH"
	CodeDimensionMismatch = "EMBEDDING_DIM_MISMATCH"
	CodeAnalysisNotFound  = "ANALYSIS_NOT_FOUND"
	CodeProcessingFailed  = "PROCESSING_FAILED"
	CodeSourceUnavailable = "EMBEDDING_SOURCE_UNAVAILABLE"
)

// Error is a user-facing failure with a stable code and a human-readable
// message. Recoverable internal conditions (an unreachable embedding source)
// are absorbed by the pipeline and never reach callers as an Error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an Error with a formatted message.
func NewError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the stable code from err, unwrapping as needed. Returns
// CodeProcessingFailed for errors without a code.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeProcessingFailed
}

// IsCode reports whether err carries the given stable code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
