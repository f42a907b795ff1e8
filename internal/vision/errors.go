package vision

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Every failure is request-scoped.
type Kind string

const (
	KindMalformedPayload Kind = "malformed_payload"
	KindDecodeFailure    Kind = "decode_failure"
	KindInferenceFailure Kind = "inference_failure"
)

// Error is the only error type the pipeline returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// MalformedPayload reports input whose shape is wrong before any image
// decoding happens.
func MalformedPayload(message string, err error) *Error {
	return newError(KindMalformedPayload, message, err)
}

// DecodeFailure reports bytes that are not a usable image.
func DecodeFailure(message string, err error) *Error {
	return newError(KindDecodeFailure, message, err)
}

// InferenceFailure reports a model runtime fault or an invalid model output.
func InferenceFailure(message string, err error) *Error {
	return newError(KindInferenceFailure, message, err)
}

// KindOf returns the kind carried by err, or "" when err is not a pipeline
// error.
func KindOf(err error) Kind {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return ""
}
