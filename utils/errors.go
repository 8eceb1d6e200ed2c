package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies failures surfaced to API callers.
type ErrorKind int

const (
	// KindBadRequest covers missing or unparsable query parameters.
	KindBadRequest ErrorKind = iota + 1
	// KindPredictorFailure covers errors raised by a model during inference.
	KindPredictorFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindPredictorFailure:
		return "predictor_failure"
	}
	return "unknown"
}

// RequestError is returned by handlers and rendered by the central error handler.
// Message is safe to show to callers; Err is only logged.
type RequestError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *RequestError) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// BadRequest builds a KindBadRequest error with a caller-facing message.
func BadRequest(format string, args ...any) *RequestError {
	return &RequestError{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// PredictorFailure wraps a model error. The cause is never shown to callers.
func PredictorFailure(model string, err error) *RequestError {
	return &RequestError{Kind: KindPredictorFailure, Message: model + " prediction failed", Err: err}
}

// AsRequestError unwraps err into a *RequestError when possible.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
