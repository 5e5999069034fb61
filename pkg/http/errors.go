package http

import (
	"fmt"
	"net/http"
)

// AppError is a client-facing error. Code is a stable machine-readable value
// such as ERR_UNKNOWN_SYMBOL; Field names the offending request field.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func NewAppError(status int, code, field, message string) *AppError {
	return &AppError{Status: status, Code: code, Field: field, Message: message}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithParam attaches a detail the client can act on, e.g. the supported values.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = map[string]interface{}{}
	}
	e.Params[key] = value
	return e
}

// BadRequestCodeError is a 400 with an explicit code.
func BadRequestCodeError(code, field, message string) *AppError {
	return NewAppError(http.StatusBadRequest, code, field, message)
}

func NotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, "ERR_NOT_FOUND", "", message)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, "ERR_RATE_LIMITED", "", message)
}
