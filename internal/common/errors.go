package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes used across the pipeline.
const (
	CodeAcquisition = "ACQUISITION_ERROR" // fatal, raised before the chains run
	CodeConfig      = "CONFIG_ERROR"
	CodeOutput      = "OUTPUT_ERROR"
)

// ErrInvalidInput marks errors caused by the caller's input rather than the
// environment.
var ErrInvalidInput = errors.New("invalid input")

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
