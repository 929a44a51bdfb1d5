package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
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

// Stable AppError codes.
const (
	CodeUnsupportedMediaType  = "UNSUPPORTED_MEDIA_TYPE"
	CodeDocumentTooLarge      = "DOCUMENT_TOO_LARGE"
	CodeExtractionUnavailable = "EXTRACTION_UNAVAILABLE"
	CodeInvalidConfiguration  = "CONFIG_ERROR"
	CodeInvalidInput          = "INVALID_INPUT"
)

// Claim analysis error taxonomy. Match with errors.Is.
var (
	ErrUnsupportedMediaType  = errors.New("unsupported media type")
	ErrDocumentTooLarge      = errors.New("document too large")
	ErrExtractionUnavailable = errors.New("extraction unavailable")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func UnsupportedMediaTypef(format string, args ...interface{}) error {
	return NewAppError(CodeUnsupportedMediaType, fmt.Sprintf(format, args...), ErrUnsupportedMediaType)
}

func DocumentTooLargef(format string, args ...interface{}) error {
	return NewAppError(CodeDocumentTooLarge, fmt.Sprintf(format, args...), ErrDocumentTooLarge)
}

// ExtractionUnavailable wraps the underlying OCR failure, if any.
func ExtractionUnavailable(message string, cause error) error {
	if cause == nil {
		return NewAppError(CodeExtractionUnavailable, message, ErrExtractionUnavailable)
	}
	return NewAppError(CodeExtractionUnavailable, message, fmt.Errorf("%w: %v", ErrExtractionUnavailable, cause))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// GRPCStatus maps an error from the analysis boundary to a gRPC status error.
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrUnsupportedMediaType),
		errors.Is(err, ErrDocumentTooLarge),
		errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(err.Error())
	case errors.Is(err, ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, ErrExtractionUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	}
	return InternalError(err.Error())
}
