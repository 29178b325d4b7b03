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

// Error kinds stored on analysis results. Stable strings, persisted in DB.
const (
	CodeUnsupportedFormat     = "UNSUPPORTED_FORMAT"
	CodeFileTooLarge          = "FILE_TOO_LARGE"
	CodeExtractionFailed      = "EXTRACTION_FAILED"
	CodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
	CodeAPIUnavailable        = "API_UNAVAILABLE"
	CodeInternal              = "INTERNAL"
)

// Pipeline error taxonomy. The first three abort an analysis; the dependency
// and API kinds degrade the pipeline and surface as warnings only.
var (
	ErrUnsupportedFormat     = errors.New("unsupported file format")
	ErrFileTooLarge          = errors.New("file exceeds size limit")
	ErrExtractionFailed      = errors.New("text extraction failed")
	ErrDependencyUnavailable = errors.New("external dependency unavailable")
	ErrAPIUnavailable        = errors.New("language model API unavailable")
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// IsFatal reports whether an extraction error must abort the pipeline.
// DependencyUnavailable and APIUnavailable degrade instead.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrDependencyUnavailable) && !errors.Is(err, ErrAPIUnavailable)
}

// ErrorCode maps a pipeline error onto its stable code string.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, ErrFileTooLarge):
		return CodeFileTooLarge
	case errors.Is(err, ErrExtractionFailed):
		return CodeExtractionFailed
	case errors.Is(err, ErrDependencyUnavailable):
		return CodeDependencyUnavailable
	case errors.Is(err, ErrAPIUnavailable):
		return CodeAPIUnavailable
	default:
		return CodeInternal
	}
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
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

// ToGRPCStatus converts application errors to the gRPC status the API edge
// should return.
func ToGRPCStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrFileTooLarge):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, ErrUnsupportedFormat):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrDependencyUnavailable), errors.Is(err, ErrAPIUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
