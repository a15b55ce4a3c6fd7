package errors

import "fmt"

// ErrorCode represents an msbatch error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrUnknownInstrument ErrorCode = "UNKNOWN_INSTRUMENT" // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"     // 404
	ErrImportFailed      ErrorCode = "IMPORT_FAILED"      // 422
	ErrCancelled         ErrorCode = "CANCELLED"          // 499
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// BatchError represents a structured error with code, status, and details.
type BatchError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BatchError {
	return &BatchError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownInstrument creates a 400 error for an instrument with no profile.
func NewUnknownInstrument(name string, known []string) *BatchError {
	return &BatchError{
		Code:    ErrUnknownInstrument,
		Status:  400,
		Message: fmt.Sprintf("unknown instrument %q (known: %v)", name, known),
		Details: map[string]any{"instrument": name, "known": known},
	}
}

// NewNotFound creates a 404 error for when a template cannot be found.
func NewNotFound(name string) *BatchError {
	return &BatchError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("template not found: %s", name),
		Details: map[string]any{"name": name},
	}
}

// NewFileNotFound creates a 404 error for a missing import or batch file.
func NewFileNotFound(path string) *BatchError {
	return &BatchError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewImportFailed creates a 422 error carrying the parser's message verbatim.
func NewImportFailed(path string, err error) *BatchError {
	msg := "import failed"
	if err != nil {
		msg = err.Error()
	}
	return &BatchError{
		Code:    ErrImportFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(op string) *BatchError {
	return &BatchError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *BatchError {
	e := &BatchError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
	}
	if err != nil {
		e.Details = map[string]any{"internal_error": err.Error()}
	}
	return e
}

// Is checks if an error is a BatchError with the given code.
func Is(err error, code ErrorCode) bool {
	if bErr, ok := err.(*BatchError); ok {
		return bErr.Code == code
	}
	return false
}
