package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Validation errors (2xxx)
	ErrCodeValidation   ErrorCode = "E2001"
	ErrCodeInvalidInput ErrorCode = "E2002"
	ErrCodeMissingField ErrorCode = "E2003"

	// Resource errors (3xxx)
	ErrCodeNotFound ErrorCode = "E3001"

	// Checkout errors (4xxx)
	ErrCodeInvalidTransition ErrorCode = "E4002"
	ErrCodePaymentFailed     ErrorCode = "E4006"
	ErrCodePayDisabled       ErrorCode = "E4010"

	// External service errors (5xxx)
	ErrCodeEmailError          ErrorCode = "E5003"
	ErrCodeNoWalletConnector   ErrorCode = "E5005"
	ErrCodeUnsupportedProvider ErrorCode = "E5006"
	ErrCodeWalletRequest       ErrorCode = "E5007"

	// Internal errors (9xxx)
	ErrCodeInternal ErrorCode = "E9001"
	ErrCodeDatabase ErrorCode = "E9002"
	ErrCodeTimeout  ErrorCode = "E9003"
)

// AppError represents an application error with context
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Stack      string                 `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithField adds a field to the error
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// ============================================================
// Error constructors
// ============================================================

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
		Stack:      captureStack(2),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
		Cause:      err,
		Stack:      captureStack(2),
	}
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field, message string) *AppError {
	return New(ErrCodeInvalidInput, message).WithField("field", field)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("%s is required", field)).WithField("field", field)
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// InvalidTransition reports a checkout action that the current phase does not allow.
func InvalidTransition(from, action string) *AppError {
	return New(ErrCodeInvalidTransition, fmt.Sprintf("cannot %s while checkout is %s", action, from)).
		WithField("phase", from)
}

func PayDisabled() *AppError {
	return New(ErrCodePayDisabled, "Select at least one ticket before paying")
}

func PaymentFailed(cause error) *AppError {
	return Wrap(cause, ErrCodePaymentFailed, "There was an error with the smart wallet transaction")
}

func NoWalletConnector() *AppError {
	return New(ErrCodeNoWalletConnector, "No wallet connector found")
}

func UnsupportedProvider() *AppError {
	return New(ErrCodeUnsupportedProvider, "Provider does not support the request method")
}

func WalletRequestFailed(cause error) *AppError {
	return Wrap(cause, ErrCodeWalletRequest, "Wallet request failed")
}

func EmailError(cause error) *AppError {
	return Wrap(cause, ErrCodeEmailError, "Failed to send email")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func DatabaseError(err error) *AppError {
	return Wrap(err, ErrCodeDatabase, "Database error")
}

func Timeout() *AppError {
	return New(ErrCodeTimeout, "Request timed out")
}

// ============================================================
// Helper functions
// ============================================================

func getHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidTransition:
		return http.StatusConflict
	case ErrCodePayDisabled, ErrCodePaymentFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeEmailError, ErrCodeWalletRequest:
		return http.StatusBadGateway
	case ErrCodeNoWalletConnector, ErrCodeUnsupportedProvider:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func captureStack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.File, "runtime/") {
			if !more {
				break
			}
			continue
		}
		sb.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return sb.String()
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// ToAppError converts any error to AppError
func ToAppError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Wrap(err, ErrCodeInternal, "Internal server error")
}
