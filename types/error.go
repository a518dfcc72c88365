package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unified error code across the service.
type ErrorCode string

// Engine error codes
const (
	ErrConfig     ErrorCode = "CONFIG_ERROR"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrDecode     ErrorCode = "DECODE_ERROR"
	ErrProvider   ErrorCode = "PROVIDER_ERROR"
	ErrTimeout    ErrorCode = "TIMEOUT"
)

// Plumbing error codes
const (
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
	ErrRateLimited   ErrorCode = "RATE_LIMITED"
	ErrNotFound      ErrorCode = "NOT_FOUND"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// NewConfigError 凭证或配置缺失，启动期致命
func NewConfigError(message string) *Error {
	return NewError(ErrConfig, message).WithHTTPStatus(http.StatusInternalServerError)
}

// NewValidationError 请求格式错误
func NewValidationError(message string) *Error {
	return NewError(ErrValidation, message).WithHTTPStatus(http.StatusBadRequest)
}

// NewDecodeError 图像无法解码
func NewDecodeError(message string, cause error) *Error {
	return NewError(ErrDecode, message).
		WithCause(cause).
		WithHTTPStatus(http.StatusBadRequest)
}

// NewProviderError 上游生成调用失败，消息原样透传
func NewProviderError(provider, message string, cause error) *Error {
	return NewError(ErrProvider, message).
		WithCause(cause).
		WithHTTPStatus(http.StatusBadGateway).
		WithRetryable(true).
		WithProvider(provider)
}

// NewTimeoutError 单次调用超时
func NewTimeoutError(message string) *Error {
	return NewError(ErrTimeout, message).
		WithHTTPStatus(http.StatusGatewayTimeout).
		WithRetryable(true)
}

// AsError extracts a *Error from the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// ErrorMessage returns the caller-facing message of err: the structured
// message for *Error, err.Error() otherwise.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := AsError(err); ok {
		return e.Message
	}
	return err.Error()
}
