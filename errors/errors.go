package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// MaxBodySnippet bounds how much of an error response body is kept.
const MaxBodySnippet = 4 << 10

// Error is a classified request failure.
type Error struct {
	// StatusCode is the HTTP status code (0 for transport-level failures).
	StatusCode int
	// Code classifies the failure.
	Code ErrorCode
	// Message describes the failure.
	Message string
	// Retryable indicates whether sending the request again may succeed.
	Retryable bool
	// Body holds up to MaxBodySnippet bytes of the response body.
	Body []byte
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch: %s (HTTP %d): %s", string(e.Code), e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch: %s: %s", string(e.Code), e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error whose retryable flag follows its code.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Retryable: IsRetryableCode(code)}
}

// Wrap classifies err under code, keeping it as the cause.
func Wrap(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Retryable: IsRetryableCode(code), Err: err}
}

// ClassifyStatusCode maps a status code to an Error. Returns nil for 1xx-3xx.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	var code ErrorCode
	switch {
	case statusCode < 400:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		code = ErrCodeAuth
	case statusCode == http.StatusNotFound:
		code = ErrCodeNotFound
	case statusCode == http.StatusConflict:
		code = ErrCodeConflict
	case statusCode == http.StatusTooManyRequests:
		code = ErrCodeRateLimit
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		code = ErrCodeTimeout
	case statusCode == http.StatusServiceUnavailable || statusCode == http.StatusBadGateway:
		code = ErrCodeUnavailable
	case statusCode < 500:
		code = ErrCodeValidation
	default:
		code = ErrCodeServer
	}
	if len(body) > MaxBodySnippet {
		body = body[:MaxBodySnippet]
	}
	return &Error{
		StatusCode: statusCode,
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		Retryable:  IsRetryableCode(code),
		Body:       body,
	}
}

// FromResponse classifies resp by status. For error statuses it reads up to
// MaxBodySnippet bytes of the body and closes it. Returns nil for success.
func FromResponse(resp *http.Response) *Error {
	if resp == nil || resp.StatusCode < 400 {
		return nil
	}
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, MaxBodySnippet))
		_ = resp.Body.Close()
	}
	return ClassifyStatusCode(resp.StatusCode, body)
}

// Classify converts an arbitrary transport error into an *Error. Errors that
// are already classified are returned as-is; nil stays nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	switch {
	case stderrors.Is(err, context.Canceled):
		return Wrap(ErrCodeCanceled, err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrCodeTimeout, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(ErrCodeTimeout, err)
		}
		return Wrap(ErrCodeConnection, err)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) || stderrors.Is(err, io.EOF) {
		return Wrap(ErrCodeConnection, err)
	}
	return Wrap(ErrCodeUnknown, err)
}

// IsRetryableStatus reports whether a response with statusCode is worth
// retrying.
func IsRetryableStatus(statusCode int) bool {
	e := ClassifyStatusCode(statusCode, nil)
	return e != nil && e.Retryable
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	e := Classify(err)
	return e != nil && e.Retryable
}

// CodeOf returns the classification code of err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if e := Classify(err); e != nil {
		return e.Code
	}
	return ""
}

// IsTimeout checks if err is a timeout.
func IsTimeout(err error) bool { return CodeOf(err) == ErrCodeTimeout }

// IsConnection checks if err is a connection failure.
func IsConnection(err error) bool { return CodeOf(err) == ErrCodeConnection }

// IsAuth checks if err is an authentication failure.
func IsAuth(err error) bool { return CodeOf(err) == ErrCodeAuth }

// IsNotFound checks if err is a not-found response.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsRateLimit checks if err is a rate-limit response.
func IsRateLimit(err error) bool { return CodeOf(err) == ErrCodeRateLimit }

// IsServerError checks if err is a 5xx response.
func IsServerError(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeServer || code == ErrCodeUnavailable
}
