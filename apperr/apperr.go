// Package apperr carries API error codes from services up to the HTTP
// handlers.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Code string

const (
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInternal     Code = "INTERNAL_SERVER_ERROR"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func BadRequest(format string, args ...any) *Error {
	return New(CodeBadRequest, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(CodeForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(CodeUnauthorized, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(CodeInternal, format, args...)
}

// IsNotFound reports whether err is a NOT_FOUND error or a Firestore
// NotFound status.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeNotFound
	}
	return status.Code(err) == codes.NotFound
}

func IsAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// Status maps an error to the HTTP status and message sent to the client.
func Status(err error) (int, string) {
	var e *Error
	if errors.As(err, &e) {
		switch e.Code {
		case CodeBadRequest:
			return http.StatusBadRequest, e.Message
		case CodeUnauthorized:
			return http.StatusUnauthorized, e.Message
		case CodeForbidden:
			return http.StatusForbidden, e.Message
		case CodeNotFound:
			return http.StatusNotFound, e.Message
		default:
			return http.StatusInternalServerError, e.Message
		}
	}
	switch status.Code(err) {
	case codes.NotFound:
		return http.StatusNotFound, "Not found"
	case codes.PermissionDenied:
		return http.StatusForbidden, "Forbidden"
	case codes.InvalidArgument:
		return http.StatusBadRequest, "Invalid argument"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// Respond writes err as {"error": message} and aborts the request.
func Respond(c *gin.Context, err error) {
	code, msg := Status(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}
