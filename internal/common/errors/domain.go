package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryInternal     ErrorCategory = "INTERNAL"
	CategoryExternal     ErrorCategory = "EXTERNAL"
)

// DomainError is the single error taxonomy the HTTP layer maps to status
// codes. Every failure kind the API can signal has exactly one code here.
type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
	WithMessage(message string) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string            { return e.code }
func (e *domainError) Category() ErrorCategory { return e.category }
func (e *domainError) HTTPStatus() int         { return e.status }
func (e *domainError) Message() string         { return e.message }
func (e *domainError) Unwrap() error           { return e.cause }

// Is matches by code, so a WithCause or WithMessage clone still compares
// equal to its base error.
func (e *domainError) Is(target error) bool {
	t, ok := target.(*domainError)
	return ok && t.code == e.code
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

func (e *domainError) WithMessage(message string) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  message,
		cause:    e.cause,
	}
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidJWTSecret = NewDomainError(
		"INVALID_JWT_SECRET",
		CategoryValidation,
		http.StatusInternalServerError,
		"JWT_SECRET must be at least 32 bytes",
	)

	ErrFieldsRequired = NewDomainError(
		"FIELDS_REQUIRED",
		CategoryValidation,
		http.StatusBadRequest,
		"All fields are required",
	)

	ErrPasswordTooShort = NewDomainError(
		"PASSWORD_TOO_SHORT",
		CategoryValidation,
		http.StatusBadRequest,
		"Password must be at least 6 characters",
	)

	ErrInvalidJSON = NewDomainError(
		"INVALID_JSON",
		CategoryValidation,
		http.StatusBadRequest,
		"invalid json",
	)

	ErrEmptyMessageText = NewDomainError(
		"EMPTY_MESSAGE_TEXT",
		CategoryValidation,
		http.StatusBadRequest,
		"Message text is required",
	)

	ErrMessageTooLong = NewDomainError(
		"MESSAGE_TOO_LONG",
		CategoryValidation,
		http.StatusBadRequest,
		"message text too long",
	)

	ErrSelfMessage = NewDomainError(
		"SELF_MESSAGE",
		CategoryValidation,
		http.StatusBadRequest,
		"cannot message yourself",
	)

	ErrUserIDRequired = NewDomainError(
		"USER_ID_REQUIRED",
		CategoryValidation,
		http.StatusBadRequest,
		"user id is required",
	)

	ErrInvalidCredentials = NewDomainError(
		"INVALID_CREDENTIALS",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"Invalid credentials",
	)

	ErrInvalidToken = NewDomainError(
		"INVALID_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"Unauthorized - invalid token",
	)

	ErrMissingSession = NewDomainError(
		"MISSING_SESSION",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"Unauthorized - no token provided",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"User not found",
	)

	ErrUsernameAlreadyExists = NewDomainError(
		"USERNAME_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"Username already exists",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"Internal Server Error",
	)

	ErrDatabaseError = NewDomainError(
		"DATABASE_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"database operation failed",
	)
)
