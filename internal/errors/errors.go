package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure kind.
type ErrorCode string

const (
	ErrCodeValidation        ErrorCode = "VALIDATION_FAILED"
	ErrCodeAlreadyRunning    ErrorCode = "ALREADY_RUNNING"
	ErrCodeDuplicateQuestion ErrorCode = "DUPLICATE_QUESTION"
	ErrCodeHostCannotAsk     ErrorCode = "HOST_CANNOT_ASK"
	ErrCodeQuestionNotFound  ErrorCode = "QUESTION_NOT_FOUND"
	ErrCodeNotSessionAuthor  ErrorCode = "NOT_SESSION_AUTHOR"
	ErrCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
)

// AppError is a structured error carried from the domain layer to the handlers.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any AppError with the same code, so errors.Is works against the
// constructors below.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, cause: cause}
}

func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func AlreadyRunning() *AppError {
	return New(ErrCodeAlreadyRunning, "already-running-session")
}

func DuplicateQuestion() *AppError {
	return New(ErrCodeDuplicateQuestion, "already-asked")
}

func HostCannotAsk() *AppError {
	return New(ErrCodeHostCannotAsk, "host-can-not-ask-questions")
}

func QuestionNotFound() *AppError {
	return New(ErrCodeQuestionNotFound, "question-not-found")
}

func NotSessionAuthor() *AppError {
	return New(ErrCodeNotSessionAuthor, "not-session-author")
}

func SessionNotFound() *AppError {
	return New(ErrCodeSessionNotFound, "session-not-found")
}

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message)
}

func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Rate limit exceeded")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the code of an AppError, or ErrCodeInternal for anything else.
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}
