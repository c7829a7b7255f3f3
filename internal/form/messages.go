package form

import (
	"context"
	"errors"

	"github.com/pribylovaa/auth-flow/internal/service"
)

// Коды сообщений для пользователя.
const (
	CodeValidation         = "validation"
	CodeInvalidCredentials = "invalid_credentials"
	CodeDuplicateAccount   = "duplicate_account"
	CodeTokenExpired       = "token_expired"
	CodeTokenRevoked       = "token_revoked"
	CodeUnavailable        = "unavailable"
	CodeCanceled           = "canceled"
	CodeInternal           = "internal"
)

// Message — сообщение об ошибке для пользователя. Внутренние детали сюда не попадают.
type Message struct {
	Code string
	Text string
}

// MessageFor сопоставляет ошибку с сообщением. Неизвестные ошибки дают общий текст.
func MessageFor(err error) Message {
	var verr *ValidationError

	switch {
	case err == nil:
		return Message{}
	case errors.As(err, &verr),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrUnknownProvider):
		return Message{Code: CodeValidation, Text: "Please check the highlighted fields."}
	case errors.Is(err, service.ErrInvalidCredentials):
		return Message{Code: CodeInvalidCredentials, Text: "Invalid email or password."}
	case errors.Is(err, service.ErrDuplicateAccount):
		return Message{Code: CodeDuplicateAccount, Text: "An account with this email already exists."}
	case errors.Is(err, service.ErrTokenExpired):
		return Message{Code: CodeTokenExpired, Text: "Your session has expired. Please sign in again."}
	case errors.Is(err, service.ErrTokenRevoked), errors.Is(err, service.ErrInvalidToken):
		return Message{Code: CodeTokenRevoked, Text: "Your session is no longer valid. Please sign in again."}
	case errors.Is(err, service.ErrServiceUnavailable), errors.Is(err, context.DeadlineExceeded):
		return Message{Code: CodeUnavailable, Text: "The service is temporarily unavailable. Please try again."}
	case errors.Is(err, context.Canceled), errors.Is(err, ErrClosed):
		return Message{Code: CodeCanceled, Text: "The request was canceled."}
	default:
		return Message{Code: CodeInternal, Text: "Something went wrong. Please try again."}
	}
}
