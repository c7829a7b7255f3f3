package form

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/service"
)

func TestMessageFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"nil", nil, ""},
		{"local validation", &ValidationError{Fields: FieldErrors{FieldEmail: MsgInvalidEmail}}, CodeValidation},
		{"server validation", fmt.Errorf("op: %w", service.ErrWeakPassword), CodeValidation},
		{"credentials", service.ErrInvalidCredentials, CodeInvalidCredentials},
		{"duplicate", service.ErrDuplicateAccount, CodeDuplicateAccount},
		{"expired", service.ErrTokenExpired, CodeTokenExpired},
		{"revoked", service.ErrTokenRevoked, CodeTokenRevoked},
		{"unavailable", fmt.Errorf("%w: %w", service.ErrServiceUnavailable, context.DeadlineExceeded), CodeUnavailable},
		{"canceled", context.Canceled, CodeCanceled},
		{"closed", ErrClosed, CodeCanceled},
		{"unknown", errors.New("pq: relation does not exist"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := MessageFor(tt.err)
			require.Equal(t, tt.code, msg.Code)
			if tt.err != nil {
				require.NotEmpty(t, msg.Text)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Fields: FieldErrors{
		FieldPassword: MsgPasswordTooShort,
		FieldEmail:    MsgInvalidEmail,
	}}
	require.Equal(t,
		"validation failed: email: Please enter a valid email address; password: Password must be at least 8 characters",
		err.Error())
}

func TestAccountsFor(t *testing.T) {
	t.Parallel()

	require.True(t, HasPicker(models.ProviderGoogle))
	require.True(t, HasPicker(models.ProviderGitHub))
	require.False(t, HasPicker(models.ProviderFacebook))
	require.Nil(t, AccountsFor(models.ProviderApple))

	gh := AccountsFor(models.ProviderGitHub)
	require.Equal(t, []string{"johndoe", "janesmith", "add_new"}, []string{gh[0].ID, gh[1].ID, gh[2].ID})

	// возвращается копия
	gh[0].Name = "changed"
	require.Equal(t, "John Doe", AccountsFor(models.ProviderGitHub)[0].Name)
}
