package form

import "github.com/pribylovaa/auth-flow/internal/pkg/validate"

// Проверки полей возвращают текст ошибки или "".

func validateName(v string) string {
	if validate.Name(v) != nil {
		return MsgNameTooShort
	}
	return ""
}

func validateEmail(v string) string {
	if _, err := validate.Email(v); err != nil {
		return MsgInvalidEmail
	}
	return ""
}

func validatePassword(v string) string {
	if validate.Password(v) != nil {
		return MsgPasswordTooShort
	}
	return ""
}

func validateConfirm(pw, confirm string) string {
	if validate.Confirm(pw, confirm) != nil {
		return MsgPasswordMismatch
	}
	return ""
}
