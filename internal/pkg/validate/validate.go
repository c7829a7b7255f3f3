// validate содержит синтаксические правила для полей форм входа и регистрации.
// Правила используются и контроллером формы (до обращения к сервису),
// и сервисом токенов (повторная проверка на входе).
package validate

import (
	"errors"
	"net/mail"
	"strings"
)

const (
	// MinPasswordLen — минимальная длина пароля в рунах.
	MinPasswordLen = 8
	// MinNameLen — минимальная длина имени в рунах (после обрезки пробелов).
	MinNameLen = 2
)

var (
	ErrEmail            = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrNameTooShort     = errors.New("name is too short")
	ErrPasswordMismatch = errors.New("passwords don't match")
)

// Email проверяет формат адреса и возвращает его в нормализованном виде
// (без пробелов по краям, в нижнем регистре).
// Отклоняются адреса с отображаемым именем ("John <j@x.io>") и домены без точки.
func Email(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", ErrEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrEmail
	}

	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", ErrEmail
	}

	return strings.ToLower(email), nil
}

// Password проверяет минимальную длину пароля.
func Password(pw string) error {
	if len([]rune(pw)) < MinPasswordLen {
		return ErrPasswordTooShort
	}

	return nil
}

// Name проверяет минимальную длину имени.
func Name(name string) error {
	if len([]rune(strings.TrimSpace(name))) < MinNameLen {
		return ErrNameTooShort
	}

	return nil
}

// Confirm проверяет совпадение пароля и его подтверждения.
func Confirm(pw, confirm string) error {
	if pw != confirm {
		return ErrPasswordMismatch
	}

	return nil
}
