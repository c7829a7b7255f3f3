// form реализует контроллер формы аутентификации (вход, регистрация,
// социальный вход с выбором аккаунта) поверх сервиса токенов.
//
// Контроллер — конечный автомат:
//
//	Idle -> Submitting -> {Success, Failed}
//	Idle -> PickingAccount -> Submitting   (google/github)
//	Failed -> Idle                          (при следующей правке поля)
//
// Пока идёт отправка (Submitting), повторные отправки отклоняются с ErrBusy:
// само состояние служит взаимным исключением. Ошибки сервиса не «протекают»
// наружу без перехода в Failed с сообщением для пользователя.
package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pribylovaa/auth-flow/internal/models"
)

//go:generate mockgen -source=form.go -destination=../../mocks/mock_form.go -package=mocks

// Mode — вид формы.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// State — состояние контроллера.
type State string

const (
	StateIdle           State = "idle"
	StatePickingAccount State = "picking_account"
	StateSubmitting     State = "submitting"
	StateSuccess        State = "success"
	StateFailed         State = "failed"
)

// Field — имя поля формы.
type Field string

const (
	FieldName            Field = "name"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
)

// Тексты ошибок полей.
const (
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgNameTooShort     = "Name must be at least 2 characters"
	MsgPasswordMismatch = "Passwords don't match"
)

// DefaultDestination — маршрут после успешного входа.
const DefaultDestination = "/dashboard"

var (
	// ErrBusy — отправка уже выполняется или открыт выбор аккаунта.
	ErrBusy = errors.New("submission already in progress")
	// ErrClosed — контроллер закрыт, результат отправки отброшен.
	ErrClosed = errors.New("form controller closed")
	// ErrNoPicker — выбор аккаунта не открыт.
	ErrNoPicker = errors.New("account picker is not open")
	// ErrUnknownAccount — аккаунт отсутствует в списке выбора.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrUnknownField — поле не относится к форме этого вида.
	ErrUnknownField = errors.New("unknown field")
)

// Issuer — часть сервиса токенов, которая нужна контроллеру.
type Issuer interface {
	IssueFromCredentials(ctx context.Context, email, password string) (*models.AuthToken, error)
	IssueFromRegistration(ctx context.Context, name, email, password string) (*models.AuthToken, error)
	IssueFromSocialProvider(ctx context.Context, provider models.Provider, identity string) (*models.AuthToken, error)
}

// Navigator — внешний роутер.
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc адаптирует функцию к Navigator.
type NavigatorFunc func(path string)

// NavigateTo вызывает f(path).
func (f NavigatorFunc) NavigateTo(path string) { f(path) }

// FieldErrors — сообщения об ошибках по полям.
type FieldErrors map[Field]string

// ValidationError — локальная ошибка валидации; до сервиса дело не доходит.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[Field(k)]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldsFor возвращает поля формы в порядке отображения.
func fieldsFor(m Mode) []Field {
	if m == ModeSignup {
		return []Field{FieldName, FieldEmail, FieldPassword, FieldConfirmPassword}
	}

	return []Field{FieldEmail, FieldPassword}
}

func isSecret(f Field) bool {
	return f == FieldPassword || f == FieldConfirmPassword
}
