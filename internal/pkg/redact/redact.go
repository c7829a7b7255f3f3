// redact маскирует чувствительные данные перед записью в логи
// (e-mail, идентификаторы аккаунтов, токены, пароли).
package redact

import "strings"

// Email маскирует e-mail для логирования.
//
// Правила:
//   - Строка должна содержать РОВНО один символ '@', иначе возвращается "***";
//   - Локальная часть заменяется на первые два символа (по рунам) + "***";
//   - Если длина локальной части ≤ 2 символов — возвращается "***@<domain>";
//   - Доменная часть возвращается без изменений.
//
// Примеры:
//
//	"foobar@example.com"   -> "fo***@example.com"
//	"ab@ex.com"            -> "***@ex.com"
//	"no-at"                -> "***"
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	return prefix(local) + "@" + domain
}

// Identity маскирует идентификатор аккаунта провайдера:
// e-mail обрабатывается как Email, имя пользователя — как его локальная часть.
//
//	"john.doe@gmail.com" -> "jo***@gmail.com"
//	"johndoe"            -> "jo***"
//	""                   -> ""
func Identity(s string) string {
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "@"):
		return Email(s)
	default:
		return prefix(s)
	}
}

// Token возвращает литерал-заглушку для токена в логах.
func Token() string { return "[REDACTED_TOKEN]" }

// Password возвращает литерал-заглушку для пароля в логах.
func Password() string { return "[REDACTED_PASSWORD]" }

func prefix(s string) string {
	r := []rune(s)
	if len(r) > 2 {
		return string(r[:2]) + "***"
	}

	return "***"
}
