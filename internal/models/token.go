package models

import "time"

// AuthToken — токен сессии, выдаваемый сервисом при входе/регистрации/социальном входе.
//
// Описание:
//   - Token — непрозрачный подписанный идентификатор; уникален для каждой выдачи;
//   - ExpiresAt — момент истечения (UTC, точность до секунды, совпадает с claim exp).
//
// Токен не изменяется после выдачи: Refresh выпускает новый токен, а не правит старый.
type AuthToken struct {
	// Token — подписанный токен для предъявления клиентом.
	Token string
	// ExpiresAt — время истечения действия токена (UTC).
	ExpiresAt time.Time
}

// ExpiresAtMillis возвращает момент истечения в миллисекундах Unix-эпохи.
func (t AuthToken) ExpiresAtMillis() int64 {
	return t.ExpiresAt.UnixMilli()
}
