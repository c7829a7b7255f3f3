// service содержит Session Token Service: выпуск токенов по учётным данным,
// регистрации и социальному провайдеру, проверку, обновление и отзыв токенов.
//
// Основные аспекты:
//   - Токен — подписанный HS256 JWT со случайным jti; источником истины о его
//     действительности служит реестр сессий (storage.Registry);
//   - Учётные данные не проверяются: сервис лишь валидирует синтаксис входа;
//   - Время и сетевая задержка внедряются (WithClock, WithLatency), что делает
//     поведение детерминированным в тестах;
//   - Экземпляр Service безопасен для конкурентного использования при условии,
//     что реестр потокобезопасен.
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/auth-flow/internal/config"
	"github.com/pribylovaa/auth-flow/internal/metrics"
	"github.com/pribylovaa/auth-flow/internal/storage"
)

var (
	// ErrInvalidEmail — e-mail имеет некорректный формат.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль короче минимальной длины.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrInvalidName — имя при регистрации слишком короткое.
	ErrInvalidName = errors.New("invalid name")

	// ErrUnknownProvider — провайдер не входит в поддерживаемый набор.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidCredentials — пара логин/пароль отклонена.
	// Сервис без хранилища аккаунтов её не возвращает; вид ошибки нужен
	// вызывающему коду и подменяемым реализациям Issuer.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateAccount — аккаунт с таким e-mail уже существует.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidToken — токен пустой, повреждён, подписан чужим ключом
	// или неизвестен реестру.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — токен отозван (выход или ротация при Refresh).
	ErrTokenRevoked = errors.New("token revoked")

	// ErrServiceUnavailable — сервис не ответил за отведённое время.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTokenCollision — исчерпаны попытки получить уникальный jti.
	ErrTokenCollision = errors.New("token id collision")
)

// Service описывает бизнес-логику выпуска и проверки токенов.
type Service struct {
	registry storage.Registry
	cfg      config.AuthConfig
	key      []byte
	now      func() time.Time
	latency  Latency
	metrics  *metrics.Metrics
}

// Option настраивает Service.
type Option func(*Service)

// WithClock задаёт источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLatency задаёт имитацию сетевой задержки для асинхронных операций.
func WithLatency(l Latency) Option {
	return func(s *Service) {
		if l != nil {
			s.latency = l
		}
	}
}

// WithMetrics подключает счётчики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New создаёт новый экземпляр Service. По умолчанию задержки нет,
// а время берётся из time.Now в UTC.
func New(registry storage.Registry, cfg config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		cfg:      cfg,
		key:      deriveKey(cfg.Secret, cfg.Issuer),
		now:      func() time.Time { return time.Now().UTC() },
		latency:  NoLatency{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
