//go:generate mockgen -source=storage.go -destination=../../mocks/mock_registry.go -package=mocks

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/auth-flow/internal/models"
)

var (
	// ErrNotFound — сессия не найдена в реестре.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — сессия с таким идентификатором уже сохранена.
	ErrAlreadyExists = errors.New("already exists")
)

// Registry — реестр выданных токенов, служит источником истины при проверке.
// Реализации обязаны быть безопасными для конкурентного использования.
type Registry interface {
	// SaveSession сохраняет новую сессию до момента её истечения.
	SaveSession(ctx context.Context, s *models.Session) error
	// SessionByID находит сессию по идентификатору токена (jti).
	SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	// RevokeSession атомарно помечает сессию отозванной.
	// Возвращает false, если сессия уже была отозвана ранее.
	RevokeSession(ctx context.Context, id uuid.UUID) (bool, error)
	// DeleteExpired удаляет все сессии, истёкшие к моменту now.
	DeleteExpired(ctx context.Context, now time.Time) error
	// Close освобождает ресурсы реестра.
	Close() error
}
