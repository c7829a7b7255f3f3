// memory реализует storage.Registry в памяти процесса.
// Подходит для демо-режима и тестов: данные теряются при перезапуске.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/storage"
)

// Registry — потокобезопасный реестр сессий на map + RWMutex.
type Registry struct {
	mu   sync.RWMutex
	data map[uuid.UUID]models.Session
}

// New создаёт пустой реестр.
func New() *Registry {
	return &Registry{
		data: make(map[uuid.UUID]models.Session),
	}
}

// SaveSession сохраняет копию сессии.
func (r *Registry) SaveSession(_ context.Context, s *models.Session) error {
	const op = "storage.memory.SaveSession"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[s.ID]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}
	r.data[s.ID] = *s

	return nil
}

// SessionByID возвращает копию сессии по jti.
func (r *Registry) SessionByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	const op = "storage.memory.SessionByID"

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.data[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return &s, nil
}

// RevokeSession помечает сессию отозванной; false — уже была отозвана.
func (r *Registry) RevokeSession(_ context.Context, id uuid.UUID) (bool, error) {
	const op = "storage.memory.RevokeSession"

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.data[id]
	if !ok {
		return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if s.Revoked {
		return false, nil
	}
	s.Revoked = true
	r.data[id] = s

	return true, nil
}

// DeleteExpired удаляет сессии с ExpiresAt не позже now.
func (r *Registry) DeleteExpired(_ context.Context, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.data {
		if !s.ExpiresAt.After(now) {
			delete(r.data, id)
		}
	}

	return nil
}

// Len возвращает число сессий в реестре.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.data)
}

// Close ничего не освобождает и нужен для соответствия интерфейсу.
func (r *Registry) Close() error { return nil }
