package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/storage"
	"github.com/stretchr/testify/require"
)

func newSession(exp time.Time) *models.Session {
	return &models.Session{
		ID:        uuid.New(),
		Subject:   "user@example.com",
		Method:    models.MethodPassword,
		IssuedAt:  exp.Add(-time.Hour),
		ExpiresAt: exp,
	}
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	r := New()
	ctx := context.Background()
	s := newSession(time.Now().Add(time.Hour).UTC())

	require.NoError(t, r.SaveSession(ctx, s))

	got, err := r.SessionByID(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, *s, *got)

	// Возвращается копия: правка не влияет на реестр.
	got.Revoked = true
	again, err := r.SessionByID(ctx, s.ID)
	require.NoError(t, err)
	require.False(t, again.Revoked)
}

func TestSave_Duplicate(t *testing.T) {
	t.Parallel()

	r := New()
	s := newSession(time.Now().Add(time.Hour))

	require.NoError(t, r.SaveSession(context.Background(), s))
	err := r.SaveSession(context.Background(), s)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestSessionByID_NotFound(t *testing.T) {
	t.Parallel()

	_, err := New().SessionByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRevokeSession(t *testing.T) {
	t.Parallel()

	r := New()
	ctx := context.Background()
	s := newSession(time.Now().Add(time.Hour))
	require.NoError(t, r.SaveSession(ctx, s))

	ok, err := r.RevokeSession(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.RevokeSession(ctx, s.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = r.RevokeSession(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRevokeSession_ConcurrentOnlyOneWins(t *testing.T) {
	t.Parallel()

	r := New()
	ctx := context.Background()
	s := newSession(time.Now().Add(time.Hour))
	require.NoError(t, r.SaveSession(ctx, s))

	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.RevokeSession(ctx, s.ID)
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()

	r := New()
	ctx := context.Background()
	now := time.Now().UTC()

	old := newSession(now.Add(-time.Minute))
	edge := newSession(now)
	fresh := newSession(now.Add(time.Hour))
	for _, s := range []*models.Session{old, edge, fresh} {
		require.NoError(t, r.SaveSession(ctx, s))
	}

	require.NoError(t, r.DeleteExpired(ctx, now))
	require.Equal(t, 1, r.Len())

	_, err := r.SessionByID(ctx, fresh.ID)
	require.NoError(t, err)
	_, err = r.SessionByID(ctx, old.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
