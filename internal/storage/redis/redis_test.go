package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/storage"
)

func newRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	reg := New(rdb, "")
	t.Cleanup(func() { _ = reg.Close() })

	return reg, mr
}

func sampleSession() *models.Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Session{
		ID:        uuid.New(),
		Subject:   "john.doe@gmail.com",
		Method:    models.MethodSocial,
		Provider:  models.ProviderGoogle,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		ParentID:  uuid.New(),
	}
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	reg, mr := newRegistry(t)
	ctx := context.Background()
	s := sampleSession()

	require.NoError(t, reg.SaveSession(ctx, s))

	got, err := reg.SessionByID(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, *s, *got)

	// Ключ получил TTL до ExpiresAt.
	ttl := mr.TTL(defaultPrefix + s.ID.String())
	require.Greater(t, ttl, 59*time.Minute)
}

func TestSave_WithoutParent(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()
	s := sampleSession()
	s.ParentID = uuid.Nil

	require.NoError(t, reg.SaveSession(ctx, s))
	got, err := reg.SessionByID(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, got.ParentID)
}

func TestSave_Duplicate(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()
	s := sampleSession()

	require.NoError(t, reg.SaveSession(ctx, s))
	require.ErrorIs(t, reg.SaveSession(ctx, s), storage.ErrAlreadyExists)
}

func TestSessionByID_NotFound(t *testing.T) {
	reg, _ := newRegistry(t)

	_, err := reg.SessionByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRevokeSession(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()
	s := sampleSession()
	require.NoError(t, reg.SaveSession(ctx, s))

	ok, err := reg.RevokeSession(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = reg.RevokeSession(ctx, s.ID)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := reg.SessionByID(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, got.Revoked)

	_, err = reg.RevokeSession(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExpiredKeyDisappears(t *testing.T) {
	reg, mr := newRegistry(t)
	ctx := context.Background()
	s := sampleSession()
	require.NoError(t, reg.SaveSession(ctx, s))

	mr.FastForward(2 * time.Hour)

	_, err := reg.SessionByID(ctx, s.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, reg.DeleteExpired(ctx, time.Now()))
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	reg, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0", "custom:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	require.Equal(t, "custom:", reg.prefix)

	_, err = Connect(context.Background(), "not a url", "")
	require.Error(t, err)
}

// cancelAfterFirst отменяет контекст сразу после первой команды клиента.
type cancelAfterFirst struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (h *cancelAfterFirst) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (h *cancelAfterFirst) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		err := next(ctx, cmd)
		h.once.Do(h.cancel)
		return err
	}
}

func (h *cancelAfterFirst) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func TestSave_CanceledMidway_AllOrNothing(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	rdb.AddHook(&cancelAfterFirst{cancel: cancel})
	reg := New(rdb, "")
	t.Cleanup(func() { _ = reg.Close() })

	s := sampleSession()
	key := defaultPrefix + s.ID.String()
	saveErr := reg.SaveSession(ctx, s)

	if !mr.Exists(key) {
		require.Error(t, saveErr)
		_, err := reg.SessionByID(context.Background(), s.ID)
		require.ErrorIs(t, err, storage.ErrNotFound)
		return
	}

	// Если запись прошла, она полная и с TTL.
	require.Greater(t, mr.TTL(key), time.Duration(0))
	got, err := reg.SessionByID(context.Background(), s.ID)
	require.NoError(t, err)
	require.Equal(t, *s, *got)
}

func TestSave_SingleRoundTrip(t *testing.T) {
	reg, mr := newRegistry(t)
	ctx := context.Background()

	// Скрипт уже загружен: запись — одна команда EVALSHA.
	require.NoError(t, saveScript.Load(ctx, reg.rdb).Err())

	before := mr.CommandCount()
	require.NoError(t, reg.SaveSession(ctx, sampleSession()))
	require.Equal(t, 1, mr.CommandCount()-before)
}

func TestSessionByID_IncompleteHashIsNotFound(t *testing.T) {
	reg, mr := newRegistry(t)
	id := uuid.New()

	mr.HSet(defaultPrefix+id.String(), "sub", "a@b.com")

	_, err := reg.SessionByID(context.Background(), id)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
