// redis реализует storage.Registry поверх Redis.
//
// Каждая сессия хранится как Redis Hash по ключу <prefix><jti> с полями:
// sub, mth, prv, par, iat, exp (unix ms), rev (0/1). Ключ живёт до ExpiresAt,
// поэтому просроченные сессии удаляет сам Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/storage"
)

const defaultPrefix = "authflow:sess:"

// saveScript создаёт hash сессии вместе с EXPIREAT за один вызов.
// Возвращает 0, если ключ уже есть; 1 при успешной записи.
var saveScript = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then return 0 end
redis.call("HSET", KEYS[1],
	"sub", ARGV[1], "mth", ARGV[2], "prv", ARGV[3], "par", ARGV[4],
	"iat", ARGV[5], "exp", ARGV[6], "rev", ARGV[7])
redis.call("PEXPIREAT", KEYS[1], ARGV[6])
return 1
`)

// revokeScript атомарно выставляет rev=1.
// Возвращает -1, если ключа нет; 0, если уже отозван; 1 при успешном отзыве.
var revokeScript = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then return -1 end
if redis.call("HGET", KEYS[1], "rev") == "1" then return 0 end
redis.call("HSET", KEYS[1], "rev", "1")
return 1
`)

// Registry — реестр сессий в Redis.
type Registry struct {
	rdb    *goredis.Client
	prefix string
}

// New создаёт реестр поверх готового клиента. Пустой prefix заменяется на "authflow:sess:".
func New(rdb *goredis.Client, prefix string) *Registry {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &Registry{rdb: rdb, prefix: prefix}
}

// Connect создаёт клиента из URL (например, redis://:pass@host:6379/0) и проверяет соединение.
func Connect(ctx context.Context, redisURL, prefix string) (*Registry, error) {
	const op = "storage.redis.Connect"

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := goredis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return New(rdb, prefix), nil
}

func (r *Registry) key(id uuid.UUID) string { return r.prefix + id.String() }

// SaveSession сохраняет сессию; повторный jti даёт storage.ErrAlreadyExists.
func (r *Registry) SaveSession(ctx context.Context, s *models.Session) error {
	const op = "storage.redis.SaveSession"

	created, err := saveScript.Run(ctx, r.rdb, []string{r.key(s.ID)},
		s.Subject,
		string(s.Method),
		string(s.Provider),
		parentString(s.ParentID),
		strconv.FormatInt(s.IssuedAt.UnixMilli(), 10),
		strconv.FormatInt(s.ExpiresAt.UnixMilli(), 10),
		boolTo01(s.Revoked),
	).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if created == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	return nil
}

// SessionByID читает сессию по jti.
func (r *Registry) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	const op = "storage.redis.SessionByID"

	m, err := r.rdb.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Неполная запись (нет exp) считается отсутствующей.
	if len(m) == 0 || m["exp"] == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	iat, err := strconv.ParseInt(m["iat"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: iat: %w", op, err)
	}

	exp, err := strconv.ParseInt(m["exp"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: exp: %w", op, err)
	}

	var parent uuid.UUID
	if p := m["par"]; p != "" {
		parent, err = uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("%s: par: %w", op, err)
		}
	}

	return &models.Session{
		ID:        id,
		Subject:   m["sub"],
		Method:    models.Method(m["mth"]),
		Provider:  models.Provider(m["prv"]),
		IssuedAt:  time.UnixMilli(iat).UTC(),
		ExpiresAt: time.UnixMilli(exp).UTC(),
		Revoked:   m["rev"] == "1",
		ParentID:  parent,
	}, nil
}

// RevokeSession атомарно помечает сессию отозванной.
func (r *Registry) RevokeSession(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "storage.redis.RevokeSession"

	res, err := revokeScript.Run(ctx, r.rdb, []string{r.key(id)}).Int()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	switch res {
	case -1:
		return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	case 0:
		return false, nil
	default:
		return true, nil
	}
}

// DeleteExpired — no-op: ключи истекают через EXPIREAT.
func (r *Registry) DeleteExpired(context.Context, time.Time) error { return nil }

// Close закрывает клиента Redis.
func (r *Registry) Close() error { return r.rdb.Close() }

func parentString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}

	return id.String()
}

func boolTo01(b bool) string {
	if b {
		return "1"
	}

	return "0"
}
