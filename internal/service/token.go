package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/pkg/log"
	"github.com/pribylovaa/auth-flow/internal/storage"
)

type sessionClaims struct {
	Method   string `json:"mth"`
	Provider string `json:"prv,omitempty"`
	jwt.RegisteredClaims
}

// deriveKey выводит ключ подписи из секрета конфигурации (HKDF-SHA256, info = issuer).
func deriveKey(secret, issuer string) []byte {
	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("auth-flow/session/"+issuer))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf отказывает только при длине вывода больше 255*HashLen.
		panic(fmt.Sprintf("service: derive signing key: %v", err))
	}

	return key
}

// signToken подписывает токен для сессии.
func (s *Service) signToken(ctx context.Context, sess *models.Session) (string, error) {
	const op = "service.token.signToken"

	claims := sessionClaims{
		Method:   string(sess.Method),
		Provider: string(sess.Provider),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID.String(),
			Subject:   sess.Subject,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		log.From(ctx).Error("token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// parseToken проверяет подпись, алгоритм, issuer, audience и срок действия.
func (s *Service) parseToken(tokenStr string) (*sessionClaims, error) {
	const op = "service.token.parseToken"

	if tokenStr == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience...))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return s.key, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// issue сохраняет сессию в реестре под новым jti и подписывает токен.
// Поля ID, IssuedAt и ExpiresAt заполняются здесь.
func (s *Service) issue(ctx context.Context, sess *models.Session, expiresAt time.Time) (*models.AuthToken, error) {
	const (
		op          = "service.token.issue"
		maxAttempts = 5
	)

	lg := log.From(ctx)

	now := s.now().UTC()
	sess.IssuedAt = now.Truncate(time.Second)

	// exp хранится с точностью до секунды; округляем вверх, если усечение
	// оставило срок в прошлом.
	sess.ExpiresAt = expiresAt.UTC().Truncate(time.Second)
	if !sess.ExpiresAt.After(now) {
		sess.ExpiresAt = sess.ExpiresAt.Add(time.Second)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		sess.ID = uuid.New()

		if err := s.registry.SaveSession(ctx, sess); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				// Редкая коллизия — пробуем сгенерировать заново.
				continue
			}

			lg.Error("save_session_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		signed, err := s.signToken(ctx, sess)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.metrics.TokenIssued(string(sess.Method))
		lg.Debug("token_issued",
			slog.String("op", op),
			slog.String("jti", sess.ID.String()),
			slog.String("method", string(sess.Method)),
			slog.Time("expires_at", sess.ExpiresAt),
		)

		return &models.AuthToken{
			Token:     signed,
			ExpiresAt: sess.ExpiresAt,
		}, nil
	}

	lg.Error("token_id_collision_exceeded",
		slog.String("op", op),
	)

	return nil, fmt.Errorf("%s: %w", op, ErrTokenCollision)
}

// lookup разбирает токен и сверяет его с реестром.
func (s *Service) lookup(ctx context.Context, tokenStr string) (*models.Session, error) {
	const op = "service.token.lookup"

	lg := log.From(ctx)

	claims, err := s.parseToken(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	sess, err := s.registry.SessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("session_not_found",
				slog.String("op", op),
				slog.String("jti", id.String()),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		lg.Error("session_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if sess.Revoked {
		lg.Warn("session_revoked",
			slog.String("op", op),
			slog.String("jti", id.String()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	if !s.now().Before(sess.ExpiresAt) {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}

	return sess, nil
}
