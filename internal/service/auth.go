package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/auth-flow/internal/metrics"
	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/pkg/log"
	"github.com/pribylovaa/auth-flow/internal/pkg/redact"
	"github.com/pribylovaa/auth-flow/internal/pkg/validate"
)

// IssueFromCredentials выпускает токен по паре email+пароль.
// Пароль проверяется только на длину: сверки с хранилищем аккаунтов нет.
func (s *Service) IssueFromCredentials(ctx context.Context, email, password string) (*models.AuthToken, error) {
	const op = "service.auth.IssueFromCredentials"

	normEmail, err := validate.Email(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validate.Password(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	if err := s.wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tok, err := s.issue(ctx, &models.Session{
		Subject: normEmail,
		Method:  models.MethodPassword,
	}, s.now().Add(s.cfg.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("login_token_issued",
		slog.String("op", op),
		slog.String("email", redact.Email(normEmail)),
	)

	return tok, nil
}

// IssueFromRegistration выпускает токен для только что зарегистрированного пользователя.
func (s *Service) IssueFromRegistration(ctx context.Context, name, email, password string) (*models.AuthToken, error) {
	const op = "service.auth.IssueFromRegistration"

	if err := validate.Name(name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidName)
	}

	normEmail, err := validate.Email(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validate.Password(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	if err := s.wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tok, err := s.issue(ctx, &models.Session{
		Subject: normEmail,
		Method:  models.MethodRegistration,
	}, s.now().Add(s.cfg.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("registration_token_issued",
		slog.String("op", op),
		slog.String("email", redact.Email(normEmail)),
	)

	return tok, nil
}

// IssueFromSocialProvider выпускает токен, помеченный провайдером.
// identity — аккаунт, выбранный в окне выбора (пустой для «другого аккаунта»).
func (s *Service) IssueFromSocialProvider(ctx context.Context, provider models.Provider, identity string) (*models.AuthToken, error) {
	const op = "service.auth.IssueFromSocialProvider"

	if !provider.Valid() {
		return nil, fmt.Errorf("%s: %q: %w", op, provider, ErrUnknownProvider)
	}

	if err := s.wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tok, err := s.issue(ctx, &models.Session{
		Subject:  strings.TrimSpace(identity),
		Method:   models.MethodSocial,
		Provider: provider,
	}, s.now().Add(s.cfg.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("social_token_issued",
		slog.String("op", op),
		slog.String("provider", string(provider)),
		slog.String("identity", redact.Identity(identity)),
	)

	return tok, nil
}

// Validate сообщает, действителен ли токен. Никогда не паникует:
// любая ошибка проверки даёт false.
func (s *Service) Validate(ctx context.Context, token string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.From(ctx).Error("validate_panic_recovered", slog.Any("panic", r))
			ok = false
		}
	}()

	_, err := s.Inspect(ctx, token)
	return err == nil
}

// Inspect проверяет токен и возвращает запись о сессии.
// Ошибки: ErrInvalidToken, ErrTokenExpired, ErrTokenRevoked или ошибка реестра.
func (s *Service) Inspect(ctx context.Context, token string) (*models.Session, error) {
	const op = "service.auth.Inspect"

	sess, err := s.lookup(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sess, nil
}

// Refresh выпускает новый токен взамен действующего и отзывает старый.
// Просроченные и отозванные токены отклоняются. Новый ExpiresAt всегда
// строго больше старого.
func (s *Service) Refresh(ctx context.Context, token string) (*models.AuthToken, error) {
	const op = "service.auth.Refresh"

	lg := log.From(ctx)

	old, err := s.lookup(ctx, token)
	if err != nil {
		s.metrics.Refresh(refreshResult(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.wait(ctx); err != nil {
		s.metrics.Refresh(metrics.ResultFailed)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expiresAt := s.now().Add(s.cfg.TokenTTL).Truncate(time.Second)
	if !expiresAt.After(old.ExpiresAt) {
		expiresAt = old.ExpiresAt.Add(time.Second)
	}

	// Новая сессия сохраняется до отзыва старой: при ошибке записи
	// старый токен остаётся действительным.
	child := &models.Session{
		Subject:  old.Subject,
		Method:   old.Method,
		Provider: old.Provider,
		ParentID: old.ID,
	}
	tok, err := s.issue(ctx, child, expiresAt)
	if err != nil {
		s.metrics.Refresh(metrics.ResultFailed)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	revoked, err := s.registry.RevokeSession(ctx, old.ID)
	if err != nil {
		s.discard(ctx, child.ID)
		s.metrics.Refresh(metrics.ResultFailed)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !revoked {
		// Токен уже обновлён или отозван параллельным вызовом.
		s.discard(ctx, child.ID)
		s.metrics.Refresh(metrics.ResultRevoked)
		lg.Warn("refresh_lost_race",
			slog.String("op", op),
			slog.String("jti", old.ID.String()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	s.metrics.Refresh(metrics.ResultOK)
	lg.Info("token_refreshed",
		slog.String("op", op),
		slog.String("parent_jti", old.ID.String()),
	)

	return tok, nil
}

// Revoke отзывает действующий токен (выход из сессии).
func (s *Service) Revoke(ctx context.Context, token string) error {
	const op = "service.auth.Revoke"

	sess, err := s.lookup(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	revoked, err := s.registry.RevokeSession(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !revoked {
		return fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	log.From(ctx).Info("token_revoked",
		slog.String("op", op),
		slog.String("jti", sess.ID.String()),
	)

	return nil
}

// PurgeExpired удаляет из реестра сессии, истёкшие к текущему моменту.
func (s *Service) PurgeExpired(ctx context.Context) error {
	const op = "service.auth.PurgeExpired"

	if err := s.registry.DeleteExpired(ctx, s.now()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// discard отзывает сессию, выпущенную для неудавшегося refresh.
// Отмена ctx вызывающего не должна мешать откату.
func (s *Service) discard(ctx context.Context, id uuid.UUID) {
	const op = "service.auth.discard"

	if _, err := s.registry.RevokeSession(context.WithoutCancel(ctx), id); err != nil {
		log.From(ctx).Error("refresh_rollback_failed",
			slog.String("op", op),
			slog.String("jti", id.String()),
			slog.String("err", err.Error()),
		)
	}
}

// wait выдерживает имитируемую сетевую задержку.
// Истечение дедлайна считается недоступностью сервиса; отмена возвращается как есть.
func (s *Service) wait(ctx context.Context) error {
	err := s.latency.Wait(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	return err
}

func refreshResult(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return metrics.ResultExpired
	case errors.Is(err, ErrTokenRevoked):
		return metrics.ResultRevoked
	case errors.Is(err, ErrInvalidToken):
		return metrics.ResultInvalid
	default:
		return metrics.ResultFailed
	}
}
