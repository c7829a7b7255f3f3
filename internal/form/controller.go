package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pribylovaa/auth-flow/internal/metrics"
	"github.com/pribylovaa/auth-flow/internal/models"
	"github.com/pribylovaa/auth-flow/internal/pkg/log"
	"github.com/pribylovaa/auth-flow/internal/pkg/redact"
	"github.com/pribylovaa/auth-flow/internal/service"
)

// Метка режима для социального входа в метриках.
const modeSocial = "social"

// Snapshot — неизменяемый снимок состояния для слоя представления.
type Snapshot struct {
	Mode  Mode
	State State
	// Values содержит значения полей; пароли заменены точками той же длины.
	Values   map[Field]string
	Errors   FieldErrors
	Message  *Message
	Provider models.Provider
	Accounts []models.Account
	Token    *models.AuthToken
}

// Loading сообщает, идёт ли отправка.
func (s Snapshot) Loading() bool { return s.State == StateSubmitting }

// Controller — контроллер одной формы. Безопасен для конкурентного использования.
type Controller struct {
	mode        Mode
	issuer      Issuer
	nav         Navigator
	destination string
	timeout     time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger

	mu        sync.Mutex
	state     State
	values    map[Field]string
	errs      FieldErrors
	message   *Message
	provider  models.Provider
	accounts  []models.Account
	token     *models.AuthToken
	cancel    context.CancelFunc
	closed    bool
	observers map[int]func(Snapshot)
	nextObs   int
}

// Option настраивает Controller.
type Option func(*Controller)

// WithDestination задаёт маршрут после успеха.
func WithDestination(path string) Option {
	return func(c *Controller) {
		if path != "" {
			c.destination = path
		}
	}
}

// WithTimeout ограничивает длительность одной отправки. d <= 0 — без ограничения.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithMetrics подключает счётчики отправок.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger задаёт логгер контроллера.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New создаёт контроллер формы. nav может быть nil — тогда навигации нет.
func New(mode Mode, issuer Issuer, nav Navigator, opts ...Option) *Controller {
	if mode != ModeSignup {
		mode = ModeLogin
	}

	c := &Controller{
		mode:        mode,
		issuer:      issuer,
		nav:         nav,
		destination: DefaultDestination,
		logger:      slog.Default(),
		state:       StateIdle,
		values:      make(map[Field]string),
		errs:        FieldErrors{},
		observers:   make(map[int]func(Snapshot)),
	}
	for _, f := range fieldsFor(mode) {
		c.values[f] = ""
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With(slog.String("form_mode", string(mode)))

	return c
}

// Mode возвращает вид формы.
func (c *Controller) Mode() Mode { return c.mode }

// SetField записывает значение поля. Ошибка этого поля сбрасывается,
// а Failed переходит в Idle. Во время отправки правки не принимаются.
func (c *Controller) SetField(f Field, value string) error {
	const op = "form.controller.SetField"

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrClosed)
	case c.state == StateSubmitting:
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrBusy)
	}

	if _, ok := c.values[f]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w: %q", op, ErrUnknownField, f)
	}

	c.values[f] = value
	delete(c.errs, f)
	if f == FieldPassword {
		delete(c.errs, FieldConfirmPassword)
	}
	if c.state == StateFailed {
		c.state = StateIdle
		c.message = nil
	}

	c.publishLocked()
	return nil
}

// Validate проверяет все поля, сохраняет найденные ошибки и возвращает их копию.
func (c *Controller) Validate() FieldErrors {
	c.mu.Lock()
	c.errs = c.validateLocked()
	out := copyErrors(c.errs)
	c.publishLocked()

	return out
}

// Submit отправляет форму входа или регистрации.
// Некорректные поля дают *ValidationError без обращения к сервису.
func (c *Controller) Submit(ctx context.Context) error {
	const op = "form.controller.Submit"

	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}

	if errs := c.validateLocked(); len(errs) > 0 {
		c.errs = errs
		c.message = nil
		if c.state == StateFailed {
			c.state = StateIdle
		}
		c.publishLocked()

		c.metrics.Submission(string(c.mode), metrics.ResultRejected)
		c.logger.Debug("form_rejected", slog.Int("fields", len(errs)))
		return fmt.Errorf("%s: %w", op, &ValidationError{Fields: copyErrors(errs)})
	}

	name := strings.TrimSpace(c.values[FieldName])
	email := strings.TrimSpace(c.values[FieldEmail])
	password := c.values[FieldPassword]
	mode := c.mode

	call := func(ctx context.Context) (*models.AuthToken, error) {
		if mode == ModeSignup {
			return c.issuer.IssueFromRegistration(ctx, name, email, password)
		}
		return c.issuer.IssueFromCredentials(ctx, email, password)
	}

	ctx = c.beginLocked(ctx, slog.String("email", redact.Email(email)))
	c.publishLocked()

	return c.execute(ctx, string(mode), call)
}

// ChooseProvider начинает социальный вход. Для google и github открывается
// окно выбора аккаунта и возвращается его список; остальные провайдеры
// отправляются сразу, результат — ошибка отправки.
func (c *Controller) ChooseProvider(ctx context.Context, p models.Provider) ([]models.Account, error) {
	const op = "form.controller.ChooseProvider"

	if !p.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, service.ErrUnknownProvider, p)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrBusy)
	}

	if HasPicker(p) {
		c.state = StatePickingAccount
		c.provider = p
		c.accounts = AccountsFor(p)
		c.message = nil
		accs := AccountsFor(p)
		c.publishLocked()

		c.logger.Debug("account_picker_opened", slog.String("provider", string(p)))
		return accs, nil
	}

	ctx = c.beginLocked(ctx, slog.String("provider", string(p)))
	c.provider = p
	c.publishLocked()

	return nil, c.execute(ctx, modeSocial, c.socialCall(p, ""))
}

// SelectAccount завершает выбор аккаунта и отправляет социальный вход.
// Пункт «другой аккаунт» отправляется с пустой идентичностью.
func (c *Controller) SelectAccount(ctx context.Context, accountID string) error {
	const op = "form.controller.SelectAccount"

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	if c.state != StatePickingAccount {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNoPicker)
	}

	acc, ok := findAccount(c.accounts, accountID)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w: %q", op, ErrUnknownAccount, accountID)
	}

	identity := acc.ID
	if acc.AddNew {
		identity = ""
	}
	p := c.provider

	ctx = c.beginLocked(ctx,
		slog.String("provider", string(p)),
		slog.String("identity", redact.Identity(identity)),
	)
	c.publishLocked()

	return c.execute(ctx, modeSocial, c.socialCall(p, identity))
}

// CancelPicker закрывает окно выбора аккаунта без отправки.
func (c *Controller) CancelPicker() error {
	const op = "form.controller.CancelPicker"

	c.mu.Lock()
	if c.state != StatePickingAccount {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNoPicker)
	}

	c.state = StateIdle
	c.provider = ""
	c.accounts = nil
	c.publishLocked()

	return nil
}

// Close отменяет текущую отправку; её результат будет отброшен
// без навигации и смены состояния. Повторный вызов безопасен.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.observers = make(map[int]func(Snapshot))
}

// Snapshot возвращает текущее состояние.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// Subscribe регистрирует наблюдателя изменений состояния.
// Наблюдатель вызывается вне блокировки; возвращается функция отписки.
// После Close наблюдатели не регистрируются.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}

	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Controller) socialCall(p models.Provider, identity string) func(context.Context) (*models.AuthToken, error) {
	return func(ctx context.Context) (*models.AuthToken, error) {
		return c.issuer.IssueFromSocialProvider(ctx, p, identity)
	}
}

// readyLocked проверяет, можно ли начать отправку формы.
func (c *Controller) readyLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.state == StateSubmitting, c.state == StatePickingAccount:
		return ErrBusy
	default:
		return nil
	}
}

func (c *Controller) validateLocked() FieldErrors {
	errs := FieldErrors{}

	if c.mode == ModeSignup {
		if err := validateName(c.values[FieldName]); err != "" {
			errs[FieldName] = err
		}
	}
	if err := validateEmail(c.values[FieldEmail]); err != "" {
		errs[FieldEmail] = err
	}
	if err := validatePassword(c.values[FieldPassword]); err != "" {
		errs[FieldPassword] = err
	}
	if c.mode == ModeSignup {
		if err := validateConfirm(c.values[FieldPassword], c.values[FieldConfirmPassword]); err != "" {
			errs[FieldConfirmPassword] = err
		}
	}

	return errs
}

// beginLocked переводит контроллер в Submitting и готовит контекст отправки.
func (c *Controller) beginLocked(parent context.Context, attrs ...any) context.Context {
	ctx, cancel := context.WithCancel(parent)
	ctx, cancelTimeout := withTimeout(ctx, c.timeout)
	c.cancel = func() {
		cancelTimeout()
		cancel()
	}

	c.state = StateSubmitting
	c.errs = FieldErrors{}
	c.message = nil
	c.token = nil

	return log.Into(ctx, c.logger.With(attrs...))
}

// execute выполняет вызов сервиса и фиксирует результат. Вызывается без блокировки.
func (c *Controller) execute(ctx context.Context, label string, call func(context.Context) (*models.AuthToken, error)) error {
	const op = "form.controller.execute"
	logger := log.From(ctx)
	logger.Info("form_submit_started")

	tok, err := safeCall(ctx, call)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		c.metrics.Submission(label, metrics.ResultCanceled)
		logger.Debug("form_result_discarded")
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.accounts = nil

	if err == nil && tok == nil {
		err = errors.New("empty token")
	}

	if err != nil {
		msg := MessageFor(err)
		c.state = StateFailed
		c.message = &msg
		c.publishLocked()

		result := metrics.ResultFailed
		if msg.Code == CodeCanceled {
			result = metrics.ResultCanceled
		}
		c.metrics.Submission(label, result)
		logger.Warn("form_submit_failed", slog.String("code", msg.Code), slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	c.state = StateSuccess
	c.token = tok
	c.publishLocked()

	c.metrics.Submission(label, metrics.ResultOK)
	logger.Info("form_submit_succeeded", slog.Time("expires_at", tok.ExpiresAt))

	if c.nav != nil {
		c.nav.NavigateTo(c.destination)
	}

	return nil
}

// safeCall превращает панику сервиса в ошибку, чтобы контроллер не застрял в Submitting.
func safeCall(ctx context.Context, call func(context.Context) (*models.AuthToken, error)) (tok *models.AuthToken, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.From(ctx).Error("issuer_panic", slog.Any("panic", r))
			tok, err = nil, fmt.Errorf("issuer panic: %v", r)
		}
	}()

	return call(ctx)
}

// publishLocked снимает снимок, отпускает блокировку и уведомляет наблюдателей.
func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	obs := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	c.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	values := make(map[Field]string, len(c.values))
	for f, v := range c.values {
		if isSecret(f) {
			v = strings.Repeat("•", len([]rune(v)))
		}
		values[f] = v
	}

	var msg *Message
	if c.message != nil {
		m := *c.message
		msg = &m
	}

	var tok *models.AuthToken
	if c.token != nil {
		t := *c.token
		tok = &t
	}

	var accs []models.Account
	if c.accounts != nil {
		accs = make([]models.Account, len(c.accounts))
		copy(accs, c.accounts)
	}

	return Snapshot{
		Mode:     c.mode,
		State:    c.state,
		Values:   values,
		Errors:   copyErrors(c.errs),
		Message:  msg,
		Provider: c.provider,
		Accounts: accs,
		Token:    tok,
	}
}

func copyErrors(in FieldErrors) FieldErrors {
	out := make(FieldErrors, len(in))
	for f, m := range in {
		out[f] = m
	}

	return out
}

// withTimeout навешивает таймаут, если он задан и у ctx ещё нет более раннего дедлайна.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, d)
}
