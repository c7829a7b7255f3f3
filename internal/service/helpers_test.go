package service

import (
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/auth-flow/internal/config"
	"github.com/pribylovaa/auth-flow/internal/storage/memory"
	"github.com/pribylovaa/auth-flow/mocks"
)

// fakeClock — управляемые часы для детерминированных сроков действия.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 15, 9, 26, 535_000_000, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		Secret:   "unit-secret",
		TokenTTL: time.Hour,
		Issuer:   "auth-flow",
		Audience: []string{"web"},
	}
}

// newSvc — сервис поверх настоящего in-memory реестра и управляемых часов.
func newSvc(t *testing.T, opts ...Option) (*Service, *memory.Registry, *fakeClock) {
	t.Helper()
	reg := memory.New()
	clk := newFakeClock()
	opts = append([]Option{WithClock(clk.Now)}, opts...)
	return New(reg, testCfg(), opts...), reg, clk
}

// newMockedSvc — сервис поверх gomock-реестра для проверки ошибочных веток.
func newMockedSvc(t *testing.T) (*Service, *mocks.MockRegistry, *fakeClock) {
	t.Helper()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	clk := newFakeClock()
	return New(reg, testCfg(), WithClock(clk.Now)), reg, clk
}
