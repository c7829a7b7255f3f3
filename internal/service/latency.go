package service

import (
	"context"
	"math/rand/v2"
	"time"
)

// Latency — внедряемая задержка, имитирующая сетевой вызов.
// Wait блокируется до истечения задержки или отмены ctx и возвращает ctx.Err().
type Latency interface {
	Wait(ctx context.Context) error
}

// NoLatency завершается сразу (если ctx ещё не отменён).
type NoLatency struct{}

// Wait возвращает ошибку только для уже отменённого контекста.
func (NoLatency) Wait(ctx context.Context) error {
	return ctx.Err()
}

// SimulatedLatency ждёт случайное время в диапазоне [Min, Max].
type SimulatedLatency struct {
	Min time.Duration
	Max time.Duration
}

// Wait ждёт случайную задержку с учётом отмены ctx.
func (l SimulatedLatency) Wait(ctx context.Context) error {
	d := l.pick()
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l SimulatedLatency) pick() time.Duration {
	if l.Max <= l.Min {
		return l.Min
	}

	return l.Min + rand.N(l.Max-l.Min+1)
}
