// Package ratelimit counts requests per client in fixed one-minute windows.
// Redis backs the counters when configured so every replica shares them;
// otherwise they live in process memory.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether one more request from key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Memory is an in-process fixed-window counter.
type Memory struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewMemory creates a limiter allowing limit requests per period.
func NewMemory(limit int, period time.Duration) *Memory {
	return &Memory{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.clients[key]
	if !ok || now.Sub(w.start) >= m.period {
		m.clients[key] = &window{start: now, count: 1}
		return true, nil
	}
	if w.count >= m.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// Sweep drops windows that ended before now.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, w := range m.clients {
		if now.Sub(w.start) >= m.period {
			delete(m.clients, key)
		}
	}
}

// Run sweeps every interval until ctx is cancelled.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Redis keeps one counter per client per window; keys expire with the window.
type Redis struct {
	rdb    redis.Cmdable
	limit  int
	period time.Duration
	prefix string
	now    func() time.Time
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(rdb redis.Cmdable, limit int, period time.Duration) *Redis {
	return &Redis{rdb: rdb, limit: limit, period: period, prefix: "civicdesk:ratelimit", now: time.Now}
}

func (r *Redis) windowKey(key string) string {
	return fmt.Sprintf("%s:%s:%d", r.prefix, key, r.now().Truncate(r.period).Unix())
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := r.windowKey(key)
	var incr *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, r.period)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(r.limit), nil
}

// Fallback consults primary and switches to secondary for any request where
// primary fails, so a Redis outage degrades to per-process limits instead of
// rejecting traffic.
type Fallback struct {
	primary   Limiter
	secondary Limiter
	logger    *zap.SugaredLogger
}

func NewFallback(primary, secondary Limiter, logger *zap.SugaredLogger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := f.primary.Allow(ctx, key)
	if err == nil {
		return ok, nil
	}
	f.logger.Warnw("Primary rate limiter failed, using in-memory counters", "error", err)
	return f.secondary.Allow(ctx, key)
}
