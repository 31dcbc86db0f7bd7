package modelstore

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limits bounds the concurrency and throughput of store traffic. A nil
// *Limits applies no limit.
type Limits struct {
	transferSem *semaphore.Weighted
	ioLimiter   *rate.Limiter
}

// NewLimits creates transfer limits. maxConcurrent <= 0 means unlimited
// concurrency; bytesPerSec <= 0 means unlimited throughput.
func NewLimits(maxConcurrent int64, bytesPerSec int64) *Limits {
	l := &Limits{}
	if maxConcurrent > 0 {
		l.transferSem = semaphore.NewWeighted(maxConcurrent)
	}
	if bytesPerSec > 0 {
		l.ioLimiter = rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec))
	}
	return l
}

func (l *Limits) acquire(ctx context.Context) error {
	if l == nil || l.transferSem == nil {
		return nil
	}
	return l.transferSem.Acquire(ctx, 1)
}

func (l *Limits) release() {
	if l == nil || l.transferSem == nil {
		return
	}
	l.transferSem.Release(1)
}

// waitIO blocks until the rate limiter allows the given number of bytes.
// Larger transfers are split into burst-sized waits.
func (l *Limits) waitIO(ctx context.Context, bytes int) error {
	if l == nil || l.ioLimiter == nil {
		return nil
	}
	burst := l.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := l.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryIO reports whether the limiter allows the given number of bytes right
// now without waiting.
func (l *Limits) TryIO(bytes int) bool {
	if l == nil || l.ioLimiter == nil {
		return true
	}
	return l.ioLimiter.AllowN(time.Now(), bytes)
}

// throttledStore decorates a Store with Limits.
type throttledStore struct {
	inner  Store
	limits *Limits
}

// Throttle wraps a store so every Put and Get first takes a transfer slot
// and then pays for its bytes against the throughput limit.
func Throttle(inner Store, limits *Limits) Store {
	if limits == nil {
		return inner
	}
	return &throttledStore{inner: inner, limits: limits}
}

func (s *throttledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.limits.acquire(ctx); err != nil {
		return err
	}
	defer s.limits.release()

	if err := s.limits.waitIO(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

func (s *throttledStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := s.limits.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limits.release()

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.limits.waitIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *throttledStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *throttledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
