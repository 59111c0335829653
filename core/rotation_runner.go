package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	defaultRotationLeadTime       = 5 * time.Minute
	defaultRotationMaxAttempts    = 3
	defaultRotationInitialBackoff = 500 * time.Millisecond
	defaultRotationMaxBackoff     = 10 * time.Second
	defaultRotationLockTTL        = 30 * time.Second
)

type LockHandle interface {
	Unlock(ctx context.Context) error
}

// RotationLocker serializes rotation attempts for a single credential so
// two sweepers do not refresh the same secret concurrently.
type RotationLocker interface {
	Acquire(ctx context.Context, credentialID string, ttl time.Duration) (LockHandle, error)
}

type BackoffScheduler interface {
	NextDelay(attempt int) time.Duration
}

type ExponentialBackoffScheduler struct {
	Initial time.Duration
	Max     time.Duration
}

func (s ExponentialBackoffScheduler) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := s.Initial
	if initial <= 0 {
		initial = defaultRotationInitialBackoff
	}
	max := s.Max
	if max <= 0 {
		max = defaultRotationMaxBackoff
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

type RotationRunResult struct {
	Attempts int
}

type RotationRunOptions struct {
	MaxAttempts int
	LockTTL     time.Duration
}

// RunRotationWithRetry rotates a tool group's user credential with bounded
// retry and exponential backoff. Unrecoverable failures (bad input, missing
// rows, revoked grants) stop immediately.
func (s *Service) RunRotationWithRetry(ctx context.Context, req RotateCredentialRequest, opts RotationRunOptions) (RotationRunResult, error) {
	if s == nil {
		return RotationRunResult{}, fmt.Errorf("core: service is nil")
	}
	toolGroupID := strings.TrimSpace(req.ToolGroupID)
	if toolGroupID == "" {
		return RotationRunResult{}, s.mapError(fmt.Errorf("core: tool group id is required"))
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = s.config.Rotation.MaxAttempts
	}
	if maxAttempts < 1 {
		maxAttempts = defaultRotationMaxAttempts
	}
	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = defaultRotationLockTTL
	}

	unlock := func() {}
	if s.rotationLocker != nil {
		lockHandle, lockErr := s.rotationLocker.Acquire(ctx, toolGroupID, lockTTL)
		if lockErr != nil {
			return RotationRunResult{}, s.mapError(lockErr)
		}
		unlock = func() {
			_ = lockHandle.Unlock(ctx)
		}
	}
	defer unlock()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		_, err := s.RotateUserCredential(ctx, req)
		if err == nil {
			return RotationRunResult{Attempts: attempt}, nil
		}
		lastErr = err

		if isUnrecoverableRotationError(err) || attempt == maxAttempts {
			return RotationRunResult{Attempts: attempt}, s.mapError(err)
		}

		delay := defaultRotationInitialBackoff
		if s.rotationBackoff != nil {
			delay = s.rotationBackoff.NextDelay(attempt)
		}
		if waitErr := waitWithContext(ctx, delay); waitErr != nil {
			return RotationRunResult{Attempts: attempt}, s.mapError(waitErr)
		}
	}

	return RotationRunResult{Attempts: maxAttempts}, s.mapError(lastErr)
}

func isUnrecoverableRotationError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryBadInput, goerrors.CategoryValidation, goerrors.CategoryNotFound, goerrors.CategoryAuth:
			return true
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "invalid refresh token") ||
		strings.Contains(msg, "reauthorization required")
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type MemoryRotationLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	nowFn func() time.Time
}

func NewMemoryRotationLocker() *MemoryRotationLocker {
	return &MemoryRotationLocker{
		locks: make(map[string]time.Time),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func (l *MemoryRotationLocker) Acquire(_ context.Context, credentialID string, ttl time.Duration) (LockHandle, error) {
	if l == nil {
		return nil, fmt.Errorf("core: rotation locker is not configured")
	}
	credentialID = strings.TrimSpace(credentialID)
	if credentialID == "" {
		return nil, fmt.Errorf("core: credential id is required for lock acquisition")
	}
	if ttl <= 0 {
		ttl = defaultRotationLockTTL
	}

	now := l.nowFn()
	l.mu.Lock()
	defer l.mu.Unlock()

	if until, ok := l.locks[credentialID]; ok && now.Before(until) {
		return nil, fmt.Errorf("core: rotation lock already held for credential %q", credentialID)
	}
	l.locks[credentialID] = now.Add(ttl)
	return &memoryLockHandle{locker: l, credentialID: credentialID}, nil
}

type memoryLockHandle struct {
	locker       *MemoryRotationLocker
	credentialID string
	once         sync.Once
}

func (h *memoryLockHandle) Unlock(_ context.Context) error {
	if h == nil || h.locker == nil {
		return nil
	}
	h.once.Do(func() {
		h.locker.mu.Lock()
		delete(h.locker.locks, h.credentialID)
		h.locker.mu.Unlock()
	})
	return nil
}
