package otpgate

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Operator-level controls for the global circuit breaker. The engine trips
// the lock automatically through the throttle; these exist so an on-call
// operator can trip or clear it by hand. The spam census (`spam_count`)
// is deliberately left alone by ClearGlobalLock: it has no TTL and only an
// explicit operator decision should reset it.

// SetGlobalLock trips the platform-wide OTP lock for the configured global
// penalty window.
func (e *Engine) SetGlobalLock(ctx context.Context) error {
	if e == nil || e.redis == nil {
		return ErrEngineNotReady
	}
	if err := e.redis.Set(ctx, globalLockKey, "true", e.config.OTP.GlobalLockTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.emitAudit(ctx, auditEventGlobalLockSet, true, "", nil, nil)
	return nil
}

// ClearGlobalLock removes the platform-wide OTP lock immediately.
func (e *Engine) ClearGlobalLock(ctx context.Context) error {
	if e == nil || e.redis == nil {
		return ErrEngineNotReady
	}
	if err := e.redis.Del(ctx, globalLockKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.emitAudit(ctx, auditEventGlobalLockCleared, true, "", nil, nil)
	return nil
}

// GlobalLockActive reports whether the platform-wide OTP lock is currently
// set.
func (e *Engine) GlobalLockActive(ctx context.Context) (bool, error) {
	if e == nil || e.redis == nil {
		return false, ErrEngineNotReady
	}
	if _, err := e.redis.Get(ctx, globalLockKey).Result(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}
