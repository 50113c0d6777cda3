package otpgate

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// requestGuard gates OTP issuance on the lock state already present in
// Redis. It is a pure read: all three (optionally four) gates are
// independent AND conditions, checked broadest first so the caller sees the
// most severe active restriction.
type requestGuard struct {
	redis  *redis.Client
	config OTPConfig
}

func newRequestGuard(redisClient *redis.Client, cfg OTPConfig) *requestGuard {
	return &requestGuard{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckRestrictions returns nil when issuance is allowed, or the policy
// denial for the first active restriction: global lock, spam lock, then
// cooldown. It performs no writes.
func (g *requestGuard) CheckRestrictions(ctx context.Context, identity string) error {
	locked, err := g.flagPresent(ctx, globalLockKey)
	if err != nil {
		return err
	}
	if locked {
		return ErrGlobalLock
	}

	locked, err = g.flagPresent(ctx, spamLockKey(identity))
	if err != nil {
		return err
	}
	if locked {
		return ErrSpamLock
	}

	locked, err = g.flagPresent(ctx, cooldownKey(identity))
	if err != nil {
		return err
	}
	if locked {
		return ErrCooldown
	}

	if g.config.EnforceVerificationLock {
		locked, err = g.flagPresent(ctx, verificationLockKey(identity))
		if err != nil {
			return err
		}
		if locked {
			return ErrVerificationLock
		}
	}

	return nil
}

// A flag blocks by mere presence; the stored value is irrelevant.
func (g *requestGuard) flagPresent(ctx context.Context, key string) (bool, error) {
	if _, err := g.redis.Get(ctx, key).Result(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}
