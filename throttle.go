package otpgate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// requestThrottle counts accepted issuance requests per identity and
// escalates sustained abuse to a per-identity spam lock, and from there to
// the global circuit breaker once enough distinct identities have been
// locked.
type requestThrottle struct {
	redis  *redis.Client
	config OTPConfig
}

// throttleEscalation reports which locks a Track call tripped, for audit
// and metrics purposes.
type throttleEscalation struct {
	spamLocked   bool
	globalLocked bool
}

func newRequestThrottle(redisClient *redis.Client, cfg OTPConfig) *requestThrottle {
	return &requestThrottle{
		redis:  redisClient,
		config: cfg,
	}
}

// Track records one issuance request for the identity. The request that
// would exceed [OTPConfig.RequestThreshold] inside the window is rejected
// with [ErrSpamLock]: it trips the spam lock, bumps the global spam census,
// and does not count toward a future window.
func (t *requestThrottle) Track(ctx context.Context, identity string) (throttleEscalation, error) {
	var esc throttleEscalation

	count, err := t.redis.Get(ctx, requestCountKey(identity)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return esc, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		count = 0
	}

	if count+1 > int64(t.config.RequestThreshold) {
		if err := t.redis.Set(ctx, spamLockKey(identity), "true", t.config.SpamLockTTL).Err(); err != nil {
			return esc, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		esc.spamLocked = true

		// spam_count is a monotonic census of spam-locked identities, not a
		// precise one: concurrent trips for one identity can double-count.
		spamCount, err := t.redis.Incr(ctx, globalSpamCountKey).Result()
		if err != nil {
			return esc, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if spamCount > int64(t.config.GlobalSpamThreshold) {
			if err := t.redis.Set(ctx, globalLockKey, "true", t.config.GlobalLockTTL).Err(); err != nil {
				return esc, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			esc.globalLocked = true
		}

		return esc, ErrSpamLock
	}

	// SET with a full TTL on every accepted request, not INCR+EXPIRE-once:
	// the window deliberately slides from the last accepted request.
	if err := t.redis.Set(ctx, requestCountKey(identity), strconv.FormatInt(count+1, 10), t.config.RequestWindow).Err(); err != nil {
		return esc, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return esc, nil
}
