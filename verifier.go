package otpgate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// otpVerifier compares a submitted code against the stored record and
// enforces the bounded-attempt protocol. The read-compare-write sequence is
// not atomic; concurrent submissions for one identity may each see the same
// failure count. That slack is accepted, same as on the issuance side.
type otpVerifier struct {
	redis  *redis.Client
	config OTPConfig
}

func newOTPVerifier(redisClient *redis.Client, cfg OTPConfig) *otpVerifier {
	return &otpVerifier{
		redis:  redisClient,
		config: cfg,
	}
}

// Verify resolves a submitted code to one of four outcomes: success (record
// and failure counter deleted), [ErrOTPExpired] when no record exists,
// [IncorrectOTPError] with the remaining budget, or [ErrVerificationLock]
// when a wrong code exhausts the budget (record and counter deleted, the
// identity locked for the verification penalty window).
func (v *otpVerifier) Verify(ctx context.Context, identity, code string) error {
	stored, err := v.redis.Get(ctx, otpKey(identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPExpired
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	failed, err := v.redis.Get(ctx, failedAttemptsKey(identity)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		failed = 0
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		if failed >= int64(v.config.MaxFailedAttempts) {
			if err := v.redis.Set(ctx, verificationLockKey(identity), "true", v.config.VerificationLockTTL).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			// The OTP and the counter go together: exhaustion consumes both.
			if err := v.redis.Del(ctx, otpKey(identity), failedAttemptsKey(identity)).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			return ErrVerificationLock
		}

		if err := v.redis.Set(ctx, failedAttemptsKey(identity), strconv.FormatInt(failed+1, 10), v.config.FailedAttemptTTL).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return &IncorrectOTPError{AttemptsLeft: v.config.MaxFailedAttempts - 1 - int(failed)}
	}

	if err := v.redis.Del(ctx, otpKey(identity), failedAttemptsKey(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
