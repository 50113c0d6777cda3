package otpgate

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mrraghavs/otpgate/internal"
)

// Issued codes are fixed-width four-digit numerics, matching what every
// existing mail template renders.
const (
	otpCodeMin = 1000
	otpCodeMax = 9999
)

// otpIssuer generates a code, hands it to the notification collaborator,
// and only then writes the OTP record and cooldown flag. The send comes
// first so a delivery failure leaves no "code expected but never sent"
// state behind; the two writes afterward have no rollback.
type otpIssuer struct {
	redis  *redis.Client
	sender Sender
	config OTPConfig
	mail   MailConfig
}

func newOTPIssuer(redisClient *redis.Client, sender Sender, cfg OTPConfig, mail MailConfig) *otpIssuer {
	return &otpIssuer{
		redis:  redisClient,
		sender: sender,
		config: cfg,
		mail:   mail,
	}
}

// Issue generates and dispatches a one-time code for the identity, then
// stores it with the validity TTL and arms the cooldown flag. A new code
// overwrites any live one for the same identity.
func (i *otpIssuer) Issue(ctx context.Context, identity, displayName, template string) error {
	code, err := internal.NewNumericCode(otpCodeMin, otpCodeMax)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	sent, err := i.sender.Send(ctx, identity, i.mail.Subject, template, map[string]string{
		"name": displayName,
		"otp":  code,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if !sent {
		return ErrSendFailed
	}

	if err := i.redis.Set(ctx, otpKey(identity), code, i.config.ValidityTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := i.redis.Set(ctx, cooldownKey(identity), "true", i.config.CooldownTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}
