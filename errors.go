package otpgate

import (
	"errors"
	"fmt"
)

// Policy denials. These carry the exact reason strings the deployed system
// has always returned to end users; callers may surface them verbatim.
var (
	// ErrGlobalLock is returned while the platform-wide OTP circuit breaker is tripped.
	ErrGlobalLock = errors.New("OTP requests are temporarily locked. Please try again after 30 minutes.")
	// ErrSpamLock is returned while an identity is spam-locked, and by the
	// throttle on the request that trips the lock.
	ErrSpamLock = errors.New("Too many OTP requests for this email. Please try again after 1 hour.")
	// ErrCooldown is returned while an identity's post-send cooldown is active.
	ErrCooldown = errors.New("Please wait 1 minute before requesting another OTP.")
	// ErrOTPExpired is returned when no OTP record exists for the identity.
	ErrOTPExpired = errors.New("OTP has expired or is invalid")
	// ErrVerificationLock is returned when a wrong code exhausts the attempt
	// budget and the identity gets locked out of verification.
	ErrVerificationLock = errors.New("Too many incorrect OTP attempts. OTP requests are temporarily locked. Please try again after 30 minutes.")
	// ErrIncorrectOTP is the errors.Is target for [IncorrectOTPError].
	ErrIncorrectOTP = errors.New("incorrect otp")
	// ErrIdentityExists rejects registration for an already-registered identity.
	ErrIdentityExists = errors.New("User with this email already exists")
	// ErrIdentityNotFound rejects a password reset for an unknown identity.
	ErrIdentityNotFound = errors.New("No user found with this email")
	// ErrInvalidIdentity rejects identities that are empty or not shaped like
	// an email address.
	ErrInvalidIdentity = errors.New("invalid email format")
)

// Infrastructure failures. These are unexpected, should be logged, and must
// not be surfaced verbatim to end users.
var (
	// ErrStoreUnavailable wraps any Redis transport or protocol failure.
	ErrStoreUnavailable = errors.New("otp store unavailable")
	// ErrSendFailed is returned when the notification collaborator reports
	// failure. No store state is mutated in that case.
	ErrSendFailed = errors.New("failed to send otp")
	// ErrEngineNotReady is returned when an Engine is used before its
	// dependencies were wired through [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrTicketDisabled is returned by reset-ticket operations when
	// [ResetTicketConfig.Enabled] is false.
	ErrTicketDisabled = errors.New("reset ticket disabled")
	// ErrTicketInvalid is returned for reset tickets that fail signature,
	// expiry, or claim checks.
	ErrTicketInvalid = errors.New("invalid reset ticket")
)

// IncorrectOTPError is the denial for a wrong code that has not yet exhausted
// the attempt budget. AttemptsLeft mirrors the stored failure counter and can
// reach zero on the last tolerated attempt.
type IncorrectOTPError struct {
	AttemptsLeft int
}

func (e *IncorrectOTPError) Error() string {
	return fmt.Sprintf("Incorrect OTP. You have %d attempts left.", e.AttemptsLeft)
}

// Is reports a match against [ErrIncorrectOTP] so callers can classify the
// denial without destructuring it.
func (e *IncorrectOTPError) Is(target error) bool {
	return target == ErrIncorrectOTP
}

// IsPolicyDenied reports whether err is an expected policy rejection (a
// lock, cooldown, quota, wrong code, or existence-check denial) rather than
// an infrastructure failure. Policy denials are user-facing and are not
// worth alerting on.
func IsPolicyDenied(err error) bool {
	switch {
	case errors.Is(err, ErrGlobalLock),
		errors.Is(err, ErrSpamLock),
		errors.Is(err, ErrCooldown),
		errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrVerificationLock),
		errors.Is(err, ErrIncorrectOTP),
		errors.Is(err, ErrIdentityExists),
		errors.Is(err, ErrIdentityNotFound),
		errors.Is(err, ErrInvalidIdentity):
		return true
	default:
		return false
	}
}
