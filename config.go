package otpgate

import (
	"errors"
	"time"
)

// Config defines the engine's tuning parameters.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	OTP         OTPConfig
	Mail        MailConfig
	ResetTicket ResetTicketConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig holds every TTL and threshold of the issuance/verification state
// machine. The defaults reproduce the deployed key lifetimes exactly; change
// them only if every instance sharing the Redis keyspace changes together.
type OTPConfig struct {
	// ValidityTTL is the lifetime of an issued code (`otp:{identity}`).
	ValidityTTL time.Duration
	// CooldownTTL is the minimum interval between two accepted issuance
	// requests for one identity (`otp_cooldown:{identity}`).
	CooldownTTL time.Duration
	// RequestWindow is the sliding window over which accepted requests are
	// counted (`otp_requests:{identity}`). The TTL is refreshed on every
	// accepted request, so the window measures time since the last accepted
	// request, not a fixed calendar interval.
	RequestWindow time.Duration
	// RequestThreshold is the number of accepted requests tolerated inside
	// the window. The request that would exceed it is rejected and trips the
	// spam lock.
	RequestThreshold int
	// SpamLockTTL is the per-identity penalty window
	// (`otp_spam_lock:{identity}`).
	SpamLockTTL time.Duration
	// GlobalSpamThreshold is the number of distinct spam-locked identities
	// (`spam_count`) tolerated before the global lock trips.
	GlobalSpamThreshold int
	// GlobalLockTTL is the platform-wide penalty window (`otp_lock`).
	GlobalLockTTL time.Duration
	// MaxFailedAttempts is the wrong-code budget per issued OTP. Reaching it
	// deletes the OTP and locks the identity out of verification.
	MaxFailedAttempts int
	// FailedAttemptTTL is the lifetime of the wrong-code counter
	// (`otp_attempts:{identity}`), refreshed on every failure.
	FailedAttemptTTL time.Duration
	// VerificationLockTTL is the lockout window after attempt exhaustion
	// (`otp_lock:{identity}`).
	VerificationLockTTL time.Duration
	// EnforceVerificationLock adds the verification lockout as a fourth
	// issuance gate. The deployed system writes the flag but never consults
	// it on issuance; leave this false for behavioral compatibility.
	EnforceVerificationLock bool
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig names the notification subject and templates. Template names
// are opaque to the engine and resolved by the [Sender].
type MailConfig struct {
	Subject              string
	RegistrationTemplate string
	ResetTemplate        string
}

/*
====================================
RESET TICKET CONFIG
====================================
*/

// ResetTicketConfig controls the signed proof returned by
// [Engine.ConfirmPasswordReset]. When disabled, confirmation still verifies
// the code but returns no ticket.
type ResetTicketConfig struct {
	Enabled    bool
	TTL        time.Duration
	SigningKey []byte
	Issuer     string
}

// AuditConfig defines the audit dispatcher's buffering behavior.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by otpgate APIs.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the deployed production defaults: 5m code validity,
// 1m cooldown, a sliding 1h window tolerating 2 requests, 1h spam lock,
// global lock after 10 spam-locked identities, 3 tolerated wrong attempts,
// and 30m lockout windows.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			ValidityTTL:             5 * time.Minute,
			CooldownTTL:             time.Minute,
			RequestWindow:           time.Hour,
			RequestThreshold:        2,
			SpamLockTTL:             time.Hour,
			GlobalSpamThreshold:     10,
			GlobalLockTTL:           30 * time.Minute,
			MaxFailedAttempts:       3,
			FailedAttemptTTL:        5 * time.Minute,
			VerificationLockTTL:     30 * time.Minute,
			EnforceVerificationLock: false,
		},
		Mail: MailConfig{
			Subject:              "Verify your email",
			RegistrationTemplate: "user-activation-mail",
			ResetTemplate:        "forgot-password-user-mail",
		},
		ResetTicket: ResetTicketConfig{
			Enabled: false,
			TTL:     10 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks the configuration for internal consistency.
//
// Validate may return an error when input validation fails.
func (c Config) Validate() error {
	if c.OTP.ValidityTTL <= 0 {
		return errors.New("OTP ValidityTTL must be > 0")
	}
	if c.OTP.CooldownTTL <= 0 {
		return errors.New("OTP CooldownTTL must be > 0")
	}
	if c.OTP.RequestWindow <= 0 {
		return errors.New("OTP RequestWindow must be > 0")
	}
	if c.OTP.RequestThreshold <= 0 {
		return errors.New("OTP RequestThreshold must be > 0")
	}
	if c.OTP.SpamLockTTL <= 0 {
		return errors.New("OTP SpamLockTTL must be > 0")
	}
	if c.OTP.GlobalSpamThreshold <= 0 {
		return errors.New("OTP GlobalSpamThreshold must be > 0")
	}
	if c.OTP.GlobalLockTTL <= 0 {
		return errors.New("OTP GlobalLockTTL must be > 0")
	}
	if c.OTP.MaxFailedAttempts <= 0 {
		return errors.New("OTP MaxFailedAttempts must be > 0")
	}
	if c.OTP.FailedAttemptTTL <= 0 {
		return errors.New("OTP FailedAttemptTTL must be > 0")
	}
	if c.OTP.VerificationLockTTL <= 0 {
		return errors.New("OTP VerificationLockTTL must be > 0")
	}

	if c.Mail.Subject == "" {
		return errors.New("Mail Subject is required")
	}
	if c.Mail.RegistrationTemplate == "" {
		return errors.New("Mail RegistrationTemplate is required")
	}
	if c.Mail.ResetTemplate == "" {
		return errors.New("Mail ResetTemplate is required")
	}

	if c.ResetTicket.Enabled {
		if len(c.ResetTicket.SigningKey) < 32 {
			return errors.New("ResetTicket SigningKey must be >= 32 bytes when enabled")
		}
		if c.ResetTicket.TTL <= 0 {
			return errors.New("ResetTicket TTL must be > 0 when enabled")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.ResetTicket.SigningKey = cloneBytes(cfg.ResetTicket.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
