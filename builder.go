package otpgate

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Configure it with the With* methods and
// call [Builder.Build] exactly once.
type Builder struct {
	config Config
	redis  *redis.Client

	sender     Sender
	identities IdentityProvider
	auditSink  AuditSink

	built bool
}

// New creates a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing all OTP state.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithSender sets the notification collaborator.
func (b *Builder) WithSender(sender Sender) *Builder {
	b.sender = sender
	return b
}

// WithIdentityProvider sets the identity-existence collaborator.
func (b *Builder) WithIdentityProvider(provider IdentityProvider) *Builder {
	b.identities = provider
	return b
}

// WithAuditSink sets the audit destination. Ignored unless
// [AuditConfig.Enabled] is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process metrics.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verification latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and dependencies and returns the
// assembled Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.sender == nil {
		return nil, errors.New("sender required")
	}
	if b.identities == nil {
		return nil, errors.New("identity provider required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		redis:      b.redis,
		guard:      newRequestGuard(b.redis, cfg.OTP),
		throttle:   newRequestThrottle(b.redis, cfg.OTP),
		issuer:     newOTPIssuer(b.redis, b.sender, cfg.OTP, cfg.Mail),
		verifier:   newOTPVerifier(b.redis, cfg.OTP),
		tickets:    newResetTicketManager(cfg.ResetTicket),
		identities: b.identities,
		sender:     b.sender,
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}
