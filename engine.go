package otpgate

import (
	"regexp"

	"github.com/redis/go-redis/v9"
)

// Engine is the OTP lifecycle and abuse-control engine. Construct it with
// [Builder.Build]; after that all methods are safe for concurrent use.
//
// Engine keeps no per-identity state in process. Every decision is made
// against Redis, so any number of instances can serve the same identity
// population without coordinating beyond the shared keyspace.
type Engine struct {
	config     Config
	redis      *redis.Client
	guard      *requestGuard
	throttle   *requestThrottle
	issuer     *otpIssuer
	verifier   *otpVerifier
	tickets    *resetTicketManager
	identities IdentityProvider
	sender     Sender
	audit      *auditDispatcher
	metrics    *Metrics
}

// The same permissive shape the rest of the platform validates against.
var identityPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validIdentity(identity string) bool {
	return identityPattern.MatchString(identity)
}

// Close flushes and stops the audit dispatcher. The Redis client is owned
// by the caller and is not closed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil &&
		e.guard != nil &&
		e.throttle != nil &&
		e.issuer != nil &&
		e.verifier != nil &&
		e.identities != nil
}
