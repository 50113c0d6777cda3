package otpgate

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricOTPIssued counts successfully generated, sent, and stored codes.
	MetricOTPIssued MetricID = iota
	// MetricOTPSendFailure counts issuance attempts aborted by the sender.
	MetricOTPSendFailure
	// MetricGlobalLockHit counts requests denied by the global lock gate.
	MetricGlobalLockHit
	// MetricSpamLockHit counts requests denied by the spam lock gate.
	MetricSpamLockHit
	// MetricCooldownHit counts requests denied by the cooldown gate.
	MetricCooldownHit
	// MetricSpamLockTriggered counts identities newly spam-locked.
	MetricSpamLockTriggered
	// MetricGlobalLockTriggered counts global circuit-breaker trips.
	MetricGlobalLockTriggered
	// MetricVerifySuccess counts codes verified correctly.
	MetricVerifySuccess
	// MetricVerifyIncorrect counts wrong-code submissions within budget.
	MetricVerifyIncorrect
	// MetricVerifyExpired counts verifications against an absent record.
	MetricVerifyExpired
	// MetricVerifyLocked counts attempt-exhaustion lockouts.
	MetricVerifyLocked
	// MetricRegistrationRequest counts accepted registration OTP requests.
	MetricRegistrationRequest
	// MetricRegistrationDuplicate counts registrations rejected for an
	// existing identity.
	MetricRegistrationDuplicate
	// MetricResetRequest counts accepted password-reset OTP requests.
	MetricResetRequest
	// MetricResetUnknownIdentity counts reset requests for unknown identities.
	MetricResetUnknownIdentity
	// MetricResetConfirmSuccess counts successful reset confirmations.
	MetricResetConfirmSuccess
	// MetricVerifyLatency is the verification latency histogram.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// Counters get a cache line each so concurrent increments of different
// metrics never false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters and an optional latency histogram.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether the instance records anything at all.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only [MetricVerifyLatency] carries a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricVerifyLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
