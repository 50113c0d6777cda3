package internaldefs

import (
	otpgate "github.com/mrraghavs/otpgate"
)

// CounterDef binds an engine counter to its exported name and help text.
type CounterDef struct {
	ID   otpgate.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine histogram to its exported name and help text.
type HistogramDef struct {
	ID   otpgate.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter the engine records, in export order.
var CounterDefs = []CounterDef{
	{ID: otpgate.MetricOTPIssued, Name: "otpgate_otp_issued_total", Help: "Codes generated, delivered, and stored."},
	{ID: otpgate.MetricOTPSendFailure, Name: "otpgate_otp_send_failure_total", Help: "Issuance attempts aborted by the delivery channel."},
	{ID: otpgate.MetricGlobalLockHit, Name: "otpgate_global_lock_hit_total", Help: "Requests denied by the platform-wide lock."},
	{ID: otpgate.MetricSpamLockHit, Name: "otpgate_spam_lock_hit_total", Help: "Requests denied by a per-identity spam lock."},
	{ID: otpgate.MetricCooldownHit, Name: "otpgate_cooldown_hit_total", Help: "Requests denied by the per-identity cooldown."},
	{ID: otpgate.MetricSpamLockTriggered, Name: "otpgate_spam_lock_triggered_total", Help: "Identities newly placed under a spam lock."},
	{ID: otpgate.MetricGlobalLockTriggered, Name: "otpgate_global_lock_triggered_total", Help: "Platform-wide lock trips."},
	{ID: otpgate.MetricVerifySuccess, Name: "otpgate_verify_success_total", Help: "Codes verified successfully."},
	{ID: otpgate.MetricVerifyIncorrect, Name: "otpgate_verify_incorrect_total", Help: "Wrong-code submissions within the attempt budget."},
	{ID: otpgate.MetricVerifyExpired, Name: "otpgate_verify_expired_total", Help: "Verifications against an expired or absent code."},
	{ID: otpgate.MetricVerifyLocked, Name: "otpgate_verify_locked_total", Help: "Verifications that exhausted the attempt budget."},
	{ID: otpgate.MetricRegistrationRequest, Name: "otpgate_registration_request_total", Help: "Accepted registration OTP requests."},
	{ID: otpgate.MetricRegistrationDuplicate, Name: "otpgate_registration_duplicate_total", Help: "Registration requests rejected for an existing identity."},
	{ID: otpgate.MetricResetRequest, Name: "otpgate_reset_request_total", Help: "Accepted password reset OTP requests."},
	{ID: otpgate.MetricResetUnknownIdentity, Name: "otpgate_reset_unknown_identity_total", Help: "Password reset requests for unknown identities."},
	{ID: otpgate.MetricResetConfirmSuccess, Name: "otpgate_reset_confirm_success_total", Help: "Successful password reset confirmations."},
}

// HistogramDefs lists every histogram the engine records.
var HistogramDefs = []HistogramDef{
	{ID: otpgate.MetricVerifyLatency, Name: "otpgate_verify_latency_seconds", Help: "Verification latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus style.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix holds name-safe forms of [HistogramBounds] for
// backends that cannot carry an le label.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// eight-bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms use.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
