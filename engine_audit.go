package otpgate

import (
	"context"
	"time"
)

const (
	auditEventRegistrationRequest = "registration_otp_request"
	auditEventRegistrationConfirm = "registration_otp_confirm"
	auditEventResetRequest        = "reset_otp_request"
	auditEventResetConfirm        = "reset_otp_confirm"
	auditEventOTPIssued           = "otp_issued"
	auditEventOTPSendFailure      = "otp_send_failure"
	auditEventSpamLockTriggered   = "spam_lock_triggered"
	auditEventGlobalLockTriggered = "global_lock_triggered"
	auditEventVerifyLockTriggered = "verification_lock_triggered"
	auditEventGlobalLockSet       = "global_lock_set"
	auditEventGlobalLockCleared   = "global_lock_cleared"
)

// emitAudit queues one event on the dispatcher. metadata is a constructor
// so callers pay nothing when audit is disabled.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	err error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Identity:  identity,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
