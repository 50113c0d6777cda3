package otpgate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RequestRegistration starts a signup: it rejects identities that already
// exist, runs the Guard → Throttle → Issuer chain, and dispatches the
// activation template. Policy denials come back as their sentinel errors
// with user-safe messages; anything else is an infrastructure failure.
func (e *Engine) RequestRegistration(ctx context.Context, identity, displayName string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if !validIdentity(identity) {
		e.emitAudit(ctx, auditEventRegistrationRequest, false, identity, ErrInvalidIdentity, nil)
		return ErrInvalidIdentity
	}

	_, err := e.identities.Lookup(ctx, identity)
	switch {
	case err == nil:
		e.metricInc(MetricRegistrationDuplicate)
		e.emitAudit(ctx, auditEventRegistrationRequest, false, identity, ErrIdentityExists, nil)
		return ErrIdentityExists
	case errors.Is(err, ErrIdentityNotFound):
		// Unregistered is exactly what signup wants.
	default:
		return fmt.Errorf("identity lookup: %w", err)
	}

	if err := e.runIssueChain(ctx, identity, displayName, e.config.Mail.RegistrationTemplate, auditEventRegistrationRequest); err != nil {
		return err
	}

	e.metricInc(MetricRegistrationRequest)
	e.emitAudit(ctx, auditEventRegistrationRequest, true, identity, nil, nil)
	return nil
}

// ConfirmRegistration checks a submitted signup code. On success the OTP
// record and failure counter are gone; the caller creates the account.
func (e *Engine) ConfirmRegistration(ctx context.Context, identity, code string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if !validIdentity(identity) {
		return ErrInvalidIdentity
	}

	start := time.Now()
	err := e.verifier.Verify(ctx, identity, code)
	e.observeVerify(start)
	e.recordVerifyOutcome(ctx, auditEventRegistrationConfirm, identity, err)
	return err
}

func (e *Engine) observeVerify(start time.Time) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))
}

// recordVerifyOutcome maps a verifier result onto metrics and audit once,
// for both the registration and reset confirm paths.
func (e *Engine) recordVerifyOutcome(ctx context.Context, event, identity string, err error) {
	switch {
	case err == nil:
		e.metricInc(MetricVerifySuccess)
		e.emitAudit(ctx, event, true, identity, nil, nil)
	case errors.Is(err, ErrOTPExpired):
		e.metricInc(MetricVerifyExpired)
		e.emitAudit(ctx, event, false, identity, err, nil)
	case errors.Is(err, ErrIncorrectOTP):
		e.metricInc(MetricVerifyIncorrect)
		e.emitAudit(ctx, event, false, identity, err, nil)
	case errors.Is(err, ErrVerificationLock):
		e.metricInc(MetricVerifyLocked)
		e.emitAudit(ctx, auditEventVerifyLockTriggered, false, identity, err, nil)
		e.emitAudit(ctx, event, false, identity, err, nil)
	default:
		e.emitAudit(ctx, event, false, identity, err, nil)
	}
}
