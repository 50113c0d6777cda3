package otpgate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RequestPasswordReset starts a reset: the identity must already be
// registered, then the same Guard → Throttle → Issuer chain runs with the
// reset template. The notification is addressed with the display name held
// by the identity store.
func (e *Engine) RequestPasswordReset(ctx context.Context, identity string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if !validIdentity(identity) {
		e.emitAudit(ctx, auditEventResetRequest, false, identity, ErrInvalidIdentity, nil)
		return ErrInvalidIdentity
	}

	record, err := e.identities.Lookup(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			e.metricInc(MetricResetUnknownIdentity)
			e.emitAudit(ctx, auditEventResetRequest, false, identity, ErrIdentityNotFound, nil)
			return ErrIdentityNotFound
		}
		return fmt.Errorf("identity lookup: %w", err)
	}

	if err := e.runIssueChain(ctx, identity, record.DisplayName, e.config.Mail.ResetTemplate, auditEventResetRequest); err != nil {
		return err
	}

	e.metricInc(MetricResetRequest)
	e.emitAudit(ctx, auditEventResetRequest, true, identity, nil, nil)
	return nil
}

// ConfirmPasswordReset checks a submitted reset code. On success, when
// reset tickets are enabled, it returns a signed ticket the caller presents
// alongside the new credential; with tickets disabled the returned string
// is empty and the caller relies on its own session between the two steps.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, identity, code string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}
	if !validIdentity(identity) {
		return "", ErrInvalidIdentity
	}

	start := time.Now()
	err := e.verifier.Verify(ctx, identity, code)
	e.observeVerify(start)
	e.recordVerifyOutcome(ctx, auditEventResetConfirm, identity, err)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricResetConfirmSuccess)

	if e.tickets == nil {
		return "", nil
	}
	ticket, err := e.tickets.Mint(identity)
	if err != nil {
		return "", err
	}
	return ticket, nil
}

// ValidateResetTicket verifies a ticket minted by [Engine.ConfirmPasswordReset]
// and returns the identity it covers. Callers must still scope the actual
// credential mutation to that identity.
func (e *Engine) ValidateResetTicket(ticket string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.tickets == nil {
		return "", ErrTicketDisabled
	}
	return e.tickets.Validate(ticket)
}
