package otpgate

import (
	"context"
	"errors"
)

// runIssueChain is the shared Guard → Throttle → Issuer sequence behind
// registration and password reset. Each step can veto; the first denial is
// surfaced verbatim and short-circuits the rest. The three steps read and
// write Redis independently, so two concurrent calls for one identity can
// both pass the checks; the quota is best-effort.
func (e *Engine) runIssueChain(ctx context.Context, identity, displayName, template, requestEvent string) error {
	if err := e.guard.CheckRestrictions(ctx, identity); err != nil {
		switch {
		case errors.Is(err, ErrGlobalLock):
			e.metricInc(MetricGlobalLockHit)
		case errors.Is(err, ErrSpamLock):
			e.metricInc(MetricSpamLockHit)
		case errors.Is(err, ErrCooldown):
			e.metricInc(MetricCooldownHit)
		}
		e.emitAudit(ctx, requestEvent, false, identity, err, nil)
		return err
	}

	esc, err := e.throttle.Track(ctx, identity)
	if esc.spamLocked {
		e.metricInc(MetricSpamLockTriggered)
		e.emitAudit(ctx, auditEventSpamLockTriggered, false, identity, nil, nil)
	}
	if esc.globalLocked {
		e.metricInc(MetricGlobalLockTriggered)
		e.emitAudit(ctx, auditEventGlobalLockTriggered, false, identity, nil, nil)
	}
	if err != nil {
		e.emitAudit(ctx, requestEvent, false, identity, err, nil)
		return err
	}

	if err := e.issuer.Issue(ctx, identity, displayName, template); err != nil {
		if errors.Is(err, ErrSendFailed) {
			e.metricInc(MetricOTPSendFailure)
			e.emitAudit(ctx, auditEventOTPSendFailure, false, identity, err, func() map[string]string {
				return map[string]string{
					"template": template,
				}
			})
		}
		e.emitAudit(ctx, requestEvent, false, identity, err, nil)
		return err
	}

	e.metricInc(MetricOTPIssued)
	e.emitAudit(ctx, auditEventOTPIssued, true, identity, nil, func() map[string]string {
		return map[string]string{
			"template": template,
		}
	})
	return nil
}
