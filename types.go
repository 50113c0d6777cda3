package otpgate

import "context"

// Sender delivers a templated notification to a recipient. Implementations
// wrap whatever mail (or SMS) transport the host application uses.
//
// Send returns (false, nil) or a non-nil error when delivery failed; the
// engine treats both the same way and aborts issuance without writing any
// store state. The engine never retries; retry policy belongs to the
// implementation or the caller.
type Sender interface {
	Send(ctx context.Context, recipient, subject, template string, vars map[string]string) (bool, error)
}

// IdentityRecord is the minimal account view the engine needs: the identity
// key itself and a display name for notification templates.
type IdentityRecord struct {
	Identity    string
	DisplayName string
}

// IdentityProvider answers existence checks against the host application's
// identity store. Lookup must return [ErrIdentityNotFound] (possibly
// wrapped) when no account exists for the identity; any other error is
// treated as an infrastructure failure.
type IdentityProvider interface {
	Lookup(ctx context.Context, identity string) (IdentityRecord, error)
}

// SenderFunc adapts a function to the [Sender] interface.
type SenderFunc func(ctx context.Context, recipient, subject, template string, vars map[string]string) (bool, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, recipient, subject, template string, vars map[string]string) (bool, error) {
	return f(ctx, recipient, subject, template, vars)
}
