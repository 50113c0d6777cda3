// Package otpgate implements the OTP issuance, verification, and abuse-control
// core of an email-based signup and password-reset flow, backed by a Redis
// instance with per-key TTLs.
//
// The engine layers four independent controls in front of OTP delivery:
// a per-identity cooldown, a sliding per-identity request window with
// spam-lock escalation, a global circuit breaker that trips after too many
// distinct identities get spam-locked, and a bounded-attempt verification
// protocol. All state lives in Redis under a fixed key namespace so that
// horizontally scaled instances never disagree about a counter or a lock.
//
// # Architecture boundaries
//
// otpgate is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([Sender], [IdentityProvider]), and value types.
// The HTTP layer, the identity database, and the mail transport are callers'
// concerns: the engine only asks "does this identity exist" and "send this
// template", and returns tagged outcomes the caller translates into responses.
//
// # Consistency contract
//
// Redis serializes individual key operations but the engine issues no
// multi-key transactions. The guard-check, throttle-increment, and issue
// steps are therefore racy under concurrent requests for one identity:
// throttling is best-effort, not an exact quota. Callers that need exact
// quotas need a locking layer this package deliberately does not provide.
package otpgate
