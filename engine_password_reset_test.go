package otpgate

import (
	"context"
	"testing"
	"time"
)

func resetTestConfig() Config {
	cfg := DefaultConfig()
	cfg.ResetTicket = ResetTicketConfig{
		Enabled:    true,
		TTL:        10 * time.Minute,
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "otpgate-test",
	}
	return cfg
}

func TestPasswordResetRoundTripWithTicket(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &mockSender{}
	provider := newMockIdentityProvider(IdentityRecord{Identity: "a@x.com", DisplayName: "Alice"})
	engine := newTestEngine(t, rdb, sender, provider, resetTestConfig())
	ctx := context.Background()

	if err := engine.RequestPasswordReset(ctx, "a@x.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	mail := sender.lastSent(t)
	if mail.Template != "forgot-password-user-mail" {
		t.Fatalf("wrong template %q", mail.Template)
	}
	if mail.Vars["name"] != "Alice" {
		t.Fatalf("expected stored display name, got %q", mail.Vars["name"])
	}

	ticket, err := engine.ConfirmPasswordReset(ctx, "a@x.com", sender.lastOTP(t))
	if err != nil {
		t.Fatalf("ConfirmPasswordReset failed: %v", err)
	}
	if ticket == "" {
		t.Fatal("expected non-empty reset ticket")
	}

	identity, err := engine.ValidateResetTicket(ticket)
	if err != nil {
		t.Fatalf("ValidateResetTicket failed: %v", err)
	}
	if identity != "a@x.com" {
		t.Fatalf("ticket resolves to %q", identity)
	}
}

func TestPasswordResetUnknownIdentityRejected(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &mockSender{}
	engine := newTestEngine(t, rdb, sender, newMockIdentityProvider(), DefaultConfig())

	err := engine.RequestPasswordReset(context.Background(), "ghost@x.com")
	mustBeSentinel(t, err, ErrIdentityNotFound)
	if err.Error() != "No user found with this email" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if sender.sentCount() != 0 {
		t.Fatal("mail sent for unknown identity")
	}
}

func TestPasswordResetConfirmWithoutTicketConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &mockSender{}
	provider := newMockIdentityProvider(IdentityRecord{Identity: "a@x.com", DisplayName: "Alice"})
	engine := newTestEngine(t, rdb, sender, provider, DefaultConfig())
	ctx := context.Background()

	if err := engine.RequestPasswordReset(ctx, "a@x.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	ticket, err := engine.ConfirmPasswordReset(ctx, "a@x.com", sender.lastOTP(t))
	if err != nil {
		t.Fatalf("ConfirmPasswordReset failed: %v", err)
	}
	if ticket != "" {
		t.Fatalf("expected empty ticket when disabled, got %q", ticket)
	}

	if _, err := engine.ValidateResetTicket("whatever"); err != ErrTicketDisabled {
		t.Fatalf("expected ErrTicketDisabled, got %v", err)
	}
}

func TestPasswordResetExpiredCode(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &mockSender{}
	provider := newMockIdentityProvider(IdentityRecord{Identity: "a@x.com", DisplayName: "Alice"})
	engine := newTestEngine(t, rdb, sender, provider, DefaultConfig())
	ctx := context.Background()

	if err := engine.RequestPasswordReset(ctx, "a@x.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	code := sender.lastOTP(t)

	mr.FastForward(5*time.Minute + time.Second)

	_, err := engine.ConfirmPasswordReset(ctx, "a@x.com", code)
	mustBeSentinel(t, err, ErrOTPExpired)
	if err.Error() != "OTP has expired or is invalid" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPasswordResetSharesAbuseStateWithRegistration(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &mockSender{}
	provider := newMockIdentityProvider(IdentityRecord{Identity: "a@x.com", DisplayName: "Alice"})
	engine := newTestEngine(t, rdb, sender, provider, DefaultConfig())
	ctx := context.Background()

	// Both flows share one cooldown and one request window per identity.
	if err := engine.RequestPasswordReset(ctx, "a@x.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	mustBeSentinel(t, engine.RequestPasswordReset(ctx, "a@x.com"), ErrCooldown)
}
