package otpgate

import (
	"context"
	"testing"
	"time"
)

func testOTPConfig() OTPConfig {
	return defaultConfig().OTP
}

func TestGuardAllowsCleanIdentity(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	guard := newRequestGuard(rdb, testOTPConfig())

	if err := guard.CheckRestrictions(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("expected no restriction, got %v", err)
	}
}

func TestGuardGlobalLockDeniesEveryone(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	mr.Set(globalLockKey, "true")

	guard := newRequestGuard(rdb, testOTPConfig())

	for _, identity := range []string{"a@x.com", "b@x.com"} {
		mustBeSentinel(t, guard.CheckRestrictions(context.Background(), identity), ErrGlobalLock)
	}
}

func TestGuardSpamLockDeniesOnlyLockedIdentity(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	mr.Set(spamLockKey("a@x.com"), "true")

	guard := newRequestGuard(rdb, testOTPConfig())

	mustBeSentinel(t, guard.CheckRestrictions(context.Background(), "a@x.com"), ErrSpamLock)
	if err := guard.CheckRestrictions(context.Background(), "b@x.com"); err != nil {
		t.Fatalf("unrelated identity denied: %v", err)
	}
}

func TestGuardCooldownDenies(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	mr.Set(cooldownKey("a@x.com"), "true")

	guard := newRequestGuard(rdb, testOTPConfig())

	mustBeSentinel(t, guard.CheckRestrictions(context.Background(), "a@x.com"), ErrCooldown)
}

func TestGuardPrecedenceGlobalOverSpamOverCooldown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	mr.Set(globalLockKey, "true")
	mr.Set(spamLockKey("a@x.com"), "true")
	mr.Set(cooldownKey("a@x.com"), "true")

	guard := newRequestGuard(rdb, testOTPConfig())

	mustBeSentinel(t, guard.CheckRestrictions(context.Background(), "a@x.com"), ErrGlobalLock)

	mr.Del(globalLockKey)
	mustBeSentinel(t, guard.CheckRestrictions(context.Background(), "a@x.com"), ErrSpamLock)

	mr.Del(spamLockKey("a@x.com"))
	mustBeSentinel(t, guard.CheckRestrictions(context.Background(), "a@x.com"), ErrCooldown)
}

func TestGuardIgnoresVerificationLockByDefault(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	mr.Set(verificationLockKey("a@x.com"), "true")

	guard := newRequestGuard(rdb, testOTPConfig())

	if err := guard.CheckRestrictions(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("verification lock should not gate issuance by default, got %v", err)
	}
}

func TestGuardEnforcesVerificationLockWhenConfigured(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	mr.Set(verificationLockKey("a@x.com"), "true")

	cfg := testOTPConfig()
	cfg.EnforceVerificationLock = true
	guard := newRequestGuard(rdb, cfg)

	mustBeSentinel(t, guard.CheckRestrictions(context.Background(), "a@x.com"), ErrVerificationLock)
}

func TestGuardDenialClearsWhenFlagExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	mr.Set(cooldownKey("a@x.com"), "true")
	mr.SetTTL(cooldownKey("a@x.com"), time.Minute)

	guard := newRequestGuard(rdb, testOTPConfig())

	mustBeSentinel(t, guard.CheckRestrictions(context.Background(), "a@x.com"), ErrCooldown)

	mr.FastForward(time.Minute + time.Second)

	if err := guard.CheckRestrictions(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("expected cooldown to expire, got %v", err)
	}
}
