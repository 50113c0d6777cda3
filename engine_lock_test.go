package otpgate

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestOperatorGlobalLockRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, &mockSender{}, newMockIdentityProvider(), DefaultConfig())
	ctx := context.Background()

	active, err := engine.GlobalLockActive(ctx)
	if err != nil {
		t.Fatalf("GlobalLockActive failed: %v", err)
	}
	if active {
		t.Fatal("lock active on fresh keyspace")
	}

	if err := engine.SetGlobalLock(ctx); err != nil {
		t.Fatalf("SetGlobalLock failed: %v", err)
	}

	active, err = engine.GlobalLockActive(ctx)
	if err != nil {
		t.Fatalf("GlobalLockActive failed: %v", err)
	}
	if !active {
		t.Fatal("lock not reported active")
	}
	if ttl := mr.TTL(globalLockKey); ttl != 30*time.Minute {
		t.Fatalf("expected 30m TTL, got %v", ttl)
	}

	err = engine.RequestRegistration(ctx, "a@x.com", "Alice")
	mustBeSentinel(t, err, ErrGlobalLock)
	if err.Error() != "OTP requests are temporarily locked. Please try again after 30 minutes." {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if err := engine.ClearGlobalLock(ctx); err != nil {
		t.Fatalf("ClearGlobalLock failed: %v", err)
	}
	if err := engine.RequestRegistration(ctx, "a@x.com", "Alice"); err != nil {
		t.Fatalf("request after clear failed: %v", err)
	}
}

func TestGlobalLockTripsAcrossIdentities(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	sender := &mockSender{}
	engine := newTestEngine(t, rdb, sender, newMockIdentityProvider(), DefaultConfig())
	ctx := context.Background()

	// Spam-lock eleven distinct identities. Each takes two accepted requests
	// and a third that trips its lock; the eleventh pushes the census past
	// the global threshold of ten.
	for i := 0; i < 11; i++ {
		identity := fmt.Sprintf("u%d@x.com", i)
		for j := 0; j < 2; j++ {
			if err := engine.RequestRegistration(ctx, identity, "U"); err != nil {
				t.Fatalf("identity %s request %d failed: %v", identity, j+1, err)
			}
			mr.FastForward(time.Minute + time.Second)
		}
		mustBeSentinel(t, engine.RequestRegistration(ctx, identity, "U"), ErrSpamLock)

		locked, err := engine.GlobalLockActive(ctx)
		if err != nil {
			t.Fatalf("GlobalLockActive failed: %v", err)
		}
		if want := i == 10; locked != want {
			t.Fatalf("after %d spam-locked identities, global lock = %v", i+1, locked)
		}
	}

	// A completely fresh identity is now collateral damage.
	mustBeSentinel(t, engine.RequestRegistration(ctx, "innocent@x.com", "I"), ErrGlobalLock)

	// The breaker expires on its own; the census does not.
	mr.FastForward(30*time.Minute + time.Second)
	if err := engine.RequestRegistration(ctx, "innocent@x.com", "I"); err != nil {
		t.Fatalf("request after lock expiry failed: %v", err)
	}
	if got, _ := mr.Get(globalSpamCountKey); got != "11" {
		t.Fatalf("expected census 11, got %q", got)
	}
}

func TestClearGlobalLockLeavesCensusForOperator(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, &mockSender{}, newMockIdentityProvider(), DefaultConfig())
	ctx := context.Background()

	mr.Set(globalSpamCountKey, "12")
	if err := engine.SetGlobalLock(ctx); err != nil {
		t.Fatalf("SetGlobalLock failed: %v", err)
	}
	if err := engine.ClearGlobalLock(ctx); err != nil {
		t.Fatalf("ClearGlobalLock failed: %v", err)
	}

	if got, _ := mr.Get(globalSpamCountKey); got != "12" {
		t.Fatalf("census mutated by ClearGlobalLock: %q", got)
	}
}
