package otpgate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type sentMail struct {
	Recipient string
	Subject   string
	Template  string
	Vars      map[string]string
}

type mockSender struct {
	mu      sync.Mutex
	sent    []sentMail
	failure bool
	err     error
}

func (m *mockSender) Send(_ context.Context, recipient, subject, template string, vars map[string]string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}
	if m.failure {
		return false, nil
	}

	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	m.sent = append(m.sent, sentMail{
		Recipient: recipient,
		Subject:   subject,
		Template:  template,
		Vars:      copied,
	})
	return true, nil
}

func (m *mockSender) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockSender) lastSent(t *testing.T) sentMail {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return m.sent[len(m.sent)-1]
}

// lastOTP returns the code carried by the most recent dispatch, which is the
// only code Redis still accepts for the identity.
func (m *mockSender) lastOTP(t *testing.T) string {
	t.Helper()

	otp, ok := m.lastSent(t).Vars["otp"]
	if !ok || otp == "" {
		t.Fatal("sent mail carried no otp var")
	}
	return otp
}

type mockIdentityProvider struct {
	mu        sync.Mutex
	records   map[string]IdentityRecord
	lookupErr error

	lookupCalls int
}

func newMockIdentityProvider(records ...IdentityRecord) *mockIdentityProvider {
	p := &mockIdentityProvider{
		records: make(map[string]IdentityRecord),
	}
	for _, rec := range records {
		p.records[rec.Identity] = rec
	}
	return p
}

func (p *mockIdentityProvider) Lookup(_ context.Context, identity string) (IdentityRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lookupCalls++

	if p.lookupErr != nil {
		return IdentityRecord{}, p.lookupErr
	}

	rec, ok := p.records[identity]
	if !ok {
		return IdentityRecord{}, ErrIdentityNotFound
	}
	return rec, nil
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestEngine(t *testing.T, rdb *redis.Client, sender Sender, provider IdentityProvider, cfg Config) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSender(sender).
		WithIdentityProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func mustBeSentinel(t *testing.T, err, want error) {
	t.Helper()

	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}
