package speech

import (
	"context"
	"sync"
)

// Mock implements Provider for testing. Behavior can be customized via
// function fields; spoken texts are recorded for verification.
type Mock struct {
	// SayFunc is called by Say. If nil, Say returns nil.
	SayFunc func(ctx context.Context, text string) error

	// HealthFunc is called by Health. If nil, Health returns nil.
	HealthFunc func(ctx context.Context) error

	mu     sync.Mutex
	spoken []string
}

// Say records the text and runs SayFunc.
func (m *Mock) Say(ctx context.Context, text string) error {
	m.mu.Lock()
	m.spoken = append(m.spoken, text)
	m.mu.Unlock()
	if m.SayFunc != nil {
		return m.SayFunc(ctx, text)
	}
	return nil
}

// Health runs HealthFunc.
func (m *Mock) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }

// Spoken returns all recorded utterances in order.
func (m *Mock) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.spoken))
	copy(out, m.spoken)
	return out
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
