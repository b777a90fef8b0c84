package game

import "sync"

// MockFeedback implements Feedback for testing.
// Behavior can be customized via function fields; every invocation is
// recorded for verification.
type MockFeedback struct {
	// SpeakFunc is called by Speak. If nil, Speak returns nil.
	SpeakFunc func(text string) error

	// PlaySoundFunc is called by PlaySound. If nil, PlaySound returns nil.
	PlaySoundFunc func(clip Clip) error

	// Rotate180Func is called by Rotate180. If nil, Rotate180 returns nil.
	Rotate180Func func() error

	mu    sync.Mutex
	calls []FeedbackCall
}

// FeedbackCall records one feedback invocation.
type FeedbackCall struct {
	Action string // "speak", "sound", "rotate"
	Arg    string // spoken text or clip name
}

// Speak records the call and runs SpeakFunc.
func (m *MockFeedback) Speak(text string) error {
	m.record("speak", text)
	if m.SpeakFunc != nil {
		return m.SpeakFunc(text)
	}
	return nil
}

// PlaySound records the call and runs PlaySoundFunc.
func (m *MockFeedback) PlaySound(clip Clip) error {
	m.record("sound", string(clip))
	if m.PlaySoundFunc != nil {
		return m.PlaySoundFunc(clip)
	}
	return nil
}

// Rotate180 records the call and runs Rotate180Func.
func (m *MockFeedback) Rotate180() error {
	m.record("rotate", "")
	if m.Rotate180Func != nil {
		return m.Rotate180Func()
	}
	return nil
}

func (m *MockFeedback) record(action, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, FeedbackCall{Action: action, Arg: arg})
}

// Calls returns all recorded invocations in order.
func (m *MockFeedback) Calls() []FeedbackCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FeedbackCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times the given action was invoked.
func (m *MockFeedback) CallCount(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Action == action {
			n++
		}
	}
	return n
}

// Sounds returns the clip names played, in order.
func (m *MockFeedback) Sounds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.Action == "sound" {
			out = append(out, c.Arg)
		}
	}
	return out
}

// Verify MockFeedback implements Feedback at compile time.
var _ Feedback = (*MockFeedback)(nil)
