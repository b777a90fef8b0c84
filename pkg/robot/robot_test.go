package robot

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-redlight/internal/clock"
)

// mockActuator records all velocity commands.
type mockActuator struct {
	mu    sync.Mutex
	calls []struct{ linear, angular float64 }
	err   error
}

func (m *mockActuator) SetVelocity(linear, angular float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, struct{ linear, angular float64 }{linear, angular})
	return m.err
}

func TestRotate180_CommandSequence(t *testing.T) {
	mock := &mockActuator{}
	fc := clock.NewFake(time.Unix(0, 0))
	speed := 0.5

	if err := Rotate180(fc, mock, speed); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	if len(mock.calls) != 2 {
		t.Fatalf("got %d velocity commands, want 2 (start, stop)", len(mock.calls))
	}
	if mock.calls[0].angular != 0.5 || mock.calls[0].linear != 0 {
		t.Errorf("start command = %+v, want angular=0.5 linear=0", mock.calls[0])
	}
	if mock.calls[1].angular != 0 || mock.calls[1].linear != 0 {
		t.Errorf("stop command = %+v, want zero velocity", mock.calls[1])
	}

	// Open-loop hold: pi / speed seconds.
	want := time.Duration(math.Pi / speed * float64(time.Second))
	if got := fc.Now().Sub(time.Unix(0, 0)); got != want {
		t.Errorf("hold duration = %v, want %v", got, want)
	}
}

func TestRotate180_InvalidSpeed(t *testing.T) {
	mock := &mockActuator{}
	if err := Rotate180(clock.NewFake(time.Unix(0, 0)), mock, 0); err == nil {
		t.Error("zero speed must be rejected")
	}
	if len(mock.calls) != 0 {
		t.Error("no commands should be sent for an invalid speed")
	}
}

func TestRotate180_StartFailure(t *testing.T) {
	mock := &mockActuator{err: errors.New("daemon unreachable")}
	err := Rotate180(clock.NewFake(time.Unix(0, 0)), mock, 0.5)
	if err == nil {
		t.Error("actuator failure must surface to the caller")
	}
}
