package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-redlight/internal/clock"
	"github.com/teslashibe/go-redlight/internal/log"
	"github.com/teslashibe/go-redlight/pkg/detect"
)

// Spoken scripts for the pre-game phases. Speech itself may block
// arbitrarily; the pauses between lines are fixed.
var instructionLines = []string{
	"Welcome to red light, green light.",
	"Walk toward me while the light is green.",
	"Freeze when the light turns red.",
	"If I catch you moving on red, you are out.",
	"Reach me before the clock runs out to win.",
}

var countdownLines = []string{"Three.", "Two.", "One."}

const (
	interLinePause = 500 * time.Millisecond
	countdownPause = time.Second
)

// Observer receives every phase change. Observers are invoked on the
// game goroutine while the machine lock is held: they must be
// non-blocking and must not call back into the Machine.
type Observer func(phase Phase, result Result, elapsed time.Duration)

// Config wires a Machine's collaborators.
type Config struct {
	Clock      clock.Clock
	Tracker    *detect.Tracker
	Scheduler  LightScheduler
	Feedback   Feedback
	TimeLimit  time.Duration
	TickPeriod time.Duration
}

// Machine is the central game controller. It owns the current phase,
// the result, and all timing state; the tick handler and the accessors
// serialize on one mutex so a detection consumer never observes a
// half-updated transition.
type Machine struct {
	clock      clock.Clock
	tracker    *detect.Tracker
	sched      LightScheduler
	feedback   Feedback
	timeLimit  time.Duration
	tickPeriod time.Duration

	mu        sync.Mutex
	phase     Phase
	result    Result
	gameStart time.Time
	elapsed   time.Duration
	deadline  time.Time
	observers []Observer
}

// New creates a Machine. Clock and Feedback default to the real clock
// and a no-op sink when nil.
func New(cfg Config) *Machine {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Feedback == nil {
		cfg.Feedback = NopFeedback{}
	}
	return &Machine{
		clock:      cfg.Clock,
		tracker:    cfg.Tracker,
		sched:      cfg.Scheduler,
		feedback:   cfg.Feedback,
		timeLimit:  cfg.TimeLimit,
		tickPeriod: cfg.TickPeriod,
		phase:      PhaseInstructions,
	}
}

// OnPhaseChange registers an observer. Must be called before Run.
func (m *Machine) OnPhaseChange(fn Observer) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Result returns the game outcome (ResultUnset until GameOver).
func (m *Machine) Result() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Elapsed returns time since game start, zero before Init has run.
func (m *Machine) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gameStart.IsZero() {
		return 0
	}
	if m.phase == PhaseGameOver {
		return m.elapsed
	}
	return m.clock.Now().Sub(m.gameStart)
}

// Run drives the game to completion. It blocks through the scripted
// instruction and countdown phases, then ticks at the configured
// cadence until the terminal phase is reached or ctx is cancelled.
func (m *Machine) Run(ctx context.Context) error {
	m.setPhase(PhaseInstructions)
	for _, line := range instructionLines {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.speak(line)
		m.clock.Sleep(interLinePause)
	}
	// Turn the robot's back to the player before the first light.
	m.invoke("rotate", m.feedback.Rotate180)

	m.setPhase(PhaseCountdown)
	for _, line := range countdownLines {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.speak(line)
		m.clock.Sleep(countdownPause)
	}

	m.setPhase(PhaseInit)

	ticker := time.NewTicker(m.tickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := m.Tick()
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// Tick runs one control-loop step and reports true once the game has
// reached its terminal phase. Ticking in an unknown phase is an
// invariant violation and is returned as an error.
func (m *Machine) Tick() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhaseInstructions, PhaseCountdown:
		// Scripted phases run to completion before ticking starts.
		return false, nil
	case PhaseInit:
		m.gameStart = m.clock.Now()
		m.elapsed = 0
		log.Info("game starting", "time_limit", m.timeLimit)
		m.enterLight(m.sched.Next(PhaseInit))
		return false, nil
	case PhaseGreenLight:
		return m.tickGreen(), nil
	case PhaseRedLight:
		return m.tickRed(), nil
	case PhaseGameOver:
		return true, nil
	default:
		return true, fmt.Errorf("game: tick in unknown phase %d", int(m.phase))
	}
}

// tickGreen checks, in order: global timeout, finish line, phase
// deadline. The order is load-bearing: a timeout beats a simultaneous
// finish-line event.
func (m *Machine) tickGreen() bool {
	now := m.clock.Now()
	m.elapsed = now.Sub(m.gameStart)

	if m.elapsed >= m.timeLimit {
		m.timeUp()
		return true
	}
	if m.tracker.ReachedFinishLine() {
		log.Info("finish line reached, player wins", "elapsed", m.elapsed)
		m.finish(ResultWin)
		m.speak("You made it. You win!")
		return true
	}
	if !now.Before(m.deadline) {
		m.enterLight(m.sched.Next(PhaseGreenLight))
	}
	return false
}

// tickRed checks, in order: global timeout, movement, phase deadline.
func (m *Machine) tickRed() bool {
	now := m.clock.Now()
	m.elapsed = now.Sub(m.gameStart)

	if m.elapsed >= m.timeLimit {
		m.timeUp()
		return true
	}
	if m.tracker.Moved() {
		d := m.tracker.MovedDeltas()
		log.Info("player moved during red light",
			"delta_x", d.CenterX,
			"delta_y", d.CenterY,
			"delta_size_x", d.SizeX,
			"delta_size_y", d.SizeY,
			"elapsed", m.elapsed,
		)
		// Face the player, then announce the elimination.
		m.invoke("rotate", m.feedback.Rotate180)
		m.invoke("sound", func() error { return m.feedback.PlaySound(ClipLose) })
		m.speak("You moved. You are eliminated.")
		m.finish(ResultLose)
		return true
	}
	if !now.Before(m.deadline) {
		m.enterLight(m.sched.Next(PhaseRedLight))
	}
	return false
}

// enterLight performs the atomic light-phase entry: set the phase, draw
// the duration and deadline, trigger the audio cue, publish, and for
// red light open a fresh tracker window.
func (m *Machine) enterLight(p Phase) {
	m.phase = p
	d := m.sched.Duration()
	m.deadline = m.clock.Now().Add(d)
	log.Info("light phase start", "phase", p.String(), "duration", d)

	cue := ClipGreenLight
	if p == PhaseRedLight {
		cue = ClipRedLight
	}
	m.invoke("sound", func() error { return m.feedback.PlaySound(cue) })
	m.publishLocked()

	if p == PhaseRedLight {
		m.tracker.BeginWatch()
	} else {
		m.tracker.EndWatch()
	}
}

func (m *Machine) timeUp() {
	log.Info("time limit reached", "elapsed", m.elapsed)
	m.invoke("sound", func() error { return m.feedback.PlaySound(ClipLose) })
	m.speak("Time is up. You lose.")
	m.finish(ResultLose)
}

// finish writes the result (exactly once: only light-phase ticks reach
// here and GameOver is terminal) and enters the terminal phase.
func (m *Machine) finish(result Result) {
	m.result = result
	m.phase = PhaseGameOver
	m.tracker.EndWatch()
	log.Info("game over", "result", result.String(), "elapsed", m.elapsed)
	m.publishLocked()
}

func (m *Machine) setPhase(p Phase) {
	m.mu.Lock()
	m.phase = p
	log.Info("phase", "phase", p.String())
	m.publishLocked()
	m.mu.Unlock()
}

func (m *Machine) publishLocked() {
	for _, fn := range m.observers {
		fn(m.phase, m.result, m.elapsed)
	}
}

func (m *Machine) speak(text string) {
	m.invoke("speak", func() error { return m.feedback.Speak(text) })
}

// invoke runs a feedback action, logging and swallowing any error.
// Feedback failure degrades audio and motion only; outcome logic never
// depends on it.
func (m *Machine) invoke(action string, fn func() error) {
	if err := fn(); err != nil {
		log.Warn("feedback action failed", "action", action, "error", err)
	}
}
