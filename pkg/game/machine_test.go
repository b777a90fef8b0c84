package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-redlight/internal/clock"
	"github.com/teslashibe/go-redlight/pkg/detect"
)

// stubScheduler returns a scripted phase sequence and a fixed duration.
type stubScheduler struct {
	phases []Phase
	i      int
	dur    time.Duration
}

func (s *stubScheduler) Next(Phase) Phase {
	p := s.phases[s.i%len(s.phases)]
	s.i++
	return p
}

func (s *stubScheduler) Duration() time.Duration { return s.dur }

type fixture struct {
	machine  *Machine
	clock    *clock.Fake
	tracker  *detect.Tracker
	feedback *MockFeedback
}

func newFixture(t *testing.T, phases []Phase, lightDur time.Duration) *fixture {
	t.Helper()
	fc := clock.NewFake(time.Unix(1000, 0))
	tr := detect.NewTracker(15, 10.0, 400.0)
	fb := &MockFeedback{}
	m := New(Config{
		Clock:      fc,
		Tracker:    tr,
		Scheduler:  &stubScheduler{phases: phases, dur: lightDur},
		Feedback:   fb,
		TimeLimit:  120 * time.Second,
		TickPeriod: 100 * time.Millisecond,
	})
	return &fixture{machine: m, clock: fc, tracker: tr, feedback: fb}
}

// start drives the machine to the first light phase (skipping the
// scripted instruction phases, which Run handles separately).
func (f *fixture) start(t *testing.T) {
	t.Helper()
	f.machine.setPhase(PhaseInit)
	done, err := f.machine.Tick()
	if err != nil {
		t.Fatalf("init tick: %v", err)
	}
	if done {
		t.Fatal("init tick must not be terminal")
	}
}

func (f *fixture) tick(t *testing.T) bool {
	t.Helper()
	done, err := f.machine.Tick()
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	return done
}

func personAt(sy float64) detect.Detection {
	return detect.Detection{ClassID: 15, CenterX: 100, CenterY: 100, SizeX: 50, SizeY: sy}
}

func TestMachine_FinishLineWinsOnNextTick(t *testing.T) {
	f := newFixture(t, []Phase{PhaseGreenLight}, 5*time.Second)
	f.start(t)

	if f.machine.Phase() != PhaseGreenLight {
		t.Fatalf("phase = %v, want GREEN_LIGHT", f.machine.Phase())
	}

	// Finish-line detection arrives between ticks.
	f.tracker.Ingest([]detect.Detection{personAt(450)})

	if done := f.tick(t); !done {
		t.Fatal("tick after finish-line detection must be terminal")
	}
	if f.machine.Phase() != PhaseGameOver || f.machine.Result() != ResultWin {
		t.Errorf("got phase=%v result=%v, want GAME_OVER/WIN", f.machine.Phase(), f.machine.Result())
	}
}

func TestMachine_MovementDuringRedEliminates(t *testing.T) {
	f := newFixture(t, []Phase{PhaseRedLight}, 5*time.Second)
	f.start(t)

	if f.machine.Phase() != PhaseRedLight {
		t.Fatalf("phase = %v, want RED_LIGHT", f.machine.Phase())
	}

	f.tracker.Ingest([]detect.Detection{
		{ClassID: 15, CenterX: 100, CenterY: 100, SizeX: 50, SizeY: 80},
	})
	f.tracker.Ingest([]detect.Detection{
		{ClassID: 15, CenterX: 100, CenterY: 100, SizeX: 50, SizeY: 95},
	})

	if done := f.tick(t); !done {
		t.Fatal("tick after movement must be terminal")
	}
	if f.machine.Result() != ResultLose {
		t.Errorf("result = %v, want LOSE", f.machine.Result())
	}

	// Elimination sequence: red-light cue on entry, then rotate toward
	// the player, then the lose cue.
	calls := f.feedback.Calls()
	var actions []string
	for _, c := range calls {
		if c.Action == "sound" {
			actions = append(actions, c.Arg)
		} else {
			actions = append(actions, c.Action)
		}
	}
	want := []string{"red_light", "rotate", "lose", "speak"}
	if strings.Join(actions, ",") != strings.Join(want, ",") {
		t.Errorf("feedback order = %v, want %v", actions, want)
	}
}

func TestMachine_TimeoutBeatsFinishLine(t *testing.T) {
	f := newFixture(t, []Phase{PhaseGreenLight}, 300*time.Second)
	f.start(t)

	f.tracker.Ingest([]detect.Detection{personAt(450)})
	f.clock.Advance(120 * time.Second)

	if done := f.tick(t); !done {
		t.Fatal("timeout tick must be terminal")
	}
	if f.machine.Result() != ResultLose {
		t.Errorf("timeout must win over a simultaneous finish line, result = %v", f.machine.Result())
	}
}

func TestMachine_TimeoutDuringRed(t *testing.T) {
	f := newFixture(t, []Phase{PhaseRedLight}, 300*time.Second)
	f.start(t)

	f.clock.Advance(120 * time.Second)
	if done := f.tick(t); !done {
		t.Fatal("timeout tick must be terminal")
	}
	if f.machine.Result() != ResultLose {
		t.Errorf("result = %v, want LOSE", f.machine.Result())
	}
}

func TestMachine_DeadlineAdvancesPhase(t *testing.T) {
	f := newFixture(t, []Phase{PhaseGreenLight, PhaseRedLight}, 3*time.Second)
	f.start(t)

	// Before the deadline the phase holds.
	f.clock.Advance(2 * time.Second)
	f.tick(t)
	if f.machine.Phase() != PhaseGreenLight {
		t.Fatalf("phase changed before deadline: %v", f.machine.Phase())
	}

	f.clock.Advance(time.Second)
	f.tick(t)
	if f.machine.Phase() != PhaseRedLight {
		t.Errorf("phase = %v, want RED_LIGHT after deadline", f.machine.Phase())
	}
}

func TestMachine_RedEntryResetsWindow(t *testing.T) {
	f := newFixture(t, []Phase{PhaseRedLight, PhaseRedLight}, 3*time.Second)
	f.start(t)

	// Flag movement in the first red interval but do not tick yet.
	f.tracker.Ingest([]detect.Detection{personAt(80)})
	f.tracker.Ingest([]detect.Detection{personAt(95)})
	if !f.tracker.Moved() {
		t.Fatal("setup: movement expected")
	}

	// Re-enter red directly (a deadline tick would consume the flag as an
	// elimination first): a fresh red entry must clear inherited state.
	f.clock.Advance(3 * time.Second)
	f.machine.mu.Lock()
	f.machine.enterLight(PhaseRedLight)
	f.machine.mu.Unlock()

	if f.tracker.Moved() {
		t.Error("entering red light must clear the movement flag")
	}
	f.tracker.Ingest([]detect.Detection{personAt(500)})
	if f.tracker.Moved() {
		t.Error("entering red light must clear the comparison baseline")
	}
}

func TestMachine_GameOverIsTerminal(t *testing.T) {
	f := newFixture(t, []Phase{PhaseGreenLight}, 5*time.Second)

	var gameOverPublishes int
	f.machine.OnPhaseChange(func(p Phase, r Result, _ time.Duration) {
		if p == PhaseGameOver {
			gameOverPublishes++
		}
	})

	f.start(t)
	f.tracker.Ingest([]detect.Detection{personAt(450)})
	f.tick(t)

	if f.machine.Phase() != PhaseGameOver {
		t.Fatal("setup: expected terminal phase")
	}

	for i := 0; i < 10; i++ {
		done, err := f.machine.Tick()
		if err != nil {
			t.Fatalf("terminal tick: %v", err)
		}
		if !done {
			t.Fatal("ticks after GameOver must report done")
		}
	}
	if f.machine.Phase() != PhaseGameOver || f.machine.Result() != ResultWin {
		t.Error("terminal state must never change")
	}
	if gameOverPublishes != 1 {
		t.Errorf("GameOver published %d times, want exactly once", gameOverPublishes)
	}
}

func TestMachine_ElapsedDerivesFromClock(t *testing.T) {
	f := newFixture(t, []Phase{PhaseGreenLight}, 300*time.Second)
	f.start(t)

	var last time.Duration
	steps := []time.Duration{0, 100 * time.Millisecond, 5 * time.Second, 0, 30 * time.Second}
	var total time.Duration
	for _, step := range steps {
		f.clock.Advance(step)
		total += step
		f.tick(t)
		got := f.machine.Elapsed()
		if got != total {
			t.Fatalf("elapsed = %v, want %v (pure clock derivation)", got, total)
		}
		if got < last {
			t.Fatalf("elapsed went backwards: %v -> %v", last, got)
		}
		last = got
	}
}

func TestMachine_ResultWrittenOnlyAtGameOver(t *testing.T) {
	f := newFixture(t, []Phase{PhaseGreenLight, PhaseRedLight}, 2*time.Second)

	f.machine.OnPhaseChange(func(p Phase, r Result, _ time.Duration) {
		if p != PhaseGameOver && r != ResultUnset {
			t.Errorf("result %v published in non-terminal phase %v", r, p)
		}
	})

	f.start(t)
	for i := 0; i < 5; i++ {
		f.clock.Advance(2 * time.Second)
		f.tick(t)
	}
	f.tracker.Ingest([]detect.Detection{personAt(450)})
	for !f.tick(t) {
		f.clock.Advance(time.Second)
	}
}

func TestMachine_RunPlaysFullScript(t *testing.T) {
	f := newFixture(t, []Phase{PhaseGreenLight}, 5*time.Second)
	f.machine.tickPeriod = time.Millisecond

	var phases []Phase
	f.machine.OnPhaseChange(func(p Phase, _ Result, _ time.Duration) {
		phases = append(phases, p)
	})

	// Finish line already latched: the game ends on the first green tick
	// after Init.
	f.tracker.Ingest([]detect.Detection{personAt(450)})

	if err := f.machine.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []Phase{PhaseInstructions, PhaseCountdown, PhaseInit, PhaseGreenLight, PhaseGameOver}
	if len(phases) != len(want) {
		t.Fatalf("published phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("published phases = %v, want %v", phases, want)
		}
	}

	// Script shape: instruction lines, one rotation, countdown, green
	// cue, win announcement.
	if got := f.feedback.CallCount("rotate"); got != 1 {
		t.Errorf("rotations = %d, want 1 (instructions only)", got)
	}
	wantSpeaks := len(instructionLines) + len(countdownLines) + 1 // + win line
	if got := f.feedback.CallCount("speak"); got != wantSpeaks {
		t.Errorf("speak calls = %d, want %d", got, wantSpeaks)
	}
	if sounds := f.feedback.Sounds(); len(sounds) != 1 || sounds[0] != string(ClipGreenLight) {
		t.Errorf("sounds = %v, want [green_light]", sounds)
	}
}

func TestMachine_RunHonorsCancellation(t *testing.T) {
	f := newFixture(t, []Phase{PhaseGreenLight}, 5*time.Second)
	f.machine.tickPeriod = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.machine.Run(ctx); err == nil {
		t.Error("cancelled run must return the context error")
	}
}
