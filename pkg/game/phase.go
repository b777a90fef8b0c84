// Package game implements the red light / green light arbiter.
//
// A Machine owns the game timeline: it runs the blocking instruction and
// countdown scripts, then ticks at a fixed cadence through the timed
// light phases until the player wins, is eliminated, or runs out the
// clock. Detection signals come from a detect.Tracker fed independently
// by the vision path.
package game

// Phase is one state of the game timeline. Exactly one is current.
type Phase int

const (
	PhaseInstructions Phase = iota
	PhaseCountdown
	PhaseInit
	PhaseGreenLight
	PhaseRedLight
	PhaseGameOver
)

// String returns the phase name used in logs and state publications.
func (p Phase) String() string {
	switch p {
	case PhaseInstructions:
		return "INSTRUCTIONS"
	case PhaseCountdown:
		return "COUNTDOWN"
	case PhaseInit:
		return "INIT"
	case PhaseGreenLight:
		return "GREEN_LIGHT"
	case PhaseRedLight:
		return "RED_LIGHT"
	case PhaseGameOver:
		return "GAME_OVER"
	default:
		return "UNKNOWN"
	}
}

// IsLight reports whether p is one of the two timed light phases.
func (p Phase) IsLight() bool {
	return p == PhaseGreenLight || p == PhaseRedLight
}

// Result is the game outcome. Written exactly once, on the tick that
// enters PhaseGameOver.
type Result int

const (
	ResultUnset Result = iota
	ResultWin
	ResultLose
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case ResultWin:
		return "WIN"
	case ResultLose:
		return "LOSE"
	default:
		return "UNSET"
	}
}
