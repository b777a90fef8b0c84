package game

// Clip identifies a named sound cue on the audio backend.
type Clip string

const (
	ClipGreenLight Clip = "green_light"
	ClipRedLight   Clip = "red_light"
	ClipLose       Clip = "lose"
)

// Feedback is the boundary to the speech, audio, and actuator
// subsystems.
//
// Calls may block for their full duration; the machine accepts that.
// Elapsed time is derived from the game clock, so blocking feedback can
// delay the detection of a timeout but never cause a false one. Errors
// are logged and swallowed at the machine boundary: game outcome logic
// never depends on feedback success.
type Feedback interface {
	// Speak says the text and returns when playback completes.
	Speak(text string) error

	// PlaySound triggers the named clip.
	PlaySound(clip Clip) error

	// Rotate180 turns the robot base half a revolution and returns when
	// the maneuver completes. Open-loop; no cancellation.
	Rotate180() error
}

// NopFeedback discards all feedback actions. Used when no robot
// hardware is configured.
type NopFeedback struct{}

func (NopFeedback) Speak(string) error   { return nil }
func (NopFeedback) PlaySound(Clip) error { return nil }
func (NopFeedback) Rotate180() error     { return nil }

var _ Feedback = NopFeedback{}
