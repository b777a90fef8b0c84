package game

import (
	"math/rand"
	"time"
)

// LightScheduler decides the next light phase and draws phase durations.
// The Machine depends on this interface so tests can script exact
// sequences.
type LightScheduler interface {
	// Next returns the light phase that follows current.
	Next(current Phase) Phase

	// Duration draws the duration for a freshly entered light phase.
	Duration() time.Duration
}

// Scheduler is the production LightScheduler: bounded uniform durations
// and a fair coin for phase choice. Green is always followed by red so
// every sprint ends with a chance to eliminate; out of Init or red the
// pick is uniform, and red-red repeats are legal.
type Scheduler struct {
	rng *rand.Rand
	min time.Duration
	max time.Duration
}

// NewScheduler creates a scheduler drawing durations from [min, max].
// The rand source is injected so tests and replays can seed it.
func NewScheduler(src rand.Source, min, max time.Duration) *Scheduler {
	return &Scheduler{
		rng: rand.New(src),
		min: min,
		max: max,
	}
}

// Next returns the light phase that follows current.
func (s *Scheduler) Next(current Phase) Phase {
	if current == PhaseGreenLight {
		return PhaseRedLight
	}
	if s.rng.Intn(2) == 0 {
		return PhaseGreenLight
	}
	return PhaseRedLight
}

// Duration draws a uniform duration from [min, max].
func (s *Scheduler) Duration() time.Duration {
	if s.max <= s.min {
		return s.min
	}
	return s.min + time.Duration(s.rng.Int63n(int64(s.max-s.min)+1))
}

var _ LightScheduler = (*Scheduler)(nil)
