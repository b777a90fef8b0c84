package detect

import (
	"sync"

	"github.com/teslashibe/go-redlight/internal/log"
)

// Tracker selects the best player candidate per frame and derives the
// game's detection signals.
//
// Detections arrive on the vision path at arbitrary times; the game loop
// reads the derived flags on its own tick. All state is behind one mutex
// so a frame arriving mid-transition never observes a half-updated
// window.
type Tracker struct {
	personClassID     int
	movementThreshold float64
	finishLineSizeY   float64

	mu            sync.Mutex
	current       *Detection // Last selected candidate (any phase)
	baseline      *Detection // Previous candidate within the red-light window
	watching      bool       // Red-light window open
	moved         bool       // Sticky for the current window
	movedDeltas   Deltas     // Deltas that tripped the movement flag
	reachedFinish bool       // Sticky for the process lifetime
}

// NewTracker creates a tracker for the given person class id and
// thresholds.
func NewTracker(personClassID int, movementThreshold, finishLineSizeY float64) *Tracker {
	return &Tracker{
		personClassID:     personClassID,
		movementThreshold: movementThreshold,
		finishLineSizeY:   finishLineSizeY,
	}
}

// Ingest processes one frame of raw detections.
//
// The candidate is the person-class detection with the largest height;
// ties keep the first seen. A frame with no person match changes nothing
// (absence is not "target lost"). While the red-light window is open,
// the candidate is compared against the previous one and any delta
// strictly above the movement threshold latches the movement flag.
func (t *Tracker) Ingest(frame []Detection) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var best *Detection
	for i := range frame {
		if frame[i].ClassID != t.personClassID {
			continue
		}
		if best == nil || frame[i].SizeY > best.SizeY {
			best = &frame[i]
		}
	}
	if best == nil {
		return
	}

	curr := *best
	t.current = &curr

	if curr.SizeY >= t.finishLineSizeY && !t.reachedFinish {
		t.reachedFinish = true
		log.Info("player reached finish line", "size_y", curr.SizeY, "threshold", t.finishLineSizeY)
	}

	if t.watching {
		if t.baseline != nil {
			d := deltasBetween(*t.baseline, curr)
			if d.Exceeds(t.movementThreshold) && !t.moved {
				t.moved = true
				t.movedDeltas = d
				log.Info("movement detected",
					"delta_x", d.CenterX,
					"delta_y", d.CenterY,
					"delta_size_x", d.SizeX,
					"delta_size_y", d.SizeY,
					"threshold", t.movementThreshold,
				)
			}
		}
		t.baseline = &curr
	}
}

// BeginWatch opens a fresh red-light window: the comparison baseline,
// the movement flag, and the recorded deltas are cleared so motion
// inherited from the prior phase never eliminates the player on the
// window's first frame.
func (t *Tracker) BeginWatch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseline = nil
	t.moved = false
	t.movedDeltas = Deltas{}
	t.watching = true
}

// EndWatch closes the red-light window. The movement flag keeps its
// value until the next BeginWatch.
func (t *Tracker) EndWatch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watching = false
	t.baseline = nil
}

// Moved reports whether movement was flagged in the current red-light
// window.
func (t *Tracker) Moved() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.moved
}

// MovedDeltas returns the deltas that tripped the movement flag.
// Zero when no movement has been flagged.
func (t *Tracker) MovedDeltas() Deltas {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.movedDeltas
}

// ReachedFinishLine reports whether the finish-line flag has latched.
func (t *Tracker) ReachedFinishLine() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reachedFinish
}

// Snapshot returns the last selected detection, if any.
func (t *Tracker) Snapshot() (Detection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Detection{}, false
	}
	return *t.current, true
}
