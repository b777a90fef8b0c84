// Package detect tracks the player's bounding box across detection frames.
//
// The tracker ingests raw per-frame detections from the vision pipeline,
// keeps the most prominent person match, and derives the two signals the
// game consumes: the sticky finish-line flag and the per-red-light
// movement flag.
package detect

import "time"

// Detection is one frame's candidate bounding box, in pixels.
// Immutable once produced.
type Detection struct {
	ClassID   int     // Detector category id
	CenterX   float64 // Bounding-box center
	CenterY   float64
	SizeX     float64 // Bounding-box width
	SizeY     float64 // Bounding-box height
	Timestamp time.Time
}

// Deltas holds the frame-to-frame absolute differences checked during
// red light.
type Deltas struct {
	CenterX float64
	CenterY float64
	SizeX   float64
	SizeY   float64
}

// Exceeds reports whether any delta strictly exceeds the threshold.
func (d Deltas) Exceeds(threshold float64) bool {
	return d.CenterX > threshold ||
		d.CenterY > threshold ||
		d.SizeX > threshold ||
		d.SizeY > threshold
}

// deltasBetween computes the four absolute differences between two
// detections.
func deltasBetween(prev, curr Detection) Deltas {
	return Deltas{
		CenterX: abs(curr.CenterX - prev.CenterX),
		CenterY: abs(curr.CenterY - prev.CenterY),
		SizeX:   abs(curr.SizeX - prev.SizeX),
		SizeY:   abs(curr.SizeY - prev.SizeY),
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
