package gallery

import (
	"math"

	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

// SwipeConfidenceThreshold is the minimum swipe power, |offset|*|velocity|,
// that counts as a navigating gesture.
const SwipeConfidenceThreshold = 10000.0

// Direction is the outcome of a resolved gesture.
type Direction int

const (
	DirNone Direction = iota
	DirNext
	DirPrevious
)

func (d Direction) String() string {
	switch d {
	case DirNext:
		return "next"
	case DirPrevious:
		return "previous"
	}
	return "none"
}

// NextIndex returns the index after i in a ring of n.
func NextIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i + 1) % n
}

// PrevIndex returns the index before i in a ring of n.
func PrevIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return (i - 1 + n) % n
}

// SwipePower is the scalar confidence of a drag.
func SwipePower(offset, velocity float64) float64 {
	return math.Abs(offset) * math.Abs(velocity)
}

// ResolveGesture maps a drag to a navigation direction using
// SwipeConfidenceThreshold.
func ResolveGesture(offset, velocity float64) Direction {
	return ResolveGestureWith(SwipeConfidenceThreshold, offset, velocity)
}

// ResolveGestureWith is ResolveGesture with an explicit threshold. The power
// must strictly exceed threshold; a leftward (negative) drag goes to the next
// image and a rightward one to the previous.
func ResolveGestureWith(threshold, offset, velocity float64) Direction {
	if math.IsNaN(offset) || math.IsNaN(velocity) {
		return DirNone
	}
	if SwipePower(offset, velocity) <= threshold {
		return DirNone
	}
	switch {
	case offset < 0:
		return DirNext
	case offset > 0:
		return DirPrevious
	}
	return DirNone
}

// Current returns the gallery entry at the state's index.
func Current(it catalog.Item, s State) (media.Ref, bool) {
	if s.ActiveID != it.ID || s.Index < 0 || s.Index >= len(it.Gallery) {
		return "", false
	}
	return it.Gallery[s.Index], true
}
