package media

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// LoadState is the lifecycle of one media reference inside the cache.
//
//	Unrequested -> Pending -> Loaded
//	                       -> Failed -> Pending (explicit retry)
//
// Loaded is terminal.
type LoadState int

const (
	Unrequested LoadState = iota
	Pending
	Loaded
	Failed
)

var loadStateNames = [...]string{
	Unrequested: "unrequested",
	Pending:     "pending",
	Loaded:      "loaded",
	Failed:      "failed",
}

// String returns the lowercase state name.
func (s LoadState) String() string {
	if int(s) < len(loadStateNames) {
		return loadStateNames[s]
	}
	return "unknown"
}

// ErrEmptyRef is returned for a load request without a locator.
var ErrEmptyRef = errors.New("media: empty reference")

// LoadError reports a failed fetch or decode for one reference.
type LoadError struct {
	Ref Ref
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("media: load %s: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Handle is a successfully loaded and decoded media reference.
type Handle struct {
	Ref      Ref
	Image    image.Image
	Format   string
	Size     int // encoded bytes
	LoadedAt time.Time
}

// Bounds returns the pixel bounds of the decoded image.
func (h *Handle) Bounds() image.Rectangle {
	if h == nil || h.Image == nil {
		return image.Rectangle{}
	}
	return h.Image.Bounds()
}

// Result is delivered by Cache.Load once the reference settles.
type Result struct {
	Ref    Ref
	Handle *Handle
	Err    error
}
