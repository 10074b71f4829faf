// Package gallery implements the films page selection state machine and
// the carousel navigator.
//
// State is a plain value owned by the films page. Commands are applied with
// Reduce, which never performs I/O: it returns the next state plus a list of
// effects (media loads, link opens) for the caller to execute. Completions
// of those effects come back as LoadCompleted commands carrying the item id
// they were issued for, and are dropped when that item is no longer active.
package gallery

import (
	"errors"
	"fmt"

	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

var (
	// ErrInvalidTransition is returned when a command's precondition does
	// not hold. The state is left unchanged.
	ErrInvalidTransition = errors.New("gallery: invalid transition")

	// ErrNotFound is returned when selecting an id the catalog lacks.
	ErrNotFound = fmt.Errorf("gallery: %w", catalog.ErrNotFound)

	// ErrStale is returned for a completion issued for an item that is no
	// longer active. The state is left unchanged.
	ErrStale = errors.New("gallery: stale completion")
)

// State is the selection state of one films page session.
//
// The zero value is Browsing: no active item, index 0, credits collapsed,
// lightbox closed.
type State struct {
	// ActiveID is the selected item, or "" while browsing.
	ActiveID string

	// Index is the carousel position within the active item's gallery.
	Index int

	CreditsExpanded bool
	LightboxOpen    bool

	// Preview is the load state of the active item's primary image as last
	// reported through LoadCompleted.
	Preview media.LoadState

	// Hovered is true while the pointer rests on an interactive element.
	Hovered bool
}

// New returns the state a freshly mounted films page starts with.
func New() State { return State{} }

// Browsing reports whether no item is active.
func (s State) Browsing() bool { return s.ActiveID == "" }

// Mode names the state for logs and the status bar.
func (s State) Mode() string {
	switch {
	case s.Browsing():
		return "browsing"
	case s.LightboxOpen:
		return "lightbox"
	default:
		return "viewing"
	}
}

// Active returns the active item, if any.
func Active(cat *catalog.Catalog, s State) (catalog.Item, bool) {
	if s.Browsing() {
		return catalog.Item{}, false
	}
	it, err := cat.Find(s.ActiveID)
	if err != nil {
		return catalog.Item{}, false
	}
	return it, true
}

// Valid checks the state invariants against cat.
func (s State) Valid(cat *catalog.Catalog) error {
	if s.Browsing() {
		var errs []error
		if s.LightboxOpen {
			errs = append(errs, errors.New("lightbox open while browsing"))
		}
		if s.Index != 0 {
			errs = append(errs, fmt.Errorf("index %d while browsing", s.Index))
		}
		if s.CreditsExpanded {
			errs = append(errs, errors.New("credits expanded while browsing"))
		}
		return errors.Join(errs...)
	}

	it, err := cat.Find(s.ActiveID)
	if err != nil {
		return fmt.Errorf("active item: %w", err)
	}
	n := len(it.Gallery)
	if s.LightboxOpen && n == 0 {
		return fmt.Errorf("lightbox open for %q with empty gallery", it.ID)
	}
	if n == 0 && s.Index != 0 {
		return fmt.Errorf("index %d for %q with empty gallery", s.Index, it.ID)
	}
	if n > 0 && (s.Index < 0 || s.Index >= n) {
		return fmt.Errorf("index %d out of range [0,%d) for %q", s.Index, n, it.ID)
	}
	return nil
}
