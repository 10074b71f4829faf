package gallery

import "gitlab.com/tinyland/lab/showreel/pkg/media"

// Command is an input to Reduce.
type Command interface {
	command()
}

// Select makes ID the active item, resetting carousel, credits and lightbox.
type Select struct{ ID string }

// Deselect returns to browsing.
type Deselect struct{}

// ToggleCredits flips the additional credits panel.
type ToggleCredits struct{}

// OpenOverlay opens the lightbox over the active gallery.
type OpenOverlay struct{}

// CloseOverlay closes the lightbox. It is always valid.
type CloseOverlay struct{}

// OpenExternalLink asks for the active item's link to be opened.
type OpenExternalLink struct{}

// Next advances the carousel, wrapping at the end.
type Next struct{}

// Previous moves the carousel back, wrapping at the start.
type Previous struct{}

// Swipe is a finished drag on the carousel. Offset is in pixels, negative
// for a leftward drag; Velocity is in pixels per second.
type Swipe struct {
	Offset   float64
	Velocity float64
}

// LoadCompleted reports the outcome of a LoadMedia effect. ItemID is the
// item the load was issued for, captured when the effect was created.
type LoadCompleted struct {
	ItemID string
	Ref    media.Ref
	Err    error
}

// Hover reports the pointer entering or leaving an interactive element.
type Hover struct{ On bool }

func (Select) command()           {}
func (Deselect) command()         {}
func (ToggleCredits) command()    {}
func (OpenOverlay) command()      {}
func (CloseOverlay) command()     {}
func (OpenExternalLink) command() {}
func (Next) command()             {}
func (Previous) command()         {}
func (Swipe) command()            {}
func (LoadCompleted) command()    {}
func (Hover) command()            {}

// Effect is a side effect requested by Reduce.
type Effect interface {
	effect()
}

// LoadMedia asks for Ref to be loaded on behalf of ItemID. The completion
// must be fed back as LoadCompleted with the same ItemID and Ref.
type LoadMedia struct {
	ItemID   string
	Ref      media.Ref
	Priority media.Priority
}

// Preload asks for Refs to be warmed in the background. No completion is
// expected.
type Preload struct {
	ItemID string
	Refs   []media.Ref
}

// OpenLink asks for URI to be opened outside the program.
type OpenLink struct {
	URI string
}

func (LoadMedia) effect() {}
func (Preload) effect()   {}
func (OpenLink) effect()  {}
