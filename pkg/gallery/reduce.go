package gallery

import (
	"fmt"

	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

// Machine applies commands against a catalog.
type Machine struct {
	Catalog *catalog.Catalog

	// Threshold overrides SwipeConfidenceThreshold when positive.
	Threshold float64
}

// Reduce applies cmd to s using the default swipe threshold.
func Reduce(cat *catalog.Catalog, s State, cmd Command) (State, []Effect, error) {
	return Machine{Catalog: cat}.Reduce(s, cmd)
}

// Reduce applies cmd to s. On error the returned state equals s and no
// effects are returned.
func (m Machine) Reduce(s State, cmd Command) (State, []Effect, error) {
	switch c := cmd.(type) {
	case Select:
		return m.selectItem(s, c.ID)

	case Deselect:
		if s.Browsing() {
			return s, nil, fmt.Errorf("%w: deselect while browsing", ErrInvalidTransition)
		}
		return State{Hovered: s.Hovered}, nil, nil

	case ToggleCredits:
		if s.Browsing() {
			return s, nil, fmt.Errorf("%w: toggle credits while browsing", ErrInvalidTransition)
		}
		s.CreditsExpanded = !s.CreditsExpanded
		return s, nil, nil

	case OpenOverlay:
		if _, err := m.activeWithGallery(s, "open overlay"); err != nil {
			return s, nil, err
		}
		s.LightboxOpen = true
		return s, nil, nil

	case CloseOverlay:
		s.LightboxOpen = false
		return s, nil, nil

	case OpenExternalLink:
		it, ok := Active(m.Catalog, s)
		if !ok {
			return s, nil, fmt.Errorf("%w: open link while browsing", ErrInvalidTransition)
		}
		if !it.HasLink() {
			return s, nil, fmt.Errorf("%w: item %q has no link", ErrInvalidTransition, it.ID)
		}
		return s, []Effect{OpenLink{URI: it.ExternalLink.String()}}, nil

	case Next:
		return m.navigate(s, DirNext, "next")

	case Previous:
		return m.navigate(s, DirPrevious, "previous")

	case Swipe:
		if _, err := m.activeWithGallery(s, "swipe"); err != nil {
			return s, nil, err
		}
		dir := ResolveGestureWith(m.threshold(), c.Offset, c.Velocity)
		if dir == DirNone {
			return s, nil, nil
		}
		return m.navigate(s, dir, "swipe")

	case LoadCompleted:
		return m.loadCompleted(s, c)

	case Hover:
		s.Hovered = c.On
		return s, nil, nil
	}
	return s, nil, fmt.Errorf("%w: unknown command %T", ErrInvalidTransition, cmd)
}

func (m Machine) threshold() float64 {
	if m.Threshold > 0 {
		return m.Threshold
	}
	return SwipeConfidenceThreshold
}

func (m Machine) selectItem(s State, id string) (State, []Effect, error) {
	it, err := m.Catalog.Find(id)
	if err != nil {
		return s, nil, fmt.Errorf("%w: select %q", ErrNotFound, id)
	}

	next := State{
		ActiveID: it.ID,
		Preview:  media.Pending,
		Hovered:  s.Hovered,
	}
	effects := []Effect{LoadMedia{ItemID: it.ID, Ref: it.Primary, Priority: media.High}}
	if it.HasGallery() {
		effects = append(effects, Preload{ItemID: it.ID, Refs: it.Gallery})
	}
	return next, effects, nil
}

func (m Machine) activeWithGallery(s State, op string) (catalog.Item, error) {
	it, ok := Active(m.Catalog, s)
	if !ok {
		return catalog.Item{}, fmt.Errorf("%w: %s while browsing", ErrInvalidTransition, op)
	}
	if !it.HasGallery() {
		return catalog.Item{}, fmt.Errorf("%w: %s: item %q has no gallery", ErrInvalidTransition, op, it.ID)
	}
	return it, nil
}

func (m Machine) navigate(s State, dir Direction, op string) (State, []Effect, error) {
	it, err := m.activeWithGallery(s, op)
	if err != nil {
		return s, nil, err
	}
	n := len(it.Gallery)
	switch dir {
	case DirNext:
		s.Index = NextIndex(s.Index, n)
	case DirPrevious:
		s.Index = PrevIndex(s.Index, n)
	}
	ref := it.Gallery[s.Index]
	return s, []Effect{LoadMedia{ItemID: it.ID, Ref: ref, Priority: media.High}}, nil
}

func (m Machine) loadCompleted(s State, c LoadCompleted) (State, []Effect, error) {
	if c.ItemID == "" || c.ItemID != s.ActiveID {
		return s, nil, fmt.Errorf("%w: load of %s for %q, active %q", ErrStale, c.Ref, c.ItemID, s.ActiveID)
	}
	it, ok := Active(m.Catalog, s)
	if !ok || c.Ref != it.Primary {
		// Carousel loads for the active item settle in the cache only.
		return s, nil, nil
	}
	if c.Err != nil {
		s.Preview = media.Failed
	} else {
		s.Preview = media.Loaded
	}
	return s, nil, nil
}
