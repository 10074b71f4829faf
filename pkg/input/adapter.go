// Package input translates terminal key presses and mouse events into
// gallery commands.
//
// Pointer platforms preview on hover and follow the link on click. Touch
// platforms (narrow terminals) preview on the first tap and follow the link
// when the active row is tapped again. Hover leaving a row never deselects.
package input

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/showreel/pkg/gallery"
)

// Platform selects the click semantics.
type Platform int

const (
	Pointer Platform = iota
	Touch
)

// NarrowColumns is the width below which "auto" picks Touch: 768 pixels
// at 8 pixel cells.
const NarrowColumns = 96

func (p Platform) String() string {
	if p == Touch {
		return "touch"
	}
	return "pointer"
}

// ParsePlatform resolves "pointer", "touch" or "auto" for a terminal cols
// wide.
func ParsePlatform(s string, cols int) (Platform, error) {
	switch strings.ToLower(s) {
	case "pointer", "mouse", "desktop":
		return Pointer, nil
	case "touch", "mobile":
		return Touch, nil
	case "", "auto":
		if cols > 0 && cols < NarrowColumns {
			return Touch, nil
		}
		return Pointer, nil
	}
	return Pointer, fmt.Errorf("unknown input platform %q", s)
}

// Zone ids used for hit testing.
const (
	ZonePrimary  = "primary"
	ZoneCarousel = "carousel"
	ZoneLightbox = "lightbox"
	ZoneBack     = "back"
	ZoneLink     = "link"
	ZoneCredits  = "credits"
	ZoneClose    = "close"

	rowPrefix = "row:"
)

// RowZone returns the zone id of the catalog row for itemID.
func RowZone(itemID string) string { return rowPrefix + itemID }

// RowID extracts the item id from a row zone id.
func RowID(zoneID string) (string, bool) {
	return strings.CutPrefix(zoneID, rowPrefix)
}

// HitTester reports which zone, if any, a mouse event falls in.
type HitTester interface {
	Hit(msg tea.MouseMsg) (zoneID string, ok bool)
}

// HitFunc adapts a function to HitTester.
type HitFunc func(tea.MouseMsg) (string, bool)

// Hit calls f.
func (f HitFunc) Hit(msg tea.MouseMsg) (string, bool) { return f(msg) }

type drag struct {
	x    int
	at   time.Time
	zone string
}

// Adapter holds the per-session input state: platform, hover, drag and
// the keyboard row cursor.
type Adapter struct {
	Keys KeyMap

	platform Platform
	hits     HitTester
	cellW    int
	rows     []string
	now      func() time.Time

	hovering bool
	drag     *drag
}

// NewAdapter creates an adapter. cellWidth is the pixel width of one
// terminal cell, used to convert drags to pixel offsets.
func NewAdapter(p Platform, hits HitTester, cellWidth int) *Adapter {
	if cellWidth <= 0 {
		cellWidth = 8
	}
	return &Adapter{
		Keys:     DefaultKeyMap(),
		platform: p,
		hits:     hits,
		cellW:    cellWidth,
		now:      time.Now,
	}
}

// Platform returns the click semantics in use.
func (a *Adapter) Platform() Platform { return a.platform }

// SetPlatform switches click semantics, e.g. after a resize in auto mode.
func (a *Adapter) SetPlatform(p Platform) { a.platform = p }

// SetCellWidth updates the pixel width of a cell.
func (a *Adapter) SetCellWidth(w int) {
	if w > 0 {
		a.cellW = w
	}
}

// SetRows sets the catalog row order used by the keyboard cursor.
func (a *Adapter) SetRows(ids []string) { a.rows = ids }

// Reset forgets hover and drag state, used when the films page mounts.
func (a *Adapter) Reset() {
	a.hovering = false
	a.drag = nil
}

// Key maps a key press to commands for state s.
func (a *Adapter) Key(msg tea.KeyMsg, s gallery.State) []gallery.Command {
	switch {
	case key.Matches(msg, a.Keys.Up):
		return a.moveCursor(s, -1)
	case key.Matches(msg, a.Keys.Down):
		return a.moveCursor(s, +1)
	}
	if s.Browsing() {
		return nil
	}

	switch {
	case key.Matches(msg, a.Keys.Close):
		if s.LightboxOpen {
			return []gallery.Command{gallery.CloseOverlay{}}
		}
		return []gallery.Command{gallery.Deselect{}}
	case key.Matches(msg, a.Keys.Next):
		return []gallery.Command{gallery.Next{}}
	case key.Matches(msg, a.Keys.Prev):
		return []gallery.Command{gallery.Previous{}}
	case key.Matches(msg, a.Keys.Open):
		return []gallery.Command{gallery.OpenOverlay{}}
	case key.Matches(msg, a.Keys.Credits):
		return []gallery.Command{gallery.ToggleCredits{}}
	case key.Matches(msg, a.Keys.Link):
		return []gallery.Command{gallery.OpenExternalLink{}}
	case key.Matches(msg, a.Keys.Back):
		return []gallery.Command{gallery.Deselect{}}
	}
	return nil
}

// moveCursor selects the row above or below the active one. From browsing,
// down starts at the first row and up at the last.
func (a *Adapter) moveCursor(s gallery.State, delta int) []gallery.Command {
	if len(a.rows) == 0 || s.LightboxOpen {
		return nil
	}
	cur := -1
	for i, id := range a.rows {
		if id == s.ActiveID {
			cur = i
			break
		}
	}
	var next int
	switch {
	case cur < 0 && delta > 0:
		next = 0
	case cur < 0:
		next = len(a.rows) - 1
	default:
		next = min(max(cur+delta, 0), len(a.rows)-1)
		if next == cur {
			return nil
		}
	}
	return []gallery.Command{gallery.Select{ID: a.rows[next]}}
}

// Mouse maps a mouse event to commands for state s.
func (a *Adapter) Mouse(msg tea.MouseMsg, s gallery.State) []gallery.Command {
	var cmds []gallery.Command
	zoneID, hit := "", false
	if a.hits != nil {
		zoneID, hit = a.hits.Hit(msg)
	}
	if hit != a.hovering {
		a.hovering = hit
		cmds = append(cmds, gallery.Hover{On: hit})
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		if a.drag != nil || a.platform != Pointer {
			return cmds
		}
		if id, ok := RowID(zoneID); ok && hit && id != s.ActiveID {
			cmds = append(cmds, gallery.Select{ID: id})
		}

	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if !hit {
				return cmds
			}
			if zoneID == ZoneCarousel || zoneID == ZoneLightbox {
				a.drag = &drag{x: msg.X, at: a.now(), zone: zoneID}
				return cmds
			}
			cmds = append(cmds, a.click(zoneID, s)...)
		case tea.MouseButtonWheelDown:
			if !s.Browsing() && (zoneID == ZoneCarousel || zoneID == ZoneLightbox) {
				cmds = append(cmds, gallery.Next{})
			}
		case tea.MouseButtonWheelUp:
			if !s.Browsing() && (zoneID == ZoneCarousel || zoneID == ZoneLightbox) {
				cmds = append(cmds, gallery.Previous{})
			}
		}

	case tea.MouseActionRelease:
		if a.drag == nil {
			return cmds
		}
		d := a.drag
		a.drag = nil
		dx := msg.X - d.x
		if dx == 0 {
			// A press and release in place is a click on the image.
			if d.zone == ZoneCarousel && !s.LightboxOpen {
				cmds = append(cmds, gallery.OpenOverlay{})
			}
			return cmds
		}
		offset := float64(dx * a.cellW)
		secs := max(a.now().Sub(d.at).Seconds(), 0.001)
		cmds = append(cmds, gallery.Swipe{Offset: offset, Velocity: offset / secs})
	}
	return cmds
}

// click handles a left press on a non-draggable zone.
func (a *Adapter) click(zoneID string, s gallery.State) []gallery.Command {
	if id, ok := RowID(zoneID); ok {
		switch {
		case id != s.ActiveID:
			if a.platform == Touch {
				return []gallery.Command{gallery.Select{ID: id}}
			}
			return []gallery.Command{gallery.Select{ID: id}, gallery.OpenExternalLink{}}
		default:
			return []gallery.Command{gallery.OpenExternalLink{}}
		}
	}
	switch zoneID {
	case ZonePrimary:
		return []gallery.Command{gallery.OpenOverlay{}}
	case ZoneBack:
		return []gallery.Command{gallery.Deselect{}}
	case ZoneLink:
		return []gallery.Command{gallery.OpenExternalLink{}}
	case ZoneCredits:
		return []gallery.Command{gallery.ToggleCredits{}}
	case ZoneClose:
		return []gallery.Command{gallery.CloseOverlay{}}
	}
	return nil
}
