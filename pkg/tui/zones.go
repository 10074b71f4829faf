package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/showreel/pkg/input"
)

// zoneHits resolves mouse events against bubblezone marks. ids is refreshed
// before every lookup; earlier ids win where zones overlap.
type zoneHits struct {
	z   *zone.Manager
	ids []string
}

func (h *zoneHits) Hit(msg tea.MouseMsg) (string, bool) {
	for _, id := range h.ids {
		if h.z.Get(id).InBounds(msg) {
			return id, true
		}
	}
	return "", false
}

// zoneIDs lists the zones the current frame can contain, topmost first.
func (m Model) zoneIDs() []string {
	if m.state.LightboxOpen {
		return []string{input.ZoneClose, input.ZoneLightbox}
	}
	ids := []string{input.ZoneBack, input.ZoneLink, input.ZoneCredits, input.ZoneCarousel, input.ZonePrimary}
	for _, it := range m.cat.All() {
		ids = append(ids, input.RowZone(it.ID))
	}
	return ids
}

// mark wraps s in a zone when zones are enabled.
func (m Model) mark(id, s string) string {
	if m.zones == nil {
		return s
	}
	return m.zones.Mark(id, s)
}
