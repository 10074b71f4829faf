package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/showreel/pkg/gallery"
)

// LinkOpener opens a URI outside the terminal.
type LinkOpener interface {
	Open(ctx context.Context, uri string) error
}

// linkOpenedMsg reports the outcome of an OpenLink effect.
type linkOpenedMsg struct {
	URI string
	Err error
}

// runEffects turns reducer effects into commands. Load completions come
// back as gallery.LoadCompleted carrying the item id captured here.
func (m Model) runEffects(effects []gallery.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range effects {
		switch e := e.(type) {
		case gallery.LoadMedia:
			cmds = append(cmds, m.loadCmd(e))
		case gallery.Preload:
			m.logger.Debug("preloading gallery", "item", e.ItemID, "refs", len(e.Refs))
			cache, refs := m.cache, e.Refs
			cmds = append(cmds, func() tea.Msg {
				cache.Preload(refs)
				return nil
			})
		case gallery.OpenLink:
			cmds = append(cmds, m.openCmd(e.URI))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) loadCmd(e gallery.LoadMedia) tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		_, err := cache.EnsureLoaded(context.Background(), e.Ref, e.Priority)
		return gallery.LoadCompleted{ItemID: e.ItemID, Ref: e.Ref, Err: err}
	}
}

func (m Model) openCmd(uri string) tea.Cmd {
	opener := m.opener
	return func() tea.Msg {
		return linkOpenedMsg{URI: uri, Err: opener.Open(context.Background(), uri)}
	}
}
