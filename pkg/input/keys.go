package input

import (
	"github.com/charmbracelet/bubbles/key"

	"gitlab.com/tinyland/lab/showreel/pkg/gallery"
)

// KeyMap holds every binding the showreel understands. Gallery bindings
// are enabled and disabled with Sync so the help bar only lists what the
// current state accepts.
type KeyMap struct {
	// Gallery
	Close   key.Binding
	Next    key.Binding
	Prev    key.Binding
	Open    key.Binding
	Credits key.Binding
	Link    key.Binding
	Back    key.Binding
	Up      key.Binding
	Down    key.Binding

	// Application
	Home     key.Binding
	Films    key.Binding
	About    key.Binding
	NextPage key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next image"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous image"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "lightbox"),
		),
		Credits: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "credits"),
		),
		Link: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open link"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "b"),
			key.WithHelp("b", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous film"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next film"),
		),
		Home: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		Films: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "films"),
		),
		About: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "about"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next page"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Sync enables gallery bindings according to the state and the active
// item's capabilities.
func (k *KeyMap) Sync(s gallery.State, hasGallery, hasLink bool) {
	active := !s.Browsing()
	k.Close.SetEnabled(active)
	k.Back.SetEnabled(active && !s.LightboxOpen)
	k.Next.SetEnabled(active && hasGallery)
	k.Prev.SetEnabled(active && hasGallery)
	k.Open.SetEnabled(active && hasGallery && !s.LightboxOpen)
	k.Credits.SetEnabled(active)
	k.Link.SetEnabled(active && hasLink)
	k.Up.SetEnabled(!s.LightboxOpen)
	k.Down.SetEnabled(!s.LightboxOpen)
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Close, k.Next, k.Prev, k.Open, k.Link, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back, k.Close},
		{k.Next, k.Prev, k.Open, k.Credits, k.Link},
		{k.Home, k.Films, k.About, k.NextPage},
		{k.Help, k.Quit},
	}
}
