// Package tui is the showreel's bubbletea program: a home page, the films
// page with its gallery and lightbox, and an about page.
//
// The films page owns a gallery.State. It is created fresh each time the
// page is entered and discarded when the page is left. Input is translated
// by an input.Adapter, applied through the gallery reducer, and the
// reducer's effects run as tea.Cmds whose completions come back as
// gallery.LoadCompleted messages.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/gallery"
	"gitlab.com/tinyland/lab/showreel/pkg/input"
	"gitlab.com/tinyland/lab/showreel/pkg/media"
	"gitlab.com/tinyland/lab/showreel/pkg/render"
	"gitlab.com/tinyland/lab/showreel/pkg/terminal"
	"gitlab.com/tinyland/lab/showreel/pkg/theme"
)

// Page is one of the top-level screens.
type Page int

const (
	PageHome Page = iota
	PageFilms
	PageAbout
)

var pageNames = [...]string{
	PageHome:  "HOME",
	PageFilms: "FILMS",
	PageAbout: "ABOUT",
}

func (p Page) String() string {
	if p >= 0 && int(p) < len(pageNames) {
		return pageNames[p]
	}
	return "?"
}

// Options wires the model to its collaborators.
type Options struct {
	Catalog  *catalog.Catalog
	Cache    *media.Cache
	Renderer *render.Renderer
	Opener   LinkOpener
	Theme    theme.Theme
	Caps     terminal.Capabilities

	// Platform is "pointer", "touch" or "auto".
	Platform string

	// Threshold overrides the swipe confidence threshold when positive.
	Threshold float64

	Logger *slog.Logger

	// Zones enables mouse hit testing through bubblezone. Hits, when set,
	// is used instead.
	Zones *zone.Manager
	Hits  input.HitTester

	// StartPage is the page shown first.
	StartPage Page
}

// Model is the root bubbletea model.
type Model struct {
	cat      *catalog.Catalog
	cache    *media.Cache
	renderer *render.Renderer
	opener   LinkOpener
	machine  gallery.Machine
	logger   *slog.Logger
	caps     terminal.Capabilities

	zones *zone.Manager
	hits  *zoneHits
	input *input.Adapter

	styles       styles
	spinner      spinner.Model
	help         help.Model
	autoPlatform bool

	page     Page
	state    gallery.State
	width    int
	height   int
	showHelp bool
	status   string
	quitting bool
}

// New builds the model.
func New(opts Options) (Model, error) {
	if opts.Catalog == nil || opts.Cache == nil {
		return Model{}, errors.New("tui: catalog and cache are required")
	}
	platform, err := input.ParsePlatform(opts.Platform, opts.Caps.Size.Cols)
	if err != nil {
		return Model{}, fmt.Errorf("tui: %w", err)
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New(render.Options{Protocol: opts.Caps.Protocol})
	}
	if opts.Opener == nil {
		return Model{}, errors.New("tui: link opener is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Theme.Name == "" {
		opts.Theme = theme.Get(theme.DefaultName)
	}

	m := Model{
		cat:          opts.Catalog,
		cache:        opts.Cache,
		renderer:     opts.Renderer,
		opener:       opts.Opener,
		machine:      gallery.Machine{Catalog: opts.Catalog, Threshold: opts.Threshold},
		logger:       opts.Logger,
		caps:         opts.Caps,
		zones:        opts.Zones,
		styles:       newStyles(opts.Theme),
		help:         newHelp(opts.Theme),
		autoPlatform: opts.Platform == "" || strings.EqualFold(opts.Platform, "auto"),
		page:         opts.StartPage,
		state:        gallery.New(),
	}

	hits := opts.Hits
	if hits == nil && opts.Zones != nil {
		m.hits = &zoneHits{z: opts.Zones}
		hits = m.hits
	}
	cellW, _ := opts.Caps.Size.CellSize()
	m.input = input.NewAdapter(platform, hits, cellW)

	rows := make([]string, 0, opts.Catalog.Len())
	for _, sec := range []catalog.Section{catalog.Upcoming, catalog.Past} {
		for _, it := range opts.Catalog.Section(sec) {
			rows = append(rows, it.ID)
		}
	}
	m.input.SetRows(rows)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = m.styles.pending

	m.syncKeys()
	return m, nil
}

// Init starts the spinner and names the window.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.SetWindowTitle(m.cat.Studio().Name))
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.autoPlatform {
			p, _ := input.ParsePlatform("auto", msg.Width)
			m.input.SetPlatform(p)
		}
		if m.caps.Interactive {
			cw, ch := terminal.GetSize().CellSize()
			m.renderer.SetCellSize(cw, ch)
			m.input.SetCellWidth(cw)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.page != PageFilms {
			return m, nil
		}
		if m.hits != nil {
			m.hits.ids = m.zoneIDs()
		}
		return m.dispatch(m.input.Mouse(msg, m.state)...)

	case gallery.LoadCompleted:
		if msg.Err != nil {
			m.logger.Warn("media load failed", "item", msg.ItemID, "ref", msg.Ref.String(), "err", msg.Err)
		}
		return m.dispatch(msg)

	case linkOpenedMsg:
		if msg.Err != nil {
			m.logger.Warn("open link failed", "uri", msg.URI, "err", msg.Err)
			m.status = "could not open link"
		} else {
			m.logger.Info("opened link", "uri", msg.URI)
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.input.Keys
	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, k.Home):
		return m.setPage(PageHome), nil
	case key.Matches(msg, k.Films):
		return m.setPage(PageFilms), nil
	case key.Matches(msg, k.About):
		return m.setPage(PageAbout), nil
	case key.Matches(msg, k.NextPage):
		return m.setPage((m.page + 1) % Page(len(pageNames))), nil
	}

	switch m.page {
	case PageFilms:
		return m.dispatch(m.input.Key(msg, m.state)...)
	case PageHome:
		if msg.Type == tea.KeyEnter {
			return m.setPage(PageFilms), nil
		}
	}
	return m, nil
}

// setPage switches pages. Entering or leaving the films page replaces the
// gallery state with a fresh one.
func (m Model) setPage(p Page) Model {
	if p == m.page {
		return m
	}
	if p == PageFilms || m.page == PageFilms {
		m.state = gallery.New()
		m.input.Reset()
	}
	m.logger.Debug("page", "from", m.page.String(), "to", p.String())
	m.page = p
	m.status = ""
	m.syncKeys()
	return m
}

// dispatch applies commands in order. Rejected commands are logged and
// leave the state untouched.
func (m Model) dispatch(cmds ...gallery.Command) (tea.Model, tea.Cmd) {
	var out []tea.Cmd
	for _, c := range cmds {
		next, effects, err := m.machine.Reduce(m.state, c)
		if err != nil {
			m.logger.Debug("gallery command rejected",
				"command", fmt.Sprintf("%T", c), "mode", m.state.Mode(), "err", err)
			continue
		}
		if next.ActiveID != m.state.ActiveID {
			m.logger.Debug("selection changed", "from", m.state.ActiveID, "to", next.ActiveID)
		}
		m.state = next
		if len(effects) > 0 {
			out = append(out, m.runEffects(effects))
		}
	}
	m.syncKeys()
	return m, tea.Batch(out...)
}

func (m Model) syncKeys() {
	it, ok := gallery.Active(m.cat, m.state)
	m.input.Keys.Sync(m.state, ok && it.HasGallery(), ok && it.HasLink())
}

// Page returns the current page.
func (m Model) Page() Page { return m.page }

// State returns the films page selection state.
func (m Model) State() gallery.State { return m.state }

// Status returns the last status bar message.
func (m Model) Status() string { return m.status }

// Quitting reports whether the program is shutting down.
func (m Model) Quitting() bool { return m.quitting }
