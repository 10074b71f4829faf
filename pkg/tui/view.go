package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/gallery"
	"gitlab.com/tinyland/lab/showreel/pkg/input"
	"gitlab.com/tinyland/lab/showreel/pkg/links"
	"gitlab.com/tinyland/lab/showreel/pkg/media"
	"gitlab.com/tinyland/lab/showreel/pkg/render"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width <= 0 || m.height <= 0 {
		return "Loading..."
	}

	footer := m.footerView()
	var view string
	if m.page == PageFilms && m.state.LightboxOpen {
		bodyH := max(m.height-lipgloss.Height(footer), 1)
		view = lipgloss.JoinVertical(lipgloss.Left, m.lightboxView(m.width, bodyH), footer)
	} else {
		header := m.headerView()
		bodyH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
		var body string
		switch m.page {
		case PageHome:
			body = m.homeView(m.width, bodyH)
		case PageFilms:
			body = m.filmsView(m.width, bodyH)
		case PageAbout:
			body = m.aboutView(m.width, bodyH)
		}
		body = lipgloss.NewStyle().Height(bodyH).MaxHeight(bodyH).Render(body)
		view = lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	}

	if m.zones != nil {
		return m.zones.Scan(view)
	}
	return view
}

func (m Model) headerView() string {
	tabs := make([]string, 0, len(pageNames))
	for i, name := range pageNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Page(i) == m.page {
			tabs = append(tabs, m.styles.tabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.tab.Render(label))
		}
	}
	name := m.styles.title.Render(m.cat.Studio().Name)
	return lipgloss.JoinHorizontal(lipgloss.Top, name, "   ", strings.Join(tabs, " "))
}

func (m Model) footerView() string {
	st := m.cache.Stats()
	parts := []string{m.page.String()}
	if m.page == PageFilms {
		parts = append(parts, m.state.Mode())
	}
	if m.state.Hovered {
		parts = append(parts, "◉")
	}
	parts = append(parts,
		fmt.Sprintf("%d images %s", st.Loaded, humanize.Bytes(uint64(max(st.Bytes, 0)))),
		m.renderer.Protocol().String(),
	)
	if st.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", st.Failed))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	status := m.styles.status.Render(ansi.Truncate(strings.Join(parts, " · "), m.width, "…"))
	return lipgloss.JoinVertical(lipgloss.Left, status, m.help.View(m.input.Keys))
}

// wordmark is a three-row block font for the studio name.
var wordmark = map[rune][3]string{
	'H': {"█ █", "█▀█", "▀ ▀"},
	'O': {"█▀█", "█ █", "▀▀▀"},
	'R': {"█▀█", "█▀▄", "▀ ▀"},
	'U': {"█ █", "█ █", "▀▀▀"},
	'S': {"█▀▀", "▀▀█", "▀▀▀"},
	' ': {"  ", "  ", "  "},
}

// logo draws name in the block font, or returns "" if a letter is missing.
func logo(name string) string {
	var rows [3][]string
	for _, r := range strings.ToUpper(name) {
		glyph, ok := wordmark[r]
		if !ok {
			return ""
		}
		for i := range rows {
			rows[i] = append(rows[i], glyph[i])
		}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r, " ")
	}
	return strings.Join(lines, "\n")
}

func (m Model) homeView(w, h int) string {
	studio := m.cat.Studio()
	mark := logo(studio.Name)
	if mark == "" {
		mark = studio.Name
	}
	parts := []string{m.styles.title.Render(mark)}
	if studio.Tagline != "" {
		parts = append(parts, "", m.styles.dim.Render(studio.Tagline))
	}
	if upcoming := m.cat.Section(catalog.Upcoming); len(upcoming) > 0 {
		parts = append(parts, "", m.styles.section.Render(catalog.Upcoming.Title()))
		for _, it := range upcoming {
			parts = append(parts, m.styles.row.Render(it.Title)+" "+m.styles.dim.Render(it.Year))
		}
	}
	parts = append(parts, "", m.styles.dim.Render("enter · films"))
	block := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, block)
}

func (m Model) aboutView(w, h int) string {
	studio := m.cat.Studio()
	textW := min(w-4, 72)
	para := m.styles.base.Width(max(textW, 10))

	parts := []string{m.styles.title.Render(studio.Name)}
	for _, p := range studio.About {
		parts = append(parts, "", para.Render(p))
	}
	if len(studio.Team) > 0 {
		parts = append(parts, "", m.styles.section.Render("TEAM"))
		parts = append(parts, m.creditLines(studio.Team, m.styles)...)
	}
	return lipgloss.NewStyle().Padding(1, 2).MaxHeight(h).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) filmsView(w, h int) string {
	it, active := gallery.Active(m.cat, m.state)
	narrow := m.input.Platform() == input.Touch || w < input.NarrowColumns

	if !active {
		list := m.listView(w)
		hint := m.styles.dim.Render("hover a title or press ↓ to preview")
		return lipgloss.JoinVertical(lipgloss.Left, list, "", hint)
	}
	if narrow {
		list := m.listView(w)
		detail := m.detailView(it, w, max(h-lipgloss.Height(list)-1, 8))
		return lipgloss.JoinVertical(lipgloss.Left, list, "", detail)
	}
	listW := min(36, w/3)
	list := lipgloss.NewStyle().Width(listW).Render(m.listView(listW))
	detail := m.detailView(it, w-listW-2, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail)
}

// listView renders the catalog rows grouped by section.
func (m Model) listView(w int) string {
	var lines []string
	for _, sec := range []catalog.Section{catalog.Upcoming, catalog.Past} {
		items := m.cat.Section(sec)
		if len(items) == 0 {
			continue
		}
		lines = append(lines, m.styles.section.Render(sec.Title()))
		for _, it := range items {
			marker, st := "  ", m.styles.row
			if it.ID == m.state.ActiveID {
				marker, st = "▸ ", m.styles.rowActive
			}
			title := ansi.Truncate(it.Title, max(w-len(it.Year)-4, 4), "…")
			line := marker + st.Render(title) + " " + m.styles.dim.Render(it.Year)
			lines = append(lines, m.mark(input.RowZone(it.ID), line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) detailView(it catalog.Item, w, h int) string {
	st := m.styles.film(it.Theme)
	uri := ""
	if it.HasLink() {
		uri = it.ExternalLink.String()
	}

	parts := []string{
		m.mark(input.ZoneBack, st.dim.Render("← back")),
		links.Hyperlink(st.title.Render(it.Title), uri, m.caps.Hyperlinks) + "  " + st.dim.Render(it.Year),
	}

	imgW, imgH := max(w-2, 8), max(h/2, 6)
	ref, zoneID, ok := it.Primary, input.ZonePrimary, it.Primary != ""
	if it.HasGallery() {
		ref, ok = gallery.Current(it, m.state)
		zoneID = input.ZoneCarousel
	}
	if ok {
		pic := m.picture(it, ref, imgW-2, imgH-2)
		if !m.renderer.Protocol().Graphic() {
			pic = st.frame.Render(pic)
		}
		parts = append(parts, m.mark(zoneID, pic))
	}
	if it.HasGallery() {
		parts = append(parts, m.dots(it, st))
	}
	if it.Description != "" {
		parts = append(parts, "", st.base.Width(max(w, 10)).Render(it.Description))
	}
	if len(it.Team.Main) > 0 {
		parts = append(parts, "")
		parts = append(parts, m.creditLines(it.Team.Main, st)...)
	}
	if it.Team.HasAdditional() {
		if m.state.CreditsExpanded {
			parts = append(parts, m.creditLines(it.Team.Additional, st)...)
			parts = append(parts, m.mark(input.ZoneCredits, st.dim.Render("− fewer credits")))
		} else {
			parts = append(parts, m.mark(input.ZoneCredits, st.dim.Render("+ more credits")))
		}
	}
	if uri != "" {
		parts = append(parts, "", m.mark(input.ZoneLink, links.Hyperlink(st.link.Render("view film ↗"), uri, m.caps.Hyperlinks)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) dots(it catalog.Item, st styles) string {
	marks := make([]string, len(it.Gallery))
	for i := range it.Gallery {
		if i == m.state.Index {
			marks[i] = st.title.Render("●")
		} else {
			marks[i] = st.dim.Render("○")
		}
	}
	return strings.Join(marks, " ") + st.dim.Render(fmt.Sprintf("  %d/%d", m.state.Index+1, len(it.Gallery)))
}

func (m Model) creditLines(credits []catalog.Credit, st styles) []string {
	lines := make([]string, 0, len(credits))
	for _, c := range credits {
		lines = append(lines, st.dim.Render(c.Role)+"  "+st.base.Render(strings.Join(c.Names, ", ")))
	}
	return lines
}

func (m Model) lightboxView(w, h int) string {
	it, ok := gallery.Active(m.cat, m.state)
	if !ok {
		return ""
	}
	st := m.styles.film(it.Theme)
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.mark(input.ZoneClose, st.dim.Render("✕ close")),
		"   ",
		st.title.Render(it.Title),
		"   ",
		st.dim.Render(fmt.Sprintf("%d / %d", m.state.Index+1, len(it.Gallery))),
	)
	bodyH := max(h-lipgloss.Height(top), 2)
	pic := ""
	if ref, ok := gallery.Current(it, m.state); ok {
		pic = m.mark(input.ZoneLightbox, m.picture(it, ref, max(w-4, 4), max(bodyH-1, 1)))
	}
	body := lipgloss.Place(w, bodyH, lipgloss.Center, lipgloss.Center, pic,
		lipgloss.WithWhitespaceBackground(lipgloss.Color(it.Theme.Background)))
	return lipgloss.JoinVertical(lipgloss.Left, top, body)
}

// picture renders ref into a w x h cell box. The active item's primary
// image follows the reducer's preview state; other gallery images follow
// the cache.
func (m Model) picture(it catalog.Item, ref media.Ref, w, h int) string {
	state := m.cache.State(ref)
	if ref == it.Primary && it.ID == m.state.ActiveID {
		state = m.state.Preview
	}

	switch state {
	case media.Loaded:
		handle, ok := m.cache.Get(ref)
		if !ok {
			break
		}
		out, err := m.renderer.Render(handle, w, h)
		if err == nil {
			return out
		}
		if !errors.Is(err, render.ErrDisabled) {
			m.logger.Debug("render failed", "ref", ref.String(), "err", err)
		}
		return m.placeholder(w, h, m.styles.dim.Render(ref.Base()))
	case media.Failed:
		return m.placeholder(w, h, m.styles.failed.Render("content unavailable"))
	}
	return m.placeholder(w, h, m.spinner.View()+m.styles.pending.Render(" loading"))
}

func (m Model) placeholder(w, h int, text string) string {
	return lipgloss.Place(max(w, 1), max(h, 1), lipgloss.Center, lipgloss.Center, text)
}
