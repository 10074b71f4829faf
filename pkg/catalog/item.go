// Package catalog holds the studio's read-only film catalog: the items shown
// on the films page, their media references, credits, and presentation
// palettes. A Catalog is built once at startup and never mutated.
package catalog

import (
	"fmt"
	"net/url"
	"slices"

	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

// Section groups items on the films page.
type Section string

const (
	Upcoming Section = "upcoming"
	Past     Section = "past"
)

// Title returns the heading the films page shows for s.
func (s Section) Title() string {
	switch s {
	case Upcoming:
		return "PROCHAINES SORTIES"
	case Past:
		return "REVOYEZ"
	}
	return string(s)
}

func parseSection(s string) (Section, error) {
	switch Section(s) {
	case "":
		return Past, nil
	case Upcoming, Past:
		return Section(s), nil
	}
	return "", fmt.Errorf("unknown section %q (want upcoming or past)", s)
}

// Credit is one role and the people who filled it.
type Credit struct {
	Role  string   `yaml:"role" toml:"role" json:"role"`
	Names []string `yaml:"names" toml:"names" json:"names"`
}

// Credits splits a team into the always-visible main credits and the
// additional credits revealed when the credits panel is expanded.
type Credits struct {
	Main       []Credit `yaml:"main" toml:"main" json:"main"`
	Additional []Credit `yaml:"additional,omitempty" toml:"additional,omitempty" json:"additional,omitempty"`
}

// HasAdditional reports whether expanding the credits panel reveals anything.
func (c Credits) HasAdditional() bool { return len(c.Additional) > 0 }

// Palette is the presentation colour triple for one item, as #rrggbb hex.
type Palette struct {
	Background string `yaml:"background" toml:"background" json:"background"`
	Text       string `yaml:"text" toml:"text" json:"text"`
	Accent     string `yaml:"accent" toml:"accent" json:"accent"`
}

// DefaultPalette is applied to items that leave colours unset.
var DefaultPalette = Palette{
	Background: "#0a0a0a",
	Text:       "#f2f2f2",
	Accent:     "#c9a227",
}

func (p Palette) withDefaults() Palette {
	if p.Background == "" {
		p.Background = DefaultPalette.Background
	}
	if p.Text == "" {
		p.Text = DefaultPalette.Text
	}
	if p.Accent == "" {
		p.Accent = DefaultPalette.Accent
	}
	return p
}

// Item is one showcased work.
type Item struct {
	ID          string
	Title       string
	Year        string
	Description string
	Section     Section

	// Primary is the cover image.
	Primary media.Ref

	// Gallery is the carousel sequence. It may be empty, in which case the
	// item has no carousel and no lightbox. When non-empty it contains
	// Primary.
	Gallery []media.Ref

	// ExternalLink is nil when the item links nowhere.
	ExternalLink *url.URL

	Team  Credits
	Theme Palette
}

// HasGallery reports whether the item can open a carousel or lightbox.
func (it Item) HasGallery() bool { return len(it.Gallery) > 0 }

// HasLink reports whether the item has an external link.
func (it Item) HasLink() bool { return it.ExternalLink != nil }

// clone returns a copy sharing no slices or pointers with it.
func (it Item) clone() Item {
	it.Gallery = slices.Clone(it.Gallery)
	it.Team.Main = cloneCredits(it.Team.Main)
	it.Team.Additional = cloneCredits(it.Team.Additional)
	if it.ExternalLink != nil {
		u := *it.ExternalLink
		if u.User != nil {
			user := *u.User
			u.User = &user
		}
		it.ExternalLink = &u
	}
	return it
}

func cloneCredits(cs []Credit) []Credit {
	if cs == nil {
		return nil
	}
	out := make([]Credit, len(cs))
	for i, c := range cs {
		out[i] = Credit{Role: c.Role, Names: slices.Clone(c.Names)}
	}
	return out
}

// normalize copies the item and prepends Primary to a non-empty gallery
// that lacks it.
func (it Item) normalize() Item {
	it = it.clone()
	if len(it.Gallery) > 0 && !slices.Contains(it.Gallery, it.Primary) {
		it.Gallery = slices.Insert(it.Gallery, 0, it.Primary)
	}
	if it.Section == "" {
		it.Section = Past
	}
	it.Theme = it.Theme.withDefaults()
	return it
}
