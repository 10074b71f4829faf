package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

// ErrNotFound is returned by Find for an id the catalog does not hold.
var ErrNotFound = errors.New("catalog: item not found")

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Studio describes the studio itself for the home and about pages.
type Studio struct {
	Name    string   `yaml:"name" toml:"name" json:"name"`
	Tagline string   `yaml:"tagline" toml:"tagline" json:"tagline"`
	About   []string `yaml:"about" toml:"about" json:"about"`
	Team    []Credit `yaml:"team" toml:"team" json:"team"`
}

// Catalog is an immutable, ordered set of items.
type Catalog struct {
	studio Studio
	items  []Item
	byID   map[string]int
}

// New validates items and builds a catalog without studio metadata.
func New(items []Item) (*Catalog, error) {
	return Build(Studio{}, items)
}

// Build validates items and builds a catalog. Every problem found is
// reported, joined into one error.
func Build(studio Studio, items []Item) (*Catalog, error) {
	c := &Catalog{
		studio: studio,
		items:  make([]Item, 0, len(items)),
		byID:   make(map[string]int, len(items)),
	}
	var errs []error
	for i, raw := range items {
		it := raw.normalize()
		if err := validateItem(it); err != nil {
			errs = append(errs, fmt.Errorf("item %d (%q): %w", i, it.ID, err))
			continue
		}
		if _, dup := c.byID[it.ID]; dup {
			errs = append(errs, fmt.Errorf("item %d: duplicate id %q", i, it.ID))
			continue
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func validateItem(it Item) error {
	var errs []error
	if it.ID == "" {
		errs = append(errs, errors.New("empty id"))
	}
	if it.Primary == "" {
		errs = append(errs, errors.New("empty primary media"))
	}
	if _, err := parseSection(string(it.Section)); err != nil {
		errs = append(errs, err)
	}
	if slices.Contains(it.Gallery, media.Ref("")) {
		errs = append(errs, errors.New("empty gallery reference"))
	}
	if it.ExternalLink != nil && !it.ExternalLink.IsAbs() {
		errs = append(errs, fmt.Errorf("link %q is not absolute", it.ExternalLink))
	}
	colors := [...]struct{ name, value string }{
		{"background", it.Theme.Background},
		{"text", it.Theme.Text},
		{"accent", it.Theme.Accent},
	}
	for _, c := range colors {
		if !hexColorRe.MatchString(c.value) {
			errs = append(errs, fmt.Errorf("theme.%s %q is not #rrggbb", c.name, c.value))
		}
	}
	return errors.Join(errs...)
}

// All returns a copy of every item in catalog order.
func (c *Catalog) All() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

// Find returns the item with the given id.
func (c *Catalog) Find(id string) (Item, error) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.items[i].clone(), nil
}

// Index returns the catalog position of id, or -1.
func (c *Catalog) Index(id string) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return -1
}

// Section returns the items in s, in catalog order.
func (c *Catalog) Section(s Section) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Section == s {
			out = append(out, it.clone())
		}
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Studio returns the studio metadata.
func (c *Catalog) Studio() Studio {
	s := c.studio
	s.About = slices.Clone(s.About)
	s.Team = cloneCredits(s.Team)
	return s
}

// Refs returns every distinct media reference in the catalog, primaries
// first, in catalog order.
func (c *Catalog) Refs() []media.Ref {
	seen := make(map[media.Ref]bool)
	var refs []media.Ref
	add := func(r media.Ref) {
		if !seen[r] {
			seen[r] = true
			refs = append(refs, r)
		}
	}
	for _, it := range c.items {
		add(it.Primary)
	}
	for _, it := range c.items {
		for _, r := range it.Gallery {
			add(r)
		}
	}
	return refs
}
