package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

// Document is the on-disk shape of a catalog file. The same structure is
// read from YAML and TOML and written by --list --json.
type Document struct {
	Studio Studio        `yaml:"studio" toml:"studio" json:"studio"`
	Films  []DocumentItem `yaml:"films" toml:"films" json:"films"`
}

// DocumentItem is one film entry in a catalog file.
type DocumentItem struct {
	ID          string   `yaml:"id" toml:"id" json:"id"`
	Title       string   `yaml:"title" toml:"title" json:"title"`
	Year        string   `yaml:"year" toml:"year" json:"year"`
	Description string   `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	Section     string   `yaml:"section,omitempty" toml:"section,omitempty" json:"section,omitempty"`
	Primary     string   `yaml:"primary" toml:"primary" json:"primary"`
	Gallery     []string `yaml:"gallery,omitempty" toml:"gallery,omitempty" json:"gallery,omitempty"`
	Link        string   `yaml:"link,omitempty" toml:"link,omitempty" json:"link,omitempty"`
	Team        Credits  `yaml:"team" toml:"team" json:"team"`
	Theme       Palette  `yaml:"theme" toml:"theme" json:"theme"`
}

// Format selects a catalog file encoding.
type Format int

const (
	YAML Format = iota
	TOML
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("catalog: unsupported file type %q (want .yaml, .yml or .toml)", filepath.Ext(path))
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a catalog document.
func Parse(r io.Reader, format Format) (*Catalog, error) {
	var doc Document
	switch format {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case TOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode toml: unknown keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}
	return doc.Build()
}

// Build converts the document into a validated catalog.
func (d Document) Build() (*Catalog, error) {
	items := make([]Item, 0, len(d.Films))
	var linkErrs []error
	for i, f := range d.Films {
		it := Item{
			ID:          f.ID,
			Title:       f.Title,
			Year:        f.Year,
			Description: strings.TrimSpace(f.Description),
			Section:     Section(f.Section),
			Primary:     media.Ref(f.Primary),
			Team:        f.Team,
			Theme:       f.Theme,
		}
		for _, g := range f.Gallery {
			it.Gallery = append(it.Gallery, media.Ref(g))
		}
		if f.Link != "" {
			u, err := url.Parse(f.Link)
			if err != nil {
				linkErrs = append(linkErrs, fmt.Errorf("item %d (%q): link: %w", i, f.ID, err))
				continue
			}
			it.ExternalLink = u
		}
		items = append(items, it)
	}
	c, err := Build(d.Studio, items)
	if err := errors.Join(append(linkErrs, err)...); err != nil {
		return nil, err
	}
	return c, nil
}

// Document returns the file representation of c.
func (c *Catalog) Document() Document {
	doc := Document{Studio: c.studio}
	for _, it := range c.items {
		d := DocumentItem{
			ID:          it.ID,
			Title:       it.Title,
			Year:        it.Year,
			Description: it.Description,
			Section:     string(it.Section),
			Primary:     string(it.Primary),
			Team:        it.Team,
			Theme:       it.Theme,
		}
		for _, g := range it.Gallery {
			d.Gallery = append(d.Gallery, string(g))
		}
		if it.ExternalLink != nil {
			d.Link = it.ExternalLink.String()
		}
		doc.Films = append(doc.Films, d)
	}
	return doc
}

// Encode writes c in the given format.
func (c *Catalog) Encode(w io.Writer, format Format) error {
	doc := c.Document()
	switch format {
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	case TOML:
		return toml.NewEncoder(w).Encode(doc)
	}
	return fmt.Errorf("unknown format %d", format)
}
