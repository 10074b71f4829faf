package catalog

import (
	"bytes"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return u
}

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()
	if c.Len() != 4 {
		t.Fatalf("builtin len = %d, want 4", c.Len())
	}
	if c.Studio().Name != "HORUS" {
		t.Errorf("studio name = %q, want HORUS", c.Studio().Name)
	}
	if n := len(c.Section(Upcoming)); n != 2 {
		t.Errorf("upcoming = %d, want 2", n)
	}
	if n := len(c.Section(Past)); n != 2 {
		t.Errorf("past = %d, want 2", n)
	}

	// A gallery that omits its primary gets it prepended.
	it, err := c.Find("film-precedent")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(it.Gallery) != 3 || it.Gallery[0] != it.Primary {
		t.Errorf("gallery = %v, want primary prepended", it.Gallery)
	}

	// An item without a gallery stays without one.
	it, err = c.Find("un-autre-film")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if it.HasGallery() {
		t.Errorf("un-autre-film should have no gallery, got %v", it.Gallery)
	}
	if it.HasLink() {
		t.Error("un-autre-film should have no link")
	}
}

func TestFindNotFound(t *testing.T) {
	c := Builtin()
	_, err := c.Find("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if c.Index("nope") != -1 {
		t.Error("Index of unknown id should be -1")
	}
}

func TestNewKeepsGalleryWithPrimary(t *testing.T) {
	gallery := []media.Ref{"a1.jpg", "a2.jpg", "a3.jpg"}
	c, err := New([]Item{{ID: "A", Primary: "a1.jpg", Gallery: gallery}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	it, _ := c.Find("A")
	if len(it.Gallery) != 3 {
		t.Errorf("gallery = %v, want unchanged length 3", it.Gallery)
	}

	// The catalog holds its own copy.
	gallery[0] = "mutated.jpg"
	it, _ = c.Find("A")
	if it.Gallery[0] != "a1.jpg" {
		t.Errorf("catalog gallery changed through caller slice: %v", it.Gallery)
	}
}

func TestNewDefaults(t *testing.T) {
	c, err := New([]Item{{ID: "x", Primary: "x.jpg"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	it, _ := c.Find("x")
	if it.Section != Past {
		t.Errorf("section = %q, want past", it.Section)
	}
	if it.Theme != DefaultPalette {
		t.Errorf("theme = %+v, want defaults", it.Theme)
	}
}

func TestNewRejectsInvalidItems(t *testing.T) {
	items := []Item{
		{ID: "dup", Primary: "a.jpg"},
		{ID: "dup", Primary: "b.jpg"},
		{ID: "", Primary: "c.jpg"},
		{ID: "noprimary"},
		{ID: "relative", Primary: "d.jpg", ExternalLink: mustURL(t, "/films/relative")},
		{ID: "color", Primary: "e.jpg", Theme: Palette{Accent: "gold"}},
		{ID: "section", Primary: "f.jpg", Section: "someday"},
	}
	_, err := New(items)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		`duplicate id "dup"`,
		"empty id",
		"empty primary media",
		"not absolute",
		"theme.accent",
		"unknown section",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q:\n%v", want, msg)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := Builtin()
	all := c.All()
	all[0].Title = "changed"
	if first := c.All()[0]; first.Title == "changed" {
		t.Error("All should return a copy")
	}
}

func TestReturnedItemsDoNotAlias(t *testing.T) {
	c := Builtin()
	it, err := c.Find("le-titre-du-film")
	if err != nil {
		t.Fatal(err)
	}
	if !it.HasGallery() || len(it.Team.Main) == 0 || !it.Team.HasAdditional() {
		t.Fatalf("le-titre-du-film should have a gallery and both credit lists: %+v", it)
	}
	wantRef := it.Gallery[0]
	wantRole := it.Team.Main[0].Role
	wantName := it.Team.Additional[0].Names[0]

	it.Gallery[0] = "tampered.jpg"
	it.Team.Main[0].Role = "tampered"
	it.Team.Additional[0].Names[0] = "tampered"
	it.ExternalLink.Path = "/tampered"

	for _, got := range []Item{mustFind(t, c, "le-titre-du-film"), c.All()[c.Index("le-titre-du-film")]} {
		if got.Gallery[0] != wantRef || got.Team.Main[0].Role != wantRole || got.Team.Additional[0].Names[0] != wantName {
			t.Errorf("catalog changed through a returned item: %+v", got)
		}
		if got.ExternalLink.Path == "/tampered" {
			t.Error("catalog link changed through a returned item")
		}
	}

	sec := c.Section(it.Section)
	sec[0].Gallery = append(sec[0].Gallery[:0], "x.jpg")
	if c.Section(it.Section)[0].Gallery[0] == "x.jpg" {
		t.Error("catalog changed through Section")
	}
}

func mustFind(t *testing.T, c *Catalog, id string) Item {
	t.Helper()
	it, err := c.Find(id)
	if err != nil {
		t.Fatal(err)
	}
	return it
}

func TestRefsDistinctPrimariesFirst(t *testing.T) {
	c := Builtin()
	refs := c.Refs()
	seen := make(map[media.Ref]bool)
	for _, r := range refs {
		if seen[r] {
			t.Fatalf("duplicate ref %q", r)
		}
		seen[r] = true
	}
	for i, it := range c.All() {
		if refs[i] != it.Primary {
			t.Errorf("refs[%d] = %q, want primary %q", i, refs[i], it.Primary)
		}
	}
}

func TestYAMLAndTOMLRoundTrip(t *testing.T) {
	orig := Builtin()

	for _, format := range []Format{YAML, TOML} {
		var buf bytes.Buffer
		if err := orig.Encode(&buf, format); err != nil {
			t.Fatalf("encode %d: %v", format, err)
		}
		back, err := Parse(&buf, format)
		if err != nil {
			t.Fatalf("parse %d: %v\n%s", format, err, buf.String())
		}
		if back.Len() != orig.Len() {
			t.Fatalf("format %d: len = %d, want %d", format, back.Len(), orig.Len())
		}
		for i, want := range orig.All() {
			got := back.All()[i]
			if got.ID != want.ID || got.Title != want.Title || got.Primary != want.Primary {
				t.Errorf("format %d item %d = %+v, want %+v", format, i, got, want)
			}
			if len(got.Gallery) != len(want.Gallery) {
				t.Errorf("format %d item %s gallery = %v, want %v", format, want.ID, got.Gallery, want.Gallery)
			}
			if got.HasLink() != want.HasLink() {
				t.Errorf("format %d item %s link mismatch", format, want.ID)
			}
			if len(got.Team.Additional) != len(want.Team.Additional) {
				t.Errorf("format %d item %s additional credits mismatch", format, want.ID)
			}
		}
		if back.Studio().Name != orig.Studio().Name {
			t.Errorf("format %d studio = %q", format, back.Studio().Name)
		}
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	doc := "films:\n  - id: a\n    primary: a.jpg\n    colour: red\n"
	if _, err := Parse(strings.NewReader(doc), YAML); err == nil {
		t.Error("expected error for unknown yaml key")
	}

	tdoc := "[[films]]\nid = \"a\"\nprimary = \"a.jpg\"\ncolour = \"red\"\n"
	if _, err := Parse(strings.NewReader(tdoc), TOML); err == nil {
		t.Error("expected error for unknown toml key")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "films.toml")
	doc := `
[studio]
name = "HORUS"

[[films]]
id = "a"
title = "A"
year = "2024"
primary = "images/films/a1.jpg"
gallery = ["images/films/a1.jpg", "images/films/a2.jpg"]
link = "https://example.com/a"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	it, err := c.Find("a")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if it.ExternalLink.Host != "example.com" {
		t.Errorf("link host = %q", it.ExternalLink.Host)
	}

	if _, err := LoadFile(filepath.Join(dir, "films.json")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
