// Package media provides the shared image cache for the showreel: a
// deduplicating loader that tracks per-reference load state, decodes
// fetched bytes into images, and retains every successful load for the
// lifetime of the process.
//
// Media references are opaque locators resolved by a Fetcher. The default
// layout mirrors the studio site: images/<catalog>/<file>.
package media

import (
	"path"
	"strings"
)

// Ref is an opaque media locator such as "images/films/aube-01.jpg".
type Ref string

// Path builds a Ref in the images/<catalog>/<file> layout.
func Path(catalog, file string) Ref {
	return Ref(path.Join("images", catalog, file))
}

// String returns the locator text.
func (r Ref) String() string { return string(r) }

// Base returns the file name portion of the locator.
func (r Ref) Base() string { return path.Base(string(r)) }

// normalize strips leading slashes and dot segments so "/images/a.jpg" and
// "images/./a.jpg" name the same resource.
func (r Ref) normalize() Ref {
	return Ref(strings.TrimLeft(path.Clean("/"+string(r)), "/"))
}

// Priority is a scheduling hint passed to the fetcher. It never changes
// the outcome of a load.
type Priority int

const (
	Low Priority = iota
	High
)

// String returns "high" or "low".
func (p Priority) String() string {
	if p == High {
		return "high"
	}
	return "low"
}
