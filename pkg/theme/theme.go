// Package theme holds the application palettes. A theme colours the chrome
// around the films (headings, status bar, help); each film's own palette is
// layered on top while it is active.
package theme

import (
	"sort"
	"strings"
	"sync"
)

// DefaultName is the theme used when a requested name is unknown.
const DefaultName = "horus"

// Theme is an application palette of #rrggbb colours.
type Theme struct {
	Name string

	Background string
	Foreground string
	Dim        string // secondary text, years, inactive rows
	Accent     string // cursor, selection marker, focused borders
	Border     string
	Title      string // page headings

	Pending string // loading indicator
	Error   string // "content unavailable" placeholder
	Link    string

	HelpKey  string
	HelpDesc string
}

// Fields returns pointers to every colour with its TOML key, in file order.
func (t *Theme) Fields() []Field {
	return []Field{
		{"background", &t.Background},
		{"foreground", &t.Foreground},
		{"dim", &t.Dim},
		{"accent", &t.Accent},
		{"border", &t.Border},
		{"title", &t.Title},
		{"pending", &t.Pending},
		{"error", &t.Error},
		{"link", &t.Link},
		{"help_key", &t.HelpKey},
		{"help_desc", &t.HelpDesc},
	}
}

// Field names one colour slot of a Theme.
type Field struct {
	Key   string
	Value *string
}

var (
	mu       sync.RWMutex
	registry = map[string]Theme{}
)

func init() {
	for _, t := range builtins() {
		Register(t)
	}
}

// Register adds or replaces a theme under its lowercase name.
func Register(t Theme) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(t.Name)] = t
}

// Lookup returns the named theme.
func Lookup(name string) (Theme, bool) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := registry[strings.ToLower(name)]
	return t, ok
}

// Get returns the named theme, or the default theme if unknown.
func Get(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	t, _ := Lookup(DefaultName)
	return t
}

// Names returns the registered theme names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
