package theme

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

type tomlTheme struct {
	Name   string            `toml:"name"`
	Base   string            `toml:"base,omitempty"`
	Colors map[string]string `toml:"colors"`
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadFromTOML parses a theme file:
//
//	name = "dusk"
//	base = "horus"   # optional, colours not listed are taken from it
//
//	[colors]
//	accent = "#ff8800"
func LoadFromTOML(data []byte) (Theme, error) {
	var tt tomlTheme
	md, err := toml.Decode(string(data), &tt)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: parse TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Theme{}, fmt.Errorf("theme: unknown keys %v", undecoded)
	}
	if tt.Name == "" {
		return Theme{}, errors.New("theme: name is required")
	}

	var t Theme
	if tt.Base != "" {
		base, ok := Lookup(tt.Base)
		if !ok {
			return Theme{}, fmt.Errorf("theme: unknown base %q", tt.Base)
		}
		t = base
	}
	t.Name = tt.Name

	known := make(map[string]bool)
	for _, f := range t.Fields() {
		known[f.Key] = true
		if v, ok := tt.Colors[f.Key]; ok {
			*f.Value = v
		}
	}
	var errs []error
	for k := range tt.Colors {
		if !known[k] {
			errs = append(errs, fmt.Errorf("unknown color %q", k))
		}
	}
	if err := errors.Join(append(errs, Validate(t))...); err != nil {
		return Theme{}, fmt.Errorf("theme %q: %w", tt.Name, err)
	}
	return t, nil
}

// LoadFile reads a theme file and registers it.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: %w", err)
	}
	t, err := LoadFromTOML(data)
	if err != nil {
		return Theme{}, err
	}
	Register(t)
	return t, nil
}

// SaveToTOML serializes t with every colour listed.
func SaveToTOML(t Theme) ([]byte, error) {
	tt := tomlTheme{Name: t.Name, Colors: make(map[string]string)}
	for _, f := range t.Fields() {
		tt.Colors[f.Key] = *f.Value
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tt); err != nil {
		return nil, fmt.Errorf("theme: encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate reports every colour that is missing or not #rrggbb.
func Validate(t Theme) error {
	var errs []error
	for _, f := range t.Fields() {
		switch {
		case *f.Value == "":
			errs = append(errs, fmt.Errorf("%s is required", f.Key))
		case !hexColorRe.MatchString(*f.Value):
			errs = append(errs, fmt.Errorf("%s %q is not #rrggbb", f.Key, *f.Value))
		}
	}
	return errors.Join(errs...)
}
