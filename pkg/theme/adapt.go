package theme

import (
	"strconv"

	"github.com/muesli/termenv"
)

// Adapt converts every colour to the closest one the profile can show.
// 256 and 16 colour profiles yield palette indices, which lipgloss accepts
// as colour strings; Ascii yields empty strings (no colour).
func Adapt(t Theme, profile termenv.Profile) Theme {
	if profile == termenv.TrueColor {
		return t
	}
	for _, f := range t.Fields() {
		*f.Value = adaptColor(*f.Value, profile)
	}
	return t
}

func adaptColor(hex string, profile termenv.Profile) string {
	switch c := profile.Color(hex).(type) {
	case termenv.ANSI256Color:
		return strconv.Itoa(int(c))
	case termenv.ANSIColor:
		return strconv.Itoa(int(c))
	case termenv.RGBColor:
		return string(c)
	}
	return ""
}
