// Package terminal identifies the terminal emulator the showreel runs in,
// picks the image protocol for the gallery, and measures the cell grid so
// mouse drags can be converted to pixel offsets.
//
// Detection reads environment variables only and performs no terminal
// queries, so it is safe to run before the TUI takes over the screen.
package terminal

import (
	"os"
	"strings"
)

// Getenv looks up an environment variable. os.Getenv satisfies it; tests
// pass a map lookup.
type Getenv func(string) string

// Terminal identifies the terminal emulator in use.
type Terminal int

const (
	TermUnknown   Terminal = iota
	TermGhostty            // kitty graphics, OSC 8
	TermKitty              // kitty graphics, OSC 8
	TermWezTerm            // kitty graphics, iTerm2 images, sixel
	TermITerm2             // iTerm2 images, OSC 8
	TermFoot               // sixel
	TermAlacritty          // no image protocol
	TermVTE                // GNOME Terminal, Tilix and friends
	TermVSCode             // iTerm2 images since 1.80
	TermTmux
	TermScreen
	TermGeneric
)

var terminalNames = [...]string{
	TermUnknown:   "unknown",
	TermGhostty:   "ghostty",
	TermKitty:     "kitty",
	TermWezTerm:   "wezterm",
	TermITerm2:    "iterm2",
	TermFoot:      "foot",
	TermAlacritty: "alacritty",
	TermVTE:       "vte",
	TermVSCode:    "vscode",
	TermTmux:      "tmux",
	TermScreen:    "screen",
	TermGeneric:   "generic",
}

// String returns the lowercase name of the terminal.
func (t Terminal) String() string {
	if int(t) < len(terminalNames) {
		return terminalNames[t]
	}
	return "unknown"
}

// Multiplexer reports whether t is tmux or screen. Inline image protocols
// generally do not pass through multiplexers.
func (t Terminal) Multiplexer() bool {
	return t == TermTmux || t == TermScreen
}

// SupportsHyperlinks reports whether the terminal renders OSC 8 links.
func (t Terminal) SupportsHyperlinks() bool {
	switch t {
	case TermGhostty, TermKitty, TermWezTerm, TermITerm2, TermFoot,
		TermAlacritty, TermVTE, TermVSCode:
		return true
	}
	return false
}

// Detect identifies the terminal from the process environment.
func Detect() Terminal {
	return DetectFrom(os.Getenv)
}

// DetectFrom identifies the terminal using getenv. Signals are checked from
// most to least specific:
//
//  1. TERM_PROGRAM
//  2. TERM
//  3. emulator specific variables (KITTY_WINDOW_ID, WEZTERM_EXECUTABLE, ...)
//  4. VTE_VERSION
//  5. TMUX / STY
//  6. LC_TERMINAL, which iTerm2 forwards over SSH
func DetectFrom(getenv Getenv) Terminal {
	switch strings.ToLower(getenv("TERM_PROGRAM")) {
	case "ghostty":
		return TermGhostty
	case "kitty":
		return TermKitty
	case "wezterm":
		return TermWezTerm
	case "iterm.app":
		return TermITerm2
	case "vscode":
		return TermVSCode
	case "alacritty":
		return TermAlacritty
	case "tmux":
		return TermTmux
	}

	term := getenv("TERM")
	switch {
	case term == "xterm-ghostty":
		return TermGhostty
	case term == "xterm-kitty":
		return TermKitty
	case strings.HasPrefix(term, "foot"):
		return TermFoot
	case strings.HasPrefix(term, "alacritty"):
		return TermAlacritty
	case strings.HasPrefix(term, "screen") && getenv("STY") != "":
		return TermScreen
	}

	switch {
	case getenv("KITTY_WINDOW_ID") != "":
		return TermKitty
	case getenv("WEZTERM_EXECUTABLE") != "":
		return TermWezTerm
	case getenv("ITERM_SESSION_ID") != "":
		return TermITerm2
	case getenv("VTE_VERSION") != "":
		return TermVTE
	case getenv("TMUX") != "":
		return TermTmux
	case getenv("STY") != "":
		return TermScreen
	case getenv("LC_TERMINAL") == "iTerm2":
		return TermITerm2
	}
	return TermGeneric
}

// IsSSH reports whether the session runs over SSH.
func IsSSH(getenv Getenv) bool {
	return getenv("SSH_TTY") != "" ||
		getenv("SSH_CONNECTION") != "" ||
		getenv("SSH_CLIENT") != ""
}
