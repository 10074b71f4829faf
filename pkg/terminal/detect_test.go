package terminal

import (
	"os"
	"testing"
)

// env returns a Getenv backed by a map.
func env(vars map[string]string) Getenv {
	return func(k string) string { return vars[k] }
}

func TestDetectFrom(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want Terminal
	}{
		{"ghostty term program", map[string]string{"TERM_PROGRAM": "ghostty"}, TermGhostty},
		{"ghostty term", map[string]string{"TERM": "xterm-ghostty"}, TermGhostty},
		{"kitty term", map[string]string{"TERM": "xterm-kitty"}, TermKitty},
		{"kitty window id", map[string]string{"KITTY_WINDOW_ID": "3"}, TermKitty},
		{"wezterm", map[string]string{"TERM_PROGRAM": "WezTerm"}, TermWezTerm},
		{"wezterm executable", map[string]string{"WEZTERM_EXECUTABLE": "/usr/bin/wezterm"}, TermWezTerm},
		{"iterm2", map[string]string{"TERM_PROGRAM": "iTerm.app"}, TermITerm2},
		{"iterm2 over ssh", map[string]string{"LC_TERMINAL": "iTerm2"}, TermITerm2},
		{"foot", map[string]string{"TERM": "foot-extra"}, TermFoot},
		{"alacritty", map[string]string{"TERM": "alacritty"}, TermAlacritty},
		{"vte", map[string]string{"VTE_VERSION": "7600"}, TermVTE},
		{"vscode", map[string]string{"TERM_PROGRAM": "vscode"}, TermVSCode},
		{"tmux", map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"}, TermTmux},
		{"screen", map[string]string{"TERM": "screen-256color", "STY": "1.pts"}, TermScreen},
		{"screen term without sty", map[string]string{"TERM": "screen"}, TermGeneric},
		{"term program wins over tmux", map[string]string{"TERM_PROGRAM": "kitty", "TMUX": "x"}, TermKitty},
		{"nothing", map[string]string{}, TermGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFrom(env(tt.vars)); got != tt.want {
				t.Errorf("DetectFrom() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTerminalString(t *testing.T) {
	if TermGhostty.String() != "ghostty" {
		t.Errorf("String() = %q", TermGhostty.String())
	}
	if Terminal(99).String() != "unknown" {
		t.Errorf("out of range String() = %q", Terminal(99).String())
	}
}

func TestSelectProtocol(t *testing.T) {
	tests := []struct {
		term Terminal
		ssh  bool
		want Protocol
	}{
		{TermKitty, false, ProtocolKitty},
		{TermGhostty, false, ProtocolKitty},
		{TermWezTerm, false, ProtocolKitty},
		{TermITerm2, false, ProtocolITerm2},
		{TermFoot, false, ProtocolSixel},
		{TermAlacritty, false, ProtocolHalfblocks},
		{TermGeneric, false, ProtocolHalfblocks},
		{TermKitty, true, ProtocolHalfblocks},
		{TermTmux, false, ProtocolHalfblocks},
	}
	for _, tt := range tests {
		if got := SelectProtocol(tt.term, tt.ssh); got != tt.want {
			t.Errorf("SelectProtocol(%v, ssh=%v) = %v, want %v", tt.term, tt.ssh, got, tt.want)
		}
	}
}

func TestResolveProtocolOverride(t *testing.T) {
	p, err := ResolveProtocol(TermKitty, false, "halfblocks")
	if err != nil || p != ProtocolHalfblocks {
		t.Errorf("override halfblocks = %v, %v", p, err)
	}
	p, err = ResolveProtocol(TermAlacritty, false, "none")
	if err != nil || p != ProtocolNone {
		t.Errorf("override none = %v, %v", p, err)
	}
	p, err = ResolveProtocol(TermKitty, false, "auto")
	if err != nil || p != ProtocolKitty {
		t.Errorf("auto = %v, %v", p, err)
	}
	p, err = ResolveProtocol(TermKitty, false, "braille")
	if err == nil {
		t.Error("expected error for unknown override")
	}
	if p != ProtocolKitty {
		t.Errorf("unknown override should fall back to detection, got %v", p)
	}
}

func TestProtocolGraphic(t *testing.T) {
	if !ProtocolKitty.Graphic() || ProtocolHalfblocks.Graphic() || ProtocolNone.Graphic() {
		t.Error("Graphic() misclassifies protocols")
	}
}

func TestIsSSH(t *testing.T) {
	if IsSSH(env(nil)) {
		t.Error("empty env should not be ssh")
	}
	if !IsSSH(env(map[string]string{"SSH_CONNECTION": "1.2.3.4 5 6.7.8.9 22"})) {
		t.Error("SSH_CONNECTION should mark ssh")
	}
}

func TestCellSize(t *testing.T) {
	w, h := Size{Cols: 100, Rows: 50, PixelW: 1000, PixelH: 1000}.CellSize()
	if w != 10 || h != 20 {
		t.Errorf("CellSize = %dx%d, want 10x20", w, h)
	}
	w, h = Size{Cols: 80, Rows: 24}.CellSize()
	if w != DefaultCellWidth || h != DefaultCellHeight {
		t.Errorf("fallback CellSize = %dx%d", w, h)
	}
	if px := (Size{Cols: 96, Rows: 24}).WidthPixels(); px != 768 {
		t.Errorf("WidthPixels = %d, want 768", px)
	}
}

func TestSizeFromEnv(t *testing.T) {
	s := sizeFromEnv(env(map[string]string{"COLUMNS": "120", "LINES": "40"}))
	if s.Cols != 120 || s.Rows != 40 {
		t.Errorf("size = %+v, want 120x40", s)
	}
	s = sizeFromEnv(env(map[string]string{"COLUMNS": "-3", "LINES": "x"}))
	if s.Cols != 80 || s.Rows != 24 {
		t.Errorf("invalid env size = %+v, want 80x24", s)
	}
}

func TestIsInteractiveWithFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notatty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsInteractive(f) {
		t.Error("a regular file is not a terminal")
	}
}
