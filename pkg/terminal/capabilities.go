package terminal

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Capabilities summarizes what the current session can display.
type Capabilities struct {
	Term        Terminal
	Protocol    Protocol
	Size        Size
	Color       termenv.Profile
	Interactive bool // stdin and stdout are terminals
	SSH         bool
	Hyperlinks  bool
}

// Probe detects the session's capabilities. override is the configured
// image protocol ("auto" or a protocol name). An unknown override is
// returned as an error alongside capabilities built from detection.
func Probe(override string) (Capabilities, error) {
	term := Detect()
	ssh := IsSSH(os.Getenv)
	proto, err := ResolveProtocol(term, ssh, override)

	caps := Capabilities{
		Term:        term,
		Protocol:    proto,
		Size:        GetSize(),
		Color:       termenv.NewOutput(os.Stdout).EnvColorProfile(),
		Interactive: IsInteractive(os.Stdin, os.Stdout),
		SSH:         ssh,
		Hyperlinks:  term.SupportsHyperlinks(),
	}
	if caps.Color == termenv.Ascii && caps.Protocol == ProtocolHalfblocks {
		// Halfblocks need colour; without it only titles make sense.
		caps.Protocol = ProtocolNone
	}
	return caps, err
}

// IsInteractive reports whether every file is a terminal.
func IsInteractive(files ...*os.File) bool {
	for _, f := range files {
		fd := f.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return false
		}
	}
	return true
}
