package terminal

import (
	"fmt"
	"strings"
)

// Protocol is the image output protocol used for gallery pictures.
type Protocol int

const (
	ProtocolNone       Protocol = iota // titles only, no pictures
	ProtocolKitty                      // kitty graphics protocol
	ProtocolITerm2                     // iTerm2 inline images
	ProtocolSixel                      // DEC sixel
	ProtocolHalfblocks                 // ▀ cells with 24-bit colour, works everywhere
)

var protocolNames = [...]string{
	ProtocolNone:       "none",
	ProtocolKitty:      "kitty",
	ProtocolITerm2:     "iterm2",
	ProtocolSixel:      "sixel",
	ProtocolHalfblocks: "halfblocks",
}

func (p Protocol) String() string {
	if int(p) < len(protocolNames) {
		return protocolNames[p]
	}
	return "unknown"
}

// Graphic reports whether p draws real pixels rather than text cells.
func (p Protocol) Graphic() bool {
	return p == ProtocolKitty || p == ProtocolITerm2 || p == ProtocolSixel
}

// ParseProtocol accepts a protocol name or "auto". Auto returns ok=false so
// the caller falls back to detection.
func ParseProtocol(s string) (p Protocol, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ProtocolNone, false, nil
	case "kitty":
		return ProtocolKitty, true, nil
	case "iterm2", "iterm":
		return ProtocolITerm2, true, nil
	case "sixel":
		return ProtocolSixel, true, nil
	case "halfblocks", "half-blocks", "unicode":
		return ProtocolHalfblocks, true, nil
	case "none", "off":
		return ProtocolNone, true, nil
	}
	return ProtocolNone, false, fmt.Errorf("unknown image protocol %q", s)
}

// SelectProtocol picks the best protocol for term. Over SSH or inside a
// multiplexer everything degrades to halfblocks.
func SelectProtocol(term Terminal, ssh bool) Protocol {
	if ssh || term.Multiplexer() {
		return ProtocolHalfblocks
	}
	switch term {
	case TermGhostty, TermKitty, TermWezTerm:
		return ProtocolKitty
	case TermITerm2, TermVSCode:
		return ProtocolITerm2
	case TermFoot:
		return ProtocolSixel
	}
	return ProtocolHalfblocks
}

// ResolveProtocol applies a user override on top of detection. Unknown
// overrides are reported and detection is used instead.
func ResolveProtocol(term Terminal, ssh bool, override string) (Protocol, error) {
	p, ok, err := ParseProtocol(override)
	if err != nil {
		return SelectProtocol(term, ssh), err
	}
	if ok {
		return p, nil
	}
	return SelectProtocol(term, ssh), nil
}
