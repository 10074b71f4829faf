// Package links opens film links outside the terminal and formats them as
// OSC 8 hyperlinks for terminals that render them.
package links

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/x/ansi"
)

// Starter launches a command without waiting for it.
type Starter func(ctx context.Context, name string, args ...string) error

// Opener hands URIs to the desktop's default handler.
type Opener struct {
	logger *slog.Logger
	start  Starter
	goos   string
}

// NewOpener returns an Opener that launches xdg-open, open or rundll32
// depending on the OS. logger may be nil.
func NewOpener(logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Opener{logger: logger, start: startDetached, goos: runtime.GOOS}
}

// WithStarter replaces the process launcher.
func (o *Opener) WithStarter(s Starter) *Opener {
	o.start = s
	return o
}

// Open launches the handler for uri and returns once it has started. Only
// http, https and mailto URIs are accepted.
func (o *Opener) Open(ctx context.Context, uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("links: parse %q: %w", uri, err)
	}
	switch u.Scheme {
	case "http", "https", "mailto":
	default:
		return fmt.Errorf("links: refusing to open %q scheme", u.Scheme)
	}

	name, args := o.command(u.String())
	o.logger.Debug("opening link", "uri", u.Redacted(), "cmd", name)
	if err := o.start(ctx, name, args...); err != nil {
		return fmt.Errorf("links: start %s: %w", name, err)
	}
	return nil
}

func (o *Opener) command(uri string) (string, []string) {
	switch o.goos {
	case "darwin":
		return "open", []string{uri}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", uri}
	default:
		return "xdg-open", []string{uri}
	}
}

// startDetached starts the command and reaps it in the background.
func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(context.WithoutCancel(ctx), name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Hyperlink wraps text in an OSC 8 hyperlink to uri. When enabled is false
// the text is returned unchanged.
func Hyperlink(text, uri string, enabled bool) string {
	if !enabled || uri == "" {
		return text
	}
	return ansi.SetHyperlink(uri) + text + ansi.ResetHyperlink()
}
