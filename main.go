// showreel is a terminal showreel for a film studio: a home page, a films
// page with an image gallery and lightbox, and an about page.
//
// Usage:
//
//	showreel [flags]
//
// Flags:
//
//	-c, --config string      Path to configuration file
//	    --catalog string     Catalog file (YAML or TOML); empty uses the built-in catalog
//	    --media-root string  Directory media references resolve against
//	    --media-url string   Base URL media references resolve against
//	    --list               Print the catalog and exit
//	    --json               With --list, print JSON
//	    --preload            Load every image, print a report and exit
//	    --protocol string    Image protocol (auto|kitty|iterm2|sixel|halfblocks|none)
//	    --theme string       UI theme
//	    --platform string    Input platform (auto|pointer|touch)
//	-v, --verbose            Enable verbose logging
//	    --version            Print version and exit
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/pflag"

	"gitlab.com/tinyland/lab/showreel/pkg/cache"
	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/config"
	"gitlab.com/tinyland/lab/showreel/pkg/links"
	"gitlab.com/tinyland/lab/showreel/pkg/media"
	"gitlab.com/tinyland/lab/showreel/pkg/render"
	"gitlab.com/tinyland/lab/showreel/pkg/terminal"
	"gitlab.com/tinyland/lab/showreel/pkg/theme"
	"gitlab.com/tinyland/lab/showreel/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "showreel: %v\n", err)
		os.Exit(1)
	}
}

// errPreloadFailed reports that --preload could not load every image. The
// report already lists which.
var errPreloadFailed = errors.New("some images failed to load")

// run is the program body. main maps its error to the exit status.
func run(args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("showreel", pflag.ContinueOnError)
	var (
		configPath  = flags.StringP("config", "c", "", "Path to configuration file")
		catalogPath = flags.String("catalog", "", "Catalog file (YAML or TOML); empty uses the built-in catalog")
		mediaRoot   = flags.String("media-root", "", "Directory media references resolve against")
		mediaURL    = flags.String("media-url", "", "Base URL media references resolve against")
		list        = flags.Bool("list", false, "Print the catalog and exit")
		asJSON      = flags.Bool("json", false, "With --list, print JSON")
		preload     = flags.Bool("preload", false, "Load every image, print a report and exit")
		protocol    = flags.String("protocol", "", "Image protocol (auto|kitty|iterm2|sixel|halfblocks|none)")
		themeName   = flags.String("theme", "", "UI theme ("+fmt.Sprint(theme.Names())+")")
		platform    = flags.String("platform", "", "Input platform (auto|pointer|touch)")
		verbose     = flags.BoolP("verbose", "v", false, "Enable verbose logging")
		showVersion = flags.Bool("version", false, "Print version and exit")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "showreel %s (%s) built %s\n", version, commit, date)
		return nil
	}

	// .env is read first so its values reach the SHOWREEL_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, flagOverrides{
		catalog:  *catalogPath,
		root:     *mediaRoot,
		url:      *mediaURL,
		protocol: *protocol,
		theme:    *themeName,
		platform: *platform,
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	interactive := !*list && !*preload

	logger, closeLog, err := newLogger(cfg, *verbose, interactive)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Debug("catalog loaded", "items", cat.Len(), "path", cfg.Catalog.Path)

	if *list {
		if err := printCatalog(stdout, cat, *asJSON); err != nil {
			return fmt.Errorf("failed to print catalog: %w", err)
		}
		return nil
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("invalid media source: %w", err)
	}
	images := media.NewCache(media.Options{
		Fetcher: fetcher,
		Workers: cfg.Media.Workers,
		Timeout: cfg.Media.LoadTimeout.Duration,
		Logger:  logger,
	})

	if *preload {
		failed, err := runPreload(ctx, stdout, images, cat.Refs(), cfg.Media.Workers)
		if err != nil {
			logger.Error("preload failed", "error", err)
			return fmt.Errorf("preload: %w", err)
		}
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d", errPreloadFailed, failed, len(cat.Refs()))
		}
		return nil
	}

	if err := runTUI(ctx, cfg, cat, images, logger); err != nil {
		logger.Error("TUI error", "error", err)
		return err
	}
	return nil
}

type flagOverrides struct {
	catalog, root, url, protocol, theme, platform string
}

// applyFlags lets non-empty flags win over file and environment settings.
func applyFlags(cfg *config.Config, f flagOverrides) {
	if f.catalog != "" {
		cfg.Catalog.Path = f.catalog
	}
	if f.root != "" {
		cfg.Media.Root = f.root
	}
	if f.url != "" {
		cfg.Media.BaseURL = f.url
	}
	if f.protocol != "" {
		cfg.Image.Protocol = f.protocol
	}
	if f.theme != "" {
		cfg.Theme.Name = f.theme
	}
	if f.platform != "" {
		cfg.Input.Platform = f.platform
	}
}

// newLogger writes to the log file, and also to stderr unless the TUI owns
// the terminal.
func newLogger(cfg *config.Config, verbose, tuiMode bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.General.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
		return nil, nil, err
	}
	logFile, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = logFile
	if !tuiMode {
		w = io.MultiWriter(os.Stderr, logFile)
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = logFile.Close() }, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Builtin(), nil
	}
	return catalog.LoadFile(path)
}

// newFetcher reads from media.root, or from media.base_url with an on-disk
// copy under the cache directory when media.store_mb is positive.
func newFetcher(cfg *config.Config, logger *slog.Logger) (media.Fetcher, error) {
	if cfg.Media.BaseURL == "" {
		return media.DirFetcher{Root: cfg.Media.Root}, nil
	}
	remote, err := media.NewHTTPFetcher(cfg.Media.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Media.StoreMB <= 0 {
		return remote, nil
	}
	store, err := cache.Open(cache.Config{
		Dir:       filepath.Join(cfg.General.CacheDir, "media"),
		MaxSizeMB: cfg.Media.StoreMB,
		TTL:       cfg.Media.StoreTTL.Duration,
	})
	if err != nil {
		logger.Warn("media store unavailable, fetching directly", "error", err)
		return remote, nil
	}
	return media.StoredFetcher{
		Fetcher: remote,
		Store:   store,
		Prefix:  cfg.Media.BaseURL,
		Logger:  logger,
	}, nil
}

func loadTheme(cfg config.ThemeConfig) (theme.Theme, error) {
	if cfg.File != "" {
		t, err := theme.LoadFile(cfg.File)
		if err != nil {
			return theme.Theme{}, err
		}
		if cfg.Name == "" {
			return t, nil
		}
	}
	name := cfg.Name
	if name == "" {
		name = theme.DefaultName
	}
	if _, ok := theme.Lookup(name); !ok {
		return theme.Theme{}, fmt.Errorf("unknown theme %q (have %v)", name, theme.Names())
	}
	return theme.Get(name), nil
}

func runTUI(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, images *media.Cache, logger *slog.Logger) error {
	if !terminal.IsInteractive(os.Stdin, os.Stdout) {
		return errors.New("not a terminal; use --list or --preload")
	}

	caps, err := terminal.Probe(cfg.Image.Protocol)
	if err != nil {
		logger.Warn("protocol override ignored", "error", err)
	}
	logger.Info("terminal",
		"term", caps.Term.String(),
		"protocol", caps.Protocol.String(),
		"cols", caps.Size.Cols,
		"rows", caps.Size.Rows,
		"ssh", caps.SSH,
	)

	th, err := loadTheme(cfg.Theme)
	if err != nil {
		return err
	}
	th = theme.Adapt(th, caps.Color)

	cellW, cellH := caps.Size.CellSize()
	renderer := render.New(render.Options{
		Protocol:   caps.Protocol,
		CellWidth:  cellW,
		CellHeight: cellH,
		CacheMB:    cfg.Image.MaxCacheSizeMB,
	})

	zones := zone.New()
	defer zones.Close()

	model, err := tui.New(tui.Options{
		Catalog:   cat,
		Cache:     images,
		Renderer:  renderer,
		Opener:    links.NewOpener(logger),
		Theme:     th,
		Caps:      caps,
		Platform:  cfg.Input.Platform,
		Threshold: cfg.Gesture.Threshold,
		Logger:    logger,
		Zones:     zones,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	st := images.Stats()
	rs := renderer.Cache().Stats()
	logger.Info("session ended",
		"images", st.Loaded,
		"failed", st.Failed,
		"bytes", humanize.Bytes(uint64(max(st.Bytes, 0))),
		"render_hits", rs.Hits,
		"render_evictions", rs.Evictions,
	)
	return nil
}
