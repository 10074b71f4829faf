package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/config"
	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

func TestPrintCatalogText(t *testing.T) {
	var buf bytes.Buffer
	if err := printCatalog(&buf, catalog.Builtin(), false); err != nil {
		t.Fatalf("printCatalog: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"HORUS", catalog.Upcoming.Title(), catalog.Past.Title(), "le-titre-du-film", "3 images"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, catalog.Upcoming.Title()) > strings.Index(out, catalog.Past.Title()) {
		t.Error("upcoming should be listed before past")
	}
}

func TestPrintCatalogJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printCatalog(&buf, catalog.Builtin(), true); err != nil {
		t.Fatalf("printCatalog: %v", err)
	}
	var doc catalog.Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(doc.Films) != catalog.Builtin().Len() {
		t.Errorf("films = %d, want %d", len(doc.Films), catalog.Builtin().Len())
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunPreload(t *testing.T) {
	root := t.TempDir()
	good := media.Path("films", "a.png")
	missing := media.Path("films", "missing.png")
	writePNG(t, filepath.Join(root, filepath.FromSlash(good.String())))

	cache := media.NewCache(media.Options{Fetcher: media.DirFetcher{Root: root}})
	var buf bytes.Buffer
	failed, err := runPreload(context.Background(), &buf, cache, []media.Ref{good, missing}, 2)
	if err != nil {
		t.Fatalf("runPreload: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	out := buf.String()
	if !strings.Contains(out, "6x4 png") {
		t.Errorf("report missing dimensions:\n%s", out)
	}
	if !strings.Contains(out, media.Failed.String()) {
		t.Errorf("report missing failed state:\n%s", out)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	applyFlags(cfg, flagOverrides{protocol: "sixel", platform: "touch"})
	if cfg.Image.Protocol != "sixel" || cfg.Input.Platform != "touch" {
		t.Errorf("flags not applied: %+v %+v", cfg.Image, cfg.Input)
	}
	if cfg.Media.Root != config.DefaultConfig().Media.Root {
		t.Error("empty flags should leave settings alone")
	}
}

func TestLoadTheme(t *testing.T) {
	th, err := loadTheme(config.ThemeConfig{})
	if err != nil || th.Name == "" {
		t.Fatalf("default theme: %+v, %v", th, err)
	}
	if _, err := loadTheme(config.ThemeConfig{Name: "nope"}); err == nil {
		t.Error("unknown theme should fail")
	}
}

func TestNewFetcher(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	cfg := config.DefaultConfig()
	cfg.General.CacheDir = t.TempDir()
	cfg.Media.Root = "/srv/media"

	f, err := newFetcher(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.(media.DirFetcher); !ok {
		t.Errorf("root should give a DirFetcher, got %T", f)
	}

	cfg.Media.BaseURL = "https://cdn.horus.film/"
	f, err = newFetcher(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.(media.StoredFetcher); !ok {
		t.Errorf("base url should give a StoredFetcher, got %T", f)
	}
	if _, err := os.Stat(filepath.Join(cfg.General.CacheDir, "media")); err != nil {
		t.Errorf("store directory not created: %v", err)
	}

	cfg.Media.StoreMB = 0
	f, err = newFetcher(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.(*media.HTTPFetcher); !ok {
		t.Errorf("store_mb = 0 should fetch directly, got %T", f)
	}
}

// testConfig writes a config whose log file and media root live in a temp
// directory, and returns its path and the log file path.
func testConfig(t *testing.T, mediaRoot string) (cfgPath, logPath string) {
	t.Helper()
	for _, k := range []string{
		"SHOWREEL_PROTOCOL", "SHOWREEL_THEME", "SHOWREEL_MEDIA_ROOT",
		"SHOWREEL_MEDIA_URL", "SHOWREEL_CATALOG", "SHOWREEL_PLATFORM",
		"SHOWREEL_LOAD_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	logPath = filepath.Join(dir, "state", "showreel.log")
	cfgPath = filepath.Join(dir, "config.toml")
	doc := fmt.Sprintf("[general]\nlog_file = %q\ncache_dir = %q\n\n[media]\nroot = %q\n",
		logPath, filepath.Join(dir, "cache"), mediaRoot)
	if err := os.WriteFile(cfgPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, logPath
}

func TestRunVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"--version"}, &buf); err != nil {
		t.Fatalf("run --version: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "showreel "+version) {
		t.Errorf("version output = %q", buf.String())
	}
}

func TestRunList(t *testing.T) {
	cfgPath, logPath := testConfig(t, t.TempDir())
	var buf bytes.Buffer
	if err := run([]string{"-c", cfgPath, "--list"}, &buf); err != nil {
		t.Fatalf("run --list: %v", err)
	}
	if !strings.Contains(buf.String(), "le-titre-du-film") {
		t.Errorf("list output missing items:\n%s", buf.String())
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestRunPreloadFailureIsReturned(t *testing.T) {
	cfgPath, _ := testConfig(t, t.TempDir()) // empty root: every image is missing
	var buf bytes.Buffer
	err := run([]string{"-c", cfgPath, "--preload"}, &buf)
	if !errors.Is(err, errPreloadFailed) {
		t.Fatalf("err = %v, want errPreloadFailed", err)
	}
	if !strings.Contains(buf.String(), media.Failed.String()) {
		t.Errorf("report missing failed rows:\n%s", buf.String())
	}
}

func TestRunRejectsBadFlagsAndConfig(t *testing.T) {
	if err := run([]string{"--no-such-flag"}, io.Discard); err == nil {
		t.Error("unknown flag should fail")
	}
	cfgPath, _ := testConfig(t, t.TempDir())
	if err := run([]string{"-c", cfgPath, "--platform", "stylus", "--list"}, io.Discard); err == nil {
		t.Error("invalid platform should fail validation")
	}
}
