package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Fetcher retrieves the encoded bytes behind a Ref.
type Fetcher interface {
	Fetch(ctx context.Context, ref Ref, prio Priority) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, ref Ref, prio Priority) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, ref Ref, prio Priority) ([]byte, error) {
	return f(ctx, ref, prio)
}

// ErrOutsideRoot is returned when a Ref would resolve outside the fetch root.
var ErrOutsideRoot = errors.New("media: reference escapes root")

// DirFetcher reads media from a local directory tree.
type DirFetcher struct {
	Root string
}

// Fetch reads Root/<ref>.
func (d DirFetcher) Fetch(ctx context.Context, ref Ref, _ Priority) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := filepath.FromSlash(string(ref.normalize()))
	if rel == "" || !filepath.IsLocal(rel) {
		return nil, ErrOutsideRoot
	}
	return os.ReadFile(filepath.Join(d.Root, rel))
}

// maxFetchBytes is the default cap on a single HTTP response body.
const maxFetchBytes = 64 << 20

// ErrTooLarge is returned for responses over the fetch size cap.
var ErrTooLarge = errors.New("media: response too large")

// HTTPFetcher fetches media relative to a base URL.
type HTTPFetcher struct {
	Base   *url.URL
	Client *http.Client

	// MaxBytes caps a response body. Zero means 64 MiB.
	MaxBytes int64
}

// NewHTTPFetcher parses base and returns a fetcher using http.DefaultClient.
func NewHTTPFetcher(base string) (*HTTPFetcher, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("media: parse base url: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("media: base url %q is not absolute", base)
	}
	return &HTTPFetcher{Base: u, Client: http.DefaultClient}, nil
}

// Fetch issues a GET for Base/<ref>. The priority is forwarded as an
// RFC 9218 Priority header.
func (h *HTTPFetcher) Fetch(ctx context.Context, ref Ref, prio Priority) ([]byte, error) {
	target := h.Base.JoinPath(string(ref.normalize()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	if prio == High {
		req.Header.Set("Priority", "u=1")
	} else {
		req.Header.Set("Priority", "u=5")
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", target.Redacted(), resp.Status)
	}
	limit := h.MaxBytes
	if limit <= 0 {
		limit = maxFetchBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("GET %s: %w", target.Redacted(), ErrTooLarge)
	}
	return data, nil
}

// ByteStore persists fetched bytes across sessions.
type ByteStore interface {
	Get(key string) ([]byte, bool)
	Put(key string, data []byte) error
}

// StoredFetcher answers from Store before asking Fetcher, and keeps what
// Fetcher returns. Keys are Prefix followed by the normalized ref, so one
// store can serve several sources.
type StoredFetcher struct {
	Fetcher Fetcher
	Store   ByteStore
	Prefix  string
	Logger  *slog.Logger
}

// Fetch implements Fetcher. Bytes that are not a recognised image are
// returned but not stored.
func (s StoredFetcher) Fetch(ctx context.Context, ref Ref, prio Priority) ([]byte, error) {
	key := s.Prefix + string(ref.normalize())
	if data, ok := s.Store.Get(key); ok {
		return data, nil
	}
	data, err := s.Fetcher.Fetch(ctx, ref, prio)
	if err != nil {
		return nil, err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return data, nil
	}
	if err := s.Store.Put(key, data); err != nil && s.Logger != nil {
		s.Logger.Warn("media store write failed", "ref", ref.String(), "error", err)
	}
	return data, nil
}

// decode turns fetched bytes into an image, applying EXIF orientation.
func decode(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}
