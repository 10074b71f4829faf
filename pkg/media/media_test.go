package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// pngBytes returns an encoded w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// countingFetcher serves fixed bytes, optionally failing, and records calls.
type countingFetcher struct {
	mu    sync.Mutex
	calls map[Ref]int
	prios []Priority
	data  []byte
	fail  map[Ref]error
	gate  chan struct{} // when non-nil, Fetch blocks until closed
	seen  chan Ref      // when non-nil, receives each ref as Fetch starts
}

func newCountingFetcher(data []byte) *countingFetcher {
	return &countingFetcher{calls: make(map[Ref]int), fail: make(map[Ref]error), data: data}
}

func (f *countingFetcher) Fetch(ctx context.Context, ref Ref, prio Priority) ([]byte, error) {
	f.mu.Lock()
	f.calls[ref]++
	f.prios = append(f.prios, prio)
	err := f.fail[ref]
	f.mu.Unlock()

	if f.seen != nil {
		f.seen <- ref
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return f.data, nil
}

func (f *countingFetcher) count(ref Ref) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ref]
}

func (f *countingFetcher) setFail(ref Ref, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, ref)
		return
	}
	f.fail[ref] = err
}

func TestEnsureLoadedDecodes(t *testing.T) {
	f := newCountingFetcher(pngBytes(t, 6, 4))
	c := NewCache(Options{Fetcher: f})

	ref := Path("films", "aube-01.png")
	h, err := c.EnsureLoaded(context.Background(), ref, High)
	if err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	if h.Bounds().Dx() != 6 || h.Bounds().Dy() != 4 {
		t.Errorf("bounds = %v, want 6x4", h.Bounds())
	}
	if h.Format != "png" {
		t.Errorf("format = %q, want png", h.Format)
	}
	if got := c.State(ref); got != Loaded {
		t.Errorf("state = %v, want loaded", got)
	}
}

func TestEnsureLoadedShortCircuitsWhenLoaded(t *testing.T) {
	f := newCountingFetcher(pngBytes(t, 2, 2))
	c := NewCache(Options{Fetcher: f})
	ref := Ref("images/films/a.png")

	first, err := c.EnsureLoaded(context.Background(), ref, High)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := c.EnsureLoaded(context.Background(), ref, Low)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Error("expected the same handle on repeated loads")
	}
	if n := f.count(ref); n != 1 {
		t.Errorf("fetch count = %d, want 1", n)
	}
	if s := c.Stats(); s.Hits != 1 || s.Fetches != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 fetch", s)
	}
}

func TestEnsureLoadedDeduplicatesConcurrentCallers(t *testing.T) {
	f := newCountingFetcher(pngBytes(t, 2, 2))
	f.gate = make(chan struct{})
	f.seen = make(chan Ref, 4)
	c := NewCache(Options{Fetcher: f})
	ref := Ref("images/films/b.png")

	const callers = 8
	var wg sync.WaitGroup
	handles := make([]*Handle, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = c.EnsureLoaded(context.Background(), ref, Low)
		}(i)
	}

	// The first fetch is in flight; every state observer sees Pending.
	<-f.seen
	if got := c.State(ref); got != Pending {
		t.Errorf("state while in flight = %v, want pending", got)
	}
	close(f.gate)
	wg.Wait()

	if n := f.count(ref); n != 1 {
		t.Fatalf("fetch count = %d, want 1", n)
	}
	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if handles[i] != handles[0] {
			t.Errorf("caller %d got a different handle", i)
		}
	}
}

func TestFailureThenRetry(t *testing.T) {
	f := newCountingFetcher(pngBytes(t, 2, 2))
	ref := Ref("images/films/c.png")
	boom := errors.New("connection reset")
	f.setFail(ref, boom)
	c := NewCache(Options{Fetcher: f})

	_, err := c.EnsureLoaded(context.Background(), ref, High)
	if err == nil {
		t.Fatal("expected failure")
	}
	var le *LoadError
	if !errors.As(err, &le) || le.Ref != ref {
		t.Fatalf("error = %v, want *LoadError for %s", err, ref)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap the fetch error, got %v", err)
	}
	if got := c.State(ref); got != Failed {
		t.Errorf("state = %v, want failed", got)
	}

	f.setFail(ref, nil)
	if _, err := c.Retry(context.Background(), ref, High); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := c.State(ref); got != Loaded {
		t.Errorf("state after retry = %v, want loaded", got)
	}
	if n := f.count(ref); n != 2 {
		t.Errorf("fetch count = %d, want 2", n)
	}
}

func TestDecodeFailureMarksFailed(t *testing.T) {
	f := newCountingFetcher([]byte("not an image"))
	c := NewCache(Options{Fetcher: f})
	ref := Ref("images/films/broken.jpg")

	if _, err := c.EnsureLoaded(context.Background(), ref, High); err == nil {
		t.Fatal("expected decode error")
	}
	if got := c.State(ref); got != Failed {
		t.Errorf("state = %v, want failed", got)
	}
}

func TestEmptyRef(t *testing.T) {
	c := NewCache(Options{Fetcher: newCountingFetcher(nil)})
	if _, err := c.EnsureLoaded(context.Background(), "", High); !errors.Is(err, ErrEmptyRef) {
		t.Errorf("error = %v, want ErrEmptyRef", err)
	}
}

func TestCallerCancelDoesNotAbortSharedFetch(t *testing.T) {
	f := newCountingFetcher(pngBytes(t, 2, 2))
	f.gate = make(chan struct{})
	f.seen = make(chan Ref, 1)
	c := NewCache(Options{Fetcher: f})
	ref := Ref("images/films/d.png")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.EnsureLoaded(ctx, ref, High)
		done <- err
	}()
	<-f.seen
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller error = %v, want context.Canceled", err)
	}

	close(f.gate)
	res := <-c.Load(ref, Low)
	if res.Err != nil {
		t.Fatalf("load after cancel: %v", res.Err)
	}
	if n := f.count(ref); n != 1 {
		t.Errorf("fetch count = %d, want 1", n)
	}
}

func TestTimeoutFailsLoad(t *testing.T) {
	f := newCountingFetcher(pngBytes(t, 2, 2))
	f.gate = make(chan struct{}) // never closed
	c := NewCache(Options{Fetcher: f, Timeout: 20 * time.Millisecond})
	ref := Ref("images/films/slow.png")

	_, err := c.EnsureLoaded(context.Background(), ref, High)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if got := c.State(ref); got != Failed {
		t.Errorf("state = %v, want failed", got)
	}
}

func TestPreloadPrioritiesAndLogging(t *testing.T) {
	f := newCountingFetcher(pngBytes(t, 2, 2))
	bad := Ref("images/films/missing.png")
	f.setFail(bad, os.ErrNotExist)
	c := NewCache(Options{Fetcher: f, Workers: 1})

	refs := []Ref{"images/films/1.png", "images/films/2.png", bad}
	c.Preload(refs)
	c.Wait()

	if got := c.State(refs[0]); got != Loaded {
		t.Errorf("first ref state = %v, want loaded", got)
	}
	if got := c.State(refs[1]); got != Loaded {
		t.Errorf("second ref state = %v, want loaded", got)
	}
	if got := c.State(bad); got != Failed {
		t.Errorf("bad ref state = %v, want failed", got)
	}

	f.mu.Lock()
	var high, low int
	for _, p := range f.prios {
		if p == High {
			high++
		} else {
			low++
		}
	}
	f.mu.Unlock()
	if high != 1 || low != 2 {
		t.Errorf("priorities high=%d low=%d, want 1 and 2", high, low)
	}
}

func TestNormalizedRefsShareEntry(t *testing.T) {
	f := newCountingFetcher(pngBytes(t, 2, 2))
	c := NewCache(Options{Fetcher: f})

	if _, err := c.EnsureLoaded(context.Background(), "/images/films/e.png", High); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.State("images/./films/e.png"); got != Loaded {
		t.Errorf("state via alternate spelling = %v, want loaded", got)
	}
	if n := f.count("images/films/e.png"); n != 1 {
		t.Errorf("fetch count = %d, want 1", n)
	}
	if _, err := c.EnsureLoaded(context.Background(), "images/films/e.png", Low); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := f.count("images/films/e.png"); n != 1 {
		t.Errorf("fetch count after reload = %d, want 1", n)
	}
}

func TestDirFetcher(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "images", "films")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := pngBytes(t, 3, 3)
	if err := os.WriteFile(filepath.Join(dir, "f.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	fetcher := DirFetcher{Root: root}
	got, err := fetcher.Fetch(context.Background(), Path("films", "f.png"), Low)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("fetched bytes differ from file contents")
	}

	// Dot segments are resolved inside the root, never above it.
	if _, err := fetcher.Fetch(context.Background(), "../../etc/passwd", Low); err == nil {
		t.Error("expected error for reference outside images")
	}
	if _, err := fetcher.Fetch(context.Background(), "/", Low); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("error = %v, want ErrOutsideRoot", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	data := pngBytes(t, 2, 2)
	var gotPriority atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPriority.Store(r.Header.Get("Priority"))
		if r.URL.Path != "/site/images/films/g.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	fetcher, err := NewHTTPFetcher(srv.URL + "/site/")
	if err != nil {
		t.Fatalf("NewHTTPFetcher: %v", err)
	}
	c := NewCache(Options{Fetcher: fetcher})

	h, err := c.EnsureLoaded(context.Background(), Path("films", "g.png"), High)
	if err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	if h.Size != len(data) {
		t.Errorf("size = %d, want %d", h.Size, len(data))
	}
	if p, _ := gotPriority.Load().(string); p != "u=1" {
		t.Errorf("priority header = %q, want u=1", p)
	}

	if _, err := c.EnsureLoaded(context.Background(), Path("films", "nope.png"), Low); err == nil {
		t.Error("expected error for 404")
	}
}

func TestHTTPFetcherRejectsOversizedBody(t *testing.T) {
	data := pngBytes(t, 4, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	fetcher, err := NewHTTPFetcher(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	fetcher.MaxBytes = int64(len(data))
	if got, err := fetcher.Fetch(context.Background(), Path("films", "a.png"), High); err != nil || len(got) != len(data) {
		t.Fatalf("body at the limit: %d bytes, %v", len(got), err)
	}

	fetcher.MaxBytes = int64(len(data) - 1)
	if _, err := fetcher.Fetch(context.Background(), Path("films", "a.png"), High); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestNewHTTPFetcherRejectsRelative(t *testing.T) {
	if _, err := NewHTTPFetcher("cdn/images"); err == nil {
		t.Error("expected error for relative base url")
	}
}

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
	puts int
}

func (m *mapStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok
}

func (m *mapStore) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.puts++
	return nil
}

func TestStoredFetcher(t *testing.T) {
	img := pngBytes(t, 3, 3)
	var calls atomic.Int32
	inner := FetcherFunc(func(_ context.Context, ref Ref, _ Priority) ([]byte, error) {
		calls.Add(1)
		if ref == "images/films/notes.txt" {
			return []byte("not an image"), nil
		}
		return img, nil
	})
	store := &mapStore{data: map[string][]byte{}}
	f := StoredFetcher{Fetcher: inner, Store: store, Prefix: "https://cdn.horus.film/"}

	for range 2 {
		data, err := f.Fetch(context.Background(), "/images/films/a.png", High)
		if err != nil || !bytes.Equal(data, img) {
			t.Fatalf("Fetch = %d bytes, %v", len(data), err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("inner fetches = %d, want 1 (second served from store)", calls.Load())
	}
	if _, ok := store.data["https://cdn.horus.film/images/films/a.png"]; !ok {
		t.Errorf("store keys = %v, want prefixed normalized ref", store.data)
	}

	if _, err := f.Fetch(context.Background(), "images/films/notes.txt", Low); err != nil {
		t.Fatal(err)
	}
	if store.puts != 1 {
		t.Errorf("non-image bytes should not be stored, puts = %d", store.puts)
	}
}
