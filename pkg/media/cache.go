package media

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Options configures a Cache.
type Options struct {
	// Fetcher resolves references. Required.
	Fetcher Fetcher

	// Workers bounds concurrent low-priority fetches. High-priority
	// fetches are never queued behind it. Zero means 4.
	Workers int

	// Timeout bounds a single fetch and decode. Zero means none.
	Timeout time.Duration

	// Logger receives preload failures. Nil discards.
	Logger *slog.Logger
}

type entry struct {
	state  LoadState
	handle *Handle
	err    error
}

// Cache deduplicates and retains media loads. At most one fetch is in flight
// per Ref; every concurrent caller for that Ref observes the same outcome.
// Successful loads are never evicted.
type Cache struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *slog.Logger
	lowPrio *semaphore.Weighted

	group singleflight.Group

	mu      sync.RWMutex
	entries map[Ref]*entry

	wg sync.WaitGroup

	hits     atomic.Uint64
	fetches  atomic.Uint64
	failures atomic.Uint64
	bytes    atomic.Int64
}

// NewCache creates a cache around opts.Fetcher.
func NewCache(opts Options) *Cache {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		fetcher: opts.Fetcher,
		timeout: opts.Timeout,
		logger:  logger,
		lowPrio: semaphore.NewWeighted(int64(workers)),
		entries: make(map[Ref]*entry),
	}
}

// State returns the current load state of ref.
func (c *Cache) State(ref Ref) LoadState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[ref.normalize()]; ok {
		return e.state
	}
	return Unrequested
}

// Get returns the handle for ref if it has already loaded.
func (c *Cache) Get(ref Ref) (*Handle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[ref.normalize()]; ok && e.state == Loaded {
		return e.handle, true
	}
	return nil, false
}

// EnsureLoaded returns the handle for ref, fetching it if necessary.
//
// A Loaded ref returns immediately without touching the fetcher. A Pending
// ref joins the fetch already in flight. An Unrequested or Failed ref starts
// a new fetch, so calling EnsureLoaded after a failure is a retry.
//
// ctx bounds only this caller's wait. The shared fetch keeps running for
// other callers and settles the cache state even if ctx is cancelled.
func (c *Cache) EnsureLoaded(ctx context.Context, ref Ref, prio Priority) (*Handle, error) {
	if ref == "" {
		return nil, &LoadError{Ref: ref, Err: ErrEmptyRef}
	}
	key := ref.normalize()
	if h, ok := c.Get(key); ok {
		c.hits.Add(1)
		return h, nil
	}

	ch := c.group.DoChan(string(key), func() (any, error) {
		return c.load(key, prio)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Handle), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Retry is EnsureLoaded for a ref the caller knows has failed.
func (c *Cache) Retry(ctx context.Context, ref Ref, prio Priority) (*Handle, error) {
	return c.EnsureLoaded(ctx, ref, prio)
}

// Load starts loading ref and delivers the outcome on the returned channel.
// The channel is buffered and receives exactly one Result.
func (c *Cache) Load(ref Ref, prio Priority) <-chan Result {
	out := make(chan Result, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		h, err := c.EnsureLoaded(context.Background(), ref, prio)
		out <- Result{Ref: ref, Handle: h, Err: err}
	}()
	return out
}

// Preload warms the cache. The first ref is requested at High priority and
// the rest at Low. Failures are logged, never returned.
func (c *Cache) Preload(refs []Ref) {
	for i, ref := range refs {
		prio := Low
		if i == 0 {
			prio = High
		}
		c.wg.Add(1)
		go func(ref Ref, prio Priority) {
			defer c.wg.Done()
			if _, err := c.EnsureLoaded(context.Background(), ref, prio); err != nil {
				c.logger.Warn("preload failed", "ref", ref, "error", err)
			}
		}(ref, prio)
	}
}

// Wait blocks until every Load and Preload goroutine has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// load runs inside the singleflight group for key.
func (c *Cache) load(key Ref, prio Priority) (*Handle, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	// A flight that started just after another settled finds the handle here.
	if e.state == Loaded {
		c.mu.Unlock()
		c.hits.Add(1)
		return e.handle, nil
	}
	e.state = Pending
	e.err = nil
	c.mu.Unlock()

	h, err := c.fetchAndDecode(key, prio)

	c.mu.Lock()
	if err != nil {
		e.state = Failed
		e.err = err
	} else {
		e.state = Loaded
		e.handle = h
	}
	c.mu.Unlock()

	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	c.bytes.Add(int64(h.Size))
	return h, nil
}

func (c *Cache) fetchAndDecode(ref Ref, prio Priority) (*Handle, error) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if prio != High {
		if err := c.lowPrio.Acquire(ctx, 1); err != nil {
			return nil, &LoadError{Ref: ref, Err: err}
		}
		defer c.lowPrio.Release(1)
	}

	c.fetches.Add(1)
	data, err := c.fetcher.Fetch(ctx, ref, prio)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	img, format, err := decode(data)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	return &Handle{
		Ref:      ref,
		Image:    img,
		Format:   format,
		Size:     len(data),
		LoadedAt: time.Now(),
	}, nil
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits     uint64
	Fetches  uint64
	Failures uint64
	Bytes    int64
	Loaded   int
	Pending  int
	Failed   int
}

// Stats returns current counters and per-state entry counts.
func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:     c.hits.Load(),
		Fetches:  c.fetches.Load(),
		Failures: c.failures.Load(),
		Bytes:    c.bytes.Load(),
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		switch e.state {
		case Loaded:
			s.Loaded++
		case Pending:
			s.Pending++
		case Failed:
			s.Failed++
		}
	}
	return s
}
