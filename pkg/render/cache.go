// Package render turns decoded gallery images into terminal output: kitty,
// iTerm2 or sixel escape sequences through go-termimg, or coloured
// half-block cells for terminals without an image protocol.
//
// Rendered strings are kept in a size-bounded LRU so redraws of the same
// picture at the same size are free.
package render

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"

	"gitlab.com/tinyland/lab/showreel/pkg/media"
	"gitlab.com/tinyland/lab/showreel/pkg/terminal"
)

// Key identifies one rendering of one media reference.
type Key struct {
	Ref      media.Ref
	Protocol terminal.Protocol
	Width    int // cells
	Height   int // cells
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%dx%d", k.Protocol, k.Ref, k.Width, k.Height)
}

// CacheStats reports LRU counters.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	SizeBytes int64
}

type cacheEntry struct {
	key      Key
	rendered string
}

// Cache is a mutex-guarded LRU of rendered strings bounded by total bytes.
type Cache struct {
	mu        sync.Mutex
	items     map[Key]*list.Element
	order     *list.List // front is most recent
	maxBytes  int64
	usedBytes int64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCache creates a cache holding up to maxMB megabytes. Non-positive
// values mean 32.
func NewCache(maxMB int) *Cache {
	if maxMB <= 0 {
		maxMB = 32
	}
	return newCacheBytes(int64(maxMB) << 20)
}

func newCacheBytes(maxBytes int64) *Cache {
	return &Cache{
		items:    make(map[Key]*list.Element),
		order:    list.New(),
		maxBytes: maxBytes,
	}
}

// Get returns the rendering for key and marks it recently used.
func (c *Cache) Get(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).rendered, true
}

// Put stores a rendering, evicting least recently used entries to stay
// under the byte limit. A value larger than the whole cache is not stored.
func (c *Cache) Put(key Key, rendered string) {
	size := int64(len(rendered))
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*cacheEntry)
		c.usedBytes += size - int64(len(e.rendered))
		e.rendered = rendered
		c.order.MoveToFront(elem)
	} else {
		if size > c.maxBytes {
			return
		}
		c.items[key] = c.order.PushFront(&cacheEntry{key: key, rendered: rendered})
		c.usedBytes += size
	}
	for c.usedBytes > c.maxBytes && c.order.Len() > 1 {
		c.evictOldestLocked()
	}
}

// Purge drops every entry, used when the terminal is resized.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[Key]*list.Element)
	c.order.Init()
	c.usedBytes = 0
}

// Stats returns current counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.order.Len(),
		SizeBytes: c.usedBytes,
	}
}

func (c *Cache) evictOldestLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	e := c.order.Remove(back).(*cacheEntry)
	delete(c.items, e.key)
	c.usedBytes -= int64(len(e.rendered))
	c.evictions.Add(1)
}
