// Package cache keeps fetched media bytes on disk between sessions so a
// remote catalog is not downloaded again on every launch.
//
// Each entry is two files named after the hashed key: <name>.media holds
// the bytes and <name>.json the record (key, store time, size, checksum).
// Writes go through a temp file and a rename. The index is held in memory
// and evicted least recently used first once MaxSizeMB is exceeded.
package cache

import (
	"container/list"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Config configures a Store.
type Config struct {
	// Dir holds the cache files. It is created if missing.
	Dir string

	// MaxSizeMB bounds the bytes kept on disk. Zero means 256.
	MaxSizeMB int

	// TTL expires entries older than this. Zero keeps them until evicted.
	TTL time.Duration
}

// Stats is a snapshot of store counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Corrupt   uint64
	Bytes     int64
	Entries   int
}

type record struct {
	Key    string    `json:"key"`
	Stored time.Time `json:"stored"`
	Size   int64     `json:"size"`
	SHA256 string    `json:"sha256"`
}

type entry struct {
	name string
	rec  record
}

// Store is a size-bounded on-disk byte cache. It is safe for concurrent use.
type Store struct {
	dir      string
	maxBytes int64
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	order *list.List // front is most recently used
	index map[string]*list.Element
	used  int64
	stats Stats
}

// Open creates the directory if needed and indexes the entries already in
// it. Unreadable, orphaned and expired entries are removed.
func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache: directory is required")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 256
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory %s: %w", cfg.Dir, err)
	}

	s := &Store{
		dir:      cfg.Dir,
		maxBytes: int64(cfg.MaxSizeMB) << 20,
		ttl:      cfg.TTL,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("cache: scan %s: %w", cfg.Dir, err)
	}
	return s, nil
}

// Get returns the bytes stored under key. A checksum mismatch removes the
// entry and reports a miss.
func (s *Store) Get(key string) ([]byte, bool) {
	name := fileKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.index[name]
	if !ok {
		s.stats.Misses++
		return nil, false
	}
	e := el.Value.(*entry)
	if s.expired(e.rec) {
		s.removeLocked(el)
		s.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(s.dataPath(name))
	if err != nil || checksum(data) != e.rec.SHA256 {
		s.removeLocked(el)
		s.stats.Corrupt++
		s.stats.Misses++
		return nil, false
	}

	s.order.MoveToFront(el)
	s.stats.Hits++
	return data, true
}

// Put stores data under key, replacing any previous value.
func (s *Store) Put(key string, data []byte) error {
	name := fileKey(key)
	rec := record{
		Key:    key,
		Stored: s.now().UTC(),
		Size:   int64(len(data)),
		SHA256: checksum(data),
	}
	if rec.Size > s.maxBytes {
		return fmt.Errorf("cache: %q is %d bytes, over the %d byte limit", key, rec.Size, s.maxBytes)
	}
	meta, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: encode record for %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.dir, s.dataPath(name), data); err != nil {
		return fmt.Errorf("cache: write %q: %w", key, err)
	}
	if err := writeAtomic(s.dir, s.recordPath(name), meta); err != nil {
		_ = os.Remove(s.dataPath(name))
		return fmt.Errorf("cache: write record for %q: %w", key, err)
	}

	if el, ok := s.index[name]; ok {
		e := el.Value.(*entry)
		s.used += rec.Size - e.rec.Size
		e.rec = rec
		s.order.MoveToFront(el)
	} else {
		s.index[name] = s.order.PushFront(&entry{name: name, rec: rec})
		s.used += rec.Size
	}
	s.evictLocked()
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.index[fileKey(key)]; ok {
		s.removeLocked(el)
	}
	return nil
}

// Clear removes every entry and stray temp file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	for _, f := range files {
		n := f.Name()
		if strings.HasSuffix(n, ".media") || strings.HasSuffix(n, ".json") || strings.HasPrefix(n, ".tmp-") {
			_ = os.Remove(filepath.Join(s.dir, n))
		}
	}
	s.order.Init()
	s.index = make(map[string]*list.Element)
	s.used = 0
	return nil
}

// Stats returns current counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Bytes = s.used
	st.Entries = s.order.Len()
	return st
}

func (s *Store) dataPath(name string) string   { return filepath.Join(s.dir, name+".media") }
func (s *Store) recordPath(name string) string { return filepath.Join(s.dir, name+".json") }

func (s *Store) expired(r record) bool {
	return s.ttl > 0 && s.now().Sub(r.Stored) > s.ttl
}

func (s *Store) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	s.order.Remove(el)
	delete(s.index, e.name)
	s.used -= e.rec.Size
	_ = os.Remove(s.dataPath(e.name))
	_ = os.Remove(s.recordPath(e.name))
}

func (s *Store) evictLocked() {
	for s.used > s.maxBytes && s.order.Len() > 1 {
		s.removeLocked(s.order.Back())
		s.stats.Evictions++
	}
}

// scan rebuilds the index from disk, most recently stored first.
func (s *Store) scan() error {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var found []*entry
	for _, f := range files {
		n := f.Name()
		if f.IsDir() {
			continue
		}
		if strings.HasPrefix(n, ".tmp-") {
			_ = os.Remove(filepath.Join(s.dir, n))
			continue
		}
		name, ok := strings.CutSuffix(n, ".json")
		if !ok {
			continue
		}
		rec, err := s.readRecord(name)
		if err != nil || s.expired(rec) {
			_ = os.Remove(s.recordPath(name))
			_ = os.Remove(s.dataPath(name))
			continue
		}
		if fi, err := os.Stat(s.dataPath(name)); err != nil || fi.Size() != rec.Size {
			_ = os.Remove(s.recordPath(name))
			_ = os.Remove(s.dataPath(name))
			continue
		}
		found = append(found, &entry{name: name, rec: rec})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].rec.Stored.After(found[j].rec.Stored) })
	for _, e := range found {
		s.index[e.name] = s.order.PushBack(e)
		s.used += e.rec.Size
	}
	s.evictLocked()
	return nil
}

func (s *Store) readRecord(name string) (record, error) {
	var r record
	data, err := os.ReadFile(s.recordPath(name))
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, err
	}
	if fileKey(r.Key) != name {
		return r, fmt.Errorf("record %s names key %q", name, r.Key)
	}
	return r, nil
}

// writeAtomic writes data to path through a temp file in dir.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
