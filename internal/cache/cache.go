// Package cache stores parsed template documents on disk, keyed by the
// template source and the parser configuration that produced them.
package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/recera/vuec/pkg/compiler/ast"
)

// IndexVersion is written to the index; a mismatch discards the index.
const IndexVersion = 1

// ErrCorruptIndex is returned when the on-disk index cannot be decoded or
// was written by another index version.
var ErrCorruptIndex = errors.New("corrupt cache index")

var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Cache is a size-bounded store of AST documents.
type Cache struct {
	mu       sync.RWMutex
	dir      string
	index    *Index
	maxSize  int64 // Maximum cache size in bytes
	maxAge   time.Duration
	strategy EvictionStrategy
	statsMu  sync.RWMutex
	stats    Stats
	stopCh   chan struct{}
	log      *slog.Logger
}

// Index tracks all cached entries
type Index struct {
	Version int               `cbor:"version"`
	Entries map[string]*Entry `cbor:"entries"`
	Updated time.Time         `cbor:"updated"`
}

// Entry describes one cached document.
type Entry struct {
	Key         string    `cbor:"key"`
	Hash        string    `cbor:"hash"`
	Path        string    `cbor:"path"`
	Size        int64     `cbor:"size"`
	Created     time.Time `cbor:"created"`
	LastAccess  time.Time `cbor:"lastAccess"`
	AccessCount int       `cbor:"accessCount"`
	// Source is the template file the document was parsed from, if any.
	Source string `cbor:"source,omitempty"`
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"totalSize"`
	EntryCount int   `json:"entryCount"`
}

// EvictionStrategy defines how cache entries are removed
type EvictionStrategy int

const (
	// LRU removes least recently used entries
	LRU EvictionStrategy = iota
	// LFU removes least frequently used entries
	LFU
	// FIFO removes oldest entries first
	FIFO
)

// Config holds cache configuration
type Config struct {
	Dir      string           // Cache directory (default: user cache dir/vuec)
	MaxSize  int64            // Maximum cache size in bytes (default: 256MB)
	MaxAge   time.Duration    // Maximum age for cache entries (default: 7 days)
	Strategy EvictionStrategy // Eviction strategy (default: LRU)
	Logger   *slog.Logger
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return Config{
		Dir:      filepath.Join(base, "vuec"),
		MaxSize:  256 << 20,
		MaxAge:   7 * 24 * time.Hour,
		Strategy: LRU,
	}
}

// New opens (or creates) the cache in config.Dir.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:      config.Dir,
		maxSize:  config.MaxSize,
		maxAge:   config.MaxAge,
		strategy: config.Strategy,
		stopCh:   make(chan struct{}),
		index:    newIndex(),
		log:      logger.With(slog.String("component", "cache")),
	}

	if err := c.loadIndex(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Warn("discarding cache index", slog.String("error", err.Error()))
		}
		c.index = newIndex()
	}

	go c.cleanup()

	return c, nil
}

func newIndex() *Index {
	return &Index{
		Version: IndexVersion,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

// Get returns the document stored under key.
func (c *Cache) Get(key string) (*ast.Document, bool) {
	c.mu.RLock()
	entry, exists := c.index.Entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if c.isExpired(entry) {
		c.Delete(key)
		c.recordMiss()
		return nil, false
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		c.Delete(key)
		c.recordMiss()
		return nil, false
	}
	var doc ast.Document
	if err := cbor.Unmarshal(data, &doc); err != nil || doc.Version != ast.DocumentVersion {
		c.log.Debug("dropping undecodable entry", slog.String("key", key))
		c.Delete(key)
		c.recordMiss()
		return nil, false
	}

	c.mu.Lock()
	entry.LastAccess = time.Now()
	entry.AccessCount++
	c.mu.Unlock()

	c.recordHit()
	if err := c.saveIndex(); err != nil {
		c.log.Warn("failed to save cache index", slog.String("error", err.Error()))
	}

	return &doc, true
}

// Put stores doc under key. source names the template file it came from
// and may be empty.
func (c *Cache) Put(key, source string, doc ast.Document) error {
	data, err := encMode.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	hash := Hash(data)

	c.mu.RLock()
	if existing, ok := c.index.Entries[key]; ok && existing.Hash == hash {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	size := int64(len(data))
	if err := c.ensureSpace(size); err != nil {
		return fmt.Errorf("failed to ensure cache space: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.cbor", sanitizeKey(key), hash[:8])
	path := filepath.Join(c.dir, "documents", filename)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create documents directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	entry := &Entry{
		Key:        key,
		Hash:       hash,
		Path:       path,
		Size:       size,
		Created:    now,
		LastAccess: now,
		Source:     source,
	}

	c.mu.Lock()
	if old, ok := c.index.Entries[key]; ok {
		if old.Path != path {
			c.removeFile(old.Path)
		}
		c.stats.TotalSize -= old.Size
	}
	c.index.Entries[key] = entry
	c.index.Updated = now
	c.stats.TotalSize += size
	c.stats.EntryCount = len(c.index.Entries)
	c.mu.Unlock()

	return c.saveIndex()
}

// Delete removes an entry from the cache
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		return nil
	}

	c.removeFile(entry.Path)

	delete(c.index.Entries, key)
	c.stats.TotalSize -= entry.Size
	c.stats.EntryCount = len(c.index.Entries)
	c.index.Updated = time.Now()

	return c.saveIndexNoLock()
}

// InvalidateSource removes every entry parsed from source, or from any
// file below source when it names a directory. It returns the number of
// entries removed.
func (c *Cache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.index.Entries {
		if entry.Source == "" {
			continue
		}
		if entry.Source == source || strings.HasPrefix(entry.Source, source+string(filepath.Separator)) {
			c.removeFile(entry.Path)
			delete(c.index.Entries, key)
			c.stats.TotalSize -= entry.Size
			count++
		}
	}

	c.stats.EntryCount = len(c.index.Entries)
	c.index.Updated = time.Now()
	if err := c.saveIndexNoLock(); err != nil {
		c.log.Warn("failed to save cache index", slog.String("error", err.Error()))
	}

	return count
}

// Clear removes all cached entries
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, "documents")); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	c.index = newIndex()
	c.statsMu.Lock()
	c.stats = Stats{}
	c.statsMu.Unlock()

	return c.saveIndexNoLock()
}

// GetStats returns cache statistics
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key derives a cache key from its inputs. Inputs are length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h, _ := blake2b.New256(nil)
	for _, input := range inputs {
		fmt.Fprintf(h, "%d:", len(input))
		h.Write([]byte(input))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex BLAKE2b-256 digest of data.
func Hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Close stops the cleanup goroutine and saves the index
func (c *Cache) Close() error {
	close(c.stopCh)
	return c.saveIndex()
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, "index.cbor")
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		return err
	}

	var index Index
	if err := cbor.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if index.Version != IndexVersion {
		return fmt.Errorf("%w: version %d", ErrCorruptIndex, index.Version)
	}
	if index.Entries == nil {
		index.Entries = make(map[string]*Entry)
	}
	c.index = &index

	var totalSize int64
	for _, entry := range c.index.Entries {
		totalSize += entry.Size
	}
	c.stats.TotalSize = totalSize
	c.stats.EntryCount = len(c.index.Entries)

	return nil
}

func (c *Cache) saveIndex() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saveIndexNoLock()
}

// saveIndexNoLock saves the index without acquiring a lock
// Caller must hold at least a read lock
func (c *Cache) saveIndexNoLock() error {
	data, err := encMode.Marshal(c.index)
	if err != nil {
		return fmt.Errorf("failed to encode cache index: %w", err)
	}
	f, err := os.CreateTemp(c.dir, "index-*.tmp")
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), c.indexPath())
}

func (c *Cache) isExpired(entry *Entry) bool {
	// If maxAge is 0 or negative, entries never expire
	if c.maxAge <= 0 {
		return false
	}
	return time.Since(entry.Created) > c.maxAge
}

func (c *Cache) ensureSpace(needed int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize <= 0 {
		return nil
	}
	if needed > c.maxSize {
		return fmt.Errorf("document of %d bytes exceeds cache size %d", needed, c.maxSize)
	}

	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		evictKey, evictEntry := c.victim()
		if evictEntry == nil {
			break
		}

		c.removeFile(evictEntry.Path)
		delete(c.index.Entries, evictKey)
		c.stats.TotalSize -= evictEntry.Size
		c.stats.Evictions++
		c.log.Debug("evicted entry", slog.String("key", evictKey), slog.Int64("size", evictEntry.Size))
	}

	c.stats.EntryCount = len(c.index.Entries)
	return nil
}

// victim picks the entry to evict next according to the strategy.
// Caller must hold the write lock.
func (c *Cache) victim() (string, *Entry) {
	var evictKey string
	var evictEntry *Entry
	for key, entry := range c.index.Entries {
		if evictEntry == nil {
			evictKey, evictEntry = key, entry
			continue
		}
		var better bool
		switch c.strategy {
		case LFU:
			better = entry.AccessCount < evictEntry.AccessCount
		case FIFO:
			better = entry.Created.Before(evictEntry.Created)
		default:
			better = entry.LastAccess.Before(evictEntry.LastAccess)
		}
		if better {
			evictKey, evictEntry = key, entry
		}
	}
	return evictKey, evictEntry
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.index.Entries {
				if c.isExpired(entry) {
					c.removeFile(entry.Path)
					delete(c.index.Entries, key)
					c.stats.TotalSize -= entry.Size
				}
			}
			c.stats.EntryCount = len(c.index.Entries)
			c.index.Updated = time.Now()
			c.mu.Unlock()

			if err := c.saveIndex(); err != nil {
				c.log.Warn("failed to save cache index", slog.String("error", err.Error()))
			}
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.log.Warn("failed to remove cache file", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	sanitized := replacer.Replace(key)

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	return sanitized
}
