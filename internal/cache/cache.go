// Package cache holds the most recently extracted ResumeRecord per user PIN.
//
// The in-memory map is authoritative for the process. An optional Mirror (see
// RedisMirror) receives every write so records survive restarts; mirror failures
// are logged and never change what the cache returns.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/cover-letter-agent/internal/types"
)

// DefaultMirrorTimeout bounds each call into the mirror.
const DefaultMirrorTimeout = 2 * time.Second

// Mirror is a secondary store that the cache writes through to.
type Mirror interface {
	Store(ctx context.Context, pin int, record *types.ResumeRecord) error
	Load(ctx context.Context, pin int) (*types.ResumeRecord, bool, error)
	Remove(ctx context.Context, pin int) error
	Flush(ctx context.Context) error
}

// ResumeCache maps PINs to ResumeRecords. Last write wins and entries never expire.
// Records are deep-copied on the way in and out.
//
// Writes hold writeMu across both the local change and the mirror call, so the
// mirror sees writes in the same order as the map. Removals reach the mirror
// before the map, and every write bumps version, so a Get that loaded a mirror
// copy before a write finished never stores it back.
type ResumeCache struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	records map[int]*types.ResumeRecord
	version uint64

	mirror        Mirror
	mirrorTimeout time.Duration
	logger        *slog.Logger
}

// Option configures a ResumeCache.
type Option func(*ResumeCache)

// WithMirror writes every change through to m and consults it on misses.
func WithMirror(m Mirror) Option {
	return func(c *ResumeCache) { c.mirror = m }
}

// WithMirrorTimeout overrides DefaultMirrorTimeout.
func WithMirrorTimeout(d time.Duration) Option {
	return func(c *ResumeCache) { c.mirrorTimeout = d }
}

// WithLogger sets the logger used for mirror failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ResumeCache) { c.logger = logger }
}

// New creates an empty cache.
func New(opts ...Option) *ResumeCache {
	c := &ResumeCache{
		records:       make(map[int]*types.ResumeRecord),
		mirrorTimeout: DefaultMirrorTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put stores record under pin, replacing any previous entry.
// A nil record is stored as the empty record.
func (c *ResumeCache) Put(pin int, record *types.ResumeRecord) {
	stored := cloneOrEmpty(record)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.records[pin] = stored
	c.version++
	c.mu.Unlock()

	c.mirrorStore(pin, stored)
}

// Get returns a copy of the record stored under pin.
// On a local miss the mirror is consulted and a hit is kept locally.
func (c *ResumeCache) Get(pin int) (*types.ResumeRecord, bool) {
	c.mu.RLock()
	record, ok := c.records[pin]
	seen := c.version
	c.mu.RUnlock()
	if ok {
		return record.Clone(), true
	}

	if c.mirror == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.mirrorTimeout)
	defer cancel()
	loaded, found, err := c.mirror.Load(ctx, pin)
	if err != nil {
		c.logger.Warn("cache: mirror load failed", slog.Int("pin", pin), slog.Any("error", err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	loaded.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, exists := c.records[pin]; exists {
		return current.Clone(), true
	}
	// A write that landed while the mirror was read may have made the copy stale.
	if c.version == seen {
		c.records[pin] = loaded
	}
	return loaded.Clone(), true
}

// Update atomically replaces the record under pin with fn's result. fn receives a
// copy of the current record (nil when absent). Returning nil removes the entry.
func (c *ResumeCache) Update(pin int, fn func(current *types.ResumeRecord) *types.ResumeRecord) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	next := fn(c.records[pin].Clone())
	if next != nil {
		next = next.Clone()
		next.Normalize()
		c.records[pin] = next
		c.version++
	}
	c.mu.Unlock()

	if next != nil {
		c.mirrorStore(pin, next)
		return
	}

	c.mirrorRemove(pin)
	c.mu.Lock()
	delete(c.records, pin)
	c.version++
	c.mu.Unlock()
}

// Delete removes the entry under pin and reports whether it existed locally.
func (c *ResumeCache) Delete(pin int) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mirrorRemove(pin)

	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[pin]
	delete(c.records, pin)
	c.version++
	return ok
}

// Clear removes every entry.
func (c *ResumeCache) Clear() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.mirrorTimeout)
		if err := c.mirror.Flush(ctx); err != nil {
			c.logger.Warn("cache: mirror flush failed", slog.Any("error", err))
		}
		cancel()
	}

	c.mu.Lock()
	c.records = make(map[int]*types.ResumeRecord)
	c.version++
	c.mu.Unlock()
}

// Size returns the number of locally held entries.
func (c *ResumeCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *ResumeCache) mirrorStore(pin int, record *types.ResumeRecord) {
	if c.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.mirrorTimeout)
	defer cancel()
	if err := c.mirror.Store(ctx, pin, record); err != nil {
		c.logger.Warn("cache: mirror store failed", slog.Int("pin", pin), slog.Any("error", err))
	}
}

func (c *ResumeCache) mirrorRemove(pin int) {
	if c.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.mirrorTimeout)
	defer cancel()
	if err := c.mirror.Remove(ctx, pin); err != nil {
		c.logger.Warn("cache: mirror remove failed", slog.Int("pin", pin), slog.Any("error", err))
	}
}

func cloneOrEmpty(record *types.ResumeRecord) *types.ResumeRecord {
	if record == nil {
		return types.EmptyResumeRecord()
	}
	c := record.Clone()
	c.Normalize()
	return c
}
