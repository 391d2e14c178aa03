package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"pyindent/internal/domain"
	"pyindent/internal/port"
)

// ParseCache is a bounded LRU of parse results keyed by buffer content.
// Entries older than the TTL are dropped on access.
type ParseCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	result    domain.ParseResult
	timestamp time.Time
}

func NewParseCache(maxSize int, ttl time.Duration) *ParseCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ParseCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Each line is length-prefixed so ["ab"] and ["a", "b"] hash differently.
func cacheKey(lines []string) string {
	h := sha256.New()
	var n [8]byte
	for _, line := range lines {
		binary.LittleEndian.PutUint64(n[:], uint64(len(line)))
		h.Write(n[:])
		h.Write([]byte(line))
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func (c *ParseCache) Get(lines []string) (domain.ParseResult, bool) {
	key := cacheKey(lines)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return domain.ParseResult{}, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses++
		return domain.ParseResult{}, false
	}

	c.moveToEnd(key)
	c.hits++
	return cloneResult(entry.result), true
}

func (c *ParseCache) Put(lines []string, result domain.ParseResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(lines)
	entry := &cacheEntry{result: cloneResult(result), timestamp: c.now()}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

func (c *ParseCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *ParseCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts since creation.
func (c *ParseCache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *ParseCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *ParseCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *ParseCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Callers may append to OpenBracketStack, so hand out copies.
func cloneResult(r domain.ParseResult) domain.ParseResult {
	r.OpenBracketStack = append([]domain.Position{}, r.OpenBracketStack...)
	return r
}

// CachedParser serves repeated buffers from a ParseCache.
type CachedParser struct {
	parser port.LineParser
	cache  *ParseCache
}

func NewCachedParser(parser port.LineParser, cache *ParseCache) *CachedParser {
	return &CachedParser{
		parser: parser,
		cache:  cache,
	}
}

func (p *CachedParser) Parse(lines []string) domain.ParseResult {
	if res, hit := p.cache.Get(lines); hit {
		return res
	}

	res := p.parser.Parse(lines)
	p.cache.Put(lines, res)
	return res
}
