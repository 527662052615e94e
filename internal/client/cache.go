package client

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// DefaultCacheEntries bounds the transcripts kept by NewTranscriptCache when no
// size is given.
const DefaultCacheEntries = 64

// TranscriptCache maps source audio URLs to transcripts for one caller session.
// It is bounded, least-recently-used first out, and safe for concurrent use.
type TranscriptCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	max     int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	key        string
	transcript string
	storedAt   time.Time
}

// NewTranscriptCache creates a cache holding at most maxEntries transcripts.
// A ttl of zero keeps entries until they are evicted by size.
func NewTranscriptCache(maxEntries int, ttl time.Duration) *TranscriptCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &TranscriptCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		max:     maxEntries,
		ttl:     ttl,
		now:     time.Now,
	}
}

// cacheKey normalizes a source URL.
func cacheKey(audioURL string) string {
	return strings.TrimSpace(audioURL)
}

// Get returns the transcript cached for audioURL.
func (c *TranscriptCache) Get(audioURL string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[cacheKey(audioURL)]
	if !ok {
		return "", false
	}
	entry := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.removeElement(el)
		return "", false
	}
	c.order.MoveToFront(el)
	return entry.transcript, true
}

// Put stores transcript for audioURL, evicting the least recently used entry
// when full. Empty transcripts are not cached.
func (c *TranscriptCache) Put(audioURL, transcript string) {
	key := cacheKey(audioURL)
	if key == "" || transcript == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.transcript = transcript
		entry.storedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, transcript: transcript, storedAt: c.now()})
	for c.order.Len() > c.max {
		c.removeElement(c.order.Back())
	}
}

// Invalidate drops the transcript for audioURL, forcing a fresh transcription.
func (c *TranscriptCache) Invalidate(audioURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[cacheKey(audioURL)]; ok {
		c.removeElement(el)
	}
}

// Len returns the number of cached transcripts.
func (c *TranscriptCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *TranscriptCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
}
