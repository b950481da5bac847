package resolver

import (
	"container/list"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/devicelab-dev/uiresolve/pkg/element"
)

// Cache is an explicit, caller-owned extraction cache. Entries are keyed
// strictly on the XML content hash so a stale capture can never be served
// for fresh input. The extraction pipeline itself stays cache-agnostic; the
// resolver consults the cache only when the caller attached one.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	order   *list.List // oldest at front
}

type cacheEntry struct {
	key    string
	result *element.Result
}

// NewCache creates a cache holding at most maxSize extractions. The oldest
// entry is evicted first; sizes below 1 are clamped to 1.
func NewCache(maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// ContentKey hashes the XML dump with FNV-64a.
func ContentKey(xmlData string) string {
	h := fnv.New64a()
	h.Write([]byte(xmlData))
	return strconv.FormatUint(h.Sum64(), 16)
}

// Get returns the cached extraction for the content key, if present.
func (c *Cache) Get(key string) (*element.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*cacheEntry).result, true
}

// Put stores an extraction under the content key, evicting the oldest entry
// when full. Re-putting an existing key refreshes its age.
func (c *Cache) Put(key string, result *element.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).result = result
		c.order.MoveToBack(el)
		return
	}

	for len(c.entries) >= c.maxSize {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, result: result})
}

// Len returns the number of cached extractions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
