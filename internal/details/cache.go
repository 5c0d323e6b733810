package details

import (
	"sync"
	"time"

	"github.com/jonesrussell/poliswatch/internal/domain"
)

// Outcome classifies a cache lookup.
type Outcome int

const (
	// Miss means no entry exists for the key.
	Miss Outcome = iota
	// Hit means a fresh entry was found.
	Hit
	// Expired means an entry existed but aged past the TTL and was evicted.
	Expired
)

// entry is one cached detail record.
type entry struct {
	fields   domain.DetailFields
	storedAt time.Time
}

// Cache is a TTL cache of detail fields keyed by event id. Entries older
// than the TTL are treated as absent.
type Cache struct {
	mu      sync.Mutex
	entries map[int64]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[int64]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup returns the cached fields for id and how the lookup resolved.
func (c *Cache) Lookup(id int64) (domain.DetailFields, Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return domain.DetailFields{}, Miss
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, id)
		return domain.DetailFields{}, Expired
	}

	return e.fields, Hit
}

// Put stores fields for id, overwriting any prior entry.
func (c *Cache) Put(id int64, fields domain.DetailFields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = entry{fields: fields, storedAt: c.now()}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
