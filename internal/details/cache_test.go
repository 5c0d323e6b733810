package details

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/poliswatch/internal/domain"
)

func TestCacheLookup(t *testing.T) {
	base := time.Date(2026, time.January, 12, 12, 0, 0, 0, time.UTC)
	current := base

	c := NewCache(12 * time.Hour)
	c.now = func() time.Time { return current }

	_, outcome := c.Lookup(1)
	assert.Equal(t, Miss, outcome)

	c.Put(1, domain.DetailFields{Subtitle: "ingress"})

	fields, outcome := c.Lookup(1)
	assert.Equal(t, Hit, outcome)
	assert.Equal(t, "ingress", fields.Subtitle)

	current = base.Add(12 * time.Hour)

	_, outcome = c.Lookup(1)
	assert.Equal(t, Hit, outcome)

	current = base.Add(12*time.Hour + time.Minute)

	_, outcome = c.Lookup(1)
	assert.Equal(t, Expired, outcome)

	// Expiry evicts, so the next lookup is a plain miss.
	_, outcome = c.Lookup(1)
	assert.Equal(t, Miss, outcome)
	assert.Equal(t, 0, c.Len())
}

func TestCachePutOverwrites(t *testing.T) {
	base := time.Date(2026, time.January, 12, 12, 0, 0, 0, time.UTC)
	current := base

	c := NewCache(12 * time.Hour)
	c.now = func() time.Time { return current }

	c.Put(7, domain.DetailFields{Subtitle: "gammal"})

	current = base.Add(11 * time.Hour)
	c.Put(7, domain.DetailFields{Subtitle: "ny"})

	// The rewrite restarts the clock for the entry.
	current = base.Add(22 * time.Hour)

	fields, outcome := c.Lookup(7)
	assert.Equal(t, Hit, outcome)
	assert.Equal(t, "ny", fields.Subtitle)
}

func TestCacheKeysAreIndependent(t *testing.T) {
	c := NewCache(12 * time.Hour)

	c.Put(1, domain.DetailFields{Subtitle: "ett"})
	c.Put(2, domain.DetailFields{Subtitle: "två"})

	fields, outcome := c.Lookup(2)
	assert.Equal(t, Hit, outcome)
	assert.Equal(t, "två", fields.Subtitle)
	assert.Equal(t, 2, c.Len())
}
