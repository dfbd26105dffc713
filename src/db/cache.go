package db

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache holds per-user stats and monthly-summary results so repeated
// dashboard loads skip the aggregation queries. Keys are deterministic
// per user, so invalidation after a write is two deletes.
type Cache struct {
	c *ristretto.Cache[string, any]
}

func NewCache() (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &Cache{c: c}, nil
}

func statsKey(userID string) string   { return "stats:" + userID }
func summaryKey(userID string) string { return "summary:" + userID }

func (c *Cache) GetStats(userID string) (Stats, bool) {
	v, ok := c.c.Get(statsKey(userID))
	if !ok {
		return Stats{}, false
	}
	s, ok := v.(Stats)
	return s, ok
}

func (c *Cache) SetStats(userID string, s Stats) {
	c.c.Set(statsKey(userID), s, 1)
}

func (c *Cache) GetSummary(userID string) ([]MonthlySummary, bool) {
	v, ok := c.c.Get(summaryKey(userID))
	if !ok {
		return nil, false
	}
	s, ok := v.([]MonthlySummary)
	return s, ok
}

func (c *Cache) SetSummary(userID string, s []MonthlySummary) {
	c.c.Set(summaryKey(userID), s, 1)
}

// Invalidate drops a user's cached aggregates. Called after every
// expense mutation.
func (c *Cache) Invalidate(userID string) {
	c.c.Del(statsKey(userID))
	c.c.Del(summaryKey(userID))
}

func (c *Cache) Close() {
	c.c.Close()
}
