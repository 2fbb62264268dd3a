package cache

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/earningscheck/internal/model"
)

// Results stores transcript results in a Cache as JSON
type Results struct {
	c Cache
}

// NewResults wraps c.
func NewResults(c Cache) *Results {
	return &Results{c: c}
}

// Get returns the cached result for key. Entries that no longer decode are
// treated as misses.
func (r *Results) Get(key string) (*model.TranscriptResult, bool) {
	data, ok := r.c.Get(key)
	if !ok {
		return nil, false
	}
	var res model.TranscriptResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}

// Put stores res under key with the cache's default TTL.
func (r *Results) Put(key string, res *model.TranscriptResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return r.c.Set(key, data, 0)
}

// Clear drops every cached result.
func (r *Results) Clear() error {
	return r.c.Clear()
}
