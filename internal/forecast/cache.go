package forecast

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"SpreadSentinel/internal/model"
)

// Cache stores the latest prediction per ticker in a JSON file. All writes go
// through one mutex so concurrent refreshes cannot drop each other's updates.
type Cache struct {
	mu       sync.Mutex
	filePath string
	entries  map[string]model.Prediction
}

// NewCache loads (or initializes) the prediction cache from disk.
func NewCache(filePath string) (*Cache, error) {
	c := &Cache{
		filePath: filePath,
		entries:  make(map[string]model.Prediction),
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, err
	}
	return c, nil
}

// Put stores a prediction and persists the cache.
func (c *Cache) Put(p *model.Prediction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[p.Symbol] = *p
	return c.save()
}

// Get returns the cached prediction for a symbol.
func (c *Cache) Get(symbol string) (model.Prediction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[symbol]
	return p, ok
}

// Watchlist renders the cache as dashboard rows, sorted by symbol.
func (c *Cache) Watchlist() []model.WatchlistEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.WatchlistEntry, 0, len(c.entries))
	for _, p := range c.entries {
		out = append(out, model.WatchlistEntry{
			Symbol:       p.Symbol,
			CurrentPrice: p.CurrentPrice,
			RangeLow:     p.RangeLow,
			RangeHigh:    p.RangeHigh,
			TargetPrice:  p.TargetPrice,
			BullishProb:  p.BullishProb,
			UpdatedAt:    p.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Replace swaps the whole cache for a freshly generated set of predictions.
func (c *Cache) Replace(preds []model.Prediction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]model.Prediction, len(preds))
	for _, p := range preds {
		c.entries[p.Symbol] = p
	}
	return c.save()
}

// Stale reports whether the cache has no entry newer than maxAge.
func (c *Cache) Stale(maxAge time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.entries {
		if time.Since(p.CreatedAt) < maxAge {
			return false
		}
	}
	return true
}

func (c *Cache) save() error {
	if dir := filepath.Dir(c.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.filePath, data, 0644)
}
