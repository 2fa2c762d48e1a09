package forecast

import (
	"path/filepath"
	"testing"
	"time"

	"SpreadSentinel/internal/model"
)

func TestCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")

	c, err := NewCache(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pred := &model.Prediction{
		Symbol:       "AAPL",
		CurrentPrice: 230.5,
		TargetPrice:  231.0,
		RangeLow:     222.0,
		RangeHigh:    240.0,
		Bias:         0.2,
		BullishProb:  0.6,
		CreatedAt:    time.Now().Truncate(time.Second),
	}
	if err := c.Put(pred); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Reload from disk.
	c2, err := NewCache(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := c2.Get("AAPL")
	if !ok {
		t.Fatal("expected AAPL after reload")
	}
	if got.TargetPrice != pred.TargetPrice || got.RangeLow != pred.RangeLow {
		t.Errorf("reloaded prediction differs: got %+v", got)
	}
}

func TestCache_ReplaceAndWatchlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	c, err := NewCache(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.Put(&model.Prediction{Symbol: "OLD", CurrentPrice: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	preds := []model.Prediction{
		{Symbol: "QQQ", CurrentPrice: 500},
		{Symbol: "AAPL", CurrentPrice: 230},
	}
	if err := c.Replace(preds); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if _, ok := c.Get("OLD"); ok {
		t.Error("replace should drop stale entries")
	}
	wl := c.Watchlist()
	if len(wl) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(wl))
	}
	if wl[0].Symbol != "AAPL" || wl[1].Symbol != "QQQ" {
		t.Errorf("expected rows sorted by symbol, got %s, %s", wl[0].Symbol, wl[1].Symbol)
	}
}

func TestCache_Stale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	c, err := NewCache(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !c.Stale(time.Hour) {
		t.Error("empty cache should be stale")
	}
	if err := c.Put(&model.Prediction{Symbol: "SPY", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if c.Stale(time.Hour) {
		t.Error("fresh entry should not be stale")
	}
	if err := c.Replace([]model.Prediction{{Symbol: "SPY", CreatedAt: time.Now().Add(-2 * time.Hour)}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !c.Stale(time.Hour) {
		t.Error("old entry should be stale")
	}
}
