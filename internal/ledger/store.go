package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"

	"SpreadSentinel/internal/model"
)

// loadTrades reads the trade list from a JSON file. Returns an empty list if
// the file doesn't exist.
func loadTrades(filePath string) ([]model.Trade, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Trade{}, nil
		}
		return nil, err
	}
	var trades []model.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// saveTrades writes the trade list to a JSON file.
func saveTrades(filePath string, trades []model.Trade) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
