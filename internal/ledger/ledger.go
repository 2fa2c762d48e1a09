package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"SpreadSentinel/internal/model"
)

// ErrTradeNotFound is returned when no trade carries the given id.
var ErrTradeNotFound = fmt.Errorf("trade not found")

// Manager owns the trade ledger file. Every mutation happens under one mutex
// and is persisted before the call returns, so concurrent handlers cannot
// lose updates and failures surface to the caller.
type Manager struct {
	mu       sync.Mutex
	trades   []model.Trade
	filePath string
}

// NewManager creates a Manager, loading existing trades from disk.
func NewManager(filePath string) (*Manager, error) {
	trades, err := loadTrades(filePath)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	return &Manager{trades: trades, filePath: filePath}, nil
}

// Add records a suggestion as an open trade and returns the stored copy.
func (m *Manager) Add(sug *model.TradeSuggestion) (*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trade := model.Trade{
		ID:         uuid.NewString(),
		Symbol:     sug.Symbol,
		Strategy:   sug.Strategy,
		Legs:       append([]model.Leg(nil), sug.Legs...),
		Expiration: sug.Expiration,
		Credit:     sug.Credit,
		MaxLoss:    sug.MaxLoss,
		Status:     model.TradeOpen,
		EntryDate:  time.Now(),
	}
	m.trades = append(m.trades, trade)
	if err := m.save(); err != nil {
		m.trades = m.trades[:len(m.trades)-1]
		return nil, err
	}
	return &trade, nil
}

// Close marks a trade closed, recording the exit and realized P&L. For credit
// spreads the P&L is the collected credit minus the closing debit.
func (m *Manager) Close(id string, exitPrice float64, reason string) (*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.trades {
		if m.trades[i].ID != id {
			continue
		}
		t := &m.trades[i]
		t.Status = model.TradeClosed
		t.ExitDate = time.Now()
		t.ExitPrice = exitPrice
		t.ExitReason = reason
		t.PnL = t.Credit - exitPrice
		if err := m.save(); err != nil {
			return nil, err
		}
		out := *t
		return &out, nil
	}
	return nil, fmt.Errorf("close %s: %w", id, ErrTradeNotFound)
}

// Edit applies a mutation to a trade and persists it.
func (m *Manager) Edit(id string, mutate func(*model.Trade)) (*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.trades {
		if m.trades[i].ID != id {
			continue
		}
		mutate(&m.trades[i])
		m.trades[i].ID = id // the id itself is immutable
		if err := m.save(); err != nil {
			return nil, err
		}
		out := m.trades[i]
		return &out, nil
	}
	return nil, fmt.Errorf("edit %s: %w", id, ErrTradeNotFound)
}

// Delete removes a trade from the ledger.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.trades {
		if m.trades[i].ID == id {
			m.trades = append(m.trades[:i], m.trades[i+1:]...)
			return m.save()
		}
	}
	return fmt.Errorf("delete %s: %w", id, ErrTradeNotFound)
}

// All returns a copy of every trade.
func (m *Manager) All() []model.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Trade(nil), m.trades...)
}

// Open returns the open trades.
func (m *Manager) Open() []model.Trade {
	return m.filter(model.TradeOpen)
}

// Closed returns the closed trades.
func (m *Manager) Closed() []model.Trade {
	return m.filter(model.TradeClosed)
}

func (m *Manager) filter(status model.TradeStatus) []model.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Trade, 0, len(m.trades))
	for _, t := range m.trades {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Get returns a trade by id.
func (m *Manager) Get(id string) (*model.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.trades {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get %s: %w", id, ErrTradeNotFound)
}

// PnLSummary aggregates realized results over a window.
type PnLSummary struct {
	TotalPnL    float64 `json:"total_pnl"`
	TradeCount  int     `json:"trade_count"`
	WinCount    int     `json:"win_count"`
	WinRate     float64 `json:"win_rate"` // pct
	AveragePnL  float64 `json:"average_pnl"`
	OpenCount   int     `json:"open_count"`
	ClosedSince int     `json:"closed_since"`
}

// WeeklyPnL summarizes trades closed within the past 7 days.
func (m *Manager) WeeklyPnL() PnLSummary {
	return m.PnLSince(time.Now().AddDate(0, 0, -7))
}

// PnLSince summarizes trades closed at or after the cutoff.
func (m *Manager) PnLSince(cutoff time.Time) PnLSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s PnLSummary
	for _, t := range m.trades {
		if t.Status == model.TradeOpen {
			s.OpenCount++
			continue
		}
		s.TradeCount++
		if t.ExitDate.Before(cutoff) {
			continue
		}
		s.ClosedSince++
		s.TotalPnL += t.PnL
		if t.PnL > 0 {
			s.WinCount++
		}
	}
	if s.ClosedSince > 0 {
		s.WinRate = float64(s.WinCount) / float64(s.ClosedSince) * 100
		s.AveragePnL = s.TotalPnL / float64(s.ClosedSince)
	}
	return s
}

func (m *Manager) save() error {
	return saveTrades(m.filePath, m.trades)
}
