package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"SpreadSentinel/internal/ledger"
	"SpreadSentinel/internal/model"
)

// FormatSuggestion formats a spread proposal into a Telegram message.
func FormatSuggestion(sug *model.TradeSuggestion) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("💡 <b>%s</b> | %s\n", sug.Symbol, sug.Strategy))
	b.WriteString(fmt.Sprintf("Expires %s\n\n", sug.Expiration.Format("2006-01-02")))

	for _, l := range sug.Legs {
		b.WriteString(fmt.Sprintf("  %s %s $%g @ $%.2f\n", l.Action, l.Side, l.Strike, l.Premium))
	}

	b.WriteString(fmt.Sprintf("\nCredit: $%.2f | Max loss: $%.2f\n", sug.Credit, sug.MaxLoss))
	b.WriteString(fmt.Sprintf("Profit target: $%.2f | Confidence: %.0f%%\n", sug.ProfitTarget, sug.Confidence))
	if sug.OptionStratURL != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", sug.OptionStratURL))
	}
	return b.String()
}

// FormatScreeningReport formats the ranked screening snapshot.
func FormatScreeningReport(run *model.ScreeningRun) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Momentum Screen</b> | %s\n", run.RunAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Regime: %s (defensive %.0f)\n\n", run.Health.Regime, run.Health.DefensiveScore))

	if len(run.Candidates) == 0 {
		b.WriteString("No tickers qualified.\n")
	}
	for i, c := range run.Candidates {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> $%.2f (%+.1f%%) cap $%s\n",
			i+1, c.Symbol, c.CurrentPrice, c.DailyChange, humanize.SIWithDigits(c.MarketCap, 1, "")))
		b.WriteString(fmt.Sprintf("   score %.1f | RS %.0f | avg wk %+.1f%% | %s\n",
			c.Score, c.RSScore, c.AvgWeeklyReturn, c.Reason))
	}

	if len(run.Allocation.Weights) > 0 {
		b.WriteString(fmt.Sprintf("\nAllocation (%.0f%% cash):\n", run.Allocation.CashPct))
		for _, sym := range run.Allocation.StrongBuys {
			b.WriteString(fmt.Sprintf("  %s %.1f%% (strong)\n", sym, run.Allocation.Weights[sym]))
		}
		for _, sym := range run.Allocation.ModerateBuys {
			b.WriteString(fmt.Sprintf("  %s %.1f%%\n", sym, run.Allocation.Weights[sym]))
		}
	}
	return b.String()
}

// FormatHealthReport formats the market health check.
func FormatHealthReport(h *model.MarketHealth) string {
	var b strings.Builder

	icon := "🟢"
	switch h.Regime {
	case model.RegimeCautious:
		icon = "🟡"
	case model.RegimeDefensive:
		icon = "🟠"
	case model.RegimeHighlyDefensive:
		icon = "🔴"
	}

	b.WriteString(fmt.Sprintf("%s <b>Market Health</b> | %s\n\n", icon, h.CheckedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("VIX: %.1f (%s)\n", h.VIX, h.VIXTrend))
	b.WriteString(fmt.Sprintf("Breadth: %.0f%% of sectors above MA10\n", h.Breadth))
	b.WriteString(fmt.Sprintf("SPY above MA20: %v | MA50: %v\n", h.SPYAboveMA20, h.SPYAboveMA50))
	b.WriteString(fmt.Sprintf("10d realized vol: %.1f%%\n", h.RealizedVol))
	b.WriteString(fmt.Sprintf("\nRegime: <b>%s</b> (defensive score %.0f)\n", h.Regime, h.DefensiveScore))
	if h.AutoAdjust {
		b.WriteString("⚠️ High stress: allocations auto-adjusted\n")
	}
	return b.String()
}

// FormatPnLReport formats the weekly P&L summary.
func FormatPnLReport(s ledger.PnLSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💰 <b>Weekly P&amp;L</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Closed this week: %d\n", s.ClosedSince))
	b.WriteString(fmt.Sprintf("Total P&amp;L: $%.2f\n", s.TotalPnL))
	if s.ClosedSince > 0 {
		b.WriteString(fmt.Sprintf("Win rate: %.0f%% | Avg: $%.2f\n", s.WinRate, s.AveragePnL))
	}
	b.WriteString(fmt.Sprintf("Open positions: %d\n", s.OpenCount))
	return b.String()
}

// FormatWatchlist formats the forecast table.
func FormatWatchlist(entries []model.WatchlistEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👀 <b>Watchlist</b> | %s\n\n", time.Now().Format("2006-01-02")))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("<b>%s</b> $%.2f → $%.2f [$%.2f–$%.2f] %.0f%%↑\n",
			e.Symbol, e.CurrentPrice, e.TargetPrice, e.RangeLow, e.RangeHigh, e.BullishProb*100))
	}
	if len(entries) == 0 {
		b.WriteString("Watchlist is empty, refresh pending.\n")
	}
	return b.String()
}

// FormatAdvice formats open-trade recommendations.
func FormatAdvice(trades []model.Trade, advice []model.TradeAdvice) string {
	var b strings.Builder
	b.WriteString("🔎 <b>Open Trade Review</b>\n\n")
	byID := make(map[string]model.Trade, len(trades))
	for _, t := range trades {
		byID[t.ID] = t
	}
	for _, a := range advice {
		t := byID[a.TradeID]
		b.WriteString(fmt.Sprintf("<b>%s</b> %s: %s\n   %s\n", t.Symbol, t.Strategy, a.Action, a.Reason))
	}
	if len(advice) == 0 {
		b.WriteString("No open trades.\n")
	}
	return b.String()
}
