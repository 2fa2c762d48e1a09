package options

import (
	"fmt"
	"sort"
	"time"

	"SpreadSentinel/internal/model"
)

// ErrBelowProfitTarget means the priced spread cannot meet the minimum
// profit target and should not be suggested.
var ErrBelowProfitTarget = fmt.Errorf("profit target below minimum")

// Suggester builds spread proposals from a forecast.
type Suggester struct {
	ShortOTMPct     float64 // distance of the short strike, fraction of spot
	LongOTMPct      float64 // distance of the long (protective) strike
	MinProfitTarget float64 // $/share
}

// NewSuggester creates a Suggester.
func NewSuggester(shortOTM, longOTM, minProfitTarget float64) *Suggester {
	return &Suggester{
		ShortOTMPct:     shortOTM,
		LongOTMPct:      longOTM,
		MinProfitTarget: minProfitTarget,
	}
}

// NextExpiration returns the next Friday at least minDays out.
func NextExpiration(now time.Time, minDays int) time.Time {
	d := now.AddDate(0, 0, minDays)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Suggest proposes a spread for the forecast: bull put when the bias leans
// up, bear call when it leans down, iron condor when it is flat. Returns
// ErrBelowProfitTarget when the priced spread is not worth placing.
func (s *Suggester) Suggest(pred *model.Prediction, ind *model.IndicatorSet, chain *model.OptionChain, expiration time.Time) (*model.TradeSuggestion, error) {
	switch {
	case pred.Bias > 0.02:
		return s.bullPut(pred, ind, chain, expiration)
	case pred.Bias < -0.02:
		return s.bearCall(pred, ind, chain, expiration)
	default:
		return s.ironCondor(pred, ind, chain, expiration)
	}
}

func (s *Suggester) bullPut(pred *model.Prediction, ind *model.IndicatorSet, chain *model.OptionChain, exp time.Time) (*model.TradeSuggestion, error) {
	price := pred.CurrentPrice
	shortK := FindOTMStrike(chain, price, s.ShortOTMPct, model.SidePut)
	longK := FindOTMStrike(chain, price, s.LongOTMPct, model.SidePut)
	if longK >= shortK {
		longK = shortK - strikeIncrement(price).InexactFloat64()
	}

	shortP := PremiumFor(pred.Symbol, chain, price, shortK, model.SidePut, ind.AnnualVol, exp)
	longP := PremiumFor(pred.Symbol, chain, price, longK, model.SidePut, ind.AnnualVol, exp)

	credit := shortP - longP
	maxLoss := (shortK - longK) - credit
	confidence := 50 + pred.Bias*100
	if confidence > 90 {
		confidence = 90
	}

	legs := []model.Leg{
		{Action: model.ActionSell, Side: model.SidePut, Strike: shortK, Premium: shortP},
		{Action: model.ActionBuy, Side: model.SidePut, Strike: longK, Premium: longP},
	}
	return s.finish(pred, model.BullPutSpread, legs, exp, credit, maxLoss, confidence)
}

func (s *Suggester) bearCall(pred *model.Prediction, ind *model.IndicatorSet, chain *model.OptionChain, exp time.Time) (*model.TradeSuggestion, error) {
	price := pred.CurrentPrice
	shortK := FindOTMStrike(chain, price, s.ShortOTMPct, model.SideCall)
	longK := FindOTMStrike(chain, price, s.LongOTMPct, model.SideCall)
	if longK <= shortK {
		longK = shortK + strikeIncrement(price).InexactFloat64()
	}

	shortP := PremiumFor(pred.Symbol, chain, price, shortK, model.SideCall, ind.AnnualVol, exp)
	longP := PremiumFor(pred.Symbol, chain, price, longK, model.SideCall, ind.AnnualVol, exp)

	credit := shortP - longP
	maxLoss := (longK - shortK) - credit
	confidence := 50 + abs(pred.Bias)*100
	if confidence > 90 {
		confidence = 90
	}

	legs := []model.Leg{
		{Action: model.ActionSell, Side: model.SideCall, Strike: shortK, Premium: shortP},
		{Action: model.ActionBuy, Side: model.SideCall, Strike: longK, Premium: longP},
	}
	return s.finish(pred, model.BearCallSpread, legs, exp, credit, maxLoss, confidence)
}

func (s *Suggester) ironCondor(pred *model.Prediction, ind *model.IndicatorSet, chain *model.OptionChain, exp time.Time) (*model.TradeSuggestion, error) {
	price := pred.CurrentPrice
	putShortK := FindOTMStrike(chain, price, s.ShortOTMPct, model.SidePut)
	putLongK := FindOTMStrike(chain, price, s.LongOTMPct, model.SidePut)
	if putLongK >= putShortK {
		putLongK = putShortK - strikeIncrement(price).InexactFloat64()
	}
	callShortK := FindOTMStrike(chain, price, s.ShortOTMPct, model.SideCall)
	callLongK := FindOTMStrike(chain, price, s.LongOTMPct, model.SideCall)
	if callLongK <= callShortK {
		callLongK = callShortK + strikeIncrement(price).InexactFloat64()
	}

	putShortP := PremiumFor(pred.Symbol, chain, price, putShortK, model.SidePut, ind.AnnualVol, exp)
	putLongP := PremiumFor(pred.Symbol, chain, price, putLongK, model.SidePut, ind.AnnualVol, exp)
	callShortP := PremiumFor(pred.Symbol, chain, price, callShortK, model.SideCall, ind.AnnualVol, exp)
	callLongP := PremiumFor(pred.Symbol, chain, price, callLongK, model.SideCall, ind.AnnualVol, exp)

	credit := (putShortP - putLongP) + (callShortP - callLongP)
	putWidth := putShortK - putLongK
	callWidth := callLongK - callShortK
	width := putWidth
	if callWidth > width {
		width = callWidth
	}
	maxLoss := width - credit

	confidence := 60 + abs(0.5-pred.BullishProb)*100
	if confidence > 90 {
		confidence = 90
	}

	legs := []model.Leg{
		{Action: model.ActionBuy, Side: model.SidePut, Strike: putLongK, Premium: putLongP},
		{Action: model.ActionSell, Side: model.SidePut, Strike: putShortK, Premium: putShortP},
		{Action: model.ActionSell, Side: model.SideCall, Strike: callShortK, Premium: callShortP},
		{Action: model.ActionBuy, Side: model.SideCall, Strike: callLongK, Premium: callLongP},
	}
	return s.finish(pred, model.IronCondor, legs, exp, credit, maxLoss, confidence)
}

func (s *Suggester) finish(pred *model.Prediction, strategy model.Strategy, legs []model.Leg, exp time.Time, credit, maxLoss, confidence float64) (*model.TradeSuggestion, error) {
	profitTarget := credit * 0.5
	if profitTarget < s.MinProfitTarget {
		return nil, fmt.Errorf("%s %s: target $%.2f: %w", pred.Symbol, strategy, profitTarget, ErrBelowProfitTarget)
	}

	sort.Slice(legs, func(i, j int) bool { return legs[i].Strike < legs[j].Strike })

	sug := &model.TradeSuggestion{
		Symbol:       pred.Symbol,
		Strategy:     strategy,
		Legs:         legs,
		Expiration:   exp,
		Credit:       credit,
		MaxLoss:      maxLoss,
		ProfitTarget: profitTarget,
		Confidence:   confidence,
		Bias:         pred.Bias,
		CreatedAt:    time.Now(),
	}
	sug.OptionStratURL = BuildOptionStratURL(sug)
	return sug, nil
}

// Evaluate recommends HOLD, CLOSE or ADJUST for an open trade given the
// current underlying price.
func Evaluate(trade *model.Trade, currentPrice float64, now time.Time) model.TradeAdvice {
	daysToExp := int(trade.Expiration.Sub(now).Hours() / 24)

	advice := model.TradeAdvice{TradeID: trade.ID, Action: "HOLD", Reason: "Trade within acceptable range"}

	switch trade.Strategy {
	case model.BullPutSpread:
		shortK, longK := legStrike(trade.Legs, model.ActionSell, model.SidePut), legStrike(trade.Legs, model.ActionBuy, model.SidePut)
		switch {
		case currentPrice > shortK*1.1:
			advice.Action, advice.Reason = "CLOSE", "Well above short strike, capture profits"
		case currentPrice < longK*0.95:
			advice.Action, advice.Reason = "CLOSE", "Too close to max loss, cut losses"
		case daysToExp <= 3:
			advice.Action, advice.Reason = "CLOSE", "Close to expiration, manage risk"
		}
	case model.BearCallSpread:
		shortK, longK := legStrike(trade.Legs, model.ActionSell, model.SideCall), legStrike(trade.Legs, model.ActionBuy, model.SideCall)
		switch {
		case currentPrice < shortK*0.9:
			advice.Action, advice.Reason = "CLOSE", "Well below short strike, capture profits"
		case currentPrice > longK*1.05:
			advice.Action, advice.Reason = "CLOSE", "Too close to max loss, cut losses"
		case daysToExp <= 3:
			advice.Action, advice.Reason = "CLOSE", "Close to expiration, manage risk"
		}
	case model.IronCondor:
		putShort := legStrike(trade.Legs, model.ActionSell, model.SidePut)
		callShort := legStrike(trade.Legs, model.ActionSell, model.SideCall)
		if currentPrice > putShort && currentPrice < callShort {
			if daysToExp <= 5 {
				advice.Action, advice.Reason = "CLOSE", "In profit zone, close before expiration"
			} else {
				advice.Reason = "In profit zone, let time decay work"
			}
		} else {
			advice.Action, advice.Reason = "ADJUST", "Outside profit zone, consider adjustment"
		}
	}
	return advice
}

func legStrike(legs []model.Leg, action model.LegAction, side model.OptionSide) float64 {
	for _, l := range legs {
		if l.Action == action && l.Side == side {
			return l.Strike
		}
	}
	return 0
}
