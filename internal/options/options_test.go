package options

import (
	"errors"
	"testing"
	"time"

	"SpreadSentinel/internal/model"
)

func TestSnapStrike(t *testing.T) {
	tests := []struct {
		price float64
		want  float64
	}{
		{625.34, 625},
		{627.6, 628},
		{25.0, 25},
		{17.3, 17.5},
		{17.1, 17},
		{10.0, 10},
		{8.2, 8.25},
		{8.1, 8},
		{3.9, 4},
	}
	for _, tt := range tests {
		if got := SnapStrike(tt.price); got != tt.want {
			t.Errorf("SnapStrike(%.2f): expected %.2f, got %.2f", tt.price, tt.want, got)
		}
	}
}

func TestStrikeLadder(t *testing.T) {
	strikes := StrikeLadder(100, 10)
	if len(strikes) != 11 {
		t.Fatalf("expected 11 strikes, got %d", len(strikes))
	}
	if strikes[0] != 75 || strikes[10] != 125 {
		t.Errorf("expected ladder 75..125, got %.1f..%.1f", strikes[0], strikes[10])
	}
	for i := 1; i < len(strikes); i++ {
		if strikes[i] <= strikes[i-1] {
			t.Fatalf("ladder not ascending at %d: %.2f <= %.2f", i, strikes[i], strikes[i-1])
		}
	}

	// Low-priced underlyings never get zero or negative strikes.
	for _, s := range StrikeLadder(1.2, 10) {
		if s <= 0 {
			t.Errorf("ladder contains non-positive strike %.2f", s)
		}
	}
}

func TestFindOTMStrike_SyntheticLadder(t *testing.T) {
	put := FindOTMStrike(nil, 100, 0.055, model.SidePut)
	if put >= 100 {
		t.Errorf("put strike must be below spot, got %.2f", put)
	}
	if put != 95 {
		t.Errorf("expected put strike 95 for 5.5%% distance, got %.2f", put)
	}

	call := FindOTMStrike(nil, 100, 0.055, model.SideCall)
	if call != 105 {
		t.Errorf("expected call strike 105 for 5.5%% distance, got %.2f", call)
	}
}

func TestFindOTMStrike_UsesChain(t *testing.T) {
	chain := &model.OptionChain{
		Symbol: "SPY",
		Puts: []model.OptionQuote{
			{Strike: 580}, {Strike: 590}, {Strike: 600}, {Strike: 610},
		},
	}
	got := FindOTMStrike(chain, 620, 0.05, model.SidePut)
	if got != 590 {
		t.Errorf("expected listed strike 590 near target 589, got %.2f", got)
	}

	// Every listed put is in the money: snap 2% under spot instead.
	got = FindOTMStrike(chain, 575, 0.01, model.SidePut)
	if got >= 575 {
		t.Errorf("corrected strike must stay below spot, got %.2f", got)
	}
}

func TestEstimatePremium(t *testing.T) {
	exp := time.Now().AddDate(0, 0, 45)

	// Deep ITM put carries its intrinsic value.
	premium := EstimatePremium("XYZ", 100, 120, model.SidePut, 0.25, exp)
	if premium <= 20 {
		t.Errorf("ITM put should exceed intrinsic 20, got %.2f", premium)
	}

	// Premium decays as the strike moves further out of the money.
	near := EstimatePremium("XYZ", 100, 98, model.SidePut, 0.25, exp)
	mid := EstimatePremium("XYZ", 100, 93, model.SidePut, 0.25, exp)
	far := EstimatePremium("XYZ", 100, 85, model.SidePut, 0.25, exp)
	if !(near > mid && mid > far) {
		t.Errorf("premium should decay with distance: %.2f, %.2f, %.2f", near, mid, far)
	}

	// Near-dated contracts decay linearly and never drop below a cent.
	tomorrow := time.Now().AddDate(0, 0, 1)
	if p := EstimatePremium("XYZ", 100, 60, model.SidePut, 0.25, tomorrow); p < 0.01 {
		t.Errorf("premium floor is $0.01, got %.4f", p)
	}
}

func TestFallbackVol(t *testing.T) {
	if v := FallbackVol("TECL"); v != 0.45 {
		t.Errorf("expected 0.45 for TECL, got %.2f", v)
	}
	if v := FallbackVol("ZZZZ"); v != 0.25 {
		t.Errorf("expected default 0.25 for unknown ticker, got %.2f", v)
	}
}

func TestEstimatePremiumUsesPerTickerVol(t *testing.T) {
	exp := time.Now().AddDate(0, 0, 45)

	// With no measured volatility the per-ticker table drives the time value,
	// so a high-vol ticker prices richer than a low-vol one at the same strike.
	tecl := EstimatePremium("TECL", 100, 95, model.SidePut, 0, exp)
	spy := EstimatePremium("SPY", 100, 95, model.SidePut, 0, exp)
	if tecl <= spy {
		t.Errorf("TECL (vol 0.45) should price above SPY (vol 0.15): %.4f vs %.4f", tecl, spy)
	}

	// An explicit measured volatility overrides the table.
	measured := EstimatePremium("TECL", 100, 95, model.SidePut, 0.15, exp)
	if measured != spy {
		t.Errorf("measured vol 0.15 should match SPY's table price: %.4f vs %.4f", measured, spy)
	}
}

func TestMidPrice(t *testing.T) {
	if p := MidPrice(model.OptionQuote{Bid: 1.0, Ask: 1.2}); p != 1.1 {
		t.Errorf("expected midpoint 1.10, got %.2f", p)
	}
	if p := MidPrice(model.OptionQuote{LastPrice: 0.8}); p != 0.8 {
		t.Errorf("expected last price 0.80, got %.2f", p)
	}
	if p := MidPrice(model.OptionQuote{}); p != 0.01 {
		t.Errorf("expected cent floor, got %.2f", p)
	}
}

func TestNextExpiration(t *testing.T) {
	// Wednesday + 7 days lands on a Wednesday, roll forward to Friday.
	wed := time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC)
	exp := NextExpiration(wed, 7)
	if exp.Weekday() != time.Friday {
		t.Fatalf("expected a Friday, got %s", exp.Weekday())
	}
	if !exp.Equal(time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2026-09-04, got %s", exp.Format("2006-01-02"))
	}

	// Friday + 7 days is already a Friday.
	fri := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	exp = NextExpiration(fri, 7)
	if !exp.Equal(time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2026-09-04, got %s", exp.Format("2006-01-02"))
	}

	if got := NextExpiration(wed, 7); got.Sub(wed) < 7*24*time.Hour-24*time.Hour {
		t.Errorf("expiration %s closer than the minimum window", got.Format("2006-01-02"))
	}
}

func testInputs(bias float64) (*model.Prediction, *model.IndicatorSet, time.Time) {
	pred := &model.Prediction{
		Symbol:       "SPY",
		CurrentPrice: 100,
		Bias:         bias,
		BullishProb:  0.5 + bias*0.5,
	}
	ind := &model.IndicatorSet{Symbol: "SPY", CurrentPrice: 100, AnnualVol: 0.25}
	exp := time.Now().AddDate(0, 0, 45)
	return pred, ind, exp
}

func assertLegsAscending(t *testing.T, legs []model.Leg) {
	t.Helper()
	for i := 1; i < len(legs); i++ {
		if legs[i].Strike < legs[i-1].Strike {
			t.Fatalf("legs not ascending: %.2f before %.2f", legs[i-1].Strike, legs[i].Strike)
		}
	}
}

func TestSuggest_BullishBias(t *testing.T) {
	s := NewSuggester(0.055, 0.08, 0)
	pred, ind, exp := testInputs(0.05)

	sug, err := s.Suggest(pred, ind, nil, exp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sug.Strategy != model.BullPutSpread {
		t.Fatalf("expected bull put spread for positive bias, got %s", sug.Strategy)
	}
	if len(sug.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(sug.Legs))
	}
	assertLegsAscending(t, sug.Legs)
	if sug.Legs[0].Action != model.ActionBuy || sug.Legs[1].Action != model.ActionSell {
		t.Error("bull put: lower strike should be bought, higher sold")
	}
	if sug.Credit <= 0 {
		t.Errorf("expected positive credit, got %.2f", sug.Credit)
	}
	if sug.MaxLoss <= 0 || sug.MaxLoss >= sug.Legs[1].Strike-sug.Legs[0].Strike {
		t.Errorf("max loss %.2f should be width minus credit", sug.MaxLoss)
	}
	if sug.ProfitTarget != sug.Credit*0.5 {
		t.Errorf("profit target should be half the credit, got %.2f", sug.ProfitTarget)
	}
	if sug.Confidence < 54.9 || sug.Confidence > 55.1 {
		t.Errorf("expected confidence 55 for bias 0.05, got %.1f", sug.Confidence)
	}
	if sug.OptionStratURL == "" {
		t.Error("expected an OptionStrat link")
	}
}

func TestSuggest_BearishBias(t *testing.T) {
	s := NewSuggester(0.055, 0.08, 0)
	pred, ind, exp := testInputs(-0.05)

	sug, err := s.Suggest(pred, ind, nil, exp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sug.Strategy != model.BearCallSpread {
		t.Fatalf("expected bear call spread for negative bias, got %s", sug.Strategy)
	}
	assertLegsAscending(t, sug.Legs)
	if sug.Legs[0].Action != model.ActionSell || sug.Legs[1].Action != model.ActionBuy {
		t.Error("bear call: lower strike should be sold, higher bought")
	}
}

func TestSuggest_NeutralBias(t *testing.T) {
	s := NewSuggester(0.055, 0.08, 0)
	pred, ind, exp := testInputs(0.01)

	sug, err := s.Suggest(pred, ind, nil, exp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sug.Strategy != model.IronCondor {
		t.Fatalf("expected iron condor for flat bias, got %s", sug.Strategy)
	}
	if len(sug.Legs) != 4 {
		t.Fatalf("expected 4 legs, got %d", len(sug.Legs))
	}
	assertLegsAscending(t, sug.Legs)
	wantActions := []model.LegAction{model.ActionBuy, model.ActionSell, model.ActionSell, model.ActionBuy}
	for i, want := range wantActions {
		if sug.Legs[i].Action != want {
			t.Errorf("leg %d: expected %s, got %s", i, want, sug.Legs[i].Action)
		}
	}
}

func TestSuggest_RejectsBelowProfitTarget(t *testing.T) {
	s := NewSuggester(0.055, 0.08, 100)
	pred, ind, exp := testInputs(0.05)

	if _, err := s.Suggest(pred, ind, nil, exp); !errors.Is(err, ErrBelowProfitTarget) {
		t.Fatalf("expected ErrBelowProfitTarget, got %v", err)
	}
}

func TestEvaluate_BullPut(t *testing.T) {
	farExp := time.Now().AddDate(0, 0, 20)
	trade := &model.Trade{
		ID:         "t1",
		Strategy:   model.BullPutSpread,
		Expiration: farExp,
		Legs: []model.Leg{
			{Action: model.ActionBuy, Side: model.SidePut, Strike: 90},
			{Action: model.ActionSell, Side: model.SidePut, Strike: 95},
		},
	}
	now := time.Now()

	tests := []struct {
		price  float64
		dte    time.Time
		action string
	}{
		{110, farExp, "CLOSE"}, // well above short strike
		{84, farExp, "CLOSE"},  // below long strike, max loss territory
		{100, now.AddDate(0, 0, 2), "CLOSE"}, // expiration risk
		{100, farExp, "HOLD"},
	}
	for _, tt := range tests {
		trade.Expiration = tt.dte
		advice := Evaluate(trade, tt.price, now)
		if advice.Action != tt.action {
			t.Errorf("price %.0f dte %s: expected %s, got %s (%s)",
				tt.price, tt.dte.Format("01-02"), tt.action, advice.Action, advice.Reason)
		}
	}
}

func TestEvaluate_IronCondor(t *testing.T) {
	now := time.Now()
	trade := &model.Trade{
		ID:       "t2",
		Strategy: model.IronCondor,
		Legs: []model.Leg{
			{Action: model.ActionBuy, Side: model.SidePut, Strike: 90},
			{Action: model.ActionSell, Side: model.SidePut, Strike: 95},
			{Action: model.ActionSell, Side: model.SideCall, Strike: 105},
			{Action: model.ActionBuy, Side: model.SideCall, Strike: 110},
		},
	}

	trade.Expiration = now.AddDate(0, 0, 20)
	if advice := Evaluate(trade, 100, now); advice.Action != "HOLD" {
		t.Errorf("in zone with time left: expected HOLD, got %s", advice.Action)
	}

	trade.Expiration = now.AddDate(0, 0, 4)
	if advice := Evaluate(trade, 100, now); advice.Action != "CLOSE" {
		t.Errorf("in zone near expiration: expected CLOSE, got %s", advice.Action)
	}

	trade.Expiration = now.AddDate(0, 0, 20)
	if advice := Evaluate(trade, 112, now); advice.Action != "ADJUST" {
		t.Errorf("outside zone: expected ADJUST, got %s", advice.Action)
	}
}

func TestBuildOptionStratURL(t *testing.T) {
	sug := &model.TradeSuggestion{
		Symbol:     "TSLA",
		Strategy:   model.BullPutSpread,
		Expiration: time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC),
		Legs: []model.Leg{
			{Action: model.ActionSell, Side: model.SidePut, Strike: 240},
			{Action: model.ActionBuy, Side: model.SidePut, Strike: 232.5},
		},
	}
	want := "https://optionstrat.com/build/bull-put-spread/TSLA/.TSLA260918P232.5,-.TSLA260918P240"
	if got := BuildOptionStratURL(sug); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
