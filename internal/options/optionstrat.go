package options

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"SpreadSentinel/internal/model"
)

const optionStratBase = "https://optionstrat.com/build"

var strategySlugs = map[model.Strategy]string{
	model.BullPutSpread:  "bull-put-spread",
	model.BearCallSpread: "bear-call-spread",
	model.IronCondor:     "iron-condor",
}

// BuildOptionStratURL renders a suggestion as an OptionStrat builder link.
// Each leg becomes ".TICKER{YYMMDD}{P|C}{strike}" with a minus prefix on sold
// legs; legs are joined ascending by strike.
func BuildOptionStratURL(sug *model.TradeSuggestion) string {
	slug, ok := strategySlugs[sug.Strategy]
	if !ok {
		return ""
	}

	legs := make([]model.Leg, len(sug.Legs))
	copy(legs, sug.Legs)
	sort.Slice(legs, func(i, j int) bool { return legs[i].Strike < legs[j].Strike })

	exp := sug.Expiration.Format("060102")
	symbols := make([]string, len(legs))
	for i, l := range legs {
		side := "P"
		if l.Side == model.SideCall {
			side = "C"
		}
		prefix := "."
		if l.Action == model.ActionSell {
			prefix = "-."
		}
		symbols[i] = fmt.Sprintf("%s%s%s%s%s", prefix, sug.Symbol, exp, side, formatStrike(l.Strike))
	}

	return fmt.Sprintf("%s/%s/%s/%s", optionStratBase, slug, sug.Symbol, strings.Join(symbols, ","))
}

// formatStrike drops trailing zeros: 625 -> "625", 172.50 -> "172.5".
func formatStrike(strike float64) string {
	return strconv.FormatFloat(strike, 'f', -1, 64)
}
