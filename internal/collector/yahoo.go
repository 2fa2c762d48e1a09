package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"SpreadSentinel/internal/model"
)

// YahooFetcher implements Fetcher using Yahoo Finance public APIs.
type YahooFetcher struct {
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"VIX": "^VIX",
			"SPX": "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (f *YahooFetcher) get(u string) ([]byte, error) {
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (f *YahooFetcher) fetchChart(symbol, interval, rng string) ([]model.OHLCV, error) {
	u := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=%s&range=%s",
		url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	body, err := f.get(u)
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	// Yahoo occasionally returns ragged arrays; index only what every field has.
	n := len(quote.Close)
	for _, arr := range [][]interface{}{quote.Open, quote.High, quote.Low, quote.Volume} {
		if len(arr) < n {
			n = len(arr)
		}
	}

	for i, ts := range result.Timestamp {
		if i >= n {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(quote.Volume[i]),
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("chart %s: %w", symbol, ErrNoData)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *YahooFetcher) FetchDailyBars(symbol string, days int) ([]model.OHLCV, error) {
	rng := "2y"
	if days <= 30 {
		rng = "1mo"
	} else if days <= 90 {
		rng = "3mo"
	} else if days <= 180 {
		rng = "6mo"
	} else if days <= 365 {
		rng = "1y"
	}
	bars, err := f.fetchChart(symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func (f *YahooFetcher) FetchWeeklyBars(symbol string, weeks int) ([]model.OHLCV, error) {
	rng := "2y"
	if weeks <= 26 {
		rng = "6mo"
	} else if weeks <= 52 {
		rng = "1y"
	}
	bars, err := f.fetchChart(symbol, "1wk", rng)
	if err != nil {
		return nil, err
	}
	if len(bars) > weeks {
		bars = bars[len(bars)-weeks:]
	}
	return bars, nil
}

func (f *YahooFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	bars, err := f.fetchChart(symbol, "1d", "1d")
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("price %s: %w", symbol, ErrNoData)
	}
	return bars[len(bars)-1].Close, nil
}

// yahooOptions is the response structure from the Yahoo Finance options API.
type yahooOptions struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64             `json:"expirationDate"`
				Calls          []yahooOptionItem `json:"calls"`
				Puts           []yahooOptionItem `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

type yahooOptionItem struct {
	Strike            float64 `json:"strike"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	LastPrice         float64 `json:"lastPrice"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

// FetchOptionChain retrieves the chain for the listed expiration closest to
// the target date. A first unparameterized call discovers the expiration
// list; a second call pins the chosen date.
func (f *YahooFetcher) FetchOptionChain(symbol string, target time.Time) (*model.OptionChain, error) {
	base := fmt.Sprintf("https://query1.finance.yahoo.com/v7/finance/options/%s",
		url.PathEscape(f.yahooSymbol(symbol)))

	body, err := f.get(base)
	if err != nil {
		return nil, err
	}
	var first yahooOptions
	if err := json.Unmarshal(body, &first); err != nil {
		return nil, fmt.Errorf("yahoo options decode: %w", err)
	}
	if len(first.OptionChain.Result) == 0 || len(first.OptionChain.Result[0].ExpirationDates) == 0 {
		return nil, fmt.Errorf("options %s: %w", symbol, ErrNoData)
	}

	// Closest listed expiration to the target
	best := first.OptionChain.Result[0].ExpirationDates[0]
	bestDiff := math.Abs(float64(best - target.Unix()))
	for _, d := range first.OptionChain.Result[0].ExpirationDates {
		if diff := math.Abs(float64(d - target.Unix())); diff < bestDiff {
			best, bestDiff = d, diff
		}
	}

	body, err = f.get(fmt.Sprintf("%s?date=%d", base, best))
	if err != nil {
		return nil, err
	}
	var resp yahooOptions
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("yahoo options decode: %w", err)
	}
	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return nil, fmt.Errorf("options %s: %w", symbol, ErrNoData)
	}

	opts := resp.OptionChain.Result[0].Options[0]
	chain := &model.OptionChain{
		Symbol:     symbol,
		Expiration: time.Unix(opts.ExpirationDate, 0).UTC(),
		Calls:      toQuotes(opts.Calls),
		Puts:       toQuotes(opts.Puts),
	}
	return chain, nil
}

func toQuotes(items []yahooOptionItem) []model.OptionQuote {
	quotes := make([]model.OptionQuote, len(items))
	for i, it := range items {
		quotes[i] = model.OptionQuote{
			Strike:     it.Strike,
			Bid:        it.Bid,
			Ask:        it.Ask,
			LastPrice:  it.LastPrice,
			ImpliedVol: it.ImpliedVolatility,
		}
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Strike < quotes[j].Strike })
	return quotes
}

// FetchQuoteInfo retrieves market cap and short name from the quote API.
func (f *YahooFetcher) FetchQuoteInfo(symbol string) (*model.QuoteInfo, error) {
	u := fmt.Sprintf("https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s",
		url.QueryEscape(f.yahooSymbol(symbol)))

	body, err := f.get(u)
	if err != nil {
		return nil, err
	}

	var resp struct {
		QuoteResponse struct {
			Result []struct {
				ShortName string  `json:"shortName"`
				MarketCap float64 `json:"marketCap"`
			} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("yahoo quote decode: %w", err)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("quote %s: %w", symbol, ErrNoData)
	}

	r := resp.QuoteResponse.Result[0]
	return &model.QuoteInfo{
		Symbol:    symbol,
		ShortName: r.ShortName,
		MarketCap: r.MarketCap,
	}, nil
}
