package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultWatchlist is used when the config lists no tickers.
var DefaultWatchlist = []string{
	"SPY", "QQQ", "IWM", "XLE", "SMH", "TECL",
	"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "META",
	"TSLA", "AMD", "INTC", "CRM", "NFLX",
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider     string `yaml:"provider"` // "yahoo" or "alpaca"
		AlpacaKey    string `yaml:"alpaca_key"`
		AlpacaSecret string `yaml:"alpaca_secret"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Forecast struct {
		BiasMultiplier float64 `yaml:"bias_multiplier"`
		RangeMethod    string  `yaml:"range_method"` // "volatility" or "atr"
	} `yaml:"forecast"`
	Options struct {
		MinProfitTarget float64 `yaml:"min_profit_target"` // $/share
		ShortOTMPct     float64 `yaml:"short_otm_pct"`
		LongOTMPct      float64 `yaml:"long_otm_pct"`
		ExpiryMinDays   int     `yaml:"expiry_min_days"`
	} `yaml:"options"`
	Screener struct {
		Tickers      []string `yaml:"tickers"`
		MinRSScore   float64  `yaml:"min_rs_score"`
		WeeklyTarget float64  `yaml:"weekly_target"` // pct
		MaxResults   int      `yaml:"max_results"`
		MinMarketCap float64  `yaml:"min_market_cap"`
	} `yaml:"screener"`
	Watchlist []string `yaml:"watchlist"`
	Schedule  struct {
		WatchlistCron string `yaml:"watchlist_cron"`
		ScreeningCron string `yaml:"screening_cron"`
		HealthCron    string `yaml:"health_cron"`
	} `yaml:"schedule"`
	Ledger struct {
		TradesFile      string `yaml:"trades_file"`
		PredictionsFile string `yaml:"predictions_file"`
	} `yaml:"ledger"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Web struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"web"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.DataSource.AlpacaKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.DataSource.AlpacaSecret = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Web.ListenAddr = v
	}
	if v := os.Getenv("BIAS_MULTIPLIER"); v != "" {
		var mult float64
		if _, err := fmt.Sscanf(v, "%f", &mult); err == nil {
			cfg.Forecast.BiasMultiplier = mult
		}
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = 63
	}
	if cfg.Forecast.BiasMultiplier == 0 {
		cfg.Forecast.BiasMultiplier = 0.01
	}
	if cfg.Forecast.RangeMethod == "" {
		cfg.Forecast.RangeMethod = "volatility"
	}
	if cfg.Options.MinProfitTarget == 0 {
		cfg.Options.MinProfitTarget = 1.00
	}
	if cfg.Options.ShortOTMPct == 0 {
		cfg.Options.ShortOTMPct = 0.055
	}
	if cfg.Options.LongOTMPct == 0 {
		cfg.Options.LongOTMPct = 0.08
	}
	if cfg.Options.ExpiryMinDays == 0 {
		cfg.Options.ExpiryMinDays = 7
	}
	if len(cfg.Screener.Tickers) == 0 {
		cfg.Screener.Tickers = DefaultWatchlist
	}
	if cfg.Screener.MinRSScore == 0 {
		cfg.Screener.MinRSScore = 50
	}
	if cfg.Screener.WeeklyTarget == 0 {
		cfg.Screener.WeeklyTarget = 1.5
	}
	if cfg.Screener.MaxResults == 0 {
		cfg.Screener.MaxResults = 25
	}
	if cfg.Screener.MinMarketCap == 0 {
		cfg.Screener.MinMarketCap = 5e9
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = DefaultWatchlist
	}
	if cfg.Schedule.WatchlistCron == "" {
		cfg.Schedule.WatchlistCron = "0 30 6 * * 1-5" // before market open
	}
	if cfg.Schedule.ScreeningCron == "" {
		cfg.Schedule.ScreeningCron = "0 0 17 * * 5" // Friday after close
	}
	if cfg.Schedule.HealthCron == "" {
		cfg.Schedule.HealthCron = "0 0 16 * * 1-5"
	}
	if cfg.Ledger.TradesFile == "" {
		cfg.Ledger.TradesFile = "data/trades.json"
	}
	if cfg.Ledger.PredictionsFile == "" {
		cfg.Ledger.PredictionsFile = "data/predictions.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/spread_sentinel.db"
	}
	if cfg.Web.ListenAddr == "" {
		cfg.Web.ListenAddr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "alpaca":
		if c.DataSource.AlpacaKey == "" || c.DataSource.AlpacaSecret == "" {
			return fmt.Errorf("data_source: alpaca provider requires alpaca_key and alpaca_secret")
		}
	default:
		return fmt.Errorf("data_source.provider must be \"yahoo\" or \"alpaca\", got %q", c.DataSource.Provider)
	}
	switch c.Forecast.RangeMethod {
	case "volatility", "atr":
	default:
		return fmt.Errorf("forecast.range_method must be \"volatility\" or \"atr\", got %q", c.Forecast.RangeMethod)
	}
	if c.Forecast.BiasMultiplier < 0 {
		return fmt.Errorf("forecast.bias_multiplier must not be negative")
	}
	if c.Options.ShortOTMPct >= c.Options.LongOTMPct {
		return fmt.Errorf("options.short_otm_pct must be less than long_otm_pct")
	}
	if c.Options.MinProfitTarget < 0 {
		return fmt.Errorf("options.min_profit_target must not be negative")
	}
	return nil
}
