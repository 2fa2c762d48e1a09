package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config must fall back to defaults: %v", err)
	}
	if cfg.DataSource.Provider != "yahoo" {
		t.Errorf("expected default provider yahoo, got %q", cfg.DataSource.Provider)
	}
	if cfg.DataSource.LookbackDays != 63 {
		t.Errorf("expected lookback 63, got %d", cfg.DataSource.LookbackDays)
	}
	if cfg.Forecast.BiasMultiplier != 0.01 || cfg.Forecast.RangeMethod != "volatility" {
		t.Errorf("unexpected forecast defaults: %+v", cfg.Forecast)
	}
	if cfg.Options.ShortOTMPct >= cfg.Options.LongOTMPct {
		t.Errorf("short strike distance must default below long: %+v", cfg.Options)
	}
	if len(cfg.Watchlist) == 0 || len(cfg.Screener.Tickers) == 0 {
		t.Error("expected built-in ticker universes")
	}
	if cfg.Web.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr :8080, got %q", cfg.Web.ListenAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
data_source:
  provider: yahoo
  lookback_days: 90
forecast:
  bias_multiplier: 0.02
watchlist: [SPY, QQQ]
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATA_PROVIDER", "alpaca")
	t.Setenv("ALPACA_API_KEY", "k")
	t.Setenv("ALPACA_API_SECRET", "s")
	t.Setenv("LISTEN_ADDR", ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.Provider != "alpaca" {
		t.Errorf("env must override file, got provider %q", cfg.DataSource.Provider)
	}
	if cfg.DataSource.LookbackDays != 90 {
		t.Errorf("expected file value 90, got %d", cfg.DataSource.LookbackDays)
	}
	if cfg.Forecast.BiasMultiplier != 0.02 {
		t.Errorf("expected multiplier 0.02, got %f", cfg.Forecast.BiasMultiplier)
	}
	if len(cfg.Watchlist) != 2 {
		t.Errorf("expected explicit 2-ticker watchlist, got %v", cfg.Watchlist)
	}
	if cfg.Web.ListenAddr != ":9090" {
		t.Errorf("expected env listen addr, got %q", cfg.Web.ListenAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cfg.DataSource.Provider = "bloomberg"
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of unknown provider")
	}
	cfg.DataSource.Provider = "alpaca"
	cfg.DataSource.AlpacaKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of alpaca without credentials")
	}

	cfg, _ = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.Forecast.RangeMethod = "magic"
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of unknown range method")
	}

	cfg, _ = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	cfg.Options.ShortOTMPct = 0.10
	cfg.Options.LongOTMPct = 0.05
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection when short strike sits beyond long strike")
	}
}
