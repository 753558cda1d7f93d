package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tradematch/internal/model"
	"github.com/cleared-dev/tradematch/internal/reconcile"
)

// FileName is the config file at the root of a tradematch repo.
const FileName = "tradematch.yaml"

// Config represents the top-level tradematch.yaml configuration.
type Config struct {
	Account  AccountConfig  `yaml:"account" envPrefix:"ACCOUNT_"`
	Matching MatchingConfig `yaml:"matching" envPrefix:"MATCHING_"`
	Parser   ParserConfig   `yaml:"parser" envPrefix:"PARSER_"`
	Feed     FeedConfig     `yaml:"feed" envPrefix:"FEED_"`
	Accounts AccountsConfig `yaml:"accounts" envPrefix:"ACCOUNTS_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

// AccountConfig identifies the brokerage account being reconciled.
type AccountConfig struct {
	Name   string `yaml:"name" env:"NAME"`
	Broker string `yaml:"broker" env:"BROKER"`
}

// MatchingConfig holds the reconciler tolerances.
type MatchingConfig struct {
	LimitTolerance       decimal.Decimal `yaml:"limit_tolerance" env:"LIMIT_TOLERANCE"`
	LegPricePct          decimal.Decimal `yaml:"leg_price_pct" env:"LEG_PRICE_PCT"`
	LegPriceFloor        decimal.Decimal `yaml:"leg_price_floor" env:"LEG_PRICE_FLOOR"`
	StrikeTolerance      decimal.Decimal `yaml:"strike_tolerance" env:"STRIKE_TOLERANCE"`
	ExpiryWindowDays     int             `yaml:"expiry_window_days" env:"EXPIRY_WINDOW_DAYS"`
	FillWindowDays       int             `yaml:"fill_window_days" env:"FILL_WINDOW_DAYS"`
	StrictPositionEffect bool            `yaml:"strict_position_effect" env:"STRICT_POSITION_EFFECT"`
}

// ParserConfig bounds the history parser's lookahead windows.
type ParserConfig struct {
	LookaheadLines    int `yaml:"lookahead_lines" env:"LOOKAHEAD_LINES"`
	LegLookaheadLines int `yaml:"leg_lookahead_lines" env:"LEG_LOOKAHEAD_LINES"`
}

// FeedConfig describes the transaction feed export.
type FeedConfig struct {
	// Path is a JSONPath selecting the transaction array, e.g. "$.data.items".
	// Empty accepts a bare array or a {"transactions": [...]} envelope.
	Path string `yaml:"path,omitempty" env:"PATH"`
}

// AccountsConfig maps matched legs to chart-of-accounts entries.
type AccountsConfig struct {
	LongCall     int `yaml:"long_call" env:"LONG_CALL"`
	LongPut      int `yaml:"long_put" env:"LONG_PUT"`
	ShortCall    int `yaml:"short_call" env:"SHORT_CALL"`
	ShortPut     int `yaml:"short_put" env:"SHORT_PUT"`
	RealizedGain int `yaml:"realized_gain" env:"REALIZED_GAIN"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level    string `yaml:"level" env:"LEVEL"`
	Encoding string `yaml:"encoding" env:"ENCODING"` // "console" or "json"
}

// AccountChecker reports whether an account ID exists in the chart.
type AccountChecker interface {
	Exists(id int) bool
}

// Load reads a tradematch.yaml file from disk. Fields missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(name, broker string) *Config {
	opts := reconcile.DefaultOptions()
	return &Config{
		Account: AccountConfig{
			Name:   name,
			Broker: broker,
		},
		Matching: MatchingConfig{
			LimitTolerance:   opts.LimitTolerance,
			LegPricePct:      opts.LegPricePct,
			LegPriceFloor:    opts.LegPriceFloor,
			StrikeTolerance:  opts.StrikeTolerance,
			ExpiryWindowDays: opts.ExpiryWindowDays,
			FillWindowDays:   opts.FillWindowDays,
		},
		Parser: ParserConfig{
			LookaheadLines:    30,
			LegLookaheadLines: 15,
		},
		Accounts: AccountsConfig{
			LongCall:     opts.Accounts.LongCall,
			LongPut:      opts.Accounts.LongPut,
			ShortCall:    opts.Accounts.ShortCall,
			ShortPut:     opts.Accounts.ShortPut,
			RealizedGain: opts.Accounts.RealizedGain,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Codes returns the account mapping as the reconciler expects it.
func (c *Config) Codes() model.AccountCodes {
	return model.AccountCodes{
		LongCall:     c.Accounts.LongCall,
		LongPut:      c.Accounts.LongPut,
		ShortCall:    c.Accounts.ShortCall,
		ShortPut:     c.Accounts.ShortPut,
		RealizedGain: c.Accounts.RealizedGain,
	}
}

// ToOptions builds reconciler options from the config. The start trade
// number and logger are left for the caller.
func (c *Config) ToOptions() reconcile.Options {
	opts := reconcile.DefaultOptions()
	opts.LimitTolerance = c.Matching.LimitTolerance
	opts.LegPricePct = c.Matching.LegPricePct
	opts.LegPriceFloor = c.Matching.LegPriceFloor
	opts.StrikeTolerance = c.Matching.StrikeTolerance
	opts.ExpiryWindowDays = c.Matching.ExpiryWindowDays
	opts.FillWindowDays = c.Matching.FillWindowDays
	opts.StrictPositionEffect = c.Matching.StrictPositionEffect
	opts.Accounts = c.Codes()
	return opts
}

// Validate checks the config for values the reconciler cannot work with.
// When accounts is non-nil every configured code must exist in it.
func (c *Config) Validate(accounts AccountChecker) error {
	var errs []error
	for _, d := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"matching.limit_tolerance", c.Matching.LimitTolerance},
		{"matching.leg_price_pct", c.Matching.LegPricePct},
		{"matching.leg_price_floor", c.Matching.LegPriceFloor},
	} {
		if d.v.IsNegative() {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", d.name, d.v))
		}
	}
	if !c.Matching.StrikeTolerance.IsPositive() {
		errs = append(errs, fmt.Errorf("matching.strike_tolerance must be positive, got %s", c.Matching.StrikeTolerance))
	}
	if c.Matching.ExpiryWindowDays < 0 {
		errs = append(errs, fmt.Errorf("matching.expiry_window_days must not be negative, got %d", c.Matching.ExpiryWindowDays))
	}
	if c.Matching.FillWindowDays < 0 {
		errs = append(errs, fmt.Errorf("matching.fill_window_days must not be negative, got %d", c.Matching.FillWindowDays))
	}
	if c.Parser.LookaheadLines < 1 {
		errs = append(errs, fmt.Errorf("parser.lookahead_lines must be at least 1, got %d", c.Parser.LookaheadLines))
	}
	if c.Parser.LegLookaheadLines < 1 {
		errs = append(errs, fmt.Errorf("parser.leg_lookahead_lines must be at least 1, got %d", c.Parser.LegLookaheadLines))
	}

	seen := make(map[int]bool)
	for _, code := range c.Codes().All() {
		if seen[code] {
			errs = append(errs, fmt.Errorf("accounts: code %d assigned twice", code))
		}
		seen[code] = true
		if accounts != nil && !accounts.Exists(code) {
			errs = append(errs, fmt.Errorf("accounts: code %d not in chart of accounts", code))
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.encoding must be console or json, got %q", c.Log.Encoding))
	}
	return errors.Join(errs...)
}
