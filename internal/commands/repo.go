package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cleared-dev/tradematch/internal/accounts"
	"github.com/cleared-dev/tradematch/internal/config"
	"github.com/cleared-dev/tradematch/internal/importer"
	"github.com/cleared-dev/tradematch/internal/logging"
)

// repo is an initialized tradematch directory with its config loaded.
type repo struct {
	root   string
	cfg    *config.Config
	chart  *accounts.Service
	logger *zap.Logger
}

// openRepo loads and validates tradematch.yaml and the chart of accounts.
func openRepo(dir string) (*repo, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, filepath.Join(root, config.DotEnvFile)); err != nil {
		return nil, err
	}
	chart, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(chart); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}
	if err := chart.CheckCodes(cfg.Codes()); err != nil {
		return nil, fmt.Errorf("account mapping: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return &repo{root: root, cfg: cfg, chart: chart, logger: logger}, nil
}

// parserConfig loads the parser and log settings for a command that can run
// outside a repo. Without a tradematch.yaml the defaults apply; environment
// overrides still do.
func parserConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default("", ""), nil
	}
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, filepath.Join(dir, config.DotEnvFile)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// historyParser picks the built-in parser for the configured broker.
func historyParser(cfg *config.Config, logger *zap.Logger) (importer.Parser, error) {
	reg := importer.DefaultRegistry(importer.Settings{
		Lookahead:    cfg.Parser.LookaheadLines,
		LegLookahead: cfg.Parser.LegLookaheadLines,
		Logger:       logger,
	})
	broker := cfg.Account.Broker
	if broker == "" {
		broker = importer.DefaultFormat
	}
	p := reg.Get(broker)
	if p == nil {
		return nil, fmt.Errorf("no history parser for broker %q", broker)
	}
	return p, nil
}
