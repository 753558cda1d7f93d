package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces environment overrides, e.g. TRADEMATCH_LOG_LEVEL or
// TRADEMATCH_MATCHING_LIMIT_TOLERANCE.
const EnvPrefix = "TRADEMATCH_"

// DotEnvFile holds local overrides at the repo root. It is git-ignored.
const DotEnvFile = ".env"

// ApplyEnv overrides cfg with TRADEMATCH_* variables. Values from the dotenv
// file at dotenvPath apply unless the process environment sets the same
// name. A missing dotenv file is ignored.
func ApplyEnv(cfg *Config, dotenvPath string) error {
	return applyEnv(cfg, dotenvPath, os.Environ())
}

func applyEnv(cfg *Config, dotenvPath string, environ []string) error {
	vars := make(map[string]string)
	if dotenvPath != "" {
		file, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", dotenvPath, err)
		}
		maps.Copy(vars, file)
	}
	maps.Copy(vars, env.ToMap(environ))

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: vars}); err != nil {
		return fmt.Errorf("applying environment: %w", err)
	}
	return nil
}
