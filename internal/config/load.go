package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	qerrors "quotelake/internal/errors"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// QUOTELAKE_LOGLEVEL=debug.
const EnvPrefix = "quotelake"

// Load builds the configuration by layering, lowest precedence first:
// built-in defaults, the YAML file at path (skipped when absent), then
// environment variables. A .env file in the working directory is loaded
// into the environment first.
func Load(path string) (*Config, error) {
	// Missing .env is the normal case
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, qerrors.Wrapf(err, "parse config %s", path)
		}
	case os.IsNotExist(err):
		// Defaults + environment only
	default:
		return nil, qerrors.Wrapf(err, "read config %s", path)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, qerrors.Wrap(err, "apply environment overrides")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
