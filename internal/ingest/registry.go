package ingest

import (
	"sort"
	"sync"

	"quotelake/internal/config"
	qerrors "quotelake/internal/errors"
)

// Constructor builds an ingestor from the resolved configuration.
type Constructor func(cfg *config.Config) (Ingestor, error)

var (
	registry     = map[string]Constructor{}
	loadBuiltins sync.Once
)

// Register adds an ingestor constructor under a source key.
func Register(key string, c Constructor) {
	registry[key] = c
}

// builtins registers the built-in sources on first use, so optional sources
// never cost anything until requested.
func builtins() {
	Register("yfinance", newYFinance)
	Register("alpha_vantage", newAlphaVantage)
	Register("stooq", newStooq)
}

// New creates an ingestor instance by source key.
func New(key string, cfg *config.Config) (Ingestor, error) {
	loadBuiltins.Do(builtins)

	c, ok := registry[key]
	if !ok {
		return nil, qerrors.NewUnknownSource(key, Available())
	}
	return c(cfg)
}

// Available returns the registered source keys, sorted.
func Available() []string {
	loadBuiltins.Do(builtins)

	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
