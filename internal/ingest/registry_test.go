package ingest

import (
	"testing"

	"quotelake/internal/config"
	qerrors "quotelake/internal/errors"
)

func TestAvailable(t *testing.T) {
	got := Available()

	present := make(map[string]bool, len(got))
	for _, key := range got {
		present[key] = true
	}
	for _, want := range []string{"alpha_vantage", "stooq", "yfinance"} {
		if !present[want] {
			t.Errorf("builtin %s missing from %v", want, got)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("available sources not sorted: %v", got)
		}
	}
}

func TestNew_Builtins(t *testing.T) {
	cfg := config.Default()
	for _, key := range []string{"alpha_vantage", "stooq", "yfinance"} {
		ing, err := New(key, cfg)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", key, err)
			continue
		}
		if ing.SourceName() != key {
			t.Errorf("expected source name %s, got %s", key, ing.SourceName())
		}
	}
}

func TestNew_UnknownSource(t *testing.T) {
	_, err := New("bloomberg", config.Default())
	if err == nil {
		t.Fatal("expected error")
	}
	if !qerrors.Is(err, qerrors.ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}
}

func TestNew_RateLimitsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.AlphaVantage.CallsPerMinute = 7
	cfg.Sources.AlphaVantage.CallsPerDay = 99

	ing, err := New("alpha_vantage", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rl := ing.RateLimit()
	if rl.CallsPerMinute != 7 || rl.CallsPerDay != 99 {
		t.Errorf("unexpected rate limit: %+v", rl)
	}
}

func TestRegister_CustomSource(t *testing.T) {
	Register("fake", func(cfg *config.Config) (Ingestor, error) {
		return nil, qerrors.New("constructor ran")
	})

	_, err := New("fake", config.Default())
	if err == nil || err.Error() != "constructor ran" {
		t.Errorf("custom constructor not dispatched: %v", err)
	}
}
