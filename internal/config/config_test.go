package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Grammar.Language != "en-US" {
		t.Errorf("expected en-US, got %q", cfg.Grammar.Language)
	}
	if cfg.Grammar.TimeoutSec != 5 {
		t.Errorf("expected grammar timeout 5, got %d", cfg.Grammar.TimeoutSec)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected openai provider, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.TimeoutSec != 10 {
		t.Errorf("expected embedding timeout 10, got %d", cfg.Embedding.TimeoutSec)
	}
	if cfg.Voice.SampleIntervalMs != 100 {
		t.Errorf("expected 100ms sample interval, got %d", cfg.Voice.SampleIntervalMs)
	}
	if cfg.Speech.WindowSec != 3 {
		t.Errorf("expected 3s window, got %d", cfg.Speech.WindowSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 0 {
		t.Errorf("write timeout must stay 0 for streaming, got %d", cfg.HTTP.WriteTimeoutSec)
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "tfjs"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	expected := `embedding.provider must be "openai" or "gemini", got "tfjs"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestValidate_NonEnglish(t *testing.T) {
	cfg := validConfig()
	cfg.Grammar.Language = "de-DE"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-English grammar language")
	}
}

func TestValidate_BudgetAction(t *testing.T) {
	cfg := validConfig()
	if cfg.Embedding.Budget.Action != "warn" {
		t.Errorf("expected default budget action warn, got %q", cfg.Embedding.Budget.Action)
	}

	cfg.Embedding.Budget.Action = "block"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown budget action")
	}
	if !strings.Contains(err.Error(), "embedding.budget.action") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_NegativeBudget(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Budget.DailyTokens = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative daily budget")
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("PREPSCORE_TEST_KEY", "sk-test")

	data := []byte(`
http:
  port: 9090
embedding:
  provider: gemini
  api_key: ${PREPSCORE_TEST_KEY}
  model: ${PREPSCORE_TEST_MODEL:-text-embedding-004}
  budget:
    daily_tokens: 50000
    action: reject
cache:
  addrs: ["localhost:6379"]
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("expected expanded api key, got %q", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.Model != "text-embedding-004" {
		t.Errorf("expected default model, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Budget.DailyTokens != 50000 || cfg.Embedding.Budget.Action != "reject" {
		t.Errorf("unexpected budget %+v", cfg.Embedding.Budget)
	}
	if len(cfg.Cache.Addrs) != 1 {
		t.Errorf("expected 1 cache addr, got %d", len(cfg.Cache.Addrs))
	}
	if cfg.Cache.TTLHours != 168 {
		t.Errorf("expected default ttl 168h, got %d", cfg.Cache.TTLHours)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http:\n  port: 0\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestExpandEnvVars_Unset(t *testing.T) {
	got := string(expandEnvVars([]byte("key: ${PREPSCORE_SURELY_UNSET}")))
	if got != "key: " {
		t.Errorf("unexpected expansion %q", got)
	}
}
