// Package config loads runtime configuration from the environment, an
// optional .env file and an optional YAML policy file.
package config

// #region imports
import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/chain-of-draft/internal/orchestrator"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #endregion

// #region types

// Backend providers.
const (
	ProviderCodec  = "codec"
	ProviderGemini = "gemini"
)

// Config is everything needed to assemble a solver.
type Config struct {
	Provider     string
	Model        string
	CodecAddr    string
	GeminiAPIKey string
	AnalyticsDB  string
	ExamplesDB   string
	PolicyFile   string
	LogLevel     string
	Settings     orchestrator.Settings
}

// #endregion

// #region load

// Load reads a .env file if present, then the process environment.
// Unparseable numeric and boolean values keep their defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider:     strings.ToLower(envOr("LLM_PROVIDER", ProviderCodec)),
		Model:        envOr("LLM_MODEL", ""),
		CodecAddr:    envOr("CODEC_ADDR", "localhost:50051"),
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		AnalyticsDB:  strings.TrimPrefix(envOr("COD_DB_URL", "cod_analytics.db"), "sqlite:///"),
		ExamplesDB:   strings.TrimPrefix(envOr("COD_EXAMPLES_DB", "cod_examples.db"), "sqlite:///"),
		PolicyFile:   envOr("COD_POLICY_FILE", ""),
		LogLevel:     envOr("COD_LOG_LEVEL", "info"),
		Settings:     orchestrator.DefaultSettings(),
	}

	s := &cfg.Settings
	s.Model = cfg.Model
	if v := os.Getenv("COD_MAX_WORDS_PER_STEP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.MaxWordsPerStep = n
		}
	}
	s.EnforceFormat = envBool("COD_ENFORCE_FORMAT", s.EnforceFormat)
	s.AdaptiveWordLimit = envBool("COD_ADAPTIVE_WORD_LIMIT", s.AdaptiveWordLimit)
	s.TrackAnalytics = envBool("COD_TRACK_ANALYTICS", s.TrackAnalytics)
	if v := os.Getenv("COD_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.MaxTokens = n
		}
	}
	if v := os.Getenv("COD_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			s.Temperature = f
		}
	}
	return cfg, nil
}

// Validate reports configuration that cannot produce a working solver.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderCodec:
		if c.CodecAddr == "" {
			return errors.New("config: CODEC_ADDR is required for the codec provider")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("config: GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q", c.Provider)
	}
	return nil
}

// #endregion

// #region policy-file

type policyFile struct {
	Domains map[string]selector.PolicyUpdate `yaml:"domains"`
}

// LoadPolicyFile reads per-domain threshold overrides. Entries may set one
// or both thresholds.
func LoadPolicyFile(path string) (map[string]selector.PolicyUpdate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	return pf.Domains, nil
}

// #endregion

// #region helpers

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// #endregion
