package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/chain-of-draft/internal/orchestrator"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LLM_PROVIDER", "LLM_MODEL", "CODEC_ADDR", "GEMINI_API_KEY", "COD_DB_URL",
		"COD_EXAMPLES_DB", "COD_POLICY_FILE", "COD_LOG_LEVEL", "COD_MAX_WORDS_PER_STEP",
		"COD_ENFORCE_FORMAT", "COD_ADAPTIVE_WORD_LIMIT", "COD_TRACK_ANALYTICS",
		"COD_MAX_TOKENS", "COD_TEMPERATURE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir()) // no .env

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderCodec, cfg.Provider)
	assert.Equal(t, "localhost:50051", cfg.CodecAddr)
	assert.Equal(t, "cod_analytics.db", cfg.AnalyticsDB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, orchestrator.DefaultSettings(), cfg.Settings)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_MODEL", "gemini-2.5-flash")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("COD_DB_URL", "sqlite:///data/cod.db")
	t.Setenv("COD_EXAMPLES_DB", "sqlite:///data/examples.db")
	t.Setenv("COD_MAX_WORDS_PER_STEP", "5")
	t.Setenv("COD_ENFORCE_FORMAT", "false")
	t.Setenv("COD_TRACK_ANALYTICS", "0")
	t.Setenv("COD_MAX_TOKENS", "not-a-number")
	t.Setenv("COD_TEMPERATURE", "0.2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "data/cod.db", cfg.AnalyticsDB)
	assert.Equal(t, "data/examples.db", cfg.ExamplesDB)
	assert.Equal(t, "gemini-2.5-flash", cfg.Settings.Model)
	assert.Equal(t, 5, cfg.Settings.MaxWordsPerStep)
	assert.False(t, cfg.Settings.EnforceFormat)
	assert.True(t, cfg.Settings.AdaptiveWordLimit)
	assert.False(t, cfg.Settings.TrackAnalytics)
	assert.Equal(t, 500, cfg.Settings.MaxTokens)
	assert.Equal(t, 0.2, cfg.Settings.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("COD_LOG_LEVEL")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COD_LOG_LEVEL=debug\n"), 0o644))
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("COD_LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"codec", Config{Provider: ProviderCodec, CodecAddr: "x:1"}, false},
		{"codec-no-addr", Config{Provider: ProviderCodec}, true},
		{"gemini-no-key", Config{Provider: ProviderGemini}, true},
		{"unknown", Config{Provider: "openai"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	body := "domains:\n  math:\n    complexity_threshold: 9\n  geography:\n    accuracy_threshold: 0.6\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	got, err := LoadPolicyFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got["math"].ComplexityThreshold)
	assert.Equal(t, 9, *got["math"].ComplexityThreshold)
	assert.Nil(t, got["math"].AccuracyThreshold)
	require.NotNil(t, got["geography"].AccuracyThreshold)
	assert.Equal(t, 0.6, *got["geography"].AccuracyThreshold)
}

func TestLoadPolicyFile_Errors(t *testing.T) {
	_, err := LoadPolicyFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domains: [1, 2"), 0o644))
	_, err = LoadPolicyFile(path)
	assert.Error(t, err)
}
