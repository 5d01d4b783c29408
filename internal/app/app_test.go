package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/chain-of-draft/internal/config"
	"github.com/danielpatrickdp/chain-of-draft/internal/orchestrator"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

func testConfig() *config.Config {
	return &config.Config{
		Provider:    config.ProviderCodec,
		CodecAddr:   "localhost:50051",
		AnalyticsDB: ":memory:",
		ExamplesDB:  ":memory:",
		LogLevel:    "error",
		Settings:    orchestrator.DefaultSettings(),
	}
}

func TestBuild_Codec(t *testing.T) {
	a, err := Build(context.Background(), testConfig())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Orchestrator)
	counts, err := a.Examples.CountByDomain(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts, 6)

	perf, err := a.Orchestrator.PerformanceStats(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, perf)
}

func TestBuild_AppliesPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domains:\n  math:\n    complexity_threshold: 9\n"), 0o644))
	cfg := testConfig()
	cfg.PolicyFile = path

	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, selector.DomainPolicy{ComplexityThreshold: 9, AccuracyThreshold: 0.85}, a.Selector.Policy("math"))
}

func TestBuild_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = "gemini"

	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.LogLevel = "loud"
	_, err = Build(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.PolicyFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = Build(context.Background(), cfg)
	assert.Error(t, err)
}
