// Package app assembles a ready-to-use solver from configuration.
package app

// #region imports
import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/chain-of-draft/internal/analytics"
	"github.com/danielpatrickdp/chain-of-draft/internal/codec"
	"github.com/danielpatrickdp/chain-of-draft/internal/complexity"
	"github.com/danielpatrickdp/chain-of-draft/internal/config"
	"github.com/danielpatrickdp/chain-of-draft/internal/examples"
	"github.com/danielpatrickdp/chain-of-draft/internal/gemini"
	"github.com/danielpatrickdp/chain-of-draft/internal/llm"
	"github.com/danielpatrickdp/chain-of-draft/internal/logging"
	"github.com/danielpatrickdp/chain-of-draft/internal/orchestrator"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #endregion

// #region app

// App owns the stores and backend behind an Orchestrator.
type App struct {
	Orchestrator *orchestrator.Orchestrator
	Selector     *selector.Selector
	Analytics    *analytics.Store
	Examples     *examples.Store
	Logger       *zap.Logger

	closers []func() error
}

// Build wires the backend, stores, selector and orchestrator described by
// cfg. The caller must Close the returned App.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		return nil, err
	}
	a := &App{Logger: logger}

	client, err := a.openBackend(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Analytics, err = analytics.Open(cfg.AnalyticsDB, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("analytics store: %w", err)
	}
	a.closers = append(a.closers, a.Analytics.Close)

	a.Examples, err = examples.Open(ctx, cfg.ExamplesDB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("examples store: %w", err)
	}
	a.closers = append(a.closers, a.Examples.Close)

	est := complexity.NewEstimator(complexity.DefaultTables())
	a.Selector = selector.NewSelector(nil, est, a.Analytics, logger)
	if cfg.PolicyFile != "" {
		updates, err := config.LoadPolicyFile(cfg.PolicyFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		for domain, u := range updates {
			a.Selector.UpdatePolicy(domain, u)
		}
	}

	settings := cfg.Settings
	a.Orchestrator, err = orchestrator.New(orchestrator.Deps{
		LLM:       client,
		Estimator: est,
		Selector:  a.Selector,
		Examples:  a.Examples,
		Recorder:  a.Analytics,
		Stats:     a.Analytics,
		Settings:  &settings,
		Logger:    logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("solver ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.String("analytics_db", cfg.AnalyticsDB),
		zap.String("examples_db", cfg.ExamplesDB))
	return a, nil
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini backend: %w", err)
		}
		return c, nil
	default:
		c, err := codec.NewCodecClient(cfg.CodecAddr, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("codec backend at %s: %w", cfg.CodecAddr, err)
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	}
}

// Close releases everything Build opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}

// #endregion
