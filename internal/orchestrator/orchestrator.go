// Package orchestrator drives one problem through strategy selection,
// prompting, generation, answer extraction, format enforcement and
// analytics.
package orchestrator

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/chain-of-draft/internal/analytics"
	"github.com/danielpatrickdp/chain-of-draft/internal/complexity"
	"github.com/danielpatrickdp/chain-of-draft/internal/examples"
	"github.com/danielpatrickdp/chain-of-draft/internal/format"
	"github.com/danielpatrickdp/chain-of-draft/internal/llm"
	"github.com/danielpatrickdp/chain-of-draft/internal/prompt"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #endregion

// ForcedJustification is reported when the caller picks the strategy.
const ForcedJustification = "Manually specified"

// #region orchestrator-struct

// Deps wires an Orchestrator. Only LLM is required.
type Deps struct {
	LLM       llm.Client
	Estimator *complexity.Estimator
	Selector  *selector.Selector // nil = built over Estimator and Stats
	Examples  ExampleSource
	Recorder  EventRecorder
	Stats     StatsSource
	Settings  *Settings // nil = DefaultSettings
	Logger    *zap.Logger
}

// Orchestrator is the top-level coordinator for a solve request. It is safe
// for concurrent use; only the stored Settings are shared mutable state.
type Orchestrator struct {
	llm       llm.Client
	estimator *complexity.Estimator
	selector  *selector.Selector
	examples  ExampleSource
	recorder  EventRecorder
	stats     StatsSource
	logger    *zap.Logger

	mu       sync.RWMutex
	settings Settings
}

// #endregion

// #region constructor

// New creates a fully wired orchestrator.
func New(d Deps) (*Orchestrator, error) {
	if d.LLM == nil {
		return nil, errors.New("orchestrator: llm client is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	est := d.Estimator
	if est == nil {
		est = complexity.NewEstimator(complexity.DefaultTables())
	}
	sel := d.Selector
	if sel == nil {
		var perf selector.PerformanceSource
		if d.Stats != nil {
			perf = d.Stats
		}
		sel = selector.NewSelector(nil, est, perf, logger)
	}
	settings := DefaultSettings()
	if d.Settings != nil {
		settings = *d.Settings
	}
	return &Orchestrator{
		llm:       d.LLM,
		estimator: est,
		selector:  sel,
		examples:  d.Examples,
		recorder:  d.Recorder,
		stats:     d.Stats,
		logger:    logger.Named("orch"),
		settings:  settings,
	}, nil
}

// #endregion

// #region solve

// Solve answers problem in domain. Generation errors are returned unchanged;
// examples and analytics failures are logged and do not fail the call.
func (o *Orchestrator) Solve(ctx context.Context, problem, domain string, ov Overrides) (Result, error) {
	if strings.TrimSpace(problem) == "" {
		return Result{}, ErrEmptyProblem
	}
	if ov.Strategy != nil && !ov.Strategy.Valid() {
		return Result{}, fmt.Errorf("solve: %w: %q", selector.ErrUnknownStrategy, *ov.Strategy)
	}
	start := time.Now()
	domain = complexity.NormalizeDomain(domain)
	set := o.Settings().apply(ov.SettingsUpdate)

	var score int
	if ov.Complexity != nil {
		score = *ov.Complexity
	} else {
		score = o.estimator.Estimate(problem, domain)
	}

	var decision selector.Decision
	if ov.Strategy != nil {
		decision = selector.Decision{Strategy: *ov.Strategy, Justification: ForcedJustification, Complexity: score}
	} else {
		decision = o.selector.Select(ctx, problem, domain, &score)
	}

	limit := wordLimit(set, decision.Strategy, score, ov.MaxWordsPerStep)

	o.logger.Info("solve",
		zap.String("domain", domain),
		zap.Int("complexity", score),
		zap.String("strategy", string(decision.Strategy)),
		zap.Int("word_limit", limit),
		zap.String("reason", decision.Justification))

	builder, err := prompt.ForStrategy(decision.Strategy, limit)
	if err != nil {
		return Result{}, err
	}
	p := builder.Build(problem, domain, o.fewShot(ctx, domain, decision.Strategy, set.ExampleLimit))

	resp, err := o.llm.Chat(ctx, llm.ChatRequest{
		Turns:       p.Turns(),
		Model:       set.Model,
		MaxTokens:   set.MaxTokens,
		Temperature: set.Temperature,
	})
	if err != nil {
		return Result{}, err
	}

	reasoning, answer := prompt.SplitAnswer(resp.Content)

	var adherence *format.AdherenceReport
	if set.EnforceFormat && decision.Strategy == selector.Terse {
		reasoning = format.Enforce(reasoning, limit)
		report := format.ScoreAdherence(reasoning, limit)
		adherence = &report
	}

	res := Result{
		Reasoning:     reasoning,
		Answer:        answer,
		TokenCount:    tokenCount(resp),
		Strategy:      decision.Strategy,
		Complexity:    score,
		WordLimit:     limit,
		Justification: decision.Justification,
		Adherence:     adherence,
		Elapsed:       time.Since(start),
	}

	if set.TrackAnalytics && o.recorder != nil {
		res.EventID = o.record(ctx, problem, domain, ov.ExpectedAnswer, res)
	}
	return res, nil
}

// SolveTurns solves the content of the last user turn.
func (o *Orchestrator) SolveTurns(ctx context.Context, turns []llm.Turn, domain string, ov Overrides) (Result, error) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == llm.RoleUser && turns[i].Content != "" {
			return o.Solve(ctx, turns[i].Content, domain, ov)
		}
	}
	return Result{}, ErrNoUserTurn
}

// #endregion

// #region solve-helpers

func wordLimit(set Settings, s selector.Strategy, score int, forced *int) int {
	switch {
	case forced != nil:
		return *forced
	case s == selector.Terse && set.AdaptiveWordLimit:
		return score
	default:
		return set.MaxWordsPerStep
	}
}

// tokenCount prefers the backend's count and falls back to whitespace words.
func tokenCount(resp llm.ChatResponse) int {
	if resp.Usage.OutputTokens > 0 {
		return resp.Usage.OutputTokens
	}
	return len(strings.Fields(resp.Content))
}

func (o *Orchestrator) fewShot(ctx context.Context, domain string, s selector.Strategy, limit int) []examples.Example {
	if o.examples == nil || limit <= 0 {
		return nil
	}
	shots, err := o.examples.Get(ctx, domain, s, limit)
	if err != nil {
		o.logger.Warn("examples unavailable", zap.String("domain", domain), zap.Error(err))
		return nil
	}
	return shots
}

func (o *Orchestrator) record(ctx context.Context, problem, domain, expected string, res Result) string {
	id, err := o.recorder.RecordInference(ctx, analytics.Event{
		Problem:         problem,
		Domain:          domain,
		Approach:        res.Strategy,
		WordLimit:       res.WordLimit,
		TokensUsed:      res.TokenCount,
		ExecutionTimeMs: float64(res.Elapsed.Microseconds()) / 1000,
		Reasoning:       res.Reasoning,
		Answer:          res.Answer,
		ExpectedAnswer:  expected,
		Metadata: analytics.Metadata{
			Complexity:    res.Complexity,
			Justification: res.Justification,
			Adherence:     res.Adherence,
		},
	})
	if err != nil {
		o.logger.Warn("failed to record inference", zap.Error(err))
		return ""
	}
	return id
}

// #endregion

// #region settings

// Settings returns a copy of the stored defaults.
func (o *Orchestrator) Settings() Settings {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.settings
}

// UpdateSettings applies u to the stored defaults and returns the result.
func (o *Orchestrator) UpdateSettings(u SettingsUpdate) Settings {
	o.mu.Lock()
	o.settings = o.settings.apply(u)
	s := o.settings
	o.mu.Unlock()

	o.logger.Info("settings updated",
		zap.Int("max_words_per_step", s.MaxWordsPerStep),
		zap.Bool("enforce_format", s.EnforceFormat),
		zap.Bool("adaptive_word_limit", s.AdaptiveWordLimit),
		zap.Bool("track_analytics", s.TrackAnalytics))
	return s
}

// UpdatePolicy forwards a threshold change to the selector.
func (o *Orchestrator) UpdatePolicy(domain string, u selector.PolicyUpdate) selector.DomainPolicy {
	return o.selector.UpdatePolicy(domain, u)
}

// #endregion

// #region stats

// AnalyzeComplexity returns the estimator's factor breakdown.
func (o *Orchestrator) AnalyzeComplexity(problem, domain string) complexity.Analysis {
	return o.estimator.Analyze(problem, domain)
}

// PerformanceStats returns per-domain, per-strategy aggregates. An empty
// domain returns every domain.
func (o *Orchestrator) PerformanceStats(ctx context.Context, domain string) ([]selector.Performance, error) {
	if o.stats == nil {
		return nil, ErrNoStats
	}
	return o.stats.PerformanceByDomain(ctx, domain)
}

// TokenReduction returns per-domain token savings of Terse over Verbose.
func (o *Orchestrator) TokenReduction(ctx context.Context) ([]analytics.Reduction, error) {
	if o.stats == nil {
		return nil, ErrNoStats
	}
	return o.stats.TokenReduction(ctx)
}

// AccuracyComparison returns per-domain accuracy of both strategies.
func (o *Orchestrator) AccuracyComparison(ctx context.Context) ([]analytics.AccuracyDelta, error) {
	if o.stats == nil {
		return nil, ErrNoStats
	}
	return o.stats.AccuracyComparison(ctx)
}

// #endregion
