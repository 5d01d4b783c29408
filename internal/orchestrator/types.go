package orchestrator

// #region imports
import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/chain-of-draft/internal/analytics"
	"github.com/danielpatrickdp/chain-of-draft/internal/examples"
	"github.com/danielpatrickdp/chain-of-draft/internal/format"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #endregion

// #region errors

var (
	// ErrEmptyProblem is returned when Solve is called without problem text.
	ErrEmptyProblem = errors.New("problem text is required")
	// ErrNoUserTurn is returned when SolveTurns finds no user message.
	ErrNoUserTurn = errors.New("no user message found")
	// ErrNoStats is returned by the stats methods when no StatsSource is wired.
	ErrNoStats = errors.New("analytics not configured")
)

// #endregion

// #region settings

// Settings are the stored defaults applied to every Solve call.
type Settings struct {
	Model             string  `json:"model" yaml:"model"`
	MaxWordsPerStep   int     `json:"max_words_per_step" yaml:"max_words_per_step"`
	EnforceFormat     bool    `json:"enforce_format" yaml:"enforce_format"`
	AdaptiveWordLimit bool    `json:"adaptive_word_limit" yaml:"adaptive_word_limit"`
	TrackAnalytics    bool    `json:"track_analytics" yaml:"track_analytics"`
	MaxTokens         int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature       float64 `json:"temperature" yaml:"temperature"`
	ExampleLimit      int     `json:"example_limit" yaml:"example_limit"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxWordsPerStep:   8,
		EnforceFormat:     true,
		AdaptiveWordLimit: true,
		TrackAnalytics:    true,
		MaxTokens:         500,
		Temperature:       0.7,
		ExampleLimit:      3,
	}
}

// SettingsUpdate is a partial settings change; nil fields are untouched.
type SettingsUpdate struct {
	Model             *string
	MaxWordsPerStep   *int
	EnforceFormat     *bool
	AdaptiveWordLimit *bool
	TrackAnalytics    *bool
	MaxTokens         *int
	Temperature       *float64
	ExampleLimit      *int
}

func (s Settings) apply(u SettingsUpdate) Settings {
	if u.Model != nil {
		s.Model = *u.Model
	}
	if u.MaxWordsPerStep != nil {
		s.MaxWordsPerStep = *u.MaxWordsPerStep
	}
	if u.EnforceFormat != nil {
		s.EnforceFormat = *u.EnforceFormat
	}
	if u.AdaptiveWordLimit != nil {
		s.AdaptiveWordLimit = *u.AdaptiveWordLimit
	}
	if u.TrackAnalytics != nil {
		s.TrackAnalytics = *u.TrackAnalytics
	}
	if u.MaxTokens != nil {
		s.MaxTokens = *u.MaxTokens
	}
	if u.Temperature != nil {
		s.Temperature = *u.Temperature
	}
	if u.ExampleLimit != nil {
		s.ExampleLimit = *u.ExampleLimit
	}
	return s
}

// #endregion

// #region overrides

// Overrides are per-call settings. Set fields win over stored Settings.
// A set MaxWordsPerStep is used as the budget as-is, even for adaptive
// Terse runs.
type Overrides struct {
	SettingsUpdate
	Strategy       *selector.Strategy
	Complexity     *int
	ExpectedAnswer string // grades the recorded event when set
}

// #endregion

// #region result

// Result is the outcome of one Solve call.
type Result struct {
	Reasoning     string                  `json:"reasoning_steps"`
	Answer        string                  `json:"final_answer"`
	TokenCount    int                     `json:"token_count"`
	Strategy      selector.Strategy       `json:"approach"`
	Complexity    int                     `json:"complexity"`
	WordLimit     int                     `json:"word_limit"`
	Justification string                  `json:"approach_reason"`
	Adherence     *format.AdherenceReport `json:"adherence,omitempty"`
	EventID       string                  `json:"event_id,omitempty"`
	Elapsed       time.Duration           `json:"elapsed"`
}

// #endregion

// #region interfaces

// ExampleSource serves few-shot examples.
type ExampleSource interface {
	Get(ctx context.Context, domain string, approach selector.Strategy, limit int) ([]examples.Example, error)
}

// EventRecorder persists one event per Solve call.
type EventRecorder interface {
	RecordInference(ctx context.Context, ev analytics.Event) (string, error)
}

// StatsSource serves aggregated history.
type StatsSource interface {
	selector.PerformanceSource
	TokenReduction(ctx context.Context) ([]analytics.Reduction, error)
	AccuracyComparison(ctx context.Context) ([]analytics.AccuracyDelta, error)
}

// #endregion
