package selector

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// #endregion

// #region strategy

// Strategy identifies a prompting strategy. Values are the wire names
// stored alongside analytics and example rows.
type Strategy string

const (
	// Terse is Chain-of-Draft: every reasoning step kept to a word budget.
	Terse Strategy = "CoD"
	// Verbose is Chain-of-Thought: full step-by-step explanation.
	Verbose Strategy = "CoT"
)

// ErrUnknownStrategy is returned when a strategy name cannot be parsed.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	return s == Terse || s == Verbose
}

// ParseStrategy accepts wire names ("CoD", "CoT") or "terse"/"verbose",
// case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cod", "terse":
		return Terse, nil
	case "cot", "verbose":
		return Verbose, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// #endregion

// #region decision

// Decision is the selector's output for one problem.
type Decision struct {
	Strategy      Strategy
	Justification string
	Complexity    int
}

// #endregion

// #region performance

// Performance is aggregated history for one domain/strategy pair.
// Accuracy is nil when none of the recorded runs were graded.
type Performance struct {
	Domain    string   `json:"domain"`
	Approach  Strategy `json:"approach"`
	AvgTokens float64  `json:"avg_tokens"`
	AvgTimeMs float64  `json:"avg_time_ms"`
	Accuracy  *float64 `json:"accuracy"`
	Count     int      `json:"count"`
}

// PerformanceSource serves historical per-domain, per-strategy results.
// An empty domain returns every domain.
type PerformanceSource interface {
	PerformanceByDomain(ctx context.Context, domain string) ([]Performance, error)
}

// #endregion
