// Package selector decides between terse (Chain-of-Draft) and verbose
// (Chain-of-Thought) prompting for a problem.
package selector

// #region imports
import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/chain-of-draft/internal/complexity"
	"go.uber.org/zap"
)

// #endregion

// DefaultJustification explains the fall-through choice.
const DefaultJustification = "Default to Chain-of-Draft for efficiency"

// #region selector

// Selector picks a strategy from a complexity gate, then a historical
// accuracy gate, then the Terse default.
type Selector struct {
	policies  *PolicyTable
	estimator *complexity.Estimator
	perf      PerformanceSource // nil = no history
	logger    *zap.Logger
}

// NewSelector creates a selector. perf and logger may be nil.
func NewSelector(policies *PolicyTable, estimator *complexity.Estimator, perf PerformanceSource, logger *zap.Logger) *Selector {
	if policies == nil {
		policies = NewPolicyTable(nil)
	}
	if estimator == nil {
		estimator = complexity.NewEstimator(complexity.DefaultTables())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		policies:  policies,
		estimator: estimator,
		perf:      perf,
		logger:    logger.Named("selector"),
	}
}

// #endregion

// #region select

// Select decides the strategy. When score is nil the estimator computes it.
// A failing history query counts as no history.
func (s *Selector) Select(ctx context.Context, problem, domain string, score *int) Decision {
	domain = complexity.NormalizeDomain(domain)
	policy := s.policies.Get(domain)

	var c int
	if score != nil {
		c = *score
	} else {
		c = s.estimator.Estimate(problem, domain)
	}

	if c > policy.ComplexityThreshold {
		return Decision{
			Strategy:      Verbose,
			Justification: fmt.Sprintf("Problem complexity (%d) exceeds threshold (%d)", c, policy.ComplexityThreshold),
			Complexity:    c,
		}
	}

	if acc, ok := s.terseAccuracy(ctx, domain); ok && acc < policy.AccuracyThreshold {
		return Decision{
			Strategy: Verbose,
			Justification: fmt.Sprintf("Historical accuracy with CoD (%.2f) below threshold (%g)",
				acc, policy.AccuracyThreshold),
			Complexity: c,
		}
	}

	return Decision{
		Strategy:      Terse,
		Justification: DefaultJustification,
		Complexity:    c,
	}
}

func (s *Selector) terseAccuracy(ctx context.Context, domain string) (float64, bool) {
	if s.perf == nil {
		return 0, false
	}
	rows, err := s.perf.PerformanceByDomain(ctx, domain)
	if err != nil {
		s.logger.Warn("performance history unavailable", zap.String("domain", domain), zap.Error(err))
		return 0, false
	}
	for _, r := range rows {
		if r.Approach != Terse {
			continue
		}
		if r.Accuracy == nil {
			return 0, false
		}
		return *r.Accuracy, true
	}
	return 0, false
}

// #endregion

// #region policy-access

// UpdatePolicy applies a partial threshold update for domain.
func (s *Selector) UpdatePolicy(domain string, u PolicyUpdate) DomainPolicy {
	p := s.policies.Update(domain, u)
	s.logger.Info("policy updated",
		zap.String("domain", complexity.NormalizeDomain(domain)),
		zap.Int("complexity_threshold", p.ComplexityThreshold),
		zap.Float64("accuracy_threshold", p.AccuracyThreshold))
	return p
}

// Policy returns the effective policy for domain.
func (s *Selector) Policy(domain string) DomainPolicy {
	return s.policies.Get(domain)
}

// Policies returns a copy of every configured policy.
func (s *Selector) Policies() map[string]DomainPolicy {
	return s.policies.Snapshot()
}

// #endregion
