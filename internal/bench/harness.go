package bench

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/chain-of-draft/internal/analytics"
	"github.com/danielpatrickdp/chain-of-draft/internal/complexity"
	"github.com/danielpatrickdp/chain-of-draft/internal/orchestrator"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #region types

// Solver is the part of the orchestrator the runner drives.
type Solver interface {
	Solve(ctx context.Context, problem, domain string, ov orchestrator.Overrides) (orchestrator.Result, error)
}

// RunResult is one problem solved under one strategy.
type RunResult struct {
	ProblemID  string
	Domain     string
	Strategy   selector.Strategy
	Answer     string
	TokenCount int
	WordLimit  int
	Adherence  *float64
	Correct    *bool // nil when ungraded or failed
	Elapsed    time.Duration
	Err        error
}

// Summary aggregates runs for one domain and strategy.
type Summary struct {
	Domain        string
	Strategy      selector.Strategy
	Runs          int
	Failed        int
	AvgTokens     float64
	Accuracy      *float64 // nil when no run was graded
	MeanAdherence *float64 // nil for strategies without enforcement
}

// Report is the outcome of a benchmark run.
type Report struct {
	Results    []RunResult
	Summaries  []Summary
	Reductions []analytics.Reduction
}

// #endregion types

// #region runner

// Runner solves every fixture problem under both strategies.
type Runner struct {
	solver      Solver
	concurrency int
	logger      *zap.Logger
}

// NewRunner creates a runner with at most concurrency solves in flight.
func NewRunner(solver Solver, concurrency int, logger *zap.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{solver: solver, concurrency: concurrency, logger: logger.Named("bench")}
}

var strategies = []selector.Strategy{selector.Terse, selector.Verbose}

// Run solves each problem with each strategy forced. Solve failures are
// recorded per run; only cancellation of ctx fails the whole run.
func (r *Runner) Run(ctx context.Context, f *Fixture) (*Report, error) {
	results := make([]RunResult, len(f.Problems)*len(strategies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, p := range f.Problems {
		for j, s := range strategies {
			idx := i*len(strategies) + j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[idx] = r.runOne(gctx, p, s)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := Summarize(results)
	r.logger.Info("bench complete",
		zap.Int("problems", len(f.Problems)),
		zap.Int("runs", len(results)))
	return &Report{
		Results:    results,
		Summaries:  summaries,
		Reductions: Reductions(summaries),
	}, nil
}

func (r *Runner) runOne(ctx context.Context, p Problem, s selector.Strategy) RunResult {
	strategy := s
	res, err := r.solver.Solve(ctx, p.Problem, p.Domain, orchestrator.Overrides{
		Strategy:       &strategy,
		ExpectedAnswer: p.ExpectedAnswer,
	})
	out := RunResult{
		ProblemID: p.ID,
		Domain:    complexity.NormalizeDomain(p.Domain),
		Strategy:  s,
		Err:       err,
	}
	if err != nil {
		r.logger.Warn("solve failed",
			zap.String("problem", p.ID),
			zap.String("strategy", string(s)),
			zap.Error(err))
		return out
	}
	out.Answer = res.Answer
	out.TokenCount = res.TokenCount
	out.WordLimit = res.WordLimit
	out.Elapsed = res.Elapsed
	if res.Adherence != nil {
		rate := res.Adherence.AdherenceRate
		out.Adherence = &rate
	}
	if p.ExpectedAnswer != "" {
		ok := analytics.CheckCorrect(res.Answer, p.ExpectedAnswer)
		out.Correct = &ok
	}
	return out
}

// #endregion runner

// #region summarize

// Summarize aggregates results per domain and strategy, sorted by domain
// then strategy.
func Summarize(results []RunResult) []Summary {
	type key struct {
		domain   string
		strategy selector.Strategy
	}
	type accum struct {
		runs, failed, graded, correct, adhered int
		tokens, adherence                      float64
	}
	acc := make(map[key]*accum)
	for _, r := range results {
		k := key{r.Domain, r.Strategy}
		a, ok := acc[k]
		if !ok {
			a = &accum{}
			acc[k] = a
		}
		a.runs++
		if r.Err != nil {
			a.failed++
			continue
		}
		a.tokens += float64(r.TokenCount)
		if r.Correct != nil {
			a.graded++
			if *r.Correct {
				a.correct++
			}
		}
		if r.Adherence != nil {
			a.adhered++
			a.adherence += *r.Adherence
		}
	}

	out := make([]Summary, 0, len(acc))
	for k, a := range acc {
		s := Summary{Domain: k.domain, Strategy: k.strategy, Runs: a.runs, Failed: a.failed}
		if ok := a.runs - a.failed; ok > 0 {
			s.AvgTokens = a.tokens / float64(ok)
		}
		if a.graded > 0 {
			v := float64(a.correct) / float64(a.graded)
			s.Accuracy = &v
		}
		if a.adhered > 0 {
			v := a.adherence / float64(a.adhered)
			s.MeanAdherence = &v
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}

// Reductions computes per-domain token savings of Terse over Verbose from
// sorted summaries.
func Reductions(summaries []Summary) []analytics.Reduction {
	var out []analytics.Reduction
	for _, s := range summaries {
		if len(out) == 0 || out[len(out)-1].Domain != s.Domain {
			out = append(out, analytics.Reduction{Domain: s.Domain})
		}
		cur := &out[len(out)-1]
		switch s.Strategy {
		case selector.Terse:
			cur.TerseAvgTokens = s.AvgTokens
		case selector.Verbose:
			cur.VerboseAvgTokens = s.AvgTokens
		}
	}
	for i := range out {
		if out[i].VerboseAvgTokens > 0 {
			out[i].ReductionPct = (1 - out[i].TerseAvgTokens/out[i].VerboseAvgTokens) * 100
		}
	}
	return out
}

// #endregion summarize
