// Package analytics records inference events in SQLite and aggregates them
// per domain and strategy.
package analytics

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/chain-of-draft/internal/complexity"
	"github.com/danielpatrickdp/chain-of-draft/internal/format"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #endregion imports

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS inference_records (
    id                TEXT PRIMARY KEY,
    created_at        TEXT NOT NULL,
    problem_id        TEXT NOT NULL,
    problem_text      TEXT NOT NULL,
    domain            TEXT NOT NULL,
    approach          TEXT NOT NULL,
    word_limit        INTEGER NOT NULL,
    tokens_used       INTEGER NOT NULL,
    execution_time_ms REAL NOT NULL,
    reasoning         TEXT NOT NULL,
    answer            TEXT NOT NULL,
    expected_answer   TEXT,
    is_correct        INTEGER,
    metadata_json     TEXT
);

CREATE INDEX IF NOT EXISTS idx_inference_domain_approach
ON inference_records(domain, approach);
`

// problemNamespace scopes deterministic problem IDs.
var problemNamespace = uuid.MustParse("5c1f0b4e-8a51-4d5e-9a4f-6f1d8f3c2b10")

// ErrEventNotFound is returned when grading an unknown event.
var ErrEventNotFound = errors.New("inference event not found")

// #endregion schema

// #region types

// Metadata is the per-event context the orchestrator attaches.
type Metadata struct {
	Complexity    int                     `json:"complexity"`
	Justification string                  `json:"approach_reason"`
	Adherence     *format.AdherenceReport `json:"adherence,omitempty"`
}

// Event is one solved problem.
type Event struct {
	Problem         string
	Domain          string
	Approach        selector.Strategy
	WordLimit       int
	TokensUsed      int
	ExecutionTimeMs float64
	Reasoning       string
	Answer          string
	ExpectedAnswer  string // empty = ungraded
	Metadata        Metadata
	CreatedAt       time.Time
}

// Reduction compares average token use of the two strategies in a domain.
type Reduction struct {
	Domain           string  `json:"domain"`
	TerseAvgTokens   float64 `json:"cod_avg_tokens"`
	VerboseAvgTokens float64 `json:"cot_avg_tokens"`
	ReductionPct     float64 `json:"reduction_percentage"`
}

// AccuracyDelta compares graded accuracy of the two strategies in a domain.
// Fields are nil when the strategy has no graded events.
type AccuracyDelta struct {
	Domain          string   `json:"domain"`
	TerseAccuracy   *float64 `json:"cod_accuracy"`
	VerboseAccuracy *float64 `json:"cot_accuracy"`
	Difference      *float64 `json:"accuracy_difference"`
}

// #endregion types

// #region store

// Store persists inference events.
type Store struct {
	db     *sql.DB
	owned  bool
	logger *zap.Logger
}

var _ selector.PerformanceSource = (*Store)(nil)

// Open opens (or creates) a SQLite database at path. A "sqlite:///" URL
// prefix is accepted.
func Open(path string, logger *zap.Logger) (*Store, error) {
	path = strings.TrimPrefix(path, "sqlite:///")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	s, err := New(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New creates the inference_records table on db if needed.
func New(db *sql.DB, logger *zap.Logger) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate analytics: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger.Named("analytics")}, nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// #endregion store

// #region record

// RecordInference stores ev and returns its new ID. Events with an expected
// answer are graded on insert.
func (s *Store) RecordInference(ctx context.Context, ev Event) (string, error) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(ev.Metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO inference_records
		(id, created_at, problem_id, problem_text, domain, approach, word_limit,
		 tokens_used, execution_time_ms, reasoning, answer, expected_answer,
		 is_correct, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		ev.CreatedAt.Format(time.RFC3339Nano),
		ProblemID(ev.Problem),
		ev.Problem,
		complexity.NormalizeDomain(ev.Domain),
		string(ev.Approach),
		ev.WordLimit,
		ev.TokensUsed,
		ev.ExecutionTimeMs,
		ev.Reasoning,
		ev.Answer,
		nullIfEmpty(ev.ExpectedAnswer),
		grade(ev.Answer, ev.ExpectedAnswer),
		string(meta),
	)
	if err != nil {
		return "", fmt.Errorf("record inference: %w", err)
	}
	s.logger.Debug("inference recorded",
		zap.String("id", id),
		zap.String("domain", ev.Domain),
		zap.String("approach", string(ev.Approach)))
	return id, nil
}

// MarkCorrect grades a stored event against expected. The result is nil
// when the event cannot be graded (empty answer or empty expected).
func (s *Store) MarkCorrect(ctx context.Context, id, expected string) (*bool, error) {
	var answer string
	err := s.db.QueryRowContext(ctx, `SELECT answer FROM inference_records WHERE id = ?`, id).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark correct %s: %w", id, ErrEventNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mark correct: %w", err)
	}

	g := grade(answer, expected)
	_, err = s.db.ExecContext(ctx,
		`UPDATE inference_records SET expected_answer = ?, is_correct = ? WHERE id = ?`,
		nullIfEmpty(expected), g, id)
	if err != nil {
		return nil, fmt.Errorf("mark correct: %w", err)
	}
	if g == nil {
		return nil, nil
	}
	correct := g == 1
	return &correct, nil
}

// #endregion record

// #region aggregate

// PerformanceByDomain aggregates events per domain and strategy. An empty
// domain aggregates every domain.
func (s *Store) PerformanceByDomain(ctx context.Context, domain string) ([]selector.Performance, error) {
	if domain != "" {
		domain = complexity.NormalizeDomain(domain)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, approach,
		       AVG(tokens_used), AVG(execution_time_ms), AVG(is_correct), COUNT(id)
		FROM inference_records
		WHERE ? = '' OR domain = ?
		GROUP BY domain, approach
		ORDER BY domain, approach`,
		domain, domain,
	)
	if err != nil {
		return nil, fmt.Errorf("performance by domain: %w", err)
	}
	defer rows.Close()

	var out []selector.Performance
	for rows.Next() {
		var p selector.Performance
		var approach string
		var acc sql.NullFloat64
		if err := rows.Scan(&p.Domain, &approach, &p.AvgTokens, &p.AvgTimeMs, &acc, &p.Count); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		p.Approach = selector.Strategy(approach)
		if acc.Valid {
			v := acc.Float64
			p.Accuracy = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TokenReduction reports, per domain, how many fewer tokens Terse used
// than Verbose. The percentage is 0 when Verbose has no events.
func (s *Store) TokenReduction(ctx context.Context) ([]Reduction, error) {
	perf, err := s.PerformanceByDomain(ctx, "")
	if err != nil {
		return nil, err
	}
	var out []Reduction
	for _, d := range groupByDomain(perf) {
		r := Reduction{Domain: d.domain}
		if d.terse != nil {
			r.TerseAvgTokens = d.terse.AvgTokens
		}
		if d.verbose != nil {
			r.VerboseAvgTokens = d.verbose.AvgTokens
		}
		if r.VerboseAvgTokens > 0 {
			r.ReductionPct = (1 - r.TerseAvgTokens/r.VerboseAvgTokens) * 100
		}
		out = append(out, r)
	}
	return out, nil
}

// AccuracyComparison reports graded accuracy per domain for both
// strategies and their difference (Terse minus Verbose).
func (s *Store) AccuracyComparison(ctx context.Context) ([]AccuracyDelta, error) {
	perf, err := s.PerformanceByDomain(ctx, "")
	if err != nil {
		return nil, err
	}
	var out []AccuracyDelta
	for _, d := range groupByDomain(perf) {
		a := AccuracyDelta{Domain: d.domain}
		if d.terse != nil {
			a.TerseAccuracy = d.terse.Accuracy
		}
		if d.verbose != nil {
			a.VerboseAccuracy = d.verbose.Accuracy
		}
		if a.TerseAccuracy != nil && a.VerboseAccuracy != nil {
			diff := *a.TerseAccuracy - *a.VerboseAccuracy
			a.Difference = &diff
		}
		out = append(out, a)
	}
	return out, nil
}

type domainPair struct {
	domain  string
	terse   *selector.Performance
	verbose *selector.Performance
}

// groupByDomain keeps input order; perf is already sorted by domain.
func groupByDomain(perf []selector.Performance) []domainPair {
	var out []domainPair
	for i := range perf {
		p := &perf[i]
		if len(out) == 0 || out[len(out)-1].domain != p.Domain {
			out = append(out, domainPair{domain: p.Domain})
		}
		cur := &out[len(out)-1]
		switch p.Approach {
		case selector.Terse:
			cur.terse = p
		case selector.Verbose:
			cur.verbose = p
		}
	}
	return out
}

// #endregion aggregate

// #region helpers

// CheckCorrect compares answers case-insensitively after trimming.
func CheckCorrect(answer, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(expected))
}

// ProblemID is a stable identifier for a problem text.
func ProblemID(problem string) string {
	return uuid.NewSHA1(problemNamespace, []byte(problem)).String()
}

func grade(answer, expected string) any {
	if strings.TrimSpace(expected) == "" || strings.TrimSpace(answer) == "" {
		return nil
	}
	if CheckCorrect(answer, expected) {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
