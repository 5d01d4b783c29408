// Package examples stores worked problems used for few-shot prompting.
package examples

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/chain-of-draft/internal/complexity"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #endregion imports

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS examples (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    problem       TEXT NOT NULL,
    reasoning     TEXT NOT NULL,
    answer        TEXT NOT NULL,
    domain        TEXT NOT NULL,
    approach      TEXT NOT NULL,
    metadata_json TEXT
);

CREATE INDEX IF NOT EXISTS idx_examples_lookup ON examples(domain, approach);
`

const cacheSize = 256

// #endregion schema

// #region types

// Example is one worked problem in a given strategy's style.
type Example struct {
	ID        int64             `json:"id"`
	Problem   string            `json:"problem"`
	Reasoning string            `json:"reasoning"`
	Answer    string            `json:"answer"`
	Domain    string            `json:"domain"`
	Approach  selector.Strategy `json:"approach"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// DomainCount is the number of stored examples for a domain/strategy pair.
type DomainCount struct {
	Domain   string            `json:"domain"`
	Approach selector.Strategy `json:"approach"`
	Count    int               `json:"count"`
}

// #endregion types

// #region store

// Store persists examples in SQLite. Lookups are cached and the cache is
// purged on every write.
type Store struct {
	db    *sql.DB
	owned bool
	cache *lru.Cache[string, []Example]
}

// Open opens (or creates) a SQLite database at path and seeds it when empty.
// A "sqlite:///" URL prefix is accepted.
func Open(ctx context.Context, path string) (*Store, error) {
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
	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New creates the examples table on db if needed and seeds it when empty.
// The caller keeps ownership of db.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate examples: %w", err)
	}
	cache, err := lru.New[string, []Example](cacheSize)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, cache: cache}
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSeeded(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM examples`).Scan(&count); err != nil {
		return fmt.Errorf("count examples: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, ex := range SeedExamples() {
		if _, err := s.Add(ctx, ex); err != nil {
			return fmt.Errorf("seed examples: %w", err)
		}
	}
	return nil
}

// #endregion store

// #region get

// Get returns up to limit examples for domain and strategy, oldest first.
// An empty result is valid.
func (s *Store) Get(ctx context.Context, domain string, approach selector.Strategy, limit int) ([]Example, error) {
	if limit <= 0 {
		return nil, nil
	}
	domain = complexity.NormalizeDomain(domain)
	key := fmt.Sprintf("%s|%s|%d", domain, approach, limit)
	if cached, ok := s.cache.Get(key); ok {
		return slices.Clone(cached), nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, problem, reasoning, answer, domain, approach, metadata_json
		FROM examples
		WHERE domain = ? AND approach = ?
		ORDER BY id
		LIMIT ?`,
		domain, string(approach), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query examples: %w", err)
	}
	defer rows.Close()

	var out []Example
	for rows.Next() {
		var ex Example
		var approachStr string
		var meta sql.NullString
		if err := rows.Scan(&ex.ID, &ex.Problem, &ex.Reasoning, &ex.Answer, &ex.Domain, &approachStr, &meta); err != nil {
			return nil, fmt.Errorf("scan example: %w", err)
		}
		ex.Approach = selector.Strategy(approachStr)
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &ex.Metadata); err != nil {
				return nil, fmt.Errorf("decode example metadata: %w", err)
			}
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.cache.Add(key, out)
	return slices.Clone(out), nil
}

// #endregion get

// #region add

// Add stores an example and returns its ID.
func (s *Store) Add(ctx context.Context, ex Example) (int64, error) {
	if !ex.Approach.Valid() {
		return 0, fmt.Errorf("add example: %w: %q", selector.ErrUnknownStrategy, ex.Approach)
	}
	var meta any
	if len(ex.Metadata) > 0 {
		b, err := json.Marshal(ex.Metadata)
		if err != nil {
			return 0, fmt.Errorf("encode example metadata: %w", err)
		}
		meta = string(b)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO examples (problem, reasoning, answer, domain, approach, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ex.Problem, ex.Reasoning, ex.Answer,
		complexity.NormalizeDomain(ex.Domain), string(ex.Approach), meta,
	)
	if err != nil {
		return 0, fmt.Errorf("insert example: %w", err)
	}
	s.cache.Purge()
	return res.LastInsertId()
}

// #endregion add

// #region count

// CountByDomain returns example counts grouped by domain and strategy.
func (s *Store) CountByDomain(ctx context.Context) ([]DomainCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, approach, COUNT(id)
		FROM examples
		GROUP BY domain, approach
		ORDER BY domain, approach`)
	if err != nil {
		return nil, fmt.Errorf("count examples: %w", err)
	}
	defer rows.Close()

	var out []DomainCount
	for rows.Next() {
		var c DomainCount
		var approach string
		if err := rows.Scan(&c.Domain, &approach, &c.Count); err != nil {
			return nil, err
		}
		c.Approach = selector.Strategy(approach)
		out = append(out, c)
	}
	return out, rows.Err()
}

// #endregion count
