// Package complexity turns a free-text problem statement into a per-step
// word budget. Scoring is keyword and shape heuristics only; no model call.
package complexity

// #region imports
import (
	"math"
	"strings"
)

// #endregion

// #region bounds

const (
	// MinScore and MaxScore bound every estimate.
	MinScore = 3
	MaxScore = 10
)

// #endregion

// #region analysis

// Analysis exposes every intermediate factor behind an estimate.
type Analysis struct {
	Domain           string   `json:"domain"`
	BaseBudget       int      `json:"base_limit"`
	WordCount        int      `json:"word_count"`
	LengthFactor     float64  `json:"length_factor"`
	IndicatorCount   int      `json:"indicator_count"`
	FoundIndicators  []string `json:"found_indicators"`
	IndicatorFactor  float64  `json:"indicator_factor"`
	QuestionCount    int      `json:"question_count"`
	QuestionFactor   float64  `json:"question_factor"`
	SentenceCount    int      `json:"sentence_count"`
	WordsPerSentence float64  `json:"words_per_sentence"`
	SentenceFactor   float64  `json:"sentence_complexity_factor"`
	DomainFactor     float64  `json:"domain_factor"`
	ImpactFactor     float64  `json:"impact_factor"`
	Score            int      `json:"estimated_complexity"`
}

// #endregion

// #region estimator

// Estimator scores problems against a fixed set of tables. It holds no
// mutable state and is safe for concurrent use.
type Estimator struct {
	tables Tables
}

// NewEstimator creates an estimator over the given tables.
func NewEstimator(tables Tables) *Estimator {
	return &Estimator{tables: tables.clone()}
}

// Tables returns a copy of the tables backing this estimator.
func (e *Estimator) Tables() Tables {
	return e.tables.clone()
}

// Estimate returns the word budget for a problem, clamped to [MinScore, MaxScore].
func (e *Estimator) Estimate(problem, domain string) int {
	return e.Analyze(problem, domain).Score
}

// Analyze computes the full factor breakdown for a problem.
func (e *Estimator) Analyze(problem, domain string) Analysis {
	domain = NormalizeDomain(domain)
	lower := strings.ToLower(problem)
	words := strings.Fields(problem)
	wordCount := len(words)

	a := Analysis{
		Domain:     domain,
		BaseBudget: e.tables.baseFor(domain),
		WordCount:  wordCount,
	}

	a.LengthFactor = math.Min(float64(wordCount)/50, 2.0)

	for _, kw := range e.tables.Indicators[domain] {
		if strings.Contains(lower, strings.ToLower(kw)) {
			a.FoundIndicators = append(a.FoundIndicators, kw)
		}
	}
	a.IndicatorCount = len(a.FoundIndicators)
	a.IndicatorFactor = math.Min(1+float64(a.IndicatorCount)*0.2, 1.8)

	a.QuestionCount = strings.Count(problem, "?")
	a.QuestionFactor = 1 + float64(a.QuestionCount)*0.2

	a.SentenceCount = countSentences(problem)
	a.WordsPerSentence = float64(wordCount) / float64(max(a.SentenceCount, 1))
	a.SentenceFactor = math.Min(a.WordsPerSentence/15, 1.5)

	a.DomainFactor = domainFactor(domain, lower)

	// Strongest single signal wins; factors do not accumulate.
	a.ImpactFactor = max(a.LengthFactor, a.IndicatorFactor, a.QuestionFactor, a.SentenceFactor, a.DomainFactor)

	a.Score = clamp(int(math.RoundToEven(float64(a.BaseBudget)*a.ImpactFactor)), MinScore, MaxScore)
	return a
}

// #endregion

// #region helpers

func countSentences(text string) int {
	n := 0
	for _, s := range strings.Split(text, ".") {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

func domainFactor(domain, lower string) float64 {
	switch domain {
	case "math":
		if containsAny(lower, "prove", "proof", "theorem") {
			return 1.3
		}
	case "code":
		if containsAny(lower, "implement", "function", "algorithm") {
			return 1.2
		}
	}
	return 1.0
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion
