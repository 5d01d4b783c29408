package complexity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	e := NewEstimator(DefaultTables())

	tests := []struct {
		name    string
		problem string
		domain  string
		want    int
	}{
		{"math-word-problem", "Jason had 20 lollipops. He gave Denny some. Now he has 12. How many did he give?", "math", 7},
		{"math-proof", "Prove that the square root of 2 is irrational.", "math", 8},
		{"code-function", "Write a function to find the nth Fibonacci number.", "code", 10},
		{"general-short", "Hi", "general", 5},
		{"common-sense-short", "Is it raining", "common_sense", 4},
		{"physics-saturated", "quantum momentum force energy entropy", "physics", 10},
		{"unknown-domain", "Pick one", "astrology", 5},
		{"empty-domain", "Pick one", "", 5},
		{"domain-case-insensitive", "Prove that the square root of 2 is irrational.", "  MATH ", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Estimate(tt.problem, tt.domain))
		})
	}
}

func TestEstimate_ClampsToBounds(t *testing.T) {
	tables := DefaultTables().WithBaseBudget("tiny", 1).WithBaseBudget("huge", 40)
	e := NewEstimator(tables)

	assert.Equal(t, MinScore, e.Estimate("one", "tiny"))
	assert.Equal(t, MaxScore, e.Estimate("one", "huge"))
}

func TestEstimate_LongInputSaturatesLength(t *testing.T) {
	e := NewEstimator(DefaultTables())
	problem := strings.Repeat("word ", 100)

	a := e.Analyze(problem, "general")
	assert.Equal(t, 2.0, a.LengthFactor)
	assert.Equal(t, 1.5, a.SentenceFactor)
	assert.Equal(t, 2.0, a.ImpactFactor)
	assert.Equal(t, 10, a.Score)
}

func TestEstimate_Deterministic(t *testing.T) {
	e := NewEstimator(DefaultTables())
	problems := []string{
		"",
		"What is the derivative of x^2? And the integral?",
		"Implement a hash table with recursion and dynamic programming.",
		strings.Repeat("A long sentence without any stops at all ", 20),
	}
	domains := []string{"math", "code", "logic", "physics", "general", "unknown"}

	for _, p := range problems {
		for _, d := range domains {
			first := e.Estimate(p, d)
			require.GreaterOrEqual(t, first, MinScore)
			require.LessOrEqual(t, first, MaxScore)
			for i := 0; i < 5; i++ {
				require.Equal(t, first, e.Estimate(p, d), "problem=%q domain=%q", p, d)
			}
		}
	}
}

func TestAnalyze_Breakdown(t *testing.T) {
	e := NewEstimator(DefaultTables())

	a := e.Analyze("Jason had 20 lollipops. He gave Denny some. Now he has 12. How many did he give?", "math")

	assert.Equal(t, "math", a.Domain)
	assert.Equal(t, 6, a.BaseBudget)
	assert.Equal(t, 17, a.WordCount)
	assert.InDelta(t, 0.34, a.LengthFactor, 1e-9)
	assert.Equal(t, 0, a.IndicatorCount)
	assert.Empty(t, a.FoundIndicators)
	assert.Equal(t, 1.0, a.IndicatorFactor)
	assert.Equal(t, 1, a.QuestionCount)
	assert.InDelta(t, 1.2, a.QuestionFactor, 1e-9)
	assert.Equal(t, 4, a.SentenceCount)
	assert.InDelta(t, 4.25, a.WordsPerSentence, 1e-9)
	assert.Equal(t, 1.0, a.DomainFactor)
	assert.InDelta(t, 1.2, a.ImpactFactor, 1e-9)
	assert.Equal(t, 7, a.Score)
}

func TestAnalyze_IndicatorsCaseInsensitive(t *testing.T) {
	e := NewEstimator(DefaultTables())

	a := e.Analyze("Use LINEAR ALGEBRA and a Matrix to solve the Equation", "math")

	assert.ElementsMatch(t, []string{"equation", "matrix", "linear algebra"}, a.FoundIndicators)
	assert.InDelta(t, 1.6, a.IndicatorFactor, 1e-9)
}

func TestAnalyze_IndicatorFactorCapped(t *testing.T) {
	e := NewEstimator(DefaultTables())

	a := e.Analyze("recursion algorithm optimization class object inheritance graph", "code")

	assert.Equal(t, 7, a.IndicatorCount)
	assert.Equal(t, 1.8, a.IndicatorFactor)
}

func TestAnalyze_MatchesEstimate(t *testing.T) {
	e := NewEstimator(DefaultTables())
	problem := "Implement an algorithm that sorts a list."

	assert.Equal(t, e.Estimate(problem, "code"), e.Analyze(problem, "code").Score)
	assert.InDelta(t, 1.2, e.Analyze(problem, "code").DomainFactor, 1e-9)
}

func TestTables_WithIndicatorsDoesNotMutateOriginal(t *testing.T) {
	base := DefaultTables()
	custom := base.WithIndicators("general", []string{"tricky"})

	assert.NotContains(t, base.Indicators, "general")
	assert.Equal(t, []string{"tricky"}, custom.Indicators["general"])

	e := NewEstimator(custom)
	assert.Equal(t, 6, e.Estimate("a tricky one", "general"))
}
