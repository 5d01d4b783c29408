package format

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforce(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"numbered-truncated", "1. The quick brown fox jumps over the lazy dog today", 3, "1. The quick brown"},
		{"within-budget-untouched", "1. short  step\n2. also   short", 5, "1. short  step\n2. also   short"},
		{"step-colon-marker", "Step 1: add the two numbers together now\nStep 2: done", 3, "Step 1: add the two\nStep 2: done"},
		{"dash-bullets", "- first bullet has many words in it\n- second", 2, "- first bullet\n- second"},
		{"star-bullets", "* alpha beta gamma delta", 2, "* alpha beta"},
		{"dot-bullets", "• alpha beta gamma delta", 1, "• alpha"},
		{"no-markers-by-line", "  one two three four  \n\n five six ", 2, "one two\nfive six"},
		{"continuation-lines-joined", "1. alpha beta\ngamma delta\n2. x", 3, "1. alpha beta gamma\n2. x"},
		{"preamble-step", "Let us think about it carefully\n1. a b c d", 2, "Let us\n1. a b"},
		{"empty", "", 3, ""},
		{"zero-budget-keeps-one-word", "1. a b", 0, "1. a"},
		{"zero-budget-unmarked", "a b\nc d", 0, "a\nc"},
		{"negative-budget", "- x y z", -2, "- x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Enforce(tt.text, tt.max))
		})
	}
}

func TestEnforce_PreservesOrderAndCount(t *testing.T) {
	text := "1. Initially, Jason had 20 lollipops.\n2. After giving some to Denny, Jason now has 12 lollipops.\n3. 20 - 12 = 8"
	out := Enforce(text, 4)

	before := SplitSteps(text)
	after := SplitSteps(out)
	require.Len(t, after, len(before))

	for i := range after {
		_, orig := splitMarker(before[i])
		_, got := splitMarker(after[i])
		origWords := strings.Fields(orig)
		gotWords := strings.Fields(got)
		require.LessOrEqual(t, len(gotWords), 4)
		assert.Equal(t, origWords[:len(gotWords)], gotWords, "step %d must be a prefix of the original", i)
	}
}

func TestEnforce_ZeroBudgetKeepsStepCount(t *testing.T) {
	text := "first step here\nsecond step\n3. third step words"
	out := Enforce(text, 0)

	assert.Len(t, SplitSteps(out), len(SplitSteps(text)))
}

func TestScoreAdherence(t *testing.T) {
	text := "1. a b c\n2. a b c d e\n3. a"
	rep := ScoreAdherence(text, 3)

	assert.Equal(t, 3, rep.TotalSteps)
	assert.Equal(t, 2, rep.StepsWithinLimit)
	assert.Equal(t, []int{3, 5, 1}, rep.StepCounts)
	assert.Equal(t, 5, rep.MaxWordsInStep)
	assert.InDelta(t, 3.0, rep.AvgWordsPerStep, 1e-9)
	assert.InDelta(t, 2.0/3.0, rep.AdherenceRate, 1e-9)
}

func TestScoreAdherence_ZeroStepsFullyAdherent(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n"} {
		rep := ScoreAdherence(text, 5)
		assert.Equal(t, 0, rep.TotalSteps)
		assert.Equal(t, 1.0, rep.AdherenceRate)
		assert.Equal(t, 0.0, rep.AvgWordsPerStep)
		assert.Equal(t, 0, rep.MaxWordsInStep)
	}
}

func TestScoreAdherence_SingleLineNoMarkers(t *testing.T) {
	text := "the whole answer sits on one line"

	within := ScoreAdherence(text, 7)
	assert.Equal(t, 1, within.TotalSteps)
	assert.Equal(t, 1.0, within.AdherenceRate)

	over := ScoreAdherence(text, 6)
	assert.Equal(t, 1, over.TotalSteps)
	assert.Equal(t, 0.0, over.AdherenceRate)
}

func TestScoreAdherence_FullAfterEnforce(t *testing.T) {
	inputs := []string{
		"1. The quick brown fox jumps over the lazy dog today\n2. ok",
		"Step 1: compute the total number of apples in every basket\nStep 2: subtract the eaten ones from that total",
		"- first bullet has many words in it\n  and a wrapped continuation line\n- second",
		"Initial: 20 lollipops and more words\nRemaining: 12 lollipops\nGave away: 20-12=8 lollipops in total",
		"Let's think step by step:\n1. Initially, the coin is heads up.\n2. John flips the coin, so it changes from heads to tails.",
	}

	for _, in := range inputs {
		for _, n := range []int{1, 2, 3, 5, 8} {
			rep := ScoreAdherence(Enforce(in, n), n)
			assert.Equal(t, 1.0, rep.AdherenceRate, "input=%q n=%d", in, n)
			assert.GreaterOrEqual(t, rep.AdherenceRate, 0.0)
		}
	}
}

func TestRenumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bullets", "- a b\n* c\n• d", "1. a b\n2. c\n3. d"},
		{"step-colon", "Step 3: x\nStep 9: y", "1. x\n2. y"},
		{"plain-lines", "first\n\nsecond", "1. first\n2. second"},
		{"already-numbered", "4. x\n7. y", "1. x\n2. y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Renumber(tt.text))
		})
	}
}

func TestRenumber_AfterEnforceKeepsContent(t *testing.T) {
	in := "- first bullet has many words\nStep 2: second step is long too\n• third"
	enforced := Enforce(in, 3)
	renumbered := Renumber(enforced)

	enforcedSteps := SplitSteps(enforced)
	lines := strings.Split(renumbered, "\n")
	require.Len(t, lines, len(enforcedSteps))
	for i, line := range lines {
		_, content := splitMarker(enforcedSteps[i])
		prefix := strconv.Itoa(i+1) + ". "
		require.True(t, strings.HasPrefix(line, prefix), "line %q", line)
		assert.Equal(t, strings.TrimSpace(content), strings.TrimPrefix(line, prefix))
	}
}

func TestSplitSteps(t *testing.T) {
	assert.Equal(t, []string{"1. a", "2. b\nc"}, SplitSteps("1. a\n2. b\nc"))
	assert.Equal(t, []string{"a", "b"}, SplitSteps("a\n  \nb"))
	assert.Nil(t, SplitSteps(""))
}
