// Package format keeps terse reasoning within its per-step word budget and
// reports how well a piece of reasoning respects that budget.
package format

// #region imports
import (
	"fmt"
	"regexp"
	"strings"
)

// #endregion

// #region patterns

// markerPattern matches a step marker at the start of a line: "3.", "Step 2:",
// or a "-", "*", "•" bullet. Trailing whitespace is part of the marker.
var markerPattern = regexp.MustCompile(`^\s*(?:\d+\.\s*|Step\s+\d+:\s*|[-*•]\s+)`)

// #endregion

// #region report

// AdherenceReport summarizes per-step word counts against a budget.
type AdherenceReport struct {
	TotalSteps       int     `json:"total_steps"`
	StepsWithinLimit int     `json:"steps_within_limit"`
	AvgWordsPerStep  float64 `json:"average_words_per_step"`
	MaxWordsInStep   int     `json:"max_words_in_any_step"`
	AdherenceRate    float64 `json:"adherence_rate"`
	StepCounts       []int   `json:"step_counts"`
}

// #endregion

// #region enforce

// Enforce truncates every step whose content exceeds maxWords words.
// Markers are kept and not counted. Steps already within budget are
// returned byte-identical. Steps are joined with newlines. Budgets below 1
// are treated as 1 so that no step is emptied.
func Enforce(text string, maxWords int) string {
	if maxWords < 1 {
		maxWords = 1
	}
	steps := SplitSteps(text)
	out := make([]string, len(steps))
	for i, step := range steps {
		out[i] = enforceStep(step, maxWords)
	}
	return strings.Join(out, "\n")
}

func enforceStep(step string, maxWords int) string {
	marker, content := splitMarker(step)
	words := strings.Fields(content)
	if len(words) <= maxWords {
		return step
	}
	return marker + strings.Join(words[:maxWords], " ")
}

// #endregion

// #region score

// ScoreAdherence counts words per step (markers excluded) without modifying
// the text. An input with no steps is fully adherent.
func ScoreAdherence(text string, maxWords int) AdherenceReport {
	steps := SplitSteps(text)
	rep := AdherenceReport{
		TotalSteps: len(steps),
		StepCounts: make([]int, 0, len(steps)),
	}

	total := 0
	for _, step := range steps {
		_, content := splitMarker(step)
		n := len(strings.Fields(content))
		rep.StepCounts = append(rep.StepCounts, n)
		total += n
		if n <= maxWords {
			rep.StepsWithinLimit++
		}
		if n > rep.MaxWordsInStep {
			rep.MaxWordsInStep = n
		}
	}

	if rep.TotalSteps == 0 {
		rep.AdherenceRate = 1.0
		return rep
	}
	rep.AvgWordsPerStep = float64(total) / float64(rep.TotalSteps)
	rep.AdherenceRate = float64(rep.StepsWithinLimit) / float64(rep.TotalSteps)
	return rep
}

// #endregion

// #region renumber

// Renumber rewrites every step as "N. content" with sequential numbering,
// whatever marker style the input used.
func Renumber(text string) string {
	steps := SplitSteps(text)
	out := make([]string, len(steps))
	for i, step := range steps {
		_, content := splitMarker(step)
		out[i] = fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(content))
	}
	return strings.Join(out, "\n")
}

// #endregion

// #region split

// SplitSteps segments reasoning into steps. When any line starts with a
// step marker, each marker line opens a step and following lines join it.
// Lines before the first marker form their own step. Without markers every
// non-blank line is a step.
func SplitSteps(text string) []string {
	lines := strings.Split(text, "\n")
	if !hasMarkers(lines) {
		var steps []string
		for _, line := range lines {
			if s := strings.TrimSpace(line); s != "" {
				steps = append(steps, s)
			}
		}
		return steps
	}

	var steps []string
	var cur strings.Builder
	started := false
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			steps = append(steps, cur.String())
		}
		cur.Reset()
		started = false
	}

	for _, line := range lines {
		if markerPattern.MatchString(line) {
			flush()
			cur.WriteString(line)
			started = true
			continue
		}
		if started {
			cur.WriteString("\n")
		}
		cur.WriteString(line)
		started = true
	}
	flush()
	return steps
}

func hasMarkers(lines []string) bool {
	for _, line := range lines {
		if markerPattern.MatchString(line) {
			return true
		}
	}
	return false
}

// splitMarker separates the leading marker from step content.
func splitMarker(step string) (marker, content string) {
	loc := markerPattern.FindStringIndex(step)
	if loc == nil {
		return "", step
	}
	return step[:loc[1]], step[loc[1]:]
}

// #endregion
