package examples

import (
	"regexp"
	"strings"

	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #region seed

const (
	lollipops = "Jason had 20 lollipops. He gave Denny some lollipops. Now Jason has 12 lollipops. How many lollipops did Jason give to Denny?"
	coinFlips = "A coin is heads up. John flips the coin. Mary flips the coin. Paul flips the coin. Susan does not flip the coin. Is the coin still heads up?"
	carAccel  = "A car accelerates from 0 to 60 mph in 5 seconds. What is its acceleration in mph/s?"
)

// SeedExamples returns the built-in examples loaded into an empty store.
func SeedExamples() []Example {
	return []Example{
		{
			Problem:   lollipops,
			Reasoning: "Let's think through this step by step:\n1. Initially, Jason had 20 lollipops.\n2. After giving some to Denny, Jason now has 12 lollipops.\n3. To find out how many lollipops Jason gave to Denny, we need to calculate the difference between the initial number of lollipops and the remaining number.\n4. We can set up a simple subtraction problem: Initial number of lollipops - Remaining number of lollipops = Lollipops given to Denny\n5. Putting in the numbers: 20 - 12 = Lollipops given to Denny\n6. Solving the subtraction: 20 - 12 = 8",
			Answer:    "8 lollipops",
			Domain:    "math",
			Approach:  selector.Verbose,
		},
		{
			Problem:   lollipops,
			Reasoning: "Initial: 20 lollipops\nRemaining: 12 lollipops\nGave away: 20-12=8 lollipops",
			Answer:    "8 lollipops",
			Domain:    "math",
			Approach:  selector.Terse,
		},
		{
			Problem:   coinFlips,
			Reasoning: "Let's track the state of the coin through each flip:\n1. Initially, the coin is heads up.\n2. John flips the coin, so it changes from heads to tails.\n3. Mary flips the coin, so it changes from tails to heads.\n4. Paul flips the coin, so it changes from heads to tails.\n5. Susan does not flip the coin, so it remains tails.\nTherefore, the coin is tails up, which means it is not still heads up.",
			Answer:    "No",
			Domain:    "logic",
			Approach:  selector.Verbose,
		},
		{
			Problem:   coinFlips,
			Reasoning: "H→J flips→T\nT→M flips→H\nH→P flips→T\nT→S no flip→T\nFinal: tails",
			Answer:    "No",
			Domain:    "logic",
			Approach:  selector.Terse,
		},
		{
			Problem:   carAccel,
			Reasoning: "Let's solve this problem step by step:\n1. We know the initial velocity is 0 mph.\n2. The final velocity is 60 mph.\n3. The time taken is 5 seconds.\n4. Acceleration is the rate of change of velocity with respect to time.\n5. Using the formula: acceleration = (final velocity - initial velocity) / time\n6. Substituting the values: acceleration = (60 mph - 0 mph) / 5 seconds\n7. Simplifying: acceleration = 60 mph / 5 seconds = 12 mph/s",
			Answer:    "12 mph/s",
			Domain:    "physics",
			Approach:  selector.Verbose,
		},
		{
			Problem:   carAccel,
			Reasoning: "a = Δv/Δt\na = (60-0)/5\na = 12 mph/s",
			Answer:    "12 mph/s",
			Domain:    "physics",
			Approach:  selector.Terse,
		},
	}
}

// #endregion seed

// #region transform

var (
	numberedStep   = regexp.MustCompile(`\d+\.`)
	hasNumberedRef = regexp.MustCompile(`[1-9]\.`)
)

// TransformToTerse derives a Chain-of-Draft example from a verbose one by
// truncating each reasoning step to maxWords words.
func TransformToTerse(ex Example, maxWords int) Example {
	steps := extractSteps(ex.Reasoning)
	drafts := make([]string, len(steps))
	for i, step := range steps {
		drafts[i] = truncateWords(step, maxWords)
	}
	return Example{
		Problem:   ex.Problem,
		Reasoning: strings.Join(drafts, "\n"),
		Answer:    ex.Answer,
		Domain:    ex.Domain,
		Approach:  selector.Terse,
	}
}

func extractSteps(reasoning string) []string {
	var parts []string
	if hasNumberedRef.MatchString(reasoning) {
		parts = numberedStep.Split(reasoning, -1)
	} else {
		parts = strings.Split(reasoning, "\n")
	}
	var steps []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

func truncateWords(step string, maxWords int) string {
	if maxWords < 0 {
		maxWords = 0
	}
	words := strings.Fields(step)
	if len(words) <= maxWords {
		return step
	}
	return strings.Join(words[:maxWords], " ")
}

// #endregion transform
