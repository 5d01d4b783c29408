// Package prompt builds strategy-specific prompts and splits model output on
// the answer separator.
package prompt

// #region imports
import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/chain-of-draft/internal/complexity"
	"github.com/danielpatrickdp/chain-of-draft/internal/examples"
	"github.com/danielpatrickdp/chain-of-draft/internal/llm"
	"github.com/danielpatrickdp/chain-of-draft/internal/selector"
)

// #endregion

// #region constants

// Separator divides reasoning from the final answer in model output.
const Separator = "####"

// NoAnswer is the answer reported when the output has no separator.
const NoAnswer = "No clear answer found"

// #endregion

// #region prompt

// Prompt is a rendered system instruction and user message.
type Prompt struct {
	System string
	User   string
}

// Turns returns the prompt as a system turn followed by a user turn.
func (p Prompt) Turns() []llm.Turn {
	return []llm.Turn{
		{Role: llm.RoleSystem, Content: p.System},
		{Role: llm.RoleUser, Content: p.User},
	}
}

// Builder renders a prompt for one strategy.
type Builder interface {
	Strategy() selector.Strategy
	Build(problem, domain string, shots []examples.Example) Prompt
}

// ForStrategy returns the builder for s. maxWords is only used by Terse.
func ForStrategy(s selector.Strategy, maxWords int) (Builder, error) {
	switch s {
	case selector.Terse:
		return TerseBuilder{MaxWords: maxWords}, nil
	case selector.Verbose:
		return VerboseBuilder{}, nil
	}
	return nil, fmt.Errorf("prompt builder: %w: %q", selector.ErrUnknownStrategy, s)
}

// #endregion

// #region terse

// TerseBuilder produces Chain-of-Draft prompts capped at MaxWords per step.
type TerseBuilder struct {
	MaxWords int
}

var terseHints = map[string]string{
	"math":    "Use mathematical notation to keep steps concise.",
	"code":    "Use pseudocode or short code snippets when appropriate.",
	"physics": "Use equations and physical quantities with units.",
}

func (TerseBuilder) Strategy() selector.Strategy { return selector.Terse }

func (b TerseBuilder) Build(problem, domain string, shots []examples.Example) Prompt {
	system := fmt.Sprintf("You are an expert problem solver using Chain of Draft reasoning.\n"+
		"Think step by step, but only keep a minimum draft for each thinking step, with %d words at most per step.\n"+
		"Return the answer at the end after '%s'.", b.MaxWords, Separator)
	return Prompt{
		System: withHint(system, terseHints, domain),
		User:   userMessage(problem, shots),
	}
}

// #endregion

// #region verbose

// VerboseBuilder produces Chain-of-Thought prompts with no step limit.
type VerboseBuilder struct{}

var verboseHints = map[string]string{
	"math":    "Make sure to show all mathematical operations clearly.",
	"code":    "Be detailed about algorithms and implementation steps.",
	"physics": "Explain physical principles and equations in detail.",
}

func (VerboseBuilder) Strategy() selector.Strategy { return selector.Verbose }

func (VerboseBuilder) Build(problem, domain string, shots []examples.Example) Prompt {
	system := "Think step by step to answer the following question.\n" +
		"Return the answer at the end of the response after a separator " + Separator + "."
	return Prompt{
		System: withHint(system, verboseHints, domain),
		User:   userMessage(problem, shots),
	}
}

// #endregion

// #region render

func withHint(system string, hints map[string]string, domain string) string {
	if hint, ok := hints[complexity.NormalizeDomain(domain)]; ok {
		return system + "\n" + hint
	}
	return system
}

func userMessage(problem string, shots []examples.Example) string {
	if len(shots) == 0 {
		return "Problem: " + problem
	}
	var sb strings.Builder
	for _, ex := range shots {
		fmt.Fprintf(&sb, "\nProblem: %s\nSolution:\n%s\n%s\n%s\n", ex.Problem, ex.Reasoning, Separator, ex.Answer)
	}
	sb.WriteString("\nProblem: ")
	sb.WriteString(problem)
	return sb.String()
}

// #endregion

// #region split

// SplitAnswer splits text on the first separator. Both sides are trimmed.
// Without a separator the whole text is reasoning and the answer is NoAnswer.
func SplitAnswer(text string) (reasoning, answer string) {
	before, after, found := strings.Cut(text, Separator)
	if !found {
		return strings.TrimSpace(text), NoAnswer
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// #endregion
