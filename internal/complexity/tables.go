package complexity

import "strings"

// #region defaults

// DefaultDomain is the bucket used when no domain is given.
const DefaultDomain = "general"

const defaultBaseBudget = 5

var defaultBaseBudgets = map[string]int{
	"math":         6,
	"logic":        5,
	"common_sense": 4,
	"physics":      7,
	"chemistry":    6,
	"biology":      5,
	"code":         8,
	"puzzle":       5,
	"general":      5,
}

var defaultIndicators = map[string][]string{
	"math": {
		"integral", "derivative", "equation", "proof", "theorem", "calculus",
		"matrix", "vector", "linear algebra", "probability", "statistics",
		"geometric series", "differential", "polynomial", "factorial",
	},
	"logic": {
		"if and only if", "necessary condition", "sufficient", "contradiction",
		"syllogism", "premise", "fallacy", "converse", "counterexample",
		"logical equivalence", "negation", "disjunction", "conjunction",
	},
	"code": {
		"recursion", "algorithm", "complexity", "optimization", "function",
		"class", "object", "inheritance", "polymorphism", "data structure",
		"binary tree", "hash table", "graph", "dynamic programming",
	},
	"physics": {
		"quantum", "relativity", "momentum", "force", "acceleration",
		"energy", "thermodynamics", "electric field", "magnetic field",
		"potential", "entropy", "wavelength", "frequency",
	},
	"chemistry": {
		"reaction", "molecule", "compound", "element", "equilibrium",
		"acid", "base", "oxidation", "reduction", "catalyst", "isomer",
	},
	"biology": {
		"gene", "protein", "enzyme", "cell", "tissue", "organ", "system",
		"metabolism", "photosynthesis", "respiration", "homeostasis",
	},
	"puzzle": {
		"constraint", "sequence", "pattern", "rules", "probability",
		"combination", "permutation", "optimal", "strategy",
	},
}

// #endregion defaults

// #region tables

// Tables holds the per-domain base budgets and complexity keyword lists.
// Domains missing from BaseBudgets use DefaultBase; domains missing from
// Indicators contribute no keyword signal.
type Tables struct {
	BaseBudgets map[string]int
	Indicators  map[string][]string
	DefaultBase int
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	t := Tables{
		BaseBudgets: make(map[string]int, len(defaultBaseBudgets)),
		Indicators:  make(map[string][]string, len(defaultIndicators)),
		DefaultBase: defaultBaseBudget,
	}
	for d, b := range defaultBaseBudgets {
		t.BaseBudgets[d] = b
	}
	for d, kws := range defaultIndicators {
		t.Indicators[d] = append([]string(nil), kws...)
	}
	return t
}

// WithBaseBudget returns a copy of t with the base budget for domain set.
func (t Tables) WithBaseBudget(domain string, budget int) Tables {
	out := t.clone()
	out.BaseBudgets[NormalizeDomain(domain)] = budget
	return out
}

// WithIndicators returns a copy of t with the keyword list for domain replaced.
func (t Tables) WithIndicators(domain string, keywords []string) Tables {
	out := t.clone()
	out.Indicators[NormalizeDomain(domain)] = append([]string(nil), keywords...)
	return out
}

func (t Tables) clone() Tables {
	out := Tables{
		BaseBudgets: make(map[string]int, len(t.BaseBudgets)+1),
		Indicators:  make(map[string][]string, len(t.Indicators)+1),
		DefaultBase: t.DefaultBase,
	}
	for d, b := range t.BaseBudgets {
		out.BaseBudgets[d] = b
	}
	for d, kws := range t.Indicators {
		out.Indicators[d] = kws
	}
	return out
}

func (t Tables) baseFor(domain string) int {
	if b, ok := t.BaseBudgets[domain]; ok {
		return b
	}
	if t.DefaultBase > 0 {
		return t.DefaultBase
	}
	return defaultBaseBudget
}

// #endregion tables

// NormalizeDomain lowercases and trims a domain tag. Empty maps to DefaultDomain.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" {
		return DefaultDomain
	}
	return d
}
