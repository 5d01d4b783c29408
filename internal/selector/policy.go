package selector

// #region imports
import (
	"sync"

	"github.com/danielpatrickdp/chain-of-draft/internal/complexity"
)

// #endregion

// #region domain-policy

// DefaultPolicyKey names the fallback policy. It always exists.
const DefaultPolicyKey = "default"

// DomainPolicy holds the thresholds that push a domain toward Verbose.
type DomainPolicy struct {
	// Verbose when the complexity score is above this.
	ComplexityThreshold int `json:"complexity_threshold" yaml:"complexity_threshold"`
	// Verbose when recorded Terse accuracy is below this.
	AccuracyThreshold float64 `json:"accuracy_threshold" yaml:"accuracy_threshold"`
}

// PolicyUpdate carries a partial update; nil fields are left untouched.
type PolicyUpdate struct {
	ComplexityThreshold *int     `json:"complexity_threshold,omitempty" yaml:"complexity_threshold,omitempty"`
	AccuracyThreshold   *float64 `json:"accuracy_threshold,omitempty" yaml:"accuracy_threshold,omitempty"`
}

// DefaultPolicies returns the built-in policy seed.
func DefaultPolicies() map[string]DomainPolicy {
	return map[string]DomainPolicy{
		"math":           {ComplexityThreshold: 7, AccuracyThreshold: 0.85},
		"code":           {ComplexityThreshold: 8, AccuracyThreshold: 0.9},
		"physics":        {ComplexityThreshold: 7, AccuracyThreshold: 0.85},
		"chemistry":      {ComplexityThreshold: 7, AccuracyThreshold: 0.85},
		"biology":        {ComplexityThreshold: 6, AccuracyThreshold: 0.85},
		"logic":          {ComplexityThreshold: 6, AccuracyThreshold: 0.9},
		"puzzle":         {ComplexityThreshold: 7, AccuracyThreshold: 0.85},
		DefaultPolicyKey: {ComplexityThreshold: 6, AccuracyThreshold: 0.8},
	}
}

// #endregion

// #region table

// PolicyTable is the mutable domain → policy mapping. Reads far outnumber
// writes, so lookups take a read lock and return values, never references.
type PolicyTable struct {
	mu       sync.RWMutex
	policies map[string]DomainPolicy
}

// NewPolicyTable seeds a table. A nil seed uses DefaultPolicies. A seed
// without a "default" entry gets the built-in default.
func NewPolicyTable(seed map[string]DomainPolicy) *PolicyTable {
	if seed == nil {
		seed = DefaultPolicies()
	}
	policies := make(map[string]DomainPolicy, len(seed)+1)
	for d, p := range seed {
		policies[complexity.NormalizeDomain(d)] = p
	}
	if _, ok := policies[DefaultPolicyKey]; !ok {
		policies[DefaultPolicyKey] = DefaultPolicies()[DefaultPolicyKey]
	}
	return &PolicyTable{policies: policies}
}

// Get returns the policy for domain, falling back to "default". Never fails.
func (t *PolicyTable) Get(domain string) DomainPolicy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p, ok := t.policies[complexity.NormalizeDomain(domain)]; ok {
		return p
	}
	return t.policies[DefaultPolicyKey]
}

// Update applies a partial update to domain, cloning "default" first when
// the domain has no entry yet. Returns the resulting policy.
func (t *PolicyTable) Update(domain string, u PolicyUpdate) DomainPolicy {
	domain = complexity.NormalizeDomain(domain)

	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.policies[domain]
	if !ok {
		p = t.policies[DefaultPolicyKey]
	}
	if u.ComplexityThreshold != nil {
		p.ComplexityThreshold = *u.ComplexityThreshold
	}
	if u.AccuracyThreshold != nil {
		p.AccuracyThreshold = *u.AccuracyThreshold
	}
	t.policies[domain] = p
	return p
}

// Snapshot returns a copy of every policy.
func (t *PolicyTable) Snapshot() map[string]DomainPolicy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]DomainPolicy, len(t.policies))
	for d, p := range t.policies {
		out[d] = p
	}
	return out
}

// #endregion
