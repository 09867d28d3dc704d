package kb

import "strings"

// Rule is a Horn clause: one consequent (head) and zero or more antecedents
// (body) evaluated conjunctively in order.
type Rule struct {
	Consequent  Clause
	Antecedents []Clause
}

// HasBody reports whether the rule has at least one antecedent.
func (r Rule) HasBody() bool { return len(r.Antecedents) > 0 }

// String renders the rule as source text: "h(X) :- a(X), b(X)." or "h."
func (r Rule) String() string {
	if len(r.Antecedents) == 0 {
		return r.Consequent.String() + "."
	}
	body := make([]string, len(r.Antecedents))
	for i, a := range r.Antecedents {
		body[i] = a.String()
	}
	return r.Consequent.String() + " :- " + strings.Join(body, ", ") + "."
}

// Equal compares head and body structurally.
func (r Rule) Equal(o Rule) bool {
	if !r.Consequent.Equal(o.Consequent) || len(r.Antecedents) != len(o.Antecedents) {
		return false
	}
	for i := range r.Antecedents {
		if !r.Antecedents[i].Equal(o.Antecedents[i]) {
			return false
		}
	}
	return true
}

// RuleBuilder assembles a Rule in source order: the consequent first, then
// antecedents one by one.
type RuleBuilder struct {
	rule    Rule
	headSet bool
}

// SetConsequent assigns the head. It may be called exactly once.
func (b *RuleBuilder) SetConsequent(c Clause) error {
	if b.headSet {
		return malformedRule("", "consequent already set to %s", b.rule.Consequent)
	}
	b.rule.Consequent = c
	b.headSet = true
	return nil
}

// AddAntecedent appends a body clause.
func (b *RuleBuilder) AddAntecedent(c Clause) {
	b.rule.Antecedents = append(b.rule.Antecedents, c)
}

// Build returns the completed rule. A rule without a consequent is malformed.
func (b *RuleBuilder) Build() (Rule, error) {
	if !b.headSet {
		return Rule{}, malformedRule("", "rule has no consequent")
	}
	return b.rule, nil
}
