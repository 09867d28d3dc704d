package kb

import (
	"sort"
	"strings"
)

// KnowledgeBase is the decoded program handed to a reasoning engine. Facts,
// rules and queries keep source order; nothing here reorders or deduplicates
// them, since first-match resolution depends on that order.
type KnowledgeBase struct {
	Facts   []Clause
	Rules   []Rule
	Queries []Query
}

// PredicateInfo summarizes one predicate indicator.
type PredicateInfo struct {
	Name  string
	Arity int
	Facts int
	Rules int
}

// Indicator returns "name/arity".
func (p PredicateInfo) Indicator() string {
	return Clause{Name: p.Name, Args: make([]Term, p.Arity)}.Indicator()
}

// Stats contains knowledge base counts.
type Stats struct {
	Facts      int `json:"facts"`
	Rules      int `json:"rules"`
	Queries    int `json:"queries"`
	Predicates int `json:"predicates"`
}

// Query returns the first query, if any.
func (k *KnowledgeBase) Query() (Query, bool) {
	if len(k.Queries) == 0 {
		return Query{}, false
	}
	return k.Queries[0], true
}

// FactsFor returns the facts for name/arity in source order.
func (k *KnowledgeBase) FactsFor(name string, arity int) []Clause {
	var out []Clause
	for _, f := range k.Facts {
		if f.Name == name && len(f.Args) == arity {
			out = append(out, f)
		}
	}
	return out
}

// RulesFor returns the rules whose consequent is name/arity, in source order.
func (k *KnowledgeBase) RulesFor(name string, arity int) []Rule {
	var out []Rule
	for _, r := range k.Rules {
		if r.Consequent.Name == name && len(r.Consequent.Args) == arity {
			out = append(out, r)
		}
	}
	return out
}

// Predicates returns one entry per defined predicate, sorted by name and
// arity. The sort applies to this report only.
func (k *KnowledgeBase) Predicates() []PredicateInfo {
	type key struct {
		name  string
		arity int
	}
	index := make(map[key]*PredicateInfo)
	get := func(c Clause) *PredicateInfo {
		pk := key{c.Name, len(c.Args)}
		if p, ok := index[pk]; ok {
			return p
		}
		p := &PredicateInfo{Name: c.Name, Arity: len(c.Args)}
		index[pk] = p
		return p
	}
	for _, f := range k.Facts {
		get(f).Facts++
	}
	for _, r := range k.Rules {
		get(r.Consequent).Rules++
	}

	out := make([]PredicateInfo, 0, len(index))
	for _, p := range index {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arity < out[j].Arity
	})
	return out
}

// Stats returns counts for reporting.
func (k *KnowledgeBase) Stats() Stats {
	return Stats{
		Facts:      len(k.Facts),
		Rules:      len(k.Rules),
		Queries:    len(k.Queries),
		Predicates: len(k.Predicates()),
	}
}

// String renders the knowledge base as source text: facts, then rules, then
// queries, one per line.
func (k *KnowledgeBase) String() string {
	var sb strings.Builder
	for _, f := range k.Facts {
		sb.WriteString(f.String())
		sb.WriteString(".\n")
	}
	for _, r := range k.Rules {
		sb.WriteString(r.String())
		sb.WriteString("\n")
	}
	for _, q := range k.Queries {
		sb.WriteString(q.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Merge concatenates knowledge bases in argument order. Each list keeps the
// order it had within its source.
func Merge(bases ...*KnowledgeBase) *KnowledgeBase {
	out := &KnowledgeBase{}
	for _, b := range bases {
		if b == nil {
			continue
		}
		out.Facts = append(out.Facts, b.Facts...)
		out.Rules = append(out.Rules, b.Rules...)
		out.Queries = append(out.Queries, b.Queries...)
	}
	return out
}
