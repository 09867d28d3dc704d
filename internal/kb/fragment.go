package kb

import "strings"

// Delimiters of the textual fragment encoding:
//
//	clause   name///arg1,arg2
//	rule     head|body1|body2
//	program  item&item&item      (rules and facts are joined separately)
//	query    clause|marker
//
// The encoding carries no escaping, so any name or argument containing one
// of these delimiters cannot be encoded.
const (
	NameSep = "///"
	ArgSep  = ","
	BodySep = "|"
	ItemSep = "&"
)

var reservedDelimiters = []string{NameSep, ArgSep, BodySep, ItemSep}

func checkReserved(text string) error {
	for _, d := range reservedDelimiters {
		if strings.Contains(text, d) {
			return reserved(text, d)
		}
	}
	return nil
}

// ============================================================================
// Encoding
// ============================================================================

// EncodeClause renders a clause as "name///arg1,arg2". Compound arguments
// are rejected since their source text contains ArgSep.
func EncodeClause(c Clause) (string, error) {
	if c.Name == "" {
		return "", malformedClause("", "empty predicate name")
	}
	if err := checkReserved(c.Name); err != nil {
		return "", err
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		text := a.String()
		if a.Kind() == KindCompound {
			return "", reserved(text, ArgSep)
		}
		if err := checkReserved(text); err != nil {
			return "", err
		}
		args[i] = text
	}
	return c.Name + NameSep + strings.Join(args, ArgSep), nil
}

// EncodeRule renders a rule as "head|body1|body2".
func EncodeRule(r Rule) (string, error) {
	parts := make([]string, 0, len(r.Antecedents)+1)
	head, err := EncodeClause(r.Consequent)
	if err != nil {
		return "", err
	}
	parts = append(parts, head)
	for _, a := range r.Antecedents {
		body, err := EncodeClause(a)
		if err != nil {
			return "", err
		}
		parts = append(parts, body)
	}
	return strings.Join(parts, BodySep), nil
}

// EncodeRules joins encoded rules with ItemSep. No rules encode to "".
func EncodeRules(rules []Rule) (string, error) {
	parts := make([]string, len(rules))
	for i, r := range rules {
		s, err := EncodeRule(r)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ItemSep), nil
}

// EncodeFacts joins encoded facts with ItemSep. No facts encode to "".
func EncodeFacts(facts []Clause) (string, error) {
	parts := make([]string, len(facts))
	for i, f := range facts {
		s, err := EncodeClause(f)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ItemSep), nil
}

// EncodeProgram returns the two aggregate fragments of a knowledge base.
func EncodeProgram(base *KnowledgeBase) (rulesText, factsText string, err error) {
	if rulesText, err = EncodeRules(base.Rules); err != nil {
		return "", "", err
	}
	if factsText, err = EncodeFacts(base.Facts); err != nil {
		return "", "", err
	}
	return rulesText, factsText, nil
}

// ============================================================================
// Decoding
// ============================================================================

// DecodeClauseFragment decodes "name///arg1,arg2". The name/argument split
// happens once, on the first separator. An empty argument list yields a
// zero-arity clause. Tokens are not trimmed.
func DecodeClauseFragment(fragment string) (Clause, error) {
	name, rawArgs, ok := strings.Cut(fragment, NameSep)
	if !ok {
		return Clause{}, malformedClause(fragment, "missing %q separator", NameSep)
	}
	if name == "" {
		return Clause{}, malformedClause(fragment, "empty predicate name")
	}
	if rawArgs == "" {
		return Clause{Name: name, Args: []Term{}}, nil
	}

	tokens := strings.Split(rawArgs, ArgSep)
	args := make([]Term, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			return Clause{}, malformedClause(fragment, "empty argument at position %d", i)
		}
		if strings.Contains(tok, NameSep) {
			return Clause{}, malformedClause(fragment, "repeated %q separator", NameSep)
		}
		args[i] = NewTerm(tok)
	}
	return Clause{Name: name, Args: args}, nil
}

// DecodeRuleFragment decodes "head|body1|body2". A segment with no BodySep
// is a head-only rule.
func DecodeRuleFragment(segment string) (Rule, error) {
	if segment == "" {
		return Rule{}, malformedRule(segment, "empty rule")
	}

	var b RuleBuilder
	for i, part := range strings.Split(segment, BodySep) {
		c, err := DecodeClauseFragment(part)
		if err != nil {
			return Rule{}, err
		}
		if i == 0 {
			if err := b.SetConsequent(c); err != nil {
				return Rule{}, err
			}
			continue
		}
		b.AddAntecedent(c)
	}
	return b.Build()
}

// DecodeRules decodes the aggregate rules fragment. Empty text means no
// rules rather than one empty rule.
func DecodeRules(text string) ([]Rule, error) {
	if text == "" {
		return nil, nil
	}
	segments := strings.Split(text, ItemSep)
	rules := make([]Rule, 0, len(segments))
	for _, seg := range segments {
		r, err := DecodeRuleFragment(seg)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// DecodeFacts decodes the aggregate facts fragment. Empty text means no facts.
func DecodeFacts(text string) ([]Clause, error) {
	if text == "" {
		return nil, nil
	}
	segments := strings.Split(text, ItemSep)
	facts := make([]Clause, 0, len(segments))
	for _, seg := range segments {
		c, err := DecodeClauseFragment(seg)
		if err != nil {
			return nil, err
		}
		facts = append(facts, c)
	}
	return facts, nil
}

// SplitDirective splits "clause|marker" on the last BodySep into the query
// fragment and the marker text.
func SplitDirective(fragment string) (query, marker string, err error) {
	idx := strings.LastIndex(fragment, BodySep)
	if idx < 0 {
		return "", "", malformedClause(fragment, "missing directive marker")
	}
	query, marker = fragment[:idx], fragment[idx+len(BodySep):]
	if marker == "" {
		return "", "", malformedClause(fragment, "empty directive marker")
	}
	return query, marker, nil
}

// DecodeDirective decodes "clause|marker" into a Query.
func DecodeDirective(fragment string) (Query, error) {
	query, marker, err := SplitDirective(fragment)
	if err != nil {
		return Query{}, err
	}
	goal, err := DecodeClauseFragment(query)
	if err != nil {
		return Query{}, err
	}
	return Query{Goal: goal, Marker: marker}, nil
}

// DecodeSpaced decodes a flattened tree-walk fragment such as "likes tom X":
// the first word is the predicate name, the remaining words are arguments.
// Only flat clauses survive this path; nested terms are already flattened.
func DecodeSpaced(fragment string) (Clause, error) {
	words := strings.Split(fragment, " ")
	if words[0] == "" {
		return Clause{}, malformedClause(fragment, "empty predicate name")
	}
	args := make([]Term, 0, len(words)-1)
	for _, w := range words[1:] {
		if w == "" {
			return Clause{}, malformedClause(fragment, "empty argument")
		}
		args = append(args, NewTerm(w))
	}
	return Clause{Name: words[0], Args: args}, nil
}
