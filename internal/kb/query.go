package kb

import "hornkb/internal/syntax"

// Query is a decoded directive: the goal clause and the marker text that
// distinguished it from a statement ("?" or "?-").
type Query struct {
	Goal   Clause
	Marker string
}

// Encode returns the combined fragment "clauseFragment|marker".
func (q Query) Encode() (string, error) {
	goal, err := EncodeClause(q.Goal)
	if err != nil {
		return "", err
	}
	return goal + BodySep + q.Marker, nil
}

// String renders the query as it would appear in source.
func (q Query) String() string {
	if q.Marker == "?-" {
		return "?- " + q.Goal.String() + "."
	}
	return q.Goal.String() + q.Marker
}

// Variables lists the goal's named variables in first-occurrence order.
func (q Query) Variables() []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range q.Goal.Args {
		collectVariables(a, seen, &out)
	}
	return out
}

// ExtractQuery decodes a directive production. The goal goes through the
// tree decoder; the marker is the literal text captured by the grammar and
// must be one of the configured markers.
func (a *Assembler) ExtractQuery(d *syntax.Directive) (Query, error) {
	if d == nil || d.Goal == nil {
		return Query{}, structural(syntax.Pos{}, "directive has no goal")
	}
	if !a.opts.acceptsMarker(d.Marker) {
		return Query{}, structural(d.Pos(), "unsupported directive marker %q", d.Marker)
	}
	goal, err := a.dec.Clause(d.Goal)
	if err != nil {
		return Query{}, err
	}
	return Query{Goal: goal, Marker: d.Marker}, nil
}

// ParseDirective decodes the combined "clauseFragment|marker" text and
// checks the marker against the configured set.
func (a *Assembler) ParseDirective(fragment string) (Query, error) {
	q, err := DecodeDirective(fragment)
	if err != nil {
		return Query{}, err
	}
	if !a.opts.acceptsMarker(q.Marker) {
		return Query{}, malformedClause(fragment, "unsupported directive marker %q", q.Marker)
	}
	return q, nil
}

// VisitClause is the incremental single-clause path: it decodes one bare
// clause production and appends it to the builder's facts.
func (a *Assembler) VisitClause(b *Builder, c *syntax.Clause) error {
	fact, err := a.dec.Clause(c)
	if err != nil {
		return err
	}
	b.AddFact(fact)
	return nil
}
