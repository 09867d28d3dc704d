package kb

import "fmt"

// Clause is a predicate name applied to an ordered list of arguments.
// Argument order is positional and significant.
type Clause struct {
	Name string
	Args []Term
}

// NewClause builds a clause, rejecting an empty predicate name.
func NewClause(name string, args ...Term) (Clause, error) {
	if name == "" {
		return Clause{}, malformedClause("", "empty predicate name")
	}
	return Clause{Name: name, Args: args}, nil
}

// MustNewClause builds a clause from flat argument tokens and panics on an
// empty name. Intended for tests and static tables.
func MustNewClause(name string, args ...string) Clause {
	terms := make([]Term, len(args))
	for i, a := range args {
		terms[i] = NewTerm(a)
	}
	c, err := NewClause(name, terms...)
	if err != nil {
		panic(err)
	}
	return c
}

// Arity is the number of arguments.
func (c Clause) Arity() int { return len(c.Args) }

// Indicator returns the predicate indicator "name/arity".
func (c Clause) Indicator() string { return fmt.Sprintf("%s/%d", c.Name, len(c.Args)) }

// Arguments returns the arguments as text tokens. A zero-arity clause
// returns an empty (non-nil) slice.
func (c Clause) Arguments() []string {
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		out[i] = a.String()
	}
	return out
}

// IsGround reports whether the clause contains no variables.
func (c Clause) IsGround() bool {
	for _, a := range c.Args {
		if hasVariable(a) {
			return false
		}
	}
	return true
}

func hasVariable(t Term) bool {
	switch t := t.(type) {
	case Variable:
		return true
	case Compound:
		for _, a := range t.Args {
			if hasVariable(a) {
				return true
			}
		}
	}
	return false
}

// Equal compares name and arguments structurally.
func (c Clause) Equal(o Clause) bool {
	if c.Name != o.Name || len(c.Args) != len(o.Args) {
		return false
	}
	for i := range c.Args {
		if !TermsEqual(c.Args[i], o.Args[i]) {
			return false
		}
	}
	return true
}

// String renders the clause as source text without a terminator:
// "parent(tom, bob)" or "raining".
func (c Clause) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return Compound{Functor: c.Name, Args: c.Args}.String()
}
