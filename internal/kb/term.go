package kb

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TermKind tags the variant of a Term.
type TermKind int

const (
	KindAtom TermKind = iota
	KindVariable
	KindCompound
)

func (k TermKind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindVariable:
		return "variable"
	case KindCompound:
		return "compound"
	}
	return "unknown"
}

// Term is an argument of a clause: Atom, Variable or Compound.
type Term interface {
	Kind() TermKind
	// String renders the term as source text, e.g. "car(red, 4)".
	String() string
	// Fragment renders the term the way the tree walk flattens it:
	// child fragments joined by single spaces, e.g. "car red 4".
	Fragment() string
	isTerm()
}

// Atom is a constant: a lowercase identifier or a number.
type Atom struct {
	Name string
}

// Variable is a logic variable: an identifier starting with an uppercase
// letter or '_'.
type Variable struct {
	Name string
}

// Compound is a functor applied to one or more argument terms.
type Compound struct {
	Functor string
	Args    []Term
}

func (Atom) Kind() TermKind     { return KindAtom }
func (Variable) Kind() TermKind { return KindVariable }
func (Compound) Kind() TermKind { return KindCompound }

func (Atom) isTerm()     {}
func (Variable) isTerm() {}
func (Compound) isTerm() {}

func (a Atom) String() string     { return a.Name }
func (v Variable) String() string { return v.Name }

func (a Atom) Fragment() string     { return a.Name }
func (v Variable) Fragment() string { return v.Name }

// IsNumber reports whether the atom is a numeric literal. Numbers start
// with an ASCII digit, so names such as "inf" or "nan" stay atoms.
func (a Atom) IsNumber() bool {
	if a.Name == "" || a.Name[0] < '0' || a.Name[0] > '9' {
		return false
	}
	_, err := strconv.ParseFloat(a.Name, 64)
	return err == nil
}

// IsAnonymous reports whether the variable is the anonymous variable "_".
func (v Variable) IsAnonymous() bool { return v.Name == "_" }

func (c Compound) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Functor + "(" + strings.Join(parts, ", ") + ")"
}

func (c Compound) Fragment() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Functor)
	for _, a := range c.Args {
		parts = append(parts, a.Fragment())
	}
	return strings.Join(parts, " ")
}

// NewTerm classifies a flat token: variables start with an uppercase letter
// or '_', everything else is an atom.
func NewTerm(text string) Term {
	if IsVariableName(text) {
		return Variable{Name: text}
	}
	return Atom{Name: text}
}

// IsVariableName reports whether text names a variable.
func IsVariableName(text string) bool {
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 {
		return false
	}
	return r == '_' || unicode.IsUpper(r)
}

// TermsEqual compares two terms structurally.
func TermsEqual(a, b Term) bool {
	switch a := a.(type) {
	case Atom:
		b, ok := b.(Atom)
		return ok && a.Name == b.Name
	case Variable:
		b, ok := b.(Variable)
		return ok && a.Name == b.Name
	case Compound:
		b, ok := b.(Compound)
		if !ok || a.Functor != b.Functor || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !TermsEqual(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

// Variables returns the distinct variable names in t, in first-occurrence
// order. The anonymous variable is skipped.
func Variables(t Term) []string {
	var out []string
	seen := make(map[string]bool)
	collectVariables(t, seen, &out)
	return out
}

func collectVariables(t Term, seen map[string]bool, out *[]string) {
	switch t := t.(type) {
	case Variable:
		if !t.IsAnonymous() && !seen[t.Name] {
			seen[t.Name] = true
			*out = append(*out, t.Name)
		}
	case Compound:
		for _, a := range t.Args {
			collectVariables(a, seen, out)
		}
	}
}
