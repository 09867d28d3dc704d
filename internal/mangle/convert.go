// Package mangle hands decoded knowledge bases to the Google Mangle engine.
// Clauses become Mangle atoms, rules become Mangle clauses, and queries are
// answered by matching the goal against the evaluated fact store.
package mangle

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"

	"hornkb/internal/kb"
)

var (
	// ErrUnsupportedTerm is returned for terms Mangle has no representation
	// for, such as compound arguments.
	ErrUnsupportedTerm = errors.New("unsupported term")

	// ErrNotLoaded is returned by Ask before a knowledge base was loaded.
	ErrNotLoaded = errors.New("no knowledge base loaded")

	// ErrFactLimit is returned when evaluation derives more facts than allowed.
	ErrFactLimit = errors.New("fact limit exceeded")
)

// ToTerm converts one argument. Atoms become name constants ("/tom"),
// numeric atoms become number or float constants, variables stay variables.
func ToTerm(t kb.Term) (ast.BaseTerm, error) {
	switch t := t.(type) {
	case kb.Variable:
		return ast.Variable{Symbol: t.Name}, nil

	case kb.Atom:
		if n, err := strconv.ParseInt(t.Name, 10, 64); err == nil {
			return ast.Number(n), nil
		}
		if t.IsNumber() {
			f, _ := strconv.ParseFloat(t.Name, 64)
			return ast.Float64(f), nil
		}
		c, err := ast.Name("/" + t.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: atom %q: %v", ErrUnsupportedTerm, t.Name, err)
		}
		return c, nil

	case kb.Compound:
		return nil, fmt.Errorf("%w: compound %s", ErrUnsupportedTerm, t)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedTerm, t)
}

// ToAtom converts a clause into a Mangle atom of the same name and arity.
func ToAtom(c kb.Clause) (ast.Atom, error) {
	args := make([]ast.BaseTerm, len(c.Args))
	for i, a := range c.Args {
		term, err := ToTerm(a)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("failed to convert %s argument %d: %w", c.Indicator(), i, err)
		}
		args[i] = term
	}
	return ast.NewAtom(c.Name, args...), nil
}

// ToClause converts a rule. Antecedents become premises in source order.
func ToClause(r kb.Rule) (ast.Clause, error) {
	head, err := ToAtom(r.Consequent)
	if err != nil {
		return ast.Clause{}, err
	}
	if !r.HasBody() {
		return ast.Clause{Head: head}, nil
	}
	premises := make([]ast.Term, len(r.Antecedents))
	for i, a := range r.Antecedents {
		atom, err := ToAtom(a)
		if err != nil {
			return ast.Clause{}, err
		}
		premises[i] = atom
	}
	return ast.Clause{Head: head, Premises: premises}, nil
}

// ToSourceUnit converts a whole knowledge base: facts first, then rules.
// Queries are not part of the program.
func ToSourceUnit(base *kb.KnowledgeBase) (parse.SourceUnit, error) {
	clauses := make([]ast.Clause, 0, len(base.Facts)+len(base.Rules))
	for _, f := range base.Facts {
		atom, err := ToAtom(f)
		if err != nil {
			return parse.SourceUnit{}, err
		}
		clauses = append(clauses, ast.Clause{Head: atom})
	}
	for _, r := range base.Rules {
		c, err := ToClause(r)
		if err != nil {
			return parse.SourceUnit{}, err
		}
		clauses = append(clauses, c)
	}
	return parse.SourceUnit{Clauses: clauses}, nil
}

// Render writes the knowledge base as Mangle source text and checks that
// Mangle's own parser accepts it.
func Render(base *kb.KnowledgeBase) (string, error) {
	unit, err := ToSourceUnit(base)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, c := range unit.Clauses {
		atoms := []ast.Atom{c.Head}
		for _, p := range c.Premises {
			atom, ok := p.(ast.Atom)
			if !ok {
				return "", fmt.Errorf("%w: premise %s", ErrUnsupportedTerm, p)
			}
			atoms = append(atoms, atom)
		}
		names := variableNames(atoms)

		sb.WriteString(renderAtom(atoms[0], names))
		for i, atom := range atoms[1:] {
			if i == 0 {
				sb.WriteString(" :- ")
			} else {
				sb.WriteString(", ")
			}
			sb.WriteString(renderAtom(atom, names))
		}
		sb.WriteString(".\n")
	}

	text := sb.String()
	if _, err := parse.Unit(bytes.NewReader([]byte(text))); err != nil {
		return "", fmt.Errorf("failed to parse rendered program: %w", err)
	}
	return text, nil
}

// renderAtom always writes the argument list: Mangle has no bare
// zero-arity atoms.
func renderAtom(a ast.Atom, names map[string]string) string {
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		if v, ok := arg.(ast.Variable); ok {
			if name, renamed := names[v.Symbol]; renamed {
				args[i] = name
				continue
			}
		}
		args[i] = arg.String()
	}
	return a.Predicate.Symbol + "(" + strings.Join(args, ", ") + ")"
}

// variableNames maps each named variable that starts with '_' to a name
// Mangle accepts, unique within the clause. "_" itself is kept.
func variableNames(atoms []ast.Atom) map[string]string {
	used := make(map[string]bool)
	var hidden []string
	for _, a := range atoms {
		for _, arg := range a.Args {
			v, ok := arg.(ast.Variable)
			if !ok || used[v.Symbol] {
				continue
			}
			used[v.Symbol] = true
			if v.Symbol != "_" && strings.HasPrefix(v.Symbol, "_") {
				hidden = append(hidden, v.Symbol)
			}
		}
	}

	names := make(map[string]string, len(hidden))
	for _, sym := range hidden {
		base := "V" + strings.TrimLeft(sym, "_")
		name := base
		for n := 1; used[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		used[name] = true
		names[sym] = name
	}
	return names
}

// FromAtom converts a ground Mangle atom back into a clause.
func FromAtom(a ast.Atom) (kb.Clause, error) {
	args := make([]kb.Term, len(a.Args))
	for i, arg := range a.Args {
		t, err := FromTerm(arg)
		if err != nil {
			return kb.Clause{}, err
		}
		args[i] = t
	}
	return kb.Clause{Name: a.Predicate.Symbol, Args: args}, nil
}

// FromTerm converts a Mangle base term back into a term.
func FromTerm(t ast.BaseTerm) (kb.Term, error) {
	switch t := t.(type) {
	case ast.Variable:
		return kb.Variable{Name: t.Symbol}, nil
	case ast.Constant:
		return fromConstant(t)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedTerm, t)
}

func fromConstant(c ast.Constant) (kb.Term, error) {
	switch c.Type {
	case ast.NameType:
		return kb.Atom{Name: strings.TrimPrefix(c.Symbol, "/")}, nil
	case ast.NumberType:
		return kb.Atom{Name: strconv.FormatInt(c.NumValue, 10)}, nil
	case ast.Float64Type:
		f := math.Float64frombits(uint64(c.NumValue))
		return kb.Atom{Name: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	case ast.StringType:
		return kb.Atom{Name: c.Symbol}, nil
	}
	return nil, fmt.Errorf("%w: constant %s", ErrUnsupportedTerm, c)
}

func sameConstant(a, b ast.Constant) bool {
	return a.Type == b.Type && a.Symbol == b.Symbol && a.NumValue == b.NumValue
}
