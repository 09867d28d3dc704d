// Package syntax defines the concrete syntax tree of the Prolog-like source
// language and a small parser that produces it.
//
// The node set is closed: every production of the grammar has exactly one
// node type, and consumers dispatch with a type switch.
//
//	program   := { statement }
//	statement := clause ":-" clause { "," clause } "."   rule
//	           | clause "."                              fact
//	           | "?-" clause "."                         directive
//	           | clause "?"                              directive
//	clause    := term
//	term      := name [ "(" term { "," term } ")" ]
//	name      := IDENT | VARIABLE | NUMBER
package syntax

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Pos
	node()
}

// Program is the top production. Rules and facts are kept as two separate
// aggregates, each in source order.
type Program struct {
	Rules      []*Rule
	Facts      []*Clause
	Directives []*Directive
}

// Rule is a clause with a body: Head :- Body[0], Body[1], ...
type Rule struct {
	Head *Clause
	Body []*Clause
	Neck Pos
}

// Directive is a question: "?- goal." or "goal?". Marker holds the literal
// punctuation that marked it.
type Directive struct {
	Goal   *Clause
	Marker string
	At     Pos
}

// Clause wraps a single term used in predicate position: a bare Name for a
// zero-arity predicate, or a Compound.
type Clause struct {
	Term Node
}

// Compound is a functor applied to a parenthesized argument list.
type Compound struct {
	Functor *Name
	Args    *ArgList
}

// ArgList is the comma-separated argument list of a compound term.
type ArgList struct {
	Terms  []Node
	Lparen Pos
}

// Name is an atomic name: a single IDENT, VARIABLE or NUMBER token.
type Name struct {
	Token Token
}

func (p *Program) Pos() Pos { return Pos{Line: 1, Col: 1} }

func (r *Rule) Pos() Pos {
	if r.Head != nil {
		return r.Head.Pos()
	}
	return r.Neck
}

func (d *Directive) Pos() Pos { return d.At }

func (c *Clause) Pos() Pos {
	if c.Term != nil {
		return c.Term.Pos()
	}
	return Pos{}
}

func (c *Compound) Pos() Pos {
	if c.Functor != nil {
		return c.Functor.Pos()
	}
	if c.Args != nil {
		return c.Args.Lparen
	}
	return Pos{}
}

func (a *ArgList) Pos() Pos { return a.Lparen }
func (n *Name) Pos() Pos    { return n.Token.Pos }

func (*Program) node()   {}
func (*Rule) node()      {}
func (*Directive) node() {}
func (*Clause) node()    {}
func (*Compound) node()  {}
func (*ArgList) node()   {}
func (*Name) node()      {}

// Text returns the literal token text of the name.
func (n *Name) Text() string { return n.Token.Text }

// Inspect traverses the tree depth-first, calling fn for each node before its
// children. If fn returns false the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Program:
		for _, r := range n.Rules {
			Inspect(r, fn)
		}
		for _, f := range n.Facts {
			Inspect(f, fn)
		}
		for _, d := range n.Directives {
			Inspect(d, fn)
		}
	case *Rule:
		if n.Head != nil {
			Inspect(n.Head, fn)
		}
		for _, b := range n.Body {
			Inspect(b, fn)
		}
	case *Directive:
		if n.Goal != nil {
			Inspect(n.Goal, fn)
		}
	case *Clause:
		Inspect(n.Term, fn)
	case *Compound:
		if n.Functor != nil {
			Inspect(n.Functor, fn)
		}
		if n.Args != nil {
			Inspect(n.Args, fn)
		}
	case *ArgList:
		for _, t := range n.Terms {
			Inspect(t, fn)
		}
	}
}
