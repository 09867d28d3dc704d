package mangle

import (
	"context"
	"testing"
	"time"

	"github.com/google/mangle/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hornkb/internal/config"
	"hornkb/internal/kb"
)

const familySource = `
parent(tom, bob).
parent(bob, ann).
parent(bob, pat).
age(ann, 7).

grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
sibling(X, Y) :- parent(P, X), parent(P, Y).

?- grandparent(tom, Who).
`

func compile(t *testing.T, src string) *kb.KnowledgeBase {
	t.Helper()
	base, err := kb.Compile(src, kb.DefaultOptions(), nil)
	require.NoError(t, err)
	return base
}

func loaded(t *testing.T, src string) (*Engine, *kb.KnowledgeBase) {
	t.Helper()
	base := compile(t, src)
	e := NewEngine(DefaultConfig(), nil)
	require.NoError(t, e.Load(context.Background(), base))
	return e, base
}

func TestToTerm(t *testing.T) {
	tests := []struct {
		in   kb.Term
		want ast.BaseTerm
	}{
		{kb.Variable{Name: "X"}, ast.Variable{Symbol: "X"}},
		{kb.Atom{Name: "42"}, ast.Number(42)},
		{kb.Atom{Name: "2.5"}, ast.Float64(2.5)},
	}
	for _, tt := range tests {
		got, err := ToTerm(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ToTerm(%s)", tt.in)
	}

	name, err := ToTerm(kb.Atom{Name: "tom"})
	require.NoError(t, err)
	c, ok := name.(ast.Constant)
	require.True(t, ok)
	assert.Equal(t, ast.NameType, c.Type)
	assert.Equal(t, "/tom", c.Symbol)

	_, err = ToTerm(kb.Compound{Functor: "car", Args: []kb.Term{kb.Atom{Name: "red"}}})
	assert.ErrorIs(t, err, ErrUnsupportedTerm)
}

func TestToAtomRoundTrip(t *testing.T) {
	clause := kb.MustNewClause("age", "ann", "7")

	atom, err := ToAtom(clause)
	require.NoError(t, err)
	assert.Equal(t, ast.PredicateSym{Symbol: "age", Arity: 2}, atom.Predicate)

	back, err := FromAtom(atom)
	require.NoError(t, err)
	assert.True(t, clause.Equal(back), "got %s", back)
}

func TestToClause(t *testing.T) {
	base := compile(t, familySource)

	c, err := ToClause(base.Rules[0])
	require.NoError(t, err)
	assert.Equal(t, "grandparent", c.Head.Predicate.Symbol)
	assert.Len(t, c.Premises, 2)

	head, err := ToClause(kb.Rule{Consequent: kb.MustNewClause("p", "a")})
	require.NoError(t, err)
	assert.Empty(t, head.Premises)
}

func TestToSourceUnit(t *testing.T) {
	base := compile(t, familySource)

	unit, err := ToSourceUnit(base)
	require.NoError(t, err)
	assert.Len(t, unit.Clauses, len(base.Facts)+len(base.Rules))

	_, err = ToSourceUnit(compile(t, "owns(tom, car(red))."))
	assert.ErrorIs(t, err, ErrUnsupportedTerm)
}

func TestRender(t *testing.T) {
	text, err := Render(compile(t, "parent(tom, bob).\ngp(X, Z) :- parent(X, Y), parent(Y, Z).\n"))
	require.NoError(t, err)
	assert.Contains(t, text, "parent(/tom, /bob).\n")
	assert.Contains(t, text, "gp(X, Z) :- parent(X, Y), parent(Y, Z).\n")
}

func TestRenderZeroArity(t *testing.T) {
	text, err := Render(compile(t, "raining.\nwet :- raining.\n"))
	require.NoError(t, err)
	assert.Equal(t, "raining().\nwet() :- raining().\n", text)
}

func TestRenderUnderscoreVariables(t *testing.T) {
	text, err := Render(compile(t, "p(a, b).\nq(X) :- p(X, _Y).\nr(X) :- p(X, _).\n"))
	require.NoError(t, err)
	assert.Contains(t, text, "q(X) :- p(X, VY).\n")
	assert.Contains(t, text, "r(X) :- p(X, _).\n")

	// A renamed variable never captures one already in the clause.
	text, err = Render(compile(t, "s(VY, X) :- p(VY, _Y), p(_Y, X).\n"))
	require.NoError(t, err)
	assert.Contains(t, text, "s(VY, X) :- p(VY, VY1), p(VY1, X).\n")
}

func TestRenderKeepsInfAndNanAsNames(t *testing.T) {
	base := compile(t, "cat(inf).\ncat(nan).\n")
	text, err := Render(base)
	require.NoError(t, err)
	assert.Contains(t, text, "cat(/inf).\n")
	assert.Contains(t, text, "cat(/nan).\n")

	e := NewEngine(DefaultConfig(), nil)
	require.NoError(t, e.Load(context.Background(), base))
	answers, err := e.Ask(context.Background(), kb.Query{Goal: kb.MustNewClause("cat", "X"), Marker: "?"})
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, kb.Atom{Name: "inf"}, answers[0].Bindings["X"])
	assert.Equal(t, kb.Atom{Name: "nan"}, answers[1].Bindings["X"])
}

func TestEngineAsk(t *testing.T) {
	e, base := loaded(t, familySource)

	q, ok := base.Query()
	require.True(t, ok)

	answers, err := e.Ask(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "grandparent(tom, ann)", answers[0].Fact.String())
	assert.Equal(t, kb.Atom{Name: "ann"}, answers[0].Bindings["Who"])
	assert.Equal(t, kb.Atom{Name: "pat"}, answers[1].Bindings["Who"])
}

func TestEngineAskRepeatedVariable(t *testing.T) {
	e, _ := loaded(t, familySource)

	answers, err := e.Ask(context.Background(), kb.Query{Goal: kb.MustNewClause("sibling", "X", "X"), Marker: "?"})
	require.NoError(t, err)
	for _, a := range answers {
		assert.True(t, kb.TermsEqual(a.Fact.Args[0], a.Fact.Args[1]), "%s", a.Fact)
	}
	assert.Len(t, answers, 3)
}

func TestEngineAskNumbersAndGround(t *testing.T) {
	e, _ := loaded(t, familySource)

	answers, err := e.Ask(context.Background(), kb.Query{Goal: kb.MustNewClause("age", "ann", "N")})
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, kb.Atom{Name: "7"}, answers[0].Bindings["N"])

	answers, err = e.Ask(context.Background(), kb.Query{Goal: kb.MustNewClause("parent", "ann", "_")})
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestEngineNotLoaded(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)

	_, err := e.Ask(context.Background(), kb.Query{Goal: kb.MustNewClause("p", "X")})
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = e.Facts("p", 1)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestEngineFactLimit(t *testing.T) {
	e := NewEngine(Config{FactLimit: 3}, nil)
	err := e.Load(context.Background(), compile(t, familySource))
	assert.ErrorIs(t, err, ErrFactLimit)
}

func TestEngineFactsAndStats(t *testing.T) {
	e, _ := loaded(t, familySource)

	facts, err := e.Facts("grandparent", 2)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, "grandparent(tom, ann)", facts[0].String())

	stats := e.GetStats()
	assert.Equal(t, 3, stats.PredicateCounts["parent/2"])
	assert.Equal(t, 2, stats.PredicateCounts["grandparent/2"])
}

func TestConfigFrom(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mangle.FactLimit = 10
	cfg.Mangle.QueryTimeout = "3s"

	got := ConfigFrom(cfg)
	assert.Equal(t, Config{FactLimit: 10, QueryTimeout: 3 * time.Second}, got)
	assert.Equal(t, DefaultConfig(), ConfigFrom(nil))
}
