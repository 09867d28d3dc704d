package syntax

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const family = `
% facts
parent(tom, bob).
parent(bob, ann).
raining.

grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
wet :- raining.

?- grandparent(tom, Who).
likes(tom, X)?
`

func TestParseProgram(t *testing.T) {
	prog, err := Parse(family)
	require.NoError(t, err)

	require.Len(t, prog.Facts, 3)
	require.Len(t, prog.Rules, 2)
	require.Len(t, prog.Directives, 2)

	first, ok := prog.Facts[0].Term.(*Compound)
	require.True(t, ok, "expected compound, got %T", prog.Facts[0].Term)
	assert.Equal(t, "parent", first.Functor.Text())
	require.Len(t, first.Args.Terms, 2)
	assert.Equal(t, "tom", first.Args.Terms[0].(*Name).Text())

	bare, ok := prog.Facts[2].Term.(*Name)
	require.True(t, ok)
	assert.Equal(t, "raining", bare.Text())

	gp := prog.Rules[0]
	assert.Len(t, gp.Body, 2)
	assert.Equal(t, Pos{Line: 7, Col: 19}, gp.Neck)

	assert.Equal(t, "?-", prog.Directives[0].Marker)
	assert.Equal(t, "?", prog.Directives[1].Marker)
}

func TestParseNestedTerms(t *testing.T) {
	prog, err := Parse("owns(tom, car(red, 4)).")
	require.NoError(t, err)
	require.Len(t, prog.Facts, 1)

	c := prog.Facts[0].Term.(*Compound)
	inner, ok := c.Args.Terms[1].(*Compound)
	require.True(t, ok)
	assert.Equal(t, "car", inner.Functor.Text())
	assert.Equal(t, NUMBER, inner.Args.Terms[1].(*Name).Token.Type)
}

func TestParseEmpty(t *testing.T) {
	prog, err := Parse("  % nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, prog.Rules)
	assert.Empty(t, prog.Facts)
	assert.Empty(t, prog.Directives)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"missing period", "parent(tom, bob)", "expected '.', ':-' or '?'"},
		{"variable predicate", "X(a).", "predicate name must be an atom"},
		{"number predicate", "42.", "predicate name must be an atom"},
		{"empty args", "p().", "expected term"},
		{"unclosed args", "p(a, b.", "expected ')'"},
		{"variable functor", "p(F(a)).", "functor must be an atom"},
		{"dangling body comma", "a :- b, .", "expected predicate name"},
		{"query without period", "?- a", "expected '.' after query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseGoal(t *testing.T) {
	for _, src := range []string{"likes(tom, X)", "likes(tom, X).", "likes(tom, X)?"} {
		c, err := ParseGoal(src)
		require.NoError(t, err, src)
		assert.Equal(t, "likes", c.Term.(*Compound).Functor.Text())
	}

	_, err := ParseGoal("likes(tom, X). extra")
	require.Error(t, err)
}

func TestInspectVisitsEveryName(t *testing.T) {
	prog, err := Parse(family)
	require.NoError(t, err)

	var names []string
	Inspect(prog, func(n Node) bool {
		if name, ok := n.(*Name); ok {
			names = append(names, name.Text())
		}
		return true
	})

	// 3 facts (3+3+1) + 2 rules (3+3+3, 1+1) + 2 directives (3+3)
	assert.Len(t, names, 7+9+2+6)
	assert.Equal(t, "grandparent", names[0])
}

func TestInspectSkipsChildren(t *testing.T) {
	prog, err := Parse("p(a, b).")
	require.NoError(t, err)

	count := 0
	Inspect(prog, func(n Node) bool {
		count++
		_, isCompound := n.(*Compound)
		return !isCompound
	})
	// Program, Clause, Compound
	assert.Equal(t, 3, count)
}

func TestSnippet(t *testing.T) {
	src := "a.\np(X Y)."
	_, err := Parse(src)
	require.Error(t, err)

	out := Snippet(err, src)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "2:5")
	assert.Equal(t, "   2 | p(X Y).", lines[1])
	assert.Equal(t, strings.Repeat(" ", 11)+"^", lines[2])
}

func TestParseNestingLimit(t *testing.T) {
	nested := func(depth int) string {
		return "p(" + strings.Repeat("f(", depth) + "a" + strings.Repeat(")", depth) + ")."
	}

	_, err := Parse(nested(100))
	require.NoError(t, err)

	_, err = Parse(nested(MaxNesting + 1))
	require.Error(t, err)
	var synErr *Error
	require.ErrorAs(t, err, &synErr)
	assert.Contains(t, synErr.Msg, "nested deeper than")

	_, err = ParseGoal(nested(MaxNesting + 1))
	assert.ErrorAs(t, err, &synErr)
}

func TestSnippetMultibyteColumn(t *testing.T) {
	src := "größe(X Y)."
	_, err := Parse(src)
	require.Error(t, err)

	var synErr *Error
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, Pos{Line: 1, Col: 9}, synErr.Pos)

	lines := strings.Split(Snippet(err, src), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "   1 | größe(X Y).", lines[1])
	// The caret sits under "Y": one space per rune before it.
	caret := strings.Index(lines[2], "^")
	assert.Equal(t, utf8.RuneCountInString("   1 | größe(X "), caret)
}
