package kb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hornkb/internal/syntax"
)

const familySource = `
parent(tom, bob).
parent(bob, ann).
raining.

grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
wet :- raining.

?- grandparent(tom, Who).
likes(tom, X)?
`

func assemble(t *testing.T, src string) *KnowledgeBase {
	t.Helper()
	prog, err := syntax.Parse(src)
	require.NoError(t, err)
	base, err := NewAssembler(DefaultOptions(), nil).Assemble(prog)
	require.NoError(t, err)
	return base
}

func TestAssembleFamily(t *testing.T) {
	base := assemble(t, familySource)

	wantFacts := []Clause{
		MustNewClause("parent", "tom", "bob"),
		MustNewClause("parent", "bob", "ann"),
		MustNewClause("raining"),
	}
	wantRules := []Rule{
		{
			Consequent:  MustNewClause("grandparent", "X", "Z"),
			Antecedents: []Clause{MustNewClause("parent", "X", "Y"), MustNewClause("parent", "Y", "Z")},
		},
		{
			Consequent:  MustNewClause("wet"),
			Antecedents: []Clause{MustNewClause("raining")},
		},
	}
	wantQueries := []Query{
		{Goal: MustNewClause("grandparent", "tom", "Who"), Marker: "?-"},
		{Goal: MustNewClause("likes", "tom", "X"), Marker: "?"},
	}

	if diff := cmp.Diff(wantFacts, base.Facts, equateEmpty); diff != "" {
		t.Errorf("facts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRules, base.Rules, equateEmpty); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantQueries, base.Queries, equateEmpty); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleCountsAndOrder(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		for _, m := range []int{0, 1, 5} {
			t.Run(fmt.Sprintf("facts=%d,rules=%d", n, m), func(t *testing.T) {
				var sb strings.Builder
				for i := 0; i < m; i++ {
					fmt.Fprintf(&sb, "r%d(X) :- f%d(X).\n", i, i)
				}
				for i := 0; i < n; i++ {
					fmt.Fprintf(&sb, "f%d(a%d).\n", i, i)
				}

				base := assemble(t, sb.String())
				require.Len(t, base.Facts, n)
				require.Len(t, base.Rules, m)
				for i, f := range base.Facts {
					assert.Equal(t, fmt.Sprintf("f%d(a%d)", i, i), f.String())
				}
				for i, r := range base.Rules {
					assert.Equal(t, fmt.Sprintf("r%d", i), r.Consequent.Name)
				}
			})
		}
	}
}

func TestAssembleZeroArityFact(t *testing.T) {
	base := assemble(t, "raining.")
	require.Len(t, base.Facts, 1)
	assert.Equal(t, "raining", base.Facts[0].Name)
	assert.NotNil(t, base.Facts[0].Args)
	assert.Len(t, base.Facts[0].Args, 0)
}

func TestAssembleDuplicatesKept(t *testing.T) {
	base := assemble(t, "p(a).\np(a).\n")
	assert.Len(t, base.Facts, 2)
}

func TestAssembleNilProgram(t *testing.T) {
	base, err := NewAssembler(DefaultOptions(), nil).Assemble(nil)
	assert.ErrorIs(t, err, ErrStructural)
	assert.Nil(t, base)
}

func TestAssembleAllOrNothing(t *testing.T) {
	prog, err := syntax.Parse("p(a).\nq(b) :- p(a).\n")
	require.NoError(t, err)
	prog.Facts = append(prog.Facts, &syntax.Clause{})

	base, err := NewAssembler(DefaultOptions(), nil).Assemble(prog)
	require.ErrorIs(t, err, ErrStructural)
	assert.Nil(t, base)
}

func TestAssembleRuleWithoutHead(t *testing.T) {
	prog := &syntax.Program{Rules: []*syntax.Rule{{Neck: syntax.Pos{Line: 2, Col: 5}}}}
	_, err := NewAssembler(DefaultOptions(), nil).Assemble(prog)
	require.ErrorIs(t, err, ErrMalformedRule)
	assert.Contains(t, err.Error(), "2:5")
}

func TestAssembleRejectsUnknownMarker(t *testing.T) {
	prog, err := syntax.Parse("?- p(X).")
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.QueryMarkers = []string{"?"}
	_, err = NewAssembler(opts, nil).Assemble(prog)
	assert.ErrorIs(t, err, ErrStructural)
}

func TestAssembleLogsDecodeID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prog, err := syntax.Parse(familySource)
	require.NoError(t, err)

	_, err = NewAssembler(DefaultOptions(), zap.New(core)).Assemble(prog)
	require.NoError(t, err)

	entries := logs.FilterMessage("assembled knowledge base").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotEmpty(t, fields["decode_id"])
	assert.EqualValues(t, 3, fields["facts"])
	assert.EqualValues(t, 2, fields["rules"])
	assert.EqualValues(t, 2, fields["queries"])
}

func TestAssembleText(t *testing.T) {
	a := NewAssembler(DefaultOptions(), nil)

	base, err := a.AssembleText("parent///tom,bob|grandparent///tom,bob", "parent///tom,bob&parent///bob,ann")
	require.NoError(t, err)
	require.Len(t, base.Rules, 1)
	require.Len(t, base.Facts, 2)
	assert.Equal(t, "parent(tom, bob) :- grandparent(tom, bob).", base.Rules[0].String())
	assert.Equal(t, "parent(bob, ann)", base.Facts[1].String())

	empty, err := a.AssembleText("", "")
	require.NoError(t, err)
	assert.Empty(t, empty.Rules)
	assert.Empty(t, empty.Facts)

	_, err = a.AssembleText("", "parentXtomYbob")
	assert.ErrorIs(t, err, ErrMalformedClause)
}

func TestTreeAndTextPathsAgree(t *testing.T) {
	src := "parent(tom, bob).\nparent(bob, ann).\nraining.\ngp(X, Z) :- parent(X, Y), parent(Y, Z).\nwet :- raining.\n"
	fromTree := assemble(t, src)

	rulesText, factsText, err := EncodeProgram(fromTree)
	require.NoError(t, err)
	fromText, err := NewAssembler(DefaultOptions(), nil).AssembleText(rulesText, factsText)
	require.NoError(t, err)

	if diff := cmp.Diff(fromTree.Facts, fromText.Facts, equateEmpty); diff != "" {
		t.Errorf("facts mismatch (-tree +text):\n%s", diff)
	}
	if diff := cmp.Diff(fromTree.Rules, fromText.Rules, equateEmpty); diff != "" {
		t.Errorf("rules mismatch (-tree +text):\n%s", diff)
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	b.AddFact(MustNewClause("p", "a"))
	b.AddRule(Rule{Consequent: MustNewClause("q")})
	b.AddQuery(Query{Goal: MustNewClause("p", "X"), Marker: "?"})

	facts, rules := b.Len()
	assert.Equal(t, 1, facts)
	assert.Equal(t, 1, rules)

	base := b.Build()
	assert.Len(t, base.Facts, 1)
	assert.Len(t, base.Rules, 1)
	assert.Len(t, base.Queries, 1)

	facts, rules = b.Len()
	assert.Zero(t, facts)
	assert.Zero(t, rules)
}
