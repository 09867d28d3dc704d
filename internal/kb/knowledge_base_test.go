package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeBaseLookups(t *testing.T) {
	base := assemble(t, familySource)

	assert.Len(t, base.FactsFor("parent", 2), 2)
	assert.Empty(t, base.FactsFor("parent", 1))
	assert.Len(t, base.RulesFor("grandparent", 2), 1)
	assert.Len(t, base.RulesFor("wet", 0), 1)

	q, ok := base.Query()
	require.True(t, ok)
	assert.Equal(t, "grandparent", q.Goal.Name)

	_, ok = (&KnowledgeBase{}).Query()
	assert.False(t, ok)
}

func TestKnowledgeBasePredicates(t *testing.T) {
	base := assemble(t, familySource)

	want := []PredicateInfo{
		{Name: "grandparent", Arity: 2, Rules: 1},
		{Name: "parent", Arity: 2, Facts: 2},
		{Name: "raining", Arity: 0, Facts: 1},
		{Name: "wet", Arity: 0, Rules: 1},
	}
	assert.Equal(t, want, base.Predicates())
	assert.Equal(t, "parent/2", want[1].Indicator())

	assert.Equal(t, Stats{Facts: 3, Rules: 2, Queries: 2, Predicates: 4}, base.Stats())
}

func TestKnowledgeBaseString(t *testing.T) {
	base := assemble(t, familySource)

	want := "parent(tom, bob).\n" +
		"parent(bob, ann).\n" +
		"raining.\n" +
		"grandparent(X, Z) :- parent(X, Y), parent(Y, Z).\n" +
		"wet :- raining.\n" +
		"?- grandparent(tom, Who).\n" +
		"likes(tom, X)?\n"
	assert.Equal(t, want, base.String())

	again := assemble(t, base.String())
	assert.Equal(t, base.String(), again.String())
}

func TestMerge(t *testing.T) {
	a := assemble(t, "p(a).\nr(X) :- p(X).\n?- r(X).\n")
	b := assemble(t, "p(b).\n")

	merged := Merge(a, nil, b)
	require.Len(t, merged.Facts, 2)
	assert.Equal(t, "p(a)", merged.Facts[0].String())
	assert.Equal(t, "p(b)", merged.Facts[1].String())
	assert.Len(t, merged.Rules, 1)
	assert.Len(t, merged.Queries, 1)

	assert.Empty(t, Merge().Facts)
}
