package hornkb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicPipeline(t *testing.T) {
	base, err := Compile("likes(tom, mary).\nlikes(mary, wine).\nlikes(tom, X)?\n", DefaultOptions(), nil)
	require.NoError(t, err)

	q, ok := base.Query()
	require.True(t, ok)
	assert.Equal(t, "?", q.Marker)

	engine := NewEngine(DefaultEngineConfig(), nil)
	require.NoError(t, engine.Load(context.Background(), base))

	answers, err := engine.Ask(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, Atom{Name: "mary"}, answers[0].Bindings["X"])
}

func TestPublicFragments(t *testing.T) {
	facts, err := DecodeFacts("parent///tom,bob&parent///bob,ann")
	require.NoError(t, err)
	assert.Len(t, facts, 2)

	_, err = DecodeClauseFragment("parentXtomYbob")
	assert.ErrorIs(t, err, ErrMalformedClause)
}
