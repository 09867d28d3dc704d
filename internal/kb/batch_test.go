package kb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hornkb/internal/syntax"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCompile(t *testing.T) {
	base, err := Compile(familySource, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, len(base.Facts))

	_, err = Compile("parent(tom bob).", DefaultOptions(), nil)
	var synErr *syntax.Error
	assert.ErrorAs(t, err, &synErr)
}

func TestCompileAllKeepsOrder(t *testing.T) {
	var sources []Source
	for i := 0; i < 20; i++ {
		sources = append(sources, Source{
			Name: fmt.Sprintf("s%02d.pl", i),
			Text: fmt.Sprintf("f%d(a).\n", i),
		})
	}

	opts := DefaultOptions()
	opts.Concurrency = 3
	out, err := CompileAll(context.Background(), sources, opts, nil)
	require.NoError(t, err)
	require.Len(t, out, len(sources))
	for i, c := range out {
		assert.Equal(t, sources[i].Name, c.Source)
		require.Len(t, c.KB.Facts, 1)
		assert.Equal(t, fmt.Sprintf("f%d", i), c.KB.Facts[0].Name)
	}
}

func TestCompileAllFailure(t *testing.T) {
	sources := []Source{
		{Name: "good.pl", Text: "p(a)."},
		{Name: "bad.pl", Text: "p(a"},
		{Name: "also_good.pl", Text: "q(b)."},
	}

	out, err := CompileAll(context.Background(), sources, DefaultOptions(), nil)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "failed to compile bad.pl")
}

func TestCompileAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CompileAll(ctx, []Source{{Name: "a.pl", Text: "p(a)."}}, DefaultOptions(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileAllEmpty(t *testing.T) {
	out, err := CompileAll(context.Background(), nil, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
