package kb

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hornkb/internal/syntax"
)

// Source is one named program text.
type Source struct {
	Name string
	Text string
}

// Compiled pairs a source name with its knowledge base.
type Compiled struct {
	Source string
	KB     *KnowledgeBase
}

// Compile parses and assembles a single program.
func Compile(src string, opts Options, logger *zap.Logger) (*KnowledgeBase, error) {
	prog, err := syntax.Parse(src)
	if err != nil {
		return nil, err
	}
	return NewAssembler(opts, logger).Assemble(prog)
}

// CompileAll compiles independent sources concurrently. Each source gets its
// own assembler, so no decode state is shared. Results keep input order. The
// first failure cancels the remaining work and is returned wrapped with the
// source name.
func CompileAll(ctx context.Context, sources []Source, opts Options, logger *zap.Logger) ([]Compiled, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]Compiled, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, s := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			base, err := Compile(s.Text, opts, logger.With(zap.String("source", s.Name)))
			if err != nil {
				return fmt.Errorf("failed to compile %s: %w", s.Name, err)
			}
			out[i] = Compiled{Source: s.Name, KB: base}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("compiled sources", zap.Int("count", len(sources)))
	return out, nil
}
