package kb

import (
	"strings"

	"go.uber.org/zap"

	"hornkb/internal/config"
	"hornkb/internal/syntax"
)

// Options configures decoding.
type Options struct {
	// MaxDepth bounds term nesting. Deeper trees are a structural violation.
	MaxDepth int
	// QueryMarkers lists the accepted directive markers.
	QueryMarkers []string
	// Concurrency bounds CompileAll. Zero or less means no limit.
	Concurrency int
}

// DefaultOptions returns production defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth:     256,
		QueryMarkers: []string{"?", "?-"},
		Concurrency:  4,
	}
}

// OptionsFromConfig maps the decoder and batch sections of the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if cfg.Decoder.MaxDepth > 0 {
		opts.MaxDepth = cfg.Decoder.MaxDepth
	}
	if len(cfg.Decoder.QueryMarkers) > 0 {
		opts.QueryMarkers = cfg.Decoder.QueryMarkers
	}
	if cfg.Batch.Concurrency != 0 {
		opts.Concurrency = cfg.Batch.Concurrency
	}
	return opts
}

func (o Options) acceptsMarker(marker string) bool {
	for _, m := range o.QueryMarkers {
		if m == marker {
			return true
		}
	}
	return false
}

// Decoder walks syntax tree nodes bottom-up. It holds no traversal state;
// every call is a pure function of the subtree it is given.
type Decoder struct {
	opts   Options
	logger *zap.Logger
}

// NewDecoder creates a decoder. A nil logger discards output.
func NewDecoder(opts Options, logger *zap.Logger) *Decoder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{opts: opts, logger: logger}
}

// Term decodes a term node (Name or Compound) into a Term.
func (d *Decoder) Term(n syntax.Node) (Term, error) {
	return d.term(n, 0)
}

func (d *Decoder) term(n syntax.Node, depth int) (Term, error) {
	if depth > d.opts.MaxDepth {
		d.logger.Warn("term nesting limit exceeded",
			zap.Int("max_depth", d.opts.MaxDepth),
			zap.Stringer("pos", posOf(n)))
		return nil, structural(posOf(n), "term nesting exceeds %d levels", d.opts.MaxDepth)
	}

	switch n := n.(type) {
	case *syntax.Name:
		text, err := nameText(n)
		if err != nil {
			return nil, err
		}
		return NewTerm(text), nil

	case *syntax.Compound:
		functor, items, err := compoundParts(n)
		if err != nil {
			return nil, err
		}
		args := make([]Term, len(items))
		for i, item := range items {
			t, err := d.term(item, depth+1)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return Compound{Functor: functor, Args: args}, nil

	case nil:
		return nil, structural(syntax.Pos{}, "missing term")
	}

	return nil, structural(n.Pos(), "unexpected %T in term position", n)
}

// Clause decodes a clause production. A bare name is a zero-arity predicate;
// a compound supplies the name and the arguments.
func (d *Decoder) Clause(c *syntax.Clause) (Clause, error) {
	if c == nil {
		return Clause{}, structural(syntax.Pos{}, "missing clause")
	}

	switch t := c.Term.(type) {
	case *syntax.Name:
		name, err := nameText(t)
		if err != nil {
			return Clause{}, err
		}
		return Clause{Name: name, Args: []Term{}}, nil

	case *syntax.Compound:
		functor, items, err := compoundParts(t)
		if err != nil {
			return Clause{}, err
		}
		args := make([]Term, len(items))
		for i, item := range items {
			a, err := d.term(item, 1)
			if err != nil {
				return Clause{}, err
			}
			args[i] = a
		}
		return Clause{Name: functor, Args: args}, nil

	case nil:
		return Clause{}, structural(syntax.Pos{}, "clause has no term")
	}

	return Clause{}, structural(c.Term.Pos(), "unexpected %T in clause position", c.Term)
}

// Text reconstructs the flat textual fragment of a node: a name is its literal
// token text, a compound is its functor and arguments joined by single spaces.
// Nested structure is flattened, which is why decoding goes through Term and
// Clause rather than re-splitting this text.
func (d *Decoder) Text(n syntax.Node) (string, error) {
	return d.text(n, 0)
}

func (d *Decoder) text(n syntax.Node, depth int) (string, error) {
	if depth > d.opts.MaxDepth {
		return "", structural(posOf(n), "term nesting exceeds %d levels", d.opts.MaxDepth)
	}

	switch n := n.(type) {
	case *syntax.Name:
		return nameText(n)

	case *syntax.Compound:
		if n == nil || n.Functor == nil || n.Args == nil {
			return "", structural(syntax.Pos{}, "compound term is missing its functor or arguments")
		}
		left, err := d.text(n.Functor, depth+1)
		if err != nil {
			return "", err
		}
		right, err := d.text(n.Args, depth+1)
		if err != nil {
			return "", err
		}
		return left + " " + right, nil

	case *syntax.ArgList:
		if n == nil || len(n.Terms) == 0 {
			return "", structural(syntax.Pos{}, "empty argument list")
		}
		parts := make([]string, len(n.Terms))
		for i, t := range n.Terms {
			s, err := d.text(t, depth+1)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, " "), nil

	case *syntax.Clause:
		if n == nil {
			return "", structural(syntax.Pos{}, "missing clause")
		}
		return d.text(n.Term, depth)

	case nil:
		return "", structural(syntax.Pos{}, "missing node")
	}

	return "", structural(n.Pos(), "no text fragment for %T", n)
}

func nameText(n *syntax.Name) (string, error) {
	if n == nil {
		return "", structural(syntax.Pos{}, "missing name")
	}
	if n.Token.Text == "" {
		return "", structural(n.Pos(), "name has no terminal token")
	}
	return n.Token.Text, nil
}

func compoundParts(c *syntax.Compound) (string, []syntax.Node, error) {
	if c == nil {
		return "", nil, structural(syntax.Pos{}, "missing compound term")
	}
	if c.Functor == nil {
		return "", nil, structural(c.Pos(), "compound term has no functor")
	}
	functor, err := nameText(c.Functor)
	if err != nil {
		return "", nil, err
	}
	if c.Args == nil || len(c.Args.Terms) == 0 {
		return "", nil, structural(c.Pos(), "compound term %s has no arguments", functor)
	}
	return functor, c.Args.Terms, nil
}

func posOf(n syntax.Node) syntax.Pos {
	if n == nil {
		return syntax.Pos{}
	}
	return n.Pos()
}
