package kb

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hornkb/internal/syntax"
)

// Builder accumulates the knowledge base during one traversal. It is owned by
// a single traversal and handed off by Build.
type Builder struct {
	facts   []Clause
	rules   []Rule
	queries []Query
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) AddFact(c Clause) { b.facts = append(b.facts, c) }

func (b *Builder) AddRule(r Rule) { b.rules = append(b.rules, r) }

func (b *Builder) AddQuery(q Query) { b.queries = append(b.queries, q) }

// Len reports how many facts and rules have been added so far.
func (b *Builder) Len() (facts, rules int) { return len(b.facts), len(b.rules) }

// Build hands the accumulated lists to a KnowledgeBase and resets the builder.
func (b *Builder) Build() *KnowledgeBase {
	base := &KnowledgeBase{Facts: b.facts, Rules: b.rules, Queries: b.queries}
	*b = Builder{}
	return base
}

// Assembler turns a program production into a KnowledgeBase.
type Assembler struct {
	opts   Options
	dec    *Decoder
	logger *zap.Logger
}

// NewAssembler creates an assembler. A nil logger discards output.
func NewAssembler(opts Options, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.QueryMarkers) == 0 {
		opts.QueryMarkers = DefaultOptions().QueryMarkers
	}
	return &Assembler{
		opts:   opts,
		dec:    NewDecoder(opts, logger),
		logger: logger,
	}
}

// Decoder returns the tree decoder used by the assembler.
func (a *Assembler) Decoder() *Decoder { return a.dec }

// Assemble decodes a whole program: rules, then facts, then directives, each
// in source order. Decoding is all-or-nothing; on error no knowledge base is
// returned.
func (a *Assembler) Assemble(prog *syntax.Program) (*KnowledgeBase, error) {
	if prog == nil {
		return nil, structural(syntax.Pos{}, "missing program")
	}

	log := a.logger.With(zap.String("decode_id", uuid.NewString()))
	b := NewBuilder()

	for _, rn := range prog.Rules {
		r, err := a.rule(rn)
		if err != nil {
			log.Debug("rule decoding failed", zap.Error(err))
			return nil, err
		}
		b.AddRule(r)
	}

	for _, fn := range prog.Facts {
		if err := a.VisitClause(b, fn); err != nil {
			log.Debug("fact decoding failed", zap.Error(err))
			return nil, err
		}
	}

	for _, dn := range prog.Directives {
		q, err := a.ExtractQuery(dn)
		if err != nil {
			log.Debug("directive decoding failed", zap.Error(err))
			return nil, err
		}
		b.AddQuery(q)
	}

	base := b.Build()
	log.Debug("assembled knowledge base",
		zap.Int("facts", len(base.Facts)),
		zap.Int("rules", len(base.Rules)),
		zap.Int("queries", len(base.Queries)))
	return base, nil
}

// AssembleText decodes the two aggregate fragments of the textual encoding:
// all rules joined by ItemSep, and all facts joined by ItemSep. Empty text
// means none of that kind.
func (a *Assembler) AssembleText(rulesText, factsText string) (*KnowledgeBase, error) {
	log := a.logger.With(zap.String("decode_id", uuid.NewString()))

	rules, err := DecodeRules(rulesText)
	if err != nil {
		log.Debug("rules fragment decoding failed", zap.Error(err))
		return nil, err
	}
	facts, err := DecodeFacts(factsText)
	if err != nil {
		log.Debug("facts fragment decoding failed", zap.Error(err))
		return nil, err
	}

	b := NewBuilder()
	for _, r := range rules {
		b.AddRule(r)
	}
	for _, f := range facts {
		b.AddFact(f)
	}
	base := b.Build()
	log.Debug("assembled knowledge base from fragments",
		zap.Int("facts", len(base.Facts)),
		zap.Int("rules", len(base.Rules)))
	return base, nil
}

func (a *Assembler) rule(n *syntax.Rule) (Rule, error) {
	if n == nil || n.Head == nil {
		return Rule{}, &DecodeError{Kind: ErrMalformedRule, Pos: posOfRule(n), Msg: "rule has no head"}
	}

	var rb RuleBuilder
	head, err := a.dec.Clause(n.Head)
	if err != nil {
		return Rule{}, err
	}
	if err := rb.SetConsequent(head); err != nil {
		return Rule{}, err
	}
	for _, bn := range n.Body {
		c, err := a.dec.Clause(bn)
		if err != nil {
			return Rule{}, err
		}
		rb.AddAntecedent(c)
	}
	return rb.Build()
}

func posOfRule(n *syntax.Rule) syntax.Pos {
	if n == nil {
		return syntax.Pos{}
	}
	return n.Neck
}
