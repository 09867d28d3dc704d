package mangle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"go.uber.org/zap"

	"hornkb/internal/config"
	"hornkb/internal/kb"
)

// Config holds evaluation limits.
type Config struct {
	FactLimit    int           // 0 = unlimited
	QueryTimeout time.Duration // applied when the caller's context has no deadline
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		FactLimit:    100000,
		QueryTimeout: 30 * time.Second,
	}
}

// ConfigFrom maps the mangle section of the configuration.
func ConfigFrom(cfg *config.Config) Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	out.FactLimit = cfg.Mangle.FactLimit
	out.QueryTimeout = cfg.GetQueryTimeout()
	return out
}

// Answer is one solution of a query: the matching fact and the goal's
// variable bindings.
type Answer struct {
	Fact     kb.Clause
	Bindings map[string]kb.Term
}

// Stats contains engine statistics.
type Stats struct {
	TotalFacts      int            `json:"total_facts"`
	PredicateCounts map[string]int `json:"predicate_counts"`
	LastEval        time.Duration  `json:"last_eval"`
}

// Engine evaluates a knowledge base to its fixpoint and answers queries
// against the result. Load replaces any previous knowledge base.
type Engine struct {
	config Config
	logger *zap.Logger

	mu       sync.RWMutex
	store    factstore.ConcurrentFactStore
	loaded   bool
	lastEval time.Duration
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config: cfg,
		logger: logger,
		store:  factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore()),
	}
}

// Load analyzes and evaluates base. On failure the previously loaded
// knowledge base stays in effect. Mangle evaluation cannot be interrupted:
// after a timeout the evaluation goroutine runs to completion against a
// store that is then discarded.
func (e *Engine) Load(ctx context.Context, base *kb.KnowledgeBase) error {
	unit, err := ToSourceUnit(base)
	if err != nil {
		return err
	}
	if e.config.FactLimit > 0 && len(base.Facts) > e.config.FactLimit {
		return fmt.Errorf("%w: %d facts given, limit %d", ErrFactLimit, len(base.Facts), e.config.FactLimit)
	}

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return fmt.Errorf("failed to analyze program: %w", err)
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	store := factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore())
	start := time.Now()
	errChan := make(chan error, 1)
	go func() {
		_, err := mengine.EvalProgramWithStats(programInfo, store)
		errChan <- err
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to evaluate program: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("evaluation timed out after %v: %w", time.Since(start), ctx.Err())
	}
	elapsed := time.Since(start)

	total := store.EstimateFactCount()
	if e.config.FactLimit > 0 && total > e.config.FactLimit {
		return fmt.Errorf("%w: %d facts derived, limit %d", ErrFactLimit, total, e.config.FactLimit)
	}

	e.mu.Lock()
	e.store = store
	e.loaded = true
	e.lastEval = elapsed
	e.mu.Unlock()

	e.logger.Debug("knowledge base evaluated",
		zap.Int("facts", len(base.Facts)),
		zap.Int("rules", len(base.Rules)),
		zap.Int("derived", total),
		zap.Duration("elapsed", elapsed))
	return nil
}

// Ask answers a query against the loaded knowledge base. Answers are sorted
// by their fact text so output is stable across runs.
func (e *Engine) Ask(ctx context.Context, q kb.Query) ([]Answer, error) {
	goal, err := ToAtom(q.Goal)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	store, loaded := e.store, e.loaded
	e.mu.RUnlock()
	if !loaded {
		return nil, ErrNotLoaded
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var answers []Answer
	err = store.GetFacts(ast.NewQuery(goal.Predicate), func(fact ast.Atom) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		bindings, ok := match(goal, fact)
		if !ok {
			return nil
		}
		clause, err := FromAtom(fact)
		if err != nil {
			return err
		}
		answer := Answer{Fact: clause, Bindings: make(map[string]kb.Term, len(bindings))}
		for name, c := range bindings {
			t, err := fromConstant(c)
			if err != nil {
				return err
			}
			answer.Bindings[name] = t
		}
		answers = append(answers, answer)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", q.Goal, err)
	}

	sort.Slice(answers, func(i, j int) bool {
		return answers[i].Fact.String() < answers[j].Fact.String()
	})
	return answers, nil
}

// Facts returns every fact of name/arity in the evaluated store, sorted.
func (e *Engine) Facts(name string, arity int) ([]kb.Clause, error) {
	e.mu.RLock()
	store, loaded := e.store, e.loaded
	e.mu.RUnlock()
	if !loaded {
		return nil, ErrNotLoaded
	}

	var out []kb.Clause
	err := store.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: name, Arity: arity}), func(a ast.Atom) error {
		c, err := FromAtom(a)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// GetStats returns per-predicate fact counts of the evaluated store.
func (e *Engine) GetStats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	counts := make(map[string]int)
	for _, sym := range e.store.ListPredicates() {
		n := 0
		_ = e.store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error {
			n++
			return nil
		})
		counts[fmt.Sprintf("%s/%d", sym.Symbol, sym.Arity)] = n
	}
	return Stats{
		TotalFacts:      e.store.EstimateFactCount(),
		PredicateCounts: counts,
		LastEval:        e.lastEval,
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || e.config.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.config.QueryTimeout)
}

// match reports whether fact is an instance of goal. Repeated variables must
// bind the same constant; "_" matches anything.
func match(goal, fact ast.Atom) (map[string]ast.Constant, bool) {
	if goal.Predicate != fact.Predicate || len(goal.Args) != len(fact.Args) {
		return nil, false
	}
	bindings := make(map[string]ast.Constant)
	for i, arg := range goal.Args {
		value, ok := fact.Args[i].(ast.Constant)
		if !ok {
			return nil, false
		}
		switch arg := arg.(type) {
		case ast.Variable:
			if arg.Symbol == "_" {
				continue
			}
			if prev, seen := bindings[arg.Symbol]; seen {
				if !sameConstant(prev, value) {
					return nil, false
				}
				continue
			}
			bindings[arg.Symbol] = value
		case ast.Constant:
			if !sameConstant(arg, value) {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return bindings, true
}
