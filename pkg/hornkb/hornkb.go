// Package hornkb is the public face of the internal packages: it re-exports
// the knowledge base types, the decoder and assembler, and the Mangle
// engine so that code outside this module can compile and query programs.
package hornkb

import (
	"hornkb/internal/kb"
	"hornkb/internal/mangle"
	"hornkb/internal/syntax"
)

type (
	KnowledgeBase = kb.KnowledgeBase
	Clause        = kb.Clause
	Rule          = kb.Rule
	Query         = kb.Query
	Term          = kb.Term
	Atom          = kb.Atom
	Variable      = kb.Variable
	Compound      = kb.Compound
	Options       = kb.Options
	Source        = kb.Source
	Compiled      = kb.Compiled
	DecodeError   = kb.DecodeError
	Assembler     = kb.Assembler
	Builder       = kb.Builder

	Program     = syntax.Program
	SyntaxError = syntax.Error

	Engine       = mangle.Engine
	EngineConfig = mangle.Config
	Answer       = mangle.Answer
)

var (
	ErrMalformedClause   = kb.ErrMalformedClause
	ErrMalformedRule     = kb.ErrMalformedRule
	ErrStructural        = kb.ErrStructural
	ErrReservedDelimiter = kb.ErrReservedDelimiter
	ErrUnsupportedTerm   = mangle.ErrUnsupportedTerm
	ErrNotLoaded         = mangle.ErrNotLoaded
	ErrFactLimit         = mangle.ErrFactLimit
)

var (
	Parse          = syntax.Parse
	ParseGoal      = syntax.ParseGoal
	DefaultOptions = kb.DefaultOptions
	NewAssembler   = kb.NewAssembler
	NewBuilder     = kb.NewBuilder
	NewDecoder     = kb.NewDecoder
	Compile        = kb.Compile
	CompileAll     = kb.CompileAll
	Merge          = kb.Merge

	EncodeProgram        = kb.EncodeProgram
	DecodeRules          = kb.DecodeRules
	DecodeFacts          = kb.DecodeFacts
	DecodeDirective      = kb.DecodeDirective
	DecodeClauseFragment = kb.DecodeClauseFragment

	NewEngine           = mangle.NewEngine
	DefaultEngineConfig = mangle.DefaultConfig
	Render              = mangle.Render
)
