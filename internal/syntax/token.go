package syntax

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	EOF TokenType = iota

	IDENT    // lowercase identifier: atom or predicate name
	VARIABLE // uppercase or underscore-led identifier
	NUMBER   // integer or decimal literal

	LPAREN   // "("
	RPAREN   // ")"
	COMMA    // ","
	PERIOD   // "."
	NECK     // ":-"
	QUERY    // "?-"
	QUESTION // "?"
)

var tokenNames = map[TokenType]string{
	EOF:      "end of input",
	IDENT:    "identifier",
	VARIABLE: "variable",
	NUMBER:   "number",
	LPAREN:   "'('",
	RPAREN:   "')'",
	COMMA:    "','",
	PERIOD:   "'.'",
	NECK:     "':-'",
	QUERY:    "'?-'",
	QUESTION: "'?'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Pos is a 1-based line/column position in the source.
type Pos struct {
	Line int
	Col  int
}

// IsValid reports whether the position was set by the lexer.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a lexical token. Text is the raw source slice.
type Token struct {
	Type TokenType
	Text string
	Pos  Pos
}

func (t Token) String() string {
	if t.Text == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Text)
}
