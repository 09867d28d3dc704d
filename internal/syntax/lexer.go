package syntax

import (
	"unicode"
	"unicode/utf8"
)

// Lexer turns source text into tokens. Identifier characters are letters,
// digits and '_', so none of the fragment delimiters ("///", ",", "|", "&")
// can ever be part of a name token.
type Lexer struct {
	src  string
	off  int
	line int
	col  int
}

// NewLexer creates a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize scans the whole input. The returned slice always ends with EOF.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) peek() (rune, int) {
	if l.off >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[l.off:])
}

func (l *Lexer) peekAt(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *Lexer) advance() rune {
	r, size := l.peek()
	if size == 0 {
		return utf8.RuneError
	}
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) pos() Pos { return Pos{Line: l.line, Col: l.col} }

// skipSpace consumes whitespace and '%' line comments.
func (l *Lexer) skipSpace() {
	for {
		r, size := l.peek()
		switch {
		case size == 0:
			return
		case unicode.IsSpace(r):
			l.advance()
		case r == '%':
			for {
				r, size = l.peek()
				if size == 0 || r == '\n' {
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()
	start := l.pos()
	begin := l.off

	r, size := l.peek()
	if size == 0 {
		return Token{Type: EOF, Pos: start}, nil
	}
	if r == utf8.RuneError && size == 1 {
		return Token{}, errorf(start, "invalid UTF-8 encoding")
	}

	switch {
	case r == '(':
		l.advance()
		return Token{Type: LPAREN, Text: "(", Pos: start}, nil
	case r == ')':
		l.advance()
		return Token{Type: RPAREN, Text: ")", Pos: start}, nil
	case r == ',':
		l.advance()
		return Token{Type: COMMA, Text: ",", Pos: start}, nil
	case r == '.':
		l.advance()
		return Token{Type: PERIOD, Text: ".", Pos: start}, nil
	case r == ':':
		if l.peekAt(1) != '-' {
			return Token{}, errorf(start, "unexpected ':' (did you mean ':-'?)")
		}
		l.advance()
		l.advance()
		return Token{Type: NECK, Text: ":-", Pos: start}, nil
	case r == '?':
		l.advance()
		if r2, _ := l.peek(); r2 == '-' {
			l.advance()
			return Token{Type: QUERY, Text: "?-", Pos: start}, nil
		}
		return Token{Type: QUESTION, Text: "?", Pos: start}, nil
	case r < utf8.RuneSelf && isASCIIDigit(byte(r)):
		l.scanNumber()
		return Token{Type: NUMBER, Text: l.src[begin:l.off], Pos: start}, nil
	case r == '_' || unicode.IsLetter(r):
		l.scanIdentifier()
		text := l.src[begin:l.off]
		if r == '_' || unicode.IsUpper(r) {
			return Token{Type: VARIABLE, Text: text, Pos: start}, nil
		}
		return Token{Type: IDENT, Text: text, Pos: start}, nil
	}

	return Token{}, errorf(start, "unexpected character %q", r)
}

func (l *Lexer) scanIdentifier() {
	for {
		r, size := l.peek()
		if size == 0 || !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return
		}
		l.advance()
	}
}

// scanNumber reads digits with an optional fractional part. A '.' only
// belongs to the number when a digit follows it; otherwise it ends the clause.
func (l *Lexer) scanNumber() {
	l.scanDigits()
	if l.peekAt(0) == '.' && isASCIIDigit(l.peekAt(1)) {
		l.advance()
		l.scanDigits()
	}
}

func (l *Lexer) scanDigits() {
	for isASCIIDigit(l.peekAt(0)) {
		l.advance()
	}
}

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }
