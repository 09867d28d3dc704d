package kb

import (
	"errors"
	"fmt"

	"hornkb/internal/syntax"
)

// Error kinds. Every decoding failure unwraps to exactly one of these, so
// callers classify with errors.Is.
var (
	// ErrMalformedClause: a clause fragment has no name/argument separator,
	// an empty name, or an empty argument token.
	ErrMalformedClause = errors.New("malformed clause")

	// ErrMalformedRule: a rule yields no clause fragments or no consequent.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrStructural: the syntax tree does not conform to the grammar
	// (missing terminal, unexpected node, depth limit exceeded).
	ErrStructural = errors.New("structural violation")

	// ErrReservedDelimiter: a term cannot be encoded as a text fragment
	// because its text contains a delimiter of the fragment encoding.
	ErrReservedDelimiter = errors.New("reserved delimiter")
)

// DecodeError reports which construct failed to decode.
type DecodeError struct {
	Kind     error
	Fragment string     // offending text fragment, if decoding from text
	Pos      syntax.Pos // offending node position, if decoding from a tree
	Msg      string
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Fragment != "" {
		msg += fmt.Sprintf(" in fragment %q", e.Fragment)
	}
	if e.Pos.IsValid() {
		msg = e.Pos.String() + ": " + msg
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Kind }

func malformedClause(fragment, format string, args ...any) error {
	return &DecodeError{Kind: ErrMalformedClause, Fragment: fragment, Msg: fmt.Sprintf(format, args...)}
}

func malformedRule(fragment, format string, args ...any) error {
	return &DecodeError{Kind: ErrMalformedRule, Fragment: fragment, Msg: fmt.Sprintf(format, args...)}
}

func structural(pos syntax.Pos, format string, args ...any) error {
	return &DecodeError{Kind: ErrStructural, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func reserved(text, delim string) error {
	return &DecodeError{Kind: ErrReservedDelimiter, Fragment: text, Msg: fmt.Sprintf("contains %q", delim)}
}
