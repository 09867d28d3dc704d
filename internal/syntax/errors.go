package syntax

import (
	"fmt"
	"strings"
)

// Error is a lexical or grammatical error with a 1-based source position.
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg)
}

func errorf(pos Pos, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Snippet renders the offending source line with a caret under the error
// column. Non-syntax errors return err.Error() unchanged.
func Snippet(err error, src string) string {
	se, ok := err.(*Error)
	if !ok || !se.Pos.IsValid() {
		return err.Error()
	}

	lines := strings.Split(src, "\n")
	line := se.Pos.Line
	if line > len(lines) {
		line = len(lines)
	}
	text := lines[line-1]

	col := se.Pos.Col
	if col < 1 {
		col = 1
	}

	var sb strings.Builder
	sb.WriteString(se.Error())
	sb.WriteString("\n")
	prefix := fmt.Sprintf("%4d | ", line)
	sb.WriteString(prefix)
	sb.WriteString(text)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
	sb.WriteString("^")
	return sb.String()
}
