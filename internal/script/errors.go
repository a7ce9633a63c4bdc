package script

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
)

// Error is a driver-script error carrying enough position information to
// render a caret-style diagnostic, the one user-facing error surface this
// module has (§7: the core never returns a user-facing error; this is the
// front end reporting a malformed script, not a shader program).
type Error struct {
	Pos lexer.Position
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: instruction %q: %v", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Report renders err with Rust-style source context and coloring, matching
// the caret diagnostics the teacher's CLI prints for a participle parse
// error.
func Report(source string, err error) string {
	var b strings.Builder

	if pe, ok := err.(participle.Error); ok {
		reportAt(&b, source, pe.Position(), pe.Message())
		return b.String()
	}
	if se, ok := err.(*Error); ok {
		reportAt(&b, source, se.Pos, se.Err.Error())
		return b.String()
	}

	b.WriteString(color.RedString("error: %s\n", err))
	return b.String()
}

func reportAt(b *strings.Builder, source string, pos lexer.Position, message string) {
	lines := strings.Split(source, "\n")
	b.WriteString(color.RedString("error: %s\n", message))
	if pos.Line <= 0 || pos.Line > len(lines) {
		b.WriteString(fmt.Sprintf(" --> %s\n", pos.Filename))
		return
	}
	fmt.Fprintf(b, " --> %s:%d:%d\n", pos.Filename, pos.Line, pos.Column)
	fmt.Fprintf(b, "  | %s\n", lines[pos.Line-1])
	caret := strings.Repeat(" ", max(0, pos.Column-1)) + "^"
	fmt.Fprintf(b, "  | %s\n", color.RedString(caret))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Parse builds the participle parser for Program and parses source,
// returning a *script.Error-compatible participle.Error on failure.
func Parse(filename, source string) (*Program, error) {
	parser, err := participle.Build[Program](
		participle.Lexer(ScriptLexer),
		participle.Elide("Whitespace", "Comment"),
	)
	if err != nil {
		return nil, fmt.Errorf("building script parser: %w", err)
	}
	return parser.ParseString(filename, source)
}
