// Package script defines a tiny, line-oriented instruction language that
// stands in for the events a real shader-language parser would emit while
// walking a function body: push a constant, push a variable, combine two
// operands, open a branch, close a loop. It exists so the ir.Builder façade
// (C4) has a concrete textual front end to drive it, without reimplementing
// a shader-language grammar.
package script

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ScriptLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},
		{"Float", `[0-9]+\.[0-9]+`, nil},
		{"Int", `[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"EOL", `\n`, nil},
		{"Whitespace", `[ \t\r]+`, nil},
	},
})

// Program is a flat sequence of instructions; the Interpreter is what gives
// structure to the nesting (if/loop/switch), the same way a Pratt parser
// gives structure to a flat token stream.
type Program struct {
	Instructions []*Instruction `EOL* @@*`
}

// Instruction is an opcode (dotted, e.g. "if.true") followed by zero or
// more bare-word/number arguments, ending at the end of its line.
type Instruction struct {
	Pos lexer.Position
	Op  string   `@Ident`
	Args []string `@(Ident | Float | Int)* EOL*`
}
