// Package compile is the small, intentionally narrow compiler that
// turns program source into a bytecode.Container. spec.md places "the
// parser and compiler that emit bytecode" out of scope for the
// interpreter core, treating them as an external collaborator
// (spec.md §1) — this package plays that collaborator's role just
// far enough to give cmd/remap's eval/repl/disasm subcommands and the
// interpreter's own tests something real to run, following the
// teacher's recursive-descent scanner/parser idiom
// (internal/lexer/scanner.go, internal/parser/parser.go) at a much
// smaller scope.
package compile

import "fmt"

type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tNumber
	tString
	tTrue
	tFalse
	tNull
	tAbort
	tIf
	tElse
	tDot
	tComma
	tColon
	tLParen
	tRParen
	tLBrace
	tRBrace
	tLBracket
	tRBracket
	tPlus
	tMinus
	tStar
	tSlash
	tPercent
	tEqual
	tEqualEqual
	tBangEqual
	tLess
	tLessEqual
	tGreater
	tGreaterEqual
	tAndAnd
	tOrOr
	tBang
	tAt
	tPipe
	tSemicolon
	tNewline
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) String() string {
	return fmt.Sprintf("%v(%q)@%d", t.kind, t.text, t.line)
}
