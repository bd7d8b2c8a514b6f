// Package loxerr defines the closed taxonomy of errors produced while scanning, parsing,
// resolving and interpreting a Lox program, along with their wire format.
package loxerr

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jrcaldwell/lox/internal/token"
)

// Kind distinguishes the stage an error was produced in. The kinds are never conflated:
// each carries the information needed to report it in its own wire format.
type Kind int

const (
	// Lex is a character-level error reported during scanning.
	Lex Kind = iota
	// Parse is a token-level error reported during parsing.
	Parse
	// Resolve is a static semantic error reported during name resolution.
	Resolve
	// Runtime is an evaluation failure reported during interpretation.
	Runtime
)

// CompileError is a Lex, Parse or Resolve error: it's attributable to a position in the
// source and is always recoverable by the stage that produced it.
type CompileError struct {
	Kind Kind
	Pos  token.Position
	// Where is the lexeme or "end" that the error is attached to, used only by Parse and
	// Resolve errors. Empty for Lex errors, which never report a "where".
	Where string
	Msg   string
}

func (e *CompileError) Error() string {
	if e.Kind == Lex {
		return fmt.Sprintf("[line %d] Error: %s", e.Pos.Line, e.Msg)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", e.Pos.Line, e.Where, e.Msg)
}

// NewLex creates a Lex CompileError at pos.
func NewLex(pos token.Position, format string, args ...any) *CompileError {
	return &CompileError{Kind: Lex, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// whereOf renders a token's "where" clause: its lexeme in quotes, or "end" for EOF.
func whereOf(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end"
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}

// NewParse creates a Parse CompileError attached to tok.
func NewParse(tok token.Token, format string, args ...any) *CompileError {
	return &CompileError{Kind: Parse, Pos: tok.Start(), Where: whereOf(tok), Msg: fmt.Sprintf(format, args...)}
}

// NewResolve creates a Resolve CompileError attached to tok.
func NewResolve(tok token.Token, format string, args ...any) *CompileError {
	return &CompileError{Kind: Resolve, Pos: tok.Start(), Where: whereOf(tok), Msg: fmt.Sprintf(format, args...)}
}

// Errors is an accumulating list of CompileErrors. Scanning, parsing and resolving all
// report through an Errors value and keep going rather than stopping at the first error.
type Errors struct {
	list []*CompileError
}

// Add appends err.
func (e *Errors) Add(err *CompileError) {
	e.list = append(e.list, err)
}

// Len reports how many errors have been added.
func (e *Errors) Len() int {
	return len(e.list)
}

// Sort orders the errors by source position.
func (e *Errors) Sort() {
	slices.SortFunc(e.list, func(a, b *CompileError) int {
		return a.Pos.Compare(b.Pos)
	})
}

// Err returns e as an error if it holds any CompileErrors, otherwise nil.
// This is what lets a zero-value Errors be returned as an untyped nil error.
func (e *Errors) Err() error {
	if len(e.list) == 0 {
		return nil
	}
	e.Sort()
	return errorList(e.list)
}

// List returns the accumulated errors, sorted by source position.
func (e *Errors) List() []*CompileError {
	e.Sort()
	return e.list
}

type errorList []*CompileError

func (e errorList) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// RuntimeError is a non-local evaluation failure. It carries the token of the
// operator/paren/name whose line is used when reporting, per spec.
type RuntimeError struct {
	Tok token.Token
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Msg, e.Tok.Start().Line)
}

// NewRuntime creates a RuntimeError attached to tok.
func NewRuntime(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Tok: tok, Msg: fmt.Sprintf(format, args...)}
}
