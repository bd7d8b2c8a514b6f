// Package token declares the lexical tokens of Lox source code.
package token

import (
	"cmp"
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Type is the kind of a lexical token.
type Type int

// The closed set of token types.
const (
	Illegal Type = iota
	EOF

	// Single-character punctuation.
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Asterisk

	// One or two character operators.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Ident
	String
	Number

	// Keywords.
	keywordsStart
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	keywordsEnd
)

var typeStrings = map[Type]string{
	Illegal:      "illegal",
	EOF:          "EOF",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	Comma:        ",",
	Dot:          ".",
	Minus:        "-",
	Plus:         "+",
	Semicolon:    ";",
	Slash:        "/",
	Asterisk:     "*",
	Bang:         "!",
	BangEqual:    "!=",
	Equal:        "=",
	EqualEqual:   "==",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Ident:        "identifier",
	String:       "string",
	Number:       "number",
	And:          "and",
	Class:        "class",
	Else:         "else",
	False:        "false",
	Fun:          "fun",
	For:          "for",
	If:           "if",
	Nil:          "nil",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
}

var keywordTypesByIdent = func() map[string]Type {
	m := make(map[string]Type, keywordsEnd-keywordsStart-1)
	for t := keywordsStart + 1; t < keywordsEnd; t++ {
		m[typeStrings[t]] = t
	}
	return m
}()

// IdentType returns the keyword Type for ident, or Ident if ident isn't a reserved word.
func IdentType(ident string) Type {
	if t, ok := keywordTypesByIdent[ident]; ok {
		return t
	}
	return Ident
}

func (t Type) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Format implements fmt.Formatter. The 'm' verb renders the type quoted, for use in diagnostic messages.
func (t Type) Format(f fmt.State, verb rune) {
	switch verb {
	case 'm':
		fmt.Fprintf(f, "'%s'", t.String())
	default:
		fmt.Fprint(f, t.String())
	}
}

// Position is a 1-based line, 0-based column position in a source File.
type Position struct {
	File   *File
	Line   int
	Column int
}

// Compare orders positions first by line, then by column.
func (p Position) Compare(other Position) int {
	if p.Line != other.Line {
		return cmp.Compare(p.Line, other.Line)
	}
	return cmp.Compare(p.Column, other.Column)
}

func (p Position) String() string {
	var prefix string
	if p.File != nil && p.File.name != "" {
		prefix = p.File.name + ":"
	}
	col := p.Column + 1
	if p.File != nil {
		line := p.File.Line(p.Line)
		if p.Column <= len(line) {
			col = runewidth.StringWidth(string(line[:p.Column])) + 1
		}
	}
	return fmt.Sprintf("%s%d:%d", prefix, p.Line, col)
}

// Range describes a span of source characters.
type Range interface {
	Start() Position
	End() Position
}

// File holds a source file's contents and its line offsets, so that a byte offset can be
// translated into a line/column position and back.
type File struct {
	name        string
	contents    []byte
	lineOffsets []int
}

// NewFile returns a new File named name holding contents.
func NewFile(name string, contents []byte) *File {
	f := &File{name: name, contents: contents}
	f.lineOffsets = append(f.lineOffsets, 0)
	for i, b := range contents {
		if b == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// Name returns the file's name, which may be empty.
func (f *File) Name() string {
	return f.name
}

// Line returns the 1-indexed nth line of the file, without its trailing newline.
func (f *File) Line(n int) []byte {
	if n < 1 || n > len(f.lineOffsets) {
		return nil
	}
	low := f.lineOffsets[n-1]
	high := len(f.contents)
	if n < len(f.lineOffsets) {
		high = f.lineOffsets[n] - 1
	}
	if high < low {
		high = low
	}
	return f.contents[low:high]
}

// Token is an immutable lexical token of Lox source code.
type Token struct {
	Type     Type
	Lexeme   string
	Literal  any // populated for String (string) and Number (float64); nil otherwise
	StartPos Position
	EndPos   Position
}

// Start returns the position of the token's first character.
func (t Token) Start() Position { return t.StartPos }

// End returns the position immediately after the token's last character.
func (t Token) End() Position { return t.EndPos }

// IsZero reports whether t is the zero value.
func (t Token) IsZero() bool { return t == Token{} }

func (t Token) String() string {
	return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
}
