// Package scanner implements the lexical scanner for Lox source code.
//
// Grounded on the teacher's golox/parser/lexer.go: a single forward rune-by-rune pass that
// accumulates errors in Scanner.Errs, always terminating in an EOF token.
package scanner

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jrcaldwell/lox/internal/loxerr"
	"github.com/jrcaldwell/lox/internal/token"
)

const eof = -1

// Scanner converts Lox source code into a stream of tokens, read one at a time with Next.
// Syntax errors are accumulated in Errs rather than raised, so that scanning always
// completes and always ends in an EOF token.
type Scanner struct {
	src  []byte
	file *token.File

	ch           rune
	pos          token.Position
	readOffset   int
	lastReadSize int

	compat bool

	Errs loxerr.Errors
}

// Option configures a Scanner.
type Option func(*Scanner)

// Compat tightens the "Unexpected character" message to drop the offending character, matching
// the book's wording, when the CRAFTING_INTERPRETERS_COMPAT environment toggle is set.
func Compat(enabled bool) Option {
	return func(s *Scanner) { s.compat = enabled }
}

// New constructs a Scanner over src. name is used in diagnostics and may be empty.
func New(name string, src []byte, opts ...Option) *Scanner {
	file := token.NewFile(name, src)
	s := &Scanner{
		src:  src,
		file: file,
		pos:  token.Position{File: file, Line: 1, Column: 0},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.advance()
	return s
}

// ScanTokens scans the whole source and returns every token, always ending with exactly one
// EOF token. Errors, if any, are available afterwards via s.Errs.
func (s *Scanner) ScanTokens() []token.Token {
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

// Next returns the next token, skipping whitespace and comments. An EOF token is returned
// once the end of the source has been reached, and will be returned on every subsequent call.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()

	start := s.pos
	ch := s.ch

	switch {
	case ch == eof:
		return s.tok(token.EOF, "", nil, start)
	case ch == '(':
		s.advance()
		return s.tok(token.LeftParen, "(", nil, start)
	case ch == ')':
		s.advance()
		return s.tok(token.RightParen, ")", nil, start)
	case ch == '{':
		s.advance()
		return s.tok(token.LeftBrace, "{", nil, start)
	case ch == '}':
		s.advance()
		return s.tok(token.RightBrace, "}", nil, start)
	case ch == ',':
		s.advance()
		return s.tok(token.Comma, ",", nil, start)
	case ch == '.':
		s.advance()
		return s.tok(token.Dot, ".", nil, start)
	case ch == '-':
		s.advance()
		return s.tok(token.Minus, "-", nil, start)
	case ch == '+':
		s.advance()
		return s.tok(token.Plus, "+", nil, start)
	case ch == ';':
		s.advance()
		return s.tok(token.Semicolon, ";", nil, start)
	case ch == '*':
		s.advance()
		return s.tok(token.Asterisk, "*", nil, start)
	case ch == '/':
		s.advance()
		if s.ch == '/' {
			s.skipLineComment()
			return s.Next()
		}
		return s.tok(token.Slash, "/", nil, start)
	case ch == '!':
		s.advance()
		if s.ch == '=' {
			s.advance()
			return s.tok(token.BangEqual, "!=", nil, start)
		}
		return s.tok(token.Bang, "!", nil, start)
	case ch == '=':
		s.advance()
		if s.ch == '=' {
			s.advance()
			return s.tok(token.EqualEqual, "==", nil, start)
		}
		return s.tok(token.Equal, "=", nil, start)
	case ch == '<':
		s.advance()
		if s.ch == '=' {
			s.advance()
			return s.tok(token.LessEqual, "<=", nil, start)
		}
		return s.tok(token.Less, "<", nil, start)
	case ch == '>':
		s.advance()
		if s.ch == '=' {
			s.advance()
			return s.tok(token.GreaterEqual, ">=", nil, start)
		}
		return s.tok(token.Greater, ">", nil, start)
	case ch == '"':
		return s.scanString(start)
	case isDigit(ch):
		return s.scanNumber(start)
	case isAlpha(ch):
		return s.scanIdent(start)
	default:
		s.advance()
		if s.compat {
			s.errf(start, "Unexpected character.")
		} else {
			s.errf(start, "Unexpected character: %c", ch)
		}
		return s.Next()
	}
}

func (s *Scanner) tok(typ token.Type, lexeme string, literal any, start token.Position) token.Token {
	return token.Token{Type: typ, Lexeme: lexeme, Literal: literal, StartPos: start, EndPos: s.pos}
}

func (s *Scanner) errf(pos token.Position, format string, args ...any) {
	s.Errs.Add(loxerr.NewLex(pos, format, args...))
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.ch {
		case ' ', '\r', '\t', '\n':
			s.advance()
		default:
			return
		}
	}
}

func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch != eof {
		s.advance()
	}
}

// scanString consumes a "-delimited string. Its lexeme is the full source text including the
// surrounding quotes; its literal is the contents with the quotes stripped
// (original_source/app/scanner.py:91,185,188). An unterminated string is reported at the line
// the string started on and no token is produced for it; scanning continues at the following
// Next call.
func (s *Scanner) scanString(start token.Position) token.Token {
	s.advance() // opening quote
	var b strings.Builder
	for {
		if s.ch == '"' {
			s.advance()
			lexeme := `"` + b.String() + `"`
			return s.tok(token.String, lexeme, b.String(), start)
		}
		if s.ch == eof {
			s.errf(start, "Unterminated string.")
			return s.Next()
		}
		b.WriteRune(s.ch)
		s.advance()
	}
}

// scanNumber consumes a run of digits, optionally followed by a '.' and more digits, but
// only when the '.' is itself followed by a digit — a trailing '.' with no digit after it
// is left for the next token (e.g. `1.` scans as NUMBER(1) then DOT).
func (s *Scanner) scanNumber(start token.Position) token.Token {
	var b strings.Builder
	for isDigit(s.ch) {
		b.WriteRune(s.ch)
		s.advance()
	}
	if s.ch == '.' && isDigit(s.peek()) {
		b.WriteRune(s.ch)
		s.advance()
		for isDigit(s.ch) {
			b.WriteRune(s.ch)
			s.advance()
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		panic("scanner: invalid number literal " + b.String())
	}
	return s.tok(token.Number, b.String(), f, start)
}

func (s *Scanner) scanIdent(start token.Position) token.Token {
	var b strings.Builder
	for isAlphaNumeric(s.ch) {
		b.WriteRune(s.ch)
		s.advance()
	}
	lexeme := b.String()
	return s.tok(token.IdentType(lexeme), lexeme, nil, start)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

// advance reads the next rune into s.ch, updating position bookkeeping. At the end of the
// source s.ch is set to eof and stays there.
func (s *Scanner) advance() {
	if s.ch == eof {
		return
	}
	if s.ch == '\n' {
		s.pos.Line++
		s.pos.Column = 0
	} else {
		s.pos.Column += s.lastReadSize
	}

	if s.readOffset >= len(s.src) {
		s.ch = eof
		s.lastReadSize = 0
		return
	}

	r, size := utf8.DecodeRune(s.src[s.readOffset:])
	s.lastReadSize = size
	s.readOffset += size
	s.ch = r
}

// peek returns the next rune without advancing the scanner.
func (s *Scanner) peek() rune {
	if s.readOffset >= len(s.src) {
		return eof
	}
	r, _ := utf8.DecodeRune(s.src[s.readOffset:])
	return r
}
