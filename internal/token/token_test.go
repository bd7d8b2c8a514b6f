package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jrcaldwell/lox/internal/token"
)

func TestIdentTypeRecognisesKeywords(t *testing.T) {
	tests := map[string]token.Type{
		"and":    token.And,
		"class":  token.Class,
		"this":   token.This,
		"while":  token.While,
		"foobar": token.Ident,
		"":       token.Ident,
	}
	for ident, want := range tests {
		assert.Equal(t, want, token.IdentType(ident), "IdentType(%q)", ident)
	}
}

func TestTypeStringIsLowercaseDiagnosticName(t *testing.T) {
	assert.Equal(t, "identifier", token.Ident.String())
	assert.Equal(t, "EOF", token.EOF.String())
}

func TestPositionCompareOrdersByLineThenColumn(t *testing.T) {
	f := token.NewFile("test", []byte("a\nbb"))
	earlier := token.Position{File: f, Line: 1, Column: 0}
	later := token.Position{File: f, Line: 2, Column: 1}
	assert.Negative(t, earlier.Compare(later))
	assert.Positive(t, later.Compare(earlier))
	assert.Zero(t, earlier.Compare(earlier))
}

func TestTokenIsZero(t *testing.T) {
	assert.True(t, token.Token{}.IsZero())
	assert.False(t, token.Token{Type: token.Ident, Lexeme: "x"}.IsZero())
}
