package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrcaldwell/lox/internal/ast"
	"github.com/jrcaldwell/lox/internal/parser"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"literal", "1 + 2", "(+ 1.0 2.0)"},
		{"precedence", "1 + 2 * 3", "(+ 1.0 (* 2.0 3.0))"},
		{"grouping", "(1 + 2) * 3", "(* (group (+ 1.0 2.0)) 3.0)"},
		{"unary", "-1", "(- 1.0)"},
		{"comparison chain", "1 < 2 == true", "(== (< 1.0 2.0) true)"},
		{"string concat", `"a" + "b"`, `(+ a b)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := parser.ParseExpr(tt.name, []byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.Sprint(expr))
		})
	}
}

func TestParseExprTrailingTokensIsError(t *testing.T) {
	_, err := parser.ParseExpr("test", []byte("1 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected end of expression.")
}

func TestParseExprSyntaxError(t *testing.T) {
	_, err := parser.ParseExpr("test", []byte("1 +"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expect expression.")
}

func TestParseProgramRecoversFromErrors(t *testing.T) {
	src := `
		var a = 1;
		var = 2;
		var b = 3;
	`
	program, err := parser.ParseProgram("test", []byte(src))
	require.Error(t, err)
	require.Len(t, program.Stmts, 3)
	_, isIllegal := program.Stmts[1].(*ast.IllegalStmt)
	assert.True(t, isIllegal, "expected second statement to be an IllegalStmt placeholder")
	_, isVarDecl := program.Stmts[2].(*ast.VarDecl)
	assert.True(t, isVarDecl, "expected parsing to resume after the error")
}

func TestParseForDesugarsToWhile(t *testing.T) {
	src := `for (var i = 0; i < 10; i = i + 1) print i;`
	program, err := parser.ParseProgram("test", []byte(src))
	require.NoError(t, err)
	require.Len(t, program.Stmts, 1)

	outer, ok := program.Stmts[0].(*ast.BlockStmt)
	require.True(t, ok, "expected the for loop to desugar to an enclosing block")
	require.Len(t, outer.Stmts, 2)
	_, ok = outer.Stmts[0].(*ast.VarDecl)
	assert.True(t, ok, "expected the initializer to be hoisted into the enclosing block")
	_, ok = outer.Stmts[1].(*ast.WhileStmt)
	assert.True(t, ok, "expected the loop body to desugar to a while statement")
}

func TestParseForMissingConditionDefaultsToTrue(t *testing.T) {
	src := `for (;;) print 1;`
	program, err := parser.ParseProgram("test", []byte(src))
	require.NoError(t, err)
	whileStmt := program.Stmts[0].(*ast.WhileStmt)
	lit, ok := whileStmt.Condition.(*ast.LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, true, lit.Value)
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	_, err := parser.ParseProgram("test", []byte(`1 = 2;`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestParseClassDecl(t *testing.T) {
	src := `class Greeter { greet() { print "hi"; } }`
	program, err := parser.ParseProgram("test", []byte(src))
	require.NoError(t, err)
	class, ok := program.Stmts[0].(*ast.ClassDecl)
	require.True(t, ok)
	assert.Equal(t, "Greeter", class.Name.Lexeme)
	require.Len(t, class.Methods, 1)
	assert.Equal(t, "greet", class.Methods[0].Name.Lexeme)
}

func TestParseCompatModeForwardedToScanner(t *testing.T) {
	_, err := parser.ParseExpr("test", []byte("@"), parser.Compat(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected character.")
	assert.NotContains(t, err.Error(), "@")
}

func TestParseLexErrorsAreMergedIntoResult(t *testing.T) {
	// A source with only a lex error (no parse error) must still surface as a non-nil error.
	_, err := parser.ParseExpr("test", []byte("@"))
	require.Error(t, err)
}
