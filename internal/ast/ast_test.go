package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jrcaldwell/lox/internal/ast"
	"github.com/jrcaldwell/lox/internal/token"
)

func numLit(f float64) *ast.LiteralExpr {
	return &ast.LiteralExpr{Value: f}
}

func TestSprintBinary(t *testing.T) {
	expr := &ast.BinaryExpr{
		Left:  numLit(1),
		Op:    token.Token{Lexeme: "+"},
		Right: numLit(2),
	}
	assert.Equal(t, "(+ 1.0 2.0)", ast.Sprint(expr))
}

func TestSprintGrouping(t *testing.T) {
	expr := &ast.GroupingExpr{Expr: numLit(3)}
	assert.Equal(t, "(group 3.0)", ast.Sprint(expr))
}

func TestSprintLogicalUppercasesOperator(t *testing.T) {
	expr := &ast.LogicalExpr{
		Left:  &ast.LiteralExpr{Value: true},
		Op:    token.Token{Lexeme: "and"},
		Right: &ast.LiteralExpr{Value: false},
	}
	assert.Equal(t, "(AND true false)", ast.Sprint(expr))
}

func TestSprintNilLiteral(t *testing.T) {
	assert.Equal(t, "nil", ast.Sprint(&ast.LiteralExpr{Value: nil}))
}

func TestSprintStringLiteralHasNoQuotes(t *testing.T) {
	assert.Equal(t, "hello", ast.Sprint(&ast.LiteralExpr{Value: "hello"}))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1.0", ast.FormatNumber(1))
	assert.Equal(t, "1.5", ast.FormatNumber(1.5))
	assert.Equal(t, "-2.0", ast.FormatNumber(-2))
}

func TestPrintProgramVarDecl(t *testing.T) {
	program := ast.Program{
		Stmts: []ast.Stmt{
			&ast.VarDecl{Name: token.Token{Lexeme: "a"}, Initialiser: numLit(1)},
		},
	}
	assert.Equal(t, "(var a 1.0)", ast.PrintProgram(program))
}

func TestPrintProgramBlock(t *testing.T) {
	program := ast.Program{
		Stmts: []ast.Stmt{
			&ast.BlockStmt{Stmts: []ast.Stmt{
				&ast.PrintStmt{Expr: numLit(1)},
			}},
		},
	}
	want := "(block\n  (print 1.0)\n)"
	assert.Equal(t, want, ast.PrintProgram(program))
}
