package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrcaldwell/lox/internal/ast"
	"github.com/jrcaldwell/lox/internal/parser"
	"github.com/jrcaldwell/lox/internal/resolver"
)

func mustParse(t *testing.T, src string) ast.Program {
	t.Helper()
	program, err := parser.ParseProgram(t.Name(), []byte(src))
	require.NoError(t, err)
	return program
}

func TestResolveLocalVariableDistance(t *testing.T) {
	program := mustParse(t, `
		var a = 1;
		{
			var a = 2;
			print a;
		}
	`)
	distances, err := resolver.Resolve(program)
	require.NoError(t, err)

	block := program.Stmts[1].(*ast.BlockStmt)
	printStmt := block.Stmts[1].(*ast.PrintStmt)
	variable := printStmt.Expr.(*ast.VariableExpr)
	assert.Equal(t, 0, distances[variable.ID])
}

func TestResolveEnclosingScopeDistance(t *testing.T) {
	program := mustParse(t, `
		fun outer() {
			var a = 1;
			fun inner() {
				print a;
			}
		}
	`)
	distances, err := resolver.Resolve(program)
	require.NoError(t, err)

	outer := program.Stmts[0].(*ast.FunctionDecl)
	inner := outer.Body[1].(*ast.FunctionDecl)
	printStmt := inner.Body[0].(*ast.PrintStmt)
	variable := printStmt.Expr.(*ast.VariableExpr)
	assert.Equal(t, 1, distances[variable.ID])
}

func TestResolveGlobalHasNoDistance(t *testing.T) {
	program := mustParse(t, `
		var a = 1;
		print a;
	`)
	distances, err := resolver.Resolve(program)
	require.NoError(t, err)

	printStmt := program.Stmts[1].(*ast.PrintStmt)
	variable := printStmt.Expr.(*ast.VariableExpr)
	_, ok := distances[variable.ID]
	assert.False(t, ok, "globals should have no recorded distance")
}

func TestResolveSameNameAtDifferentPositionsAreDistinctNodes(t *testing.T) {
	program := mustParse(t, `
		var x = 1;
		{
			var x = 2;
			print x;
			print x;
		}
	`)
	distances, err := resolver.Resolve(program)
	require.NoError(t, err)

	block := program.Stmts[1].(*ast.BlockStmt)
	first := block.Stmts[1].(*ast.PrintStmt).Expr.(*ast.VariableExpr)
	second := block.Stmts[2].(*ast.PrintStmt).Expr.(*ast.VariableExpr)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, distances[first.ID], distances[second.ID])
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "redeclare in same scope",
			src:  `{ var a = 1; var a = 2; }`,
			want: "Already a variable with this name in this scope.",
		},
		{
			name: "read in own initialiser",
			src:  `{ var a = a; }`,
			want: "Can't read local variable in its own initializer.",
		},
		{
			name: "return at top level",
			src:  `return 1;`,
			want: "Can't return from top-level code.",
		},
		{
			name: "return value from initializer",
			src:  `class C { init() { return 1; } }`,
			want: "Can't return a value from an initializer.",
		},
		{
			name: "this outside class",
			src:  `print this;`,
			want: "Can't use 'this' outside of a class.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := mustParse(t, tt.src)
			_, err := resolver.Resolve(program)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveThisInsideMethod(t *testing.T) {
	program := mustParse(t, `
		class Box {
			value() {
				return this;
			}
		}
	`)
	_, err := resolver.Resolve(program)
	assert.NoError(t, err)
}
