// Package resolver performs static resolution of variable references in a Lox program.
//
// Grounded on the teacher's golox/resolver/resolver.go: a stack of lexical scopes tracking
// declared/defined status, producing a side table of binding distances used by the
// interpreter's environment lookups. Extended here for classes and `this`, and keyed by
// ast.NodeID rather than token.Token since two reads of the same variable name are distinct
// nodes with potentially distinct bindings.
package resolver

import (
	"fmt"

	"github.com/jrcaldwell/lox/internal/ast"
	"github.com/jrcaldwell/lox/internal/loxerr"
	"github.com/jrcaldwell/lox/internal/token"
)

type identStatus int

const (
	undeclared identStatus = iota
	declared
	defined
)

type scope map[string]identStatus

func (s scope) declare(name string) { s[name] = declared }
func (s scope) define(name string)  { s[name] = defined }

type funcType int

const (
	noFunc funcType = iota
	inFunc
	inMethod
	inInitMethod
)

type classType int

const (
	noClass classType = iota
	inClass
)

type resolver struct {
	scopes []scope

	currentFunc  funcType
	currentClass classType

	distances map[ast.NodeID]int
	errs      loxerr.Errors
}

// Resolve computes the binding distance of every variable reference and `this` expression in
// program. A distance of 0 means the binding lives in the innermost scope, 1 the parent, and
// so on; an identifier absent from the map is resolved at the global scope (or not at all, an
// error caught at runtime by the interpreter).
func Resolve(program ast.Program) (map[ast.NodeID]int, error) {
	r := &resolver{distances: map[ast.NodeID]int{}}
	r.resolveStmts(program.Stmts)
	if err := r.errs.Err(); err != nil {
		return nil, err
	}
	return r.distances, nil
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) peek() scope {
	return r.scopes[len(r.scopes)-1]
}

func (r *resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.peek()
	if s[name.Lexeme] != undeclared {
		r.errf(name, "Already a variable with this name in this scope.")
		return
	}
	s.declare(name.Lexeme)
}

func (r *resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peek().define(name.Lexeme)
}

func (r *resolver) resolveLocal(id ast.NodeID, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i][name.Lexeme] != undeclared {
			r.distances[id] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *resolver) errf(tok token.Token, format string, args ...any) {
	r.errs.Add(loxerr.NewResolve(tok, format, args...))
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(stmt.Expr)
	case *ast.PrintStmt:
		r.resolveExpr(stmt.Expr)
	case *ast.VarDecl:
		r.resolveVarDecl(stmt)
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(stmt.Stmts)
		r.endScope()
	case *ast.IfStmt:
		r.resolveExpr(stmt.Condition)
		r.resolveStmt(stmt.Then)
		if stmt.Else != nil {
			r.resolveStmt(stmt.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(stmt.Condition)
		r.resolveStmt(stmt.Body)
	case *ast.FunctionDecl:
		r.declare(stmt.Name)
		r.define(stmt.Name)
		r.resolveFunction(stmt, inFunc)
	case *ast.ReturnStmt:
		r.resolveReturnStmt(stmt)
	case *ast.ClassDecl:
		r.resolveClassDecl(stmt)
	case *ast.IllegalStmt:
		// nothing to resolve; the parser already reported an error for this node
	default:
		panic(fmt.Sprintf("resolver: unexpected statement type %T", stmt))
	}
}

func (r *resolver) resolveVarDecl(stmt *ast.VarDecl) {
	r.declare(stmt.Name)
	if stmt.Initialiser != nil {
		r.resolveExpr(stmt.Initialiser)
	}
	r.define(stmt.Name)
}

func (r *resolver) resolveFunction(decl *ast.FunctionDecl, typ funcType) {
	enclosing := r.currentFunc
	r.currentFunc = typ
	defer func() { r.currentFunc = enclosing }()

	r.beginScope()
	defer r.endScope()
	for _, param := range decl.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(decl.Body)
}

func (r *resolver) resolveReturnStmt(stmt *ast.ReturnStmt) {
	if r.currentFunc == noFunc {
		r.errf(stmt.Keyword, "Can't return from top-level code.")
	}
	if stmt.Value != nil {
		if r.currentFunc == inInitMethod {
			r.errf(stmt.Keyword, "Can't return a value from an initializer.")
		}
		r.resolveExpr(stmt.Value)
	}
}

func (r *resolver) resolveClassDecl(stmt *ast.ClassDecl) {
	enclosingClass := r.currentClass
	r.currentClass = inClass
	defer func() { r.currentClass = enclosingClass }()

	r.declare(stmt.Name)
	r.define(stmt.Name)

	r.beginScope()
	r.peek().declare("this")
	r.peek().define("this")
	defer r.endScope()

	for _, method := range stmt.Methods {
		typ := inMethod
		if method.Name.Lexeme == "init" {
			typ = inInitMethod
		}
		r.resolveFunction(method, typ)
	}
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch expr := expr.(type) {
	case *ast.LiteralExpr:
		// nothing to resolve
	case *ast.GroupingExpr:
		r.resolveExpr(expr.Expr)
	case *ast.UnaryExpr:
		r.resolveExpr(expr.Right)
	case *ast.BinaryExpr:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case *ast.LogicalExpr:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case *ast.VariableExpr:
		r.resolveVariableExpr(expr)
	case *ast.AssignExpr:
		r.resolveExpr(expr.Value)
		r.resolveLocal(expr.ID, expr.Name)
	case *ast.CallExpr:
		r.resolveExpr(expr.Callee)
		for _, arg := range expr.Args {
			r.resolveExpr(arg)
		}
	case *ast.GetExpr:
		r.resolveExpr(expr.Object)
	case *ast.SetExpr:
		r.resolveExpr(expr.Value)
		r.resolveExpr(expr.Object)
	case *ast.ThisExpr:
		if r.currentClass == noClass {
			r.errf(expr.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(expr.ID, expr.Keyword)
	default:
		panic(fmt.Sprintf("resolver: unexpected expression type %T", expr))
	}
}

func (r *resolver) resolveVariableExpr(expr *ast.VariableExpr) {
	if len(r.scopes) > 0 && r.peek()[expr.Name.Lexeme] == declared {
		r.errf(expr.Name, "Can't read local variable in its own initializer.")
		return
	}
	r.resolveLocal(expr.ID, expr.Name)
}
