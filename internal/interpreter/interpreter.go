// Package interpreter evaluates a resolved Lox program against a tree of environments.
//
// Grounded on the teacher's golox/interpreter package: a tree-walking visitor over the AST,
// block scoping that always restores the enclosing environment on exit, and a control-flow
// signal (here returnSignal) that's propagated as a Go error value up through statement
// execution rather than a panic, since every execution path in this interpreter already
// threads an error return.
package interpreter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jrcaldwell/lox/internal/ast"
	"github.com/jrcaldwell/lox/internal/loxerr"
	"github.com/jrcaldwell/lox/internal/token"
)

// returnSignal unwinds statement execution back to the enclosing function call. It
// implements error so that it can be threaded through the same return path as a genuine
// runtime error, and is unwrapped by loxFunction.Call before it ever reaches a caller outside
// the interpreter.
type returnSignal struct {
	value loxObject
}

func (returnSignal) Error() string { return "return outside of function" }

func newRuntimeErrorf(tok token.Token, format string, args ...any) error {
	return loxerr.NewRuntime(tok, format, args...)
}

// Interpreter executes a resolved Lox program. Global state (variables declared at the top
// level) persists across successive calls to Interpret, which is what makes REPL sessions
// build on each other.
type Interpreter struct {
	globals   *environment
	env       *environment
	distances map[ast.NodeID]int

	stdout io.Writer
	stderr io.Writer
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// Stdout overrides the stream that `print` statements write to. Defaults to os.Stdout.
func Stdout(w io.Writer) Option {
	return func(i *Interpreter) { i.stdout = w }
}

// Stderr overrides the Interpreter's stderr stream. Defaults to os.Stderr. The Interpreter
// never writes to it itself: runtime errors are returned to the caller, which reports them.
func Stderr(w io.Writer) Option {
	return func(i *Interpreter) { i.stderr = w }
}

// New constructs an Interpreter with the global scope populated with native functions.
func New(opts ...Option) *Interpreter {
	globals := newEnvironment()
	interp := &Interpreter{
		globals: globals,
		env:     globals,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	interp.defineNatives()
	for _, opt := range opts {
		opt(interp)
	}
	return interp
}

func (interp *Interpreter) defineNatives() {
	interp.globals.define("clock", newNativeFunction("clock", 0, func([]loxObject) (loxObject, error) {
		return loxNumber(float64(time.Now().UnixNano()) / float64(time.Second)), nil
	}))
}

// EvalExpr evaluates a single standalone expression (the `evaluate` CLI command's use case,
// where there's no enclosing program to resolve variable bindings against) and returns its
// stringified result.
func (interp *Interpreter) EvalExpr(expr ast.Expr) (string, error) {
	value, err := interp.eval(expr)
	if err != nil {
		return "", err
	}
	return stringify(value), nil
}

// Interpret executes program's statements in order against the interpreter's persistent
// global environment. distances is the binding-distance side table produced by the resolver.
func (interp *Interpreter) Interpret(program ast.Program, distances map[ast.NodeID]int) error {
	interp.distances = distances
	for _, stmt := range program.Stmts {
		if err := interp.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// executeBlock runs stmts with env as the current environment, always restoring the previous
// environment before returning, including when a statement returns an error.
func (interp *Interpreter) executeBlock(stmts []ast.Stmt, env *environment) (loxObject, error) {
	previous := interp.env
	interp.env = env
	defer func() { interp.env = previous }()

	for _, stmt := range stmts {
		if err := interp.execute(stmt); err != nil {
			return nil, err
		}
	}
	return loxNil{}, nil
}

func (interp *Interpreter) execute(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.ExprStmt:
		_, err := interp.eval(stmt.Expr)
		return err
	case *ast.PrintStmt:
		return interp.executePrintStmt(stmt)
	case *ast.VarDecl:
		return interp.executeVarDecl(stmt)
	case *ast.BlockStmt:
		_, err := interp.executeBlock(stmt.Stmts, interp.env.child())
		return err
	case *ast.IfStmt:
		return interp.executeIfStmt(stmt)
	case *ast.WhileStmt:
		return interp.executeWhileStmt(stmt)
	case *ast.FunctionDecl:
		interp.env.define(stmt.Name.Lexeme, newLoxFunction(stmt, interp.env, false))
		return nil
	case *ast.ReturnStmt:
		return interp.executeReturnStmt(stmt)
	case *ast.ClassDecl:
		return interp.executeClassDecl(stmt)
	case *ast.IllegalStmt:
		return nil
	default:
		panic(fmt.Sprintf("interpreter: unexpected statement type %T", stmt))
	}
}

func (interp *Interpreter) executePrintStmt(stmt *ast.PrintStmt) error {
	value, err := interp.eval(stmt.Expr)
	if err != nil {
		return err
	}
	fmt.Fprintln(interp.stdout, stringify(value))
	return nil
}

func (interp *Interpreter) executeVarDecl(stmt *ast.VarDecl) error {
	var value loxObject = loxNil{}
	if stmt.Initialiser != nil {
		v, err := interp.eval(stmt.Initialiser)
		if err != nil {
			return err
		}
		value = v
	}
	interp.env.define(stmt.Name.Lexeme, value)
	return nil
}

func (interp *Interpreter) executeIfStmt(stmt *ast.IfStmt) error {
	cond, err := interp.eval(stmt.Condition)
	if err != nil {
		return err
	}
	switch {
	case isTruthy(cond):
		return interp.execute(stmt.Then)
	case stmt.Else != nil:
		return interp.execute(stmt.Else)
	default:
		return nil
	}
}

func (interp *Interpreter) executeWhileStmt(stmt *ast.WhileStmt) error {
	for {
		cond, err := interp.eval(stmt.Condition)
		if err != nil {
			return err
		}
		if !isTruthy(cond) {
			return nil
		}
		if err := interp.execute(stmt.Body); err != nil {
			return err
		}
	}
}

func (interp *Interpreter) executeReturnStmt(stmt *ast.ReturnStmt) error {
	value := loxObject(loxNil{})
	if stmt.Value != nil {
		v, err := interp.eval(stmt.Value)
		if err != nil {
			return err
		}
		value = v
	}
	return returnSignal{value: value}
}

func (interp *Interpreter) executeClassDecl(stmt *ast.ClassDecl) error {
	interp.env.define(stmt.Name.Lexeme, nil)

	methods := make(map[string]*loxFunction, len(stmt.Methods))
	for _, m := range stmt.Methods {
		methods[m.Name.Lexeme] = newLoxFunction(m, interp.env, m.Name.Lexeme == "init")
	}
	class := newLoxClass(stmt.Name.Lexeme, methods)
	return interp.env.assign(stmt.Name, class)
}

func (interp *Interpreter) eval(expr ast.Expr) (loxObject, error) {
	switch expr := expr.(type) {
	case *ast.LiteralExpr:
		return evalLiteral(expr.Value), nil
	case *ast.GroupingExpr:
		return interp.eval(expr.Expr)
	case *ast.UnaryExpr:
		return interp.evalUnary(expr)
	case *ast.BinaryExpr:
		return interp.evalBinary(expr)
	case *ast.LogicalExpr:
		return interp.evalLogical(expr)
	case *ast.VariableExpr:
		return interp.lookupVariable(expr.ID, expr.Name)
	case *ast.AssignExpr:
		return interp.evalAssign(expr)
	case *ast.CallExpr:
		return interp.evalCall(expr)
	case *ast.GetExpr:
		return interp.evalGet(expr)
	case *ast.SetExpr:
		return interp.evalSet(expr)
	case *ast.ThisExpr:
		return interp.lookupVariable(expr.ID, expr.Keyword)
	default:
		panic(fmt.Sprintf("interpreter: unexpected expression type %T", expr))
	}
}

func evalLiteral(v any) loxObject {
	switch v := v.(type) {
	case nil:
		return loxNil{}
	case bool:
		return loxBool(v)
	case float64:
		return loxNumber(v)
	case string:
		return loxString(v)
	default:
		panic(fmt.Sprintf("interpreter: unexpected literal value %#v", v))
	}
}

func (interp *Interpreter) evalUnary(expr *ast.UnaryExpr) (loxObject, error) {
	right, err := interp.eval(expr.Right)
	if err != nil {
		return nil, err
	}
	if expr.Op.Type == token.Bang {
		return loxBool(!isTruthy(right)), nil
	}
	operand, ok := right.(loxUnaryOperand)
	if !ok {
		return nil, newInvalidUnaryOpErr(expr.Op, right)
	}
	return operand.UnaryOp(expr.Op)
}

func (interp *Interpreter) evalBinary(expr *ast.BinaryExpr) (loxObject, error) {
	left, err := interp.eval(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := interp.eval(expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Op.Type {
	case token.EqualEqual:
		return loxBool(left.Equals(right)), nil
	case token.BangEqual:
		return loxBool(!left.Equals(right)), nil
	}

	operand, ok := left.(loxBinaryOperand)
	if !ok {
		return nil, newInvalidBinaryOpErr(expr.Op, left, right)
	}
	return operand.BinaryOp(expr.Op, right)
}

func (interp *Interpreter) evalLogical(expr *ast.LogicalExpr) (loxObject, error) {
	left, err := interp.eval(expr.Left)
	if err != nil {
		return nil, err
	}
	if expr.Op.Type == token.Or {
		if isTruthy(left) {
			return left, nil
		}
	} else {
		if !isTruthy(left) {
			return left, nil
		}
	}
	return interp.eval(expr.Right)
}

func (interp *Interpreter) lookupVariable(id ast.NodeID, name token.Token) (loxObject, error) {
	if distance, ok := interp.distances[id]; ok {
		return interp.env.getAt(distance, name)
	}
	return interp.globals.get(name)
}

func (interp *Interpreter) evalAssign(expr *ast.AssignExpr) (loxObject, error) {
	value, err := interp.eval(expr.Value)
	if err != nil {
		return nil, err
	}
	if distance, ok := interp.distances[expr.ID]; ok {
		if err := interp.env.assignAt(distance, expr.Name, value); err != nil {
			return nil, err
		}
		return value, nil
	}
	if err := interp.globals.assign(expr.Name, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (interp *Interpreter) evalCall(expr *ast.CallExpr) (loxObject, error) {
	callee, err := interp.eval(expr.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]loxObject, len(expr.Args))
	for i, a := range expr.Args {
		v, err := interp.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	callable, ok := callee.(loxCallable)
	if !ok {
		return nil, newRuntimeErrorf(expr.ClosingParen, "Can only call functions and classes.")
	}
	if len(args) != callable.Arity() {
		return nil, newRuntimeErrorf(expr.ClosingParen, "Expected %d arguments but got %d.", callable.Arity(), len(args))
	}
	return callable.Call(interp, args)
}

func (interp *Interpreter) evalGet(expr *ast.GetExpr) (loxObject, error) {
	object, err := interp.eval(expr.Object)
	if err != nil {
		return nil, err
	}
	accessible, ok := object.(loxPropertyAccessible)
	if !ok {
		return nil, newRuntimeErrorf(expr.Name, "Only instances have properties.")
	}
	return accessible.Property(expr.Name)
}

func (interp *Interpreter) evalSet(expr *ast.SetExpr) (loxObject, error) {
	object, err := interp.eval(expr.Object)
	if err != nil {
		return nil, err
	}
	settable, ok := object.(loxPropertySettable)
	if !ok {
		return nil, newRuntimeErrorf(expr.Name, "Only instances have fields.")
	}
	value, err := interp.eval(expr.Value)
	if err != nil {
		return nil, err
	}
	settable.SetProperty(expr.Name, value)
	return value, nil
}
