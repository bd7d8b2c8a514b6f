package interpreter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dolthub/swiss"

	"github.com/jrcaldwell/lox/internal/ast"
	"github.com/jrcaldwell/lox/internal/token"
)

// loxType names a runtime value's type, for use in error messages.
type loxType string

const (
	typeNumber   loxType = "number"
	typeString   loxType = "string"
	typeBool     loxType = "boolean"
	typeNil      loxType = "nil"
	typeFunction loxType = "function"
	typeClass    loxType = "class"
	typeInstance loxType = "instance"
)

// loxObject is any Lox runtime value.
type loxObject interface {
	String() string
	Type() loxType
	Equals(other loxObject) bool
}

// loxUnaryOperand is implemented by values that a unary operator can apply to.
type loxUnaryOperand interface {
	UnaryOp(op token.Token) (loxObject, error)
}

// loxBinaryOperand is implemented by values that a binary operator can apply to.
type loxBinaryOperand interface {
	BinaryOp(op token.Token, right loxObject) (loxObject, error)
}

// loxTruther is implemented by values with a truthiness other than "everything but nil and
// false is truthy" (which is the interpreter's default for values that don't implement it).
type loxTruther interface {
	IsTruthy() bool
}

// loxCallable is implemented by values that can appear as the callee of a call expression.
type loxCallable interface {
	Arity() int
	Call(interp *Interpreter, args []loxObject) (loxObject, error)
}

// loxPropertyAccessible is implemented by values that support `.name` reads.
type loxPropertyAccessible interface {
	Property(name token.Token) (loxObject, error)
}

// loxPropertySettable is implemented by values that support `.name = value` writes.
type loxPropertySettable interface {
	SetProperty(name token.Token, value loxObject)
}

func newInvalidUnaryOpErr(op token.Token, right loxObject) error {
	return newRuntimeErrorf(op, "Operand must be a number.")
}

func newInvalidBinaryOpErr(op token.Token, left, right loxObject) error {
	if op.Type == token.Plus {
		return newRuntimeErrorf(op, "Operands must be two numbers or two strings.")
	}
	return newRuntimeErrorf(op, "Operands must be numbers.")
}

// loxNumber is a Lox number, stored as a float64 throughout per spec.
type loxNumber float64

var (
	_ loxObject        = loxNumber(0)
	_ loxUnaryOperand  = loxNumber(0)
	_ loxBinaryOperand = loxNumber(0)
)

// String formats the number the way runtime values print: integral values show no decimal
// point ("3" not "3.0"), negative zero prints as "-0", everything else as the shortest
// round-tripping decimal. This differs from ast.FormatNumber, which the tokenize/parse
// commands use to print source literals with a forced ".0" suffix.
func (n loxNumber) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0 && math.Signbit(f):
		return "-0"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

func (n loxNumber) Type() loxType { return typeNumber }

func (n loxNumber) Equals(other loxObject) bool {
	otherNumber, ok := other.(loxNumber)
	return ok && n == otherNumber
}

func (n loxNumber) UnaryOp(op token.Token) (loxObject, error) {
	if op.Type == token.Minus {
		return -n, nil
	}
	return nil, newInvalidUnaryOpErr(op, n)
}

func (n loxNumber) BinaryOp(op token.Token, right loxObject) (loxObject, error) {
	r, ok := right.(loxNumber)
	if !ok {
		return nil, newInvalidBinaryOpErr(op, n, right)
	}
	switch op.Type {
	case token.Plus:
		return n + r, nil
	case token.Minus:
		return n - r, nil
	case token.Asterisk:
		return n * r, nil
	case token.Slash:
		return n / r, nil
	case token.Greater:
		return loxBool(n > r), nil
	case token.GreaterEqual:
		return loxBool(n >= r), nil
	case token.Less:
		return loxBool(n < r), nil
	case token.LessEqual:
		return loxBool(n <= r), nil
	default:
		return nil, newInvalidBinaryOpErr(op, n, right)
	}
}

// loxString is a Lox string.
type loxString string

var (
	_ loxObject        = loxString("")
	_ loxBinaryOperand = loxString("")
)

func (s loxString) String() string { return string(s) }
func (s loxString) Type() loxType  { return typeString }

func (s loxString) Equals(other loxObject) bool {
	otherString, ok := other.(loxString)
	return ok && s == otherString
}

// BinaryOp supports only string concatenation with '+'. Comparison operators require
// numbers on both sides per spec, even when both operands are strings.
func (s loxString) BinaryOp(op token.Token, right loxObject) (loxObject, error) {
	if op.Type != token.Plus {
		return nil, newInvalidBinaryOpErr(op, s, right)
	}
	r, ok := right.(loxString)
	if !ok {
		return nil, newInvalidBinaryOpErr(op, s, right)
	}
	return s + r, nil
}

// loxBool is a Lox boolean.
type loxBool bool

var (
	_ loxObject  = loxBool(false)
	_ loxTruther = loxBool(false)
)

func (b loxBool) String() string {
	if b {
		return token.True.String()
	}
	return token.False.String()
}

func (b loxBool) Type() loxType { return typeBool }

func (b loxBool) Equals(other loxObject) bool {
	otherBool, ok := other.(loxBool)
	return ok && b == otherBool
}

func (b loxBool) IsTruthy() bool { return bool(b) }

// loxNil is Lox's nil value.
type loxNil struct{}

var (
	_ loxObject  = loxNil{}
	_ loxTruther = loxNil{}
)

func (loxNil) String() string { return token.Nil.String() }
func (loxNil) Type() loxType  { return typeNil }

func (n loxNil) Equals(other loxObject) bool {
	_, ok := other.(loxNil)
	return ok
}

func (loxNil) IsTruthy() bool { return false }

// nativeFuncBody is the body of a built-in function exposed to Lox code, e.g. clock().
type nativeFuncBody func(args []loxObject) (loxObject, error)

// loxFunction is a Lox function: either a user-defined closure over a FunctionDecl, or a
// native function implemented in Go.
type loxFunction struct {
	name       string
	params     []token.Token
	body       []ast.Stmt
	closure    *environment
	isInit     bool
	nativeBody nativeFuncBody
	nativeAr   int
}

func newLoxFunction(decl *ast.FunctionDecl, closure *environment, isInit bool) *loxFunction {
	return &loxFunction{
		name:    decl.Name.Lexeme,
		params:  decl.Params,
		body:    decl.Body,
		closure: closure,
		isInit:  isInit,
	}
}

func newNativeFunction(name string, arity int, body nativeFuncBody) *loxFunction {
	return &loxFunction{name: name, nativeAr: arity, nativeBody: body}
}

var (
	_ loxObject   = &loxFunction{}
	_ loxCallable = &loxFunction{}
)

func (f *loxFunction) String() string {
	if f.nativeBody != nil {
		return "<native fn>"
	}
	return fmt.Sprintf("<fn %s>", f.name)
}

func (f *loxFunction) Type() loxType { return typeFunction }

func (f *loxFunction) Equals(other loxObject) bool {
	otherFunc, ok := other.(*loxFunction)
	return ok && f == otherFunc
}

func (f *loxFunction) Arity() int {
	if f.nativeBody != nil {
		return f.nativeAr
	}
	return len(f.params)
}

func (f *loxFunction) Call(interp *Interpreter, args []loxObject) (loxObject, error) {
	if f.nativeBody != nil {
		return f.nativeBody(args)
	}

	env := f.closure.child()
	for i, param := range f.params {
		env.define(param.Lexeme, args[i])
	}
	result, err := interp.executeBlock(f.body, env)
	if err != nil {
		if ret, ok := err.(returnSignal); ok {
			if f.isInit {
				return f.closure.getByName("this"), nil
			}
			return ret.value, nil
		}
		return nil, err
	}
	_ = result
	if f.isInit {
		return f.closure.getByName("this"), nil
	}
	return loxNil{}, nil
}

// bind returns a copy of f whose closure additionally binds "this" to instance, used when a
// method is looked up off an instance.
func (f *loxFunction) bind(instance *loxInstance) *loxFunction {
	env := f.closure.child()
	env.define("this", instance)
	fCopy := *f
	fCopy.closure = env
	return &fCopy
}

// loxClass is a Lox class: a flat table of methods with no superclass (see DESIGN.md for why
// inheritance was left out of scope).
type loxClass struct {
	name    string
	methods map[string]*loxFunction
}

func newLoxClass(name string, methods map[string]*loxFunction) *loxClass {
	return &loxClass{name: name, methods: methods}
}

var (
	_ loxObject   = &loxClass{}
	_ loxCallable = &loxClass{}
)

func (c *loxClass) String() string { return c.name }
func (c *loxClass) Type() loxType  { return typeClass }

func (c *loxClass) Equals(other loxObject) bool {
	otherClass, ok := other.(*loxClass)
	return ok && c == otherClass
}

func (c *loxClass) findMethod(name string) (*loxFunction, bool) {
	m, ok := c.methods[name]
	return m, ok
}

func (c *loxClass) Arity() int {
	if init, ok := c.findMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *loxClass) Call(interp *Interpreter, args []loxObject) (loxObject, error) {
	instance := newLoxInstance(c)
	if init, ok := c.findMethod("init"); ok {
		if _, err := init.bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// loxInstance is an instance of a loxClass, with a mutable field table separate from the
// class's method table.
type loxInstance struct {
	class  *loxClass
	fields *swiss.Map[string, loxObject]
}

func newLoxInstance(class *loxClass) *loxInstance {
	return &loxInstance{class: class, fields: swiss.NewMap[string, loxObject](4)}
}

var (
	_ loxObject             = &loxInstance{}
	_ loxPropertyAccessible = &loxInstance{}
	_ loxPropertySettable   = &loxInstance{}
)

func (i *loxInstance) String() string { return fmt.Sprintf("%s instance", i.class.name) }
func (i *loxInstance) Type() loxType  { return typeInstance }

func (i *loxInstance) Equals(other loxObject) bool {
	otherInstance, ok := other.(*loxInstance)
	return ok && i == otherInstance
}

func (i *loxInstance) Property(name token.Token) (loxObject, error) {
	if value, ok := i.fields.Get(name.Lexeme); ok {
		return value, nil
	}
	if method, ok := i.class.findMethod(name.Lexeme); ok {
		return method.bind(i), nil
	}
	return nil, newRuntimeErrorf(name, "Undefined property '%s'.", name.Lexeme)
}

func (i *loxInstance) SetProperty(name token.Token, value loxObject) {
	i.fields.Put(name.Lexeme, value)
}

// isTruthy reports a value's truthiness: everything except nil and false is truthy, unless
// the value implements loxTruther with different semantics.
func isTruthy(v loxObject) bool {
	if t, ok := v.(loxTruther); ok {
		return t.IsTruthy()
	}
	return true
}

func stringify(v loxObject) string {
	return v.String()
}
