package interpreter

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/jrcaldwell/lox/internal/token"
)

// environment is a lexical scope mapping names to values, chained to its enclosing scope.
// Grounded on the teacher's golox/interpreter/environment.go, with the value table backed by
// a Swiss-table map rather than a built-in map, since environments are created and torn down
// on every block/call/loop iteration and this is the hottest allocation in the interpreter.
type environment struct {
	parent *environment
	values *swiss.Map[string, loxObject]
}

func newEnvironment() *environment {
	return &environment{values: swiss.NewMap[string, loxObject](8)}
}

// child returns a new environment enclosed by e.
func (e *environment) child() *environment {
	return &environment{parent: e, values: swiss.NewMap[string, loxObject](8)}
}

// define binds name to value in this environment, replacing any existing binding. The
// resolver rejects redeclaration in local scopes; globals may be redeclared freely.
func (e *environment) define(name string, value loxObject) {
	e.values.Put(name, value)
}

// assign updates the value already bound to tok.Lexeme in this environment.
func (e *environment) assign(tok token.Token, value loxObject) error {
	if !e.values.Has(tok.Lexeme) {
		return newRuntimeErrorf(tok, "Undefined variable '%s'.", tok.Lexeme)
	}
	e.values.Put(tok.Lexeme, value)
	return nil
}

func (e *environment) assignAt(distance int, tok token.Token, value loxObject) error {
	return e.ancestor(distance).assign(tok, value)
}

// get returns the value bound to tok.Lexeme, searching only this environment.
func (e *environment) get(tok token.Token) (loxObject, error) {
	if value, ok := e.values.Get(tok.Lexeme); ok {
		return value, nil
	}
	return nil, newRuntimeErrorf(tok, "Undefined variable '%s'.", tok.Lexeme)
}

func (e *environment) getAt(distance int, tok token.Token) (loxObject, error) {
	return e.ancestor(distance).get(tok)
}

func (e *environment) getByName(name string) loxObject {
	value, ok := e.values.Get(name)
	if !ok {
		panic(fmt.Sprintf("interpreter: %s has not been defined", name))
	}
	return value
}

func (e *environment) ancestor(distance int) *environment {
	env := e
	for range distance {
		env = env.parent
		if env == nil {
			panic(fmt.Sprintf("interpreter: ancestor %d is out of range", distance))
		}
	}
	return env
}
