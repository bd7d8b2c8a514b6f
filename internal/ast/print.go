package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jrcaldwell/lox/internal/token"
)

// Sprint formats an expression using the parenthesised notation required by the `parse`
// CLI command: `(op a b)` for a binary/logical operator, `(group x)` for a grouping,
// a unary operator as a prefix, `AND`/`OR` (uppercase) for logical operators, `fn(arg, arg)`
// for a call, and `= name value` for an assignment.
func Sprint(e Expr) string {
	var b strings.Builder
	sprintExpr(&b, e)
	return b.String()
}

func sprintExpr(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *LiteralExpr:
		b.WriteString(sprintLiteral(e.Value))
	case *GroupingExpr:
		sprintSexpr(b, "group", e.Expr)
	case *UnaryExpr:
		sprintSexpr(b, e.Op.Lexeme, e.Right)
	case *BinaryExpr:
		sprintSexpr(b, e.Op.Lexeme, e.Left, e.Right)
	case *LogicalExpr:
		sprintSexpr(b, strings.ToUpper(e.Op.Lexeme), e.Left, e.Right)
	case *VariableExpr:
		b.WriteString(e.Name.Lexeme)
	case *ThisExpr:
		b.WriteString(e.Keyword.Lexeme)
	case *AssignExpr:
		fmt.Fprint(b, "(= ", e.Name.Lexeme, " ", Sprint(e.Value), ")")
	case *CallExpr:
		sprintCall(b, e)
	case *GetExpr:
		fmt.Fprint(b, "(. ", Sprint(e.Object), " ", e.Name.Lexeme, ")")
	case *SetExpr:
		fmt.Fprint(b, "(= (. ", Sprint(e.Object), " ", e.Name.Lexeme, ") ", Sprint(e.Value), ")")
	default:
		panic(fmt.Sprintf("ast.Sprint: unexpected expression type %T", e))
	}
}

func sprintSexpr(b *strings.Builder, name string, exprs ...Expr) {
	fmt.Fprint(b, "(", name)
	for _, e := range exprs {
		b.WriteByte(' ')
		sprintExpr(b, e)
	}
	b.WriteByte(')')
}

func sprintCall(b *strings.Builder, e *CallExpr) {
	sprintExpr(b, e.Callee)
	b.WriteByte('(')
	for i, arg := range e.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		sprintExpr(b, arg)
	}
	b.WriteByte(')')
}

// sprintLiteral formats a literal value the way the `parse` command requires: numbers with
// integral values print with a trailing ".0", booleans print lowercase, nil prints "nil",
// strings print without quotes.
func sprintLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return token.Nil.String()
	case bool:
		if v {
			return token.True.String()
		}
		return token.False.String()
	case float64:
		return FormatNumber(v)
	case string:
		return v
	default:
		panic(fmt.Sprintf("ast.sprintLiteral: unexpected literal type %T", v))
	}
}

// FormatNumber formats a float64 the way Lox literals print: integral values always show a
// ".0" suffix (matching the `tokenize`/`parse` commands), other values use the shortest
// round-tripping decimal representation.
func FormatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PrintProgram renders a whole program as an indented sequence of s-expressions, one per
// top-level statement, for the `-print-ast` diagnostic flag.
func PrintProgram(p Program) string {
	var b strings.Builder
	for i, stmt := range p.Stmts {
		if i > 0 {
			b.WriteByte('\n')
		}
		sprintStmt(&b, stmt, 0)
	}
	return b.String()
}

func sprintStmt(b *strings.Builder, s Stmt, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	switch s := s.(type) {
	case *ExprStmt:
		fmt.Fprint(b, "(; ", Sprint(s.Expr), ")")
	case *PrintStmt:
		fmt.Fprint(b, "(print ", Sprint(s.Expr), ")")
	case *VarDecl:
		if s.Initialiser != nil {
			fmt.Fprint(b, "(var ", s.Name.Lexeme, " ", Sprint(s.Initialiser), ")")
		} else {
			fmt.Fprint(b, "(var ", s.Name.Lexeme, ")")
		}
	case *BlockStmt:
		b.WriteString("(block\n")
		for _, stmt := range s.Stmts {
			sprintStmt(b, stmt, depth+1)
			b.WriteByte('\n')
		}
		b.WriteString(indent + ")")
	case *IfStmt:
		fmt.Fprint(b, "(if ", Sprint(s.Condition))
		b.WriteByte('\n')
		sprintStmt(b, s.Then, depth+1)
		if s.Else != nil {
			b.WriteByte('\n')
			sprintStmt(b, s.Else, depth+1)
		}
		b.WriteByte(')')
	case *WhileStmt:
		fmt.Fprint(b, "(while ", Sprint(s.Condition), "\n")
		sprintStmt(b, s.Body, depth+1)
		b.WriteByte(')')
	case *FunctionDecl:
		fmt.Fprint(b, "(fun ", s.Name.Lexeme, "(")
		for i, p := range s.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Lexeme)
		}
		b.WriteString(")\n")
		for _, stmt := range s.Body {
			sprintStmt(b, stmt, depth+1)
			b.WriteByte('\n')
		}
		b.WriteString(indent + ")")
	case *ReturnStmt:
		if s.Value != nil {
			fmt.Fprint(b, "(return ", Sprint(s.Value), ")")
		} else {
			b.WriteString("(return)")
		}
	case *ClassDecl:
		fmt.Fprint(b, "(class ", s.Name.Lexeme, "\n")
		for _, m := range s.Methods {
			sprintStmt(b, m, depth+1)
			b.WriteByte('\n')
		}
		b.WriteString(indent + ")")
	case *IllegalStmt:
		b.WriteString("(illegal)")
	default:
		panic(fmt.Sprintf("ast.PrintProgram: unexpected statement type %T", s))
	}
}
