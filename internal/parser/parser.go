// Package parser implements a recursive-descent parser for Lox source code.
//
// Grounded on the teacher's golox/parser/parser.go: a panic-based unwind is used to escape
// from deep recursive descent back to the statement boundary on a syntax error, so that the
// rest of the call chain doesn't need to check for an error after every sub-parse.
package parser

import (
	"fmt"

	"github.com/jrcaldwell/lox/internal/ast"
	"github.com/jrcaldwell/lox/internal/loxerr"
	"github.com/jrcaldwell/lox/internal/scanner"
	"github.com/jrcaldwell/lox/internal/token"
)

const maxArgs = 255

// unwind is panicked to unwind the parser's call stack back to safelyParseDecl/safelyParseExpr
// after a syntax error, without threading an error return through every parse method.
type unwind struct{}

type parser struct {
	scan *scanner.Scanner
	tok  token.Token
	next token.Token

	ids  ast.IDGen
	errs loxerr.Errors
}

// Option configures parsing. It's forwarded to the underlying Scanner.
type Option func(*scanner.Scanner)

// Compat forwards the CRAFTING_INTERPRETERS_COMPAT toggle to the scanner.
func Compat(enabled bool) Option {
	return Option(scanner.Compat(enabled))
}

// ParseProgram parses source as a full Lox program of statements. Declarations that fail to
// parse are skipped via panic-mode synchronization; the returned Program holds whatever
// statements (including IllegalStmt placeholders) could be recovered. If any error occurred,
// it is returned as a non-nil error alongside the partial Program.
func ParseProgram(name string, src []byte, opts ...Option) (ast.Program, error) {
	p := newParser(name, src, opts...)
	prog := p.parseProgram()
	return prog, p.allErrors()
}

// ParseExpr parses source as a single expression. Trailing tokens other than EOF are
// reported as an "Expected end of expression." error. At most one expression is ever returned.
func ParseExpr(name string, src []byte, opts ...Option) (ast.Expr, error) {
	p := newParser(name, src, opts...)
	expr := p.parseExprStandalone()
	return expr, p.allErrors()
}

// allErrors merges lex errors accumulated by the scanner with parse errors accumulated while
// parsing, since ParseProgram/ParseExpr are the only entry point most callers go through.
func (p *parser) allErrors() error {
	for _, err := range p.scan.Errs.List() {
		p.errs.Add(err)
	}
	return p.errs.Err()
}

func newParser(name string, src []byte, opts ...Option) *parser {
	scanOpts := make([]scanner.Option, len(opts))
	for i, opt := range opts {
		scanOpts[i] = scanner.Option(opt)
	}
	p := &parser{scan: scanner.New(name, src, scanOpts...)}
	p.advance()
	p.advance()
	return p
}

func (p *parser) parseProgram() ast.Program {
	var stmts []ast.Stmt
	for p.tok.Type != token.EOF {
		stmts = append(stmts, p.safelyParseDecl())
	}
	return ast.Program{Stmts: stmts}
}

func (p *parser) parseExprStandalone() ast.Expr {
	expr := p.safelyParseExpr()
	if expr != nil && p.tok.Type != token.EOF {
		p.addErrorf(p.tok, "Expected end of expression.")
	}
	return expr
}

func (p *parser) safelyParseExpr() (expr ast.Expr) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); ok {
				expr = nil
			} else {
				panic(r)
			}
		}
	}()
	return p.parseExpr()
}

// safelyParseDecl parses a single declaration, recovering via synchronize if it panics with
// unwind. Recovery always consumes at least one token, guaranteeing forward progress.
func (p *parser) safelyParseDecl() (stmt ast.Stmt) {
	from := p.tok
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); ok {
				if p.tok.StartPos == from.StartPos && p.tok.Type != token.EOF {
					// Nothing was consumed before the error, so skip the offending token.
					p.advance()
				}
				to := p.synchronize()
				stmt = &ast.IllegalStmt{From: from, To: to}
			} else {
				panic(r)
			}
		}
	}()
	return p.parseDecl()
}

// synchronize discards tokens until a statement boundary is reached: either a consumed ';'
// or a token that starts a new declaration/statement. The final token consumed or peeked at
// is returned.
func (p *parser) synchronize() token.Token {
	last := p.tok
	for {
		if p.tok.Type == token.Semicolon {
			last = p.tok
			p.advance()
			return last
		}
		switch p.tok.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return, token.EOF:
			return last
		}
		last = p.tok
		p.advance()
	}
}

func (p *parser) parseDecl() ast.Stmt {
	switch {
	case p.tok.Type == token.Class:
		classTok := p.tok
		p.advance()
		return p.parseClassDecl(classTok)
	case p.tok.Type == token.Fun && p.next.Type == token.Ident:
		p.advance()
		return p.parseFunDecl()
	case p.tok.Type == token.Var:
		varTok := p.tok
		p.advance()
		return p.parseVarDecl(varTok)
	default:
		return p.parseStmt()
	}
}

func (p *parser) parseClassDecl(classTok token.Token) ast.Stmt {
	name := p.expectf(token.Ident, "Expect class name.")
	p.expect(token.LeftBrace)
	var methods []*ast.FunctionDecl
	for p.tok.Type != token.RightBrace && p.tok.Type != token.EOF {
		methodName := p.expectf(token.Ident, "Expect method name.")
		methods = append(methods, p.parseFunBody(methodName, methodName))
	}
	rightBrace := p.expectf(token.RightBrace, "Expect '}' after class body.")
	return &ast.ClassDecl{Class: classTok, Name: name, Methods: methods, RightBrace: rightBrace}
}

func (p *parser) parseFunDecl() ast.Stmt {
	name := p.expectf(token.Ident, "Expect function name.")
	return p.parseFunBody(name, name)
}

func (p *parser) parseFunBody(funTok, name token.Token) *ast.FunctionDecl {
	p.expectf(token.LeftParen, "Expect '(' after %s.", funContext(name))
	var params []token.Token
	if p.tok.Type != token.RightParen {
		params = p.parseParams()
	}
	p.expectf(token.RightParen, "Expect ')' after parameters.")
	p.expectf(token.LeftBrace, "Expect '{' before %s body.", funContext(name))
	body, rightBrace := p.parseBlockStmts()
	return &ast.FunctionDecl{Fun: funTok, Name: name, Params: params, Body: body, BodyEnd: rightBrace.End()}
}

func funContext(name token.Token) string {
	return fmt.Sprintf("function %s", name.Lexeme)
}

func (p *parser) parseParams() []token.Token {
	var params []token.Token
	for {
		if len(params) >= maxArgs {
			p.addErrorf(p.tok, "Can't have more than %d parameters.", maxArgs)
		}
		params = append(params, p.expectf(token.Ident, "Expect parameter name."))
		if !p.match(token.Comma) {
			break
		}
	}
	return params
}

func (p *parser) parseVarDecl(varTok token.Token) ast.Stmt {
	name := p.expectf(token.Ident, "Expect variable name.")
	var init ast.Expr
	if p.match(token.Equal) {
		init = p.parseExpr()
	}
	p.expectf(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.VarDecl{Var: varTok, Name: name, Initialiser: init}
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok.Type {
	case token.Print:
		tok := p.tok
		p.advance()
		return p.parsePrintStmt(tok)
	case token.LeftBrace:
		tok := p.tok
		p.advance()
		return p.parseBlock(tok)
	case token.If:
		tok := p.tok
		p.advance()
		return p.parseIfStmt(tok)
	case token.While:
		tok := p.tok
		p.advance()
		return p.parseWhileStmt(tok)
	case token.For:
		tok := p.tok
		p.advance()
		return p.parseForStmt(tok)
	case token.Return:
		tok := p.tok
		p.advance()
		return p.parseReturnStmt(tok)
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr()
	p.expectf(token.Semicolon, "Expect ';' after expression.")
	return &ast.ExprStmt{Expr: expr}
}

func (p *parser) parsePrintStmt(printTok token.Token) ast.Stmt {
	expr := p.parseExpr()
	p.expectf(token.Semicolon, "Expect ';' after value.")
	return &ast.PrintStmt{Print: printTok, Expr: expr}
}

func (p *parser) parseBlock(leftBrace token.Token) ast.Stmt {
	stmts, rightBrace := p.parseBlockStmts()
	return &ast.BlockStmt{LeftBrace: leftBrace, Stmts: stmts, RightBrace: rightBrace}
}

func (p *parser) parseBlockStmts() ([]ast.Stmt, token.Token) {
	var stmts []ast.Stmt
	for p.tok.Type != token.RightBrace && p.tok.Type != token.EOF {
		stmts = append(stmts, p.safelyParseDecl())
	}
	rightBrace := p.expectf(token.RightBrace, "Expect '}' after block.")
	return stmts, rightBrace
}

func (p *parser) parseIfStmt(ifTok token.Token) ast.Stmt {
	p.expectf(token.LeftParen, "Expect '(' after 'if'.")
	cond := p.parseExpr()
	p.expectf(token.RightParen, "Expect ')' after if condition.")
	then := p.parseStmt()
	var elseStmt ast.Stmt
	if p.match(token.Else) {
		elseStmt = p.parseStmt()
	}
	return &ast.IfStmt{If: ifTok, Condition: cond, Then: then, Else: elseStmt}
}

func (p *parser) parseWhileStmt(whileTok token.Token) ast.Stmt {
	p.expectf(token.LeftParen, "Expect '(' after 'while'.")
	cond := p.parseExpr()
	p.expectf(token.RightParen, "Expect ')' after condition.")
	body := p.parseStmt()
	return &ast.WhileStmt{While: whileTok, Condition: cond, Body: body}
}

// parseForStmt desugars `for (init; cond; incr) body` to
// `{ init; while (cond) { body; incr; } }` at parse time, preserving the initializer's
// scope by wrapping the whole thing in a block.
func (p *parser) parseForStmt(forTok token.Token) ast.Stmt {
	p.expectf(token.LeftParen, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.tok.Type == token.Var:
		varTok := p.tok
		p.advance()
		init = p.parseVarDecl(varTok)
	default:
		init = p.parseExprStmt()
	}

	var cond ast.Expr
	if p.tok.Type != token.Semicolon {
		cond = p.parseExpr()
	}
	p.expectf(token.Semicolon, "Expect ';' after loop condition.")

	var incr ast.Expr
	if p.tok.Type != token.RightParen {
		incr = p.parseExpr()
	}
	p.expectf(token.RightParen, "Expect ')' after for clauses.")

	body := p.parseStmt()

	if incr != nil {
		body = &ast.BlockStmt{
			LeftBrace:  forTok,
			Stmts:      []ast.Stmt{body, &ast.ExprStmt{Expr: incr}},
			RightBrace: forTok,
		}
	}
	if cond == nil {
		cond = &ast.LiteralExpr{ID: p.ids.Next(), Value: true, Tok: forTok}
	}
	body = &ast.WhileStmt{While: forTok, Condition: cond, Body: body}
	if init != nil {
		body = &ast.BlockStmt{LeftBrace: forTok, Stmts: []ast.Stmt{init, body}, RightBrace: forTok}
	}
	return body
}

func (p *parser) parseReturnStmt(keyword token.Token) ast.Stmt {
	var value ast.Expr
	if p.tok.Type != token.Semicolon {
		value = p.parseExpr()
	}
	p.expectf(token.Semicolon, "Expect ';' after return value.")
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

// ---- Expressions, lowest to highest precedence ----

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() ast.Expr {
	expr := p.parseLogicalOr()
	if equals, ok := p.match2(token.Equal); ok {
		value := p.parseAssignment()
		switch left := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{ID: p.ids.Next(), Name: left.Name, Value: value}
		case *ast.GetExpr:
			return &ast.SetExpr{ID: p.ids.Next(), Object: left.Object, Name: left.Name, Value: value}
		default:
			p.addErrorf(equals, "Invalid assignment target.")
			return expr
		}
	}
	return expr
}

func (p *parser) parseLogicalOr() ast.Expr {
	expr := p.parseLogicalAnd()
	for {
		op, ok := p.match2(token.Or)
		if !ok {
			return expr
		}
		right := p.parseLogicalAnd()
		expr = &ast.LogicalExpr{ID: p.ids.Next(), Left: expr, Op: op, Right: right}
	}
}

func (p *parser) parseLogicalAnd() ast.Expr {
	expr := p.parseEquality()
	for {
		op, ok := p.match2(token.And)
		if !ok {
			return expr
		}
		right := p.parseEquality()
		expr = &ast.LogicalExpr{ID: p.ids.Next(), Left: expr, Op: op, Right: right}
	}
}

func (p *parser) parseEquality() ast.Expr {
	return p.parseBinary(p.parseComparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) parseComparison() ast.Expr {
	return p.parseBinary(p.parseTerm, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) parseTerm() ast.Expr {
	return p.parseBinary(p.parseFactor, token.Minus, token.Plus)
}

func (p *parser) parseFactor() ast.Expr {
	return p.parseBinary(p.parseUnary, token.Slash, token.Asterisk)
}

func (p *parser) parseBinary(next func() ast.Expr, types ...token.Type) ast.Expr {
	expr := next()
	for {
		op, ok := p.match2(types...)
		if !ok {
			return expr
		}
		right := next()
		expr = &ast.BinaryExpr{ID: p.ids.Next(), Left: expr, Op: op, Right: right}
	}
}

func (p *parser) parseUnary() ast.Expr {
	if op, ok := p.match2(token.Bang, token.Minus); ok {
		right := p.parseUnary()
		return &ast.UnaryExpr{ID: p.ids.Next(), Op: op, Right: right}
	}
	return p.parseCall()
}

func (p *parser) parseCall() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.expectf(token.Ident, "Expect property name after '.'.")
			expr = &ast.GetExpr{ID: p.ids.Next(), Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if p.tok.Type != token.RightParen {
		for {
			if len(args) >= maxArgs {
				p.addErrorf(p.tok, "Can't have more than %d arguments.", maxArgs)
			}
			args = append(args, p.parseExpr())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	rightParen := p.expectf(token.RightParen, "Expect ')' after arguments.")
	return &ast.CallExpr{ID: p.ids.Next(), Callee: callee, ClosingParen: rightParen, Args: args}
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.tok
	switch {
	case p.match(token.False):
		return &ast.LiteralExpr{ID: p.ids.Next(), Value: false, Tok: tok}
	case p.match(token.True):
		return &ast.LiteralExpr{ID: p.ids.Next(), Value: true, Tok: tok}
	case p.match(token.Nil):
		return &ast.LiteralExpr{ID: p.ids.Next(), Value: nil, Tok: tok}
	case p.match(token.Number, token.String):
		return &ast.LiteralExpr{ID: p.ids.Next(), Value: tok.Literal, Tok: tok}
	case p.match(token.This):
		return &ast.ThisExpr{ID: p.ids.Next(), Keyword: tok}
	case p.match(token.Ident):
		return &ast.VariableExpr{ID: p.ids.Next(), Name: tok}
	case p.match(token.LeftParen):
		expr := p.parseExpr()
		rightParen := p.expectf(token.RightParen, "Expect ')' after expression.")
		return &ast.GroupingExpr{ID: p.ids.Next(), LeftParen: tok, Expr: expr, RightParen: rightParen}
	default:
		p.addErrorf(tok, "Expect expression.")
		panic(unwind{})
	}
}

// ---- token stream helpers ----

func (p *parser) match(types ...token.Type) bool {
	_, ok := p.match2(types...)
	return ok
}

func (p *parser) match2(types ...token.Type) (token.Token, bool) {
	for _, t := range types {
		if p.tok.Type == t {
			tok := p.tok
			p.advance()
			return tok, true
		}
	}
	return token.Token{}, false
}

func (p *parser) expect(t token.Type) token.Token {
	return p.expectf(t, "Expect %s.", t.String())
}

func (p *parser) expectf(t token.Type, format string, args ...any) token.Token {
	if p.tok.Type == t {
		tok := p.tok
		p.advance()
		return tok
	}
	p.addErrorf(p.tok, format, args...)
	panic(unwind{})
}

func (p *parser) advance() {
	p.tok = p.next
	p.next = p.scan.Next()
}

func (p *parser) addErrorf(tok token.Token, format string, args ...any) {
	p.errs.Add(loxerr.NewParse(tok, format, args...))
}
