// Command lox is the Lox interpreter's command-line entry point.
//
// Grounded on the teacher's golox/main.go for its REPL and flag handling, adapted to dispatch
// the four subcommands (tokenize, parse, evaluate, run) this exercise's CLI contract requires
// instead of the teacher's own command set.
package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/jrcaldwell/lox/internal/ast"
	"github.com/jrcaldwell/lox/internal/interpreter"
	"github.com/jrcaldwell/lox/internal/loxconfig"
	"github.com/jrcaldwell/lox/internal/parser"
	"github.com/jrcaldwell/lox/internal/resolver"
	"github.com/jrcaldwell/lox/internal/scanner"
	"github.com/jrcaldwell/lox/internal/token"
)

const (
	exitOK      = 0
	exitCompile = 65
	exitRuntime = 70
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := loxconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}

	if len(args) == 0 {
		if err := runREPL(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitRuntime
		}
		return exitOK
	}

	command := args[0]
	rest := args[1:]
	printAST := false
	var path string
	for _, a := range rest {
		if a == "-p" || a == "-print-ast" {
			printAST = true
			continue
		}
		path = a
	}
	if path == "" {
		usage()
		return 2
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}

	switch command {
	case "tokenize":
		return tokenize(path, src, cfg)
	case "parse":
		return parseCmd(path, src, cfg)
	case "evaluate":
		return evaluate(path, src, cfg)
	case "run":
		return runProgram(path, src, cfg, printAST)
	default:
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lox tokenize <path>")
	fmt.Fprintln(os.Stderr, "  lox parse <path>")
	fmt.Fprintln(os.Stderr, "  lox evaluate <path>")
	fmt.Fprintln(os.Stderr, "  lox run [-p] <path>")
	fmt.Fprintln(os.Stderr, "  lox                  (start a REPL)")
}

func parserOpts(cfg loxconfig.Config) []parser.Option {
	return []parser.Option{parser.Compat(cfg.Compat)}
}

// cliKindNames maps token.Type to the SCREAMING_SNAKE_CASE names the tokenize command must
// print, distinct from token.Type.String()'s lowercase diagnostic names. Grounded on
// original_source/app/scanner.py's TokenType(IntEnum) member names.
var cliKindNames = map[token.Type]string{
	token.EOF:          "EOF",
	token.LeftParen:    "LEFT_PAREN",
	token.RightParen:   "RIGHT_PAREN",
	token.LeftBrace:    "LEFT_BRACE",
	token.RightBrace:   "RIGHT_BRACE",
	token.Comma:        "COMMA",
	token.Dot:          "DOT",
	token.Minus:        "MINUS",
	token.Plus:         "PLUS",
	token.Semicolon:    "SEMICOLON",
	token.Slash:        "SLASH",
	token.Asterisk:     "STAR",
	token.Bang:         "BANG",
	token.BangEqual:    "BANG_EQUAL",
	token.Equal:        "EQUAL",
	token.EqualEqual:   "EQUAL_EQUAL",
	token.Greater:      "GREATER",
	token.GreaterEqual: "GREATER_EQUAL",
	token.Less:         "LESS",
	token.LessEqual:    "LESS_EQUAL",
	token.Ident:        "IDENTIFIER",
	token.String:       "STRING",
	token.Number:       "NUMBER",
	token.And:          "AND",
	token.Class:        "CLASS",
	token.Else:         "ELSE",
	token.False:        "FALSE",
	token.Fun:          "FUN",
	token.For:          "FOR",
	token.If:           "IF",
	token.Nil:          "NIL",
	token.Or:           "OR",
	token.Print:        "PRINT",
	token.Return:       "RETURN",
	token.Super:        "SUPER",
	token.This:         "THIS",
	token.True:         "TRUE",
	token.Var:          "VAR",
	token.While:        "WHILE",
}

// formatCLIToken renders a single token line for the tokenize command: KIND LEXEME LITERAL.
func formatCLIToken(tok token.Token) string {
	kind, ok := cliKindNames[tok.Type]
	if !ok {
		kind = strings.ToUpper(tok.Type.String())
	}
	return fmt.Sprintf("%s %s %s", kind, tok.Lexeme, cliLiteral(tok))
}

func cliLiteral(tok token.Token) string {
	switch v := tok.Literal.(type) {
	case nil:
		return "null"
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return ast.FormatNumber(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func tokenize(path string, src []byte, cfg loxconfig.Config) int {
	sc := scanner.New(path, src, scanner.Compat(cfg.Compat))
	toks := sc.ScanTokens()
	for _, tok := range toks {
		fmt.Println(formatCLIToken(tok))
	}
	if err := sc.Errs.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompile
	}
	return exitOK
}

func parseCmd(path string, src []byte, cfg loxconfig.Config) int {
	expr, err := parser.ParseExpr(path, src, parserOpts(cfg)...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompile
	}
	fmt.Println(ast.Sprint(expr))
	return exitOK
}

func evaluate(path string, src []byte, cfg loxconfig.Config) int {
	expr, err := parser.ParseExpr(path, src, parserOpts(cfg)...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompile
	}

	interp := interpreter.New()
	result, err := interp.EvalExpr(expr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	fmt.Println(result)
	return exitOK
}

func runProgram(path string, src []byte, cfg loxconfig.Config, printAST bool) int {
	program, err := parser.ParseProgram(path, src, parserOpts(cfg)...)
	if printAST {
		fmt.Println(ast.PrintProgram(program))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompile
	}

	distances, err := resolver.Resolve(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompile
	}

	interp := interpreter.New()
	if err := interp.Interpret(program, distances); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	return exitOK
}

func runREPL(cfg loxconfig.Config) error {
	prompt := "lox> "
	if !cfg.NoColor {
		prompt = color.New(color.FgGreen).Sprint("lox> ")
	}
	rlCfg := &readline.Config{Prompt: prompt}
	if cfg.HistoryFile != "" {
		rlCfg.HistoryFile = cfg.HistoryFile
	} else if home, err := os.UserHomeDir(); err == nil {
		rlCfg.HistoryFile = filepath.Join(home, ".lox_history")
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("starting REPL: %w", err)
	}
	defer rl.Close()

	interp := interpreter.New()
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		replEval(interp, line, cfg)
	}
}

func replEval(interp *interpreter.Interpreter, line string, cfg loxconfig.Config) {
	program, err := parser.ParseProgram("<repl>", []byte(line), parserOpts(cfg)...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	distances, err := resolver.Resolve(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := interp.Interpret(program, distances); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
