// Package test runs the lox binary end-to-end against the concrete scenarios spec.md §8
// enumerates, grounded on the teacher's test/loxtest.MustBuildBinary pattern: build the CLI
// once, then exec it against each scenario's source and assert on stdout/stderr/exit code.
package test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loxBinary string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "lox-build")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	loxBinary = filepath.Join(dir, "lox")
	cmd := exec.Command("go", "build", "-o", loxBinary, "github.com/jrcaldwell/lox/cmd/lox")
	cmd.Dir = moduleRoot()
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("building lox binary: " + err.Error() + "\n" + string(out))
	}

	os.Exit(m.Run())
}

func moduleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Dir(wd)
}

type result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func run(t *testing.T, command string, src string) result {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lox")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cmd := exec.Command(loxBinary, command, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running lox %s: %v", command, err)
	}

	return result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// Scenarios 1-6 and 10 of spec.md §8: Input -> stdout, exit 0.
func TestEndToEndStdoutScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "hello world",
			src:  `print "Hello, world!";`,
			want: "Hello, world!\n",
		},
		{
			name: "arithmetic",
			src:  `var a=1; var b=2; print a+b;`,
			want: "3\n",
		},
		{
			name: "recursive fibonacci",
			src:  `fun fib(n){ if (n<2) return n; return fib(n-1)+fib(n-2);} print fib(10);`,
			want: "55\n",
		},
		{
			name: "closure counter",
			src:  `fun makeCounter(){ var i=0; fun c(){ i=i+1; print i;} return c;} var c=makeCounter(); c(); c();`,
			want: "1\n2\n",
		},
		{
			name: "class method",
			src:  `class A { greet(){print "hi";} } A().greet();`,
			want: "hi\n",
		},
		{
			name: "class initializer sets field",
			src:  `class C { init(){ this.x=7;} } print C().x;`,
			want: "7\n",
		},
		{
			name: "assignment expression value",
			src:  `var x; print x = 3; print x;`,
			want: "3\n3\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, "run", tt.src)
			assert.Equal(t, 0, got.ExitCode, "stderr: %s", got.Stderr)
			assertStdoutEqual(t, tt.want, got.Stdout)
		})
	}
}

// Scenario 7 of spec.md §8: adding a number and a string is a runtime error, exit 70.
func TestEndToEndRuntimeErrorScenario(t *testing.T) {
	got := run(t, "run", `"a" + 1;`)
	assert.Equal(t, 70, got.ExitCode)
	assert.Contains(t, got.Stderr, "Operands must be two numbers or two strings.")
	assert.Contains(t, got.Stderr, "[line 1]")
}

// Scenario 8 of spec.md §8: a top-level return is a resolve error, exit 65.
func TestEndToEndReturnAtTopLevelScenario(t *testing.T) {
	got := run(t, "run", `return 1;`)
	assert.Equal(t, 65, got.ExitCode)
	assert.Contains(t, got.Stderr, "Error at 'return': Can't return from top-level code.")
}

// Scenario 9 of spec.md §8: reading a local variable in its own initializer is a resolve
// error, exit 65.
func TestEndToEndSelfReferentialInitializerScenario(t *testing.T) {
	got := run(t, "run", `{ var x = x; }`)
	assert.Equal(t, 65, got.ExitCode)
	assert.Contains(t, got.Stderr, "Can't read local variable in its own initializer.")
}

func TestEndToEndTokenize(t *testing.T) {
	got := run(t, "tokenize", `(1+2)`)
	assert.Equal(t, 0, got.ExitCode)
	want := "LEFT_PAREN ( null\n" +
		"NUMBER 1 1.0\n" +
		"PLUS + null\n" +
		"NUMBER 2 2.0\n" +
		"RIGHT_PAREN ) null\n" +
		"EOF  null\n"
	assert.Equal(t, want, got.Stdout)
}

func TestEndToEndTokenizeString(t *testing.T) {
	got := run(t, "tokenize", `"foo"`)
	assert.Equal(t, 0, got.ExitCode)
	want := "STRING \"foo\" foo\n" +
		"EOF  null\n"
	assert.Equal(t, want, got.Stdout)
}

func TestEndToEndTokenizeLexError(t *testing.T) {
	got := run(t, "tokenize", `@`)
	assert.Equal(t, 65, got.ExitCode)
	assert.Contains(t, got.Stderr, "[line 1] Error: Unexpected character: @")
}

func TestEndToEndParse(t *testing.T) {
	got := run(t, "parse", `1 + 2 * 3`)
	assert.Equal(t, 0, got.ExitCode)
	assert.Equal(t, "(+ 1.0 (* 2.0 3.0))\n", got.Stdout)
}

func TestEndToEndEvaluate(t *testing.T) {
	got := run(t, "evaluate", `1 + 2`)
	assert.Equal(t, 0, got.ExitCode)
	assert.Equal(t, "3\n", got.Stdout)
}

func TestEndToEndEvaluateRuntimeError(t *testing.T) {
	got := run(t, "evaluate", `1 + "a"`)
	assert.Equal(t, 70, got.ExitCode)
	assert.Contains(t, got.Stderr, "Operands must be two numbers or two strings.")
}
