package test

import (
	"fmt"
	"testing"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// assertStdoutEqual fails t with a unified diff (rather than testify's raw before/after dump)
// when want and got differ, since the CLI scenarios in lox_test.go compare multi-line output.
func assertStdoutEqual(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	edits := myers.ComputeEdits(span.URIFromPath("want"), want, got)
	diff := fmt.Sprint(gotextdiff.ToUnified("want", "got", want, edits))
	t.Errorf("stdout mismatch (-want +got):\n%s", diff)
}
