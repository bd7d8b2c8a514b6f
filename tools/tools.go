//go:build tools

// This file declares tool dependencies of the project, so that they're versioned in go.mod
// without being imported by any buildable package.
package tools

import (
	_ "github.com/BurntSushi/go-sumtype"
	_ "golang.org/x/tools/cmd/stringer"
	_ "gotest.tools/gotestsum"
)
