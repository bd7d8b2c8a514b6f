// Package loxconfig loads the interpreter's environment-driven toggles.
//
// Grounded on mna-nenuphar's config layer: a single struct decoded from environment variables
// via struct tags, with an optional file-based override layered underneath it.
package loxconfig

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds the interpreter's runtime toggles.
//
// No envDefault tags are used here: caarlos0/env applies a field's envDefault whenever the
// corresponding environment variable is unset, which would silently stomp a value already
// loaded from .loxrc.yaml. Defaults are instead applied by hand in Load, only to fields still
// at their zero value.
type Config struct {
	// Compat tightens lexer error messages to match the book's exact wording (dropping the
	// offending character from "Unexpected character.") when true.
	Compat bool `yaml:"compat" env:"CRAFTING_INTERPRETERS_COMPAT"`
	// NoColor disables ANSI colour in the REPL's prompt.
	NoColor bool `yaml:"no_color" env:"NO_COLOR"`
	// HistoryFile is where the REPL persists command history between sessions.
	HistoryFile string `yaml:"history_file" env:"LOX_HISTORY_FILE"`
}

const rcFileName = ".loxrc.yaml"

// Load reads Config from ./.loxrc.yaml if present, then applies environment variable
// overrides, which always win over the file, matching the precedence caarlos0/env documents.
func Load() (Config, error) {
	var cfg Config
	if data, err := os.ReadFile(rcFileName); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HistoryFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.HistoryFile = filepath.Join(home, ".lox_history")
		}
	}
	return cfg, nil
}
