package regenc

import (
	"fmt"
	"go/token"
)

// Config controls how [Generate] renders the output package.
//
// Example:
//
//	cfg := regenc.DefaultConfig()
//	cfg.PackageName = "matchers"
//	cfg.EnablePrefilter = false // skip the Aho-Corasick literal scan
//	src, err := regenc.Generate("Matcher", pattern, cfg)
type Config struct {
	// PackageName is the package clause the generated source declares.
	// Default: "generated"
	PackageName string

	// EnablePrefilter builds a compile-time Aho-Corasick automaton over
	// the pattern's required literal prefixes (when the pattern has good
	// ones) and has the generated FindMatch/Matches use it to jump to
	// candidate starts instead of retrying the compiled matcher chain at
	// every offset. Has no effect on anchored patterns, which only ever
	// try one offset.
	// Default: true
	EnablePrefilter bool

	// MinLiteralLen is the shortest literal PlanPrefilter will accept as
	// part of a prefilter. Shorter literals match too often to be worth
	// scanning for.
	// Default: 2
	MinLiteralLen int

	// MaxPrefilterLiterals caps how many alternative literals the
	// extractor will pull out of a root alternation before giving up on
	// prefiltering that pattern (avoids building an automaton over
	// thousands of branches from something like (a|b|c|...|zzzz)).
	// Default: 64
	MaxPrefilterLiterals int
}

// DefaultConfig returns a configuration with sensible defaults: a generic
// package name, prefiltering enabled, and limits tuned for typical
// patterns.
//
// Example:
//
//	cfg := regenc.DefaultConfig()
//	cfg.PackageName = "mypackage"
func DefaultConfig() Config {
	return Config{
		PackageName:          "generated",
		EnablePrefilter:      true,
		MinLiteralLen:        2,
		MaxPrefilterLiterals: 64,
	}
}

// Validate checks that cfg's fields are in range.
func (c Config) Validate() error {
	if c.PackageName == "" || !token.IsIdentifier(c.PackageName) {
		return &ConfigError{Field: "PackageName", Message: "must be a valid Go identifier"}
	}
	if c.EnablePrefilter {
		if c.MinLiteralLen < 1 || c.MinLiteralLen > 64 {
			return &ConfigError{Field: "MinLiteralLen", Message: "must be between 1 and 64"}
		}
		if c.MaxPrefilterLiterals < 1 || c.MaxPrefilterLiterals > 1000 {
			return &ConfigError{Field: "MaxPrefilterLiterals", Message: "must be between 1 and 1000"}
		}
	}
	return nil
}

// ConfigError reports an out-of-range [Config] field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("regenc: invalid config: %s: %s", e.Field, e.Message)
}
