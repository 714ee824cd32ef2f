// Package regenc compiles a regular expression pattern, known at Go-build
// time, into standalone Go source implementing a [Matcher] — no regex
// bytecode is interpreted at runtime.
//
// The pipeline:
//   - regexp/syntax.Parse + Simplify turn the pattern into an AST (stdlib,
//     delegated)
//   - instr lowers the AST into a flat, goto-linked instruction array
//   - section reconstructs a control-flow tree from that array (loops,
//     choices, straight-line runs)
//   - emit walks the tree into one small Go procedure per node and
//     assembles the final source file
//
// Basic usage:
//
//	src, err := regenc.Generate("EmailMatcher", `[a-z0-9]+@[a-z0-9]+\.[a-z]+`, regenc.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("email_matcher.go", src, 0o644)
//
// The generated type satisfies [Matcher]:
//
//	var m EmailMatcher
//	m.IsMatch("user@example.com")       // true
//	m.FindMatch("contact: a@b.co!")     // 9, 15, true
//	for start, end := range m.Matches(text) { ... }
//
// Limitations:
//   - No capture groups (see spec's Non-goals)
//   - No replace/split helpers — callers slice the input using the
//     indices [Matcher.FindMatch] and [Matcher.Matches] return
//   - Lookaround that constrains the match and regex sets are unsupported;
//     an [instr.UnsupportedConstructError] is returned for syntax this
//     compiler doesn't lower
package regenc

import (
	"iter"
	"regexp/syntax"

	"github.com/coregx/regenc/emit"
	"github.com/coregx/regenc/instr"
	"github.com/coregx/regenc/literal"
	"github.com/coregx/regenc/section"
)

// Matcher is the contract every type [Generate] emits satisfies. It is
// declared here purely for documentation and so calling code can reference
// generated types through a common interface; the generated methods
// themselves never import this package.
type Matcher interface {
	// IsMatch reports whether input contains a match anywhere.
	IsMatch(input string) bool

	// IsMatchAt reports whether a match begins exactly at offset.
	IsMatchAt(input string, offset int) bool

	// FindMatch reports the bounds of the leftmost match, if any. Bounds
	// are byte offsets into input and end is exclusive: it is one past the
	// last byte of the match, not the index of that byte.
	FindMatch(input string) (start, end int, ok bool)

	// FindMatchAt reports the bounds of a match beginning exactly at
	// offset, if any.
	FindMatchAt(input string, offset int) (start, end int, ok bool)

	// Matches lazily iterates non-overlapping matches left to right.
	Matches(input string) iter.Seq2[int, int]
}

// Generate compiles pattern and returns the formatted Go source of a
// package-level type named typeName satisfying [Matcher].
//
// pattern uses the same Perl-compatible syntax as stdlib regexp. cfg
// controls the package name the source declares and whether a literal
// prefilter is built; see [DefaultConfig].
func Generate(typeName, pattern string, cfg Config) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &instr.SyntaxError{Pattern: pattern, Err: err}
	}
	re = re.Simplify()

	prog, err := instr.CompileRegexp(re)
	if err != nil {
		return nil, err
	}

	tree, err := section.Parse(prog)
	if err != nil {
		return nil, err
	}

	sess := emit.NewSession()
	impl, err := emit.Emit(sess, prog, tree)
	if err != nil {
		return nil, err
	}

	var plan *literal.PrefilterPlan
	if cfg.EnablePrefilter {
		plan = literal.PlanPrefilter(re, literal.ExtractorConfig{
			MaxLiterals:       cfg.MaxPrefilterLiterals,
			MaxLiteralLen:     64,
			MaxClassSize:      10,
			CrossProductLimit: 250,
		}, cfg.MinLiteralLen)
	}

	return emit.AssembleModule(sess, cfg.PackageName, typeName, prog, impl, plan)
}
