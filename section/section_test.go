package section

import (
	"testing"

	"github.com/coregx/regenc/instr"
)

func mustCompile(t *testing.T, pattern string) *instr.Program {
	t.Helper()
	prog, err := instr.Compile(pattern)
	if err != nil {
		t.Fatalf("instr.Compile(%q): %v", pattern, err)
	}
	return prog
}

func TestParse_Literal(t *testing.T) {
	prog := mustCompile(t, "abc")
	p, err := Parse(prog)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Kind != KindNormal {
		t.Fatalf("expected a single Normal run, got %v", p.Kind)
	}
}

func TestParse_Star(t *testing.T) {
	prog := mustCompile(t, "a*")
	p, err := Parse(prog)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Kind != KindLoop {
		t.Fatalf("expected Loop, got %v", p.Kind)
	}
	if !p.Greedy {
		t.Error("expected greedy loop for a*")
	}
}

func TestParse_StarBodyCoversBackEdgeInstruction(t *testing.T) {
	// Regression: findLoopBodyEnd returns the index of the back-edge
	// instruction itself, not one past it. parseRange's end is half-open,
	// so a body range that forgot to extend past that index would leave
	// the loop body empty for a single-instruction body like "a*" — the
	// generated matcher would then never actually check or consume 'a'.
	prog := mustCompile(t, "a*")
	p, err := Parse(prog)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Kind != KindLoop {
		t.Fatalf("expected Loop, got %v", p.Kind)
	}
	if p.Inner.Kind != KindNormal || p.Inner.Start >= p.Inner.End {
		t.Fatalf("loop body is empty: %+v", p.Inner)
	}
}

func TestParse_LazyStar(t *testing.T) {
	prog := mustCompile(t, "a*?")
	p, err := Parse(prog)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Kind != KindLoop {
		t.Fatalf("expected Loop, got %v", p.Kind)
	}
	if p.Greedy {
		t.Error("expected lazy loop for a*?")
	}
}

func TestParse_Alternate(t *testing.T) {
	prog := mustCompile(t, "kth|lund")
	p, err := Parse(prog)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Kind != KindChoice {
		t.Fatalf("expected Choice, got %v", p.Kind)
	}
}

func TestParse_Quantified(t *testing.T) {
	prog := mustCompile(t, "a{1,3}b")
	_, err := Parse(prog)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParse_OptionalInsideAlternation(t *testing.T) {
	// The first branch of this alternation holds an optional ("a?") before
	// its tail; Parse must rebuild the nested Choice without error.
	prog := mustCompile(t, "ka?b|jb")
	p, err := Parse(prog)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p == nil {
		t.Fatal("nil program")
	}
}

func TestParse_ComplexPatterns(t *testing.T) {
	patterns := []string{
		"^a?a?a?a?aaaa",
		"bfg[34]000",
		"\\d+",
		"(foo|bar)+baz",
		"\\bword\\b",
	}
	for _, pat := range patterns {
		prog := mustCompile(t, pat)
		if _, err := Parse(prog); err != nil {
			t.Errorf("Parse(%q): %v", pat, err)
		}
	}
}
