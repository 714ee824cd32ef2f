package emit

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/coregx/regenc/instr"
	"github.com/coregx/regenc/section"
)

func generate(t *testing.T, pattern, typeName string) []byte {
	t.Helper()
	prog, err := instr.Compile(pattern)
	if err != nil {
		t.Fatalf("instr.Compile(%q): %v", pattern, err)
	}
	tree, err := section.Parse(prog)
	if err != nil {
		t.Fatalf("section.Parse(%q): %v", pattern, err)
	}
	sess := NewSession()
	impl, err := Emit(sess, prog, tree)
	if err != nil {
		t.Fatalf("Emit(%q): %v", pattern, err)
	}
	src, err := AssembleModule(sess, "generated", typeName, prog, impl, nil)
	if err != nil {
		t.Fatalf("AssembleModule(%q): %v\n--- source ---\n%s", pattern, err, src)
	}
	return src
}

func TestAssembleModule_ParsesAsGo(t *testing.T) {
	patterns := []string{
		"abc",
		"a*",
		"a+",
		"a?",
		"a*?",
		"kth|lund",
		"a{1,3}b",
		"bfg[34]000",
		"\\d+",
		"^a?a?a?a?aaaa",
		"\\bfoo\\b",
	}

	fset := token.NewFileSet()
	for _, pat := range patterns {
		t.Run(pat, func(t *testing.T) {
			src := generate(t, pat, "Matcher")
			if _, err := parser.ParseFile(fset, "generated.go", src, 0); err != nil {
				t.Fatalf("generated source for %q does not parse: %v\n--- source ---\n%s", pat, err, src)
			}
			if !strings.Contains(string(src), "func (m Matcher) IsMatch(") {
				t.Error("missing IsMatch method on generated type")
			}
		})
	}
}

func TestAssembleModule_SharedTailEmittedOnce(t *testing.T) {
	src := generate(t, "ka?b|jb", "Matcher")

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "generated.go", src, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	counts := make(map[string]int)
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		counts[fd.Name.Name]++
	}
	for name, n := range counts {
		if n > 1 {
			t.Errorf("function %s defined %d times, want exactly once", name, n)
		}
	}
}
