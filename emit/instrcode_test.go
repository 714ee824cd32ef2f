package emit

import (
	"strconv"
	"strings"
	"testing"

	"github.com/coregx/regenc/instr"
)

// Regression: instructionCode's KindBytes comparison must reject a byte
// outside [Lo, Hi], not inside it. An inverted comparison (e.g. failing
// when the byte IS in range) would still produce syntactically valid Go,
// so only checking that generated source parses can't catch it — this
// pins the actual comparison direction in the rendered snippet.
func TestInstructionCode_BytesComparisonDirection(t *testing.T) {
	cases := []struct {
		name   string
		lo, hi byte
	}{
		{"singleByte", 'a', 'a'},
		{"range", 'a', 'z'},
		{"digit", '0', '9'},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSession()
			code := s.instructionCode(instr.Instruction{Kind: instr.KindBytes, Lo: c.lo, Hi: c.hi})

			wantLo := "< " + strconv.Itoa(int(c.lo))
			wantHi := "> " + strconv.Itoa(int(c.hi))
			if !strings.Contains(code, wantLo) {
				t.Errorf("instructionCode(Lo=%d, Hi=%d) = %q, missing lower-bound rejection %q", c.lo, c.hi, code, wantLo)
			}
			if !strings.Contains(code, wantHi) {
				t.Errorf("instructionCode(Lo=%d, Hi=%d) = %q, missing upper-bound rejection %q", c.lo, c.hi, code, wantHi)
			}
			if c.lo != c.hi && strings.Contains(code, "< "+strconv.Itoa(int(c.hi))) {
				t.Errorf("instructionCode(Lo=%d, Hi=%d) = %q, looks like an inverted comparison (rejects below Hi instead of below Lo)", c.lo, c.hi, code)
			}
		})
	}
}

// Regression: a pattern that lowers to a KindBytes instruction (any ASCII
// literal or single-byte range) must render both bounds of its range,
// exercised through the full pipeline rather than instructionCode alone.
func TestAssembleModule_BytesRangeRendersBothBounds(t *testing.T) {
	src := generate(t, "[a-f]", "Matcher")
	text := string(src)
	if !strings.Contains(text, "< 97") || !strings.Contains(text, "> 102") {
		t.Errorf("generated source for [a-f] missing expected byte-range bounds (97..102):\n%s", text)
	}
}
