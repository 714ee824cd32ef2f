package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/regenc/instr"
)

// instructionCode emits the inline statements for a single instruction,
// grounded on compiled-regex-core's instruction_code function. Unlike the
// original (which treats EmptyLook as a no-op "might not be necessary for
// our scope"), anchors and word boundaries here compile to real checks —
// spec.md's own design notes call this out as a resolved limitation.
func (s *Session) instructionCode(in instr.Instruction) string {
	switch in.Kind {
	case instr.KindChar:
		return fmt.Sprintf(`
	if ch, ok := decodeRuneAt(%s, %s); !ok || ch != %s {
		return false
	}
	%s += utf8.RuneLen(%s)`,
			inputParam, innerIndexName, strconv.QuoteRune(in.Char),
			innerIndexName, strconv.QuoteRune(in.Char))

	case instr.KindRanges:
		if len(in.Ranges) == 0 {
			// An empty range set never matches anything (this shows up for
			// character classes regexp/syntax reduced to OpNoMatch).
			return "\n\treturn false"
		}
		tableName := s.rangeTableName(rangesLiteral(in.Ranges))
		if _, ok := s.tables[tableName]; !ok {
			s.tables[tableName] = rangeTableLiteral(tableName, in.Ranges)
		}
		return fmt.Sprintf(`
	if ch, ok := decodeRuneAt(%s, %s); ok && inRuneRanges(ch, %s[:]) {
		%s += utf8.RuneLen(ch)
	} else {
		return false
	}`, inputParam, innerIndexName, tableName, innerIndexName)

	case instr.KindBytes:
		return fmt.Sprintf(`
	if %s >= len(%s) || %s[%s] < %d || %s[%s] > %d {
		return false
	}
	%s++`,
			innerIndexName, inputParam, inputParam, innerIndexName, in.Lo,
			inputParam, innerIndexName, in.Hi, innerIndexName)

	case instr.KindEmptyLook:
		return s.emptyLookCode(in.Look)

	case instr.KindSave, instr.KindMatch:
		return ""

	default:
		return fmt.Sprintf("\n\t// unsupported instruction kind %s", in.Kind)
	}
}

func (s *Session) emptyLookCode(kind instr.EmptyLookKind) string {
	switch kind {
	case instr.EmptyBeginText:
		return fmt.Sprintf(`
	if %s != 0 {
		return false
	}`, innerIndexName)
	case instr.EmptyEndText:
		return fmt.Sprintf(`
	if %s != len(%s) {
		return false
	}`, innerIndexName, inputParam)
	case instr.EmptyBeginLine:
		return fmt.Sprintf(`
	if %s != 0 && %s[%s-1] != '\n' {
		return false
	}`, innerIndexName, inputParam, innerIndexName)
	case instr.EmptyEndLine:
		return fmt.Sprintf(`
	if %s != len(%s) && %s[%s] != '\n' {
		return false
	}`, innerIndexName, inputParam, inputParam, innerIndexName)
	case instr.EmptyWordBoundary:
		return fmt.Sprintf(`
	if !atWordBoundary(%s, %s) {
		return false
	}`, inputParam, innerIndexName)
	case instr.EmptyNoWordBoundary:
		return fmt.Sprintf(`
	if atWordBoundary(%s, %s) {
		return false
	}`, inputParam, innerIndexName)
	default:
		return "\n\t// unrecognized empty-width assertion"
	}
}

func rangesLiteral(ranges []instr.RangePair) string {
	var b strings.Builder
	for _, r := range ranges {
		fmt.Fprintf(&b, "%d:%d;", r.Lo, r.Hi)
	}
	return b.String()
}

// rangeTableLiteral renders the Go source for the package-level range
// table a Ranges instruction refers to. A plain var, not a const, because
// Go has no const array-of-struct literals.
func rangeTableLiteral(name string, ranges []instr.RangePair) string {
	var b strings.Builder
	fmt.Fprintf(&b, "var %s = [%d]runeRange{", name, len(ranges))
	for i, r := range ranges {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "{%s, %s}", strconv.QuoteRune(r.Lo), strconv.QuoteRune(r.Hi))
	}
	b.WriteString("}\n")
	return b.String()
}
