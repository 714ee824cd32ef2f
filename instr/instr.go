// Package instr translates a parsed regex pattern into the flat,
// goto-linked instruction array that the rest of the ahead-of-time compiler
// operates on (spec component B, "VM compiler").
//
// Parsing the regex surface syntax is fully delegated to the host
// toolchain's own regex machinery: [regexp/syntax.Parse] produces the AST,
// and [*regexp/syntax.Regexp.Simplify] desugars bounded repetition
// ({n,m}) into concatenations of optional/repeated copies, exactly as the
// stdlib regexp package itself does before compiling. No parsing logic is
// reinvented here.
//
// What IS implemented here, in the spirit of [nfa.Compiler], is the lowering
// of that AST into a flat instruction array — except where the teacher's own
// [nfa] package (and the stdlib's regexp/syntax compiler, for that matter)
// places a quantifier's Split instruction *after* the body it guards, this
// package places it *before*, so that the instruction array has the
// Split-precedes-branches shape the sectionizer's loop/choice detection
// algorithm (spec §4.C) is built around — the same shape the worked
// examples in spec.md's design notes assume.
package instr

import (
	"regexp/syntax"
)

// EmptyLookKind identifies which zero-width assertion an [KindEmptyLook]
// instruction tests.
type EmptyLookKind uint8

const (
	EmptyBeginText EmptyLookKind = iota
	EmptyEndText
	EmptyBeginLine
	EmptyEndLine
	EmptyWordBoundary
	EmptyNoWordBoundary
)

// Kind identifies the operation an [Instruction] performs; see spec.md §3.
type Kind uint8

const (
	KindChar      Kind = iota // consume exactly one rune
	KindRanges                // consume one rune from a sorted union of ranges
	KindBytes                 // consume one byte in [Lo, Hi]
	KindSplit                 // nondeterministic two-way branch
	KindEmptyLook             // zero-width assertion
	KindSave                  // capture/bookkeeping marker, consumes no input
	KindMatch                 // accept
)

func (k Kind) String() string {
	names := [...]string{"Char", "Ranges", "Bytes", "Split", "EmptyLook", "Save", "Match"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// RangePair is an inclusive, sorted rune range [Lo, Hi].
type RangePair struct {
	Lo, Hi rune
}

// Instruction is a single node of the Thompson VM program, the Go realization
// of the table in spec.md §3. Goto/Goto1/Goto2 are indices into the owning
// [Program].Insts slice.
type Instruction struct {
	Kind Kind

	Char   rune        // KindChar
	Ranges []RangePair // KindRanges
	Lo, Hi byte        // KindBytes

	Goto1, Goto2 int // KindSplit
	Goto         int // KindChar/KindRanges/KindBytes/KindEmptyLook/KindSave

	Look EmptyLookKind // KindEmptyLook
	Slot int           // KindSave; -1 marks an internal no-op bookkeeping slot

	MatchID int // KindMatch

	// SplitGreedy is only meaningful on KindSplit instructions that the
	// sectionizer identifies as a loop header: true if Goto1 is the
	// "repeat" branch (the pattern was greedy), false if Goto2 is.
	SplitGreedy bool
}

// IsConsumptionOnly reports whether the instruction is one of the "normal"
// kinds the sectionizer folds into a contiguous Normal run (spec §4.C).
func (in Instruction) IsConsumptionOnly() bool {
	switch in.Kind {
	case KindChar, KindRanges, KindBytes, KindEmptyLook, KindSave:
		return true
	default:
		return false
	}
}

// Program is the flat instruction array produced by [Compile]. It is owned
// by this package; later stages (section, emit) hold borrowed indices into
// it, never a copy (spec §3 "Ownership").
type Program struct {
	Insts []Instruction

	// Start is the entry instruction for a match that begins exactly at a
	// given offset. Unanchored scanning (trying successive offsets) is a
	// concern of the generated FindMatch loop, not of this program — see
	// spec §4.G: find_match is defined as find_match_at scanned across
	// offsets.
	Start int

	// Anchored reports whether the pattern has a literal ^ / \A prefix,
	// letting callers skip the offset scan entirely.
	Anchored bool

	// MinLen is the compile-time lower bound on input length described in
	// spec §4.G, computed bottom-up from the AST right after lowering it
	// (cheapest point to compute it, since the AST already has the needed
	// structure).
	MinLen int
}

// Compile parses pattern and lowers it into a flat [Program].
func Compile(pattern string) (*Program, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &SyntaxError{Pattern: pattern, Err: err}
	}
	return CompileRegexp(re)
}

// CompileRegexp lowers an already-parsed syntax.Regexp. Exposed separately
// so callers that inspect the AST first (the literal package's prefix
// extraction) don't have to re-parse.
func CompileRegexp(re *syntax.Regexp) (*Program, error) {
	re = re.Simplify()

	c := &compiler{}
	frag, err := c.compileNode(re)
	if err != nil {
		return nil, err
	}

	matchIdx := c.emit(Instruction{Kind: KindMatch, MatchID: 0})
	c.patch(frag.exits, matchIdx)

	return &Program{
		Insts:    c.insts,
		Start:    frag.start,
		Anchored: isAnchored(re),
		MinLen:   minLen(re),
	}, nil
}

// frag is a compiled program fragment: its entry instruction index, and the
// list of not-yet-resolved successor slots that must be patched to whatever
// instruction follows the fragment.
type frag struct {
	start int
	exits patchList
}

// patchList is a set of dangling successor slots, deferred until the
// instruction that follows them is known. This is the same backpatching
// idea regexp/syntax's own compiler uses (see its patchList type), adapted
// so that Split instructions can be emitted *before* the branches they
// dispatch to.
type patchList []patchRef

type patchRef struct {
	idx   int
	field field
}

type field uint8

const (
	fieldGoto field = iota
	fieldGoto1
	fieldGoto2
)

type compiler struct {
	insts []Instruction
}

func (c *compiler) emit(in Instruction) int {
	c.insts = append(c.insts, in)
	return len(c.insts) - 1
}

func (c *compiler) patch(pl patchList, target int) {
	for _, ref := range pl {
		switch ref.field {
		case fieldGoto:
			c.insts[ref.idx].Goto = target
		case fieldGoto1:
			c.insts[ref.idx].Goto1 = target
		case fieldGoto2:
			c.insts[ref.idx].Goto2 = target
		}
	}
}

func (c *compiler) compileNode(re *syntax.Regexp) (frag, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		idx := c.emit(Instruction{Kind: KindRanges, Ranges: nil})
		return frag{start: idx, exits: patchList{{idx, fieldGoto}}}, nil

	case syntax.OpEmptyMatch:
		idx := c.emit(Instruction{Kind: KindSave, Slot: -1})
		return frag{start: idx, exits: patchList{{idx, fieldGoto}}}, nil

	case syntax.OpLiteral:
		return c.compileLiteral(re)

	case syntax.OpCharClass:
		return c.compileRanges(pairsFromSyntax(re.Rune))

	case syntax.OpAnyCharNotNL:
		return c.compileRanges([]RangePair{{0, '\n' - 1}, {'\n' + 1, 0x10FFFF}})

	case syntax.OpAnyChar:
		return c.compileRanges([]RangePair{{0, 0x10FFFF}})

	case syntax.OpBeginLine:
		return c.compileLook(EmptyBeginLine)
	case syntax.OpEndLine:
		return c.compileLook(EmptyEndLine)
	case syntax.OpBeginText:
		return c.compileLook(EmptyBeginText)
	case syntax.OpEndText:
		return c.compileLook(EmptyEndText)
	case syntax.OpWordBoundary:
		return c.compileLook(EmptyWordBoundary)
	case syntax.OpNoWordBoundary:
		return c.compileLook(EmptyNoWordBoundary)

	case syntax.OpCapture:
		return c.compileCapture(re)

	case syntax.OpStar:
		return c.compileStar(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0], re.Flags&syntax.NonGreedy != 0)

	case syntax.OpConcat:
		return c.compileConcat(re.Sub)

	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)

	default:
		return frag{}, &UnsupportedConstructError{Construct: re.Op.String()}
	}
}

func (c *compiler) compileLiteral(re *syntax.Regexp) (frag, error) {
	if len(re.Rune) == 0 {
		return c.compileNode(&syntax.Regexp{Op: syntax.OpEmptyMatch})
	}
	var fragments []frag
	for _, r := range re.Rune {
		lo, hi := r, r
		var f frag
		if lo < 0x80 {
			idx := c.emit(Instruction{Kind: KindBytes, Lo: byte(lo), Hi: byte(hi)})
			f = frag{start: idx, exits: patchList{{idx, fieldGoto}}}
		} else {
			idx := c.emit(Instruction{Kind: KindChar, Char: r})
			f = frag{start: idx, exits: patchList{{idx, fieldGoto}}}
		}
		fragments = append(fragments, f)
	}
	return c.concatFrags(fragments), nil
}

func (c *compiler) compileRanges(ranges []RangePair) (frag, error) {
	if len(ranges) == 1 && ranges[0].Lo == ranges[0].Hi && ranges[0].Lo < 0x80 {
		idx := c.emit(Instruction{Kind: KindBytes, Lo: byte(ranges[0].Lo), Hi: byte(ranges[0].Lo)})
		return frag{start: idx, exits: patchList{{idx, fieldGoto}}}, nil
	}
	if asciiOnly(ranges) {
		lo, hi := ranges[0].Lo, ranges[len(ranges)-1].Hi
		if len(ranges) == 1 {
			idx := c.emit(Instruction{Kind: KindBytes, Lo: byte(lo), Hi: byte(hi)})
			return frag{start: idx, exits: patchList{{idx, fieldGoto}}}, nil
		}
	}
	idx := c.emit(Instruction{Kind: KindRanges, Ranges: ranges})
	return frag{start: idx, exits: patchList{{idx, fieldGoto}}}, nil
}

func (c *compiler) compileLook(kind EmptyLookKind) (frag, error) {
	idx := c.emit(Instruction{Kind: KindEmptyLook, Look: kind})
	return frag{start: idx, exits: patchList{{idx, fieldGoto}}}, nil
}

func (c *compiler) compileCapture(re *syntax.Regexp) (frag, error) {
	open := c.emit(Instruction{Kind: KindSave, Slot: re.Cap * 2})
	sub, err := c.compileNode(re.Sub[0])
	if err != nil {
		return frag{}, err
	}
	c.patch(patchList{{open, fieldGoto}}, sub.start)
	close := c.emit(Instruction{Kind: KindSave, Slot: re.Cap*2 + 1})
	c.patch(sub.exits, close)
	return frag{start: open, exits: patchList{{close, fieldGoto}}}, nil
}

func (c *compiler) compileConcat(subs []*syntax.Regexp) (frag, error) {
	if len(subs) == 0 {
		return c.compileNode(&syntax.Regexp{Op: syntax.OpEmptyMatch})
	}
	fragments := make([]frag, 0, len(subs))
	for _, sub := range subs {
		f, err := c.compileNode(sub)
		if err != nil {
			return frag{}, err
		}
		fragments = append(fragments, f)
	}
	return c.concatFrags(fragments), nil
}

func (c *compiler) concatFrags(fragments []frag) frag {
	result := fragments[0]
	for _, next := range fragments[1:] {
		c.patch(result.exits, next.start)
		result = frag{start: result.start, exits: next.exits}
	}
	return result
}

func (c *compiler) compileAlternate(subs []*syntax.Regexp) (frag, error) {
	if len(subs) == 0 {
		return c.compileNode(&syntax.Regexp{Op: syntax.OpNoMatch})
	}
	if len(subs) == 1 {
		return c.compileNode(subs[0])
	}
	// Left fold into nested binary Splits, with the first declared
	// alternative (Goto1) compiled immediately after the Split and the
	// rest (Goto2) compiled immediately after that — both branches
	// physically contiguous, matching the layout the sectionizer's
	// loop/choice detection assumes (branch A occupies [goto1, goto2),
	// branch B starts exactly at goto2).
	splitIdx := c.emit(Instruction{Kind: KindSplit})
	head, err := c.compileNode(subs[0])
	if err != nil {
		return frag{}, err
	}
	tail, err := c.compileAlternate(subs[1:])
	if err != nil {
		return frag{}, err
	}
	c.insts[splitIdx].Goto1 = head.start
	c.insts[splitIdx].Goto2 = tail.start
	exits := append(patchList{}, head.exits...)
	exits = append(exits, tail.exits...)
	return frag{start: splitIdx, exits: exits}, nil
}

func (c *compiler) compileQuest(sub *syntax.Regexp, nonGreedy bool) (frag, error) {
	splitIdx := c.emit(Instruction{Kind: KindSplit})
	body, err := c.compileNode(sub)
	if err != nil {
		return frag{}, err
	}
	var exits patchList
	if nonGreedy {
		c.insts[splitIdx].Goto2 = body.start
		exits = patchList{{splitIdx, fieldGoto1}}
	} else {
		c.insts[splitIdx].Goto1 = body.start
		exits = patchList{{splitIdx, fieldGoto2}}
	}
	exits = append(exits, body.exits...)
	return frag{start: splitIdx, exits: exits}, nil
}

func (c *compiler) compileStar(sub *syntax.Regexp, nonGreedy bool) (frag, error) {
	splitIdx := c.emit(Instruction{Kind: KindSplit, SplitGreedy: !nonGreedy})
	body, err := c.compileNode(sub)
	if err != nil {
		return frag{}, err
	}
	c.patch(body.exits, splitIdx) // back edge: body end loops to header
	var exits patchList
	if nonGreedy {
		c.insts[splitIdx].Goto2 = body.start
		exits = patchList{{splitIdx, fieldGoto1}}
	} else {
		c.insts[splitIdx].Goto1 = body.start
		exits = patchList{{splitIdx, fieldGoto2}}
	}
	return frag{start: splitIdx, exits: exits}, nil
}

func (c *compiler) compilePlus(sub *syntax.Regexp, nonGreedy bool) (frag, error) {
	first, err := c.compileNode(sub)
	if err != nil {
		return frag{}, err
	}
	loop, err := c.compileStar(sub, nonGreedy)
	if err != nil {
		return frag{}, err
	}
	c.patch(first.exits, loop.start)
	return frag{start: first.start, exits: loop.exits}, nil
}

func pairsFromSyntax(rr []rune) []RangePair {
	out := make([]RangePair, 0, len(rr)/2)
	for i := 0; i+1 < len(rr); i += 2 {
		out = append(out, RangePair{Lo: rr[i], Hi: rr[i+1]})
	}
	return out
}

func asciiOnly(ranges []RangePair) bool {
	for _, r := range ranges {
		if r.Hi >= 0x80 {
			return false
		}
	}
	return true
}

func isAnchored(re *syntax.Regexp) bool {
	for {
		switch re.Op {
		case syntax.OpBeginText:
			return true
		case syntax.OpConcat:
			if len(re.Sub) == 0 {
				return false
			}
			re = re.Sub[0]
			continue
		case syntax.OpCapture:
			re = re.Sub[0]
			continue
		}
		return false
	}
}

// minLen computes the compile-time lower bound on match length described in
// spec §4.G, directly from the AST (cheaper and more direct than walking
// the flattened instruction array back into structure).
func minLen(re *syntax.Regexp) int {
	switch re.Op {
	case syntax.OpLiteral:
		n := 0
		for _, r := range re.Rune {
			n += utf8Len(r)
		}
		return n
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return 1
	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary, syntax.OpEmptyMatch:
		return 0
	case syntax.OpNoMatch:
		return 0
	case syntax.OpCapture:
		return minLen(re.Sub[0])
	case syntax.OpStar, syntax.OpQuest:
		return 0
	case syntax.OpPlus:
		return minLen(re.Sub[0])
	case syntax.OpConcat:
		n := 0
		for _, sub := range re.Sub {
			n += minLen(sub)
		}
		return n
	case syntax.OpAlternate:
		if len(re.Sub) == 0 {
			return 0
		}
		m := minLen(re.Sub[0])
		for _, sub := range re.Sub[1:] {
			if v := minLen(sub); v < m {
				m = v
			}
		}
		return m
	default:
		return 0
	}
}

func utf8Len(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}
