// Package section reconstructs structured control flow — sequences, binary
// choices, and loops — from the flat, goto-linked instruction array the
// instr package produces (spec component C, "Sectionizer").
//
// The instruction array alone only tells you where each instruction jumps
// to; it says nothing about which jumps form a repeating loop, which form
// a two-way branch, or which are just the next step in a straight-line
// run. This package walks the array once, using the position of each Split
// instruction relative to its own targets to recover that shape, grounded
// directly on compiled-regex-core's ir/sections.rs algorithm: a Split whose
// branch eventually jumps back to the Split's own index heads a Loop;
// otherwise its two branches are a Choice. The first branch runs from the
// Split's first target up to its second; the point where both branches
// rejoin is found by following the first branch's own trailing goto, and
// the second branch runs from the Split's second target up to that point.
//
// Because the same trailing instructions can be reached from more than one
// branch (an optional tail shared between two alternatives, for instance),
// sections already produced for a given start index are memoized and
// reused rather than rebuilt — a Program pointer doubles as the "shared
// subtree" the Rust original represents with an Rc.
package section

import "github.com/coregx/regenc/instr"

// Kind identifies the shape of a Program node.
type Kind int

const (
	KindNormal Kind = iota
	KindLoop
	KindChoice
	KindLinear
)

// Program is a node of the reconstructed control-flow tree (spec §3).
type Program struct {
	Kind Kind

	// KindNormal: the contiguous run of consumption-only instructions,
	// identified by the half-open [Start, End) range into the owning
	// instr.Program's Insts slice.
	Start, End int

	// KindLoop
	Inner  *Program
	Greedy bool

	// KindChoice: A is tried before B.
	A, B *Program

	// KindLinear
	Seq []*Program
}

// Parse reconstructs the control-flow tree for prog, stopping at the first
// Match instruction reached (spec: additional alternate-pattern matches
// past the first are outside this compiler's scope).
func Parse(prog *instr.Program) (*Program, error) {
	p := &parser{insts: prog.Insts, memo: make(map[int]*Program)}
	return p.parseRange(prog.Start, len(prog.Insts))
}

type parser struct {
	insts []instr.Instruction
	memo  map[int]*Program
}

// getProgram returns the (possibly memoized) section starting at start.
func (p *parser) getProgram(start, end int) (*Program, error) {
	if existing, ok := p.memo[start]; ok {
		return existing, nil
	}
	prog, err := p.parseRange(start, end)
	if err != nil {
		return nil, err
	}
	p.memo[start] = prog
	return prog, nil
}

func (p *parser) parseRange(start, end int) (*Program, error) {
	var sections []*Program
	i := start
	unusedSince := start

	flush := func(upTo int) {
		if unusedSince != upTo {
			sections = append(sections, &Program{Kind: KindNormal, Start: unusedSince, End: upTo})
		}
	}

	for i < end {
		in := p.insts[i]

		switch in.Kind {
		case instr.KindSplit:
			flush(i)

			if loopEnd, ok := p.findLoopBodyEnd(i, i, make(map[int]bool)); ok {
				// loopEnd is the index of the back-edge instruction itself
				// (the one whose Goto points back to this Split), not one
				// past it — parseRange's end is half-open, so the body
				// range must extend one past loopEnd to include that
				// instruction. Its Goto field is never read by instruction
				// emission (only Char/Ranges/Bytes/Look/Slot are), so
				// including it is safe: nothing re-emits it as a jump.
				inner, err := p.parseRange(i+1, loopEnd+1)
				if err != nil {
					return nil, err
				}
				sections = append(sections, &Program{Kind: KindLoop, Inner: inner, Greedy: in.SplitGreedy})
				i = loopEnd
				unusedSince = i + 1
				i++
				continue
			}

			progA, err := p.getProgram(in.Goto1, in.Goto2)
			if err != nil {
				return nil, err
			}

			lastOfA, err := gotoOf(p.insts[in.Goto2-1])
			if err != nil {
				return nil, &ParseError{Index: in.Goto2 - 1, Message: err.Error()}
			}
			progBEnd := lastOfA

			progB, err := p.getProgram(in.Goto2, progBEnd)
			if err != nil {
				return nil, err
			}

			sections = append(sections, &Program{Kind: KindChoice, A: progA, B: progB})
			i = progBEnd - 1
			unusedSince = i + 1
			i++
			continue

		case instr.KindChar, instr.KindRanges, instr.KindBytes, instr.KindEmptyLook, instr.KindSave:
			// accumulate into the pending Normal run

		case instr.KindMatch:
			end = i
			continue

		default:
			return nil, &UnexpectedTokenError{Index: i, Kind: in.Kind.String()}
		}

		i++
	}

	flush(i)

	switch len(sections) {
	case 0:
		return &Program{Kind: KindNormal, Start: start, End: start}, nil
	case 1:
		return sections[0], nil
	default:
		return &Program{Kind: KindLinear, Seq: sections}, nil
	}
}

// findLoopBodyEnd follows goto chains starting at idx (recursing into both
// branches of any Split it meets) looking for an instruction whose goto is
// exactly header. Returns the index of that instruction, or false if no
// such path exists before a dead end or a revisit. One visited set, seen,
// is shared by the whole search including nested Splits, and a Split is
// marked before its branches are explored, so a cycle through an inner
// loop ends the walk instead of recursing without bound. A walk that jumps
// to an index below header has left the candidate body (through an
// enclosing loop's back edge) and ends there too.
func (p *parser) findLoopBodyEnd(idx, header int, seen map[int]bool) (int, bool) {
	cur := idx
	for {
		if seen[cur] || cur < header {
			return 0, false
		}

		in := p.insts[cur]
		var next int
		switch in.Kind {
		case instr.KindChar, instr.KindRanges, instr.KindBytes, instr.KindEmptyLook, instr.KindSave:
			next = in.Goto
		case instr.KindSplit:
			seen[cur] = true
			if end, ok := p.findLoopBodyEnd(in.Goto1, header, seen); ok {
				next = end
			} else if end, ok := p.findLoopBodyEnd(in.Goto2, header, seen); ok {
				next = end
			} else {
				return 0, false
			}
		default:
			return 0, false
		}

		if next == header {
			return cur, true
		}
		seen[cur] = true
		cur = next
	}
}

func gotoOf(in instr.Instruction) (int, error) {
	switch in.Kind {
	case instr.KindChar, instr.KindRanges, instr.KindBytes, instr.KindEmptyLook, instr.KindSave:
		return in.Goto, nil
	case instr.KindSplit:
		return in.Goto1, nil
	default:
		return 0, &UnexpectedTokenError{Kind: in.Kind.String(), Message: "instruction has no single successor"}
	}
}
