// Package emit turns a reconstructed control-flow tree (section.Program)
// into literal Go source: one small matcher procedure per tree node,
// named by content hash and called from its parent, grounded on
// compiled-regex-core's ir/functions.rs (ProgramImplementation / the
// try_parse_* family).
//
// Each procedure is continuation-passing: it takes the rest of the match
// as a func(int) bool and only reports success once that continuation
// also succeeds from the position it left off at. This is what lets a
// greedy quantifier give back an iteration when a later, required part
// of the pattern doesn't fit — plain "does this node match, yes or no"
// procedures can't express that retreat, since by the time the later
// part fails the earlier node has already returned and forgotten it had
// another option.
package emit

import (
	"fmt"
	"strings"

	"github.com/coregx/regenc/instr"
	"github.com/coregx/regenc/section"
)

const (
	inputParam     = "input"
	posParam       = "pos"
	contParam      = "k"
	innerIndexName = posParam
)

// ProgramImplementation is a single emitted procedure: its Go source body,
// its generated name, and the procedures it calls (needed so the final
// assembly can emit children before parents, and so identical subtrees —
// discovered by section.Parse's memoization — are emitted exactly once).
type ProgramImplementation struct {
	Name     string
	Body     string
	Children []*ProgramImplementation
}

// Emit lowers a section.Program tree into a procedure tree, using sess
// for name generation. The same *section.Program pointer encountered twice
// (a tail shared between two branches) is emitted only once, matching the
// sectionizer's own sharing of that subtree.
func Emit(sess *Session, prog *instr.Program, root *section.Program) (*ProgramImplementation, error) {
	e := &emitter{sess: sess, insts: prog.Insts, seen: make(map[*section.Program]*ProgramImplementation)}
	return e.emit(root)
}

type emitter struct {
	sess  *Session
	insts []instr.Instruction
	seen  map[*section.Program]*ProgramImplementation
}

func (e *emitter) emit(p *section.Program) (*ProgramImplementation, error) {
	if impl, ok := e.seen[p]; ok {
		return impl, nil
	}

	var impl *ProgramImplementation
	var err error
	switch p.Kind {
	case section.KindNormal:
		impl = e.emitNormal(p)
	case section.KindLoop:
		impl, err = e.emitLoop(p)
	case section.KindChoice:
		impl, err = e.emitChoice(p)
	case section.KindLinear:
		impl, err = e.emitLinear(p)
	default:
		return nil, fmt.Errorf("emit: unknown section kind %d", p.Kind)
	}
	if err != nil {
		return nil, err
	}
	e.seen[p] = impl
	return impl, nil
}

// emitNormal consumes its run of instructions against pos (mutating the
// parameter in place, instruction by instruction) and, once all of them
// succeed, hands off to the continuation at the resulting position. Any
// instruction failing returns false immediately without calling k — this
// node had nothing else to try.
func (e *emitter) emitNormal(p *section.Program) *ProgramImplementation {
	var body string
	for i := p.Start; i < p.End; i++ {
		body += e.sess.instructionCode(e.insts[i])
	}
	body += fmt.Sprintf("\nreturn %s(%s)", contParam, posParam)

	name := e.sess.funcName(body)
	return &ProgramImplementation{Name: name, Body: body}
}

// emitLoop emits a greedy or lazy repetition. Both forms are a local
// recursive closure over the loop body, so that giving back an iteration
// (greedy) or taking one more (lazy) can retry however many times
// backtracking demands, rather than committing to a single repeat count.
func (e *emitter) emitLoop(p *section.Program) (*ProgramImplementation, error) {
	inner, err := e.emit(p.Inner)
	if err != nil {
		return nil, err
	}

	var body string
	if p.Greedy {
		// Try one more iteration (with "loop again" as its continuation)
		// before giving up and handing off to k — the longest match that
		// still lets everything after it succeed.
		body = fmt.Sprintf(`var loop func(int) bool
loop = func(%s int) bool {
	if %s(%s, %s, loop) {
		return true
	}
	return %s(%s)
}
return loop(%s)`, posParam, inner.Name, inputParam, posParam, contParam, posParam, posParam)
	} else {
		// Try k first — the shortest match, zero repetitions — and only
		// consume another iteration if that fails.
		body = fmt.Sprintf(`var loop func(int) bool
loop = func(%s int) bool {
	if %s(%s) {
		return true
	}
	return %s(%s, %s, loop)
}
return loop(%s)`, posParam, contParam, posParam, inner.Name, inputParam, posParam, posParam)
	}

	name := e.sess.funcName(body)
	return &ProgramImplementation{Name: name, Body: body, Children: []*ProgramImplementation{inner}}, nil
}

// emitChoice tries A with the caller's own continuation first; only if
// that fails outright — A couldn't match at all, or nothing after it
// could either — does it fall back to B with the same continuation.
func (e *emitter) emitChoice(p *section.Program) (*ProgramImplementation, error) {
	a, err := e.emit(p.A)
	if err != nil {
		return nil, err
	}
	b, err := e.emit(p.B)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf(`if %s(%s, %s, %s) {
	return true
}
return %s(%s, %s, %s)`, a.Name, inputParam, posParam, contParam, b.Name, inputParam, posParam, contParam)

	name := e.sess.funcName(body)
	return &ProgramImplementation{Name: name, Body: body, Children: []*ProgramImplementation{a, b}}, nil
}

// emitLinear chains its children right to left: the continuation for
// child i is a closure calling child i+1 with child i+1's own
// continuation, ending in the caller's k for the last child. A choice or
// loop earlier in the sequence that needs to retreat calls back into this
// chain through that closure, not around it — which is what lets
// backtracking cross section boundaries at all.
func (e *emitter) emitLinear(p *section.Program) (*ProgramImplementation, error) {
	children := make([]*ProgramImplementation, 0, len(p.Seq))
	for _, sub := range p.Seq {
		impl, err := e.emit(sub)
		if err != nil {
			return nil, err
		}
		children = append(children, impl)
	}

	if len(children) == 0 {
		body := fmt.Sprintf("return %s(%s)", contParam, posParam)
		name := e.sess.funcName(body)
		return &ProgramImplementation{Name: name, Body: body}, nil
	}

	var b strings.Builder
	cont := contParam
	for i := len(children) - 1; i > 0; i-- {
		next := fmt.Sprintf("k%d", i)
		fmt.Fprintf(&b, "%s := func(%s int) bool { return %s(%s, %s, %s) }\n",
			next, posParam, children[i].Name, inputParam, posParam, cont)
		cont = next
	}
	fmt.Fprintf(&b, "return %s(%s, %s, %s)", children[0].Name, inputParam, posParam, cont)

	body := b.String()
	name := e.sess.funcName(body)
	return &ProgramImplementation{Name: name, Body: body, Children: children}, nil
}
