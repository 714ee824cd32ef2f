package instr

import "fmt"

// SyntaxError wraps a failure from the host regex parser, surfaced as-is
// rather than reinterpreted (spec §7: "Syntax — delegated to the host
// regex engine's own parser").
type SyntaxError struct {
	Pattern string
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("instr: invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// UnsupportedConstructError reports a parsed construct this compiler
// deliberately does not lower, per spec.md's Non-goals (lookaround,
// backreferences, and the handful of syntax.Op values those map to).
type UnsupportedConstructError struct {
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("instr: unsupported construct: %s", e.Construct)
}

// InternalError reports a self-check failure: an invariant the compiler
// itself is supposed to maintain (sorted, disjoint ranges; all patch
// targets eventually resolved) didn't hold. Seeing one means this
// package has a bug, not that the input pattern was bad.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("instr: internal error: %s", e.Message)
}
