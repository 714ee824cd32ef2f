package literal

import "regexp/syntax"

// PrefilterPlan describes a set of required literal prefixes a matcher can
// scan for before running the full compiled matcher chain — the same
// "is prefiltering worth it" judgment call meta/strategy.go makes, just
// resolved once at code-generation time instead of once per meta.Compile
// call.
type PrefilterPlan struct {
	// Literals are the candidate start-of-match byte sequences.
	Literals [][]byte

	// Exact is true when every literal is itself a complete match
	// (the whole pattern reduces to "one of these strings"), letting the
	// generated matcher skip the compiled instruction chain entirely once
	// the automaton finds a hit.
	Exact bool
}

// PlanPrefilter decides whether re's required prefixes are good enough to
// drive an Aho-Corasick prefilter, mirroring the quality checks
// meta/strategy.go applies before selecting UseAhoCorasick: at least two
// literals (a single literal prefix is better served by a plain
// strings.Index scan than a whole automaton), none shorter than minLen, and
// fewer than cfg.MaxLiterals of them (a set that reached that cap may have
// been cut short by the extractor and so miss some matches).
//
// Returns nil when prefiltering isn't worthwhile for this pattern.
func PlanPrefilter(re *syntax.Regexp, cfg ExtractorConfig, minLen int) *PrefilterPlan {
	seq := New(cfg).ExtractPrefixes(re)
	if seq.IsEmpty() || seq.Len() < 2 || seq.Len() >= cfg.MaxLiterals {
		return nil
	}

	lits := make([][]byte, 0, seq.Len())
	exact := true
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		if lit.Len() < minLen {
			return nil
		}
		if !lit.Complete {
			exact = false
		}
		lits = append(lits, lit.Bytes)
	}

	return &PrefilterPlan{Literals: lits, Exact: exact}
}
