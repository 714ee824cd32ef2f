package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"text/template"

	"github.com/coregx/regenc/instr"
	"github.com/coregx/regenc/literal"
)

// runtimeSupport is emitted once per generated file: the handful of small
// helpers every procedure body calls into, mirroring how
// compiled-regex-core's functions.rs hoists CHAR_GET_FUNC out as a single
// shared constant instead of repeating it per procedure.
const runtimeSupport = `
type runeRange struct {
	lo, hi rune
}

func decodeRuneAt(s string, at int) (rune, bool) {
	if at >= len(s) {
		return 0, false
	}
	for i, r := range s[at:] {
		if i == 0 {
			return r, true
		}
	}
	return 0, false
}

func inRuneRanges(ch rune, ranges []runeRange) bool {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].hi >= ch })
	return i < len(ranges) && ranges[i].lo <= ch
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

func atWordBoundary(s string, at int) bool {
	before := at > 0 && isWordByte(s[at-1])
	after := at < len(s) && isWordByte(s[at])
	return before != after
}
`

// Module is the fully rendered generated-code artifact: the package's raw
// Go source, ready for go/format.
type Module struct {
	Source []byte
}

// moduleTemplate assembles the final type satisfying the runtime Matcher
// contract (spec §4.G): IsMatch and FindMatch scan offsets by calling
// the anchored entry procedure at each one, exactly as spec.md's design
// notes describe ("find_match is find_match_at scanned across offsets").
var moduleTemplate = template.Must(template.New("module").Parse(`// Code generated by regenc. DO NOT EDIT.

package {{.Package}}

import (
	"iter"
	"sort"
	"unicode/utf8"
	{{if .Prefilter}}"github.com/coregx/ahocorasick"{{end}}
)

var _ = utf8.RuneLen

type {{.TypeName}} struct{}
{{if .Prefilter}}
// {{.PrefilterVar}} holds the required-literal prefilter built once at
// package init: every match starts with one of these literals, so a
// candidate start position can be found by multi-pattern search instead of
// retrying the compiled matcher chain at every offset.
var {{.PrefilterVar}} *ahocorasick.Automaton

func init() {
	b := ahocorasick.NewBuilder()
	{{range .Literals}}b.AddPattern([]byte({{.}}))
	{{end}}auto, err := b.Build()
	if err != nil {
		panic("{{$.Package}}: building prefilter automaton: " + err.Error())
	}
	{{.PrefilterVar}} = auto
}
{{end}}
func (m {{.TypeName}}) IsMatchAt(input string, offset int) bool {
	return {{.RootFunc}}(input, offset, func(int) bool { return true })
}

func (m {{.TypeName}}) IsMatch(input string) bool {
	{{if .Anchored}}
	return {{.RootFunc}}(input, 0, func(int) bool { return true })
	{{else if .Prefilter}}
	_, ok := m.FindMatch(input)
	return ok
	{{else}}
	for offset := 0; offset <= len(input); offset++ {
		if {{.RootFunc}}(input, offset, func(int) bool { return true }) {
			return true
		}
	}
	return false
	{{end}}
}

func (m {{.TypeName}}) FindMatchAt(input string, offset int) (start, end int, ok bool) {
	matched := false
	var matchEnd int
	{{.RootFunc}}(input, offset, func(p int) bool {
		matched = true
		matchEnd = p
		return true
	})
	if !matched {
		return 0, 0, false
	}
	return offset, matchEnd, true
}

func (m {{.TypeName}}) FindMatch(input string) (start, end int, ok bool) {
	{{if .Anchored}}
	if s, e, ok := m.FindMatchAt(input, 0); ok {
		return s, e, true
	}
	return 0, 0, false
	{{else if .Prefilter}}
	haystack := []byte(input)
	at := 0
	for at <= len(input) {
		hit := {{.PrefilterVar}}.Find(haystack, at)
		if hit == nil {
			return 0, 0, false
		}
		{{if .Exact}}
		return hit.Start, hit.End, true
		{{else}}
		if s, e, ok := m.FindMatchAt(input, hit.Start); ok {
			return s, e, true
		}
		at = hit.Start + 1
		{{end}}
	}
	return 0, 0, false
	{{else}}
	for offset := 0; offset <= len(input); offset++ {
		if s, e, ok := m.FindMatchAt(input, offset); ok {
			return s, e, true
		}
	}
	return 0, 0, false
	{{end}}
}

func (m {{.TypeName}}) Matches(input string) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		{{if .Prefilter}}
		haystack := []byte(input)
		at := 0
		for at <= len(input) {
			hit := {{.PrefilterVar}}.Find(haystack, at)
			if hit == nil {
				return
			}
			{{if .Exact}}
			start, end := hit.Start, hit.End
			{{else}}
			start, end, ok := m.FindMatchAt(input, hit.Start)
			if !ok {
				at = hit.Start + 1
				continue
			}
			{{end}}
			if !yield(start, end) {
				return
			}
			if end == start {
				at = end + 1
			} else {
				at = end
			}
		}
		{{else}}
		offset := 0
		for offset <= len(input) {
			start, end, ok := m.FindMatchAt(input, offset)
			if !ok {
				{{if .Anchored}}return{{else}}offset++
				continue{{end}}
			}
			if !yield(start, end) {
				return
			}
			if end == start {
				offset = end + 1
			} else {
				offset = end
			}
		}
		{{end}}
	}
}
`))

type moduleData struct {
	Package      string
	TypeName     string
	RootFunc     string
	Anchored     bool
	Prefilter    bool
	Exact        bool
	PrefilterVar string
	Literals     []string
}

// AssembleModule renders the full generated Go source for typeName
// matching prog, given the procedure tree impl rooted at the program's
// entry point. sess must be the same Session used to produce impl, since
// it owns the accumulated character-range tables those procedures refer
// to. plan may be nil; when non-nil and prog is unanchored, the generated
// package builds an Aho-Corasick prefilter in its init() and uses it to
// find candidate match starts instead of retrying the compiled matcher at
// every offset (spec's "domain stack" literal-prefilter wiring).
func AssembleModule(sess *Session, packageName, typeName string, prog *instr.Program, impl *ProgramImplementation, plan *literal.PrefilterPlan) ([]byte, error) {
	var buf bytes.Buffer

	data := moduleData{Package: packageName, TypeName: typeName, RootFunc: impl.Name, Anchored: prog.Anchored}
	if plan != nil && !prog.Anchored {
		data.Prefilter = true
		data.Exact = plan.Exact
		data.PrefilterVar = sess.hashName('T', "prefilter")
		for _, lit := range plan.Literals {
			data.Literals = append(data.Literals, strconv.Quote(string(lit)))
		}
	}
	if err := moduleTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("emit: render module: %w", err)
	}

	buf.WriteString(runtimeSupport)

	writeProcedures(&buf, impl, make(map[string]bool))

	for _, name := range sortedKeys(sess.tables) {
		buf.WriteString(sess.tables[name])
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), &RenderError{Err: err}
	}
	return out, nil
}

// writeProcedures walks the procedure tree depth-first, children before
// parents (matching ProgramImplementation's Display impl in the original),
// and writes each one exactly once even if reached through more than one
// parent — the same sharing section.Parse's memoization already produced.
func writeProcedures(buf *bytes.Buffer, impl *ProgramImplementation, written map[string]bool) {
	if written[impl.Name] {
		return
	}
	for _, child := range impl.Children {
		writeProcedures(buf, child, written)
	}
	written[impl.Name] = true

	fmt.Fprintf(buf, "\nfunc %s(%s string, %s int, %s func(int) bool) bool {\n%s\n}\n",
		impl.Name, inputParam, posParam, contParam, impl.Body)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
