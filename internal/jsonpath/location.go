package jsonpath

import (
	"strconv"
	"strings"
)

// Step is one concrete move into a document: a member name or an array index.
type Step struct {
	name    string
	index   int
	isIndex bool
}

// Key returns a step selecting the object member name.
func Key(name string) Step {
	return Step{name: name}
}

// Index returns a step selecting array element i.
func Index(i int) Step {
	return Step{index: i, isIndex: true}
}

// IsIndex reports whether the step addresses an array element.
func (s Step) IsIndex() bool { return s.isIndex }

// Name returns the member name of a key step.
func (s Step) Name() string { return s.name }

// Pos returns the element index of an index step.
func (s Step) Pos() int { return s.index }

// Location is a concrete, fully resolved position inside a document.
// It never contains wildcards or filters.
type Location []Step

// child returns a copy of l extended by s. Locations handed out by the
// evaluator never share backing arrays.
func (l Location) child(s Step) Location {
	out := make(Location, len(l)+1)
	copy(out, l)
	out[len(l)] = s
	return out
}

// String renders the location in normalized path form, e.g. $['entities'][0]['handle'].
func (l Location) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range l {
		if s.isIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
			continue
		}
		b.WriteString("['")
		b.WriteString(quoteName(s.name))
		b.WriteString("']")
	}
	return b.String()
}

// Pointer renders the location as an RFC 6901 JSON pointer.
func (l Location) Pointer() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteByte('/')
		if s.isIndex {
			b.WriteString(strconv.Itoa(s.index))
			continue
		}
		b.WriteString(escapeToken(s.name))
	}
	return b.String()
}

// Lookup walks the location through doc. The second result is false when
// any step does not exist or hits a value of the wrong shape.
func (l Location) Lookup(doc any) (any, bool) {
	cur := doc
	for _, s := range l {
		next, ok := step(cur, s)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// step performs one checked move. Negative indexes count from the end.
func step(v any, s Step) (any, bool) {
	if s.isIndex {
		arr, ok := v.([]any)
		if !ok {
			return nil, false
		}
		i := s.index
		if i < 0 {
			i += len(arr)
		}
		if i < 0 || i >= len(arr) {
			return nil, false
		}
		return arr[i], true
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	child, ok := obj[s.name]
	return child, ok
}

func quoteName(name string) string {
	if !strings.ContainsAny(name, `\'`) {
		return name
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return r.Replace(name)
}

var (
	tokenEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapeToken(name string) string {
	return tokenEscaper.Replace(name)
}
