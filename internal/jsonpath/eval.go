package jsonpath

import (
	"encoding/json"
	"sort"
)

// Evaluate returns the concrete locations in doc matched by the path, in
// document order. Object members visited by wildcards and filters are
// walked in sorted key order so results are deterministic. Zero matches is
// a valid result.
func (p *Path) Evaluate(doc any) []Location {
	nodes := []node{{value: doc}}
	for _, sel := range p.selectors {
		next := make([]node, 0, len(nodes))
		for _, n := range nodes {
			next = sel.selectFrom(n, next)
		}
		nodes = next
		if len(nodes) == 0 {
			return nil
		}
	}
	locs := make([]Location, len(nodes))
	for i, n := range nodes {
		locs[i] = n.loc
	}
	return locs
}

// Evaluate compiles expr and evaluates it against doc.
func Evaluate(doc any, expr string) ([]Location, error) {
	p, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(doc), nil
}

type node struct {
	value any
	loc   Location
}

type selector interface {
	selectFrom(n node, out []node) []node
}

type nameSelector struct{ name string }

func (s nameSelector) selectFrom(n node, out []node) []node {
	st := Key(s.name)
	if v, ok := step(n.value, st); ok {
		out = append(out, node{value: v, loc: n.loc.child(st)})
	}
	return out
}

type indexSelector struct{ index int }

func (s indexSelector) selectFrom(n node, out []node) []node {
	arr, ok := n.value.([]any)
	if !ok {
		return out
	}
	i := s.index
	if i < 0 {
		i += len(arr)
	}
	if i < 0 || i >= len(arr) {
		return out
	}
	return append(out, node{value: arr[i], loc: n.loc.child(Index(i))})
}

type wildcardSelector struct{}

func (wildcardSelector) selectFrom(n node, out []node) []node {
	return children(n, out, nil)
}

type filterSelector struct {
	rel Location
	lit literal
}

func (s filterSelector) selectFrom(n node, out []node) []node {
	return children(n, out, func(v any) bool {
		got, ok := s.rel.Lookup(v)
		return ok && s.lit.equals(got)
	})
}

// children appends the elements or members of n that satisfy keep.
func children(n node, out []node, keep func(any) bool) []node {
	switch v := n.value.(type) {
	case []any:
		for i, elem := range v {
			if keep == nil || keep(elem) {
				out = append(out, node{value: elem, loc: n.loc.child(Index(i))})
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if keep == nil || keep(v[k]) {
				out = append(out, node{value: v[k], loc: n.loc.child(Key(k))})
			}
		}
	}
	return out
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	str  string
	num  float64
	b    bool
}

func (l literal) equals(v any) bool {
	switch l.kind {
	case litString:
		s, ok := v.(string)
		return ok && s == l.str
	case litNumber:
		f, ok := toFloat(v)
		return ok && f == l.num
	case litBool:
		b, ok := v.(bool)
		return ok && b == l.b
	case litNull:
		return v == nil
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
