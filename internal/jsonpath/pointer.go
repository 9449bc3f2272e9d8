package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// PointerError reports a pointer that is malformed or does not resolve.
type PointerError struct {
	Pointer string
	Msg     string
}

func (e *PointerError) Error() string {
	return fmt.Sprintf("jsonpath: pointer %q: %s", e.Pointer, e.Msg)
}

// ParsePointer splits an RFC 6901 pointer into unescaped reference tokens.
func ParsePointer(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if ptr[0] != '/' {
		return nil, &PointerError{Pointer: ptr, Msg: "must start with '/'"}
	}
	parts := strings.Split(ptr[1:], "/")
	for i, p := range parts {
		parts[i] = tokenUnescaper.Replace(p)
	}
	return parts, nil
}

// Lookup returns the value addressed by ptr. Every access is checked; a
// missing member, an out of range index or a shape mismatch is an error.
func Lookup(doc any, ptr string) (any, error) {
	tokens, err := ParsePointer(ptr)
	if err != nil {
		return nil, err
	}
	cur := doc
	for i, tok := range tokens {
		cur, err = descend(cur, tok)
		if err != nil {
			return nil, &PointerError{Pointer: ptr, Msg: fmt.Sprintf("token %d: %v", i, err)}
		}
	}
	return cur, nil
}

// Replace overwrites the existing value addressed by ptr with v. It never
// creates members or elements and refuses to replace the document root.
func Replace(doc any, ptr string, v any) error {
	tokens, err := ParsePointer(ptr)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return &PointerError{Pointer: ptr, Msg: "cannot replace the document root"}
	}
	parent := doc
	for i, tok := range tokens[:len(tokens)-1] {
		parent, err = descend(parent, tok)
		if err != nil {
			return &PointerError{Pointer: ptr, Msg: fmt.Sprintf("token %d: %v", i, err)}
		}
	}
	last := tokens[len(tokens)-1]
	switch c := parent.(type) {
	case map[string]any:
		if _, ok := c[last]; !ok {
			return &PointerError{Pointer: ptr, Msg: fmt.Sprintf("member %q does not exist", last)}
		}
		c[last] = v
	case []any:
		i, err := arrayIndex(last, len(c))
		if err != nil {
			return &PointerError{Pointer: ptr, Msg: err.Error()}
		}
		c[i] = v
	default:
		return &PointerError{Pointer: ptr, Msg: fmt.Sprintf("parent is %T, not a container", parent)}
	}
	return nil
}

func descend(v any, tok string) (any, error) {
	switch c := v.(type) {
	case map[string]any:
		child, ok := c[tok]
		if !ok {
			return nil, fmt.Errorf("member %q does not exist", tok)
		}
		return child, nil
	case []any:
		i, err := arrayIndex(tok, len(c))
		if err != nil {
			return nil, err
		}
		return c[i], nil
	default:
		return nil, fmt.Errorf("cannot descend into %T", v)
	}
}

func arrayIndex(tok string, n int) (int, error) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, fmt.Errorf("invalid array index %q", tok)
	}
	for i := 0; i < len(tok); i++ {
		if !isDigit(tok[i]) {
			return 0, fmt.Errorf("invalid array index %q", tok)
		}
	}
	i, err := strconv.Atoi(tok)
	if err != nil || i >= n {
		return 0, fmt.Errorf("index %s out of range [0,%d)", tok, n)
	}
	return i, nil
}
