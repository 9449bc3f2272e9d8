package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a malformed or unsupported path expression.
type SyntaxError struct {
	Expr   string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("jsonpath: %s at offset %d in %q", e.Msg, e.Offset, e.Expr)
}

// Path is a compiled path expression.
type Path struct {
	expr      string
	selectors []selector
}

// String returns the expression the path was compiled from.
func (p *Path) String() string { return p.expr }

// Parse compiles a path expression. Supported syntax:
//
//	$                    root
//	.name ['name'] ["n"] member access
//	[3] [-1]             array index
//	.* [*]               wildcard over array elements (and object members)
//	[?(@.a[0]=='v')]     equality filter on the children of the current node
//
// Recursive descent, unions, slices and script expressions are rejected.
func Parse(expr string) (*Path, error) {
	p := &parser{expr: strings.TrimSpace(expr)}
	sels, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Path{expr: expr, selectors: sels}, nil
}

// ParseLocation parses a concrete path, such as the normalized rendering of
// a match, into a Location. Redundant separators ("$..a", "$.['a']") are
// collapsed; wildcards and filters are rejected.
func ParseLocation(concrete string) (Location, error) {
	p := &parser{expr: strings.TrimSpace(concrete), concrete: true}
	sels, err := p.parse()
	if err != nil {
		return nil, err
	}
	loc := make(Location, 0, len(sels))
	for _, s := range sels {
		switch s := s.(type) {
		case nameSelector:
			loc = append(loc, Key(s.name))
		case indexSelector:
			if s.index < 0 {
				return nil, &SyntaxError{Expr: concrete, Msg: "negative index in concrete path"}
			}
			loc = append(loc, Index(s.index))
		default:
			return nil, &SyntaxError{Expr: concrete, Msg: "non-concrete selector"}
		}
	}
	return loc, nil
}

// NormalizePointer converts one concrete path into an RFC 6901 pointer,
// e.g. "$.entities[0]['vcardArray'][1]" becomes "/entities/0/vcardArray/1".
func NormalizePointer(concrete string) (string, error) {
	loc, err := ParseLocation(concrete)
	if err != nil {
		return "", err
	}
	return loc.Pointer(), nil
}

type parser struct {
	expr     string
	pos      int
	concrete bool
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expr: p.expr, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.expr) }

func (p *parser) peek() byte { return p.expr[p.pos] }

func (p *parser) consume(c byte) bool {
	if !p.eof() && p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *parser) expect(c byte) error {
	if !p.consume(c) {
		if p.eof() {
			return p.errorf("expected %q, got end of expression", c)
		}
		return p.errorf("expected %q, got %q", c, p.peek())
	}
	return nil
}

func (p *parser) parse() ([]selector, error) {
	if p.expr == "" {
		return nil, p.errorf("empty expression")
	}
	if err := p.expect('$'); err != nil {
		return nil, err
	}
	var sels []selector
	for !p.eof() {
		switch p.peek() {
		case '.':
			p.pos++
			if p.eof() {
				return nil, p.errorf("trailing '.'")
			}
			switch p.peek() {
			case '.':
				if !p.concrete {
					return nil, p.errorf("recursive descent is not supported")
				}
				continue
			case '[':
				continue
			case '*':
				if p.concrete {
					return nil, p.errorf("wildcard in concrete path")
				}
				p.pos++
				sels = append(sels, wildcardSelector{})
			default:
				name, err := p.name()
				if err != nil {
					return nil, err
				}
				sels = append(sels, nameSelector{name: name})
			}
		case '[':
			sel, err := p.bracket()
			if err != nil {
				return nil, err
			}
			sels = append(sels, sel)
		default:
			return nil, p.errorf("unexpected %q", p.peek())
		}
	}
	return sels, nil
}

// name reads a dot-notation member name up to the next delimiter.
func (p *parser) name() (string, error) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if strings.IndexByte(".[]()=! \t", c) >= 0 {
			break
		}
		if strings.IndexByte("'\"?@$*,", c) >= 0 {
			return "", p.errorf("invalid character %q in member name", c)
		}
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("empty member name")
	}
	return p.expr[start:p.pos], nil
}

func (p *parser) bracket() (selector, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unterminated '['")
	}
	var sel selector
	switch c := p.peek(); {
	case c == '*':
		if p.concrete {
			return nil, p.errorf("wildcard in concrete path")
		}
		p.pos++
		sel = wildcardSelector{}
	case c == '\'' || c == '"':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		sel = nameSelector{name: s}
	case c == '?':
		if p.concrete {
			return nil, p.errorf("filter in concrete path")
		}
		p.pos++
		f, err := p.filter()
		if err != nil {
			return nil, err
		}
		sel = f
	case c == '-' || isDigit(c):
		i, err := p.integer()
		if err != nil {
			return nil, err
		}
		sel = indexSelector{index: i}
	default:
		return nil, p.errorf("unsupported selector starting with %q", c)
	}
	p.skipSpace()
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return sel, nil
}

// filter parses "(@<relative> == <literal>)"; the parentheses are optional.
func (p *parser) filter() (selector, error) {
	p.skipSpace()
	paren := p.consume('(')
	p.skipSpace()
	if err := p.expect('@'); err != nil {
		return nil, err
	}
	var rel Location
	for !p.eof() {
		c := p.peek()
		if c == '.' {
			p.pos++
			name, err := p.name()
			if err != nil {
				return nil, err
			}
			rel = append(rel, Key(name))
			continue
		}
		if c != '[' {
			break
		}
		p.pos++
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated '['")
		}
		switch c := p.peek(); {
		case c == '\'' || c == '"':
			s, err := p.quoted()
			if err != nil {
				return nil, err
			}
			rel = append(rel, Key(s))
		case c == '-' || isDigit(c):
			i, err := p.integer()
			if err != nil {
				return nil, err
			}
			rel = append(rel, Index(i))
		default:
			return nil, p.errorf("unsupported selector %q inside filter", c)
		}
		p.skipSpace()
		if err := p.expect(']'); err != nil {
			return nil, err
		}
	}
	p.skipSpace()
	if !strings.HasPrefix(p.expr[p.pos:], "==") {
		return nil, p.errorf("only '==' comparisons are supported in filters")
	}
	p.pos += 2
	p.skipSpace()
	lit, err := p.literal()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if paren {
		if err := p.expect(')'); err != nil {
			return nil, err
		}
	}
	return filterSelector{rel: rel, lit: lit}, nil
}

func (p *parser) literal() (literal, error) {
	if p.eof() {
		return literal{}, p.errorf("missing literal")
	}
	c := p.peek()
	switch {
	case c == '\'' || c == '"':
		s, err := p.quoted()
		if err != nil {
			return literal{}, err
		}
		return literal{kind: litString, str: s}, nil
	case c == '-' || isDigit(c):
		start := p.pos
		p.pos++
		for !p.eof() && strings.IndexByte("0123456789.eE+-", p.peek()) >= 0 {
			p.pos++
		}
		f, err := strconv.ParseFloat(p.expr[start:p.pos], 64)
		if err != nil {
			return literal{}, p.errorf("invalid number %q", p.expr[start:p.pos])
		}
		return literal{kind: litNumber, num: f}, nil
	}
	for _, kw := range []struct {
		word string
		lit  literal
	}{
		{"true", literal{kind: litBool, b: true}},
		{"false", literal{kind: litBool}},
		{"null", literal{kind: litNull}},
	} {
		if strings.HasPrefix(p.expr[p.pos:], kw.word) {
			p.pos += len(kw.word)
			return kw.lit, nil
		}
	}
	return literal{}, p.errorf("unsupported literal starting with %q", c)
}

func (p *parser) quoted() (string, error) {
	q := p.peek()
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		p.pos++
		switch c {
		case q:
			return b.String(), nil
		case '\\':
			if p.eof() {
				return "", p.errorf("unterminated escape")
			}
			e := p.peek()
			p.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) integer() (int, error) {
	start := p.pos
	p.consume('-')
	for !p.eof() && isDigit(p.peek()) {
		p.pos++
	}
	i, err := strconv.Atoi(p.expr[start:p.pos])
	if err != nil {
		return 0, p.errorf("invalid index %q", p.expr[start:p.pos])
	}
	return i, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
