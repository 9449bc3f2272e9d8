package redaction

import "fmt"

// RedactedKey is the top-level member holding redaction declarations.
const RedactedKey = "redacted"

// ExtractError reports a redacted element that was skipped. Index is -1
// when the member itself is not an array.
type ExtractError struct {
	Index int
	Msg   string
}

func (e *ExtractError) Error() string {
	if e.Index < 0 {
		return "redaction: " + e.Msg
	}
	return fmt.Sprintf("redaction: element %d: %s", e.Index, e.Msg)
}

// Extract reads the descriptors declared in doc. Malformed elements are
// skipped and reported; they never fail the call.
func Extract(doc any) ([]Descriptor, []error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, ok := obj[RedactedKey]
	if !ok {
		return nil, nil
	}
	elems, ok := raw.([]any)
	if !ok {
		return nil, []error{&ExtractError{Index: -1, Msg: fmt.Sprintf("%q member is %s, not an array", RedactedKey, Classify(raw, true))}}
	}

	descs := make([]Descriptor, 0, len(elems))
	var errs []error
	for i, elem := range elems {
		d, err := extractOne(i, elem)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descs = append(descs, d)
	}
	return descs, errs
}

func extractOne(i int, elem any) (Descriptor, error) {
	m, ok := elem.(map[string]any)
	if !ok {
		return Descriptor{}, &ExtractError{Index: i, Msg: fmt.Sprintf("element is %s, not an object", Classify(elem, true))}
	}

	d := Descriptor{
		Index:  i,
		Name:   text(m["name"]),
		Reason: text(m["reason"]),
		Method: MethodUnknown,
	}
	for _, f := range []struct {
		key string
		dst **string
	}{
		{"prePath", &d.PrePath},
		{"postPath", &d.PostPath},
		{"pathLang", &d.PathLang},
		{"replacementPath", &d.ReplacementPath},
	} {
		v, ok := m[f.key]
		if !ok || v == nil {
			// null is an absent member
			continue
		}
		s, ok := v.(string)
		if !ok {
			return Descriptor{}, &ExtractError{Index: i, Msg: fmt.Sprintf("%s is %s, not a string", f.key, Classify(v, true))}
		}
		*f.dst = &s
	}
	if s, ok := m["method"].(string); ok {
		d.RawMethod = s
		d.Method = ParseMethod(s)
	}
	return d, nil
}

// text reads a name or reason object, preferring description over type.
// A bare string is accepted as is.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["description"].(string); ok {
			return s
		}
		if s, ok := t["type"].(string); ok {
			return s
		}
	}
	return ""
}
