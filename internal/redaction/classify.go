package redaction

import "github.com/raaihank/rdap-sentinel/internal/jsonpath"

// Classify returns the observed kind of v. present is false when the path
// matched nothing.
func Classify(v any, present bool) ObservedKind {
	if !present {
		return NoValue
	}
	switch t := v.(type) {
	case nil:
		return Null
	case string:
		if t == "" {
			return EmptyString
		}
		return NonEmptyString
	case []any:
		return Array
	case map[string]any:
		return Object
	}
	return Other
}

// ClassifyAt classifies the value currently stored at loc in doc.
func ClassifyAt(doc any, loc jsonpath.Location) ObservedKind {
	v, ok := loc.Lookup(doc)
	return Classify(v, ok)
}
