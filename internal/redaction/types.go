// Package redaction resolves the RDAP "redacted" extension against the
// document that carries it. Each declaration's path is evaluated, the values
// found there are observed, and the declared method is reconciled with what
// was observed before any leaf value is masked or replaced.
package redaction

import (
	"errors"

	"github.com/raaihank/rdap-sentinel/internal/jsonpath"
)

const (
	// Placeholder replaces a redacted value that is the empty string.
	Placeholder = "*REDACTED*"
	// Marker wraps a redacted value that is a non-empty string.
	Marker = "*"
	// PathLangJSONPath is the only path language the engine evaluates.
	PathLangJSONPath = "jsonpath"
)

// ErrShapeViolation means a resolved document could not be converted back
// into its typed response. Mutation only replaces string leaves, so this
// indicates a defect rather than bad input.
var ErrShapeViolation = errors.New("redaction: resolved document no longer matches its response type")

// Method is the redaction method a server declares.
type Method string

const (
	MethodRemoval          Method = "removal"
	MethodEmptyValue       Method = "emptyValue"
	MethodPartialValue     Method = "partialValue"
	MethodReplacementValue Method = "replacementValue"
	MethodUnknown          Method = "unknown"
)

// ParseMethod maps a declared method to a Method, MethodUnknown when it is
// not one of the four registered values.
func ParseMethod(s string) Method {
	switch m := Method(s); m {
	case MethodRemoval, MethodEmptyValue, MethodPartialValue, MethodReplacementValue:
		return m
	}
	return MethodUnknown
}

// Descriptor is one well-formed element of the redacted array.
type Descriptor struct {
	Index           int // position in the redacted array
	Name            string
	Reason          string
	PrePath         *string
	PostPath        *string
	PathLang        *string
	ReplacementPath *string
	Method          Method
	RawMethod       string // as declared, empty when absent
}

// OriginalPath returns prePath when present, else postPath.
func (d Descriptor) OriginalPath() (string, bool) {
	if d.PrePath != nil {
		return *d.PrePath, true
	}
	if d.PostPath != nil {
		return *d.PostPath, true
	}
	return "", false
}

// ObservedKind classifies the value found at a location.
type ObservedKind int

const (
	NoValue ObservedKind = iota
	EmptyString
	NonEmptyString
	Null
	Array
	Object
	Other
)

var observedKindNames = [...]string{
	NoValue:        "no_value",
	EmptyString:    "empty_string",
	NonEmptyString: "non_empty_string",
	Null:           "null",
	Array:          "array",
	Object:         "object",
	Other:          "other",
}

func (k ObservedKind) String() string {
	if k < 0 || int(k) >= len(observedKindNames) {
		return "invalid"
	}
	return observedKindNames[k]
}

// isStringLike reports whether the kind belongs to the string column of the
// decision table.
func (k ObservedKind) isStringLike() bool {
	return k == NoValue || k == EmptyString || k == NonEmptyString
}

// EffectiveAction is what the engine actually does for a descriptor.
type EffectiveAction int

const (
	NoAction EffectiveAction = iota
	MaskEmpty
	MaskPartial
	CopyFromReplacement
	VerifyAbsent
)

var actionNames = [...]string{
	NoAction:            "no_action",
	MaskEmpty:           "mask_empty",
	MaskPartial:         "mask_partial",
	CopyFromReplacement: "copy_from_replacement",
	VerifyAbsent:        "verify_absent",
}

func (a EffectiveAction) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "invalid"
	}
	return actionNames[a]
}

// ResolvedLocation is a concrete location and the kind of value observed there.
type ResolvedLocation struct {
	Location jsonpath.Location
	Kind     ObservedKind
}

// Resolution is the outcome of resolving one descriptor against a document.
type Resolution struct {
	Descriptor Descriptor
	Path       string
	Targets    []ResolvedLocation
	Action     EffectiveAction

	// Set when Action is CopyFromReplacement.
	Replacement     any
	ReplacementFrom jsonpath.Location

	// Diagnostics raised while deciding, in order.
	Events []Event
}

// Anomaly is a target the mutator refused to touch.
type Anomaly struct {
	Location jsonpath.Location
	Kind     ObservedKind
	Msg      string
}
