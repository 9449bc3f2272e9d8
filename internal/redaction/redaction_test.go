package redaction

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/raaihank/rdap-sentinel/internal/jsonpath"
)

func decodeTree(t *testing.T, s string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewBufferString(s))
	dec.UseNumber()
	var v map[string]any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("Failed to decode fixture: %v", err)
	}
	return v
}

func strptr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		present bool
		want    ObservedKind
	}{
		{"absent", nil, false, NoValue},
		{"empty string", "", true, EmptyString},
		{"string", "XXX", true, NonEmptyString},
		{"null", nil, true, Null},
		{"array", []any{}, true, Array},
		{"object", map[string]any{}, true, Object},
		{"number", json.Number("1"), true, Other},
		{"bool", true, true, Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.value, tt.present); got != tt.want {
				t.Errorf("Classify(%v, %t) = %s, want %s", tt.value, tt.present, got, tt.want)
			}
		})
	}

	doc := decodeTree(t, `{"a":[{"b":""}]}`)
	loc, err := jsonpath.ParseLocation("$['a'][0]['b']")
	if err != nil {
		t.Fatalf("ParseLocation returned error: %v", err)
	}
	if got := ClassifyAt(doc, loc); got != EmptyString {
		t.Errorf("ClassifyAt = %s, want empty_string", got)
	}
	if got := ClassifyAt(doc, jsonpath.Location{jsonpath.Key("a"), jsonpath.Index(5)}); got != NoValue {
		t.Errorf("ClassifyAt out of range = %s, want no_value", got)
	}
}

func TestExtract(t *testing.T) {
	t.Run("no redacted member", func(t *testing.T) {
		descs, errs := Extract(decodeTree(t, `{"handle":"X"}`))
		if descs != nil || errs != nil {
			t.Errorf("Expected nothing, got %v / %v", descs, errs)
		}
	})

	t.Run("not an array", func(t *testing.T) {
		descs, errs := Extract(decodeTree(t, `{"redacted":{"method":"removal"}}`))
		if len(descs) != 0 || len(errs) != 1 {
			t.Fatalf("Expected one error, got %v / %v", descs, errs)
		}
		if xe, ok := errs[0].(*ExtractError); !ok || xe.Index != -1 {
			t.Errorf("Unexpected error: %v", errs[0])
		}
	})

	t.Run("null members are absent", func(t *testing.T) {
		doc := decodeTree(t, `{"redacted":[
			{"prePath":null,"postPath":"$.unicodeName","pathLang":null,"method":"removal"},
			{"prePath":"$.handle","postPath":null,"replacementPath":null,"method":"partialValue"}
		]}`)
		descs, errs := Extract(doc)
		if len(errs) != 0 {
			t.Fatalf("Unexpected errors: %v", errs)
		}
		if len(descs) != 2 {
			t.Fatalf("Expected 2 descriptors, got %d", len(descs))
		}
		if descs[0].PrePath != nil || descs[0].PathLang != nil {
			t.Errorf("null members should decode as absent: %+v", descs[0])
		}
		if path, ok := descs[0].OriginalPath(); !ok || path != "$.unicodeName" {
			t.Errorf("OriginalPath = %q, %t, want postPath", path, ok)
		}
		if descs[1].PostPath != nil || descs[1].ReplacementPath != nil {
			t.Errorf("null members should decode as absent: %+v", descs[1])
		}
	})

	t.Run("lenient elements", func(t *testing.T) {
		doc := decodeTree(t, `{"redacted":[
			{"name":{"description":"Registry Domain ID"},"reason":{"type":"Server policy"},"prePath":"$.handle","pathLang":"jsonpath","method":"emptyValue","extra":1},
			"not an object",
			{"name":{"type":"Registrant Name"},"prePath":17,"method":"removal"},
			{"postPath":"$.port43"},
			{"prePath":"$.x","method":"obfuscate"}
		]}`)
		descs, errs := Extract(doc)
		if len(errs) != 2 {
			t.Fatalf("Expected 2 errors, got %v", errs)
		}
		if len(descs) != 3 {
			t.Fatalf("Expected 3 descriptors, got %d", len(descs))
		}

		first := descs[0]
		if first.Index != 0 || first.Name != "Registry Domain ID" || first.Reason != "Server policy" {
			t.Errorf("Unexpected first descriptor: %+v", first)
		}
		if first.Method != MethodEmptyValue || first.PathLang == nil || *first.PathLang != "jsonpath" {
			t.Errorf("Unexpected method/pathLang: %+v", first)
		}
		if descs[1].Index != 3 || descs[1].Method != MethodUnknown || descs[1].RawMethod != "" {
			t.Errorf("Missing method should be unknown: %+v", descs[1])
		}
		if path, ok := descs[1].OriginalPath(); !ok || path != "$.port43" {
			t.Errorf("OriginalPath = %q, %t", path, ok)
		}
		if descs[2].Method != MethodUnknown || descs[2].RawMethod != "obfuscate" {
			t.Errorf("Unregistered method should be unknown: %+v", descs[2])
		}
		for i, idx := range []int{1, 2} {
			if xe, ok := errs[i].(*ExtractError); !ok || xe.Index != idx {
				t.Errorf("errs[%d] = %v, want element %d", i, errs[i], idx)
			}
		}
	})
}

const tableDoc = `{
  "handle": "",
  "name": "XXX",
  "obj": {"k": "v"},
  "nul": null,
  "arr": [],
  "num": 7,
  "src": "V",
  "srcObj": {"k": "v"}
}`

func TestResolveDecisionTable(t *testing.T) {
	tests := []struct {
		name        string
		method      Method
		path        string
		replacement *string
		want        EffectiveAction
	}{
		{"empty on empty", MethodEmptyValue, "$.handle", nil, MaskEmpty},
		{"empty on non-empty", MethodEmptyValue, "$.name", nil, MaskEmpty},
		{"empty on object", MethodEmptyValue, "$.obj", nil, NoAction},
		{"empty on missing", MethodEmptyValue, "$.missing", nil, NoAction},
		{"partial on non-empty", MethodPartialValue, "$.name", nil, MaskPartial},
		{"partial on null", MethodPartialValue, "$.nul", nil, NoAction},
		{"partial on missing", MethodPartialValue, "$.missing", nil, NoAction},
		{"partial on mixed", MethodPartialValue, "$.*", nil, NoAction},
		{"replacement", MethodReplacementValue, "$.name", strptr("$.src"), CopyFromReplacement},
		{"replacement without path", MethodReplacementValue, "$.name", nil, NoAction},
		{"replacement source missing", MethodReplacementValue, "$.name", strptr("$.gone"), NoAction},
		{"replacement source object", MethodReplacementValue, "$.name", strptr("$.srcObj"), NoAction},
		{"replacement on array", MethodReplacementValue, "$.arr", strptr("$.src"), NoAction},
		{"replacement on missing", MethodReplacementValue, "$.missing", strptr("$.src"), NoAction},
		{"removal on missing", MethodRemoval, "$.missing", nil, VerifyAbsent},
		{"removal on present", MethodRemoval, "$.name", nil, NoAction},
		{"removal on number", MethodRemoval, "$.num", nil, NoAction},
		{"unknown", MethodUnknown, "$.name", nil, NoAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeTree(t, tableDoc)
			d := Descriptor{PrePath: strptr(tt.path), ReplacementPath: tt.replacement, Method: tt.method}
			res, err := Resolve(doc, d, DefaultOptions())
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if res.Action != tt.want {
				t.Errorf("Action = %s, want %s", res.Action, tt.want)
			}
		})
	}
}

func TestResolveDiagnostics(t *testing.T) {
	t.Run("ambiguous path prefers prePath", func(t *testing.T) {
		doc := decodeTree(t, tableDoc)
		d := Descriptor{PrePath: strptr("$.name"), PostPath: strptr("$.handle"), Method: MethodPartialValue}
		res, err := Resolve(doc, d, DefaultOptions())
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if res.Path != "$.name" || len(res.Targets) != 1 || res.Targets[0].Location.String() != "$['name']" {
			t.Errorf("Unexpected targets: %q %v", res.Path, res.Targets)
		}
		if len(res.Events) != 1 || res.Events[0].Kind != EventAmbiguousPath {
			t.Errorf("Expected ambiguous_path event, got %+v", res.Events)
		}
	})

	t.Run("path language", func(t *testing.T) {
		d := Descriptor{PrePath: strptr("$.handle"), PathLang: strptr("xpath"), Method: MethodEmptyValue}
		res, _ := Resolve(decodeTree(t, tableDoc), d, DefaultOptions())
		if res.Action != NoAction || len(res.Events) != 1 || res.Events[0].Kind != EventMismatch {
			t.Errorf("Strict pathLang: action %s events %+v", res.Action, res.Events)
		}
		res, _ = Resolve(decodeTree(t, tableDoc), d, Options{})
		if res.Action != MaskEmpty {
			t.Errorf("Lenient pathLang: action %s, want mask_empty", res.Action)
		}
	})

	t.Run("unparseable path", func(t *testing.T) {
		for _, d := range []Descriptor{
			{PrePath: strptr("$..handle"), Method: MethodEmptyValue},
			{PrePath: strptr("$.name"), ReplacementPath: strptr("$["), Method: MethodReplacementValue},
		} {
			res, err := Resolve(decodeTree(t, tableDoc), d, DefaultOptions())
			if err == nil {
				t.Errorf("Expected error for %+v", d)
			}
			if res.Action != NoAction {
				t.Errorf("Action = %s, want no_action", res.Action)
			}
		}
	})

	t.Run("no path", func(t *testing.T) {
		res, err := Resolve(decodeTree(t, tableDoc), Descriptor{Method: MethodRemoval}, DefaultOptions())
		if err != nil || res.Action != NoAction || len(res.Events) != 1 {
			t.Errorf("Unexpected resolution %+v, %v", res, err)
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("masking", func(t *testing.T) {
		doc := decodeTree(t, `{"a":"","b":"XXX","c":{"k":1}}`)
		res := Resolution{Action: MaskPartial, Targets: []ResolvedLocation{
			{Location: jsonpath.Location{jsonpath.Key("a")}},
			{Location: jsonpath.Location{jsonpath.Key("b")}},
			{Location: jsonpath.Location{jsonpath.Key("c")}},
			{Location: jsonpath.Location{jsonpath.Key("gone")}},
		}}
		anomalies := Apply(doc, res)
		if doc["a"] != Placeholder || doc["b"] != "*XXX*" {
			t.Errorf("Unexpected masking: %v", doc)
		}
		if _, ok := doc["c"].(map[string]any); !ok {
			t.Errorf("Object was coerced: %v", doc["c"])
		}
		if _, ok := doc["gone"]; ok {
			t.Error("Mutation must never add members")
		}
		if len(anomalies) != 2 || anomalies[0].Kind != Object || anomalies[1].Kind != NoValue {
			t.Errorf("Unexpected anomalies: %+v", anomalies)
		}
	})

	t.Run("copy", func(t *testing.T) {
		doc := decodeTree(t, `{"a":["x","y"]}`)
		res := Resolution{Action: CopyFromReplacement, Replacement: "V", Targets: []ResolvedLocation{
			{Location: jsonpath.Location{jsonpath.Key("a"), jsonpath.Index(0)}},
			{Location: jsonpath.Location{jsonpath.Key("a"), jsonpath.Index(1)}},
		}}
		if anomalies := Apply(doc, res); len(anomalies) != 0 {
			t.Fatalf("Unexpected anomalies: %+v", anomalies)
		}
		arr := doc["a"].([]any)
		if arr[0] != "V" || arr[1] != "V" {
			t.Errorf("Unexpected copy result: %v", arr)
		}
	})

	t.Run("no mutation", func(t *testing.T) {
		for _, action := range []EffectiveAction{NoAction, VerifyAbsent} {
			doc := decodeTree(t, `{"a":"x"}`)
			Apply(doc, Resolution{Action: action, Targets: []ResolvedLocation{{Location: jsonpath.Location{jsonpath.Key("a")}}}})
			if doc["a"] != "x" {
				t.Errorf("%s mutated the document: %v", action, doc)
			}
		}
	})
}

func TestMaskString(t *testing.T) {
	if got := MaskString(""); got != "*REDACTED*" {
		t.Errorf("MaskString(\"\") = %q", got)
	}
	if got := MaskString("Jane"); got != "*Jane*" {
		t.Errorf("MaskString(\"Jane\") = %q", got)
	}
}
