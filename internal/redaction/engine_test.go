package redaction

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/raaihank/rdap-sentinel/internal/logger"
	"github.com/raaihank/rdap-sentinel/internal/rdap"
	"go.uber.org/zap"
)

func newEngine() *Engine {
	return New(DefaultOptions(), &logger.Logger{Logger: zap.NewNop()})
}

func decodeResponse(t *testing.T, s string) rdap.Response {
	t.Helper()
	resp, err := rdap.Decode([]byte(s))
	if err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func resolveDomain(t *testing.T, s string) (*rdap.Domain, *Report) {
	t.Helper()
	out, report, err := newEngine().Resolve(decodeResponse(t, s))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	d, ok := out.(*rdap.Domain)
	if !ok {
		t.Fatalf("Resolve returned %T, want *rdap.Domain", out)
	}
	return d, report
}

func tree(t *testing.T, resp rdap.Response) map[string]any {
	t.Helper()
	m, err := rdap.ToTree(resp)
	if err != nil {
		t.Fatalf("ToTree returned error: %v", err)
	}
	return m
}

const registrantDoc = `{
  "objectClassName": "domain",
  "handle": "XXX",
  "ldhName": "example.com",
  "port43": "whois.example.com",
  "entities": [
    {"objectClassName": "entity", "handle": "R1", "roles": ["registrant"],
     "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "Jane Doe"], ["email", {}, "text", ""]]]},
    {"objectClassName": "entity", "handle": "T1", "roles": ["technical"]},
    {"objectClassName": "entity", "handle": "R2", "roles": ["registrant"]},
    {"objectClassName": "entity", "handle": "", "roles": ["registrant"]}
  ],
  "redacted": %s
}`

func withRedacted(redacted string) string {
	return fmt.Sprintf(registrantDoc, redacted)
}

func TestEngineIdentity(t *testing.T) {
	docs := []string{
		`{"objectClassName":"domain","handle":"","ldhName":"example.com"}`,
		`{"objectClassName":"entity","handle":"E","vcardArray":["vcard",[["fn",{},"text","X"]]]}`,
		`{"errorCode":404,"title":"Not Found"}`,
		`{"rdapConformance":["rdap_level_0"],"redacted":[]}`,
	}
	for _, doc := range docs {
		resp := decodeResponse(t, doc)
		out, report, err := newEngine().Resolve(resp)
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if out != resp {
			t.Errorf("Document without declarations should be returned as is: %s", doc)
		}
		if report.Declared != 0 || len(report.Events) != 0 {
			t.Errorf("Unexpected report: %+v", report)
		}
	}
}

func TestEngineEmptyValue(t *testing.T) {
	d, report := resolveDomain(t, `{"objectClassName":"domain","handle":"","redacted":[{"name":{"type":"Registry Domain ID"},"prePath":"$.handle","pathLang":"jsonpath","method":"emptyValue"}]}`)
	if d.Handle == nil || *d.Handle != "*REDACTED*" {
		t.Errorf("handle = %v, want *REDACTED*", d.Handle)
	}
	if report.Applied != 1 || len(report.Entries) != 1 || report.Entries[0].Action != MaskEmpty {
		t.Errorf("Unexpected report: %+v", report)
	}
	if report.Entries[0].Name != "Registry Domain ID" || report.Entries[0].Method != "emptyValue" {
		t.Errorf("Unexpected entry: %+v", report.Entries[0])
	}
}

func TestEnginePartialValue(t *testing.T) {
	d, _ := resolveDomain(t, `{"objectClassName":"domain","handle":"XXX","redacted":[{"prePath":"$.handle","method":"partialValue"}]}`)
	if d.Handle == nil || *d.Handle != "*XXX*" {
		t.Errorf("handle = %v, want *XXX*", d.Handle)
	}
}

func TestEngineWildcardIndependence(t *testing.T) {
	d, report := resolveDomain(t, withRedacted(`[{"prePath":"$.entities[?(@.roles[0]=='registrant')].handle","method":"partialValue"}]`))

	want := []string{"*R1*", "T1", "*R2*", "*REDACTED*"}
	for i, e := range d.Entities {
		if e.Handle == nil || *e.Handle != want[i] {
			t.Errorf("entities[%d].handle = %v, want %q", i, e.Handle, want[i])
		}
	}
	if report.Entries[0].Matches != 3 {
		t.Errorf("Matches = %d, want 3", report.Entries[0].Matches)
	}
}

func TestEngineVCardFilter(t *testing.T) {
	d, _ := resolveDomain(t, withRedacted(`[
		{"prePath":"$.entities[?(@.roles[0]=='registrant')].vcardArray[1][?(@[0]=='fn')][3]","method":"partialValue"},
		{"prePath":"$.entities[0].vcardArray[1][?(@[0]=='email')][3]","method":"emptyValue"}
	]`))

	props := d.Entities[0].VCardArray[1].([]any)
	if got := props[1].([]any)[3]; got != "*Jane Doe*" {
		t.Errorf("fn = %v, want *Jane Doe*", got)
	}
	if got := props[2].([]any)[3]; got != "*REDACTED*" {
		t.Errorf("email = %v, want *REDACTED*", got)
	}
	if got := props[0].([]any)[3]; got != "4.0" {
		t.Errorf("version changed: %v", got)
	}
}

func TestEngineReplacementCopy(t *testing.T) {
	d, report := resolveDomain(t, withRedacted(`[{"prePath":"$.handle","replacementPath":"$.port43","method":"replacementValue"}]`))
	if d.Handle == nil || *d.Handle != "whois.example.com" {
		t.Errorf("handle = %v, want whois.example.com", d.Handle)
	}
	if report.Entries[0].Action != CopyFromReplacement {
		t.Errorf("Action = %s", report.Entries[0].Action)
	}
}

func TestEngineRemoval(t *testing.T) {
	t.Run("absent value", func(t *testing.T) {
		resp := decodeResponse(t, withRedacted(`[{"postPath":"$.entities[?(@.roles[0]=='administrative')].handle","method":"removal"}]`))
		before := tree(t, resp)
		out, report, err := newEngine().Resolve(resp)
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if !reflect.DeepEqual(before, tree(t, out)) {
			t.Error("Verified removal must not mutate the document")
		}
		if report.Verified != 1 || report.Count(EventAbsentVerified) != 1 {
			t.Errorf("Unexpected report: %+v", report)
		}
	})

	t.Run("still present", func(t *testing.T) {
		d, report := resolveDomain(t, withRedacted(`[{"prePath":"$.handle","method":"removal"}]`))
		if *d.Handle != "XXX" {
			t.Errorf("handle = %q, want XXX unchanged", *d.Handle)
		}
		if report.Count(EventMismatch) != 1 || report.Skipped != 1 {
			t.Errorf("Unexpected report: %+v", report)
		}
	})
}

func TestEngineMalformedDeclarations(t *testing.T) {
	d, report := resolveDomain(t, withRedacted(`[
		{"prePath":"$[","method":"emptyValue"},
		"junk",
		{"prePath":["$.handle"],"method":"emptyValue"},
		{"prePath":"$.entities[9].handle","method":"partialValue"},
		{"prePath":"$.entities[*].roles","method":"emptyValue"},
		{"prePath":"$.handle","method":"partialValue"}
	]`))

	if d.Handle == nil || *d.Handle != "*XXX*" {
		t.Errorf("handle = %v, want *XXX*", d.Handle)
	}
	if d.Entities[0].Roles[0] != "registrant" {
		t.Errorf("roles changed: %v", d.Entities[0].Roles)
	}
	if report.Declared != 6 || report.Applied != 1 || report.Skipped != 5 {
		t.Errorf("Unexpected counts: %+v", report)
	}
	if report.Count(EventPathError) != 1 || report.Count(EventExtractError) != 2 {
		t.Errorf("Unexpected events: %+v", report.Events)
	}
	if len(rdap.Redactions(d)) != 6 {
		t.Errorf("redacted member should be carried through, got %d elements", len(rdap.Redactions(d)))
	}
}

func TestEngineDeclarationOrder(t *testing.T) {
	d, _ := resolveDomain(t, `{"objectClassName":"domain","handle":"","redacted":[
		{"prePath":"$.handle","method":"emptyValue"},
		{"prePath":"$.handle","method":"partialValue"}
	]}`)
	if *d.Handle != "**REDACTED**" {
		t.Errorf("handle = %q, want the second declaration to see the first one's result", *d.Handle)
	}
}

func TestEngineSearchResults(t *testing.T) {
	resp := decodeResponse(t, `{"domainSearchResults":[{"objectClassName":"domain","handle":"A"},{"objectClassName":"domain","handle":"B"}],
		"redacted":[{"prePath":"$.domainSearchResults[*].handle","method":"partialValue"}]}`)
	out, _, err := newEngine().Resolve(resp)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	results := out.(*rdap.DomainSearchResults).Results
	if *results[0].Handle != "*A*" || *results[1].Handle != "*B*" {
		t.Errorf("Unexpected results: %q %q", *results[0].Handle, *results[1].Handle)
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	engine := newEngine()
	const n = 16

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := fmt.Sprintf(`{"objectClassName":"domain","handle":"H%d","redacted":[{"prePath":"$.handle","method":"partialValue"}]}`, i)
			resp, err := rdap.Decode([]byte(doc))
			if err != nil {
				errs <- err
				return
			}
			out, _, err := engine.ForDocument(fmt.Sprintf("doc-%d", i)).Resolve(resp)
			if err != nil {
				errs <- err
				return
			}
			if got, want := *out.(*rdap.Domain).Handle, fmt.Sprintf("*H%d*", i); got != want {
				errs <- fmt.Errorf("handle = %q, want %q", got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestEngineNullPathMembers(t *testing.T) {
	d, report := resolveDomain(t, `{"objectClassName":"domain","handle":"XXX","redacted":[
		{"prePath":null,"postPath":"$.unicodeName","method":"removal"},
		{"prePath":"$.handle","replacementPath":null,"method":"partialValue"}
	]}`)
	if d.Handle == nil || *d.Handle != "*XXX*" {
		t.Errorf("handle = %v, want *XXX*", d.Handle)
	}
	if report.Verified != 1 || report.Applied != 1 || report.Skipped != 0 {
		t.Errorf("Unexpected counts: %+v", report)
	}
	if report.Count(EventExtractError) != 0 {
		t.Errorf("Unexpected extract errors: %+v", report.Events)
	}
}
