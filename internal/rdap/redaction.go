package rdap

import (
	"bytes"
	"encoding/json"
)

// RedactionText is the name or reason of a redaction: a registered type or
// a free-text description.
type RedactionText struct {
	Description *string `json:"description,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// Text returns the description, falling back to the type.
func (t *RedactionText) Text() string {
	switch {
	case t == nil:
		return ""
	case t.Description != nil:
		return *t.Description
	case t.Type != nil:
		return *t.Type
	}
	return ""
}

// Redaction is one element of the "redacted" member.
//
// Servers are not trusted to send well-formed elements. Decoding never
// fails on a member of the wrong type; the element's original bytes are
// kept and re-emitted on encode so the redaction engine sees exactly what
// the server sent.
type Redaction struct {
	Name            *RedactionText `json:"name,omitempty"`
	Reason          *RedactionText `json:"reason,omitempty"`
	PrePath         *string        `json:"prePath,omitempty"`
	PostPath        *string        `json:"postPath,omitempty"`
	PathLang        *string        `json:"pathLang,omitempty"`
	ReplacementPath *string        `json:"replacementPath,omitempty"`
	Method          *string        `json:"method,omitempty"`

	raw json.RawMessage
}

// redactionFields avoids recursion into the custom (un)marshalers.
type redactionFields Redaction

// UnmarshalJSON decodes leniently and retains the raw element.
func (r *Redaction) UnmarshalJSON(data []byte) error {
	var fields redactionFields
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		// A member of the wrong type leaves that field empty; the rest
		// still decodes.
		_ = json.Unmarshal(data, &fields)
	}
	*r = Redaction(fields)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the element as received when it was decoded, and
// the typed fields otherwise.
func (r Redaction) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(redactionFields(r))
}

// RedactedMember is the "redacted" member of a response. A member that is
// not an array declares nothing; it is kept verbatim so encoding the
// response reproduces it.
type RedactedMember struct {
	Items []Redaction

	raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *RedactedMember) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		var items []Redaction
		if err := json.Unmarshal(data, &items); err == nil {
			*m = RedactedMember{Items: items}
			return nil
		}
	}
	*m = RedactedMember{raw: append(json.RawMessage(nil), data...)}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m RedactedMember) MarshalJSON() ([]byte, error) {
	if m.raw != nil {
		return m.raw, nil
	}
	if m.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.Items)
}

// Redactions returns the redaction declarations of a response.
func Redactions(resp Response) []Redaction {
	if resp == nil {
		return nil
	}
	if m := resp.common().Redacted; m != nil {
		return m.Items
	}
	return nil
}
