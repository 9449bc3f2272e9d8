package rdap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies a response variant.
type Kind string

const (
	KindDomain                  Kind = "domain"
	KindEntity                  Kind = "entity"
	KindNameserver              Kind = "nameserver"
	KindAutnum                  Kind = "autnum"
	KindNetwork                 Kind = "ip network"
	KindDomainSearchResults     Kind = "domainSearchResults"
	KindEntitySearchResults     Kind = "entitySearchResults"
	KindNameserverSearchResults Kind = "nameserverSearchResults"
	KindError                   Kind = "error"
	KindHelp                    Kind = "help"
)

// ErrUnknownResponse is returned when a document matches no response variant.
var ErrUnknownResponse = errors.New("rdap: document is not a recognized RDAP response")

// Response is the closed set of RDAP response variants. Only the types in
// this package implement it.
type Response interface {
	Kind() Kind
	common() *Common
}

func (*Domain) Kind() Kind                  { return KindDomain }
func (*Entity) Kind() Kind                  { return KindEntity }
func (*Nameserver) Kind() Kind              { return KindNameserver }
func (*Autnum) Kind() Kind                  { return KindAutnum }
func (*Network) Kind() Kind                 { return KindNetwork }
func (*DomainSearchResults) Kind() Kind     { return KindDomainSearchResults }
func (*EntitySearchResults) Kind() Kind     { return KindEntitySearchResults }
func (*NameserverSearchResults) Kind() Kind { return KindNameserverSearchResults }
func (*Error) Kind() Kind                   { return KindError }
func (*Help) Kind() Kind                    { return KindHelp }

// newResponse allocates an empty value of the given variant.
func newResponse(k Kind) (Response, error) {
	switch k {
	case KindDomain:
		return &Domain{}, nil
	case KindEntity:
		return &Entity{}, nil
	case KindNameserver:
		return &Nameserver{}, nil
	case KindAutnum:
		return &Autnum{}, nil
	case KindNetwork:
		return &Network{}, nil
	case KindDomainSearchResults:
		return &DomainSearchResults{}, nil
	case KindEntitySearchResults:
		return &EntitySearchResults{}, nil
	case KindNameserverSearchResults:
		return &NameserverSearchResults{}, nil
	case KindError:
		return &Error{}, nil
	case KindHelp:
		return &Help{}, nil
	}
	return nil, fmt.Errorf("%w: kind %q", ErrUnknownResponse, k)
}

// Decode parses wire bytes into the matching response variant.
func Decode(data []byte) (Response, error) {
	tree, err := decodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RDAP document: %w", err)
	}
	obj, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, not an object", ErrUnknownResponse, tree)
	}
	kind, err := Classify(obj)
	if err != nil {
		return nil, err
	}
	resp, err := newResponse(kind)
	if err != nil {
		return nil, err
	}
	if err := decodeInto(data, resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", kind, err)
	}
	return resp, nil
}

// Classify determines the response variant of a generic document: first by
// objectClassName, then by the search result, error and help shapes.
func Classify(obj map[string]any) (Kind, error) {
	if name, ok := obj["objectClassName"].(string); ok {
		switch k := Kind(name); k {
		case KindDomain, KindEntity, KindNameserver, KindAutnum, KindNetwork:
			return k, nil
		}
		return "", fmt.Errorf("%w: objectClassName %q", ErrUnknownResponse, name)
	}
	for _, k := range []Kind{KindDomainSearchResults, KindEntitySearchResults, KindNameserverSearchResults} {
		if _, ok := obj[string(k)]; ok {
			return k, nil
		}
	}
	if _, ok := obj["errorCode"]; ok {
		return KindError, nil
	}
	if _, ok := obj["rdapConformance"]; ok {
		return KindHelp, nil
	}
	return "", ErrUnknownResponse
}

// ToTree converts a typed response into a freshly allocated generic tree.
// Numbers are kept as json.Number. The tree reflects the typed encoding:
// unknown members are not carried and empty arrays on omitempty members
// are dropped.
func ToTree(resp Response) (map[string]any, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s response: %w", resp.Kind(), err)
	}
	tree, err := decodeTree(data)
	if err != nil {
		return nil, err
	}
	obj, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("encoded %s response is %T, not an object", resp.Kind(), tree)
	}
	return obj, nil
}

// FromTree converts a generic tree back into a typed response of kind k.
func FromTree(k Kind, tree map[string]any) (Response, error) {
	resp, err := newResponse(k)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	if err := decodeInto(data, resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response from tree: %w", k, err)
	}
	return resp, nil
}

// Encode serializes a response followed by a newline, indented when
// pretty is set.
func Encode(resp Response, pretty bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(resp, "", "  ")
	} else {
		out, err = json.Marshal(resp)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s response: %w", resp.Kind(), err)
	}
	return append(out, '\n'), nil
}

func decodeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// decodeInto decodes into a typed response, keeping numbers in generic
// members as json.Number.
func decodeInto(data []byte, resp Response) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(resp)
}
