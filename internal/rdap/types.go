// Package rdap models RDAP (RFC 9083) responses as a closed set of typed
// variants and converts them to and from generic JSON trees.
package rdap

import "encoding/json"

// Link signifies a link to another resource on the Internet.
type Link struct {
	Value    *string  `json:"value,omitempty"`
	Rel      *string  `json:"rel,omitempty"`
	Href     string   `json:"href"`
	HrefLang []string `json:"hreflang,omitempty"`
	Title    *string  `json:"title,omitempty"`
	Media    *string  `json:"media,omitempty"`
	Type     *string  `json:"type,omitempty"`
}

// NoticeOrRemark is used for both the top-level notices and per-object remarks.
type NoticeOrRemark struct {
	Title       *string  `json:"title,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Description []string `json:"description,omitempty"`
	Links       []Link   `json:"links,omitempty"`
}

// Event represents something that happened to an object.
type Event struct {
	Action string  `json:"eventAction"`
	Actor  *string `json:"eventActor,omitempty"`
	Date   *string `json:"eventDate,omitempty"`
	Links  []Link  `json:"links,omitempty"`
}

// PublicID maps a public identifier to an object class.
type PublicID struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Common holds the members that may appear at the top of any response.
type Common struct {
	Conformance []string         `json:"rdapConformance,omitempty"`
	Notices     []NoticeOrRemark `json:"notices,omitempty"`
	Lang        *string          `json:"lang,omitempty"`
	Redacted    *RedactedMember  `json:"redacted,omitempty"`
}

// common lets the tagged union reach the shared members of every variant.
func (c *Common) common() *Common { return c }

// ObjectCommon holds the members shared by every object class.
type ObjectCommon struct {
	ObjectClassName string           `json:"objectClassName"`
	Handle          *string          `json:"handle,omitempty"`
	Remarks         []NoticeOrRemark `json:"remarks,omitempty"`
	Links           []Link           `json:"links,omitempty"`
	Events          []Event          `json:"events,omitempty"`
	Status          []string         `json:"status,omitempty"`
	Port43          *string          `json:"port43,omitempty"`
	Entities        []Entity         `json:"entities,omitempty"`
}

// IPAddresses lists the glue addresses of a nameserver.
type IPAddresses struct {
	V4 []string `json:"v4,omitempty"`
	V6 []string `json:"v6,omitempty"`
}

// Domain is a topmost RDAP response object.
type Domain struct {
	Common
	ObjectCommon
	LdhName     *string         `json:"ldhName,omitempty"`
	UnicodeName *string         `json:"unicodeName,omitempty"`
	Variants    json.RawMessage `json:"variants,omitempty"`
	SecureDNS   json.RawMessage `json:"secureDNS,omitempty"`
	PublicIDs   []PublicID      `json:"publicIds,omitempty"`
	Nameservers []Nameserver    `json:"nameservers,omitempty"`
	Network     *Network        `json:"network,omitempty"`
}

// Entity is a topmost RDAP response object. The jCard is kept generic.
type Entity struct {
	Common
	ObjectCommon
	VCardArray   []any      `json:"vcardArray,omitempty"`
	Roles        []string   `json:"roles,omitempty"`
	PublicIDs    []PublicID `json:"publicIds,omitempty"`
	AsEventActor []Event    `json:"asEventActor,omitempty"`
	Networks     []Network  `json:"networks,omitempty"`
	Autnums      []Autnum   `json:"autnums,omitempty"`
}

// Nameserver is a topmost RDAP response object.
type Nameserver struct {
	Common
	ObjectCommon
	LdhName     *string      `json:"ldhName,omitempty"`
	UnicodeName *string      `json:"unicodeName,omitempty"`
	IPAddresses *IPAddresses `json:"ipAddresses,omitempty"`
}

// Autnum represents an autonomous system number registration.
type Autnum struct {
	Common
	ObjectCommon
	StartAutnum *uint32 `json:"startAutnum,omitempty"`
	EndAutnum   *uint32 `json:"endAutnum,omitempty"`
	Name        *string `json:"name,omitempty"`
	Type        *string `json:"type,omitempty"`
	Country     *string `json:"country,omitempty"`
}

// Network represents an IP network registration.
type Network struct {
	Common
	ObjectCommon
	StartAddress *string `json:"startAddress,omitempty"`
	EndAddress   *string `json:"endAddress,omitempty"`
	IPVersion    *string `json:"ipVersion,omitempty"`
	Name         *string `json:"name,omitempty"`
	Type         *string `json:"type,omitempty"`
	Country      *string `json:"country,omitempty"`
	ParentHandle *string `json:"parentHandle,omitempty"`
}

// DomainSearchResults is the response to a domain search.
type DomainSearchResults struct {
	Common
	Results []Domain `json:"domainSearchResults"`
}

// EntitySearchResults is the response to an entity search.
type EntitySearchResults struct {
	Common
	Results []Entity `json:"entitySearchResults"`
}

// NameserverSearchResults is the response to a nameserver search.
type NameserverSearchResults struct {
	Common
	Results []Nameserver `json:"nameserverSearchResults"`
}

// Error is an RDAP error response.
type Error struct {
	Common
	ErrorCode   int      `json:"errorCode"`
	Title       *string  `json:"title,omitempty"`
	Description []string `json:"description,omitempty"`
}

// Help is the response to a help query: conformance and notices only.
type Help struct {
	Common
}

// String returns a pointer to s, for building optional members.
func String(s string) *string { return &s }
