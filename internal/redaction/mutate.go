package redaction

import (
	"fmt"

	"github.com/raaihank/rdap-sentinel/internal/jsonpath"
)

// Apply performs res.Action on doc in place. Only string leaves are ever
// written; anything else at a target is left alone and reported.
func Apply(doc any, res Resolution) []Anomaly {
	var anomalies []Anomaly
	switch res.Action {
	case MaskEmpty, MaskPartial:
		for _, t := range res.Targets {
			if a := mask(doc, t.Location); a != nil {
				anomalies = append(anomalies, *a)
			}
		}
	case CopyFromReplacement:
		for _, t := range res.Targets {
			if err := jsonpath.Replace(doc, t.Location.Pointer(), res.Replacement); err != nil {
				anomalies = append(anomalies, Anomaly{Location: t.Location, Kind: ClassifyAt(doc, t.Location), Msg: err.Error()})
			}
		}
	}
	return anomalies
}

// mask rewrites the string at loc. The value is looked up again so an
// earlier descriptor's change is seen.
func mask(doc any, loc jsonpath.Location) *Anomaly {
	ptr := loc.Pointer()
	v, err := jsonpath.Lookup(doc, ptr)
	if err != nil {
		return &Anomaly{Location: loc, Kind: NoValue, Msg: err.Error()}
	}
	s, ok := v.(string)
	if !ok {
		kind := Classify(v, true)
		return &Anomaly{Location: loc, Kind: kind, Msg: fmt.Sprintf("cannot mask %s value", kind)}
	}
	if err := jsonpath.Replace(doc, ptr, MaskString(s)); err != nil {
		return &Anomaly{Location: loc, Kind: Classify(s, true), Msg: err.Error()}
	}
	return nil
}

// MaskString renders a redacted string value.
func MaskString(s string) string {
	if s == "" {
		return Placeholder
	}
	return Marker + s + Marker
}
