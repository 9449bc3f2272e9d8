package redaction

import (
	"fmt"

	"github.com/raaihank/rdap-sentinel/internal/jsonpath"
	"go.uber.org/zap/zapcore"
)

// Options tune how descriptors are resolved.
type Options struct {
	// StrictPathLang turns a declared pathLang other than "jsonpath" into
	// NoAction. When false the path is evaluated as JSONPath anyway.
	StrictPathLang bool
	// LogEvents makes the engine write every report to its logger.
	LogEvents bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{StrictPathLang: true, LogEvents: true}
}

// Resolve decides the effective action for d against the current state of
// doc. The returned error is descriptor-level: a path that does not parse.
// Whatever the outcome, the resolution is safe to hand to Apply.
func Resolve(doc any, d Descriptor, opts Options) (Resolution, error) {
	res := Resolution{Descriptor: d, Action: NoAction}

	path, ok := d.OriginalPath()
	if !ok {
		res.Events = append(res.Events, newEvent(d, EventMismatch, zapcore.InfoLevel, "Declaration has neither prePath nor postPath"))
		return res, nil
	}
	res.Path = path
	if d.PrePath != nil && d.PostPath != nil {
		res.Events = append(res.Events, newEvent(d, EventAmbiguousPath, zapcore.WarnLevel, "Both prePath and postPath declared, using prePath"))
	}

	if d.PathLang != nil && *d.PathLang != PathLangJSONPath && opts.StrictPathLang {
		res.Events = append(res.Events, newEvent(d, EventMismatch, zapcore.InfoLevel,
			fmt.Sprintf("Unsupported pathLang %q", *d.PathLang)))
		return res, nil
	}

	if d.Method == MethodUnknown {
		res.Events = append(res.Events, newEvent(d, EventUnknownMethod, zapcore.InfoLevel,
			fmt.Sprintf("Unknown redaction method %q", d.RawMethod)))
		return res, nil
	}

	p, err := jsonpath.Parse(path)
	if err != nil {
		return res, fmt.Errorf("descriptor %d: %w", d.Index, err)
	}
	locs := p.Evaluate(doc)
	res.Targets = make([]ResolvedLocation, len(locs))
	allStrings := true
	for i, loc := range locs {
		kind := ClassifyAt(doc, loc)
		res.Targets[i] = ResolvedLocation{Location: loc, Kind: kind}
		if !kind.isStringLike() {
			allStrings = false
		}
	}

	if len(locs) == 0 {
		if d.Method == MethodRemoval {
			res.Action = VerifyAbsent
			return res, nil
		}
		res.Events = append(res.Events, mismatch(res, fmt.Sprintf("Method %s declared but path matched nothing", d.Method)))
		return res, nil
	}

	if !allStrings {
		res.Events = append(res.Events, mismatch(res, fmt.Sprintf("Method %s declared on a non-string value", d.Method)))
		return res, nil
	}

	switch d.Method {
	case MethodEmptyValue:
		res.Action = MaskEmpty
	case MethodPartialValue:
		res.Action = MaskPartial
	case MethodRemoval:
		res.Events = append(res.Events, mismatch(res, "Removal declared but value is still present"))
	case MethodReplacementValue:
		return resolveReplacement(doc, res)
	}
	return res, nil
}

func resolveReplacement(doc any, res Resolution) (Resolution, error) {
	d := res.Descriptor
	if d.ReplacementPath == nil {
		res.Events = append(res.Events, mismatch(res, "replacementValue declared without replacementPath"))
		return res, nil
	}
	p, err := jsonpath.Parse(*d.ReplacementPath)
	if err != nil {
		return res, fmt.Errorf("descriptor %d: replacementPath: %w", d.Index, err)
	}
	sources := p.Evaluate(doc)
	if len(sources) == 0 {
		res.Events = append(res.Events, mismatch(res, fmt.Sprintf("replacementPath %q matched nothing", *d.ReplacementPath)))
		return res, nil
	}
	v, _ := sources[0].Lookup(doc)
	if _, ok := v.(string); !ok {
		ev := newEvent(d, EventAnomaly, zapcore.WarnLevel,
			fmt.Sprintf("Replacement value at %s is %s, not a string", sources[0], Classify(v, true)))
		ev.Locations = []string{sources[0].String()}
		res.Events = append(res.Events, ev)
		return res, nil
	}
	res.Action = CopyFromReplacement
	res.Replacement = v
	res.ReplacementFrom = sources[0]
	return res, nil
}

func mismatch(res Resolution, msg string) Event {
	ev := newEvent(res.Descriptor, EventMismatch, zapcore.InfoLevel, msg)
	ev.Path = res.Path
	ev.Locations = targetStrings(res.Targets)
	return ev
}

func targetStrings(targets []ResolvedLocation) []string {
	if len(targets) == 0 {
		return nil
	}
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Location.String()
	}
	return out
}
