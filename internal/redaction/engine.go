package redaction

import (
	"fmt"

	"github.com/raaihank/rdap-sentinel/internal/logger"
	"github.com/raaihank/rdap-sentinel/internal/rdap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Engine resolves redaction declarations. It holds no per-document state,
// so one Engine may be shared by any number of goroutines.
type Engine struct {
	opts   Options
	logger *logger.Logger
}

// New creates a redaction engine. A nil logger discards diagnostics.
func New(opts Options, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		opts:   opts,
		logger: log.WithComponent("redaction"),
	}
}

// ForDocument returns an engine whose diagnostics name the given document.
func (e *Engine) ForDocument(id string) *Engine {
	return &Engine{opts: e.opts, logger: e.logger.WithDocument(id)}
}

// Resolve returns resp with its redaction declarations applied. A response
// without declarations is returned as is. Callers must resolve a freshly
// decoded response exactly once; masking an already masked value wraps it
// again.
func (e *Engine) Resolve(resp rdap.Response) (rdap.Response, *Report, error) {
	if len(rdap.Redactions(resp)) == 0 {
		return resp, &Report{}, nil
	}

	tree, err := rdap.ToTree(resp)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrShapeViolation, err)
	}

	report := e.ResolveTree(tree)

	out, err := rdap.FromTree(resp.Kind(), tree)
	if err != nil {
		e.logger.Error("Resolved document failed to re-type",
			zap.String("kind", string(resp.Kind())),
			zap.Error(err),
		)
		return nil, report, fmt.Errorf("%w: %v", ErrShapeViolation, err)
	}
	return out, report, nil
}

// ResolveTree applies the declarations of a generic document in place and
// reports what happened. Declarations are handled in order and each one
// sees the effect of those before it.
func (e *Engine) ResolveTree(doc any) *Report {
	report := &Report{}
	descs, errs := Extract(doc)
	report.Declared = len(descs) + len(errs)
	if arr, ok := redactedArray(doc); ok {
		report.Declared = len(arr)
	}

	for _, err := range errs {
		idx := -1
		if xe, ok := err.(*ExtractError); ok {
			idx = xe.Index
		}
		report.Skipped++
		report.add(Event{Descriptor: idx, Kind: EventExtractError, Level: zapcore.WarnLevel, Message: err.Error()})
	}

	for _, d := range descs {
		entry := Entry{Index: d.Index, Name: d.Name, Reason: d.Reason, Method: d.RawMethod}

		res, err := Resolve(doc, d, e.opts)
		report.add(res.Events...)
		entry.Path = res.Path
		entry.Matches = len(res.Targets)
		if err != nil {
			report.Skipped++
			report.add(newEvent(d, EventPathError, zapcore.WarnLevel, err.Error()))
			report.Entries = append(report.Entries, entry)
			continue
		}

		anomalies := Apply(doc, res)
		for _, a := range anomalies {
			ev := newEvent(d, EventAnomaly, zapcore.WarnLevel, a.Msg)
			ev.Action = res.Action
			ev.Locations = []string{a.Location.String()}
			report.add(ev)
		}
		entry.Action = res.Action

		switch {
		case res.Action == NoAction:
			report.Skipped++
		case res.Action == VerifyAbsent:
			report.Verified++
			ev := newEvent(d, EventAbsentVerified, zapcore.DebugLevel, "Removed value is absent")
			ev.Action = res.Action
			report.add(ev)
		case len(anomalies) < len(res.Targets):
			report.Applied++
			ev := newEvent(d, EventApplied, zapcore.DebugLevel, "Redaction applied")
			ev.Action = res.Action
			ev.Locations = targetStrings(res.Targets)
			report.add(ev)
		default:
			report.Skipped++
		}
		report.Entries = append(report.Entries, entry)
	}

	if e.opts.LogEvents {
		e.logger.LogReport(report)
	}
	return report
}

func redactedArray(doc any) ([]any, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	arr, ok := obj[RedactedKey].([]any)
	return arr, ok
}
