// Package diag is the centralized diagnostic sink for langc. It carries
// forward the prior internal/errors code-taxonomy/report shape: a
// component that hits an error records a Report and returns a zero
// value; callers check the sink and either propagate or add context.
package diag

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sunholo/langc/internal/astiface"
)

// Severity is the level of a diagnostic.
type Severity string

const (
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Schema is the stable schema tag for JSON-encoded reports.
const Schema = "langc.diag/v1"

// Note is a secondary location attached to a Report (an "info note
// pointing at related locations").
type Note struct {
	Message string         `json:"message"`
	Span    *astiface.Span `json:"span,omitempty"`
}

// Report is one diagnostic.
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Span     *astiface.Span `json:"span,omitempty"`
	Notes    []Note         `json:"notes,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (r *Report) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// WithNote appends a follow-up note and returns the same Report for
// chaining, e.g. `diag.New(...).WithNote(...)`.
func (r *Report) WithNote(msg string, span *astiface.Span) *Report {
	r.Notes = append(r.Notes, Note{Message: msg, Span: span})
	return r
}

// New builds a Report without recording it; callers typically pass the
// result straight to (*Sink).Report.
func New(code, phase string, sev Severity, span *astiface.Span, format string, args ...any) *Report {
	return &Report{
		Schema:   Schema,
		Code:     code,
		Phase:    phase,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}

// Sink accumulates diagnostics across a compilation, using the same
// capability-threading pattern as a context object: one Sink is threaded
// by reference through scope setup, the checker, and the lowerer.
type Sink struct {
	reports []*Report
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink { return &Sink{} }

// Report records a diagnostic. It returns the same Report for chaining at
// the call site, e.g. `return nil, sink.Report(diag.New(...))`.
func (s *Sink) Report(r *Report) *Report {
	s.reports = append(s.reports, r)
	return r
}

// Reports returns all recorded diagnostics in recording order.
func (s *Sink) Reports() []*Report { return s.reports }

// HasErrors reports whether any Error-severity diagnostic was recorded;
// global compilation fails iff this is true.
func (s *Sink) HasErrors() bool {
	for _, r := range s.reports {
		if r.Severity == Error {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics of exactly the given severity.
func (s *Sink) Count(sev Severity) int {
	n := 0
	for _, r := range s.reports {
		if r.Severity == sev {
			n++
		}
	}
	return n
}

// SortBySpan orders reports by file, then line, then column, for stable
// human-facing output; diagnostics recorded out of traversal order (e.g.
// the second pass of module-variable checking) still print
// in source order.
func (s *Sink) SortBySpan() {
	sort.SliceStable(s.reports, func(i, j int) bool {
		a, b := s.reports[i].Span, s.reports[j].Span
		if a == nil || b == nil {
			return b != nil
		}
		if a.Start.File != b.Start.File {
			return a.Start.File < b.Start.File
		}
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		return a.Start.Column < b.Start.Column
	})
}

// ToJSON renders all reports as a JSON array, sorted-key and deterministic,
// for the `--json` driver flag.
func (s *Sink) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(s.reports, "", "  ")
	} else {
		data, err = json.Marshal(s.reports)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
