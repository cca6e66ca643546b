package errors

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Span is a source location: a byte offset range within a source buffer.
type Span struct {
	Source string `json:"source"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

func (s Span) String() string {
	if s.Source == "" {
		return fmt.Sprintf("%d-%d", s.Start, s.End)
	}
	return fmt.Sprintf("%s:%d-%d", s.Source, s.Start, s.End)
}

// Diagnostic is the canonical structured error value the compiler
// returns. It follows the teacher's Report/ReportError split: a plain
// struct that also satisfies the error interface, so it survives
// errors.As unwrapping while remaining JSON-serializable.
type Diagnostic struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *Span          `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

func (d *Diagnostic) Error() string {
	if d.Span != nil {
		return fmt.Sprintf("%s: %s: %s", d.Span, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// New builds a Diagnostic for the given phase/code/message.
func New(phase, code, message string) *Diagnostic {
	return &Diagnostic{Schema: "weave.error/v1", Phase: phase, Code: code, Message: message}
}

// At attaches a source span.
func (d *Diagnostic) At(span Span) *Diagnostic {
	d.Span = &span
	return d
}

// With attaches a structured data field (candidate lists, conflicting
// types, etc).
func (d *Diagnostic) With(key string, val any) *Diagnostic {
	if d.Data == nil {
		d.Data = make(map[string]any)
	}
	d.Data[key] = val
	return d
}

// JSON renders the diagnostic deterministically (sorted map keys).
func (d *Diagnostic) JSON() (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	return string(b), err
}

// Aggregate wraps more than one type error produced in a single compile
// call, per §7: "A single compile call returns the first error or an
// aggregate of multiple type errors wrapped as one."
type Aggregate struct {
	Diagnostics []*Diagnostic
}

func (a *Aggregate) Error() string {
	if len(a.Diagnostics) == 1 {
		return a.Diagnostics[0].Error()
	}
	msgs := make([]string, len(a.Diagnostics))
	for i, d := range a.Diagnostics {
		msgs[i] = d.Error()
	}
	sort.Strings(msgs)
	return fmt.Sprintf("%d errors:\n%s", len(a.Diagnostics), strings.Join(msgs, "\n"))
}

// NewAggregate builds an Aggregate, collapsing to a single Diagnostic
// when there's exactly one.
func NewAggregate(diags []*Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	if len(diags) == 1 {
		return diags[0]
	}
	return &Aggregate{Diagnostics: diags}
}

// As attempts to extract a Diagnostic from an error, unwrapping an
// Aggregate to its first entry if necessary.
func As(err error) (*Diagnostic, bool) {
	switch e := err.(type) {
	case *Diagnostic:
		return e, true
	case *Aggregate:
		if len(e.Diagnostics) > 0 {
			return e.Diagnostics[0], true
		}
	}
	return nil, false
}
