package errors

import (
	"fmt"
	"io"

	"github.com/allium-lang/allium/internal/ast"
)

// Report is one diagnostic: a kind, the phase that raised it, and where.
type Report struct {
	Kind    Kind
	Phase   string // "parser", "sema", "ground"
	Message string
	Pos     ast.Pos
}

func (r *Report) Error() string {
	return fmt.Sprintf("%s: %s [%s]", r.Pos, r.Message, r.Kind)
}

// Reporter collects diagnostics during a checking phase. Checkers emit and
// keep going; the driver inspects the collected reports afterwards.
type Reporter struct {
	phase   string
	reports []*Report
}

// NewReporter creates a Reporter for the named phase.
func NewReporter(phase string) *Reporter {
	return &Reporter{phase: phase}
}

// Emit records a diagnostic of the given kind at pos. The variadic arguments
// fill the kind's message template in order.
func (r *Reporter) Emit(pos ast.Pos, kind Kind, args ...string) {
	format, ok := formats[kind]
	if !ok {
		format = string(kind)
	}
	anyArgs := make([]any, len(args))
	for i, a := range args {
		anyArgs[i] = a
	}
	r.reports = append(r.reports, &Report{
		Kind:    kind,
		Phase:   r.phase,
		Message: fmt.Sprintf(format, anyArgs...),
		Pos:     pos,
	})
}

// Count returns the number of diagnostics emitted so far.
func (r *Reporter) Count() int { return len(r.reports) }

// All returns the emitted diagnostics in emission order.
func (r *Reporter) All() []*Report { return r.reports }

// HasKind reports whether any collected diagnostic has the given kind.
func (r *Reporter) HasKind(kind Kind) bool {
	for _, rep := range r.reports {
		if rep.Kind == kind {
			return true
		}
	}
	return false
}

// Write renders the collected diagnostics, one per line.
func (r *Reporter) Write(w io.Writer) {
	for _, rep := range r.reports {
		fmt.Fprintln(w, rep.Error())
	}
}
