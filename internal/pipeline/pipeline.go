// Package pipeline drives the whole compilation pipeline: source text is
// parsed per file, the files are merged into one surface program, semantic
// analysis raises it to the typed IR, the ground-mode analysis checks
// input-only arguments, and lowering produces the runtime program. Any
// diagnostic stops the pipeline before lowering.
package pipeline

import (
	"fmt"
	"io"

	"github.com/allium-lang/allium/internal/analysis"
	"github.com/allium-lang/allium/internal/ast"
	"github.com/allium-lang/allium/internal/errors"
	"github.com/allium-lang/allium/internal/interp"
	"github.com/allium-lang/allium/internal/lexer"
	"github.com/allium-lang/allium/internal/lower"
	"github.com/allium-lang/allium/internal/parser"
	"github.com/allium-lang/allium/internal/sema"
	"github.com/allium-lang/allium/internal/typedast"
)

// Source is one named unit of source text.
type Source struct {
	Name string
	Text string
}

// Result holds the artifacts of a successful (or partially successful)
// compilation.
type Result struct {
	Surface *ast.Program
	Typed   *typedast.Program
	Runtime *interp.Program
}

// Diagnostics aggregates everything the pipeline reported.
type Diagnostics struct {
	ParseErrors []error
	Reports     []*errors.Report
}

// HasErrors reports whether compilation failed.
func (d *Diagnostics) HasErrors() bool {
	return len(d.ParseErrors) > 0 || len(d.Reports) > 0
}

// HasKind reports whether any diagnostic of the given kind was emitted.
func (d *Diagnostics) HasKind(kind errors.Kind) bool {
	for _, r := range d.Reports {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

// Write renders every diagnostic, one per line, followed by a summary.
func (d *Diagnostics) Write(w io.Writer) {
	for _, err := range d.ParseErrors {
		fmt.Fprintln(w, err)
	}
	for _, r := range d.Reports {
		fmt.Fprintln(w, r.Error())
	}
	if n := len(d.ParseErrors) + len(d.Reports); n > 0 {
		fmt.Fprintf(w, "%d error(s) emitted\n", n)
	}
}

// Parse lexes and parses one source unit.
func Parse(src Source) (*ast.Program, []error) {
	l := lexer.New(src.Text, src.Name)
	p := parser.New(l)
	prog := p.Parse()
	return prog, p.Errors()
}

// Merge combines the definitions of several parsed files in order.
// Redefinitions across files surface during semantic analysis exactly as
// they would within one file.
func Merge(progs ...*ast.Program) *ast.Program {
	merged := &ast.Program{}
	for _, p := range progs {
		merged.Types = append(merged.Types, p.Types...)
		merged.Effects = append(merged.Effects, p.Effects...)
		merged.Predicates = append(merged.Predicates, p.Predicates...)
	}
	return merged
}

// CompileSources runs the full pipeline. Result.Runtime is nil whenever
// the diagnostics contain errors.
func CompileSources(sources []Source, level interp.LogLevel) (*Result, *Diagnostics) {
	diags := &Diagnostics{}
	parsed := make([]*ast.Program, 0, len(sources))
	for _, src := range sources {
		prog, errs := Parse(src)
		diags.ParseErrors = append(diags.ParseErrors, errs...)
		parsed = append(parsed, prog)
	}
	result := &Result{Surface: Merge(parsed...)}
	if len(diags.ParseErrors) > 0 {
		return result, diags
	}

	typed, reporter := sema.Check(result.Surface)
	diags.Reports = append(diags.Reports, reporter.All()...)
	result.Typed = typed
	if reporter.Count() > 0 {
		return result, diags
	}

	groundReporter := analysis.CheckGround(typed)
	diags.Reports = append(diags.Reports, groundReporter.All()...)
	if groundReporter.Count() > 0 {
		return result, diags
	}

	result.Runtime = lower.Lower(typed, level)
	return result, diags
}
