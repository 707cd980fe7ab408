// Package repl implements the interactive query loop: it loads a program
// once, then proves one query expression per input line.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/allium-lang/allium/internal/interp"
	"github.com/allium-lang/allium/internal/pipeline"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

// queryPredicate is the synthetic predicate each input line is wrapped in.
const queryPredicate = "_query"

// REPL is one interactive session over a fixed set of source files.
type REPL struct {
	sources []pipeline.Source
	level   interp.LogLevel
	out     io.Writer
}

// New creates a session over the given sources.
func New(sources []pipeline.Source, level interp.LogLevel) *REPL {
	return &REPL{sources: sources, level: level, out: os.Stdout}
}

// Run checks the loaded program, then reads and proves queries until EOF
// or :quit. It returns an error when the loaded program is invalid or when
// reading a line of input fails.
func (r *REPL) Run() error {
	// Verify the base program before accepting queries.
	_, diags := pipeline.CompileSources(r.sources, r.level)
	if diags.HasErrors() {
		diags.Write(os.Stderr)
		return fmt.Errorf("program contains errors")
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, ".allium_history")
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintln(r.out, dim("Loaded. Enter a query, or :quit to exit."))
	for {
		input, err := line.Prompt("?- ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Fprintln(r.out)
			break
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), ";"))
		if input == "" {
			continue
		}
		if input == ":quit" || input == ":q" {
			break
		}
		line.AppendHistory(input)
		r.prove(input)
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}

// prove wraps the query in a synthetic predicate, recompiles, and runs a
// proof of it.
func (r *REPL) prove(query string) {
	wrapped := pipeline.Source{
		Name: "<query>",
		Text: fmt.Sprintf("pred %s { %s <- %s; }", queryPredicate, queryPredicate, query),
	}
	result, diags := pipeline.CompileSources(append(append([]pipeline.Source{}, r.sources...), wrapped), r.level)
	if diags.HasErrors() {
		diags.Write(os.Stderr)
		return
	}
	index, ok := predicateIndex(result.Runtime, queryPredicate)
	if !ok {
		fmt.Fprintln(r.out, red("rejected."))
		return
	}
	if result.Runtime.Prove(&interp.PredicateReference{Index: index}) {
		fmt.Fprintln(r.out, green("accepted."))
	} else {
		fmt.Fprintln(r.out, red("rejected."))
	}
}

func predicateIndex(p *interp.Program, name string) (int, bool) {
	for i, n := range p.PredicateNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
