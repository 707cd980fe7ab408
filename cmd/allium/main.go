// Command allium is the Allium driver: it checks one or more source files
// and, in interpreter mode, proves the program's main predicate.
//
// Exit codes: 0 on success, 1 on a compilation error or a failed proof,
// 2 on an invalid command-line argument combination.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/allium-lang/allium/internal/ast"
	"github.com/allium-lang/allium/internal/config"
	"github.com/allium-lang/allium/internal/interp"
	"github.com/allium-lang/allium/internal/pipeline"
	"github.com/allium-lang/allium/internal/repl"
	"github.com/allium-lang/allium/internal/typedast"
)

var (
	// Version info - set by ldflags during build
	Version = "dev"

	red = color.New(color.FgRed).SprintFunc()
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	code := exitOK

	var (
		printAST          bool
		printSyntacticAST bool
		interpret         bool
		logLevel          int
		output            string
	)

	root := &cobra.Command{
		Use:           "allium [flags] <file>...",
		Short:         "The Allium logic programming language",
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, files []string) error {
			code = compile(cmd, files, options{
				printAST:          printAST,
				printSyntacticAST: printSyntacticAST,
				interpret:         interpret,
				logLevel:          logLevel,
				logLevelSet:       cmd.Flags().Changed("log-level"),
				output:            output,
			})
			return nil
		},
	}
	root.Flags().BoolVar(&printAST, "print-ast", false, "print the checked program and exit")
	root.Flags().BoolVar(&printSyntacticAST, "print-syntactic-ast", false, "print the parsed program before checking and exit")
	root.Flags().BoolVarP(&interpret, "interpreter", "i", false, "force interpreter mode")
	root.Flags().IntVar(&logLevel, "log-level", 0, "interpreter trace verbosity (0-3)")
	root.Flags().StringVarP(&output, "output", "o", "", "object/executable output path (compiler mode)")

	root.AddCommand(newREPLCmd(&code))
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return exitUsage
	}
	return code
}

type options struct {
	printAST          bool
	printSyntacticAST bool
	interpret         bool
	logLevel          int
	logLevelSet       bool
	output            string
}

func compile(cmd *cobra.Command, files []string, opts options) int {
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "%s: no source files\n", red("error"))
		cmd.Usage()
		return exitUsage
	}
	if opts.logLevel < 0 || opts.logLevel > 3 {
		fmt.Fprintf(os.Stderr, "%s: --log-level must be between 0 and 3\n", red("error"))
		return exitUsage
	}
	if opts.output != "" && opts.interpret {
		fmt.Fprintf(os.Stderr, "%s: -o cannot be combined with -i\n", red("error"))
		return exitUsage
	}
	if opts.output != "" {
		fmt.Fprintf(os.Stderr, "%s: this build has no native backend; run with -i instead\n", red("error"))
		return exitUsage
	}

	cfg, err := config.Load(filepath.Dir(files[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return exitFailure
	}
	color.NoColor = color.NoColor || !cfg.Color
	level := interp.LogLevel(cfg.LogLevel)
	if opts.logLevelSet {
		level = interp.LogLevel(opts.logLevel)
	}

	sources, err := readSources(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return exitFailure
	}

	result, diags := pipeline.CompileSources(sources, level)

	if opts.printSyntacticAST {
		if len(diags.ParseErrors) > 0 {
			diags.Write(os.Stderr)
			return exitFailure
		}
		ast.Print(os.Stdout, result.Surface)
		return exitOK
	}
	if diags.HasErrors() {
		diags.Write(os.Stderr)
		return exitFailure
	}
	if opts.printAST {
		typedast.Print(os.Stdout, result.Typed)
		return exitOK
	}

	// Interpreter mode is the default in this build; -i forces it
	// explicitly.
	if result.Runtime.EntryPoint == nil {
		fmt.Fprintf(os.Stderr, "%s: the program does not define a parameterless predicate named main\n", red("error"))
		return exitFailure
	}
	if result.Runtime.ProveEntry() {
		return exitOK
	}
	return exitFailure
}

func readSources(files []string) ([]pipeline.Source, error) {
	sources := make([]pipeline.Source, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, pipeline.Source{Name: path, Text: string(data)})
	}
	return sources, nil
}

func newREPLCmd(code *int) *cobra.Command {
	var logLevel int
	cmd := &cobra.Command{
		Use:   "repl [file...]",
		Short: "Interactively prove queries against a loaded program",
		RunE: func(cmd *cobra.Command, files []string) error {
			sources, err := readSources(files)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
				*code = exitFailure
				return nil
			}
			if err := repl.New(sources, interp.LogLevel(logLevel)).Run(); err != nil {
				*code = exitFailure
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&logLevel, "log-level", 0, "interpreter trace verbosity (0-3)")
	return cmd
}
