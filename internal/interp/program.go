package interp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/allium-lang/allium/internal/seq"
)

// Expression is a runtime body expression. Handler bodies additionally
// admit Continuation.
type Expression interface {
	fmt.Stringer
	expression()
}

// TruthValue proves trivially (true) or not at all (false).
type TruthValue struct {
	Value bool
}

func (t *TruthValue) expression() {}
func (t *TruthValue) String() string {
	if t.Value {
		return "true"
	}
	return "false"
}

// PredicateReference proves a predicate by index with matcher arguments.
type PredicateReference struct {
	Index int
	Args  []MatcherValue
}

func (p *PredicateReference) expression() {}
func (p *PredicateReference) String() string {
	return fmt.Sprintf("pred<%d>(%s)", p.Index, matcherList(p.Args))
}

// BuiltinPredicate is the native implementation of a builtin predicate. It
// receives its arguments resolved against the calling frame and returns
// its own tick sequence.
type BuiltinPredicate func(p *Program, args []RuntimeValue) seq.Seq

// BuiltinPredicateReference invokes a builtin predicate.
type BuiltinPredicateReference struct {
	Name string
	Fn   BuiltinPredicate
	Args []MatcherValue
}

func (b *BuiltinPredicateReference) expression() {}
func (b *BuiltinPredicateReference) String() string {
	return fmt.Sprintf("%s(%s)", b.Name, matcherList(b.Args))
}

// EffectCtorReference performs an effect constructor and then proves its
// continuation under the resolving handler's control.
type EffectCtorReference struct {
	EffectIndex  int
	CtorIndex    int
	Args         []MatcherValue
	Continuation Expression
}

func (e *EffectCtorReference) expression() {}
func (e *EffectCtorReference) String() string {
	return fmt.Sprintf("do effect<%d>.ctor<%d>(%s), %s",
		e.EffectIndex, e.CtorIndex, matcherList(e.Args), e.Continuation.String())
}

// Conjunction proves Left, and for each of its witnesses proves Right.
type Conjunction struct {
	Left  Expression
	Right Expression
}

func (c *Conjunction) expression() {}
func (c *Conjunction) String() string {
	return fmt.Sprintf("(%s and %s)", c.Left.String(), c.Right.String())
}

// Continuation is the `continue` atom of a handler body: it proves the
// continuation captured by the effect being handled.
type Continuation struct{}

func (c *Continuation) expression()    {}
func (c *Continuation) String() string { return "continue" }

func matcherList(args []MatcherValue) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// Implication is one runtime clause of a predicate.
type Implication struct {
	Head          PredicateReference
	Body          Expression
	VariableCount int
}

func (i *Implication) String() string {
	return fmt.Sprintf("%s <- %s", i.Head.String(), i.Body.String())
}

// EffectImplication is one runtime clause of a user effect handler.
type EffectImplication struct {
	EffectIndex   int
	CtorIndex     int
	Args          []MatcherValue
	Body          Expression
	VariableCount int
}

// UserHandler handles one effect within the dynamic extent of the
// predicate that declares it.
type UserHandler struct {
	EffectIndex int
	Impls       []EffectImplication
}

// Predicate is the runtime form of a predicate: its clauses and handlers.
type Predicate struct {
	Impls    []Implication
	Handlers []UserHandler
}

// LogLevel controls interpreter tracing.
type LogLevel int

const (
	LogOff LogLevel = iota
	LogQuiet
	LogLoud
	LogMax
)

// HCLogLevel maps an interpreter log level onto the logger's levels.
func (l LogLevel) HCLogLevel() hclog.Level {
	switch l {
	case LogQuiet:
		return hclog.Info
	case LogLoud:
		return hclog.Debug
	case LogMax:
		return hclog.Trace
	default:
		return hclog.Off
	}
}

// Program is a lowered, executable program.
type Program struct {
	Predicates []Predicate

	// EntryPoint is the reference the driver proves, if the program
	// defines main. A program without one always rejects.
	EntryPoint *PredicateReference

	// PredicateNames maps predicate indices back to source names, for
	// diagnostics and tracing only.
	PredicateNames []string

	Level  LogLevel
	Logger hclog.Logger

	// Out receives the output of the builtin IO.print handler.
	Out io.Writer
}

// NewProgram creates a program with the given predicates and entry point.
func NewProgram(predicates []Predicate, entry *PredicateReference, names []string, level LogLevel) *Program {
	return &Program{
		Predicates:     predicates,
		EntryPoint:     entry,
		PredicateNames: names,
		Level:          level,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "interp",
			Level:  level.HCLogLevel(),
			Output: os.Stderr,
		}),
		Out: os.Stdout,
	}
}

func (p *Program) predicateName(index int) string {
	if index >= 0 && index < len(p.PredicateNames) {
		return p.PredicateNames[index]
	}
	return fmt.Sprintf("pred<%d>", index)
}

// Prove runs the proof search for expr under the initial handler stack and
// reports whether at least one witness exists.
func (p *Program) Prove(expr Expression) bool {
	stack := initialHandlerStack()
	w := witnesses(p, expr, NewContext(0), stack)
	defer w.Close()
	return w.Next()
}

// ProveEntry proves the program's entry point. It returns false when the
// program has none.
func (p *Program) ProveEntry() bool {
	if p.EntryPoint == nil {
		return false
	}
	return p.Prove(p.EntryPoint)
}

// handlerEntry pairs an effect index with either a builtin handler
// function or a user handler.
type handlerEntry struct {
	EffectIndex int
	Builtin     builtinHandler
	User        *UserHandler
}

// builtinHandler is the native implementation of a default effect handler.
// It must yield one tick per witness of the effect's continuation, which it
// proves under the handler stack and continuation info it was given.
type builtinHandler func(p *Program, e *EffectCtorReference, ctx Context, stack *handlerStack, k *contInfo) seq.Seq

// handlerStack is the dynamically scoped stack of effect handlers of one
// proof. Only the advancing producer mutates it, by paired push/pop around
// its own lifetime.
type handlerStack struct {
	entries []handlerEntry
}

func (s *handlerStack) push(e handlerEntry) {
	s.entries = append(s.entries, e)
}

func (s *handlerStack) pop(n int) {
	s.entries = s.entries[:len(s.entries)-n]
}

// innermost finds the most recently pushed handler for the effect.
func (s *handlerStack) innermost(effectIndex int) (handlerEntry, int, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].EffectIndex == effectIndex {
			return s.entries[i], i, true
		}
	}
	return handlerEntry{}, 0, false
}
