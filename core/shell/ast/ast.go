// Package ast declares the types used to represent a parsed pipeline.
//
// Trees are immutable once built: constructors copy the slices they are
// given, and every later phase (trimming, expansion) produces a new tree.
// Callers must not modify the exported slices of a node they did not build.
package ast

import (
	"strings"
	"sync/atomic"

	"github.com/josephlewis42/pipesh/core/invariant"
)

// ID is a synthetic identity for commands and pipelines. It is never derived
// from content, so two textually equal commands always have different IDs.
type ID uint64

var lastID uint64

// NextID returns a new, monotonically increasing ID.
func NextID() ID {
	return ID(atomic.AddUint64(&lastID, 1))
}

// Span is the location of a node in the source it was parsed from.
// Start is inclusive and Stop is exclusive, both are byte offsets.
type Span struct {
	Start  int
	Stop   int
	Source string
}

// NoSpan marks nodes created after parsing.
var NoSpan = Span{Start: -1, Stop: -1}

// Location returns the span, it allows Span to be embedded to satisfy Node.
func (s Span) Location() Span {
	return s
}

// IsSynthetic returns true if the node wasn't parsed from source.
func (s Span) IsSynthetic() bool {
	return s.Start < 0
}

// Contains returns true if offset falls within the span. A span also
// contains the offset just past its end so a cursor at the end of a word
// belongs to it.
func (s Span) Contains(offset int) bool {
	return !s.IsSynthetic() && offset >= s.Start && offset <= s.Stop
}

// Node is implemented by every element of the tree.
type Node interface {
	Location() Span
	// String reconstructs shell source for the node.
	String() string
}

// Argument is one of *Literal, *QuotedString, *VariableSubstitution,
// *CommandSubstitution or *CompositeArgument.
type Argument interface {
	Node
	isArgument()
}

// Literal is fully renderable static text.
type Literal struct {
	Span
	Text string
}

// QuotedComponent is a substitution spliced into a QuotedString at Offset.
type QuotedComponent struct {
	Offset int
	// Arg is a *VariableSubstitution or *CommandSubstitution.
	Arg Argument
}

// QuotedString is a quoted run of text. Text is the literal skeleton and
// Components are spliced into it, in order, at their offsets.
type QuotedString struct {
	Span
	Text       string
	Components []QuotedComponent
}

// VariableSubstitution is a ${Name} reference.
type VariableSubstitution struct {
	Span
	Name string
}

// CommandSubstitution is a $(...) whose output replaces it.
type CommandSubstitution struct {
	Span
	Pipeline *Pipeline
}

// CompositeArgument is a single shell token built from adjacent fragments,
// e.g. prefix$(cmd)"literal". Parts are never themselves composite.
type CompositeArgument struct {
	Span
	Parts []Argument
}

func (*Literal) isArgument()              {}
func (*QuotedString) isArgument()         {}
func (*VariableSubstitution) isArgument() {}
func (*CommandSubstitution) isArgument()  {}
func (*CompositeArgument) isArgument()    {}

// Command is a single executable invocation. The first argument is the
// executable name.
type Command struct {
	Span
	ID   ID
	Args []Argument
}

// Pipeline is Command₁ | Command₂ | … | Commandₙ, it may be empty.
type Pipeline struct {
	Span
	ID       ID
	Commands []*Command
}

// NewLiteral creates a literal.
func NewLiteral(span Span, text string) *Literal {
	return &Literal{Span: span, Text: text}
}

// NewQuotedString creates a quoted string. Components must be variable or
// command substitutions with offsets in ascending order within text.
func NewQuotedString(span Span, text string, components []QuotedComponent) *QuotedString {
	last := 0
	for _, c := range components {
		switch c.Arg.(type) {
		case *VariableSubstitution, *CommandSubstitution:
		default:
			invariant.Invariant(false, "quoted string component must be a substitution, got %T", c.Arg)
		}
		invariant.Invariant(c.Offset >= last && c.Offset <= len(text), "component offset %d out of order or range", c.Offset)
		last = c.Offset
	}

	return &QuotedString{
		Span:       span,
		Text:       text,
		Components: append([]QuotedComponent(nil), components...),
	}
}

// NewVariableSubstitution creates a ${name} reference.
func NewVariableSubstitution(span Span, name string) *VariableSubstitution {
	return &VariableSubstitution{Span: span, Name: name}
}

// NewCommandSubstitution creates a $(...) substitution.
func NewCommandSubstitution(span Span, p *Pipeline) *CommandSubstitution {
	invariant.NotNil(p, "pipeline")
	return &CommandSubstitution{Span: span, Pipeline: p}
}

// NewComposite creates a composite argument, panicking if a part is itself
// composite.
func NewComposite(span Span, parts []Argument) *CompositeArgument {
	for _, part := range parts {
		_, nested := part.(*CompositeArgument)
		invariant.Invariant(!nested, "composite argument must not directly contain a composite")
	}
	return &CompositeArgument{Span: span, Parts: append([]Argument(nil), parts...)}
}

// NewCommand creates a command with a fresh ID.
func NewCommand(span Span, args []Argument) *Command {
	invariant.Precondition(len(args) > 0, "command must have at least one argument")
	return &Command{Span: span, ID: NextID(), Args: append([]Argument(nil), args...)}
}

// NewPipeline creates a pipeline with a fresh ID.
func NewPipeline(span Span, commands []*Command) *Pipeline {
	return &Pipeline{Span: span, ID: NextID(), Commands: append([]*Command(nil), commands...)}
}

// Rebuild returns a copy of the command with the same identity and location
// but different arguments.
func (c *Command) Rebuild(args []Argument) *Command {
	invariant.Precondition(len(args) > 0, "command must have at least one argument")
	return &Command{Span: c.Span, ID: c.ID, Args: append([]Argument(nil), args...)}
}

// Rebuild returns a copy of the pipeline with the same identity and location
// but different commands.
func (p *Pipeline) Rebuild(commands []*Command) *Pipeline {
	return &Pipeline{Span: p.Span, ID: p.ID, Commands: append([]*Command(nil), commands...)}
}

// Name is the argument naming the executable.
func (c *Command) Name() Argument {
	return c.Args[0]
}

// Arguments are the invocation arguments following the name.
func (c *Command) Arguments() []Argument {
	return c.Args[1:]
}

// Len returns the number of commands in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.Commands)
}

// CommandAt returns the innermost command whose span contains offset, or nil.
// Commands nested in substitutions take priority over the enclosing command.
func (p *Pipeline) CommandAt(offset int) *Command {
	for _, cmd := range p.Commands {
		if !cmd.Contains(offset) {
			continue
		}
		for _, arg := range cmd.Args {
			if inner := commandAtArg(arg, offset); inner != nil {
				return inner
			}
		}
		return cmd
	}
	return nil
}

func commandAtArg(arg Argument, offset int) *Command {
	if !arg.Location().Contains(offset) {
		return nil
	}

	switch arg := arg.(type) {
	case *CommandSubstitution:
		return arg.Pipeline.CommandAt(offset)
	case *QuotedString:
		for _, c := range arg.Components {
			if found := commandAtArg(c.Arg, offset); found != nil {
				return found
			}
		}
	case *CompositeArgument:
		for _, part := range arg.Parts {
			if found := commandAtArg(part, offset); found != nil {
				return found
			}
		}
	}
	return nil
}

// Renderable returns true if the argument can be turned into text without
// a shell state or running anything.
func Renderable(arg Argument) bool {
	switch arg := arg.(type) {
	case *Literal:
		return true
	case *QuotedString:
		return len(arg.Components) == 0
	case *CompositeArgument:
		for _, part := range arg.Parts {
			if !Renderable(part) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Render returns the text of a renderable argument. Calling it on an argument
// that isn't renderable is a programming error.
func Render(arg Argument) string {
	invariant.Precondition(Renderable(arg), "cannot render %T without expansion", arg)

	switch arg := arg.(type) {
	case *Literal:
		return arg.Text
	case *QuotedString:
		return arg.Text
	case *CompositeArgument:
		var sb strings.Builder
		for _, part := range arg.Parts {
			sb.WriteString(Render(part))
		}
		return sb.String()
	}
	panic("unreachable")
}
