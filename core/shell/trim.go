package shell

import (
	"github.com/josephlewis42/pipesh/core/invariant"
	"github.com/josephlewis42/pipesh/core/shell/ast"
)

// Trim normalizes a pipeline: composites that can be rendered without
// expansion collapse into a literal, single part composites unwrap, and
// quoted strings without substitutions become literals. Nested pipelines are
// trimmed too. The input is not modified and command identities are kept.
//
// Trim is idempotent.
func Trim(p *ast.Pipeline) *ast.Pipeline {
	invariant.NotNil(p, "pipeline")

	commands := make([]*ast.Command, len(p.Commands))
	for i, cmd := range p.Commands {
		commands[i] = trimCommand(cmd)
	}
	return p.Rebuild(commands)
}

func trimCommand(cmd *ast.Command) *ast.Command {
	args := make([]ast.Argument, len(cmd.Args))
	for i, arg := range cmd.Args {
		args[i] = trimArgument(arg)
	}
	return cmd.Rebuild(args)
}

func trimArgument(arg ast.Argument) ast.Argument {
	switch arg := arg.(type) {
	case *ast.Literal, *ast.VariableSubstitution:
		return arg

	case *ast.CommandSubstitution:
		return ast.NewCommandSubstitution(arg.Span, Trim(arg.Pipeline))

	case *ast.QuotedString:
		if len(arg.Components) == 0 {
			return ast.NewLiteral(arg.Span, arg.Text)
		}
		components := make([]ast.QuotedComponent, len(arg.Components))
		for i, c := range arg.Components {
			components[i] = ast.QuotedComponent{Offset: c.Offset, Arg: trimArgument(c.Arg)}
		}
		return ast.NewQuotedString(arg.Span, arg.Text, components)

	case *ast.CompositeArgument:
		parts := make([]ast.Argument, len(arg.Parts))
		for i, part := range arg.Parts {
			parts[i] = trimArgument(part)
		}

		composite := ast.NewComposite(arg.Span, parts)
		switch {
		case ast.Renderable(composite):
			return ast.NewLiteral(arg.Span, ast.Render(composite))
		case len(parts) == 1:
			return parts[0]
		default:
			return composite
		}
	}

	invariant.Invariant(false, "unknown argument type %T", arg)
	return nil
}
