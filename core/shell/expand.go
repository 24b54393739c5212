package shell

import (
	"bytes"
	"io"
	"strings"

	"github.com/josephlewis42/pipesh/core/invariant"
	"github.com/josephlewis42/pipesh/core/shell/ast"
	"github.com/josephlewis42/pipesh/core/vos"
)

// Expander turns a trimmed pipeline into one where every argument is a
// literal.
type Expander struct {
	Executor *Executor
	// FS backs the subshells command substitutions run in.
	FS vos.VFS
	// Stderr receives the error output of command substitutions.
	Stderr io.Writer
}

// Expand resolves variables against ctx and runs command substitutions,
// nested ones first. It returns a new pipeline, p is left untouched.
//
// Failures are returned as *ExpansionError, or *LookupError if a substituted
// command doesn't exist. No partial result is returned.
func (e *Expander) Expand(ctx vos.ExecContext, p *ast.Pipeline) (*ast.Pipeline, error) {
	invariant.NotNil(ctx, "ctx")
	invariant.NotNil(p, "pipeline")

	commands := make([]*ast.Command, len(p.Commands))
	for i, cmd := range p.Commands {
		args := make([]ast.Argument, len(cmd.Args))
		for j, arg := range cmd.Args {
			if lit, ok := arg.(*ast.Literal); ok {
				args[j] = lit
				continue
			}

			text, err := e.expandArgument(ctx, arg)
			if err != nil {
				return nil, err
			}
			args[j] = ast.NewLiteral(ast.NoSpan, text)
		}
		commands[i] = cmd.Rebuild(args)
	}

	return p.Rebuild(commands), nil
}

func (e *Expander) expandArgument(ctx vos.ExecContext, arg ast.Argument) (string, error) {
	switch arg := arg.(type) {
	case *ast.Literal:
		return arg.Text, nil

	case *ast.VariableSubstitution:
		value, ok := ctx.LookupEnv(arg.Name)
		if !ok {
			return "", &ExpansionError{Source: arg.String(), Err: ErrUndefinedVariable}
		}
		return value, nil

	case *ast.CommandSubstitution:
		return e.substitute(ctx, arg)

	case *ast.QuotedString:
		return e.splice(ctx, arg)

	case *ast.CompositeArgument:
		var sb strings.Builder
		for _, part := range arg.Parts {
			invariant.Invariant(!isComposite(part), "composite %q directly contains a composite", arg.String())

			text, err := e.expandArgument(ctx, part)
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
		}
		return sb.String(), nil
	}

	invariant.Invariant(false, "unknown argument type %T", arg)
	return "", nil
}

// splice inserts each component at its offset, shifted by the length of
// everything inserted before it.
func (e *Expander) splice(ctx vos.ExecContext, q *ast.QuotedString) (string, error) {
	text := q.Text
	inserted := 0
	for _, c := range q.Components {
		switch c.Arg.(type) {
		case *ast.VariableSubstitution, *ast.CommandSubstitution:
		default:
			invariant.Invariant(false, "quoted string component must be a substitution, got %T", c.Arg)
		}

		value, err := e.expandArgument(ctx, c.Arg)
		if err != nil {
			return "", err
		}

		at := c.Offset + inserted
		text = text[:at] + value + text[at:]
		inserted += len(value)
	}
	return text, nil
}

// substitute runs the pipeline in a subshell with no input and returns its
// output without trailing newlines.
func (e *Expander) substitute(ctx vos.ExecContext, sub *ast.CommandSubstitution) (string, error) {
	expanded, err := e.Expand(ctx, sub.Pipeline)
	if err != nil {
		return "", err
	}

	subshell := vos.NewState(e.FS, ctx.Getwd(), vos.NewMapEnvFromEnvList(ctx.Environ()))

	var out bytes.Buffer
	if _, err := e.Executor.Execute(subshell, expanded, &vos.EmptyReader{}, &out, e.Stderr); err != nil {
		return "", err
	}

	return strings.TrimRight(out.String(), "\r\n"), nil
}

func isComposite(arg ast.Argument) bool {
	_, ok := arg.(*ast.CompositeArgument)
	return ok
}
