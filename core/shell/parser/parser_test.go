package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/josephlewis42/pipesh/core/shell/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ignorePositions compares trees by structure only.
var ignorePositions = cmpopts.IgnoreTypes(ast.Span{}, ast.ID(0))

func lit(text string) ast.Argument {
	return ast.NewLiteral(ast.NoSpan, text)
}

func quoted(text string, components ...ast.QuotedComponent) ast.Argument {
	return ast.NewQuotedString(ast.NoSpan, text, components)
}

func variable(name string) ast.Argument {
	return ast.NewVariableSubstitution(ast.NoSpan, name)
}

func sub(p *ast.Pipeline) ast.Argument {
	return ast.NewCommandSubstitution(ast.NoSpan, p)
}

func composite(parts ...ast.Argument) ast.Argument {
	return ast.NewComposite(ast.NoSpan, parts)
}

func command(args ...ast.Argument) *ast.Command {
	return ast.NewCommand(ast.NoSpan, args)
}

func pipeline(commands ...*ast.Command) *ast.Pipeline {
	return ast.NewPipeline(ast.NoSpan, commands)
}

func TestParse(t *testing.T) {
	cases := map[string]struct {
		src      string
		expected *ast.Pipeline
	}{
		"empty":      {"", pipeline()},
		"whitespace": {" \t\n ", pipeline()},
		"simple": {
			"cmd a b c",
			pipeline(command(lit("cmd"), lit("a"), lit("b"), lit("c"))),
		},
		"extra-whitespace": {
			"  cmd \t a   b\n",
			pipeline(command(lit("cmd"), lit("a"), lit("b"))),
		},
		"pipes": {
			"echo foo | grep o|wc -l",
			pipeline(
				command(lit("echo"), lit("foo")),
				command(lit("grep"), lit("o")),
				command(lit("wc"), lit("-l")),
			),
		},
		"variable": {
			"echo ${HOME}",
			pipeline(command(lit("echo"), variable("HOME"))),
		},
		"status-variable": {
			"echo ${?}",
			pipeline(command(lit("echo"), variable("?"))),
		},
		"command-substitution": {
			"echo $(echo foo | grep o | grep o)",
			pipeline(command(lit("echo"), sub(pipeline(
				command(lit("echo"), lit("foo")),
				command(lit("grep"), lit("o")),
				command(lit("grep"), lit("o")),
			)))),
		},
		"empty-command-substitution": {
			"echo $()",
			pipeline(command(lit("echo"), sub(pipeline()))),
		},
		"quoted-splices": {
			`echo "A: ${A}, B: ${B}, C: ${C}"`,
			pipeline(command(lit("echo"), quoted("A: , B: , C: ",
				ast.QuotedComponent{Offset: 3, Arg: variable("A")},
				ast.QuotedComponent{Offset: 8, Arg: variable("B")},
				ast.QuotedComponent{Offset: 13, Arg: variable("C")},
			))),
		},
		"quoted-command": {
			`echo "x $(echo ")") y"`,
			pipeline(command(lit("echo"), quoted("x  y",
				ast.QuotedComponent{Offset: 2, Arg: sub(pipeline(command(lit("echo"), quoted(")"))))},
			))),
		},
		"composite": {
			`echo foo-$(echo bar-$(echo zomg))" some spaces "`,
			pipeline(command(lit("echo"), composite(
				lit("foo-"),
				sub(pipeline(command(lit("echo"), composite(
					lit("bar-"),
					sub(pipeline(command(lit("echo"), lit("zomg")))),
				)))),
				quoted(" some spaces "),
			))),
		},
		"quoted-in-token": {
			`foo"bar baz"`,
			pipeline(command(composite(lit("foo"), quoted("bar baz")))),
		},
		"single-quoted": {
			`echo '${A} $(x) "q"'`,
			pipeline(command(lit("echo"), quoted(`${A} $(x) "q"`))),
		},
		"escapes": {
			`echo a\ b \| "q\"\$\\ \n"`,
			pipeline(command(lit("echo"), lit("a b"), lit("|"), quoted(`q"$\ \n`))),
		},
		"lone-dollar": {
			"echo $ a$b $",
			pipeline(command(lit("echo"), lit("$"), lit("a$b"), lit("$"))),
		},
		"adjacent-substitutions": {
			"echo ${A}${B}",
			pipeline(command(lit("echo"), composite(variable("A"), variable("B")))),
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			actual, err := Parse(tc.src)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.expected, actual, ignorePositions); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.src, diff)
			}
		})
	}
}

func TestParse_simpleCommandRenders(t *testing.T) {
	for _, src := range []string{"cmd a b c", "cmd 'a' \"b\" c", "cmd a\"\" b c"} {
		t.Run(src, func(t *testing.T) {
			p, err := Parse(src)
			require.NoError(t, err)
			require.Equal(t, 1, p.Len())

			cmd := p.Commands[0]
			assert.Equal(t, "cmd", ast.Render(cmd.Name()))

			var args []string
			for _, arg := range cmd.Arguments() {
				args = append(args, ast.Render(arg))
			}
			assert.Equal(t, []string{"a", "b", "c"}, args)
		})
	}
}

func TestParse_spans(t *testing.T) {
	src := "echo foo | cat $(pwd)"
	p, err := Parse(src)
	require.NoError(t, err)

	assert.Equal(t, ast.Span{Start: 0, Stop: 21, Source: src}, p.Span)

	echo := p.Commands[0]
	assert.Equal(t, ast.Span{Start: 0, Stop: 8, Source: "echo foo"}, echo.Span)
	assert.Equal(t, ast.Span{Start: 5, Stop: 8, Source: "foo"}, echo.Args[1].Location())

	cat := p.Commands[1]
	assert.Equal(t, ast.Span{Start: 11, Stop: 21, Source: "cat $(pwd)"}, cat.Span)

	substitution := cat.Args[1].(*ast.CommandSubstitution)
	assert.Equal(t, ast.Span{Start: 15, Stop: 21, Source: "$(pwd)"}, substitution.Span)
	assert.Equal(t, ast.Span{Start: 17, Stop: 20, Source: "pwd"}, substitution.Pipeline.Commands[0].Span)

	assert.Equal(t, substitution.Pipeline.Commands[0].ID, p.CommandAt(18).ID)
}

func TestParse_identity(t *testing.T) {
	p, err := Parse("echo a | echo a")
	require.NoError(t, err)

	first, second := p.Commands[0], p.Commands[1]
	assert.Equal(t, first.String(), second.String())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestParse_errors(t *testing.T) {
	cases := map[string]struct {
		src string
		pos int
		msg string
	}{
		"leading-pipe":           {"| echo", 0, `expected a command, got '|'`},
		"trailing-pipe":          {"echo |", 6, "expected a command, got end of input"},
		"double-pipe":            {"echo | | cat", 7, `expected a command, got '|'`},
		"stray-paren":            {"echo )", 5, `unexpected ')'`},
		"unterminated-double":    {`echo "abc`, 5, "unterminated double quote"},
		"unterminated-single":    {`echo 'abc`, 5, "unterminated single quote"},
		"unterminated-variable":  {"echo ${HOME", 5, "unterminated variable substitution"},
		"empty-variable":         {"echo ${}", 7, "bad substitution: empty variable name"},
		"bad-variable":           {"echo ${A-B}", 8, `bad substitution: unexpected '-' in variable name`},
		"unterminated-command":   {"echo $(echo", 5, "unterminated command substitution"},
		"empty-nested-command":   {"echo $(echo |)", 13, `expected a command, got ')'`},
		"trailing-escape":        {`echo \`, 5, "unexpected end of input after escape"},
		"error-inside-substring": {`echo "$(echo ${})"`, 15, "bad substitution: empty variable name"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			p, err := Parse(tc.src)
			assert.Nil(t, p)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %v", err)
			assert.True(t, errors.Is(err, ErrSyntax))
			assert.Equal(t, tc.pos, parseErr.Pos)
			assert.Equal(t, tc.msg, parseErr.Msg)
			assert.Equal(t, tc.src, parseErr.Source)
		})
	}
}

func TestParseError_Snippet(t *testing.T) {
	_, err := Parse("echo ok\necho )")

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "echo )\n     ^", parseErr.Snippet())
	assert.Equal(t, `syntax error near position 13: unexpected ')'`, parseErr.Error())
}

func TestParse_roundTrip(t *testing.T) {
	sources := []string{
		"echo foo | grep foo",
		`echo "A: ${A}, B: ${B}" 'x y' a\ b`,
		`echo foo-$(echo bar-$(echo zomg))" some spaces "`,
		`echo "$(echo "(nested)" | cat)" \$ \( \)`,
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first, err := Parse(src)
			require.NoError(t, err)

			second, err := Parse(first.String())
			require.NoError(t, err, "reparsing %q", first.String())

			if diff := cmp.Diff(first, second, ignorePositions); diff != "" {
				t.Errorf("round trip mismatch (-first +second):\n%s", diff)
			}
		})
	}
}
