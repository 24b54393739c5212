package shell

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/josephlewis42/pipesh/core/shell/ast"
	"github.com/josephlewis42/pipesh/core/shell/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Pipeline {
	t.Helper()

	p, err := parser.Parse(src)
	require.NoError(t, err)
	return p
}

func TestTrim(t *testing.T) {
	cases := map[string]struct {
		src      string
		expected []string
	}{
		"static-composite":  {`echo foo"bar baz"'!'`, []string{"*ast.Literal", "*ast.Literal"}},
		"quoted":            {`echo "a b"`, []string{"*ast.Literal", "*ast.Literal"}},
		"quoted-variable":   {`echo "a ${B}"`, []string{"*ast.Literal", "*ast.QuotedString"}},
		"dynamic-composite": {`echo a${B}`, []string{"*ast.Literal", "*ast.CompositeArgument"}},
		"substitution":      {`echo $(echo "x")`, []string{"*ast.Literal", "*ast.CommandSubstitution"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			trimmed := Trim(mustParse(t, tc.src))

			var kinds []string
			for _, arg := range trimmed.Commands[0].Args {
				kinds = append(kinds, typeName(arg))
			}
			assert.Equal(t, tc.expected, kinds)
		})
	}
}

func typeName(arg ast.Argument) string {
	switch arg.(type) {
	case *ast.Literal:
		return "*ast.Literal"
	case *ast.QuotedString:
		return "*ast.QuotedString"
	case *ast.VariableSubstitution:
		return "*ast.VariableSubstitution"
	case *ast.CommandSubstitution:
		return "*ast.CommandSubstitution"
	case *ast.CompositeArgument:
		return "*ast.CompositeArgument"
	}
	return "unknown"
}

func TestTrim_values(t *testing.T) {
	trimmed := Trim(mustParse(t, `echo foo"bar baz"'!' $(echo a"b")`))

	args := trimmed.Commands[0].Args
	assert.Equal(t, "foobar baz!", args[1].(*ast.Literal).Text)

	nested := args[2].(*ast.CommandSubstitution).Pipeline
	assert.Equal(t, "ab", nested.Commands[0].Args[1].(*ast.Literal).Text)
}

func TestTrim_singlePartComposite(t *testing.T) {
	variable := ast.NewVariableSubstitution(ast.NoSpan, "A")
	composite := ast.NewComposite(ast.NoSpan, []ast.Argument{variable})
	p := ast.NewPipeline(ast.NoSpan, []*ast.Command{
		ast.NewCommand(ast.NoSpan, []ast.Argument{ast.NewLiteral(ast.NoSpan, "echo"), composite}),
	})

	trimmed := Trim(p)
	assert.Same(t, variable, trimmed.Commands[0].Args[1])
}

func TestTrim_keepsIdentity(t *testing.T) {
	p := mustParse(t, `echo a"b" | cat $(echo "x")`)
	trimmed := Trim(p)

	assert.Equal(t, p.ID, trimmed.ID)
	assert.Equal(t, p.Span, trimmed.Span)
	for i := range p.Commands {
		assert.Equal(t, p.Commands[i].ID, trimmed.Commands[i].ID)
	}

	// The input isn't modified.
	_, ok := p.Commands[0].Args[1].(*ast.CompositeArgument)
	assert.True(t, ok)
}

func TestTrim_idempotent(t *testing.T) {
	sources := []string{
		"cmd a b c",
		`echo "A: ${A}, B: ${B}" 'x y' a\ b`,
		`echo foo-$(echo bar-$(echo zomg))" some spaces "`,
		`echo "$(echo "(nested)" | cat)" a${B}c "" ''`,
		"",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			once := Trim(mustParse(t, src))
			twice := Trim(once)

			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("Trim not idempotent (-once +twice):\n%s", diff)
			}
		})
	}
}
