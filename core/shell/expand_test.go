package shell

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/josephlewis42/pipesh/core/invariant"
	"github.com/josephlewis42/pipesh/core/shell/ast"
	"github.com/josephlewis42/pipesh/core/vos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpander(t *testing.T) *Expander {
	return &Expander{
		Executor: &Executor{Locator: testLocator(), ErrorLog: log.New(io.Discard, "", 0)},
		FS:       newTestState(t).FS(),
		Stderr:   io.Discard,
	}
}

func expandArgs(t *testing.T, ctx vos.ExecContext, src string) ([]string, error) {
	t.Helper()

	expanded, err := newTestExpander(t).Expand(ctx, Trim(mustParse(t, src)))
	if err != nil {
		return nil, err
	}

	var args []string
	for _, arg := range expanded.Commands[0].Args {
		lit, ok := arg.(*ast.Literal)
		require.True(t, ok, "expected *ast.Literal, got %T", arg)
		args = append(args, lit.Text)
	}
	return args, nil
}

func TestExpander_Expand(t *testing.T) {
	ctx := vos.NewSnapshot("/tmp", []string{"HOME=MyHome", "A=aaa", "B=bbb", "C=ccc", "SPACE=a b"})

	cases := map[string]struct {
		src      string
		expected []string
	}{
		"literal":         {"echo foo", []string{"echo", "foo"}},
		"variable":        {"echo ${HOME}", []string{"echo", "MyHome"}},
		"no-word-split":   {"echo ${SPACE}", []string{"echo", "a b"}},
		"splices":         {`echo "A: ${A}, B: ${B}, C: ${C}"`, []string{"echo", "A: aaa, B: bbb, C: ccc"}},
		"adjacent-splice": {`echo "${A}${B}"`, []string{"echo", "aaabbb"}},
		"splice-ends":     {`echo "${A}-${B}"`, []string{"echo", "aaa-bbb"}},
		"composite":       {`echo x${A}y"${B}"`, []string{"echo", "xaaaybbb"}},
		"substitution":    {"echo $(echo foo | grep o)", []string{"echo", "foo"}},
		"substitution-wd": {"echo $(pwd)", []string{"echo", "/tmp"}},
		"nested":          {`echo foo-$(echo bar-$(echo zomg))" some spaces "`, []string{"echo", "foo-bar-zomg some spaces "}},
		"quoted-nested":   {`echo "<$(echo "${A}")>"`, []string{"echo", "<aaa>"}},
		"command-name":    {`${A}x`, []string{"aaax"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			args, err := expandArgs(t, ctx, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, args)
		})
	}
}

func TestExpander_Expand_undefined(t *testing.T) {
	ctx := vos.NewSnapshot("/", nil)

	for _, src := range []string{"echo ${HOME}", `echo "x ${HOME}"`, "echo $(echo ${HOME})"} {
		t.Run(src, func(t *testing.T) {
			_, err := expandArgs(t, ctx, src)

			var expansionErr *ExpansionError
			require.True(t, errors.As(err, &expansionErr), "got %v", err)
			assert.True(t, errors.Is(err, ErrUndefinedVariable))
			assert.Equal(t, "${HOME}", expansionErr.Source)
		})
	}
}

func TestExpander_Expand_lookupError(t *testing.T) {
	_, err := expandArgs(t, vos.NewSnapshot("/", nil), "echo $(nope)")

	assert.True(t, errors.Is(err, ErrCommandNotFound))
}

func TestExpander_Expand_doesNotModifyInput(t *testing.T) {
	p := Trim(mustParse(t, "echo ${A}"))
	before := p.String()

	_, err := newTestExpander(t).Expand(vos.NewSnapshot("/", []string{"A=1"}), p)
	require.NoError(t, err)
	assert.Equal(t, before, p.String())
}

func TestExpander_Expand_invalidComponent(t *testing.T) {
	// Bypass the constructor to build a tree the parser never produces.
	quoted := &ast.QuotedString{Span: ast.NoSpan, Text: "ab", Components: []ast.QuotedComponent{
		{Offset: 1, Arg: ast.NewLiteral(ast.NoSpan, "x")},
	}}
	p := ast.NewPipeline(ast.NoSpan, []*ast.Command{
		ast.NewCommand(ast.NoSpan, []ast.Argument{ast.NewLiteral(ast.NoSpan, "echo"), quoted}),
	})

	assert.PanicsWithError(t, (&invariant.Violation{Kind: "INVARIANT", Message: "quoted string component must be a substitution, got *ast.Literal"}).Error(), func() {
		newTestExpander(t).Expand(vos.NewSnapshot("/", nil), p)
	})
}

func TestExecutor_Execute_empty(t *testing.T) {
	executor := &Executor{Locator: mapLocator{}}

	status, err := executor.Execute(newTestState(t), ast.NewPipeline(ast.NoSpan, nil), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Code())
	assert.Equal(t, "", status.String())
}

func TestExecutor_Execute_requiresExpansion(t *testing.T) {
	executor := &Executor{Locator: testLocator()}
	p := Trim(mustParse(t, "echo ${A}"))

	assert.Panics(t, func() {
		executor.Execute(newTestState(t), p, nil, nil, nil)
	})
}
