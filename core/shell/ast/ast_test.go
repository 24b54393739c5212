package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lit(text string) *Literal {
	return NewLiteral(NoSpan, text)
}

func TestRenderable(t *testing.T) {
	echo := NewPipeline(NoSpan, []*Command{NewCommand(NoSpan, []Argument{lit("echo")})})

	cases := map[string]struct {
		arg      Argument
		expected bool
	}{
		"literal":         {lit("foo"), true},
		"quoted-static":   {NewQuotedString(NoSpan, "a b", nil), true},
		"quoted-variable": {NewQuotedString(NoSpan, "a ", []QuotedComponent{{2, NewVariableSubstitution(NoSpan, "B")}}), false},
		"variable":        {NewVariableSubstitution(NoSpan, "HOME"), false},
		"command":         {NewCommandSubstitution(NoSpan, echo), false},
		"composite-static": {
			NewComposite(NoSpan, []Argument{lit("a"), NewQuotedString(NoSpan, "b", nil)}),
			true,
		},
		"composite-dynamic": {
			NewComposite(NoSpan, []Argument{lit("a"), NewVariableSubstitution(NoSpan, "B")}),
			false,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, Renderable(tc.arg))
		})
	}
}

func TestRender(t *testing.T) {
	composite := NewComposite(NoSpan, []Argument{lit("foo-"), NewQuotedString(NoSpan, " some spaces ", nil)})
	assert.Equal(t, "foo- some spaces ", Render(composite))

	assert.Panics(t, func() {
		Render(NewVariableSubstitution(NoSpan, "HOME"))
	})
}

func TestNewComposite_nested(t *testing.T) {
	inner := NewComposite(NoSpan, []Argument{lit("a"), lit("b")})

	assert.Panics(t, func() {
		NewComposite(NoSpan, []Argument{lit("x"), inner})
	})
}

func TestNewQuotedString_invalidComponent(t *testing.T) {
	assert.Panics(t, func() {
		NewQuotedString(NoSpan, "abc", []QuotedComponent{{1, lit("x")}})
	})

	assert.Panics(t, func() {
		NewQuotedString(NoSpan, "abc", []QuotedComponent{{4, NewVariableSubstitution(NoSpan, "X")}})
	})
}

func TestNewCommand_empty(t *testing.T) {
	assert.Panics(t, func() {
		NewCommand(NoSpan, nil)
	})
}

func TestIdentity(t *testing.T) {
	a := NewCommand(NoSpan, []Argument{lit("echo")})
	b := NewCommand(NoSpan, []Argument{lit("echo")})

	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.ID, a.Rebuild([]Argument{lit("cat")}).ID)
}

func TestConstructorsCopy(t *testing.T) {
	args := []Argument{lit("echo"), lit("a")}
	cmd := NewCommand(NoSpan, args)
	args[1] = lit("changed")

	assert.Equal(t, "echo a", cmd.String())
}

func TestString(t *testing.T) {
	nested := NewPipeline(NoSpan, []*Command{
		NewCommand(NoSpan, []Argument{lit("echo"), lit("zomg")}),
	})
	cmd := NewCommand(NoSpan, []Argument{
		lit("echo"),
		NewComposite(NoSpan, []Argument{lit("foo-"), NewCommandSubstitution(NoSpan, nested)}),
		NewQuotedString(NoSpan, `A: , "q"`, []QuotedComponent{{3, NewVariableSubstitution(NoSpan, "A")}}),
		lit("with space"),
		lit(""),
	})
	p := NewPipeline(NoSpan, []*Command{cmd, NewCommand(NoSpan, []Argument{lit("cat")})})

	assert.Equal(t, `echo foo-$(echo zomg) "A: ${A}, \"q\"" with\ space "" | cat`, p.String())
}

func TestCommandAt(t *testing.T) {
	// echo $(cat) | wc
	// 0123456789012345
	inner := &Command{Span: Span{Start: 7, Stop: 10}, ID: NextID(), Args: []Argument{lit("cat")}}
	innerPipeline := &Pipeline{Span: Span{Start: 7, Stop: 10}, ID: NextID(), Commands: []*Command{inner}}
	sub := &CommandSubstitution{Span: Span{Start: 5, Stop: 11}, Pipeline: innerPipeline}
	echo := &Command{Span: Span{Start: 0, Stop: 11}, ID: NextID(), Args: []Argument{
		&Literal{Span: Span{Start: 0, Stop: 4}, Text: "echo"},
		sub,
	}}
	wc := &Command{Span: Span{Start: 14, Stop: 16}, ID: NextID(), Args: []Argument{
		&Literal{Span: Span{Start: 14, Stop: 16}, Text: "wc"},
	}}
	p := &Pipeline{Span: Span{Start: 0, Stop: 16}, ID: NextID(), Commands: []*Command{echo, wc}}

	assert.Equal(t, echo.ID, p.CommandAt(2).ID)
	assert.Equal(t, inner.ID, p.CommandAt(8).ID)
	assert.Equal(t, wc.ID, p.CommandAt(15).ID)
	assert.Nil(t, p.CommandAt(13))
}
