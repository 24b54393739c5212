package ast

import "strings"

var (
	unquotedEscaper = strings.NewReplacer(
		`\`, `\\`,
		` `, `\ `,
		"\t", "\\\t",
		"\n", "\\\n",
		`|`, `\|`,
		`"`, `\"`,
		`'`, `\'`,
		`$`, `\$`,
		`(`, `\(`,
		`)`, `\)`,
	)

	quotedEscaper = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`$`, `\$`,
	)
)

func (l *Literal) String() string {
	if l.Text == "" {
		return `""`
	}
	return unquotedEscaper.Replace(l.Text)
}

func (q *QuotedString) String() string {
	var sb strings.Builder
	sb.WriteByte('"')
	last := 0
	for _, c := range q.Components {
		sb.WriteString(quotedEscaper.Replace(q.Text[last:c.Offset]))
		sb.WriteString(c.Arg.String())
		last = c.Offset
	}
	sb.WriteString(quotedEscaper.Replace(q.Text[last:]))
	sb.WriteByte('"')
	return sb.String()
}

func (v *VariableSubstitution) String() string {
	return "${" + v.Name + "}"
}

func (c *CommandSubstitution) String() string {
	return "$(" + c.Pipeline.String() + ")"
}

func (c *CompositeArgument) String() string {
	var sb strings.Builder
	for _, part := range c.Parts {
		sb.WriteString(part.String())
	}
	return sb.String()
}

func (c *Command) String() string {
	words := make([]string, len(c.Args))
	for i, arg := range c.Args {
		words[i] = arg.String()
	}
	return strings.Join(words, " ")
}

func (p *Pipeline) String() string {
	commands := make([]string, len(p.Commands))
	for i, cmd := range p.Commands {
		commands[i] = cmd.String()
	}
	return strings.Join(commands, " | ")
}
