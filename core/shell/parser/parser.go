// Package parser turns pipeline source text into an ast.Pipeline.
//
// The grammar is a small subset of the shell command language:
//
//	pipeline      := command ('|' command)*
//	command       := token+
//	token         := (literal | quoted-string | variable-sub | command-sub)+
//	quoted-string := '"' (text | variable-sub | command-sub)* '"' | "'" text "'"
//	variable-sub  := '${' name '}'
//	command-sub   := '$(' pipeline ')'
//
// Fragments with no whitespace between them form a single token.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/pipesh/core/invariant"
	"github.com/josephlewis42/pipesh/core/shell/ast"
)

// ErrSyntax is matched by every *ParseError.
var ErrSyntax = errors.New("syntax error")

// ParseError describes malformed source. Pos is the byte offset of the
// offending character.
type ParseError struct {
	Pos    int
	Source string
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error near position %d: %s", e.Pos, e.Msg)
}

// Unwrap allows errors.Is(err, ErrSyntax).
func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

// Snippet reconstructs the line holding the error with a caret under the
// offending character.
func (e *ParseError) Snippet() string {
	pos := e.Pos
	if pos > len(e.Source) {
		pos = len(e.Source)
	}
	lineStart := strings.LastIndexByte(e.Source[:pos], '\n') + 1
	lineEnd := strings.IndexByte(e.Source[pos:], '\n')
	if lineEnd < 0 {
		lineEnd = len(e.Source)
	} else {
		lineEnd += pos
	}

	return e.Source[lineStart:lineEnd] + "\n" + strings.Repeat(" ", pos-lineStart) + "^"
}

// Parse parses a complete pipeline. Empty source yields an empty pipeline.
func Parse(src string) (*ast.Pipeline, error) {
	p := &parser{src: src}

	pipeline, err := p.pipeline()
	if err != nil {
		return nil, err
	}

	if !p.eof() {
		return nil, p.errorf(p.pos, "unexpected %q", p.peek())
	}

	return pipeline, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Pos: pos, Source: p.src, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(offset int) byte {
	if p.pos+offset >= len(p.src) {
		return 0
	}
	return p.src[p.pos+offset]
}

func (p *parser) span(start int) ast.Span {
	return ast.Span{Start: start, Stop: p.pos, Source: p.src[start:p.pos]}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// atBoundary reports whether the current character ends a token.
func (p *parser) atBoundary() bool {
	if p.eof() {
		return true
	}
	c := p.peek()
	return isSpace(c) || c == '|' || c == ')'
}

func (p *parser) startsSubstitution() bool {
	return p.peek() == '$' && (p.peekAt(1) == '{' || p.peekAt(1) == '(')
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

// pipeline parses commands separated by pipes. It stops at the end of input
// or at a ')' which the caller must handle.
func (p *parser) pipeline() (*ast.Pipeline, error) {
	p.skipSpace()
	start := p.pos
	if p.eof() || p.peek() == ')' {
		return ast.NewPipeline(p.span(start), nil), nil
	}

	var commands []*ast.Command
	for {
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)

		if p.peek() != '|' {
			break
		}
		p.pos++
	}

	stop := commands[len(commands)-1].Stop
	span := ast.Span{Start: start, Stop: stop, Source: p.src[start:stop]}
	return ast.NewPipeline(span, commands), nil
}

// command parses tokens up to a pipe, a ')' or the end of input and leaves
// the parser past any trailing whitespace.
func (p *parser) command() (*ast.Command, error) {
	p.skipSpace()
	start := p.pos

	var args []ast.Argument
	for {
		p.skipSpace()
		if p.atBoundary() {
			break
		}

		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		args = append(args, tok)
	}

	if len(args) == 0 {
		if p.eof() {
			return nil, p.errorf(p.pos, "expected a command, got end of input")
		}
		return nil, p.errorf(p.pos, "expected a command, got %q", p.peek())
	}

	stop := args[len(args)-1].Location().Stop
	return ast.NewCommand(ast.Span{Start: start, Stop: stop, Source: p.src[start:stop]}, args), nil
}

// token parses adjacent fragments up to the next boundary. A lone fragment
// is returned as-is, several are wrapped in a composite.
func (p *parser) token() (ast.Argument, error) {
	start := p.pos

	var parts []ast.Argument
	for !p.atBoundary() {
		var (
			part ast.Argument
			err  error
		)

		switch {
		case p.peek() == '"':
			part, err = p.doubleQuoted()
		case p.peek() == '\'':
			part, err = p.singleQuoted()
		case p.peek() == '$' && p.peekAt(1) == '{':
			part, err = p.variable()
		case p.peek() == '$' && p.peekAt(1) == '(':
			part, err = p.commandSubstitution()
		default:
			part, err = p.literal()
		}

		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	invariant.Postcondition(len(parts) > 0, "token at %d must have a fragment", start)
	if len(parts) == 1 {
		return parts[0], nil
	}
	return ast.NewComposite(p.span(start), parts), nil
}

func (p *parser) literal() (*ast.Literal, error) {
	start := p.pos

	var sb strings.Builder
	for !p.atBoundary() && !p.startsSubstitution() && p.peek() != '"' && p.peek() != '\'' {
		c := p.peek()
		if c == '\\' {
			if p.pos+1 >= len(p.src) {
				return nil, p.errorf(p.pos, "unexpected end of input after escape")
			}
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}

	invariant.Postcondition(p.pos > start, "literal at %d must consume input", start)
	return ast.NewLiteral(p.span(start), sb.String()), nil
}

func (p *parser) singleQuoted() (*ast.QuotedString, error) {
	start := p.pos
	end := strings.IndexByte(p.src[start+1:], '\'')
	if end < 0 {
		return nil, p.errorf(start, "unterminated single quote")
	}

	text := p.src[start+1 : start+1+end]
	p.pos = start + end + 2
	return ast.NewQuotedString(p.span(start), text, nil), nil
}

func (p *parser) doubleQuoted() (*ast.QuotedString, error) {
	start := p.pos
	p.pos++

	var (
		text       strings.Builder
		components []ast.QuotedComponent
	)
	for {
		if p.eof() {
			return nil, p.errorf(start, "unterminated double quote")
		}

		switch c := p.peek(); {
		case c == '"':
			p.pos++
			return ast.NewQuotedString(p.span(start), text.String(), components), nil

		case c == '\\':
			switch next := p.peekAt(1); next {
			case '"', '\\', '$':
				text.WriteByte(next)
				p.pos += 2
			default:
				text.WriteByte(c)
				p.pos++
			}

		case c == '$' && p.peekAt(1) == '{':
			v, err := p.variable()
			if err != nil {
				return nil, err
			}
			components = append(components, ast.QuotedComponent{Offset: text.Len(), Arg: v})

		case c == '$' && p.peekAt(1) == '(':
			sub, err := p.commandSubstitution()
			if err != nil {
				return nil, err
			}
			components = append(components, ast.QuotedComponent{Offset: text.Len(), Arg: sub})

		default:
			text.WriteByte(c)
			p.pos++
		}
	}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func (p *parser) variable() (*ast.VariableSubstitution, error) {
	start := p.pos
	p.pos += len("${")

	nameStart := p.pos
	switch {
	case p.peek() == '?':
		p.pos++
	case isNameStart(p.peek()):
		for !p.eof() && isNameChar(p.peek()) {
			p.pos++
		}
	}
	name := p.src[nameStart:p.pos]

	switch {
	case p.eof():
		return nil, p.errorf(start, "unterminated variable substitution")
	case p.peek() != '}':
		return nil, p.errorf(p.pos, "bad substitution: unexpected %q in variable name", p.peek())
	case name == "":
		return nil, p.errorf(p.pos, "bad substitution: empty variable name")
	}
	p.pos++

	return ast.NewVariableSubstitution(p.span(start), name), nil
}

func (p *parser) commandSubstitution() (*ast.CommandSubstitution, error) {
	start := p.pos
	p.pos += len("$(")

	pipeline, err := p.pipeline()
	if err != nil {
		return nil, err
	}

	if p.peek() != ')' {
		return nil, p.errorf(start, "unterminated command substitution")
	}
	p.pos++

	return ast.NewCommandSubstitution(p.span(start), pipeline), nil
}
