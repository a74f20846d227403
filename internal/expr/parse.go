package expr

import (
	"fmt"
	"strings"
)

// SyntaxError reports malformed template text.
type SyntaxError struct {
	Source string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Parse splits src into literal text and splices.
func Parse(src string) (*Template, error) {
	p := &parser{src: src}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return &Template{Source: src, Segments: p.segments}, nil
}

type parser struct {
	src      string
	pos      int
	text     strings.Builder
	textAt   int
	segments []Segment
}

func (p *parser) err(msg string, args ...any) error {
	return &SyntaxError{Source: p.src, Offset: p.pos, Msg: fmt.Sprintf(msg, args...)}
}

func (p *parser) flushText() {
	if p.text.Len() == 0 {
		return
	}
	p.segments = append(p.segments, Segment{Text: p.text.String(), Offset: p.textAt})
	p.text.Reset()
}

func (p *parser) writeText(s string) {
	if p.text.Len() == 0 {
		p.textAt = p.pos
	}
	p.text.WriteString(s)
}

func (p *parser) parse() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '[' && p.peekAt(1) == '[':
			p.writeText("[")
			p.pos += 2
		case c == ']' && p.peekAt(1) == ']':
			p.writeText("]")
			p.pos += 2
		case c == '[':
			p.flushText()
			start := p.pos
			p.pos++
			e, err := p.term()
			if err != nil {
				return err
			}
			p.skipSpace()
			if !p.accept(']') {
				if p.pos >= len(p.src) {
					return p.err("unterminated splice starting at offset %d", start)
				}
				return p.err("unexpected %q in splice", p.src[p.pos])
			}
			p.segments = append(p.segments, Segment{Splice: e, Offset: start})
		case c == ']':
			return p.err("unbalanced ']'")
		default:
			p.writeText(p.src[p.pos : p.pos+1])
			p.pos++
		}
	}
	p.flushText()
	return nil
}

func (p *parser) peekAt(n int) byte {
	if p.pos+n >= len(p.src) {
		return 0
	}
	return p.src[p.pos+n]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) accept(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.accept(c) {
		return nil
	}
	if p.pos >= len(p.src) {
		return p.err("expected %q, found end of text", c)
	}
	return p.err("expected %q, found %q", c, p.src[p.pos])
}

func (p *parser) term() (Expr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.err("expected term, found end of text")
	}
	c := p.src[p.pos]
	if c == '"' || c == '\'' {
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return &StringLit{Value: s}, nil
	}
	if !isIdentStart(c) {
		return nil, p.err("expected term, found %q", c)
	}

	name := p.ident()
	save := p.pos
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		if op, ok := operators[name]; ok {
			p.pos++
			return p.operator(op)
		}
		return nil, p.err("unknown operator %q", name)
	}
	p.pos = save
	return &Ident{Name: name}, nil
}

type operator int

const (
	opList operator = iota
	opPath
	opShape
	opContext
)

var operators = map[string]operator{
	"l": opList, "list": opList,
	"p": opPath, "path": opPath,
	"s": opShape, "shape": opShape,
	"c": opContext, "context": opContext,
}

// operator parses the arguments after the opening parenthesis.
func (p *parser) operator(op operator) (Expr, error) {
	switch op {
	case opList:
		elem, err := p.term()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		p.accept(',')
		p.skipSpace()
		var joiner *StringLit
		if p.pos < len(p.src) && (p.src[p.pos] == '"' || p.src[p.pos] == '\'') {
			s, err := p.str()
			if err != nil {
				return nil, err
			}
			joiner = &StringLit{Value: s}
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &ListExpr{Elem: elem, Joiner: joiner}, nil

	case opPath, opShape:
		name, err := p.identArg()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		if op == opPath {
			return &PathExpr{Name: name}, nil
		}
		return &ShapeExpr{Name: name}, nil

	default:
		path, err := p.term()
		if err != nil {
			return nil, err
		}
		switch path.(type) {
		case *PathExpr, *StringLit:
		default:
			return nil, p.err("context path must be p(identifier) or a string")
		}
		p.skipSpace()
		p.accept(',')
		name, err := p.identArg()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &ContextExpr{Path: path, Name: name}, nil
	}
}

func (p *parser) identArg() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || !isIdentStart(p.src[p.pos]) {
		if p.pos >= len(p.src) {
			return "", p.err("expected identifier, found end of text")
		}
		return "", p.err("expected identifier, found %q", p.src[p.pos])
	}
	return p.ident(), nil
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// str scans a quoted string. A backslash keeps the next character literally.
func (p *parser) str() (string, error) {
	start := p.pos
	quote := p.src[p.pos]
	p.pos++
	var out strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case quote:
			return out.String(), nil
		case '\\':
			if p.pos >= len(p.src) {
				return "", p.err("unfinished escape in string starting at offset %d", start)
			}
			out.WriteByte(p.src[p.pos])
			p.pos++
		default:
			out.WriteByte(c)
		}
	}
	return "", p.err("unterminated string starting at offset %d", start)
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
