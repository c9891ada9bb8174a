package expr

import "strings"

// Binding powers. Unary minus sits between the multiplicative operators and
// power so that -x^2 parses as -(x^2) and 2^-1 still works.
const (
	bpNone    = 0
	bpSum     = 10
	bpProduct = 20
	bpUnary   = 30
	bpPower   = 40
)

func leftBP(t tokenType) int {
	switch t {
	case tokPlus, tokMinus:
		return bpSum
	case tokStar, tokSlash, tokPercent:
		return bpProduct
	case tokPow:
		return bpPower
	}
	return bpNone
}

type parser struct {
	toks []token
	cur  int
}

func parse(src string) (node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, &SyntaxError{Pos: 1, Msg: "empty expression"}
	}
	p := &parser{toks: toks}
	n, err := p.expr(bpNone)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ != tokEOF {
		return nil, p.unexpected(t)
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.cur] }

func (p *parser) advance() token {
	t := p.toks[p.cur]
	if t.typ != tokEOF {
		p.cur++
	}
	return t
}

func (p *parser) expect(tt tokenType) (token, error) {
	t := p.peek()
	if t.typ != tt {
		return t, &SyntaxError{Pos: t.pos, Msg: "expected " + tt.String() + ", found " + describe(t)}
	}
	return p.advance(), nil
}

func (p *parser) unexpected(t token) error {
	return &SyntaxError{Pos: t.pos, Msg: "unexpected " + describe(t)}
}

func describe(t token) string {
	if t.lexeme == "" {
		return t.typ.String()
	}
	return t.typ.String() + " " + "\"" + t.lexeme + "\""
}

func (p *parser) expr(rbp int) (node, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}
	for rbp < leftBP(p.peek().typ) {
		op := p.advance()
		next := leftBP(op.typ)
		if op.typ == tokPow {
			next-- // right associative
		}
		right, err := p.expr(next)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: opSymbol(op.typ), lhs: left, rhs: right, pos: op.pos}
	}
	return left, nil
}

func (p *parser) prefix() (node, error) {
	t := p.advance()
	switch t.typ {
	case tokNumber:
		return &numberNode{val: t.num}, nil
	case tokIdent:
		if p.peek().typ == tokLParen {
			return p.call(t)
		}
		return &identNode{name: t.lexeme, pos: t.pos}, nil
	case tokMinus, tokPlus:
		x, err := p.expr(bpUnary)
		if err != nil {
			return nil, err
		}
		if t.typ == tokPlus {
			return x, nil
		}
		return &negNode{x: x, pos: t.pos}, nil
	case tokLParen:
		x, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, p.unexpected(t)
}

func (p *parser) call(name token) (node, error) {
	p.advance() // (
	c := &callNode{name: name.lexeme, pos: name.pos}
	if p.peek().typ == tokRParen {
		p.advance()
		return c, nil
	}
	for {
		arg, err := p.expr(bpNone)
		if err != nil {
			return nil, err
		}
		c.args = append(c.args, arg)
		if p.peek().typ == tokComma {
			p.advance()
			continue
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func opSymbol(t tokenType) string {
	switch t {
	case tokPlus:
		return "+"
	case tokMinus:
		return "-"
	case tokStar:
		return "*"
	case tokSlash:
		return "/"
	case tokPercent:
		return "%"
	case tokPow:
		return "^"
	}
	return strings.TrimSpace(t.String())
}
