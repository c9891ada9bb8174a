package expr

import (
	"fmt"
	"strconv"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPow
	tokLParen
	tokRParen
	tokComma
)

var tokenNames = map[tokenType]string{
	tokEOF:     "end of input",
	tokNumber:  "number",
	tokIdent:   "identifier",
	tokPlus:    "'+'",
	tokMinus:   "'-'",
	tokStar:    "'*'",
	tokSlash:   "'/'",
	tokPercent: "'%'",
	tokPow:     "'^'",
	tokLParen:  "'('",
	tokRParen:  "')'",
	tokComma:   "','",
}

func (t tokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type token struct {
	typ    tokenType
	lexeme string
	num    float64
	pos    int // 1-based column
}

type lexer struct {
	src string
	cur int
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// tokenize scans the whole source. Whitespace separates tokens and is
// otherwise ignored.
func tokenize(src string) ([]token, error) {
	l := &lexer{src: src}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) peekAt(off int) (byte, bool) {
	i := l.cur + off
	if i >= len(l.src) {
		return 0, false
	}
	return l.src[i], true
}

func (l *lexer) errAt(pos int, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (token, error) {
	for l.cur < len(l.src) {
		switch l.src[l.cur] {
		case ' ', '\t', '\r', '\n':
			l.cur++
			continue
		}
		break
	}
	start := l.cur
	pos := start + 1
	if l.cur >= len(l.src) {
		return token{typ: tokEOF, pos: pos}, nil
	}

	ch := l.src[l.cur]
	single := func(tt tokenType) (token, error) {
		l.cur++
		return token{typ: tt, lexeme: l.src[start:l.cur], pos: pos}, nil
	}

	switch {
	case ch == '+':
		return single(tokPlus)
	case ch == '-':
		return single(tokMinus)
	case ch == '*':
		if b, ok := l.peekAt(1); ok && b == '*' {
			l.cur += 2
			return token{typ: tokPow, lexeme: "**", pos: pos}, nil
		}
		return single(tokStar)
	case ch == '/':
		return single(tokSlash)
	case ch == '%':
		return single(tokPercent)
	case ch == '^':
		return single(tokPow)
	case ch == '(':
		return single(tokLParen)
	case ch == ')':
		return single(tokRParen)
	case ch == ',':
		return single(tokComma)
	case isDigit(ch) || ch == '.':
		return l.scanNumber(start)
	case isAlpha(ch):
		for l.cur < len(l.src) && isAlphaNum(l.src[l.cur]) {
			l.cur++
		}
		return token{typ: tokIdent, lexeme: l.src[start:l.cur], pos: pos}, nil
	}
	return token{}, l.errAt(pos, "unexpected character %q", ch)
}

// scanNumber accepts 12, 1.5, .5, 5., 1e3, 2.5E-4.
func (l *lexer) scanNumber(start int) (token, error) {
	digits := 0
	for l.cur < len(l.src) && isDigit(l.src[l.cur]) {
		l.cur++
		digits++
	}
	if b, ok := l.peekAt(0); ok && b == '.' {
		l.cur++
		for l.cur < len(l.src) && isDigit(l.src[l.cur]) {
			l.cur++
			digits++
		}
	}
	if digits == 0 {
		return token{}, l.errAt(start+1, "malformed number %q", l.src[start:l.cur])
	}
	if b, ok := l.peekAt(0); ok && (b == 'e' || b == 'E') {
		save := l.cur
		l.cur++
		if s, ok := l.peekAt(0); ok && (s == '+' || s == '-') {
			l.cur++
		}
		expDigits := 0
		for l.cur < len(l.src) && isDigit(l.src[l.cur]) {
			l.cur++
			expDigits++
		}
		if expDigits == 0 {
			// "2e" followed by something else: leave the 'e' for the parser,
			// which will then reject the juxtaposition.
			l.cur = save
		}
	}
	lex := l.src[start:l.cur]
	v, err := strconv.ParseFloat(lex, 64)
	if err != nil {
		return token{}, l.errAt(start+1, "malformed number %q", lex)
	}
	return token{typ: tokNumber, lexeme: lex, num: v, pos: start + 1}, nil
}
