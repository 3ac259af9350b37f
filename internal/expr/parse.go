package expr

import (
	"strconv"
	"unicode"

	"github.com/pkg/errors"
)

// Parse compiles the textual form of an expression.
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := ('-' | '+') unary | primary
//	primary := number | identifier | '(' expr ')'
func Parse(s string) (Expr, error) {
	p := &parser{src: s}
	p.next()
	e, err := p.parseExpr()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", s)
	}
	if p.tok.kind != tokEOF {
		return nil, errors.Errorf("parsing %q: unexpected %v at offset %d", s, p.tok, p.tok.pos)
	}

	return e, nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

type parser struct {
	src string
	off int
	tok token
}

func (p *parser) next() {
	for p.off < len(p.src) && unicode.IsSpace(rune(p.src[p.off])) {
		p.off++
	}

	start := p.off
	if p.off >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.src[p.off]
	switch {
	case isDigit(c) || c == '.':
		p.scanNumber()
		p.tok = token{kind: tokNumber, text: p.src[start:p.off], pos: start}
	case isIdentStart(c):
		for p.off < len(p.src) && isIdentPart(p.src[p.off]) {
			p.off++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.off], pos: start}
	case c == '+' || c == '-' || c == '*' || c == '/' || c == '(' || c == ')':
		p.off++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	default:
		p.off++
		p.tok = token{kind: tokInvalid, text: string(c), pos: start}
	}
}

func (p *parser) scanNumber() {
	for p.off < len(p.src) && (isDigit(p.src[p.off]) || p.src[p.off] == '.') {
		p.off++
	}

	// Exponent: e, E followed by optional sign and digits.
	if p.off < len(p.src) && (p.src[p.off] == 'e' || p.src[p.off] == 'E') {
		end := p.off + 1
		if end < len(p.src) && (p.src[end] == '+' || p.src[end] == '-') {
			end++
		}
		if end < len(p.src) && isDigit(p.src[end]) {
			for end < len(p.src) && isDigit(p.src[end]) {
				end++
			}
			p.off = end
		}
	}
}

func (p *parser) isOp(op string) bool {
	return p.tok.kind == tokOp && p.tok.text == op
}

func (p *parser) parseExpr() (Expr, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	terms := Sum{first}
	for p.isOp("+") || p.isOp("-") {
		negate := p.isOp("-")
		p.next()
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if negate {
			term = Negate{X: term}
		}
		terms = append(terms, term)
	}

	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *parser) parseTerm() (Expr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	factors := Product{first}
	for p.isOp("*") || p.isOp("/") {
		divide := p.isOp("/")
		p.next()
		factor, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if divide {
			factor = Reciprocal{X: factor}
		}
		factors = append(factors, factor)
	}

	if len(factors) == 1 {
		return first, nil
	}
	return factors, nil
}

func (p *parser) parseUnary() (Expr, error) {
	switch {
	case p.isOp("-"):
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Negate{X: x}, nil
	case p.isOp("+"):
		p.next()
		return p.parseUnary()
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.tok
	switch {
	case tok.kind == tokNumber:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, errors.Errorf("invalid number %q at offset %d", tok.text, tok.pos)
		}
		p.next()
		return Literal(v), nil
	case tok.kind == tokIdent:
		p.next()
		return Symbol(tok.text), nil
	case p.isOp("("):
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.isOp(")") {
			return nil, errors.Errorf("expected \")\" at offset %d, got %v", p.tok.pos, p.tok)
		}
		p.next()
		return e, nil
	}

	return nil, errors.Errorf("unexpected %v at offset %d", tok, tok.pos)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
