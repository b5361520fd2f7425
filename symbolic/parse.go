package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// ============================================================
// Parser
// ============================================================
//
// Grammar (lowest to highest precedence):
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary | power }   // juxtaposition multiplies
//	unary   = ("-" | "+") unary | power
//	power   = primary [ ("^" | "**") unary ]        // right associative
//	primary = number | name | name "(" expr ")" | "(" expr ")"
//
// Names pi, E and I are constants; log is the natural logarithm and
// sqrt(u) is u^(1/2).

// ParseError locates a syntax error in the input.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s at offset %d", e.Input, e.Msg, e.Pos)
}

const maxParseDepth = 256

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	src   string
	toks  []token
	i     int
	depth int
}

// Parse converts text into a simplified expression.
func Parse(src string) (Expr, error) {
	p := &parser{src: src}
	if err := p.lex(); err != nil {
		return nil, err
	}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(0, "empty expression")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t.pos, "unexpected %q", t.text)
	}
	return e.Simplify(), nil
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) errorf(pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Input: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) lex() error {
	s := p.src
	i := 0
	for i < len(s) {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case isDigit(s[i]) || (s[i] == '.' && i+1 < len(s) && isDigit(s[i+1])):
			start := i
			for i < len(s) && isDigit(s[i]) {
				i++
			}
			if i < len(s) && s[i] == '.' {
				i++
				for i < len(s) && isDigit(s[i]) {
					i++
				}
			}
			if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
				j := i + 1
				if j < len(s) && (s[j] == '+' || s[j] == '-') {
					j++
				}
				if j < len(s) && isDigit(s[j]) {
					i = j
					for i < len(s) && isDigit(s[i]) {
						i++
					}
				}
			}
			p.toks = append(p.toks, token{kind: tokNum, text: s[start:i], pos: start})
		case c == '_' || unicode.IsLetter(c):
			start := i
			for i < len(s) && (s[i] == '_' || isDigit(s[i]) || unicode.IsLetter(rune(s[i]))) {
				i++
			}
			p.toks = append(p.toks, token{kind: tokIdent, text: s[start:i], pos: start})
		case strings.HasPrefix(s[i:], "**"):
			p.toks = append(p.toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.ContainsRune("+-*/^(),", c):
			p.toks = append(p.toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		default:
			return p.errorf(i, "unexpected character %q", c)
		}
	}
	p.toks = append(p.toks, token{kind: tokEOF, pos: len(s)})
	return nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (p *parser) peek() token { return p.toks[p.i] }
func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			right = MulOf(N(-1), right)
		}
		left = AddOf(left, right)
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var right Expr
		switch t := p.peek(); {
		case p.isOp("*") || p.isOp("/"):
			p.next()
			if right, err = p.parseUnary(); err != nil {
				return nil, err
			}
			if t.text == "/" {
				right = PowOf(right, N(-1))
			}
		case t.kind == tokNum || t.kind == tokIdent || p.isOp("("):
			if right, err = p.parsePower(); err != nil {
				return nil, err
			}
		default:
			return left, nil
		}
		left = MulOf(left, right)
	}
}

func (p *parser) parseUnary() (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxParseDepth {
		return nil, p.errorf(p.peek().pos, "expression nested too deeply")
	}
	switch {
	case p.isOp("-"):
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return MulOf(N(-1), operand), nil
	case p.isOp("+"):
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, p.errorf(t.pos, "malformed number %q", t.text)
		}
		return &Num{val: r}, nil
	case tokIdent:
		if p.isOp("(") {
			return p.parseCall(t)
		}
		if c, ok := constByName(t.text); ok {
			return c, nil
		}
		if t.text == "oo" {
			return Infinity(1), nil
		}
		if _, isFunc := knownFuncs[t.text]; isFunc || t.text == "log" || t.text == "sqrt" {
			return nil, p.errorf(t.pos, "function %s needs an argument", t.text)
		}
		return S(t.text), nil
	case tokOp:
		if t.text == "(" {
			inner, err := p.parseParenTail()
			if err != nil {
				return nil, err
			}
			return inner, nil
		}
		return nil, p.errorf(t.pos, "unexpected %q", t.text)
	}
	return nil, p.errorf(t.pos, "unexpected end of input")
}

func (p *parser) parseCall(name token) (Expr, error) {
	var build func(Expr) Expr
	switch name.text {
	case "log":
		build = LnOf
	case "sqrt":
		build = SqrtOf
	default:
		ctor, ok := knownFuncs[name.text]
		if !ok {
			return nil, p.errorf(name.pos, "unknown function %q", name.text)
		}
		build = ctor
	}
	p.next() // (
	arg, err := p.parseParenTail()
	if err != nil {
		return nil, err
	}
	return build(arg), nil
}

// parseParenTail parses "expr )" after an opening parenthesis.
func (p *parser) parseParenTail() (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxParseDepth {
		return nil, p.errorf(p.peek().pos, "expression nested too deeply")
	}
	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.isOp(",") {
		return nil, p.errorf(p.peek().pos, "functions take a single argument")
	}
	if !p.isOp(")") {
		return nil, p.errorf(p.peek().pos, "expected \")\"")
	}
	p.next()
	return inner, nil
}
