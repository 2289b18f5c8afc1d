package compile

import (
	"fmt"
	"strconv"
)

type parser struct {
	tokens []token
	pos    int
}

func newParser(tokens []token) *parser {
	p := &parser{tokens: tokens}
	p.skipNewlines()
	return p
}

func parseProgram(src string) ([]Node, error) {
	p := newParser(newLexer(src).scan())
	var stmts []Node
	for !p.check(tEOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipStatementSeparators()
	}
	return stmts, nil
}

func (p *parser) statement() (Node, error) {
	if p.check(tAbort) {
		p.advance()
		return Abort{}, nil
	}

	start := p.pos
	if target, ok := p.tryParseAssignTarget(); ok {
		if p.check(tComma) {
			p.advance()
			errTarget, ok := p.tryParseAssignTarget()
			if !ok {
				return nil, p.errorf("expected error target after ','")
			}
			if err := p.expect(tEqual); err != nil {
				return nil, err
			}
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			return Assign{Target: target, ErrTarget: errTarget, Infallible: true, Value: value}, nil
		}
		if p.check(tEqual) {
			p.advance()
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			return Assign{Target: target, Value: value}, nil
		}
		p.pos = start
	}

	return p.expression()
}

// tryParseAssignTarget speculatively parses a PathExpr or VarExpr;
// callers roll back p.pos if it turns out not to be followed by '='
// or ','.
func (p *parser) tryParseAssignTarget() (Node, bool) {
	switch {
	case p.check(tDot):
		segs := p.parsePathSegments()
		return PathExpr{Segments: segs}, true
	case p.check(tAt):
		p.advance()
		ident := p.advance().text
		segs := p.parsePathSegments()
		return VarExpr{Ident: ident, Segments: segs}, true
	default:
		return nil, false
	}
}

func (p *parser) skipStatementSeparators() {
	for p.check(tNewline) || p.check(tSemicolon) {
		p.advance()
	}
}

func (p *parser) skipNewlines() {
	for p.check(tNewline) {
		p.advance()
	}
}

// expression parses the full precedence chain: || > && > equality >
// comparison > additive > multiplicative > unary > primary.
func (p *parser) expression() (Node, error) {
	if p.check(tIf) {
		return p.ifExpr()
	}
	return p.or()
}

func (p *parser) ifExpr() (Node, error) {
	p.advance() // 'if'
	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	var els Node = LitNull{}
	if p.check(tElse) {
		p.advance()
		if p.check(tIf) {
			els, err = p.ifExpr()
		} else {
			els, err = p.block()
		}
		if err != nil {
			return nil, err
		}
	}
	return If{Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) block() (Node, error) {
	if err := p.expect(tLBrace); err != nil {
		return nil, err
	}
	p.skipNewlines()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if err := p.expect(tRBrace); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) or() (Node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.check(tOrOr) {
		p.advance()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) and() (Node, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.check(tAndAnd) {
		p.advance()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) equality() (Node, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.check(tEqualEqual) || p.check(tBangEqual) {
		op := p.advance()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op.text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) comparison() (Node, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.check(tLess) || p.check(tLessEqual) || p.check(tGreater) || p.check(tGreaterEqual) {
		op := p.advance()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op.text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) additive() (Node, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(tPlus) || p.check(tMinus) || p.check(tPipe) {
		op := p.advance()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		text := op.text
		if text == "|" {
			text = "merge"
		}
		left = Binary{Op: text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) multiplicative() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.check(tStar) || p.check(tSlash) || p.check(tPercent) {
		op := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op.text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (Node, error) {
	if p.check(tBang) || p.check(tMinus) {
		op := p.advance()
		expr, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op.text, Expr: expr}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tNumber:
		p.advance()
		return parseNumber(tok.text)
	case tString:
		p.advance()
		return LitString{Value: tok.text}, nil
	case tTrue:
		p.advance()
		return LitBool{Value: true}, nil
	case tFalse:
		p.advance()
		return LitBool{Value: false}, nil
	case tNull:
		p.advance()
		return LitNull{}, nil
	case tLParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case tLBracket:
		return p.arrayLit()
	case tLBrace:
		return p.objectLit()
	case tDot:
		return PathExpr{Segments: p.parsePathSegments()}, nil
	case tAt:
		p.advance()
		ident := p.advance().text
		return VarExpr{Ident: ident, Segments: p.parsePathSegments()}, nil
	case tIdent:
		p.advance()
		if p.check(tLParen) {
			return p.callArgs(tok.text)
		}
		return VarExpr{Ident: tok.text}, nil
	default:
		return nil, p.errorf("unexpected token %v", tok)
	}
}

func (p *parser) callArgs(name string) (Node, error) {
	p.advance() // '('
	var args []Node
	for !p.check(tRParen) {
		p.skipNewlines()
		if p.check(tRParen) {
			break
		}
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipNewlines()
		if p.check(tComma) {
			p.advance()
			p.skipNewlines()
		}
	}
	if err := p.expect(tRParen); err != nil {
		return nil, err
	}
	return Call{Name: name, Args: args}, nil
}

func (p *parser) arrayLit() (Node, error) {
	p.advance() // '['
	var elems []Node
	p.skipNewlines()
	for !p.check(tRBracket) {
		elem, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		p.skipNewlines()
		if p.check(tComma) {
			p.advance()
			p.skipNewlines()
		}
	}
	if err := p.expect(tRBracket); err != nil {
		return nil, err
	}
	return ArrayLit{Elements: elems}, nil
}

func (p *parser) objectLit() (Node, error) {
	p.advance() // '{'
	var keys []string
	var values []Node
	p.skipNewlines()
	for !p.check(tRBrace) {
		keyTok := p.peek()
		if keyTok.kind != tString && keyTok.kind != tIdent {
			return nil, p.errorf("expected object key, got %v", keyTok)
		}
		p.advance()
		if err := p.expect(tColon); err != nil {
			return nil, err
		}
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		keys = append(keys, keyTok.text)
		values = append(values, val)
		p.skipNewlines()
		if p.check(tComma) {
			p.advance()
			p.skipNewlines()
		}
	}
	if err := p.expect(tRBrace); err != nil {
		return nil, err
	}
	return ObjectLit{Keys: keys, Values: values}, nil
}

// parsePathSegments parses the run of .field / .(a|b) / [index]
// segments following the current '.' token.
func (p *parser) parsePathSegments() []PathSeg {
	var segs []PathSeg
	for p.check(tDot) || p.check(tLBracket) {
		if p.check(tDot) {
			p.advance()
			if p.check(tLParen) {
				p.advance()
				var fields []string
				fields = append(fields, p.advance().text)
				for p.check(tPipe) {
					p.advance()
					fields = append(fields, p.advance().text)
				}
				p.expect(tRParen)
				segs = append(segs, PathSeg{Kind: segCoalesce, Fields: fields})
				continue
			}
			segs = append(segs, PathSeg{Kind: segField, Field: p.advance().text})
			continue
		}
		// '['
		p.advance()
		neg := false
		if p.check(tMinus) {
			neg = true
			p.advance()
		}
		n := p.advance().text
		idx, _ := strconv.Atoi(n)
		if neg {
			idx = -idx
		}
		p.expect(tRBracket)
		segs = append(segs, PathSeg{Kind: segIndex, Index: idx})
	}
	return segs
}

func parseNumber(text string) (Node, error) {
	for _, c := range text {
		if c == '.' {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, err
			}
			return LitNumber{IsFloat: true, Float: f}, nil
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, err
	}
	return LitNumber{Int: n}, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) check(k tokenKind) bool { return p.peek().kind == k }

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind) error {
	if !p.check(k) {
		return p.errorf("expected token kind %d, got %v", k, p.peek())
	}
	p.advance()
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("compile: line %d: %s", p.peek().line, fmt.Sprintf(format, args...))
}
