package parser

import (
	"fmt"
	"strconv"

	"flux/internal/ast"
	"flux/internal/lexer"
	"flux/internal/token"
)

// Parser turns transformer source text into an ast.Transformer. Parsing is
// all-or-nothing: any syntax error abandons the parse with no partial tree.
type Parser struct {
	l      *lexer.Lexer
	src    string // source code here
	errors []string

	curToken  token.Token
	peekToken token.Token
}

func New(l *lexer.Lexer, source string) *Parser {
	p := &Parser{
		l:      l,
		src:    source,
		errors: []string{},
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse is the host-facing entry point: source text in, transformer or
// positioned errors out.
func Parse(source string) (*ast.Transformer, []string) {
	p := New(lexer.New(source), source)
	t := p.ParseTransformer()
	if len(p.Errors()) != 0 {
		return nil, p.Errors()
	}
	return t, nil
}

// ParseExpression parses a single bare expression, used by hosts building a
// semi-global environment from expression snippets.
func ParseExpression(source string) (ast.ValueExpr, []string) {
	p := New(lexer.New(source), source)
	expr := p.parseExpression()
	if expr != nil && !p.peekTokenIs(token.EOF) {
		p.addError("unexpected %s after expression", p.peekToken.Type)
	}
	if len(p.Errors()) != 0 {
		return nil, p.Errors()
	}
	return expr, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) addError(message string, args ...interface{}) {
	line, col := GetLineAndColumn(p.src, p.curToken.Position)
	m := fmt.Sprintf(message, args...)
	msg := fmt.Sprintf("[%3d:%2d] %s", line, col, m)
	p.errors = append(p.errors, msg)
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError("expected next token to be %s, got %s instead", t, p.peekToken.Type)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

func (p *Parser) Errors() []string {
	return p.errors
}

// ParseTransformer parses one or more dictionary blocks, concatenating their
// modifiers into a single flat sequence in encounter order.
func (p *Parser) ParseTransformer() *ast.Transformer {
	t := &ast.Transformer{}
	t.Modifiers = []*ast.Modifier{}

	if !p.curTokenIs(token.LBRACE) {
		p.addError("expected '{' to open a dictionary block, got %s instead", p.curToken.Type)
		return nil
	}

	for p.curTokenIs(token.LBRACE) {
		mods := p.parseDictBlock()
		if mods == nil {
			return nil
		}
		t.Modifiers = append(t.Modifiers, mods...)
		p.nextToken()
	}

	if !p.curTokenIs(token.EOF) {
		p.addError("unexpected %s after transformer", p.curToken.Type)
		return nil
	}

	return t
}

func (p *Parser) parseDictBlock() []*ast.Modifier {
	mods := []*ast.Modifier{}

	// curToken is '{'
	p.nextToken()

	for {
		mod := p.parseModifier()
		if mod == nil {
			return nil
		}
		mods = append(mods, mod)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}

	return mods
}

func (p *Parser) parseModifier() *ast.Modifier {
	if !p.curTokenIs(token.IDENT) {
		p.addError("expected modifier key, got %s instead", p.curToken.Type)
		return nil
	}

	mod := &ast.Modifier{Token: p.curToken, Key: p.curToken.Literal}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}

	p.nextToken()

	mod.Value = p.parseExpression()
	if mod.Value == nil {
		return nil
	}

	return mod
}

// parseExpression is the additive level: a left-associative chain of terms,
// so a + b - c folds into ((a + b) - c).
func (p *Parser) parseExpression() ast.ValueExpr {
	left := p.parseTerm()
	if left == nil {
		return nil
	}

	for p.peekTokenIs(token.PLUS) || p.peekTokenIs(token.MINUS) {
		p.nextToken()
		op := p.curToken
		p.nextToken()

		right := p.parseTerm()
		if right == nil {
			return nil
		}

		left = &ast.InfixExpression{
			Token:    op,
			Left:     left,
			Operator: op.Literal,
			Right:    right,
		}
	}

	return left
}

// parseTerm is the multiplicative level, folding left the same way: a*b/c
// becomes ((a * b) / c).
func (p *Parser) parseTerm() ast.ValueExpr {
	left := p.parseAtom()
	if left == nil {
		return nil
	}

	for p.peekTokenIs(token.ASTERISK) || p.peekTokenIs(token.SLASH) {
		p.nextToken()
		op := p.curToken
		p.nextToken()

		right := p.parseAtom()
		if right == nil {
			return nil
		}

		left = &ast.InfixExpression{
			Token:    op,
			Left:     left,
			Operator: op.Literal,
			Right:    right,
		}
	}

	return left
}

func (p *Parser) parseAtom() ast.ValueExpr {
	switch p.curToken.Type {
	case token.LPAREN:
		return p.parseGroupedExpression()
	case token.NUMBER:
		return p.parseNumberLiteral()
	case token.STRING:
		return p.parseStringLiteral()
	case token.INT:
		return p.parseIntegerLiteral()
	case token.TRUE, token.FALSE:
		return p.parseBooleanLiteral()
	case token.OSC:
		return p.parseOscExpression()
	case token.RANGE:
		return p.parseRangeExpression()
	case token.THIS:
		return p.parseThisRef()
	case token.IDENT:
		return p.parseSemiGlobalRef()
	default:
		p.addError("unexpected %s, expected an expression", p.curToken.Type)
		return nil
	}
}

// parseArg is the restricted atom set permitted as a direct osc/range
// argument: bare osc/range forms are excluded, so nesting an oscillator or
// range requires explicit parentheses.
func (p *Parser) parseArg() ast.ValueExpr {
	switch p.curToken.Type {
	case token.LPAREN:
		return p.parseGroupedExpression()
	case token.NUMBER:
		return p.parseNumberLiteral()
	case token.STRING:
		return p.parseStringLiteral()
	case token.INT:
		return p.parseIntegerLiteral()
	case token.TRUE, token.FALSE:
		return p.parseBooleanLiteral()
	case token.THIS:
		return p.parseThisRef()
	case token.IDENT:
		return p.parseSemiGlobalRef()
	default:
		p.addError("unexpected %s as argument; wrap nested expressions in parentheses", p.curToken.Type)
		return nil
	}
}

func (p *Parser) parseGroupedExpression() ast.ValueExpr {
	p.nextToken()

	exp := p.parseExpression()
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseNumberLiteral() ast.ValueExpr {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as number", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseIntegerLiteral() ast.ValueExpr {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 0, 64)
	if err != nil {
		p.addError("could not parse %q as integer", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.ValueExpr {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.ValueExpr {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseThisRef() ast.ValueExpr {
	ref := &ast.ThisRef{Token: p.curToken}

	if !p.expectPeek(token.PERIOD) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}

	ref.Name = p.curToken.Literal
	return ref
}

func (p *Parser) parseSemiGlobalRef() ast.ValueExpr {
	return &ast.SemiGlobalRef{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseOscExpression() ast.ValueExpr {
	osc := &ast.OscExpression{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()

	osc.Freq = p.parseArg()
	if osc.Freq == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return osc
}

func (p *Parser) parseRangeExpression() ast.ValueExpr {
	rng := &ast.RangeExpression{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()

	rng.Lo = p.parseArg()
	if rng.Lo == nil {
		return nil
	}

	if !p.expectPeek(token.COMMA) {
		return nil
	}
	p.nextToken()

	rng.Hi = p.parseArg()
	if rng.Hi == nil {
		return nil
	}

	if !p.expectPeek(token.COMMA) {
		return nil
	}
	p.nextToken()

	rng.X = p.parseArg()
	if rng.X == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return rng
}

func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i == pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}
