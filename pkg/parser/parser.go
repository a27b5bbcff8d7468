// Package parser builds LKQL syntax trees from a token stream.
package parser

import (
	"fmt"

	"github.com/HugoGGuerrier/lkql-jit/pkg/ast"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
	"github.com/HugoGGuerrier/lkql-jit/pkg/lexer"
)

// Parser is a recursive-descent parser over the lexer's token stream with
// one token of lookahead.
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token
}

func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Prime cur and peek.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse consumes the whole input and returns the top-level statement list.
func Parse(src string) (ast.Node, error) {
	return NewParser(lexer.NewLexer(src)).ParseScript()
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) syntaxError(tok lexer.Token, format string, args ...interface{}) error {
	return &errors.SyntaxError{
		Position: tokenPos(tok),
		Msg:      fmt.Sprintf(format, args...),
	}
}

func tokenPos(tok lexer.Token) errors.Position {
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
	}
}

func (p *Parser) node(kind ast.Kind, text string, tok lexer.Token, kids ...ast.Node) *ast.Tree {
	n := ast.NewTree(kind, text, kids...)
	n.Position = tokenPos(tok)
	return n
}

// ParseScript parses statements until end of input.
func (p *Parser) ParseScript() (ast.Node, error) {
	root := p.node(ast.KindTopLevelList, "", p.cur)
	for p.cur.Type != lexer.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		root.Kids = append(root.Kids, stmt)
	}
	return root, nil
}

func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.VAL:
		return p.parseValDecl()
	case lexer.FUN:
		return p.parseFunDecl()
	default:
		return p.parseExpression()
	}
}

// parseValDecl parses `val name = expr`.
func (p *Parser) parseValDecl() (ast.Node, error) {
	valTok := p.cur
	p.nextToken()
	if p.cur.Type != lexer.IDENT {
		return nil, p.syntaxError(p.cur, "expected a name after 'val', got %q", p.cur.Literal)
	}
	name := p.node(ast.KindIdentifier, p.cur.Literal, p.cur)
	p.nextToken()
	if p.cur.Type != lexer.ASSIGN {
		return nil, p.syntaxError(p.cur, "expected '=' in value declaration")
	}
	p.nextToken()
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return p.node(ast.KindValDecl, "", valTok, name, init), nil
}

// parseFunDecl parses `fun name(params) = expr`, which is shorthand for
// binding an anonymous function to a name.
func (p *Parser) parseFunDecl() (ast.Node, error) {
	funTok := p.cur
	p.nextToken()
	if p.cur.Type != lexer.IDENT {
		return nil, p.syntaxError(p.cur, "expected a name after 'fun', got %q", p.cur.Literal)
	}
	name := p.node(ast.KindIdentifier, p.cur.Literal, p.cur)
	p.nextToken()
	if p.cur.Type != lexer.LPAREN {
		return nil, p.syntaxError(p.cur, "expected '(' after the function name")
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.ASSIGN {
		return nil, p.syntaxError(p.cur, "expected '=' before the function body")
	}
	p.nextToken()
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	fn := p.node(ast.KindAnonFunction, "", funTok, params, body)
	return p.node(ast.KindValDecl, "", funTok, name, fn), nil
}

// parseExpression parses a primary expression and any call suffixes.
func (p *Parser) parseExpression() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.LPAREN {
		expr, err = p.parseCall(expr)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.TRUE:
		n := p.node(ast.KindBoolTrue, p.cur.Literal, p.cur)
		p.nextToken()
		return n, nil
	case lexer.FALSE:
		n := p.node(ast.KindBoolFalse, p.cur.Literal, p.cur)
		p.nextToken()
		return n, nil
	case lexer.INT:
		n := p.node(ast.KindInteger, p.cur.Literal, p.cur)
		p.nextToken()
		return n, nil
	case lexer.STRING:
		n := p.node(ast.KindString, p.cur.Literal, p.cur)
		p.nextToken()
		return n, nil
	case lexer.PATTERN:
		n := p.node(ast.KindPattern, p.cur.Literal, p.cur)
		p.nextToken()
		return n, nil
	case lexer.IDENT:
		n := p.node(ast.KindIdentifier, p.cur.Literal, p.cur)
		p.nextToken()
		return n, nil
	case lexer.LPAREN:
		return p.parseParenthesized()
	case lexer.ILLEGAL:
		return nil, p.syntaxError(p.cur, "unexpected character %q", p.cur.Literal)
	default:
		return nil, p.syntaxError(p.cur, "unexpected token %q", p.cur.Literal)
	}
}

// parseParenthesized disambiguates the three constructs opening with '(':
// the unit literal `()`, a parenthesized expression `(e)`, and an anonymous
// function `(a, b) => e`.
func (p *Parser) parseParenthesized() (ast.Node, error) {
	open := p.cur

	// `()` is unit unless an arrow follows.
	if p.peek.Type == lexer.RPAREN {
		p.nextToken() // onto ')'
		p.nextToken() // past ')'
		if p.cur.Type == lexer.ARROW {
			params := p.node(ast.KindParamList, "", open)
			return p.parseArrowBody(open, params)
		}
		return p.node(ast.KindUnit, "()", open), nil
	}

	first, err := func() (ast.Node, error) {
		p.nextToken() // past '('
		return p.parseExpression()
	}()
	if err != nil {
		return nil, err
	}

	// A comma can only be a parameter list; a lone ')' is a grouping unless
	// an arrow follows.
	if p.cur.Type == lexer.RPAREN && p.peek.Type != lexer.ARROW {
		p.nextToken()
		return first, nil
	}

	params := p.node(ast.KindParamList, "", open)
	if first.Kind() != ast.KindIdentifier {
		return nil, p.syntaxError(open, "expected parameter names in function literal")
	}
	params.Kids = append(params.Kids, first)
	for p.cur.Type == lexer.COMMA {
		p.nextToken()
		if p.cur.Type != lexer.IDENT {
			return nil, p.syntaxError(p.cur, "expected a parameter name, got %q", p.cur.Literal)
		}
		params.Kids = append(params.Kids, p.node(ast.KindIdentifier, p.cur.Literal, p.cur))
		p.nextToken()
	}
	if p.cur.Type != lexer.RPAREN {
		return nil, p.syntaxError(p.cur, "expected ')' after parameters")
	}
	p.nextToken()
	if p.cur.Type != lexer.ARROW {
		return nil, p.syntaxError(p.cur, "expected '=>' after the parameter list")
	}
	return p.parseArrowBody(open, params)
}

// parseArrowBody parses the expression after '=>'. cur is the arrow.
func (p *Parser) parseArrowBody(open lexer.Token, params *ast.Tree) (ast.Node, error) {
	p.nextToken()
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return p.node(ast.KindAnonFunction, "", open, params, body), nil
}

// parseParamList parses `(a, b, c)` in a fun declaration. cur is '('.
func (p *Parser) parseParamList() (*ast.Tree, error) {
	params := p.node(ast.KindParamList, "", p.cur)
	p.nextToken()
	for p.cur.Type != lexer.RPAREN {
		if p.cur.Type != lexer.IDENT {
			return nil, p.syntaxError(p.cur, "expected a parameter name, got %q", p.cur.Literal)
		}
		params.Kids = append(params.Kids, p.node(ast.KindIdentifier, p.cur.Literal, p.cur))
		p.nextToken()
		if p.cur.Type == lexer.COMMA {
			p.nextToken()
			continue
		}
		if p.cur.Type != lexer.RPAREN {
			return nil, p.syntaxError(p.cur, "expected ',' or ')' in parameter list")
		}
	}
	p.nextToken() // past ')'
	return params, nil
}

// parseCall parses an argument list applied to callee. cur is '('.
func (p *Parser) parseCall(callee ast.Node) (ast.Node, error) {
	open := p.cur
	args := p.node(ast.KindArgList, "", open)
	p.nextToken()
	for p.cur.Type != lexer.RPAREN {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args.Kids = append(args.Kids, arg)
		if p.cur.Type == lexer.COMMA {
			p.nextToken()
			continue
		}
		if p.cur.Type != lexer.RPAREN {
			return nil, p.syntaxError(p.cur, "expected ',' or ')' in argument list")
		}
	}
	p.nextToken() // past ')'
	return p.node(ast.KindFunCall, "", open, callee, args), nil
}
