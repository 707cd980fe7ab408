package parser

import (
	"fmt"
	"strconv"

	"github.com/allium-lang/allium/internal/ast"
	"github.com/allium-lang/allium/internal/lexer"
)

// ParserError is a parse failure at a source position.
type ParserError struct {
	Message string
	Pos     ast.Pos
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Parser parses Allium source code into a surface AST
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []error
}

// New creates a new Parser
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []error{},
	}
	// Read two tokens so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the list of parse errors encountered
func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) pos() ast.Pos {
	return ast.Pos{Line: p.curToken.Line, Column: p.curToken.Column, File: p.curToken.File}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, &ParserError{
		Message: fmt.Sprintf(format, args...),
		Pos:     p.pos(),
	})
}

// expect consumes the current token if it has the given type, reporting an
// error otherwise. Returns the consumed token.
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.curToken
	if tok.Type != tt {
		p.errorf("expected %s, found %s", tt, tok.Type)
	}
	p.nextToken()
	return tok
}

// Parse parses a complete program.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	for p.curToken.Type != lexer.EOF {
		switch p.curToken.Type {
		case lexer.TYPE:
			if t := p.parseTypeDef(); t != nil {
				prog.Types = append(prog.Types, t)
			}
		case lexer.EFFECT:
			if e := p.parseEffectDef(); e != nil {
				prog.Effects = append(prog.Effects, e)
			}
		case lexer.PRED:
			if pd := p.parsePredDef(); pd != nil {
				prog.Predicates = append(prog.Predicates, pd)
			}
		default:
			p.errorf("expected a type, effect, or pred definition, found %s", p.curToken.Type)
			p.nextToken()
		}
	}
	return prog
}

func (p *Parser) parseTypeDef() *ast.TypeDef {
	pos := p.pos()
	p.expect(lexer.TYPE)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LBRACE)

	td := &ast.TypeDef{Name: name.Literal, Pos: pos}
	for p.curToken.Type == lexer.CTOR {
		ctorPos := p.pos()
		p.nextToken()
		ctorName := p.expect(lexer.IDENT)
		var params []string
		if p.curToken.Type == lexer.LPAREN {
			p.nextToken()
			for {
				params = append(params, p.expect(lexer.IDENT).Literal)
				if p.curToken.Type != lexer.COMMA {
					break
				}
				p.nextToken()
			}
			p.expect(lexer.RPAREN)
		}
		p.expect(lexer.SEMICOLON)
		td.Ctors = append(td.Ctors, &ast.CtorDecl{Name: ctorName.Literal, Params: params, Pos: ctorPos})
	}
	p.expect(lexer.RBRACE)
	return td
}

func (p *Parser) parseEffectDef() *ast.EffectDef {
	pos := p.pos()
	p.expect(lexer.EFFECT)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LBRACE)

	ed := &ast.EffectDef{Name: name.Literal, Pos: pos}
	for p.curToken.Type == lexer.CTOR {
		ctorPos := p.pos()
		p.nextToken()
		ctorName := p.expect(lexer.IDENT)
		var params []*ast.ParamDecl
		if p.curToken.Type == lexer.LPAREN {
			p.nextToken()
			for {
				params = append(params, p.parseParam())
				if p.curToken.Type != lexer.COMMA {
					break
				}
				p.nextToken()
			}
			p.expect(lexer.RPAREN)
		}
		p.expect(lexer.SEMICOLON)
		ed.Ctors = append(ed.Ctors, &ast.EffectCtorDecl{Name: ctorName.Literal, Params: params, Pos: ctorPos})
	}
	p.expect(lexer.RBRACE)
	return ed
}

func (p *Parser) parseParam() *ast.ParamDecl {
	pos := p.pos()
	inputOnly := false
	if p.curToken.Type == lexer.IN {
		inputOnly = true
		p.nextToken()
	}
	name := p.expect(lexer.IDENT)
	return &ast.ParamDecl{Type: name.Literal, InputOnly: inputOnly, Pos: pos}
}

func (p *Parser) parsePredDef() *ast.PredDef {
	pos := p.pos()
	p.expect(lexer.PRED)
	name := p.expect(lexer.IDENT)

	pd := &ast.PredDef{Name: name.Literal, Pos: pos}
	if p.curToken.Type == lexer.LPAREN {
		p.nextToken()
		for {
			pd.Params = append(pd.Params, p.parseParam())
			if p.curToken.Type != lexer.COMMA {
				break
			}
			p.nextToken()
		}
		p.expect(lexer.RPAREN)
	}
	if p.curToken.Type == lexer.COLON {
		p.nextToken()
		for {
			effPos := p.pos()
			eff := p.expect(lexer.IDENT)
			pd.Effects = append(pd.Effects, &ast.EffectRef{Name: eff.Literal, Pos: effPos})
			if p.curToken.Type != lexer.COMMA {
				break
			}
			p.nextToken()
		}
	}
	p.expect(lexer.LBRACE)
	for p.curToken.Type != lexer.RBRACE && p.curToken.Type != lexer.EOF {
		if p.curToken.Type == lexer.HANDLE {
			if h := p.parseHandler(); h != nil {
				pd.Handlers = append(pd.Handlers, h)
			}
			continue
		}
		if impl := p.parseImplication(); impl != nil {
			pd.Impls = append(pd.Impls, impl)
		}
	}
	p.expect(lexer.RBRACE)
	return pd
}

func (p *Parser) parseImplication() *ast.Implication {
	pos := p.pos()
	head := p.parsePredRef()
	p.expect(lexer.IMPLIES)
	body := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	if head == nil || body == nil {
		return nil
	}
	return &ast.Implication{Head: head, Body: body, Pos: pos}
}

func (p *Parser) parseHandler() *ast.HandlerDef {
	pos := p.pos()
	p.expect(lexer.HANDLE)
	eff := p.expect(lexer.IDENT)
	p.expect(lexer.LBRACE)

	h := &ast.HandlerDef{Effect: eff.Literal, Pos: pos}
	for p.curToken.Type != lexer.RBRACE && p.curToken.Type != lexer.EOF {
		implPos := p.pos()
		ctorName := p.expect(lexer.IDENT)
		var args []ast.Value
		if p.curToken.Type == lexer.LPAREN {
			p.nextToken()
			args = p.parseValueList()
			p.expect(lexer.RPAREN)
		}
		p.expect(lexer.IMPLIES)
		body := p.parseExpr()
		p.expect(lexer.SEMICOLON)
		if body == nil {
			continue
		}
		h.Impls = append(h.Impls, &ast.EffectImplication{
			Ctor: ctorName.Literal,
			Args: args,
			Body: body,
			Pos:  implPos,
		})
	}
	p.expect(lexer.RBRACE)
	return h
}

func (p *Parser) parsePredRef() *ast.PredRef {
	pos := p.pos()
	name := p.expect(lexer.IDENT)
	ref := &ast.PredRef{Name: name.Literal, Pos: pos}
	if p.curToken.Type == lexer.LPAREN {
		p.nextToken()
		ref.Args = p.parseValueList()
		p.expect(lexer.RPAREN)
	}
	return ref
}

// parseValueList parses a possibly empty comma-separated list of values,
// stopping before the closing paren.
func (p *Parser) parseValueList() []ast.Value {
	if p.curToken.Type == lexer.RPAREN {
		return nil
	}
	var values []ast.Value
	for {
		v := p.parseValue()
		if v == nil {
			return values
		}
		values = append(values, v)
		if p.curToken.Type != lexer.COMMA {
			return values
		}
		p.nextToken()
	}
}

func (p *Parser) parseValue() ast.Value {
	pos := p.pos()
	switch p.curToken.Type {
	case lexer.LET:
		p.nextToken()
		name := p.expect(lexer.IDENT)
		return &ast.BindingValue{Name: name.Literal, Pos: pos}
	case lexer.IDENT:
		name := p.curToken.Literal
		p.nextToken()
		if name == "_" {
			return &ast.AnonymousValue{Pos: pos}
		}
		nv := &ast.NamedValue{Name: name, Pos: pos}
		if p.curToken.Type == lexer.LPAREN {
			p.nextToken()
			nv.Args = p.parseValueList()
			p.expect(lexer.RPAREN)
		}
		return nv
	case lexer.STRING:
		lit := p.curToken.Literal
		p.nextToken()
		return &ast.StringValue{Value: lit, Pos: pos}
	case lexer.INT:
		lit := p.curToken.Literal
		p.nextToken()
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			p.errorf("integer literal %q out of range", lit)
		}
		return &ast.IntValue{Value: n, Pos: pos}
	default:
		p.errorf("expected a value, found %s", p.curToken.Type)
		p.nextToken()
		return nil
	}
}

// parseExpr parses a conjunction of terms. Conjunction is right-associative;
// a `do` term captures the remainder of the conjunction as its continuation.
func (p *Parser) parseExpr() ast.Expr {
	pos := p.pos()
	left := p.parseTerm()
	if left == nil {
		return nil
	}
	if p.curToken.Type != lexer.COMMA {
		return left
	}
	p.nextToken()
	right := p.parseExpr()
	if right == nil {
		return left
	}
	if d, ok := left.(*ast.DoExpr); ok {
		d.Cont = right
		return d
	}
	return &ast.Conjunction{Left: left, Right: right, Pos: pos}
}

func (p *Parser) parseTerm() ast.Expr {
	pos := p.pos()
	switch p.curToken.Type {
	case lexer.TRUE:
		p.nextToken()
		return &ast.TruthLiteral{Value: true, Pos: pos}
	case lexer.FALSE:
		p.nextToken()
		return &ast.TruthLiteral{Value: false, Pos: pos}
	case lexer.CONTINUE:
		p.nextToken()
		return &ast.ContinueExpr{Pos: pos}
	case lexer.DO:
		p.nextToken()
		ctorName := p.expect(lexer.IDENT)
		d := &ast.DoExpr{Ctor: ctorName.Literal, Pos: pos}
		if p.curToken.Type == lexer.LPAREN {
			p.nextToken()
			d.Args = p.parseValueList()
			p.expect(lexer.RPAREN)
		}
		return d
	case lexer.IDENT:
		return p.parsePredRef()
	default:
		p.errorf("expected an expression, found %s", p.curToken.Type)
		p.nextToken()
		return nil
	}
}
