package core

import (
	"fmt"
	"strconv"
)

type checkpoint struct {
	state   tokenizerState
	current Token
}

// Parser is a recursive-descent parser over a single lookahead token.
type Parser struct {
	dialect    *Dialect
	tokenizer  *Tokenizer
	current    Token
	statements map[TokenKind]func() (Node, error)
}

func NewParser(dialect *Dialect) *Parser {
	p := &Parser{
		dialect:   dialect,
		tokenizer: NewTokenizer(dialect),
	}
	p.statements = map[TokenKind]func() (Node, error){
		LET:        p.parseVariableDeclaration,
		CONST:      p.parseVariableDeclaration,
		SEMICOLON:  p.parseEmptyStatement,
		OPEN_CURLY: p.parseBlockOrObject,
		FUNCTION:   p.parseFunctionStatement,
		IF:         p.parseIfStatement,
		WHILE:      p.parseWhileStatement,
		FOR:        p.parseForStatement,
		TRY:        p.parseTryCatchStatement,
		THROW:      p.parseThrowStatement,
		RETURN:     p.parseReturnStatement,
		BREAK:      p.parseBreakStatement,
		CONTINUE:   p.parseContinueStatement,
		IMPORT:     p.parseImportStatement,
		EXPORT:     p.parseExportStatement,
	}
	return p
}

// Parse turns source text into a Program.
func (p *Parser) Parse(source string) (*Program, error) {
	p.tokenizer.Init(source)
	tok, err := p.tokenizer.Next()
	if err != nil {
		return nil, err
	}
	p.current = tok

	program := &Program{Body: []Node{}}
	for p.current.Kind != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Body = append(program.Body, stmt)
	}
	return program, nil
}

func (p *Parser) checkpoint() checkpoint {
	return checkpoint{state: p.tokenizer.save(), current: p.current}
}

func (p *Parser) rewind(cp checkpoint) {
	p.tokenizer.restore(cp.state)
	p.current = cp.current
}

func (p *Parser) errorf(format string, args ...interface{}) *ParserError {
	pos := p.tokenizer.TokenInfo()
	return &ParserError{
		Message: fmt.Sprintf(format, args...),
		Line:    pos.Line,
		Column:  pos.Column,
	}
}

func (p *Parser) unexpected() *ParserError {
	if p.current.Kind == EOF {
		return p.errorf("Unexpected end of input")
	}
	return p.errorf("Unexpected token: %q", p.current.Payload)
}

// eat consumes the current token if it has the expected kind.
func (p *Parser) eat(kind TokenKind) (Token, error) {
	tok := p.current
	if tok.Kind == EOF && kind != EOF {
		return tok, p.errorf("Unexpected end of input, expected %s", kind)
	}
	if tok.Kind != kind {
		return tok, p.errorf("Unexpected token: %q, expected %s", tok.Payload, kind)
	}

	next, err := p.tokenizer.Next()
	if err != nil {
		return tok, err
	}
	p.current = next
	return tok, nil
}

func (p *Parser) is(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.current.Kind == kind {
			return true
		}
	}
	return false
}

func (p *Parser) parseStatement() (Node, error) {
	if parse, ok := p.statements[p.current.Kind]; ok {
		return parse()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() (Node, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return ExpressionStatement{Expression: expr}, nil
}

func (p *Parser) parseEmptyStatement() (Node, error) {
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return EmptyStatement{}, nil
}

func (p *Parser) parseVariableDeclaration() (Node, error) {
	kw := p.current
	if _, err := p.eat(kw.Kind); err != nil {
		return nil, err
	}
	name, err := p.eat(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	decl := VariableDeclaration{Name: name.Payload, Constant: kw.Kind == CONST}
	if p.is(SIMPLE_ASSIGNMENT) {
		if _, err := p.eat(SIMPLE_ASSIGNMENT); err != nil {
			return nil, err
		}
		if decl.Init, err = p.parseExpression(); err != nil {
			return nil, err
		}
	} else if decl.Constant {
		return nil, p.errorf("Missing initializer in const declaration %q", decl.Name)
	}

	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseBlockOrObject decides whether a "{" at statement position opens a
// block or a standalone object expression, by probing one token past the
// first identifier and rewinding.
func (p *Parser) parseBlockOrObject() (Node, error) {
	cp := p.checkpoint()

	isObject := false
	if _, err := p.eat(OPEN_CURLY); err != nil {
		return nil, err
	}
	if p.is(IDENTIFIER) {
		if _, err := p.eat(IDENTIFIER); err != nil {
			return nil, err
		}
		isObject = p.is(COMMA, COLON, CLOSE_CURLY)
	}
	p.rewind(cp)

	if !isObject {
		return p.parseBlock()
	}

	obj, err := p.parseObjectExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return ExpressionStatement{Expression: obj}, nil
}

func (p *Parser) parseBlockStatement() (*BlockStatement, error) {
	if _, err := p.eat(OPEN_CURLY); err != nil {
		return nil, err
	}

	block := &BlockStatement{Body: []Node{}}
	for !p.is(CLOSE_CURLY, EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Body = append(block.Body, stmt)
	}

	if _, err := p.eat(CLOSE_CURLY); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseBlock() (Node, error) {
	block, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return *block, nil
}

// parseFunctionStatement parses a named declaration, or falls back to an
// expression statement for an anonymous function.
func (p *Parser) parseFunctionStatement() (Node, error) {
	cp := p.checkpoint()
	if _, err := p.eat(FUNCTION); err != nil {
		return nil, err
	}
	named := p.is(IDENTIFIER)
	p.rewind(cp)

	if !named {
		return p.parseExpressionStatement()
	}

	if _, err := p.eat(FUNCTION); err != nil {
		return nil, err
	}
	name, err := p.eat(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	params, body, err := p.parseFunctionRest()
	if err != nil {
		return nil, err
	}
	return FunctionDeclaration{Name: name.Payload, Params: params, Body: body}, nil
}

func (p *Parser) parseFunctionRest() ([]string, *BlockStatement, error) {
	if _, err := p.eat(OPEN_PAREN); err != nil {
		return nil, nil, err
	}

	params := []string{}
	for !p.is(CLOSE_PAREN) {
		param, err := p.eat(IDENTIFIER)
		if err != nil {
			return nil, nil, err
		}
		params = append(params, param.Payload)
		if !p.is(CLOSE_PAREN) {
			if _, err := p.eat(COMMA); err != nil {
				return nil, nil, err
			}
		}
	}
	if _, err := p.eat(CLOSE_PAREN); err != nil {
		return nil, nil, err
	}

	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, nil, err
	}
	return params, body, nil
}

// parseCondition reads a test expression with optional surrounding parens.
func (p *Parser) parseCondition() (Node, error) {
	if !p.is(OPEN_PAREN) {
		return p.parseExpression()
	}

	if _, err := p.eat(OPEN_PAREN); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(CLOSE_PAREN); err != nil {
		return nil, err
	}
	return test, nil
}

func (p *Parser) parseIfStatement() (Node, error) {
	if _, err := p.eat(IF); err != nil {
		return nil, err
	}
	test, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	consequent, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	stmt := IfStatement{Test: test, Consequent: consequent}
	if p.is(ELSE) {
		if _, err := p.eat(ELSE); err != nil {
			return nil, err
		}
		if stmt.Alternate, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhileStatement() (Node, error) {
	if _, err := p.eat(WHILE); err != nil {
		return nil, err
	}
	test, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return WhileStatement{Test: test, Body: body}, nil
}

func (p *Parser) parseForStatement() (Node, error) {
	if _, err := p.eat(FOR); err != nil {
		return nil, err
	}
	if _, err := p.eat(OPEN_PAREN); err != nil {
		return nil, err
	}

	stmt := ForStatement{}
	var err error

	switch {
	case p.is(LET, CONST):
		if stmt.Init, err = p.parseVariableDeclaration(); err != nil {
			return nil, err
		}
	case p.is(SEMICOLON):
		if _, err := p.eat(SEMICOLON); err != nil {
			return nil, err
		}
	default:
		if stmt.Init, err = p.parseExpression(); err != nil {
			return nil, err
		}
		if _, err := p.eat(SEMICOLON); err != nil {
			return nil, err
		}
	}

	if !p.is(SEMICOLON) {
		if stmt.Test, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}

	if !p.is(CLOSE_PAREN) {
		if stmt.Update, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.eat(CLOSE_PAREN); err != nil {
		return nil, err
	}

	if stmt.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseTryCatchStatement() (Node, error) {
	if _, err := p.eat(TRY); err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}

	if _, err := p.eat(CATCH); err != nil {
		return nil, err
	}
	if _, err := p.eat(OPEN_PAREN); err != nil {
		return nil, err
	}
	param, err := p.eat(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(CLOSE_PAREN); err != nil {
		return nil, err
	}

	handler, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return TryCatchStatement{Body: body, Param: param.Payload, Handler: handler}, nil
}

func (p *Parser) parseThrowStatement() (Node, error) {
	if _, err := p.eat(THROW); err != nil {
		return nil, err
	}
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return ThrowStatement{Argument: arg}, nil
}

func (p *Parser) parseReturnStatement() (Node, error) {
	if _, err := p.eat(RETURN); err != nil {
		return nil, err
	}

	stmt := ReturnStatement{}
	if !p.is(SEMICOLON) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Argument = arg
	}

	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseBreakStatement() (Node, error) {
	if _, err := p.eat(BREAK); err != nil {
		return nil, err
	}
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return BreakStatement{}, nil
}

func (p *Parser) parseContinueStatement() (Node, error) {
	if _, err := p.eat(CONTINUE); err != nil {
		return nil, err
	}
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return ContinueStatement{}, nil
}

func (p *Parser) parseImportStatement() (Node, error) {
	if _, err := p.eat(IMPORT); err != nil {
		return nil, err
	}
	path, err := p.eat(STRING)
	if err != nil {
		return nil, err
	}
	alias, err := p.eat(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return ImportStatement{Path: path.Payload, Alias: alias.Payload}, nil
}

func (p *Parser) parseExportStatement() (Node, error) {
	if _, err := p.eat(EXPORT); err != nil {
		return nil, err
	}
	if _, err := p.eat(OPEN_CURLY); err != nil {
		return nil, err
	}

	names := []string{}
	for !p.is(CLOSE_CURLY) {
		name, err := p.eat(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		names = append(names, name.Payload)
		if !p.is(CLOSE_CURLY) {
			if _, err := p.eat(COMMA); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.eat(CLOSE_CURLY); err != nil {
		return nil, err
	}
	if _, err := p.eat(SEMICOLON); err != nil {
		return nil, err
	}
	return ExportStatement{Names: names}, nil
}

func (p *Parser) parseExpression() (Node, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (Node, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.is(SIMPLE_ASSIGNMENT, COMPLEX_ASSIGNMENT) {
		return left, nil
	}

	switch left.(type) {
	case Identifier, MemberExpression:
	default:
		return nil, p.errorf("Invalid left-hand side in assignment expression")
	}

	op, err := p.eat(p.current.Kind)
	if err != nil {
		return nil, err
	}
	right, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return AssignmentExpression{
		Operator: p.dialect.operator(op.Payload),
		Left:     left,
		Right:    right,
		Complex:  op.Kind == COMPLEX_ASSIGNMENT,
	}, nil
}

func (p *Parser) parseLogicalOr() (Node, error) {
	return p.parseLogical(LOGICAL_OR, p.parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() (Node, error) {
	return p.parseLogical(LOGICAL_AND, p.parseEquality)
}

func (p *Parser) parseLogical(kind TokenKind, next func() (Node, error)) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.is(kind) {
		op, err := p.eat(kind)
		if err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = LogicalExpression{Operator: p.dialect.operator(op.Payload), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Node, error) {
	return p.parseBinary(EQUALITY_OPERATOR, p.parseRelational)
}

func (p *Parser) parseRelational() (Node, error) {
	return p.parseBinary(RELATIONAL_OPERATOR, p.parseAdditive)
}

func (p *Parser) parseAdditive() (Node, error) {
	return p.parseBinary(ADDITIVE_OPERATOR, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (Node, error) {
	return p.parseBinary(MULTIPLICATIVE_OPERATOR, p.parseUnary)
}

func (p *Parser) parseBinary(kind TokenKind, next func() (Node, error)) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.is(kind) {
		op, err := p.eat(kind)
		if err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = BinaryExpression{Operator: p.dialect.operator(op.Payload), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if !p.is(ADDITIVE_OPERATOR, LOGICAL_NOT) {
		return p.parseUpdate()
	}

	op, err := p.eat(p.current.Kind)
	if err != nil {
		return nil, err
	}
	arg, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return UnaryExpression{Operator: p.dialect.operator(op.Payload), Argument: arg}, nil
}

func (p *Parser) parseUpdate() (Node, error) {
	if !p.is(ADDITIVE_ONE_OPERATOR) {
		return p.parseCallMember()
	}

	op, err := p.eat(ADDITIVE_ONE_OPERATOR)
	if err != nil {
		return nil, err
	}
	name, err := p.eat(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	return UpdateExpression{
		Operator: p.dialect.operator(op.Payload),
		Argument: &Identifier{Name: name.Payload},
		Prefix:   true,
	}, nil
}

func (p *Parser) parseCallMember() (Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current.Kind {
		case DOT:
			if _, err := p.eat(DOT); err != nil {
				return nil, err
			}
			var prop Node
			if p.is(NUMBER) {
				prop, err = p.parseNumber()
			} else {
				var name Token
				name, err = p.eat(IDENTIFIER)
				prop = Identifier{Name: name.Payload}
			}
			if err != nil {
				return nil, err
			}
			expr = MemberExpression{Object: expr, Property: prop}
		case OPEN_SQUARE:
			if _, err := p.eat(OPEN_SQUARE); err != nil {
				return nil, err
			}
			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.eat(CLOSE_SQUARE); err != nil {
				return nil, err
			}
			expr = MemberExpression{Object: expr, Property: prop, Computed: true}
		case OPEN_PAREN:
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = CallExpression{Callee: expr, Arguments: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArguments() ([]Node, error) {
	if _, err := p.eat(OPEN_PAREN); err != nil {
		return nil, err
	}

	args := []Node{}
	for !p.is(CLOSE_PAREN) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.is(CLOSE_PAREN) {
			if _, err := p.eat(COMMA); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.eat(CLOSE_PAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	switch p.current.Kind {
	case NUMBER:
		return p.parseNumber()
	case STRING:
		tok, err := p.eat(STRING)
		if err != nil {
			return nil, err
		}
		return StringLiteral{Value: tok.Payload}, nil
	case BOOLEAN:
		tok, err := p.eat(BOOLEAN)
		if err != nil {
			return nil, err
		}
		return BooleanLiteral{Value: tok.Payload == p.dialect.Keyword("true")}, nil
	case NULL:
		if _, err := p.eat(NULL); err != nil {
			return nil, err
		}
		return NullLiteral{}, nil
	case IDENTIFIER:
		tok, err := p.eat(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		return Identifier{Name: tok.Payload}, nil
	case OPEN_PAREN:
		if _, err := p.eat(OPEN_PAREN); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(CLOSE_PAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case OPEN_SQUARE:
		return p.parseArrayExpression()
	case OPEN_CURLY:
		return p.parseObjectExpression()
	case FUNCTION:
		if _, err := p.eat(FUNCTION); err != nil {
			return nil, err
		}
		params, body, err := p.parseFunctionRest()
		if err != nil {
			return nil, err
		}
		return FunctionExpression{Params: params, Body: body}, nil
	default:
		return nil, p.unexpected()
	}
}

func (p *Parser) parseNumber() (Node, error) {
	tok, err := p.eat(NUMBER)
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseFloat(tok.Payload, 64)
	if err != nil {
		return nil, p.errorf("Invalid number %q", tok.Payload)
	}
	return NumericLiteral{Value: n}, nil
}

func (p *Parser) parseArrayExpression() (Node, error) {
	if _, err := p.eat(OPEN_SQUARE); err != nil {
		return nil, err
	}

	elements := []Node{}
	for !p.is(CLOSE_SQUARE) {
		el, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if !p.is(CLOSE_SQUARE) {
			if _, err := p.eat(COMMA); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.eat(CLOSE_SQUARE); err != nil {
		return nil, err
	}
	return ArrayExpression{Elements: elements}, nil
}

func (p *Parser) parseObjectExpression() (Node, error) {
	if _, err := p.eat(OPEN_CURLY); err != nil {
		return nil, err
	}

	props := []Property{}
	for !p.is(CLOSE_CURLY) {
		key, err := p.eat(IDENTIFIER)
		if err != nil {
			return nil, err
		}

		prop := Property{Key: key.Payload}
		if p.is(COLON) {
			if _, err := p.eat(COLON); err != nil {
				return nil, err
			}
			if prop.Value, err = p.parseExpression(); err != nil {
				return nil, err
			}
		} else {
			prop.Value = Identifier{Name: key.Payload}
			prop.Shorthand = true
		}
		props = append(props, prop)

		if !p.is(CLOSE_CURLY) {
			if _, err := p.eat(COMMA); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.eat(CLOSE_CURLY); err != nil {
		return nil, err
	}
	return ObjectExpression{Properties: props}, nil
}
