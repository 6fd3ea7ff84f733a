package compiler

import (
	"strconv"

	"lox/internal/code"
	"lox/internal/object"
	"lox/internal/token"
)

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules is filled in init because the handlers refer back to it.
var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LEFT_PAREN:    {(*Compiler).grouping, (*Compiler).call, precCall},
		token.DOT:           {nil, (*Compiler).dot, precCall},
		token.MINUS:         {(*Compiler).unary, (*Compiler).binary, precTerm},
		token.PLUS:          {nil, (*Compiler).binary, precTerm},
		token.SLASH:         {nil, (*Compiler).binary, precFactor},
		token.STAR:          {nil, (*Compiler).binary, precFactor},
		token.BANG:          {(*Compiler).unary, nil, precNone},
		token.BANG_EQUAL:    {nil, (*Compiler).binary, precEquality},
		token.EQUAL_EQUAL:   {nil, (*Compiler).binary, precEquality},
		token.GREATER:       {nil, (*Compiler).binary, precComparison},
		token.GREATER_EQUAL: {nil, (*Compiler).binary, precComparison},
		token.LESS:          {nil, (*Compiler).binary, precComparison},
		token.LESS_EQUAL:    {nil, (*Compiler).binary, precComparison},
		token.IDENTIFIER:    {(*Compiler).variable, nil, precNone},
		token.STRING:        {(*Compiler).string, nil, precNone},
		token.NUMBER:        {(*Compiler).number, nil, precNone},
		token.AND:           {nil, (*Compiler).and, precAnd},
		token.OR:            {nil, (*Compiler).or, precOr},
		token.FALSE:         {(*Compiler).literal, nil, precNone},
		token.NIL:           {(*Compiler).literal, nil, precNone},
		token.TRUE:          {(*Compiler).literal, nil, precNone},
		token.SUPER:         {(*Compiler).super, nil, precNone},
		token.THIS:          {(*Compiler).this, nil, precNone},
	}
}

// getRule returns the zero rule (no handlers, precNone) for tokens that
// never start or continue an expression.
func getRule(t token.Type) parseRule {
	return rules[t]
}

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		getRule(c.previous.Type).infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (c *Compiler) number(bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(object.NumberValue(n))
}

func (c *Compiler) string(bool) {
	lex := c.previous.Lexeme
	c.emitConstant(object.StringValue(lex[1 : len(lex)-1]))
}

func (c *Compiler) literal(bool) {
	switch c.previous.Type {
	case token.FALSE:
		c.emit(code.OpFalse)
	case token.NIL:
		c.emit(code.OpNil)
	case token.TRUE:
		c.emit(code.OpTrue)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) unary(bool) {
	op := c.previous.Type

	c.parsePrecedence(precUnary)

	switch op {
	case token.BANG:
		c.emit(code.OpNot)
	case token.MINUS:
		c.emit(code.OpNegate)
	}
}

func (c *Compiler) binary(bool) {
	op := c.previous.Type
	c.parsePrecedence(getRule(op).precedence + 1)

	switch op {
	case token.BANG_EQUAL:
		c.emit(code.OpEqual)
		c.emit(code.OpNot)
	case token.EQUAL_EQUAL:
		c.emit(code.OpEqual)
	case token.GREATER:
		c.emit(code.OpGreater)
	case token.GREATER_EQUAL:
		c.emit(code.OpLess)
		c.emit(code.OpNot)
	case token.LESS:
		c.emit(code.OpLess)
	case token.LESS_EQUAL:
		c.emit(code.OpGreater)
		c.emit(code.OpNot)
	case token.PLUS:
		c.emit(code.OpAdd)
	case token.MINUS:
		c.emit(code.OpSubtract)
	case token.STAR:
		c.emit(code.OpMultiply)
	case token.SLASH:
		c.emit(code.OpDivide)
	}
}

// and short-circuits by leaving the falsey left operand on the stack.
func (c *Compiler) and(bool) {
	endJump := c.emitJump(code.OpJumpIfFalse)

	c.emit(code.OpPop)
	c.parsePrecedence(precAnd)

	c.patchJump(endJump)
}

func (c *Compiler) or(bool) {
	elseJump := c.emitJump(code.OpJumpIfFalse)
	endJump := c.emitJump(code.OpJump)

	c.patchJump(elseJump)
	c.emit(code.OpPop)

	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) argumentList() int {
	argCount := 0
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.expression()
			if argCount >= maxOperand {
				c.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return argCount & 0xff
}

func (c *Compiler) call(bool) {
	c.emit(code.OpCall, c.argumentList())
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENTIFIER, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lexeme)

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emit(code.OpSetProperty, name)
	case c.match(token.LEFT_PAREN):
		argCount := c.argumentList()
		c.emit(code.OpInvoke, name, argCount)
	default:
		c.emit(code.OpGetProperty, name)
	}
}

func (c *Compiler) this(bool) {
	if len(c.classes) == 0 {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(bool) {
	if len(c.classes) == 0 {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.classes[len(c.classes)-1].hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENTIFIER, "Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable("this", false)
	if c.match(token.LEFT_PAREN) {
		argCount := c.argumentList()
		c.namedVariable("super", false)
		c.emit(code.OpSuperInvoke, name, argCount)
	} else {
		c.namedVariable("super", false)
		c.emit(code.OpGetSuper, name)
	}
}
