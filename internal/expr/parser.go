package expr

// maxDepth bounds nesting of parentheses and unary operators.
const maxDepth = 200

type parser struct {
	toks  []token
	pos   int
	depth int
	vars  map[string]bool
	calls map[string]bool
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) error {
	t := p.next()
	if t.kind != kind {
		return invalidf("expected %s, found %s", what, t)
	}
	return nil
}

// parseExpr parses: term (('+'|'-') term)*
func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

// parseTerm parses: unary (('*'|'/') unary)*
func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

// parseUnary parses: ('+'|'-') unary | power
func (p *parser) parseUnary() (node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, invalidf("expression nested too deeply")
	}

	switch p.peek().kind {
	case tokMinus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negNode{operand: operand}, nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

// parsePower parses: primary ['**' unary]. The exponent is a unary
// expression, so "**" is right-associative and binds tighter than a
// leading minus: -2**2 == -4, 2**-1 == 0.5.
func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPower {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokPower, left: base, right: exp}, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	var n node
	switch t.kind {
	case tokNumber:
		n = &numberNode{value: t.num}
	case tokIdent:
		var err error
		if n, err = p.parseName(t); err != nil {
			return nil, err
		}
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		n = inner
	default:
		return nil, invalidf("unexpected %s at position %d", t, t.pos)
	}

	if p.peek().kind == tokDot {
		return nil, invalidf("disallowed attribute access at position %d", p.peek().pos)
	}
	return n, nil
}

// parseName resolves an identifier against the bound variables and the
// allow-list. Anything else is rejected here, before evaluation.
func (p *parser) parseName(t token) (node, error) {
	name := t.text
	if name == namespace {
		if p.peek().kind != tokDot {
			if p.peek().kind == tokLParen {
				return nil, invalidf("module %q is not callable", name)
			}
			return &refNode{name: name, class: "module"}, nil
		}
		p.next()
		attr := p.next()
		if attr.kind != tokIdent {
			return nil, invalidf("expected attribute name after %q", namespace+".")
		}
		if _, ok := constants[attr.text]; !ok {
			if _, ok := functions[attr.text]; !ok {
				return nil, invalidf("disallowed attribute %q", namespace+"."+attr.text)
			}
		}
		name = attr.text
	} else if p.vars[name] {
		if p.peek().kind == tokLParen {
			return nil, invalidf("variable %q is not callable", name)
		}
		return &varNode{name: name}, nil
	}

	if v, ok := constants[name]; ok {
		if p.peek().kind == tokLParen {
			return nil, invalidf("constant %q is not callable", name)
		}
		return &numberNode{value: v}, nil
	}

	fn, ok := functions[name]
	if !ok {
		return nil, invalidf("disallowed name %q", name)
	}
	if p.peek().kind != tokLParen {
		return &refNode{name: name, class: "function"}, nil
	}
	p.next()
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if len(args) < fn.minArgs || len(args) > fn.maxArgs {
		return nil, invalidf("wrong number of arguments for %s: got %d", fn.name, len(args))
	}
	p.calls[fn.name] = true
	return &callNode{fn: fn, args: args}, nil
}

// parseArgs parses a comma-separated argument list after '('.
func (p *parser) parseArgs() ([]node, error) {
	var args []node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		switch t := p.next(); t.kind {
		case tokRParen:
			return args, nil
		case tokComma:
		default:
			return nil, invalidf("expected ',' or ')' in argument list, found %s", t)
		}
	}
}
