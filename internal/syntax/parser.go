package syntax

// MaxNesting bounds how deeply terms may nest inside one clause.
const MaxNesting = 4096

// Parse parses a whole program.
func Parse(src string) (*Program, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

// ParseGoal parses a single clause with no terminator, e.g. "likes(tom, X)".
// A trailing '.' or '?' is accepted and ignored.
func ParseGoal(src string) (*Clause, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	c, err := p.clause()
	if err != nil {
		return nil, err
	}
	p.match(PERIOD, QUESTION)
	if !p.atEnd() {
		return nil, p.unexpected("end of goal")
	}
	return c, nil
}

type parser struct {
	toks []Token
	i    int
}

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, context string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	return Token{}, p.unexpected(t.String() + " " + context)
}

func (p *parser) unexpected(want string) *Error {
	got := p.peek()
	return errorf(got.Pos, "expected %s, found %s", want, got)
}

func (p *parser) program() (*Program, error) {
	prog := &Program{}
	for !p.atEnd() {
		if err := p.statement(prog); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func (p *parser) statement(prog *Program) error {
	if p.match(QUERY) {
		at := p.prev().Pos
		goal, err := p.clause()
		if err != nil {
			return err
		}
		if _, err := p.need(PERIOD, "after query"); err != nil {
			return err
		}
		prog.Directives = append(prog.Directives, &Directive{Goal: goal, Marker: "?-", At: at})
		return nil
	}

	head, err := p.clause()
	if err != nil {
		return err
	}

	switch {
	case p.match(PERIOD):
		prog.Facts = append(prog.Facts, head)
		return nil

	case p.match(QUESTION):
		prog.Directives = append(prog.Directives, &Directive{Goal: head, Marker: "?", At: head.Pos()})
		return nil

	case p.match(NECK):
		rule := &Rule{Head: head, Neck: p.prev().Pos}
		for {
			c, err := p.clause()
			if err != nil {
				return err
			}
			rule.Body = append(rule.Body, c)
			if !p.match(COMMA) {
				break
			}
		}
		if _, err := p.need(PERIOD, "after rule body"); err != nil {
			return err
		}
		prog.Rules = append(prog.Rules, rule)
		return nil
	}

	return p.unexpected("'.', ':-' or '?' after clause")
}

// clause parses a term in predicate position. The predicate must be an atom.
func (p *parser) clause() (*Clause, error) {
	tok := p.peek()
	if tok.Type != IDENT {
		if tok.Type == VARIABLE || tok.Type == NUMBER {
			return nil, errorf(tok.Pos, "predicate name must be an atom, found %s", tok)
		}
		return nil, p.unexpected("predicate name")
	}
	t, err := p.term(0)
	if err != nil {
		return nil, err
	}
	return &Clause{Term: t}, nil
}

func (p *parser) term(depth int) (Node, error) {
	if depth > MaxNesting {
		return nil, errorf(p.peek().Pos, "terms nested deeper than %d", MaxNesting)
	}
	if !p.match(IDENT, VARIABLE, NUMBER) {
		return nil, p.unexpected("term")
	}
	name := &Name{Token: p.prev()}

	if p.peek().Type != LPAREN {
		return name, nil
	}
	if name.Token.Type != IDENT {
		return nil, errorf(name.Pos(), "functor must be an atom, found %s", name.Token)
	}

	p.i++
	args := &ArgList{Lparen: p.prev().Pos}
	for {
		t, err := p.term(depth + 1)
		if err != nil {
			return nil, err
		}
		args.Terms = append(args.Terms, t)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RPAREN, "to close argument list"); err != nil {
		return nil, err
	}
	return &Compound{Functor: name, Args: args}, nil
}
