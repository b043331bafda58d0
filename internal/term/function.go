package term

// Function binds a parameter in a body. Its type is the function from the
// same parameter to the body's type, or nil when the body is typeless.
type Function struct {
	node
	parameter *Parameter
	body      Term
}

// NewFunction builds the function binding p in body.
func NewFunction(p *Parameter, body Term) *Function {
	if p == nil || body == nil {
		panic("term: function with nil parameter or body")
	}
	f := &Function{parameter: p, body: body}
	if bt := body.Type(); bt != nil {
		f.typ = NewFunction(p, bt)
	}
	return f
}

func (f *Function) Parameter() *Parameter { return f.parameter }

func (f *Function) Body() Term { return f.body }

func (f *Function) Size() int { return size(f) }

func (f *Function) FreeVariables() *VarSet { return freeSet(f).Copy() }

func (f *Function) IsFreeVariable(v Variable) bool { return isFree(f, v) }

func (f *Function) CastFree() bool { return castFree(f) }

func (f *Function) HashCode() uint64 { return hashOf(f) }

func (f *Function) String() string { return Format(f, nil) }

// compose applies f to tail. The identity shortcut keeps the body untouched
// when tail is the parameter itself.
func (f *Function) compose(tail Term) (Term, error) {
	if Equal(tail, f.parameter) {
		return f.body, nil
	}
	if !Equal(tail.Type(), f.parameter.Type()) {
		return nil, newError(ComposeMismatch, nil, f, tail)
	}
	return substitute(f.body, f.parameter, tail)
}

// Compose applies head to tail. A function head is instantiated by
// substitution; any other head yields a Composition whose type is its head's
// type composed with tail.
func Compose(head, tail Term) (Term, error) {
	if head == nil || tail == nil {
		panic("term: compose with nil operand")
	}
	switch h := head.(type) {
	case *Function:
		return h.compose(tail)
	case SimpleTerm:
		return asTerm(NewComposition(h, tail))
	default:
		panic(unknownVariant(head))
	}
}

// ComposeAll composes head with each of tails, left to right.
func ComposeAll(head Term, tails ...Term) (Term, error) {
	t := head
	for _, tail := range tails {
		var err error
		if t, err = Compose(t, tail); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Parameters returns the parameters bound by the chain of outer functions of t.
func Parameters(t Term) []*Parameter {
	var ps []*Parameter
	for {
		f, ok := t.(*Function)
		if !ok {
			return ps
		}
		ps = append(ps, f.parameter)
		t = f.body
	}
}

// Domain returns the parameter type of t's functional type.
func Domain(t Term) (Term, error) {
	f, ok := t.Type().(*Function)
	if !ok {
		return nil, newError(DomainMismatch, nil, t)
	}
	return f.parameter.Type(), nil
}

// Consequent strips the outer functions of t and saturates the remaining
// simple term with fresh parameters for as long as its type is a function.
// It returns the consequent together with every stripped or minted
// parameter, outermost first.
func Consequent(t Term) (Term, []*Parameter, error) {
	ps := Parameters(t)
	for range ps {
		t = t.(*Function).body
	}
	for {
		ft, ok := t.Type().(*Function)
		if !ok {
			return t, ps, nil
		}
		p := NewParameter(ft.parameter.Type())
		next, err := Compose(t, p)
		if err != nil {
			return nil, nil, err
		}
		ps = append(ps, p)
		t = next
	}
}
