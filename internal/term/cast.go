package term

// ProjectedCast retypes a term whose type is a function as a term whose type
// is the projection of that function.
type ProjectedCast struct {
	node
	term Term
}

// NewProjectedCast casts t to the projection of its functional type.
func NewProjectedCast(t Term) (*ProjectedCast, error) {
	f, ok := t.Type().(*Function)
	if !ok {
		return nil, newError(CastMismatch, nil, t)
	}
	pr, err := Project(f)
	if err != nil {
		return nil, newError(CastMismatch, err, t)
	}
	c := &ProjectedCast{term: t}
	c.typ = pr
	return c, nil
}

func (c *ProjectedCast) Term() Term { return c.term }

func (*ProjectedCast) simple() {}

func (c *ProjectedCast) Size() int { return size(c) }

func (c *ProjectedCast) FreeVariables() *VarSet { return freeSet(c).Copy() }

func (c *ProjectedCast) IsFreeVariable(v Variable) bool { return isFree(c, v) }

func (*ProjectedCast) CastFree() bool { return false }

func (c *ProjectedCast) HashCode() uint64 { return hashOf(c) }

func (c *ProjectedCast) String() string { return Format(c, nil) }

// UnprojectedCast retypes a term whose type is a projection as a term whose
// type is the projected function.
type UnprojectedCast struct {
	node
	term Term
}

// NewUnprojectedCast casts t to the function underlying its projection type.
func NewUnprojectedCast(t Term) (*UnprojectedCast, error) {
	pr, ok := t.Type().(*Projection)
	if !ok {
		return nil, newError(CastMismatch, nil, t)
	}
	c := &UnprojectedCast{term: t}
	c.typ = pr.function
	return c, nil
}

func (c *UnprojectedCast) Term() Term { return c.term }

func (*UnprojectedCast) simple() {}

func (c *UnprojectedCast) Size() int { return size(c) }

func (c *UnprojectedCast) FreeVariables() *VarSet { return freeSet(c).Copy() }

func (c *UnprojectedCast) IsFreeVariable(v Variable) bool { return isFree(c, v) }

func (*UnprojectedCast) CastFree() bool { return false }

func (c *UnprojectedCast) HashCode() uint64 { return hashOf(c) }

func (c *UnprojectedCast) String() string { return Format(c, nil) }

// FoldingCast retypes a term by folding: every subterm of its type that is
// alpha-equivalent to value is abstracted to variable. The cast only exists
// when substituting value back for variable restores the original type.
type FoldingCast struct {
	node
	term     Term
	value    Term
	variable Variable
}

// NewFoldingCast folds value into variable inside t's type.
func NewFoldingCast(t, value Term, variable Variable) (*FoldingCast, error) {
	tt := t.Type()
	if tt == nil || !Equal(variable.Type(), value.Type()) {
		return nil, newError(CastMismatch, nil, t, value, variable)
	}
	folded, err := fold(tt, value, variable)
	if err != nil {
		return nil, newError(CastMismatch, err, t, value, variable)
	}
	back, err := substitute(folded, variable, value)
	if err != nil || !Equal(back, tt) {
		return nil, newError(CastMismatch, err, t, value, variable)
	}
	c := &FoldingCast{term: t, value: value, variable: variable}
	c.typ = folded
	return c, nil
}

func (c *FoldingCast) Term() Term { return c.term }

func (c *FoldingCast) Value() Term { return c.value }

func (c *FoldingCast) Variable() Variable { return c.variable }

func (*FoldingCast) simple() {}

func (c *FoldingCast) Size() int { return size(c) }

func (c *FoldingCast) FreeVariables() *VarSet { return freeSet(c).Copy() }

func (c *FoldingCast) IsFreeVariable(v Variable) bool { return isFree(c, v) }

func (*FoldingCast) CastFree() bool { return false }

func (c *FoldingCast) HashCode() uint64 { return hashOf(c) }

func (c *FoldingCast) String() string { return Format(c, nil) }

// fold rebuilds t with every subterm equal to value replaced by variable.
func fold(t, value Term, variable Variable) (Term, error) {
	return rewrite(t, folder{value: value, variable: variable})
}

type folder struct {
	value    Term
	variable Variable
}

func (r folder) enter(t Term) (Term, bool, error) {
	if Equal(t, r.value) {
		return r.variable, true, nil
	}
	switch t.(type) {
	case *TauTerm, *Parameter, *Identifiable:
		return t, true, nil
	}
	return t, false, nil
}

func (folder) binder(f *Function, pt Term) (*Parameter, Term, error) {
	p := f.parameter
	if pt == p.Type() {
		return p, f.body, nil
	}
	np := NewParameter(pt)
	body, err := substitute(f.body, p, np)
	if err != nil {
		return nil, nil, err
	}
	return np, body, nil
}

func (folder) compose(c *Composition, head, tail Term) (Term, error) {
	if head == Term(c.head) && tail == c.tail {
		return c, nil
	}
	return Compose(head, tail)
}

// CastToProjectedType casts a term of functional type to the projection of
// that type.
func CastToProjectedType(t Term) (Term, error) {
	return asTerm(NewProjectedCast(t))
}

// CastToUnprojectedType casts a term of projection type to the projected
// function type.
func CastToUnprojectedType(t Term) (Term, error) {
	return asTerm(NewUnprojectedCast(t))
}

// CastToTargetType converts t so that its type becomes exactly target,
// reconciling function and projection shapes binder by binder. A term whose
// type already equals target is returned unchanged.
func CastToTargetType(t, target Term) (Term, error) {
	st := t.Type()
	if Equal(st, target) {
		return t, nil
	}
	switch s := st.(type) {
	case *Function:
		switch g := target.(type) {
		case *Function:
			return castFunction(t, s, g)
		case *Projection:
			return castProjected(t, g)
		}
	case *Projection:
		u, err := NewUnprojectedCast(t)
		if err != nil {
			return nil, err
		}
		switch g := target.(type) {
		case *Function:
			return castFunction(u, s.function, g)
		case *Projection:
			return castProjected(u, g)
		}
	}
	return nil, newError(CastMismatch, nil, t, target)
}

// castFunction casts t, of type s, to the function type g: the target's
// parameter is cast into the source domain, fed to t, and the result is cast
// to the target codomain.
func castFunction(t Term, s, g *Function) (Term, error) {
	arg, err := CastToTargetType(g.parameter, s.parameter.Type())
	if err != nil {
		return nil, newError(CastMismatch, err, t, g)
	}
	app, err := Compose(t, arg)
	if err != nil {
		return nil, newError(CastMismatch, err, t, g)
	}
	body, err := CastToTargetType(app, g.body)
	if err != nil {
		return nil, newError(CastMismatch, err, t, g)
	}
	return NewFunction(g.parameter, body), nil
}

// castProjected casts t, whose type is a function, to the projection g.
func castProjected(t Term, g *Projection) (Term, error) {
	c, err := CastToTargetType(t, g.function)
	if err != nil {
		return nil, newError(CastMismatch, err, t, g)
	}
	return asTerm(NewProjectedCast(c))
}
