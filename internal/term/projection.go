package term

// Projection views a non-dependent function as an atomic value whose type is
// the function's codomain.
type Projection struct {
	node
	function *Function
}

// Project builds the projection of f. It fails with ProjectionMismatch when
// the body is typeless or its type mentions the parameter.
func Project(f *Function) (*Projection, error) {
	bt := f.body.Type()
	if bt == nil || isFree(bt, f.parameter) {
		return nil, newError(ProjectionMismatch, nil, f)
	}
	p := &Projection{function: f}
	p.typ = bt
	return p, nil
}

func (p *Projection) Function() *Function { return p.function }

func (*Projection) simple() {}

func (p *Projection) Size() int { return size(p) }

func (p *Projection) FreeVariables() *VarSet { return freeSet(p).Copy() }

func (p *Projection) IsFreeVariable(v Variable) bool { return isFree(p, v) }

func (p *Projection) CastFree() bool { return castFree(p) }

func (p *Projection) HashCode() uint64 { return hashOf(p) }

func (p *Projection) String() string { return Format(p, nil) }

// ProjectN projects t n times: the n outer binders are projected innermost
// first, each projected remainder wrapped again in its outer binder. When t
// has fewer than n binders the projection stops at the last one.
func ProjectN(t Term, n int) (Term, error) {
	if n <= 0 {
		return t, nil
	}
	f, ok := t.(*Function)
	if !ok {
		return nil, newError(ProjectionMismatch, nil, t)
	}
	var outer []*Function
	for len(outer) < n-1 {
		inner, ok := f.body.(*Function)
		if !ok {
			break
		}
		outer = append(outer, f)
		f = inner
	}
	pr, err := Project(f)
	if err != nil {
		return nil, err
	}
	for i := len(outer) - 1; i >= 0; i-- {
		if pr, err = Project(NewFunction(outer[i].parameter, pr)); err != nil {
			return nil, err
		}
	}
	return pr, nil
}

// Unproject undoes projections and casts throughout t.
//
// A projection unprojects to its function. A projection heading a
// composition spine is lifted instead: its arguments are applied to the
// function body under a fresh binder. Binders whose types change are
// retyped, and their old occurrences see the new parameter cast back to
// the old type. Where an unprojected operand no longer fits its
// composition it is cast back into place, and where no cast fits the
// composition is kept as it was, projections included.
//
// Unproject fails with UnprojectMismatch when a retyped binder cannot be
// substituted into its body.
func Unproject(t Term) (Term, error) {
	return rewrite(t, unprojector{})
}

type unprojector struct{}

func (unprojector) enter(t Term) (Term, bool, error) {
	switch x := t.(type) {
	case *TauTerm, *Parameter, *Identifiable:
		return t, true, nil
	case *Projection:
		return x.function, false, nil
	case *ProjectedCast:
		return x.term, false, nil
	case *UnprojectedCast:
		return x.term, false, nil
	case *FoldingCast:
		return x.term, false, nil
	case *Composition:
		if lifted, ok := lift(x); ok {
			return lifted, false, nil
		}
	}
	return t, false, nil
}

// lift turns (pr a1 ... an), pr the projection of <p -> body>, into
// <p' -> (body[p := p'] a1 ... an)>.
func lift(c *Composition) (Term, bool) {
	head, args := c.Spine()
	pr, ok := head.(*Projection)
	if !ok {
		return nil, false
	}
	f := pr.function
	np := NewParameter(f.parameter.Type())
	body, err := substitute(f.body, f.parameter, np)
	if err != nil {
		return nil, false
	}
	applied, err := ComposeAll(body, args...)
	if err != nil {
		return nil, false
	}
	return NewFunction(np, applied), true
}

func (unprojector) binder(f *Function, pt Term) (*Parameter, Term, error) {
	p := f.parameter
	if pt == p.Type() {
		return p, f.body, nil
	}
	np := NewParameter(pt)
	back, err := CastToTargetType(np, p.Type())
	if err != nil {
		return p, f.body, nil
	}
	body, err := substitute(f.body, p, back)
	if err != nil {
		return nil, nil, newError(UnprojectMismatch, err, f)
	}
	return np, body, nil
}

func (unprojector) compose(c *Composition, head, tail Term) (Term, error) {
	if head == Term(c.head) && tail == c.tail {
		return c, nil
	}
	if r, err := Compose(head, tail); err == nil {
		return r, nil
	}
	if !Equal(head.Type(), c.head.Type()) {
		if h, err := CastToTargetType(head, c.head.Type()); err == nil {
			head = h
		}
	}
	if d, err := Domain(head); err == nil {
		if a, err := CastToTargetType(tail, d); err == nil {
			if r, err := Compose(head, a); err == nil {
				return r, nil
			}
		}
	}
	return c, nil
}
