package term

import "github.com/samber/lo"

// Assignments is the result of a successful Match: the values found for the
// assignable variables of each side.
type Assignments struct {
	Left  Subst
	Right Subst
}

type matchItem struct {
	left, right Term
	corr        *correspondence
}

type matcher struct {
	leftVars, rightVars *VarSet
	// assigned is triangular: a value may mention other assigned variables,
	// never in a cycle. Values are resolved at variable leaves while matching
	// and fully once matching is done.
	assigned Subst
	work     []matchItem
}

// Match looks for values of the assignable variables leftVars, free in left,
// and rightVars, free in right, that make left and right alpha-equivalent.
// Applying the returned Left to left and Right to right yields equal terms.
// The two sets must be disjoint and neither may occur free in the other
// side's term.
//
// Bound parameters are never assigned and values never mention parameters
// bound inside the matched terms. Tau cannot be the value of a variable, as
// every variable is typed and Tau is not.
func Match(left Term, leftVars *VarSet, right Term, rightVars *VarSet) (*Assignments, bool) {
	if leftVars == nil {
		leftVars = NewVarSet()
	}
	if rightVars == nil {
		rightVars = NewVarSet()
	}
	for _, v := range rightVars.Slice() {
		if leftVars.Contains(v) || isFree(left, v) {
			return nil, false
		}
	}
	for _, v := range leftVars.Slice() {
		if isFree(right, v) {
			return nil, false
		}
	}
	m := &matcher{
		leftVars:  leftVars,
		rightVars: rightVars,
		assigned:  make(Subst),
		work:      []matchItem{{left: left, right: right}},
	}
	if !m.run() {
		return nil, false
	}
	res := &Assignments{Left: make(Subst), Right: make(Subst)}
	for k, r := range m.assigned {
		t, ok := m.solve(r.Term)
		if !ok {
			return nil, false
		}
		if leftVars.Contains(r.Variable) {
			res.Left[k] = Replacement{Variable: r.Variable, Term: t}
		} else {
			res.Right[k] = Replacement{Variable: r.Variable, Term: t}
		}
	}
	return res, true
}

func (m *matcher) assignable(v Variable, corr *correspondence) bool {
	if p, ok := v.(*Parameter); ok && corr.binds(p) {
		return false
	}
	return m.leftVars.Contains(v) || m.rightVars.Contains(v)
}

func (m *matcher) push(left, right Term, corr *correspondence) {
	m.work = append(m.work, matchItem{left: left, right: right, corr: corr})
}

func (m *matcher) run() bool {
	for len(m.work) > 0 {
		top := len(m.work) - 1
		it := m.work[top]
		m.work = m.work[:top]
		if !m.step(it) {
			return false
		}
	}
	return true
}

func (m *matcher) step(it matchItem) bool {
	a, b := it.left, it.right
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	a, b = m.resolve(a, it.corr), m.resolve(b, it.corr)
	if va, ok := a.(Variable); ok && m.assignable(va, it.corr) {
		if vb, ok := b.(Variable); ok && sameVariable(va, vb) {
			return true
		}
		return m.assign(va, b, it.corr)
	}
	if vb, ok := b.(Variable); ok && m.assignable(vb, it.corr) {
		return m.assign(vb, a, it.corr)
	}
	switch x := a.(type) {
	case *Function:
		y, ok := b.(*Function)
		if !ok {
			return false
		}
		m.push(x.body, y.body, it.corr.extend(x.parameter, y.parameter))
		m.push(x.parameter.Type(), y.parameter.Type(), it.corr)
		return true
	case *Composition:
		y, ok := b.(*Composition)
		if !ok {
			return false
		}
		m.push(x.tail, y.tail, it.corr)
		m.push(x.head, y.head, it.corr)
		return true
	case *Projection:
		y, ok := b.(*Projection)
		if !ok {
			return false
		}
		m.push(x.function, y.function, it.corr)
		return true
	case *ProjectedCast:
		y, ok := b.(*ProjectedCast)
		if !ok {
			return false
		}
		m.push(x.term, y.term, it.corr)
		return true
	case *UnprojectedCast:
		y, ok := b.(*UnprojectedCast)
		if !ok {
			return false
		}
		m.push(x.term, y.term, it.corr)
		return true
	case *FoldingCast:
		y, ok := b.(*FoldingCast)
		if !ok {
			return false
		}
		m.push(x.variable, y.variable, it.corr)
		m.push(x.value, y.value, it.corr)
		m.push(x.term, y.term, it.corr)
		return true
	}
	return equalUnder(a, b, it.corr)
}

// resolve follows the assignments of t while it is an assigned variable.
// Subterms are left alone: their variables are resolved when the descent
// reaches them, under the binders crossed on the way.
func (m *matcher) resolve(t Term, corr *correspondence) Term {
	for {
		v, ok := t.(Variable)
		if !ok || !m.assignable(v, corr) {
			return t
		}
		r, ok := m.assigned[v.Hash()]
		if !ok {
			return t
		}
		t = r.Term
	}
}

// occurs reports whether v is reachable from t through the assignments.
func (m *matcher) occurs(v Variable, t Term) bool {
	seen := NewVarSet()
	work := freeSet(t).Slice()
	for len(work) > 0 {
		w := work[len(work)-1]
		work = work[:len(work)-1]
		if sameVariable(v, w) {
			return true
		}
		if !seen.Insert(w) {
			continue
		}
		if r, ok := m.assigned[w.Hash()]; ok {
			work = append(work, freeSet(r.Term).Slice()...)
		}
	}
	return false
}

// solve applies the assignments to t until no assigned variable is left.
// The occurs check bounds the number of rounds by the number of
// assignments.
func (m *matcher) solve(t Term) (Term, bool) {
	for range len(m.assigned) + 1 {
		pending := lo.SomeBy(freeSet(t).Slice(), func(v Variable) bool {
			_, ok := m.assigned[v.Hash()]
			return ok
		})
		if !pending {
			return t, true
		}
		var err error
		if t, err = applyUnchecked(t, m.assigned); err != nil {
			return nil, false
		}
	}
	return nil, false
}

// assign binds v to value and schedules the unification of their types.
func (m *matcher) assign(v Variable, value Term, corr *correspondence) bool {
	if value == Term(Tau) {
		return false
	}
	if corr.mentionsBound(value) || m.occurs(v, value) {
		return false
	}
	m.assigned[v.Hash()] = Replacement{Variable: v, Term: value}
	m.push(v.Type(), value.Type(), nil)
	return true
}
