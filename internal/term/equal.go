package term

// correspondence pairs the parameters of two terms bound at the same place
// while they are compared. Inner pairs come first.
type correspondence struct {
	left, right *Parameter
	next        *correspondence
}

func (c *correspondence) extend(left, right *Parameter) *correspondence {
	return &correspondence{left: left, right: right, next: c}
}

// pairs reports whether left and right are corresponding parameters. bound
// is false when neither of them is bound by the correspondence, in which case
// the caller falls back to identity.
func (c *correspondence) pairs(left, right *Parameter) (match, bound bool) {
	for e := c; e != nil; e = e.next {
		if e.left == left || e.right == right {
			return e.left == left && e.right == right, true
		}
	}
	return false, false
}

// binds reports whether p is bound on either side.
func (c *correspondence) binds(p *Parameter) bool {
	for e := c; e != nil; e = e.next {
		if e.left == p || e.right == p {
			return true
		}
	}
	return false
}

// mentionsBound reports whether some parameter bound by c occurs free in t.
func (c *correspondence) mentionsBound(t Term) bool {
	if c == nil {
		return false
	}
	fs := freeSet(t)
	for e := c; e != nil; e = e.next {
		if fs.Contains(e.left) || fs.Contains(e.right) {
			return true
		}
	}
	return false
}

// Equal reports whether a and b are alpha-equivalent: the same shape, with
// bound parameters related one to one along the way. Free parameters compare
// by identity and identifiable variables by id. Nil terms are only equal to
// nil.
func Equal(a, b Term) bool {
	return equalUnder(a, b, nil)
}

type equalItem struct {
	a, b Term
	corr *correspondence
}

func equalUnder(a, b Term, corr *correspondence) bool {
	work := []equalItem{{a: a, b: b, corr: corr}}
	for len(work) > 0 {
		top := len(work) - 1
		it := work[top]
		work = work[:top]
		if it.a == nil || it.b == nil {
			if it.a != nil || it.b != nil {
				return false
			}
			continue
		}
		if it.corr == nil {
			if it.a == it.b {
				continue
			}
			if hashedDiffer(it.a, it.b) {
				return false
			}
		}
		switch x := it.a.(type) {
		case *TauTerm:
			if _, ok := it.b.(*TauTerm); !ok {
				return false
			}
		case *Parameter:
			y, ok := it.b.(*Parameter)
			if !ok {
				return false
			}
			if match, bound := it.corr.pairs(x, y); bound {
				if !match {
					return false
				}
			} else if x != y {
				return false
			}
		case *Identifiable:
			y, ok := it.b.(*Identifiable)
			if !ok || x.id != y.id {
				return false
			}
		case *Function:
			y, ok := it.b.(*Function)
			if !ok {
				return false
			}
			work = append(work,
				equalItem{a: x.body, b: y.body, corr: it.corr.extend(x.parameter, y.parameter)},
				equalItem{a: x.parameter.Type(), b: y.parameter.Type(), corr: it.corr},
			)
		case *Composition:
			y, ok := it.b.(*Composition)
			if !ok {
				return false
			}
			work = append(work,
				equalItem{a: x.tail, b: y.tail, corr: it.corr},
				equalItem{a: x.head, b: y.head, corr: it.corr},
			)
		case *Projection:
			y, ok := it.b.(*Projection)
			if !ok {
				return false
			}
			work = append(work, equalItem{a: x.function, b: y.function, corr: it.corr})
		case *ProjectedCast:
			y, ok := it.b.(*ProjectedCast)
			if !ok {
				return false
			}
			work = append(work, equalItem{a: x.term, b: y.term, corr: it.corr})
		case *UnprojectedCast:
			y, ok := it.b.(*UnprojectedCast)
			if !ok {
				return false
			}
			work = append(work, equalItem{a: x.term, b: y.term, corr: it.corr})
		case *FoldingCast:
			y, ok := it.b.(*FoldingCast)
			if !ok {
				return false
			}
			work = append(work,
				equalItem{a: x.variable, b: y.variable, corr: it.corr},
				equalItem{a: x.value, b: y.value, corr: it.corr},
				equalItem{a: x.term, b: y.term, corr: it.corr},
			)
		default:
			panic(unknownVariant(it.a))
		}
	}
	return true
}

// hashedDiffer uses memoized hashes, when both are available, to reject
// unequal terms early.
func hashedDiffer(a, b Term) bool {
	na, nb := a.base(), b.base()
	if !na.hashed.Load() || !nb.hashed.Load() {
		return false
	}
	return na.hash.Load() != nb.hash.Load()
}
