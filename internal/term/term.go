// Package term implements the term algebra of the kernel: an immutable
// representation of a small dependently-typed calculus together with type
// computation, composition, capture-avoiding substitution, alpha-equivalence,
// hashing, matching and the projection/cast algebra.
//
// Every node is immutable once built and its type is computed at construction.
// Terms can be shared freely between goroutines.
package term

import (
	"sync/atomic"

	"github.com/hashicorp/go-set/v3"
)

// Term is the interface for all nodes of the calculus.
type Term interface {
	// Type returns the type computed at construction. It is nil only for Tau
	// and for functions whose body is typeless.
	Type() Term
	// Size counts the variable occurrences inside the term, binders included.
	Size() int
	// FreeVariables returns a fresh set with the variables occurring outside
	// any binder introducing them.
	FreeVariables() *VarSet
	IsFreeVariable(v Variable) bool
	// CastFree reports whether no cast node occurs anywhere in the term.
	CastFree() bool
	// HashCode is consistent with Equal: alpha-equivalent terms hash equally.
	HashCode() uint64
	String() string

	base() *node
}

// SimpleTerm is any term that is not a *Function. Only simple terms can head
// a Composition.
type SimpleTerm interface {
	Term
	simple()
}

// node holds the state shared by all variants: the type and the memoized
// analyses. The memo cells are written at most once with a deterministic
// value, so concurrent first computation is harmless.
type node struct {
	typ    Term
	hash   atomic.Uint64
	hashed atomic.Bool
	free   atomic.Pointer[VarSet]
	cast   atomic.Int32 // 0 unknown, 1 cast free, 2 contains a cast
}

func (n *node) base() *node { return n }

func (n *node) Type() Term { return n.typ }

// VarSet is a set of variables keyed by variable identity.
type VarSet = set.HashSet[Variable, string]

// NewVarSet builds a set holding vs.
func NewVarSet(vs ...Variable) *VarSet {
	s := set.NewHashSet[Variable, string](len(vs))
	for _, v := range vs {
		s.Insert(v)
	}
	return s
}

// TauTerm is the unique typeless base sort.
type TauTerm struct {
	node
}

// Tau is the only TauTerm instance.
var Tau = &TauTerm{}

func (*TauTerm) simple() {}

func (*TauTerm) Size() int { return 0 }

func (t *TauTerm) FreeVariables() *VarSet { return NewVarSet() }

func (*TauTerm) IsFreeVariable(Variable) bool { return false }

func (*TauTerm) CastFree() bool { return true }

func (t *TauTerm) HashCode() uint64 { return hashOf(t) }

func (t *TauTerm) String() string { return Format(t, nil) }

// asTerm drops the concrete result type of a constructor so that a failed
// construction yields a nil Term rather than a typed nil.
func asTerm[T Term](t T, err error) (Term, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}

// children lists the direct subterms a traversal has to visit. The type of a
// variable is not a subterm of the variable.
func children(t Term) []Term {
	switch x := t.(type) {
	case *TauTerm, *Parameter, *Identifiable:
		return nil
	case *Function:
		return []Term{x.parameter.Type(), x.body}
	case *Composition:
		return []Term{x.head, x.tail}
	case *Projection:
		return []Term{x.function}
	case *ProjectedCast:
		return []Term{x.term}
	case *UnprojectedCast:
		return []Term{x.term}
	case *FoldingCast:
		return []Term{x.term, x.value, x.variable}
	default:
		panic(unknownVariant(t))
	}
}

func unknownVariant(t Term) string {
	return "term: unknown term variant " + typeName(t)
}

// postorder visits, children first, every node reachable from t for which
// pending returns true. Subtrees rooted at a node that is not pending are
// skipped. Shared subterms are visited once.
func postorder(t Term, pending func(Term) bool, visit func(Term)) {
	if !pending(t) {
		return
	}
	type frame struct {
		t        Term
		expanded bool
	}
	seen := make(map[Term]bool)
	stack := []frame{{t: t}}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		if f.expanded {
			stack = stack[:top]
			visit(f.t)
			continue
		}
		if seen[f.t] {
			stack = stack[:top]
			continue
		}
		seen[f.t] = true
		stack[top].expanded = true
		for _, c := range children(f.t) {
			if pending(c) && !seen[c] {
				stack = append(stack, frame{t: c})
			}
		}
	}
}

// freeSet returns the memoized free variable set. The result is shared and
// must not be modified.
func freeSet(t Term) *VarSet {
	n := t.base()
	if s := n.free.Load(); s != nil {
		return s
	}
	postorder(t, func(c Term) bool { return c.base().free.Load() == nil }, func(c Term) {
		s := computeFree(c)
		c.base().free.CompareAndSwap(nil, s)
	})
	return n.free.Load()
}

func computeFree(t Term) *VarSet {
	switch x := t.(type) {
	case *TauTerm:
		return NewVarSet()
	case *Parameter:
		return NewVarSet(x)
	case *Identifiable:
		return NewVarSet(x)
	case *Function:
		s := freeSet(x.parameter.Type()).Copy()
		for _, v := range freeSet(x.body).Slice() {
			if !sameVariable(v, x.parameter) {
				s.Insert(v)
			}
		}
		return s
	default:
		s := NewVarSet()
		for _, c := range children(t) {
			s.InsertSet(freeSet(c))
		}
		return s
	}
}

func isFree(t Term, v Variable) bool {
	return freeSet(t).Contains(v)
}

// castFree answers CastFree with the same memoization scheme as freeSet.
func castFree(t Term) bool {
	n := t.base()
	if c := n.cast.Load(); c != 0 {
		return c == 1
	}
	postorder(t, func(c Term) bool { return c.base().cast.Load() == 0 }, func(c Term) {
		free := true
		switch c.(type) {
		case *ProjectedCast, *UnprojectedCast, *FoldingCast:
			free = false
		default:
			for _, k := range children(c) {
				if k.base().cast.Load() != 1 {
					free = false
					break
				}
			}
		}
		if free {
			c.base().cast.Store(1)
		} else {
			c.base().cast.Store(2)
		}
	})
	return n.cast.Load() == 1
}

// size sums occurrences with an explicit stack; sharing is counted once per
// occurrence, not once per node.
func size(t Term) int {
	total := 0
	stack := []Term{t}
	for len(stack) > 0 {
		top := len(stack) - 1
		c := stack[top]
		stack = stack[:top]
		switch x := c.(type) {
		case *Parameter, *Identifiable:
			total++
		case *Function:
			total++
			stack = append(stack, x.parameter.Type(), x.body)
		default:
			stack = append(stack, children(c)...)
		}
	}
	return total
}
