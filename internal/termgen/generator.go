// Package termgen generates random well-typed terms over a small fixed
// signature. It drives the law checks of the command-line tool and the fuzz
// targets of the term package.
package termgen

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/funvibe/kernel/internal/term"
)

// Source yields the choices a Generator makes.
type Source interface {
	Intn(n int) int
}

// seeded draws choices from math/rand; a seed replays the same terms.
type seeded struct {
	r *rand.Rand
}

func (s seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.Intn(n)
}

// replay takes its choices from fuzz input, one byte each. Exhausted input
// answers 0, which steers the generator to its first alternative, a leaf.
type replay struct {
	data []byte
}

func (s *replay) Intn(n int) int {
	if n <= 0 || len(s.data) == 0 {
		return 0
	}
	b := s.data[0]
	s.data = s.data[1:]
	return int(b) % n
}

// namespace roots the ids of the signature so that every generator, in
// every process, builds the same identifiable variables.
var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("funvibe/kernel/termgen"))

// Signature is the vocabulary generated terms are built over:
//
//	A, B : Τ
//	a : A, b : B
//	P : <x:A -> Τ>
//	R : <x:A -> <y:B -> Τ>>
//	h : <x:A -> (P x)>
type Signature struct {
	A, B  *term.Identifiable
	Ca    *term.Identifiable
	Cb    *term.Identifiable
	P     *term.Identifiable
	R     *term.Identifiable
	H     *term.Identifiable
	names map[string]string
}

func named(name string, typ term.Term) *term.Identifiable {
	return term.NewIdentifiableWithID(uuid.NewSHA1(namespace, []byte(name)), typ)
}

// NewSignature builds the signature. Calls return alpha-equivalent
// signatures with identical ids.
func NewSignature() *Signature {
	s := &Signature{}
	s.A = named("A", term.Tau)
	s.B = named("B", term.Tau)
	s.Ca = named("a", s.A)
	s.Cb = named("b", s.B)

	x := term.NewParameter(s.A)
	s.P = named("P", term.NewFunction(x, term.Tau))

	rx, ry := term.NewParameter(s.A), term.NewParameter(s.B)
	s.R = named("R", term.NewFunction(rx, term.NewFunction(ry, term.Tau)))

	hx := term.NewParameter(s.A)
	px, err := term.Compose(s.P, hx)
	if err != nil {
		panic("termgen: ill-typed signature: " + err.Error())
	}
	s.H = named("h", term.NewFunction(hx, px))

	s.names = map[string]string{
		s.A.Hash(): "A", s.B.Hash(): "B",
		s.Ca.Hash(): "a", s.Cb.Hash(): "b",
		s.P.Hash(): "P", s.R.Hash(): "R", s.H.Hash(): "h",
	}
	return s
}

// Variables returns the signature's variables.
func (s *Signature) Variables() []term.Variable {
	return []term.Variable{s.A, s.B, s.Ca, s.Cb, s.P, s.R, s.H}
}

// Labeler names the signature's variables.
func (s *Signature) Labeler() term.Labeler {
	return func(v term.Variable) (string, bool) {
		name, ok := s.names[v.Hash()]
		return name, ok
	}
}

// Generator generates random well-typed terms.
type Generator struct {
	src   Source
	sig   *Signature
	scope []*term.Parameter
}

const MaxDepth = 12

// New returns a generator whose choices are fixed by seed.
func New(seed int64) *Generator {
	return NewFromSource(seeded{rand.New(rand.NewSource(seed))})
}

// NewFromData returns a generator replaying the choices encoded in data.
func NewFromData(data []byte) *Generator {
	return NewFromSource(&replay{data: data})
}

func NewFromSource(src Source) *Generator {
	return &Generator{src: src, sig: NewSignature()}
}

func (g *Generator) Intn(n int) int {
	return g.src.Intn(n)
}

func (g *Generator) Signature() *Signature {
	return g.sig
}

// pool lists the terms available as leaves: the signature and the
// parameters of the enclosing binders.
func (g *Generator) pool() []term.Term {
	ts := lo.Map(g.sig.Variables(), func(v term.Variable, _ int) term.Term { return v })
	for _, p := range g.scope {
		ts = append(ts, p)
	}
	return ts
}

func (g *Generator) pick(ts []term.Term) term.Term {
	return ts[g.src.Intn(len(ts))]
}

// ofType returns the leaves whose type is typ.
func (g *Generator) ofType(typ term.Term) []term.Term {
	return lo.Filter(g.pool(), func(t term.Term, _ int) bool { return term.Equal(t.Type(), typ) })
}

// Type generates a term usable as a parameter type.
func (g *Generator) Type(depth int) term.Term {
	depth = min(depth, MaxDepth)
	switch choice := g.src.Intn(9); {
	case choice < 3:
		return g.sig.A
	case choice < 5:
		return g.sig.B
	case choice < 6 && depth > 0:
		// (P a) for some a : A in scope
		if t, err := term.Compose(g.sig.P, g.pick(g.ofType(g.sig.A))); err == nil {
			return t
		}
		return g.sig.A
	case choice < 7 && depth > 0:
		// <x:T -> U>
		p := term.NewParameter(g.Type(depth - 1))
		return term.NewFunction(p, g.Type(depth-1))
	case choice < 8 && depth > 0:
		// <x:T -> U>* for a typed U, which never mentions x
		p := term.NewParameter(g.Type(depth - 1))
		if pr, err := term.Project(term.NewFunction(p, g.Type(depth-1))); err == nil {
			return pr
		}
		return g.sig.B
	default:
		return term.Tau
	}
}

// Term generates a well-typed term of nesting depth at most depth. Every
// parameter occurring in the result is bound inside it.
func (g *Generator) Term(depth int) term.Term {
	depth = min(depth, MaxDepth)
	if depth <= 0 {
		return g.pick(g.pool())
	}
	// Weighted choice
	choice := g.src.Intn(12)
	switch {
	case choice < 2: // 0, 1
		return g.pick(g.pool())
	case choice < 5: // 2, 3, 4
		if t, ok := g.composition(depth); ok {
			return t
		}
	case choice < 8: // 5, 6, 7
		return g.Function(depth)
	case choice < 9: // 8
		if t, err := term.Project(g.Function(depth)); err == nil {
			return t
		}
	case choice < 10: // 9
		if t, ok := g.cast(depth); ok {
			return t
		}
	default: // 10, 11
		if t, ok := g.expansion(depth); ok {
			return t
		}
	}
	return g.pick(g.pool())
}

// Function generates a function binding a fresh parameter.
func (g *Generator) Function(depth int) *term.Function {
	p := term.NewParameter(g.Type(depth - 1))
	g.scope = append(g.scope, p)
	body := g.Term(depth - 1)
	g.scope = g.scope[:len(g.scope)-1]
	return term.NewFunction(p, body)
}

// composition applies a term of functional type to a leaf of its domain.
func (g *Generator) composition(depth int) (term.Term, bool) {
	head := g.functional(depth - 1)
	if head == nil {
		return nil, false
	}
	dom, err := term.Domain(head)
	if err != nil {
		return nil, false
	}
	args := g.ofType(dom)
	if len(args) == 0 {
		return nil, false
	}
	t, err := term.Compose(head, g.pick(args))
	return t, err == nil
}

// expansion wraps a term of functional type in a binder applying it:
// <x:T -> (f x)>.
func (g *Generator) expansion(depth int) (term.Term, bool) {
	head := g.functional(depth - 1)
	if head == nil {
		return nil, false
	}
	dom, err := term.Domain(head)
	if err != nil {
		return nil, false
	}
	p := term.NewParameter(dom)
	body, err := term.Compose(head, p)
	if err != nil {
		return nil, false
	}
	return term.NewFunction(p, body), true
}

// cast retypes a generated term between function and projection shapes.
func (g *Generator) cast(depth int) (term.Term, bool) {
	t := g.Term(depth - 1)
	switch t.Type().(type) {
	case *term.Function:
		c, err := term.CastToProjectedType(t)
		return c, err == nil
	case *term.Projection:
		c, err := term.CastToUnprojectedType(t)
		return c, err == nil
	}
	return nil, false
}

// functional returns a term whose type is a function, or nil.
func (g *Generator) functional(depth int) term.Term {
	candidates := lo.Filter(g.pool(), func(t term.Term, _ int) bool {
		_, ok := t.Type().(*term.Function)
		return ok
	})
	if depth > 0 && g.src.Intn(3) == 0 {
		if t := g.Term(depth); isFunctional(t) {
			return t
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return g.pick(candidates)
}

func isFunctional(t term.Term) bool {
	_, ok := t.Type().(*term.Function)
	return ok
}
