package term

import "github.com/samber/lo"

// Replacement maps a variable to the term taking its place.
type Replacement struct {
	Variable Variable
	Term     Term
}

// Subst is a simultaneous replacement keyed by variable identity.
type Subst map[string]Replacement

// Put maps v to t, overriding any previous entry for v.
func (s Subst) Put(v Variable, t Term) {
	s[v.Hash()] = Replacement{Variable: v, Term: t}
}

// Lookup returns the term v is mapped to.
func (s Subst) Lookup(v Variable) (Term, bool) {
	r, ok := s[v.Hash()]
	return r.Term, ok
}

// Variables returns the domain of s in no particular order.
func (s Subst) Variables() []Variable {
	return lo.MapToSlice(s, func(_ string, r Replacement) Variable { return r.Variable })
}

// renaming records a binder renamed during a traversal. Renamings are
// consulted before any other replacement, which is what shadows outer
// replacements for the variables a binder introduces.
type renaming struct {
	from *Parameter
	to   *Parameter
	next *renaming
}

// replacer rewrites variable occurrences. Every binder crossed on the way is
// renamed to a fresh parameter, so no free variable of a replacing term can
// be captured.
type replacer struct {
	domain []Variable
	lookup func(v Variable) (Term, bool)
	// all forces a full traversal, renaming every binder.
	all bool
}

func (r *replacer) find(v Variable, scope *renaming) (Term, bool) {
	for e := scope; e != nil; e = e.next {
		if sameVariable(e.from, v) {
			return e.to, true
		}
	}
	if r.lookup == nil {
		return nil, false
	}
	return r.lookup(v)
}

// touches reports whether rewriting t could change it.
func (r *replacer) touches(t Term, scope *renaming) bool {
	if r.all {
		return true
	}
	fs := freeSet(t)
	if fs.Empty() {
		return false
	}
	for e := scope; e != nil; e = e.next {
		if fs.Contains(e.from) {
			return true
		}
	}
	for _, v := range r.domain {
		if fs.Contains(v) {
			return true
		}
	}
	return false
}

type replaceFrame struct {
	t     Term
	scope *renaming
	stage int
	fresh *Parameter
}

// run rewrites t with an explicit frame stack; results of finished frames
// are collected on out in completion order.
func (r *replacer) run(t Term) (Term, error) {
	stack := []*replaceFrame{{t: t}}
	var out []Term
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		if f.stage == 0 && !r.touches(f.t, f.scope) {
			stack = stack[:top]
			out = append(out, f.t)
			continue
		}
		switch x := f.t.(type) {
		case Variable:
			stack = stack[:top]
			if rep, ok := r.find(x, f.scope); ok {
				out = append(out, rep)
			} else {
				out = append(out, x)
			}
		case *Function:
			switch f.stage {
			case 0:
				f.stage = 1
				stack = append(stack, &replaceFrame{t: x.parameter.Type(), scope: f.scope})
			case 1:
				last := len(out) - 1
				f.fresh = NewParameter(out[last])
				out = out[:last]
				f.stage = 2
				stack = append(stack, &replaceFrame{
					t:     x.body,
					scope: &renaming{from: x.parameter, to: f.fresh, next: f.scope},
				})
			default:
				last := len(out) - 1
				body := out[last]
				out = out[:last]
				stack = stack[:top]
				out = append(out, NewFunction(f.fresh, body))
			}
		default:
			kids := children(x)
			if f.stage == 0 {
				f.stage = 1
				for i := len(kids) - 1; i >= 0; i-- {
					stack = append(stack, &replaceFrame{t: kids[i], scope: f.scope})
				}
				continue
			}
			n := len(out) - len(kids)
			rebuilt, err := rebuild(x, kids, out[n:])
			if err != nil {
				return nil, err
			}
			out = append(out[:n], rebuilt)
			stack = stack[:top]
		}
	}
	return out[0], nil
}

// rebuild reconstructs a simple composite term from rewritten children,
// re-running the typing rules of its constructor.
func rebuild(t Term, old, kids []Term) (Term, error) {
	same := true
	for i := range old {
		if old[i] != kids[i] {
			same = false
			break
		}
	}
	if same {
		return t, nil
	}
	switch x := t.(type) {
	case *Composition:
		return Compose(kids[0], kids[1])
	case *Projection:
		f, ok := kids[0].(*Function)
		if !ok {
			return nil, newError(ProjectionMismatch, nil, x, kids[0])
		}
		return asTerm(Project(f))
	case *ProjectedCast:
		return asTerm(NewProjectedCast(kids[0]))
	case *UnprojectedCast:
		return asTerm(NewUnprojectedCast(kids[0]))
	case *FoldingCast:
		v, ok := kids[2].(Variable)
		if !ok {
			return nil, newError(ReplaceMismatch, nil, x.variable, kids[2])
		}
		return asTerm(NewFoldingCast(kids[0], kids[1], v))
	default:
		panic(unknownVariant(t))
	}
}

// substitute replaces v by with in t without checking their types.
func substitute(t Term, v Variable, with Term) (Term, error) {
	r := &replacer{
		domain: []Variable{v},
		lookup: func(w Variable) (Term, bool) {
			if sameVariable(v, w) {
				return with, true
			}
			return nil, false
		},
	}
	return r.run(t)
}

func listReplacer(reps []Replacement) *replacer {
	return &replacer{
		domain: lo.Map(reps, func(r Replacement, _ int) Variable { return r.Variable }),
		lookup: func(v Variable) (Term, bool) {
			for _, r := range reps {
				if sameVariable(r.Variable, v) {
					return r.Term, true
				}
			}
			return nil, false
		},
	}
}

func substReplacer(s Subst) *replacer {
	return &replacer{domain: s.Variables(), lookup: s.Lookup}
}

// check verifies that each replacing term has the type of the variable it
// replaces, once the replacements themselves are applied to that type.
func (r *replacer) check(reps []Replacement) error {
	for _, rep := range reps {
		vt, tt := rep.Variable.Type(), rep.Term.Type()
		if Equal(vt, tt) {
			continue
		}
		expected, err := r.run(vt)
		if err != nil || !Equal(expected, tt) {
			return newError(ReplaceMismatch, err, rep.Variable, rep.Term)
		}
	}
	return nil
}

// Replace applies an ordered list of replacements to t. When several
// entries name the same variable the earliest wins. Entries whose variable
// is in exclude, or which map a variable to itself, are skipped.
func Replace(t Term, reps []Replacement, exclude *VarSet) (Term, error) {
	active := lo.Filter(reps, func(r Replacement, _ int) bool {
		if exclude != nil && exclude.Contains(r.Variable) {
			return false
		}
		return !Equal(r.Term, r.Variable)
	})
	if len(active) == 0 {
		return t, nil
	}
	r := listReplacer(active)
	if err := r.check(active); err != nil {
		return nil, err
	}
	return r.run(t)
}

// ReplaceVariable replaces every free occurrence of v in t by with.
func ReplaceVariable(t Term, v Variable, with Term) (Term, error) {
	return Replace(t, []Replacement{{Variable: v, Term: with}}, nil)
}

// Apply replaces simultaneously every variable in the domain of s.
func Apply(t Term, s Subst) (Term, error) {
	if len(s) == 0 {
		return t, nil
	}
	r := substReplacer(s)
	entries := lo.Values(s)
	if err := r.check(entries); err != nil {
		return nil, err
	}
	return r.run(t)
}

// applyUnchecked is Apply without the type check of the entries. The
// matcher uses it while the types of its assignments are still pending.
func applyUnchecked(t Term, s Subst) (Term, error) {
	if len(s) == 0 {
		return t, nil
	}
	return substReplacer(s).run(t)
}

// Refresh returns a copy of t in which every binder is renamed to a fresh
// parameter. The result is alpha-equivalent to t and shares no bound
// parameter with it.
func Refresh(t Term) (Term, error) {
	return (&replacer{all: true}).run(t)
}
