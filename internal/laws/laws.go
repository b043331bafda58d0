// Package laws checks algebraic properties of the term package over randomly
// generated terms.
package laws

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/funvibe/kernel/internal/term"
	"github.com/funvibe/kernel/internal/termgen"
)

// Law is a property every generated term must satisfy. Check returns nil
// when the property holds, or when the generated input does not apply.
type Law struct {
	Name  string
	Check func(g *termgen.Generator, depth int) error
}

// Failure records one violated law.
type Failure struct {
	Law       string
	Iteration int
	Err       error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s #%d: %v", f.Law, f.Iteration, f.Err)
}

// All lists the known laws in reporting order.
var All = []Law{
	{Name: "alpha", Check: checkAlpha},
	{Name: "compose-beta", Check: checkComposeBeta},
	{Name: "tau-compose", Check: checkTauCompose},
	{Name: "replace-identity", Check: checkReplaceIdentity},
	{Name: "replace-roundtrip", Check: checkReplaceRoundTrip},
	{Name: "project-roundtrip", Check: checkProjectRoundTrip},
	{Name: "identity-cast", Check: checkIdentityCast},
	{Name: "cast-roundtrip", Check: checkCastRoundTrip},
	{Name: "match-sound", Check: checkMatchSound},
}

// Names returns the names of all known laws.
func Names() []string {
	return lo.Map(All, func(l Law, _ int) string { return l.Name })
}

// Select returns the laws named, in the order given. An empty list selects
// every law.
func Select(names []string) ([]Law, error) {
	if len(names) == 0 {
		return All, nil
	}
	selected := make([]Law, 0, len(names))
	for _, name := range names {
		l, ok := lo.Find(All, func(l Law) bool { return l.Name == name })
		if !ok {
			return nil, fmt.Errorf("unknown law %q", name)
		}
		selected = append(selected, l)
	}
	return selected, nil
}

// Run checks each law count times against terms of the given depth drawn
// from g. It returns every failure found.
func Run(g *termgen.Generator, laws []Law, count, depth int) []Failure {
	var failures []Failure
	for i := 0; i < count; i++ {
		for _, l := range laws {
			if err := l.Check(g, depth); err != nil {
				failures = append(failures, Failure{Law: l.Name, Iteration: i, Err: err})
			}
		}
	}
	return failures
}

func show(g *termgen.Generator, t term.Term) string {
	if t == nil {
		return "<nil>"
	}
	return term.Format(t, g.Signature().Labeler())
}

// checkAlpha: a term is equal to itself and to any renaming of its binders,
// in both directions, with agreeing hashes.
func checkAlpha(g *termgen.Generator, depth int) error {
	t := g.Term(depth)
	if !term.Equal(t, t) {
		return fmt.Errorf("%s is not equal to itself", show(g, t))
	}
	r, err := term.Refresh(t)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", show(g, t), err)
	}
	if !term.Equal(t, r) || !term.Equal(r, t) {
		return fmt.Errorf("%s and its renaming %s differ", show(g, t), show(g, r))
	}
	if t.HashCode() != r.HashCode() {
		return fmt.Errorf("%s and its renaming hash differently", show(g, t))
	}
	u, err := term.Refresh(r)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", show(g, r), err)
	}
	if !term.Equal(t, u) {
		return fmt.Errorf("%s and %s are not transitively equal", show(g, t), show(g, u))
	}
	return nil
}

// checkComposeBeta: applying a function equals replacing its parameter in
// its body.
func checkComposeBeta(g *termgen.Generator, depth int) error {
	f := g.Function(depth)
	arg := term.NewIdentifiable(f.Parameter().Type())
	got, err := term.Compose(f, arg)
	if err != nil {
		return fmt.Errorf("compose %s: %w", show(g, f), err)
	}
	want, err := term.ReplaceVariable(f.Body(), f.Parameter(), arg)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", show(g, f), err)
	}
	if !term.Equal(got, want) {
		return fmt.Errorf("compose gave %s, replace gave %s", show(g, got), show(g, want))
	}
	if !term.Equal(got.Type(), want.Type()) {
		return fmt.Errorf("types of %s disagree", show(g, got))
	}
	return nil
}

// checkTauCompose: Tau heads no composition.
func checkTauCompose(g *termgen.Generator, depth int) error {
	t := g.Term(depth)
	if _, err := term.Compose(term.Tau, t); !errors.Is(err, term.ErrComposeMismatch) {
		return fmt.Errorf("compose Tau with %s: got %v", show(g, t), err)
	}
	return nil
}

// checkReplaceIdentity: replacing a free variable by itself is a no-op.
func checkReplaceIdentity(g *termgen.Generator, depth int) error {
	t := g.Term(depth)
	for _, v := range t.FreeVariables().Slice() {
		got, err := term.Replace(t, []term.Replacement{{Variable: v, Term: v}}, nil)
		if err != nil {
			return fmt.Errorf("replace %s in %s: %w", show(g, v), show(g, t), err)
		}
		if got != t {
			return fmt.Errorf("identity replacement of %s rebuilt %s", show(g, v), show(g, t))
		}
	}
	return nil
}

// checkReplaceRoundTrip: renaming a free identifiable variable away and back
// restores the term.
func checkReplaceRoundTrip(g *termgen.Generator, depth int) error {
	t := g.Term(depth)
	v, ok := someIdentifiable(t)
	if !ok {
		return nil
	}
	w := term.NewIdentifiable(v.Type())
	there, err := term.ReplaceVariable(t, v, w)
	if err != nil {
		return fmt.Errorf("replace %s in %s: %w", show(g, v), show(g, t), err)
	}
	if there.IsFreeVariable(v) {
		return fmt.Errorf("%s still free after replacement in %s", show(g, v), show(g, there))
	}
	back, err := term.ReplaceVariable(there, w, v)
	if err != nil {
		return fmt.Errorf("replace back in %s: %w", show(g, there), err)
	}
	if !term.Equal(back, t) {
		return fmt.Errorf("round trip of %s gave %s", show(g, t), show(g, back))
	}
	return nil
}

// checkProjectRoundTrip: a projection unprojects to its function, and a
// failed projection is always a dependent or typeless body.
func checkProjectRoundTrip(g *termgen.Generator, depth int) error {
	f := g.Function(depth)
	p, err := term.Project(f)
	if err != nil {
		if !errors.Is(err, term.ErrProjectionMismatch) {
			return fmt.Errorf("project %s: %w", show(g, f), err)
		}
		bt := f.Body().Type()
		if bt != nil && !bt.IsFreeVariable(f.Parameter()) {
			return fmt.Errorf("project %s refused an independent codomain", show(g, f))
		}
		return nil
	}
	if !term.Equal(p.Type(), f.Body().Type()) {
		return fmt.Errorf("projection of %s has type %s", show(g, f), show(g, p.Type()))
	}
	up, err := term.Unproject(p)
	if err != nil {
		return fmt.Errorf("unproject %s: %w", show(g, p), err)
	}
	uf, err := term.Unproject(f)
	if err != nil {
		return fmt.Errorf("unproject %s: %w", show(g, f), err)
	}
	if !term.Equal(up, uf) {
		return fmt.Errorf("unproject of %s gave %s, want %s", show(g, p), show(g, up), show(g, uf))
	}
	return nil
}

// checkIdentityCast: casting a term to its own type returns the term.
func checkIdentityCast(g *termgen.Generator, depth int) error {
	t := g.Term(depth)
	if t.Type() == nil {
		return nil
	}
	c, err := term.CastToTargetType(t, t.Type())
	if err != nil {
		return fmt.Errorf("cast %s to its own type: %w", show(g, t), err)
	}
	if c != t {
		return fmt.Errorf("cast %s to its own type gave %s", show(g, t), show(g, c))
	}
	return nil
}

// checkCastRoundTrip: a term cast to its projected type can be cast back to
// a term of the original type.
func checkCastRoundTrip(g *termgen.Generator, depth int) error {
	t := g.Term(depth)
	if _, ok := t.Type().(*term.Function); !ok {
		return nil
	}
	c, err := term.CastToProjectedType(t)
	if err != nil {
		if !errors.Is(err, term.ErrCastMismatch) {
			return fmt.Errorf("cast %s: %w", show(g, t), err)
		}
		return nil
	}
	if _, ok := c.Type().(*term.Projection); !ok {
		return fmt.Errorf("cast %s has type %s", show(g, c), show(g, c.Type()))
	}
	back, err := term.CastToTargetType(c, t.Type())
	if err != nil {
		return fmt.Errorf("cast %s back: %w", show(g, c), err)
	}
	if !term.Equal(back.Type(), t.Type()) {
		return fmt.Errorf("cast %s back has type %s, want %s", show(g, c), show(g, back.Type()), show(g, t.Type()))
	}
	return nil
}

// checkMatchSound: abstracting a free identifiable variable out of a term
// gives a pattern that matches the term, and the assignment found rebuilds
// it.
func checkMatchSound(g *termgen.Generator, depth int) error {
	t := g.Term(depth)
	v, ok := someIdentifiable(t)
	if !ok {
		return nil
	}
	x := term.NewIdentifiable(v.Type())
	pattern, err := term.ReplaceVariable(t, v, x)
	if err != nil {
		return fmt.Errorf("abstract %s in %s: %w", show(g, v), show(g, t), err)
	}
	res, ok := term.Match(pattern, term.NewVarSet(x), t, nil)
	if !ok {
		return fmt.Errorf("%s does not match %s", show(g, pattern), show(g, t))
	}
	got, err := term.Apply(pattern, res.Left)
	if err != nil {
		return fmt.Errorf("apply assignment to %s: %w", show(g, pattern), err)
	}
	if !term.Equal(got, t) {
		return fmt.Errorf("assignment rebuilt %s, want %s", show(g, got), show(g, t))
	}
	return nil
}

// someIdentifiable picks a free identifiable variable of t that no type
// reachable from t's free variables mentions. Replacing such a variable by
// another of the same type keeps every composition well typed.
func someIdentifiable(t term.Term) (*term.Identifiable, bool) {
	free := t.FreeVariables()
	reach := free.Copy()
	work := free.Slice()
	for len(work) > 0 {
		u := work[len(work)-1]
		work = work[:len(work)-1]
		for _, w := range u.Type().FreeVariables().Slice() {
			if reach.Insert(w) {
				work = append(work, w)
			}
		}
	}
	ids := lo.FilterMap(free.Slice(), func(v term.Variable, _ int) (*term.Identifiable, bool) {
		id, ok := v.(*term.Identifiable)
		return id, ok
	})
	// Set order is random; the pick must only depend on the generator.
	slices.SortFunc(ids, func(a, b *term.Identifiable) int { return strings.Compare(a.Hash(), b.Hash()) })
	for _, id := range ids {
		mentioned := lo.SomeBy(reach.Slice(), func(u term.Variable) bool {
			return u.Type().IsFreeVariable(id)
		})
		if !mentioned {
			return id, true
		}
	}
	return nil, false
}
