package term

import (
	"errors"
	"testing"
)

func TestProjectNestedFunction(t *testing.T) {
	f := newFixture(t)
	p := f.param("p", f.A)
	q := f.param("q", f.B)
	fn := NewFunction(p, NewFunction(q, p))

	pr, err := Project(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewFunction(q, p.Type())
	if !Equal(pr.Type(), want) {
		t.Errorf("type = %s, want %s", f.show(pr.Type()), f.show(want))
	}
	if pr.Function() != fn {
		t.Error("projection does not keep its function")
	}
}

func TestProjectionMismatch(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	tests := []struct {
		name string
		fn   *Function
	}{
		{"dependent codomain", NewFunction(x, mustCompose(t, f.h, x))},
		{"typeless body", NewFunction(x, Tau)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(tt.fn)
			if !errors.Is(err, ErrProjectionMismatch) {
				t.Errorf("Project(%s) error = %v, want projection mismatch", f.show(tt.fn), err)
			}
		})
	}
}

func TestProjectN(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	y := f.param("y", f.B)
	fn := NewFunction(x, NewFunction(y, f.c))

	one, err := ProjectN(fn, 1)
	if err != nil {
		t.Fatalf("ProjectN(1): %v", err)
	}
	if !Equal(one.Type(), NewFunction(y, f.A)) {
		t.Errorf("ProjectN(1) type = %s", f.show(one.Type()))
	}

	two, err := ProjectN(fn, 2)
	if err != nil {
		t.Fatalf("ProjectN(2): %v", err)
	}
	outer, ok := two.(*Projection)
	if !ok {
		t.Fatalf("ProjectN(2) = %T", two)
	}
	if _, ok := outer.Function().Body().(*Projection); !ok {
		t.Errorf("inner binder not projected: %s", f.show(two))
	}
	if two.Type() != Term(f.A) {
		t.Errorf("ProjectN(2) type = %s, want A", f.show(two.Type()))
	}

	three, err := ProjectN(fn, 3)
	if err != nil {
		t.Fatalf("ProjectN(3): %v", err)
	}
	if !Equal(three, two) {
		t.Errorf("ProjectN beyond the binders = %s, want %s", f.show(three), f.show(two))
	}

	if got, err := ProjectN(f.a, 0); err != nil || got != Term(f.a) {
		t.Errorf("ProjectN(a, 0) = %v, %v", got, err)
	}
	if _, err := ProjectN(f.a, 1); !errors.Is(err, ErrProjectionMismatch) {
		t.Errorf("ProjectN(a, 1) error = %v, want projection mismatch", err)
	}
}

func TestUnproject(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	y := f.param("y", f.B)
	fn := NewFunction(x, NewFunction(y, f.c))

	two, err := ProjectN(fn, 2)
	if err != nil {
		t.Fatalf("ProjectN: %v", err)
	}
	got, err := Unproject(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(got, fn) {
		t.Errorf("Unproject = %s, want %s", f.show(got), f.show(fn))
	}

	same, err := Unproject(fn)
	if err != nil || same != Term(fn) {
		t.Errorf("Unproject of a projection-free term = %v, %v", same, err)
	}
}

func TestUnprojectRetypesBinders(t *testing.T) {
	f := newFixture(t)
	y := f.param("y", f.B)
	pt := mustProject(t, NewFunction(y, f.A))
	z := f.param("z", pt)
	fn := NewFunction(z, z)

	got, err := Unproject(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := NewParameter(NewFunction(NewParameter(f.B), f.A))
	want := NewFunction(w, w)
	if !Equal(got, want) {
		t.Errorf("got %s, want %s", f.show(got), f.show(want))
	}
}

func TestUnprojectLiftsProjectionHeads(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	y := f.param("y", Tau)
	z := f.param("z", Tau)
	pr := mustProject(t, NewFunction(x, NewFunction(y, f.b)))
	outer := NewFunction(z, mustCompose(t, pr, z))

	projected := mustProject(t, outer)
	got, err := Unproject(projected)
	if err != nil {
		t.Fatalf("Unproject(%s): %v", f.show(projected), err)
	}
	direct, err := Unproject(outer)
	if err != nil {
		t.Fatalf("Unproject(%s): %v", f.show(outer), err)
	}
	if !Equal(got, direct) {
		t.Errorf("unprojecting the projection gave %s, want %s", f.show(got), f.show(direct))
	}
	// (pr z) becomes <x:A -> (<y:Τ -> b> z)> = <x:A -> b>.
	want := NewFunction(NewParameter(Tau), NewFunction(NewParameter(f.A), f.b))
	if !Equal(got, want) {
		t.Errorf("got %s, want %s", f.show(got), f.show(want))
	}
}

func TestUnprojectCastsRetypedBinders(t *testing.T) {
	f := newFixture(t)
	fn := NewFunction(NewParameter(f.A), f.B)
	pt := mustProject(t, fn)
	k := f.ident("k", NewFunction(NewParameter(pt), Tau))
	p := f.param("p", pt)
	g := NewFunction(p, mustCompose(t, k, p))

	projected := mustProject(t, g)
	got, err := Unproject(projected)
	if err != nil {
		t.Fatalf("Unproject(%s): %v", f.show(projected), err)
	}
	direct, err := Unproject(g)
	if err != nil {
		t.Fatalf("Unproject(%s): %v", f.show(g), err)
	}
	if !Equal(got, direct) {
		t.Errorf("unprojecting the projection gave %s, want %s", f.show(got), f.show(direct))
	}

	ug, ok := got.(*Function)
	if !ok {
		t.Fatalf("got %s, want a function", f.show(got))
	}
	if !Equal(ug.Parameter().Type(), fn) {
		t.Errorf("binder type = %s, want %s", f.show(ug.Parameter().Type()), f.show(fn))
	}
	// k keeps its type, so it sees the new binder cast back to the projection.
	c, ok := ug.Body().(*Composition)
	if !ok {
		t.Fatalf("body = %s, want a composition", f.show(ug.Body()))
	}
	cast, ok := c.Tail().(*ProjectedCast)
	if !ok || cast.Term() != Term(ug.Parameter()) {
		t.Errorf("argument = %s, want the cast binder", f.show(c.Tail()))
	}
}

func TestUnprojectKeepsIllFittingProjections(t *testing.T) {
	f := newFixture(t)
	g := f.ident("g", NewFunction(NewParameter(f.A), Tau))
	pr := mustProject(t, NewFunction(NewParameter(f.B), f.a))

	tests := []struct {
		name string
		t    Term
	}{
		{"projection argument", mustCompose(t, g, pr)},
		{"nested projection argument", mustCompose(t, f.s, mustCompose(t, f.s, pr))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unproject(tt.t)
			if err != nil {
				t.Fatalf("Unproject(%s): %v", f.show(tt.t), err)
			}
			if got != tt.t {
				t.Errorf("Unproject(%s) = %s, want it unchanged", f.show(tt.t), f.show(got))
			}
		})
	}
}

func TestUnprojectDeepTerms(t *testing.T) {
	f := newFixture(t)
	v := f.ident("v", f.A)
	leaf, err := NewFoldingCast(f.a, f.a, v)
	if err != nil {
		t.Fatalf("folding cast: %v", err)
	}
	var deep, want Term = leaf, f.a
	for i := 0; i < 100000; i++ {
		deep = mustCompose(t, f.s, deep)
		want = mustCompose(t, f.s, want)
	}
	got, err := Unproject(deep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(got, want) {
		t.Error("deep term not unprojected")
	}
	if !got.CastFree() {
		t.Error("cast left in deep term")
	}
}

func TestProjectNDeepChain(t *testing.T) {
	f := newFixture(t)
	var fn Term = f.c
	for i := 0; i < 50000; i++ {
		fn = NewFunction(NewParameter(f.B), fn)
	}
	pr, err := ProjectN(fn, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pr.Type() != Term(f.A) {
		t.Errorf("type = %s, want A", f.show(pr.Type()))
	}
	back, err := Unproject(pr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(back, fn) {
		t.Error("deep projection does not unproject to its function")
	}
}

func TestProjectedCast(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	fn := NewFunction(x, f.b)

	c, err := CastToProjectedType(fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pt, ok := c.Type().(*Projection)
	if !ok {
		t.Fatalf("cast type is %T", c.Type())
	}
	if !Equal(pt.Function(), fn.Type()) {
		t.Errorf("cast type = %s", f.show(pt))
	}
	if c.(*ProjectedCast).Term() != Term(fn) {
		t.Error("cast does not keep its term")
	}

	back, err := CastToUnprojectedType(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(back.Type(), fn.Type()) {
		t.Errorf("unprojected type = %s, want %s", f.show(back.Type()), f.show(fn.Type()))
	}

	u, err := Unproject(back)
	if err != nil || u != Term(fn) {
		t.Errorf("Unproject(%s) = %v, %v", f.show(back), u, err)
	}
}

func TestCastMismatch(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	tests := []struct {
		name string
		cast func() (Term, error)
	}{
		{"project atomic type", func() (Term, error) { return CastToProjectedType(f.a) }},
		{"project typeless codomain", func() (Term, error) { return CastToProjectedType(f.P) }},
		{"unproject function type", func() (Term, error) { return CastToUnprojectedType(NewFunction(x, f.b)) }},
		{"unrelated target", func() (Term, error) { return CastToTargetType(f.a, f.B) }},
		{"function to atomic", func() (Term, error) { return CastToTargetType(NewFunction(x, f.b), f.B) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cast()
			if !errors.Is(err, ErrCastMismatch) {
				t.Errorf("error = %v, want cast mismatch", err)
			}
			if got != nil {
				t.Errorf("got %s alongside the error", f.show(got))
			}
		})
	}
}

func TestCastToTargetType(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	y := f.param("y", f.B)

	if got, err := CastToTargetType(f.a, f.A); err != nil || got != Term(f.a) {
		t.Errorf("identity cast = %v, %v", got, err)
	}

	// function to its projection
	fn := NewFunction(x, f.b)
	target := mustProject(t, fn.Type().(*Function))
	got, err := CastToTargetType(fn, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(got.Type(), target) {
		t.Errorf("type = %s, want %s", f.show(got.Type()), f.show(target))
	}

	// and back
	back, err := CastToTargetType(got, fn.Type())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(back.Type(), fn.Type()) {
		t.Errorf("type = %s, want %s", f.show(back.Type()), f.show(fn.Type()))
	}

	// binder by binder: <x:A -> <y:B -> x>> to <x:A -> <y:B -> A>*>
	curried := NewFunction(x, NewFunction(y, x))
	x2 := NewParameter(f.A)
	goal := NewFunction(x2, mustProject(t, NewFunction(NewParameter(f.B), f.A)))
	got, err = CastToTargetType(curried, goal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(got.Type(), goal) {
		t.Errorf("type = %s, want %s", f.show(got.Type()), f.show(goal))
	}
	if got.CastFree() {
		t.Error("binder-wise cast introduced no cast")
	}
}

func TestFoldingCast(t *testing.T) {
	f := newFixture(t)
	ha := mustCompose(t, f.h, f.a)
	v := f.ident("v", f.A)

	c, err := NewFoldingCast(ha, f.a, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustCompose(t, f.P, v)
	if !Equal(c.Type(), want) {
		t.Errorf("type = %s, want %s", f.show(c.Type()), f.show(want))
	}
	if c.Term() != ha || c.Value() != Term(f.a) || c.Variable() != Variable(v) {
		t.Error("folding cast does not keep its operands")
	}
	if c.CastFree() {
		t.Error("folding cast reported cast free")
	}
	if got := f.show(c); got != "[(h a) | a := v]" {
		t.Errorf("Format = %q", got)
	}

	u, err := Unproject(c)
	if err != nil || u != ha {
		t.Errorf("Unproject = %v, %v", u, err)
	}
}

func TestFoldingCastMismatch(t *testing.T) {
	f := newFixture(t)
	ha := mustCompose(t, f.h, f.a)
	vb := NewIdentifiable(f.B)
	if _, err := NewFoldingCast(ha, f.a, vb); !errors.Is(err, ErrCastMismatch) {
		t.Errorf("variable of another type: error = %v, want cast mismatch", err)
	}

	// Folding a into v inside (E a v) yields (E v v), which does not unfold back.
	v := NewIdentifiable(f.A)
	e := NewIdentifiable(mustCompose(t, f.E, f.a, v))
	if _, err := NewFoldingCast(e, f.a, v); !errors.Is(err, ErrCastMismatch) {
		t.Errorf("ambiguous fold: error = %v, want cast mismatch", err)
	}

	if _, err := NewFoldingCast(Tau, f.a, v); !errors.Is(err, ErrCastMismatch) {
		t.Errorf("typeless term: error = %v, want cast mismatch", err)
	}
}
