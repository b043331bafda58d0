package term

import (
	"errors"
	"testing"
)

func TestReplaceAvoidsCapture(t *testing.T) {
	f := newFixture(t)
	y := f.param("y", f.A)
	z := f.param("z", f.A)
	fn := NewFunction(y, mustCompose(t, f.E, z, y))

	// z := y must not let the binder y capture the incoming y.
	got, err := ReplaceVariable(fn, z, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := NewParameter(f.A)
	want := NewFunction(w, mustCompose(t, f.E, y, w))
	if !Equal(got, want) {
		t.Errorf("got %s, want %s", f.show(got), f.show(want))
	}
	if !got.IsFreeVariable(y) {
		t.Error("replacing parameter was captured")
	}
}

func TestReplaceSkipsBoundOccurrences(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	fn := NewFunction(x, mustCompose(t, f.P, x))
	got, err := ReplaceVariable(fn, x, f.a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Term(fn) {
		t.Errorf("bound occurrence replaced: %s", f.show(got))
	}
}

func TestReplaceRetypesBinders(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.A)
	y := f.param("y", mustCompose(t, f.P, x))
	// <y:(P x) -> y> with x free
	fn := NewFunction(y, y)

	got, err := ReplaceVariable(fn, x, f.a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, ok := got.(*Function)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if !Equal(g.Parameter().Type(), mustCompose(t, f.P, f.a)) {
		t.Errorf("binder type = %s, want (P a)", f.show(g.Parameter().Type()))
	}
	if !Equal(got.Type(), NewFunction(g.Parameter(), mustCompose(t, f.P, f.a))) {
		t.Errorf("type = %s", f.show(got.Type()))
	}
}

func TestReplaceTypeMismatch(t *testing.T) {
	f := newFixture(t)
	_, err := ReplaceVariable(mustCompose(t, f.P, f.a), f.a, f.b)
	if !errors.Is(err, ErrReplaceMismatch) {
		t.Fatalf("error = %v, want replace mismatch", err)
	}
	var terr *Error
	if errors.As(err, &terr) && (len(terr.Terms) != 2 || terr.Terms[0] != Term(f.a) || terr.Terms[1] != Term(f.b)) {
		t.Errorf("error terms = %v", terr.Terms)
	}
}

func TestReplaceChecksTypesAfterReplacement(t *testing.T) {
	f := newFixture(t)
	v := NewIdentifiable(f.A)
	// v : A may become b : B when A itself becomes B.
	got, err := Replace(v, []Replacement{{Variable: f.A, Term: f.B}, {Variable: v, Term: f.b}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Term(f.b) {
		t.Errorf("got %s, want b", f.show(got))
	}

	_, err = Replace(v, []Replacement{{Variable: v, Term: f.b}}, nil)
	if !errors.Is(err, ErrReplaceMismatch) {
		t.Errorf("error = %v, want replace mismatch", err)
	}
}

func TestReplaceRebuildFailure(t *testing.T) {
	f := newFixture(t)
	// Swapping the sort under P's argument breaks (P a).
	v := NewIdentifiable(f.B)
	_, err := Replace(mustCompose(t, f.P, f.a), []Replacement{{Variable: f.A, Term: f.B}, {Variable: f.a, Term: v}}, nil)
	if !errors.Is(err, ErrComposeMismatch) {
		t.Errorf("error = %v, want compose mismatch", err)
	}
}

func TestReplaceList(t *testing.T) {
	f := newFixture(t)
	term := mustCompose(t, f.E, f.a, f.c)

	tests := []struct {
		name    string
		reps    []Replacement
		exclude *VarSet
		want    Term
	}{
		{
			name: "earliest wins",
			reps: []Replacement{{Variable: f.a, Term: f.d}, {Variable: f.a, Term: f.c}},
			want: mustCompose(t, f.E, f.d, f.c),
		},
		{
			name: "simultaneous",
			reps: []Replacement{{Variable: f.a, Term: f.c}, {Variable: f.c, Term: f.a}},
			want: mustCompose(t, f.E, f.c, f.a),
		},
		{
			name:    "excluded",
			reps:    []Replacement{{Variable: f.a, Term: f.d}, {Variable: f.c, Term: f.d}},
			exclude: NewVarSet(f.a),
			want:    mustCompose(t, f.E, f.a, f.d),
		},
		{
			name: "identity",
			reps: []Replacement{{Variable: f.a, Term: f.a}},
			want: term,
		},
		{
			name: "empty",
			want: term,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Replace(term, tt.reps, tt.exclude)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("got %s, want %s", f.show(got), f.show(tt.want))
			}
		})
	}
}

func TestReplaceUntouchedKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	term := mustCompose(t, f.E, f.a, f.c)
	got, err := ReplaceVariable(term, f.b, NewIdentifiable(f.B))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != term {
		t.Error("term without the variable was rebuilt")
	}
}

func TestApply(t *testing.T) {
	f := newFixture(t)
	s := make(Subst)
	s.Put(f.a, f.c)
	s.Put(f.c, f.a)
	if got, ok := s.Lookup(f.a); !ok || got != Term(f.c) {
		t.Errorf("Lookup(a) = %v, %v", got, ok)
	}
	if len(s.Variables()) != 2 {
		t.Errorf("variables = %v", s.Variables())
	}

	got, err := Apply(mustCompose(t, f.E, f.a, f.c), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustCompose(t, f.E, f.c, f.a)
	if !Equal(got, want) {
		t.Errorf("got %s, want %s", f.show(got), f.show(want))
	}

	bad := make(Subst)
	bad.Put(f.a, f.b)
	if _, err := Apply(f.a, bad); !errors.Is(err, ErrReplaceMismatch) {
		t.Errorf("error = %v, want replace mismatch", err)
	}

	if got, err := Apply(f.a, nil); err != nil || got != Term(f.a) {
		t.Errorf("Apply(a, nil) = %v, %v", got, err)
	}
}

func TestReplaceThroughProjection(t *testing.T) {
	f := newFixture(t)
	x := f.param("x", f.B)
	pr := mustProject(t, NewFunction(x, f.a))
	got, err := ReplaceVariable(pr, f.a, f.c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustProject(t, NewFunction(NewParameter(f.B), f.c))
	if !Equal(got, want) {
		t.Errorf("got %s, want %s", f.show(got), f.show(want))
	}
	if _, ok := got.(*Projection); !ok {
		t.Errorf("got %T, want *Projection", got)
	}
}
