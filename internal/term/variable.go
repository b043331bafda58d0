package term

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Variable is an atomic term standing for an unknown. It is either a
// *Parameter or an *Identifiable.
type Variable interface {
	SimpleTerm
	// Hash returns the identity key of the variable. It makes variables
	// usable in a VarSet and as Subst keys; it is unrelated to HashCode.
	Hash() string
	variable()
}

var parameterHandles atomic.Uint64

// Parameter is a binder-only variable. Its identity is a handle minted at
// construction; two parameters are never the same variable unless they are
// the same handle, and comparisons across binders go through a
// correspondence built during traversal.
type Parameter struct {
	node
	handle uint64
	key    string
}

// NewParameter mints a fresh parameter of the given type.
func NewParameter(typ Term) *Parameter {
	if typ == nil {
		panic("term: parameter without type")
	}
	h := parameterHandles.Add(1)
	p := &Parameter{handle: h, key: "#" + strconv.FormatUint(h, 10)}
	p.typ = typ
	return p
}

// Handle returns the process-local handle identifying p.
func (p *Parameter) Handle() uint64 { return p.handle }

func (p *Parameter) Hash() string { return p.key }

func (*Parameter) variable() {}
func (*Parameter) simple()   {}

func (*Parameter) Size() int { return 1 }

func (p *Parameter) FreeVariables() *VarSet { return NewVarSet(p) }

func (p *Parameter) IsFreeVariable(v Variable) bool { return sameVariable(p, v) }

func (*Parameter) CastFree() bool { return true }

func (p *Parameter) HashCode() uint64 { return hashOf(p) }

func (p *Parameter) String() string { return Format(p, nil) }

// Identifiable is a variable with a stable, globally unique id. It denotes a
// named entity and may occur free; it can never be a binder.
type Identifiable struct {
	node
	id  uuid.UUID
	key string
}

// NewIdentifiable mints an identifiable variable with a random id.
func NewIdentifiable(typ Term) *Identifiable {
	return NewIdentifiableWithID(uuid.New(), typ)
}

// NewIdentifiableWithID rebuilds an identifiable variable from its id, e.g.
// when a collaborator restores it from storage.
func NewIdentifiableWithID(id uuid.UUID, typ Term) *Identifiable {
	if typ == nil {
		panic("term: identifiable variable without type")
	}
	v := &Identifiable{id: id, key: id.String()}
	v.typ = typ
	return v
}

func (v *Identifiable) ID() uuid.UUID { return v.id }

func (v *Identifiable) Hash() string { return v.key }

func (*Identifiable) variable() {}
func (*Identifiable) simple()   {}

func (*Identifiable) Size() int { return 1 }

func (v *Identifiable) FreeVariables() *VarSet { return NewVarSet(v) }

func (v *Identifiable) IsFreeVariable(w Variable) bool { return sameVariable(v, w) }

func (*Identifiable) CastFree() bool { return true }

func (v *Identifiable) HashCode() uint64 { return hashOf(v) }

func (v *Identifiable) String() string { return Format(v, nil) }

// sameVariable compares variable identities: handles for parameters, ids
// for identifiable variables.
func sameVariable(a, b Variable) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Hash() == b.Hash()
}
