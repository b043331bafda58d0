package term

// Composition applies a simple head to a tail. Its type is the head's type
// composed with the tail, which is where dependent typing happens.
type Composition struct {
	node
	head SimpleTerm
	tail Term
}

// NewComposition builds head applied to tail. It fails with ComposeMismatch
// when the head's type cannot itself be composed with tail.
func NewComposition(head SimpleTerm, tail Term) (*Composition, error) {
	ht := head.Type()
	if ht == nil {
		return nil, newError(ComposeMismatch, nil, head, tail)
	}
	typ, err := Compose(ht, tail)
	if err != nil {
		return nil, newError(ComposeMismatch, err, head, tail)
	}
	c := &Composition{head: head, tail: tail}
	c.typ = typ
	return c, nil
}

func (c *Composition) Head() SimpleTerm { return c.head }

func (c *Composition) Tail() Term { return c.tail }

// Spine unfolds nested compositions: for ((h a) b) it returns h and [a b].
func (c *Composition) Spine() (SimpleTerm, []Term) {
	var tails []Term
	var head SimpleTerm = c
	for {
		comp, ok := head.(*Composition)
		if !ok {
			break
		}
		tails = append(tails, comp.tail)
		head = comp.head
	}
	for i, j := 0, len(tails)-1; i < j; i, j = i+1, j-1 {
		tails[i], tails[j] = tails[j], tails[i]
	}
	return head, tails
}

func (*Composition) simple() {}

func (c *Composition) Size() int { return size(c) }

func (c *Composition) FreeVariables() *VarSet { return freeSet(c).Copy() }

func (c *Composition) IsFreeVariable(v Variable) bool { return isFree(c, v) }

func (c *Composition) CastFree() bool { return castFree(c) }

func (c *Composition) HashCode() uint64 { return hashOf(c) }

func (c *Composition) String() string { return Format(c, nil) }
