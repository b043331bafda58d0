package term

import "encoding/binary"

// Variant seeds. Changing them changes every hash.
const (
	seedTau uint64 = 0x51ed2701f3a5c4b1 + iota
	seedBound
	seedParameter
	seedIdentifiable
	seedFunction
	seedComposition
	seedProjection
	seedProjectedCast
	seedUnprojectedCast
	seedFoldingCast
)

func mix(h, v uint64) uint64 {
	h ^= v + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2)
	h ^= h >> 31
	h *= 0x7fb5d329728ea185
	h ^= h >> 27
	return h
}

// level is the binding depth of a parameter bound above the node being
// hashed.
type level struct {
	p     *Parameter
	depth uint64
	next  *level
}

func (l *level) find(p *Parameter) (uint64, bool) {
	for e := l; e != nil; e = e.next {
		if e.p == p {
			return e.depth, true
		}
	}
	return 0, false
}

type hashFrame struct {
	t        Term
	env      *level
	depth    uint64
	expanded bool
}

// hashOf computes the alpha-invariant hash of t. A bound parameter hashes
// as a placeholder depending only on the depth of its binder, so renaming
// never changes the hash. Results computed outside any binder are memoized.
func hashOf(t Term) uint64 {
	if n := t.base(); n.hashed.Load() {
		return n.hash.Load()
	}
	stack := []hashFrame{{t: t}}
	var out []uint64
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		n := f.t.base()
		if !f.expanded && f.env == nil && n.hashed.Load() {
			stack = stack[:top]
			out = append(out, n.hash.Load())
			continue
		}
		switch x := f.t.(type) {
		case *TauTerm:
			stack = stack[:top]
			out = append(out, seedTau)
			continue
		case *Parameter:
			stack = stack[:top]
			if d, ok := f.env.find(x); ok {
				out = append(out, mix(seedBound, d))
			} else {
				out = append(out, mix(seedParameter, x.handle))
			}
			continue
		case *Identifiable:
			stack = stack[:top]
			out = append(out, mix(mix(seedIdentifiable, binary.BigEndian.Uint64(x.id[:8])), binary.BigEndian.Uint64(x.id[8:])))
			continue
		}
		if !f.expanded {
			stack[top].expanded = true
			if fn, ok := f.t.(*Function); ok {
				stack = append(stack,
					hashFrame{t: fn.body, env: &level{p: fn.parameter, depth: f.depth, next: f.env}, depth: f.depth + 1},
					hashFrame{t: fn.parameter.Type(), env: f.env, depth: f.depth},
				)
				continue
			}
			kids := children(f.t)
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, hashFrame{t: kids[i], env: f.env, depth: f.depth})
			}
			continue
		}
		stack = stack[:top]
		k := len(children(f.t))
		h := seedOf(f.t)
		for _, c := range out[len(out)-k:] {
			h = mix(h, c)
		}
		out = append(out[:len(out)-k], h)
		if f.env == nil {
			n.hash.Store(h)
			n.hashed.Store(true)
		}
	}
	return out[0]
}

func seedOf(t Term) uint64 {
	switch t.(type) {
	case *Function:
		return seedFunction
	case *Composition:
		return seedComposition
	case *Projection:
		return seedProjection
	case *ProjectedCast:
		return seedProjectedCast
	case *UnprojectedCast:
		return seedUnprojectedCast
	case *FoldingCast:
		return seedFoldingCast
	default:
		panic(unknownVariant(t))
	}
}
