package term

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/kernel/internal/config"
)

// Labeler names variables for display. It is supplied by collaborators and
// plays no part in equality or hashing.
type Labeler func(v Variable) (string, bool)

// Label returns the display name of v: the labeler's when it knows v, a
// generated one otherwise.
func Label(v Variable, labeler Labeler) string {
	if labeler != nil {
		if s, ok := labeler(v); ok {
			return s
		}
	}
	switch x := v.(type) {
	case *Parameter:
		return config.ParameterPrefix + strconv.FormatUint(x.handle, 10)
	case *Identifiable:
		return config.IdentifiablePrefix + x.key[:8]
	default:
		panic(unknownVariant(v))
	}
}

func typeName(t Term) string {
	return fmt.Sprintf("%T", t)
}

// piece is either literal text or a term still to be expanded.
type piece struct {
	text string
	t    Term
}

// Format renders t on a single line:
//
//	Τ              the base sort
//	<x:T -> b>     function
//	(h a b)        composition spine
//	<x:T -> b>*    projection
//	[t]+ [t]-      projected and unprojected casts
//	[t | x := v]   folding cast of value x to variable v
func Format(t Term, labeler Labeler) string {
	var sb strings.Builder
	stack := []piece{{t: t}}
	for len(stack) > 0 {
		top := len(stack) - 1
		p := stack[top]
		stack = stack[:top]
		if p.t == nil {
			sb.WriteString(p.text)
			continue
		}
		stack = append(stack, expand(p.t, labeler)...)
	}
	return sb.String()
}

// expand returns the pieces of t in reverse order, ready to be pushed.
func expand(t Term, labeler Labeler) []piece {
	var ps []piece
	switch x := t.(type) {
	case *TauTerm:
		ps = []piece{{text: config.TauSymbol}}
	case Variable:
		ps = []piece{{text: Label(x, labeler)}}
	case *Function:
		ps = functionPieces(x, labeler, config.FunctionClose)
	case *Projection:
		ps = functionPieces(x.function, labeler, config.FunctionClose+config.ProjectionMark)
	case *Composition:
		head, tails := x.Spine()
		ps = append(ps, piece{text: "("}, piece{t: head})
		for _, a := range tails {
			ps = append(ps, piece{text: " "}, piece{t: a})
		}
		ps = append(ps, piece{text: ")"})
	case *ProjectedCast:
		ps = []piece{{text: "["}, {t: x.term}, {text: "]" + config.ProjectedCastMark}}
	case *UnprojectedCast:
		ps = []piece{{text: "["}, {t: x.term}, {text: "]" + config.UnprojectedCastMark}}
	case *FoldingCast:
		ps = []piece{{text: "["}, {t: x.term}, {text: " | "}, {t: x.value}, {text: " := "}, {t: x.variable}, {text: "]"}}
	default:
		panic(unknownVariant(t))
	}
	for i, j := 0, len(ps)-1; i < j; i, j = i+1, j-1 {
		ps[i], ps[j] = ps[j], ps[i]
	}
	return ps
}

func functionPieces(f *Function, labeler Labeler, closing string) []piece {
	return []piece{
		{text: config.FunctionOpen + Label(f.parameter, labeler) + ":"},
		{t: f.parameter.Type()},
		{text: " " + config.Arrow + " "},
		{t: f.body},
		{text: closing},
	}
}
