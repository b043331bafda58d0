package term

// rewriteRules drives a rewriter. The rewriter visits terms top-down and
// rebuilds them bottom-up; the rules decide what happens at each node.
type rewriteRules interface {
	// enter is called before a term is visited. It returns the term to visit
	// in its place, and done when that term is final and must not be visited.
	// A term different from t is entered again.
	enter(t Term) (next Term, done bool, err error)
	// binder is called once the parameter type of a function is rewritten to
	// pt. It returns the parameter to bind and the body to rewrite under it.
	binder(f *Function, pt Term) (*Parameter, Term, error)
	// compose rebuilds a composition from its rewritten head and tail.
	compose(c *Composition, head, tail Term) (Term, error)
}

type rewriteFrame struct {
	t     Term
	stage int
	p     *Parameter
}

// rewrite runs rules over t with an explicit frame stack. Finished results
// are collected on out in completion order. Nodes whose children come back
// unchanged are returned as they are.
func rewrite(t Term, rules rewriteRules) (Term, error) {
	stack := []*rewriteFrame{{t: t}}
	var out []Term
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		if f.stage == 0 {
			next, done, err := rules.enter(f.t)
			if err != nil {
				return nil, err
			}
			if done {
				stack = stack[:top]
				out = append(out, next)
				continue
			}
			if next != f.t {
				f.t = next
				continue
			}
		}
		switch x := f.t.(type) {
		case *TauTerm, *Parameter, *Identifiable:
			stack = stack[:top]
			out = append(out, x)
		case *Function:
			switch f.stage {
			case 0:
				f.stage = 1
				stack = append(stack, &rewriteFrame{t: x.parameter.Type()})
			case 1:
				last := len(out) - 1
				pt := out[last]
				out = out[:last]
				p, body, err := rules.binder(x, pt)
				if err != nil {
					return nil, err
				}
				f.p = p
				f.stage = 2
				stack = append(stack, &rewriteFrame{t: body})
			default:
				last := len(out) - 1
				body := out[last]
				out = out[:last]
				stack = stack[:top]
				if body == x.body && f.p == x.parameter {
					out = append(out, x)
				} else {
					out = append(out, NewFunction(f.p, body))
				}
			}
		default:
			kids := children(x)
			if f.stage == 0 {
				f.stage = 1
				for i := len(kids) - 1; i >= 0; i-- {
					stack = append(stack, &rewriteFrame{t: kids[i]})
				}
				continue
			}
			n := len(out) - len(kids)
			var (
				rebuilt Term
				err     error
			)
			if c, ok := x.(*Composition); ok {
				rebuilt, err = rules.compose(c, out[n], out[n+1])
			} else {
				rebuilt, err = rebuild(x, kids, out[n:])
			}
			if err != nil {
				return nil, err
			}
			out = append(out[:n], rebuilt)
			stack = stack[:top]
		}
	}
	return out[0], nil
}
