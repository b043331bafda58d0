package prettyprinter

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/kernel/internal/config"
	"github.com/funvibe/kernel/internal/term"
)

// --- Term Printer (hierarchical, word-wrap aware) ---

// doc is the layout of one term: open, then lead items on the opening line,
// then kids, then close. Flat, every item is separated by sep. Broken, each
// kid goes on its own line one indentation step deeper.
type doc struct {
	open  string
	lead  []*doc
	kids  []*doc
	close string
	sep   string
	width int // flat width in runes
}

func leaf(s string) *doc {
	return &doc{open: s, width: utf8.RuneCountInString(s)}
}

func (d *doc) items() []*doc {
	return append(append([]*doc(nil), d.lead...), d.kids...)
}

func (d *doc) measure() {
	w := utf8.RuneCountInString(d.open) + utf8.RuneCountInString(d.close)
	items := d.items()
	for i, it := range items {
		if i > 0 {
			w += utf8.RuneCountInString(d.sep)
		}
		w += it.width
	}
	d.width = w
}

type TermPrinter struct {
	buf       bytes.Buffer
	indent    int // spaces per nesting level
	lineWidth int // max line width (0 = unlimited)
	column    int // current column position
	labeler   term.Labeler
}

func NewTermPrinter(labeler term.Labeler) *TermPrinter {
	return &TermPrinter{indent: config.DefaultIndent, lineWidth: config.DefaultLineWidth, labeler: labeler}
}

func NewTermPrinterWithWidth(labeler term.Labeler, width, indent int) *TermPrinter {
	return &TermPrinter{indent: indent, lineWidth: width, labeler: labeler}
}

func (p *TermPrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

func (p *TermPrinter) SetIndent(indent int) {
	p.indent = indent
}

// PrintTerm renders t with the given labeler and pagination.
func PrintTerm(t term.Term, labeler term.Labeler, width, indent int) string {
	return NewTermPrinterWithWidth(labeler, width, indent).Print(t)
}

// Print renders t. A term that fits the remaining width is written on one
// line; otherwise it is broken and its parts are laid out the same way.
func (p *TermPrinter) Print(t term.Term) string {
	p.buf.Reset()
	p.column = 0
	p.layout(p.build(t))
	return p.buf.String()
}

func (p *TermPrinter) write(s string) {
	p.buf.WriteString(s)
	p.column += utf8.RuneCountInString(s)
}

func (p *TermPrinter) writeln(indent int) {
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat(" ", indent))
	p.column = indent
}

// parts lists the subterms a term's doc is made of.
func parts(t term.Term) []term.Term {
	switch x := t.(type) {
	case *term.Function:
		return []term.Term{x.Parameter().Type(), x.Body()}
	case *term.Projection:
		return []term.Term{x.Function().Parameter().Type(), x.Function().Body()}
	case *term.Composition:
		head, tails := x.Spine()
		return append([]term.Term{head}, tails...)
	case *term.ProjectedCast:
		return []term.Term{x.Term()}
	case *term.UnprojectedCast:
		return []term.Term{x.Term()}
	case *term.FoldingCast:
		return []term.Term{x.Term(), x.Value(), x.Variable()}
	default:
		return nil
	}
}

// build turns t into a doc tree with an explicit stack, children first.
// Shared subterms share their doc.
func (p *TermPrinter) build(t term.Term) *doc {
	docs := make(map[term.Term]*doc)
	type frame struct {
		t        term.Term
		expanded bool
	}
	stack := []frame{{t: t}}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		if _, done := docs[f.t]; done {
			stack = stack[:top]
			continue
		}
		if !f.expanded {
			stack[top].expanded = true
			for _, c := range parts(f.t) {
				if _, done := docs[c]; !done {
					stack = append(stack, frame{t: c})
				}
			}
			continue
		}
		stack = stack[:top]
		docs[f.t] = p.docOf(f.t, docs)
	}
	return docs[t]
}

func (p *TermPrinter) docOf(t term.Term, docs map[term.Term]*doc) *doc {
	var d *doc
	switch x := t.(type) {
	case *term.TauTerm:
		return leaf(config.TauSymbol)
	case term.Variable:
		return leaf(term.Label(x, p.labeler))
	case *term.Function:
		d = p.functionDoc(x, docs, config.FunctionClose)
	case *term.Projection:
		d = p.functionDoc(x.Function(), docs, config.FunctionClose+config.ProjectionMark)
	case *term.Composition:
		head, tails := x.Spine()
		d = &doc{open: "(", lead: []*doc{docs[head]}, close: ")", sep: " "}
		for _, a := range tails {
			d.kids = append(d.kids, docs[a])
		}
	case *term.ProjectedCast:
		d = &doc{open: "[", kids: []*doc{docs[x.Term()]}, close: "]" + config.ProjectedCastMark}
	case *term.UnprojectedCast:
		d = &doc{open: "[", kids: []*doc{docs[x.Term()]}, close: "]" + config.UnprojectedCastMark}
	case *term.FoldingCast:
		d = &doc{
			open:  "[",
			lead:  []*doc{docs[x.Term()], leaf("|"), docs[x.Value()], leaf(":=")},
			kids:  []*doc{docs[x.Variable()]},
			close: "]",
			sep:   " ",
		}
	default:
		panic("prettyprinter: unknown term variant")
	}
	d.measure()
	return d
}

func (p *TermPrinter) functionDoc(f *term.Function, docs map[term.Term]*doc, closing string) *doc {
	return &doc{
		open:  config.FunctionOpen + term.Label(f.Parameter(), p.labeler) + ":",
		lead:  []*doc{docs[f.Parameter().Type()], leaf(config.Arrow)},
		kids:  []*doc{docs[f.Body()]},
		close: closing,
		sep:   " ",
	}
}

// instr is one layout step: literal text, a line break, or a doc.
type instr struct {
	d       *doc
	text    string
	newline bool
	indent  int
	flat    bool
}

func (p *TermPrinter) fits(d *doc) bool {
	return p.lineWidth <= 0 || p.column+d.width <= p.lineWidth
}

func (p *TermPrinter) layout(root *doc) {
	stack := []instr{{d: root}}
	for len(stack) > 0 {
		top := len(stack) - 1
		in := stack[top]
		stack = stack[:top]
		switch {
		case in.newline:
			p.writeln(in.indent)
			continue
		case in.d == nil:
			p.write(in.text)
			continue
		}
		d := in.d
		flat := in.flat || len(d.lead)+len(d.kids) == 0 || p.fits(d)
		stack = append(stack, instr{text: d.close})
		if flat {
			items := d.items()
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, instr{d: items[i], flat: true})
				if i > 0 {
					stack = append(stack, instr{text: d.sep})
				}
			}
		} else {
			deeper := in.indent + p.indent
			for i := len(d.kids) - 1; i >= 0; i-- {
				stack = append(stack, instr{d: d.kids[i], indent: deeper})
				stack = append(stack, instr{newline: true, indent: deeper})
			}
			for i := len(d.lead) - 1; i >= 0; i-- {
				stack = append(stack, instr{d: d.lead[i], indent: in.indent})
				if i > 0 {
					stack = append(stack, instr{text: d.sep})
				}
			}
		}
		stack = append(stack, instr{text: d.open})
	}
}
