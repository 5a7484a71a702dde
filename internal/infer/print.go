package infer

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Children returns the direct sub-nodes of n in evaluation order.
// Method bodies are not children of their declaration: they are only
// reachable through the clones calls resolve to.
func Children(n Node) []Node {
	switch e := n.(type) {
	case *Assign:
		return []Node{e.Target, e.Value}
	case *Expressions:
		return e.Body
	case *Call:
		var out []Node
		if e.Receiver != nil {
			out = append(out, e.Receiver)
		}
		return append(out, e.Args...)
	case *ClassDef:
		return []Node{e.Body}
	case *If:
		if e.Else == nil {
			return []Node{e.Cond, e.Then}
		}
		return []Node{e.Cond, e.Then, e.Else}
	case *While:
		return []Node{e.Cond, e.Body}
	}
	return nil
}

// Inspect traverses the tree rooted at n in depth-first order, calling fn
// for each node. If fn returns false, the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// Print writes the typed tree rooted at n, one node per line, followed by
// each instantiation reached from its calls.
func Print(w io.Writer, n Node) error {
	p := &printer{w: w, seen: make(map[*Def]bool)}
	p.node(n, 0)
	for i := 0; i < len(p.queue); i++ {
		d := p.queue[i]
		p.printf("\n%s : %s\n", d.Signature(), d.BodyType())
		p.node(d.Body, 1)
	}
	return p.err
}

type printer struct {
	w     io.Writer
	err   error
	seen  map[*Def]bool
	queue []*Def
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) node(n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s : %s", indent, label(n), n.Type())
	if c, ok := n.(*Call); ok && c.TargetDef != nil {
		line += " => " + c.TargetDef.Signature()
		if !p.seen[c.TargetDef] && !c.TargetDef.Origin().Frozen {
			p.seen[c.TargetDef] = true
			p.queue = append(p.queue, c.TargetDef)
		}
	}
	p.printf("%s\n", line)
	for _, child := range Children(n) {
		p.node(child, depth+1)
	}
}

func label(n Node) string {
	switch e := n.(type) {
	case *BoolLit, *IntLit, *FloatLit, *CharLit, *StringLit:
		return n.String()
	case *Var:
		return e.Name
	case *InstanceVar, *Const:
		return n.String()
	case *Assign:
		return "="
	case *Expressions:
		return "expressions"
	case *Def:
		params := lo.Map(e.Params, func(v *Var, _ int) string { return v.Name })
		return fmt.Sprintf("def %s(%s)", e.Name, strings.Join(params, ", "))
	case *Call:
		return "call " + e.Name
	case *ClassDef:
		return "class " + e.Name
	case *If:
		return "if"
	case *While:
		return "while"
	}
	return fmt.Sprintf("%T", n)
}

// MethodSummary lists one method and its instantiations.
type MethodSummary struct {
	Name      string
	Frozen    bool
	Instances []string
}

// ClassSummary lists one class with its instance variables and methods.
type ClassSummary struct {
	Name    string
	IVars   map[string]string
	Methods []MethodSummary
}

// ModuleSummary is a plain-data snapshot of a Module, sorted by name.
type ModuleSummary struct {
	Classes []ClassSummary
	Methods []MethodSummary
}

// Summarize snapshots m for display.
func Summarize(m *Module) ModuleSummary {
	var s ModuleSummary
	for _, name := range m.ClassNames() {
		cls, _ := m.Class(name)
		cs := ClassSummary{
			Name:    name,
			IVars:   lo.MapValues(cls.InstanceVars(), func(t Type, _ string) string { return t.String() }),
			Methods: summarizeMethods(cls),
		}
		s.Classes = append(s.Classes, cs)
	}
	s.Methods = summarizeMethods(m)
	return s
}

func summarizeMethods(owner Type) []MethodSummary {
	table := Methods(owner)
	return lo.Map(DefNames(owner), func(name string, _ int) MethodSummary {
		d := table[name]
		return MethodSummary{
			Name:   name,
			Frozen: d.Frozen,
			Instances: lo.Map(d.Instances(), func(c *Def, _ int) string {
				return fmt.Sprintf("%s : %s", c.Signature(), c.BodyType())
			}),
		}
	})
}

// WriteSummary renders s as an indented listing.
func WriteSummary(w io.Writer, s ModuleSummary) error {
	var sb strings.Builder
	for _, c := range s.Classes {
		fmt.Fprintf(&sb, "class %s\n", c.Name)
		ivars := lo.Keys(c.IVars)
		slices.Sort(ivars)
		for _, name := range ivars {
			fmt.Fprintf(&sb, "  @%s : %s\n", name, c.IVars[name])
		}
		writeMethods(&sb, c.Methods, "  ")
	}
	writeMethods(&sb, s.Methods, "")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeMethods(sb *strings.Builder, methods []MethodSummary, indent string) {
	for _, m := range methods {
		fmt.Fprintf(sb, "%sdef %s\n", indent, m.Name)
		for _, inst := range m.Instances {
			fmt.Fprintf(sb, "%s  %s\n", indent, inst)
		}
	}
}
