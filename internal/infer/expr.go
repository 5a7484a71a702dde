package infer

import (
	"fmt"
	"strconv"
	"strings"

	"martianoff/mono/monoerr"

	"github.com/samber/lo"
)

// Node is a syntax tree node. Every node owns a mutable type slot that
// inference fills in; the set of implementations is closed.
type Node interface {
	fmt.Stringer
	Span() monoerr.Span
	SetSpan(monoerr.Span)
	Type() Type
	SetType(Type)
	// Clone returns a structural copy with empty type slots.
	Clone() Node
	isNode()
}

type nodeBase struct {
	Pos monoerr.Span
	typ Type
}

func (n *nodeBase) Span() monoerr.Span      { return n.Pos }
func (n *nodeBase) SetSpan(s monoerr.Span) { n.Pos = s }
func (n *nodeBase) SetType(t Type)         { n.typ = t }
func (*nodeBase) isNode()                  {}

// Type returns the inferred type, or Unknown before inference.
func (n *nodeBase) Type() Type {
	if n.typ == nil {
		return Unknown
	}
	return n.typ
}

func (n *nodeBase) fresh() nodeBase { return nodeBase{Pos: n.Pos} }

// BoolLit is a true/false literal.
type BoolLit struct {
	nodeBase
	Value bool
}

func (e *BoolLit) String() string { return strconv.FormatBool(e.Value) }
func (e *BoolLit) Clone() Node    { return &BoolLit{nodeBase: e.fresh(), Value: e.Value} }

// IntLit is an integer literal.
type IntLit struct {
	nodeBase
	Value int64
}

func (e *IntLit) String() string { return strconv.FormatInt(e.Value, 10) }
func (e *IntLit) Clone() Node    { return &IntLit{nodeBase: e.fresh(), Value: e.Value} }

// FloatLit is a floating point literal.
type FloatLit struct {
	nodeBase
	Value float64
}

func (e *FloatLit) String() string {
	s := strconv.FormatFloat(e.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
func (e *FloatLit) Clone() Node { return &FloatLit{nodeBase: e.fresh(), Value: e.Value} }

// CharLit is a character literal.
type CharLit struct {
	nodeBase
	Value rune
}

func (e *CharLit) String() string { return strconv.QuoteRune(e.Value) }
func (e *CharLit) Clone() Node    { return &CharLit{nodeBase: e.fresh(), Value: e.Value} }

// StringLit is a string literal.
type StringLit struct {
	nodeBase
	Value string
}

func (e *StringLit) String() string { return strconv.Quote(e.Value) }
func (e *StringLit) Clone() Node    { return &StringLit{nodeBase: e.fresh(), Value: e.Value} }

// Var is a local variable reference.
type Var struct {
	nodeBase
	Name string
}

func (e *Var) String() string { return e.Name }
func (e *Var) Clone() Node    { return &Var{nodeBase: e.fresh(), Name: e.Name} }

// InstanceVar is an @name reference.
type InstanceVar struct {
	nodeBase
	Name string
}

func (e *InstanceVar) String() string { return "@" + e.Name }
func (e *InstanceVar) Clone() Node    { return &InstanceVar{nodeBase: e.fresh(), Name: e.Name} }

// Const is a reference to a class by name.
type Const struct {
	nodeBase
	Name string
}

func (e *Const) String() string { return e.Name }
func (e *Const) Clone() Node    { return &Const{nodeBase: e.fresh(), Name: e.Name} }

// Assign stores Value into Target, which is a *Var or an *InstanceVar.
type Assign struct {
	nodeBase
	Target Node
	Value  Node
}

func (e *Assign) String() string { return fmt.Sprintf("%s = %s", e.Target, e.Value) }
func (e *Assign) Clone() Node {
	return &Assign{nodeBase: e.fresh(), Target: e.Target.Clone(), Value: e.Value.Clone()}
}

// Expressions is a statement sequence.
type Expressions struct {
	nodeBase
	Body []Node
}

func (e *Expressions) String() string {
	return strings.Join(lo.Map(e.Body, func(n Node, _ int) string { return n.String() }), "; ")
}
func (e *Expressions) Clone() Node {
	return &Expressions{nodeBase: e.fresh(), Body: cloneAll(e.Body)}
}

// Call is a method call, with or without an explicit receiver.
type Call struct {
	nodeBase
	Receiver Node // nil for a bare call
	Name     string
	Args     []Node
	Parens   bool // written with explicit call syntax
	// TargetDef is the instantiation the call resolved to.
	TargetDef *Def
}

func (e *Call) String() string {
	var sb strings.Builder
	if e.Receiver != nil {
		sb.WriteString(e.Receiver.String())
		sb.WriteByte('.')
	}
	sb.WriteString(e.Name)
	if e.Parens || len(e.Args) > 0 {
		sb.WriteByte('(')
		sb.WriteString(strings.Join(lo.Map(e.Args, func(n Node, _ int) string { return n.String() }), ", "))
		sb.WriteByte(')')
	}
	return sb.String()
}

func (e *Call) Clone() Node {
	c := &Call{nodeBase: e.fresh(), Name: e.Name, Args: cloneAll(e.Args), Parens: e.Parens}
	if e.Receiver != nil {
		c.Receiver = e.Receiver.Clone()
	}
	return c
}

// IsNew reports whether the call is the Const.new constructor shorthand.
func (e *Call) IsNew() bool {
	_, ok := e.Receiver.(*Const)
	return ok && e.Name == "new"
}

// ClassDef declares (or reopens) a class.
type ClassDef struct {
	nodeBase
	Name string
	Body Node
}

func (e *ClassDef) String() string { return fmt.Sprintf("class %s; %s; end", e.Name, e.Body) }
func (e *ClassDef) Clone() Node {
	return &ClassDef{nodeBase: e.fresh(), Name: e.Name, Body: e.Body.Clone()}
}

// If is a conditional. Else is nil when no else branch is written.
type If struct {
	nodeBase
	Cond Node
	Then Node
	Else Node
}

func (e *If) String() string {
	if e.Else == nil {
		return fmt.Sprintf("if %s; %s; end", e.Cond, e.Then)
	}
	return fmt.Sprintf("if %s; %s; else; %s; end", e.Cond, e.Then, e.Else)
}
func (e *If) Clone() Node {
	c := &If{nodeBase: e.fresh(), Cond: e.Cond.Clone(), Then: e.Then.Clone()}
	if e.Else != nil {
		c.Else = e.Else.Clone()
	}
	return c
}

// While is a loop.
type While struct {
	nodeBase
	Cond Node
	Body Node
}

func (e *While) String() string { return fmt.Sprintf("while %s; %s; end", e.Cond, e.Body) }
func (e *While) Clone() Node {
	return &While{nodeBase: e.fresh(), Cond: e.Cond.Clone(), Body: e.Body.Clone()}
}

func cloneAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	return lo.Map(nodes, func(n Node, _ int) Node { return n.Clone() })
}

// At sets the source span of n and returns it, for building trees in code.
func At[N Node](n N, line, column, length int) N {
	n.SetSpan(monoerr.Span{Line: line, Column: column, Length: length})
	return n
}
