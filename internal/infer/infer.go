package infer

import (
	"fmt"
	"io"
	"log"

	"martianoff/mono/monoerr"
)

// Inferer holds the state for one inference run.
type Inferer struct {
	module  *Module
	trace   *log.Logger
	classes []*ObjectType
}

// Option configures an Inferer.
type Option func(*Inferer)

// WithTrace logs instantiations, recursion-guard hits and fixpoint passes.
func WithTrace(l *log.Logger) Option {
	return func(inf *Inferer) { inf.trace = l }
}

// WithPrelude runs install against the fresh Module before inference, to
// register builtin (frozen) methods.
func WithPrelude(install func(*Module)) Option {
	return func(inf *Inferer) { install(inf.module) }
}

// NewInferer creates an Inferer with a fresh Module.
func NewInferer(opts ...Option) *Inferer {
	inf := &Inferer{
		module: NewModule(),
		trace:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(inf)
	}
	return inf
}

// Module returns the namespace populated by inference.
func (inf *Inferer) Module() *Module {
	return inf.module
}

// Infer types root and everything reachable from it. On failure the
// returned error is a *monoerr.TypeError and the run must be discarded.
func (inf *Inferer) Infer(root Node) error {
	if err := inf.infer(NewScopeStack(inf.module), root); err != nil {
		return err
	}
	settle(root)
	return nil
}

// Infer runs a fresh inference over root and returns the populated Module.
func Infer(root Node, opts ...Option) (*Module, error) {
	inf := NewInferer(opts...)
	if err := inf.Infer(root); err != nil {
		return nil, err
	}
	return inf.module, nil
}

// settle replaces the pending lists left on nodes under n with the merge of
// their candidates. Nodes with no resolved candidate become Unknown.
func settle(n Node) {
	Inspect(n, func(x Node) bool {
		p, ok := x.Type().(*PendingList)
		if !ok {
			return true
		}
		var t Type
		for _, c := range p.Candidates {
			t = Merge(t, c)
		}
		if t == nil {
			t = Unknown
		}
		x.SetType(t)
		return true
	})
}

func (inf *Inferer) infer(sc *ScopeStack, n Node) error {
	switch expr := n.(type) {
	case *BoolLit:
		expr.SetType(inf.module.Primitive(Bool))
	case *IntLit:
		expr.SetType(inf.module.Primitive(Int))
	case *FloatLit:
		expr.SetType(inf.module.Primitive(Float))
	case *CharLit:
		expr.SetType(inf.module.Primitive(Char))
	case *StringLit:
		expr.SetType(inf.module.Primitive(String))

	case *Var:
		if u, ok := sc.LookupVar(expr.Name); ok {
			expr.SetType(u)
		} else {
			expr.SetType(Unknown)
		}

	case *InstanceVar:
		expr.SetType(Unknown)
		if owner, ok := dispatchType(sc.Current().Receiver).(ivarOwner); ok {
			if t, ok := owner.InstanceVar(expr.Name); ok {
				expr.SetType(t)
			}
		}

	case *Const:
		cls, ok := inf.module.Class(expr.Name)
		if !ok {
			return inf.errorf(sc, monoerr.TypeUnknownConstant, expr.Span(), "uninitialized constant %s", expr.Name)
		}
		expr.SetType(cls)

	case *Assign:
		return inf.inferAssign(sc, expr)

	case *Expressions:
		for _, stmt := range expr.Body {
			if err := inf.infer(sc, stmt); err != nil {
				return err
			}
		}
		if len(expr.Body) == 0 {
			expr.SetType(inf.module.Primitive(Void))
		} else {
			expr.SetType(expr.Body[len(expr.Body)-1].Type())
		}

	case *Def:
		owner := inf.defOwner(sc)
		// Re-running a method body meets its nested defs again; the first
		// registration keeps its instance cache.
		if prev, ok := Methods(owner)[expr.Name]; !ok || prev.declaration() != expr.declaration() {
			inf.module.AddDef(owner, expr)
		}
		expr.SetType(inf.module.Primitive(Void))

	case *ClassDef:
		cls := inf.module.DeclareClass(expr.Name)
		inf.classes = append(inf.classes, cls)
		err := inf.infer(sc, expr.Body)
		inf.classes = inf.classes[:len(inf.classes)-1]
		if err != nil {
			return err
		}
		expr.SetType(inf.module.Primitive(Void))

	case *If:
		if err := inf.infer(sc, expr.Cond); err != nil {
			return err
		}
		if err := inf.infer(sc, expr.Then); err != nil {
			return err
		}
		t := expr.Then.Type()
		if expr.Else != nil {
			if err := inf.infer(sc, expr.Else); err != nil {
				return err
			}
			t = Merge(t, expr.Else.Type())
		}
		expr.SetType(t)

	case *While:
		if err := inf.infer(sc, expr.Cond); err != nil {
			return err
		}
		if err := inf.infer(sc, expr.Body); err != nil {
			return err
		}
		expr.SetType(inf.module.Primitive(Void))

	case *Call:
		return inf.inferCall(sc, expr)

	default:
		return fmt.Errorf("unknown expression type: %T", n)
	}
	return nil
}

// defOwner returns the lexically enclosing class of a def: a class body
// opened inside the current frame, else the class of the method being
// inferred, else the Module.
func (inf *Inferer) defOwner(sc *ScopeStack) Type {
	f := sc.Current()
	if len(inf.classes) > f.classDepth {
		return inf.classes[len(inf.classes)-1]
	}
	if f.Def != nil {
		if cls, ok := f.Def.Owner.(*ObjectType); ok {
			return cls
		}
	}
	return inf.module
}

func (inf *Inferer) inferAssign(sc *ScopeStack, a *Assign) error {
	if err := inf.infer(sc, a.Value); err != nil {
		return err
	}
	vt := a.Value.Type()

	switch target := a.Target.(type) {
	case *InstanceVar:
		if owner, ok := dispatchType(sc.Current().Receiver).(ivarOwner); ok && !IsUnresolved(vt) {
			owner.SetInstanceVar(target.Name, vt)
		}
		target.SetType(vt)
		a.SetType(vt)

	case *Var:
		if IsUnresolved(vt) {
			// Leave any existing binding alone; the value may resolve on a
			// later fixpoint pass.
			if u, ok := sc.LookupVar(target.Name); ok {
				target.SetType(u)
			} else {
				target.SetType(vt)
			}
			a.SetType(vt)
			return nil
		}
		u := sc.DefineVar(target.Name, vt)
		target.SetType(u)
		a.SetType(u)

	default:
		return fmt.Errorf("cannot assign to %T", a.Target)
	}
	return nil
}

// errorf builds a TypeError at span, recording the method being inferred
// and every active call frame, innermost first.
func (inf *Inferer) errorf(sc *ScopeStack, kind monoerr.ErrorType, span monoerr.Span, format string, args ...any) error {
	err := monoerr.NewTypeError(kind, span, fmt.Sprintf(format, args...))
	if d := sc.Current().Def; d != nil {
		err.Method = methodName(d)
	}
	for _, f := range sc.Frames() {
		if f.Def == nil {
			continue
		}
		err.Frames = append(err.Frames, monoerr.Frame{Line: f.Line, Method: methodName(f.Def)})
	}
	return err
}

func methodName(d *Def) string {
	if o, ok := d.Owner.(*ObjectType); ok {
		return o.Name + "#" + d.Name
	}
	if p, ok := d.Owner.(*PrimitiveType); ok {
		return p.String() + "#" + d.Name
	}
	return d.Name
}
