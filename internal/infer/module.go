package infer

import (
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Module is the root namespace. It owns the primitive singletons, the class
// table and the top-level method table, and acts as the receiver of
// top-level code.
type Module struct {
	primitives [Void + 1]*PrimitiveType
	types      map[string]*ObjectType
	defs       map[string]*Def
	ivars      map[string]Type
}

// NewModule creates a Module with its primitive singletons.
func NewModule() *Module {
	m := &Module{
		types: make(map[string]*ObjectType),
		defs:  make(map[string]*Def),
		ivars: make(map[string]Type),
	}
	for k := range m.primitives {
		m.primitives[k] = &PrimitiveType{Kind: PrimitiveKind(k), defs: make(map[string]*Def)}
	}
	return m
}

func (*Module) String() string { return "<Module>" }
func (*Module) isType()        {}

func (m *Module) methods() map[string]*Def { return m.defs }

// Primitive returns the singleton for kind.
func (m *Module) Primitive(kind PrimitiveKind) *PrimitiveType {
	return m.primitives[kind]
}

// Class returns the ObjectType registered under name.
func (m *Module) Class(name string) (*ObjectType, bool) {
	t, ok := m.types[name]
	return t, ok
}

// DeclareClass returns the ObjectType for name, registering it on first use.
// Reopening a class reuses the existing type.
func (m *Module) DeclareClass(name string) *ObjectType {
	if t, ok := m.types[name]; ok {
		return t
	}
	t := newObjectType(name)
	m.types[name] = t
	return t
}

// ClassNames returns the registered class names in sorted order.
func (m *Module) ClassNames() []string {
	names := lo.Keys(m.types)
	slices.Sort(names)
	return names
}

// Def returns the top-level method registered under name.
func (m *Module) Def(name string) (*Def, bool) {
	d, ok := m.defs[name]
	return d, ok
}

// AddDef registers a method in the table of owner, which is the Module, a
// class or a primitive type. A Def already owned elsewhere keeps its owner,
// so one builtin Def can be shared by several tables.
func (m *Module) AddDef(owner Type, d *Def) {
	if d.Owner == nil {
		d.Owner = owner
	}
	if t, ok := owner.(methodOwner); ok {
		t.methods()[d.Name] = d
	}
}

// DefNames returns the method names of owner in sorted order.
func DefNames(owner Type) []string {
	names := lo.Keys(Methods(owner))
	slices.Sort(names)
	return names
}

// InstanceVar returns the recorded type of a top-level instance variable.
func (m *Module) InstanceVar(name string) (Type, bool) {
	v, ok := m.ivars[name]
	return v, ok
}

// SetInstanceVar overwrites the recorded type of a top-level instance variable.
func (m *Module) SetInstanceVar(name string, v Type) {
	m.ivars[name] = v
}

// ivarOwner is implemented by the types that may act as self for @vars.
type ivarOwner interface {
	InstanceVar(name string) (Type, bool)
	SetInstanceVar(name string, v Type)
}
