package infer

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Type is a type assigned to a node during inference.
//
// The set of implementations is closed: *PrimitiveType, *ObjectType,
// *UnionType, *UnknownType, *PendingList and *Module.
type Type interface {
	fmt.Stringer
	isType()
}

// PrimitiveKind enumerates the builtin value kinds.
type PrimitiveKind int

const (
	Bool PrimitiveKind = iota
	Int
	Float
	Char
	String
	Void
)

var primitiveNames = [...]string{
	Bool:   "Bool",
	Int:    "Int",
	Float:  "Float",
	Char:   "Char",
	String: "String",
	Void:   "Void",
}

func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return fmt.Sprintf("PrimitiveKind(%d)", int(k))
}

// PrimitiveType is a builtin type. There is exactly one instance per kind
// per Module; identity comparison is sufficient.
type PrimitiveType struct {
	Kind PrimitiveKind
	defs map[string]*Def
}

func (t *PrimitiveType) String() string { return t.Kind.String() }
func (t *PrimitiveType) isType()        {}

// ObjectType is a nominal class type. Every value produced by Name.new shares
// the instance-variable and method tables of the ObjectType registered for
// Name, so all views of a class observe the same state.
type ObjectType struct {
	Name  string
	ivars map[string]Type
	defs  map[string]*Def
}

func newObjectType(name string) *ObjectType {
	return &ObjectType{
		Name:  name,
		ivars: make(map[string]Type),
		defs:  make(map[string]*Def),
	}
}

func (t *ObjectType) String() string { return t.Name }
func (t *ObjectType) isType()        {}

// Instance returns a lightweight view of t as produced by Name.new.
func (t *ObjectType) Instance() *ObjectType {
	return &ObjectType{Name: t.Name, ivars: t.ivars, defs: t.defs}
}

// InstanceVar returns the recorded type of instance variable name.
func (t *ObjectType) InstanceVar(name string) (Type, bool) {
	v, ok := t.ivars[name]
	return v, ok
}

// SetInstanceVar overwrites the recorded type of instance variable name.
func (t *ObjectType) SetInstanceVar(name string, v Type) {
	t.ivars[name] = v
}

// InstanceVars returns the instance-variable table. Callers must not mutate it.
func (t *ObjectType) InstanceVars() map[string]Type { return t.ivars }

// UnknownType marks a node whose type is not resolved yet.
type UnknownType struct{}

func (*UnknownType) String() string { return "?" }
func (*UnknownType) isType()        {}

// Unknown is the single UnknownType sentinel.
var Unknown Type = &UnknownType{}

// PendingList is a transient collection of candidate types produced when a
// concrete branch meets an Unknown one inside a recursive body. It never
// outlives the fixpoint loop that consumes it.
type PendingList struct {
	Candidates []Type
}

func (p *PendingList) String() string {
	names := lo.Map(p.Candidates, func(t Type, _ int) string { return t.String() })
	return "pending(" + strings.Join(names, ", ") + ")"
}
func (*PendingList) isType() {}

// IsUnresolved reports whether t is Unknown or a PendingList.
func IsUnresolved(t Type) bool {
	switch t.(type) {
	case nil, *UnknownType, *PendingList:
		return true
	}
	return false
}

// methodOwner is implemented by types that carry a method table.
type methodOwner interface {
	Type
	methods() map[string]*Def
}

func (t *PrimitiveType) methods() map[string]*Def { return t.defs }
func (t *ObjectType) methods() map[string]*Def    { return t.defs }

// Methods returns the method table of t, or nil if t has none.
func Methods(t Type) map[string]*Def {
	if o, ok := dispatchType(t).(methodOwner); ok {
		return o.methods()
	}
	return nil
}

// dispatchType collapses a single-member union to its member.
func dispatchType(t Type) Type {
	if u, ok := t.(*UnionType); ok && len(u.members) == 1 {
		return u.members[0]
	}
	return t
}

// Equal reports structural equality used for instance-cache keys: primitives
// and modules by identity, objects by name, unions by member set. A
// single-member union equals its member.
func Equal(a, b Type) bool {
	a, b = dispatchType(a), dispatchType(b)
	if a == b {
		return true
	}
	switch x := a.(type) {
	case *ObjectType:
		y, ok := b.(*ObjectType)
		return ok && x.Name == y.Name
	case *UnionType:
		y, ok := b.(*UnionType)
		if !ok || len(x.members) != len(y.members) {
			return false
		}
		for _, m := range x.members {
			if !y.Contains(m) {
				return false
			}
		}
		return true
	}
	return false
}

// Snapshot returns an immutable copy of t suitable for use in a cache key.
func Snapshot(t Type) Type {
	t = dispatchType(t)
	if u, ok := t.(*UnionType); ok {
		return &UnionType{members: append([]Type(nil), u.members...)}
	}
	return t
}
