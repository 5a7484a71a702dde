package infer

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Def is a method declaration. The Def found in a method table is untyped:
// its body is never inferred directly. Each distinct call signature gets a
// typed clone, memoized in the untyped Def's instance cache.
type Def struct {
	nodeBase
	Name   string
	Params []*Var
	Body   Node
	// Frozen Defs are builtins: calls must match a registered instance.
	Frozen bool
	// Owner is the enclosing class or the Module. For a typed clone it is
	// the receiver type of the call that produced it.
	Owner Type

	origin    *Def
	decl      *Def
	instances []instance
}

type instance struct {
	key []Type
	def *Def
}

func (d *Def) String() string {
	params := lo.Map(d.Params, func(p *Var, _ int) string { return p.Name })
	return fmt.Sprintf("def %s(%s); %s; end", d.Name, strings.Join(params, ", "), d.Body)
}

// Clone returns a structural copy of d with empty type slots and an empty
// instance cache.
func (d *Def) Clone() Node {
	c := &Def{
		nodeBase: d.fresh(),
		Name:     d.Name,
		Params:   lo.Map(d.Params, func(p *Var, _ int) *Var { return p.Clone().(*Var) }),
		Frozen:   d.Frozen,
		Owner:    d.Owner,
		decl:     d.declaration(),
	}
	if d.Body != nil {
		c.Body = d.Body.Clone()
	}
	return c
}

// Origin returns the untyped Def a clone was instantiated from, or d itself.
func (d *Def) Origin() *Def {
	if d.origin != nil {
		return d.origin
	}
	return d
}

// declaration returns the Def written in the source tree that d was copied
// from, or d itself.
func (d *Def) declaration() *Def {
	if d.decl != nil {
		return d.decl
	}
	return d
}

// BodyType returns the type inferred for the body so far.
func (d *Def) BodyType() Type {
	if d.Body == nil {
		return Unknown
	}
	return d.Body.Type()
}

// ParamTypes returns the current types of the parameters.
func (d *Def) ParamTypes() []Type {
	return lo.Map(d.Params, func(p *Var, _ int) Type { return p.Type() })
}

// Signature renders the owner, name and parameter types, e.g. Int#+(Int).
func (d *Def) Signature() string {
	return signature(d.Owner, d.Name, d.ParamTypes())
}

func signature(owner Type, name string, args []Type) string {
	var sb strings.Builder
	if owner != nil {
		if _, ok := owner.(*Module); !ok {
			sb.WriteString(owner.String())
			sb.WriteByte('#')
		}
	}
	sb.WriteString(name)
	sb.WriteByte('(')
	sb.WriteString(typeList(args))
	sb.WriteByte(')')
	return sb.String()
}

func typeList(ts []Type) string {
	return strings.Join(lo.Map(ts, func(t Type, _ int) string { return t.String() }), ", ")
}

// instanceKey builds the cache key for a call: the receiver type (unless the
// owner is the Module) followed by the argument types.
func instanceKey(owner Type, args []Type) []Type {
	key := make([]Type, 0, len(args)+1)
	if owner != nil {
		if _, ok := owner.(*Module); !ok {
			key = append(key, Snapshot(owner))
		}
	}
	for _, a := range args {
		key = append(key, Snapshot(a))
	}
	return key
}

func keysEqual(a, b []Type) bool {
	return slices.EqualFunc(a, b, Equal)
}

// AddInstance stores clone under the key formed by its owner and parameter
// types. An existing entry with the same key is replaced.
func (d *Def) AddInstance(clone *Def) {
	clone.origin = d
	key := instanceKey(clone.Owner, clone.ParamTypes())
	if i := slices.IndexFunc(d.instances, func(in instance) bool { return keysEqual(in.key, key) }); i >= 0 {
		d.instances[i].def = clone
		return
	}
	d.instances = append(d.instances, instance{key: key, def: clone})
}

// LookupInstance returns the clone registered for receiver and args.
func (d *Def) LookupInstance(receiver Type, args []Type) (*Def, bool) {
	key := instanceKey(receiver, args)
	i := slices.IndexFunc(d.instances, func(in instance) bool { return keysEqual(in.key, key) })
	if i < 0 {
		return nil, false
	}
	return d.instances[i].def, true
}

// Instances returns the registered clones in registration order.
func (d *Def) Instances() []*Def {
	return lo.Map(d.instances, func(in instance, _ int) *Def { return in.def })
}

// AddFrozenInstance registers a builtin instantiation of d for the given
// receiver and argument types, whose result is result.
func (d *Def) AddFrozenInstance(receiver Type, args []Type, result Type) *Def {
	clone := d.Clone().(*Def)
	clone.Owner = receiver
	for i, p := range clone.Params {
		if i < len(args) {
			p.SetType(args[i])
		}
	}
	body := &Expressions{}
	body.SetType(result)
	clone.Body = body
	d.AddInstance(clone)
	return clone
}
