// Package prelude provides the builtin methods every program can call
// without declaring them, such as arithmetic and comparison on Int and Float.
//
// Builtins are registered as frozen Defs: inference never synthesizes a body
// for them, so a call must match one of the signatures registered here.
package prelude

import (
	"fmt"
	"strings"
	"sync"

	"martianoff/mono/internal/infer"

	"github.com/samber/lo"
)

// MethodSpec describes one builtin instantiation.
type MethodSpec struct {
	Owner  infer.PrimitiveKind   // Receiver type: Int
	Name   string                // Method name: "+"
	Params []infer.PrimitiveKind // Argument types: [Int]
	Result infer.PrimitiveKind   // Result type: Int
}

func (s MethodSpec) String() string {
	params := lo.Map(s.Params, func(k infer.PrimitiveKind, _ int) string { return k.String() })
	return fmt.Sprintf("%s#%s(%s) -> %s", s.Owner, s.Name, strings.Join(params, ", "), s.Result)
}

// Registry holds builtin method specs and installs them into Modules.
//
// Thread-safe: all methods can be called concurrently.
type Registry struct {
	mu sync.RWMutex

	// specs in registration order
	specs []MethodSpec

	// arity maps method name to its parameter count
	arity map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		arity: make(map[string]int),
	}
}

// Register adds a builtin instantiation. All specs sharing a name must take
// the same number of arguments, since they share one frozen Def.
func (r *Registry) Register(spec MethodSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.arity[spec.Name]; ok && n != len(spec.Params) {
		return &ArityConflictError{Name: spec.Name, Want: n, Got: len(spec.Params)}
	}
	r.arity[spec.Name] = len(spec.Params)
	r.specs = append(r.specs, spec)
	return nil
}

// MustRegister is like Register but panics on conflict.
func (r *Registry) MustRegister(specs ...MethodSpec) {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Specs returns all registered specs in registration order.
func (r *Registry) Specs() []MethodSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]MethodSpec(nil), r.specs...)
}

// Install registers every spec into m. Specs sharing a name share one
// frozen Def, listed in the method table of each owner that has it.
func (r *Registry) Install(m *infer.Module) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make(map[string]*infer.Def)
	for _, s := range r.specs {
		d, ok := defs[s.Name]
		if !ok {
			d = &infer.Def{Name: s.Name, Frozen: true, Owner: m}
			for i := range s.Params {
				d.Params = append(d.Params, &infer.Var{Name: fmt.Sprintf("arg%d", i)})
			}
			defs[s.Name] = d
		}
		owner := m.Primitive(s.Owner)
		m.AddDef(owner, d)
		args := lo.Map(s.Params, func(k infer.PrimitiveKind, _ int) infer.Type { return m.Primitive(k) })
		d.AddFrozenInstance(owner, args, m.Primitive(s.Result))
	}
}

// ArityConflictError is returned when a name is registered with two
// different parameter counts.
type ArityConflictError struct {
	Name string
	Want int
	Got  int
}

func (e *ArityConflictError) Error() string {
	return fmt.Sprintf("builtin '%s' registered with %d parameter(s), got %d", e.Name, e.Want, e.Got)
}
