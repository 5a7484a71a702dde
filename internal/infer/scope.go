package infer

import (
	"golang.org/x/exp/slices"
)

// Frame is one activation record. Local bindings are indices into the
// frame's arena of union cells; lookups never reach an enclosing frame.
type Frame struct {
	// Line is the source line of the call that pushed the frame.
	Line int
	// Def is the untyped Def being specialized, nil for the root frame.
	Def *Def
	// Key is the instance key of the specialization in progress.
	Key []Type
	// Receiver is self for this frame: an ObjectType, primitive or the Module.
	Receiver Type

	cells []*UnionType
	vars  map[string]int
	// classDepth is the length of the class stack when the frame was pushed.
	classDepth int
}

func newFrame(line int, def *Def, key []Type, receiver Type) *Frame {
	return &Frame{
		Line:     line,
		Def:      def,
		Key:      key,
		Receiver: receiver,
		vars:     make(map[string]int),
	}
}

// Lookup returns the live binding for name.
func (f *Frame) Lookup(name string) (*UnionType, bool) {
	i, ok := f.vars[name]
	if !ok {
		return nil, false
	}
	return f.cells[i], true
}

// Define binds name to t. If name is already bound, t is merged into the
// existing union in place and that union is returned; otherwise a fresh
// union seeded with t is allocated.
func (f *Frame) Define(name string, t Type) *UnionType {
	if u, ok := f.Lookup(name); ok {
		AddMember(u, t)
		return u
	}
	u := NewUnion(t)
	f.Bind(name, u)
	return u
}

// Bind makes name refer to the existing union u.
func (f *Frame) Bind(name string, u *UnionType) {
	if i, ok := f.vars[name]; ok {
		f.cells[i] = u
		return
	}
	f.vars[name] = len(f.cells)
	f.cells = append(f.cells, u)
}

// ScopeStack is the stack of active frames. The root frame is always present.
type ScopeStack struct {
	frames []*Frame
}

// NewScopeStack returns a stack holding only the root frame for module.
func NewScopeStack(module *Module) *ScopeStack {
	return &ScopeStack{frames: []*Frame{newFrame(0, nil, nil, module)}}
}

// Push enters a call frame.
func (s *ScopeStack) Push(line int, def *Def, key []Type, receiver Type) *Frame {
	f := newFrame(line, def, key, receiver)
	s.frames = append(s.frames, f)
	return f
}

// Pop leaves the innermost call frame. The root frame is never popped.
func (s *ScopeStack) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Current returns the innermost frame.
func (s *ScopeStack) Current() *Frame {
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of frames including the root.
func (s *ScopeStack) Depth() int { return len(s.frames) }

// DefineVar binds name in the current frame.
func (s *ScopeStack) DefineVar(name string, t Type) *UnionType {
	return s.Current().Define(name, t)
}

// LookupVar looks name up in the current frame only.
func (s *ScopeStack) LookupVar(name string) (*UnionType, bool) {
	return s.Current().Lookup(name)
}

// Frames returns the active frames, innermost first.
func (s *ScopeStack) Frames() []*Frame {
	out := slices.Clone(s.frames)
	slices.Reverse(out)
	return out
}

// Active reports whether the specialization of def for key is in progress.
func (s *ScopeStack) Active(def *Def, key []Type) bool {
	return slices.ContainsFunc(s.frames, func(f *Frame) bool {
		return f.Def == def && keysEqual(f.Key, key)
	})
}
