package infer_test

import (
	"testing"

	"martianoff/mono/internal/infer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeStack(t *testing.T) {
	m := infer.NewModule()
	intT, charT := m.Primitive(infer.Int), m.Primitive(infer.Char)
	sc := infer.NewScopeStack(m)

	assert.Equal(t, 1, sc.Depth())
	assert.Same(t, m, sc.Current().Receiver)

	x := sc.DefineVar("x", intT)
	again := sc.DefineVar("x", charT)
	assert.Same(t, x, again, "rebinding merges into the live union")
	assert.Equal(t, "Int | Char", x.String())

	d := &infer.Def{Name: "f"}
	key := []infer.Type{intT}
	sc.Push(3, d, key, m)
	_, ok := sc.LookupVar("x")
	assert.False(t, ok, "lookups never reach an enclosing frame")
	assert.True(t, sc.Active(d, key))
	assert.False(t, sc.Active(d, []infer.Type{charT}))
	assert.False(t, sc.Active(&infer.Def{Name: "f"}, key))

	sc.Push(9, &infer.Def{Name: "g"}, nil, m)
	frames := sc.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, 9, frames[0].Line)
	assert.Equal(t, 3, frames[1].Line)
	assert.Nil(t, frames[2].Def)

	sc.Pop()
	sc.Pop()
	sc.Pop()
	assert.Equal(t, 1, sc.Depth(), "root frame is never popped")
	_, ok = sc.LookupVar("x")
	assert.True(t, ok)
}

func TestFrameDefineCopiesUnions(t *testing.T) {
	m := infer.NewModule()
	sc := infer.NewScopeStack(m)

	x := sc.DefineVar("x", m.Primitive(infer.Int))
	y := sc.DefineVar("y", x)
	assert.NotSame(t, x, y)

	sc.DefineVar("y", m.Primitive(infer.Char))
	assert.Equal(t, 1, x.Len())
	assert.Equal(t, 2, y.Len())
}

func TestDefInstanceCache(t *testing.T) {
	m := infer.NewModule()
	intT, charT := m.Primitive(infer.Int), m.Primitive(infer.Char)

	d := def("id", []string{"x"}, lvar("x"))
	m.AddDef(m, d)

	first := d.Clone().(*infer.Def)
	first.Params[0].SetType(infer.NewUnion(intT))
	d.AddInstance(first)

	got, ok := d.LookupInstance(m, []infer.Type{intT})
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Same(t, d, got.Origin())

	_, ok = d.LookupInstance(m, []infer.Type{charT})
	assert.False(t, ok)

	second := d.Clone().(*infer.Def)
	second.Params[0].SetType(intT)
	d.AddInstance(second)
	got, _ = d.LookupInstance(m, []infer.Type{infer.NewUnion(intT)})
	assert.Same(t, second, got, "same key overwrites")
	assert.Len(t, d.Instances(), 1)
}

func TestDefCloneIsStructural(t *testing.T) {
	d := def("f", []string{"a"}, assign(lvar("b"), lvar("a")), lvar("b"))
	c := d.Clone().(*infer.Def)

	assert.Equal(t, d.String(), c.String())
	assert.NotSame(t, d.Body, c.Body)
	assert.NotSame(t, d.Params[0], c.Params[0])
	assert.Same(t, infer.Unknown, c.BodyType())
	assert.Empty(t, c.Instances())
}
