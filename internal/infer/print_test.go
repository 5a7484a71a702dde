package infer_test

import (
	"bytes"
	"testing"

	"martianoff/mono/internal/infer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	root := seq(def("id", []string{"x"}, lvar("x")), call("id", intLit(1)))
	run(t, root)

	var buf bytes.Buffer
	require.NoError(t, infer.Print(&buf, root))

	want := "expressions : Int\n" +
		"  def id(x) : Void\n" +
		"  call id : Int => id(Int)\n" +
		"    1 : Int\n" +
		"\n" +
		"id(Int) : Int\n" +
		"  expressions : Int\n" +
		"    x : Int\n"
	assert.Equal(t, want, buf.String())
}

func TestInspectSkipsMethodBodies(t *testing.T) {
	root := seq(def("f", nil, intLit(1)), class("A", def("g", nil, charLit('c'))), intLit(2))
	var labels []string
	infer.Inspect(root, func(n infer.Node) bool {
		if lit, ok := n.(*infer.IntLit); ok {
			labels = append(labels, lit.String())
		}
		return true
	})
	assert.Equal(t, []string{"2"}, labels)
}

func TestSummarize(t *testing.T) {
	root := seq(
		class("Box", def("set", []string{"v"}, assign(ivar("v"), lvar("v")))),
		def("id", []string{"x"}, lvar("x")),
		send(newObj("Box"), "set", charLit('c')),
		call("id", intLit(1)),
		call("id", boolLit(true)),
	)
	m := run(t, root)

	s := infer.Summarize(m)
	require.Len(t, s.Classes, 1)
	assert.Equal(t, "Box", s.Classes[0].Name)
	assert.Equal(t, map[string]string{"v": "Char"}, s.Classes[0].IVars)
	require.Len(t, s.Methods, 1)
	assert.Equal(t, "id", s.Methods[0].Name)
	assert.Equal(t, []string{"id(Int) : Int", "id(Bool) : Bool"}, s.Methods[0].Instances)

	var buf bytes.Buffer
	require.NoError(t, infer.WriteSummary(&buf, s))
	want := "class Box\n" +
		"  @v : Char\n" +
		"  def set\n" +
		"    Box#set(Char) : Char\n" +
		"def id\n" +
		"  id(Int) : Int\n" +
		"  id(Bool) : Bool\n"
	assert.Equal(t, want, buf.String())
}
