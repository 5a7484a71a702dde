package prelude

import (
	"sync"
	"testing"

	"martianoff/mono/internal/infer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	assert.NotNil(t, r)
	assert.Empty(t, r.Specs())
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(MethodSpec{Owner: infer.Int, Name: "+", Params: []infer.PrimitiveKind{infer.Int}, Result: infer.Int}))
	require.NoError(t, r.Register(MethodSpec{Owner: infer.Float, Name: "+", Params: []infer.PrimitiveKind{infer.Float}, Result: infer.Float}))

	specs := r.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "Int#+(Int) -> Int", specs[0].String())
	assert.Equal(t, "Float#+(Float) -> Float", specs[1].String())
}

func TestRegisterArityConflict(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(MethodSpec{Owner: infer.Int, Name: "+", Params: []infer.PrimitiveKind{infer.Int}, Result: infer.Int}))

	err := r.Register(MethodSpec{Owner: infer.Float, Name: "+", Result: infer.Float})
	require.Error(t, err)

	var conflict *ArityConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "+", conflict.Name)
	assert.Equal(t, 1, conflict.Want)
	assert.Equal(t, 0, conflict.Got)
	assert.Contains(t, err.Error(), "registered with 1 parameter(s), got 0")
}

func TestMustRegisterPanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.MustRegister(
			MethodSpec{Owner: infer.Int, Name: "chr", Result: infer.Char},
			MethodSpec{Owner: infer.Int, Name: "chr", Params: []infer.PrimitiveKind{infer.Int}, Result: infer.Char},
		)
	})
}

func TestInstallSharesFrozenDef(t *testing.T) {
	m := infer.NewModule()
	DefaultRegistry().Install(m)

	intPlus := infer.Methods(m.Primitive(infer.Int))["+"]
	floatPlus := infer.Methods(m.Primitive(infer.Float))["+"]
	require.NotNil(t, intPlus)
	assert.Same(t, intPlus, floatPlus)
	assert.True(t, intPlus.Frozen)

	clone, ok := intPlus.LookupInstance(m.Primitive(infer.Int), []infer.Type{m.Primitive(infer.Int)})
	require.True(t, ok)
	assert.Same(t, m.Primitive(infer.Int), clone.BodyType())
	assert.Equal(t, "Int#+(Int)", clone.Signature())

	_, ok = intPlus.LookupInstance(m.Primitive(infer.Float), []infer.Type{m.Primitive(infer.Int)})
	assert.False(t, ok)
}

func TestInstallComparisons(t *testing.T) {
	m := infer.NewModule()
	Install(m)

	lt := infer.Methods(m.Primitive(infer.Float))["<"]
	require.NotNil(t, lt)
	clone, ok := lt.LookupInstance(m.Primitive(infer.Float), []infer.Type{m.Primitive(infer.Float)})
	require.True(t, ok)
	assert.Same(t, m.Primitive(infer.Bool), clone.BodyType())

	assert.Nil(t, infer.Methods(m.Primitive(infer.Void))["=="])
}

func TestConcurrentInstall(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := infer.NewModule()
			Global.Install(m)
			assert.NotNil(t, infer.Methods(m.Primitive(infer.Int))["+"])
		}()
	}
	wg.Wait()
}
