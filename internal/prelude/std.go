package prelude

import "martianoff/mono/internal/infer"

// StdSpecs returns the builtin arithmetic and comparison methods.
// This is the single source of truth for the standard prelude.
func StdSpecs() []MethodSpec {
	var specs []MethodSpec
	for _, k := range []infer.PrimitiveKind{infer.Int, infer.Float} {
		// Arithmetic keeps the operand type; there is no numeric coercion.
		for _, op := range []string{"+", "-", "*", "/"} {
			specs = append(specs, MethodSpec{Owner: k, Name: op, Params: []infer.PrimitiveKind{k}, Result: k})
		}
		for _, op := range []string{"<", "<=", ">", ">="} {
			specs = append(specs, MethodSpec{Owner: k, Name: op, Params: []infer.PrimitiveKind{k}, Result: infer.Bool})
		}
	}
	for _, k := range []infer.PrimitiveKind{infer.Bool, infer.Int, infer.Float, infer.Char, infer.String} {
		specs = append(specs, MethodSpec{Owner: k, Name: "==", Params: []infer.PrimitiveKind{k}, Result: infer.Bool})
	}
	specs = append(specs,
		MethodSpec{Owner: infer.String, Name: "+", Params: []infer.PrimitiveKind{infer.String}, Result: infer.String},
		MethodSpec{Owner: infer.Int, Name: "to_f", Result: infer.Float},
		MethodSpec{Owner: infer.Float, Name: "to_i", Result: infer.Int},
		MethodSpec{Owner: infer.Char, Name: "ord", Result: infer.Int},
		MethodSpec{Owner: infer.Int, Name: "chr", Result: infer.Char},
	)
	return specs
}

// DefaultRegistry returns a registry pre-configured with StdSpecs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(StdSpecs()...)
	return r
}

// Global is the default registry instance.
//
// Only create custom registries when you need isolation (e.g., in tests).
var Global = DefaultRegistry()

// Install registers the Global builtins into m. It has the signature
// infer.WithPrelude expects.
func Install(m *infer.Module) {
	Global.Install(m)
}
