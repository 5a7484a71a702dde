package infer_test

import (
	"martianoff/mono/internal/infer"
)

func seq(nodes ...infer.Node) *infer.Expressions { return &infer.Expressions{Body: nodes} }
func intLit(v int64) *infer.IntLit              { return &infer.IntLit{Value: v} }
func floatLit(v float64) *infer.FloatLit        { return &infer.FloatLit{Value: v} }
func charLit(v rune) *infer.CharLit             { return &infer.CharLit{Value: v} }
func strLit(v string) *infer.StringLit          { return &infer.StringLit{Value: v} }
func boolLit(v bool) *infer.BoolLit             { return &infer.BoolLit{Value: v} }
func lvar(name string) *infer.Var               { return &infer.Var{Name: name} }
func ivar(name string) *infer.InstanceVar       { return &infer.InstanceVar{Name: name} }
func konst(name string) *infer.Const            { return &infer.Const{Name: name} }

func assign(target, value infer.Node) *infer.Assign {
	return &infer.Assign{Target: target, Value: value}
}

func def(name string, params []string, body ...infer.Node) *infer.Def {
	d := &infer.Def{Name: name, Body: seq(body...)}
	for _, p := range params {
		d.Params = append(d.Params, lvar(p))
	}
	return d
}

func class(name string, body ...infer.Node) *infer.ClassDef {
	return &infer.ClassDef{Name: name, Body: seq(body...)}
}

// call builds a bare call written with parentheses.
func call(name string, args ...infer.Node) *infer.Call {
	return &infer.Call{Name: name, Args: args, Parens: true}
}

func send(recv infer.Node, name string, args ...infer.Node) *infer.Call {
	return &infer.Call{Receiver: recv, Name: name, Args: args, Parens: len(args) > 0}
}

func newObj(name string) *infer.Call {
	return send(konst(name), "new")
}

func ifElse(cond, then, els infer.Node) *infer.If {
	return &infer.If{Cond: cond, Then: then, Else: els}
}

func ifThen(cond, then infer.Node) *infer.If {
	return &infer.If{Cond: cond, Then: then}
}
