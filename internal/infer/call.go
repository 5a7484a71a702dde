package infer

import (
	"martianoff/mono/monoerr"

	"golang.org/x/exp/slices"
)

func (inf *Inferer) inferCall(sc *ScopeStack, c *Call) error {
	c.TargetDef = nil

	if c.IsNew() {
		name := c.Receiver.(*Const)
		cls, ok := inf.module.Class(name.Name)
		if !ok {
			return inf.errorf(sc, monoerr.TypeUnknownConstant, name.Span(), "uninitialized constant %s", name.Name)
		}
		name.SetType(cls)
		c.SetType(cls.Instance())
		return nil
	}

	var recv Type
	var scope Type = inf.module
	if c.Receiver != nil {
		if err := inf.infer(sc, c.Receiver); err != nil {
			return err
		}
		recv = c.Receiver.Type()
		if IsUnresolved(recv) {
			c.SetType(Unknown)
			return nil
		}
		scope = recv
	}

	untyped, ok := Methods(scope)[c.Name]
	if !ok {
		switch {
		case recv != nil:
			return inf.errorf(sc, monoerr.TypeUndefinedMethod, c.Span(), "undefined method '%s' for %s", c.Name, recv)
		case c.Parens || len(c.Args) > 0:
			return inf.errorf(sc, monoerr.TypeUndefinedMethod, c.Span(), "undefined method '%s'", c.Name)
		default:
			return inf.errorf(sc, monoerr.TypeUndefinedVariableOrMethod, c.Span(), "undefined local variable or method '%s'", c.Name)
		}
	}

	if len(c.Args) != len(untyped.Params) {
		return inf.errorf(sc, monoerr.TypeArityMismatch, c.Span(),
			"wrong number of arguments for '%s' (%d for %d)", c.Name, len(c.Args), len(untyped.Params))
	}

	args := make([]Type, len(c.Args))
	for i, arg := range c.Args {
		if err := inf.infer(sc, arg); err != nil {
			return err
		}
		args[i] = arg.Type()
		if IsUnresolved(args[i]) {
			c.SetType(Unknown)
			return nil
		}
	}

	owner := dispatchType(scope)
	if recv == nil {
		owner = untyped.Owner
	}
	key := instanceKey(owner, args)
	clone, found := untyped.LookupInstance(owner, args)

	if untyped.Frozen {
		if !found {
			return inf.errorf(sc, monoerr.TypeNoMatchingOverload, c.Span(),
				"no overload matches '%s' with types %s", methodLabel(recv, c.Name), typeList(args))
		}
		c.TargetDef = clone
		c.SetType(clone.BodyType())
		return nil
	}

	if found && clone.BodyType() == Unknown {
		if sc.Active(untyped, key) {
			inf.trace.Printf("recursion guard: %s", signature(owner, c.Name, args))
			c.TargetDef = clone
			c.SetType(clone.BodyType())
			return nil
		}
		found = false
	}

	if !found {
		var err error
		clone, err = inf.instantiate(sc, c, untyped, owner, key, args)
		if err != nil {
			return err
		}
	}

	c.TargetDef = clone
	c.SetType(clone.BodyType())
	return nil
}

// instantiate creates the typed clone of untyped for args, registers it
// before its body is inferred so recursive calls can find it, and runs the
// body to a fixpoint.
func (inf *Inferer) instantiate(sc *ScopeStack, c *Call, untyped *Def, owner Type, key, args []Type) (*Def, error) {
	clone := untyped.Clone().(*Def)
	clone.Owner = owner
	if clone.Body == nil {
		clone.Body = &Expressions{}
	}
	for i, p := range clone.Params {
		p.SetType(NewUnion(args[i]))
	}
	untyped.AddInstance(clone)
	inf.trace.Printf("instantiate %s", signature(owner, c.Name, args))

	frame := sc.Push(c.Span().Line, untyped, key, owner)
	frame.classDepth = len(inf.classes)
	defer sc.Pop()

	if c.Receiver != nil {
		frame.Define("self", owner)
	}
	for _, p := range clone.Params {
		frame.Bind(p.Name, p.Type().(*UnionType))
	}

	if err := inf.infer(sc, clone.Body); err != nil {
		return nil, err
	}

	var tried []Type
	for {
		pending, ok := clone.Body.Type().(*PendingList)
		if !ok {
			break
		}
		cand, _ := Unmerge(pending, Unknown)
		if cand == Unknown {
			clone.Body.SetType(Unknown)
			break
		}
		if slices.ContainsFunc(tried, func(t Type) bool { return Equal(t, cand) }) {
			// No new candidate: settle on everything seen so far.
			result := cand
			for _, t := range append(tried, pending.Candidates...) {
				result = Merge(result, t)
			}
			clone.Body.SetType(result)
			break
		}
		tried = append(tried, cand)
		inf.trace.Printf("fixpoint %s: pass %d with %s", signature(owner, c.Name, args), len(tried), cand)
		clone.Body.SetType(cand)
		if err := inf.infer(sc, clone.Body); err != nil {
			return nil, err
		}
	}
	settle(clone.Body)
	return clone, nil
}

func methodLabel(recv Type, name string) string {
	if recv == nil {
		return name
	}
	return dispatchType(recv).String() + "#" + name
}
