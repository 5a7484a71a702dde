package infer

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// UnionType is a mutable, flat set of member types. Local-variable bindings
// hold a *UnionType so that every reader observes later growth in place.
type UnionType struct {
	members []Type
}

// NewUnion returns a union seeded with t. t must be resolved.
func NewUnion(t Type) *UnionType {
	u := &UnionType{}
	AddMember(u, t)
	return u
}

func (u *UnionType) String() string {
	names := lo.Map(u.members, func(t Type, _ int) string { return t.String() })
	return strings.Join(names, " | ")
}
func (*UnionType) isType() {}

// Members returns the union members in insertion order.
func (u *UnionType) Members() []Type {
	return u.members
}

// Len returns the number of members.
func (u *UnionType) Len() int { return len(u.members) }

// Contains reports whether t (or every member of t, for unions) is a member.
func (u *UnionType) Contains(t Type) bool {
	if o, ok := t.(*UnionType); ok {
		for _, m := range o.members {
			if !u.Contains(m) {
				return false
			}
		}
		return true
	}
	return slices.ContainsFunc(u.members, func(m Type) bool { return Equal(m, t) })
}

// AddMember inserts t into u in place. Duplicates are ignored, unions are
// flattened and unresolved types are never stored. It reports whether u grew.
func AddMember(u *UnionType, t Type) bool {
	if IsUnresolved(t) {
		return false
	}
	if o, ok := t.(*UnionType); ok {
		if o == u {
			return false
		}
		grew := false
		for _, m := range append([]Type(nil), o.members...) {
			if AddMember(u, m) {
				grew = true
			}
		}
		return grew
	}
	if u.Contains(t) {
		return false
	}
	u.members = append(u.members, t)
	return true
}

// Merge combines two types. Equal types yield a unchanged; two different
// resolved types yield one flat union. If either side is unresolved the
// result is Unknown when both are, or a PendingList of the resolved
// candidates otherwise.
func Merge(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if IsUnresolved(a) || IsUnresolved(b) {
		var cands []Type
		cands = appendCandidates(cands, a)
		cands = appendCandidates(cands, b)
		if len(cands) == 0 {
			return Unknown
		}
		return &PendingList{Candidates: cands}
	}
	if Equal(a, b) {
		return a
	}
	if x, ok := a.(*UnionType); ok && x.Contains(b) {
		return a
	}
	if y, ok := b.(*UnionType); ok && y.Contains(a) {
		return b
	}
	u := &UnionType{}
	AddMember(u, a)
	AddMember(u, b)
	return u
}

func appendCandidates(cands []Type, t Type) []Type {
	switch x := t.(type) {
	case *UnknownType:
		return cands
	case *PendingList:
		for _, c := range x.Candidates {
			cands = appendCandidates(cands, c)
		}
		return cands
	}
	if slices.ContainsFunc(cands, func(c Type) bool { return Equal(c, t) }) {
		return cands
	}
	return append(cands, t)
}

// Unmerge extracts one candidate from p, skipping entries equal to sentinel.
// It returns the candidate and the candidates still pending, or nil when
// none remain. If p holds nothing but sentinels, sentinel itself is returned.
func Unmerge(p *PendingList, sentinel Type) (Type, *PendingList) {
	rest := lo.Filter(p.Candidates, func(c Type, _ int) bool { return c != sentinel })
	if len(rest) == 0 {
		return sentinel, nil
	}
	if len(rest) == 1 {
		return rest[0], nil
	}
	return rest[0], &PendingList{Candidates: rest[1:]}
}
