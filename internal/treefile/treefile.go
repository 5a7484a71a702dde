// Package treefile loads tree documents: YAML files that carry the program
// source text next to its already-parsed syntax tree. The source is kept
// only for rendering diagnostics; inference runs over the tree.
//
// A document looks like:
//
//	format: "1.0"
//	source: |
//	  def id(x)
//	    x
//	  end
//	  id(1)
//	tree:
//	  kind: seq
//	  body:
//	    - kind: def
//	      name: id
//	      params: [x]
//	      at: [1, 1, 9]
//	      body:
//	        - {kind: var, name: x, at: [2, 3, 1]}
//	    - kind: call
//	      name: id
//	      parens: true
//	      at: [4, 1, 5]
//	      args:
//	        - {kind: int, lit: "1", at: [4, 4, 1]}
package treefile

import (
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"martianoff/mono/internal/infer"
	"martianoff/mono/monoerr"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// FormatConstraint is the range of document format versions this loader
// reads. Documents without a format field are assumed to match.
const FormatConstraint = "^1.0"

var supportedFormat = mustConstraint(FormatConstraint)

func mustConstraint(c string) *semver.Constraints {
	sc, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return sc
}

// Document is a loaded tree file.
type Document struct {
	Path   string
	Source string
	Root   infer.Node
}

type rawDocument struct {
	Format string   `yaml:"format"`
	Source string   `yaml:"source"`
	Tree   *rawNode `yaml:"tree"`
}

type rawNode struct {
	Kind     string     `yaml:"kind"`
	Name     string     `yaml:"name,omitempty"`
	Lit      string     `yaml:"lit,omitempty"`
	At       []int      `yaml:"at,omitempty"`
	Target   *rawNode   `yaml:"target,omitempty"`
	Value    *rawNode   `yaml:"value,omitempty"`
	Receiver *rawNode   `yaml:"receiver,omitempty"`
	Args     []*rawNode `yaml:"args,omitempty"`
	Parens   bool       `yaml:"parens,omitempty"`
	Params   []string   `yaml:"params,omitempty"`
	Body     []*rawNode `yaml:"body,omitempty"`
	Cond     *rawNode   `yaml:"cond,omitempty"`
	Then     *rawNode   `yaml:"then,omitempty"`
	Else     *rawNode   `yaml:"else,omitempty"`

	line, column int
}

// UnmarshalYAML records where the node starts in the document so load
// errors can point at it.
func (r *rawNode) UnmarshalYAML(value *yaml.Node) error {
	type plain rawNode
	if err := value.Decode((*plain)(r)); err != nil {
		return err
	}
	r.line, r.column = value.Line, value.Column
	return nil
}

// Load reads and parses the tree document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree file %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses tree document content. The path is used only for error
// messages and may be empty.
func Parse(data []byte, path string) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, loadErr(path, 0, 0, "invalid YAML: %v", err)
	}
	if raw.Format != "" {
		v, err := semver.NewVersion(raw.Format)
		if err != nil {
			return nil, loadErr(path, 0, 0, "bad format version %q: %v", raw.Format, err)
		}
		if !supportedFormat.Check(v) {
			return nil, loadErr(path, 0, 0, "unsupported format version %s (want %s)", v, FormatConstraint)
		}
	}
	if raw.Tree == nil {
		return nil, loadErr(path, 0, 0, "document has no tree")
	}
	b := &builder{path: path}
	root, err := b.node(raw.Tree)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Source: raw.Source, Root: root}, nil
}

type builder struct {
	path string
}

func (b *builder) errorf(r *rawNode, format string, args ...any) error {
	return loadErr(b.path, r.line, r.column, format, args...)
}

func loadErr(path string, line, column int, format string, args ...any) error {
	err := monoerr.NewLoadError(line, column, fmt.Sprintf(format, args...))
	err.FilePath = path
	return err
}

func (b *builder) node(r *rawNode) (infer.Node, error) {
	if r == nil {
		return nil, loadErr(b.path, 0, 0, "empty node")
	}
	n, err := b.build(r)
	if err != nil {
		return nil, err
	}
	switch len(r.At) {
	case 0:
	case 3:
		n.SetSpan(monoerr.Span{Line: r.At[0], Column: r.At[1], Length: r.At[2]})
	default:
		return nil, b.errorf(r, "at must be [line, column, length], got %d values", len(r.At))
	}
	return n, nil
}

func (b *builder) build(r *rawNode) (infer.Node, error) {
	switch r.Kind {
	case "seq":
		return b.seq(r.Body)

	case "bool":
		v, err := strconv.ParseBool(r.Lit)
		if err != nil {
			return nil, b.errorf(r, "bad bool literal %q", r.Lit)
		}
		return &infer.BoolLit{Value: v}, nil
	case "int":
		v, err := strconv.ParseInt(r.Lit, 10, 64)
		if err != nil {
			return nil, b.errorf(r, "bad int literal %q", r.Lit)
		}
		return &infer.IntLit{Value: v}, nil
	case "float":
		v, err := strconv.ParseFloat(r.Lit, 64)
		if err != nil {
			return nil, b.errorf(r, "bad float literal %q", r.Lit)
		}
		return &infer.FloatLit{Value: v}, nil
	case "char":
		if utf8.RuneCountInString(r.Lit) != 1 {
			return nil, b.errorf(r, "char literal must be one character, got %q", r.Lit)
		}
		v, _ := utf8.DecodeRuneInString(r.Lit)
		return &infer.CharLit{Value: v}, nil
	case "string":
		return &infer.StringLit{Value: r.Lit}, nil

	case "var":
		if err := b.needName(r); err != nil {
			return nil, err
		}
		return &infer.Var{Name: r.Name}, nil
	case "ivar":
		if err := b.needName(r); err != nil {
			return nil, err
		}
		return &infer.InstanceVar{Name: r.Name}, nil
	case "const":
		if err := b.needName(r); err != nil {
			return nil, err
		}
		return &infer.Const{Name: r.Name}, nil

	case "assign":
		if r.Target == nil || r.Value == nil {
			return nil, b.errorf(r, "assign needs target and value")
		}
		target, err := b.node(r.Target)
		if err != nil {
			return nil, err
		}
		switch target.(type) {
		case *infer.Var, *infer.InstanceVar:
		default:
			return nil, b.errorf(r.Target, "cannot assign to %s", r.Target.Kind)
		}
		value, err := b.node(r.Value)
		if err != nil {
			return nil, err
		}
		return &infer.Assign{Target: target, Value: value}, nil

	case "call":
		if err := b.needName(r); err != nil {
			return nil, err
		}
		c := &infer.Call{Name: r.Name, Parens: r.Parens}
		if r.Receiver != nil {
			recv, err := b.node(r.Receiver)
			if err != nil {
				return nil, err
			}
			c.Receiver = recv
		}
		for _, a := range r.Args {
			arg, err := b.node(a)
			if err != nil {
				return nil, err
			}
			c.Args = append(c.Args, arg)
		}
		return c, nil

	case "def":
		if err := b.needName(r); err != nil {
			return nil, err
		}
		body, err := b.seq(r.Body)
		if err != nil {
			return nil, err
		}
		d := &infer.Def{Name: r.Name, Body: body}
		for _, p := range r.Params {
			d.Params = append(d.Params, &infer.Var{Name: p})
		}
		return d, nil

	case "class":
		if err := b.needName(r); err != nil {
			return nil, err
		}
		body, err := b.seq(r.Body)
		if err != nil {
			return nil, err
		}
		return &infer.ClassDef{Name: r.Name, Body: body}, nil

	case "if":
		if r.Cond == nil || r.Then == nil {
			return nil, b.errorf(r, "if needs cond and then")
		}
		cond, err := b.node(r.Cond)
		if err != nil {
			return nil, err
		}
		then, err := b.node(r.Then)
		if err != nil {
			return nil, err
		}
		n := &infer.If{Cond: cond, Then: then}
		if r.Else != nil {
			if n.Else, err = b.node(r.Else); err != nil {
				return nil, err
			}
		}
		return n, nil

	case "while":
		if r.Cond == nil {
			return nil, b.errorf(r, "while needs cond")
		}
		cond, err := b.node(r.Cond)
		if err != nil {
			return nil, err
		}
		body, err := b.seq(r.Body)
		if err != nil {
			return nil, err
		}
		return &infer.While{Cond: cond, Body: body}, nil

	case "":
		return nil, b.errorf(r, "node has no kind")
	}
	return nil, b.errorf(r, "unknown node kind %q", r.Kind)
}

func (b *builder) seq(body []*rawNode) (*infer.Expressions, error) {
	e := &infer.Expressions{}
	for _, r := range body {
		n, err := b.node(r)
		if err != nil {
			return nil, err
		}
		e.Body = append(e.Body, n)
	}
	return e, nil
}

func (b *builder) needName(r *rawNode) error {
	if r.Name == "" {
		return b.errorf(r, "%s node needs a name", r.Kind)
	}
	return nil
}
