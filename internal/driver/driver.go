// Package driver wires the tree loader, the prelude and the inferer into a
// checking pipeline, and renders its failures.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"

	"martianoff/mono/internal/infer"
	"martianoff/mono/internal/prelude"
	"martianoff/mono/internal/treefile"
	"martianoff/mono/monoerr"

	"golang.org/x/sync/errgroup"
)

// Loader reads a tree document from path.
type Loader interface {
	Load(path string) (*treefile.Document, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*treefile.Document, error)

func (f LoaderFunc) Load(path string) (*treefile.Document, error) { return f(path) }

// Result is the outcome of checking one file. Doc is nil when the file
// could not be loaded; Module is nil unless inference succeeded.
type Result struct {
	Path   string
	Doc    *treefile.Document
	Module *infer.Module
	Err    error
}

// Checker runs independent inference passes, one fresh Module per file.
type Checker struct {
	loader  Loader
	install func(*infer.Module)
	trace   *log.Logger
	limit   int
}

// Option configures a Checker.
type Option func(*Checker)

// WithLoader replaces the default treefile loader.
func WithLoader(l Loader) Option {
	return func(c *Checker) { c.loader = l }
}

// WithTrace sends inference trace output to l.
func WithTrace(l *log.Logger) Option {
	return func(c *Checker) { c.trace = l }
}

// WithPrelude replaces the builtin method set installed into every Module.
func WithPrelude(install func(*infer.Module)) Option {
	return func(c *Checker) { c.install = install }
}

// WithConcurrency caps how many files CheckAll checks at once.
func WithConcurrency(n int) Option {
	return func(c *Checker) { c.limit = n }
}

// NewChecker creates a Checker that loads tree files from disk and installs
// the standard prelude.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		loader:  LoaderFunc(treefile.Load),
		install: prelude.Install,
		trace:   log.New(io.Discard, "", 0),
		limit:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check loads and infers the file at path. The returned Result is never nil;
// its Err is also returned.
func (c *Checker) Check(path string) (*Result, error) {
	res := &Result{Path: path}
	doc, err := c.loader.Load(path)
	if err != nil {
		res.Err = err
		return res, err
	}
	res.Doc = doc
	res.Module, res.Err = c.CheckDocument(doc)
	return res, res.Err
}

// CheckDocument infers an already loaded document. Type errors are tagged
// with the document path.
func (c *Checker) CheckDocument(doc *treefile.Document) (*infer.Module, error) {
	inf := infer.NewInferer(infer.WithPrelude(c.install), infer.WithTrace(c.trace))
	if err := inf.Infer(doc.Root); err != nil {
		var te *monoerr.TypeError
		if errors.As(err, &te) {
			te.FilePath = doc.Path
		}
		return nil, err
	}
	return inf.Module(), nil
}

// CheckAll checks every path concurrently. Each file is an independent run.
// Results are returned in input order; if any file failed, the error is a
// *monoerr.MultiError holding the failures in input order.
func (c *Checker) CheckAll(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	var mu sync.Mutex
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, _ := c.Check(path)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var failed []error
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res.Err)
		}
	}
	if len(failed) > 0 {
		return results, &monoerr.MultiError{Errors: failed}
	}
	return results, nil
}

// Report writes the diagnostic for a failed result: the full caret report
// for type errors, the plain message otherwise. It writes nothing for a
// successful result.
func Report(w io.Writer, res *Result, opts monoerr.RenderOptions) error {
	if res.Err == nil {
		return nil
	}
	var te *monoerr.TypeError
	if errors.As(res.Err, &te) && res.Doc != nil {
		_, err := io.WriteString(w, te.Render(res.Doc.Source, opts))
		return err
	}
	_, err := fmt.Fprintln(w, res.Err)
	return err
}
