package driver_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"martianoff/mono/internal/driver"
	"martianoff/mono/internal/infer"
	"martianoff/mono/internal/treefile"
	"martianoff/mono/monoerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func TestCheck(t *testing.T) {
	c := driver.NewChecker()

	res, err := c.Check(testdata("fib.yaml"))
	require.NoError(t, err)
	require.NotNil(t, res.Module)

	fib, ok := res.Module.Def("fib")
	require.True(t, ok)
	require.Len(t, fib.Instances(), 1)
	assert.True(t, infer.Equal(res.Module.Primitive(infer.Int), fib.Instances()[0].BodyType()))
}

func TestCheckClasses(t *testing.T) {
	res, err := driver.NewChecker().Check(testdata("classes.yaml"))
	require.NoError(t, err)

	root := res.Doc.Root.(*infer.Expressions)
	last := root.Body[len(root.Body)-1]
	assert.True(t, infer.Equal(res.Module.Primitive(infer.Char), last.Type()), "got %s", last.Type())
}

func TestCheckTypeErrorCarriesPath(t *testing.T) {
	path := testdata("nested_error.yaml")
	res, err := driver.NewChecker().Check(path)
	require.Error(t, err)
	assert.Nil(t, res.Module)
	require.NotNil(t, res.Doc)

	var te *monoerr.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, path, te.FilePath)
	assert.Equal(t, []monoerr.Frame{{Line: 5, Method: "inner"}, {Line: 7, Method: "outer"}}, te.Frames)
}

func TestCheckLoadError(t *testing.T) {
	res, err := driver.NewChecker().Check(testdata("malformed.yaml"))
	require.Error(t, err)
	assert.Nil(t, res.Doc)
	assert.Equal(t, monoerr.TypeLoad, monoerr.Kind(err))
}

func TestCheckWithLoader(t *testing.T) {
	loader := driver.LoaderFunc(func(path string) (*treefile.Document, error) {
		return &treefile.Document{Path: path, Root: &infer.Expressions{}}, nil
	})
	res, err := driver.NewChecker(driver.WithLoader(loader)).Check("virtual")
	require.NoError(t, err)
	assert.Same(t, res.Module.Primitive(infer.Void), res.Doc.Root.Type())
}

func TestCheckWithoutPrelude(t *testing.T) {
	c := driver.NewChecker(driver.WithPrelude(func(*infer.Module) {}))
	_, err := c.Check(testdata("fib.yaml"))
	require.Error(t, err)
	assert.Equal(t, monoerr.TypeUndefinedMethod, monoerr.Kind(err))
}

func TestCheckTrace(t *testing.T) {
	var buf bytes.Buffer
	c := driver.NewChecker(driver.WithTrace(log.New(&buf, "", 0)))
	_, err := c.Check(testdata("fib.yaml"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "instantiate fib(Int)")
	assert.Contains(t, buf.String(), "recursion guard")
	assert.Contains(t, buf.String(), "fixpoint")
}

func TestCheckAll(t *testing.T) {
	paths := []string{
		testdata("nested_error.yaml"),
		testdata("fib.yaml"),
		testdata("malformed.yaml"),
		testdata("classes.yaml"),
	}
	for _, limit := range []int{1, 4} {
		c := driver.NewChecker(driver.WithConcurrency(limit))
		results, err := c.CheckAll(context.Background(), paths)
		require.Error(t, err)
		require.Len(t, results, len(paths))
		for i, res := range results {
			assert.Equal(t, paths[i], res.Path)
		}
		assert.NotNil(t, results[1].Module)
		assert.NotNil(t, results[3].Module)

		var multi *monoerr.MultiError
		require.ErrorAs(t, err, &multi)
		require.Len(t, multi.Errors, 2)
		assert.Equal(t, monoerr.TypeUndefinedMethod, monoerr.Kind(multi.Errors[0]))
		assert.Equal(t, monoerr.TypeLoad, monoerr.Kind(multi.Errors[1]))
	}
}

func TestCheckAllRunsAreIndependent(t *testing.T) {
	paths := []string{testdata("classes.yaml"), testdata("classes.yaml")}
	results, err := driver.NewChecker().CheckAll(context.Background(), paths)
	require.NoError(t, err)
	assert.NotSame(t, results[0].Module, results[1].Module)
}

func TestCheckAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := driver.NewChecker().CheckAll(ctx, []string{testdata("fib.yaml")})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReport(t *testing.T) {
	c := driver.NewChecker()

	res, _ := c.Check(testdata("nested_error.yaml"))
	var buf bytes.Buffer
	require.NoError(t, driver.Report(&buf, res, monoerr.RenderOptions{}))
	want := "[UndefinedMethod] testdata/nested_error.yaml:2:3 undefined method 'nope' for Int (in method inner)\n" +
		"\n" +
		"   2 |   x.nope\n" +
		"     |   ^~~~~~\n" +
		"\n" +
		"  from line 5 in 'inner'\n" +
		"  from line 7 in 'outer'\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	res, _ = c.Check(testdata("malformed.yaml"))
	require.NoError(t, driver.Report(&buf, res, monoerr.RenderOptions{}))
	assert.Contains(t, buf.String(), "[LoadError]")
	assert.Contains(t, buf.String(), "cannot assign")

	buf.Reset()
	res, _ = c.Check(testdata("fib.yaml"))
	require.NoError(t, driver.Report(&buf, res, monoerr.RenderOptions{}))
	assert.Empty(t, buf.String())
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tree: {kind: seq}\n"), 0o644))

	w, err := driver.NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(p string) { changed <- p })
	}()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("tree: {kind: seq}\n"), 0o644))

	select {
	case got := <-changed:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
