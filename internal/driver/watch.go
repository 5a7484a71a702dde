package driver

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to a set of tree files. The parent directories are
// watched rather than the files, so editors that save by rename are seen.
type Watcher struct {
	w     *fsnotify.Watcher
	files map[string]bool
}

// NewWatcher starts watching paths.
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &Watcher{w: w, files: make(map[string]bool)}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		fw.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return fw, nil
}

// Run calls onChange with the path of each watched file that is written or
// recreated, until ctx is done or the watcher fails.
func (fw *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !fw.files[abs] {
				continue
			}
			onChange(abs)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// Close stops the watcher.
func (fw *Watcher) Close() error {
	return fw.w.Close()
}
