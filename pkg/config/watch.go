package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of file events into one change.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to a fixed set of files. It watches the parent
// directories so that editors which replace files on save are noticed.
type Watcher struct {
	files    map[string]bool
	dirs     map[string]bool
	Debounce time.Duration
	Logger   *log.Logger
}

// NewWatcher creates a watcher for the given files.
func NewWatcher(files ...string) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		dirs:     make(map[string]bool),
		Debounce: DefaultDebounce,
		Logger:   log.Default(),
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		w.dirs[filepath.Dir(abs)] = true
	}
	if len(w.files) == 0 {
		return nil, fmt.Errorf("watch: no files given")
	}
	return w, nil
}

// Watch calls onChange with the changed file after each debounced burst of
// writes, creates or renames. It blocks until ctx is done and returns nil.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fw.Close()

	for dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watcher add %s: %w", dir, err)
		}
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			pending = ev.Name
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange(pending)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
