package fs

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/decode"
)

// Watcher reports directories whose set of images changed, debounced, so
// that directory sets can be rescanned.
type Watcher struct {
	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	watching map[string]bool
	notify   chan string
	done     chan struct{}
	debounce time.Duration
}

// NewWatcher starts a watcher that waits debounce after the last event in
// a directory before reporting it. Zero means 300ms.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	w := &Watcher{
		fsw:      fsw,
		watching: make(map[string]bool),
		notify:   make(chan string, 10),
		done:     make(chan struct{}),
		debounce: debounce,
	}
	go w.run()
	return w, nil
}

// relevant filters out events that cannot change a directory set, which
// includes preview files written by the local thumbnail policy.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	if hidden(name) {
		return false
	}
	// A created directory has no extension; let it through.
	return decode.IsImage(name) || filepath.Ext(name) == ""
}

func (w *Watcher) run() {
	lastEvent := make(map[string]time.Time)
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			dir := filepath.Dir(ev.Name)
			w.mu.Lock()
			if w.watching[dir] {
				lastEvent[dir] = time.Now()
				debug.Log(debug.FS, "watch: %s on %s", ev.Op, ev.Name)
			}
			w.mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.Log(debug.FS, "watch error: %v", err)

		case now := <-tick.C:
			for dir, t := range lastEvent {
				if now.Sub(t) < w.debounce {
					continue
				}
				select {
				case w.notify <- dir:
					debug.Log(debug.FS, "watch: %s changed", dir)
				default:
				}
				delete(lastEvent, dir)
			}
		}
	}
}

// Watch adds dir. Watching a directory twice is a no-op.
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.watching[dir] = true
	return nil
}

// Sync makes the watched set equal to dirs.
func (w *Watcher) Sync(dirs []string) {
	want := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		want[d] = true
	}
	w.mu.Lock()
	for d := range w.watching {
		if !want[d] {
			w.fsw.Remove(d)
			delete(w.watching, d)
		}
	}
	w.mu.Unlock()
	for d := range want {
		if err := w.Watch(d); err != nil {
			debug.Log(debug.FS, "watch %s: %v", d, err)
		}
	}
}

// Watching returns the number of watched directories.
func (w *Watcher) Watching() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watching)
}

// Notify delivers changed directory paths.
func (w *Watcher) Notify() <-chan string {
	return w.notify
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
