package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	testCases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/p/a.jpg", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/p/a.jpg", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/p/a.txt", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/p/.thumbnails", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/p/newdir", Op: fsnotify.Create}, true},
	}
	for _, tc := range testCases {
		if got := relevant(tc.ev); got != tc.want {
			t.Errorf("relevant(%v): expected %v, got %v", tc.ev, tc.want, got)
		}
	}
}

func TestWatcherNotifies(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	w.Sync([]string{dir})
	if w.Watching() != 1 {
		t.Fatalf("Watching: expected 1, got %d", w.Watching())
	}
	os.WriteFile(filepath.Join(dir, "new.jpg"), []byte("x"), 0644)

	select {
	case got := <-w.Notify():
		if got != dir {
			t.Errorf("Notify: expected %s, got %s", dir, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	w.Sync(nil)
	if w.Watching() != 0 {
		t.Errorf("Watching after Sync(nil): expected 0, got %d", w.Watching())
	}
}
