package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gioui.org/app"
	"gioui.org/io/system"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/fs"
	"github.com/justyntemme/liv/internal/record"
	"github.com/justyntemme/liv/internal/ui"
)

// The methods below implement nav.Host. The controller calls them on the
// window goroutine.

func (o *Orchestrator) Redraw() {
	o.window.Invalidate()
}

func (o *Orchestrator) Quit() {
	debug.Log(debug.APP, "quit requested")
	o.window.Perform(system.ActionClose)
}

func (o *Orchestrator) ToggleFullscreen() {
	if o.fullscreen {
		o.window.Option(app.Windowed.Option())
	} else {
		o.window.Option(app.Fullscreen.Option())
	}
}

func (o *Orchestrator) SetTitle(title string) {
	if title == o.title {
		return
	}
	o.title = title
	o.window.Option(app.Title(title))
}

func (o *Orchestrator) PromptTag(r *record.Record, old string) {
	o.ui.AskTag(r, old)
}

func (o *Orchestrator) PromptSave(suggest string) {
	o.ui.AskSave(suggest)
}

// ListDirectory reads dir off the window goroutine. Only the answer to the
// latest request is shown.
func (o *Orchestrator) ListDirectory(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	o.fsGen++
	o.fs.RequestChan <- fs.Request{Op: fs.ReadDir, Path: dir, Gen: o.fsGen}
}

// NoMoreContent quits once the collection and the selection are both
// empty. Otherwise it only reports it.
func (o *Orchestrator) NoMoreContent(err error) {
	if o.loaded && o.zones.Collection.Len() == 0 && o.zones.Selection.Len() == 0 {
		fmt.Fprintln(os.Stderr, "liv: no images")
		o.Quit()
		return
	}
	o.ui.ShowToast("No more images", ui.ToastInfo)
	debug.Log(debug.APP, "%v", err)
}

// StartTimer ticks the controller every d until StopTimer.
func (o *Orchestrator) StartTimer(d time.Duration) int {
	o.nextTimer++
	id := o.nextTimer
	stop := make(chan struct{})
	o.timers[id] = stop
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				o.post(func() { o.nav.Tick(id) })
			case <-stop:
				return
			}
		}
	}()
	return id
}

func (o *Orchestrator) StopTimer(id int) {
	if stop, ok := o.timers[id]; ok {
		close(stop)
		delete(o.timers, id)
	}
}
