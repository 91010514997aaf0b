package app

import (
	"log"
	"strconv"

	"github.com/justyntemme/liv/internal/collection"
	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/fs"
	"github.com/justyntemme/liv/internal/record"
	"github.com/justyntemme/liv/internal/store"
)

// processEvents forwards worker responses and watcher notifications to the
// window goroutine.
func (o *Orchestrator) processEvents() {
	var notify <-chan string
	if o.watcher != nil {
		notify = o.watcher.Notify()
	}
	for {
		select {
		case resp := <-o.fs.ResponseChan:
			o.post(func() { o.handleFSResponse(resp) })
		case resp := <-o.store.ResponseChan:
			o.post(func() { o.handleStoreResponse(resp) })
		case dir := <-notify:
			o.post(func() { o.rescan(dir) })
		case <-o.done:
			return
		}
	}
}

func (o *Orchestrator) handleFSResponse(resp fs.Response) {
	switch resp.Op {
	case fs.ReadDir:
		if resp.Gen != o.fsGen {
			debug.Log(debug.APP, "dropping stale listing of %s", resp.Path)
			return
		}
		if resp.Err != nil {
			log.Printf("FS Error: %v", resp.Err)
			o.ui.ShowError(resp.Err.Error())
			return
		}
		var dirs []string
		var images []*record.Record
		for _, e := range resp.Entries {
			if e.IsDir {
				dirs = append(dirs, e.Path)
				continue
			}
			r, err := o.lib.Get(e.Path)
			if err != nil {
				continue
			}
			images = append(images, r)
		}
		o.nav.ShowDirectory(resp.Path, dirs, images)

	case fs.ScanImages:
		if resp.Err != nil {
			log.Printf("FS Error: rescan %s: %v", resp.Path, resp.Err)
			return
		}
		cur := o.nav.CurrentRecord()
		for _, p := range resp.Images {
			if r, ok := o.lib.Lookup(p); ok && r.Changed() {
				debug.Log(debug.APP, "reloading changed %s", p)
				r.Reload()
			}
		}
		n := 0
		for _, d := range o.directorySets(resp.Path) {
			if err := o.loader.Fill(d, resp.Images); err != nil {
				log.Printf("FS Error: refill %s: %v", resp.Path, err)
				continue
			}
			n++
		}
		if n > 0 {
			debug.Log(debug.APP, "rescanned %s: %d images", resp.Path, len(resp.Images))
			o.nav.Refresh(cur)
		}
	}
}

// rescan asks for a new listing of a watched directory.
func (o *Orchestrator) rescan(dir string) {
	sets := o.directorySets(dir)
	if len(sets) == 0 {
		return
	}
	o.fs.RequestChan <- fs.Request{Op: fs.ScanImages, Path: dir, Recursive: sets[0].Recursive}
}

// directorySets returns the directory entries of the collection for dir.
func (o *Orchestrator) directorySets(dir string) []*collection.Node {
	var out []*collection.Node
	o.zones.Collection.Walk(func(n *collection.Node) bool {
		if n.Kind == collection.KindDirectory && n.Name == dir {
			out = append(out, n)
		}
		return true
	})
	return out
}

// syncWatches watches exactly the directories of the collection's
// directory entries.
func (o *Orchestrator) syncWatches() {
	if o.watcher == nil {
		return
	}
	var dirs []string
	o.zones.Collection.Walk(func(n *collection.Node) bool {
		if n.Kind == collection.KindDirectory {
			dirs = append(dirs, n.Name)
		}
		return true
	})
	o.watcher.Sync(dirs)
	debug.Log(debug.APP, "watching %d directories", o.watcher.Watching())
}

func (o *Orchestrator) handleStoreResponse(resp store.Response) {
	if resp.Err != nil {
		log.Printf("Store Error: %v", resp.Err)
		if resp.Op == store.FetchRecent && o.awaitRecent {
			o.awaitRecent = false
			o.load(o.opts.Paths, "")
		}
		return
	}
	switch resp.Op {
	case store.FetchSettings:
		o.settings = resp.Settings
		o.restoreSettings()
	case store.FetchRecent:
		if !o.awaitRecent {
			return
		}
		o.awaitRecent = false
		file := ""
		if len(resp.Recent) > 0 {
			file = resp.Recent[0]
			debug.Log(debug.APP, "reopening %s", file)
		}
		o.load(nil, file)
	}
}

// viewSettings are the parts of the view state kept across runs.
type viewSettings struct {
	sort    collection.SortKey
	reverse bool
	info    uint
}

// restoreSettings applies the stored sort and info bits once both the
// settings and the collection are in. Sorts given on the command line win.
func (o *Orchestrator) restoreSettings() {
	if o.restored || !o.loaded || o.settings == nil {
		return
	}
	o.restored = true
	if v, ok := o.settings[store.SettingInfo]; ok {
		if bits, err := strconv.ParseUint(v, 10, 32); err == nil {
			o.nav.SetInfo(uint(bits))
		}
	}
	if o.opts.Sort != "" || !o.cfg.Get().Behavior.RestoreSort {
		o.saved = o.currentView()
		return
	}
	if v, ok := o.settings[store.SettingSort]; ok {
		k, err := collection.ParseSortKey(v)
		if err == nil && k != collection.SortNone {
			o.nav.ApplySort(k, o.settings[store.SettingReverse] == "true")
		}
	}
	o.saved = o.currentView()
}

func (o *Orchestrator) currentView() viewSettings {
	k, rev := o.nav.SortKey()
	return viewSettings{sort: k, reverse: rev, info: o.nav.InfoBits()}
}

// persistView stores the view settings that changed since the last frame.
func (o *Orchestrator) persistView() {
	if !o.storeOK || !o.loaded {
		return
	}
	v := o.currentView()
	if v == o.saved {
		return
	}
	if v.sort != o.saved.sort {
		o.saveSetting(store.SettingSort, v.sort.String())
	}
	if v.reverse != o.saved.reverse {
		o.saveSetting(store.SettingReverse, strconv.FormatBool(v.reverse))
	}
	if v.info != o.saved.info {
		o.saveSetting(store.SettingInfo, strconv.FormatUint(uint64(v.info), 10))
	}
	o.saved = v
}

func (o *Orchestrator) saveSetting(key, value string) {
	o.store.RequestChan <- store.Request{Op: store.SaveSetting, Key: key, Value: value}
}

// addRecent records a loaded or saved collection file.
func (o *Orchestrator) addRecent(path string) {
	if !o.storeOK {
		return
	}
	o.store.RequestChan <- store.Request{Op: store.AddRecent, Path: path}
}
