// Package app wires the browser together and runs the Gio window loop.
package app

import (
	"image/color"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"

	"github.com/justyntemme/liv/internal/collection"
	"github.com/justyntemme/liv/internal/config"
	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/decode"
	"github.com/justyntemme/liv/internal/fs"
	"github.com/justyntemme/liv/internal/metadata"
	"github.com/justyntemme/liv/internal/nav"
	"github.com/justyntemme/liv/internal/preview"
	"github.com/justyntemme/liv/internal/record"
	"github.com/justyntemme/liv/internal/store"
	"github.com/justyntemme/liv/internal/ui"
)

// Options are the command line settings. Zero values defer to the config
// file.
type Options struct {
	Paths      []string
	Tags       []string // added to every image named on the command line
	Collection string
	Recursive  bool
	Sort       string
	Reverse    bool
	SlideDelay time.Duration // positive starts the slideshow
	Thumbs     string        // preview policy override
	OneToOne   bool
	Background string
	Windowed   bool
	Verbose    bool
}

// Orchestrator owns every component and the window. The controller and
// the collection tree are only touched from the window goroutine; other
// goroutines hand work over with post.
type Orchestrator struct {
	window   *app.Window
	opts     Options
	cfg      *config.Manager
	fs       *fs.System
	store    *store.DB
	storeOK  bool
	watcher  *fs.Watcher
	lib      *record.Library
	loader   *collection.Loader
	previews *preview.Pipeline
	zones    *collection.Zones
	nav      *nav.Controller
	ui       *ui.Renderer

	tasksMu sync.Mutex
	tasks   []func()
	done    chan struct{}

	title      string
	fullscreen bool
	fsGen      int64
	timers     map[int]chan struct{}
	nextTimer  int

	loaded      bool
	restored    bool
	awaitRecent bool
	settings    map[string]string
	saved       viewSettings
}

func NewOrchestrator(opts Options) *Orchestrator {
	return &Orchestrator{
		window: new(app.Window),
		opts:   opts,
		cfg:    config.NewManager(),
		fs:     fs.NewSystem(),
		store:  store.NewDB(),
		done:   make(chan struct{}),
		timers: make(map[int]chan struct{}),
	}
}

// setup builds the components from the loaded configuration.
func (o *Orchestrator) setup(cfg config.Config) {
	dec := decode.New()
	meta := metadata.NewReader()
	meta.Helper = cfg.Behavior.MetadataHelper
	o.lib = record.NewLibrary(dec, meta)
	o.loader = &collection.Loader{Library: o.lib, Scanner: o.fs}

	policyName := cfg.Thumbnails.Policy
	if o.opts.Thumbs != "" {
		policyName = o.opts.Thumbs
	}
	policy, err := preview.ParsePolicy(policyName)
	if err != nil {
		log.Printf("Config: %v, using %s", err, policy)
	}
	workers := cfg.Thumbnails.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	o.previews = preview.New(dec, preview.Options{
		Policy:  policy,
		Workers: workers,
		Wake:    o.window.Invalidate,
	})

	bg, err := parseBackground(cfg.View.Background)
	if o.opts.Background != "" {
		bg, err = parseBackground(o.opts.Background)
	}
	if err != nil {
		log.Printf("Config: %v", err)
		bg = color.NRGBA{A: 255}
	}
	keymap := config.NewKeymap(cfg.Keys)
	cache := ui.NewPictureCache(o.previews, 512, preview.DefaultBound, o.window.Invalidate)
	o.ui = ui.NewRenderer(cache, keymap, bg)
	o.ui.OnSaved = o.addRecent

	delay := cfg.SlideDelay()
	if o.opts.SlideDelay > 0 {
		delay = o.opts.SlideDelay
	}
	o.zones = collection.NewZones(600, 300)
	o.nav = nav.New(o.zones, o.previews, o, nav.Options{
		SlideDelay: delay,
		AutoRemove: cfg.Behavior.AutoRemove,
		OneToOne:   cfg.View.OneToOne || o.opts.OneToOne,
		Verbose:    cfg.View.Verbose || o.opts.Verbose,
		ShowMeta:   cfg.View.ShowMeta,
		Info:       infoBits(cfg.View.Info),
		ThumbGap:   cfg.Thumbnails.Gap,
	})
	o.nav.SetHelp(ui.HelpLines(keymap))
	o.saved = viewSettings{info: o.nav.InfoBits()}

	if cfg.Behavior.WatchDirs {
		w, err := fs.NewWatcher(0)
		if err != nil {
			log.Printf("Watcher: %v", err)
		} else {
			o.watcher = w
		}
	}

	opts := []app.Option{app.Title("liv"), app.Size(unit.Dp(600), unit.Dp(300))}
	if !cfg.View.Windowed && !o.opts.Windowed {
		opts = append(opts, app.Fullscreen.Option())
	}
	o.window.Option(opts...)
}

func (o *Orchestrator) Run() error {
	if err := o.cfg.Load(); err != nil {
		log.Printf("Config: %v", err)
	}
	cfg := o.cfg.Get()
	o.setup(cfg)

	if err := o.store.Open(store.DefaultPath()); err != nil {
		log.Printf("Store: failed to open database: %v", err)
	} else {
		o.storeOK = true
		go o.store.Start()
		defer o.store.Close()
		o.store.RequestChan <- store.Request{Op: store.FetchSettings}
	}

	go o.fs.Start()
	go o.processEvents()
	o.startLoading(cfg)

	if err := o.cfg.ParseError(); err != nil {
		o.ui.ShowError("Config error: " + err.Error())
	}

	var ops op.Ops
	for {
		switch e := o.window.Event().(type) {
		case app.DestroyEvent:
			o.shutdown()
			return e.Err
		case app.ConfigEvent:
			o.fullscreen = e.Config.Mode == app.Fullscreen
		case app.FrameEvent:
			o.runTasks()
			gtx := app.NewContext(&ops, e)
			o.ui.Frame(gtx, o.nav)
			o.persistView()
			e.Frame(gtx.Ops)
		}
	}
}

func (o *Orchestrator) shutdown() {
	debug.Log(debug.APP, "shutting down")
	for id := range o.timers {
		o.StopTimer(id)
	}
	o.ui.Stop()
	if o.watcher != nil {
		o.watcher.Close()
	}
	close(o.done)
}

// post queues fn for the window goroutine and wakes it.
func (o *Orchestrator) post(fn func()) {
	o.tasksMu.Lock()
	o.tasks = append(o.tasks, fn)
	o.tasksMu.Unlock()
	o.window.Invalidate()
}

func (o *Orchestrator) runTasks() {
	o.tasksMu.Lock()
	tasks := o.tasks
	o.tasks = nil
	o.tasksMu.Unlock()
	for _, fn := range tasks {
		fn()
	}
}

func Main(opts Options) {
	go func() {
		o := NewOrchestrator(opts)
		if err := o.Run(); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
