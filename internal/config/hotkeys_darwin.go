//go:build darwin

package config

// DefaultKeyBindings returns the default key bindings for macOS
// Uses Cmd where other platforms use Ctrl (macOS convention)
func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		// Navigation
		{Action: "previous", Keys: []string{"Left", "PageUp"}},
		{Action: "next", Keys: []string{"Right", "PageDown"}},
		{Action: "beginning", Keys: []string{"Home"}},
		{Action: "end", Keys: []string{"End"}},
		{Action: "parent", Keys: []string{"Up"}},
		{Action: "beginning", Keys: []string{"Shift+Left"}, Mode: "slideshow"},
		{Action: "end", Keys: []string{"Shift+Right"}, Mode: "slideshow"},

		// Slideshow
		{Action: "play", Keys: []string{"P"}},
		{Action: "pause", Keys: []string{"Space"}, Mode: "slideshow"},

		// Placement
		{Action: "fit", Keys: []string{"Space"}},
		{Action: "center", Keys: []string{"Shift+Space"}},
		{Action: "one-to-one", Keys: []string{"1"}},
		{Action: "zoom-in", Keys: []string{"="}},
		{Action: "zoom-out", Keys: []string{"-"}},
		{Action: "rotate-image", Keys: []string{"R"}},
		{Action: "rotate-image-back", Keys: []string{"Shift+R"}},
		{Action: "rotate-screen", Keys: []string{"Cmd+R"}},
		{Action: "rotate-screen-back", Keys: []string{"Cmd+Shift+R"}},

		// Collection
		{Action: "new-tag", Keys: []string{"T"}},
		{Action: "edit-tag", Keys: []string{"Shift+T"}},
		{Action: "select", Keys: []string{"M"}},
		{Action: "remove", Keys: []string{"Backspace", "Delete"}},
		{Action: "replace-with-selected", Keys: []string{"Shift+B"}},
		{Action: "show-all-selected", Keys: []string{"F2"}},
		{Action: "browse-filesystem", Keys: []string{"B"}},
		{Action: "save", Keys: []string{"Cmd+S"}},

		// Sorting
		{Action: "sort:date", Keys: []string{"2"}},
		{Action: "sort:size", Keys: []string{"3"}},
		{Action: "sort:pixels", Keys: []string{"4"}},
		{Action: "sort:width", Keys: []string{"5"}},
		{Action: "sort:height", Keys: []string{"6"}},
		{Action: "sort:name", Keys: []string{"7"}},
		{Action: "sort:casename", Keys: []string{"8"}},
		{Action: "reverse", Keys: []string{"9"}},
		{Action: "sort:random", Keys: []string{"0"}},

		// UI
		{Action: "toggle-browse", Keys: []string{"Cmd+T", "Return"}},
		{Action: "remap-thumbs", Keys: []string{"Cmd+Space"}},
		{Action: "toggle-menu", Keys: []string{"F10"}},
		{Action: "toggle-info", Keys: []string{"F"}},
		{Action: "toggle-meta", Keys: []string{"E"}},
		{Action: "toggle-verbose", Keys: []string{"V"}},
		{Action: "toggle-fullscreen", Keys: []string{"F11"}},
		{Action: "help", Keys: []string{"F1"}},
		{Action: "quit", Keys: []string{"Q", "Escape"}},
	}
}
