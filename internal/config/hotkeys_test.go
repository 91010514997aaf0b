package config

import (
	"slices"
	"testing"

	"gioui.org/io/key"
)

func TestParseHotkey(t *testing.T) {
	testCases := []struct {
		in   string
		want Hotkey
	}{
		{"q", Hotkey{Key: "Q"}},
		{"Shift+T", Hotkey{Key: "T", Modifiers: key.ModShift}},
		{"Ctrl+Shift+R", Hotkey{Key: "R", Modifiers: key.ModCtrl | key.ModShift}},
		{"Shift+2", Hotkey{Key: "@", Modifiers: key.ModShift}},
		{"Space", Hotkey{Key: key.NameSpace}},
		{"backspace", Hotkey{Key: key.NameDeleteBackward}},
		{"F10", Hotkey{Key: key.NameF10}},
		{"=", Hotkey{Key: "="}},
		{"", Hotkey{}},
	}
	for _, tc := range testCases {
		if got := ParseHotkey(tc.in); got != tc.want {
			t.Errorf("ParseHotkey(%q): expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
}

func TestHotkeyString(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"ctrl+shift+r", "Ctrl+Shift+R"},
		{"Shift+2", "Shift+2"},
		{"F1", "F1"},
	}
	for _, tc := range testCases {
		if got := ParseHotkey(tc.in).String(); got != tc.want {
			t.Errorf("ParseHotkey(%q).String(): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestKeymapLookup(t *testing.T) {
	km := NewKeymap([]KeyBinding{
		{Action: "fit", Keys: []string{"Space"}},
		{Action: "pause", Keys: []string{"Space"}, Mode: "Slideshow"},
		{Action: "edit-tag", Keys: []string{"Shift+T"}},
		{Action: "new-tag", Keys: []string{"T"}},
		{Action: "broken", Keys: []string{""}},
	})
	testCases := []struct {
		ev     key.Event
		mode   string
		want   string
		wantOK bool
	}{
		{key.Event{Name: key.NameSpace}, "normal", "fit", true},
		{key.Event{Name: key.NameSpace}, "slideshow", "pause", true},
		{key.Event{Name: "T"}, "normal", "new-tag", true},
		{key.Event{Name: "T", Modifiers: key.ModShift}, "normal", "edit-tag", true},
		{key.Event{Name: "T", Modifiers: key.ModCtrl}, "normal", "", false},
		{key.Event{Name: "X"}, "normal", "", false},
	}
	for _, tc := range testCases {
		got, ok := km.Lookup(tc.ev, tc.mode)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Lookup(%v, %q): expected %q %v, got %q %v", tc.ev.Name, tc.mode, tc.want, tc.wantOK, got, ok)
		}
	}
	if got := km.Keys("fit"); !slices.Equal(got, []string{"Space"}) {
		t.Errorf("Keys(fit): expected [Space], got %v", got)
	}
	if got := len(km.Filters(nil)); got != 3 {
		t.Errorf("Filters: expected 3 distinct hotkeys, got %d", got)
	}
}

func TestDefaultKeyBindingsParse(t *testing.T) {
	for _, b := range DefaultKeyBindings() {
		for _, k := range b.Keys {
			if ParseHotkey(k).IsEmpty() {
				t.Errorf("binding %s: key %q does not parse", b.Action, k)
			}
		}
	}
}
