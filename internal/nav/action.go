package nav

import (
	"fmt"
	"strings"

	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/collection"
)

// ViewMode is the state of the controller. The zero value matches any mode
// when used as a filter.
type ViewMode int

const (
	AnyMode ViewMode = iota
	Normal
	Thumbs
	Help
	Slideshow
)

var modeNames = map[ViewMode]string{
	AnyMode:   "any",
	Normal:    "normal",
	Thumbs:    "thumbs",
	Help:      "help",
	Slideshow: "slideshow",
}

func (m ViewMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ViewMode(%d)", int(m))
}

// ParseViewMode reads a mode name. The empty string is AnyMode.
func ParseViewMode(s string) (ViewMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AnyMode, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return AnyMode, fmt.Errorf("nav: unknown view mode %q", s)
}

// ActionKind is the closed set of things the controller can do.
type ActionKind int

const (
	ActNone ActionKind = iota
	ActNext
	ActPrevious
	ActBeginning
	ActEnd
	ActParent
	ActPlay
	ActPause
	ActOneToOne
	ActFit
	ActCenter
	ActZoomIn
	ActZoomOut
	ActRotateImage
	ActRotateImageBack
	ActRotateScreen
	ActRotateScreenBack
	ActSelect
	ActRemove
	ActReplaceWithSelected
	ActShowSelectedImage
	ActShowAllSelected
	ActToggleBrowse
	ActBrowseFilesystem
	ActRemapThumbs
	ActToggleInfo
	ActToggleMeta
	ActToggleVerbose
	ActToggleFullscreen
	ActToggleMenu
	ActNewTag
	ActEditTag
	ActSort
	ActReverse
	ActSave
	ActHelp
	ActQuit
	ActViewAt
	numActions
)

var actionNames = [numActions]string{
	ActNone:                "none",
	ActNext:                "next",
	ActPrevious:            "previous",
	ActBeginning:           "beginning",
	ActEnd:                 "end",
	ActParent:              "parent",
	ActPlay:                "play",
	ActPause:               "pause",
	ActOneToOne:            "one-to-one",
	ActFit:                 "fit",
	ActCenter:              "center",
	ActZoomIn:              "zoom-in",
	ActZoomOut:             "zoom-out",
	ActRotateImage:         "rotate-image",
	ActRotateImageBack:     "rotate-image-back",
	ActRotateScreen:        "rotate-screen",
	ActRotateScreenBack:    "rotate-screen-back",
	ActSelect:              "select",
	ActRemove:              "remove",
	ActReplaceWithSelected: "replace-with-selected",
	ActShowSelectedImage:   "show-selected-image",
	ActShowAllSelected:     "show-all-selected",
	ActToggleBrowse:        "toggle-browse",
	ActBrowseFilesystem:    "browse-filesystem",
	ActRemapThumbs:         "remap-thumbs",
	ActToggleInfo:          "toggle-info",
	ActToggleMeta:          "toggle-meta",
	ActToggleVerbose:       "toggle-verbose",
	ActToggleFullscreen:    "toggle-fullscreen",
	ActToggleMenu:          "toggle-menu",
	ActNewTag:              "new-tag",
	ActEditTag:             "edit-tag",
	ActSort:                "sort",
	ActReverse:             "reverse",
	ActSave:                "save",
	ActHelp:                "help",
	ActQuit:                "quit",
	ActViewAt:              "view-at",
}

func (k ActionKind) String() string {
	if k >= 0 && k < numActions {
		return actionNames[k]
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is a resolved request. Only the fields relevant to Kind are set.
type Action struct {
	Kind  ActionKind
	Index int                // ActShowSelectedImage, ActEditTag
	Sort  collection.SortKey // ActSort
	Text  string             // ActEditTag: the tag
	At    f32.Point          // ActViewAt, pointer position for zoom actions
}

func (a Action) String() string {
	switch a.Kind {
	case ActSort:
		return "sort:" + a.Sort.String()
	case ActShowSelectedImage, ActEditTag:
		return fmt.Sprintf("%s:%d", a.Kind, a.Index)
	}
	return a.Kind.String()
}

// ParseAction reads an action name as used in key bindings. Sorts are
// written "sort:<key>".
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if key, ok := strings.CutPrefix(s, "sort:"); ok {
		k, err := collection.ParseSortKey(key)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActSort, Sort: k}, nil
	}
	for k := ActionKind(1); k < numActions; k++ {
		if actionNames[k] == s {
			return Action{Kind: k}, nil
		}
	}
	return Action{}, fmt.Errorf("nav: unknown action %q", s)
}
