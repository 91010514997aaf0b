package nav

import (
	"testing"

	"github.com/justyntemme/liv/internal/collection"
)

func TestParseAction(t *testing.T) {
	testCases := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"next", Action{Kind: ActNext}, false},
		{" Zoom-In ", Action{Kind: ActZoomIn}, false},
		{"replace-with-selected", Action{Kind: ActReplaceWithSelected}, false},
		{"sort:date", Action{Kind: ActSort, Sort: collection.SortDate}, false},
		{"sort:CaseName", Action{Kind: ActSort, Sort: collection.SortCaseName}, false},
		{"sort:none", Action{}, true},
		{"none", Action{}, true},
		{"explode", Action{}, true},
	}
	for _, tc := range testCases {
		got, err := ParseAction(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAction(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAction(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAction(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestActionNamesRoundTrip(t *testing.T) {
	for k := ActionKind(1); k < numActions; k++ {
		if k == ActSort {
			continue
		}
		a, err := ParseAction(k.String())
		if err != nil || a.Kind != k {
			t.Errorf("ParseAction(%q): expected %v, got %v (%v)", k.String(), k, a.Kind, err)
		}
	}
}

func TestParseViewMode(t *testing.T) {
	testCases := []struct {
		in   string
		want ViewMode
	}{
		{"", AnyMode},
		{"thumbs", Thumbs},
		{"Normal", Normal},
		{"slideshow", Slideshow},
	}
	for _, tc := range testCases {
		got, err := ParseViewMode(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseViewMode(%q): expected %v, got %v (%v)", tc.in, tc.want, got, err)
		}
	}
	if _, err := ParseViewMode("sideways"); err == nil {
		t.Error("ParseViewMode(\"sideways\"): expected error")
	}
}
