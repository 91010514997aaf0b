package ui

import (
	"strings"
	"testing"

	"github.com/justyntemme/liv/internal/config"
)

func TestHelpLines(t *testing.T) {
	km := config.NewKeymap([]config.KeyBinding{
		{Action: "next", Keys: []string{"Right", "PageDown"}},
		{Action: "pause", Keys: []string{"Space"}, Mode: "slideshow"},
		{Action: "fit", Keys: []string{"Space"}},
	})
	doc := "# Title\n\nSome text\nover two lines.\n\n## Keys\n\n- `next` next image\n- `quit` leave\n- plain item\n"
	lines := helpLines(doc, km)

	want := []string{
		"TITLE",
		"Some text over two lines.",
		"",
		"Keys",
	}
	if len(lines) != 7 {
		t.Fatalf("helpLines: expected 7 lines, got %d: %q", len(lines), lines)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: expected %q, got %q", i, w, lines[i])
		}
	}
	keys := config.ParseHotkey("Right").String() + ", " + config.ParseHotkey("PageDown").String()
	if !strings.Contains(lines[4], keys) || !strings.HasSuffix(lines[4], " next image") {
		t.Errorf("bound item: got %q", lines[4])
	}
	if !strings.Contains(lines[5], "(unbound)") {
		t.Errorf("unbound item: got %q", lines[5])
	}
	if lines[6] != "  plain item" {
		t.Errorf("plain item: got %q", lines[6])
	}
}

func TestHelpLinesBuiltin(t *testing.T) {
	km := config.NewKeymap(config.DefaultKeyBindings())
	lines := HelpLines(km)
	if len(lines) == 0 {
		t.Fatal("HelpLines: empty help page")
	}
	for _, l := range lines {
		if strings.Contains(l, "`") {
			t.Errorf("unrendered code span in %q", l)
		}
	}
	found := false
	for _, l := range lines {
		if strings.Contains(l, "F1") && strings.HasSuffix(l, "show this page") {
			found = true
		}
	}
	if !found {
		t.Error("help line for the help action does not show F1")
	}
}
