package ui

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	goldtext "github.com/yuin/goldmark/text"

	"github.com/justyntemme/liv/internal/config"
)

//go:embed help.md
var helpSource string

// keyColumn is the width of the key column on the help page, in runes.
const keyColumn = 22

// HelpLines renders the built in help page with the keys of km.
func HelpLines(km *config.Keymap) []string {
	return helpLines(helpSource, km)
}

// helpLines flattens markdown into display lines. A list item that starts
// with a code span naming an action is shown with the keys bound to it.
func helpLines(content string, km *config.Keymap) []string {
	source := []byte(content)
	doc := goldmark.New().Parser().Parse(goldtext.NewReader(source))

	var lines []string
	ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			title := inlineText(n, source)
			if n.Level == 1 {
				title = strings.ToUpper(title)
			}
			lines = append(lines, title)
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			if _, ok := node.Parent().(*ast.ListItem); ok {
				return ast.WalkContinue, nil
			}
			lines = append(lines, inlineText(n, source))
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			lines = append(lines, listItemLine(n, source, km))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return lines
}

func listItemLine(item *ast.ListItem, source []byte, km *config.Keymap) string {
	block := item.FirstChild()
	if block == nil {
		return ""
	}
	code, ok := block.FirstChild().(*ast.CodeSpan)
	if !ok {
		return "  " + inlineText(block, source)
	}
	action := inlineText(code, source)
	var rest strings.Builder
	for c := code.NextSibling(); c != nil; c = c.NextSibling() {
		rest.WriteString(nodeText(c, source))
	}
	keys := "(unbound)"
	if km != nil {
		var bound []string
		for _, k := range km.Keys(action) {
			if !slices.Contains(bound, k) {
				bound = append(bound, k)
			}
		}
		if len(bound) > 0 {
			keys = strings.Join(bound, ", ")
		}
	}
	return fmt.Sprintf("  %-*s %s", keyColumn, keys, strings.TrimSpace(rest.String()))
}

// inlineText joins the text below node, turning line breaks into spaces.
func inlineText(node ast.Node, source []byte) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		b.WriteString(nodeText(c, source))
	}
	return strings.TrimSpace(b.String())
}

func nodeText(node ast.Node, source []byte) string {
	switch n := node.(type) {
	case *ast.Text:
		s := string(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			s += " "
		}
		return s
	case *ast.String:
		return string(n.Value)
	}
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		b.WriteString(nodeText(c, source))
	}
	return b.String()
}
