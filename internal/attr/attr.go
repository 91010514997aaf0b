// Package attr reads and writes indentation structured attribute trees.
//
// Each line holds a name and an optional value separated by whitespace.
// Lines indented deeper than the line before them become its children:
//
//	file holiday/beach.jpg
//	  tags sea sand
//	  meta
//	    camera X100
//
// Values that would not survive a round trip as bare text (newlines,
// surrounding blanks, a leading quote) are written as Go quoted strings.
package attr

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Attribute is one node of the tree.
type Attribute struct {
	Name     string
	Value    string
	Children []*Attribute
}

// SyntaxError reports malformed input with the offending line number.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("attr: line %d: %s", e.Line, e.Msg)
}

// New returns an attribute without children.
func New(name, value string) *Attribute {
	return &Attribute{Name: name, Value: value}
}

// Push appends a child and returns it.
func (a *Attribute) Push(name, value string) *Attribute {
	child := New(name, value)
	a.Children = append(a.Children, child)
	return child
}

// Find returns the first direct child with the given name, or nil.
func (a *Attribute) Find(name string) *Attribute {
	for _, c := range a.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy.
func (a *Attribute) Clone() *Attribute {
	if a == nil {
		return nil
	}
	out := &Attribute{Name: a.Name, Value: a.Value}
	if len(a.Children) > 0 {
		out.Children = make([]*Attribute, len(a.Children))
		for i, c := range a.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Equal reports whether two trees hold the same names, values and order.
func (a *Attribute) Equal(b *Attribute) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Value != b.Value || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !a.Children[i].Equal(b.Children[i]) {
			return false
		}
	}
	return true
}

type openNode struct {
	indent      int
	att         *Attribute
	childIndent int // -1 until the first child is seen
}

// Parse reads a whole document. The returned root has no name; top level
// lines are its children.
func Parse(r io.Reader) (*Attribute, error) {
	root := &Attribute{}
	stack := []openNode{{indent: -1, att: root, childIndent: -1}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), " \t\r")
		body := strings.TrimLeft(raw, " \t")
		if body == "" || body[0] == '#' {
			continue
		}
		indent := len(raw) - len(body)

		for len(stack) > 1 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		parent := &stack[len(stack)-1]
		if parent.childIndent == -1 {
			parent.childIndent = indent
		} else if parent.childIndent != indent {
			return nil, &SyntaxError{Line: lineNo, Msg: "inconsistent indentation"}
		}

		name, value, err := splitLine(body)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Msg: err.Error()}
		}
		att := parent.att.Push(name, value)
		stack = append(stack, openNode{indent: indent, att: att, childIndent: -1})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseFile parses the named file.
func ParseFile(path string) (*Attribute, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func splitLine(body string) (name, value string, err error) {
	i := strings.IndexAny(body, " \t")
	if i < 0 {
		return body, "", nil
	}
	name = body[:i]
	value = strings.TrimLeft(body[i:], " \t")
	if strings.HasPrefix(value, `"`) {
		unq, uerr := strconv.Unquote(value)
		if uerr != nil {
			return "", "", fmt.Errorf("bad quoted value for %q", name)
		}
		value = unq
	}
	return name, value, nil
}

// Write writes atts at the given indent, children two spaces deeper.
func Write(w io.Writer, atts []*Attribute, indent int) error {
	bw := bufio.NewWriter(w)
	for _, a := range atts {
		if err := writeOne(bw, a, indent); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeOne(w *bufio.Writer, a *Attribute, indent int) error {
	if a.Name == "" || strings.ContainsAny(a.Name, " \t\r\n") {
		return fmt.Errorf("attr: invalid attribute name %q", a.Name)
	}
	w.WriteString(strings.Repeat(" ", indent))
	w.WriteString(a.Name)
	if a.Value != "" {
		w.WriteByte(' ')
		w.WriteString(formatValue(a.Value))
	}
	w.WriteByte('\n')
	for _, c := range a.Children {
		if err := writeOne(w, c, indent+2); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v string) string {
	if strings.ContainsAny(v, "\n\r") ||
		v[0] == '"' || v[0] == ' ' || v[0] == '\t' ||
		strings.HasSuffix(v, " ") || strings.HasSuffix(v, "\t") {
		return strconv.Quote(v)
	}
	return v
}

// String renders the children of a at indent zero.
func (a *Attribute) String() string {
	var buf bytes.Buffer
	Write(&buf, a.Children, 0)
	return buf.String()
}
