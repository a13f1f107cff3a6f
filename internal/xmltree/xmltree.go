// Package xmltree holds the element trees the package assembler produces and
// renders them to markup. Trees are built bottom-up by builder functions and
// are not modified once they have been handed to Render.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Header is the declaration written before every rendered part.
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Attr is a single element attribute. Names are written verbatim, so
// prefixed names such as "r:id" or "xmlns:c" are allowed.
type Attr struct {
	Name  string
	Value string
}

// Node is one element. An element carries either Text or Children; when both
// are set the text is written first.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// New creates an element with the given children. Nil children are skipped so
// optional parts can be passed inline.
func New(name string, children ...*Node) *Node {
	n := &Node{Name: name}
	return n.Append(children...)
}

// Text creates an element holding character data.
func Text(name, text string) *Node {
	return &Node{Name: name, Text: text}
}

// Val creates the ubiquitous DrawingML shape <name val="v"/>.
func Val(name string, v any) *Node {
	return New(name).Set("val", format(v))
}

// Set appends an attribute and returns n for chaining.
func (n *Node) Set(name string, v any) *Node {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: format(v)})
	return n
}

// Append adds children in order, ignoring nil entries.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Get returns the value of the named attribute.
func (n *Node) Get(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find walks a slash-separated path of element names below n, following the
// first match at every step. It returns nil when any step is missing.
func (n *Node) Find(path string) *Node {
	cur := n
	for _, step := range strings.Split(path, "/") {
		if step == "" {
			continue
		}
		cur = cur.Child(step)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// FindAll returns every descendant of n (depth-first, document order) with
// the given name.
func (n *Node) FindAll(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
		out = append(out, c.FindAll(name)...)
	}
	return out
}

// Render serializes the tree rooted at n, prefixed with Header.
func Render(n *Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("render: nil tree")
	}
	var buf bytes.Buffer
	buf.WriteString(Header)
	enc := xml.NewEncoder(&buf)
	if err := encode(enc, n); err != nil {
		return nil, fmt.Errorf("render %s: %w", n.Name, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("render %s: %w", n.Name, err)
	}
	return buf.Bytes(), nil
}

func encode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := encode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
