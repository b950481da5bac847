// Package hierarchy parses Android UI-hierarchy XML dumps into a flat node
// arena. Nodes reference parents and children by index, never by pointer, so
// the structure is cycle-free and trivially addressable.
package hierarchy

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is one entry of the parsed hierarchy. Index is the node's position in
// document order and doubles as its arena address.
type Node struct {
	Index       int
	Parent      int // -1 for roots
	Children    []int
	Depth       int
	Text        string
	ContentDesc string
	ClassName   string
	ResourceID  string
	Package     string
	BoundsRaw   string
	Clickable   bool
	Enabled     bool
	Selected    bool
	Focused     bool
	Scrollable  bool
}

// SimpleClass returns the class name without its package prefix,
// e.g. "android.widget.Button" -> "Button".
func (n *Node) SimpleClass() string {
	if i := strings.LastIndex(n.ClassName, "."); i >= 0 {
		return n.ClassName[i+1:]
	}
	return n.ClassName
}

// Document is the arena of parsed nodes in document order.
type Document struct {
	Nodes []Node
	Roots []int
}

// Len returns the number of nodes in the document.
func (d *Document) Len() int { return len(d.Nodes) }

// Node returns the node at the given arena index, or nil if out of range.
func (d *Document) Node(i int) *Node {
	if i < 0 || i >= len(d.Nodes) {
		return nil
	}
	return &d.Nodes[i]
}

// Parse parses Android UI hierarchy XML into a Document. It supports both
// dump conventions: UIAutomator (class name as element tag) and Appium
// (<node> elements with a class attribute). Raw input is sanitized first so
// stray control characters in text attributes do not abort the decode.
func Parse(xmlData string) (*Document, error) {
	decoder := xml.NewDecoder(strings.NewReader(Sanitize(xmlData)))

	doc := &Document{}
	foundHierarchy := false
	// Stack of arena indices for currently-open elements.
	var open []int

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken tail still yields the nodes read so far.
			if len(doc.Nodes) > 0 {
				break
			}
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "hierarchy" {
				foundHierarchy = true
				continue
			}

			idx := len(doc.Nodes)
			node := Node{
				Index:     idx,
				Parent:    -1,
				ClassName: t.Name.Local,
				Enabled:   true,
			}

			for _, attr := range t.Attr {
				switch attr.Name.Local {
				case "text":
					node.Text = attr.Value
				case "content-desc":
					node.ContentDesc = attr.Value
				case "class":
					node.ClassName = attr.Value
				case "resource-id":
					node.ResourceID = attr.Value
				case "package":
					node.Package = attr.Value
				case "bounds":
					node.BoundsRaw = attr.Value
				case "clickable":
					node.Clickable = attr.Value == "true"
				case "enabled":
					node.Enabled = attr.Value != "false"
				case "selected":
					node.Selected = attr.Value == "true"
				case "focused":
					node.Focused = attr.Value == "true"
				case "scrollable":
					node.Scrollable = attr.Value == "true"
				}
			}

			if len(open) > 0 {
				parent := open[len(open)-1]
				node.Parent = parent
				node.Depth = doc.Nodes[parent].Depth + 1
				doc.Nodes[parent].Children = append(doc.Nodes[parent].Children, idx)
			} else {
				doc.Roots = append(doc.Roots, idx)
			}

			doc.Nodes = append(doc.Nodes, node)
			open = append(open, idx)

		case xml.EndElement:
			if t.Name.Local == "hierarchy" {
				continue
			}
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}

	if !foundHierarchy && len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("invalid page source: no hierarchy element found")
	}

	return doc, nil
}

// Sanitize strips characters that are invalid in XML 1.0 documents. Android
// dumps occasionally embed raw control characters inside text attributes,
// which would otherwise abort the decoder mid-document.
func Sanitize(s string) string {
	if !strings.ContainsFunc(s, isInvalidXMLChar) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isInvalidXMLChar(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isInvalidXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return false
	case r >= 0x20 && r <= 0xD7FF:
		return false
	case r >= 0xE000 && r <= 0xFFFD:
		return false
	case r >= 0x10000 && r <= 0x10FFFF:
		return false
	}
	return true
}
