package hierarchy

import (
	"fmt"
	"strconv"
	"strings"
)

// IndexPath is the sequence of zero-based child indices from a document root
// down to a node. It is a structural address that stays meaningful even when
// a node carries no textual identifiers.
type IndexPath []int

// PathOf computes the index path for a node by walking parent links to the
// root. The path of a root node is empty.
func PathOf(doc *Document, index int) IndexPath {
	node := doc.Node(index)
	if node == nil {
		return nil
	}

	var reversed []int
	for node.Parent >= 0 {
		parent := doc.Node(node.Parent)
		pos := -1
		for i, child := range parent.Children {
			if child == node.Index {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil
		}
		reversed = append(reversed, pos)
		node = parent
	}

	path := make(IndexPath, len(reversed))
	for i, v := range reversed {
		path[len(reversed)-1-i] = v
	}
	return path
}

// FindByPath resolves an index path back to an arena index within the same
// document, starting from the first root. Returns -1 when the path walks off
// the tree. Paths recorded against a different capture are not guaranteed to
// resolve; callers need a fallback.
func FindByPath(doc *Document, path IndexPath) int {
	if len(doc.Roots) == 0 {
		return -1
	}
	current := doc.Roots[0]
	for _, childIdx := range path {
		node := doc.Node(current)
		if node == nil || childIdx < 0 || childIdx >= len(node.Children) {
			return -1
		}
		current = node.Children[childIdx]
	}
	return current
}

// String serializes the path as "0/3/1" for persistence.
func (p IndexPath) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "/")
}

// ParsePath parses the "0/3/1" form back into an IndexPath.
func ParsePath(s string) (IndexPath, error) {
	if s == "" {
		return IndexPath{}, nil
	}
	parts := strings.Split(s, "/")
	path := make(IndexPath, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid index path segment %q", part)
		}
		path[i] = v
	}
	return path, nil
}

// Equal reports whether two paths are identical.
func (p IndexPath) Equal(o IndexPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether o is a prefix of p.
func (p IndexPath) HasPrefix(o IndexPath) bool {
	if len(o) > len(p) {
		return false
	}
	for i := range o {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// XPathOf renders an absolute XPath for a node using class-name segments with
// 1-based positions among same-class siblings, e.g.
// "/android.widget.FrameLayout[1]/android.widget.Button[2]".
func XPathOf(doc *Document, index int) string {
	node := doc.Node(index)
	if node == nil {
		return ""
	}

	var segments []string
	for node != nil {
		pos := 1
		if node.Parent >= 0 {
			parent := doc.Node(node.Parent)
			for _, child := range parent.Children {
				if child == node.Index {
					break
				}
				if doc.Nodes[child].ClassName == node.ClassName {
					pos++
				}
			}
		}
		segments = append(segments, fmt.Sprintf("%s[%d]", node.ClassName, pos))
		if node.Parent < 0 {
			break
		}
		node = doc.Node(node.Parent)
	}

	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segments[i])
	}
	return b.String()
}
