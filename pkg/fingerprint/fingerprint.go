// Package fingerprint remembers a target element as a multi-facet descriptor
// and re-locates it in a later capture by weighted similarity scoring.
package fingerprint

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/hierarchy"
)

// Fingerprint is the storable descriptor of an element at capture time.
// Every field is optional: a fingerprint built from partial information is
// valid and matching degrades gracefully. Regenerating creates a new
// fingerprint; an existing one is never mutated.
type Fingerprint struct {
	TextContent      string          `json:"text_content,omitempty"`
	TextHash         string          `json:"text_hash,omitempty"`
	ClassChain       []string        `json:"class_chain,omitempty"`
	ResourceID       string          `json:"resource_id,omitempty"`
	ResourceIDSuffix string          `json:"resource_id_suffix,omitempty"`
	BoundsSignature  *core.Signature `json:"bounds_signature,omitempty"`
	ParentClass      string          `json:"parent_class,omitempty"`
	SiblingCount     *int            `json:"sibling_count,omitempty"`
	ChildCount       *int            `json:"child_count,omitempty"`
	DepthLevel       *int            `json:"depth_level,omitempty"`
	RelativeIndex    *int            `json:"relative_index,omitempty"`
	Clickable        *bool           `json:"clickable,omitempty"`
	Enabled          *bool           `json:"enabled,omitempty"`
	Selected         *bool           `json:"selected,omitempty"`
	ContentDesc      string          `json:"content_desc,omitempty"`
	PackageName      string          `json:"package_name,omitempty"`
}

// Generate builds a fingerprint for an element. The document is the arena
// the element was extracted from; ancestor and sibling context is read from
// it. A zero screen size simply omits the bounds signature.
func Generate(doc *hierarchy.Document, el *element.VisualElement, screen core.ScreenSize, cfg Config) Fingerprint {
	fp := Fingerprint{}

	if cfg.EnableText && el.Text != "" {
		fp.TextContent = el.Text
		fp.TextHash = TextHash(el.Text)
	}

	if cfg.EnableClassChain {
		fp.ClassChain = classChain(doc, el.XMLIndex, cfg.ContextDepth)
	}

	if el.ResourceID != "" {
		fp.ResourceID = el.ResourceID
		fp.ResourceIDSuffix = el.ResourceIDSuffix()
	}

	if cfg.EnablePosition {
		fp.BoundsSignature = core.SignatureOf(el.Position, screen)
	}

	if node := doc.Node(el.XMLIndex); node != nil {
		depth := node.Depth
		fp.DepthLevel = &depth
		childCount := len(node.Children)
		fp.ChildCount = &childCount

		if parent := doc.Node(node.Parent); parent != nil {
			fp.ParentClass = parent.ClassName
			siblings := len(parent.Children) - 1
			fp.SiblingCount = &siblings
			for i, child := range parent.Children {
				if child == node.Index {
					idx := i
					fp.RelativeIndex = &idx
					break
				}
			}
		}
	}

	if cfg.EnableAttributes {
		clickable, enabled, selected := el.Clickable, el.Enabled, el.Selected
		fp.Clickable = &clickable
		fp.Enabled = &enabled
		fp.Selected = &selected
		fp.ContentDesc = el.ContentDesc
		fp.PackageName = el.Package
		if fp.PackageName == "" {
			fp.PackageName = inheritedPackage(doc, el.XMLIndex)
		}
	}

	return fp
}

// inheritedPackage resolves the app package for a node: dumps usually set
// the package attribute only on the root, so walk up to the nearest ancestor
// carrying one, then fall back to the first package in document order.
func inheritedPackage(doc *hierarchy.Document, index int) string {
	for node := doc.Node(index); node != nil; node = doc.Node(node.Parent) {
		if node.Package != "" {
			return node.Package
		}
	}
	for i := range doc.Nodes {
		if doc.Nodes[i].Package != "" {
			return doc.Nodes[i].Package
		}
	}
	return ""
}

// classChain collects the element's own class plus up to depth ancestor
// classes, nearest first.
func classChain(doc *hierarchy.Document, index, depth int) []string {
	node := doc.Node(index)
	if node == nil {
		return nil
	}

	chain := []string{node.ClassName}
	for i := 0; i < depth; i++ {
		parent := doc.Node(node.Parent)
		if parent == nil {
			break
		}
		chain = append(chain, parent.ClassName)
		node = parent
	}
	return chain
}

// TextHash computes a djb2-style rolling hash of the text, rendered as hex.
// It exists for fast equality pre-checks only; the raw text is still stored
// whenever it is available.
func TextHash(s string) string {
	var h uint64 = 5381
	for _, b := range []byte(s) {
		h = h*33 + uint64(b)
	}
	return fmt.Sprintf("%x", h)
}

// Describe returns a short human-readable summary for logs.
func (f Fingerprint) Describe() string {
	var parts []string
	if f.TextContent != "" {
		parts = append(parts, fmt.Sprintf("text=%q", f.TextContent))
	}
	if f.ResourceID != "" {
		parts = append(parts, "id="+f.ResourceID)
	}
	if len(f.ClassChain) > 0 {
		parts = append(parts, "class="+f.ClassChain[0])
	}
	if len(parts) == 0 {
		return "(structural only)"
	}
	return strings.Join(parts, " ")
}
