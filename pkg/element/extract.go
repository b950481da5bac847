package element

import (
	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/hierarchy"
	"github.com/devicelab-dev/uiresolve/pkg/logger"
)

// Options controls extraction filtering.
type Options struct {
	// IncludeNonClickable keeps elements that carry no text, description or
	// interactivity. When false such elements are dropped.
	IncludeNonClickable bool
	// StrictFiltering requires content or interactivity to keep an element.
	StrictFiltering bool
	// ResolveOverlaps collapses identical-bounds duplicates after extraction.
	ResolveOverlaps bool
	// ContainerClasses overrides the overlap resolver's structural container
	// class list. Nil means DefaultContainerClasses.
	ContainerClasses []string
}

// DefaultOptions returns the extraction defaults: keep everything with valid
// bounds and collapse duplicate-bounds groups.
func DefaultOptions() Options {
	return Options{
		IncludeNonClickable: true,
		StrictFiltering:     false,
		ResolveOverlaps:     true,
	}
}

// Extract parses a UI-hierarchy dump and returns the flat element set,
// category buckets and app info. Malformed XML yields an empty, well-formed
// result; a single bad node is skipped without aborting the rest of the tree.
func Extract(xmlData string, opts Options) Result {
	doc, err := hierarchy.Parse(xmlData)
	if err != nil {
		logger.Debug("page source parse failed: %v", err)
		return emptyResult()
	}

	elements := make([]*VisualElement, 0, doc.Len())
	for i := range doc.Nodes {
		el := buildElement(doc, i)
		if el == nil {
			continue
		}
		if !keepElement(el, opts) {
			continue
		}
		elements = append(elements, el)
	}

	if opts.ResolveOverlaps {
		elements = ResolveOverlaps(elements, opts.ContainerClasses)
	}

	return Result{
		Elements: elements,
		Buckets:  Bucketize(elements),
		AppInfo:  appInfoOf(doc, elements),
		Doc:      doc,
	}
}

// buildElement normalizes one node, or returns nil when the node fails the
// validity check (missing or degenerate bounds).
func buildElement(doc *hierarchy.Document, index int) *VisualElement {
	node := doc.Node(index)
	if node.BoundsRaw == "" {
		return nil
	}
	bounds := core.ParseBounds(node.BoundsRaw)
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return nil
	}

	return &VisualElement{
		ID:               elementID(node.Index),
		Text:             node.Text,
		Description:      node.ContentDesc,
		Type:             node.SimpleClass(),
		Category:         Categorize(node),
		Position:         bounds,
		Clickable:        node.Clickable,
		Enabled:          node.Enabled,
		Selected:         node.Selected,
		Scrollable:       node.Scrollable,
		Importance:       ImportanceOf(node),
		UserFriendlyName: FriendlyName(node),
		ResourceID:       node.ResourceID,
		ContentDesc:      node.ContentDesc,
		ClassName:        node.ClassName,
		Package:          node.Package,
		Bounds:           node.BoundsRaw,
		XMLIndex:         node.Index,
		IndexPath:        hierarchy.PathOf(doc, index),
	}
}

func keepElement(el *VisualElement, opts Options) bool {
	if opts.StrictFiltering && !el.HasContent() && !el.Clickable && !el.Scrollable {
		return false
	}
	if !opts.IncludeNonClickable && !el.HasContent() && !el.Clickable {
		return false
	}
	return true
}

// Bucketize groups elements by category in fixed category order.
func Bucketize(elements []*VisualElement) []Bucket {
	byCategory := make(map[Category][]*VisualElement)
	for _, el := range elements {
		byCategory[el.Category] = append(byCategory[el.Category], el)
	}

	var buckets []Bucket
	for _, cat := range AllCategories {
		if els := byCategory[cat]; len(els) > 0 {
			buckets = append(buckets, Bucket{Category: cat, Elements: els})
		}
	}
	return buckets
}

// appInfoOf derives app and page names from the dump. The app name comes
// from the package attribute; the page name from the first high-importance
// text carried by the page.
func appInfoOf(doc *hierarchy.Document, elements []*VisualElement) AppInfo {
	info := AppInfo{AppName: UnknownAppName, PageName: UnknownPageName}

	for i := range doc.Nodes {
		if pkg := doc.Nodes[i].Package; pkg != "" {
			info.AppName = pkg
			break
		}
	}

	for _, el := range elements {
		if el.Importance == ImportanceHigh && el.Text != "" {
			info.PageName = el.Text
			break
		}
	}
	if info.PageName == UnknownPageName {
		for _, el := range elements {
			if el.Category == CategoryText && el.Text != "" {
				info.PageName = el.Text
				break
			}
		}
	}

	return info
}

func emptyResult() Result {
	return Result{
		Elements: []*VisualElement{},
		Buckets:  []Bucket{},
		AppInfo:  AppInfo{AppName: UnknownAppName, PageName: UnknownPageName},
	}
}
