package element

import (
	"strings"
)

// DefaultContainerClasses lists layout container classes whose structure is
// navigationally significant even when the nodes carry no attributes. The
// list is configuration: swap it per app framework as needed.
var DefaultContainerClasses = []string{
	"DrawerLayout",
	"SlidingPaneLayout",
}

// ResolveOverlaps collapses groups of elements that share identical bounds,
// a common artifact of nested container structures (an outer layout carrying
// a content-desc wrapping an inner clickable layout of the same size).
//
// Within each group every element that carries resolution value is kept:
// semantic content and interactivity are distinct concerns, so a clickable
// duplicate survives alongside a labeled one. Structural containers and
// their direct children are preserved too. A group with no valuable element
// keeps exactly its innermost node (largest xmlIndex) as a deterministic
// fallback. Output preserves document order and the pass is idempotent.
func ResolveOverlaps(elements []*VisualElement, containerClasses []string) []*VisualElement {
	if len(elements) <= 1 {
		return elements
	}
	if containerClasses == nil {
		containerClasses = DefaultContainerClasses
	}

	groups := make(map[string][]*VisualElement)
	for _, el := range elements {
		groups[el.Bounds] = append(groups[el.Bounds], el)
	}

	containers := collectContainers(elements, containerClasses)

	keep := make(map[string]bool, len(elements))
	for _, group := range groups {
		if len(group) == 1 {
			keep[group[0].ID] = true
			continue
		}

		kept := 0
		for _, el := range group {
			if isValuable(el, containers, containerClasses) {
				keep[el.ID] = true
				kept++
			}
		}

		if kept == 0 {
			// Innermost node wins: it is the most specific description of
			// this screen region.
			innermost := group[0]
			for _, el := range group[1:] {
				if el.XMLIndex > innermost.XMLIndex {
					innermost = el
				}
			}
			keep[innermost.ID] = true
		}
	}

	result := make([]*VisualElement, 0, len(elements))
	for _, el := range elements {
		if keep[el.ID] {
			result = append(result, el)
		}
	}
	return result
}

// collectContainers returns the structural container elements in the set.
func collectContainers(elements []*VisualElement, containerClasses []string) []*VisualElement {
	var containers []*VisualElement
	for _, el := range elements {
		if isContainerClass(el.ClassName, containerClasses) {
			containers = append(containers, el)
		}
	}
	return containers
}

func isContainerClass(class string, containerClasses []string) bool {
	for _, c := range containerClasses {
		if strings.Contains(class, c) {
			return true
		}
	}
	return false
}

// isValuable decides whether an element inside a duplicate-bounds group
// carries information worth keeping.
func isValuable(el *VisualElement, containers []*VisualElement, containerClasses []string) bool {
	if el.HasContent() {
		return true
	}
	if el.Clickable {
		return true
	}
	if isContainerClass(el.ClassName, containerClasses) {
		return true
	}
	// Direct children of a structural container are preserved even when
	// attribute-empty: they distinguish e.g. drawer content from main
	// content.
	for _, c := range containers {
		if len(el.IndexPath) == len(c.IndexPath)+1 && el.IndexPath.HasPrefix(c.IndexPath) {
			return true
		}
	}
	return false
}
