package element

import (
	"strings"

	"github.com/devicelab-dev/uiresolve/pkg/hierarchy"
)

// Categorize assigns a semantic category from class name, content and the
// clickable flag. The checks are ordered: a clickable ImageButton is a
// button, not an image, and a TextView without content is not a text element.
func Categorize(node *hierarchy.Node) Category {
	class := node.ClassName
	hasContent := node.Text != "" || node.ContentDesc != ""

	switch {
	case strings.Contains(class, "Button"):
		return CategoryButton
	case strings.Contains(class, "EditText"):
		return CategoryInput
	case strings.Contains(class, "TextView") && hasContent:
		return CategoryText
	case strings.Contains(class, "ImageView"):
		return CategoryImage
	case strings.Contains(class, "RecyclerView") || strings.Contains(class, "ListView"):
		return CategoryList
	case node.Clickable:
		return CategoryClickable
	default:
		return CategoryOther
	}
}

// ImportanceOf assigns an importance tier. Clickable elements with content
// rank highest; anything carrying content or interactivity is medium.
func ImportanceOf(node *hierarchy.Node) Importance {
	hasContent := node.Text != "" || node.ContentDesc != ""

	switch {
	case node.Clickable && hasContent:
		return ImportanceHigh
	case node.Clickable || hasContent:
		return ImportanceMedium
	default:
		return ImportanceLow
	}
}

// FriendlyName produces a short human-readable label for an element.
func FriendlyName(node *hierarchy.Node) string {
	if node.Text != "" {
		return node.Text
	}
	if node.ContentDesc != "" {
		return node.ContentDesc
	}
	if id := node.ResourceID; id != "" {
		if i := strings.LastIndex(id, "/"); i >= 0 {
			id = id[i+1:]
		}
		if id != "" {
			return id
		}
	}
	return "unnamed " + string(categorizeForLabel(node))
}

func categorizeForLabel(node *hierarchy.Node) Category {
	c := Categorize(node)
	if c == CategoryOther && node.SimpleClass() != "" {
		return Category(node.SimpleClass())
	}
	return c
}
