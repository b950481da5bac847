// Package element extracts normalized visual elements from Android
// UI-hierarchy dumps and resolves duplicate-bounds overlaps.
package element

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/hierarchy"
)

// Category is the semantic classification of an element.
type Category string

// Category values, ordered by classification precedence.
const (
	CategoryButton    Category = "button"
	CategoryInput     Category = "input"
	CategoryText      Category = "text"
	CategoryImage     Category = "image"
	CategoryList      Category = "list"
	CategoryClickable Category = "clickable"
	CategoryOther     Category = "other"
)

// AllCategories lists every category in bucket order.
var AllCategories = []Category{
	CategoryButton,
	CategoryInput,
	CategoryText,
	CategoryImage,
	CategoryList,
	CategoryClickable,
	CategoryOther,
}

// Importance is the interaction-value tier of an element.
type Importance string

// Importance tiers.
const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// VisualElement is the canonical extracted unit. Instances are created fresh
// on every parse and never mutated afterwards.
//
// ID is derived from the node's position in the original document, not from
// its position after filtering, so the same physical node receives the same
// ID across independent parses of identical XML.
type VisualElement struct {
	ID               string              `json:"id"`
	Text             string              `json:"text"`
	Description      string              `json:"description"`
	Type             string              `json:"type"` // simple class name
	Category         Category            `json:"category"`
	Position         core.Bounds         `json:"position"`
	Clickable        bool                `json:"clickable"`
	Enabled          bool                `json:"enabled"`
	Selected         bool                `json:"selected"`
	Scrollable       bool                `json:"scrollable"`
	Importance       Importance          `json:"importance"`
	UserFriendlyName string              `json:"userFriendlyName"`
	ResourceID       string              `json:"resourceId,omitempty"`
	ContentDesc      string              `json:"contentDesc,omitempty"`
	ClassName        string              `json:"className,omitempty"`
	Package          string              `json:"package,omitempty"`
	Bounds           string              `json:"bounds"` // original string form
	XMLIndex         int                 `json:"xmlIndex"`
	IndexPath        hierarchy.IndexPath `json:"indexPath"`
}

// HasContent reports whether the element carries semantic text.
func (e *VisualElement) HasContent() bool {
	return e.Text != "" || e.ContentDesc != ""
}

// ResourceIDSuffix returns the part of the resource id after "id/", or the
// whole id when it has no recognizable prefix.
func (e *VisualElement) ResourceIDSuffix() string {
	if i := strings.LastIndex(e.ResourceID, "/"); i >= 0 {
		return e.ResourceID[i+1:]
	}
	return e.ResourceID
}

// elementID builds the stable synthetic id from a document-order index.
func elementID(xmlIndex int) string {
	return fmt.Sprintf("element_%d", xmlIndex)
}

// AppInfo describes the application and page a dump was captured from.
type AppInfo struct {
	AppName  string `json:"appName"`
	PageName string `json:"pageName"`
}

// Fallback names used when the dump carries no identifying information.
// These match the values the capture side displays for unknown dumps.
const (
	UnknownAppName  = "未知应用"
	UnknownPageName = "未知页面"
)

// Bucket groups extracted elements of one category.
type Bucket struct {
	Category Category         `json:"category"`
	Elements []*VisualElement `json:"elements"`
}

// Result is the complete output of one extraction run. Doc is the arena the
// elements were extracted from; fingerprinting reads ancestor context from
// it (element XMLIndex values are arena indices into Doc).
type Result struct {
	Elements []*VisualElement    `json:"elements"`
	Buckets  []Bucket            `json:"categories"`
	AppInfo  AppInfo             `json:"appInfo"`
	Doc      *hierarchy.Document `json:"-"`
}
