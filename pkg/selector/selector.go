// Package selector assembles and validates the structured replay contract
// for one automation step: identifiers, geometry, neighbor anchors, policy
// and the action to perform.
package selector

import (
	"strings"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/fingerprint"
)

// Selectors holds the identifying fallback strategies for one element.
// XPathPrefix and LeafIndex travel together: a prefix without its leaf
// index (or vice versa) cannot be resolved.
type Selectors struct {
	AbsoluteXPath string `json:"absolute_xpath,omitempty" yaml:"absolute_xpath,omitempty"`
	ResourceID    string `json:"resource_id,omitempty" yaml:"resource_id,omitempty"`
	Text          string `json:"text,omitempty" yaml:"text,omitempty"`
	ContentDesc   string `json:"content_desc,omitempty" yaml:"content_desc,omitempty"`
	ClassName     string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	XPathPrefix   string `json:"xpath_prefix,omitempty" yaml:"xpath_prefix,omitempty"`
	LeafIndex     *int   `json:"leaf_index,omitempty" yaml:"leaf_index,omitempty"`
}

// IsEmpty reports whether no identifying property is set.
func (s *Selectors) IsEmpty() bool {
	return s.AbsoluteXPath == "" &&
		s.ResourceID == "" &&
		s.Text == "" &&
		s.ContentDesc == "" &&
		s.ClassName == "" &&
		s.XPathPrefix == ""
}

// HasStrongAnchor reports whether the selector carries an identifier precise
// enough to resolve without heuristics.
func (s *Selectors) HasStrongAnchor() bool {
	return s.AbsoluteXPath != "" || s.ResourceID != ""
}

// Describe returns a short human-readable description.
func (s *Selectors) Describe() string {
	switch {
	case s.Text != "":
		return "text=\"" + s.Text + "\""
	case s.ResourceID != "":
		return "id=\"" + s.ResourceID + "\""
	case s.ContentDesc != "":
		return "desc=\"" + s.ContentDesc + "\""
	case s.AbsoluteXPath != "":
		return "xpath=\"" + s.AbsoluteXPath + "\""
	default:
		return ""
	}
}

// Geometric is the position record of the element at capture time. It is a
// tie-breaker only; geometry alone is never sufficient to execute a step.
type Geometric struct {
	Bounds          core.Bounds     `json:"bounds" yaml:"bounds"`
	BoundsRaw       string          `json:"bounds_raw,omitempty" yaml:"bounds_raw,omitempty"`
	BoundsSignature *core.Signature `json:"bounds_signature,omitempty" yaml:"bounds_signature,omitempty"`
}

// NeighborPosition tags where an anchor sits relative to the target.
type NeighborPosition string

// Neighbor position tags.
const (
	NeighborAbove   NeighborPosition = "above"
	NeighborBelow   NeighborPosition = "below"
	NeighborLeftOf  NeighborPosition = "left"
	NeighborRightOf NeighborPosition = "right"
)

// NeighborAnchor records a nearby labeled element used to disambiguate the
// target when its own identifiers have shifted.
type NeighborAnchor struct {
	Position    NeighborPosition `json:"position" yaml:"position"`
	Distance    int              `json:"distance" yaml:"distance"` // pixel gap
	Selector    Selectors        `json:"selector" yaml:"selector"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
}

// RevalidatePolicy controls when a stored selector is re-checked against a
// fresh capture before executing.
type RevalidatePolicy string

// Revalidation policies.
const (
	RevalidateAlways     RevalidatePolicy = "always"
	RevalidateOnMismatch RevalidatePolicy = "on-mismatch"
	RevalidateNever      RevalidatePolicy = "never"
)

// Validation is the replay-time validation policy.
type Validation struct {
	Revalidate           RevalidatePolicy `json:"revalidate" yaml:"revalidate"`
	FallbackToBounds     bool             `json:"fallback_to_bounds" yaml:"fallback_to_bounds"`
	AllowBackendFallback bool             `json:"allow_backend_fallback" yaml:"allow_backend_fallback"`
	MaxRetries           int              `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	RetryBackoffMs       int              `json:"retry_backoff_ms,omitempty" yaml:"retry_backoff_ms,omitempty"`
}

// Safety gates autonomous execution of a resolved step.
type Safety struct {
	MinConfidence               float64 `json:"min_confidence" yaml:"min_confidence"`
	RequireUniqueness           bool    `json:"require_uniqueness" yaml:"require_uniqueness"`
	ForbidFullscreenOrContainer bool    `json:"forbid_fullscreen_or_container" yaml:"forbid_fullscreen_or_container"`
}

// StructuredSelector is the complete, serializable replay contract for one
// automation step. New fields must be optional so older consumers keep
// decoding newer records.
type StructuredSelector struct {
	StepID      string                   `json:"step_id" yaml:"step_id"`
	Selectors   Selectors                `json:"selectors" yaml:"selectors"`
	Geometric   *Geometric               `json:"geometric,omitempty" yaml:"geometric,omitempty"`
	Neighbors   []NeighborAnchor         `json:"neighbors,omitempty" yaml:"neighbors,omitempty"`
	Fingerprint *fingerprint.Fingerprint `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Validation  Validation               `json:"validation" yaml:"validation"`
	Safety      Safety                   `json:"safety" yaml:"safety"`
	Action      Action                   `json:"action" yaml:"action"`
}

// Describe returns a short label for logs and reports.
func (s *StructuredSelector) Describe() string {
	d := s.Selectors.Describe()
	if d == "" {
		d = "(weak selector)"
	}
	return strings.Join([]string{string(s.Action.Type), d}, " ")
}
