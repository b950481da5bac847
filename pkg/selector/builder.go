package selector

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/fingerprint"
	"github.com/devicelab-dev/uiresolve/pkg/hierarchy"
)

// BuildConfig carries the policy knobs stamped into every built selector.
type BuildConfig struct {
	MinConfidence               float64            `json:"min_confidence" yaml:"min_confidence"`
	RequireUniqueness           bool               `json:"require_uniqueness" yaml:"require_uniqueness"`
	ForbidFullscreenOrContainer bool               `json:"forbid_fullscreen_or_container" yaml:"forbid_fullscreen_or_container"`
	Revalidate                  RevalidatePolicy   `json:"revalidate" yaml:"revalidate"`
	FallbackToBounds            bool               `json:"fallback_to_bounds" yaml:"fallback_to_bounds"`
	AllowBackendFallback        bool               `json:"allow_backend_fallback" yaml:"allow_backend_fallback"`
	MaxRetries                  int                `json:"max_retries" yaml:"max_retries"`
	RetryBackoffMs              int                `json:"retry_backoff_ms" yaml:"retry_backoff_ms"`
	MaxNeighborDistance         int                `json:"max_neighbor_distance" yaml:"max_neighbor_distance"`
	Fingerprint                 fingerprint.Config `json:"fingerprint" yaml:"fingerprint"`
}

// DefaultBuildConfig returns the conservative defaults used when the caller
// supplies no policy.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		MinConfidence:               0.8,
		RequireUniqueness:           true,
		ForbidFullscreenOrContainer: true,
		Revalidate:                  RevalidateAlways,
		FallbackToBounds:            false,
		AllowBackendFallback:        false,
		MaxRetries:                  2,
		RetryBackoffMs:              500,
		MaxNeighborDistance:         300,
		Fingerprint:                 fingerprint.DefaultConfig(),
	}
}

// Builder assembles structured selectors from extraction results. It is a
// pure assembler: it reads the captured hierarchy and never touches a device.
type Builder struct {
	cfg    BuildConfig
	screen core.ScreenSize
}

// NewBuilder returns a builder using cfg for every selector it produces.
func NewBuilder(cfg BuildConfig, screen core.ScreenSize) *Builder {
	return &Builder{cfg: cfg, screen: screen}
}

// Build assembles the full replay contract for el. The element must belong
// to result, and result.Doc must be the document it was extracted from.
func (b *Builder) Build(result *element.Result, el *element.VisualElement, params ActionParams) (*StructuredSelector, error) {
	if result == nil || result.Doc == nil {
		return nil, core.NewResolutionError(core.ErrCategorySelector, "missing_document",
			"cannot build a selector without the captured hierarchy")
	}
	if el == nil {
		return nil, core.NewResolutionError(core.ErrCategorySelector, "missing_element",
			"cannot build a selector without a target element")
	}
	action, err := BuildAction(params)
	if err != nil {
		return nil, core.NewResolutionError(core.ErrCategorySelector, "bad_action", err.Error())
	}

	sel := &StructuredSelector{
		StepID:    uuid.NewString(),
		Selectors: b.selectorsFor(result.Doc, el),
		Geometric: b.geometricFor(el),
		Neighbors: b.neighborsFor(result, el),
		Validation: Validation{
			Revalidate:           b.cfg.Revalidate,
			FallbackToBounds:     b.cfg.FallbackToBounds,
			AllowBackendFallback: b.cfg.AllowBackendFallback,
			MaxRetries:           b.cfg.MaxRetries,
			RetryBackoffMs:       b.cfg.RetryBackoffMs,
		},
		Safety: Safety{
			MinConfidence:               b.cfg.MinConfidence,
			RequireUniqueness:           b.cfg.RequireUniqueness,
			ForbidFullscreenOrContainer: b.cfg.ForbidFullscreenOrContainer,
		},
		Action: action,
	}

	fp := fingerprint.Generate(result.Doc, el, b.screen, b.cfg.Fingerprint)
	sel.Fingerprint = &fp
	return sel, nil
}

func (b *Builder) selectorsFor(doc *hierarchy.Document, el *element.VisualElement) Selectors {
	s := Selectors{
		ResourceID:  el.ResourceID,
		Text:        el.Text,
		ContentDesc: el.ContentDesc,
		ClassName:   el.ClassName,
	}
	if el.XMLIndex >= 0 && el.XMLIndex < doc.Len() {
		s.AbsoluteXPath = hierarchy.XPathOf(doc, el.XMLIndex)
		if parent := doc.Node(el.XMLIndex).Parent; parent >= 0 {
			s.XPathPrefix = hierarchy.XPathOf(doc, parent)
			leaf := leafIndexOf(doc, el.XMLIndex)
			s.LeafIndex = &leaf
		}
	}
	return s
}

// leafIndexOf returns the 1-based position of index among its same-class
// siblings, matching the [n] step XPath renders for it.
func leafIndexOf(doc *hierarchy.Document, index int) int {
	node := doc.Node(index)
	if node.Parent < 0 {
		return 1
	}
	pos := 0
	for _, sib := range doc.Node(node.Parent).Children {
		if doc.Node(sib).ClassName == node.ClassName {
			pos++
		}
		if sib == index {
			return pos
		}
	}
	return 1
}

func (b *Builder) geometricFor(el *element.VisualElement) *Geometric {
	return &Geometric{
		Bounds:          el.Position,
		BoundsRaw:       el.Bounds,
		BoundsSignature: core.SignatureOf(el.Position, b.screen),
	}
}

// neighborsFor finds, per direction, the nearest labeled element whose
// center gap stays within MaxNeighborDistance pixels. At most one anchor
// per direction is recorded.
func (b *Builder) neighborsFor(result *element.Result, el *element.VisualElement) []NeighborAnchor {
	maxDist := b.cfg.MaxNeighborDistance
	if maxDist <= 0 {
		maxDist = 300
	}
	cx, cy := el.Position.Center()

	type best struct {
		el   *element.VisualElement
		dist int
	}
	found := map[NeighborPosition]best{}
	consider := func(pos NeighborPosition, cand *element.VisualElement, dist int) {
		if dist > maxDist {
			return
		}
		if cur, ok := found[pos]; !ok || dist < cur.dist {
			found[pos] = best{el: cand, dist: dist}
		}
	}

	for _, cand := range result.Elements {
		if cand.ID == el.ID || !cand.HasContent() {
			continue
		}
		ox, oy := cand.Position.Center()
		dx, dy := ox-cx, oy-cy
		// Assign to the dominant axis so each anchor sits clearly in one
		// direction rather than diagonally.
		if abs(dy) >= abs(dx) {
			if dy < 0 {
				consider(NeighborAbove, cand, -dy)
			} else if dy > 0 {
				consider(NeighborBelow, cand, dy)
			}
		} else {
			if dx < 0 {
				consider(NeighborLeftOf, cand, -dx)
			} else {
				consider(NeighborRightOf, cand, dx)
			}
		}
	}

	order := []NeighborPosition{NeighborAbove, NeighborBelow, NeighborLeftOf, NeighborRightOf}
	var anchors []NeighborAnchor
	for _, pos := range order {
		hit, ok := found[pos]
		if !ok {
			continue
		}
		anchors = append(anchors, NeighborAnchor{
			Position: pos,
			Distance: hit.dist,
			Selector: Selectors{
				ResourceID:  hit.el.ResourceID,
				Text:        hit.el.Text,
				ContentDesc: hit.el.ContentDesc,
				ClassName:   hit.el.ClassName,
			},
			Description: fmt.Sprintf("%s %s of target", describeNeighbor(hit.el), pos),
		})
	}
	return anchors
}

func describeNeighbor(el *element.VisualElement) string {
	if el.Text != "" {
		return "\"" + truncate(el.Text, 30) + "\""
	}
	if el.ContentDesc != "" {
		return "\"" + truncate(el.ContentDesc, 30) + "\""
	}
	return el.UserFriendlyName
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
