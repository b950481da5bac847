// Package resolver re-locates a recorded target element inside a fresh
// UI capture and decides whether the match is safe to act on.
package resolver

import (
	"strings"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/fingerprint"
	"github.com/devicelab-dev/uiresolve/pkg/logger"
	"github.com/devicelab-dev/uiresolve/pkg/script"
	"github.com/devicelab-dev/uiresolve/pkg/selector"
)

// Config tunes the resolution pipeline.
type Config struct {
	Extraction  element.Options
	Fingerprint fingerprint.Config
	// UniquenessMargin is the minimum similarity gap between the best and
	// second-best candidate before a match counts as unambiguous.
	UniquenessMargin float64
	// FullscreenCoverage is the screen-area fraction above which a target is
	// treated as a fullscreen surface and rejected by the safety policy.
	FullscreenCoverage float64
	// ContainerClasses lists simple class names rejected as tap targets by
	// the safety policy. Nil means the overlap resolver's default list.
	ContainerClasses []string
	// Filter is an optional JS predicate applied to candidates before
	// matching.
	Filter string
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Extraction:         element.DefaultOptions(),
		Fingerprint:        fingerprint.DefaultConfig(),
		UniquenessMargin:   0.05,
		FullscreenCoverage: 0.95,
	}
}

// Point is an absolute screen coordinate the executor should act on.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Resolution is the outcome of a successful resolve: the element to act on,
// the scores that justified it, and the action to hand to the executor.
type Resolution struct {
	Element            *element.VisualElement   `json:"element,omitempty"`
	Match              *fingerprint.MatchResult `json:"match,omitempty"`
	Point              Point                    `json:"point"`
	Action             selector.Action          `json:"action"`
	UsedBoundsFallback bool                     `json:"used_bounds_fallback,omitempty"`
}

// Resolver runs the resolution pipeline. A resolver is safe for concurrent
// use only when no script filter is configured; the predicate engine is
// single-threaded.
type Resolver struct {
	cfg    Config
	cache  *Cache
	engine *script.Engine
}

// New creates a resolver. cache may be nil to disable extraction caching.
func New(cfg Config, cache *Cache) *Resolver {
	r := &Resolver{cfg: cfg, cache: cache}
	if cfg.Filter != "" {
		r.engine = script.New()
	}
	return r
}

// Resolve extracts the capture, scores every candidate against the stored
// selector and applies the selector's safety policy. It returns ErrNoMatch,
// ErrAmbiguous or ErrUnsafeTarget with the matcher's explanation attached
// when the policy refuses to act; a permitted bounds fallback degrades a
// failed match to the recorded geometric center instead.
func (r *Resolver) Resolve(xmlData string, sel *selector.StructuredSelector, screen core.ScreenSize) (*Resolution, error) {
	if sel == nil {
		return nil, core.ErrIncompleteSelector
	}

	result := r.extract(xmlData)
	candidates := result.Elements
	if r.cfg.Filter != "" {
		filtered, err := r.engine.FilterElements(candidates, r.cfg.Filter)
		if err != nil {
			return nil, err
		}
		candidates = filtered
	}

	target, ok := targetFingerprint(sel)
	if !ok {
		return nil, core.ErrIncompleteSelector
	}

	if len(candidates) == 0 || result.Doc == nil {
		return r.fallbackOr(sel, core.ErrNoMatch)
	}

	matcher := fingerprint.NewMatcher(result.Doc, screen, r.cfg.Fingerprint)
	ranked := matcher.MatchAll(target, candidates)
	best := ranked[0]

	if best.Result.Confidence < sel.Safety.MinConfidence {
		logger.Debug("resolve: best candidate %s below confidence floor (%.2f < %.2f)",
			best.Element.ID, best.Result.Confidence, sel.Safety.MinConfidence)
		return r.fallbackOr(sel, core.ErrNoMatch.WithExplanation(best.Result.Explanation))
	}

	if sel.Safety.RequireUniqueness && len(ranked) > 1 {
		margin := best.Result.Similarity - ranked[1].Result.Similarity
		if margin < r.cfg.UniquenessMargin {
			lines := append([]string{}, best.Result.Explanation...)
			lines = append(lines, "runner-up "+ranked[1].Element.ID+" scored within the uniqueness margin")
			return nil, core.ErrAmbiguous.WithExplanation(lines)
		}
	}

	if sel.Safety.ForbidFullscreenOrContainer {
		if reason := r.unsafeReason(best.Element, screen); reason != "" {
			lines := append([]string{}, best.Result.Explanation...)
			lines = append(lines, reason)
			return nil, core.ErrUnsafeTarget.WithExplanation(lines)
		}
	}

	cx, cy := best.Element.Position.Center()
	match := best.Result
	return &Resolution{
		Element: best.Element,
		Match:   &match,
		Point:   Point{X: cx, Y: cy},
		Action:  sel.Action,
	}, nil
}

func (r *Resolver) extract(xmlData string) *element.Result {
	if r.cache == nil {
		result := element.Extract(xmlData, r.cfg.Extraction)
		return &result
	}

	key := ContentKey(xmlData)
	if cached, ok := r.cache.Get(key); ok {
		return cached
	}
	result := element.Extract(xmlData, r.cfg.Extraction)
	r.cache.Put(key, &result)
	return &result
}

// fallbackOr degrades to the recorded geometric center when the selector
// permits it, otherwise returns the resolution error unchanged.
func (r *Resolver) fallbackOr(sel *selector.StructuredSelector, rerr *core.ResolutionError) (*Resolution, error) {
	if !sel.Validation.FallbackToBounds || sel.Geometric == nil || sel.Geometric.Bounds.IsZero() {
		return nil, rerr
	}
	cx, cy := sel.Geometric.Bounds.Center()
	logger.Warn("resolve: falling back to recorded bounds center (%d,%d) for step %s", cx, cy, sel.StepID)
	return &Resolution{
		Point:              Point{X: cx, Y: cy},
		Action:             sel.Action,
		UsedBoundsFallback: true,
	}, nil
}

// unsafeReason reports why the safety policy rejects the element, or "".
func (r *Resolver) unsafeReason(el *element.VisualElement, screen core.ScreenSize) string {
	if screen.Width > 0 && screen.Height > 0 {
		coverage := float64(el.Position.Area()) / (float64(screen.Width) * float64(screen.Height))
		if coverage >= r.cfg.FullscreenCoverage {
			return "target covers the whole screen; refusing to act on it"
		}
	}

	containers := r.cfg.ContainerClasses
	if containers == nil {
		containers = element.DefaultContainerClasses
	}
	simple := el.Type
	for _, c := range containers {
		if simple == c {
			return "target is a structural container (" + simple + "); refusing to act on it"
		}
	}
	return ""
}

// targetFingerprint returns the stored fingerprint, or synthesizes one from
// the selector's identifiers when no fingerprint was recorded. A selector
// with neither is unresolvable.
func targetFingerprint(sel *selector.StructuredSelector) (fingerprint.Fingerprint, bool) {
	if sel.Fingerprint != nil {
		return *sel.Fingerprint, true
	}

	s := &sel.Selectors
	if s.IsEmpty() {
		return fingerprint.Fingerprint{}, false
	}

	fp := fingerprint.Fingerprint{
		ResourceID:  s.ResourceID,
		ContentDesc: s.ContentDesc,
	}
	if s.Text != "" {
		fp.TextContent = s.Text
		fp.TextHash = fingerprint.TextHash(s.Text)
	}
	if s.ResourceID != "" {
		if i := strings.LastIndex(s.ResourceID, "/"); i >= 0 {
			fp.ResourceIDSuffix = s.ResourceID[i+1:]
		} else {
			fp.ResourceIDSuffix = s.ResourceID
		}
	}
	if s.ClassName != "" {
		fp.ClassChain = []string{s.ClassName}
	}
	if sel.Geometric != nil {
		fp.BoundsSignature = sel.Geometric.BoundsSignature
	}
	return fp, true
}
