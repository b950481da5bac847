package fingerprint

import (
	"fmt"
	"math"
	"sort"

	"github.com/xrash/smetrics"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/hierarchy"
)

// Details carries the per-facet scores of one match attempt.
type Details struct {
	TextMatch      float64 `json:"textMatch"`
	PositionMatch  float64 `json:"positionMatch"`
	StructureMatch float64 `json:"structureMatch"`
	AttributeMatch float64 `json:"attributeMatch"`
}

// MatchResult is the ephemeral output of scoring one candidate. Similarity
// ranks candidates relative to each other; confidence answers whether the
// match is safe to act on autonomously. Never persisted.
type MatchResult struct {
	Similarity  float64  `json:"similarity"`
	Confidence  float64  `json:"confidence"`
	Details     Details  `json:"details"`
	Explanation []string `json:"explanation"`
}

// Candidate pairs an element with its match result.
type Candidate struct {
	Element *element.VisualElement `json:"element"`
	Result  MatchResult            `json:"result"`
}

// Matcher scores candidates from one capture against a stored fingerprint.
type Matcher struct {
	doc    *hierarchy.Document
	screen core.ScreenSize
	cfg    Config
}

// NewMatcher creates a matcher over the document the candidates were
// extracted from. Candidate fingerprints are regenerated with the same
// config the target was recorded with.
func NewMatcher(doc *hierarchy.Document, screen core.ScreenSize, cfg Config) *Matcher {
	return &Matcher{doc: doc, screen: screen, cfg: cfg}
}

// Match regenerates the candidate's fingerprint and scores it against the
// target.
func (m *Matcher) Match(target Fingerprint, candidate *element.VisualElement) MatchResult {
	return Compare(target, Generate(m.doc, candidate, m.screen, m.cfg), m.cfg)
}

// MatchAll scores every candidate and returns the results sorted by
// descending similarity. Ties break on document order for determinism.
func (m *Matcher) MatchAll(target Fingerprint, candidates []*element.VisualElement) []Candidate {
	results := make([]Candidate, 0, len(candidates))
	for _, el := range candidates {
		results = append(results, Candidate{Element: el, Result: m.Match(target, el)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Result.Similarity != results[j].Result.Similarity {
			return results[i].Result.Similarity > results[j].Result.Similarity
		}
		return results[i].Element.XMLIndex < results[j].Element.XMLIndex
	})
	return results
}

// FindBestMatch returns the top candidate only when its confidence reaches
// minConfidence. A nil return means "no match", which is distinct from a
// returned candidate with a low score.
func (m *Matcher) FindBestMatch(target Fingerprint, candidates []*element.VisualElement, minConfidence float64) *Candidate {
	results := m.MatchAll(target, candidates)
	if len(results) == 0 {
		return nil
	}
	best := results[0]
	if best.Result.Confidence < minConfidence {
		return nil
	}
	return &best
}

// Compare scores a candidate fingerprint against the target. Both sides may
// be partial; absent facets score neutrally rather than producing NaN.
func Compare(target, candidate Fingerprint, cfg Config) MatchResult {
	text := textScore(target, candidate, cfg)
	position := positionScore(target, candidate, cfg)
	structure := structureScore(target, candidate)
	attribute := attributeScore(target, candidate)

	w := cfg.Weights
	similarity := clamp01(w.Text*text + w.Position*position + w.Structure*structure + w.Attribute*attribute)

	confidence := cfg.BaseConfidence
	if text > 0.95 {
		confidence += cfg.TextBoost
	}
	if target.ResourceID != "" && target.ResourceID == candidate.ResourceID {
		confidence += cfg.ResourceIDBoost
	}
	if position > 0.9 {
		confidence += cfg.PositionBoost
	}
	if structure > 0.8 {
		confidence += cfg.StructureBoost
	}
	confidence = clamp01(confidence)

	details := Details{
		TextMatch:      text,
		PositionMatch:  position,
		StructureMatch: structure,
		AttributeMatch: attribute,
	}

	return MatchResult{
		Similarity:  similarity,
		Confidence:  confidence,
		Details:     details,
		Explanation: explain(target, candidate, details, confidence, cfg),
	}
}

// textScore follows a strict precedence: exact equality, then near-exact
// Levenshtein similarity, then hash equality. Two sides that both carry no
// text match vacuously; one-sided text is a mismatch.
func textScore(target, candidate Fingerprint, cfg Config) float64 {
	switch {
	case target.TextContent != "" && candidate.TextContent != "":
		if target.TextContent == candidate.TextContent {
			return 1.0
		}
		if sim := levenshteinSimilarity(target.TextContent, candidate.TextContent); sim >= cfg.TextSimilarityThreshold {
			return sim
		}
		if target.TextHash != "" && target.TextHash == candidate.TextHash {
			return 1.0
		}
		return 0.0
	case target.TextContent == "" && candidate.TextContent == "":
		if target.TextHash != "" && candidate.TextHash != "" {
			if target.TextHash == candidate.TextHash {
				return 1.0
			}
			return 0.0
		}
		return 1.0
	default:
		return 0.0
	}
}

// levenshteinSimilarity converts edit distance to a [0,1] similarity.
func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 1)
	return 1.0 - float64(dist)/float64(longest)
}

// positionScore is neutral (0.5) when either side lacks a signature. Within
// tolerance the score decays linearly from 1.0 with center distance; outside
// it decays toward zero, bottoming out at half the screen diagonal.
func positionScore(target, candidate Fingerprint, cfg Config) float64 {
	ts, cs := target.BoundsSignature, candidate.BoundsSignature
	if ts == nil || cs == nil {
		return 0.5
	}

	dx := math.Abs(ts.X - cs.X)
	dy := math.Abs(ts.Y - cs.Y)
	areaDelta := math.Abs(ts.Area() - cs.Area())
	dist := ts.Distance(*cs)

	if dx <= cfg.PositionTolerance && dy <= cfg.PositionTolerance && areaDelta <= cfg.AreaTolerance {
		return clamp01(1.0 - dist)
	}

	// Half the normalized screen diagonal.
	maxDist := 0.5 * math.Sqrt2
	if dist >= maxDist {
		return 0.0
	}
	return 0.8 * (1.0 - dist/maxDist)
}

// structureScore blends class-chain overlap, resource-id identity, parent
// class and sibling position, normalized by the weights actually applicable.
// With nothing compared on both sides it is vacuously 1.0.
func structureScore(target, candidate Fingerprint) float64 {
	var num, den float64

	if len(target.ClassChain) > 0 && len(candidate.ClassChain) > 0 {
		num += jaccard(target.ClassChain, candidate.ClassChain) * chainWeight
		den += chainWeight
	}

	if target.ResourceID != "" && candidate.ResourceID != "" {
		switch {
		case target.ResourceID == candidate.ResourceID:
			num += resourceIDWeight
			den += resourceIDWeight
		case target.ResourceIDSuffix != "" && target.ResourceIDSuffix == candidate.ResourceIDSuffix:
			num += ridSuffixWeight
			den += ridSuffixWeight
		default:
			den += resourceIDWeight
		}
	}

	if target.ParentClass != "" && candidate.ParentClass != "" {
		if target.ParentClass == candidate.ParentClass {
			num += parentClassWeight
		}
		den += parentClassWeight
	}

	if target.RelativeIndex != nil && candidate.RelativeIndex != nil {
		if *target.RelativeIndex == *candidate.RelativeIndex {
			num += siblingIndexWeight
		} else {
			num += 0.8 * siblingIndexWeight
		}
		den += siblingIndexWeight
	}

	if den == 0 {
		return 1.0
	}
	return num / den
}

// attributeScore is the fraction of matching flags among those present on
// both sides, counting content-desc equality as one more compared item.
func attributeScore(target, candidate Fingerprint) float64 {
	var matched, compared float64

	boolPairs := []struct{ t, c *bool }{
		{target.Clickable, candidate.Clickable},
		{target.Enabled, candidate.Enabled},
		{target.Selected, candidate.Selected},
	}
	for _, p := range boolPairs {
		if p.t != nil && p.c != nil {
			compared++
			if *p.t == *p.c {
				matched++
			}
		}
	}

	if target.ContentDesc != "" && candidate.ContentDesc != "" {
		compared++
		if target.ContentDesc == candidate.ContentDesc {
			matched++
		}
	}

	if compared == 0 {
		return 1.0
	}
	return matched / compared
}

// jaccard computes set similarity of two class chains.
func jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}

	intersection := 0
	for s := range setA {
		if setB[s] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

// explain renders the facet scores into ordered human-readable lines, ending
// with the confidence verdict.
func explain(target, candidate Fingerprint, d Details, confidence float64, cfg Config) []string {
	var lines []string

	switch {
	case target.TextContent == "" && candidate.TextContent == "":
		lines = append(lines, "text: not compared, vacuous match")
	case d.TextMatch >= 1.0:
		lines = append(lines, fmt.Sprintf("text: exact match %q", target.TextContent))
	case d.TextMatch >= cfg.TextSimilarityThreshold:
		lines = append(lines, fmt.Sprintf("text: near match %q vs %q (%.2f)", target.TextContent, candidate.TextContent, d.TextMatch))
	default:
		lines = append(lines, fmt.Sprintf("text: mismatch %q vs %q (%.2f)", target.TextContent, candidate.TextContent, d.TextMatch))
	}

	if target.BoundsSignature == nil || candidate.BoundsSignature == nil {
		lines = append(lines, "position: no signature, scored neutral")
	} else {
		lines = append(lines, fmt.Sprintf("position: %.2f", d.PositionMatch))
	}

	if target.ResourceID != "" && target.ResourceID == candidate.ResourceID {
		lines = append(lines, fmt.Sprintf("structure: resource-id match %s (%.2f)", target.ResourceID, d.StructureMatch))
	} else {
		lines = append(lines, fmt.Sprintf("structure: %.2f", d.StructureMatch))
	}

	lines = append(lines, fmt.Sprintf("attributes: %.2f", d.AttributeMatch))

	verdict := "low"
	if confidence >= cfg.HighConfidenceFloor {
		verdict = "high"
	}
	lines = append(lines, fmt.Sprintf("confidence: %s (%.2f)", verdict, confidence))

	return lines
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
