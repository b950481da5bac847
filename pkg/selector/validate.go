package selector

import "fmt"

// Report is the outcome of validating a structured selector. Issues make
// the selector unusable; Recommendations flag weaknesses worth fixing
// before the recording is trusted for unattended replay.
type Report struct {
	IsValid         bool     `json:"is_valid" yaml:"is_valid"`
	Issues          []string `json:"issues,omitempty" yaml:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// Validate checks a structured selector for contradictions and weaknesses.
// It never mutates the selector.
func Validate(s *StructuredSelector) Report {
	r := Report{IsValid: true}
	fail := func(msg string) {
		r.IsValid = false
		r.Issues = append(r.Issues, msg)
	}
	warn := func(msg string) {
		r.Recommendations = append(r.Recommendations, msg)
	}

	sel := &s.Selectors
	if sel.AbsoluteXPath == "" && sel.ResourceID == "" && sel.Text == "" && sel.ClassName == "" {
		fail("no identifying selector: set at least one of absolute_xpath, resource_id, text or class_name")
	}
	if sel.XPathPrefix != "" && sel.LeafIndex == nil {
		fail("xpath_prefix is set without leaf_index; the pair cannot be resolved separately")
	}
	if sel.XPathPrefix == "" && sel.LeafIndex != nil {
		fail("leaf_index is set without xpath_prefix; the pair cannot be resolved separately")
	}

	if s.Action.Type == "" {
		fail("action has no type")
	} else if _, known := actionKinds[s.Action.Type]; !known {
		fail(fmt.Sprintf("unknown action type %q", s.Action.Type))
	} else if _, ok := s.Action.arm(); !ok {
		fail(fmt.Sprintf("action %q is missing its parameters", s.Action.Type))
	}

	if !sel.HasStrongAnchor() {
		warn("no strong anchor (absolute_xpath or resource_id); resolution will rely on text and geometry heuristics")
	}
	if s.Safety.MinConfidence < 0.5 {
		warn(fmt.Sprintf("min_confidence %.2f is below 0.5; unattended replay may act on weak matches", s.Safety.MinConfidence))
	}
	if s.Fingerprint == nil {
		warn("no fingerprint recorded; cross-session matching will be unavailable")
	}
	return r
}

var actionKinds = map[ActionKind]struct{}{
	ActionTap:       {},
	ActionLongPress: {},
	ActionSwipe:     {},
	ActionTypeText:  {},
	ActionWait:      {},
	ActionBack:      {},
}
