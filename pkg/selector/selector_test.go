package selector

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/element"
)

const sampleHierarchy = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <android.widget.FrameLayout package="com.example.app" bounds="[0,0][1080,1920]">
    <android.widget.TextView text="用户名" bounds="[100,300][400,360]" />
    <android.widget.EditText resource-id="com.example.app:id/input_user" bounds="[100,400][980,520]" clickable="true" />
    <android.widget.Button text="登录" resource-id="com.example.app:id/btn_login" bounds="[100,600][980,720]" clickable="true" />
    <android.widget.Button text="注册" bounds="[100,800][980,920]" clickable="true" />
    <android.widget.TextView text="帮助" bounds="[900,830][1060,890]" />
  </android.widget.FrameLayout>
</hierarchy>`

var testScreen = core.ScreenSize{Width: 1080, Height: 1920}

func extractSample(t *testing.T) *element.Result {
	t.Helper()
	res := element.Extract(sampleHierarchy, element.DefaultOptions())
	if len(res.Elements) == 0 {
		t.Fatal("sample hierarchy produced no elements")
	}
	return &res
}

func findByText(t *testing.T, res *element.Result, text string) *element.VisualElement {
	t.Helper()
	for _, el := range res.Elements {
		if el.Text == text {
			return el
		}
	}
	t.Fatalf("no element with text %q", text)
	return nil
}

func TestBuildActionDefaults(t *testing.T) {
	tests := []struct {
		name   string
		params ActionParams
		check  func(t *testing.T, a Action)
	}{
		{
			name:   "plain tap carries no params",
			params: ActionParams{Kind: ActionTap},
			check: func(t *testing.T, a Action) {
				if a.Type != ActionTap || a.Tap != nil {
					t.Errorf("got type=%q tap=%+v", a.Type, a.Tap)
				}
			},
		},
		{
			name:   "tap with offset keeps params",
			params: ActionParams{Kind: ActionTap, OffsetX: 10, OffsetY: -5},
			check: func(t *testing.T, a Action) {
				if a.Tap == nil || a.Tap.OffsetX != 10 || a.Tap.OffsetY != -5 {
					t.Errorf("got tap=%+v", a.Tap)
				}
			},
		},
		{
			name:   "longPress defaults duration",
			params: ActionParams{Kind: ActionLongPress},
			check: func(t *testing.T, a Action) {
				if a.LongPress == nil || a.LongPress.DurationMs != 800 {
					t.Errorf("got longPress=%+v", a.LongPress)
				}
			},
		},
		{
			name:   "swipe defaults direction distance duration",
			params: ActionParams{Kind: ActionSwipe},
			check: func(t *testing.T, a Action) {
				if a.Swipe == nil {
					t.Fatal("swipe arm missing")
				}
				if a.Swipe.Direction != SwipeDown || a.Swipe.DistanceDip != 200 || a.Swipe.DurationMs != 300 {
					t.Errorf("got swipe=%+v", a.Swipe)
				}
			},
		},
		{
			name:   "type keeps text",
			params: ActionParams{Kind: ActionTypeText, Text: "hello", ClearFirst: true},
			check: func(t *testing.T, a Action) {
				if a.TypeText == nil || a.TypeText.Text != "hello" || !a.TypeText.ClearFirst {
					t.Errorf("got typeText=%+v", a.TypeText)
				}
			},
		},
		{
			name:   "wait defaults duration",
			params: ActionParams{Kind: ActionWait},
			check: func(t *testing.T, a Action) {
				if a.Wait == nil || a.Wait.DurationMs != 1000 {
					t.Errorf("got wait=%+v", a.Wait)
				}
			},
		},
		{
			name:   "back has no arm",
			params: ActionParams{Kind: ActionBack},
			check: func(t *testing.T, a Action) {
				if a.Type != ActionBack {
					t.Errorf("got type=%q", a.Type)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := BuildAction(tt.params)
			if err != nil {
				t.Fatalf("BuildAction: %v", err)
			}
			tt.check(t, a)
		})
	}
}

func TestBuildActionUnknownKind(t *testing.T) {
	if _, err := BuildAction(ActionParams{Kind: "doubleTap"}); err == nil {
		t.Error("expected error for unknown action kind")
	}
}

func TestBuildPopulatesSelectors(t *testing.T) {
	res := extractSample(t)
	b := NewBuilder(DefaultBuildConfig(), testScreen)

	login := findByText(t, res, "登录")
	sel, err := b.Build(res, login, ActionParams{Kind: ActionTap})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if sel.StepID == "" {
		t.Error("step_id not set")
	}
	if sel.Selectors.Text != "登录" {
		t.Errorf("text = %q", sel.Selectors.Text)
	}
	if sel.Selectors.ResourceID != "com.example.app:id/btn_login" {
		t.Errorf("resource_id = %q", sel.Selectors.ResourceID)
	}
	wantXPath := "/android.widget.FrameLayout[1]/android.widget.Button[1]"
	if sel.Selectors.AbsoluteXPath != wantXPath {
		t.Errorf("absolute_xpath = %q, want %q", sel.Selectors.AbsoluteXPath, wantXPath)
	}
	if sel.Selectors.XPathPrefix != "/android.widget.FrameLayout[1]" {
		t.Errorf("xpath_prefix = %q", sel.Selectors.XPathPrefix)
	}
	if sel.Selectors.LeafIndex == nil || *sel.Selectors.LeafIndex != 1 {
		t.Errorf("leaf_index = %v, want 1", sel.Selectors.LeafIndex)
	}

	register := findByText(t, res, "注册")
	sel2, err := b.Build(res, register, ActionParams{Kind: ActionTap})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sel2.Selectors.LeafIndex == nil || *sel2.Selectors.LeafIndex != 2 {
		t.Errorf("second button leaf_index = %v, want 2", sel2.Selectors.LeafIndex)
	}
	if sel2.StepID == sel.StepID {
		t.Error("step ids must be unique per build")
	}
}

func TestBuildGeometricAndFingerprint(t *testing.T) {
	res := extractSample(t)
	b := NewBuilder(DefaultBuildConfig(), testScreen)
	login := findByText(t, res, "登录")

	sel, err := b.Build(res, login, ActionParams{Kind: ActionTap})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if sel.Geometric == nil {
		t.Fatal("geometric record missing")
	}
	if sel.Geometric.BoundsRaw != "[100,600][980,720]" {
		t.Errorf("bounds_raw = %q", sel.Geometric.BoundsRaw)
	}
	sig := sel.Geometric.BoundsSignature
	if sig == nil {
		t.Fatal("bounds signature missing")
	}
	if sig.X < 0.49 || sig.X > 0.51 {
		t.Errorf("signature X = %v, want ~0.5", sig.X)
	}

	if sel.Fingerprint == nil {
		t.Fatal("fingerprint missing")
	}
	if sel.Fingerprint.TextContent != "登录" {
		t.Errorf("fingerprint text = %q", sel.Fingerprint.TextContent)
	}
	if sel.Fingerprint.ResourceIDSuffix != "btn_login" {
		t.Errorf("fingerprint suffix = %q", sel.Fingerprint.ResourceIDSuffix)
	}
}

func TestBuildStampsPolicy(t *testing.T) {
	res := extractSample(t)
	cfg := DefaultBuildConfig()
	cfg.MinConfidence = 0.9
	cfg.FallbackToBounds = true
	cfg.Revalidate = RevalidateOnMismatch
	b := NewBuilder(cfg, testScreen)

	sel, err := b.Build(res, findByText(t, res, "登录"), ActionParams{Kind: ActionTap})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sel.Safety.MinConfidence != 0.9 {
		t.Errorf("min_confidence = %v", sel.Safety.MinConfidence)
	}
	if !sel.Safety.RequireUniqueness || !sel.Safety.ForbidFullscreenOrContainer {
		t.Error("safety defaults not carried")
	}
	if !sel.Validation.FallbackToBounds || sel.Validation.Revalidate != RevalidateOnMismatch {
		t.Errorf("validation = %+v", sel.Validation)
	}
}

func TestBuildNeighbors(t *testing.T) {
	res := extractSample(t)
	b := NewBuilder(DefaultBuildConfig(), testScreen)
	register := findByText(t, res, "注册")

	sel, err := b.Build(res, register, ActionParams{Kind: ActionTap})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var above *NeighborAnchor
	for i := range sel.Neighbors {
		if sel.Neighbors[i].Position == NeighborAbove {
			above = &sel.Neighbors[i]
		}
		// 帮助 sits 440px to the right, beyond the 300px cutoff.
		if sel.Neighbors[i].Selector.Text == "帮助" {
			t.Errorf("out-of-range neighbor recorded: %+v", sel.Neighbors[i])
		}
	}
	if above == nil {
		t.Fatal("no above anchor recorded")
	}
	if above.Selector.Text != "登录" {
		t.Errorf("above anchor text = %q, want 登录", above.Selector.Text)
	}
	if above.Distance != 200 {
		t.Errorf("above anchor distance = %d, want 200", above.Distance)
	}
	if !strings.Contains(above.Description, "above") {
		t.Errorf("description = %q", above.Description)
	}
}

func TestBuildWithoutDocument(t *testing.T) {
	b := NewBuilder(DefaultBuildConfig(), testScreen)
	if _, err := b.Build(&element.Result{}, &element.VisualElement{}, ActionParams{Kind: ActionTap}); err == nil {
		t.Error("expected error without document")
	}
}

func TestValidate(t *testing.T) {
	res := extractSample(t)
	b := NewBuilder(DefaultBuildConfig(), testScreen)
	built, err := b.Build(res, findByText(t, res, "登录"), ActionParams{Kind: ActionTap})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(s *StructuredSelector)
		valid  bool
		issue  string
		recomm string
	}{
		{
			name:   "built selector is valid",
			mutate: func(s *StructuredSelector) {},
			valid:  true,
		},
		{
			name: "no identifiers",
			mutate: func(s *StructuredSelector) {
				s.Selectors = Selectors{}
			},
			valid: false,
			issue: "no identifying selector",
		},
		{
			name: "prefix without leaf index",
			mutate: func(s *StructuredSelector) {
				s.Selectors.LeafIndex = nil
			},
			valid: false,
			issue: "xpath_prefix is set without leaf_index",
		},
		{
			name: "leaf index without prefix",
			mutate: func(s *StructuredSelector) {
				s.Selectors.XPathPrefix = ""
			},
			valid: false,
			issue: "leaf_index is set without xpath_prefix",
		},
		{
			name: "missing action type",
			mutate: func(s *StructuredSelector) {
				s.Action = Action{}
			},
			valid: false,
			issue: "action has no type",
		},
		{
			name: "unknown action type",
			mutate: func(s *StructuredSelector) {
				s.Action.Type = "hover"
			},
			valid: false,
			issue: "unknown action type",
		},
		{
			name: "swipe without params",
			mutate: func(s *StructuredSelector) {
				s.Action = Action{Type: ActionSwipe}
			},
			valid: false,
			issue: "missing its parameters",
		},
		{
			name: "weak anchor recommendation",
			mutate: func(s *StructuredSelector) {
				s.Selectors.AbsoluteXPath = ""
				s.Selectors.ResourceID = ""
				s.Selectors.XPathPrefix = ""
				s.Selectors.LeafIndex = nil
			},
			valid:  true,
			recomm: "no strong anchor",
		},
		{
			name: "low confidence recommendation",
			mutate: func(s *StructuredSelector) {
				s.Safety.MinConfidence = 0.3
			},
			valid:  true,
			recomm: "below 0.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *built
			tt.mutate(&s)
			r := Validate(&s)
			if r.IsValid != tt.valid {
				t.Fatalf("IsValid = %v, want %v (issues: %v)", r.IsValid, tt.valid, r.Issues)
			}
			if tt.issue != "" && !containsSubstring(r.Issues, tt.issue) {
				t.Errorf("issues %v missing %q", r.Issues, tt.issue)
			}
			if tt.recomm != "" && !containsSubstring(r.Recommendations, tt.recomm) {
				t.Errorf("recommendations %v missing %q", r.Recommendations, tt.recomm)
			}
		})
	}
}

func containsSubstring(lines []string, sub string) bool {
	for _, l := range lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func TestStructuredSelectorJSONRoundTrip(t *testing.T) {
	res := extractSample(t)
	b := NewBuilder(DefaultBuildConfig(), testScreen)
	sel, err := b.Build(res, findByText(t, res, "登录"), ActionParams{Kind: ActionTypeText, Text: "user"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	data, err := json.Marshal(sel)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back StructuredSelector
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.StepID != sel.StepID {
		t.Errorf("step_id changed: %q vs %q", back.StepID, sel.StepID)
	}
	if back.Action.Type != ActionTypeText || back.Action.TypeText == nil || back.Action.TypeText.Text != "user" {
		t.Errorf("action lost in round trip: %+v", back.Action)
	}
	if back.Selectors.LeafIndex == nil || *back.Selectors.LeafIndex != *sel.Selectors.LeafIndex {
		t.Error("leaf_index lost in round trip")
	}

	// Older records without newer optional fields still decode.
	var sparse StructuredSelector
	if err := json.Unmarshal([]byte(`{"step_id":"x","selectors":{"text":"ok"},"action":{"type":"back"}}`), &sparse); err != nil {
		t.Fatalf("sparse unmarshal: %v", err)
	}
	if sparse.Selectors.Text != "ok" {
		t.Errorf("sparse text = %q", sparse.Selectors.Text)
	}
}
