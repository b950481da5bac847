package fingerprint

import (
	"encoding/json"
	"testing"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/element"
)

const sampleHierarchy = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <node text="" class="android.widget.FrameLayout" package="com.app" bounds="[0,0][1080,1920]" clickable="false" enabled="true">
    <node text="登录" resource-id="com.app:id/btn_login" class="android.widget.Button" bounds="[100,200][300,280]" clickable="true" enabled="true"/>
    <node text="注册" resource-id="com.app:id/btn_signup" class="android.widget.Button" bounds="[100,300][300,380]" clickable="true" enabled="true"/>
    <node text="" resource-id="com.app:id/list" class="androidx.recyclerview.widget.RecyclerView" bounds="[0,400][1080,1800]" clickable="false" enabled="true" scrollable="true">
      <node text="关注" resource-id="com.app:id/follow" class="android.widget.TextView" bounds="[900,420][1050,480]" clickable="true" enabled="true"/>
    </node>
  </node>
</hierarchy>`

var testScreen = core.ScreenSize{Width: 1080, Height: 1920}

func extractSample(t *testing.T) element.Result {
	t.Helper()
	result := element.Extract(sampleHierarchy, element.DefaultOptions())
	if len(result.Elements) == 0 {
		t.Fatal("extraction produced no elements")
	}
	return result
}

func findByText(t *testing.T, result element.Result, text string) *element.VisualElement {
	t.Helper()
	for _, el := range result.Elements {
		if el.Text == text {
			return el
		}
	}
	t.Fatalf("element with text %q not found", text)
	return nil
}

func TestGenerate(t *testing.T) {
	result := extractSample(t)
	login := findByText(t, result, "登录")

	fp := Generate(result.Doc, login, testScreen, DefaultConfig())

	if fp.TextContent != "登录" {
		t.Errorf("text = %q", fp.TextContent)
	}
	if fp.TextHash == "" {
		t.Error("text hash missing")
	}
	if fp.ResourceID != "com.app:id/btn_login" {
		t.Errorf("resource id = %s", fp.ResourceID)
	}
	if fp.ResourceIDSuffix != "btn_login" {
		t.Errorf("suffix = %s", fp.ResourceIDSuffix)
	}
	if len(fp.ClassChain) != 2 {
		t.Fatalf("class chain = %v, want [Button FrameLayout] classes", fp.ClassChain)
	}
	if fp.ClassChain[0] != "android.widget.Button" {
		t.Errorf("chain[0] = %s", fp.ClassChain[0])
	}
	if fp.ParentClass != "android.widget.FrameLayout" {
		t.Errorf("parent class = %s", fp.ParentClass)
	}
	if fp.BoundsSignature == nil {
		t.Fatal("bounds signature missing")
	}
	if fp.RelativeIndex == nil || *fp.RelativeIndex != 0 {
		t.Errorf("relative index = %v, want 0", fp.RelativeIndex)
	}
	if fp.SiblingCount == nil || *fp.SiblingCount != 2 {
		t.Errorf("sibling count = %v, want 2", fp.SiblingCount)
	}
	if fp.Clickable == nil || !*fp.Clickable {
		t.Error("clickable flag missing")
	}
	if fp.PackageName != "com.app" {
		t.Errorf("package = %s", fp.PackageName)
	}
}

func TestGeneratePackageInherited(t *testing.T) {
	result := extractSample(t)
	// 关注 sits two levels below the root, which is the only node in the
	// dump carrying a package attribute.
	follow := findByText(t, result, "关注")
	if follow.Package != "" {
		t.Fatalf("fixture changed: element carries its own package %q", follow.Package)
	}

	fp := Generate(result.Doc, follow, testScreen, DefaultConfig())
	if fp.PackageName != "com.app" {
		t.Errorf("package = %q, want root's com.app", fp.PackageName)
	}
}

func TestGenerateGatedFacets(t *testing.T) {
	result := extractSample(t)
	login := findByText(t, result, "登录")

	cfg := DefaultConfig()
	cfg.EnableText = false
	cfg.EnablePosition = false
	cfg.EnableAttributes = false
	cfg.EnableClassChain = false

	fp := Generate(result.Doc, login, testScreen, cfg)
	if fp.TextContent != "" || fp.TextHash != "" {
		t.Error("text facet should be gated off")
	}
	if fp.BoundsSignature != nil {
		t.Error("position facet should be gated off")
	}
	if fp.Clickable != nil {
		t.Error("attribute facet should be gated off")
	}
	if len(fp.ClassChain) != 0 {
		t.Error("class chain should be gated off")
	}
	// Structural context is always captured.
	if fp.ResourceID == "" || fp.DepthLevel == nil {
		t.Error("identifier and depth context missing")
	}
}

func TestTextHash(t *testing.T) {
	if TextHash("关注") == TextHash("已关注") {
		t.Error("distinct strings should hash differently")
	}
	if TextHash("登录") != TextHash("登录") {
		t.Error("hash must be deterministic")
	}
}

func TestFingerprintJSONRoundTrip(t *testing.T) {
	result := extractSample(t)
	login := findByText(t, result, "登录")
	fp := Generate(result.Doc, login, testScreen, DefaultConfig())

	data, err := json.Marshal(fp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Fingerprint
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.TextContent != fp.TextContent || back.ResourceID != fp.ResourceID {
		t.Error("identifiers lost in round trip")
	}
	if back.BoundsSignature == nil {
		t.Error("signature lost in round trip")
	}
	// Unknown fields from future versions must not break consumers.
	withExtra := append(data[:len(data)-1], []byte(`,"future_field":42}`)...)
	if err := json.Unmarshal(withExtra, &back); err != nil {
		t.Errorf("unknown field broke decode: %v", err)
	}
}

func TestGenerateImmutability(t *testing.T) {
	result := extractSample(t)
	login := findByText(t, result, "登录")

	a := Generate(result.Doc, login, testScreen, DefaultConfig())
	b := Generate(result.Doc, login, testScreen, DefaultConfig())

	if a.TextHash != b.TextHash || a.ResourceID != b.ResourceID {
		t.Error("regeneration must be deterministic")
	}
	if *a.BoundsSignature != *b.BoundsSignature {
		t.Error("signatures differ across regenerations")
	}
}
