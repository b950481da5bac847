package hierarchy

import (
	"testing"
)

func TestPathOfAndFindByPath(t *testing.T) {
	doc, err := Parse(sampleHierarchy)
	if err != nil {
		t.Fatal(err)
	}

	// Round trip for every node in the document.
	for i := range doc.Nodes {
		path := PathOf(doc, i)
		if got := FindByPath(doc, path); got != i {
			t.Errorf("FindByPath(PathOf(%d)) = %d", i, got)
		}
	}
}

func TestPathOfKnownNode(t *testing.T) {
	doc, _ := Parse(sampleHierarchy)

	// Username label is the first child of the container, which is the
	// third child of the root.
	var label int = -1
	for i := range doc.Nodes {
		if doc.Nodes[i].Text == "Username" {
			label = i
		}
	}
	if label < 0 {
		t.Fatal("Username label not found")
	}

	path := PathOf(doc, label)
	if !path.Equal(IndexPath{2, 0}) {
		t.Errorf("path = %v, want [2 0]", path)
	}
}

func TestFindByPathOffTree(t *testing.T) {
	doc, _ := Parse(sampleHierarchy)
	if got := FindByPath(doc, IndexPath{9, 9}); got != -1 {
		t.Errorf("expected -1 for dangling path, got %d", got)
	}
}

func TestIndexPathSerialization(t *testing.T) {
	tests := []struct {
		path IndexPath
		str  string
	}{
		{IndexPath{}, ""},
		{IndexPath{0}, "0"},
		{IndexPath{0, 3, 1}, "0/3/1"},
	}

	for _, tt := range tests {
		if got := tt.path.String(); got != tt.str {
			t.Errorf("String(%v) = %q, want %q", tt.path, got, tt.str)
		}
		parsed, err := ParsePath(tt.str)
		if err != nil {
			t.Errorf("ParsePath(%q) error: %v", tt.str, err)
			continue
		}
		if !parsed.Equal(tt.path) {
			t.Errorf("ParsePath(%q) = %v, want %v", tt.str, parsed, tt.path)
		}
	}

	if _, err := ParsePath("0/x/1"); err == nil {
		t.Error("expected error for non-numeric segment")
	}
}

func TestIndexPathHasPrefix(t *testing.T) {
	p := IndexPath{1, 2, 3}
	if !p.HasPrefix(IndexPath{1, 2}) {
		t.Error("expected [1 2] to be a prefix")
	}
	if p.HasPrefix(IndexPath{2}) {
		t.Error("[2] is not a prefix")
	}
	if p.HasPrefix(IndexPath{1, 2, 3, 4}) {
		t.Error("longer path cannot be a prefix")
	}
}

func TestXPathOf(t *testing.T) {
	doc, _ := Parse(sampleHierarchy)

	var signup int = -1
	for i := range doc.Nodes {
		if doc.Nodes[i].Text == "Sign Up" {
			signup = i
		}
	}
	if signup < 0 {
		t.Fatal("Sign Up button not found")
	}

	// Second Button among the root's Button children.
	want := "/android.widget.FrameLayout[1]/android.widget.Button[2]"
	if got := XPathOf(doc, signup); got != want {
		t.Errorf("XPathOf = %q, want %q", got, want)
	}
}
