package xml

import "testing"

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<DOCUMENT AUTHOR="tool" VERSION="2.7">
    <TIER TIER_ID="words">
        <ITEM REF="ts1">hello</ITEM>
        <ITEM REF="ts2">world</ITEM>
    </TIER>
    <TIER TIER_ID="phones"/>
</DOCUMENT>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	root := doc.Root()
	if root == nil {
		t.Fatal("Root() = nil, want document element")
	}
	if got, want := root.Name(), "DOCUMENT"; got != want {
		t.Errorf("Root().Name() = %q, want %q", got, want)
	}
	if got, want := root.Attr("AUTHOR"), "tool"; got != want {
		t.Errorf("Attr(AUTHOR) = %q, want %q", got, want)
	}
	if got := root.Attr("MISSING"); got != "" {
		t.Errorf("Attr(MISSING) = %q, want empty", got)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"MismatchedTags", "<a><b></a>"},
		{"UnclosedTag", "<DOCUMENT><TIER>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() error = nil, want parse failure")
			}
		})
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	items, err := doc.XPath("//ITEM")
	if err != nil {
		t.Fatalf("XPath() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("XPath(//ITEM) returned %d nodes, want 2", len(items))
	}
	if got, want := items[0].Text(), "hello"; got != want {
		t.Errorf("items[0].Text() = %q, want %q", got, want)
	}
	if got, want := items[1].Attr("REF"), "ts2"; got != want {
		t.Errorf("items[1].Attr(REF) = %q, want %q", got, want)
	}
}

func TestXPathFirst(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	node, err := doc.XPathFirst("//TIER[@TIER_ID='phones']")
	if err != nil {
		t.Fatalf("XPathFirst() error = %v", err)
	}
	if node == nil {
		t.Fatal("XPathFirst() = nil, want match")
	}
	if got, want := node.Attr("TIER_ID"), "phones"; got != want {
		t.Errorf("Attr(TIER_ID) = %q, want %q", got, want)
	}

	missing, err := doc.XPathFirst("//NOSUCH")
	if err != nil {
		t.Fatalf("XPathFirst() error = %v", err)
	}
	if missing != nil {
		t.Errorf("XPathFirst(//NOSUCH) = %v, want nil", missing)
	}
}

func TestXPathInvalid(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := doc.XPath("//["); err == nil {
		t.Error("XPath(//[) error = nil, want compile failure")
	}
	if _, err := doc.XPathFirst("//["); err == nil {
		t.Error("XPathFirst(//[) error = nil, want compile failure")
	}
}

func TestChildren(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tiers := doc.Root().Children()
	if len(tiers) != 2 {
		t.Fatalf("Children() returned %d nodes, want 2", len(tiers))
	}
	for i, tier := range tiers {
		if got, want := tier.Name(), "TIER"; got != want {
			t.Errorf("tiers[%d].Name() = %q, want %q", i, got, want)
		}
	}
	items := tiers[0].Children()
	if len(items) != 2 {
		t.Fatalf("tiers[0].Children() returned %d nodes, want 2", len(items))
	}
	if empty := tiers[1].Children(); len(empty) != 0 {
		t.Errorf("tiers[1].Children() returned %d nodes, want 0", len(empty))
	}
}
