package namespace

import "testing"

func testNamespace() *Namespace {
	return New(
		Binding{CuriePrefix: "foo", URIPrefix: "http://example.com/"},
		Binding{CuriePrefix: "bar", URIPrefix: "file:///tmp/"},
	)
}

func TestNamespace_Expand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"foo:abc", "http://example.com/abc"},
		{"bar:xyz/123", "file:///tmp/xyz/123"},
		{"bar:a:b", "file:///tmp/a:b"},
		{"missing:xxx", "missing:xxx"},
		{"http://example.org/blah", "http://example.org/blah"},
		{"foo", "foo"},
	}

	ns := testNamespace()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ns.Expand(tt.input); got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNamespace_Compact(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://example.com/abc", "foo:abc"},
		{"file:///tmp/xyz/123", "bar:xyz/123"},
		{"missing:xxx", "missing:xxx"},
		{"http://example.org/blah", "http://example.org/blah"},
	}

	ns := testNamespace()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ns.Compact(tt.input); got != tt.want {
				t.Errorf("Compact(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromMap_Ordering(t *testing.T) {
	ns := FromMap(Map{
		"short": "http://a/",
		"long":  "http://a/b/c/",
		"mid2":  "http://a/z/",
		"mid1":  "http://a/y/",
		"dup":   "http://a/y/",
	})

	got := ns.Bindings()
	defaults := DefaultBindings()
	if len(got) != len(defaults)+5 {
		t.Fatalf("got %d bindings, want %d", len(got), len(defaults)+5)
	}
	for i, b := range defaults {
		if got[i] != b {
			t.Errorf("binding %d = %+v, want default %+v", i, got[i], b)
		}
	}

	wantPrefixes := []string{"long", "dup", "mid1", "mid2", "short"}
	for i, want := range wantPrefixes {
		if p := got[len(defaults)+i].CuriePrefix; p != want {
			t.Errorf("user binding %d = %q, want %q", i, p, want)
		}
	}
}

func TestFromMap_DefaultsTakePriority(t *testing.T) {
	ns := FromMap(Map{"cdl-page": "http://example.com/override/"})

	if got := ns.Expand("cdl-page:image"); got != PageImage {
		t.Errorf("Expand(cdl-page:image) = %q, want %q", got, PageImage)
	}
}

func TestFromMap_MostSpecificCompacts(t *testing.T) {
	ns := FromMap(Map{
		"ex":  "http://example.com/",
		"exd": "http://example.com/docs/",
	})

	if got := ns.Compact("http://example.com/docs/1"); got != "exd:1" {
		t.Errorf("Compact() = %q, want %q", got, "exd:1")
	}
	if got := ns.Compact("http://example.com/other"); got != "ex:other" {
		t.Errorf("Compact() = %q, want %q", got, "ex:other")
	}
}

func TestNamespace_RoundTrip(t *testing.T) {
	ns := FromMap(Map{"ex": "http://example.com/"})

	t.Run("expand of compact", func(t *testing.T) {
		for _, uri := range []string{"http://example.com/a/b", PageImage, DataLink} {
			if got := ns.Expand(ns.Compact(uri)); got != uri {
				t.Errorf("Expand(Compact(%q)) = %q", uri, got)
			}
		}
	})

	t.Run("compact of expand", func(t *testing.T) {
		for _, curie := range []string{"ex:thing", "cdl-page:image", "cdl-role:x"} {
			if got := ns.Compact(ns.Expand(curie)); got != curie {
				t.Errorf("Compact(Expand(%q)) = %q", curie, got)
			}
		}
	})
}

func TestBinding_Compact(t *testing.T) {
	b := Binding{CuriePrefix: "ex", URIPrefix: "http://example.com/"}

	got, err := b.Compact("http://example.com/x")
	if err != nil {
		t.Fatalf("Compact() error = %v", err)
	}
	if got != "ex:x" {
		t.Errorf("Compact() = %q, want %q", got, "ex:x")
	}

	if _, err := b.Compact("http://other.org/x"); err == nil {
		t.Error("expected error for unprefixed uri")
	}
}

func TestNew_CopiesBindings(t *testing.T) {
	bindings := []Binding{{CuriePrefix: "a", URIPrefix: "http://a/"}}
	ns := New(bindings...)
	bindings[0].URIPrefix = "http://changed/"

	if got := ns.Expand("a:x"); got != "http://a/x" {
		t.Errorf("Expand() = %q, want %q", got, "http://a/x")
	}
}
