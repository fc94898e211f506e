package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextExtractorSanitizes(t *testing.T) {
	e := &textExtractor{policy: newSanitizer()}

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"script stripped", `<p>safe</p><script>alert(1)</script>`, "<p>safe</p>"},
		{"event handlers dropped", `<span onclick="x()">text</span>`, "<span>text</span>"},
		{"allowed link attrs kept", `<a href="https://example.com" target="_blank" rel="nofollow">go</a>`, `<a href="https://example.com" target="_blank">go</a>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), nil, []byte(tc.input))
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if got.Text != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got.Text)
			}
		})
	}
}

func TestDocxExtractor(t *testing.T) {
	document := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t> paragraph</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`
	payload := buildZip(t, map[string]string{"word/document.xml": document})

	e := &docxExtractor{policy: newSanitizer()}
	got, err := e.Extract(context.Background(), nil, payload)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := "<p>First paragraph</p><p>Second paragraph</p>"
	if got.Text != want {
		t.Errorf("expected %q, got %q", want, got.Text)
	}
}

func TestDocxExtractorMissingBody(t *testing.T) {
	payload := buildZip(t, map[string]string{"other.xml": "<x/>"})

	e := &docxExtractor{policy: newSanitizer()}
	if _, err := e.Extract(context.Background(), nil, payload); err == nil {
		t.Error("expected error for archive without word/document.xml")
	}
}

func TestPptxExtractor(t *testing.T) {
	slide := func(texts ...string) string {
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
		for _, txt := range texts {
			b.WriteString(`<a:t>` + txt + `</a:t>`)
		}
		b.WriteString(`</p:sld>`)
		return b.String()
	}

	// slide10 checks numeric (not lexicographic) ordering
	payload := buildZip(t, map[string]string{
		"ppt/slides/slide2.xml":  slide("Second slide"),
		"ppt/slides/slide1.xml":  slide("Title", "Subtitle"),
		"ppt/slides/slide10.xml": slide("Last slide"),
		"ppt/media/image1.png":   "binary",
	})

	e := &pptxExtractor{policy: newSanitizer()}
	got, err := e.Extract(context.Background(), nil, payload)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if len(got.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(got.Sections))
	}
	wantLabels := []string{"Slide 1", "Slide 2", "Slide 10"}
	for i, label := range wantLabels {
		if got.Sections[i].Label != label {
			t.Errorf("section %d: expected label %q, got %q", i, label, got.Sections[i].Label)
		}
	}
	if got.Sections[0].Text != "Title\nSubtitle" {
		t.Errorf("expected joined runs, got %q", got.Sections[0].Text)
	}

	if plain := got.Plain(); !strings.Contains(plain, "Second slide") || !strings.Contains(plain, "Last slide") {
		t.Errorf("flattened transcript missing slide text: %q", plain)
	}
}

func TestPptxSlideTextNestedElements(t *testing.T) {
	// a break element inside a text run must not swallow the text after it
	slide := `<?xml version="1.0"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><a:t>before<a:br/>after</a:t></p:sld>`
	payload := buildZip(t, map[string]string{"ppt/slides/slide1.xml": slide})

	e := &pptxExtractor{policy: newSanitizer()}
	got, err := e.Extract(context.Background(), nil, payload)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if len(got.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(got.Sections))
	}
	if got.Sections[0].Text != "before\nafter" {
		t.Errorf("expected both runs captured, got %q", got.Sections[0].Text)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry(&stubTranscriber{})

	cases := []struct {
		mimeType string
		ok       bool
	}{
		{"text/plain", true},
		{"text/plain; charset=utf-8", true},
		{"application/pdf", true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", true},
		{"audio/mpeg", true},
		{"audio/webm", true},
		{"video/mp4", false},
		{"application/octet-stream", false},
	}
	for _, tc := range cases {
		t.Run(tc.mimeType, func(t *testing.T) {
			if _, ok := r.Lookup(tc.mimeType); ok != tc.ok {
				t.Errorf("Lookup(%q) = %v, want %v", tc.mimeType, ok, tc.ok)
			}
		})
	}
}
