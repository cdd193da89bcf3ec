package richtext

import (
	"strings"
	"testing"
)

func TestAsTextJoinsBlocks(t *testing.T) {
	blocks := []Block{
		{Type: Paragraph, Text: "Primeiro parágrafo."},
		{Type: Image, URL: "https://images.prismic.io/a.png"},
		{Type: ListItem, Text: "item"},
	}
	got := AsText(blocks)
	want := "Primeiro parágrafo. item"
	if got != want {
		t.Errorf("AsText = %q, want %q", got, want)
	}
	if AsText(nil) != "" {
		t.Errorf("AsText(nil) should be empty")
	}
}

func TestFormatInlineSpans(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		spans []Span
		want  string
	}{
		{"plain", "hello", nil, "hello"},
		{"strong", "hello world", []Span{{Start: 0, End: 5, Type: Strong}}, "<strong>hello</strong> world"},
		{"em", "hello world", []Span{{Start: 6, End: 11, Type: Em}}, "hello <em>world</em>"},
		{"nested", "bold and italic", []Span{
			{Start: 0, End: 15, Type: Strong},
			{Start: 9, End: 15, Type: Em},
		}, "<strong>bold and <em>italic</em></strong>"},
		{"overlapping", "abcdefghij", []Span{
			{Start: 0, End: 5, Type: Strong},
			{Start: 3, End: 8, Type: Em},
		}, "<strong>abc<em>de</em></strong><em>fgh</em>ij"},
		{"escaped", "a < b", []Span{{Start: 0, End: 1, Type: Strong}}, "<strong>a</strong> &lt; b"},
		{"out of range ignored", "abc", []Span{{Start: 1, End: 10, Type: Strong}}, "abc"},
		{"newline", "one\ntwo", nil, "one<br/>two"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.text, tt.spans)
		if got != tt.want {
			t.Errorf("%s: FormatInline(%q) = %q, want %q", tt.name, tt.text, got, tt.want)
		}
	}
}

func TestFormatInlineUTF16Offsets(t *testing.T) {
	// The rocket takes two UTF-16 units.
	text := "🚀 Lançamento"
	got := FormatInline(text, []Span{{Start: 3, End: 13, Type: Strong}})
	want := "🚀 <strong>Lançamento</strong>"
	if got != want {
		t.Errorf("FormatInline = %q, want %q", got, want)
	}
}

func TestFormatInlineHyperlink(t *testing.T) {
	spans := []Span{{Start: 0, End: 4, Type: Hyperlink, Data: &SpanData{LinkType: "Web", URL: "https://nextjs.org", Target: "_blank"}}}
	got := FormatInline("docs here", spans)
	want := `<a href="https://nextjs.org" target="_blank" rel="noopener noreferrer">docs</a> here`
	if got != want {
		t.Errorf("FormatInline = %q, want %q", got, want)
	}
}

func TestFormatInlineUnsafeLink(t *testing.T) {
	spans := []Span{{Start: 0, End: 5, Type: Hyperlink, Data: &SpanData{URL: "javascript:alert(1)"}}}
	got := FormatInline("click", spans)
	if strings.Contains(got, "href") {
		t.Errorf("unsafe link rendered: %q", got)
	}
	if got != "<span>click</span>" {
		t.Errorf("FormatInline = %q", got)
	}
}

func TestRenderBlocks(t *testing.T) {
	blocks := []Block{
		{Type: Heading2, Text: "Título"},
		{Type: Paragraph, Text: "Texto"},
		{Type: ListItem, Text: "a"},
		{Type: ListItem, Text: "b"},
		{Type: OListItem, Text: "um"},
		{Type: Preformatted, Text: "<code>"},
		{Type: Image, URL: "https://images.prismic.io/x.png", Alt: "x", Dimensions: &Dimensions{Width: 10, Height: 20}},
		{Type: Embed, Text: "<iframe>"},
	}
	got := AsHTML(blocks)
	want := `<h2>Título</h2><p>Texto</p><ul><li>a</li><li>b</li></ul><ol><li>um</li></ol>` +
		`<pre>&lt;code&gt;</pre>` +
		`<img src="https://images.prismic.io/x.png" alt="x" width="10" height="20" loading="lazy" decoding="async"/>`
	if got != want {
		t.Errorf("AsHTML =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderClosesTrailingList(t *testing.T) {
	got := AsHTML([]Block{{Type: OListItem, Text: "x"}})
	if got != "<ol><li>x</li></ol>" {
		t.Errorf("AsHTML = %q", got)
	}
}

func TestRenderDropsUnsafeImage(t *testing.T) {
	got := AsHTML([]Block{{Type: Image, URL: "data:image/png;base64,AAAA"}})
	if got != "" {
		t.Errorf("AsHTML = %q, want empty", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com", "https://example.com"},
		{"/post/hooks", "/post/hooks"},
		{"#top", "#top"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"javascript:alert(1)", ""},
		{"relative/path", ""},
		{"", ""},
		{"https://example.com/?a=1&b=2", "https://example.com/?a=1&amp;b=2"},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
