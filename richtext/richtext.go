// Package richtext renders Prismic structured text as plain text or HTML.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"
)

// Block types.
const (
	Paragraph    = "paragraph"
	Heading1     = "heading1"
	Heading2     = "heading2"
	Heading3     = "heading3"
	Heading4     = "heading4"
	Heading5     = "heading5"
	Heading6     = "heading6"
	Preformatted = "preformatted"
	ListItem     = "list-item"
	OListItem    = "o-list-item"
	Image        = "image"
	Embed        = "embed"
)

// Span types.
const (
	Strong    = "strong"
	Em        = "em"
	Hyperlink = "hyperlink"
	Label     = "label"
)

// Span marks a range of a block's text. Start and End are UTF-16 offsets.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// SpanData carries hyperlink targets and label names.
type SpanData struct {
	LinkType string `json:"link_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Dimensions of an image block.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Block is one element of a rich text field.
type Block struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	Spans      []Span      `json:"spans"`
	URL        string      `json:"url,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// AsText returns the text of every block joined by a single space.
func AsText(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == Image || b.Type == Embed {
			continue
		}
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, " ")
}

// Component returns a templ.Component that renders blocks as HTML.
func Component(blocks []Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, blocks)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// AsHTML returns the HTML representation of blocks.
func AsHTML(blocks []Block) string {
	var buf bytes.Buffer
	Render(&buf, blocks)
	return buf.String()
}

// Render writes the HTML representation of blocks to buf.
func Render(buf *bytes.Buffer, blocks []Block) {
	inList := false
	inOrderedList := false

	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}
	flushOrderedList := func() {
		if inOrderedList {
			buf.WriteString("</ol>")
			inOrderedList = false
		}
	}

	for _, b := range blocks {
		switch b.Type {
		case ListItem:
			flushOrderedList()
			if !inList {
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatInline(b.Text, b.Spans))
			buf.WriteString("</li>")
			continue
		case OListItem:
			flushList()
			if !inOrderedList {
				buf.WriteString("<ol>")
				inOrderedList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(FormatInline(b.Text, b.Spans))
			buf.WriteString("</li>")
			continue
		}

		flushList()
		flushOrderedList()

		switch b.Type {
		case Heading1, Heading2, Heading3, Heading4, Heading5, Heading6:
			tag := "h" + strings.TrimPrefix(b.Type, "heading")
			buf.WriteString("<" + tag + ">")
			buf.WriteString(FormatInline(b.Text, b.Spans))
			buf.WriteString("</" + tag + ">")
		case Preformatted:
			buf.WriteString("<pre>")
			buf.WriteString(html.EscapeString(b.Text))
			buf.WriteString("</pre>")
		case Image:
			src := SafeURL(b.URL)
			if src == "" {
				continue
			}
			buf.WriteString(`<img src="` + src + `" alt="` + html.EscapeString(b.Alt) + `"`)
			if b.Dimensions != nil && b.Dimensions.Width > 0 && b.Dimensions.Height > 0 {
				buf.WriteString(` width="` + strconv.Itoa(b.Dimensions.Width) + `" height="` + strconv.Itoa(b.Dimensions.Height) + `"`)
			}
			buf.WriteString(` loading="lazy" decoding="async"/>`)
		case Embed:
			// Provider markup is not trusted; embeds are dropped.
		default:
			buf.WriteString("<p>")
			buf.WriteString(FormatInline(b.Text, b.Spans))
			buf.WriteString("</p>")
		}
	}
	flushList()
	flushOrderedList()
}

// FormatInline renders text with its spans applied. Text is HTML-escaped,
// newlines become <br/>, and overlapping spans are closed and reopened so the
// output stays well-formed.
func FormatInline(text string, spans []Span) string {
	units := utf16.Encode([]rune(text))
	if len(spans) == 0 {
		return escapeText(text)
	}

	ordered := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > len(units) || s.Start >= s.End {
			continue
		}
		ordered = append(ordered, s)
	}
	// Outer spans first when two start together.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].End > ordered[j].End
	})

	var b strings.Builder
	var open []Span
	next := 0
	last := 0
	for pos := 0; pos <= len(units); pos++ {
		closing := false
		for _, s := range open {
			if s.End == pos {
				closing = true
				break
			}
		}
		opening := next < len(ordered) && ordered[next].Start == pos
		if !closing && !opening {
			continue
		}

		b.WriteString(escapeText(string(utf16.Decode(units[last:pos]))))
		last = pos

		if closing {
			// Close down to the outermost span ending here, then reopen survivors.
			outer := -1
			for i, s := range open {
				if s.End == pos {
					outer = i
					break
				}
			}
			for i := len(open) - 1; i >= outer; i-- {
				b.WriteString(closeTag(open[i]))
			}
			var kept []Span
			for _, s := range open[outer:] {
				if s.End != pos {
					kept = append(kept, s)
				}
			}
			open = append(open[:outer], kept...)
			for _, s := range kept {
				b.WriteString(openTag(s))
			}
		}
		for next < len(ordered) && ordered[next].Start == pos {
			s := ordered[next]
			b.WriteString(openTag(s))
			open = append(open, s)
			next++
		}
	}
	b.WriteString(escapeText(string(utf16.Decode(units[last:]))))
	return b.String()
}

func openTag(s Span) string {
	switch s.Type {
	case Strong:
		return "<strong>"
	case Em:
		return "<em>"
	case Label:
		name := ""
		if s.Data != nil {
			name = html.EscapeString(s.Data.Label)
		}
		return `<span class="` + name + `">`
	case Hyperlink:
		if s.Data == nil {
			return "<span>"
		}
		href := SafeURL(s.Data.URL)
		if href == "" {
			return "<span>"
		}
		attrs := ""
		if s.Data.Target == "_blank" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>`
	default:
		return "<span>"
	}
}

func closeTag(s Span) string {
	switch s.Type {
	case Strong:
		return "</strong>"
	case Em:
		return "</em>"
	case Hyperlink:
		if s.Data != nil && SafeURL(s.Data.URL) != "" {
			return "</a>"
		}
		return "</span>"
	default:
		return "</span>"
	}
}

func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br/>")
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
