package views

import (
	"encoding/json"
	"io"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

var monthsPtBR = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// FormatDate renders t as "dd MMM yyyy" with Brazilian Portuguese month names,
// e.g. "15 mar 2021". The zero time renders as an empty string.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02") + " " + monthsPtBR[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// FormatClock renders the time of day as "HH:mm".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// PostPath returns the site-relative URL of a post.
func PostPath(slug string) string {
	return "/post/" + url.PathEscape(slug)
}

// MorePath returns the URL of the "load more" endpoint for cursor.
func MorePath(cursor string) string {
	return "/posts/more?cursor=" + url.QueryEscape(cursor)
}

// BuildURL joins path segments onto a base URL. The bare base gets a "/" path.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, post PostDetail) string {
	postURL := BuildURL(cfg.URL, "post", post.Slug)
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": post.Title,
		"url":      postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"timeRequired": "PT" + strconv.Itoa(post.ReadingTime) + "M",
	}
	if post.Subtitle != "" {
		data["description"] = post.Subtitle
	}
	if !post.FirstPublished.IsZero() {
		data["datePublished"] = post.FirstPublished.Format(time.RFC3339)
	}
	if post.Edited() {
		data["dateModified"] = post.LastPublished.Format(time.RFC3339)
	}
	if post.BannerURL != "" {
		data["image"] = post.BannerURL
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// htmlWriter accumulates the first write error so templates read top to bottom.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}
