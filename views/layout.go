package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Layout wraps body in the shared document shell.
func Layout(cfg SiteConfig, meta PageMeta, jsonLD string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		title := cfg.Name
		if meta.Title != "" && meta.Title != cfg.Name {
			title = meta.Title + " | " + cfg.Name
		}
		description := meta.Description
		if description == "" {
			description = cfg.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw(`<!DOCTYPE html><html lang="pt-BR"><head><meta charset="utf-8"/>`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		if description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", description)
			h.raw(`/>`)
		}
		if meta.NoIndex {
			h.raw(`<meta name="robots" content="noindex"/>`)
		}
		if meta.Refresh > 0 {
			h.raw(`<meta http-equiv="refresh" content="`, strconv.Itoa(meta.Refresh), `"/>`)
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw(`/><meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw(`/>`)
		}
		h.raw(`<meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(`/><meta property="og:title"`)
		h.attr("content", title)
		h.raw(`/>`)
		if meta.Image != "" {
			h.raw(`<meta property="og:image"`)
			h.attr("content", meta.Image)
			h.raw(`/>`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", cfg.Name)
		h.raw(`/>`)
		h.raw(`<link rel="icon" type="image/svg+xml" href="/favicon.svg"/>`)
		h.raw(`<link rel="stylesheet" href="/public/app.css"/>`)
		h.raw(`<script src="/public/more.js" defer></script>`)
		if jsonLD != "" {
			h.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
		}
		h.raw(`</head><body>`)
		h.raw(`<header class="header"><a href="/" class="logo">`)
		h.text(cfg.Name)
		h.raw(`</a></header>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</body></html>`)
		return h.err
	})
}
