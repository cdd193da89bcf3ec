package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Home renders the full listing page.
func Home(cfg SiteConfig, listing Listing) templ.Component {
	meta := PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
	}
	return Layout(cfg, meta, WebsiteJsonLD(cfg), templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<main class="main"><div class="posts" id="posts">`)
		if h.err != nil {
			return h.err
		}
		if err := PostList(listing).Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</div></main>`)
		return h.err
	}))
}

// PostList renders summaries followed by the "load more" control when a cursor
// remains. It is also the fragment returned to the load-more script, which
// replaces the old control with it.
func PostList(listing Listing) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		for _, p := range listing.Posts {
			h.raw(`<div class="post"><a`)
			h.attr("href", PostPath(p.Slug))
			h.raw(`><strong class="title">`)
			h.text(p.Title)
			h.raw(`</strong><p class="subtitle">`)
			h.text(p.Subtitle)
			h.raw(`</p><div class="info"><time`)
			if !p.FirstPublished.IsZero() {
				h.attr("datetime", p.FirstPublished.Format("2006-01-02"))
			}
			h.raw(`>`)
			h.text(FormatDate(p.FirstPublished))
			h.raw(`</time><span class="author">`)
			h.text(p.Author)
			h.raw(`</span></div></a></div>`)
		}
		if listing.HasMore() {
			h.raw(`<a class="load-more" data-load-more`)
			h.attr("href", MorePath(listing.Cursor))
			h.raw(`><strong>Carregar mais posts</strong></a>`)
		}
		return h.err
	})
}
