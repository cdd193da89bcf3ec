package spacetraveling

import (
	"bytes"
	"context"
	"encoding/xml"

	"github.com/eringen/spacetraveling/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(ctx context.Context) (Page, error) {
	posts, err := a.Content.AllPosts(ctx, "")
	if err != nil {
		return Page{}, err
	}
	return sitemapPage(a.Config.URL, posts)
}

func sitemapPage(base string, posts []views.PostSummary) (Page, error) {
	urls := []sitemapURL{
		{Loc: views.BuildURL(base)},
	}
	for _, p := range posts {
		u := sitemapURL{Loc: views.BuildURL(base, "post", p.Slug)}
		if !p.FirstPublished.IsZero() {
			u.LastMod = p.FirstPublished.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemap); err != nil {
		return Page{}, err
	}
	return Page{Body: buf.Bytes(), ContentType: "application/xml; charset=utf-8"}, nil
}

func robotsTxt(base string) string {
	return "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + views.BuildURL(base, "sitemap.xml") + "\n"
}
