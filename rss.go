package spacetraveling

import (
	"bytes"
	"context"
	"encoding/xml"
	"time"

	"github.com/eringen/spacetraveling/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

func (a *App) renderRSS(ctx context.Context) (Page, error) {
	posts, err := a.Content.AllPosts(ctx, "")
	if err != nil {
		return Page{}, err
	}
	return rssPage(a.Config, posts)
}

func rssPage(cfg SiteConfig, posts []views.PostSummary) (Page, error) {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := views.BuildURL(cfg.URL, "post", p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Subtitle,
			Author:      p.Author,
			GUID:        postURL,
		}
		if !p.FirstPublished.IsZero() {
			item.PubDate = p.FirstPublished.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        views.BuildURL(cfg.URL),
			Description: cfg.Description,
			Language:    "pt-BR",
			Items:       items,
		},
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(feed); err != nil {
		return Page{}, err
	}
	return Page{Body: buf.Bytes(), ContentType: "application/rss+xml; charset=utf-8"}, nil
}
