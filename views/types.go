package views

import (
	"time"

	"github.com/eringen/spacetraveling/richtext"
)

// SiteConfig holds the site-wide settings templates read.
type SiteConfig struct {
	Name         string // SITE_NAME  (default "spacetraveling")
	URL          string // SITE_URL   (default "http://localhost:3000")
	Description  string // SITE_DESCRIPTION
	Author       string // SITE_AUTHOR
	CommentsRepo string // GitHub repo for utterances comments; empty disables them
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	NoIndex     bool
	Refresh     int // seconds; 0 disables <meta http-equiv="refresh">
}

// PostSummary is a post as shown in the listing.
type PostSummary struct {
	Slug           string
	Title          string
	Subtitle       string
	Author         string
	FirstPublished time.Time
}

// Section is a heading followed by rich text body blocks.
type Section struct {
	Heading string
	Body    []richtext.Block
}

// PostDetail is the full content of a single post.
type PostDetail struct {
	Slug           string
	Title          string
	Subtitle       string
	BannerURL      string
	Author         string
	FirstPublished time.Time
	LastPublished  time.Time
	Content        []Section
	ReadingTime    int // minutes
}

// Edited reports whether the post changed after it was first published.
func (p PostDetail) Edited() bool {
	return !p.LastPublished.IsZero() && !p.LastPublished.Equal(p.FirstPublished)
}

// PostLink is a navigational reference to a neighbouring post.
type PostLink struct {
	Slug  string
	Title string
}

// Listing is one rendered slice of the post list plus the cursor for the next one.
type Listing struct {
	Posts  []PostSummary
	Cursor string // public next-page cursor; empty when exhausted
}

// HasMore reports whether the "load more" control should be shown.
func (l Listing) HasMore() bool {
	return l.Cursor != ""
}

// PostPage is everything the detail template needs.
type PostPage struct {
	Post    PostDetail
	Prev    *PostLink
	Next    *PostLink
	Preview bool
}
