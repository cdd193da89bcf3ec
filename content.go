package spacetraveling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
	"github.com/eringen/spacetraveling/views"
)

const (
	postType = "post"
	// maxPageSize is the largest page the content API serves.
	maxPageSize = 100
)

var summaryFields = []string{"post.title", "post.subtitle", "post.author"}

// Repository is the content API the site reads from. *prismic.Client
// satisfies it.
type Repository interface {
	Query(ctx context.Context, predicates []prismic.Predicate, opts prismic.QueryOptions) (*prismic.Response, error)
	GetByUID(ctx context.Context, docType, uid string, opts prismic.QueryOptions) (*prismic.Document, error)
	GetByID(ctx context.Context, id string, opts prismic.QueryOptions) (*prismic.Document, error)
	FetchPage(ctx context.Context, cursor string) (*prismic.Response, error)
}

// Content turns repository documents into display records.
type Content struct {
	repo Repository
	loc  *time.Location

	// onBadData is told about documents whose data could not be decoded.
	onBadData func(id string, err error)
}

// NewContent creates a Content reader. Dates are shown in loc (UTC if nil).
func NewContent(repo Repository, loc *time.Location) *Content {
	if loc == nil {
		loc = time.UTC
	}
	return &Content{repo: repo, loc: loc}
}

// Listing fetches the first page of post summaries. An empty ref reads the
// published version.
func (c *Content) Listing(ctx context.Context, pageSize int, ref string) (*Feed, error) {
	resp, err := c.repo.Query(ctx,
		[]prismic.Predicate{prismic.At("document.type", postType)},
		prismic.QueryOptions{Fetch: summaryFields, PageSize: pageSize, Ref: ref})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return c.Feed(summariesFromDocuments(resp.Results, c.loc, c.onBadData), resp.NextPage), nil
}

// Feed wraps already fetched summaries and a cursor so more pages can be appended.
func (c *Content) Feed(posts []views.PostSummary, cursor string) *Feed {
	f := NewFeed(c.repo, c.loc, posts, cursor)
	f.onBadData = c.onBadData
	return f
}

// AllPosts walks every page of the listing in repository order.
func (c *Content) AllPosts(ctx context.Context, ref string) ([]views.PostSummary, error) {
	feed, err := c.Listing(ctx, maxPageSize, ref)
	if err != nil {
		return nil, err
	}
	for feed.HasMore() {
		if _, err := feed.LoadMore(ctx); err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
	}
	return feed.Posts(), nil
}

// Post fetches a single post by slug. It returns prismic.ErrNotFound when no
// document has that slug under ref.
func (c *Content) Post(ctx context.Context, slug, ref string) (views.PostDetail, error) {
	doc, err := c.repo.GetByUID(ctx, postType, slug, prismic.QueryOptions{Ref: ref})
	if err != nil {
		return views.PostDetail{}, err
	}
	return detailFromDocument(doc, c.loc)
}

// Neighbours returns the posts listed immediately before and after slug.
func (c *Content) Neighbours(ctx context.Context, slug, ref string) (prev, next *views.PostLink, err error) {
	posts, err := c.AllPosts(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	prev, next = Adjacent(posts, slug)
	return prev, next, nil
}

// Adjacent locates slug in posts and returns links to its neighbours. Either
// link is nil at a list boundary, and both are nil when slug is not listed.
func Adjacent(posts []views.PostSummary, slug string) (prev, next *views.PostLink) {
	idx := -1
	for i, p := range posts {
		if p.Slug == slug {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	if idx > 0 {
		p := posts[idx-1]
		prev = &views.PostLink{Slug: p.Slug, Title: p.Title}
	}
	if idx+1 < len(posts) {
		p := posts[idx+1]
		next = &views.PostLink{Slug: p.Slug, Title: p.Title}
	}
	return prev, next
}

// textField accepts either a plain string or a rich text array.
type textField string

func (t *textField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = textField(s)
		return nil
	}
	var blocks []richtext.Block
	if err := json.Unmarshal(b, &blocks); err != nil {
		return err
	}
	*t = textField(richtext.AsText(blocks))
	return nil
}

type postData struct {
	Title    textField `json:"title"`
	Subtitle textField `json:"subtitle"`
	Author   textField `json:"author"`
	Banner   struct {
		URL string `json:"url"`
	} `json:"banner"`
	Content []struct {
		Heading textField        `json:"heading"`
		Body    []richtext.Block `json:"body"`
	} `json:"content"`
}

func summariesFromDocuments(docs []prismic.Document, loc *time.Location, onBadData func(id string, err error)) []views.PostSummary {
	posts := make([]views.PostSummary, 0, len(docs))
	for i := range docs {
		s, err := summaryFromDocument(&docs[i], loc)
		if err != nil && onBadData != nil {
			onBadData(docs[i].ID, err)
		}
		posts = append(posts, s)
	}
	return posts
}

// summaryFromDocument always returns a summary: a document with unreadable
// data still lists under its slug, and the decode error is returned with it.
func summaryFromDocument(doc *prismic.Document, loc *time.Location) (views.PostSummary, error) {
	var data postData
	err := doc.DecodeData(&data)
	return views.PostSummary{
		Slug:           doc.UID,
		Title:          string(data.Title),
		Subtitle:       string(data.Subtitle),
		Author:         string(data.Author),
		FirstPublished: inLocation(doc.FirstPublished(), loc),
	}, err
}

func detailFromDocument(doc *prismic.Document, loc *time.Location) (views.PostDetail, error) {
	var data postData
	if err := doc.DecodeData(&data); err != nil {
		return views.PostDetail{}, err
	}
	sections := make([]views.Section, 0, len(data.Content))
	for _, s := range data.Content {
		sections = append(sections, views.Section{Heading: string(s.Heading), Body: s.Body})
	}
	return views.PostDetail{
		Slug:           doc.UID,
		Title:          string(data.Title),
		Subtitle:       string(data.Subtitle),
		BannerURL:      data.Banner.URL,
		Author:         string(data.Author),
		FirstPublished: inLocation(doc.FirstPublished(), loc),
		LastPublished:  inLocation(doc.LastPublished(), loc),
		Content:        sections,
		ReadingTime:    ReadingTime(sections),
	}, nil
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(loc)
}
