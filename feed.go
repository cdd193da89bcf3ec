package spacetraveling

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// ErrLoadInProgress is returned by Feed.LoadMore while a previous call is
// still waiting for its page.
var ErrLoadInProgress = errors.New("spacetraveling: load already in progress")

// PageFetcher follows pagination cursors.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string) (*prismic.Response, error)
}

// Feed is a growing list of post summaries plus the cursor of the next page.
// At most one LoadMore runs at a time, so pages are appended in the order the
// cursors were issued.
type Feed struct {
	fetcher   PageFetcher
	loc       *time.Location
	onBadData func(id string, err error)

	mu      sync.Mutex
	posts   []views.PostSummary
	cursor  string
	loading bool
}

// NewFeed creates a Feed holding posts with cursor pointing at the next page.
func NewFeed(fetcher PageFetcher, loc *time.Location, posts []views.PostSummary, cursor string) *Feed {
	if loc == nil {
		loc = time.UTC
	}
	return &Feed{
		fetcher: fetcher,
		loc:     loc,
		posts:   posts,
		cursor:  cursor,
	}
}

// Posts returns a copy of the summaries loaded so far.
func (f *Feed) Posts() []views.PostSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]views.PostSummary, len(f.posts))
	copy(out, f.posts)
	return out
}

// Cursor returns the raw next-page cursor, empty when exhausted.
func (f *Feed) Cursor() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// HasMore reports whether another page can be loaded.
func (f *Feed) HasMore() bool {
	return f.Cursor() != ""
}

// Listing returns the feed as a view model with a browser-safe cursor.
func (f *Feed) Listing() views.Listing {
	return views.Listing{
		Posts:  f.Posts(),
		Cursor: prismic.PublicCursor(f.Cursor()),
	}
}

// LoadMore fetches the page behind the cursor, appends its posts and replaces
// the cursor with the one from the response. It returns the newly appended
// posts. Without a cursor it makes no request and returns nothing. A call made
// while another is pending fails with ErrLoadInProgress and changes nothing.
func (f *Feed) LoadMore(ctx context.Context) ([]views.PostSummary, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	if f.cursor == "" {
		f.mu.Unlock()
		return nil, nil
	}
	cursor := f.cursor
	f.loading = true
	f.mu.Unlock()

	resp, err := f.fetcher.FetchPage(ctx, cursor)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		return nil, err
	}
	page := summariesFromDocuments(resp.Results, f.loc, f.onBadData)
	f.posts = append(f.posts, page...)
	f.cursor = resp.NextPage
	return page, nil
}
