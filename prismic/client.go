// Package prismic is a small client for the Prismic REST API v2.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a single-document lookup matches nothing.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrForeignCursor is returned when a pagination cursor points outside the repository.
	ErrForeignCursor = errors.New("prismic: cursor does not address this repository")
	// ErrNoMasterRef is returned when the API root advertises no published ref.
	ErrNoMasterRef = errors.New("prismic: no master ref")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("prismic: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("prismic: status %d: %s", e.StatusCode, e.Message)
}

// QueryOptions tune a search request.
type QueryOptions struct {
	Fetch     []string // field selection, e.g. "post.title"
	PageSize  int
	Page      int
	Orderings []string // e.g. "document.first_publication_date desc"
	Ref       string   // content version; empty means the master ref
	Lang      string
}

// Client is an authenticated handle to one Prismic repository.
type Client struct {
	endpoint   *url.URL
	token      string
	httpClient *http.Client
	refTTL     time.Duration

	mu        sync.Mutex
	masterRef string
	refAt     time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRefTTL sets how long the master ref is reused before the API root is asked again.
func WithRefTTL(d time.Duration) Option {
	return func(c *Client) {
		c.refTTL = d
	}
}

// NewClient creates a client for the repository API endpoint,
// e.g. https://my-repo.cdn.prismic.io/api/v2.
func NewClient(endpoint, accessToken string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute URL", endpoint)
	}
	c := &Client{
		endpoint: u,
		token:    accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		refTTL: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the repository API endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// MasterRef returns the ref of the published content version.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.masterRef != "" && time.Since(c.refAt) < c.refTTL {
		ref := c.masterRef
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	u := *c.endpoint
	q := u.Query()
	if c.token != "" {
		q.Set("access_token", c.token)
	}
	u.RawQuery = q.Encode()

	var info apiInfo
	if err := c.getJSON(ctx, u.String(), &info); err != nil {
		return "", fmt.Errorf("get api: %w", err)
	}
	for _, r := range info.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.masterRef = r.Ref
			c.refAt = time.Now()
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", ErrNoMasterRef
}

// Query returns one page of documents matching predicates.
func (c *Client) Query(ctx context.Context, predicates []Predicate, opts QueryOptions) (*Response, error) {
	ref := opts.Ref
	if ref == "" {
		var err error
		ref, err = c.MasterRef(ctx)
		if err != nil {
			return nil, err
		}
	}

	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/documents/search"
	q := url.Values{}
	q.Set("ref", ref)
	if len(predicates) > 0 {
		q.Set("q", buildQuery(predicates))
	}
	if len(opts.Fetch) > 0 {
		q.Set("fetch", strings.Join(opts.Fetch, ","))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if len(opts.Orderings) > 0 {
		q.Set("orderings", "["+strings.Join(opts.Orderings, ",")+"]")
	}
	if opts.Lang != "" {
		q.Set("lang", opts.Lang)
	}
	if c.token != "" {
		q.Set("access_token", c.token)
	}
	u.RawQuery = q.Encode()

	var resp Response
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &resp, nil
}

// GetByUID returns the document of docType with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string, opts QueryOptions) (*Document, error) {
	opts.PageSize = 1
	opts.Page = 0
	return c.first(ctx, []Predicate{At("my."+docType+".uid", uid)}, opts)
}

// GetByID returns the document with the given id.
func (c *Client) GetByID(ctx context.Context, id string, opts QueryOptions) (*Document, error) {
	opts.PageSize = 1
	opts.Page = 0
	return c.first(ctx, []Predicate{At("document.id", id)}, opts)
}

func (c *Client) first(ctx context.Context, predicates []Predicate, opts QueryOptions) (*Document, error) {
	resp, err := c.Query(ctx, predicates, opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	doc := resp.Results[0]
	return &doc, nil
}

// FetchPage follows a next_page cursor returned by a previous query.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*Response, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if !strings.EqualFold(u.Host, c.endpoint.Host) || u.Scheme != c.endpoint.Scheme {
		return nil, ErrForeignCursor
	}
	q := u.Query()
	if c.token != "" && q.Get("access_token") == "" {
		q.Set("access_token", c.token)
		u.RawQuery = q.Encode()
	}

	var resp Response
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	return &resp, nil
}

// PublicCursor strips the access token from a cursor so it can be handed to browsers.
func PublicCursor(cursor string) string {
	if cursor == "" {
		return ""
	}
	u, err := url.Parse(cursor)
	if err != nil {
		return ""
	}
	q := u.Query()
	if q.Get("access_token") == "" {
		return cursor
	}
	q.Del("access_token")
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
