// Package prismictest provides an in-process fake Prismic repository for tests.
package prismictest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eringen/spacetraveling/prismic"
)

// MasterRef is the ref the fake server advertises as published.
const MasterRef = "master-ref"

var rePredicate = regexp.MustCompile(`\[at\(([^,]+),"((?:[^"\\]|\\.)*)"\)\]`)

// Server is a fake repository backed by httptest.Server.
type Server struct {
	*httptest.Server

	// Token, when set, is required as access_token on every request.
	Token string

	mu       sync.Mutex
	versions map[string][]prismic.Document

	searches atomic.Int64
	pages    atomic.Int64
}

// NewServer starts a fake repository whose published content is docs.
func NewServer(docs []prismic.Document) *Server {
	s := &Server{versions: map[string][]prismic.Document{MasterRef: docs}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Endpoint returns the API v2 endpoint URL of the fake.
func (s *Server) Endpoint() string {
	return s.URL + "/api/v2"
}

// SetVersion registers the documents visible under ref (e.g. a preview ref).
func (s *Server) SetVersion(ref string, docs []prismic.Document) {
	s.mu.Lock()
	s.versions[ref] = docs
	s.mu.Unlock()
}

// Searches reports how many search requests were served.
func (s *Server) Searches() int {
	return int(s.searches.Load())
}

// PageFetches reports how many searches asked for a page beyond the first.
func (s *Server) PageFetches() int {
	return int(s.pages.Load())
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if s.Token != "" && r.URL.Query().Get("access_token") != s.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid access token"})
		return
	}
	switch r.URL.Path {
	case "/api/v2":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"refs": []prismic.Ref{{ID: "master", Ref: MasterRef, Label: "Master", IsMasterRef: true}},
		})
	case "/api/v2/documents/search":
		s.search(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	s.searches.Add(1)
	q := r.URL.Query()

	s.mu.Lock()
	docs, ok := s.versions[q.Get("ref")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown ref"})
		return
	}

	var matched []prismic.Document
	conds := rePredicate.FindAllStringSubmatch(q.Get("q"), -1)
	for _, d := range docs {
		if matches(d, conds) {
			matched = append(matched, d)
		}
	}

	pageSize := 20
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil && n > 0 {
		pageSize = n
	}
	page := 1
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		page = n
	}
	totalPages := (len(matched) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	results := matched[start:end]
	if results == nil {
		results = []prismic.Document{}
	}

	resp := map[string]interface{}{
		"page":               page,
		"results_per_page":   pageSize,
		"results_size":       len(results),
		"total_results_size": len(matched),
		"total_pages":        totalPages,
		"next_page":          nil,
		"prev_page":          nil,
		"results":            results,
	}
	if page < totalPages {
		next := *r.URL
		next.Scheme = "http"
		next.Host = r.Host
		nq := next.Query()
		nq.Set("page", strconv.Itoa(page+1))
		next.RawQuery = nq.Encode()
		resp["next_page"] = next.String()
	}
	if page > 1 {
		s.pages.Add(1)
	}
	writeJSON(w, http.StatusOK, resp)
}

func matches(d prismic.Document, conds [][]string) bool {
	for _, c := range conds {
		path, value := c[1], strings.ReplaceAll(c[2], `\"`, `"`)
		switch {
		case path == "document.type":
			if d.Type != value {
				return false
			}
		case path == "document.id":
			if d.ID != value {
				return false
			}
		case strings.HasPrefix(path, "my.") && strings.HasSuffix(path, ".uid"):
			docType := strings.TrimSuffix(strings.TrimPrefix(path, "my."), ".uid")
			if d.Type != docType || d.UID != value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Post builds a post document with the field layout the blog expects.
func Post(id, uid, title, subtitle, author, published string, sections ...Section) prismic.Document {
	content := make([]map[string]interface{}, 0, len(sections))
	for _, s := range sections {
		body := make([]map[string]interface{}, 0, len(s.Body))
		for _, p := range s.Body {
			body = append(body, map[string]interface{}{"type": "paragraph", "text": p, "spans": []interface{}{}})
		}
		content = append(content, map[string]interface{}{"heading": s.Heading, "body": body})
	}
	data, _ := json.Marshal(map[string]interface{}{
		"title":    title,
		"subtitle": subtitle,
		"author":   author,
		"banner":   map[string]string{"url": "https://images.prismic.io/repo/" + url.PathEscape(uid) + ".png"},
		"content":  content,
	})
	return prismic.Document{
		ID:                   id,
		UID:                  uid,
		Type:                 "post",
		FirstPublicationDate: published,
		LastPublicationDate:  published,
		Data:                 data,
	}
}

// Section is a heading plus plain paragraphs for Post.
type Section struct {
	Heading string
	Body    []string
}
