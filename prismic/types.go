package prismic

import (
	"encoding/json"
	"fmt"
	"time"
)

// timeLayout is the timestamp format used by the Prismic API.
const timeLayout = "2006-01-02T15:04:05-0700"

// Ref is a content version advertised by the API root.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// apiInfo is the subset of the API root response we use.
type apiInfo struct {
	Refs []Ref `json:"refs"`
}

// Document is a single CMS record.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href"`
	Tags                 []string        `json:"tags"`
	Lang                 string          `json:"lang"`
	FirstPublicationDate string          `json:"first_publication_date"`
	LastPublicationDate  string          `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// DecodeData unmarshals the document's data fields into v.
func (d *Document) DecodeData(v interface{}) error {
	if len(d.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode %s data: %w", d.Type, err)
	}
	return nil
}

// FirstPublished returns the parsed first publication date, or the zero time.
func (d *Document) FirstPublished() time.Time {
	t, _ := ParseTime(d.FirstPublicationDate)
	return t
}

// LastPublished returns the parsed last publication date, or the zero time.
func (d *Document) LastPublished() time.Time {
	t, _ := ParseTime(d.LastPublicationDate)
	return t
}

// Response is one page of search results.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         string     `json:"next_page"`
	PrevPage         string     `json:"prev_page"`
	Results          []Document `json:"results"`
}

// ParseTime parses a Prismic timestamp. Empty input yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Some endpoints emit RFC 3339 with a colon in the offset.
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
