package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain contains core models shared by the scraper and the API layer.

// ErrInvalidRequest marks a SearchRequest that could not be constructed.
var ErrInvalidRequest = errors.New("invalid search request")

// AspectFilter constrains image proportions. The zero value means no filter.
type AspectFilter string

const (
	AspectNone   AspectFilter = ""
	AspectSquare AspectFilter = "square"
	AspectTall   AspectFilter = "tall"
	AspectWide   AspectFilter = "wide"
)

// AspectFilters lists the accepted filter values in a stable order.
func AspectFilters() []AspectFilter {
	return []AspectFilter{AspectSquare, AspectTall, AspectWide}
}

// ParseAspectFilter maps the inbound format value onto an AspectFilter.
func ParseAspectFilter(raw string) (AspectFilter, error) {
	switch f := AspectFilter(raw); f {
	case AspectSquare, AspectTall, AspectWide:
		return f, nil
	default:
		return AspectNone, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, raw)
	}
}

// SearchRequest is an image search query. Fields are read through accessors so
// a constructed request cannot be changed.
type SearchRequest struct {
	query  string
	aspect AspectFilter
	page   int
}

// NewSearchRequest validates and builds a SearchRequest.
func NewSearchRequest(query string, aspect AspectFilter, page int) (SearchRequest, error) {
	if strings.TrimSpace(query) == "" {
		return SearchRequest{}, fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	if page < 1 {
		return SearchRequest{}, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidRequest, page)
	}
	switch aspect {
	case AspectNone, AspectSquare, AspectTall, AspectWide:
	default:
		return SearchRequest{}, fmt.Errorf("%w: unknown aspect filter %q", ErrInvalidRequest, aspect)
	}
	return SearchRequest{query: query, aspect: aspect, page: page}, nil
}

func (r SearchRequest) Query() string        { return r.query }
func (r SearchRequest) Aspect() AspectFilter { return r.aspect }
func (r SearchRequest) Page() int            { return r.page }

// ImageRecord is one image result. FullURL is never empty.
type ImageRecord struct {
	FullURL      string `json:"url"`
	ThumbnailURL string `json:"thumbnail"`
	Description  string `json:"description"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// SearchResult keeps records in source document order. Duplicates are preserved.
type SearchResult struct {
	Records []ImageRecord `json:"results"`
}

// Len returns the number of records.
func (r SearchResult) Len() int { return len(r.Records) }
