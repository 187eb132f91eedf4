package bing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/samvad-hq/samvad-image-scraper/internal/domain"
)

const (
	// DefaultBaseURL is Bing's asynchronous image results endpoint.
	DefaultBaseURL = "https://www.bing.com/images/async"

	// PageSize is the number of results Bing serves per window.
	PageSize = 35
)

var aspectTokens = map[domain.AspectFilter]string{
	domain.AspectSquare: "+filterui:aspect-square",
	domain.AspectTall:   "+filterui:aspect-tall",
	domain.AspectWide:   "+filterui:aspect-wide",
}

// AspectToken returns the qft filter token for f, if any.
func AspectToken(f domain.AspectFilter) (string, bool) {
	tok, ok := aspectTokens[f]
	return tok, ok
}

// Offset returns the 1-based result window start for page.
func Offset(page int) int {
	return 1 + (page-1)*PageSize
}

// BuildURL composes the provider URL for req against baseURL (DefaultBaseURL when empty).
// Parameters keep the order q, first, count, qft.
func BuildURL(baseURL string, req domain.SearchRequest) string {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	params := [][2]string{
		{"q", req.Query()},
		{"first", strconv.Itoa(Offset(req.Page()))},
		{"count", strconv.Itoa(PageSize)},
	}
	if tok, ok := AspectToken(req.Aspect()); ok {
		params = append(params, [2]string{"qft", tok})
	}

	var b strings.Builder
	b.WriteString(baseURL)
	if strings.Contains(baseURL, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}
