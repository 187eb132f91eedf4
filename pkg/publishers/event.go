package publishers

import (
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-image-scraper/internal/domain"
)

// Event represents the payload published downstream after a scrape.
type Event struct {
	ID          string               `json:"id"`
	Query       string               `json:"query"`
	Format      string               `json:"format,omitempty"`
	Page        int                  `json:"page"`
	ProviderURL string               `json:"provider_url"`
	ResultCount int                  `json:"result_count"`
	Results     []domain.ImageRecord `json:"results"`
	ScrapedAt   time.Time            `json:"scraped_at"`
}

// NewEvent constructs an Event for the given request and its result.
func NewEvent(req domain.SearchRequest, providerURL string, result domain.SearchResult) Event {
	return Event{
		ID:          uuid.NewString(),
		Query:       req.Query(),
		Format:      string(req.Aspect()),
		Page:        req.Page(),
		ProviderURL: providerURL,
		ResultCount: result.Len(),
		Results:     result.Records,
		ScrapedAt:   time.Now().UTC(),
	}
}

// attributes are attached to queue/topic messages for subscriber-side filtering.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"event_id": e.ID,
		"query":    e.Query,
	}
	if e.Format != "" {
		attrs["format"] = e.Format
	}
	return attrs
}
