package scraper

import (
	"context"

	"github.com/samvad-hq/samvad-image-scraper/pkg/publishers"
)

// EventPublisher publishes scrape events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
