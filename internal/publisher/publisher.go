package publisher

import (
	"bytes"
	"context"

	"github.com/pratama/articleforge/internal/domain"
	"github.com/pratama/articleforge/internal/logger"
)

// Publisher fans one artifact out to every destination in priority
// order.
type Publisher struct {
	destinations []Destination
}

// New creates a publisher over the given destinations. Order is the
// priority order; the first destination is the primary.
func New(destinations []Destination) *Publisher {
	return &Publisher{destinations: destinations}
}

// Names returns the destination names in priority order.
func (p *Publisher) Names() []string {
	names := make([]string, len(p.destinations))
	for i, d := range p.destinations {
		names[i] = d.Name()
	}
	return names
}

// Publish uploads body under key to every destination. Each
// destination is attempted regardless of earlier outcomes and gets its
// own result; the caller decides what a partial success means.
func (p *Publisher) Publish(ctx context.Context, key string, body []byte, contentType string) []domain.PublishResult {
	results := make([]domain.PublishResult, 0, len(p.destinations))

	for _, dest := range p.destinations {
		result := domain.PublishResult{Destination: dest.Name()}

		err := dest.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), contentType)
		if err != nil {
			result.Error = err.Error()
			logger.FromContext(ctx).WithFields(logger.Fields{
				logger.FieldDestination: dest.Name(),
				"key":                   key,
			}).Warnf("publish failed: %v", err)
		} else {
			result.OK = true
			result.URL = dest.URL(key)
		}

		results = append(results, result)
	}
	return results
}

// CanonicalURL returns the URL from the first successful result in
// priority order, or "" when every destination failed.
func CanonicalURL(results []domain.PublishResult) string {
	for _, r := range results {
		if r.OK {
			return r.URL
		}
	}
	return ""
}
