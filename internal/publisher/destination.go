// Package publisher uploads rendered artifacts to the configured
// object-storage destinations in fixed priority order. Destinations
// fail independently; one outage never blocks the rest.
package publisher

import (
	"context"
	"fmt"
	"io"

	"github.com/pratama/articleforge/internal/config"
)

// Destination abstracts one publish target.
type Destination interface {
	// Name identifies the destination in results and logs.
	Name() string

	// Upload stores an object under key. Re-uploading the same key
	// overwrites it, which keeps publishing idempotent.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// URL returns the public URL an uploaded key is served from.
	URL(key string) string
}

// BuildDestinations constructs every destination whose credential set
// is complete, in configured priority order.
func BuildDestinations(cfg *config.Config) ([]Destination, error) {
	var dests []Destination
	for _, name := range cfg.EnabledDestinations() {
		switch name {
		case "s3":
			d, err := NewS3Destination(&cfg.Destinations.S3)
			if err != nil {
				return nil, fmt.Errorf("failed to build s3 destination: %w", err)
			}
			dests = append(dests, d)
		case "bunny":
			dests = append(dests, NewBunnyDestination(&cfg.Destinations.Bunny))
		}
	}
	return dests, nil
}
