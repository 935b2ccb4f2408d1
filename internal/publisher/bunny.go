package publisher

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pratama/articleforge/internal/config"
)

// BunnyDestination publishes to a Bunny.net storage zone over its
// HTTP storage API.
type BunnyDestination struct {
	client    *resty.Client
	zone      string
	host      string
	publicURL string
}

// NewBunnyDestination creates a Bunny storage-zone destination.
func NewBunnyDestination(cfg *config.BunnyConfig) *BunnyDestination {
	client := resty.New()
	client.SetHeader("AccessKey", cfg.AccessKey)
	client.SetTimeout(60 * time.Second)

	host := cfg.RegionHost
	if host == "" {
		host = "storage.bunnycdn.com"
	}

	return &BunnyDestination{
		client:    client,
		zone:      cfg.StorageZone,
		host:      host,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}
}

func (d *BunnyDestination) Name() string {
	return "bunny"
}

func (d *BunnyDestination) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	endpoint := fmt.Sprintf("https://%s/%s/%s", d.host, d.zone, key)

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(reader).
		Put(endpoint)

	if err != nil {
		return fmt.Errorf("failed to upload to bunny storage: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("bunny storage returned HTTP %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

func (d *BunnyDestination) URL(key string) string {
	return fmt.Sprintf("%s/%s", d.publicURL, key)
}
