// Package indexer notifies a search indexing API about published
// URLs. Notifications are strictly sequential with a fixed pause
// between calls to respect the API's rate limits; every failure is
// independent and non-fatal.
package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pratama/articleforge/internal/config"
	"github.com/pratama/articleforge/internal/logger"
)

// Kind selects the notification type.
type Kind string

const (
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// wire values expected by the indexing API
var kindTypes = map[Kind]string{
	KindUpdated: "URL_UPDATED",
	KindDeleted: "URL_DELETED",
}

// Notifier submits URL notifications. Nil Notifier methods are no-ops
// so the orchestrator never branches on whether indexing is enabled.
type Notifier struct {
	client   *resty.Client
	endpoint string
	delay    time.Duration

	// mu serializes calls; the scheduler runs items concurrently but
	// the indexing API is rate limited.
	mu       sync.Mutex
	lastCall time.Time

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

// New builds a notifier, or nil when indexing is disabled.
func New(cfg *config.IndexingConfig) *Notifier {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.Token)
	}
	client.SetTimeout(30 * time.Second)

	delay := time.Duration(cfg.DelayMs) * time.Millisecond
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	return &Notifier{
		client:   client,
		endpoint: cfg.Endpoint,
		delay:    delay,
		sleep:    time.Sleep,
	}
}

type notifyRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Notify submits one URL. Calls are serialized and spaced by the
// configured delay no matter how many workers call in parallel.
func (n *Notifier) Notify(ctx context.Context, url string, kind Kind) error {
	if n == nil {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if wait := n.delay - time.Since(n.lastCall); wait > 0 {
		n.sleep(wait)
	}
	n.lastCall = time.Now()

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(notifyRequest{URL: url, Type: kindTypes[kind]}).
		Post(n.endpoint)

	if err != nil {
		logger.FromContext(ctx).Warnf("indexing notification failed for %s: %v", url, err)
		return fmt.Errorf("failed to call indexing API: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		err := fmt.Errorf("indexing API returned HTTP %d: %s", resp.StatusCode(), string(resp.Body()))
		logger.FromContext(ctx).Warnf("indexing notification failed for %s: %v", url, err)
		return err
	}
	return nil
}
