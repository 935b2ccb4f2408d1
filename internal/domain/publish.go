package domain

// PublishResult records one upload attempt against one destination.
type PublishResult struct {
	Destination string `json:"destination"`
	URL         string `json:"url,omitempty"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
}
