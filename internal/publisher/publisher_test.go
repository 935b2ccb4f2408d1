package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
)

// fakeDestination records uploads and fails on demand.
type fakeDestination struct {
	name    string
	fail    bool
	uploads []string
}

func (f *fakeDestination) Name() string { return f.name }

func (f *fakeDestination) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if f.fail {
		return errors.New("upload refused")
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeDestination) URL(key string) string {
	return fmt.Sprintf("https://%s.example.com/%s", f.name, key)
}

func TestPublishCanonicalPreference(t *testing.T) {
	tests := []struct {
		name          string
		primaryFails  bool
		fallbackFails bool
		wantCanonical string
	}{
		{
			name:          "both succeed, primary wins",
			wantCanonical: "https://primary.example.com/articles/a.html",
		},
		{
			name:          "primary fails, fallback provides canonical",
			primaryFails:  true,
			wantCanonical: "https://fallback.example.com/articles/a.html",
		},
		{
			name:          "fallback fails, primary provides canonical",
			fallbackFails: true,
			wantCanonical: "https://primary.example.com/articles/a.html",
		},
		{
			name:          "both fail, no canonical",
			primaryFails:  true,
			fallbackFails: true,
			wantCanonical: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &fakeDestination{name: "primary", fail: tt.primaryFails}
			fallback := &fakeDestination{name: "fallback", fail: tt.fallbackFails}
			pub := New([]Destination{primary, fallback})

			results := pub.Publish(context.Background(), "articles/a.html", []byte("<html>"), "text/html")

			if len(results) != 2 {
				t.Fatalf("every destination must get a result, got %d", len(results))
			}
			if got := CanonicalURL(results); got != tt.wantCanonical {
				t.Errorf("canonical: got %q, want %q", got, tt.wantCanonical)
			}
		})
	}
}

func TestPublishAttemptsAllDestinations(t *testing.T) {
	primary := &fakeDestination{name: "primary", fail: true}
	fallback := &fakeDestination{name: "fallback"}
	pub := New([]Destination{primary, fallback})

	results := pub.Publish(context.Background(), "articles/a.html", []byte("x"), "text/html")

	if len(fallback.uploads) != 1 {
		t.Error("primary failure must not block the fallback upload")
	}
	if results[0].OK {
		t.Error("failed destination reported success")
	}
	if results[0].Error == "" {
		t.Error("failed destination should carry its error")
	}
	if !results[1].OK {
		t.Error("fallback destination should succeed")
	}
}

func TestPublishResultOrderMatchesPriority(t *testing.T) {
	dests := []Destination{
		&fakeDestination{name: "one"},
		&fakeDestination{name: "two"},
		&fakeDestination{name: "three"},
	}
	pub := New(dests)

	results := pub.Publish(context.Background(), "k", []byte("x"), "text/plain")
	for i, want := range []string{"one", "two", "three"} {
		if results[i].Destination != want {
			t.Errorf("result %d: got %s, want %s", i, results[i].Destination, want)
		}
	}
}

func TestCanonicalURLEmptyResults(t *testing.T) {
	if got := CanonicalURL(nil); got != "" {
		t.Errorf("no results should yield no canonical, got %q", got)
	}
}
