package sitemap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pratama/articleforge/internal/domain"
)

func TestMergeIncomingWins(t *testing.T) {
	existing := []domain.SitemapEntry{
		{Loc: "https://example.com/a.html", LastMod: "2024-01-01"},
		{Loc: "https://example.com/b.html", LastMod: "2024-01-01"},
	}
	incoming := []domain.SitemapEntry{
		{Loc: "https://example.com/b.html", LastMod: "2025-06-01"},
		{Loc: "https://example.com/c.html", LastMod: "2025-06-01"},
	}

	merged := Merge(existing, incoming)

	if len(merged) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(merged))
	}
	// sorted by loc
	wantOrder := []string{
		"https://example.com/a.html",
		"https://example.com/b.html",
		"https://example.com/c.html",
	}
	for i, want := range wantOrder {
		if merged[i].Loc != want {
			t.Errorf("entry %d: got %s, want %s", i, merged[i].Loc, want)
		}
	}
	if merged[1].LastMod != "2025-06-01" {
		t.Errorf("incoming entry should replace existing: got lastmod %s", merged[1].LastMod)
	}
}

func TestMergeIdempotent(t *testing.T) {
	incoming := []domain.SitemapEntry{
		{Loc: "https://example.com/x.html", LastMod: "2025-01-01"},
	}
	once := Merge(nil, incoming)
	twice := Merge(once, incoming)

	if len(twice) != len(once) {
		t.Fatalf("re-merging the same entries grew the sitemap: %d -> %d", len(once), len(twice))
	}
}

func TestMergeDistinctLocs(t *testing.T) {
	merged := Merge(
		[]domain.SitemapEntry{{Loc: "https://example.com/a.html"}},
		[]domain.SitemapEntry{{Loc: "https://example.com/a.html"}, {Loc: "https://example.com/a.html"}},
	)
	seen := make(map[string]bool)
	for _, e := range merged {
		if seen[e.Loc] {
			t.Fatalf("duplicate loc in merged sitemap: %s", e.Loc)
		}
		seen[e.Loc] = true
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.xml")
	entries := []domain.SitemapEntry{
		{Loc: "https://example.com/articles/a.html", LastMod: "2025-03-04"},
		{Loc: "https://example.com/articles/b.html", LastMod: "2025-03-05"},
	}

	if err := Save(path, entries); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Load(path)
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries after roundtrip, got %d", len(loaded))
	}
	for i := range entries {
		if loaded[i].Loc != entries[i].Loc || loaded[i].LastMod != entries[i].LastMod {
			t.Errorf("entry %d mismatch: got %+v, want %+v", i, loaded[i], entries[i])
		}
	}
}

func TestSaveEscapesLoc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.xml")
	entries := []domain.SitemapEntry{
		{Loc: "https://example.com/a.html?x=1&y=2", LastMod: "2025-01-01"},
	}
	if err := Save(path, entries); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "x=1&y=2") {
		t.Error("raw ampersand leaked into sitemap XML")
	}
	if !strings.Contains(string(data), "&amp;") {
		t.Error("ampersand was not escaped")
	}

	loaded := Load(path)
	if len(loaded) != 1 || loaded[0].Loc != entries[0].Loc {
		t.Errorf("escaped loc did not roundtrip: %+v", loaded)
	}
}

func TestSaveDefaultsLastMod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.xml")
	if err := Save(path, []domain.SitemapEntry{{Loc: "https://example.com/a.html"}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded := Load(path)
	if len(loaded) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(loaded))
	}
	if loaded[0].LastMod == "" {
		t.Error("empty lastmod should default to today")
	}
}

func TestLoadMissingFile(t *testing.T) {
	entries := Load(filepath.Join(t.TempDir(), "nope.xml"))
	if len(entries) != 0 {
		t.Errorf("missing file should load as empty, got %d entries", len(entries))
	}
}

func TestLoadTolerantFallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{
			name: "truncated document",
			data: `<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://example.com/a.html</loc>
    <lastmod>2025-01-01</lastmod>
  </url>
  <url>
    <loc>https://example.com/b.html</loc>`,
			want: 2,
		},
		{
			name: "garbage around entries",
			data: "not xml at all\n<loc>https://example.com/only.html</loc>\nmore garbage",
			want: 1,
		},
		{
			name: "hopeless input",
			data: "complete nonsense",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sitemap.xml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			entries := Load(path)
			if len(entries) != tt.want {
				t.Errorf("got %d entries, want %d: %+v", len(entries), tt.want, entries)
			}
		})
	}
}

func TestLoadTolerantRecoversLastMod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.xml")
	data := "<urlset>\n<loc>https://example.com/a.html</loc>\n<lastmod>2024-12-31</lastmod>\nbroken"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	entries := Load(path)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LastMod != "2024-12-31" {
		t.Errorf("lastmod not bound to preceding loc: %+v", entries[0])
	}
}
