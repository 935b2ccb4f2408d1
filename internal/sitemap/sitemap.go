// Package sitemap maintains the site's sitemap.xml across runs. Loads
// are tolerant, merges are idempotent and keyed by loc, saves always
// write a well-formed urlset.
package sitemap

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pratama/articleforge/internal/domain"
)

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

const xmlnsSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Load reads an existing sitemap. A strict XML parse is tried first;
// if the document is truncated or corrupt a line scanner recovers
// whatever (loc, lastmod) pairs it can. Missing or hopeless input
// yields an empty list, never an error: a broken sitemap must not
// block publishing, the merge will regrow it.
func Load(path string) []domain.SitemapEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var set urlset
	if err := xml.Unmarshal(data, &set); err == nil {
		entries := make([]domain.SitemapEntry, 0, len(set.URLs))
		for _, u := range set.URLs {
			if u.Loc != "" {
				entries = append(entries, domain.SitemapEntry{Loc: u.Loc, LastMod: u.LastMod})
			}
		}
		return entries
	}

	return scanLoosely(string(data))
}

// scanLoosely pulls loc/lastmod values out of malformed sitemap text.
// A lastmod line binds to the most recent loc above it.
func scanLoosely(data string) []domain.SitemapEntry {
	var entries []domain.SitemapEntry

	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if loc := between(line, "<loc>", "</loc>"); loc != "" {
			entries = append(entries, domain.SitemapEntry{Loc: xmlUnescape(loc)})
			continue
		}
		if lastmod := between(line, "<lastmod>", "</lastmod>"); lastmod != "" && len(entries) > 0 {
			entries[len(entries)-1].LastMod = lastmod
		}
	}
	return entries
}

func between(line, open, close string) string {
	start := strings.Index(line, open)
	if start < 0 {
		return ""
	}
	rest := line[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func xmlUnescape(s string) string {
	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&apos;", "'",
		"&quot;", `"`,
	)
	return r.Replace(s)
}

// Merge combines an existing sitemap with newly published entries.
// Entries are keyed by Loc and an incoming entry replaces the existing
// one wholesale. The result is sorted by Loc, so merging is
// deterministic and running the same merge twice is a no-op.
func Merge(existing, incoming []domain.SitemapEntry) []domain.SitemapEntry {
	byLoc := make(map[string]domain.SitemapEntry, len(existing)+len(incoming))
	for _, e := range existing {
		if e.Loc != "" {
			byLoc[e.Loc] = e
		}
	}
	for _, e := range incoming {
		if e.Loc != "" {
			byLoc[e.Loc] = e
		}
	}

	merged := make([]domain.SitemapEntry, 0, len(byLoc))
	for _, e := range byLoc {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Loc < merged[j].Loc })
	return merged
}

// Save writes the urlset document. Entries without a lastmod get
// today's date.
func Save(path string, entries []domain.SitemapEntry) error {
	today := time.Now().Format("2006-01-02")

	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<urlset xmlns=%q>\n", xmlnsSitemap)
	for _, e := range entries {
		lastmod := e.LastMod
		if lastmod == "" {
			lastmod = today
		}
		var loc strings.Builder
		xml.EscapeText(&loc, []byte(e.Loc))
		fmt.Fprintf(&b, "  <url>\n    <loc>%s</loc>\n    <lastmod>%s</lastmod>\n  </url>\n", loc.String(), lastmod)
	}
	b.WriteString("</urlset>\n")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
