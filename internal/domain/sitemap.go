package domain

// SitemapEntry is one (loc, lastmod) record in the published sitemap.
// Loc is the unique key; LastMod holds a YYYY-MM-DD date.
type SitemapEntry struct {
	Loc     string
	LastMod string
}
