package article

import (
	"fmt"
	"html"
	"strings"

	"github.com/pratama/articleforge/internal/domain"
)

// buildBody renders the opening paragraph and every section as
// h2/p blocks. Paragraph text is HTML-escaped.
func buildBody(content *domain.Content) string {
	var b strings.Builder

	if content.Opening != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(content.Opening))
	}
	for _, section := range content.Sections {
		if section.Heading != "" {
			fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(section.Heading))
		}
		for _, p := range section.Paragraphs {
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(p))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildBreadcrumbs(baseURL, heading string) string {
	return fmt.Sprintf(`<a href="%s">Beranda</a> &raquo; <a href="%s/articles/">Artikel</a> &raquo; %s`,
		baseURL, baseURL, html.EscapeString(heading))
}

// buildRelatedCards renders the related-articles grid. Each topic
// links to the article the slug would resolve to.
func buildRelatedCards(topics []domain.RelatedTopic) string {
	var b strings.Builder
	for _, t := range topics {
		fmt.Fprintf(&b, `<div class="related-card"><h4><a href="articles/%s.html">%s</a></h4><p>%s</p></div>`,
			Slugify(t.Title), html.EscapeString(t.Title), html.EscapeString(t.Description))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildSidebar(topics []domain.RelatedTopic, baseURL string) string {
	var b strings.Builder
	b.WriteString(`<div class="sidebar-box"><h3>Topik Populer</h3><ul>`)
	for _, t := range topics {
		fmt.Fprintf(&b, `<li><a href="%s/articles/%s.html">%s</a></li>`,
			baseURL, Slugify(t.Title), html.EscapeString(t.Title))
	}
	b.WriteString(`</ul></div>`)
	return b.String()
}

func buildFooterLinks(baseURL string) string {
	return fmt.Sprintf(`<a href="%s">Beranda</a> &middot; <a href="%s/articles/">Semua Artikel</a> &middot; <a href="%s/sitemap.xml">Sitemap</a>`,
		baseURL, baseURL, baseURL)
}

// RewriteBase retargets absolute links in a rendered document from one
// base URL to another. String-level replacement on href/content/src
// attribute values; used when the canonical destination turns out to
// differ from the base the template was rendered with.
func RewriteBase(doc, oldBase, newBase string) string {
	oldBase = strings.TrimRight(oldBase, "/")
	newBase = strings.TrimRight(newBase, "/")
	if oldBase == "" || oldBase == newBase {
		return doc
	}
	for _, attr := range []string{"href", "content", "src"} {
		doc = strings.ReplaceAll(doc, attr+`="`+oldBase, attr+`="`+newBase)
	}
	return doc
}
