// Package article merges generated content into the site's HTML page
// template. The template uses {{PLACEHOLDER}} markers substituted with
// a single strings.Replacer pass; no template engine is involved, so
// content can never inject template directives.
package article

import (
	_ "embed"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pratama/articleforge/internal/config"
	"github.com/pratama/articleforge/internal/domain"
)

//go:embed template.html
var defaultTemplate string

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Renderer turns domain.Content into a publishable domain.Article.
type Renderer struct {
	template string
	siteName string
	baseURL  string
	author   string

	// now is swappable in tests for stable dates.
	now func() time.Time
}

// NewRenderer loads the page template. An empty template path selects
// the embedded default; a configured path that cannot be read is a
// fatal configuration error.
func NewRenderer(cfg *config.RunConfig) (*Renderer, error) {
	tmpl := defaultTemplate
	if cfg.TemplateFile != "" {
		data, err := os.ReadFile(cfg.TemplateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file: %w", err)
		}
		tmpl = string(data)
	}

	return &Renderer{
		template: tmpl,
		siteName: cfg.SiteName,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		author:   cfg.SiteName + " Editorial",
		now:      time.Now,
	}, nil
}

// Render produces the final HTML document plus the derived identity
// fields: slug, filename, canonical URL and the embedded article ID.
func (r *Renderer) Render(content *domain.Content) (*domain.Article, error) {
	if content == nil || content.Keyword == "" {
		return nil, fmt.Errorf("cannot render empty content")
	}

	slug := Slugify(content.Keyword)
	if slug == "" {
		return nil, fmt.Errorf("keyword %q produces an empty slug", content.Keyword)
	}

	id := uuid.NewString()
	filename := slug + ".html"
	canonical := r.baseURL + "/articles/" + filename

	now := r.now()

	replacer := strings.NewReplacer(
		"{{TITLE}}", html.EscapeString(content.Title),
		"{{META_DESCRIPTION}}", html.EscapeString(content.MetaDescription),
		"{{KEYWORDS}}", html.EscapeString(strings.Join(content.Keywords, ", ")),
		"{{AUTHOR}}", html.EscapeString(r.author),
		"{{ARTICLE_ID}}", id,
		"{{CANONICAL_URL}}", canonical,
		"{{OG_TITLE}}", html.EscapeString(content.Title),
		"{{OG_DESCRIPTION}}", html.EscapeString(content.MetaDescription),
		"{{OG_URL}}", canonical,
		"{{SITE_NAME}}", html.EscapeString(r.siteName),
		"{{BASE_URL}}", r.baseURL,
		"{{DATE_ISO}}", now.Format("2006-01-02"),
		"{{DATE_FORMATTED}}", formatDate(now),
		"{{CURRENT_YEAR}}", fmt.Sprintf("%d", now.Year()),
		"{{HEADING}}", html.EscapeString(content.H1),
		"{{BREADCRUMBS}}", buildBreadcrumbs(r.baseURL, content.H1),
		"{{CONTENT}}", buildBody(content),
		"{{VIDEO_GALLERY}}", "",
		"{{RELATED_ARTICLES}}", buildRelatedCards(content.RelatedTopics),
		"{{SIDEBAR}}", buildSidebar(content.RelatedTopics, r.baseURL),
		"{{FOOTER_LINKS}}", buildFooterLinks(r.baseURL),
		"{{INTERNAL_LINKS_COUNT}}", fmt.Sprintf("%d", len(content.RelatedTopics)),
	)

	return &domain.Article{
		ID:           id,
		Keyword:      content.Keyword,
		Title:        content.Title,
		Slug:         slug,
		Filename:     filename,
		CanonicalURL: canonical,
		HTML:         replacer.Replace(r.template),
	}, nil
}

// Slugify lowers the keyword and collapses every non-alphanumeric run
// into a single hyphen.
func Slugify(keyword string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(keyword), "-")
	return strings.Trim(slug, "-")
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}
