package generator

import (
	"strings"

	"github.com/pratama/articleforge/internal/domain"
)

// parseDelimiterText walks the labeled-block response line by line.
// Models wrap labels in markdown despite instructions, so every line
// is de-markdowned first. Unknown lines attach to the block being
// built; nothing in the input can make parsing fail.
func parseDelimiterText(raw, keyword string) *domain.Content {
	content := &domain.Content{Keyword: keyword}

	var current *domain.Section
	var inOpening bool
	var stray []string

	flushSection := func() {
		if current != nil {
			content.Sections = append(content.Sections, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = cleanMarkdown(line)
		if line == "" {
			continue
		}
		if line == "---" {
			inOpening = false
			flushSection()
			continue
		}

		label, value := splitLabel(line)
		switch label {
		case "TITLE":
			inOpening = false
			flushSection()
			content.Title = value
		case "META_DESCRIPTION":
			inOpening = false
			flushSection()
			content.MetaDescription = value
		case "KEYWORDS":
			inOpening = false
			flushSection()
			content.Keywords = splitList(value)
		case "H1":
			inOpening = false
			flushSection()
			content.H1 = value
		case "OPENING_PARAGRAPH":
			flushSection()
			content.Opening = value
			inOpening = true
		case "SECTION":
			inOpening = false
			flushSection()
			current = &domain.Section{Heading: value}
		case "RELATED_TOPIC":
			inOpening = false
			flushSection()
			title, desc := splitPipe(value)
			if title != "" {
				content.RelatedTopics = append(content.RelatedTopics, domain.RelatedTopic{
					Title:       title,
					Description: desc,
				})
			}
		default:
			switch {
			case current != nil:
				current.Paragraphs = append(current.Paragraphs, line)
			case inOpening:
				content.Opening += " " + line
			default:
				stray = append(stray, line)
			}
		}
	}
	flushSection()

	// A response with no SECTION blocks still had body text somewhere;
	// keep it rather than publish an empty page.
	if len(content.Sections) == 0 && len(stray) > 0 {
		content.Sections = append(content.Sections, domain.Section{
			Heading:    content.Title,
			Paragraphs: stray,
		})
	}

	return content
}

// cleanMarkdown strips the markdown decoration models sneak in:
// **LABEL:** emphasis, heading hashes and list bullets.
func cleanMarkdown(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#")
	line = strings.TrimSpace(line)
	line = strings.ReplaceAll(line, "**", "")
	line = strings.TrimPrefix(line, "- ")
	line = strings.TrimPrefix(line, "* ")
	return strings.TrimSpace(line)
}

// splitLabel returns (LABEL, value) for "LABEL: value" lines, or
// ("", line) when the prefix is not a known label.
func splitLabel(line string) (string, string) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", line
	}
	label := strings.ToUpper(strings.TrimSpace(line[:idx]))
	switch label {
	case "TITLE", "META_DESCRIPTION", "KEYWORDS", "H1", "OPENING_PARAGRAPH", "SECTION", "RELATED_TOPIC":
		return label, strings.TrimSpace(line[idx+1:])
	}
	return "", line
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitPipe(value string) (string, string) {
	if idx := strings.Index(value, "|"); idx >= 0 {
		return strings.TrimSpace(value[:idx]), strings.TrimSpace(value[idx+1:])
	}
	return strings.TrimSpace(value), ""
}

// applyFallbacks fills whatever the model left out so every parse
// result is renderable. Title and H1 borrow from each other, with the
// longer candidate preferred when the primary is a stub.
func applyFallbacks(content *domain.Content, keyword, lang string) {
	titleCase := titleCaseKeyword(keyword)

	content.Title = pickPowerful(content.Title, content.H1)
	if content.Title == "" {
		if lang == "id" {
			content.Title = titleCase + ": Panduan Lengkap"
		} else {
			content.Title = titleCase + ": A Complete Guide"
		}
	}
	if content.H1 == "" {
		content.H1 = content.Title
	}

	if content.MetaDescription == "" {
		if lang == "id" {
			content.MetaDescription = "Pelajari semua tentang " + keyword + ": jenis, manfaat, dan tips memilih yang tepat untuk kebutuhan Anda."
		} else {
			content.MetaDescription = "Learn everything about " + keyword + ": types, benefits, and tips for choosing the right one for your needs."
		}
	}
	if len(content.MetaDescription) > 155 {
		content.MetaDescription = content.MetaDescription[:152] + "..."
	}

	if len(content.Keywords) == 0 {
		content.Keywords = []string{keyword}
	}

	if content.Opening == "" {
		if lang == "id" {
			content.Opening = titleCase + " adalah topik penting dalam industri kemasan. Artikel ini membahasnya secara menyeluruh."
		} else {
			content.Opening = titleCase + " is an important topic in the packaging industry. This article covers it in depth."
		}
	}

	if len(content.RelatedTopics) == 0 {
		content.RelatedTopics = defaultRelatedTopics(lang)
	}
}

// pickPowerful prefers the primary heading but swaps in the alternate
// when the primary is a stub under 30 characters and the alternate
// says more.
func pickPowerful(primary, alternate string) string {
	if primary == "" {
		return alternate
	}
	if len(primary) < 30 && len(alternate) > len(primary) {
		return alternate
	}
	return primary
}

func titleCaseKeyword(keyword string) string {
	words := strings.Fields(keyword)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func defaultRelatedTopics(lang string) []domain.RelatedTopic {
	if lang == "id" {
		return []domain.RelatedTopic{
			{Title: "Jenis Kemasan Makanan", Description: "Kenali ragam kemasan makanan dan kegunaannya."},
			{Title: "Kemasan Ramah Lingkungan", Description: "Pilihan kemasan berkelanjutan untuk bisnis Anda."},
			{Title: "Tips Memilih Supplier Kemasan", Description: "Cara menemukan pemasok kemasan yang terpercaya."},
		}
	}
	return []domain.RelatedTopic{
		{Title: "Food Packaging Types", Description: "An overview of food packaging formats and their uses."},
		{Title: "Sustainable Packaging", Description: "Eco-friendly packaging options for your business."},
		{Title: "Choosing a Packaging Supplier", Description: "How to find a reliable packaging vendor."},
	}
}
