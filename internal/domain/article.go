package domain

// Section is one H2 block of generated article content.
type Section struct {
	Heading    string
	Paragraphs []string
}

// RelatedTopic is a suggested follow-up article surfaced in the
// sidebar and the related-articles grid.
type RelatedTopic struct {
	Title       string
	Description string
}

// Content is the raw generation output for one keyword, before it is
// merged into the page template.
type Content struct {
	Keyword         string
	Title           string
	MetaDescription string
	Keywords        []string
	H1              string
	Opening         string
	Sections        []Section
	RelatedTopics   []RelatedTopic
}

// Article is a rendered content artifact ready for publishing. The ID
// is process-unique and embedded in the document; it doubles as the
// provenance marker for the output key.
type Article struct {
	ID           string
	Keyword      string
	Title        string
	Slug         string
	Filename     string
	CanonicalURL string
	HTML         string
}
