package generator

import (
	"strings"
	"testing"
)

const sampleResponse = `TITLE: Kemasan Makanan Ramah Lingkungan untuk Bisnis Anda
META_DESCRIPTION: Panduan memilih kemasan makanan ramah lingkungan yang aman dan terjangkau.
KEYWORDS: kemasan makanan, kemasan ramah lingkungan, food grade
H1: Kemasan Makanan Ramah Lingkungan
OPENING_PARAGRAPH: Kemasan makanan yang tepat menjaga kualitas produk.
Kalimat kedua pembuka.
---
SECTION: Jenis Kemasan yang Tersedia
Paragraf pertama bagian ini.
Paragraf kedua bagian ini.
---
SECTION: Tips Memilih Kemasan
Satu paragraf saja.
---
RELATED_TOPIC: Kemasan Kertas Kraft | Alternatif kemasan dari kertas daur ulang.
RELATED_TOPIC: Standar Food Grade | Apa arti sertifikasi food grade.`

func TestParseDelimiterText(t *testing.T) {
	content := parseDelimiterText(sampleResponse, "kemasan makanan")

	if content.Title != "Kemasan Makanan Ramah Lingkungan untuk Bisnis Anda" {
		t.Errorf("title: %q", content.Title)
	}
	if content.H1 != "Kemasan Makanan Ramah Lingkungan" {
		t.Errorf("h1: %q", content.H1)
	}
	if len(content.Keywords) != 3 {
		t.Errorf("keywords: %v", content.Keywords)
	}
	if !strings.Contains(content.Opening, "Kalimat kedua") {
		t.Errorf("multi-line opening not joined: %q", content.Opening)
	}
	if len(content.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(content.Sections))
	}
	if content.Sections[0].Heading != "Jenis Kemasan yang Tersedia" {
		t.Errorf("section heading: %q", content.Sections[0].Heading)
	}
	if len(content.Sections[0].Paragraphs) != 2 {
		t.Errorf("section paragraphs: %v", content.Sections[0].Paragraphs)
	}
	if len(content.RelatedTopics) != 2 {
		t.Fatalf("expected 2 related topics, got %d", len(content.RelatedTopics))
	}
	if content.RelatedTopics[0].Title != "Kemasan Kertas Kraft" {
		t.Errorf("related topic title: %q", content.RelatedTopics[0].Title)
	}
	if content.RelatedTopics[0].Description != "Alternatif kemasan dari kertas daur ulang." {
		t.Errorf("related topic description: %q", content.RelatedTopics[0].Description)
	}
}

func TestParseDelimiterTextMarkdownCleanup(t *testing.T) {
	raw := "**TITLE:** Some Decorated Title\n## SECTION: Heading Here\n- bullet paragraph\n"
	content := parseDelimiterText(raw, "kw")

	if content.Title != "Some Decorated Title" {
		t.Errorf("markdown label not cleaned: %q", content.Title)
	}
	if len(content.Sections) != 1 || content.Sections[0].Heading != "Heading Here" {
		t.Fatalf("markdown section not parsed: %+v", content.Sections)
	}
	if content.Sections[0].Paragraphs[0] != "bullet paragraph" {
		t.Errorf("bullet prefix not stripped: %q", content.Sections[0].Paragraphs[0])
	}
}

func TestParseDelimiterTextStrayBody(t *testing.T) {
	raw := "TITLE: Only A Title\njust some body text\nmore body text"
	content := parseDelimiterText(raw, "kw")
	if len(content.Sections) != 1 {
		t.Fatalf("stray body should become a fallback section, got %+v", content.Sections)
	}
	if len(content.Sections[0].Paragraphs) != 2 {
		t.Errorf("stray paragraphs lost: %v", content.Sections[0].Paragraphs)
	}
}

func TestApplyFallbacks(t *testing.T) {
	t.Run("everything missing", func(t *testing.T) {
		content := parseDelimiterText("", "kemasan plastik")
		applyFallbacks(content, "kemasan plastik", "id")

		if content.Title == "" || content.H1 == "" {
			t.Error("title and h1 must always be filled")
		}
		if content.MetaDescription == "" {
			t.Error("meta description must be filled")
		}
		if len(content.Keywords) != 1 || content.Keywords[0] != "kemasan plastik" {
			t.Errorf("keyword fallback: %v", content.Keywords)
		}
		if content.Opening == "" {
			t.Error("opening must be composed")
		}
		if len(content.RelatedTopics) == 0 {
			t.Error("default related topics expected")
		}
	})

	t.Run("h1 fills missing title", func(t *testing.T) {
		content := parseDelimiterText("H1: A Heading That Stands Alone Nicely", "kw")
		applyFallbacks(content, "kw", "en")
		if content.Title != "A Heading That Stands Alone Nicely" {
			t.Errorf("title should borrow the h1: %q", content.Title)
		}
	})

	t.Run("long meta truncated", func(t *testing.T) {
		content := parseDelimiterText("META_DESCRIPTION: "+strings.Repeat("x", 300), "kw")
		applyFallbacks(content, "kw", "en")
		if len(content.MetaDescription) > 155 {
			t.Errorf("meta description too long: %d chars", len(content.MetaDescription))
		}
	})
}

func TestPickPowerful(t *testing.T) {
	tests := []struct {
		name, primary, alternate, want string
	}{
		{"primary empty", "", "alt", "alt"},
		{"primary kept", "A Title That Is Long Enough To Keep", "short", "A Title That Is Long Enough To Keep"},
		{"short stub swapped", "Stub", "A Much More Powerful Alternative Heading", "A Much More Powerful Alternative Heading"},
		{"both short", "Stub", "Stb", "Stub"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickPowerful(tt.primary, tt.alternate); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		keyword string
		want    string
	}{
		{"harga kemasan plastik", "id"},
		{"cara memilih kemasan makanan", "id"},
		{"sustainable food packaging", "en"},
		{"corrugated boxes wholesale", "en"},
	}
	for _, tt := range tests {
		if got := detectLanguage(tt.keyword); got != tt.want {
			t.Errorf("detectLanguage(%q) = %s, want %s", tt.keyword, got, tt.want)
		}
	}
}
