package generator

import (
	"fmt"
	"strings"
)

// indonesianWords is the stopword list used to guess the prompt
// language from a keyword. Any hit means Indonesian; otherwise the
// prompt defaults to English.
var indonesianWords = map[string]struct{}{
	"dan": {}, "atau": {}, "yang": {}, "untuk": {}, "dari": {},
	"dengan": {}, "pada": {}, "cara": {}, "harga": {}, "jenis": {},
	"kemasan": {}, "plastik": {}, "kertas": {}, "makanan": {},
	"terbaik": {}, "murah": {}, "jual": {}, "beli": {}, "apa": {},
	"adalah": {}, "di": {}, "ke": {}, "ini": {}, "itu": {},
}

// detectLanguage guesses "id" or "en" from the keyword's words.
func detectLanguage(keyword string) string {
	for _, word := range strings.Fields(strings.ToLower(keyword)) {
		if _, ok := indonesianWords[word]; ok {
			return "id"
		}
	}
	return "en"
}

func systemPrompt(lang string) string {
	if lang == "id" {
		return "Anda adalah penulis konten SEO profesional untuk industri kemasan. " +
			"Tulis artikel yang informatif, akurat, dan mudah dibaca. " +
			"Ikuti format output yang diminta dengan tepat, tanpa teks tambahan di luar format."
	}
	return "You are a professional SEO content writer for the packaging industry. " +
		"Write informative, accurate, easy-to-read articles. " +
		"Follow the requested output format exactly, with no extra text outside it."
}

// articlePrompt builds the delimiter-text request for one keyword. The
// response is plain text with labeled blocks separated by --- lines;
// no JSON, so a partially malformed response still parses.
func articlePrompt(keyword, lang string) string {
	if lang == "id" {
		return fmt.Sprintf(`Tulis artikel lengkap tentang "%s" dalam format berikut, persis seperti ini:

TITLE: judul artikel yang menarik (maksimal 60 karakter)
META_DESCRIPTION: deskripsi meta untuk mesin pencari (maksimal 155 karakter)
KEYWORDS: kata kunci terkait, dipisah koma
H1: judul utama halaman
OPENING_PARAGRAPH: paragraf pembuka yang kuat (2-3 kalimat)
---
SECTION: judul bagian pertama
paragraf isi bagian ini
paragraf lanjutan jika perlu
---
SECTION: judul bagian kedua
paragraf isi
---
(lanjutkan dengan 4-6 SECTION total)
---
RELATED_TOPIC: judul topik terkait | deskripsi singkat satu kalimat
RELATED_TOPIC: judul topik terkait lain | deskripsi singkat

Gunakan bahasa Indonesia. Jangan gunakan format markdown.`, keyword)
	}
	return fmt.Sprintf(`Write a complete article about "%s" in exactly this format:

TITLE: compelling article title (60 characters max)
META_DESCRIPTION: search engine meta description (155 characters max)
KEYWORDS: related keywords, comma separated
H1: main page heading
OPENING_PARAGRAPH: strong opening paragraph (2-3 sentences)
---
SECTION: first section heading
section body paragraph
further paragraph if needed
---
SECTION: second section heading
section body
---
(continue with 4-6 SECTION blocks total)
---
RELATED_TOPIC: related topic title | short one-sentence description
RELATED_TOPIC: another related topic | short description

Write in English. Do not use markdown formatting.`, keyword)
}

// batchPrompt asks for V variations of each keyword as one JSON object.
func batchPrompt(keywords []string, variations int, lang string) string {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	list := strings.Join(quoted, ", ")

	if lang == "id" {
		return fmt.Sprintf(`Untuk setiap kata kunci berikut: %s
buat %d variasi artikel singkat.

Balas HANYA dengan objek JSON valid, tanpa teks lain, dengan bentuk:
{"kata kunci": [{"title": "judul variasi", "body": "isi artikel 3-5 paragraf"}, ...]}

Setiap kata kunci harus menjadi key persis seperti tertulis, dengan array berisi %d objek.
Gunakan bahasa Indonesia.`, list, variations, variations)
	}
	return fmt.Sprintf(`For each of the following keywords: %s
create %d short article variations.

Reply ONLY with a valid JSON object, no other text, shaped as:
{"keyword": [{"title": "variation title", "body": "article body of 3-5 paragraphs"}, ...]}

Every keyword must appear as a key exactly as written, with an array of %d objects.
Write in English.`, list, variations, variations)
}
