package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pratama/articleforge/internal/domain"
	"github.com/pratama/articleforge/internal/logger"
)

// Variation is one batch-generated article variant for a keyword.
type Variation struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// GenerateBatch requests `variations` variants for every keyword in
// one call and validates the JSON collection that comes back. A parse
// or structural failure retries the whole batch with linearly growing
// backoff; after the retries run out the entire batch fails, no
// partial credit.
func (c *Client) GenerateBatch(ctx context.Context, keywords []string, variations int) (map[string][]Variation, error) {
	if len(keywords) == 0 {
		return map[string][]Variation{}, nil
	}
	if variations < 1 {
		variations = 1
	}

	maxRetries := c.batch.MaxRetries
	if maxRetries < 1 {
		maxRetries = 3
	}
	backoffBase := time.Duration(c.batch.BackoffBaseMs) * time.Millisecond
	if backoffBase <= 0 {
		backoffBase = 2 * time.Second
	}

	lang := detectLanguage(keywords[0])
	prompt := batchPrompt(keywords, variations, lang)

	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		raw, err := c.complete(ctx, systemPrompt(lang), prompt)
		if err == nil {
			var result map[string][]Variation
			result, err = parseBatchJSON(raw)
			if err == nil {
				err = c.validateBatch(ctx, result, keywords, variations)
				if err == nil {
					return result, nil
				}
			}
		}

		lastErr = err
		if attempt < maxRetries {
			wait := backoffBase * time.Duration(attempt)
			log.WithFields(logger.Fields{
				"attempt": attempt,
				"wait":    wait.String(),
			}).Warnf("batch generation attempt failed, retrying: %v", err)
			c.sleep(wait)
		}
	}

	return nil, &GenerationError{
		Keyword: strings.Join(keywords, ","),
		Batch:   true,
		Err:     fmt.Errorf("all %d attempts failed: %w", maxRetries, lastErr),
	}
}

// VariationContent lifts one batch variation into renderable content
// under its derived key. The body splits into paragraphs on blank
// lines; the first paragraph becomes the opening, the rest one
// section. The same fallbacks as single generation apply.
func VariationContent(derivedKey, keyword string, v Variation) *domain.Content {
	paragraphs := splitParagraphs(v.Body)

	content := &domain.Content{
		Keyword: derivedKey,
		Title:   strings.TrimSpace(v.Title),
		H1:      strings.TrimSpace(v.Title),
	}
	if len(paragraphs) > 0 {
		content.Opening = paragraphs[0]
	}
	if len(paragraphs) > 1 {
		content.Sections = []domain.Section{{
			Heading:    content.Title,
			Paragraphs: paragraphs[1:],
		}}
	}

	applyFallbacks(content, keyword, detectLanguage(keyword))
	return content
}

func splitParagraphs(body string) []string {
	var out []string
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(strings.ReplaceAll(block, "\n", " "))
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

// parseBatchJSON unmarshals the response, shedding the code fences
// models like to wrap JSON in.
func parseBatchJSON(raw string) (map[string][]Variation, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var result map[string][]Variation
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("batch response is not valid JSON: %w", err)
	}
	return result, nil
}

// validateBatch enforces the structural contract: every requested
// keyword present, every record carrying a title and a body. A keyword
// with fewer variants than requested passes as long as it reaches the
// configured fill ratio; below that it still passes, with a warning.
func (c *Client) validateBatch(ctx context.Context, result map[string][]Variation, keywords []string, variations int) error {
	minFill := c.batch.MinFill
	if minFill <= 0 || minFill > 1 {
		minFill = 0.5
	}
	floor := int(float64(variations) * minFill)

	log := logger.FromContext(ctx)

	for _, keyword := range keywords {
		variants, ok := result[keyword]
		if !ok {
			return fmt.Errorf("batch response is missing keyword %q", keyword)
		}
		if len(variants) == 0 {
			return fmt.Errorf("batch response has no variations for %q", keyword)
		}
		for i, v := range variants {
			if strings.TrimSpace(v.Title) == "" || strings.TrimSpace(v.Body) == "" {
				return fmt.Errorf("batch variation %d for %q is missing title or body", i, keyword)
			}
		}
		if len(variants) < floor {
			log.WithFields(logger.Fields{
				logger.FieldKeyword: keyword,
				"got":               len(variants),
				"want":              variations,
			}).Warn("batch returned fewer variations than requested")
		}
	}
	return nil
}
