// Package service orchestrates a publishing run: load keywords, fan
// them through the worker pool, and finalize the sitemap. Per-item
// failures are recorded and skipped past; only pre-flight problems
// abort a run.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pratama/articleforge/internal/article"
	"github.com/pratama/articleforge/internal/checkpoint"
	"github.com/pratama/articleforge/internal/config"
	"github.com/pratama/articleforge/internal/domain"
	"github.com/pratama/articleforge/internal/generator"
	"github.com/pratama/articleforge/internal/indexer"
	"github.com/pratama/articleforge/internal/logger"
	"github.com/pratama/articleforge/internal/publisher"
	"github.com/pratama/articleforge/internal/scheduler"
	"github.com/pratama/articleforge/internal/sitemap"
	"github.com/pratama/articleforge/internal/source"
)

// batchChunkSize bounds how many keywords share one batch-variations
// call, keeping the request inside the model's token budget.
const batchChunkSize = 10

// Generator is the content generation dependency.
type Generator interface {
	Generate(ctx context.Context, keyword string) (*domain.Content, error)
	GenerateBatch(ctx context.Context, keywords []string, variations int) (map[string][]generator.Variation, error)
}

// Renderer is the template rendering dependency.
type Renderer interface {
	Render(content *domain.Content) (*domain.Article, error)
}

// Publisher is the multi-destination upload dependency.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte, contentType string) []domain.PublishResult
}

// Notifier is the optional indexing dependency.
type Notifier interface {
	Notify(ctx context.Context, url string, kind indexer.Kind) error
}

// RunService wires every pipeline stage for one batch invocation.
type RunService struct {
	cfg       *config.Config
	store     checkpoint.Store
	generator Generator
	renderer  Renderer
	publisher Publisher
	notifier  Notifier
	stats     *domain.RunStats
	log       *logger.Logger

	variations   int
	relatedDepth int
	dryRun       bool

	mu       sync.Mutex
	entries  []domain.SitemapEntry
	variants map[string]*domain.Content
	seen     map[string]struct{}
	related  []domain.JobItem
}

// Options carries the per-run knobs set from CLI flags.
type Options struct {
	Variations   int
	RelatedDepth int
	DryRun       bool
}

// NewRunService assembles the orchestrator from its dependencies.
func NewRunService(
	cfg *config.Config,
	store checkpoint.Store,
	gen Generator,
	renderer Renderer,
	pub Publisher,
	notifier Notifier,
	stats *domain.RunStats,
	log *logger.Logger,
	opts Options,
) *RunService {
	return &RunService{
		cfg:          cfg,
		store:        store,
		generator:    gen,
		renderer:     renderer,
		publisher:    pub,
		notifier:     notifier,
		stats:        stats,
		log:          log,
		variations:   opts.Variations,
		relatedDepth: opts.RelatedDepth,
		dryRun:       opts.DryRun,
		variants:     make(map[string]*domain.Content),
		seen:         make(map[string]struct{}),
	}
}

// Run executes the whole pipeline. The returned error is nil even when
// individual items fail; only source loading errors surface, and the
// caller maps those to a non-zero exit.
func (s *RunService) Run(ctx context.Context) error {
	items, err := source.Load(s.cfg.Run.KeywordsFile)
	if err != nil {
		return err
	}

	s.log.WithFields(logger.Fields{
		logger.FieldCount: len(items),
		"workers":         s.cfg.Run.Workers,
	}).Info("starting publishing run")

	s.mu.Lock()
	for _, item := range items {
		s.seen[item.Key] = struct{}{}
	}
	s.mu.Unlock()

	if s.variations > 0 {
		items = append(items, s.pregenerate(ctx, items)...)
	}
	s.stats.AddTotal(len(items))

	scheduler.Run(ctx, items, s.cfg.Run.Workers, s.processItem)

	// Fan out over related topics collected during the pass. Each wave
	// runs one hop deeper; the depth guard in enqueueRelated bounds the
	// recursion and the seen set keeps topics from repeating.
	for ctx.Err() == nil {
		wave := s.takeRelated()
		if len(wave) == 0 {
			break
		}
		s.stats.AddTotal(len(wave))
		s.log.WithFields(logger.Fields{
			logger.FieldCount: len(wave),
			"depth":           wave[0].Depth,
		}).Info("generating related-topic articles")
		scheduler.Run(ctx, wave, s.cfg.Run.Workers, s.processItem)
	}

	s.finalize(ctx)
	s.summarize()
	return nil
}

// pregenerate runs batch-variations generation and returns the derived
// items to feed through the normal pipeline. A failed batch fails
// every derived key of its chunk; the primary keywords still go
// through single generation untouched.
func (s *RunService) pregenerate(ctx context.Context, items []domain.JobItem) []domain.JobItem {
	var derived []domain.JobItem

	// Variations are requested whenever any derived key is still
	// pending. The primary's own state does not matter here: a run
	// that finished the primary but died before its variations still
	// resumes them.
	var pending []string
	for _, item := range items {
		if s.needsVariations(item.Key) {
			pending = append(pending, item.Key)
		}
	}

	for start := 0; start < len(pending); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		result, err := s.generator.GenerateBatch(ctx, chunk, s.variations)
		if err != nil {
			if ctx.Err() != nil {
				// interrupted, not broken; the keys stay pending
				return derived
			}
			s.log.WithError(err).Error("batch variation generation failed")
			for _, keyword := range chunk {
				for i := 1; i <= s.variations; i++ {
					key := fmt.Sprintf("%s#%d", keyword, i)
					s.stats.MarkFailed(key)
					s.store.MarkFailed(key)
				}
			}
			s.persist()
			continue
		}

		s.mu.Lock()
		for keyword, variants := range result {
			for i, v := range variants {
				key := fmt.Sprintf("%s#%d", keyword, i+1)
				s.variants[key] = generator.VariationContent(key, keyword, v)
				item := domain.NewJobItem(key)
				item.Kind = domain.ItemKindDerived
				derived = append(derived, item)
			}
		}
		s.mu.Unlock()
	}

	return derived
}

// needsVariations reports whether any derived key of a keyword is
// still pending.
func (s *RunService) needsVariations(keyword string) bool {
	for i := 1; i <= s.variations; i++ {
		if !s.store.IsDone(fmt.Sprintf("%s#%d", keyword, i)) {
			return true
		}
	}
	return false
}

// processItem is the per-item pipeline run inside the worker pool.
func (s *RunService) processItem(ctx context.Context, item domain.JobItem) {
	if ctx.Err() != nil {
		return
	}

	ctx = logger.WithField(ctx, logger.FieldKeyword, item.Key)
	log := logger.FromContext(ctx)

	if s.store.IsDone(item.Key) {
		s.stats.IncSkipped()
		log.Debug("skipping, already in checkpoint")
		return
	}

	s.stats.ItemStarted()
	defer s.stats.ItemFinished()
	started := time.Now()

	content, err := s.contentFor(ctx, item)
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("canceled mid-generation, item stays pending")
			return
		}
		log.WithError(err).Error("generation failed")
		s.fail(ctx, item.Key)
		return
	}
	s.stats.IncGenerated()

	art, err := s.renderer.Render(content)
	if err != nil {
		log.WithError(err).Error("rendering failed")
		s.fail(ctx, item.Key)
		return
	}

	if err := s.writeLocal(art); err != nil {
		log.WithError(err).Warn("failed to write local copy")
	}

	s.enqueueRelated(item, content.RelatedTopics)

	if s.dryRun {
		// no checkpoint write: processed means published, and a dry
		// run publishes nothing
		log.Info("dry run, skipping publish")
		return
	}

	key := "articles/" + art.Filename
	results := s.publisher.Publish(ctx, key, []byte(art.HTML), "text/html")
	for _, r := range results {
		if r.OK {
			s.stats.IncPublished(r.Destination)
		}
	}

	canonical := publisher.CanonicalURL(results)
	if canonical == "" {
		if ctx.Err() != nil {
			log.Warn("canceled mid-publish, item stays pending")
			return
		}
		log.Error("all destinations failed")
		s.fail(ctx, item.Key)
		return
	}

	// When the winning destination serves from a different host than
	// the template was rendered for, retarget the local mirror so its
	// absolute links match the live article.
	if !strings.HasPrefix(canonical, strings.TrimRight(s.cfg.Run.BaseURL, "/")) {
		rewritten := article.RewriteBase(art.HTML, s.cfg.Run.BaseURL, strings.TrimSuffix(canonical, "/"+key))
		art.HTML = rewritten
		if err := s.writeLocal(art); err != nil {
			log.WithError(err).Warn("failed to rewrite local copy")
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, canonical, indexer.KindUpdated); err == nil {
			s.stats.IncIndexed()
		}
	}

	s.mu.Lock()
	s.entries = append(s.entries, domain.SitemapEntry{Loc: canonical})
	s.mu.Unlock()

	s.store.MarkProcessed(item.Key)
	s.persist()

	log.WithFields(logger.Fields{
		"url":                  canonical,
		logger.FieldDurationMs: time.Since(started).Milliseconds(),
	}).Info("article published")
}

// contentFor returns pre-generated content when the batch pass
// produced some for this key, and runs single generation otherwise
// (primaries and related-topic items).
func (s *RunService) contentFor(ctx context.Context, item domain.JobItem) (*domain.Content, error) {
	if item.Kind == domain.ItemKindDerived {
		s.mu.Lock()
		content, ok := s.variants[item.Key]
		s.mu.Unlock()
		if ok {
			return content, nil
		}
	}
	return s.generator.Generate(ctx, item.Key)
}

// enqueueRelated queues this item's related topics as derived work one
// hop deeper, bounded by the configured depth. Topics already queued
// this run or already checkpointed are dropped, so shared topics are
// generated once.
func (s *RunService) enqueueRelated(item domain.JobItem, topics []domain.RelatedTopic) {
	if item.Depth >= s.relatedDepth {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, topic := range topics {
		key := strings.TrimSpace(topic.Title)
		if key == "" {
			continue
		}
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		if s.store.IsDone(key) {
			continue
		}
		s.related = append(s.related, domain.JobItem{
			Key:    key,
			Kind:   domain.ItemKindDerived,
			Status: domain.ItemStatusPending,
			Depth:  item.Depth + 1,
		})
	}
}

func (s *RunService) takeRelated() []domain.JobItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	wave := s.related
	s.related = nil
	return wave
}

// fail records a permanent per-item failure. A canceled context never
// marks anything: interruption leaves items pending, failed is
// reserved for inputs that genuinely broke.
func (s *RunService) fail(ctx context.Context, key string) {
	if ctx.Err() != nil {
		return
	}
	s.stats.MarkFailed(key)
	s.store.MarkFailed(key)
	s.persist()
}

// persist serializes checkpoint writes across workers. A persist
// failure costs resumability, not the run.
func (s *RunService) persist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Persist(); err != nil {
		s.log.WithError(err).Warn("failed to persist checkpoint")
	}
}

func (s *RunService) writeLocal(art *domain.Article) error {
	dir := filepath.Join(s.cfg.Run.OutputDir, "articles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, art.Filename), []byte(art.HTML), 0o644)
}

// finalize merges this run's URLs into the sitemap, saves it, and
// pushes the sitemap through the same destination chain as the
// articles.
func (s *RunService) finalize(ctx context.Context) {
	s.mu.Lock()
	collected := make([]domain.SitemapEntry, len(s.entries))
	copy(collected, s.entries)
	s.mu.Unlock()

	if len(collected) == 0 {
		s.log.Info("no new URLs, sitemap untouched")
		return
	}

	existing := sitemap.Load(s.cfg.Sitemap.Path)
	merged := sitemap.Merge(existing, collected)
	if err := sitemap.Save(s.cfg.Sitemap.Path, merged); err != nil {
		s.log.WithError(err).Error("failed to save sitemap")
		return
	}
	s.log.WithFields(logger.Fields{
		logger.FieldCount: len(merged),
		"added":           len(collected),
	}).Info("sitemap merged")

	if s.dryRun {
		return
	}

	data, err := os.ReadFile(s.cfg.Sitemap.Path)
	if err != nil {
		s.log.WithError(err).Error("failed to read sitemap for publishing")
		return
	}
	results := s.publisher.Publish(ctx, s.cfg.Sitemap.RemoteKey, data, "application/xml")
	canonical := publisher.CanonicalURL(results)
	if canonical == "" {
		s.log.Error("failed to publish sitemap to any destination")
		return
	}
	s.log.WithField("url", canonical).Info("sitemap published")

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, canonical, indexer.KindUpdated); err == nil {
			s.stats.IncIndexed()
		}
	}
}

// summarize logs the run totals including the literal failed key list,
// so a rerun after fixing can be planned from the log alone.
func (s *RunService) summarize() {
	snap := s.stats.Snapshot()
	fields := logger.Fields{
		"total":     snap.Total,
		"generated": snap.Generated,
		"indexed":   snap.Indexed,
		"failed":    snap.Failed,
		"skipped":   snap.Skipped,
	}
	for dest, n := range snap.Published {
		fields["published_"+dest] = n
	}
	s.log.WithFields(fields).Info("run complete")

	if len(snap.FailedKeys) > 0 {
		s.log.WithField("keys", strings.Join(snap.FailedKeys, ", ")).
			Warn("failed keywords")
	}
}
