// Package pipeline orchestrates a batch ingest run: list source items per
// category, skip already-tracked items, transform survivors into product
// rows, apply the tag policy, and upsert into the catalog. Tracking is
// recorded only after a successful upsert so a crash mid-run re-processes
// rather than loses items.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"refit/internal/catalog"
	"refit/internal/config"
	"refit/internal/logging"
	"refit/internal/services"
	"refit/internal/source"
	"refit/internal/tagging"
	"refit/internal/tagpolicy"
	"refit/internal/tracking"
	"refit/internal/transform"
)

// Options controls one run.
type Options struct {
	// Categories limits the run to the named source categories. Empty means
	// all configured categories.
	Categories []string
	// Limit caps items taken per category. Zero falls back to the configured
	// products_per_category; negative means unlimited.
	Limit int
	// Force processes items even when the tracking store says they are
	// already ingested.
	Force bool
	// DryRun exercises the transform and policy stages but writes nothing to
	// the catalog or tracking store.
	DryRun bool
	// SkipImages drops image paths from the stored rows.
	SkipImages bool
}

// Summary aggregates the outcome of a run.
type Summary struct {
	RunID           string
	Processed       int
	Skipped         int
	ProductsWritten int
	Failed          map[services.FailureKind]int
	Elapsed         time.Duration
}

// FailedTotal sums failures across kinds.
func (s Summary) FailedTotal() int {
	total := 0
	for _, n := range s.Failed {
		total += n
	}
	return total
}

// Runner wires the ingest stages together. The tracking store may be nil, in
// which case every item is processed.
type Runner struct {
	cfg         *config.Config
	lister      source.Lister
	transformer *transform.Transformer
	policy      *tagpolicy.Engine
	catalog     catalog.Store
	tracking    *tracking.Store
	suggester   tagging.Suggester
	logger      *slog.Logger
}

// NewRunner builds a Runner from its stage implementations.
func NewRunner(cfg *config.Config, lister source.Lister, store catalog.Store, tracker *tracking.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:         cfg,
		lister:      lister,
		transformer: transform.New(cfg, logger),
		policy:      tagpolicy.New(cfg),
		catalog:     store,
		tracking:    tracker,
		logger:      logger.With(logging.FieldComponent, "pipeline"),
	}
}

// UseSuggester attaches a tag-suggestion provider. Suggestions join the raw
// payload before policy application and are recorded in the AI overlay.
func (r *Runner) UseSuggester(s tagging.Suggester) {
	r.suggester = s
}

// Run executes one batch ingest. A file lock under the data directory keeps
// concurrent runs from interleaving writes; a second invocation fails fast
// instead of queueing.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := r.logger.With(logging.FieldRunID, runID)

	if err := os.MkdirAll(r.cfg.Paths.DataDir, 0o755); err != nil {
		return Summary{RunID: runID}, services.Wrap(services.ErrConfiguration, "pipeline", "datadir", r.cfg.Paths.DataDir, err)
	}
	lock := flock.New(filepath.Join(r.cfg.Paths.DataDir, "refit.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{RunID: runID}, services.Wrap(services.ErrStoreUnavailable, "pipeline", "lock", lock.Path(), err)
	}
	if !locked {
		return Summary{RunID: runID}, services.Wrap(services.ErrConfiguration, "pipeline", "lock",
			"another ingest run holds the batch lock", nil)
	}
	defer lock.Unlock()

	categories, err := r.resolveCategories(opts.Categories)
	if err != nil {
		return Summary{RunID: runID}, err
	}

	start := time.Now()
	summary := Summary{RunID: runID, Failed: make(map[services.FailureKind]int)}

	var items []source.RawProduct
	for _, category := range categories {
		listed, err := r.lister.ListCategory(ctx, category)
		if err != nil {
			logger.Error("category listing failed",
				logging.FieldCategory, category, "error", err)
			summary.Failed[services.ClassifyFailure(err)]++
			continue
		}
		limit := opts.Limit
		if limit == 0 {
			limit = r.cfg.Pipeline.ProductsPerCategory
		}
		if limit > 0 && len(listed) > limit {
			listed = listed[:limit]
		}
		items = append(items, listed...)
	}

	workers := r.cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}

	// Items are partitioned by product id hash so that two listings sharing
	// an id (and therefore a catalog row) are always handled by the same
	// worker, in order.
	partitions := make([][]source.RawProduct, workers)
	for _, item := range items {
		h := fnv.New32a()
		h.Write([]byte(item.ID))
		idx := int(h.Sum32()) % workers
		if idx < 0 {
			idx += workers
		}
		partitions[idx] = append(partitions[idx], item)
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for _, partition := range partitions {
		if len(partition) == 0 {
			continue
		}
		group.Go(func() error {
			for _, item := range partition {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				outcome := r.processItem(groupCtx, logger, item, opts)
				mu.Lock()
				switch {
				case outcome.skipped:
					summary.Skipped++
				case outcome.err != nil:
					summary.Failed[services.ClassifyFailure(outcome.err)]++
				default:
					summary.Processed++
					summary.ProductsWritten += outcome.written
				}
				mu.Unlock()
			}
			return nil
		})
	}
	runErr := group.Wait()

	summary.Elapsed = time.Since(start)
	logger.Info("run complete",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.FailedTotal(),
		"products_written", summary.ProductsWritten,
		"elapsed", summary.Elapsed.Round(time.Millisecond))
	return summary, runErr
}

type itemOutcome struct {
	skipped bool
	written int
	err     error
}

func (r *Runner) processItem(ctx context.Context, logger *slog.Logger, item source.RawProduct, opts Options) itemOutcome {
	ctx = services.WithProductID(ctx, item.ID)
	ctx = services.WithCategory(ctx, item.Category)
	itemLogger := logger.With(
		logging.FieldProductID, item.ID,
		logging.FieldCategory, item.Category)

	priceCents, priceErr := transform.ParsePriceCents(item.Price)
	if r.tracking != nil {
		process, err := r.tracking.ShouldProcess(ctx, item.ID, priceCents, opts.Force)
		if err != nil {
			// Tracking failures degrade to always-process.
			itemLogger.Warn("tracking lookup failed, processing anyway", "error", err)
		}
		if err == nil && !process {
			itemLogger.Debug("skipping already-tracked item")
			return itemOutcome{skipped: true}
		}
	}
	if priceErr != nil {
		itemLogger.Error("item rejected", "error", priceErr)
		return itemOutcome{err: priceErr}
	}

	products, err := r.transformer.Transform(item)
	if err != nil {
		itemLogger.Error("transform failed", "error", err)
		return itemOutcome{err: err}
	}

	written := 0
	for _, product := range products {
		if opts.SkipImages {
			product.ImagePaths = nil
		}
		suggestions := r.suggest(ctx, itemLogger, product)
		if len(suggestions) > 0 {
			if product.TagsAIRaw == nil {
				product.TagsAIRaw = make(catalog.RawTagPayload)
			}
			for field, scores := range tagging.Payload(suggestions) {
				product.TagsAIRaw[field] = append(product.TagsAIRaw[field], scores...)
			}
		}
		if err := r.applyPolicy(ctx, product); err != nil {
			itemLogger.Error("policy application failed", "error", err)
			return itemOutcome{err: err}
		}
		if opts.DryRun {
			itemLogger.Info("dry run, skipping write",
				"status", string(product.CurationStatus))
			written++
			continue
		}
		if err := r.catalog.Upsert(ctx, product); err != nil {
			itemLogger.Error("catalog upsert failed", "error", err)
			return itemOutcome{err: services.Wrap(services.ErrStoreUnavailable, "pipeline", "upsert", product.ID, err)}
		}
		r.recordSuggestions(ctx, itemLogger, product.ID, suggestions)
		written++
	}

	if opts.DryRun {
		return itemOutcome{written: written}
	}

	if r.tracking != nil {
		err := r.tracking.RecordProcessed(ctx, tracking.Snapshot{
			ProductID:  item.ID,
			SourceURL:  item.URL,
			Category:   item.Category,
			Name:       item.Name,
			PriceCents: priceCents,
		})
		if err != nil {
			// The catalog write already succeeded; the item re-processes on
			// the next run, which the idempotent upsert absorbs.
			itemLogger.Warn("tracking record failed", "error", err)
		}
	}
	itemLogger.Info("item ingested", "products", written)
	return itemOutcome{written: written}
}

// suggest asks the attached provider for vision tags. Provider failures are
// logged and treated as an empty suggestion set; the text-inferred payload
// still flows through the policy.
func (r *Runner) suggest(ctx context.Context, logger *slog.Logger, product *catalog.Product) []tagging.Suggestion {
	if r.suggester == nil {
		return nil
	}
	suggestions, err := r.suggester.SuggestTags(ctx, tagging.Input{
		ProductID:   product.ID,
		Name:        product.Name,
		Category:    product.Category,
		Description: product.Description,
		Materials:   product.Materials,
		ImagePaths:  product.ImagePaths,
	})
	if err != nil {
		logger.Warn("tag suggestion failed", "error", err)
		return nil
	}
	return suggestions
}

// recordSuggestions appends the provider output to the AI overlay for audit.
// The overlay is advisory; failures here do not fail the item.
func (r *Runner) recordSuggestions(ctx context.Context, logger *slog.Logger, productID string, suggestions []tagging.Suggestion) {
	for _, s := range suggestions {
		err := r.catalog.AddAITag(ctx, &catalog.AITag{
			ID:         uuid.New(),
			ProductID:  productID,
			FieldName:  s.Field,
			FieldValue: s.Value,
			ModelID:    s.ModelID,
			Confidence: s.Confidence,
			Reasoning:  s.Reasoning,
		})
		if err != nil {
			logger.Warn("recording ai tag failed", "field", s.Field, "error", err)
		}
	}
}

// applyPolicy thresholds the product's raw payload into canonical tags. An
// existing approved row with a current policy stamp is left authoritative;
// a stale stamp demotes to needs_review only when configured to.
func (r *Runner) applyPolicy(ctx context.Context, product *catalog.Product) error {
	existing, err := r.catalog.GetByID(ctx, product.ID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return services.Wrap(services.ErrStoreUnavailable, "pipeline", "lookup", product.ID, err)
	}

	if existing != nil && existing.CurationStatus == catalog.StatusApproved {
		mismatch, demote := r.policy.CheckVersion(existing)
		if !mismatch || !demote {
			// Keep the human-approved payload untouched.
			product.TagsFinal = existing.TagsFinal
			product.PolicyVersion = existing.PolicyVersion
			product.CurationStatus = existing.CurationStatus
			return nil
		}
		result := r.evaluate(product)
		result.Status = catalog.StatusNeedsReview
		stamp(product, result)
		return nil
	}

	stamp(product, r.evaluate(product))
	return nil
}

func (r *Runner) evaluate(product *catalog.Product) tagpolicy.Result {
	return r.policy.Apply(product.TagsAIRaw, tagpolicy.Input{
		Category:    product.Category,
		ProductName: product.Name,
	})
}

func stamp(product *catalog.Product, result tagpolicy.Result) {
	tags := result.Tags
	product.TagsFinal = &tags
	product.PolicyVersion = tags.PolicyVersion
	product.CurationStatus = result.Status
}

func (r *Runner) resolveCategories(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return r.cfg.CategoryKeys(), nil
	}
	for _, name := range requested {
		if _, ok := r.cfg.Source.Categories[name]; !ok {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "categories",
				fmt.Sprintf("unknown category %q", name), nil)
		}
	}
	return requested, nil
}
