// Package cascade runs the ordered extraction layers against one page
// snapshot and reconciles their output into a single best-effort record.
//
// Layers 1-5 are cheap and always run; the flyer OCR layer only runs
// when the aggregate confidence gate decides the cheap signals were
// insufficient and a usable image exists. Scores are ordinal trust
// ratings, not calibrated probabilities: comparing them across layers
// is sound only together with the layer-precedence tie-break in Merge.
package cascade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hashapp/scout/internal/cascade/layer"
	"github.com/hashapp/scout/internal/category"
	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/fetch"
	"github.com/hashapp/scout/internal/images"
	"github.com/hashapp/scout/internal/layers"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/monitoring"
	"github.com/hashapp/scout/internal/ocr"
	"github.com/hashapp/scout/internal/page"
)

// maxTextLayers is the last cheap layer number; everything above it sits
// behind the gate.
const maxTextLayers = 5

// Engine is the cascade controller. It is safe for concurrent use: all
// per-extraction state lives on the stack of Extract.
type Engine struct {
	cfg      config.CascadeConfig
	registry *layer.Registry
	selector *images.Selector
	mapper   *category.Mapper
	handle   *ocr.Handle
	metrics  *monitoring.Collector
}

// New wires the standard six-layer cascade from full configuration.
// handle may be nil, in which case the OCR layer is not registered and
// the gate can never fire.
func New(cfg *config.Config, handle *ocr.Handle) *Engine {
	selector := images.NewSelector()
	registry := layer.NewRegistry()
	registry.Register(layers.Structured{})
	registry.Register(layers.MetaTags{})
	registry.Register(layers.Semantic{})
	registry.Register(layers.TextPattern{})
	registry.Register(layers.Heuristics{})
	if handle != nil {
		fetcher := fetch.NewFetcher(cfg.Fetch)
		registry.Register(layers.NewFlyerOCR(selector, fetcher, handle, cfg.OCR))
	}
	return &Engine{
		cfg:      cfg.Cascade,
		registry: registry,
		selector: selector,
		mapper:   category.NewMapper(model.Category(cfg.Cascade.FallbackCategory)),
		handle:   handle,
	}
}

// NewWithRegistry builds an engine over a caller-supplied registry.
// Tests use it to swap individual layers for fakes.
func NewWithRegistry(cfg config.CascadeConfig, registry *layer.Registry, handle *ocr.Handle) *Engine {
	return &Engine{
		cfg:      cfg,
		registry: registry,
		selector: images.NewSelector(),
		mapper:   category.NewMapper(model.Category(cfg.FallbackCategory)),
		handle:   handle,
	}
}

// WithMetrics attaches a collector for batch-job reporting.
func (e *Engine) WithMetrics(c *monitoring.Collector) *Engine {
	e.metrics = c
	return e
}

// Extract runs the full cascade over one snapshot and returns the merged
// record with its metadata. The only error condition is an invalid
// snapshot; everything else degrades to a flagged, best-effort result.
func (e *Engine) Extract(ctx context.Context, snap *page.Snapshot) (*model.ExtractionResult, *model.Metadata, error) {
	if !snap.Valid() {
		return nil, nil, eris.New("cascade: invalid page snapshot")
	}

	start := time.Now()

	// Hold the OCR engine for the duration of the call so teardown
	// happens exactly when the last in-flight extraction finishes,
	// whether or not the OCR layer triggers.
	if e.handle != nil {
		lease := e.handle.Acquire()
		defer lease.Release()
	}

	partials, generic := e.runTextLayers(ctx, snap)

	candidates := e.selector.Candidates(snap)
	usable := images.Usable(candidates)
	aggregate := AggregateConfidence(partials)

	ocrTriggered := false
	if l6 := e.registry.Get(6); l6 != nil && ShouldRunFlyerOCR(aggregate, len(usable), generic, e.cfg) {
		ocrTriggered = true
		if p := e.runLayer(ctx, l6, snap, 0); p != nil {
			partials = append(partials, p)
		}
	}

	result, trace := Merge(partials, candidates, e.mapper, e.cfg)
	validation := Validate(result, e.cfg)

	meta := e.buildMetadata(partials, trace, validation, generic, ocrTriggered, start)

	if e.metrics != nil {
		e.metrics.RecordExtraction(meta)
	}

	zap.L().Debug("cascade: extraction complete",
		zap.String("url", snap.URL()),
		zap.Int("aggregate_confidence", aggregate),
		zap.Bool("ocr_triggered", ocrTriggered),
		zap.Ints("layers_used", meta.LayersUsed),
		zap.Bool("hash_compliant", meta.HashCompliant),
	)

	return result, meta, nil
}

// ExtractAll runs the cascade in listing mode: every structured-data
// event block becomes its own record. Pages without a multi-event block
// fall back to a single full-cascade record.
func (e *Engine) ExtractAll(ctx context.Context, snap *page.Snapshot) ([]*model.ExtractionResult, []*model.Metadata, error) {
	if !snap.Valid() {
		return nil, nil, eris.New("cascade: invalid page snapshot")
	}

	l1 := e.registry.Get(1)
	if l1 != nil {
		if p := e.runLayer(ctx, l1, snap, e.cfg.LayerTimeout()); p != nil && len(p.Records) > 1 {
			results, metas := e.listingRecords(snap, p)
			return results, metas, nil
		}
	}

	result, meta, err := e.Extract(ctx, snap)
	if err != nil {
		return nil, nil, err
	}
	return []*model.ExtractionResult{result}, []*model.Metadata{meta}, nil
}

func (e *Engine) listingRecords(snap *page.Snapshot, listing *model.Partial) ([]*model.ExtractionResult, []*model.Metadata) {
	candidates := e.selector.Candidates(snap)
	start := time.Now()
	results := make([]*model.ExtractionResult, 0, len(listing.Records))
	metas := make([]*model.Metadata, 0, len(listing.Records))

	for _, record := range listing.Records {
		partial := &model.Partial{Layer: 1, Proposals: record}
		result, trace := Merge([]*model.Partial{partial}, candidates, e.mapper, e.cfg)
		validation := Validate(result, e.cfg)

		meta := e.buildMetadata([]*model.Partial{partial}, trace, validation, false, false, start)
		meta.Method = "structured_data_listing"
		results = append(results, result)
		metas = append(metas, meta)
	}
	return results, metas
}

// runTextLayers executes layers 1-5 concurrently. They share only the
// immutable snapshot and write to independent slots, so the result is
// deterministic regardless of completion order.
func (e *Engine) runTextLayers(ctx context.Context, snap *page.Snapshot) ([]*model.Partial, bool) {
	all := e.registry.Layers()
	slots := make([]*model.Partial, 0, len(all))
	var cheap []layer.Layer
	for _, l := range all {
		if l.Number() <= maxTextLayers {
			cheap = append(cheap, l)
		}
	}

	results := make([]*model.Partial, len(cheap))
	g, gCtx := errgroup.WithContext(ctx)
	for i, l := range cheap {
		g.Go(func() error {
			results[i] = e.runLayer(gCtx, l, snap, e.cfg.LayerTimeout())
			return nil
		})
	}
	_ = g.Wait()

	generic := false
	for _, p := range results {
		if p == nil {
			continue
		}
		if p.GenericTitle {
			generic = true
		}
		slots = append(slots, p)
	}
	return slots, generic
}

// runLayer executes one layer under a timeout, absorbing its error per
// the cascade's error policy: a failed layer simply produced no data.
func (e *Engine) runLayer(ctx context.Context, l layer.Layer, snap *page.Snapshot, timeout time.Duration) *model.Partial {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	partial, err := l.Extract(ctx, snap, e.cfg)
	if err != nil {
		zap.L().Warn("cascade: layer failed",
			zap.String("layer", l.Name()),
			zap.Int("number", l.Number()),
			zap.String("url", snap.URL()),
			zap.Error(err),
		)
		return nil
	}
	return partial
}

func (e *Engine) buildMetadata(partials []*model.Partial, trace *Trace, validation Validation, generic, ocrTriggered bool, start time.Time) *model.Metadata {
	meta := &model.Metadata{
		RunID:            uuid.NewString(),
		Method:           "cascade",
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		ConfidenceScores: make(map[model.FieldKey]int, len(trace.Winners)),
		ValidationScore:  validation.Score,
		HashCompliant:    validation.Compliant,
		GenericTitle:     generic,
		OCRTriggered:     ocrTriggered,
		Proposals:        trace.Proposals,
		ExtractedAt:      time.Now().UTC(),
	}

	for _, p := range partials {
		if p.Empty() {
			continue
		}
		meta.LayersUsed = append(meta.LayersUsed, p.Layer)
	}
	for field, w := range trace.Winners {
		meta.ConfidenceScores[field] = w.Score
	}
	for _, n := range meta.LayersUsed {
		if n == 6 {
			meta.Method = "cascade+ocr"
		}
	}
	if len(meta.LayersUsed) == 1 && meta.LayersUsed[0] == 1 {
		meta.Method = "structured_data"
	}

	return meta
}
