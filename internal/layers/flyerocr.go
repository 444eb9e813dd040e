package layers

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/images"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/ocr"
	"github.com/hashapp/scout/internal/page"
	"github.com/hashapp/scout/internal/resilience"
	"github.com/hashapp/scout/internal/text"
)

// byteFetcher fetches image bytes. Satisfied by fetch.Fetcher.
type byteFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FlyerOCR is the most expensive layer: it downloads the top image
// candidates, runs OCR on them with bounded concurrency, and reapplies
// the same pattern and heuristic parsing as layers 4 and 5 to the
// recognized text. It is only invoked when the cascade controller's
// gate decides the cheaper layers were insufficient.
//
// Failure semantics: fetch errors, OCR errors, empty text, and
// low-confidence recognitions all collapse to "this image produced no
// data". The layer never surfaces an error to the controller.
type FlyerOCR struct {
	selector     *images.Selector
	fetcher      byteFetcher
	handle       *ocr.Handle
	minTokenConf float64
}

// NewFlyerOCR creates the OCR layer against a shared engine handle.
func NewFlyerOCR(selector *images.Selector, fetcher byteFetcher, handle *ocr.Handle, ocrCfg config.OCRConfig) *FlyerOCR {
	minConf := ocrCfg.MinTokenConfidence
	if minConf <= 0 {
		minConf = 0.35
	}
	return &FlyerOCR{selector: selector, fetcher: fetcher, handle: handle, minTokenConf: minConf}
}

func (*FlyerOCR) Name() string { return "flyer_ocr" }
func (*FlyerOCR) Number() int  { return 6 }

func (f *FlyerOCR) Extract(ctx context.Context, snap *page.Snapshot, cfg config.CascadeConfig) (*model.Partial, error) {
	partial := model.NewPartial(6)

	candidates := images.Usable(f.selector.Candidates(snap))
	if len(candidates) == 0 {
		return partial, nil
	}
	if len(candidates) > cfg.MaxFlyerImages {
		candidates = candidates[:cfg.MaxFlyerImages]
	}

	layerCtx, cancel := context.WithTimeout(ctx, cfg.OCRLayerTimeout())
	defer cancel()

	lease := f.handle.Acquire()
	defer lease.Release()

	// One slot per candidate keeps merging deterministic regardless of
	// which worker finishes first.
	parsed := make([]*model.Partial, len(candidates))

	g, gCtx := errgroup.WithContext(layerCtx)
	g.SetLimit(cfg.MaxFlyerImages)

	for i, cand := range candidates {
		g.Go(func() error {
			p := f.processImage(gCtx, cand.URL, cfg, lease)
			parsed[i] = p
			return nil // worker failures never abort the group
		})
	}
	_ = g.Wait()

	mergeImagePartials(partial, parsed)
	return partial, nil
}

// processImage runs fetch+OCR for one candidate under its own timeout,
// with at most one retry on transient failure so a slow image cannot
// stall the extraction.
func (f *FlyerOCR) processImage(ctx context.Context, url string, cfg config.CascadeConfig, lease *ocr.Lease) *model.Partial {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("ocr", "recognize")

	rec, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*ocr.Recognition, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.OCRTimeout())
		defer cancel()

		data, err := f.fetcher.Fetch(attemptCtx, url)
		if err != nil {
			return nil, err
		}
		return lease.Recognize(attemptCtx, data)
	})
	if err != nil {
		zap.L().Warn("flyer_ocr: image skipped",
			zap.String("image", url),
			zap.Error(err),
		)
		return nil
	}

	if rec == nil || strings.TrimSpace(rec.Text) == "" {
		zap.L().Debug("flyer_ocr: no text recognized", zap.String("image", url))
		return nil
	}
	if rec.MeanConfidence() < f.minTokenConf {
		zap.L().Debug("flyer_ocr: recognition below confidence floor",
			zap.String("image", url),
			zap.Float64("mean_confidence", rec.MeanConfidence()),
		)
		return nil
	}

	return parseRecognized(text.CleanOCR(rec.Text))
}

// parseRecognized reapplies the layer 4/5 parsing logic to OCR output.
// OCR's job is only to produce text; no new parsing logic lives here.
func parseRecognized(s string) *model.Partial {
	p := model.NewPartial(6)

	if dates := text.FindDates(s); len(dates) > 0 {
		best := dates[0]
		for _, m := range dates[1:] {
			if m.Score > best.Score {
				best = m
			}
		}
		p.Propose(model.FieldDate, best.ISO, capOCRScore(best.Score))
		if best.Time != "" {
			p.Propose(model.FieldStartTime, best.Time, capOCRScore(best.Score))
		}
	}
	if times := text.FindTimes(s); len(times) > 0 {
		p.Propose(model.FieldStartTime, times[0].Value, capOCRScore(times[0].Score))
	}
	if prices := text.FindPrices(s); len(prices) > 0 {
		if prices[0].Free {
			p.Propose(model.FieldFree, "true", capOCRScore(prices[0].Score))
		} else {
			p.Propose(model.FieldFree, "false", capOCRScore(prices[0].Score))
		}
	}
	if addrs := text.FindAddresses(s); len(addrs) > 0 {
		p.Propose(model.FieldAddress, addrs[0].Value, capOCRScore(addrs[0].Score))
	}

	title, venue := flyerLines(s)
	p.Propose(model.FieldTitle, title, 55)
	p.Propose(model.FieldVenue, venue, 45)

	folded := text.Fold(s)
	for _, term := range categoryVocabulary {
		if strings.Contains(folded, term) {
			p.CategorySignals = append(p.CategorySignals, term)
		}
	}

	return p
}

// capOCRScore keeps OCR-derived pattern hits below the direct-text band:
// recognition noise makes them strictly less trustworthy than the same
// pattern matched in the DOM.
func capOCRScore(score int) int {
	score -= 10
	if score > 65 {
		return 65
	}
	if score < 35 {
		return 35
	}
	return score
}

// flyerLines applies the flyer layout heuristic: the first substantial
// segment is the event name, and the next name-like segment that is not
// a date, time or price is the venue.
func flyerLines(s string) (title, venue string) {
	var segments []string
	for _, line := range strings.Split(s, "\n") {
		for _, seg := range strings.Split(line, ",") {
			seg = strings.TrimSpace(seg)
			if seg != "" {
				segments = append(segments, seg)
			}
		}
	}

	for _, seg := range segments {
		if len(seg) < 3 || len(seg) > 80 {
			continue
		}
		if looksLikeData(seg) {
			continue
		}
		if title == "" {
			title = seg
			continue
		}
		if !strings.ContainsAny(seg, "0123456789") {
			venue = seg
			break
		}
	}
	return title, venue
}

// looksLikeData reports whether a segment is a date, time, or price
// rather than a name.
func looksLikeData(seg string) bool {
	if len(text.FindDates(seg)) > 0 {
		return true
	}
	if len(text.FindTimes(seg)) > 0 {
		return true
	}
	if len(text.FindPrices(seg)) > 0 {
		return true
	}
	return false
}

// mergeImagePartials folds per-image partials into the layer partial in
// candidate order, keeping the best score per field and a sorted,
// deduplicated union of category signals.
func mergeImagePartials(dst *model.Partial, parts []*model.Partial) {
	signals := make(map[string]struct{})
	for _, p := range parts {
		if p == nil {
			continue
		}
		for field, prop := range p.Proposals {
			dst.Propose(field, prop.Value, prop.Score)
		}
		for _, sig := range p.CategorySignals {
			signals[sig] = struct{}{}
		}
	}
	if len(signals) > 0 {
		dst.CategorySignals = make([]string, 0, len(signals))
		for sig := range signals {
			dst.CategorySignals = append(dst.CategorySignals, sig)
		}
		sort.Strings(dst.CategorySignals)
	}
}
