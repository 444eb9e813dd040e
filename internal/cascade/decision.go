package cascade

import (
	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
)

// aggregateFields are the fields whose best scores summarize how well
// the cheap layers did. Confidence in anything else (image, description)
// does not make a record usable, so it does not count.
var aggregateFields = []model.FieldKey{
	model.FieldTitle,
	model.FieldDate,
	model.FieldVenue,
	model.FieldAddress,
}

// AggregateConfidence summarizes layers 1-5: the mean of the best score
// per required field, with a flagged generic title contributing nothing.
// Missing fields contribute zero, dragging the aggregate down so the OCR
// gate fires on sparse pages.
func AggregateConfidence(partials []*model.Partial) int {
	generic := false
	best := make(map[model.FieldKey]int)
	for _, p := range partials {
		if p == nil {
			continue
		}
		if p.GenericTitle {
			generic = true
		}
		for field, prop := range p.Proposals {
			if prop.Score > best[field] {
				best[field] = prop.Score
			}
		}
	}

	var sum int
	for _, field := range aggregateFields {
		if field == model.FieldTitle && generic {
			continue
		}
		sum += best[field]
	}
	return sum / len(aggregateFields)
}

// ShouldRunFlyerOCR is the single gate for the expensive layer. Pure
// function: the whole trigger policy is testable without a browser or
// an OCR engine.
//
// A generic platform title forces eligibility regardless of aggregate
// confidence: the observed failure mode is boilerplate meta tags
// scoring high enough to starve the OCR fallback. The title score cap
// in the meta layer alone does not cover pages whose other fields
// score well.
func ShouldRunFlyerOCR(aggregate int, usableCandidates int, genericTitle bool, cfg config.CascadeConfig) bool {
	if usableCandidates == 0 {
		return false
	}
	if genericTitle {
		return true
	}
	return aggregate < cfg.OCRTriggerThreshold
}
