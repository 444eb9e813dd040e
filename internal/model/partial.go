package model

// FieldKey identifies one output field of an ExtractionResult.
type FieldKey string

const (
	FieldTitle       FieldKey = "title"
	FieldVenue       FieldKey = "venue"
	FieldAddress     FieldKey = "address"
	FieldDate        FieldKey = "date"
	FieldStartTime   FieldKey = "startTime"
	FieldEndTime     FieldKey = "endTime"
	FieldDescription FieldKey = "description"
	FieldFree        FieldKey = "free"
	FieldImageURL    FieldKey = "imageUrl"
	FieldTicketsLink FieldKey = "ticketsLink"
)

// RequiredFields are the fields a record must carry to be hash-compliant.
var RequiredFields = []FieldKey{FieldTitle, FieldDate, FieldVenue, FieldAddress}

// Proposal is one layer's candidate value for a field.
//
// Score is an ordinal 0-100 trust rating, not a calibrated probability:
// each layer scores on its own scale (layer 1 near the top, layer 5 capped
// low), and cross-layer comparison only works together with the layer
// precedence tie-break applied during merge. This is a deliberate
// simplification, not a statistical guarantee.
type Proposal struct {
	Field FieldKey `json:"field"`
	Value string   `json:"value"`
	Score int      `json:"score"` // 0-100
	Layer int      `json:"layer"` // 1-6
}

// Partial is the independent output of a single layer run: proposals for
// any subset of fields, plus free-text category signals for the mapper.
// Layers never see each other's partials.
type Partial struct {
	Layer           int
	Proposals       map[FieldKey]Proposal
	CategorySignals []string

	// Records holds per-event proposal sets when the layer found multiple
	// event blocks on a listing page. Only layer 1 populates this.
	Records []map[FieldKey]Proposal

	// GenericTitle marks a title that matched a platform boilerplate
	// pattern (e.g. "N comments - user on: ..."). The OCR gate treats such
	// pages as low-signal regardless of aggregate confidence.
	GenericTitle bool
}

// NewPartial creates an empty partial for the given layer number.
func NewPartial(layer int) *Partial {
	return &Partial{
		Layer:     layer,
		Proposals: make(map[FieldKey]Proposal),
	}
}

// Propose records a candidate value for a field, keeping the higher-scored
// proposal if the layer already proposed one. Empty values are ignored.
func (p *Partial) Propose(field FieldKey, value string, score int) {
	if value == "" {
		return
	}
	if existing, ok := p.Proposals[field]; ok && existing.Score >= score {
		return
	}
	p.Proposals[field] = Proposal{Field: field, Value: value, Score: score, Layer: p.Layer}
}

// Empty reports whether the partial carries no proposals, records, or signals.
func (p *Partial) Empty() bool {
	return p == nil || (len(p.Proposals) == 0 && len(p.Records) == 0 && len(p.CategorySignals) == 0)
}
