package cascade

import (
	"sort"
	"strings"

	"github.com/hashapp/scout/internal/category"
	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/text"
)

// Trace records how the merge decided each field, for the metadata
// side-channel and for provenance assertions in tests.
type Trace struct {
	Proposals map[model.FieldKey][]model.Proposal
	Winners   map[model.FieldKey]model.Proposal
}

// Merge reconciles the per-layer partials into one result. It is a pure
// function over its inputs: highest score wins per field, ties broken by
// lower layer number (layers are ordered by trust), placeholders never
// beat genuine values, and proposals under the configured floor are
// dropped outright.
func Merge(partials []*model.Partial, ranked []model.ImageCandidate, mapper *category.Mapper, cfg config.CascadeConfig) (*model.ExtractionResult, *Trace) {
	proposals := collectProposals(partials)
	winners := make(map[model.FieldKey]model.Proposal)

	for field, props := range proposals {
		if w, ok := pickWinner(props, cfg.MinConfidence); ok {
			winners[field] = w
		}
	}

	result := &model.ExtractionResult{
		Title:       winners[model.FieldTitle].Value,
		Venue:       winners[model.FieldVenue].Value,
		Description: winners[model.FieldDescription].Value,
		TicketsLink: winners[model.FieldTicketsLink].Value,
	}

	// Date and times normalize to single ISO shapes. A winning date that
	// does not parse is discarded and the next parseable proposal takes
	// over, so the reported confidence always backs a real value.
	if _, ok := winners[model.FieldDate]; ok {
		var parseable []model.Proposal
		for _, p := range proposals[model.FieldDate] {
			if _, _, parsed := text.ParseDate(p.Value); parsed {
				parseable = append(parseable, p)
			}
		}
		if w, ok := pickWinner(parseable, cfg.MinConfidence); ok {
			winners[model.FieldDate] = w
			iso, clock, _ := text.ParseDate(w.Value)
			result.Date = iso
			if clock != "" && winners[model.FieldStartTime].Value == "" {
				result.StartTime = clock
			}
		} else {
			delete(winners, model.FieldDate)
		}
	}
	if w, ok := winners[model.FieldStartTime]; ok {
		result.StartTime = w.Value
	}
	if w, ok := winners[model.FieldEndTime]; ok {
		result.EndTime = w.Value
	}

	// Addresses are downgraded, never rejected, when the comma rule
	// cannot be satisfied.
	if w, ok := winners[model.FieldAddress]; ok {
		normalized, conforms := text.NormalizeAddress(w.Value)
		if conforms || !cfg.RequireAddressComma {
			result.Address = normalized
		} else {
			w.Score = downgrade(w.Score)
			winners[model.FieldAddress] = w
			result.Address = normalized
		}
	}

	if w, ok := winners[model.FieldFree]; ok {
		free := w.Value == "true"
		result.Free = &free
	}

	// Display image: a high-trust proposal (structured data, meta tags)
	// wins over positional scoring; otherwise the selector's top
	// candidate does.
	if w, ok := winners[model.FieldImageURL]; ok && w.Score >= 80 {
		result.ImageURL = w.Value
	} else if len(ranked) > 0 {
		result.ImageURL = ranked[0].URL
	} else if ok {
		result.ImageURL = w.Value
	}
	for i, cand := range ranked {
		if i >= 5 {
			break
		}
		result.ImageURLs = append(result.ImageURLs, cand.URL)
	}

	result.Categories = mapper.Map(categorySignals(partials, result))

	return result, &Trace{Proposals: proposals, Winners: winners}
}

// collectProposals retains every layer's proposal per field, ordered by
// layer then score, for the metadata side-channel.
func collectProposals(partials []*model.Partial) map[model.FieldKey][]model.Proposal {
	out := make(map[model.FieldKey][]model.Proposal)
	for _, p := range partials {
		if p == nil {
			continue
		}
		for field, prop := range p.Proposals {
			out[field] = append(out[field], prop)
		}
	}
	for field := range out {
		props := out[field]
		sort.SliceStable(props, func(i, j int) bool {
			if props[i].Layer != props[j].Layer {
				return props[i].Layer < props[j].Layer
			}
			return props[i].Score > props[j].Score
		})
	}
	return out
}

// pickWinner selects the highest-scored non-placeholder proposal at or
// above the floor; ties go to the lower layer number. A placeholder can
// only win when no genuine value exists at all.
func pickWinner(props []model.Proposal, minConfidence int) (model.Proposal, bool) {
	var winner model.Proposal
	var found bool
	better := func(a, b model.Proposal) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Layer < b.Layer
	}

	for _, p := range props {
		if p.Score < minConfidence || model.IsPlaceholder(p.Value) {
			continue
		}
		if !found || better(p, winner) {
			winner = p
			found = true
		}
	}
	return winner, found
}

func downgrade(score int) int {
	score -= 20
	if score < 0 {
		return 0
	}
	return score
}

// categorySignals gathers every layer's free-text signals plus the
// merged title and description, which often carry the only usable
// category keywords on structured pages.
func categorySignals(partials []*model.Partial, result *model.ExtractionResult) []string {
	var signals []string
	for _, p := range partials {
		if p == nil {
			continue
		}
		signals = append(signals, p.CategorySignals...)
	}
	if result.Title != "" && !model.IsPlaceholder(result.Title) {
		signals = append(signals, result.Title)
	}
	if result.Description != "" {
		signals = append(signals, result.Description)
	}
	if result.Venue != "" && !model.IsPlaceholder(result.Venue) {
		signals = append(signals, result.Venue)
	}
	// Deduplicate, preserving order, so repeated signals cannot inflate
	// keyword scores across layers.
	seen := make(map[string]struct{}, len(signals))
	out := signals[:0]
	for _, s := range signals {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
