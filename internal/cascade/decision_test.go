package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
)

func partialWith(layer int, scores map[model.FieldKey]int) *model.Partial {
	p := model.NewPartial(layer)
	for field, score := range scores {
		p.Propose(field, "value-"+string(field), score)
	}
	return p
}

func TestAggregateConfidence(t *testing.T) {
	tests := []struct {
		name     string
		partials []*model.Partial
		want     int
	}{
		{
			name:     "no partials",
			partials: nil,
			want:     0,
		},
		{
			name: "full structured page",
			partials: []*model.Partial{
				partialWith(1, map[model.FieldKey]int{
					model.FieldTitle: 95, model.FieldDate: 95,
					model.FieldVenue: 90, model.FieldAddress: 90,
				}),
			},
			want: 92,
		},
		{
			name: "missing fields drag the mean down",
			partials: []*model.Partial{
				partialWith(2, map[model.FieldKey]int{model.FieldTitle: 80}),
			},
			want: 20,
		},
		{
			name: "best score per field across layers",
			partials: []*model.Partial{
				partialWith(2, map[model.FieldKey]int{model.FieldTitle: 80}),
				partialWith(5, map[model.FieldKey]int{model.FieldTitle: 45, model.FieldVenue: 40}),
			},
			want: 30,
		},
		{
			name: "non-required fields do not count",
			partials: []*model.Partial{
				partialWith(2, map[model.FieldKey]int{
					model.FieldDescription: 75, model.FieldImageURL: 80,
				}),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateConfidence(tt.partials))
		})
	}
}

func TestAggregateConfidenceGenericTitleContributesNothing(t *testing.T) {
	p := partialWith(2, map[model.FieldKey]int{model.FieldTitle: 80, model.FieldDate: 80})
	p.GenericTitle = true

	// Only the date counts: 80 / 4 fields.
	assert.Equal(t, 20, AggregateConfidence([]*model.Partial{p}))
}

func TestShouldRunFlyerOCR(t *testing.T) {
	cfg := config.DefaultCascade() // threshold 70

	tests := []struct {
		name       string
		aggregate  int
		candidates int
		generic    bool
		want       bool
	}{
		{"low confidence with a candidate", 40, 1, false, true},
		{"threshold boundary does not fire", 70, 1, false, false},
		{"just under the threshold fires", 69, 3, false, true},
		{"high confidence skips ocr", 95, 3, false, false},
		{"no candidates never fires", 10, 0, false, false},
		{"no candidates even when generic", 10, 0, true, false},
		{"generic title forces eligibility", 95, 1, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldRunFlyerOCR(tt.aggregate, tt.candidates, tt.generic, cfg)
			assert.Equal(t, tt.want, got)
		})
	}
}
