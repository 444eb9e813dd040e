package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashapp/scout/internal/model"
)

func TestMapperStrongSignals(t *testing.T) {
	tests := []struct {
		name    string
		signals []string
		want    model.Category
	}{
		{"concert", []string{"Jazz Night live concert"}, model.CategoryMusic},
		{"comedy", []string{"stand-up comedy showcase"}, model.CategoryComedy},
		{"film", []string{"documentary screening"}, model.CategoryFilm},
		{"food", []string{"brewery tasting tour"}, model.CategoryFoodDrink},
		{"family", []string{"all ages storytime for kids"}, model.CategoryFamily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMapper(model.CategoryOther).Map(tt.signals)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestMapperFallbackWhenNothingScores(t *testing.T) {
	m := NewMapper(model.CategoryOther)

	assert.Equal(t, []model.Category{model.CategoryOther}, m.Map(nil))
	assert.Equal(t, []model.Category{model.CategoryOther}, m.Map([]string{"quarterly results webinar"}))
}

func TestMapperInvalidFallbackBecomesOther(t *testing.T) {
	m := NewMapper(model.Category("Parties"))
	assert.Equal(t, []model.Category{model.CategoryOther}, m.Map(nil))
}

func TestMapperCapsAtThree(t *testing.T) {
	signals := []string{
		"live music concert with a dj",
		"comedy improv comedian",
		"gallery exhibit museum",
		"brewery tasting brunch",
	}
	got := NewMapper(model.CategoryOther).Map(signals)
	assert.Len(t, got, 3)
	for _, c := range got {
		assert.True(t, c.Valid())
	}
}

func TestMapperWholeWordMatching(t *testing.T) {
	// "club" must not match inside "clubhouse".
	m := NewMapper(model.CategoryOther)
	got := m.Map([]string{"clubhouse renovation notice"})
	assert.Equal(t, []model.Category{model.CategoryOther}, got)
}

func TestMapperDeterministicTieBreak(t *testing.T) {
	// One weight-2 keyword each; taxonomy order decides the ranking.
	m := NewMapper(model.CategoryOther)
	first := m.Map([]string{"concert and comedian night"})
	for range 10 {
		assert.Equal(t, first, m.Map([]string{"concert and comedian night"}))
	}
	assert.Equal(t, model.CategoryMusic, first[0])
	assert.Equal(t, model.CategoryComedy, first[1])
}
