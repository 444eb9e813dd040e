// Package category maps free-text signals onto the fixed event taxonomy.
package category

import (
	"sort"
	"strings"

	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/text"
)

// keyword weights: 2 for terms that strongly imply a category, 1 for
// terms that only suggest it alongside other signals.
type keyword struct {
	term   string
	weight int
}

var keywords = map[model.Category][]keyword{
	model.CategoryMusic: {
		{"concert", 2}, {"live music", 2}, {"dj", 2}, {"band", 2}, {"album", 2},
		{"setlist", 2}, {"tour", 1}, {"music", 1}, {"vinyl", 1}, {"jazz", 2},
		{"hip hop", 2}, {"rock", 1}, {"singer", 1}, {"acoustic", 1}, {"open mic", 1},
	},
	model.CategoryComedy: {
		{"comedy", 2}, {"stand-up", 2}, {"standup", 2}, {"comedian", 2},
		{"improv", 2}, {"open mic comedy", 2}, {"sketch", 1},
	},
	model.CategoryNightlife: {
		{"nightclub", 2}, {"cover charge", 2}, {"doors at", 1}, {"21+", 2},
		{"happy hour", 2}, {"bar crawl", 2}, {"afterparty", 2}, {"lounge", 1},
		{"bottle service", 2}, {"club", 1},
	},
	model.CategoryArts: {
		{"gallery", 2}, {"exhibit", 2}, {"art walk", 2}, {"painting", 1},
		{"sculpture", 2}, {"artist", 1}, {"museum", 2}, {"craft", 1},
	},
	model.CategoryFoodDrink: {
		{"tasting", 2}, {"brewery", 2}, {"wine", 1}, {"food truck", 2},
		{"pop-up dinner", 2}, {"brunch", 2}, {"cocktail", 1}, {"restaurant week", 2},
	},
	model.CategorySports: {
		{"game day", 2}, {"tournament", 2}, {"match", 1}, {"5k", 2},
		{"marathon", 2}, {"league", 1}, {"playoff", 2}, {"vs.", 1},
	},
	model.CategoryFilm: {
		{"screening", 2}, {"film festival", 2}, {"premiere", 2}, {"movie", 2},
		{"documentary", 2}, {"matinee", 2},
	},
	model.CategoryTheatre: {
		{"theatre", 2}, {"theater", 1}, {"musical", 2}, {"playhouse", 2},
		{"broadway", 2}, {"ballet", 2}, {"opera", 2}, {"cast", 1},
	},
	model.CategoryCommunity: {
		{"fundraiser", 2}, {"volunteer", 2}, {"town hall", 2}, {"meetup", 2},
		{"market", 1}, {"fair", 1}, {"parade", 2}, {"festival", 1},
	},
	model.CategoryFamily: {
		{"family friendly", 2}, {"all ages", 2}, {"kids", 2}, {"children", 2},
		{"storytime", 2}, {"petting zoo", 2},
	},
}

// Mapper scores signals against the taxonomy keyword table.
type Mapper struct {
	fallback model.Category
	minScore int
	maxOut   int
}

// NewMapper creates a mapper with the given fallback category. An invalid
// fallback silently becomes Other so the output stays inside the taxonomy.
func NewMapper(fallback model.Category) *Mapper {
	if !fallback.Valid() {
		fallback = model.CategoryOther
	}
	return &Mapper{fallback: fallback, minScore: 2, maxOut: 3}
}

// Map scores the free-text signals and returns the matching categories,
// strongest first, capped at three. It never returns an empty slice and
// never emits a category outside the taxonomy: when nothing reaches the
// minimum score the configured fallback is returned alone. That fallback
// is a known quality gap on signal-poor pages, not a bug — downstream
// consumers require at least one category per record.
func (m *Mapper) Map(signals []string) []model.Category {
	scores := make(map[model.Category]int)

	for _, signal := range signals {
		folded := text.Fold(signal)
		if folded == "" {
			continue
		}
		for cat, kws := range keywords {
			for _, kw := range kws {
				if containsTerm(folded, kw.term) {
					scores[cat] += kw.weight
				}
			}
		}
	}

	var ranked []model.Category
	for _, cat := range model.Taxonomy {
		if scores[cat] >= m.minScore {
			ranked = append(ranked, cat)
		}
	}
	// Taxonomy order already breaks ties; sort by score, stable.
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	if len(ranked) == 0 {
		return []model.Category{m.fallback}
	}
	if len(ranked) > m.maxOut {
		ranked = ranked[:m.maxOut]
	}
	return ranked
}

// containsTerm reports whether folded text contains term as a whole word
// (bounded by non-letter characters), so "club" does not match inside
// "clubhouse".
func containsTerm(folded, term string) bool {
	start := 0
	for {
		idx := strings.Index(folded[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		leftOK := idx == 0 || !isLetterByte(folded[idx-1])
		rightOK := end == len(folded) || !isLetterByte(folded[end])
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isLetterByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
