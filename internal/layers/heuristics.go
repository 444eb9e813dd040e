package layers

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/page"
	"github.com/hashapp/scout/internal/text"
)

// heuristicsCap is the ceiling for every score this layer emits. The
// layer is the structural fallback of last resort; its guesses must
// never outrank a structured-data result during merge.
const heuristicsCap = 50

// categoryVocabulary is scanned against body text to produce free-text
// signals for the category mapper.
var categoryVocabulary = []string{
	"dj", "live music", "concert", "band", "open mic",
	"stand-up", "comedy", "comedian", "improv",
	"doors at", "cover charge", "21+", "nightclub", "afterparty",
	"gallery", "exhibit", "art walk", "museum",
	"tasting", "brewery", "food truck", "brunch",
	"tournament", "5k", "marathon", "game day",
	"screening", "film festival", "documentary",
	"musical", "playhouse", "ballet", "opera",
	"fundraiser", "volunteer", "parade", "festival", "meetup",
	"family friendly", "all ages", "kids",
}

// Heuristics is the catch-all layer: positional and statistical guesses
// over page structure when nothing better matched.
type Heuristics struct{}

func (Heuristics) Name() string { return "content_heuristics" }
func (Heuristics) Number() int  { return 5 }

func (h Heuristics) Extract(_ context.Context, snap *page.Snapshot, _ config.CascadeConfig) (*model.Partial, error) {
	partial := model.NewPartial(5)
	doc := snap.Doc()

	// Earliest prominent heading becomes the title candidate.
	if title := headingGuess(doc); title != "" {
		partial.Propose(model.FieldTitle, title, 45)
	}

	// First substantial paragraph stands in for a description.
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		para := strings.Join(strings.Fields(sel.Text()), " ")
		if len(para) < 60 || len(para) > 600 {
			return true
		}
		partial.Propose(model.FieldDescription, para, 35)
		return false
	})

	// Any currency-like token doubles as a ticket cost guess.
	body := snap.Text()
	if prices := text.FindPrices(body); len(prices) > 0 {
		if prices[0].Free {
			partial.Propose(model.FieldFree, "true", capScore(prices[0].Score))
		} else {
			partial.Propose(model.FieldFree, "false", capScore(prices[0].Score))
		}
	}

	// Keyword co-occurrence feeds the category mapper.
	folded := text.Fold(body)
	for _, term := range categoryVocabulary {
		if strings.Contains(folded, term) {
			partial.CategorySignals = append(partial.CategorySignals, term)
		}
	}

	return partial, nil
}

func capScore(score int) int {
	if score > heuristicsCap {
		return heuristicsCap
	}
	return score
}

// headingGuess returns the first h1, else the longest early h2.
func headingGuess(doc *goquery.Document) string {
	clean := func(sel *goquery.Selection) string {
		v := strings.Join(strings.Fields(sel.Text()), " ")
		if len(v) < 3 || len(v) > 120 {
			return ""
		}
		return v
	}

	var title string
	doc.Find("h1").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title = clean(sel)
		return title == ""
	})
	if title != "" {
		return title
	}

	doc.Find("h2").Slice(0, min(doc.Find("h2").Length(), 4)).Each(func(_ int, sel *goquery.Selection) {
		if v := clean(sel); len(v) > len(title) {
			title = v
		}
	})
	return title
}
