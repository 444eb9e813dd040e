package layers

import (
	"context"
	"strings"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/page"
	"github.com/hashapp/scout/internal/text"
)

// TextPattern runs the ordered regex families over visible body text
// for pages with no usable structure. A listing page yields many dates
// and prices; the layer disambiguates by picking the match closest to
// the page's own title anchor (the h1 or document title located in the
// visible text), falling back to first-in-document order.
type TextPattern struct{}

func (TextPattern) Name() string { return "text_patterns" }
func (TextPattern) Number() int  { return 4 }

func (tp TextPattern) Extract(_ context.Context, snap *page.Snapshot, _ config.CascadeConfig) (*model.Partial, error) {
	partial := model.NewPartial(4)
	body := snap.Text()
	if body == "" {
		return partial, nil
	}

	anchor := titleAnchor(snap, body)

	if dates := text.FindDates(body); len(dates) > 0 {
		best := nearestDate(dates, anchor)
		partial.Propose(model.FieldDate, best.ISO, patternScore(best.Score))
		if best.Time != "" {
			partial.Propose(model.FieldStartTime, best.Time, patternScore(best.Score))
		}
	}

	if times := text.FindTimes(body); len(times) > 0 {
		best := times[0]
		for _, m := range times[1:] {
			if closer(m.Pos, best.Pos, anchor) && m.Score >= best.Score {
				best = m
			}
		}
		partial.Propose(model.FieldStartTime, best.Value, patternScore(best.Score))
	}

	if prices := text.FindPrices(body); len(prices) > 0 {
		best := prices[0]
		for _, m := range prices[1:] {
			if closer(m.Pos, best.Pos, anchor) && m.Score >= best.Score {
				best = m
			}
		}
		if best.Free {
			partial.Propose(model.FieldFree, "true", patternScore(best.Score))
		} else {
			partial.Propose(model.FieldFree, "false", patternScore(best.Score))
		}
	}

	if addrs := text.FindAddresses(body); len(addrs) > 0 {
		best := addrs[0]
		for _, m := range addrs[1:] {
			if m.Score > best.Score || (m.Score == best.Score && closer(m.Pos, best.Pos, anchor)) {
				best = m
			}
		}
		partial.Propose(model.FieldAddress, best.Value, patternScore(best.Score))
	}

	return partial, nil
}

// patternScore keeps this layer's scores inside its 40-75 band so a
// lucky regex hit never outranks structured data.
func patternScore(specificity int) int {
	if specificity > 75 {
		return 75
	}
	if specificity < 40 {
		return 40
	}
	return specificity
}

// titleAnchor locates the page's heading text inside the visible text
// and returns its offset, or -1. The anchor is computed from the page
// itself, not from other layers' output — layers stay independent.
func titleAnchor(snap *page.Snapshot, body string) int {
	heading := strings.Join(strings.Fields(snap.Doc().Find("h1").First().Text()), " ")
	if heading == "" {
		heading = strings.Join(strings.Fields(snap.Doc().Find("head title").First().Text()), " ")
	}
	if heading == "" {
		return -1
	}
	return strings.Index(body, heading)
}

func nearestDate(matches []text.DateMatch, anchor int) text.DateMatch {
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Score > best.Score {
			best = m
			continue
		}
		if m.Score == best.Score && closer(m.Pos, best.Pos, anchor) {
			best = m
		}
	}
	return best
}

// closer reports whether pos a is nearer the anchor than pos b. With no
// anchor, earlier document order wins — and since matchers return
// position-ordered slices, the first match is already the winner.
func closer(a, b, anchor int) bool {
	if anchor < 0 {
		return false
	}
	da, db := a-anchor, b-anchor
	if da < 0 {
		da = -da
	}
	if db < 0 {
		db = -db
	}
	return da < db
}
