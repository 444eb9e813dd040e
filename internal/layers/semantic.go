package layers

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/page"
	"github.com/hashapp/scout/internal/text"
)

// Semantic walks the DOM for elements that carry event meaning in their
// markup: <time> elements, <address> blocks, microdata itemprops, and
// class/id/ARIA names built from event vocabulary. Confidence scales
// with selector specificity — an element literally classed "event-title"
// outranks a bare <h1>.
type Semantic struct{}

func (Semantic) Name() string { return "semantic_html" }
func (Semantic) Number() int  { return 3 }

// fieldSelector maps one CSS selector to a field proposal with a fixed
// specificity score. Selectors are tried in order; Propose keeps the
// best-scored hit per field. An optional filter rejects elements the
// substring selector over-matched.
type fieldSelector struct {
	selector string
	field    model.FieldKey
	score    int
	filter   func(*goquery.Selection) bool
}

var semanticSelectors = []fieldSelector{
	{`[itemprop="name"]`, model.FieldTitle, 80, nil},
	{`[class*="event-title"], [id*="event-title"]`, model.FieldTitle, 80, nil},
	{`[class*="event-name"], [id*="event-name"]`, model.FieldTitle, 78, nil},
	{`[aria-label*="event title"]`, model.FieldTitle, 75, nil},
	{`h1`, model.FieldTitle, 55, nil},

	{`[class*="venue-name"], [id*="venue-name"]`, model.FieldVenue, 78, nil},
	{`[class*="venue"], [id*="venue"]`, model.FieldVenue, 68, nil},
	{`[itemprop="location"] [itemprop="name"]`, model.FieldVenue, 80, nil},

	{`[itemprop="address"]`, model.FieldAddress, 78, nil},
	{`[class*="address"], [id*="address"]`, model.FieldAddress, 65, nil},

	{`[class*="event-date"], [id*="event-date"]`, model.FieldDate, 72, nil},
	{`[class*="date"], [id*="date"]`, model.FieldDate, 58, hasDateWord},

	{`[class*="description"], [itemprop="description"]`, model.FieldDescription, 60, nil},
}

// dateWordRE matches "date" (or "dates") as its own word segment inside
// a class or id attribute, with segment breaks at hyphens, underscores,
// digits and string boundaries.
var dateWordRE = regexp.MustCompile(`(?i)(?:^|[^a-z])dates?(?:[^a-z]|$)`)

// hasDateWord rejects the substring false positives of [class*="date"],
// such as class="updated" or id="candidates", which carry parseable
// dates that have nothing to do with the event.
func hasDateWord(sel *goquery.Selection) bool {
	class, _ := sel.Attr("class")
	id, _ := sel.Attr("id")
	return dateWordRE.MatchString(class) || dateWordRE.MatchString(id)
}

func (s Semantic) Extract(_ context.Context, snap *page.Snapshot, _ config.CascadeConfig) (*model.Partial, error) {
	partial := model.NewPartial(3)
	doc := snap.Doc()

	// <time datetime="..."> is the strongest semantic date signal.
	doc.Find("time[datetime]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		dt, _ := sel.Attr("datetime")
		iso, clock, ok := text.ParseDate(dt)
		if !ok {
			return true
		}
		partial.Propose(model.FieldDate, iso, 78)
		if clock != "" {
			partial.Propose(model.FieldStartTime, clock, 75)
		}
		return false
	})

	if addr := elementText(doc.Find("address").First()); addr != "" {
		partial.Propose(model.FieldAddress, addr, 70)
	}

	for _, fs := range semanticSelectors {
		sel := doc.Find(fs.selector)
		if fs.filter != nil {
			sel = sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
				return fs.filter(s)
			})
		}
		value := elementText(sel.First())
		if value == "" {
			continue
		}
		switch fs.field {
		case model.FieldDate:
			if iso, clock, ok := text.ParseDate(value); ok {
				partial.Propose(model.FieldDate, iso, fs.score)
				if clock != "" {
					partial.Propose(model.FieldStartTime, clock, fs.score-5)
				}
			} else if matches := text.FindDates(value); len(matches) > 0 {
				partial.Propose(model.FieldDate, matches[0].ISO, fs.score-5)
			}
		case model.FieldAddress:
			partial.Propose(model.FieldAddress, value, fs.score)
		default:
			partial.Propose(fs.field, value, fs.score)
		}
	}

	return partial, nil
}

// elementText returns the trimmed, whitespace-collapsed text of an
// element, rejecting blocks too long to be a field value.
func elementText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	value := strings.Join(strings.Fields(sel.Text()), " ")
	if len(value) < 2 || len(value) > 200 {
		return ""
	}
	return value
}
