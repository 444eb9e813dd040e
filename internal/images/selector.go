// Package images scores and ranks the image candidates on a page, both
// for the display-image pick and for the flyer OCR queue.
package images

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/page"
)

// Size and shape filters. Below the minimum an image is an icon or a
// tracking pixel; above the maximum it is a hero banner that rarely
// belongs to one specific event.
const (
	minDimension  = 200
	maxDimension  = 2400
	minAspect     = 0.4
	maxAspect     = 2.6
	proximitySpan = 400 // chars of ancestor text inspected for event keywords
)

var altKeywords = []string{"flyer", "poster", "event", "show", "concert", "lineup"}

var proximityKeywords = []string{
	"event", "tickets", "doors", "venue", "lineup", "rsvp", "show",
	"concert", "performance", "admission",
}

// Selector ranks page images. It holds no per-page state; candidates are
// built fresh for every snapshot.
type Selector struct{}

// NewSelector creates a selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Candidates returns every usable image on the page, highest priority
// first. Ordering is deterministic: score descending, then document order.
func (s *Selector) Candidates(snap *page.Snapshot) []model.ImageCandidate {
	if !snap.Valid() {
		return nil
	}

	type scored struct {
		cand model.ImageCandidate
		pos  int
	}
	var out []scored
	seen := make(map[string]bool)

	snap.Doc().Find("img").Each(func(i int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" {
			src, _ = sel.Attr("data-src")
		}
		u := snap.ResolveURL(src)
		if u == "" || strings.HasPrefix(u, "data:") || seen[u] {
			return
		}

		if hidden(sel) {
			return
		}

		w := dimension(sel, "width")
		h := dimension(sel, "height")
		cand := model.ImageCandidate{URL: u, Width: w, Height: h}

		// Dimensions are often absent in static markup; only filter on
		// them when declared.
		if w > 0 && h > 0 {
			if w < minDimension || h < minDimension {
				return
			}
			if w > maxDimension || h > maxDimension {
				return
			}
			cand.AspectRatio = float64(w) / float64(h)
			if cand.AspectRatio < minAspect || cand.AspectRatio > maxAspect {
				return
			}
		}

		alt, _ := sel.Attr("alt")
		cand.AltTextScore = altScore(alt)
		cand.DOMProximityScore = proximityScore(sel)
		cand.PriorityScore = priority(cand)

		seen[u] = true
		out = append(out, scored{cand: cand, pos: i})
	})

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].cand.PriorityScore != out[j].cand.PriorityScore {
			return out[i].cand.PriorityScore > out[j].cand.PriorityScore
		}
		return out[i].pos < out[j].pos
	})

	ranked := make([]model.ImageCandidate, len(out))
	for i, sc := range out {
		ranked[i] = sc.cand
	}
	return ranked
}

// Usable filters candidates down to those meeting the OCR layer's
// minimum requirements: a declared-or-unknown size that passed the
// filters and a non-negative priority.
func Usable(cands []model.ImageCandidate) []model.ImageCandidate {
	var out []model.ImageCandidate
	for _, c := range cands {
		if c.PriorityScore > 0 {
			out = append(out, c)
		}
	}
	return out
}

func hidden(sel *goquery.Selection) bool {
	if _, ok := sel.Attr("hidden"); ok {
		return true
	}
	style, _ := sel.Attr("style")
	style = strings.ToLower(style)
	if strings.Contains(style, "display:none") || strings.Contains(style, "display: none") ||
		strings.Contains(style, "visibility:hidden") || strings.Contains(style, "visibility: hidden") {
		return true
	}
	if w := dimension(sel, "width"); w == 0 {
		if raw, ok := sel.Attr("width"); ok && strings.TrimSpace(raw) != "" {
			return true // declared but zero or unparseable
		}
	}
	return false
}

func dimension(sel *goquery.Selection, attr string) int {
	raw, ok := sel.Attr(attr)
	if !ok {
		return 0
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func altScore(alt string) float64 {
	alt = strings.ToLower(alt)
	if alt == "" {
		return 0
	}
	var score float64
	for _, kw := range altKeywords {
		if strings.Contains(alt, kw) {
			score += 1
		}
	}
	if score > 3 {
		score = 3
	}
	return score
}

// proximityScore inspects nearby ancestor text for event keywords. Images
// inside a block that talks about tickets and doors are far more likely
// to be the event flyer than a footer logo.
func proximityScore(sel *goquery.Selection) float64 {
	ancestor := sel.Parent()
	var score float64
	for depth := 0; depth < 3 && ancestor.Length() > 0; depth++ {
		txt := strings.ToLower(ancestor.Text())
		if len(txt) > proximitySpan {
			txt = txt[:proximitySpan]
		}
		for _, kw := range proximityKeywords {
			if strings.Contains(txt, kw) {
				score += 1
			}
		}
		ancestor = ancestor.Parent()
	}
	if score > 5 {
		score = 5
	}
	return score
}

func priority(c model.ImageCandidate) float64 {
	score := 1.0 // every survivor of the filters is minimally usable
	score += c.AltTextScore * 2
	score += c.DOMProximityScore

	if c.Width > 0 && c.Height > 0 {
		// Known-good dimensions beat unknown ones.
		score += 2
		// Portrait-ish images are the classic flyer shape.
		if c.AspectRatio >= 0.6 && c.AspectRatio <= 0.9 {
			score += 1.5
		}
	}
	return score
}
