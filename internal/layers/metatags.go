package layers

import (
	"context"
	"regexp"
	"strings"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/page"
)

// lowSignalHosts are platforms whose meta tags are boilerplate more often
// than event data. Title and description confidence from these hosts is
// capped so a plausible-looking but empty og:title cannot starve the OCR
// fallback of its chance to run.
var lowSignalHosts = []string{
	"instagram.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"tiktok.com",
	"linkedin.com",
}

// genericTitleREs match platform boilerplate that was observed to leak
// into og:title: engagement counts, "user on Platform:" prefixes, and
// page-name suffixes standing alone.
var genericTitleREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d[\d,.]*[km]?\s+(likes|comments|views|followers)`),
	regexp.MustCompile(`(?i)\bon (instagram|facebook|tiktok|x|twitter)\s*:`),
	regexp.MustCompile(`(?i)^log in( or sign up)?\b`),
	regexp.MustCompile(`(?i)\|\s*(facebook|instagram|linkedin)\s*$`),
}

// MetaTags reads social and SEO meta tags as a secondary structured
// source for title, description and image.
type MetaTags struct{}

func (MetaTags) Name() string { return "meta_tags" }
func (MetaTags) Number() int  { return 2 }

func (m MetaTags) Extract(_ context.Context, snap *page.Snapshot, _ config.CascadeConfig) (*model.Partial, error) {
	partial := model.NewPartial(2)
	doc := snap.Doc()

	meta := func(names ...string) string {
		for _, name := range names {
			v, ok := doc.Find(`meta[property="` + name + `"]`).Attr("content")
			if !ok {
				v, _ = doc.Find(`meta[name="` + name + `"]`).Attr("content")
			}
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		return ""
	}

	lowSignal := isLowSignalHost(snap.Host())
	titleCap := 80
	descCap := 75
	if lowSignal {
		titleCap = 70
		descCap = 65
	}

	title := meta("og:title", "twitter:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("head title").First().Text())
	}
	if title != "" {
		score := titleCap
		if isGenericTitle(title) {
			partial.GenericTitle = true
			score = 40
		}
		partial.Propose(model.FieldTitle, title, score)
	}

	if desc := meta("og:description", "twitter:description", "description"); desc != "" {
		partial.Propose(model.FieldDescription, desc, descCap)
	}

	if img := meta("og:image", "twitter:image", "twitter:image:src"); img != "" {
		partial.Propose(model.FieldImageURL, snap.ResolveURL(img), 80)
	}

	return partial, nil
}

func isLowSignalHost(host string) bool {
	for _, h := range lowSignalHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func isGenericTitle(title string) bool {
	for _, re := range genericTitleREs {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}
