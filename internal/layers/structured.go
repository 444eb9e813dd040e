// Package layers implements the six extraction strategies of the cascade.
package layers

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/page"
	"github.com/hashapp/scout/internal/text"
)

// Structured reads embedded JSON-LD event markup. Highest trust,
// near-zero cost; also the multi-event listing extractor, since every
// Event block on the page becomes its own record.
type Structured struct{}

func (Structured) Name() string { return "structured_data" }
func (Structured) Number() int  { return 1 }

// Extract parses every ld+json block on the page. Malformed JSON is
// skipped, never fatal.
func (s Structured) Extract(_ context.Context, snap *page.Snapshot, _ config.CascadeConfig) (*model.Partial, error) {
	partial := model.NewPartial(1)

	snap.Doc().Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			zap.L().Debug("structured: skipping malformed ld+json block",
				zap.String("url", snap.URL()),
				zap.Int("block", i),
				zap.Error(err),
			)
			return
		}
		for _, obj := range eventObjects(raw) {
			record := s.mapEvent(obj, snap)
			if len(record) == 0 {
				continue
			}
			partial.Records = append(partial.Records, record)
		}
	})

	// The first event doubles as the single-event proposal set.
	if len(partial.Records) > 0 {
		for field, prop := range partial.Records[0] {
			partial.Proposals[field] = prop
		}
	}

	return partial, nil
}

// eventObjects walks a decoded ld+json value and collects every
// Event-typed object, descending into arrays and @graph containers.
func eventObjects(raw any) []map[string]any {
	var out []map[string]any
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			out = append(out, eventObjects(item)...)
		}
	case map[string]any:
		if isEventType(v["@type"]) {
			out = append(out, v)
		}
		if graph, ok := v["@graph"]; ok {
			out = append(out, eventObjects(graph)...)
		}
	}
	return out
}

func isEventType(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.Contains(v, "Event")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.Contains(s, "Event") {
				return true
			}
		}
	}
	return false
}

// mapEvent maps one schema.org Event object onto field proposals.
// Missing optional sub-fields leave the field unset; they never default.
func (Structured) mapEvent(obj map[string]any, snap *page.Snapshot) map[model.FieldKey]model.Proposal {
	record := make(map[model.FieldKey]model.Proposal)
	propose := func(field model.FieldKey, value string, score int) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		record[field] = model.Proposal{Field: field, Value: value, Score: score, Layer: 1}
	}

	propose(model.FieldTitle, str(obj["name"]), 95)
	propose(model.FieldDescription, str(obj["description"]), 90)

	if iso, clock, ok := text.ParseDate(str(obj["startDate"])); ok {
		propose(model.FieldDate, iso, 95)
		if clock != "" {
			propose(model.FieldStartTime, clock, 95)
		}
	}
	if _, clock, ok := text.ParseDate(str(obj["endDate"])); ok && clock != "" {
		propose(model.FieldEndTime, clock, 90)
	}

	if loc, ok := obj["location"].(map[string]any); ok {
		propose(model.FieldVenue, str(loc["name"]), 90)
		propose(model.FieldAddress, flattenAddress(loc["address"]), 90)
	}

	if img := firstImage(obj["image"]); img != "" {
		propose(model.FieldImageURL, snap.ResolveURL(img), 90)
	}

	if offers := firstOffer(obj["offers"]); offers != nil {
		if price, ok := offerPrice(offers); ok {
			if price == 0 {
				propose(model.FieldFree, "true", 90)
			} else {
				propose(model.FieldFree, "false", 90)
			}
		}
		if u := str(offers["url"]); u != "" {
			propose(model.FieldTicketsLink, snap.ResolveURL(u), 90)
		}
	}
	if record[model.FieldTicketsLink].Value == "" {
		if u := str(obj["url"]); u != "" {
			propose(model.FieldTicketsLink, snap.ResolveURL(u), 85)
		}
	}

	return record
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// flattenAddress joins a PostalAddress object into the comma-separated
// shape, or passes a plain string through.
func flattenAddress(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case map[string]any:
		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode"} {
			if s := strings.TrimSpace(str(a[key])); s != "" {
				parts = append(parts, s)
			}
		}
		// Region and postal code read better unseparated: "TX 78701".
		if len(parts) >= 2 {
			last := len(parts) - 1
			if text.IsStateAbbr(parts[last-1]) && isDigits(parts[last]) {
				parts[last-1] = parts[last-1] + " " + parts[last]
				parts = parts[:last]
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

func firstImage(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		for _, item := range img {
			if s := firstImage(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return str(img["url"])
	}
	return ""
}

func firstOffer(v any) map[string]any {
	switch o := v.(type) {
	case map[string]any:
		return o
	case []any:
		for _, item := range o {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

func offerPrice(offer map[string]any) (float64, bool) {
	switch p := offer["price"].(type) {
	case float64:
		return p, true
	case string:
		p = strings.TrimSpace(strings.TrimPrefix(p, "$"))
		if p == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
