package cascade

import (
	"regexp"
	"strings"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
)

var isoDateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validation is the outcome of the final schema pass over one record.
type Validation struct {
	Score     int      // 0-100
	Compliant bool     // all required fields present and conformant
	Flags     []string // human-readable failures, for logs and metadata
}

// Validate enforces the output-schema invariants on a merged record.
// Failures are data, not errors: a non-compliant record is still
// returned to the caller, flagged, with placeholders standing in for
// missing required fields when strict output is requested.
func Validate(result *model.ExtractionResult, cfg config.CascadeConfig) Validation {
	var v Validation
	checks := 0
	passed := 0

	check := func(name string, ok bool) {
		checks++
		if ok {
			passed++
		} else {
			v.Flags = append(v.Flags, name)
		}
	}

	check("title_present", result.Title != "" && !model.IsPlaceholder(result.Title))
	check("venue_present", result.Venue != "" && !model.IsPlaceholder(result.Venue))
	check("address_present", result.Address != "" && !model.IsPlaceholder(result.Address))
	check("date_present", result.Date != "")
	check("date_iso", result.Date == "" || isoDateShape.MatchString(result.Date))

	addressOK := true
	if cfg.RequireAddressComma && result.Address != "" && !model.IsPlaceholder(result.Address) {
		addressOK = strings.Contains(result.Address, ",")
	}
	check("address_comma", addressOK)

	categoriesOK := len(result.Categories) > 0
	for _, c := range result.Categories {
		if !c.Valid() {
			categoriesOK = false
		}
	}
	check("categories_valid", categoriesOK)

	v.Score = passed * 100 / checks
	v.Compliant = passed == checks

	if cfg.EnforceHashRequirements {
		fillPlaceholders(result)
	}

	return v
}

// fillPlaceholders substitutes the reserved sentinels for missing
// required fields so strict consumers always receive a full record.
// Sentinels are distinguishable via model.IsPlaceholder; compliance was
// already judged before substitution.
func fillPlaceholders(result *model.ExtractionResult) {
	if result.Title == "" {
		result.Title = model.PlaceholderTitle
	}
	if result.Venue == "" {
		result.Venue = model.PlaceholderVenue
	}
	if result.Address == "" {
		result.Address = model.PlaceholderAddress
	}
}
