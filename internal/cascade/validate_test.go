package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
)

func fullRecord() *model.ExtractionResult {
	return &model.ExtractionResult{
		Title:      "Jazz Night at the Blue Room",
		Venue:      "The Blue Room",
		Address:    "702 Congress Ave, Austin, TX 78701",
		Date:       "2026-03-14",
		Categories: []model.Category{model.CategoryMusic},
	}
}

func TestValidateCompliantRecord(t *testing.T) {
	v := Validate(fullRecord(), config.DefaultCascade())

	assert.True(t, v.Compliant)
	assert.Equal(t, 100, v.Score)
	assert.Empty(t, v.Flags)
}

func TestValidateMissingRequiredFields(t *testing.T) {
	result := &model.ExtractionResult{
		Categories: []model.Category{model.CategoryOther},
	}
	v := Validate(result, config.DefaultCascade())

	assert.False(t, v.Compliant)
	assert.Contains(t, v.Flags, "title_present")
	assert.Contains(t, v.Flags, "venue_present")
	assert.Contains(t, v.Flags, "address_present")
	assert.Contains(t, v.Flags, "date_present")
	assert.Less(t, v.Score, 100)
}

func TestValidateFillsPlaceholdersAfterJudging(t *testing.T) {
	cfg := config.DefaultCascade()
	cfg.EnforceHashRequirements = true

	result := &model.ExtractionResult{Categories: []model.Category{model.CategoryOther}}
	v := Validate(result, cfg)

	assert.False(t, v.Compliant, "placeholders do not count toward compliance")
	assert.Equal(t, model.PlaceholderTitle, result.Title)
	assert.Equal(t, model.PlaceholderVenue, result.Venue)
	assert.Equal(t, model.PlaceholderAddress, result.Address)
}

func TestValidateNoPlaceholdersWhenNotEnforcing(t *testing.T) {
	cfg := config.DefaultCascade()
	cfg.EnforceHashRequirements = false

	result := &model.ExtractionResult{Categories: []model.Category{model.CategoryOther}}
	Validate(result, cfg)

	assert.Empty(t, result.Title)
	assert.Empty(t, result.Venue)
	assert.Empty(t, result.Address)
}

func TestValidatePlaceholdersCountAsMissing(t *testing.T) {
	result := fullRecord()
	result.Title = model.PlaceholderTitle

	v := Validate(result, config.DefaultCascade())
	assert.False(t, v.Compliant)
	assert.Contains(t, v.Flags, "title_present")
}

func TestValidateDateShape(t *testing.T) {
	result := fullRecord()
	result.Date = "March 14, 2026"

	v := Validate(result, config.DefaultCascade())
	assert.False(t, v.Compliant)
	assert.Contains(t, v.Flags, "date_iso")
}

func TestValidateAddressCommaRule(t *testing.T) {
	result := fullRecord()
	result.Address = "702 Congress Ave Austin"

	v := Validate(result, config.DefaultCascade())
	assert.False(t, v.Compliant)
	assert.Contains(t, v.Flags, "address_comma")

	cfg := config.DefaultCascade()
	cfg.RequireAddressComma = false
	v = Validate(fullRecord(), cfg)
	assert.True(t, v.Compliant)
}

func TestValidateCategories(t *testing.T) {
	result := fullRecord()
	result.Categories = nil
	v := Validate(result, config.DefaultCascade())
	assert.Contains(t, v.Flags, "categories_valid")

	result = fullRecord()
	result.Categories = []model.Category{model.Category("Parties")}
	v = Validate(result, config.DefaultCascade())
	assert.Contains(t, v.Flags, "categories_valid")
}
