package layers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
	"github.com/hashapp/scout/internal/page"
)

func snapFrom(t *testing.T, html string) *page.Snapshot {
	t.Helper()
	snap, err := page.New(strings.NewReader(html), "https://example.com/events/jazz")
	require.NoError(t, err)
	return snap
}

const jazzNightLD = `<html><head><script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Event",
  "name": "Jazz Night at the Blue Room",
  "startDate": "2026-03-14T19:30:00-05:00",
  "endDate": "2026-03-14T23:00:00-05:00",
  "description": "An intimate evening of live jazz.",
  "image": "/img/jazz.jpg",
  "location": {
    "@type": "Place",
    "name": "The Blue Room",
    "address": {
      "@type": "PostalAddress",
      "streetAddress": "702 Congress Ave",
      "addressLocality": "Austin",
      "addressRegion": "TX",
      "postalCode": "78701"
    }
  },
  "offers": {
    "@type": "Offer",
    "price": "25.00",
    "priceCurrency": "USD",
    "url": "https://tickets.example.com/jazz"
  }
}
</script></head><body></body></html>`

func TestStructuredExtractsFullEvent(t *testing.T) {
	partial, err := Structured{}.Extract(context.Background(), snapFrom(t, jazzNightLD), config.DefaultCascade())
	require.NoError(t, err)

	props := partial.Proposals
	assert.Equal(t, "Jazz Night at the Blue Room", props[model.FieldTitle].Value)
	assert.Equal(t, 95, props[model.FieldTitle].Score)
	assert.Equal(t, 1, props[model.FieldTitle].Layer)
	assert.Equal(t, "2026-03-14", props[model.FieldDate].Value)
	assert.Equal(t, "19:30:00", props[model.FieldStartTime].Value)
	assert.Equal(t, "23:00:00", props[model.FieldEndTime].Value)
	assert.Equal(t, "The Blue Room", props[model.FieldVenue].Value)
	assert.Equal(t, "702 Congress Ave, Austin, TX 78701", props[model.FieldAddress].Value)
	assert.Equal(t, "https://example.com/img/jazz.jpg", props[model.FieldImageURL].Value)
	assert.Equal(t, "false", props[model.FieldFree].Value)
	assert.Equal(t, "https://tickets.example.com/jazz", props[model.FieldTicketsLink].Value)
}

func TestStructuredFreeEvent(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@type": "MusicEvent", "name": "Free Show", "offers": {"price": "0"}}
	</script></head><body></body></html>`

	partial, err := Structured{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)
	assert.Equal(t, "true", partial.Proposals[model.FieldFree].Value)
}

func TestStructuredListingProducesRecords(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	[
	  {"@type": "Event", "name": "Show One", "startDate": "2026-04-01"},
	  {"@type": "Event", "name": "Show Two", "startDate": "2026-04-02"},
	  {"@type": "Organization", "name": "Not An Event"}
	]
	</script></head><body></body></html>`

	partial, err := Structured{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)

	require.Len(t, partial.Records, 2)
	assert.Equal(t, "Show One", partial.Records[0][model.FieldTitle].Value)
	assert.Equal(t, "Show Two", partial.Records[1][model.FieldTitle].Value)
	assert.Equal(t, "Show One", partial.Proposals[model.FieldTitle].Value, "first record doubles as the single-event view")
}

func TestStructuredWalksGraphContainers(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@graph": [{"@type": ["Thing", "TheaterEvent"], "name": "Opening Night"}]}
	</script></head><body></body></html>`

	partial, err := Structured{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)
	assert.Equal(t, "Opening Night", partial.Proposals[model.FieldTitle].Value)
}

func TestStructuredSkipsMalformedBlocks(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">{not json at all</script>
	<script type="application/ld+json">{"@type": "Event", "name": "Survivor"}</script>
	</head><body></body></html>`

	partial, err := Structured{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err, "malformed blocks are skipped, never fatal")
	assert.Equal(t, "Survivor", partial.Proposals[model.FieldTitle].Value)
}

func TestStructuredEmptyPage(t *testing.T) {
	partial, err := Structured{}.Extract(context.Background(), snapFrom(t, "<html><body></body></html>"), config.DefaultCascade())
	require.NoError(t, err)
	assert.True(t, partial.Empty())
}

func TestStructuredMissingOptionalFieldsStayUnset(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@type": "Event", "name": "Bare Minimum"}
	</script></head><body></body></html>`

	partial, err := Structured{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)

	assert.Equal(t, "Bare Minimum", partial.Proposals[model.FieldTitle].Value)
	for _, field := range []model.FieldKey{
		model.FieldDate, model.FieldVenue, model.FieldAddress,
		model.FieldFree, model.FieldImageURL,
	} {
		_, ok := partial.Proposals[field]
		assert.False(t, ok, "field %s must stay unset", field)
	}
}
