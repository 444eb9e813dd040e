package layers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/model"
)

func TestSemanticTimeElement(t *testing.T) {
	html := `<html><body>
	<h1>Jazz Night</h1>
	<time datetime="2026-03-14T19:30:00">March 14</time>
	</body></html>`

	partial, err := Semantic{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)

	assert.Equal(t, "2026-03-14", partial.Proposals[model.FieldDate].Value)
	assert.Equal(t, 78, partial.Proposals[model.FieldDate].Score)
	assert.Equal(t, "19:30:00", partial.Proposals[model.FieldStartTime].Value)
	assert.Equal(t, "Jazz Night", partial.Proposals[model.FieldTitle].Value)
	assert.Equal(t, 55, partial.Proposals[model.FieldTitle].Score, "bare h1 scores at the bottom of the band")
}

func TestSemanticClassNamesOutrankBareHeadings(t *testing.T) {
	html := `<html><body>
	<h1>Venue Site</h1>
	<div class="event-title">Jazz Night at the Blue Room</div>
	<span class="venue-name">The Blue Room</span>
	<div class="address">702 Congress Ave, Austin, TX 78701</div>
	</body></html>`

	partial, err := Semantic{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)

	assert.Equal(t, "Jazz Night at the Blue Room", partial.Proposals[model.FieldTitle].Value)
	assert.Equal(t, 80, partial.Proposals[model.FieldTitle].Score)
	assert.Equal(t, "The Blue Room", partial.Proposals[model.FieldVenue].Value)
	assert.Equal(t, 78, partial.Proposals[model.FieldVenue].Score)
	assert.Equal(t, "702 Congress Ave, Austin, TX 78701", partial.Proposals[model.FieldAddress].Value)
}

func TestSemanticAddressElement(t *testing.T) {
	html := `<html><body><address>702 Congress Ave, Austin, TX</address></body></html>`

	partial, err := Semantic{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)
	assert.Equal(t, "702 Congress Ave, Austin, TX", partial.Proposals[model.FieldAddress].Value)
	assert.Equal(t, 70, partial.Proposals[model.FieldAddress].Score)
}

func TestSemanticMicrodata(t *testing.T) {
	html := `<html><body itemscope itemtype="https://schema.org/Event">
	<span itemprop="name">Comedy Showcase</span>
	<div itemprop="location" itemscope><span itemprop="name">Laugh Track</span></div>
	</body></html>`

	partial, err := Semantic{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)
	assert.Equal(t, "Comedy Showcase", partial.Proposals[model.FieldTitle].Value)
	assert.Equal(t, "Laugh Track", partial.Proposals[model.FieldVenue].Value)
	assert.Equal(t, 80, partial.Proposals[model.FieldVenue].Score)
}

func TestSemanticDateFromClassedElement(t *testing.T) {
	html := `<html><body><div class="event-date">Saturday, March 14, 2026</div></body></html>`

	partial, err := Semantic{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", partial.Proposals[model.FieldDate].Value)
}

func TestSemanticDateClassNeedsWordSegment(t *testing.T) {
	// "updated" and "candidates" contain "date" as a substring but carry
	// timestamps unrelated to the event. Only a real date word segment in
	// the class or id may propose.
	html := `<html><body>
	<div class="updated">Last updated 2026-01-10</div>
	<p id="candidates">Ballot closes 2026-02-02</p>
	</body></html>`

	partial, err := Semantic{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)
	assert.NotContains(t, partial.Proposals, model.FieldDate)

	html = `<html><body><div class="show-dates">March 14, 2026</div></body></html>`
	partial, err = Semantic{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", partial.Proposals[model.FieldDate].Value)
	assert.Equal(t, 58, partial.Proposals[model.FieldDate].Score)
}

func TestSemanticRejectsOversizedBlocks(t *testing.T) {
	long := make([]byte, 0, 300)
	for i := 0; i < 30; i++ {
		long = append(long, []byte("very long ")...)
	}
	html := `<html><body><h1>` + string(long) + `</h1></body></html>`

	partial, err := Semantic{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)
	_, ok := partial.Proposals[model.FieldTitle]
	assert.False(t, ok)
}
