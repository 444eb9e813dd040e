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

func snapFromURL(t *testing.T, html, url string) *page.Snapshot {
	t.Helper()
	snap, err := page.New(strings.NewReader(html), url)
	require.NoError(t, err)
	return snap
}

func TestMetaTagsExtract(t *testing.T) {
	html := `<html><head>
	<meta property="og:title" content="Jazz Night at the Blue Room">
	<meta property="og:description" content="An intimate evening of live jazz.">
	<meta property="og:image" content="/img/jazz-social.jpg">
	</head><body></body></html>`

	partial, err := MetaTags{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)

	assert.Equal(t, "Jazz Night at the Blue Room", partial.Proposals[model.FieldTitle].Value)
	assert.Equal(t, 80, partial.Proposals[model.FieldTitle].Score)
	assert.Equal(t, 75, partial.Proposals[model.FieldDescription].Score)
	assert.Equal(t, "https://example.com/img/jazz-social.jpg", partial.Proposals[model.FieldImageURL].Value)
	assert.False(t, partial.GenericTitle)
}

func TestMetaTagsTwitterAndTitleFallbacks(t *testing.T) {
	html := `<html><head>
	<title>Fallback Title</title>
	<meta name="twitter:image" content="https://cdn.example.net/card.png">
	<meta name="description" content="plain seo description">
	</head><body></body></html>`

	partial, err := MetaTags{}.Extract(context.Background(), snapFrom(t, html), config.DefaultCascade())
	require.NoError(t, err)

	assert.Equal(t, "Fallback Title", partial.Proposals[model.FieldTitle].Value)
	assert.Equal(t, "https://cdn.example.net/card.png", partial.Proposals[model.FieldImageURL].Value)
	assert.Equal(t, "plain seo description", partial.Proposals[model.FieldDescription].Value)
}

func TestMetaTagsLowSignalHostCapsScores(t *testing.T) {
	html := `<html><head>
	<meta property="og:title" content="Warehouse Rave Saturday">
	<meta property="og:description" content="All night long.">
	</head><body></body></html>`

	partial, err := MetaTags{}.Extract(context.Background(),
		snapFromURL(t, html, "https://www.instagram.com/p/abc123/"), config.DefaultCascade())
	require.NoError(t, err)

	assert.Equal(t, 70, partial.Proposals[model.FieldTitle].Score)
	assert.Equal(t, 65, partial.Proposals[model.FieldDescription].Score)
	assert.False(t, partial.GenericTitle, "a real title on a low-signal host is capped, not flagged")
}

func TestMetaTagsGenericTitleFlagged(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"engagement counts", "1,024 likes, 37 comments - DJ Spin on Instagram: tonight!"},
		{"login wall", "Log in or sign up to view"},
		{"platform suffix", "Events | Facebook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<html><head><meta property="og:title" content="` + tt.title + `"></head><body></body></html>`
			partial, err := MetaTags{}.Extract(context.Background(),
				snapFromURL(t, html, "https://www.instagram.com/p/abc123/"), config.DefaultCascade())
			require.NoError(t, err)

			assert.True(t, partial.GenericTitle)
			assert.Equal(t, 40, partial.Proposals[model.FieldTitle].Score, "generic titles are kept but distrusted")
			assert.Equal(t, tt.title, partial.Proposals[model.FieldTitle].Value)
		})
	}
}

func TestMetaTagsEmptyHead(t *testing.T) {
	partial, err := MetaTags{}.Extract(context.Background(), snapFrom(t, "<html><body><p>hi</p></body></html>"), config.DefaultCascade())
	require.NoError(t, err)
	assert.True(t, partial.Empty())
}
