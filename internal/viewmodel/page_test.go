package viewmodel_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rssreader/internal/domain"
	"rssreader/internal/viewmodel"
)

func results() []domain.FeedResult {
	return []domain.FeedResult{
		{
			Name:  "One",
			Title: "First Feed",
			Articles: []domain.Article{
				{
					Title:          "Hello <world>",
					PubDate:        "Tue, 07 Jan 2025 08:00:00 GMT",
					Author:         "Jane",
					ContentEncoded: `<p>Body & more</p><img src="/a.png" alt="A"><img src="/b.png">`,
					DebugData:      domain.RawItem{"title": "Hello <world>"},
				},
				{Title: "Plain", PubDate: "Unknown Date", ContentSnippet: "short"},
			},
		},
		{Name: "Two", Title: "Two", Articles: []domain.Article{}, Error: "status code 404"},
		{Name: "Three", Articles: []domain.Article{}},
	}
}

func TestNewPage(t *testing.T) {
	now := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)

	page, err := viewmodel.NewPage("RSS", results(), false, viewmodel.Home(), nil, now)

	require.NoError(t, err)
	require.Len(t, page.Feeds, 3)
	assert.Equal(t, now, page.UpdatedAt)

	first := page.Feeds[0]
	assert.Equal(t, "feed-0", first.ID)
	assert.Equal(t, "2 articles", first.NavLabel())
	require.Len(t, first.Articles, 2)

	a := first.Articles[0]
	assert.Equal(t, "article-0-0", a.ID)
	assert.Equal(t, "Jan 7, 2025", a.DisplayDate)
	assert.Equal(t, 2, a.Images)
	assert.NotContains(t, a.Body, "<img")
	assert.Empty(t, a.DebugJSON)

	b := first.Articles[1]
	assert.Equal(t, "Unknown Date", b.DisplayDate)
	assert.Contains(t, b.Body, "<h3>Summary:</h3>short")

	assert.Equal(t, "0 articles (Error)", page.Feeds[1].NavLabel())
	assert.True(t, page.Feeds[1].Failed())
	assert.Equal(t, "Three", page.Feeds[2].Title)
}

func TestNewPageDebug(t *testing.T) {
	page, err := viewmodel.NewPage("RSS", results(), true, viewmodel.Home(), nil, time.Now())

	require.NoError(t, err)
	debug := page.Feeds[0].Articles[0].DebugJSON
	assert.Contains(t, debug, `"title": "Hello <world>"`)
	assert.Equal(t, "{}", page.Feeds[0].Articles[1].DebugJSON)
}

func TestEmbedJSONEscapesMarkup(t *testing.T) {
	data, err := viewmodel.EmbedJSON(results())

	require.NoError(t, err)
	assert.NotContains(t, data, "<")
	assert.NotContains(t, data, ">")
	assert.NotContains(t, data, "&")
	assert.Contains(t, data, `Hello \u003cworld\u003e`)
	assert.Contains(t, data, `Body \u0026 more`)
	assert.NotContains(t, data, "debugData\":null")

	empty, err := viewmodel.EmbedJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestArticleHasLink(t *testing.T) {
	assert.True(t, viewmodel.ArticleView{Link: "https://e.com/a"}.HasLink())
	assert.False(t, viewmodel.ArticleView{Link: "#"}.HasLink())
	assert.False(t, viewmodel.ArticleView{Link: " "}.HasLink())
}

func TestShapeOf(t *testing.T) {
	assert.Equal(t, viewmodel.Shape{2, 0, 0}, viewmodel.ShapeOf(results()))
}

func TestPageImageToggle(t *testing.T) {
	images := viewmodel.NewImageToggles()
	page, err := viewmodel.NewPage("RSS", results(), false, viewmodel.Home(), images, time.Now())
	require.NoError(t, err)
	a := page.Feeds[0].Articles[0]

	assert.False(t, page.ImagesShown(a))
	assert.Equal(t, "Toggle Images", page.ImagesLabel(a))
	assert.Equal(t, a.Body, page.ArticleBody(a))

	assert.True(t, images.Toggle(a.Key()))
	assert.Equal(t, "Hide Images", page.ImagesLabel(a))
	body := page.ArticleBody(a)
	assert.Equal(t, 2, strings.Count(body, "<img"))
	assert.Contains(t, body, `<img src="/a.png" alt="A">`)

	assert.False(t, images.Toggle(a.Key()))
	assert.Equal(t, a.Body, page.ArticleBody(a))
}

func TestToggleIsPerArticle(t *testing.T) {
	images := viewmodel.NewImageToggles()
	images.Toggle(viewmodel.ArticleKey{Feed: 0, Article: 1})

	assert.True(t, images.Shown(viewmodel.ArticleKey{Feed: 0, Article: 1}))
	assert.False(t, images.Shown(viewmodel.ArticleKey{Feed: 1, Article: 0}))
}

func TestDisplayDate(t *testing.T) {
	tests := map[string]string{
		"Tue, 07 Jan 2025 08:00:00 GMT":   "Jan 7, 2025",
		"Tue, 07 Jan 2025 08:00:00 +0000": "Jan 7, 2025",
		"2025-01-07T08:00:00.000Z":        "Jan 7, 2025",
		"2025-01-07":                      "Jan 7, 2025",
		"Unknown Date":                    "Unknown Date",
		"":                                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, viewmodel.DisplayDate(in), in)
	}
}
