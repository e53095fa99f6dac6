package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"rssreader/internal/sanitizer"
)

type img struct {
	src    string
	alt    string
	hasAlt bool
}

// images разбирает фрагмент и возвращает src/alt всех тегов img.
func images(t *testing.T, fragment string) []img {
	t.Helper()
	var found []img
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return found
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "img" {
			continue
		}
		var cur img
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			switch string(key) {
			case "src":
				cur.src = string(val)
			case "alt":
				cur.alt = string(val)
				cur.hasAlt = true
			}
		}
		found = append(found, cur)
	}
}

func TestDeferImagesReplacesImages(t *testing.T) {
	in := `<p>Before</p><img src="https://example.com/a.png" alt="A chart"><p>After</p>`

	out := sanitizer.DeferImages(in)

	assert.NotContains(t, out, "<img")
	assert.True(t, strings.HasPrefix(out, "<p>Before</p>"))
	assert.True(t, strings.HasSuffix(out, "<p>After</p>"))

	placeholders := sanitizer.Placeholders(out)
	require.Len(t, placeholders, 1)
	assert.Equal(t, "https://example.com/a.png", placeholders[0].Src)
	assert.Equal(t, "A chart", placeholders[0].Alt)
	assert.Equal(t, ` src="https://example.com/a.png" alt="A chart"`, placeholders[0].OriginalAttributes)
	assert.Contains(t, out, `<div class="image-placeholder-text">A chart</div>`)
}

func TestDeferImagesAltFallback(t *testing.T) {
	out := sanitizer.DeferImages(`<img src="/x.jpg">`)

	placeholders := sanitizer.Placeholders(out)
	require.Len(t, placeholders, 1)
	assert.Equal(t, "/x.jpg", placeholders[0].Src)
	assert.Equal(t, sanitizer.DefaultAlt, placeholders[0].Alt)
}

func TestDeferImagesWithoutImagesIsIdentity(t *testing.T) {
	tests := []string{
		"",
		"plain text",
		`<p class="x">Hello <B>World</B></p>`,
		`<div><a href="/a?b=1&c=2">link</a></div>`,
		`<imgur>not an image</imgur>`,
	}
	for _, in := range tests {
		assert.Equal(t, in, sanitizer.DeferImages(in))
		assert.Equal(t, in, sanitizer.RestoreImages(in))
	}
}

func TestDeferImagesPreservesSurroundingMarkup(t *testing.T) {
	in := "<P CLASS=\"Lead\">Text</P>\n<IMG SRC=\"/a.png\"><br/>tail &amp; more"

	out := sanitizer.DeferImages(in)

	assert.True(t, strings.HasPrefix(out, "<P CLASS=\"Lead\">Text</P>\n"))
	assert.True(t, strings.HasSuffix(out, "<br/>tail &amp; more"))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "no images", html: `<p>nothing here</p>`},
		{name: "src then alt", html: `<img src="https://e.com/1.png" alt="one">`},
		{name: "alt then src", html: `<img alt="two" src="https://e.com/2.png">`},
		{name: "extra attributes", html: `<img width="10" alt="three" class="wide" src="/3.png" loading="lazy">`},
		{name: "self closing", html: `<p><img src='/4.png' alt='four' /></p>`},
		{name: "no alt", html: `<img src="/5.png">`},
		{name: "unquoted", html: `<img src=/6.png alt=six>`},
		{name: "angle bracket in alt", html: `<img alt="a > b" src="/7.png">`},
		{name: "entities", html: `<img src="/8.png?a=1&amp;b=2" alt="Tom &amp; Jerry">`},
		{name: "feed div with placeholder class", html: `<div class="image-placeholder">feed div</div><img src="/11.png">`},
		{name: "several", html: `<div><img src="/9.png" alt="nine"><span>x</span><img alt="ten" src="/10.png"></div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deferred := sanitizer.DeferImages(tt.html)
			restored := sanitizer.RestoreImages(deferred)

			assert.Equal(t, tt.html, restored)
			assert.Equal(t, images(t, tt.html), images(t, restored))
			assert.Equal(t, deferred, sanitizer.DeferImages(restored))
		})
	}
}

func TestRestoreImagesWithoutOriginalAttributes(t *testing.T) {
	in := `<div class="image-placeholder" data-src="/a.png" data-alt="Alt"><div>inner</div></div><p>x</p>`

	out := sanitizer.RestoreImages(in)

	assert.Equal(t, `<img src="/a.png" alt="Alt"><p>x</p>`, out)
}

func TestRestoreImagesLeavesOtherDivs(t *testing.T) {
	in := `<div class="content-section"><div class="image-placeholder other" data-src="/a.png" data-original-attributes=" src=&quot;/a.png&quot;"><span>icon</span></div></div>`

	out := sanitizer.RestoreImages(in)

	assert.Equal(t, `<div class="content-section"><img src="/a.png"></div>`, out)
}

func TestRestoreImagesKeepsClassOnlyDivs(t *testing.T) {
	in := `<div class="image-placeholder">feed div</div>`

	assert.Equal(t, in, sanitizer.RestoreImages(in))
	assert.Empty(t, sanitizer.Placeholders(in))
}
