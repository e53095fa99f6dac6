package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rssreader/internal/app"
	"rssreader/internal/domain"
	"rssreader/internal/infrastructure/config"
)

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <link href="https://atom.example/"/>
  <updated>2025-01-07T08:00:00Z</updated>
  <id>urn:atom</id>
  <entry>
    <title>Entry</title>
    <link href="https://atom.example/entry"/>
    <id>urn:atom:1</id>
    <updated>2025-01-07T08:00:00Z</updated>
    <summary>Summary text</summary>
  </entry>
</feed>`

func TestFetchOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/atom" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(atomFeed))
	}))
	defer srv.Close()

	cfg, err := config.Parse([]byte(fmt.Sprintf(`
app:
  connect_timeout: 5
  feed_urls:
    - name: Atom
      url: %s/atom
    - name: Missing
      url: %s/missing
`, srv.URL, srv.URL)))
	require.NoError(t, err)

	var out bytes.Buffer
	log := app.NewLogger(cfg, io.Discard)
	require.NoError(t, app.FetchOnce(context.Background(), cfg, log, false, &out))

	var results []domain.FeedResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)

	assert.Equal(t, "Atom", results[0].Name)
	assert.Equal(t, "Atom Feed", results[0].Title)
	require.Len(t, results[0].Articles, 1)
	assert.Equal(t, "Entry", results[0].Articles[0].Title)
	assert.Equal(t, "Summary text", results[0].Articles[0].ContentSnippet)

	assert.Equal(t, "Missing", results[1].Name)
	assert.Equal(t, "status code 404", results[1].Error)
	assert.False(t, strings.Contains(out.String(), "debugData"))
}

func TestNewLoggerFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"

	var buf bytes.Buffer
	app.NewLogger(cfg, &buf).Info("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
