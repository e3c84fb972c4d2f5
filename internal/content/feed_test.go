package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Engineering Blog</title>
  <link>https://example.com/</link>
  <description>Posts</description>
  <item>
    <title>Debugging in Production</title>
    <link>https://example.com/blog/debugging-prod/</link>
    <guid>https://example.com/blog/debugging-prod/</guid>
    <pubDate>Mon, 15 Jan 2024 10:00:00 GMT</pubDate>
    <category>ops</category>
    <category>debugging</category>
    <description>&lt;p&gt;Finding &lt;b&gt;bugs&lt;/b&gt; live.&lt;/p&gt;</description>
  </item>
  <item>
    <title>Next.js Patterns</title>
    <link>https://example.com/blog/nextjs-patterns.html</link>
    <description>Plain text summary</description>
  </item>
  <item>
    <title></title>
    <link>https://example.com/blog/untitled</link>
  </item>
</channel>
</rss>`

func TestFeedSourceFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "feed.xml", sampleRSS)

	articles, err := NewFeedSource(path, nil).ListArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "debugging-prod", first.ID)
	assert.Equal(t, "Debugging in Production", first.Title)
	assert.Equal(t, []string{"ops", "debugging"}, first.Tags)
	assert.Equal(t, "Finding bugs live.", first.Excerpt)
	assert.True(t, first.PublishedAt.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)))

	second := articles[1]
	assert.Equal(t, "nextjs-patterns", second.ID)
	assert.Equal(t, "Plain text summary", second.Excerpt)
	assert.True(t, second.PublishedAt.IsZero())
	assert.NotNil(t, second.Tags)
}

func TestFeedSourceURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	articles, err := NewFeedSource(server.URL+"/feed.xml", nil).ListArticles(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestFeedSourceMissingFile(t *testing.T) {
	_, err := NewFeedSource(filepath.Join(t.TempDir(), "nope.xml"), nil).ListArticles(context.Background())
	assert.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain words", StripHTML("  plain \n words "))
	assert.Equal(t, "Hello world & friends", StripHTML("<p>Hello <em>world</em> &amp; friends</p>"))
}
