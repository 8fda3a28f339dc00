package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/readnest/readnest/internal/logging"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>Example Blog</title>
<description>Posts about examples</description>
<item>
  <title>First Post</title>
  <link>https://blog.example/first</link>
  <description>Short summary here</description>
  <content:encoded><![CDATA[<p>Full <b>body</b> text</p><script>alert(1)</script>]]></content:encoded>
  <pubDate>Mon, 02 Jan 2023 15:04:05 GMT</pubDate>
  <author>someone@example.com (Alex Writer)</author>
  <category>go</category>
  <category>feeds</category>
</item>
<item>
  <title>Second Post</title>
  <link>https://blog.example/second</link>
  <description>Only a description</description>
</item>
<item>
  <description>no title and no link, should be skipped</description>
</item>
</channel>
</rss>`

func TestFetchNormalizesEntries(t *testing.T) {
	srv := feedServer(t, rssFixture)
	f := NewFetcher(testLogger(), 5*time.Second, 0)

	sub, articles, err := f.Fetch(context.Background(), srv.URL, "")
	require.NoError(t, err)

	require.Equal(t, "Example Blog", sub.Title)
	require.Equal(t, "Posts about examples", sub.Description)
	require.Equal(t, srv.URL, sub.URL)
	require.True(t, sub.IsActive)

	// The title-less, link-less item is dropped.
	require.Len(t, articles, 2)

	first := articles[0]
	require.Equal(t, "First Post", first.Title)
	require.Equal(t, "https://blog.example/first", first.URL)
	require.Equal(t, "Full body text", first.Content) // content wins over description, HTML stripped
	require.Equal(t, "2023-01-02", first.Date)
	require.Equal(t, "rss", first.Type)
	require.Equal(t, "Example Blog", first.Source)
	require.Equal(t, []string{"go", "feeds"}, first.Tags)

	second := articles[1]
	require.Equal(t, "Only a description", second.Content)
	require.Equal(t, time.Now().UTC().Format("2006-01-02"), second.Date)
}

func TestFetchDisplayNameOverridesFeedTitle(t *testing.T) {
	srv := feedServer(t, rssFixture)
	f := NewFetcher(testLogger(), 5*time.Second, 0)

	sub, articles, err := f.Fetch(context.Background(), srv.URL, "My Reading List")
	require.NoError(t, err)
	require.Equal(t, "My Reading List", sub.Title)
	require.Equal(t, "My Reading List", articles[0].Source)
}

func TestFetchTruncatesLongContent(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "words "
	}
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>
<item><title>Long</title><link>https://x.example/1</link><description>` + long + `</description></item>
</channel></rss>`
	srv := feedServer(t, body)
	f := NewFetcher(testLogger(), 5*time.Second, 0)

	_, articles, err := f.Fetch(context.Background(), srv.URL, "")
	require.NoError(t, err)
	require.Len(t, []rune(articles[0].Content), maxContentLen)
	require.Len(t, []rune(articles[0].Snippet), 203) // 200 chars plus ellipsis
}

func TestFetchCapsTags(t *testing.T) {
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>
<item><title>Tagged</title><link>https://x.example/1</link>
<category>a</category><category>b</category><category>c</category>
<category>d</category><category>e</category><category>f</category><category>g</category>
</item></channel></rss>`
	srv := feedServer(t, body)
	f := NewFetcher(testLogger(), 5*time.Second, 0)

	_, articles, err := f.Fetch(context.Background(), srv.URL, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, articles[0].Tags)
}

func TestFetchCapsEntryCount(t *testing.T) {
	items := ""
	for i := 0; i < 10; i++ {
		items += fmt.Sprintf("<item><title>Post %d</title><link>https://x.example/%d</link></item>", i, i)
	}
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>` + items + `</channel></rss>`
	srv := feedServer(t, body)
	f := NewFetcher(testLogger(), 5*time.Second, 3)

	_, articles, err := f.Fetch(context.Background(), srv.URL, "")
	require.NoError(t, err)
	require.Len(t, articles, 3)
}

func TestFetchAtom(t *testing.T) {
	body := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <entry>
    <title>Atom Entry</title>
    <link href="https://atom.example/1"/>
    <updated>2024-06-01T10:00:00Z</updated>
    <summary>atom summary</summary>
  </entry>
</feed>`
	srv := feedServer(t, body)
	f := NewFetcher(testLogger(), 5*time.Second, 0)

	sub, articles, err := f.Fetch(context.Background(), srv.URL, "")
	require.NoError(t, err)
	require.Equal(t, "Atom Feed", sub.Title)
	require.Len(t, articles, 1)
	require.Equal(t, "https://atom.example/1", articles[0].URL)
	require.Equal(t, "2024-06-01", articles[0].Date)
}

func TestFetchUnparsableBody(t *testing.T) {
	srv := feedServer(t, "this is not xml at all")
	f := NewFetcher(testLogger(), 5*time.Second, 0)

	_, _, err := f.Fetch(context.Background(), srv.URL, "")
	require.ErrorIs(t, err, ErrFetch)
}

func TestFetchNoUsableEntries(t *testing.T) {
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`
	srv := feedServer(t, body)
	f := NewFetcher(testLogger(), 5*time.Second, 0)

	_, _, err := f.Fetch(context.Background(), srv.URL, "")
	require.ErrorIs(t, err, ErrNoEntries)

	onlyBad := `<?xml version="1.0"?><rss version="2.0"><channel><title>Bad</title>
<item><description>nothing identifying</description></item></channel></rss>`
	srv2 := feedServer(t, onlyBad)
	_, _, err = f.Fetch(context.Background(), srv2.URL, "")
	require.ErrorIs(t, err, ErrNoEntries)
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)
	f := NewFetcher(testLogger(), 5*time.Second, 0)

	_, _, err := f.Fetch(context.Background(), srv.URL, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "410")
}
