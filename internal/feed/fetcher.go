// Package feed fetches RSS/Atom sources, normalizes their entries into
// article records, and merges them into existing storage without creating
// duplicates.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/readnest/readnest/internal/logging"
	"github.com/readnest/readnest/internal/models"
)

const (
	// maxFeedBytes caps the response body read per fetch.
	maxFeedBytes = 5 << 20

	// maxContentLen bounds the plain-text content stored per article.
	maxContentLen = 1000

	// maxTags bounds the tags retained per entry, in source order.
	maxTags = 5

	// DefaultMaxEntries bounds the entries retained per fetch.
	DefaultMaxEntries = 50
)

// ErrFetch marks a feed that could not be retrieved or parsed. ErrNoEntries
// marks one that parsed but contained nothing usable. Both wrap into the
// errors Fetch returns, so callers match with errors.Is.
var (
	ErrFetch     = errors.New("feed fetch failed")
	ErrNoEntries = fmt.Errorf("%w: no entries", ErrFetch)
)

type Fetcher struct {
	parser     *gofeed.Parser
	client     *http.Client
	log        logging.Logger
	maxEntries int
}

// NewFetcher builds a fetcher with a bounded-timeout HTTP client.
// maxEntries ≤ 0 selects DefaultMaxEntries.
func NewFetcher(log logging.Logger, timeout time.Duration, maxEntries int) *Fetcher {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Fetcher{
		parser: gofeed.NewParser(),
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		log:        log,
		maxEntries: maxEntries,
	}
}

// Fetch retrieves and parses the feed at url, returning a subscription
// record and the normalized articles. A parse failure with no recoverable
// entries is an error; so is a structurally valid feed with zero entries.
// Individual entries missing both a title and a link are skipped rather
// than failing the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, url, displayName string) (*models.FeedSubscription, []*models.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", "ReadNest/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("%w: unexpected response status %d", ErrFetch, resp.StatusCode)
	}

	parsed, err := f.parser.Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse: %w", ErrFetch, err)
	}
	if parsed == nil || len(parsed.Items) == 0 {
		return nil, nil, ErrNoEntries
	}

	title := displayName
	if title == "" {
		title = parsed.Title
	}
	if title == "" {
		title = url
	}

	sub := &models.FeedSubscription{
		URL:         url,
		Title:       title,
		Description: parsed.Description,
		LastUpdated: time.Now().UTC(),
		IsActive:    true,
	}

	articles := make([]*models.Article, 0, min(len(parsed.Items), f.maxEntries))
	for _, item := range parsed.Items {
		if len(articles) >= f.maxEntries {
			break
		}
		if item == nil || (item.Title == "" && item.Link == "") {
			f.log.Debug(ctx, "skipping malformed feed entry", "feed", url)
			continue
		}
		articles = append(articles, f.normalize(item, sub))
	}
	if len(articles) == 0 {
		return nil, nil, ErrNoEntries
	}

	return sub, articles, nil
}

// normalize converts one parsed entry into an article record. Content
// precedence: structured content, else summary/description; stripped to
// plain text and bounded before storage.
func (f *Fetcher) normalize(item *gofeed.Item, sub *models.FeedSubscription) *models.Article {
	raw := item.Content
	if raw == "" {
		raw = item.Description
	}
	content := truncateRunes(StripHTML(raw), maxContentLen)

	snippetBase := content
	if snippetBase == "" {
		snippetBase = StripHTML(item.Description)
	}

	title := item.Title
	if title == "" {
		title = "Untitled"
	}

	var author string
	if item.Author != nil {
		author = item.Author.Name
	}

	tags := item.Categories
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	return &models.Article{
		Title:   title,
		Source:  sub.Title,
		Snippet: models.Snippet(snippetBase),
		Date:    publicationDate(item),
		Type:    "rss",
		URL:     item.Link,
		Content: content,
		Author:  author,
		Tags:    tags,
	}
}

// publicationDate falls back to "today" when the source provides no
// parseable date.
func publicationDate(item *gofeed.Item) string {
	t := item.PublishedParsed
	if t == nil {
		t = item.UpdatedParsed
	}
	if t == nil {
		now := time.Now().UTC()
		t = &now
	}
	return t.UTC().Format("2006-01-02")
}
