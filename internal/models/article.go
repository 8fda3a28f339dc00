package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/readnest/readnest/internal/common"
)

// snippetLen bounds the snippet derived from article content.
const snippetLen = 200

// Article is a fetched or imported piece of reading material. For merge
// purposes an article is identified by its URL, not its ID. FeedID is a weak
// reference to a FeedSubscription: lookup only, never cascaded.
type Article struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Source  string   `json:"source"`
	Snippet string   `json:"snippet"`
	Date    string   `json:"date"`
	Type    string   `json:"type"`
	URL     string   `json:"url,omitempty"`
	FeedID  string   `json:"feed_id,omitempty"`
	Content string   `json:"content,omitempty"`
	Author  string   `json:"author,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Owner   string   `json:"user_id,omitempty"`
}

func (a *Article) Finalize() {
	if a.ID == "" {
		a.ID = NewID("article")
	}
	if a.Date == "" {
		a.Date = time.Now().UTC().Format("2006-01-02")
	}
	if a.Type == "" {
		a.Type = "rss"
	}
	if a.Snippet == "" {
		a.Snippet = Snippet(a.Content)
	}
}

func (a *Article) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: article missing id", common.ErrDecode)
	}
	return nil
}

func (a *Article) Matches(q string) bool {
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Content), q) ||
		strings.Contains(strings.ToLower(a.Snippet), q) ||
		strings.Contains(strings.ToLower(a.Source), q)
}

// Snippet returns the first 200 characters of s, with an ellipsis suffix
// when truncated.
func Snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen]) + "..."
}

// ArticlePatch carries the recognized update options for an article.
// A content change recomputes the snippet.
type ArticlePatch struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func (p ArticlePatch) Apply(a *Article) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
		a.Snippet = Snippet(a.Content)
	}
	if p.Tags != nil {
		a.Tags = p.Tags
	}
}
