package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/readnest/readnest/internal/common"
)

// FeedSubscription is a saved RSS/Atom source. The URL is not required to be
// unique across subscriptions; no dedup is enforced at this layer.
type FeedSubscription struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
	IsActive    bool      `json:"is_active"`
	Owner       string    `json:"user_id,omitempty"`
}

func (f *FeedSubscription) Finalize() {
	if f.ID == "" {
		f.ID = NewID("feed")
	}
	if f.LastUpdated.IsZero() {
		f.LastUpdated = time.Now().UTC()
	}
}

func (f *FeedSubscription) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("%w: feed subscription missing id", common.ErrDecode)
	}
	if f.URL == "" {
		return fmt.Errorf("%w: feed subscription %s missing url", common.ErrDecode, f.ID)
	}
	return nil
}

func (f *FeedSubscription) Matches(q string) bool {
	return strings.Contains(strings.ToLower(f.Title), q) ||
		strings.Contains(strings.ToLower(f.Description), q) ||
		strings.Contains(strings.ToLower(f.URL), q)
}

// FeedPatch carries the recognized update options for a feed subscription.
type FeedPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

func (p FeedPatch) Apply(f *FeedSubscription) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
	if p.LastUpdated != nil {
		f.LastUpdated = *p.LastUpdated
	}
}
