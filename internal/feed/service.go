package feed

import (
	"context"
	"time"

	"github.com/readnest/readnest/internal/logging"
	"github.com/readnest/readnest/internal/models"
	"github.com/readnest/readnest/internal/storage"
)

// Service ties the fetcher and merge engine to the storage coordinators:
// fetch candidates, compare against the stored collection, persist only the
// net-new articles.
type Service struct {
	fetcher  *Fetcher
	feeds    storage.Store[models.FeedSubscription, models.FeedPatch]
	articles storage.Store[models.Article, models.ArticlePatch]
	log      logging.Logger
}

func NewService(
	fetcher *Fetcher,
	feeds storage.Store[models.FeedSubscription, models.FeedPatch],
	articles storage.Store[models.Article, models.ArticlePatch],
	log logging.Logger,
) *Service {
	return &Service{fetcher: fetcher, feeds: feeds, articles: articles, log: log}
}

// Subscribe fetches url, stores a new subscription owned by owner, and
// ingests the fetched entries. Returns the subscription and the number of
// net-new articles stored.
func (s *Service) Subscribe(ctx context.Context, url, displayName, owner string) (*models.FeedSubscription, int, error) {
	sub, candidates, err := s.fetcher.Fetch(ctx, url, displayName)
	if err != nil {
		return nil, 0, err
	}
	sub.Owner = owner

	created, err := s.feeds.Create(ctx, sub)
	if err != nil {
		return nil, 0, err
	}

	added := s.ingest(ctx, created, candidates)
	return created, added, nil
}

// IngestURL fetches url and ingests its entries for owner without creating
// a subscription. Stored articles carry no feed reference.
func (s *Service) IngestURL(ctx context.Context, url, displayName, owner string) (int, error) {
	sub, candidates, err := s.fetcher.Fetch(ctx, url, displayName)
	if err != nil {
		return 0, err
	}
	sub.Owner = owner
	return s.ingest(ctx, sub, candidates), nil
}

// Refresh re-fetches an existing subscription and ingests anything new.
func (s *Service) Refresh(ctx context.Context, id string) (*models.FeedSubscription, int, error) {
	sub, err := s.feeds.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	_, candidates, err := s.fetcher.Fetch(ctx, sub.URL, sub.Title)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	updated, err := s.feeds.Update(ctx, sub.ID, models.FeedPatch{LastUpdated: &now})
	if err != nil {
		s.log.Warn(ctx, "failed to record refresh time", "feed", sub.ID, "error", err)
		updated = sub
	}

	added := s.ingest(ctx, updated, candidates)
	return updated, added, nil
}

// ingest merges candidates against the owner's stored articles and persists
// the accepted ones. Storage failures on individual articles are logged,
// not surfaced: the merge is best-effort.
func (s *Service) ingest(ctx context.Context, sub *models.FeedSubscription, candidates []*models.Article) int {
	for _, a := range candidates {
		a.FeedID = sub.ID
		a.Owner = sub.Owner
		if a.Source == "" {
			a.Source = sub.Title
		}
	}

	existing, err := s.articles.List(ctx, sub.Owner)
	if err != nil {
		s.log.Warn(ctx, "could not load existing articles, merging against empty set", "error", err)
		existing = nil
	}

	added := 0
	for _, a := range Merge(existing, candidates) {
		if _, err := s.articles.Create(ctx, a); err != nil {
			s.log.Warn(ctx, "failed to store article", "url", a.URL, "error", err)
			continue
		}
		added++
	}
	return added
}
