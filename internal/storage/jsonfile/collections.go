package jsonfile

import (
	"github.com/readnest/readnest/internal/logging"
	"github.com/readnest/readnest/internal/models"
)

// Collection file names, one per entity type.
const (
	journalsFile  = "journals.json"
	feedsFile     = "feed_subscriptions.json"
	articlesFile  = "articles.json"
	documentsFile = "documents.json"
)

func NewJournalStore(dir string, log logging.Logger) (*Store[models.JournalEntry, models.JournalPatch], error) {
	return New(dir, journalsFile, Codec[models.JournalEntry, models.JournalPatch]{
		ID:       func(j *models.JournalEntry) string { return j.ID },
		Owner:    func(j *models.JournalEntry) string { return j.Owner },
		Finalize: (*models.JournalEntry).Finalize,
		Apply:    func(j *models.JournalEntry, p models.JournalPatch) { p.Apply(j) },
		Validate: (*models.JournalEntry).Validate,
		Match:    (*models.JournalEntry).Matches,
	}, log)
}

func NewFeedStore(dir string, log logging.Logger) (*Store[models.FeedSubscription, models.FeedPatch], error) {
	return New(dir, feedsFile, Codec[models.FeedSubscription, models.FeedPatch]{
		ID:       func(f *models.FeedSubscription) string { return f.ID },
		Owner:    func(f *models.FeedSubscription) string { return f.Owner },
		Finalize: (*models.FeedSubscription).Finalize,
		Apply:    func(f *models.FeedSubscription, p models.FeedPatch) { p.Apply(f) },
		Validate: (*models.FeedSubscription).Validate,
		Match:    (*models.FeedSubscription).Matches,
	}, log)
}

func NewArticleStore(dir string, log logging.Logger) (*Store[models.Article, models.ArticlePatch], error) {
	return New(dir, articlesFile, Codec[models.Article, models.ArticlePatch]{
		ID:       func(a *models.Article) string { return a.ID },
		Owner:    func(a *models.Article) string { return a.Owner },
		Finalize: (*models.Article).Finalize,
		Apply:    func(a *models.Article, p models.ArticlePatch) { p.Apply(a) },
		Validate: (*models.Article).Validate,
		Match:    (*models.Article).Matches,
	}, log)
}

func NewDocumentStore(dir string, log logging.Logger) (*Store[models.Document, models.DocumentPatch], error) {
	return New(dir, documentsFile, Codec[models.Document, models.DocumentPatch]{
		ID:       func(d *models.Document) string { return d.ID },
		Owner:    func(d *models.Document) string { return d.Owner },
		Finalize: (*models.Document).Finalize,
		Apply:    func(d *models.Document, p models.DocumentPatch) { p.Apply(d) },
		Validate: (*models.Document).Validate,
		Match:    (*models.Document).Matches,
	}, log)
}
