package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/readnest/readnest/internal/models"
)

func newArticleStoreWithMock(t *testing.T) (*ArticleStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewArticleStore(db), mock, db
}

var articleCols = []string{"id", "title", "source", "snippet", "date", "type", "url", "feed_id", "content", "author", "tags", "user_id"}

func TestArticleStore_List_ScansTagsAndOptionalFields(t *testing.T) {
	store, mock, db := newArticleStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM articles ORDER BY date DESC`).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow("article_1_aaaaaaaa", "A", "Feed", "snip", "2024-05-01", "rss",
				"https://e.com/a", "feed_1_bbbbbbbb", "body", "Ann Author", []byte(`["go","rss"]`), nil).
			AddRow("article_2_bbbbbbbb", "B", "Upload", "snip", "2024-04-30", "pdf",
				nil, nil, nil, nil, []byte(`null`), "u1"))

	got, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 articles, got %d", len(got))
	}
	if got[0].Tags[0] != "go" || got[0].FeedID != "feed_1_bbbbbbbb" {
		t.Fatalf("unexpected first article: %+v", got[0])
	}
	if got[1].URL != "" || got[1].Tags != nil || got[1].Owner != "u1" {
		t.Fatalf("optional fields mishandled: %+v", got[1])
	}
}

func TestArticleStore_Create_FillsDefaults(t *testing.T) {
	store, mock, db := newArticleStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO articles`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := store.Create(context.Background(), &models.Article{Title: "fresh", URL: "https://e.com/fresh"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == "" || got.Type != "rss" || got.Date == "" {
		t.Fatalf("record not finalized: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
