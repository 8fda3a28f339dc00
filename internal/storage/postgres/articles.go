package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/readnest/readnest/internal/common"
	"github.com/readnest/readnest/internal/dbx"
	"github.com/readnest/readnest/internal/models"
)

// ArticleStore implements article persistence over PostgreSQL.
//
// There is deliberately no unique index on url: merge-time dedup is
// process-local and the file backend behaves the same way.
type ArticleStore struct {
	db *sql.DB
}

func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `id, title, source, snippet, date, type, url, feed_id, content, author, tags, user_id`

func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	var (
		a    models.Article
		tags []byte

		url, feedID, content, author, owner sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Source, &a.Snippet, &a.Date, &a.Type,
		&url, &feedID, &content, &author, &tags, &owner); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &a.Tags); err != nil {
			return nil, fmt.Errorf("%w: article %s tags: %v", common.ErrDecode, a.ID, err)
		}
	}
	a.URL = url.String
	a.FeedID = feedID.String
	a.Content = content.String
	a.Author = author.String
	a.Owner = owner.String
	return &a, nil
}

func (s *ArticleStore) List(ctx context.Context, owner string) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	args := []any{}
	if owner != "" {
		query += ` WHERE user_id = $1`
		args = append(args, owner)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}
	defer rows.Close()

	var result []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *ArticleStore) Get(ctx context.Context, id string) (*models.Article, error) {
	return getArticle(ctx, s.db, id)
}

func getArticle(ctx context.Context, db dbx.DBTX, id string) (*models.Article, error) {
	row := db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select article: %w", err)
	}
	return a, nil
}

func (s *ArticleStore) Create(ctx context.Context, rec *models.Article) (*models.Article, error) {
	rec.Finalize()
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO articles (id, title, source, snippet, date, type, url, feed_id, content, author, tags, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.Title, rec.Source, rec.Snippet, rec.Date, rec.Type,
		nullable(rec.URL), nullable(rec.FeedID), nullable(rec.Content), nullable(rec.Author), tags, nullable(rec.Owner))
	if err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	return rec, nil
}

func (s *ArticleStore) Update(ctx context.Context, id string, patch models.ArticlePatch) (*models.Article, error) {
	var out *models.Article
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := getArticle(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(cur)

		tags, err := json.Marshal(cur.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE articles
			SET title = $2, snippet = $3, content = $4, tags = $5
			WHERE id = $1`,
			cur.ID, cur.Title, cur.Snippet, nullable(cur.Content), tags)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ArticleStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *ArticleStore) Search(ctx context.Context, owner, query string) ([]*models.Article, error) {
	q := `SELECT ` + articleColumns + ` FROM articles WHERE (title ILIKE $1 OR content ILIKE $1 OR snippet ILIKE $1)`
	args := []any{likePattern(query)}
	if owner != "" {
		q += ` AND user_id = $2`
		args = append(args, owner)
	}
	q += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	var result []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
