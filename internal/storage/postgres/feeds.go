package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/readnest/readnest/internal/common"
	"github.com/readnest/readnest/internal/dbx"
	"github.com/readnest/readnest/internal/models"
)

// FeedStore implements feed subscription persistence over PostgreSQL.
type FeedStore struct {
	db *sql.DB
}

func NewFeedStore(db *sql.DB) *FeedStore {
	return &FeedStore{db: db}
}

const feedColumns = `id, url, title, description, last_updated, is_active, user_id`

func scanFeed(row interface{ Scan(...any) error }) (*models.FeedSubscription, error) {
	var (
		f     models.FeedSubscription
		owner sql.NullString
	)
	if err := row.Scan(&f.ID, &f.URL, &f.Title, &f.Description, &f.LastUpdated, &f.IsActive, &owner); err != nil {
		return nil, err
	}
	f.Owner = owner.String
	return &f, nil
}

func (s *FeedStore) List(ctx context.Context, owner string) ([]*models.FeedSubscription, error) {
	query := `SELECT ` + feedColumns + ` FROM feed_subscriptions`
	args := []any{}
	if owner != "" {
		query += ` WHERE user_id = $1`
		args = append(args, owner)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select feed subscriptions: %w", err)
	}
	defer rows.Close()

	var result []*models.FeedSubscription
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (s *FeedStore) Get(ctx context.Context, id string) (*models.FeedSubscription, error) {
	return getFeed(ctx, s.db, id)
}

func getFeed(ctx context.Context, db dbx.DBTX, id string) (*models.FeedSubscription, error) {
	row := db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feed_subscriptions WHERE id = $1`, id)
	f, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select feed subscription: %w", err)
	}
	return f, nil
}

func (s *FeedStore) Create(ctx context.Context, rec *models.FeedSubscription) (*models.FeedSubscription, error) {
	rec.Finalize()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feed_subscriptions (id, url, title, description, last_updated, is_active, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.URL, rec.Title, rec.Description, rec.LastUpdated, rec.IsActive, nullable(rec.Owner))
	if err != nil {
		return nil, fmt.Errorf("insert feed subscription: %w", err)
	}
	return rec, nil
}

func (s *FeedStore) Update(ctx context.Context, id string, patch models.FeedPatch) (*models.FeedSubscription, error) {
	var out *models.FeedSubscription
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := getFeed(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(cur)

		_, err = tx.ExecContext(ctx, `
			UPDATE feed_subscriptions
			SET title = $2, description = $3, last_updated = $4, is_active = $5
			WHERE id = $1`,
			cur.ID, cur.Title, cur.Description, cur.LastUpdated, cur.IsActive)
		if err != nil {
			return fmt.Errorf("update feed subscription: %w", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FeedStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM feed_subscriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete feed subscription: %w", err)
	}
	return nil
}

func (s *FeedStore) Search(ctx context.Context, owner, query string) ([]*models.FeedSubscription, error) {
	q := `SELECT ` + feedColumns + ` FROM feed_subscriptions WHERE (title ILIKE $1 OR description ILIKE $1 OR url ILIKE $1)`
	args := []any{likePattern(query)}
	if owner != "" {
		q += ` AND user_id = $2`
		args = append(args, owner)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search feed subscriptions: %w", err)
	}
	defer rows.Close()

	var result []*models.FeedSubscription
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
