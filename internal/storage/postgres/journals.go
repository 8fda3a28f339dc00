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

// JournalStore implements journal persistence over PostgreSQL.
type JournalStore struct {
	db *sql.DB
}

func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

const journalColumns = `id, title, content, created_at, updated_at, word_count, keywords, user_id`

func scanJournal(row interface{ Scan(...any) error }) (*models.JournalEntry, error) {
	var (
		j        models.JournalEntry
		keywords []byte
		owner    sql.NullString
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Content, &j.CreatedAt, &j.UpdatedAt, &j.WordCount, &keywords, &owner); err != nil {
		return nil, err
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &j.Keywords); err != nil {
			return nil, fmt.Errorf("%w: journal %s keywords: %v", common.ErrDecode, j.ID, err)
		}
	}
	j.Owner = owner.String
	return &j, nil
}

func (s *JournalStore) List(ctx context.Context, owner string) ([]*models.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journals`
	args := []any{}
	if owner != "" {
		query += ` WHERE user_id = $1`
		args = append(args, owner)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select journals: %w", err)
	}
	defer rows.Close()

	var result []*models.JournalEntry
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

func (s *JournalStore) Get(ctx context.Context, id string) (*models.JournalEntry, error) {
	return getJournal(ctx, s.db, id)
}

func getJournal(ctx context.Context, db dbx.DBTX, id string) (*models.JournalEntry, error) {
	row := db.QueryRowContext(ctx, `SELECT `+journalColumns+` FROM journals WHERE id = $1`, id)
	j, err := scanJournal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select journal: %w", err)
	}
	return j, nil
}

func (s *JournalStore) Create(ctx context.Context, rec *models.JournalEntry) (*models.JournalEntry, error) {
	rec.Finalize()
	keywords, err := json.Marshal(rec.Keywords)
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journals (id, title, content, created_at, updated_at, word_count, keywords, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Title, rec.Content, rec.CreatedAt, rec.UpdatedAt, rec.WordCount, keywords, nullable(rec.Owner))
	if err != nil {
		return nil, fmt.Errorf("insert journal: %w", err)
	}
	return rec, nil
}

// Update reads, patches, and rewrites the row inside one transaction so the
// derived fields (word_count, keywords, updated_at) are recomputed from the
// final content.
func (s *JournalStore) Update(ctx context.Context, id string, patch models.JournalPatch) (*models.JournalEntry, error) {
	var out *models.JournalEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := getJournal(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(cur)

		keywords, err := json.Marshal(cur.Keywords)
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE journals
			SET title = $2, content = $3, updated_at = $4, word_count = $5, keywords = $6
			WHERE id = $1`,
			cur.ID, cur.Title, cur.Content, cur.UpdatedAt, cur.WordCount, keywords)
		if err != nil {
			return fmt.Errorf("update journal: %w", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *JournalStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	return nil
}

func (s *JournalStore) Search(ctx context.Context, owner, query string) ([]*models.JournalEntry, error) {
	q := `SELECT ` + journalColumns + ` FROM journals WHERE (title ILIKE $1 OR content ILIKE $1)`
	args := []any{likePattern(query)}
	if owner != "" {
		q += ` AND user_id = $2`
		args = append(args, owner)
	}
	q += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search journals: %w", err)
	}
	defer rows.Close()

	var result []*models.JournalEntry
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

func likePattern(query string) string {
	return "%" + query + "%"
}

// nullable maps an empty owner to NULL, matching the optional user_id column.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
