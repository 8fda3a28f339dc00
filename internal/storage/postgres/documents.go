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

// DocumentStore implements document persistence over PostgreSQL.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, name, type, size, upload_date, content, status, user_id`

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var (
		d              models.Document
		content, owner sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Type, &d.Size, &d.UploadDate, &content, &d.Status, &owner); err != nil {
		return nil, err
	}
	d.Content = content.String
	d.Owner = owner.String
	return &d, nil
}

func (s *DocumentStore) List(ctx context.Context, owner string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	if owner != "" {
		query += ` WHERE user_id = $1`
		args = append(args, owner)
	}
	query += ` ORDER BY upload_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *DocumentStore) Get(ctx context.Context, id string) (*models.Document, error) {
	return getDocument(ctx, s.db, id)
}

func getDocument(ctx context.Context, db dbx.DBTX, id string) (*models.Document, error) {
	row := db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) Create(ctx context.Context, rec *models.Document) (*models.Document, error) {
	rec.Finalize()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, type, size, upload_date, content, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Name, rec.Type, rec.Size, rec.UploadDate, nullable(rec.Content), rec.Status, nullable(rec.Owner))
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return rec, nil
}

func (s *DocumentStore) Update(ctx context.Context, id string, patch models.DocumentPatch) (*models.Document, error) {
	var out *models.Document
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := getDocument(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(cur)

		_, err = tx.ExecContext(ctx, `
			UPDATE documents
			SET content = $2, status = $3
			WHERE id = $1`,
			cur.ID, nullable(cur.Content), cur.Status)
		if err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *DocumentStore) Search(ctx context.Context, owner, query string) ([]*models.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE (name ILIKE $1 OR content ILIKE $1)`
	args := []any{likePattern(query)}
	if owner != "" {
		q += ` AND user_id = $2`
		args = append(args, owner)
	}
	q += ` ORDER BY upload_date DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
