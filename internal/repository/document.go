package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gauri-sd/user-document-management/internal/types"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *types.Document) (*types.Document, error)
	GetByID(ctx context.Context, documentID string) (*types.Document, error)
	// GetByIDs returns the documents that exist among ids; callers are
	// responsible for detecting missing ids via the result count.
	GetByIDs(ctx context.Context, ids []string) ([]types.Document, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]types.Document, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	Delete(ctx context.Context, documentID string) error
}

type documentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

const documentColumns = `document_id, owner_id, title, file_name, file_path, mime_type, file_size, created_at`

func scanDocument(row pgx.Row) (*types.Document, error) {
	var d types.Document
	err := row.Scan(&d.ID, &d.OwnerID, &d.Title, &d.FileName, &d.FilePath, &d.MimeType, &d.FileSize, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *documentRepository) Create(ctx context.Context, doc *types.Document) (*types.Document, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (document_id, owner_id, title, file_name, file_path, mime_type, file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+documentColumns,
		doc.ID, doc.OwnerID, doc.Title, doc.FileName, doc.FilePath, doc.MimeType, doc.FileSize,
	)
	return scanDocument(row)
}

func (r *documentRepository) GetByID(ctx context.Context, documentID string) (*types.Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE document_id = $1`, documentID)
	return scanDocument(row)
}

func (r *documentRepository) GetByIDs(ctx context.Context, ids []string) ([]types.Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE document_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *documentRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]types.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *documentRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE owner_id = $1`, ownerID).Scan(&count)
	return count, err
}

func (r *documentRepository) Delete(ctx context.Context, documentID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE document_id = $1`, documentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
