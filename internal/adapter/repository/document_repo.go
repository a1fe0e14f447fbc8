package repository

import (
	"context"
	"errors"
	"fmt"

	"knowledge-qa/internal/domain"

	"github.com/jackc/pgx/v5"
)

type documentRepository struct {
	db PgxIface
}

// NewDocumentRepository creates a PostgreSQL-backed DocumentRepository.
func NewDocumentRepository(db PgxIface) domain.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, name, content, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := getExecutor(ctx, r.db).Exec(ctx, query, doc.ID, doc.Name, doc.Content, doc.FileSize, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *documentRepository) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	query := `
		SELECT id, name, file_size, uploaded_at
		FROM documents
		ORDER BY uploaded_at DESC
	`
	rows, err := getExecutor(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	summaries := []domain.DocumentSummary{}
	for rows.Next() {
		var s domain.DocumentSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.FileSize, &s.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return summaries, nil
}

func (r *documentRepository) ListRefs(ctx context.Context) ([]domain.DocumentRef, error) {
	query := `
		SELECT id, name, content
		FROM documents
		ORDER BY uploaded_at ASC, id ASC
	`
	rows, err := getExecutor(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query document contents: %w", err)
	}
	defer rows.Close()

	refs := []domain.DocumentRef{}
	for rows.Next() {
		var ref domain.DocumentRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Content); err != nil {
			return nil, fmt.Errorf("failed to scan document content: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document contents: %w", err)
	}
	return refs, nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
		SELECT id, name, content, file_size, uploaded_at
		FROM documents
		WHERE id = $1
	`
	var doc domain.Document
	err := getExecutor(ctx, r.db).QueryRow(ctx, query, id).
		Scan(&doc.ID, &doc.Name, &doc.Content, &doc.FileSize, &doc.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &doc, nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	tag, err := getExecutor(ctx, r.db).Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
