package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDocumentNotFound is returned when a document id does not exist in the store.
var ErrDocumentNotFound = errors.New("document not found")

// Document represents an uploaded text document.
type Document struct {
	ID         string
	Name       string
	Content    string
	FileSize   int64
	UploadedAt time.Time
}

// DocumentSummary is a Document without its content, used for listings.
type DocumentSummary struct {
	ID         string
	Name       string
	FileSize   int64
	UploadedAt time.Time
}

// Ref returns the evidence view of the document.
func (d Document) Ref() DocumentRef {
	return DocumentRef{ID: d.ID, Name: d.Name, Content: d.Content}
}

// DocumentRepository defines the operations for managing uploaded documents.
type DocumentRepository interface {
	// Create persists a new document.
	Create(ctx context.Context, doc *Document) error

	// List returns summaries ordered by upload time, newest first.
	List(ctx context.Context) ([]DocumentSummary, error)

	// ListRefs returns every stored document as evidence, oldest first.
	ListRefs(ctx context.Context) ([]DocumentRef, error)

	// Get retrieves a document by id.
	// Returns ErrDocumentNotFound if it does not exist.
	Get(ctx context.Context, id string) (*Document, error)

	// Delete removes a document by id.
	// Returns ErrDocumentNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// HistoryRepository persists answered questions.
type HistoryRepository interface {
	// Save persists a record.
	Save(ctx context.Context, record *QARecord) error

	// Recent returns at most limit records ordered by AskedAt, newest first.
	Recent(ctx context.Context, limit int) ([]QARecord, error)
}

// TransactionManager runs fn inside a single storage transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
