package usecase

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"knowledge-qa/internal/domain"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const DefaultMaxUploadBytes = 10 << 20

// UploadInput is a single uploaded file.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DocumentUsecase manages the uploaded document set.
type DocumentUsecase interface {
	Upload(ctx context.Context, input UploadInput) (*domain.Document, error)
	List(ctx context.Context) ([]domain.DocumentSummary, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

type documentUsecase struct {
	repo     domain.DocumentRepository
	maxBytes int64
	policy   *bluemonday.Policy
	now      func() time.Time
	logger   *slog.Logger
}

// NewDocumentUsecase creates the document workflow. maxBytes <= 0 uses DefaultMaxUploadBytes.
func NewDocumentUsecase(repo domain.DocumentRepository, maxBytes int64, logger *slog.Logger) DocumentUsecase {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &documentUsecase{
		repo:     repo,
		maxBytes: maxBytes,
		policy:   bluemonday.StrictPolicy(),
		now:      time.Now,
		logger:   logger,
	}
}

func (u *documentUsecase) Upload(ctx context.Context, input UploadInput) (*domain.Document, error) {
	if err := u.validateUpload(input); err != nil {
		return nil, err
	}

	name := u.sanitizeName(input.Filename)
	if name == "" {
		return nil, domain.NewInvalidRequest("file name is required")
	}

	doc := &domain.Document{
		ID:         uuid.NewString(),
		Name:       name,
		Content:    string(input.Data),
		FileSize:   int64(len(input.Data)),
		UploadedAt: u.now().UTC(),
	}
	if err := u.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	u.logger.InfoContext(ctx, "document uploaded",
		slog.String("document_id", doc.ID),
		slog.Int64("file_size", doc.FileSize),
	)
	return doc, nil
}

func (u *documentUsecase) validateUpload(input UploadInput) error {
	if !isPlainText(input.Filename, input.ContentType) {
		return domain.NewInvalidRequest("only .txt files are allowed")
	}
	if int64(len(input.Data)) > u.maxBytes {
		return domain.NewInvalidRequest(fmt.Sprintf("file exceeds %d bytes", u.maxBytes))
	}
	if !utf8.Valid(input.Data) {
		return domain.NewInvalidRequest("file is not valid UTF-8 text")
	}
	if strings.TrimSpace(string(input.Data)) == "" {
		return domain.NewInvalidRequest("file is empty")
	}
	return nil
}

// sanitizeName strips markup and path components from a client-supplied file name.
func (u *documentUsecase) sanitizeName(filename string) string {
	text := html.UnescapeString(u.policy.Sanitize(filename))
	base := filepath.Base(strings.ReplaceAll(text, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSpace(base)
}

func isPlainText(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".txt") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/plain"
}

func (u *documentUsecase) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	docs, err := u.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (u *documentUsecase) Get(ctx context.Context, id string) (*domain.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewInvalidRequest("document id is required")
	}
	return u.repo.Get(ctx, id)
}

func (u *documentUsecase) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewInvalidRequest("document id is required")
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.logger.InfoContext(ctx, "document deleted", slog.String("document_id", id))
	return nil
}
