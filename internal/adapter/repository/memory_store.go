package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"knowledge-qa/internal/domain"
)

type memoryDocument struct {
	doc domain.Document
	seq uint64
}

// MemoryDocumentRepository keeps documents in process memory.
// Contents are lost on restart; intended for local runs and tests.
type MemoryDocumentRepository struct {
	mu   sync.RWMutex
	docs map[string]memoryDocument
	seq  uint64
}

// NewMemoryDocumentRepository creates an empty in-memory document store.
func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{docs: make(map[string]memoryDocument)}
}

func (s *MemoryDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("failed to insert document: duplicate id %s", doc.ID)
	}
	s.seq++
	s.docs[doc.ID] = memoryDocument{doc: *doc, seq: s.seq}
	return nil
}

// ordered returns documents oldest first, insertion order breaking ties.
func (s *MemoryDocumentRepository) ordered() []memoryDocument {
	out := make([]memoryDocument, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].doc.UploadedAt.Equal(out[j].doc.UploadedAt) {
			return out[i].doc.UploadedAt.Before(out[j].doc.UploadedAt)
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func (s *MemoryDocumentRepository) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.ordered()
	summaries := make([]domain.DocumentSummary, 0, len(ordered))
	for i := len(ordered) - 1; i >= 0; i-- {
		d := ordered[i].doc
		summaries = append(summaries, domain.DocumentSummary{
			ID:         d.ID,
			Name:       d.Name,
			FileSize:   d.FileSize,
			UploadedAt: d.UploadedAt,
		})
	}
	return summaries, nil
}

func (s *MemoryDocumentRepository) ListRefs(ctx context.Context) ([]domain.DocumentRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.ordered()
	refs := make([]domain.DocumentRef, 0, len(ordered))
	for _, d := range ordered {
		refs = append(refs, d.doc.Ref())
	}
	return refs, nil
}

func (s *MemoryDocumentRepository) Get(ctx context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	doc := d.doc
	return &doc, nil
}

func (s *MemoryDocumentRepository) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryDocumentRepository) Ping(ctx context.Context) error {
	return nil
}

// MemoryHistoryRepository keeps answered questions in process memory.
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	records []domain.QARecord
}

// NewMemoryHistoryRepository creates an empty in-memory history store.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{}
}

func (s *MemoryHistoryRepository) Save(ctx context.Context, record *domain.QARecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *record
	rec.Sources = append([]domain.Source{}, record.Sources...)
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryHistoryRepository) Recent(ctx context.Context, limit int) ([]domain.QARecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := make([]int, len(s.records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := s.records[idx[a]], s.records[idx[b]]
		if !ra.AskedAt.Equal(rb.AskedAt) {
			return ra.AskedAt.After(rb.AskedAt)
		}
		return idx[a] > idx[b]
	})

	if limit > 0 && len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]domain.QARecord, 0, len(idx))
	for _, i := range idx {
		rec := s.records[i]
		rec.Sources = append([]domain.Source{}, rec.Sources...)
		out = append(out, rec)
	}
	return out, nil
}

var (
	_ domain.DocumentRepository = (*MemoryDocumentRepository)(nil)
	_ domain.HistoryRepository  = (*MemoryHistoryRepository)(nil)
)
