package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"knowledge-qa/internal/domain"
)

type historyRepository struct {
	db PgxIface
}

// NewHistoryRepository creates a PostgreSQL-backed HistoryRepository.
func NewHistoryRepository(db PgxIface) domain.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Save(ctx context.Context, record *domain.QARecord) error {
	sources := record.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	payload, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	query := `
		INSERT INTO qa_history (id, question, answer, sources, asked_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = getExecutor(ctx, r.db).Exec(ctx, query, record.ID, record.Question, record.Answer, payload, record.AskedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

func (r *historyRepository) Recent(ctx context.Context, limit int) ([]domain.QARecord, error) {
	query := `
		SELECT id, question, answer, sources, asked_at
		FROM qa_history
		ORDER BY asked_at DESC
		LIMIT $1
	`
	rows, err := getExecutor(ctx, r.db).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []domain.QARecord{}
	for rows.Next() {
		var rec domain.QARecord
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &raw, &rec.AskedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.Sources = []domain.Source{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &rec.Sources); err != nil {
				return nil, fmt.Errorf("failed to decode sources for %s: %w", rec.ID, err)
			}
			if rec.Sources == nil {
				rec.Sources = []domain.Source{}
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return records, nil
}
