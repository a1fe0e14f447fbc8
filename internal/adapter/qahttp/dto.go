package qahttp

import (
	"time"

	"knowledge-qa/internal/domain"
)

type documentSummaryResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
	FileSize   int64     `json:"fileSize"`
}

type documentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploadedAt"`
	FileSize   int64     `json:"fileSize"`
}

type uploadResponse struct {
	Message  string                  `json:"message"`
	Document documentSummaryResponse `json:"document"`
}

type documentListResponse struct {
	Documents []documentSummaryResponse `json:"documents"`
}

type askRequest struct {
	Question string `json:"question"`
}

type qaRecordResponse struct {
	ID       string          `json:"id"`
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Sources  []domain.Source `json:"sources"`
	AskedAt  time.Time       `json:"askedAt"`
}

type historyResponse struct {
	History []qaRecordResponse `json:"history"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toSummaryResponse(id, name string, uploadedAt time.Time, size int64) documentSummaryResponse {
	return documentSummaryResponse{ID: id, Name: name, UploadedAt: uploadedAt, FileSize: size}
}

func toRecordResponse(r domain.QARecord) qaRecordResponse {
	sources := r.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	return qaRecordResponse{
		ID:       r.ID,
		Question: r.Question,
		Answer:   r.Answer,
		Sources:  sources,
		AskedAt:  r.AskedAt,
	}
}
