package usecase

import (
	"encoding/json"
	"strings"

	"knowledge-qa/internal/domain"
)

// AnswerExtractor pulls a GroundedAnswer out of free-form model output.
// It never fails on a bad citation; unknown document ids are replaced with the sentinel.
type AnswerExtractor struct{}

// NewAnswerExtractor creates an extractor instance (stateless).
func NewAnswerExtractor() AnswerExtractor {
	return AnswerExtractor{}
}

// Extraction is the extracted answer plus how many citations had to be repaired.
type Extraction struct {
	Answer   *domain.GroundedAnswer
	Repaired int
}

// Extract locates the JSON object in raw, validates its shape and repairs citations.
func (x AnswerExtractor) Extract(raw string, knownIDs map[string]struct{}) (*domain.GroundedAnswer, error) {
	res, err := x.ExtractWithStats(raw, knownIDs)
	if err != nil {
		return nil, err
	}
	return res.Answer, nil
}

// ExtractWithStats is Extract with the repair count exposed for metrics.
func (x AnswerExtractor) ExtractWithStats(raw string, knownIDs map[string]struct{}) (Extraction, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return Extraction{}, &domain.MalformedOutputError{Reason: "no json object found"}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil {
		return Extraction{}, &domain.MalformedOutputError{Reason: "invalid json", Cause: err}
	}

	rawAnswer, ok := obj["answer"]
	if !ok {
		return Extraction{}, &domain.MalformedOutputError{Reason: "missing answer"}
	}
	var answer string
	if err := json.Unmarshal(rawAnswer, &answer); err != nil || isJSONNull(rawAnswer) {
		return Extraction{}, &domain.MalformedOutputError{Reason: "answer is not a string"}
	}

	sources, repaired := decodeSources(obj["sources"], knownIDs)
	return Extraction{
		Answer:   &domain.GroundedAnswer{Answer: answer, Sources: sources},
		Repaired: repaired,
	}, nil
}

// decodeSources treats an absent or non-array value as no citations.
func decodeSources(raw json.RawMessage, knownIDs map[string]struct{}) ([]domain.Source, int) {
	sources := []domain.Source{}
	if len(raw) == 0 {
		return sources, 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return sources, 0
	}

	repaired := 0
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		src := domain.Source{
			DocumentID:   strings.TrimSpace(stringField(fields, "documentId")),
			DocumentName: stringField(fields, "documentName"),
			Excerpt:      stringField(fields, "excerpt"),
		}
		if _, ok := knownIDs[src.DocumentID]; !ok || src.DocumentID == "" {
			src.DocumentID = domain.UnknownDocumentID
			repaired++
		}
		sources = append(sources, src)
	}
	return sources, repaired
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
