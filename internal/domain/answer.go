package domain

import "time"

// UnknownDocumentID replaces any cited document id that does not belong to the evidence set.
const UnknownDocumentID = "unknown_id"

// DocumentRef is the read-only view of a stored document used as evidence for one question.
type DocumentRef struct {
	ID      string
	Name    string
	Content string
}

// Source is a single citation attached to an answer.
type Source struct {
	DocumentID   string `json:"documentId"`
	DocumentName string `json:"documentName"`
	Excerpt      string `json:"excerpt"`
}

// GroundedAnswer is the structured, citation-consistent answer to one question.
type GroundedAnswer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// QARecord is a persisted question/answer pair.
type QARecord struct {
	ID       string
	Question string
	Answer   string
	Sources  []Source
	AskedAt  time.Time
}
