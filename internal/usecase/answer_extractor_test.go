package usecase_test

import (
	"errors"
	"strings"
	"testing"

	"knowledge-qa/internal/domain"
	"knowledge-qa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parisOutput = "Sure! Here is the answer:\n" +
	`{"answer":"Paris is the capital.","sources":[{"documentId":"doc1","documentName":"Geo.txt","excerpt":"Paris is the capital of France."}]}` +
	"\nLet me know if you need more."

func known(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestAnswerExtractor_Extract_SurroundingProse(t *testing.T) {
	extractor := usecase.NewAnswerExtractor()

	got, err := extractor.Extract(parisOutput, known("doc1"))

	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital.", got.Answer)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, domain.Source{
		DocumentID:   "doc1",
		DocumentName: "Geo.txt",
		Excerpt:      "Paris is the capital of France.",
	}, got.Sources[0])
}

func TestAnswerExtractor_Extract_RepairsUnknownID(t *testing.T) {
	extractor := usecase.NewAnswerExtractor()
	raw := strings.Replace(parisOutput, `"documentId":"doc1"`, `"documentId":"doc999"`, 1)

	res, err := extractor.ExtractWithStats(raw, known("doc1"))

	require.NoError(t, err)
	require.Len(t, res.Answer.Sources, 1)
	assert.Equal(t, domain.UnknownDocumentID, res.Answer.Sources[0].DocumentID)
	assert.Equal(t, "Geo.txt", res.Answer.Sources[0].DocumentName)
	assert.Equal(t, "Paris is the capital of France.", res.Answer.Sources[0].Excerpt)
	assert.Equal(t, 1, res.Repaired)
}

func TestAnswerExtractor_Extract_SourceRepair(t *testing.T) {
	extractor := usecase.NewAnswerExtractor()

	tests := []struct {
		name    string
		sources string
		want    []domain.Source
	}{
		{
			name:    "missing documentId",
			sources: `[{"documentName":"Geo.txt","excerpt":"x"}]`,
			want:    []domain.Source{{DocumentID: domain.UnknownDocumentID, DocumentName: "Geo.txt", Excerpt: "x"}},
		},
		{
			name:    "empty documentId",
			sources: `[{"documentId":"","documentName":"Geo.txt","excerpt":"x"}]`,
			want:    []domain.Source{{DocumentID: domain.UnknownDocumentID, DocumentName: "Geo.txt", Excerpt: "x"}},
		},
		{
			name:    "null documentId",
			sources: `[{"documentId":null,"documentName":"Geo.txt","excerpt":"x"}]`,
			want:    []domain.Source{{DocumentID: domain.UnknownDocumentID, DocumentName: "Geo.txt", Excerpt: "x"}},
		},
		{
			name:    "numeric documentId",
			sources: `[{"documentId":42,"documentName":"Geo.txt","excerpt":"x"}]`,
			want:    []domain.Source{{DocumentID: domain.UnknownDocumentID, DocumentName: "Geo.txt", Excerpt: "x"}},
		},
		{
			name:    "documentId with surrounding whitespace",
			sources: `[{"documentId":" doc1 ","documentName":"Geo.txt","excerpt":"x"}]`,
			want:    []domain.Source{{DocumentID: "doc1", DocumentName: "Geo.txt", Excerpt: "x"}},
		},
		{
			name:    "non-string name and excerpt",
			sources: `[{"documentId":"doc1","documentName":7,"excerpt":{"a":1}}]`,
			want:    []domain.Source{{DocumentID: "doc1"}},
		},
		{
			name:    "non-object entries dropped",
			sources: `["doc1", 3, null, {"documentId":"doc2","documentName":"B.txt","excerpt":"y"}]`,
			want:    []domain.Source{{DocumentID: "doc2", DocumentName: "B.txt", Excerpt: "y"}},
		},
		{
			name:    "mixed valid and invalid",
			sources: `[{"documentId":"doc1","documentName":"A.txt","excerpt":"a"},{"documentId":"ghost","documentName":"G.txt","excerpt":"g"}]`,
			want: []domain.Source{
				{DocumentID: "doc1", DocumentName: "A.txt", Excerpt: "a"},
				{DocumentID: domain.UnknownDocumentID, DocumentName: "G.txt", Excerpt: "g"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"answer":"ok","sources":` + tt.sources + `}`
			got, err := extractor.Extract(raw, known("doc1", "doc2"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Sources)
		})
	}
}

func TestAnswerExtractor_Extract_SourcesBoundary(t *testing.T) {
	extractor := usecase.NewAnswerExtractor()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "absent", raw: `{"answer":"ok"}`},
		{name: "null", raw: `{"answer":"ok","sources":null}`},
		{name: "string", raw: `{"answer":"ok","sources":"doc1"}`},
		{name: "object", raw: `{"answer":"ok","sources":{"documentId":"doc1"}}`},
		{name: "empty array", raw: `{"answer":"ok","sources":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(tt.raw, known("doc1"))
			require.NoError(t, err)
			assert.Equal(t, "ok", got.Answer)
			assert.NotNil(t, got.Sources)
			assert.Empty(t, got.Sources)
		})
	}
}

func TestAnswerExtractor_Extract_Malformed(t *testing.T) {
	extractor := usecase.NewAnswerExtractor()

	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{name: "no object", raw: "I cannot find relevant information.", reason: "no json object found"},
		{name: "empty", raw: "", reason: "no json object found"},
		{name: "closing brace before opening", raw: "} nothing {", reason: "no json object found"},
		{name: "truncated object", raw: `{"answer":"Paris`, reason: "no json object found"},
		{name: "broken json", raw: `{"answer": Paris}`, reason: "invalid json"},
		{name: "two objects", raw: `{"answer":"a"} and {"answer":"b"}`, reason: "invalid json"},
		{name: "trailing bracket after object", raw: `{"answer":"a"}]`, reason: ""},
		{name: "missing answer", raw: `{"sources":[]}`, reason: "missing answer"},
		{name: "numeric answer", raw: `{"answer":42}`, reason: "answer is not a string"},
		{name: "null answer", raw: `{"answer":null}`, reason: "answer is not a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(tt.raw, known("doc1"))
			if tt.reason == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Nil(t, got)
			var malformed *domain.MalformedOutputError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.reason, malformed.Reason)
		})
	}
}

func TestAnswerExtractor_Extract_EscapeSequences(t *testing.T) {
	extractor := usecase.NewAnswerExtractor()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "newline", input: `{"answer": "Line 1\nLine 2"}`, want: "Line 1\nLine 2"},
		{name: "tab", input: `{"answer": "Col1\tCol2"}`, want: "Col1\tCol2"},
		{name: "escaped quote", input: `{"answer": "He said \"Hello\""}`, want: `He said "Hello"`},
		{name: "braces inside answer", input: "```json\n" + `{"answer": "use {x} here"}` + "\n```", want: "use {x} here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(tt.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Answer)
		})
	}
}

func TestAnswerExtractor_Extract_Idempotent(t *testing.T) {
	extractor := usecase.NewAnswerExtractor()
	raw := strings.Replace(parisOutput, `"documentId":"doc1"`, `"documentId":"doc999"`, 1)

	first, err := extractor.Extract(raw, known("doc1"))
	require.NoError(t, err)
	second, err := extractor.Extract(raw, known("doc1"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnswerExtractor_Extract_CitationIntegrity(t *testing.T) {
	extractor := usecase.NewAnswerExtractor()
	ids := known("doc1", "doc2")
	raw := `{"answer":"x","sources":[
		{"documentId":"doc1"},{"documentId":"doc2"},{"documentId":"doc3"},
		{"documentId":""},{},{"documentId":"unknown_id"},{"documentId":false}
	]}`

	got, err := extractor.Extract(raw, ids)
	require.NoError(t, err)

	for _, src := range got.Sources {
		_, isKnown := ids[src.DocumentID]
		assert.True(t, isKnown || src.DocumentID == domain.UnknownDocumentID, "unexpected id %q", src.DocumentID)
	}
	assert.Len(t, got.Sources, 7)
}
