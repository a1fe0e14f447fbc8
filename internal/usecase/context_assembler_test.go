package usecase_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"knowledge-qa/internal/domain"
	"knowledge-qa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delimiter = "\n\n=====[ END OF DOCUMENT ]=====\n\n"

func rendered(doc domain.DocumentRef) string {
	return fmt.Sprintf("[Document ID: %s]\n[Document Name: %s]\n%s", doc.ID, doc.Name, doc.Content)
}

func TestContextAssembler_Build_Unbounded(t *testing.T) {
	docs := []domain.DocumentRef{
		{ID: "doc1", Name: "Geo.txt", Content: "Paris is the capital of France."},
		{ID: "doc2", Name: "Rivers.txt", Content: "The Seine flows through Paris."},
	}

	got := usecase.NewContextAssembler(0).Build(docs)

	want := "[Document ID: doc1]\n[Document Name: Geo.txt]\nParis is the capital of France." +
		delimiter +
		"[Document ID: doc2]\n[Document Name: Rivers.txt]\nThe Seine flows through Paris."
	assert.Equal(t, want, got)
}

func TestContextAssembler_Assemble_Unbounded(t *testing.T) {
	docs := []domain.DocumentRef{
		{ID: "a", Name: "A.txt", Content: strings.Repeat("a", 10000)},
		{ID: "b", Name: "B.txt", Content: strings.Repeat("b", 10000)},
	}

	block := usecase.NewContextAssembler(0).Assemble(docs)

	assert.Len(t, block.Included, 2)
	assert.Zero(t, block.Omitted)
	assert.False(t, block.Truncated)
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, block.KnownIDs())
}

func TestContextAssembler_Assemble_FirstDocumentAlwaysIncluded(t *testing.T) {
	docs := []domain.DocumentRef{
		{ID: "big", Name: "Big.txt", Content: strings.Repeat("x", 1000)},
		{ID: "small", Name: "Small.txt", Content: "tiny"},
	}

	block := usecase.NewContextAssembler(300).Assemble(docs)

	require.Len(t, block.Included, 1)
	assert.Equal(t, "big", block.Included[0].ID)
	assert.True(t, block.Truncated)
	assert.Equal(t, 1, block.Omitted)
	assert.Equal(t, 300, utf8.RuneCountInString(block.Text))
	assert.True(t, strings.HasSuffix(block.Text, "[truncated]"))
	assert.True(t, strings.HasPrefix(block.Text, "[Document ID: big]\n"))
}

func TestContextAssembler_Assemble_OmitsWhenRemainingBudgetIsSmall(t *testing.T) {
	first := domain.DocumentRef{ID: "a", Name: "A.txt", Content: "alpha"}
	second := domain.DocumentRef{ID: "b", Name: "B.txt", Content: strings.Repeat("b", 1000)}
	limit := utf8.RuneCountInString(rendered(first)) + 100

	block := usecase.NewContextAssembler(limit).Assemble([]domain.DocumentRef{first, second})

	assert.Equal(t, rendered(first), block.Text)
	assert.Len(t, block.Included, 1)
	assert.Equal(t, 1, block.Omitted)
	assert.False(t, block.Truncated)
	assert.NotContains(t, block.KnownIDs(), "b")
}

func TestContextAssembler_Assemble_TruncatesWhenBudgetRemains(t *testing.T) {
	first := domain.DocumentRef{ID: "a", Name: "A.txt", Content: "alpha"}
	second := domain.DocumentRef{ID: "b", Name: "B.txt", Content: strings.Repeat("b", 1000)}
	third := domain.DocumentRef{ID: "c", Name: "C.txt", Content: "gamma"}
	limit := utf8.RuneCountInString(rendered(first)) + utf8.RuneCountInString(delimiter) + 300

	block := usecase.NewContextAssembler(limit).Assemble([]domain.DocumentRef{first, second, third})

	require.Len(t, block.Included, 2)
	assert.Equal(t, "b", block.Included[1].ID)
	assert.True(t, block.Truncated)
	assert.Equal(t, 1, block.Omitted)
	assert.Equal(t, limit, utf8.RuneCountInString(block.Text))
	assert.Contains(t, block.Text, delimiter+"[Document ID: b]")
	assert.NotContains(t, block.Text, "gamma")
}

func TestContextAssembler_Assemble_TruncatesOnRuneBoundary(t *testing.T) {
	docs := []domain.DocumentRef{
		{ID: "jp", Name: "日本.txt", Content: strings.Repeat("日本語の文書。", 200)},
	}

	block := usecase.NewContextAssembler(400).Assemble(docs)

	assert.True(t, utf8.ValidString(block.Text))
	assert.Equal(t, 400, utf8.RuneCountInString(block.Text))
}

func TestContextAssembler_Build_IsPure(t *testing.T) {
	docs := []domain.DocumentRef{
		{ID: "a", Name: "A.txt", Content: "alpha"},
		{ID: "b", Name: "B.txt", Content: "beta"},
	}
	assembler := usecase.NewContextAssembler(0)

	assert.Equal(t, assembler.Build(docs), assembler.Build(docs))
}

func TestContextAssembler_Assemble_TinyCapKeepsHeaders(t *testing.T) {
	doc := domain.DocumentRef{ID: "3f2b8c1e-9d4a-4e7b-8a61-2c5d7e9f0a13", Name: "Policy.txt", Content: "Refunds within 30 days."}

	block := usecase.NewContextAssembler(20).Assemble([]domain.DocumentRef{doc})

	require.Len(t, block.Included, 1)
	assert.True(t, block.Truncated)
	assert.True(t, strings.HasPrefix(block.Text, "[Document ID: "+doc.ID+"]\n[Document Name: Policy.txt]\n"))
	assert.True(t, strings.HasSuffix(block.Text, "[truncated]"))
	assert.NotContains(t, block.Text, "Refunds")
	for id := range block.KnownIDs() {
		assert.Contains(t, block.Text, "[Document ID: "+id+"]")
	}
}

func TestContextAssembler_Assemble_TruncatedLaterDocumentKeepsHeader(t *testing.T) {
	first := domain.DocumentRef{ID: "a", Name: "A.txt", Content: "alpha"}
	second := domain.DocumentRef{ID: "b", Name: strings.Repeat("n", 300) + ".txt", Content: strings.Repeat("b", 1000)}
	limit := utf8.RuneCountInString(rendered(first)) + utf8.RuneCountInString(delimiter) + 260

	block := usecase.NewContextAssembler(limit).Assemble([]domain.DocumentRef{first, second})

	require.Len(t, block.Included, 2)
	assert.True(t, strings.HasSuffix(block.Text, "[Document ID: b]\n[Document Name: "+second.Name+"]\n\n[truncated]"))
}
