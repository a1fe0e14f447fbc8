package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"knowledge-qa/internal/domain"
)

const (
	// evidenceDelimiter separates document blocks inside the evidence text.
	evidenceDelimiter = "\n\n=====[ END OF DOCUMENT ]=====\n\n"
	truncationMarker  = "\n[truncated]"
	// minTruncatedBudget is the smallest remaining budget worth spending on a partial document.
	minTruncatedBudget = 256
)

// EvidenceBlock is the assembled evidence text plus the documents that made it in.
type EvidenceBlock struct {
	Text     string
	Included []domain.DocumentRef
	Omitted  int
	// Truncated is true when the last included document was cut short.
	Truncated bool
}

// KnownIDs returns the ids of the documents visible to the model.
func (e EvidenceBlock) KnownIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(e.Included))
	for _, doc := range e.Included {
		ids[doc.ID] = struct{}{}
	}
	return ids
}

// ContextAssembler turns documents into a single delimited evidence block.
type ContextAssembler struct {
	maxChars int
}

// NewContextAssembler creates an assembler. maxChars <= 0 disables the size cap.
func NewContextAssembler(maxChars int) ContextAssembler {
	if maxChars < 0 {
		maxChars = 0
	}
	return ContextAssembler{maxChars: maxChars}
}

// Build returns the evidence text for the given documents.
func (a ContextAssembler) Build(documents []domain.DocumentRef) string {
	return a.Assemble(documents).Text
}

// Assemble renders documents in order until the character budget runs out.
// The first document is always included, truncated if it alone exceeds the budget.
// Headers are never cut, so a cap smaller than the first header is overshot by it.
func (a ContextAssembler) Assemble(documents []domain.DocumentRef) EvidenceBlock {
	var block EvidenceBlock
	var sb strings.Builder
	used := 0

	for i, doc := range documents {
		rendered := renderDocument(doc)
		cost := utf8.RuneCountInString(rendered)
		if i > 0 {
			cost += utf8.RuneCountInString(evidenceDelimiter)
		}

		if a.maxChars == 0 || used+cost <= a.maxChars {
			if i > 0 {
				sb.WriteString(evidenceDelimiter)
			}
			sb.WriteString(rendered)
			used += cost
			block.Included = append(block.Included, doc)
			continue
		}

		remaining := a.maxChars - used
		if i > 0 {
			remaining -= utf8.RuneCountInString(evidenceDelimiter)
		}
		if i == 0 || remaining >= minTruncatedBudget {
			if i > 0 {
				sb.WriteString(evidenceDelimiter)
			}
			// Only content is cut; both header lines survive so the id stays citable.
			header := renderHeader(doc)
			sb.WriteString(header)
			sb.WriteString(truncateRunes(doc.Content,
				remaining-utf8.RuneCountInString(header)-utf8.RuneCountInString(truncationMarker)))
			sb.WriteString(truncationMarker)
			block.Included = append(block.Included, doc)
			block.Truncated = true
			block.Omitted = len(documents) - i - 1
		} else {
			block.Omitted = len(documents) - i
		}
		break
	}

	block.Text = sb.String()
	return block
}

func renderDocument(doc domain.DocumentRef) string {
	return renderHeader(doc) + doc.Content
}

func renderHeader(doc domain.DocumentRef) string {
	return fmt.Sprintf("[Document ID: %s]\n[Document Name: %s]\n", doc.ID, doc.Name)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
