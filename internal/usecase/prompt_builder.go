package usecase

import (
	"strings"

	"knowledge-qa/internal/domain"
)

const (
	DefaultMaxTokens   = 800
	DefaultTemperature = 0.1
)

// PromptOptions holds the fixed generation parameters attached to every request.
type PromptOptions struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// PromptBuilder builds the chat request sent to the text-generation backend.
type PromptBuilder struct {
	opts                   PromptOptions
	additionalInstructions []string
}

// NewPromptBuilder creates a prompt builder with optional extra system instructions appended.
func NewPromptBuilder(opts PromptOptions, additionalInstructions ...string) PromptBuilder {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature < 0 {
		opts.Temperature = DefaultTemperature
	}
	return PromptBuilder{
		opts:                   opts,
		additionalInstructions: additionalInstructions,
	}
}

// Build renders the system and user messages for one question.
func (b PromptBuilder) Build(question, evidence string) domain.ChatRequest {
	instructions := []string{
		"You are a factual assistant.",
		"Answer ONLY using the provided documents. Do not use outside knowledge.",
		"You must include the correct Document ID for every source used, copied exactly from the [Document ID: ...] line.",
		"Respond ONLY in valid JSON matching the requested format, with no text before or after it.",
	}

	var sysSb strings.Builder
	for i, inst := range append(instructions, b.additionalInstructions...) {
		if i > 0 {
			sysSb.WriteString(" ")
		}
		sysSb.WriteString(inst)
	}

	var userSb strings.Builder
	userSb.WriteString("DOCUMENTS:\n")
	userSb.WriteString(evidence)
	userSb.WriteString("\n\nQUESTION:\n")
	userSb.WriteString(question)
	userSb.WriteString("\n\nRespond ONLY in this JSON format:\n")
	userSb.WriteString("{\n")
	userSb.WriteString("  \"answer\": \"string\",\n")
	userSb.WriteString("  \"sources\": [\n")
	userSb.WriteString("    { \"documentId\": \"the_actual_id_from_the_documents\", \"documentName\": \"string\", \"excerpt\": \"string\" }\n")
	userSb.WriteString("  ]\n")
	userSb.WriteString("}\n")

	return domain.ChatRequest{
		Model: b.opts.Model,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: sysSb.String()},
			{Role: domain.RoleUser, Content: userSb.String()},
		},
		MaxTokens:   b.opts.MaxTokens,
		Temperature: b.opts.Temperature,
	}
}
