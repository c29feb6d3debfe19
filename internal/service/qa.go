// Package service holds the two user-facing operations: answering
// questions and generating proposal documents, both grounded in
// retrieved document chunks.
package service

import (
	"errors"
	"fmt"
	"strings"

	"rfpgpt/internal/chatmemory"
	"rfpgpt/internal/domain"
	"rfpgpt/internal/logger"
	"rfpgpt/internal/vectorstore"
)

// Retrieval strategies for the QA service. Exactly one is active per
// deployment, selected in configuration.
const (
	// StrategyMemory replays recent chat turns as conversation
	// history and persists the new turn. No direct chunk retrieval.
	StrategyMemory = "memory"
	// StrategySemantic embeds the question and retrieves the nearest
	// chunks as context. Single turn, no memory write.
	StrategySemantic = "semantic"
)

const qaSystemPrompt = `You are a helpful assistant tasked with explaining RFP documents clearly and simply.
You must only use the provided reference documents to answer questions.
If a user asks a content-based question, respond clearly using only the document text.
If a user asks a source-related question (e.g., "Which PDF is this from?", "Which part did you use?", "Where did you find this?"), include the PDF filename or section if available.
If the question is clearly unrelated to the RFP or documents (e.g., general tech or off-topic questions), respond with:
That doesn't seem related to the RFP or provided documents. Could you ask something specific to them?
Explain technical terms in plain English. Use tabular format when appropriate for clarity.`

const (
	qaTemperature = 0.4
	qaMaxTokens   = 1000

	// DefaultHistoryN is how many recent turns the memory strategy
	// replays before the new question.
	DefaultHistoryN = 2
	// DefaultTopK is how many chunks the semantic strategy retrieves.
	DefaultTopK = 10
)

// QAConfig tunes the answering service.
type QAConfig struct {
	Strategy string
	TopK     int
	HistoryN int
}

// QA answers free-text questions grounded in the ingested documents.
type QA struct {
	store     vectorstore.Storage
	embedder  domain.Embedder
	generator domain.Generator
	memory    *chatmemory.Manager
	cfg       QAConfig
}

// NewQA creates the answering service. The memory manager may be nil
// when the semantic strategy is configured.
func NewQA(store vectorstore.Storage, embedder domain.Embedder, generator domain.Generator, mem *chatmemory.Manager, cfg QAConfig) *QA {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyMemory
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.HistoryN <= 0 {
		cfg.HistoryN = DefaultHistoryN
	}
	return &QA{store: store, embedder: embedder, generator: generator, memory: mem, cfg: cfg}
}

// Answer returns the model's answer to question. All failures come
// back as errors; rendering them is the caller's concern.
func (s *QA) Answer(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("empty question")
	}
	switch s.cfg.Strategy {
	case StrategySemantic:
		return s.answerSemantic(question)
	case StrategyMemory:
		return s.answerWithMemory(question)
	default:
		return "", fmt.Errorf("unknown qa strategy %q", s.cfg.Strategy)
	}
}

func (s *QA) answerWithMemory(question string) (string, error) {
	if s.memory == nil {
		return "", errors.New("memory strategy requires a chat memory manager")
	}
	logger.Debug("fetching last %d chat turns", s.cfg.HistoryN)
	history, err := s.memory.LastN(s.cfg.HistoryN)
	if err != nil {
		return "", err
	}

	messages := []domain.Message{{Role: domain.RoleSystem, Content: qaSystemPrompt}}
	for _, turn := range history {
		messages = append(messages,
			domain.Message{Role: domain.RoleUser, Content: turn.Question},
			domain.Message{Role: domain.RoleAssistant, Content: turn.Answer},
		)
	}
	messages = append(messages, domain.Message{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf("\nQuestion:\n%s\n\nAnswer:", question),
	})

	answer, err := s.generator.Complete(messages, qaTemperature, qaMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if err := s.memory.LogTurn(question, answer); err != nil {
		// The answer is already in hand; a failed memory write only
		// costs future context.
		logger.Warn("logging chat turn failed: %v", err)
	}
	return answer, nil
}

func (s *QA) answerSemantic(question string) (string, error) {
	context, err := retrieveContext(s.store, s.embedder, question, s.cfg.TopK)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("Reference Material:\n%s\n\nQuestion:\n%s\n\nAnswer:", context, question)
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: qaSystemPrompt},
		{Role: domain.RoleUser, Content: prompt},
	}
	answer, err := s.generator.Complete(messages, qaTemperature, qaMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// retrieveContext embeds query, fetches the topK nearest chunks and
// concatenates their text. An empty store yields an empty context,
// not an error.
func retrieveContext(store vectorstore.Storage, embedder domain.Embedder, query string, topK int) (string, error) {
	vector, err := embedder.Embed(query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	objects, err := store.NearVector(domain.ChunkCollection.Class, vector, topK, []string{domain.FieldText})
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}
	texts := make([]string, 0, len(objects))
	for _, obj := range objects {
		texts = append(texts, obj.Properties[domain.FieldText])
	}
	return strings.Join(texts, "\n\n"), nil
}
