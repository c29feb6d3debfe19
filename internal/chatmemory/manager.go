// Package chatmemory persists question/answer turns with embeddings
// and folds recent or relevant history back into later prompts.
package chatmemory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rfpgpt/internal/domain"
	"rfpgpt/internal/logger"
	"rfpgpt/internal/vectorstore"
)

const (
	// DefaultDedupeWindow is how many recent turns are checked for a
	// repeated question before a new turn is persisted.
	DefaultDedupeWindow = 5
	// DefaultRelevantK is how many similar turns Relevant returns
	// when the caller passes a non-positive topK.
	DefaultRelevantK = 3
)

var turnFields = []string{domain.FieldQuestion, domain.FieldAnswer, domain.FieldTimestamp}

// Manager owns the chat-turn collection for the lifetime of one
// logical operation. The store handle is injected; Close releases it.
type Manager struct {
	store        vectorstore.Storage
	embedder     domain.Embedder
	dedupeWindow int
	now          func() time.Time
}

// New provisions the chat-turn collection on the injected store and
// returns a manager bound to it. A non-positive dedupeWindow falls
// back to DefaultDedupeWindow.
func New(store vectorstore.Storage, embedder domain.Embedder, dedupeWindow int) (*Manager, error) {
	if err := store.EnsureCollection(domain.ChatCollection); err != nil {
		return nil, fmt.Errorf("provision chat history: %w", err)
	}
	if dedupeWindow <= 0 {
		dedupeWindow = DefaultDedupeWindow
	}
	return &Manager{store: store, embedder: embedder, dedupeWindow: dedupeWindow, now: time.Now}, nil
}

// Close releases the underlying store connection.
func (m *Manager) Close() error { return m.store.Close() }

// IsDuplicate reports whether question matches (case-insensitive,
// trimmed) any of the last n turns.
func (m *Manager) IsDuplicate(question string, n int) (bool, error) {
	recent, err := m.LastN(n)
	if err != nil {
		return false, err
	}
	normalized := normalizeQuestion(question)
	for _, turn := range recent {
		if normalizeQuestion(turn.Question) == normalized {
			return true, nil
		}
	}
	return false, nil
}

// LogTurn persists a question/answer pair unless the question repeats
// one of the turns inside the dedupe window. The stored vector embeds
// question and answer jointly for later similarity retrieval.
func (m *Manager) LogTurn(question, answer string) error {
	dup, err := m.IsDuplicate(question, m.dedupeWindow)
	if err != nil {
		return err
	}
	if dup {
		logger.Info("skipping log: duplicate question detected")
		return nil
	}
	vector, err := m.embedder.Embed(question + " " + answer)
	if err != nil {
		return fmt.Errorf("embed chat turn: %w", err)
	}
	return m.store.Insert(domain.ChatCollection.Class, vectorstore.Record{
		ID: uuid.NewString(),
		Properties: map[string]string{
			domain.FieldQuestion:  question,
			domain.FieldAnswer:    answer,
			domain.FieldTimestamp: m.now().UTC().Format(time.RFC3339),
		},
		Vector: vector,
	})
}

// LastN returns the most recent n turns ordered oldest to newest.
func (m *Manager) LastN(n int) ([]domain.ChatTurn, error) {
	objects, err := m.store.FetchRecent(domain.ChatCollection.Class, n, turnFields)
	if err != nil {
		return nil, fmt.Errorf("fetch recent chats: %w", err)
	}
	// newest-first from the store; replay order is oldest-first
	turns := make([]domain.ChatTurn, 0, len(objects))
	for i := len(objects) - 1; i >= 0; i-- {
		turns = append(turns, turnFromObject(objects[i]))
	}
	return turns, nil
}

// Relevant returns up to topK stored turns most similar to query.
func (m *Manager) Relevant(query string, topK int) ([]domain.ChatTurn, error) {
	if topK <= 0 {
		topK = DefaultRelevantK
	}
	vector, err := m.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed chat query: %w", err)
	}
	objects, err := m.store.NearVector(domain.ChatCollection.Class, vector, topK,
		[]string{domain.FieldQuestion, domain.FieldAnswer})
	if err != nil {
		return nil, fmt.Errorf("query relevant chats: %w", err)
	}
	turns := make([]domain.ChatTurn, 0, len(objects))
	for _, obj := range objects {
		turns = append(turns, turnFromObject(obj))
	}
	return turns, nil
}

func turnFromObject(obj vectorstore.Object) domain.ChatTurn {
	return domain.ChatTurn{
		Question:  obj.Properties[domain.FieldQuestion],
		Answer:    obj.Properties[domain.FieldAnswer],
		Timestamp: obj.Properties[domain.FieldTimestamp],
	}
}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
