package domain

// Chunk is a bounded substring of a source document, the unit of
// embedding and retrieval. Filename groups it with sibling chunks
// from the same PDF.
type Chunk struct {
	Text     string
	Filename string
	Vector   []float64
}

// ChatTurn is one persisted question/answer exchange. Timestamp is
// RFC 3339 UTC; the vector embeds question and answer jointly.
type ChatTurn struct {
	Question  string
	Answer    string
	Timestamp string
	Vector    []float64
}

// Message is one role-tagged entry in a generative model conversation.
type Message struct {
	Role    string
	Content string
}

// Chat roles accepted by the generative service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Embedder converts free text into a fixed-length numeric vector via
// an external model.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Generator produces text from an ordered list of role-tagged
// messages. maxTokens <= 0 means no cap.
type Generator interface {
	Complete(messages []Message, temperature float64, maxTokens int) (string, error)
}
