package domain

// Property is a single typed field of a collection. All properties in
// this system are text valued.
type Property struct {
	Name        string
	Description string
}

// Collection describes a named logical table in the vector store.
// Vectors are always supplied by the caller, never computed by the
// store itself.
type Collection struct {
	Class       string
	Description string
	Properties  []Property
}

// Property names shared between the store client and the services.
const (
	FieldText      = "text"
	FieldFilename  = "filename"
	FieldQuestion  = "question"
	FieldAnswer    = "answer"
	FieldTimestamp = "timestamp"
)

// ChunkCollection holds embedded document chunks.
var ChunkCollection = Collection{
	Class:       "PDFChunk",
	Description: "Stores chunks of PDFs",
	Properties: []Property{
		{Name: FieldText, Description: "Chunk text"},
		{Name: FieldFilename, Description: "Source PDF filename"},
	},
}

// ChatCollection holds persisted chat turns.
var ChatCollection = Collection{
	Class:       "ChatHistory",
	Description: "Stores user and assistant chats",
	Properties: []Property{
		{Name: FieldQuestion, Description: "User input"},
		{Name: FieldAnswer, Description: "Assistant reply"},
		{Name: FieldTimestamp, Description: "UTC ISO timestamp"},
	},
}
