// Package vectorstore defines the store contract shared by the
// remote Weaviate client and the in-process implementation.
package vectorstore

import "rfpgpt/internal/domain"

// Record is one object to insert: its properties, its caller-supplied
// vector and a unique id.
type Record struct {
	ID         string
	Properties map[string]string
	Vector     []float64
}

// Object is one stored object returned from a query. Distance is only
// meaningful for NearVector results (smaller is closer).
type Object struct {
	Properties map[string]string
	Distance   float64
}

// Storage persists externally computed vectors alongside typed text
// properties. The store never vectorizes anything itself.
type Storage interface {
	// EnsureCollection provisions the collection if absent. Calling
	// it for an existing collection is a no-op.
	EnsureCollection(c domain.Collection) error
	// Insert stores one record in the named collection.
	Insert(class string, rec Record) error
	// NearVector returns up to limit objects ordered by vector
	// distance, with the requested property fields populated.
	NearVector(class string, vector []float64, limit int, fields []string) ([]Object, error)
	// ExistsWhere reports whether any object in the collection has
	// property field equal to value.
	ExistsWhere(class, field, value string) (bool, error)
	// FetchRecent returns up to limit objects, newest first, ordered
	// by the collection's timestamp property when it has one.
	FetchRecent(class string, limit int, fields []string) ([]Object, error)
	// Close releases the store connection.
	Close() error
}
