// Package memory implements the vectorstore contract in process,
// using brute-force cosine distance. It backs tests and offline runs.
package memory

import (
	"errors"
	"math"
	"sort"
	"sync"

	"rfpgpt/internal/domain"
	"rfpgpt/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage is a simple in-memory vector store. Objects are kept in
// insertion order per collection.
type Storage struct {
	mu          sync.RWMutex
	collections map[string][]vectorstore.Record
}

// NewStorage creates an empty in-memory store.
func NewStorage() *Storage {
	return &Storage{collections: make(map[string][]vectorstore.Record)}
}

func (s *Storage) EnsureCollection(c domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[c.Class]; !ok {
		s.collections[c.Class] = nil
	}
	return nil
}

func (s *Storage) Insert(class string, rec vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[class]; !ok {
		return errors.New("unknown collection: " + class)
	}
	props := make(map[string]string, len(rec.Properties))
	for k, v := range rec.Properties {
		props[k] = v
	}
	s.collections[class] = append(s.collections[class], vectorstore.Record{
		ID:         rec.ID,
		Properties: props,
		Vector:     append([]float64(nil), rec.Vector...),
	})
	return nil
}

func (s *Storage) NearVector(class string, vector []float64, limit int, fields []string) ([]vectorstore.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.collections[class]
	if !ok {
		return nil, errors.New("unknown collection: " + class)
	}
	if limit <= 0 {
		limit = 10
	}
	type scored struct {
		idx      int
		distance float64
	}
	scores := make([]scored, len(recs))
	for i, r := range recs {
		scores[i] = scored{i, 1 - cosine(r.Vector, vector)}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].distance < scores[j].distance })
	if limit > len(scores) {
		limit = len(scores)
	}
	out := make([]vectorstore.Object, 0, limit)
	for _, sc := range scores[:limit] {
		out = append(out, vectorstore.Object{
			Properties: selectFields(recs[sc.idx].Properties, fields),
			Distance:   sc.distance,
		})
	}
	return out, nil
}

func (s *Storage) ExistsWhere(class, field, value string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.collections[class]
	if !ok {
		return false, errors.New("unknown collection: " + class)
	}
	for _, r := range recs {
		if r.Properties[field] == value {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) FetchRecent(class string, limit int, fields []string) ([]vectorstore.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.collections[class]
	if !ok {
		return nil, errors.New("unknown collection: " + class)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > len(recs) {
		limit = len(recs)
	}
	// newest first
	out := make([]vectorstore.Object, 0, limit)
	for i := len(recs) - 1; i >= len(recs)-limit; i-- {
		out = append(out, vectorstore.Object{Properties: selectFields(recs[i].Properties, fields)})
	}
	return out, nil
}

func (s *Storage) Close() error { return nil }

// Len reports the number of objects stored in a collection.
func (s *Storage) Len(class string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[class])
}

func selectFields(props map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		out := make(map[string]string, len(props))
		for k, v := range props {
			out[k] = v
		}
		return out
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := props[f]; ok {
			out[f] = v
		}
	}
	return out
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
