package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfpgpt/internal/domain"
	"rfpgpt/internal/vectorstore"
)

func newStore(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.EnsureCollection(domain.ChunkCollection))
	require.NoError(t, s.EnsureCollection(domain.ChatCollection))
	return s
}

func TestEnsureCollection_Idempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Insert(domain.ChunkCollection.Class, vectorstore.Record{
		ID:         "1",
		Properties: map[string]string{domain.FieldText: "a"},
		Vector:     []float64{1, 0},
	}))
	require.NoError(t, s.EnsureCollection(domain.ChunkCollection))
	assert.Equal(t, 1, s.Len(domain.ChunkCollection.Class))
}

func TestInsert_UnknownCollection(t *testing.T) {
	s := NewStorage()
	err := s.Insert("Nope", vectorstore.Record{ID: "1"})
	assert.Error(t, err)
}

func TestNearVector_OrdersByDistance(t *testing.T) {
	s := newStore(t)
	class := domain.ChunkCollection.Class
	require.NoError(t, s.Insert(class, vectorstore.Record{
		ID: "far", Properties: map[string]string{domain.FieldText: "far"}, Vector: []float64{0, 1},
	}))
	require.NoError(t, s.Insert(class, vectorstore.Record{
		ID: "near", Properties: map[string]string{domain.FieldText: "near"}, Vector: []float64{1, 0.1},
	}))

	res, err := s.NearVector(class, []float64{1, 0}, 2, []string{domain.FieldText})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "near", res[0].Properties[domain.FieldText])
	assert.Less(t, res[0].Distance, res[1].Distance)
}

func TestNearVector_LimitAndFieldSelection(t *testing.T) {
	s := newStore(t)
	class := domain.ChunkCollection.Class
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Insert(class, vectorstore.Record{
			ID: string(rune('a' + i)),
			Properties: map[string]string{
				domain.FieldText:     "body",
				domain.FieldFilename: "doc.pdf",
			},
			Vector: []float64{float64(i), 1},
		}))
	}
	res, err := s.NearVector(class, []float64{1, 1}, 3, []string{domain.FieldText})
	require.NoError(t, err)
	assert.Len(t, res, 3)
	for _, o := range res {
		assert.Contains(t, o.Properties, domain.FieldText)
		assert.NotContains(t, o.Properties, domain.FieldFilename)
	}
}

func TestExistsWhere(t *testing.T) {
	s := newStore(t)
	class := domain.ChunkCollection.Class
	require.NoError(t, s.Insert(class, vectorstore.Record{
		ID:         "1",
		Properties: map[string]string{domain.FieldFilename: "proposal.pdf"},
		Vector:     []float64{1},
	}))

	ok, err := s.ExistsWhere(class, domain.FieldFilename, "proposal.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ExistsWhere(class, domain.FieldFilename, "other.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchRecent_NewestFirst(t *testing.T) {
	s := newStore(t)
	class := domain.ChatCollection.Class
	for _, q := range []string{"first", "second", "third"} {
		require.NoError(t, s.Insert(class, vectorstore.Record{
			ID:         q,
			Properties: map[string]string{domain.FieldQuestion: q},
			Vector:     []float64{1},
		}))
	}

	res, err := s.FetchRecent(class, 2, []string{domain.FieldQuestion})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "third", res[0].Properties[domain.FieldQuestion])
	assert.Equal(t, "second", res[1].Properties[domain.FieldQuestion])
}
