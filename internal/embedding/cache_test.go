package embedding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	fail  bool
}

func (e *countingEmbedder) Name() string   { return "counting" }
func (e *countingEmbedder) Dimension() int { return 2 }

func (e *countingEmbedder) Embed(text string) ([]float64, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("embedder down")
	}
	return []float64{float64(len(text)), 1}, nil
}

func TestCached_HitSkipsInnerEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCached(inner, NewMemoryCache())

	v1, err := c.Embed("same text")
	require.NoError(t, err)
	v2, err := c.Embed("same text")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, inner.calls)
}

func TestCached_DistinctTextsMiss(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCached(inner, NewMemoryCache())

	_, err := c.Embed("one")
	require.NoError(t, err)
	_, err = c.Embed("two")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCached_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{fail: true}
	c := NewCached(inner, NewMemoryCache())

	_, err := c.Embed("broken")
	require.Error(t, err)

	inner.fail = false
	v, err := c.Embed("broken")
	require.NoError(t, err)
	assert.NotEmpty(t, v)
	assert.Equal(t, 2, inner.calls)
}

func TestVectorByteEncoding(t *testing.T) {
	in := []float64{0.25, -1.5, 3.14159, 0}
	out := bytesToVector(vectorToBytes(in))
	assert.Equal(t, in, out)
}
