package weaviate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfpgpt/internal/domain"
	"rfpgpt/internal/vectorstore"
)

func testConfig(url string) Config {
	return Config{URL: url, APIKey: "wv-key", OpenAIKey: "oa-key"}
}

func readyHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/.well-known/ready" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func TestConnect_MissingConfig(t *testing.T) {
	cases := []Config{
		{APIKey: "k", OpenAIKey: "k"},
		{URL: "https://example", OpenAIKey: "k"},
		{URL: "https://example", APIKey: "k"},
	}
	for _, cfg := range cases {
		_, err := Connect(cfg)
		assert.ErrorIs(t, err, domain.ErrMissingConfig)
	}
}

func TestConnect_ReadyCheck(t *testing.T) {
	var gotAuth, gotOpenAI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotOpenAI = r.Header.Get("X-OpenAI-Api-Key")
		require.Equal(t, "/v1/.well-known/ready", r.URL.Path)
	}))
	defer srv.Close()

	c, err := Connect(testConfig(srv.URL))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "Bearer wv-key", gotAuth)
	assert.Equal(t, "oa-key", gotOpenAI)
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := Connect(testConfig(srv.URL))
	assert.ErrorIs(t, err, domain.ErrConnection)
}

func TestEnsureCollection_CreatesWhenAbsent(t *testing.T) {
	var created map[string]any
	srv := httptest.NewServer(readyHandler(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/schema/PDFChunk":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/v1/schema":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c, err := Connect(testConfig(srv.URL))
	require.NoError(t, err)
	require.NoError(t, c.EnsureCollection(domain.ChunkCollection))

	assert.Equal(t, "PDFChunk", created["class"])
	assert.Equal(t, "none", created["vectorizer"])
	props := created["properties"].([]any)
	assert.Len(t, props, 2)
}

func TestEnsureCollection_ExistingIsNoop(t *testing.T) {
	srv := httptest.NewServer(readyHandler(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/v1/schema/ChatHistory" {
			w.WriteHeader(http.StatusOK)
			return
		}
		t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	c, err := Connect(testConfig(srv.URL))
	require.NoError(t, err)
	assert.NoError(t, c.EnsureCollection(domain.ChatCollection))
}

func TestInsert(t *testing.T) {
	var inserted map[string]any
	srv := httptest.NewServer(readyHandler(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/objects", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&inserted))
	}))
	defer srv.Close()

	c, err := Connect(testConfig(srv.URL))
	require.NoError(t, err)

	err = c.Insert("PDFChunk", vectorstore.Record{
		ID:         "0d9f3a60-0000-0000-0000-000000000001",
		Properties: map[string]string{"text": "hello", "filename": "a.pdf"},
		Vector:     []float64{0.5, 0.25},
	})
	require.NoError(t, err)

	assert.Equal(t, "PDFChunk", inserted["class"])
	assert.Equal(t, "0d9f3a60-0000-0000-0000-000000000001", inserted["id"])
	assert.Equal(t, []any{0.5, 0.25}, inserted["vector"])
}

func TestNearVector(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(readyHandler(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/graphql", r.URL.Path)
		var in struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		gotQuery = in.Query
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"Get": map[string]any{
					"PDFChunk": []map[string]any{
						{"text": "chunk one", "filename": "a.pdf", "_additional": map[string]any{"distance": 0.12}},
						{"text": "chunk two", "filename": "b.pdf", "_additional": map[string]any{"distance": 0.48}},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c, err := Connect(testConfig(srv.URL))
	require.NoError(t, err)

	res, err := c.NearVector("PDFChunk", []float64{0.1, 0.9}, 10, []string{"text", "filename"})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "chunk one", res[0].Properties["text"])
	assert.Equal(t, 0.12, res[0].Distance)
	assert.Contains(t, gotQuery, "nearVector: {vector: [0.1,0.9]}")
	assert.Contains(t, gotQuery, "limit: 10")
}

func TestNearVector_GraphQLError(t *testing.T) {
	srv := httptest.NewServer(readyHandler(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "class not found"}},
		})
	}))
	defer srv.Close()

	c, err := Connect(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.NearVector("Missing", []float64{1}, 5, []string{"text"})
	assert.ErrorContains(t, err, "class not found")
}

func TestExistsWhere(t *testing.T) {
	var gotQuery string
	hit := true
	srv := httptest.NewServer(readyHandler(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		gotQuery = in.Query
		objects := []map[string]any{}
		if hit {
			objects = append(objects, map[string]any{"filename": "a.pdf"})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"Get": map[string]any{"PDFChunk": objects}},
		})
	}))
	defer srv.Close()

	c, err := Connect(testConfig(srv.URL))
	require.NoError(t, err)

	ok, err := c.ExistsWhere("PDFChunk", "filename", "a.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, gotQuery, `where: {path: ["filename"], operator: Equal, valueText: "a.pdf"}`)

	hit = false
	ok, err = c.ExistsWhere("PDFChunk", "filename", "other.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchRecent(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(readyHandler(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		gotQuery = in.Query
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"Get": map[string]any{
					"ChatHistory": []map[string]any{
						{"question": "newest", "answer": "a2", "timestamp": "2026-02-01T00:00:00Z"},
						{"question": "older", "answer": "a1", "timestamp": "2026-01-01T00:00:00Z"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c, err := Connect(testConfig(srv.URL))
	require.NoError(t, err)

	res, err := c.FetchRecent("ChatHistory", 2, []string{"question", "answer", "timestamp"})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "newest", res[0].Properties["question"])
	assert.Contains(t, gotQuery, `sort: [{path: ["timestamp"], order: desc}]`)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://cluster.weaviate.network", normalizeURL("cluster.weaviate.network/"))
	assert.Equal(t, "http://localhost:8080", normalizeURL("http://localhost:8080"))
}
