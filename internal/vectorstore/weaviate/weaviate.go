// Package weaviate is a minimal REST/GraphQL client for a remote
// Weaviate instance. Collections are provisioned with vectorization
// disabled; every vector is supplied by the caller.
package weaviate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"rfpgpt/internal/domain"
	"rfpgpt/internal/logger"
	"rfpgpt/internal/vectorstore"
)

// Environment variables required before a connection is attempted.
const (
	EnvURL       = "WEAVIATE_URL"
	EnvAPIKey    = "WEAVIATE_API_KEY"
	EnvOpenAIKey = "OPENAI_API_KEY"
)

var _ vectorstore.Storage = (*Client)(nil)

// Client talks to a Weaviate cluster over its v1 REST and GraphQL
// endpoints.
type Client struct {
	url       string
	apiKey    string
	openAIKey string
	client    *http.Client
}

// Config contains connection details for the Weaviate store.
type Config struct {
	URL       string
	APIKey    string
	OpenAIKey string
	Timeout   time.Duration
}

// ConfigFromEnv builds a Config from the required environment
// variables. Missing values surface later as configuration errors in
// Connect, before any network call.
func ConfigFromEnv() Config {
	return Config{
		URL:       os.Getenv(EnvURL),
		APIKey:    os.Getenv(EnvAPIKey),
		OpenAIKey: os.Getenv(EnvOpenAIKey),
	}
}

// Connect validates the configuration, dials the cluster and checks
// its readiness endpoint. Configuration gaps return ErrMissingConfig;
// unreachable clusters return a wrapped ErrConnection.
func Connect(cfg Config) (*Client, error) {
	for _, v := range []struct{ name, value string }{
		{EnvURL, cfg.URL},
		{EnvAPIKey, cfg.APIKey},
		{EnvOpenAIKey, cfg.OpenAIKey},
	} {
		if v.value == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingConfig, v.name)
		}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		url:       normalizeURL(cfg.URL),
		apiKey:    cfg.APIKey,
		openAIKey: cfg.OpenAIKey,
		client:    &http.Client{Timeout: timeout},
	}
	req, _ := http.NewRequest(http.MethodGet, c.url+"/v1/.well-known/ready", nil)
	c.setHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: readiness check returned %s", domain.ErrConnection, resp.Status)
	}
	return c, nil
}

// EnsureCollection creates the collection if it does not exist yet.
func (c *Client) EnsureCollection(col domain.Collection) error {
	req, _ := http.NewRequest(http.MethodGet, c.url+"/v1/schema/"+col.Class, nil)
	c.setHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		logger.Debug("collection %s already exists", col.Class)
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("schema lookup for %s failed: %s", col.Class, resp.Status)
	}

	properties := make([]map[string]any, 0, len(col.Properties))
	for _, p := range col.Properties {
		properties = append(properties, map[string]any{
			"name":        p.Name,
			"dataType":    []string{"text"},
			"description": p.Description,
		})
	}
	body := map[string]any{
		"class":       col.Class,
		"description": col.Description,
		"vectorizer":  "none",
		"properties":  properties,
	}
	if err := c.postJSON(c.url+"/v1/schema", body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", col.Class, err)
	}
	logger.Info("created collection %s", col.Class)
	return nil
}

// Insert stores one object with its caller-supplied vector.
func (c *Client) Insert(class string, rec vectorstore.Record) error {
	body := map[string]any{
		"class":      class,
		"id":         rec.ID,
		"properties": rec.Properties,
		"vector":     rec.Vector,
	}
	return c.postJSON(c.url+"/v1/objects", body, nil)
}

// NearVector runs a nearVector GraphQL query and returns the closest
// objects with the requested fields.
func (c *Client) NearVector(class string, vector []float64, limit int, fields []string) ([]vectorstore.Object, error) {
	if limit <= 0 {
		limit = 10
	}
	vec, _ := json.Marshal(vector)
	query := fmt.Sprintf(
		"{ Get { %s(nearVector: {vector: %s}, limit: %d) { %s _additional { distance } } } }",
		class, vec, limit, strings.Join(fields, " "),
	)
	objects, err := c.graphQL(query, class)
	if err != nil {
		return nil, err
	}
	out := make([]vectorstore.Object, 0, len(objects))
	for _, obj := range objects {
		out = append(out, vectorstore.Object{
			Properties: stringProperties(obj, fields),
			Distance:   additionalDistance(obj),
		})
	}
	return out, nil
}

// ExistsWhere reports whether any object has field equal to value.
func (c *Client) ExistsWhere(class, field, value string) (bool, error) {
	query := fmt.Sprintf(
		"{ Get { %s(where: {path: [%s], operator: Equal, valueText: %s}, limit: 1) { %s } } }",
		class, strconv.Quote(field), strconv.Quote(value), field,
	)
	objects, err := c.graphQL(query, class)
	if err != nil {
		return false, err
	}
	return len(objects) > 0, nil
}

// FetchRecent returns up to limit objects ordered newest first by the
// timestamp property. Only meaningful for collections carrying one.
func (c *Client) FetchRecent(class string, limit int, fields []string) ([]vectorstore.Object, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(
		"{ Get { %s(sort: [{path: [%s], order: desc}], limit: %d) { %s } } }",
		class, strconv.Quote(domain.FieldTimestamp), limit, strings.Join(fields, " "),
	)
	objects, err := c.graphQL(query, class)
	if err != nil {
		return nil, err
	}
	out := make([]vectorstore.Object, 0, len(objects))
	for _, obj := range objects {
		out = append(out, vectorstore.Object{Properties: stringProperties(obj, fields)})
	}
	return out, nil
}

// Close releases idle connections held by the HTTP client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) graphQL(query, class string) ([]map[string]any, error) {
	var resp struct {
		Data struct {
			Get map[string][]map[string]any `json:"Get"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := c.postJSON(c.url+"/v1/graphql", map[string]string{"query": query}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql query failed: %s", resp.Errors[0].Message)
	}
	return resp.Data.Get[class], nil
}

func (c *Client) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	c.setHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("weaviate POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	// Forwarded for parity with generative/vectorizer modules even
	// though collections here vectorize nothing server side.
	req.Header.Set("X-OpenAI-Api-Key", c.openAIKey)
}

func normalizeURL(url string) string {
	url = strings.TrimRight(url, "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	return url
}

func stringProperties(obj map[string]any, fields []string) map[string]string {
	props := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := obj[f].(string); ok {
			props[f] = v
		}
	}
	return props
}

func additionalDistance(obj map[string]any) float64 {
	add, ok := obj["_additional"].(map[string]any)
	if !ok {
		return 0
	}
	d, _ := add["distance"].(float64)
	return d
}
