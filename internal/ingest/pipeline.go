// Package ingest orchestrates the document pipeline: extract text,
// clean it, chunk it, embed each chunk and store the result.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"rfpgpt/internal/chunker"
	"rfpgpt/internal/domain"
	"rfpgpt/internal/logger"
	"rfpgpt/internal/textproc"
	"rfpgpt/internal/vectorstore"
)

// Extractor pulls raw text from a document on disk.
type Extractor interface {
	Text(path string) (string, error)
}

// Summary reports what one IngestFolder run did.
type Summary struct {
	Files   int // files ingested
	Skipped int // files already present in the store
	Chunks  int // chunks stored
	Dropped int // chunks dropped after embedding failures
}

func (s Summary) String() string {
	return fmt.Sprintf("%d file(s) ingested, %d skipped, %d chunk(s) stored, %d dropped",
		s.Files, s.Skipped, s.Chunks, s.Dropped)
}

// Pipeline ingests PDF files into the chunk collection. Ingestion is
// idempotent at file granularity: a filename already present in the
// store blocks re-ingestion of that file.
type Pipeline struct {
	store     vectorstore.Storage
	embedder  domain.Embedder
	chunker   *chunker.WindowChunker
	extractor Extractor
}

// New creates a pipeline over the injected store, embedder, chunker
// and extractor.
func New(store vectorstore.Storage, embedder domain.Embedder, ch *chunker.WindowChunker, ex Extractor) *Pipeline {
	return &Pipeline{store: store, embedder: embedder, chunker: ch, extractor: ex}
}

// IngestFolder processes every PDF in folder. Individual chunk
// failures are logged and skipped; there is no rollback of chunks
// already stored for a file.
func (p *Pipeline) IngestFolder(folder string) (Summary, error) {
	var summary Summary
	if err := p.store.EnsureCollection(domain.ChunkCollection); err != nil {
		return summary, fmt.Errorf("provision chunk store: %w", err)
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		return summary, fmt.Errorf("read folder %s: %w", folder, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		filename := entry.Name()
		logger.Section("processing " + filename)

		exists, err := p.store.ExistsWhere(domain.ChunkCollection.Class, domain.FieldFilename, filename)
		if err != nil {
			return summary, fmt.Errorf("existence check for %s: %w", filename, err)
		}
		if exists {
			logger.Info("already ingested: %s, skipping", filename)
			summary.Skipped++
			continue
		}

		stored, dropped, err := p.ingestFile(filepath.Join(folder, filename), filename)
		if err != nil {
			return summary, err
		}
		summary.Files++
		summary.Chunks += stored
		summary.Dropped += dropped
	}
	return summary, nil
}

func (p *Pipeline) ingestFile(path, filename string) (stored, dropped int, err error) {
	raw, err := p.extractor.Text(path)
	if err != nil {
		return 0, 0, err
	}
	cleaned := textproc.Clean(raw)
	chunks := p.chunker.Chunk(cleaned)
	for i, text := range chunks {
		vector, err := p.embedder.Embed(text)
		if err != nil || len(vector) == 0 {
			logger.Warn("embedding failed for chunk %d of %s: %v", i+1, filename, err)
			dropped++
			continue
		}
		err = p.store.Insert(domain.ChunkCollection.Class, vectorstore.Record{
			ID: uuid.NewString(),
			Properties: map[string]string{
				domain.FieldText:     text,
				domain.FieldFilename: filename,
			},
			Vector: vector,
		})
		if err != nil {
			return stored, dropped, fmt.Errorf("store chunk %d of %s: %w", i+1, filename, err)
		}
		stored++
		logger.Debug("stored chunk %d/%d from %s", i+1, len(chunks), filename)
	}
	return stored, dropped, nil
}
