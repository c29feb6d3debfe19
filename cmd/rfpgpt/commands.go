package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rfpgpt/internal/chatmemory"
	"rfpgpt/internal/chunker"
	"rfpgpt/internal/config"
	"rfpgpt/internal/docx"
	"rfpgpt/internal/domain"
	"rfpgpt/internal/embedding"
	"rfpgpt/internal/extract"
	"rfpgpt/internal/ingest"
	"rfpgpt/internal/llm"
	"rfpgpt/internal/service"
	"rfpgpt/internal/tui"
	"rfpgpt/internal/vectorstore"
	"rfpgpt/internal/vectorstore/memory"
	"rfpgpt/internal/vectorstore/weaviate"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <folder>",
		Short: "Ingest every PDF in a folder into the chunk store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			embedder, err := buildEmbedder(cfg)
			if err != nil {
				return err
			}
			pipeline := ingest.New(store, embedder,
				chunker.NewWindowChunker(cfg.Chunker.Size, cfg.Chunker.Overlap),
				extract.NewPDF())
			summary, err := pipeline.IngestFolder(args[0])
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question grounded in the ingested documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := openDeps(cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			qa, err := buildQA(cfg, d)
			if err != nil {
				return err
			}
			answer, err := qa.Answer(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
}

func newRFPCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "rfp <requirement>",
		Short: "Generate a Request For Proposal from a requirement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := openDeps(cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			rfp, err := buildRFP(cfg, d)
			if err != nil {
				return err
			}
			text, err := rfp.Generate(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(text)
			if output != "" {
				if err := docx.WriteFile(output, text); err != nil {
					return fmt.Errorf("export %s: %w", output, err)
				}
				fmt.Println("Saved", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "also export the RFP as a .docx file")
	return cmd
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive two-tab assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := openDeps(cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			qa, err := buildQA(cfg, d)
			if err != nil {
				return err
			}
			rfp, err := buildRFP(cfg, d)
			if err != nil {
				return err
			}
			return tui.Run(qa, rfp)
		},
	}
}

// deps bundles the clients shared by every service built in one
// command invocation: one store handle, one embedder (and with it one
// embedding cache), one generator.
type deps struct {
	store     vectorstore.Storage
	embedder  domain.Embedder
	generator domain.Generator
}

// Close releases the store handle held for this invocation.
func (d *deps) Close() error { return d.store.Close() }

func openDeps(cfg *config.AppConfig) (*deps, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	generator, err := buildGenerator(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &deps{store: store, embedder: embedder, generator: generator}, nil
}

// openStore connects a store per the configuration. The handle is
// scoped to one command invocation; callers defer Close.
func openStore(cfg *config.AppConfig) (vectorstore.Storage, error) {
	switch cfg.Store.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "weaviate":
		wcfg := weaviate.ConfigFromEnv()
		wcfg.Timeout = time.Duration(cfg.Store.TimeoutSecs) * time.Second
		return weaviate.Connect(wcfg)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	client, err := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	switch cfg.Cache.Type {
	case "memory":
		return embedding.NewCached(client, embedding.NewMemoryCache()), nil
	case "redis":
		cache, err := embedding.NewRedisCache(embedding.RedisCacheConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      time.Duration(cfg.Cache.TTLHours) * time.Hour,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return embedding.NewCached(client, cache), nil
	default:
		return client, nil
	}
}

func buildGenerator(cfg *config.AppConfig) (domain.Generator, error) {
	return llm.NewClient(llm.Config{
		BaseURL:   cfg.Generator.BaseURL,
		APIKeyEnv: cfg.Generator.APIKeyEnv,
		Model:     cfg.Generator.Model,
		Timeout:   time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	})
}

func buildQA(cfg *config.AppConfig, d *deps) (*service.QA, error) {
	if err := d.store.EnsureCollection(domain.ChunkCollection); err != nil {
		return nil, err
	}
	var mem *chatmemory.Manager
	if cfg.QA.Strategy == service.StrategyMemory {
		var err error
		mem, err = chatmemory.New(d.store, d.embedder, cfg.QA.DedupeWindow)
		if err != nil {
			return nil, err
		}
	}
	return service.NewQA(d.store, d.embedder, d.generator, mem, service.QAConfig{
		Strategy: cfg.QA.Strategy,
		TopK:     cfg.QA.TopK,
		HistoryN: cfg.QA.History,
	}), nil
}

func buildRFP(cfg *config.AppConfig, d *deps) (*service.RFP, error) {
	if err := d.store.EnsureCollection(domain.ChunkCollection); err != nil {
		return nil, err
	}
	return service.NewRFP(d.store, d.embedder, d.generator, cfg.RFP.TopK), nil
}
