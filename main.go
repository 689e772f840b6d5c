package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ragline/internal/adapter/gemini"
	"ragline/internal/adapter/openai"
	"ragline/internal/chunk"
	"ragline/internal/config"
	"ragline/internal/logger"
	"ragline/internal/pipeline"
	"ragline/internal/retrieval"
	"ragline/internal/store"
	"ragline/internal/token"

	_ "github.com/lib/pq"
)

func main() {
	slog.SetDefault(slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))))

	var (
		ingestPath        string
		queryText         string
		embeddingProvider string
		llmProvider       string
		chunkStrategy     string
	)
	flag.StringVar(&ingestPath, "ingest", "", "Path to the file to ingest")
	flag.StringVar(&queryText, "query", "", "Question to ask the system")
	flag.StringVar(&embeddingProvider, "embedding-provider", "openai", "Source for the embedding model (openai or gemini)")
	flag.StringVar(&llmProvider, "llm-provider", "openai", "Source for the LLM (openai or gemini)")
	flag.StringVar(&chunkStrategy, "chunking-strategy", "character", "Strategy for splitting text into chunks (character or token)")
	flag.Parse()

	if ingestPath == "" && queryText == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(ingestPath, queryText, embeddingProvider, llmProvider, chunkStrategy); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ingestPath, queryText, embeddingProvider, llmProvider, chunkStrategy string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tokenizer, err := token.NewTokenizer(cfg.TiktokenEncoding)
	if err != nil {
		return err
	}

	var splitter pipeline.Splitter
	switch chunkStrategy {
	case "character":
		splitter, err = chunk.NewCharacterSplitter(cfg.CharacterChunkSize, cfg.CharacterChunkOverlap, tokenizer)
	case "token":
		splitter, err = chunk.NewTokenSplitter(cfg.TokenChunkSize, cfg.TokenChunkOverlap, tokenizer)
	default:
		return fmt.Errorf("unknown chunking strategy: %s", chunkStrategy)
	}
	if err != nil {
		return err
	}

	// One Gemini client is shared when both roles select it.
	var geminiClient *gemini.Client
	loadGemini := func() (*gemini.Client, error) {
		if geminiClient != nil {
			return geminiClient, nil
		}
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModel, cfg.GeminiLLMModel)
		if err != nil {
			return nil, err
		}
		geminiClient = c
		return c, nil
	}
	defer func() {
		if geminiClient != nil {
			geminiClient.Close()
		}
	}()

	var openaiClient *openai.Client
	loadOpenAI := func() (*openai.Client, error) {
		if openaiClient != nil {
			return openaiClient, nil
		}
		c, err := openai.NewClient(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			EmbeddingModel: cfg.OpenAIEmbeddingModel,
			LLMModel:       cfg.OpenAILLMModel,
			Dimensions:     cfg.EmbeddingDimensions,
		})
		if err != nil {
			return nil, err
		}
		openaiClient = c
		return c, nil
	}

	var embedder pipeline.Embedder
	switch embeddingProvider {
	case "openai":
		embedder, err = loadOpenAI()
	case "gemini":
		embedder, err = loadGemini()
	default:
		return fmt.Errorf("unknown embedding provider: %s", embeddingProvider)
	}
	if err != nil {
		return err
	}

	var generator pipeline.Generator
	switch llmProvider {
	case "openai":
		generator, err = loadOpenAI()
	case "gemini":
		generator, err = loadGemini()
	default:
		return fmt.Errorf("unknown llm provider: %s", llmProvider)
	}
	if err != nil {
		return err
	}

	vectorStore, err := store.New(cfg.DatabaseURL, cfg.EmbeddingDimensions)
	if err != nil {
		return err
	}
	defer func() {
		if err := vectorStore.Close(); err != nil {
			slog.Warn("failed to close connection pool", "error", err)
		}
	}()

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	p := pipeline.New(nil, splitter, embedder, vectorStore, generator, queryLogger)

	switch {
	case ingestPath != "":
		if _, err := os.Stat(ingestPath); err != nil {
			return fmt.Errorf("cannot read %s: %w", ingestPath, err)
		}
		return p.Ingest(ctx, ingestPath)
	default:
		answer, err := p.Query(ctx, queryText, nil)
		if err != nil {
			return err
		}
		fmt.Printf("\nAnswer:\n%s\n", answer)
		return nil
	}
}
