package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ragline/internal/adapter/prompt"
)

// Client provides Gemini-backed embedding and generation.
type Client struct {
	client         *genai.Client
	embeddingModel string
	llmModel       string
}

func NewClient(ctx context.Context, apiKey, embeddingModel, llmModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if embeddingModel == "" {
		embeddingModel = "gemini-embedding-001"
	}
	if llmModel == "" {
		llmModel = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{client: client, embeddingModel: embeddingModel, llmModel: llmModel}, nil
}

func (c *Client) Close() error { return c.client.Close() }

// ModelName reports the embedding model, recorded on every embedding row.
func (c *Client) ModelName() string { return c.embeddingModel }

// Embed returns one vector per input text, same order as the input.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := c.client.EmbeddingModel(c.embeddingModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(strings.ReplaceAll(t, "\n", " ")))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "model", c.embeddingModel, "error", err)
		return nil, err
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Generate produces an answer grounded in the retrieved context. Gemini
// rejects exact zero-temperature requests, so low-temperature sampling is
// used instead.
func (c *Client) Generate(ctx context.Context, query, contextText string) (string, error) {
	gm := c.client.GenerativeModel(c.llmModel)
	gm.SetTemperature(0.1)
	gm.SetMaxOutputTokens(512)
	gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt.User(query, contextText)))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from model")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
