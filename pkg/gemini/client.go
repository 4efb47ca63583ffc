// Package gemini wraps the Gemini API behind the small Generator interface
// the stage agents consume. One Generate call is one request/response
// exchange; streaming is used only by the chat follow-up feature.
package gemini

import (
	"context"
	"fmt"
	"os"

	"github.com/duynguyendang/deconstructor/pkg/model"
	"google.golang.org/genai"
)

// Attachment is a binary part sent alongside a prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request describes a single inference call. Schema, when set, asks the
// model for structured JSON output; WebSearch enables the search grounding
// tool. Zero values leave the model defaults in place.
type Request struct {
	Prompt          string
	Attachments     []Attachment
	Schema          *genai.Schema
	WebSearch       bool
	Temperature     *float32
	MaxOutputTokens int32
	ThinkingBudget  *int32
}

// Response carries the raw model text plus any grounding citations returned
// by a search-augmented call.
type Response struct {
	Text    string
	Sources []model.GroundingSource
}

// Generator is the inference capability consumed by the stage agents.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Client is the Gemini-backed Generator.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client. Falls back to the GEMINI_API_KEY and
// GEMINI_MODEL environment variables when arguments are empty.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found")
	}
	if modelName == "" {
		modelName = os.Getenv("GEMINI_MODEL")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{client: client, model: modelName}, nil
}

// Generate performs one content generation exchange.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	for _, att := range req.Attachments {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: att.MIMEType, Data: att.Data},
		})
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	cfg := &genai.GenerateContentConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}
	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.ThinkingBudget != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: req.ThinkingBudget}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	return &Response{
		Text:    resp.Text(),
		Sources: groundingSources(resp),
	}, nil
}

// NewChat opens a conversational session seeded with a system instruction.
func (c *Client) NewChat(ctx context.Context, systemInstruction string) (*genai.Chat, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	chat, err := c.client.Chats.Create(ctx, c.model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return chat, nil
}

func groundingSources(resp *genai.GenerateContentResponse) []model.GroundingSource {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []model.GroundingSource
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil {
			continue
		}
		sources = append(sources, model.GroundingSource{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return sources
}
