// Package mcp exposes the analysis pipeline over the Model Context
// Protocol so agent hosts can drive it from Stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/duynguyendang/deconstructor/pkg/history"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"github.com/duynguyendang/deconstructor/pkg/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the orchestrator and history store to expose them via MCP.
type MCPServer struct {
	orch  *pipeline.Orchestrator
	store *history.Store
}

// Run starts the MCP server on Stdio.
func Run(ctx context.Context, orch *pipeline.Orchestrator, store *history.Store) error {
	s := server.NewMCPServer(
		"Deconstructor",
		"0.1.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	ms := &MCPServer{orch: orch, store: store}

	// --- Resources ---

	// Resource: History Index
	s.AddResource(
		mcp.NewResource(
			"deconstructor://history",
			"Analysis History",
			mcp.WithResourceDescription("Index of saved analyses (ID, title, timestamps)"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleHistoryIndex,
	)

	// Resource: Saved Analysis
	// Pattern: deconstructor://history/{id}
	s.AddResource(
		mcp.NewResource(
			"deconstructor://history/{id}",
			"Saved Analysis",
			mcp.WithResourceDescription("Full result of a saved analysis"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleHistoryRecord,
	)

	// --- Tools ---

	// Tool: Analyze Text
	s.AddTool(
		mcp.NewTool(
			"analyze_text",
			mcp.WithDescription("Run a full analysis of pasted text. Kind selects the lens: 'publication' for factual/academic prose, 'narrative' for fiction."),
			mcp.WithString("text", mcp.Required(), mcp.Description("The text to analyze")),
			mcp.WithString("kind", mcp.Required(), mcp.Description("Analysis lens: publication or narrative")),
			mcp.WithString("mode", mcp.Description("standard (default) or express")),
		),
		ms.handleAnalyzeText,
	)

	// Tool: Analyze URL
	s.AddTool(
		mcp.NewTool(
			"analyze_url",
			mcp.WithDescription("Analyze a URL. YouTube, TED and Archive.org links go through transcript recovery; any other URL has its main article extracted and returned as text for a follow-up analyze_text call."),
			mcp.WithString("url", mcp.Required(), mcp.Description("The URL to analyze")),
			mcp.WithString("mode", mcp.Description("standard (default) or express")),
		),
		ms.handleAnalyzeURL,
	)

	// Tool: Delete Analysis
	s.AddTool(
		mcp.NewTool(
			"delete_analysis",
			mcp.WithDescription("Delete a saved analysis from the history."),
			mcp.WithString("id", mcp.Required(), mcp.Description("The record ID")),
		),
		ms.handleDeleteAnalysis,
	)

	slog.Info("Starting MCP server on Stdio")
	return server.ServeStdio(s)
}

// --- Resource Handlers ---

func (ms *MCPServer) handleHistoryIndex(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type indexEntry struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Source    string `json:"source"`
		UpdatedAt string `json:"updated_at"`
	}

	records := ms.store.List()
	index := make([]indexEntry, 0, len(records))
	for _, rec := range records {
		index = append(index, indexEntry{
			ID:        rec.ID,
			Title:     rec.Title,
			Source:    rec.SourceLabel,
			UpdatedAt: rec.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	jsonBytes, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history index: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (ms *MCPServer) handleHistoryRecord(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	// Extract ID from URI: deconstructor://history/{id}
	uriStr := request.Params.URI
	prefix := "deconstructor://history/"
	if !strings.HasPrefix(uriStr, prefix) {
		return nil, fmt.Errorf("invalid URI format")
	}
	id := strings.TrimPrefix(uriStr, prefix)

	rec, err := ms.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("record not found: %s", id)
	}

	jsonBytes, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// --- Tool Handlers ---

func progressLogger(msg string) {
	slog.Info(msg)
}

func (ms *MCPServer) handleAnalyzeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	text, ok := args["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text argument required"), nil
	}
	kindStr, ok := args["kind"].(string)
	if !ok {
		return mcp.NewToolResultError("kind argument required"), nil
	}

	kind, err := pipeline.ParseTextKind(kindStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := parseMode(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := ms.orch.AnalyzeText(ctx, text, kind, mode, progressLogger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	rec, err := ms.store.Save(result, "Pasted text", "Pasted text", nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save analysis: %v", err)), nil
	}

	return recordResult(rec)
}

func (ms *MCPServer) handleAnalyzeURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	url, ok := args["url"].(string)
	if !ok {
		return mcp.NewToolResultError("url argument required"), nil
	}
	mode, err := parseMode(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, err := ms.orch.AnalyzeURL(ctx, url, mode, progressLogger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	if outcome.Result == nil {
		// Extracted article text; the caller picks a lens and calls
		// analyze_text with it.
		return mcp.NewToolResultText(outcome.ExtractedText), nil
	}

	rec, err := ms.store.Save(outcome.Result, "", url, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save analysis: %v", err)), nil
	}

	return recordResult(rec)
}

func (ms *MCPServer) handleDeleteAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, ok := args["id"].(string)
	if !ok {
		return mcp.NewToolResultError("id argument required"), nil
	}

	if err := ms.store.Delete(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText("deleted " + id), nil
}

func parseMode(args map[string]any) (model.AnalysisMode, error) {
	raw, _ := args["mode"].(string)
	return model.ParseMode(raw)
}

func recordResult(rec *history.Record) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal record"), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
