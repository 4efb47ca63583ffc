package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/duynguyendang/deconstructor/pkg/model"
)

func TestPublicationSetsOriginalText(t *testing.T) {
	llm := &fakeLLM{respond: textResponse(`{
		"summary": {"thesis": "t", "methodology": "m", "results": "r"},
		"argumentMap": {"mainThesis": "t", "primaryArguments": [{"point": "p", "supportingEvidence": ["e"]}]},
		"glossary": [{"term": "x", "definition": "y"}]
	}`)}

	out, err := NewSynthesizer(llm).Publication(context.Background(), "the paper text", model.ModeStandard)
	if err != nil {
		t.Fatalf("Publication failed: %v", err)
	}
	if out.OriginalText != "the paper text" {
		t.Errorf("OriginalText must echo the input, got %q", out.OriginalText)
	}
	if out.Summary.Thesis != "t" || len(out.ArgumentMap.PrimaryArguments) != 1 {
		t.Errorf("Unexpected analysis: %+v", out)
	}
}

func TestPublicationMissingArgumentMap(t *testing.T) {
	llm := &fakeLLM{respond: textResponse(`{"summary": {"thesis": "t", "methodology": "m", "results": "r"}, "glossary": []}`)}
	_, err := NewSynthesizer(llm).Publication(context.Background(), "text", model.ModeStandard)

	var stage *StageError
	if !errors.As(err, &stage) {
		t.Fatalf("Expected StageError for missing argument map, got %v", err)
	}
}

func TestPublicationExpressInstruction(t *testing.T) {
	llm := &fakeLLM{respond: textResponse(`{
		"summary": {"thesis": "t", "methodology": "m", "results": "r"},
		"argumentMap": {"mainThesis": "t", "primaryArguments": []},
		"glossary": []
	}`)}

	_, err := NewSynthesizer(llm).Publication(context.Background(), "text", model.ModeExpress)
	if err != nil {
		t.Fatalf("Publication failed: %v", err)
	}
	req := llm.requests[0]
	if !strings.Contains(req.Prompt, "up to 3 primary arguments") {
		t.Error("Express prompt should narrow the argument map")
	}
	if req.MaxOutputTokens != 2048 {
		t.Errorf("Express mode should tighten the token budget, got %d", req.MaxOutputTokens)
	}
}

func TestNarrativeMissingPlot(t *testing.T) {
	llm := &fakeLLM{respond: textResponse(`{"characters": [], "themes": []}`)}
	_, err := NewSynthesizer(llm).Narrative(context.Background(), "a story", model.ModeStandard)
	if err == nil {
		t.Error("Expected error for missing plot summary")
	}
}

func TestExtractClaimsTruncates(t *testing.T) {
	llm := &fakeLLM{respond: textResponse(`{"claims": ["c1", "c2", "c3", "c4", "c5", "c6", "c7"]}`)}
	claims, err := NewSynthesizer(llm).ExtractClaims(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("ExtractClaims failed: %v", err)
	}
	if len(claims) != 5 {
		t.Errorf("Expected at most 5 claims, got %d", len(claims))
	}
}

func TestExtractClaimsEmpty(t *testing.T) {
	llm := &fakeLLM{respond: textResponse(`{"claims": []}`)}
	claims, err := NewSynthesizer(llm).ExtractClaims(context.Background(), "opinion only")
	if err != nil {
		t.Fatalf("ExtractClaims failed: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("Expected no claims, got %v", claims)
	}
}
