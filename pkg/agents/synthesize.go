package agents

import (
	"context"
	"fmt"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"google.golang.org/genai"
)

var publicationSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"summary": {
			Type: "OBJECT",
			Properties: map[string]*genai.Schema{
				"thesis":      {Type: "STRING", Description: "Concise summary of the paper's central thesis."},
				"methodology": {Type: "STRING", Description: "Concise summary of the research methods."},
				"results":     {Type: "STRING", Description: "Concise summary of the key findings."},
			},
			Required: []string{"thesis", "methodology", "results"},
		},
		"argumentMap": {
			Type: "OBJECT",
			Properties: map[string]*genai.Schema{
				"mainThesis": {Type: "STRING", Description: "The main thesis or core argument."},
				"primaryArguments": {
					Type: "ARRAY",
					Items: &genai.Schema{
						Type: "OBJECT",
						Properties: map[string]*genai.Schema{
							"point":              {Type: "STRING", Description: "The main point of the argument."},
							"supportingEvidence": {Type: "ARRAY", Items: &genai.Schema{Type: "STRING"}},
							"counterArguments":   {Type: "ARRAY", Items: &genai.Schema{Type: "STRING"}},
						},
						Required: []string{"point", "supportingEvidence"},
					},
				},
			},
			Required: []string{"mainThesis", "primaryArguments"},
		},
		"glossary": {
			Type: "ARRAY",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"term":       {Type: "STRING"},
					"definition": {Type: "STRING"},
				},
				Required: []string{"term", "definition"},
			},
		},
	},
	Required: []string{"summary", "argumentMap", "glossary"},
}

var narrativeSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"plotSummary": {Type: "STRING", Description: "A concise summary of the main plot points."},
		"characters": {
			Type:        "ARRAY",
			Description: "Profiles of the main characters.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"name":        {Type: "STRING"},
					"description": {Type: "STRING", Description: "A brief analysis of the character's role and development."},
				},
				Required: []string{"name", "description"},
			},
		},
		"themes": {
			Type:        "ARRAY",
			Description: "The central themes explored in the work.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"title":       {Type: "STRING", Description: "The name of the theme."},
					"explanation": {Type: "STRING", Description: "How the theme is explored in the text."},
				},
				Required: []string{"title", "explanation"},
			},
		},
	},
	Required: []string{"plotSummary", "characters", "themes"},
}

var claimsSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"claims": {
			Type:        "ARRAY",
			Description: "A list of specific, verifiable factual claims.",
			Items:       &genai.Schema{Type: "STRING"},
		},
	},
	Required: []string{"claims"},
}

// Synthesizer turns plain text into structured analyses: publication
// deconstruction, narrative breakdown, and claim extraction.
type Synthesizer struct {
	llm gemini.Generator
}

func NewSynthesizer(llm gemini.Generator) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Publication deconstructs a scientific or argumentative text.
func (s *Synthesizer) Publication(ctx context.Context, text string, mode model.AnalysisMode) (*model.PublicationAnalysis, error) {
	instruction := "Your analysis should be comprehensive and detailed."
	if mode == model.ModeExpress {
		instruction = "Your analysis should be brief and high-level. For the summary, provide a 1-2 sentence thesis. For the argument map, identify up to 3 primary arguments. For the glossary, define up to 5 key terms."
	}

	prompt := fmt.Sprintf(`You are a "Synthesizer Agent" AI specialized in deconstructing scientific publications. Analyze the provided text and transform it into a structured JSON object according to the schema. %s
---
%s
---`, instruction, text)

	req := gemini.Request{
		Prompt:      prompt,
		Schema:      publicationSchema,
		Temperature: ptr(float32(0.2)),
	}
	applyExpressBudget(&req, mode)

	resp, err := s.llm.Generate(ctx, req)
	if err != nil {
		return nil, stageErr("publication synthesis", err)
	}

	var out model.PublicationAnalysis
	if err := decodeJSON(resp.Text, &out); err != nil {
		return nil, stageErr("publication synthesis", err)
	}
	if out.ArgumentMap.MainThesis == "" && len(out.ArgumentMap.PrimaryArguments) == 0 {
		return nil, stageErr("publication synthesis", fmt.Errorf("response missing argument map"))
	}
	out.OriginalText = text
	return &out, nil
}

// Narrative deconstructs a literary text into plot, characters, and themes.
func (s *Synthesizer) Narrative(ctx context.Context, text string, mode model.AnalysisMode) (*model.NarrativeAnalysis, error) {
	instruction := "Your analysis should be comprehensive and detailed."
	if mode == model.ModeExpress {
		instruction = "Your analysis should be brief and high-level. Provide a 3-4 sentence plot summary, identify up to 3 main characters, and describe up to 2 central themes."
	}

	prompt := fmt.Sprintf(`You are a "Synthesizer Agent" AI specialized in literary analysis. Analyze the provided narrative text (e.g., story, article, script) and transform it into a structured JSON object according to the schema. Identify the plot, main characters, and central themes. %s
---
%s
---`, instruction, text)

	req := gemini.Request{
		Prompt:      prompt,
		Schema:      narrativeSchema,
		Temperature: ptr(float32(0.5)),
	}
	applyExpressBudget(&req, mode)

	resp, err := s.llm.Generate(ctx, req)
	if err != nil {
		return nil, stageErr("narrative synthesis", err)
	}

	var out model.NarrativeAnalysis
	if err := decodeJSON(resp.Text, &out); err != nil {
		return nil, stageErr("narrative synthesis", err)
	}
	if out.PlotSummary == "" {
		return nil, stageErr("narrative synthesis", fmt.Errorf("response missing plot summary"))
	}
	out.OriginalText = text
	return &out, nil
}

// ExtractClaims pulls up to 5 verifiable factual claims out of a transcript.
// Zero claims is a valid result.
func (s *Synthesizer) ExtractClaims(ctx context.Context, transcriptText string) ([]string, error) {
	prompt := fmt.Sprintf(`You are a "Synthesizer Agent" AI. Read the following transcript and identify up to 5 of the most significant, specific, and factual claims that can be verified. A good claim is a statement of fact, not an opinion.
Transcript:
---
%s
---
Your output MUST be a JSON object. If no verifiable claims are found, return an empty array.`, transcriptText)

	resp, err := s.llm.Generate(ctx, gemini.Request{
		Prompt:      prompt,
		Schema:      claimsSchema,
		Temperature: ptr(float32(0.3)),
	})
	if err != nil {
		return nil, stageErr("claim extraction", err)
	}

	var out struct {
		Claims []string `json:"claims"`
	}
	if err := decodeJSON(resp.Text, &out); err != nil {
		return nil, stageErr("claim extraction", err)
	}
	if len(out.Claims) > 5 {
		out.Claims = out.Claims[:5]
	}
	return out.Claims, nil
}
