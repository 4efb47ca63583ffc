package agents

import (
	"context"
	"fmt"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"google.golang.org/genai"
)

var deepAnalysisSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"thematicSegments": {
			Type:        "ARRAY",
			Description: "The transcript broken down by distinct topics.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"topic":           {Type: "STRING", Description: "A short title for the topic."},
					"summary":         {Type: "STRING", Description: "A concise summary of the discussion on this topic."},
					"timestamp_start": {Type: "STRING", Description: "The HH:MM:SS timestamp where this topic begins."},
				},
				Required: []string{"topic", "summary", "timestamp_start"},
			},
		},
		"sentimentAnalysis": {
			Type: "OBJECT",
			Properties: map[string]*genai.Schema{
				"overallSentiment": {Type: "STRING", Description: "Overall sentiment (e.g., Positive, Negative, Neutral)."},
				"tone":             {Type: "STRING", Description: "Prevailing tone (e.g., Professional, Casual, Tense)."},
				"summary":          {Type: "STRING", Description: "A brief explanation of the sentiment and tone."},
			},
			Required: []string{"overallSentiment", "tone", "summary"},
		},
	},
	Required: []string{"thematicSegments", "sentimentAnalysis"},
}

// DeepAnalysis is the combined thematic and sentiment breakdown of a
// transcript.
type DeepAnalysis struct {
	ThematicSegments  []model.ThematicSegment  `json:"thematicSegments"`
	SentimentAnalysis *model.SentimentAnalysis `json:"sentimentAnalysis"`
}

// DeepAnalyzer segments a transcript thematically and scores its sentiment.
// It runs whenever a non-empty transcript is available.
type DeepAnalyzer struct {
	llm gemini.Generator
}

func NewDeepAnalyzer(llm gemini.Generator) *DeepAnalyzer {
	return &DeepAnalyzer{llm: llm}
}

func (d *DeepAnalyzer) Run(ctx context.Context, transcriptText string) (*DeepAnalysis, error) {
	prompt := fmt.Sprintf(`You are a "Deeper Analysis Agent" AI. Analyze the following transcript to identify its thematic structure and overall sentiment.
1. **Thematic Segmentation:** Break the conversation down into distinct topics. For each topic, provide a title, a summary, and the starting timestamp.
2. **Sentiment & Tone:** Determine the overall sentiment and prevailing tone of the conversation and provide a brief summary.
Transcript:
---
%s
---
Your output must be a single JSON object adhering to the schema.`, transcriptText)

	resp, err := d.llm.Generate(ctx, gemini.Request{
		Prompt:      prompt,
		Schema:      deepAnalysisSchema,
		Temperature: ptr(float32(0.3)),
	})
	if err != nil {
		return nil, stageErr("deeper analysis", err)
	}

	var out DeepAnalysis
	if err := decodeJSON(resp.Text, &out); err != nil {
		return nil, stageErr("deeper analysis", err)
	}
	if out.SentimentAnalysis == nil {
		return nil, stageErr("deeper analysis", fmt.Errorf("response missing sentimentAnalysis"))
	}
	return &out, nil
}
