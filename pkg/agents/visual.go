package agents

import (
	"context"
	"fmt"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"google.golang.org/genai"
)

var videoSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"plot_points": {
			Type:        "ARRAY",
			Description: "Key moments in the plot.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"timestamp":   {Type: "STRING", Description: "Timestamp of the event in HH:MM:SS format."},
					"event":       {Type: "STRING", Description: "A short title for the event."},
					"description": {Type: "STRING", Description: "A brief description of what happens."},
					"charactersInvolved": {
						Type:        "ARRAY",
						Items:       &genai.Schema{Type: "STRING"},
						Description: "List of character names present or central to this event.",
					},
				},
				Required: []string{"timestamp", "event", "description", "charactersInvolved"},
			},
		},
		"characters": {
			Type:        "ARRAY",
			Description: "Analysis of main characters.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"name":        {Type: "STRING", Description: "Name of the character."},
					"arc_summary": {Type: "STRING", Description: "A summary of the character's development or role."},
				},
				Required: []string{"name", "arc_summary"},
			},
		},
		"themes": {
			Type:        "ARRAY",
			Description: "Thematic analysis.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"theme": {Type: "STRING", Description: "The title of the theme."},
					"instances": {
						Type: "ARRAY",
						Items: &genai.Schema{
							Type: "OBJECT",
							Properties: map[string]*genai.Schema{
								"timestamp":   {Type: "STRING", Description: "Timestamp of the instance in HH:MM:SS format."},
								"description": {Type: "STRING", Description: "How the theme is manifested in this scene."},
							},
							Required: []string{"timestamp", "description"},
						},
					},
				},
				Required: []string{"theme", "instances"},
			},
		},
	},
	Required: []string{"plot_points", "characters", "themes"},
}

var imageSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"description": {
			Type:        "STRING",
			Description: "A detailed description of the entire image.",
		},
		"identifiedObjects": {
			Type:        "ARRAY",
			Description: "A list of key objects identified in the image.",
			Items:       &genai.Schema{Type: "STRING"},
		},
		"extractedText": {
			Type:        "STRING",
			Description: "Any text extracted from the image via OCR.",
		},
	},
	Required: []string{"description", "identifiedObjects"},
}

// VisualAnalyzer deconstructs video and image media from their raw bytes.
type VisualAnalyzer struct {
	llm gemini.Generator
}

func NewVisualAnalyzer(llm gemini.Generator) *VisualAnalyzer {
	return &VisualAnalyzer{llm: llm}
}

// Video analyzes a narrative video across both visual frames and audio.
// Express mode tightens the inference budget rather than changing the shape.
func (v *VisualAnalyzer) Video(ctx context.Context, media gemini.Attachment, mode model.AnalysisMode) (*model.VideoAnalysis, error) {
	prompt := `You are a "Visual Analysis Agent" AI specialized in deconstructing narrative films and documentaries. Analyze the provided video by processing both its visual frames and audio track.

Your task is to generate a comprehensive analysis covering three key areas:
1. **Plot Points:** Identify the major plot points and key events. For each, provide a precise timestamp, a short event title, a brief description, and a list of characters involved in the scene.
2. **Characters:** Identify the main characters and summarize their character arc or primary role throughout the narrative.
3. **Themes:** Identify the central themes and recurring motifs. For each theme, provide instances with timestamps and a description of how the theme is represented at that moment (visually or through dialogue).

Your output MUST be a single JSON object that strictly adheres to the provided schema.`

	req := gemini.Request{
		Prompt:      prompt,
		Attachments: []gemini.Attachment{media},
		Schema:      videoSchema,
		Temperature: ptr(float32(0.3)),
	}
	applyExpressBudget(&req, mode)

	resp, err := v.llm.Generate(ctx, req)
	if err != nil {
		return nil, stageErr("video analysis", err)
	}

	var out model.VideoAnalysis
	if err := decodeJSON(resp.Text, &out); err != nil {
		return nil, stageErr("video analysis", err)
	}
	if out.PlotPoints == nil {
		return nil, stageErr("video analysis", fmt.Errorf("response missing plot points"))
	}
	return &out, nil
}

// Image analyzes a single image: description, prominent objects, and any
// text visible in it.
func (v *VisualAnalyzer) Image(ctx context.Context, media gemini.Attachment) (*model.ImageAnalysis, error) {
	prompt := `You are a "Visual Analysis Agent" AI. Analyze the provided image.

Your task is to generate a comprehensive analysis covering three key areas:
1. **Description:** Provide a detailed, rich description of the image, including mood, composition, and key elements.
2. **Identified Objects:** List the most prominent objects or entities visible in the image.
3. **Extracted Text:** If there is any text in the image (like signs, labels, or writing), extract it. If there is no text, this field can be omitted.

Your output MUST be a single JSON object that strictly adheres to the provided schema.`

	resp, err := v.llm.Generate(ctx, gemini.Request{
		Prompt:      prompt,
		Attachments: []gemini.Attachment{media},
		Schema:      imageSchema,
		Temperature: ptr(float32(0.3)),
	})
	if err != nil {
		return nil, stageErr("image analysis", err)
	}

	var out model.ImageAnalysis
	if err := decodeJSON(resp.Text, &out); err != nil {
		return nil, stageErr("image analysis", err)
	}
	if out.Description == "" {
		return nil, stageErr("image analysis", fmt.Errorf("response missing description"))
	}
	return &out, nil
}
