package agents

import (
	"context"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"google.golang.org/genai"
)

const transcribePrompt = `You are an AI assistant specialized in audio analysis. Transcribe the provided audio file and perform speaker diarization.

Instructions:
1. **Transcribe:** Convert all spoken words to text.
2. **Identify Speakers:** Differentiate speakers and label them (e.g., "Speaker A", "Speaker B").
3. **Add Timestamps:** Provide a start timestamp for each speech segment in HH:MM:SS format.

Your output MUST be a JSON object adhering to the provided schema. If no speech is detected, return an empty transcript array.`

var transcriptSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"transcript": {
			Type:        "ARRAY",
			Description: "Full transcript with speaker labels and timestamps.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"speaker":   {Type: "STRING", Description: "Identified speaker."},
					"timestamp": {Type: "STRING", Description: "Start time in HH:MM:SS."},
					"text":      {Type: "STRING", Description: "Transcribed text."},
				},
				Required: []string{"speaker", "timestamp", "text"},
			},
		},
	},
	Required: []string{"transcript"},
}

// Transcriber converts raw audio bytes into a diarized transcript.
type Transcriber struct {
	llm gemini.Generator
}

func NewTranscriber(llm gemini.Generator) *Transcriber {
	return &Transcriber{llm: llm}
}

// Run transcribes one audio file. An empty transcript (no speech detected)
// is a valid, non-error result.
func (t *Transcriber) Run(ctx context.Context, audio gemini.Attachment) ([]model.TranscriptEntry, error) {
	resp, err := t.llm.Generate(ctx, gemini.Request{
		Prompt:      transcribePrompt,
		Attachments: []gemini.Attachment{audio},
		Schema:      transcriptSchema,
	})
	if err != nil {
		return nil, stageErr("transcription", err)
	}

	var out struct {
		Transcript []model.TranscriptEntry `json:"transcript"`
	}
	if err := decodeJSON(resp.Text, &out); err != nil {
		return nil, stageErr("transcription", err)
	}
	if out.Transcript == nil {
		out.Transcript = []model.TranscriptEntry{}
	}
	return out.Transcript, nil
}
