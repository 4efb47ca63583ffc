// Package agents contains the stage agents of the analysis pipeline. Each
// agent wraps a single semantic task delegated to the inference capability:
// a fixed prompt template, an expected output shape, and validation of the
// response. Agents are pure with respect to the pipeline; all state flows
// through arguments and return values.
package agents

import (
	"fmt"
	"strings"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
)

// File is a locally-held input handed to the pipeline: raw bytes plus the
// declared media type used for routing.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// TranscriptAnalysis is the shared intermediate produced by the transcript
// resolvers: a diarized transcript plus the optional deeper-analysis fields
// when the resolver produced them in the same pass.
type TranscriptAnalysis struct {
	Transcript        []model.TranscriptEntry
	ThematicSegments  []model.ThematicSegment
	SentimentAnalysis *model.SentimentAnalysis
}

// PlainText renders a transcript as "speaker: text" lines for downstream
// text-only stages.
func (a *TranscriptAnalysis) PlainText() string {
	lines := make([]string, 0, len(a.Transcript))
	for _, entry := range a.Transcript {
		lines = append(lines, fmt.Sprintf("%s: %s", entry.Speaker, entry.Text))
	}
	return strings.Join(lines, "\n")
}

func ptr[T any](v T) *T { return &v }

// applyExpressBudget tightens the token and thinking budgets for express
// mode, matching the narrower output the express prompts request.
func applyExpressBudget(req *gemini.Request, mode model.AnalysisMode) {
	if mode != model.ModeExpress {
		return
	}
	req.MaxOutputTokens = 2048
	req.ThinkingBudget = ptr(int32(1024))
}
