package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/duynguyendang/deconstructor/pkg/agents"
	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
)

// scriptedLLM routes each request to a canned response by matching a marker
// phrase from the stage prompt.
type scriptedLLM struct {
	stages []string // marker phrases of the stages that ran, in order
	script map[string]string
}

var stageMarkers = []string{
	"specialized in audio analysis",
	"Deeper Analysis Agent",
	"identify up to 5",
	"FactCheck Agent",
	"scientific publications",
	"literary analysis",
	"YouTube Deconstructor",
	"TED Talk Deconstructor",
	"Internet Archive Analyst",
	"Archive Investigator",
	"web content extractor",
}

func (s *scriptedLLM) Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error) {
	for _, marker := range stageMarkers {
		if !strings.Contains(req.Prompt, marker) {
			continue
		}
		s.stages = append(s.stages, marker)
		text, ok := s.script[marker]
		if !ok {
			return nil, fmt.Errorf("unscripted stage %q", marker)
		}
		return &gemini.Response{Text: text}, nil
	}
	return nil, fmt.Errorf("unrecognized prompt: %.80s", req.Prompt)
}

func (s *scriptedLLM) ran(marker string) bool {
	for _, m := range s.stages {
		if m == marker {
			return true
		}
	}
	return false
}

const (
	transcriptJSON = `{"transcript": [{"speaker": "Speaker A", "timestamp": "00:00:01", "text": "The Eiffel Tower is 330 meters tall."}]}`
	deepJSON       = `{"thematicSegments": [{"topic": "Architecture", "summary": "s", "timestamp_start": "00:00:01"}], "sentimentAnalysis": {"overallSentiment": "Neutral", "tone": "Informative", "summary": "s"}}`
	claimsJSON     = `{"claims": ["The Eiffel Tower is 330 meters tall.", "It opened in 1889."]}`
)

func collectProgress(msgs *[]string) Progress {
	return func(msg string) { *msgs = append(*msgs, msg) }
}

func TestAudioPipelineStandard(t *testing.T) {
	llm := &scriptedLLM{script: map[string]string{
		"specialized in audio analysis": transcriptJSON,
		"Deeper Analysis Agent":         deepJSON,
		"identify up to 5":              claimsJSON,
		"FactCheck Agent":               "Confirmed.",
	}}
	orch := New(llm, Options{})

	var progress []string
	result, err := orch.AnalyzeFile(context.Background(),
		agents.File{Name: "talk.mp3", MIMEType: "audio/mpeg", Data: []byte{1}},
		model.ModeStandard, collectProgress(&progress))
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}

	audio, ok := result.(*model.AudioAnalysis)
	if !ok {
		t.Fatalf("Expected *model.AudioAnalysis, got %T", result)
	}
	if len(audio.Transcript) != 1 || len(audio.ThematicSegments) != 1 {
		t.Errorf("Unexpected analysis: %+v", audio)
	}
	if len(audio.FactChecks) != 2 {
		t.Errorf("Expected 2 fact checks, got %d", len(audio.FactChecks))
	}
	if audio.Source != nil {
		t.Error("The pipeline must not attach provenance itself")
	}

	want := []string{
		"Step 1/4: Transcribing audio... (this may take a moment)",
		"Step 2/4: Analyzing themes and sentiment...",
		"Step 3/4: Extracting verifiable claims from transcript...",
		"Step 3/4: Fact-checking 2 claims with Google Search...",
		"Step 4/4: Finalizing analysis...",
	}
	if len(progress) != len(want) {
		t.Fatalf("Expected %d progress messages, got %d: %v", len(want), len(progress), progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("Progress[%d] = %q, want %q", i, progress[i], want[i])
		}
	}
}

func TestAudioPipelineExpressSkipsVerification(t *testing.T) {
	llm := &scriptedLLM{script: map[string]string{
		"specialized in audio analysis": transcriptJSON,
		"Deeper Analysis Agent":         deepJSON,
	}}
	orch := New(llm, Options{})

	var progress []string
	result, err := orch.AnalyzeFile(context.Background(),
		agents.File{Name: "talk.mp3", MIMEType: "audio/mpeg", Data: []byte{1}},
		model.ModeExpress, collectProgress(&progress))
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}

	audio := result.(*model.AudioAnalysis)
	if audio.FactChecks != nil {
		t.Errorf("Express mode must skip fact checks, got %v", audio.FactChecks)
	}
	if llm.ran("identify up to 5") || llm.ran("FactCheck Agent") {
		t.Errorf("Claim stages must not run in express mode: %v", llm.stages)
	}
	if last := progress[len(progress)-1]; last != "Step 3/3: Finalizing analysis..." {
		t.Errorf("Express budget is 3 steps, last message %q", last)
	}
}

func TestAudioPipelineEmptyTranscript(t *testing.T) {
	llm := &scriptedLLM{script: map[string]string{
		"specialized in audio analysis": `{"transcript": []}`,
	}}
	orch := New(llm, Options{})

	var progress []string
	result, err := orch.AnalyzeFile(context.Background(),
		agents.File{Name: "silence.wav", MIMEType: "audio/wav", Data: []byte{1}},
		model.ModeStandard, collectProgress(&progress))
	if err != nil {
		t.Fatalf("Silent audio is a valid input, got error %v", err)
	}

	audio := result.(*model.AudioAnalysis)
	if audio.Transcript == nil || len(audio.Transcript) != 0 {
		t.Errorf("Expected empty (non-nil) transcript, got %v", audio.Transcript)
	}
	if llm.ran("Deeper Analysis Agent") {
		t.Error("Downstream stages must not run on an empty transcript")
	}
	if last := progress[len(progress)-1]; last != "Step 4/4: Finalizing analysis..." {
		t.Errorf("Finalize message must still be emitted, got %q", last)
	}
}

func TestAnalyzeTextPublication(t *testing.T) {
	llm := &scriptedLLM{script: map[string]string{
		"scientific publications": `{"summary": {"thesis": "t", "methodology": "m", "results": "r"}, "argumentMap": {"mainThesis": "t", "primaryArguments": [{"point": "p", "supportingEvidence": []}]}, "glossary": []}`,
	}}
	orch := New(llm, Options{})

	result, err := orch.AnalyzeText(context.Background(), "paper text", TextPublication, model.ModeStandard, nil)
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	pub := result.(*model.PublicationAnalysis)
	if pub.OriginalText != "paper text" {
		t.Errorf("OriginalText = %q", pub.OriginalText)
	}
}

func TestAnalyzeFilePlainTextRejected(t *testing.T) {
	orch := New(&scriptedLLM{script: map[string]string{}}, Options{})
	_, err := orch.AnalyzeFile(context.Background(),
		agents.File{Name: "notes.txt", MIMEType: "text/plain", Data: []byte("hello")},
		model.ModeStandard, nil)
	if !errors.Is(err, ErrUnsupportedInput) {
		t.Fatalf("Expected ErrUnsupportedInput, got %v", err)
	}
}

func TestAnalyzeFileUnknownTypeFallsBack(t *testing.T) {
	llm := &scriptedLLM{script: map[string]string{
		"Archive Investigator": `{"timeline": [], "entities": [], "connections": []}`,
	}}
	orch := New(llm, Options{})

	result, err := orch.AnalyzeFile(context.Background(),
		agents.File{Name: "scan.pdf", MIMEType: "application/pdf", Data: []byte{1}},
		model.ModeStandard, nil)
	if err != nil {
		t.Fatalf("Fallback analysis failed: %v", err)
	}
	if _, ok := result.(*model.ArchiveAnalysis); !ok {
		t.Fatalf("Expected archive fallback, got %T", result)
	}
}

func TestAnalyzeCollectionEmpty(t *testing.T) {
	orch := New(&scriptedLLM{script: map[string]string{}}, Options{})
	_, err := orch.AnalyzeCollection(context.Background(), nil, model.ModeStandard, nil)
	if !errors.Is(err, ErrUnsupportedInput) {
		t.Fatalf("Expected ErrUnsupportedInput, got %v", err)
	}
}

func TestAnalyzeURLYouTubeEmptyTranscript(t *testing.T) {
	llm := &scriptedLLM{script: map[string]string{
		"YouTube Deconstructor": `{"transcript": []}`,
	}}
	orch := New(llm, Options{})

	var progress []string
	outcome, err := orch.AnalyzeURL(context.Background(), "https://youtu.be/x", model.ModeStandard, collectProgress(&progress))
	if err != nil {
		t.Fatalf("A silent video is a valid result, got %v", err)
	}
	audio, ok := outcome.Result.(*model.AudioAnalysis)
	if !ok || len(audio.Transcript) != 0 {
		t.Fatalf("Expected empty audio result, got %+v", outcome.Result)
	}
	if last := progress[len(progress)-1]; last != "Step 3/3: Finalizing analysis..." {
		t.Errorf("Finalize message must still close the run, got %q", last)
	}
}

func TestAnalyzeURLTEDEmptyTranscriptFails(t *testing.T) {
	llm := &scriptedLLM{script: map[string]string{
		"TED Talk Deconstructor": `{"transcript": []}`,
	}}
	orch := New(llm, Options{})

	_, err := orch.AnalyzeURL(context.Background(), "https://www.ted.com/talks/x", model.ModeStandard, nil)
	var noTranscript *agents.NoTranscriptError
	if !errors.As(err, &noTranscript) {
		t.Fatalf("Expected NoTranscriptError for an empty TED transcript, got %v", err)
	}
}

func TestAnalyzeURLYouTubeFullRun(t *testing.T) {
	llm := &scriptedLLM{script: map[string]string{
		"YouTube Deconstructor": "```json\n" + `{"transcript": [{"speaker": "Speaker A", "timestamp": "00:00:01", "text": "claim text"}], "sentimentAnalysis": {"overallSentiment": "Neutral", "tone": "Calm", "summary": "s"}}` + "\n```",
		"identify up to 5":      `{"claims": []}`,
	}}
	orch := New(llm, Options{})

	var progress []string
	outcome, err := orch.AnalyzeURL(context.Background(), "https://youtube.com/watch?v=x", model.ModeStandard, collectProgress(&progress))
	if err != nil {
		t.Fatalf("AnalyzeURL failed: %v", err)
	}
	audio := outcome.Result.(*model.AudioAnalysis)
	if audio.SentimentAnalysis == nil {
		t.Error("Resolver-supplied sentiment should carry through")
	}

	want := []string{
		"Step 1/3: Fetching and analyzing YouTube transcript...",
		"Step 2/3: Extracting verifiable claims from transcript...",
		"Step 2/3: No verifiable claims found to check.",
		"Step 3/3: Finalizing analysis...",
	}
	if len(progress) != len(want) {
		t.Fatalf("Expected %d messages, got %v", len(want), progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("Progress[%d] = %q, want %q", i, progress[i], want[i])
		}
	}
}
