package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/duynguyendang/deconstructor/pkg/agents"
	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
)

// ErrUnsupportedInput means no viable route exists for the given input.
// Rare in practice because unrecognized files fall back to the archive
// collection stage.
var ErrUnsupportedInput = errors.New("unsupported input")

// Progress receives human-readable progress messages during a run. Budgeted
// pipelines emit "Step k/N: ..." messages and always finish with
// "Step N/N: Finalizing...".
type Progress func(message string)

// Options tunes the orchestrator.
type Options struct {
	// VerifyConcurrency caps the fact-check fan-out; zero means unbounded.
	VerifyConcurrency int
	// HTTPClient is used by the generic article fetcher; nil means the
	// default client.
	HTTPClient *http.Client
}

// Orchestrator owns the stage agents and runs one pipeline per call. It
// keeps no state across runs; concurrent runs are independent.
type Orchestrator struct {
	transcriber *agents.Transcriber
	deep        *agents.DeepAnalyzer
	synth       *agents.Synthesizer
	facts       *agents.FactChecker
	visual      *agents.VisualAnalyzer
	archive     *agents.ArchiveInvestigator
	web         *agents.WebContentAgent
	platform    *agents.PlatformResolver
}

// New builds an orchestrator with all stage agents sharing one generator.
func New(llm gemini.Generator, opts Options) *Orchestrator {
	return &Orchestrator{
		transcriber: agents.NewTranscriber(llm),
		deep:        agents.NewDeepAnalyzer(llm),
		synth:       agents.NewSynthesizer(llm),
		facts:       agents.NewFactChecker(llm, opts.VerifyConcurrency),
		visual:      agents.NewVisualAnalyzer(llm),
		archive:     agents.NewArchiveInvestigator(llm),
		web:         agents.NewWebContentAgent(llm, opts.HTTPClient),
		platform:    agents.NewPlatformResolver(llm),
	}
}

func ensureProgress(p Progress) Progress {
	if p == nil {
		return func(string) {}
	}
	return p
}

// AnalyzeText runs the synthesis pipeline for plain text. The text kind is
// chosen by the caller; text never enters the byte pipeline.
func (o *Orchestrator) AnalyzeText(ctx context.Context, text string, kind TextKind, mode model.AnalysisMode, progress Progress) (model.AnalysisResult, error) {
	progress = ensureProgress(progress)
	switch kind {
	case TextPublication:
		progress("Synthesizing publication...")
		return o.synth.Publication(ctx, text, mode)
	case TextNarrative:
		progress("Deconstructing narrative work...")
		return o.synth.Narrative(ctx, text, mode)
	}
	return nil, fmt.Errorf("%w: text kind %q", ErrUnsupportedInput, kind)
}

// AnalyzeFile routes a local file by its declared media type and runs the
// matching stage sequence.
func (o *Orchestrator) AnalyzeFile(ctx context.Context, f agents.File, mode model.AnalysisMode, progress Progress) (model.AnalysisResult, error) {
	progress = ensureProgress(progress)
	media := gemini.Attachment{MIMEType: f.MIMEType, Data: f.Data}

	switch ClassifyFile(f.MIMEType) {
	case FilePlainText:
		return nil, fmt.Errorf("%w: plain text must go through AnalyzeText with a caller-chosen text kind", ErrUnsupportedInput)

	case FileAudio:
		return o.analyzeAudioFile(ctx, media, mode, progress)

	case FileVideo:
		progress("Analyzing video with the visual analysis agent. This may take several minutes...")
		return o.visual.Video(ctx, media, mode)

	case FileImage:
		progress("Analyzing image with the visual analysis agent...")
		return o.visual.Image(ctx, media)
	}

	// Anything unrecognized is treated as a one-item collection. The
	// analysis may be generic, but no input type dead-ends.
	progress(fmt.Sprintf("Running archival analysis on single file %q...", f.Name))
	return o.archive.Collection(ctx, []agents.File{f}, mode)
}

// AnalyzeCollection consolidates a user-submitted multi-file collection,
// regardless of individual file types.
func (o *Orchestrator) AnalyzeCollection(ctx context.Context, files []agents.File, mode model.AnalysisMode, progress Progress) (*model.ArchiveAnalysis, error) {
	progress = ensureProgress(progress)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided for archival analysis", ErrUnsupportedInput)
	}
	progress(fmt.Sprintf("Analyzing archive of %d files. This may take several minutes...", len(files)))
	return o.archive.Collection(ctx, files, mode)
}

// URLOutcome is the result of AnalyzeURL. Exactly one field is set: either
// the pipeline produced a full result, or it extracted plain text that
// still needs a caller-supplied text-kind decision.
type URLOutcome struct {
	Result        model.AnalysisResult
	ExtractedText string
}

// AnalyzeURL classifies a URL and runs the matching resolver pipeline.
func (o *Orchestrator) AnalyzeURL(ctx context.Context, url string, mode model.AnalysisMode, progress Progress) (*URLOutcome, error) {
	progress = ensureProgress(progress)

	switch ClassifyURL(url) {
	case URLArchiveOrg:
		return o.analyzeArchiveOrgURL(ctx, url, mode, progress)

	case URLTEDTalk:
		total := urlStepTotal(mode)
		progress(fmt.Sprintf("Step 1/%d: Fetching and analyzing TED Talk transcript...", total))
		analysis, err := o.platform.TEDTalk(ctx, url)
		if err != nil {
			return nil, err
		}
		if len(analysis.Transcript) == 0 {
			return nil, &agents.NoTranscriptError{URL: url, Message: "Could not retrieve a valid transcript for the TED Talk."}
		}
		result, err := o.finishTranscript(ctx, analysis, mode, progress, total)
		if err != nil {
			return nil, err
		}
		return &URLOutcome{Result: result}, nil

	case URLYouTube:
		total := urlStepTotal(mode)
		progress(fmt.Sprintf("Step 1/%d: Fetching and analyzing YouTube transcript...", total))
		analysis, err := o.platform.YouTube(ctx, url)
		if err != nil {
			return nil, err
		}
		if len(analysis.Transcript) == 0 {
			// A video with no spoken content is a valid, empty result.
			progress(fmt.Sprintf("Step %d/%d: Finalizing analysis...", total, total))
			return &URLOutcome{Result: &model.AudioAnalysis{Transcript: []model.TranscriptEntry{}}}, nil
		}
		result, err := o.finishTranscript(ctx, analysis, mode, progress, total)
		if err != nil {
			return nil, err
		}
		return &URLOutcome{Result: result}, nil
	}

	// Generic article: extract text, then let the caller classify it,
	// since article text has unknown kind.
	text, err := o.web.FetchAndExtract(ctx, url, progress)
	if err != nil {
		return nil, err
	}
	return &URLOutcome{ExtractedText: text}, nil
}

func (o *Orchestrator) analyzeArchiveOrgURL(ctx context.Context, url string, mode model.AnalysisMode, progress Progress) (*URLOutcome, error) {
	progress("Analyzing Internet Archive page and fetching content...")
	content, err := o.platform.ArchiveOrg(ctx, url)
	if err != nil {
		return nil, err
	}
	if content.Text != "" {
		return &URLOutcome{ExtractedText: content.Text}, nil
	}

	total := urlStepTotal(mode)
	progress(fmt.Sprintf("Step 1/%d: Fetched transcript from Internet Archive.", total))
	result, err := o.finishTranscript(ctx, content.Audio, mode, progress, total)
	if err != nil {
		return nil, err
	}
	return &URLOutcome{Result: result}, nil
}

// audioStepTotal is the step budget for the local-audio pipeline:
// transcribe, themes+sentiment, claims+verification, finalize. Express mode
// drops the claims step.
func audioStepTotal(mode model.AnalysisMode) int {
	if mode == model.ModeExpress {
		return 3
	}
	return 4
}

// urlStepTotal is the step budget for transcript-resolver pipelines: fetch,
// claims+verification, finalize. Express mode drops the claims step.
func urlStepTotal(mode model.AnalysisMode) int {
	if mode == model.ModeExpress {
		return 2
	}
	return 3
}

func (o *Orchestrator) analyzeAudioFile(ctx context.Context, media gemini.Attachment, mode model.AnalysisMode, progress Progress) (model.AnalysisResult, error) {
	total := audioStepTotal(mode)

	progress(fmt.Sprintf("Step 1/%d: Transcribing audio... (this may take a moment)", total))
	transcript, err := o.transcriber.Run(ctx, media)
	if err != nil {
		return nil, err
	}

	analysis := &agents.TranscriptAnalysis{Transcript: transcript}
	if len(transcript) == 0 {
		// No speech detected: short-circuit with an empty transcript and
		// none of the downstream fields.
		progress(fmt.Sprintf("Step %d/%d: Finalizing analysis...", total, total))
		return &model.AudioAnalysis{Transcript: []model.TranscriptEntry{}}, nil
	}

	progress(fmt.Sprintf("Step 2/%d: Analyzing themes and sentiment...", total))
	deep, err := o.deep.Run(ctx, analysis.PlainText())
	if err != nil {
		return nil, err
	}
	analysis.ThematicSegments = deep.ThematicSegments
	analysis.SentimentAnalysis = deep.SentimentAnalysis

	return o.finishTranscript(ctx, analysis, mode, progress, total)
}

// finishTranscript runs the optional claim verification step and assembles
// the Audio result. It owns the last two steps of the budget: claims (in
// standard mode) and finalization.
func (o *Orchestrator) finishTranscript(ctx context.Context, analysis *agents.TranscriptAnalysis, mode model.AnalysisMode, progress Progress, total int) (*model.AudioAnalysis, error) {
	var factChecks []model.FactCheck

	if mode == model.ModeStandard {
		step := total - 1
		progress(fmt.Sprintf("Step %d/%d: Extracting verifiable claims from transcript...", step, total))
		claims, err := o.synth.ExtractClaims(ctx, analysis.PlainText())
		if err != nil {
			return nil, err
		}
		if len(claims) > 0 {
			progress(fmt.Sprintf("Step %d/%d: Fact-checking %d claims with Google Search...", step, total, len(claims)))
			factChecks = o.facts.Verify(ctx, claims)
		} else {
			progress(fmt.Sprintf("Step %d/%d: No verifiable claims found to check.", step, total))
		}
	}

	progress(fmt.Sprintf("Step %d/%d: Finalizing analysis...", total, total))

	return &model.AudioAnalysis{
		Transcript:        analysis.Transcript,
		ThematicSegments:  analysis.ThematicSegments,
		SentimentAnalysis: analysis.SentimentAnalysis,
		FactChecks:        factChecks,
	}, nil
}
