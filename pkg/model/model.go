// Package model defines the typed analysis results produced by the pipeline.
// Each modality has its own result struct; AnalysisResult is the tagged union
// over all of them, discriminated by Kind().
package model

import "fmt"

// AnalysisMode controls the depth of an analysis run. Standard runs every
// optional stage; Express narrows output and skips claim verification.
type AnalysisMode string

const (
	ModeStandard AnalysisMode = "standard"
	ModeExpress  AnalysisMode = "express"
)

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (AnalysisMode, error) {
	switch AnalysisMode(s) {
	case ModeStandard, ModeExpress:
		return AnalysisMode(s), nil
	case "":
		return ModeStandard, nil
	}
	return "", fmt.Errorf("unknown analysis mode: %q", s)
}

// AnalysisType is the discriminant tag of the result union.
type AnalysisType string

const (
	TypePublication AnalysisType = "publication"
	TypeNarrative   AnalysisType = "narrative"
	TypeAudio       AnalysisType = "audio"
	TypeVideo       AnalysisType = "video"
	TypeImage       AnalysisType = "image"
	TypeArchive     AnalysisType = "archive"
)

// AnalysisResult is the union over all modality results. The tag is fixed at
// assembly time; results are immutable data afterwards.
type AnalysisResult interface {
	Kind() AnalysisType
}

// SourceKind identifies where the analyzed media can be replayed from.
type SourceKind string

const (
	SourceYouTube    SourceKind = "youtube"
	SourceTEDTalk    SourceKind = "ted"
	SourceArchiveOrg SourceKind = "archive_org"
	SourceLocalFile  SourceKind = "file"
)

// Provenance is an optional pointer back to the original media. It is
// attached by the caller after the pipeline completes; the pipeline itself
// never sets it.
type Provenance struct {
	Kind SourceKind `json:"kind"`
	Ref  string     `json:"ref"`
}

// GroundingSource is a citation returned by a search-augmented inference
// call, supporting a fact-check verdict.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// FactCheck is the verification verdict for a single extracted claim.
type FactCheck struct {
	Claim        string            `json:"claim"`
	Verification string            `json:"verification"`
	Sources      []GroundingSource `json:"sources"`
}

// --- Publication ---

type Argument struct {
	Point              string   `json:"point"`
	SupportingEvidence []string `json:"supportingEvidence"`
	CounterArguments   []string `json:"counterArguments,omitempty"`
}

type ArgumentMap struct {
	MainThesis       string     `json:"mainThesis"`
	PrimaryArguments []Argument `json:"primaryArguments"`
}

type Summary struct {
	Thesis      string `json:"thesis"`
	Methodology string `json:"methodology"`
	Results     string `json:"results"`
}

type GlossaryItem struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type PublicationAnalysis struct {
	OriginalText string         `json:"originalText"`
	Summary      Summary        `json:"summary"`
	ArgumentMap  ArgumentMap    `json:"argumentMap"`
	Glossary     []GlossaryItem `json:"glossary"`
}

func (*PublicationAnalysis) Kind() AnalysisType { return TypePublication }

// --- Narrative ---

type CharacterProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type NarrativeTheme struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

type NarrativeAnalysis struct {
	OriginalText string             `json:"originalText"`
	PlotSummary  string             `json:"plotSummary"`
	Characters   []CharacterProfile `json:"characters"`
	Themes       []NarrativeTheme   `json:"themes"`
}

func (*NarrativeAnalysis) Kind() AnalysisType { return TypeNarrative }

// --- Audio ---

type TranscriptEntry struct {
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"` // HH:MM:SS
	Text      string `json:"text"`
}

type ThematicSegment struct {
	Topic          string `json:"topic"`
	Summary        string `json:"summary"`
	TimestampStart string `json:"timestamp_start"` // HH:MM:SS
}

type SentimentAnalysis struct {
	OverallSentiment string `json:"overallSentiment"`
	Tone             string `json:"tone"`
	Summary          string `json:"summary"`
}

// AudioAnalysis is the transcript-centric result. The optional fields are
// present only when their producing stage actually ran; absence means the
// stage was skipped, which is a valid state rather than an error.
type AudioAnalysis struct {
	Transcript        []TranscriptEntry  `json:"transcript"`
	ThematicSegments  []ThematicSegment  `json:"thematicSegments,omitempty"`
	SentimentAnalysis *SentimentAnalysis `json:"sentimentAnalysis,omitempty"`
	FactChecks        []FactCheck        `json:"factChecks,omitempty"`
	Source            *Provenance        `json:"source,omitempty"`
}

func (*AudioAnalysis) Kind() AnalysisType { return TypeAudio }

// --- Video ---

type PlotPoint struct {
	Timestamp          string   `json:"timestamp"` // HH:MM:SS
	Event              string   `json:"event"`
	Description        string   `json:"description"`
	CharactersInvolved []string `json:"charactersInvolved"`
}

type CharacterArc struct {
	Name       string `json:"name"`
	ArcSummary string `json:"arc_summary"`
}

type ThemeInstance struct {
	Timestamp   string `json:"timestamp"` // HH:MM:SS
	Description string `json:"description"`
}

type VideoTheme struct {
	Theme     string          `json:"theme"`
	Instances []ThemeInstance `json:"instances"`
}

type VideoAnalysis struct {
	PlotPoints []PlotPoint    `json:"plot_points"`
	Characters []CharacterArc `json:"characters"`
	Themes     []VideoTheme   `json:"themes"`
	Source     *Provenance    `json:"source,omitempty"`
}

func (*VideoAnalysis) Kind() AnalysisType { return TypeVideo }

// --- Image ---

type ImageAnalysis struct {
	Description       string      `json:"description"`
	IdentifiedObjects []string    `json:"identifiedObjects"`
	ExtractedText     string      `json:"extractedText,omitempty"`
	Source            *Provenance `json:"source,omitempty"`
}

func (*ImageAnalysis) Kind() AnalysisType { return TypeImage }

// --- Archive ---

type TimelineEvent struct {
	Date           string `json:"date"`
	Event          string `json:"event"`
	Description    string `json:"description"`
	SourceDocument string `json:"sourceDocument"`
}

type Mention struct {
	Document string `json:"document"`
	Context  string `json:"context"`
}

type Entity struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"` // Person, Organization, Location, ...
	Mentions []Mention `json:"mentions"`
}

type ThematicConnection struct {
	Theme               string    `json:"theme"`
	Description         string    `json:"description"`
	ConnectingDocuments []Mention `json:"connectingDocuments"`
}

type ArchiveAnalysis struct {
	Timeline    []TimelineEvent      `json:"timeline"`
	Entities    []Entity             `json:"entities"`
	Connections []ThematicConnection `json:"connections"`
}

func (*ArchiveAnalysis) Kind() AnalysisType { return TypeArchive }
