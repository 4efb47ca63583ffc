package agents

import (
	"context"
	"fmt"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
)

// The platform resolvers depend on the search-augmented capability: they
// cannot see the media itself, only what search can recover from the page.
// They distinguish "the page has no transcript" (NoTranscriptError, user
// should upload the file) from network or parse failures (StageError).

const transcriptJSONExample = `{
    "transcript": [
        { "speaker": "Speaker A", "timestamp": "00:00:12", "text": "..." }
    ],
    "thematicSegments": [
        { "topic": "...", "summary": "...", "timestamp_start": "00:02:30" }
    ],
    "sentimentAnalysis": {
        "overallSentiment": "Neutral", "tone": "Informative", "summary": "..."
    }
}`

type transcriptPayload struct {
	Error             string                   `json:"error"`
	Transcript        []model.TranscriptEntry  `json:"transcript"`
	ThematicSegments  []model.ThematicSegment  `json:"thematicSegments"`
	SentimentAnalysis *model.SentimentAnalysis `json:"sentimentAnalysis"`
}

// PlatformResolver resolves transcripts for the supported external
// platforms via search-augmented inference.
type PlatformResolver struct {
	llm gemini.Generator
}

func NewPlatformResolver(llm gemini.Generator) *PlatformResolver {
	return &PlatformResolver{llm: llm}
}

// YouTube fetches and analyzes the transcript of a YouTube video.
func (r *PlatformResolver) YouTube(ctx context.Context, url string) (*TranscriptAnalysis, error) {
	prompt := fmt.Sprintf(`You are an expert "YouTube Deconstructor" AI. Your task is to analyze the provided YouTube URL.

Instructions:
1. Use your search tool to find the full transcript of the video at the given URL.
2. Analyze the entire transcript to perform the following three tasks:
   a. **Transcription and Diarization:** Convert all speech to text, identify different speakers (label them generically like "Speaker A", "Speaker B"), and assign a precise start timestamp (HH:MM:SS) for each line of dialogue.
   b. **Thematic Segmentation:** Break the conversation down into distinct topics. For each topic, provide a title, a summary, and its starting timestamp.
   c. **Sentiment & Tone Analysis:** Determine the overall sentiment and prevailing tone of the entire conversation and provide a brief summary explanation.

IMPORTANT: Your output MUST be a single, valid JSON object wrapped in a markdown code block. Do not include any other text, greetings, or explanations before or after the JSON block.
The JSON object must follow this structure: %s

If a transcript cannot be found for the given URL, you MUST return a JSON object with an "error" key, like this:
{"error": "A transcript could not be found for the provided YouTube URL."}

YouTube URL: %s`, transcriptJSONExample, url)

	return r.resolve(ctx, "youtube resolver", url, prompt, "")
}

// TEDTalk fetches and analyzes the transcript of a TED talk. TED talks
// usually have a single speaker, so missing labels default to "Speaker".
func (r *PlatformResolver) TEDTalk(ctx context.Context, url string) (*TranscriptAnalysis, error) {
	prompt := fmt.Sprintf(`You are an expert "TED Talk Deconstructor" AI. Your task is to analyze the provided TED Talk URL.

Instructions:
1. Use your search tool to find the full transcript of the talk at the given URL.
2. Analyze the entire transcript to perform the following three tasks:
   a. **Transcription:** Convert all speech to text. TED Talks typically have only one speaker, label them as "Speaker". Assign a precise start timestamp (HH:MM:SS) for each line of dialogue.
   b. **Thematic Segmentation:** Break the talk down into distinct topics. For each topic, provide a title, a summary, and its starting timestamp.
   c. **Sentiment & Tone Analysis:** Determine the overall sentiment and prevailing tone of the entire talk and provide a brief summary explanation.

IMPORTANT: Your output MUST be a single, valid JSON object wrapped in a markdown code block. Do not include any other text, greetings, or explanations before or after the JSON block.
The JSON object must follow this structure: %s

If a transcript cannot be found for the given URL, you MUST return a JSON object with an "error" key, like this:
{"error": "A transcript could not be found for the provided TED Talk URL."}

TED Talk URL: %s`, transcriptJSONExample, url)

	return r.resolve(ctx, "ted talk resolver", url, prompt, "Speaker")
}

func (r *PlatformResolver) resolve(ctx context.Context, stage, url, prompt, defaultSpeaker string) (*TranscriptAnalysis, error) {
	resp, err := r.llm.Generate(ctx, gemini.Request{
		Prompt:      prompt,
		WebSearch:   true,
		Temperature: ptr(float32(0.1)),
	})
	if err != nil {
		return nil, stageErr(stage, err)
	}

	var payload transcriptPayload
	if err := decodeJSON(resp.Text, &payload); err != nil {
		return nil, stageErr(stage, err)
	}
	if payload.Error != "" {
		return nil, &NoTranscriptError{URL: url, Message: payload.Error}
	}
	if payload.Transcript == nil {
		return nil, stageErr(stage, fmt.Errorf("response missing transcript"))
	}

	if defaultSpeaker != "" {
		for i := range payload.Transcript {
			if payload.Transcript[i].Speaker == "" {
				payload.Transcript[i].Speaker = defaultSpeaker
			}
		}
	}

	return &TranscriptAnalysis{
		Transcript:        payload.Transcript,
		ThematicSegments:  payload.ThematicSegments,
		SentimentAnalysis: payload.SentimentAnalysis,
	}, nil
}

// ArchiveOrgContent is what an Internet Archive page resolves to: either
// the plain text of a textual item, or a transcript analysis of an
// audio/video item.
type ArchiveOrgContent struct {
	Text  string
	Audio *TranscriptAnalysis
}

// ArchiveOrg analyzes an archive.org details page. Textual items resolve to
// their full text; audio/video items resolve to a transcript analysis when
// the page carries a transcript, and to NoTranscriptError when it does not.
func (r *PlatformResolver) ArchiveOrg(ctx context.Context, url string) (*ArchiveOrgContent, error) {
	const stage = "internet archive resolver"

	prompt := fmt.Sprintf(`You are an expert "Internet Archive Analyst" AI. Your task is to analyze the provided Internet Archive URL (archive.org/details/...) and extract its primary content.

Instructions:
1. Use your search tool to analyze the content of the URL.
2. Determine the primary media type: is it 'text', 'audio', or 'video'?
3. **If the type is 'text'**: Find a link to the "Full Text" or plain text (.txt) version of the item. Fetch the content from that link and place it inside the 'textContent' field. The 'mediaType' should be 'text'.
4. **If the type is 'audio' or 'video'**: Search the page for a transcript. This is the most critical step. If a transcript is available on the page, capture the full transcript with speakers and timestamps, break the content into thematic segments, and analyze overall sentiment and tone. The 'mediaType' should be 'audio' (treat video as audio for this purpose).
5. **If a transcript for an audio/video item CANNOT be found**: You MUST return a JSON object with mediaType 'unsupported' and an error message explaining that direct processing is not possible without a transcript and the user should download the file and upload it manually.

IMPORTANT: Your output MUST be a single, valid JSON object wrapped in a markdown code block. The JSON object must have a "mediaType" key and a "content" key.

Example for Text:
{"mediaType": "text", "content": {"textContent": "The full text of the document goes here..."}}

Example for Audio/Video with Transcript:
{"mediaType": "audio", "content": %s}

Example for Audio/Video WITHOUT Transcript:
{"mediaType": "unsupported", "content": {"error": "A transcript could not be found for this audio/video item. Direct processing of media files from Internet Archive is not supported. Please download the file and upload it directly for analysis."}}

URL to analyze: %s`, transcriptJSONExample, url)

	resp, err := r.llm.Generate(ctx, gemini.Request{
		Prompt:      prompt,
		WebSearch:   true,
		Temperature: ptr(float32(0.1)),
	})
	if err != nil {
		return nil, stageErr(stage, err)
	}

	var payload struct {
		MediaType string `json:"mediaType"`
		Content   struct {
			transcriptPayload
			TextContent string `json:"textContent"`
		} `json:"content"`
	}
	if err := decodeJSON(resp.Text, &payload); err != nil {
		return nil, stageErr(stage, err)
	}

	switch payload.MediaType {
	case "unsupported":
		return nil, &NoTranscriptError{URL: url, Message: payload.Content.Error}
	case "text":
		if payload.Content.TextContent == "" {
			return nil, stageErr(stage, fmt.Errorf("response missing text content"))
		}
		return &ArchiveOrgContent{Text: payload.Content.TextContent}, nil
	case "audio":
		if payload.Content.Transcript == nil {
			return nil, stageErr(stage, fmt.Errorf("response missing transcript"))
		}
		return &ArchiveOrgContent{Audio: &TranscriptAnalysis{
			Transcript:        payload.Content.Transcript,
			ThematicSegments:  payload.Content.ThematicSegments,
			SentimentAnalysis: payload.Content.SentimentAnalysis,
		}}, nil
	}
	return nil, stageErr(stage, fmt.Errorf("unexpected media type %q", payload.MediaType))
}
