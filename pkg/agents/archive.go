package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"google.golang.org/genai"
)

var archiveSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"timeline": {
			Type:        "ARRAY",
			Description: "Chronological list of all dated events found across all documents.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"date":           {Type: "STRING", Description: "The date of the event (e.g., YYYY-MM-DD, Month YYYY, YYYY)."},
					"event":          {Type: "STRING", Description: "A short title for the event."},
					"description":    {Type: "STRING", Description: "A brief description of the event."},
					"sourceDocument": {Type: "STRING", Description: "The filename where this event was found."},
				},
				Required: []string{"date", "event", "description", "sourceDocument"},
			},
		},
		"entities": {
			Type:        "ARRAY",
			Description: "Key entities (people, organizations, locations) found, with disambiguation.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"name": {Type: "STRING", Description: "The canonical name of the entity."},
					"type": {Type: "STRING", Description: "The type of entity (e.g., Person, Organization, Location)."},
					"mentions": {
						Type: "ARRAY",
						Items: &genai.Schema{
							Type: "OBJECT",
							Properties: map[string]*genai.Schema{
								"document": {Type: "STRING", Description: "The filename of the mention."},
								"context":  {Type: "STRING", Description: "A text snippet showing the context of the mention."},
							},
							Required: []string{"document", "context"},
						},
					},
				},
				Required: []string{"name", "type", "mentions"},
			},
		},
		"connections": {
			Type:        "ARRAY",
			Description: "Thematic connections and recurring motifs linking multiple documents.",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"theme":       {Type: "STRING", Description: "The title of the connecting theme."},
					"description": {Type: "STRING", Description: "An explanation of the thematic connection."},
					"connectingDocuments": {
						Type: "ARRAY",
						Items: &genai.Schema{
							Type: "OBJECT",
							Properties: map[string]*genai.Schema{
								"document": {Type: "STRING", Description: "The filename."},
								"context":  {Type: "STRING", Description: "A text snippet showing the connection in this document."},
							},
							Required: []string{"document", "context"},
						},
					},
				},
				Required: []string{"theme", "description", "connectingDocuments"},
			},
		},
	},
	Required: []string{"timeline", "entities", "connections"},
}

// ArchiveInvestigator consolidates a heterogeneous collection of documents
// into a timeline, disambiguated entities, and thematic connections.
type ArchiveInvestigator struct {
	llm gemini.Generator
}

func NewArchiveInvestigator(llm gemini.Generator) *ArchiveInvestigator {
	return &ArchiveInvestigator{llm: llm}
}

// Collection analyzes all files in a single multimodal pass. The model is
// asked to disambiguate entities; MergeEntities runs afterwards as a
// deterministic safety net.
func (a *ArchiveInvestigator) Collection(ctx context.Context, files []File, mode model.AnalysisMode) (*model.ArchiveAnalysis, error) {
	if len(files) == 0 {
		return nil, stageErr("archive analysis", fmt.Errorf("no files provided"))
	}

	instruction := "Your analysis should be comprehensive and detailed. Extract all relevant information."
	if mode == model.ModeExpress {
		instruction = "Your analysis should be high-level and concise. Identify a timeline of up to 10 major events, up to 5 key entities, and up to 3 major thematic connections."
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, `You are an "Archive Investigator" AI. Your task is to analyze a heterogeneous collection of documents (which could include text, images, audio, video) and synthesize the information into a structured knowledge base.

%s

Perform the following three tasks across the ENTIRE collection:
1. **Timeline Creation:** Extract all dated events from all documents. Compile them into a single, chronological timeline. Include the source document for each event.
2. **Cross-Document Entity Recognition (NER):** Identify all significant entities (people, organizations, locations). Crucially, perform disambiguation: if "J. Smith" in one document and "John Smith" in another refer to the same person, consolidate them. For each entity, list all mentions with their source document and context.
3. **Thematic Clustering:** Identify recurring themes, topics, or motives that connect seemingly unrelated documents. For each theme, describe the connection and list the specific documents and context that support it.

The files are provided sequentially. Your output MUST be a single JSON object that strictly adheres to the provided schema.`, instruction)

	attachments := make([]gemini.Attachment, 0, len(files))
	for _, f := range files {
		fmt.Fprintf(&prompt, "\n\n--- FILE: %s ---", f.Name)
		attachments = append(attachments, gemini.Attachment{MIMEType: f.MIMEType, Data: f.Data})
	}

	resp, err := a.llm.Generate(ctx, gemini.Request{
		Prompt:      prompt.String(),
		Attachments: attachments,
		Schema:      archiveSchema,
		Temperature: ptr(float32(0.2)),
	})
	if err != nil {
		return nil, stageErr("archive analysis", err)
	}

	var out model.ArchiveAnalysis
	if err := decodeJSON(resp.Text, &out); err != nil {
		return nil, stageErr("archive analysis", err)
	}
	out.Entities = MergeEntities(out.Entities)
	return &out, nil
}

// MergeEntities consolidates entities that refer to the same real-world
// subject under different spellings ("J. Smith" vs "John Smith"). The model
// is asked to disambiguate already; this pass catches what it misses.
// Mention order within and across merged entries is preserved.
func MergeEntities(entities []model.Entity) []model.Entity {
	merged := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		idx := -1
		for i := range merged {
			if sameEntity(merged[i], e) {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, e)
			continue
		}
		// Keep the longer name as canonical; it is usually the fuller one.
		if len(e.Name) > len(merged[idx].Name) {
			merged[idx].Name = e.Name
		}
		merged[idx].Mentions = append(merged[idx].Mentions, e.Mentions...)
	}
	return merged
}

func sameEntity(a, b model.Entity) bool {
	if !strings.EqualFold(strings.TrimSpace(a.Type), strings.TrimSpace(b.Type)) {
		return false
	}
	an, bn := normalizeName(a.Name), normalizeName(b.Name)
	if an == bn {
		return true
	}
	if levenshtein.Similarity(an, bn, nil) >= 0.9 {
		return true
	}

	at, bt := strings.Fields(an), strings.Fields(bn)
	if len(at) < 2 || len(bt) < 2 {
		return false
	}
	// Same surname plus a matching initial covers the "J Smith" vs
	// "John Smith" case.
	if at[len(at)-1] != bt[len(bt)-1] {
		return false
	}
	if at[0][0] != bt[0][0] {
		return false
	}
	return len(at[0]) == 1 || len(bt[0]) == 1 ||
		levenshtein.Similarity(at[0], bt[0], nil) >= 0.8
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '\'', '"':
			return -1
		}
		return r
	}, name)
	return strings.Join(strings.Fields(name), " ")
}
