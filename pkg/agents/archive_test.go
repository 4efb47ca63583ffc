package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/duynguyendang/deconstructor/pkg/model"
)

func TestMergeEntitiesInitialForm(t *testing.T) {
	entities := []model.Entity{
		{Name: "J. Smith", Type: "Person", Mentions: []model.Mention{{Document: "letter1.txt", Context: "J. Smith wrote"}}},
		{Name: "John Smith", Type: "Person", Mentions: []model.Mention{{Document: "letter2.txt", Context: "John Smith arrived"}}},
	}
	merged := MergeEntities(entities)
	if len(merged) != 1 {
		t.Fatalf("Expected 1 merged entity, got %d: %+v", len(merged), merged)
	}
	if merged[0].Name != "John Smith" {
		t.Errorf("Expected the fuller name as canonical, got %q", merged[0].Name)
	}
	if len(merged[0].Mentions) != 2 {
		t.Fatalf("Expected both mentions kept, got %d", len(merged[0].Mentions))
	}
	if merged[0].Mentions[0].Document != "letter1.txt" || merged[0].Mentions[1].Document != "letter2.txt" {
		t.Errorf("Mention order must be preserved: %+v", merged[0].Mentions)
	}
}

func TestMergeEntitiesNearSpelling(t *testing.T) {
	entities := []model.Entity{
		{Name: "Jon Smith", Type: "Person"},
		{Name: "John Smith", Type: "Person"},
	}
	if merged := MergeEntities(entities); len(merged) != 1 {
		t.Errorf("Expected spelling variants to merge, got %d entities", len(merged))
	}
}

func TestMergeEntitiesKeepsDistinct(t *testing.T) {
	entities := []model.Entity{
		{Name: "John Smith", Type: "Person"},
		{Name: "Jane Smith", Type: "Person"},
		{Name: "John Smith", Type: "Organization"},
	}
	merged := MergeEntities(entities)
	if len(merged) != 3 {
		t.Errorf("Different people and different types must stay separate, got %d: %+v", len(merged), merged)
	}
}

func TestArchiveCollection(t *testing.T) {
	llm := &fakeLLM{respond: textResponse(`{
		"timeline": [
			{"date": "1944-06-06", "event": "Landing", "description": "d", "sourceDocument": "diary.txt"}
		],
		"entities": [
			{"name": "R. Jones", "type": "Person", "mentions": [{"document": "diary.txt", "context": "c1"}]},
			{"name": "Robert Jones", "type": "Person", "mentions": [{"document": "photo.jpg", "context": "c2"}]}
		],
		"connections": []
	}`)}

	inv := NewArchiveInvestigator(llm)
	files := []File{
		{Name: "diary.txt", MIMEType: "text/plain", Data: []byte("dear diary")},
		{Name: "photo.jpg", MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}},
	}
	out, err := inv.Collection(context.Background(), files, model.ModeStandard)
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if len(out.Entities) != 1 {
		t.Errorf("Expected the model's duplicate entities merged, got %d", len(out.Entities))
	}

	req := llm.requests[0]
	if len(req.Attachments) != 2 {
		t.Errorf("Expected 2 attachments, got %d", len(req.Attachments))
	}
	for _, name := range []string{"--- FILE: diary.txt ---", "--- FILE: photo.jpg ---"} {
		if !strings.Contains(req.Prompt, name) {
			t.Errorf("Prompt missing file marker %q", name)
		}
	}
}

func TestArchiveCollectionEmpty(t *testing.T) {
	inv := NewArchiveInvestigator(&fakeLLM{respond: textResponse("{}")})
	if _, err := inv.Collection(context.Background(), nil, model.ModeStandard); err == nil {
		t.Error("Expected error for empty collection")
	}
}

