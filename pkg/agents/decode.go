package agents

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DecodeError means no parseable JSON could be recovered from a model
// response. The raw text is kept for diagnostics.
type DecodeError struct {
	RawText string
}

func (e *DecodeError) Error() string {
	return "the AI returned a response that was not valid JSON"
}

var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON recovers a JSON payload from a raw model response. The model
// is not guaranteed to honor formatting instructions, so this is tolerant:
// it first tries a fenced ```json block, then the whole text.
func ExtractJSON(raw string) (json.RawMessage, error) {
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		var v json.RawMessage
		if err := json.Unmarshal([]byte(m[1]), &v); err == nil {
			return v, nil
		}
		// Malformed fence contents fall through to whole-text parsing.
	}
	trimmed := strings.TrimSpace(raw)
	var v json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v, nil
	}
	return nil, &DecodeError{RawText: raw}
}

// decodeJSON runs ExtractJSON and unmarshals the payload into v. Shape
// validation against the stage's contract happens in the caller; this only
// guarantees structural JSON.
func decodeJSON(raw string, v any) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}
