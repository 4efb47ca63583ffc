package agents

import (
	"errors"
	"testing"
)

func TestExtractJSONFenced(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"a\": 1}\n```\nLet me know if you need more."
	payload, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("Expected fenced JSON to parse, got %v", err)
	}
	if string(payload) != `{"a": 1}` {
		t.Errorf("Unexpected payload: %s", payload)
	}
}

func TestExtractJSONBare(t *testing.T) {
	payload, err := ExtractJSON("  {\"b\": [1, 2]}  ")
	if err != nil {
		t.Fatalf("Expected bare JSON to parse, got %v", err)
	}
	if string(payload) != `{"b": [1, 2]}` {
		t.Errorf("Unexpected payload: %s", payload)
	}
}

func TestExtractJSONMalformedFenceFallsBack(t *testing.T) {
	// A broken fence should not mask a parseable whole-text payload.
	raw := "```json\n{not json}\n```"
	_, err := ExtractJSON(raw)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
	if decodeErr.RawText != raw {
		t.Errorf("DecodeError should keep the raw text, got %q", decodeErr.RawText)
	}
}

func TestExtractJSONGarbage(t *testing.T) {
	_, err := ExtractJSON("I'm sorry, I can't help with that.")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
}

func TestDecodeJSONShapeMismatch(t *testing.T) {
	var out struct {
		Count int `json:"count"`
	}
	if err := decodeJSON(`{"count": "three"}`, &out); err == nil {
		t.Error("Expected error for mismatched shape")
	}
}
