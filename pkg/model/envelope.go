package model

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps an AnalysisResult for storage and transport, carrying the
// discriminant tag explicitly so the concrete type can be recovered on read.
type Envelope struct {
	Result AnalysisResult
}

type envelopeJSON struct {
	Type AnalysisType    `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Result == nil {
		return nil, fmt.Errorf("envelope has no result")
	}
	data, err := json.Marshal(e.Result)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{Type: e.Result.Kind(), Data: data})
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var result AnalysisResult
	switch raw.Type {
	case TypePublication:
		result = &PublicationAnalysis{}
	case TypeNarrative:
		result = &NarrativeAnalysis{}
	case TypeAudio:
		result = &AudioAnalysis{}
	case TypeVideo:
		result = &VideoAnalysis{}
	case TypeImage:
		result = &ImageAnalysis{}
	case TypeArchive:
		result = &ArchiveAnalysis{}
	default:
		return fmt.Errorf("unknown analysis type: %q", raw.Type)
	}

	if err := json.Unmarshal(raw.Data, result); err != nil {
		return fmt.Errorf("decode %s result: %w", raw.Type, err)
	}
	e.Result = result
	return nil
}
