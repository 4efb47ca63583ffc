package agents

import "fmt"

// StageError marks a stage whose underlying inference call failed or
// returned a structurally invalid payload. It aborts the current run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// NoTranscriptError means a platform resolver reached the page but found no
// transcript to work from. Distinct from a network or parse failure because
// the remedy is different: the user can download the media and upload it
// directly.
type NoTranscriptError struct {
	URL     string
	Message string
}

func (e *NoTranscriptError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("a transcript could not be found for %s; download the file and upload it directly for analysis", e.URL)
}

// NetworkFetchError is raised only by the generic article-fetch path. Sites
// commonly fail here because of access restrictions rather than transient
// network trouble, so the message carries that hint.
type NetworkFetchError struct {
	URL string
	Err error
}

func (e *NetworkFetchError) Error() string {
	return fmt.Sprintf("could not fetch %s: %v (the site may restrict automated access; this works best with openly accessible pages)", e.URL, e.Err)
}

func (e *NetworkFetchError) Unwrap() error { return e.Err }
