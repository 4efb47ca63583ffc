package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/history"
	"github.com/duynguyendang/deconstructor/pkg/pipeline"
	"github.com/stretchr/testify/assert"
)

// scriptedLLM answers each stage with a canned response keyed by a marker
// phrase from the stage prompt.
type scriptedLLM struct {
	script map[string]string
}

func (s *scriptedLLM) Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error) {
	for marker, text := range s.script {
		if strings.Contains(req.Prompt, marker) {
			return &gemini.Response{Text: text}, nil
		}
	}
	return nil, fmt.Errorf("unscripted prompt: %.80s", req.Prompt)
}

func setupServer(t *testing.T, script map[string]string) *Server {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatal(err)
	}
	orch := pipeline.New(&scriptedLLM{script: script}, pipeline.Options{})
	return NewServer(orch, store, nil, 4)
}

const publicationJSON = `{"summary": {"thesis": "t", "methodology": "m", "results": "r"}, "argumentMap": {"mainThesis": "t", "primaryArguments": [{"point": "p", "supportingEvidence": []}]}, "glossary": []}`

func TestHealthCheck(t *testing.T) {
	srv := setupServer(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeText(t *testing.T) {
	srv := setupServer(t, map[string]string{"scientific publications": publicationJSON})

	w := httptest.NewRecorder()
	body := `{"text": "the paper", "kind": "publication", "title": "My Paper"}`
	req, _ := http.NewRequest("POST", "/v1/analyze/text", strings.NewReader(body))
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var rec history.Record
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "My Paper", rec.Title)

	// The analysis is auto-saved.
	assert.Len(t, srv.store.List(), 1)
}

func TestAnalyzeTextBadRequest(t *testing.T) {
	srv := setupServer(t, nil)

	// Missing kind, unknown kind, unknown mode.
	cases := []string{
		`{"text": "x"}`,
		`{"text": "x", "kind": "poetry"}`,
		`{"text": "x", "kind": "publication", "mode": "turbo"}`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/v1/analyze/text", strings.NewReader(body))
		srv.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestAnalyzeURLGenericReturnsText(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>article body</p></body></html>"))
	}))
	defer page.Close()

	srv := setupServer(t, map[string]string{"web content extractor": "article body"})

	do := func() map[string]any {
		w := httptest.NewRecorder()
		body := fmt.Sprintf(`{"url": %q}`, page.URL)
		req, _ := http.NewRequest("POST", "/v1/analyze/url", strings.NewReader(body))
		srv.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var out map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}

	first := do()
	assert.Equal(t, "article body", first["extractedText"])
	assert.Equal(t, false, first["cached"])

	// Repeat submissions come out of the LRU cache.
	second := do()
	assert.Equal(t, true, second["cached"])
}

func TestAnalyzeURLYouTubeSavesWithProvenance(t *testing.T) {
	srv := setupServer(t, map[string]string{"YouTube Deconstructor": `{"transcript": []}`})

	w := httptest.NewRecorder()
	body := `{"url": "https://www.youtube.com/watch?v=abc123xyz"}`
	req, _ := http.NewRequest("POST", "/v1/analyze/url", strings.NewReader(body))
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"youtube"`)
	assert.Contains(t, w.Body.String(), "YouTube: https://www.youtube.com/watch?v=abc123xyz")
}

func TestAnalyzeURLNoTranscript(t *testing.T) {
	srv := setupServer(t, map[string]string{
		"TED Talk Deconstructor": `{"error": "A transcript could not be found for the provided TED Talk URL."}`,
	})

	w := httptest.NewRecorder()
	body := `{"url": "https://www.ted.com/talks/missing_talk"}`
	req, _ := http.NewRequest("POST", "/v1/analyze/url", strings.NewReader(body))
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "upload the file directly")
}

func TestAnalyzeFileUpload(t *testing.T) {
	srv := setupServer(t, map[string]string{"scientific publications": publicationJSON})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="paper.txt"`)
	hdr.Set("Content-Type", "text/plain")
	fw, _ := mw.CreatePart(hdr)
	fw.Write([]byte("the uploaded paper"))
	mw.WriteField("kind", "publication")
	mw.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/analyze/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"publication"`)
}

func TestHistoryEndpoints(t *testing.T) {
	srv := setupServer(t, map[string]string{"scientific publications": publicationJSON})

	// Seed a record through the text endpoint.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/analyze/text", strings.NewReader(`{"text": "x", "kind": "publication"}`))
	srv.router.ServeHTTP(w, req)
	var rec history.Record
	json.Unmarshal(w.Body.Bytes(), &rec)

	// List
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/v1/history", nil)
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), rec.ID)

	// Patch
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/v1/history/"+rec.ID, strings.NewReader(`{"title": "Renamed"}`))
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Renamed")

	// Get unknown
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/v1/history/does-not-exist", nil)
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Delete
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/v1/history/"+rec.ID, nil)
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, srv.store.List())
}

func TestChatMessageUnknownSession(t *testing.T) {
	srv := setupServer(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/chat/sessions/nope/messages", strings.NewReader(`{"message": "hi"}`))
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
