package server

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/duynguyendang/deconstructor/pkg/agents"
	"github.com/duynguyendang/deconstructor/pkg/chat"
	"github.com/duynguyendang/deconstructor/pkg/history"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"github.com/duynguyendang/deconstructor/pkg/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

func logProgress(label string) pipeline.Progress {
	return func(msg string) {
		log.Printf("[%s] %s", label, msg)
	}
}

type analyzeTextRequest struct {
	Text  string `json:"text" binding:"required"`
	Kind  string `json:"kind" binding:"required"`
	Mode  string `json:"mode"`
	Title string `json:"title"`
}

func (s *Server) handleAnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := pipeline.ParseTextKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.orch.AnalyzeText(c.Request.Context(), req.Text, kind, mode, logProgress("text"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	title := req.Title
	if title == "" {
		title = "Pasted text"
	}
	rec, err := s.store.Save(result, title, title, nil)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type analyzeURLRequest struct {
	URL  string `json:"url" binding:"required"`
	Mode string `json:"mode"`
}

func (s *Server) handleAnalyzeURL(c *gin.Context) {
	var req analyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cacheKey := req.URL + "|" + string(mode)
	outcome, cached := s.urlCache.Get(cacheKey)
	if !cached {
		outcome, err = s.orch.AnalyzeURL(c.Request.Context(), req.URL, mode, logProgress("url"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		s.urlCache.Add(cacheKey, outcome)
	}

	if outcome.Result == nil {
		// Generic article: the caller must pick a text kind and resubmit
		// through the text endpoint.
		c.JSON(http.StatusOK, gin.H{"extractedText": outcome.ExtractedText, "cached": cached})
		return
	}

	route := pipeline.ClassifyURL(req.URL)
	if kind, ok := sourceKindForRoute(route); ok {
		model.AttachProvenance(outcome.Result, model.Provenance{Kind: kind, Ref: req.URL})
	}

	rec, err := s.store.Save(outcome.Result, "", sourceLabel(route, req.URL), nil)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func sourceKindForRoute(route pipeline.URLRoute) (model.SourceKind, bool) {
	switch route {
	case pipeline.URLYouTube:
		return model.SourceYouTube, true
	case pipeline.URLTEDTalk:
		return model.SourceTEDTalk, true
	case pipeline.URLArchiveOrg:
		return model.SourceArchiveOrg, true
	}
	return "", false
}

func sourceLabel(route pipeline.URLRoute, url string) string {
	switch route {
	case pipeline.URLYouTube:
		return "YouTube: " + url
	case pipeline.URLTEDTalk:
		return "TED Talk: " + url
	case pipeline.URLArchiveOrg:
		return "Archive.org: " + url
	}
	return url
}

func readUpload(fh *multipart.FileHeader) (agents.File, error) {
	f, err := fh.Open()
	if err != nil {
		return agents.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return agents.File{}, err
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return agents.File{Name: fh.Filename, MIMEType: mimeType, Data: data}, nil
}

func (s *Server) handleAnalyzeFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	mode, err := model.ParseMode(c.PostForm("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := readUpload(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var result model.AnalysisResult
	if pipeline.ClassifyFile(file.MIMEType) == pipeline.FilePlainText {
		// Plain text needs a caller-chosen kind; it never enters the byte
		// pipeline.
		kind, err := pipeline.ParseTextKind(c.PostForm("kind"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "plain text uploads require a 'kind' of publication or narrative"})
			return
		}
		result, err = s.orch.AnalyzeText(c.Request.Context(), string(file.Data), kind, mode, logProgress("file"))
		if err != nil {
			s.writeError(c, err)
			return
		}
	} else {
		result, err = s.orch.AnalyzeFile(c.Request.Context(), file, mode, logProgress("file"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		model.AttachProvenance(result, model.Provenance{Kind: model.SourceLocalFile, Ref: file.Name})
	}

	rec, err := s.store.Save(result, file.Name, file.Name, nil)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleAnalyzeCollection(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return
	}
	mode, err := model.ParseMode(c.PostForm("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files := make([]agents.File, 0, len(uploads))
	names := make([]string, 0, len(uploads))
	for _, fh := range uploads {
		file, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		files = append(files, file)
		names = append(names, file.Name)
	}

	result, err := s.orch.AnalyzeCollection(c.Request.Context(), files, mode, logProgress("collection"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fmt.Sprintf("Collection of %d files", len(files))
	}
	rec, err := s.store.Save(result, title, title, names)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// --- History ---

func (s *Server) handleHistoryList(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) handleHistoryGet(c *gin.Context) {
	rec, err := s.store.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleHistoryUpdate(c *gin.Context) {
	var req struct {
		Title *string `json:"title"`
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := s.store.Update(c.Param("id"), history.Update{Title: req.Title, Notes: req.Notes})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleHistoryDelete(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Chat ---

func (s *Server) handleChatStart(c *gin.Context) {
	var req struct {
		RecordID string `json:"record_id" binding:"required"`
		Context  string `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.store.Get(req.RecordID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	kind := chat.ContextKind(req.Context)
	if kind == "" {
		kind = chat.ContextAnalysis
	}
	content, err := chatContext(rec, kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := chat.NewSession(c.Request.Context(), s.client, content, kind)
	if err != nil {
		s.writeError(c, err)
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"session_id": id})
}

func chatContext(rec *history.Record, kind chat.ContextKind) (string, error) {
	if kind == chat.ContextDocument {
		switch r := rec.Result.Result.(type) {
		case *model.PublicationAnalysis:
			return r.OriginalText, nil
		case *model.NarrativeAnalysis:
			return r.OriginalText, nil
		}
		return "", fmt.Errorf("record %s has no original document text; use the analysis context", rec.ID)
	}
	data, err := rec.Result.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) handleChatMessage(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	session, ok := s.sessions[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat session not found"})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Content-Type-Options", "nosniff")
	err := session.SendStream(c.Request.Context(), req.Message, func(chunk string) error {
		if _, err := c.Writer.WriteString(chunk); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		// Headers are already out; all we can do is log and cut the stream.
		log.Printf("chat stream error: %v", err)
	}
}
