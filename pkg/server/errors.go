package server

import (
	"errors"
	"net/http"

	"github.com/duynguyendang/deconstructor/pkg/agents"
	"github.com/duynguyendang/deconstructor/pkg/history"
	"github.com/duynguyendang/deconstructor/pkg/pipeline"
	"github.com/gin-gonic/gin"
)

// writeError maps the pipeline error taxonomy onto HTTP statuses. The
// distinction between "no transcript on the page" and a generic failure is
// deliberate: the former carries a remedy the client should show verbatim.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		noTranscript *agents.NoTranscriptError
		fetchErr     *agents.NetworkFetchError
		decodeErr    *agents.DecodeError
	)

	switch {
	case errors.Is(err, history.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, pipeline.ErrUnsupportedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &noTranscript):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noTranscript.Error(), "hint": "download the media and upload the file directly"})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": fetchErr.Error()})
	case errors.As(err, &decodeErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "The AI returned an unreadable response."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
