// Package server exposes the analysis pipeline and history store over a
// REST API.
package server

import (
	"sync"

	"github.com/duynguyendang/deconstructor/pkg/chat"
	"github.com/duynguyendang/deconstructor/pkg/gemini"
	"github.com/duynguyendang/deconstructor/pkg/history"
	"github.com/duynguyendang/deconstructor/pkg/pipeline"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Server holds the state for the REST API server.
type Server struct {
	orch   *pipeline.Orchestrator
	store  *history.Store
	client *gemini.Client
	router *gin.Engine

	// urlCache keeps recent URL analyses so a repeated submission does not
	// re-run the whole pipeline.
	urlCache *lru.Cache[string, *pipeline.URLOutcome]

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

// NewServer creates a new Server instance.
func NewServer(orch *pipeline.Orchestrator, store *history.Store, client *gemini.Client, urlCacheSize int) *Server {
	if urlCacheSize <= 0 {
		urlCacheSize = 32
	}
	cache, _ := lru.New[string, *pipeline.URLOutcome](urlCacheSize)

	s := &Server{
		orch:     orch,
		store:    store,
		client:   client,
		router:   gin.Default(),
		urlCache: cache,
		sessions: make(map[string]*chat.Session),
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	s.router.POST("/v1/analyze/text", s.handleAnalyzeText)
	s.router.POST("/v1/analyze/url", s.handleAnalyzeURL)
	s.router.POST("/v1/analyze/file", s.handleAnalyzeFile)
	s.router.POST("/v1/analyze/collection", s.handleAnalyzeCollection)

	s.router.GET("/v1/history", s.handleHistoryList)
	s.router.GET("/v1/history/:id", s.handleHistoryGet)
	s.router.PATCH("/v1/history/:id", s.handleHistoryUpdate)
	s.router.DELETE("/v1/history/:id", s.handleHistoryDelete)

	s.router.POST("/v1/chat/sessions", s.handleChatStart)
	s.router.POST("/v1/chat/sessions/:id/messages", s.handleChatMessage)
}
