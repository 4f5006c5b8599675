package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lemur-ai/meeting-brain/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	meetingHandler   *Meeting
	knowledgeHandler *Knowledge
	contentHandler   *Content
	clientHandler    *Client
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting, knowledgeHandler *Knowledge, contentHandler *Content, clientHandler *Client) *Router {
	return &Router{
		cfg:              cfg,
		meetingHandler:   meetingHandler,
		knowledgeHandler: knowledgeHandler,
		contentHandler:   contentHandler,
		clientHandler:    clientHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")

	rt.setupMeetingRoutes(v1)
	rt.setupKnowledgeRoutes(v1)
	rt.setupContentRoutes(v1)
	rt.setupClientRoutes(v1)
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.POST("/record", rt.meetingHandler.StartRecording)
	meetings.GET("/active", rt.meetingHandler.ListActive)
	meetings.GET("/:id/status", rt.meetingHandler.GetStatus)
	meetings.GET("/:id/results", rt.meetingHandler.GetResults)
	meetings.POST("/:id/process", rt.meetingHandler.Reprocess)
	meetings.DELETE("/:id/bot", rt.meetingHandler.CancelRecording)
}

func (rt *Router) setupKnowledgeRoutes(g *echo.Group) {
	kb := g.Group("/knowledge")

	kb.POST("/ingest", rt.knowledgeHandler.Ingest)
	kb.POST("/search", rt.knowledgeHandler.Search)
	kb.GET("/stats", rt.knowledgeHandler.Stats)
	kb.DELETE("/files/:id", rt.knowledgeHandler.DeleteFile)
}

func (rt *Router) setupContentRoutes(g *echo.Group) {
	ai := g.Group("/ai")

	ai.POST("/generate", rt.contentHandler.Generate)
}

func (rt *Router) setupClientRoutes(g *echo.Group) {
	clients := g.Group("/clients")

	clients.POST("", rt.clientHandler.Create)
	clients.GET("/:id", rt.clientHandler.Get)
	clients.POST("/:id/subclients", rt.clientHandler.CreateSubClient)
	clients.GET("/:id/subclients", rt.clientHandler.ListSubClients)
}

// healthCheck returns service health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"environment": rt.cfg.Server.Environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
