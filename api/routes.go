package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lantern-study/lantern/cache"
	"github.com/lantern-study/lantern/chat"
	"github.com/lantern-study/lantern/extract"
	"github.com/lantern-study/lantern/merge"
	"github.com/lantern-study/lantern/store"
)

// Handlers bundles the core subsystems the API surfaces. The API layer holds
// no state of its own; lecture and session identity always travel in the
// request path.
type Handlers struct {
	Store      *store.Store
	Cache      *cache.Cache
	Dispatcher *extract.Dispatcher
	Engine     *chat.Engine
	Merger     *merge.Engine
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")

	// Lectures
	api.GET("/lectures", h.ListLectures)
	api.POST("/lectures", h.CreateLecture)
	api.GET("/lectures/:lecture", h.GetLecture)
	api.POST("/lectures/:lecture/documents", h.UploadLectureDocument)

	// Sessions
	api.GET("/lectures/:lecture/sessions", h.ListSessions)
	api.POST("/lectures/:lecture/sessions", h.CreateSession)
	api.GET("/lectures/:lecture/sessions/:session", h.GetSession)
	api.DELETE("/lectures/:lecture/sessions/:session", h.DeleteSession)
	api.GET("/lectures/:lecture/sessions/:session/messages", h.GetMessages)
	api.DELETE("/lectures/:lecture/sessions/:session/messages", h.ClearHistory)
	api.GET("/lectures/:lecture/sessions/:session/summaries", h.GetSummaries)
	api.POST("/lectures/:lecture/sessions/:session/summarize", h.SummarizeSession)
	api.PUT("/lectures/:lecture/sessions/:session/model", h.SetModel)
	api.PUT("/lectures/:lecture/sessions/:session/params", h.SetParameter)
	api.POST("/lectures/:lecture/sessions/:session/documents", h.UploadSessionDocument)

	// Conversation
	api.POST("/lectures/:lecture/sessions/:session/chat", h.Chat)
	api.POST("/lectures/:lecture/sessions/:session/analyze", h.Analyze)
	api.POST("/lectures/:lecture/sessions/:session/questions", h.GenerateQuestions)

	// Merge
	api.POST("/lectures/:lecture/merge", h.MergeSessions)

	// Status and cache
	api.GET("/status", h.GetStatus)
	api.GET("/cache/stats", h.GetCacheStats)
	api.DELETE("/cache", h.ClearCache)
}

// RequestID attaches a request identifier to every response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// respondStoreError maps core sentinel errors onto HTTP error responses
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrLectureNotFound), errors.Is(err, store.ErrSessionNotFound):
		RespondNotFound(c, err.Error())
	case errors.Is(err, store.ErrLectureExists), errors.Is(err, store.ErrSessionExists):
		RespondConflict(c, err.Error())
	case errors.Is(err, store.ErrEmptyName),
		errors.Is(err, store.ErrUnknownParameter),
		errors.Is(err, store.ErrInvalidParameter):
		RespondValidationError(c, err.Error())
	default:
		RespondInternalError(c, err.Error())
	}
}
