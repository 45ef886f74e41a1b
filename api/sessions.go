package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Name string `json:"name"`
}

type setModelRequest struct {
	Model string `json:"model" binding:"required"`
}

type setParameterRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// ListSessions returns the lecture's session names
func (h *Handlers) ListSessions(c *gin.Context) {
	lecture := c.Param("lecture")
	if !h.Store.LectureExists(lecture) {
		RespondNotFound(c, "lecture not found: "+lecture)
		return
	}
	RespondList(c, h.Store.ListSessions(lecture))
}

// CreateSession creates a session; an empty name gets a timestamp-derived one
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rec, err := h.Store.CreateSession(c.Param("lecture"), req.Name)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondCreated(c, rec)
}

// GetSession returns the full session record
func (h *Handlers) GetSession(c *gin.Context) {
	rec, err := h.Store.GetSession(c.Param("lecture"), c.Param("session"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, rec)
}

// DeleteSession removes a session
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.Store.DeleteSession(c.Param("lecture"), c.Param("session")); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondNoContent(c)
}

// GetMessages returns the session's messages, optionally paginated with
// offset and limit query parameters.
func (h *Handlers) GetMessages(c *gin.Context) {
	lecture := c.Param("lecture")
	session := c.Param("session")
	if !h.Store.SessionExists(lecture, session) {
		RespondNotFound(c, "session not found: "+session)
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "-1"))

	RespondList(c, h.Store.ReadMessages(lecture, session, offset, limit))
}

// ClearHistory resets the session's messages and summaries
func (h *Handlers) ClearHistory(c *gin.Context) {
	lecture := c.Param("lecture")
	session := c.Param("session")
	if !h.Store.SessionExists(lecture, session) {
		RespondNotFound(c, "session not found: "+session)
		return
	}

	if err := h.Store.ClearHistory(lecture, session); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondNoContent(c)
}

// GetSummaries returns the session's recorded summaries
func (h *Handlers) GetSummaries(c *gin.Context) {
	rec, err := h.Store.GetSession(c.Param("lecture"), c.Param("session"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondList(c, rec.Summaries)
}

// SummarizeSession digests the full history on demand
func (h *Handlers) SummarizeSession(c *gin.Context) {
	digest, err := h.Engine.SummarizeHistory(c.Param("lecture"), c.Param("session"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, gin.H{"summary": digest})
}

// SetModel updates the session's active model
func (h *Handlers) SetModel(c *gin.Context) {
	var req setModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	lecture := c.Param("lecture")
	session := c.Param("session")
	if !h.Store.SessionExists(lecture, session) {
		RespondNotFound(c, "session not found: "+session)
		return
	}

	if err := h.Store.SetModel(lecture, session, req.Model); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondNoContent(c)
}

// SetParameter validates and updates one sampling parameter
func (h *Handlers) SetParameter(c *gin.Context) {
	var req setParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	lecture := c.Param("lecture")
	session := c.Param("session")
	if !h.Store.SessionExists(lecture, session) {
		RespondNotFound(c, "session not found: "+session)
		return
	}

	if err := h.Store.SetParameter(lecture, session, req.Name, req.Value); err != nil {
		respondStoreError(c, err)
		return
	}
	RespondNoContent(c)
}
