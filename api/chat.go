package api

import (
	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type analyzeRequest struct {
	Question string `json:"question"`
}

type questionsRequest struct {
	Scope   string `json:"scope"`
	Session string `json:"session"`
}

// Chat sends one user turn through the session and returns the reply
func (h *Handlers) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	reply, err := h.Engine.Chat(c.Param("lecture"), c.Param("session"), req.Message)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, gin.H{"reply": reply})
}

// Analyze answers a question against the lecture's attached documents
func (h *Handlers) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	reply, err := h.Engine.AnalyzeLecture(c.Param("lecture"), c.Param("session"), req.Question)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, gin.H{"reply": reply})
}

// GenerateQuestions produces study questions from one session or the merged
// history of all sessions, depending on scope.
func (h *Handlers) GenerateQuestions(c *gin.Context) {
	var req questionsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Scope == "" {
		req.Scope = "session"
	}
	if req.Session == "" {
		req.Session = c.Param("session")
	}

	reply, err := h.Engine.GenerateQuestions(c.Param("lecture"), c.Param("session"), req.Scope, req.Session)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, gin.H{"reply": reply})
}
