package api

import (
	"github.com/gin-gonic/gin"
)

type createLectureRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListLectures returns all lecture names
func (h *Handlers) ListLectures(c *gin.Context) {
	RespondList(c, h.Store.ListLectures())
}

// CreateLecture creates a new lecture
func (h *Handlers) CreateLecture(c *gin.Context) {
	var req createLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	info, err := h.Store.CreateLecture(req.Name)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondCreated(c, info)
}

// GetLecture returns a lecture's info record
func (h *Handlers) GetLecture(c *gin.Context) {
	info, err := h.Store.GetLecture(c.Param("lecture"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondData(c, info)
}
