package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lantern-study/lantern/store"
)

type statusResponse struct {
	Lectures []store.LectureStatus `json:"lectures"`
	Cache    cacheStats            `json:"cache"`
}

type cacheStats struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// GetStatus reports per-lecture session and document counts plus cache usage
func (h *Handlers) GetStatus(c *gin.Context) {
	files, bytes := h.Cache.Stats()
	RespondData(c, statusResponse{
		Lectures: h.Store.Status(),
		Cache:    cacheStats{Files: files, Bytes: bytes},
	})
}

// GetCacheStats reports extraction cache usage
func (h *Handlers) GetCacheStats(c *gin.Context) {
	files, bytes := h.Cache.Stats()
	RespondData(c, cacheStats{Files: files, Bytes: bytes})
}

// ClearCache drops every cached extraction
func (h *Handlers) ClearCache(c *gin.Context) {
	if err := h.Cache.Clear(); err != nil {
		RespondInternalError(c, "failed to clear cache: "+err.Error())
		return
	}
	RespondNoContent(c)
}
