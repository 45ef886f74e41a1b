package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lantern-study/lantern/merge"
)

type mergeRequest struct {
	Destination  string `json:"destination"`
	ConfirmLarge bool   `json:"confirm_large"`
	Overwrite    bool   `json:"overwrite"`
}

// MergeSessions merges every session of the lecture into one destination.
// Large merges and overwrites of an existing destination must be confirmed
// up front with the confirm_large and overwrite flags.
func (h *Handlers) MergeSessions(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	report, err := h.Merger.MergeAll(c.Param("lecture"), merge.Options{
		DestinationName: req.Destination,
		Confirm: func(prompt string) bool {
			if strings.Contains(prompt, "already exists") {
				return req.Overwrite
			}
			return req.ConfirmLarge
		},
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if report.Cancelled {
		RespondConflict(c, report.CancelReason)
		return
	}
	RespondData(c, report)
}
