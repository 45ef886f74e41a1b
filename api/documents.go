package api

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/lantern-study/lantern/log"
)

// UploadLectureDocument accepts a multipart file and attaches it to the lecture
func (h *Handlers) UploadLectureDocument(c *gin.Context) {
	lecture := c.Param("lecture")
	if !h.Store.LectureExists(lecture) {
		RespondNotFound(c, "lecture not found: "+lecture)
		return
	}

	src, err := h.receiveUpload(c)
	if err != nil {
		return
	}
	defer os.RemoveAll(filepath.Dir(src))

	stored, err := h.Store.AddLectureDocument(lecture, src)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondCreated(c, gin.H{"document": stored})
}

// UploadSessionDocument accepts a multipart file and attaches it to the session
func (h *Handlers) UploadSessionDocument(c *gin.Context) {
	lecture := c.Param("lecture")
	session := c.Param("session")
	if !h.Store.SessionExists(lecture, session) {
		RespondNotFound(c, "session not found: "+session)
		return
	}

	src, err := h.receiveUpload(c)
	if err != nil {
		return
	}
	defer os.RemoveAll(filepath.Dir(src))

	stored, err := h.Store.AddSessionDocument(lecture, session, src)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	RespondCreated(c, gin.H{"document": stored})
}

// receiveUpload saves the "file" form field into a fresh temp directory and
// returns its path. On failure the response has already been written.
func (h *Handlers) receiveUpload(c *gin.Context) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		RespondBadRequest(c, "missing file field: "+err.Error())
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "lantern-upload-*")
	if err != nil {
		log.Error().Err(err).Msg("failed to create upload temp dir")
		RespondInternalError(c, "failed to receive upload")
		return "", err
	}

	dst := filepath.Join(tmpDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		os.RemoveAll(tmpDir)
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save upload")
		RespondInternalError(c, "failed to receive upload")
		return "", err
	}
	return dst, nil
}
