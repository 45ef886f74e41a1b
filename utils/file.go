package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeName removes or replaces characters that are unsafe in record and
// directory names derived from user input.
func SanitizeName(name string) string {
	// Remove path separators
	name = filepath.Base(name)

	replacer := strings.NewReplacer(
		"<", "_",
		">", "_",
		":", "_",
		"\"", "_",
		"|", "_",
		"?", "_",
		"*", "_",
		"/", "_",
		"\\", "_",
	)
	return strings.TrimSpace(replacer.Replace(name))
}

// FileTypeTag classifies a file by extension into the extraction capability
// tags the dispatcher routes on.
func FileTypeTag(path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		return "document"
	case ".ppt", ".pptx":
		return "slide-deck"
	case ".docx":
		return "word-processor"
	case ".txt":
		return "plain-text"
	case ".md":
		return "structured-text"
	case ".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".gif":
		return "image"
	}
	return ""
}
