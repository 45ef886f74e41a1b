package extract

import (
	"errors"
	"sync"
)

var (
	// ErrFileNotFound is returned when the source file does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedType is returned when no registered extractor handles
	// the file's type
	ErrUnsupportedType = errors.New("unsupported document type")
)

// Extractor is a text-extraction capability for one family of file types.
// Implementations for rich formats (PDF, slide decks, word-processor files,
// image OCR) are external collaborators registered by the caller; only the
// plain-text and markdown extractors ship with the core.
type Extractor interface {
	// Name returns the unique extractor name
	Name() string

	// CanExtract reports whether this extractor handles the given path
	CanExtract(path string) bool

	// Extract reads the file and returns its plain-text content
	Extract(path string) (string, error)
}

// EmbeddedImage is an image discovered inside a document, reported by
// extractors that support OCR enrichment.
type EmbeddedImage struct {
	// Path of a readable image file (usually a temp file owned by the
	// extractor)
	Path string

	// Provenance describes where the image came from, e.g. "Page 3" or
	// "Slide 7"
	Provenance string
}

// ImageLister is optionally implemented by extractors whose documents embed
// images. The dispatcher runs the OCR capability over each reported image
// and appends the recognized text to the extraction result.
type ImageLister interface {
	EmbeddedImages(path string) ([]EmbeddedImage, error)
}

// Registry holds the ordered set of registered extractors
type Registry struct {
	extractors []Extractor
	mu         sync.RWMutex
}

// Register appends an extractor. Dispatch tries extractors in registration
// order, so more specific capabilities should be registered first.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, e)
}

// All returns the registered extractors in order
func (r *Registry) All() []Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Extractor, len(r.extractors))
	copy(result, r.extractors)
	return result
}

// Get returns an extractor by name, or nil
func (r *Registry) Get(name string) Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.extractors {
		if e.Name() == name {
			return e
		}
	}
	return nil
}
