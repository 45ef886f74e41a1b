package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/lantern-study/lantern/cache"
	"github.com/lantern-study/lantern/log"
)

// Dispatcher routes a file to the extractor that handles its type, with the
// content cache consulted first so unchanged files are never re-extracted.
type Dispatcher struct {
	registry *Registry
	cache    *cache.Cache

	// ocr is the optical-recognition capability used for embedded-image
	// enrichment; nil disables enrichment
	ocr Extractor
}

// NewDispatcher creates a dispatcher over the given cache with the built-in
// text extractors already registered. Rich-format capabilities are added
// with Register.
func NewDispatcher(c *cache.Cache) *Dispatcher {
	d := &Dispatcher{
		registry: &Registry{},
		cache:    c,
	}
	d.Register(&PlainTextExtractor{})
	d.Register(&MarkdownExtractor{})
	return d
}

// Register adds an extraction capability. An extractor named "image-ocr"
// additionally becomes the enrichment capability for extractors that report
// embedded images.
func (d *Dispatcher) Register(e Extractor) {
	d.registry.Register(e)
	if e.Name() == "image-ocr" {
		d.ocr = e
	}
}

// Extractors returns the registered extractors in dispatch order
func (d *Dispatcher) Extractors() []Extractor {
	return d.registry.All()
}

// Extract returns the plain-text content of the file at path. Cache hits
// return immediately with no extractor invocation; on a miss the result is
// written back to the cache best-effort before being returned.
func (d *Dispatcher) Extract(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	fp, err := d.cache.FingerprintFile(path)
	if err == nil {
		if text, ok := d.cache.Get(fp); ok {
			log.Debug().Str("path", path).Msg("extraction cache hit")
			return text, nil
		}
	}

	extractor := d.pick(path)
	if extractor == nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, path)
	}

	text, err := extractor.Extract(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}

	text += d.enrich(extractor, path)

	if fp != "" {
		d.cache.Put(fp, text)
	}
	return text, nil
}

// pick returns the first registered extractor that handles path, or nil
func (d *Dispatcher) pick(path string) Extractor {
	for _, e := range d.registry.All() {
		if e.CanExtract(path) {
			return e
		}
	}
	return nil
}

// enrich runs OCR over any images the extractor discovered inside the
// document. Every failure is skipped per image; enrichment never aborts an
// extraction.
func (d *Dispatcher) enrich(e Extractor, path string) string {
	if d.ocr == nil {
		return ""
	}
	lister, ok := e.(ImageLister)
	if !ok {
		return ""
	}

	images, err := lister.EmbeddedImages(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("embedded image discovery failed")
		return ""
	}

	var b strings.Builder
	for _, img := range images {
		text, err := d.ocr.Extract(img.Path)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n--- OCR from %s Image ---\n%s\n", img.Provenance, text)
	}
	return b.String()
}
