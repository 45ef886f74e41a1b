// Package prewarm watches lecture document directories and extracts newly
// added or rewritten documents into the content cache in the background, so
// the first interactive analysis of a document hits warm cache. Everything
// here is best-effort; extraction failures are logged and dropped.
package prewarm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/lantern-study/lantern/extract"
	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/utils"
)

// Worker pre-extracts documents under the lectures root
type Worker struct {
	root       string // lectures directory
	dispatcher *extract.Dispatcher
	watcher    *fsnotify.Watcher
	debouncer  *debouncer
	stopChan   chan struct{}
}

// NewWorker returns a worker watching docs directories under lecturesDir
func NewWorker(lecturesDir string, dispatcher *extract.Dispatcher) *Worker {
	w := &Worker{
		root:       lecturesDir,
		dispatcher: dispatcher,
		stopChan:   make(chan struct{}),
	}
	w.debouncer = newDebouncer(DefaultDebounceDelay, w.processDebounced)
	return w
}

// Start begins watching. Returns an error only when the watcher itself
// cannot be created; individual directory failures are logged and skipped.
func (w *Worker) Start() error {
	var err error
	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.watchDocsDirs()

	go w.eventLoop()

	log.Info().Str("root", w.root).Msg("document prewarm worker started")
	return nil
}

// Stop stops the worker
func (w *Worker) Stop() {
	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	close(w.stopChan)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

// watchDocsDirs registers every docs and session_docs directory under the
// lectures root, plus the root itself so new lectures are picked up.
func (w *Worker) watchDocsDirs() {
	if err := w.watcher.Add(w.root); err != nil {
		log.Warn().Err(err).Str("path", w.root).Msg("failed to watch lectures root")
	}

	filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if !w.isDocsDir(path) && path != w.root {
			// Still watch lecture roots so later-created docs dirs are seen
			rel, _ := filepath.Rel(w.root, path)
			if strings.Count(rel, string(filepath.Separator)) > 1 {
				return filepath.SkipDir
			}
		}
		if err := w.watcher.Add(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to watch directory")
		}
		return nil
	})
}

// isDocsDir reports whether path is a shared docs dir or a session docs dir
func (w *Worker) isDocsDir(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) >= 2 && parts[1] == "docs" {
		return true
	}
	return len(parts) >= 2 && parts[1] == "session_docs"
}

func (w *Worker) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("prewarm watcher error")
		}
	}
}

func (w *Worker) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New lecture or docs directory: start watching it
			if err := w.watcher.Add(event.Name); err != nil {
				log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
			}
			return
		}
		w.queueFile(event.Name, EventCreate)
	case event.Op.Has(fsnotify.Write):
		w.queueFile(event.Name, EventWrite)
	}
}

// queueFile debounces a document event; non-document files are ignored
func (w *Worker) queueFile(path string, eventType EventType) {
	if !w.isDocsDir(filepath.Dir(path)) {
		return
	}
	if utils.FileTypeTag(path) == "" {
		return
	}
	w.debouncer.Queue(path, eventType)
}

// processDebounced extracts a settled document into the cache
func (w *Worker) processDebounced(path string, eventType EventType) {
	if eventType == EventDelete {
		return
	}

	if _, err := w.dispatcher.Extract(path); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("prewarm extraction skipped")
		return
	}
	log.Info().Str("path", path).Msg("document pre-extracted into cache")
}
