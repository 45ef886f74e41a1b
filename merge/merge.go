// Package merge batch-combines all sessions of a lecture into one new
// session. Progress is checkpointed into the destination record after every
// batch, so an interrupted run leaves a partially-but-consistently merged
// destination covering exactly the batches that completed.
package merge

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/store"
)

const (
	// BatchSize is the number of source sessions folded in per checkpoint
	BatchSize = 5

	// bytesPerMessage is the fixed per-message size estimate used for the
	// large-merge confirmation
	bytesPerMessage = 1024

	// largeMergeBytes is the estimated size above which a merge asks for
	// confirmation
	largeMergeBytes = 10 * 1024 * 1024
)

// ErrNoSessions is returned when the lecture has no sessions to merge
var ErrNoSessions = errors.New("no sessions to merge")

// Options controls one merge run
type Options struct {
	// DestinationName overrides the default "MergedSess-<lecture>" name
	DestinationName string

	// Confirm is asked before a large merge and before overwriting an
	// existing destination. Nil confirms everything.
	Confirm func(prompt string) bool
}

// Report is the terminal result of a merge run
type Report struct {
	MergeID         string  `json:"merge_id"`
	Destination     string  `json:"destination"`
	SessionCount    int     `json:"session_count"`
	TotalMessages   int     `json:"total_messages"`
	EstimatedSizeMB float64 `json:"estimated_size_mb"`
	Cancelled       bool    `json:"cancelled"`
	CancelReason    string  `json:"cancel_reason,omitempty"`
}

// Engine merges session stores batch by batch
type Engine struct {
	store *store.Store

	// afterBatch, when set, runs after each checkpoint append and aborts
	// the merge on error. Tests use it to interrupt a run between batches.
	afterBatch func(batch int) error
}

// NewEngine returns a merge engine over st
func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st}
}

// DestinationName returns the computed merged-session name for a lecture
func DestinationName(lecture string) string {
	return "MergedSess-" + lecture
}

// MergeAll merges every session of the lecture into one destination session.
// Sources are processed in fixed-size batches; after each batch the buffered
// messages, collected lecture references and running counts are appended to
// the destination record and the in-memory buffer is cleared.
func (e *Engine) MergeAll(lecture string, opts Options) (*Report, error) {
	if !e.store.LectureExists(lecture) {
		return nil, fmt.Errorf("%w: %s", store.ErrLectureNotFound, lecture)
	}

	destination := opts.DestinationName
	if destination == "" {
		destination = DestinationName(lecture)
	}

	// Collect sources. A previous merge result is never a source of a new one.
	var sources []string
	for _, name := range e.store.ListSessions(lecture) {
		if name != destination {
			sources = append(sources, name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: lecture %s", ErrNoSessions, lecture)
	}

	// Estimate size at a fixed per-message cost
	estimatedBytes := 0
	for _, name := range sources {
		estimatedBytes += len(e.store.ReadMessages(lecture, name, 0, -1)) * bytesPerMessage
	}
	estimatedMB := float64(estimatedBytes) / (1024 * 1024)

	confirm := opts.Confirm
	if confirm == nil {
		confirm = func(string) bool { return true }
	}

	if estimatedBytes > largeMergeBytes {
		prompt := fmt.Sprintf("This merge may create a large session (~%.1f MB). Continue?", estimatedMB)
		if !confirm(prompt) {
			return &Report{Destination: destination, Cancelled: true, CancelReason: "large merge declined"}, nil
		}
	}

	if e.store.SessionExists(lecture, destination) {
		prompt := fmt.Sprintf("Merged session '%s' already exists. Overwrite?", destination)
		if !confirm(prompt) {
			return &Report{Destination: destination, Cancelled: true, CancelReason: "overwrite declined"}, nil
		}
		if err := e.store.DeleteSession(lecture, destination); err != nil {
			return nil, fmt.Errorf("remove existing destination: %w", err)
		}
	}

	if _, err := e.store.CreateSession(lecture, destination); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	mergeID := uuid.NewString()
	info := &store.MergeInfo{
		MergeID:          mergeID,
		OriginalSessions: sources,
		MergedAt:         time.Now(),
		EstimatedSizeMB:  estimatedMB,
	}

	log.Info().
		Str("lecture", lecture).
		Str("destination", destination).
		Int("sessions", len(sources)).
		Str("mergeID", mergeID).
		Msg("merge starting")

	totalMessages := 0
	for start := 0; start < len(sources); start += BatchSize {
		end := start + BatchSize
		if end > len(sources) {
			end = len(sources)
		}

		// Buffered per batch to bound peak memory; flushed by the
		// checkpoint append below.
		var buffer []store.Message
		var refs []string

		for _, name := range sources[start:end] {
			msgs := e.store.ReadMessages(lecture, name, 0, -1)
			if len(msgs) == 0 {
				continue
			}

			buffer = append(buffer, marker(fmt.Sprintf("=== Session: %s ===", name)))
			buffer = append(buffer, msgs...)
			buffer = append(buffer, marker(fmt.Sprintf("=== End of Session: %s ===", name)))
			totalMessages += len(msgs)

			for _, m := range msgs {
				if (m.Role == store.RoleUser || m.Role == store.RoleAssistant) && m.LectureRef != "" {
					refs = append(refs, m.LectureRef)
				}
			}

			log.Debug().Str("session", name).Int("messages", len(msgs)).Msg("session folded in")
		}

		info.TotalMessages = totalMessages
		if err := e.store.AppendMessages(lecture, destination, buffer, refs, info); err != nil {
			return nil, fmt.Errorf("checkpoint batch at session %d: %w", start, err)
		}

		if e.afterBatch != nil {
			if err := e.afterBatch(start / BatchSize); err != nil {
				return nil, fmt.Errorf("merge interrupted after batch %d: %w", start/BatchSize, err)
			}
		}
	}

	if err := e.store.RefreshSessionList(lecture); err != nil {
		log.Warn().Err(err).Str("lecture", lecture).Msg("session list refresh failed")
	}

	log.Info().
		Str("destination", destination).
		Int("totalMessages", totalMessages).
		Msg("merge complete")

	return &Report{
		MergeID:         mergeID,
		Destination:     destination,
		SessionCount:    len(sources),
		TotalMessages:   totalMessages,
		EstimatedSizeMB: estimatedMB,
	}, nil
}

func marker(content string) store.Message {
	return store.Message{
		Role:      store.RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}
