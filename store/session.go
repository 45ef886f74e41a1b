package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/utils"
)

// CreateSession creates a new, empty session record in the lecture. An empty
// name is replaced by a timestamp-derived one.
func (s *Store) CreateSession(lecture, name string) (*SessionRecord, error) {
	if !s.LectureExists(lecture) {
		return nil, fmt.Errorf("%w: %s", ErrLectureNotFound, lecture)
	}

	if strings.TrimSpace(name) == "" {
		name = "session_" + time.Now().Format("20060102_150405")
	}
	name = utils.SanitizeName(name)

	path := s.SessionPath(lecture, name)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s in lecture %s", ErrSessionExists, name, lecture)
	}

	lectureInfo, err := s.GetLecture(lecture)
	if err != nil {
		return nil, err
	}

	rec := &SessionRecord{
		Name:               name,
		Lecture:            lecture,
		CreatedAt:          time.Now(),
		Model:              lectureInfo.CurrentModel,
		ModelParams:        lectureInfo.ModelParams,
		Messages:           []Message{},
		Documents:          []string{},
		LecturesReferenced: []string{},
		Summaries:          []Summary{},
	}
	if err := utils.WriteJSONAtomic(path, rec); err != nil {
		return nil, fmt.Errorf("write session record: %w", err)
	}

	if err := s.RefreshSessionList(lecture); err != nil {
		log.Warn().Err(err).Str("lecture", lecture).Msg("session list refresh failed")
	}

	log.Info().Str("lecture", lecture).Str("session", name).Msg("session created")
	return rec, nil
}

// ListSessions returns the session names of a lecture in sorted order,
// derived from the sessions directory rather than the cached index.
func (s *Store) ListSessions(lecture string) []string {
	entries, err := os.ReadDir(s.sessionsDir(lecture))
	if err != nil {
		return []string{}
	}

	var sessions []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			sessions = append(sessions, trimJSONExt(e.Name()))
		}
	}
	sort.Strings(sessions)
	return sessions
}

// SessionExists reports whether the session record exists
func (s *Store) SessionExists(lecture, session string) bool {
	_, err := os.Stat(s.SessionPath(lecture, session))
	return err == nil
}

// GetSession loads a session record. The record must exist; corruption
// degrades to an empty-history record rather than an error.
func (s *Store) GetSession(lecture, session string) (*SessionRecord, error) {
	if !s.SessionExists(lecture, session) {
		return nil, fmt.Errorf("%w: %s in lecture %s", ErrSessionNotFound, session, lecture)
	}
	return s.loadOrEmpty(lecture, session), nil
}

// DeleteSession removes a session record and its private documents
func (s *Store) DeleteSession(lecture, session string) error {
	if !s.SessionExists(lecture, session) {
		return fmt.Errorf("%w: %s in lecture %s", ErrSessionNotFound, session, lecture)
	}

	mu := s.locks.acquire(sessionLockKey(lecture, session))
	mu.Lock()
	err := os.Remove(s.SessionPath(lecture, session))
	mu.Unlock()
	s.locks.release(sessionLockKey(lecture, session))
	if err != nil {
		return err
	}

	os.RemoveAll(s.SessionDocsDir(lecture, session))

	if err := s.RefreshSessionList(lecture); err != nil {
		log.Warn().Err(err).Str("lecture", lecture).Msg("session list refresh failed")
	}
	return nil
}

// AppendMessage appends one message to the session's history. A LectureRef
// not yet recorded is added to the session's referenced-lectures set. The
// whole record is rewritten atomically under the session's lock.
func (s *Store) AppendMessage(lecture, session string, msg Message) error {
	mu := s.locks.acquire(sessionLockKey(lecture, session))
	mu.Lock()
	defer mu.Unlock()

	rec := s.loadOrEmpty(lecture, session)

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.LectureRef != "" && !contains(rec.LecturesReferenced, msg.LectureRef) {
		rec.LecturesReferenced = append(rec.LecturesReferenced, msg.LectureRef)
	}
	rec.Messages = append(rec.Messages, msg)

	return utils.WriteJSONAtomic(s.SessionPath(lecture, session), rec)
}

// AppendMessages appends a batch of messages in order under a single
// read-modify-write cycle. Used by the merge engine's batch checkpointing.
func (s *Store) AppendMessages(lecture, session string, msgs []Message, lectureRefs []string, info *MergeInfo) error {
	mu := s.locks.acquire(sessionLockKey(lecture, session))
	mu.Lock()
	defer mu.Unlock()

	rec := s.loadOrEmpty(lecture, session)
	rec.Messages = append(rec.Messages, msgs...)
	for _, ref := range lectureRefs {
		if !contains(rec.LecturesReferenced, ref) {
			rec.LecturesReferenced = append(rec.LecturesReferenced, ref)
		}
	}
	if info != nil {
		rec.MergeInfo = info
	}

	return utils.WriteJSONAtomic(s.SessionPath(lecture, session), rec)
}

// ReadMessages returns the session's messages in append order. A negative
// limit returns everything from offset onward; out-of-range bounds clamp to
// the history. Missing or corrupt records yield an empty slice.
func (s *Store) ReadMessages(lecture, session string, offset, limit int) []Message {
	rec := s.loadOrEmpty(lecture, session)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(rec.Messages) {
		return []Message{}
	}

	end := len(rec.Messages)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return rec.Messages[offset:end]
}

// ClearHistory resets the message and summary sequences, leaving documents,
// references, model and parameters untouched.
func (s *Store) ClearHistory(lecture, session string) error {
	mu := s.locks.acquire(sessionLockKey(lecture, session))
	mu.Lock()
	defer mu.Unlock()

	rec := s.loadOrEmpty(lecture, session)
	rec.Messages = []Message{}
	rec.Summaries = []Summary{}

	return utils.WriteJSONAtomic(s.SessionPath(lecture, session), rec)
}

// AppendSummary records a digest covering the inclusive message-index range
// [start, end].
func (s *Store) AppendSummary(lecture, session, digest string, start, end int) error {
	mu := s.locks.acquire(sessionLockKey(lecture, session))
	mu.Lock()
	defer mu.Unlock()

	rec := s.loadOrEmpty(lecture, session)
	rec.Summaries = append(rec.Summaries, Summary{
		Summary:    digest,
		StartIndex: start,
		EndIndex:   end,
		Timestamp:  time.Now(),
	})

	return utils.WriteJSONAtomic(s.SessionPath(lecture, session), rec)
}

// SetModel updates the session's active model
func (s *Store) SetModel(lecture, session, model string) error {
	mu := s.locks.acquire(sessionLockKey(lecture, session))
	mu.Lock()
	defer mu.Unlock()

	rec := s.loadOrEmpty(lecture, session)
	rec.Model = model

	return utils.WriteJSONAtomic(s.SessionPath(lecture, session), rec)
}

// SetParameter validates and updates one sampling parameter. Unknown names
// and out-of-range values are rejected with a descriptive error and no state
// change.
func (s *Store) SetParameter(lecture, session, name, value string) error {
	mu := s.locks.acquire(sessionLockKey(lecture, session))
	mu.Lock()
	defer mu.Unlock()

	rec := s.loadOrEmpty(lecture, session)

	switch name {
	case "temperature":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0.0 || v > 1.0 {
			return fmt.Errorf("%w: temperature must be between 0.0 and 1.0", ErrInvalidParameter)
		}
		rec.ModelParams.Temperature = v
	case "top_p":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0.0 || v > 1.0 {
			return fmt.Errorf("%w: top_p must be between 0.0 and 1.0", ErrInvalidParameter)
		}
		rec.ModelParams.TopP = v
	case "num_predict":
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			return fmt.Errorf("%w: num_predict must be a positive integer", ErrInvalidParameter)
		}
		rec.ModelParams.NumPredict = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}

	return utils.WriteJSONAtomic(s.SessionPath(lecture, session), rec)
}

// AddSessionDocument copies the file at srcPath into the session's private
// docs directory and records its name.
func (s *Store) AddSessionDocument(lecture, session, srcPath string) (string, error) {
	if !s.SessionExists(lecture, session) {
		return "", fmt.Errorf("%w: %s in lecture %s", ErrSessionNotFound, session, lecture)
	}

	docName := utils.SanitizeName(filepath.Base(srcPath))
	if err := copyFile(srcPath, filepath.Join(s.SessionDocsDir(lecture, session), docName)); err != nil {
		return "", err
	}

	mu := s.locks.acquire(sessionLockKey(lecture, session))
	mu.Lock()
	defer mu.Unlock()

	rec := s.loadOrEmpty(lecture, session)
	if !contains(rec.Documents, docName) {
		rec.Documents = append(rec.Documents, docName)
	}
	if err := utils.WriteJSONAtomic(s.SessionPath(lecture, session), rec); err != nil {
		return "", err
	}

	log.Info().Str("lecture", lecture).Str("session", session).Str("doc", docName).Msg("session document added")
	return docName, nil
}

// loadOrEmpty reads the session record, reconstructing a minimal valid one
// when the file is missing or corrupt. Write paths persist the reconstruction
// rather than failing; read paths see empty history.
func (s *Store) loadOrEmpty(lecture, session string) *SessionRecord {
	var rec SessionRecord
	if err := utils.ReadJSON(s.SessionPath(lecture, session), &rec); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("lecture", lecture).Str("session", session).Msg("session record unreadable, reconstructing")
		}
		return &SessionRecord{
			Name:               session,
			Lecture:            lecture,
			CreatedAt:          time.Now(),
			Model:              s.defaultModel,
			ModelParams:        DefaultModelParams(),
			Messages:           []Message{},
			Documents:          []string{},
			LecturesReferenced: []string{},
			Summaries:          []Summary{},
		}
	}

	// Old or hand-edited records may omit slices
	if rec.Messages == nil {
		rec.Messages = []Message{}
	}
	if rec.Documents == nil {
		rec.Documents = []string{}
	}
	if rec.LecturesReferenced == nil {
		rec.LecturesReferenced = []string{}
	}
	if rec.Summaries == nil {
		rec.Summaries = []Summary{}
	}
	return &rec
}
