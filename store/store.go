// Package store persists lectures and sessions as human-inspectable JSON
// records, one file per entity. Every mutation is a full read-modify-write
// of the backing record under a per-record lock, replaced atomically on disk.
// Reads of a missing or corrupt record degrade to empty history; writes
// reconstruct a minimal valid record instead of failing.
package store

import (
	"path/filepath"
	"strings"
)

// Store is the root of all lecture and session records
type Store struct {
	root         string // lectures directory
	defaultModel string
	locks        recordLocks
}

// New returns a store rooted at lecturesDir. New sessions and reconstructed
// records default to defaultModel.
func New(lecturesDir, defaultModel string) *Store {
	return &Store{
		root:         lecturesDir,
		defaultModel: defaultModel,
	}
}

// Root returns the lectures directory
func (s *Store) Root() string {
	return s.root
}

// DefaultModel returns the model assigned to new sessions
func (s *Store) DefaultModel() string {
	return s.defaultModel
}

func (s *Store) lecturePath(lecture string) string {
	return filepath.Join(s.root, lecture)
}

func (s *Store) lectureInfoPath(lecture string) string {
	return filepath.Join(s.lecturePath(lecture), "lecture_info.json")
}

// LectureDocsDir returns the directory of documents shared by all of a
// lecture's sessions.
func (s *Store) LectureDocsDir(lecture string) string {
	return filepath.Join(s.lecturePath(lecture), "docs")
}

func (s *Store) sessionsDir(lecture string) string {
	return filepath.Join(s.lecturePath(lecture), "sessions")
}

// SessionDocsDir returns the directory of documents private to one session
func (s *Store) SessionDocsDir(lecture, session string) string {
	return filepath.Join(s.lecturePath(lecture), "session_docs", session)
}

// SessionPath returns the backing record path for a session
func (s *Store) SessionPath(lecture, session string) string {
	return filepath.Join(s.sessionsDir(lecture), session+".json")
}

func lectureLockKey(lecture string) string {
	return "lecture:" + lecture
}

func sessionLockKey(lecture, session string) string {
	return "session:" + lecture + "/" + session
}

func validName(name string) bool {
	return strings.TrimSpace(name) != ""
}
