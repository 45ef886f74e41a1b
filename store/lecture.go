package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lantern-study/lantern/log"
	"github.com/lantern-study/lantern/utils"
)

// CreateLecture creates the lecture's directory structure and info record
func (s *Store) CreateLecture(name string) (*LectureInfo, error) {
	if !validName(name) {
		return nil, ErrEmptyName
	}
	name = utils.SanitizeName(name)

	if _, err := os.Stat(s.lecturePath(name)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrLectureExists, name)
	}

	for _, dir := range []string{s.lecturePath(name), s.sessionsDir(name), s.LectureDocsDir(name)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create lecture %s: %w", name, err)
		}
	}

	info := &LectureInfo{
		Name:         name,
		CreatedAt:    time.Now(),
		Documents:    []string{},
		Sessions:     []string{},
		CurrentModel: s.defaultModel,
		ModelParams:  DefaultModelParams(),
	}
	if err := utils.WriteJSONAtomic(s.lectureInfoPath(name), info); err != nil {
		return nil, fmt.Errorf("write lecture info: %w", err)
	}

	log.Info().Str("lecture", name).Msg("lecture created")
	return info, nil
}

// ListLectures returns all lecture names in sorted order
func (s *Store) ListLectures() []string {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return []string{}
	}

	var lectures []string
	for _, e := range entries {
		if e.IsDir() {
			lectures = append(lectures, e.Name())
		}
	}
	sort.Strings(lectures)
	return lectures
}

// GetLecture loads a lecture's info record
func (s *Store) GetLecture(name string) (*LectureInfo, error) {
	if _, err := os.Stat(s.lecturePath(name)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLectureNotFound, name)
	}

	var info LectureInfo
	if err := utils.ReadJSON(s.lectureInfoPath(name), &info); err != nil {
		// Directory exists but record is unreadable: reconstruct a minimal
		// view rather than failing the read path.
		log.Warn().Err(err).Str("lecture", name).Msg("lecture info unreadable, degrading")
		return &LectureInfo{
			Name:         name,
			Documents:    []string{},
			Sessions:     s.ListSessions(name),
			CurrentModel: s.defaultModel,
			ModelParams:  DefaultModelParams(),
		}, nil
	}
	return &info, nil
}

// LectureExists reports whether the lecture directory exists
func (s *Store) LectureExists(name string) bool {
	info, err := os.Stat(s.lecturePath(name))
	return err == nil && info.IsDir()
}

// RefreshSessionList recomputes the lecture's cached session-name index from
// the sessions directory and persists it.
func (s *Store) RefreshSessionList(lecture string) error {
	mu := s.locks.acquire(lectureLockKey(lecture))
	mu.Lock()
	defer mu.Unlock()

	info, err := s.GetLecture(lecture)
	if err != nil {
		return err
	}
	info.Sessions = s.ListSessions(lecture)
	return utils.WriteJSONAtomic(s.lectureInfoPath(lecture), info)
}

// AddLectureDocument copies the file at srcPath into the lecture's shared
// docs directory and records its name. Returns the stored document name.
func (s *Store) AddLectureDocument(lecture, srcPath string) (string, error) {
	if !s.LectureExists(lecture) {
		return "", fmt.Errorf("%w: %s", ErrLectureNotFound, lecture)
	}

	docName := utils.SanitizeName(filepath.Base(srcPath))
	if err := copyFile(srcPath, filepath.Join(s.LectureDocsDir(lecture), docName)); err != nil {
		return "", err
	}

	mu := s.locks.acquire(lectureLockKey(lecture))
	mu.Lock()
	defer mu.Unlock()

	info, err := s.GetLecture(lecture)
	if err != nil {
		return "", err
	}
	if !contains(info.Documents, docName) {
		info.Documents = append(info.Documents, docName)
	}
	if err := utils.WriteJSONAtomic(s.lectureInfoPath(lecture), info); err != nil {
		return "", err
	}

	log.Info().Str("lecture", lecture).Str("doc", docName).Msg("lecture document added")
	return docName, nil
}

// SetLectureModel updates the lecture's current model
func (s *Store) SetLectureModel(lecture, model string) error {
	mu := s.locks.acquire(lectureLockKey(lecture))
	mu.Lock()
	defer mu.Unlock()

	info, err := s.GetLecture(lecture)
	if err != nil {
		return err
	}
	info.CurrentModel = model
	return utils.WriteJSONAtomic(s.lectureInfoPath(lecture), info)
}

// Status assembles the per-lecture, per-session summary used by status
// reporting. Unreadable sessions appear with zero counts instead of aborting
// the walk.
func (s *Store) Status() []LectureStatus {
	result := []LectureStatus{}
	for _, lectureName := range s.ListLectures() {
		info, err := s.GetLecture(lectureName)
		if err != nil {
			continue
		}

		ls := LectureStatus{
			Name:      info.Name,
			CreatedAt: info.CreatedAt,
			Documents: info.Documents,
			Sessions:  []SessionStatus{},
		}
		for _, sessionName := range s.ListSessions(lectureName) {
			rec := s.loadOrEmpty(lectureName, sessionName)

			totalChars := 0
			for _, m := range rec.Messages {
				totalChars += len(m.Content)
			}
			estimated := totalChars / 4

			ls.Sessions = append(ls.Sessions, SessionStatus{
				Name:               sessionName,
				CreatedAt:          rec.CreatedAt,
				Model:              rec.Model,
				MessageCount:       len(rec.Messages),
				EstimatedTokens:    estimated,
				Documents:          rec.Documents,
				LecturesReferenced: rec.LecturesReferenced,
				SummaryCount:       len(rec.Summaries),
			})
			ls.SessionCount++
			ls.EstimatedTokens += estimated
		}
		result = append(result, ls)
	}
	return result
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func trimJSONExt(name string) string {
	return strings.TrimSuffix(name, ".json")
}
