package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStoreWithLecture(t *testing.T, lecture string) *Store {
	t.Helper()
	s := newTestStore(t)
	if _, err := s.CreateLecture(lecture); err != nil {
		t.Fatalf("CreateLecture failed: %v", err)
	}
	return s
}

func TestCreateSessionDefaults(t *testing.T) {
	s := newStoreWithLecture(t, "phys")

	rec, err := s.CreateSession("phys", "intro")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if rec.Name != "intro" {
		t.Errorf("expected name 'intro', got %q", rec.Name)
	}
	if rec.Model != "test-model" {
		t.Errorf("expected inherited model, got %q", rec.Model)
	}
	if rec.ModelParams != DefaultModelParams() {
		t.Errorf("expected default params, got %+v", rec.ModelParams)
	}
	if len(rec.Messages) != 0 || len(rec.Summaries) != 0 {
		t.Error("new session should have empty history")
	}
}

func TestCreateSessionGeneratedName(t *testing.T) {
	s := newStoreWithLecture(t, "phys")

	rec, err := s.CreateSession("phys", "  ")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if !strings.HasPrefix(rec.Name, "session_") {
		t.Errorf("expected timestamp-derived name, got %q", rec.Name)
	}
}

func TestCreateSessionDuplicate(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := s.CreateSession("phys", "s1"); !errors.Is(err, ErrSessionExists) {
		t.Errorf("expected ErrSessionExists, got %v", err)
	}
}

func TestCreateSessionMissingLecture(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateSession("ghost", "s1"); !errors.Is(err, ErrLectureNotFound) {
		t.Errorf("expected ErrLectureNotFound, got %v", err)
	}
}

func TestCreateSessionUpdatesLectureIndex(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	info, err := s.GetLecture("phys")
	if err != nil {
		t.Fatalf("GetLecture failed: %v", err)
	}
	if len(info.Sessions) != 1 || info.Sessions[0] != "s1" {
		t.Errorf("lecture session index not refreshed: %v", info.Sessions)
	}
}

func TestAppendMessageOrdering(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		err := s.AppendMessage("phys", "s1", Message{Role: RoleUser, Content: fmt.Sprintf("msg-%d", i)})
		if err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
	}

	msgs := s.ReadMessages("phys", "s1", 0, -1)
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Content != fmt.Sprintf("msg-%d", i) {
			t.Errorf("position %d: got %q", i, m.Content)
		}
		if m.Timestamp.IsZero() {
			t.Errorf("position %d: timestamp not assigned", i)
		}
	}
}

func TestAppendMessageLectureRefDedup(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	s.AppendMessage("phys", "s1", Message{Role: RoleUser, Content: "a", LectureRef: "phys"})
	s.AppendMessage("phys", "s1", Message{Role: RoleUser, Content: "b", LectureRef: "phys"})
	s.AppendMessage("phys", "s1", Message{Role: RoleUser, Content: "c", LectureRef: "chem"})

	rec, err := s.GetSession("phys", "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(rec.LecturesReferenced) != 2 {
		t.Errorf("expected 2 referenced lectures, got %v", rec.LecturesReferenced)
	}
}

func TestReadMessagesPagination(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		s.AppendMessage("phys", "s1", Message{Role: RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	tests := []struct {
		name          string
		offset, limit int
		wantLen       int
		wantFirst     string
	}{
		{"window", 3, 4, 4, "m3"},
		{"from offset to end", 7, -1, 3, "m7"},
		{"limit past end clamps", 8, 10, 2, "m8"},
		{"offset past end", 20, 5, 0, ""},
		{"negative offset clamps", -3, 2, 2, "m0"},
		{"zero limit", 0, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ReadMessages("phys", "s1", tt.offset, tt.limit)
			if len(got) != tt.wantLen {
				t.Fatalf("expected %d messages, got %d", tt.wantLen, len(got))
			}
			if tt.wantLen > 0 && got[0].Content != tt.wantFirst {
				t.Errorf("expected first %q, got %q", tt.wantFirst, got[0].Content)
			}
		})
	}
}

func TestClearHistoryPreservesEverythingElse(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	src := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(src, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	if _, err := s.AddSessionDocument("phys", "s1", src); err != nil {
		t.Fatalf("AddSessionDocument failed: %v", err)
	}
	s.AppendMessage("phys", "s1", Message{Role: RoleUser, Content: "q", LectureRef: "phys"})
	s.AppendSummary("phys", "s1", "digest", 0, 0)
	s.SetParameter("phys", "s1", "temperature", "0.4")

	if err := s.ClearHistory("phys", "s1"); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}

	rec, err := s.GetSession("phys", "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(rec.Messages) != 0 || len(rec.Summaries) != 0 {
		t.Error("messages and summaries should be cleared")
	}
	if len(rec.Documents) != 1 {
		t.Errorf("documents should survive clear, got %v", rec.Documents)
	}
	if len(rec.LecturesReferenced) != 1 {
		t.Errorf("lecture references should survive clear, got %v", rec.LecturesReferenced)
	}
	if rec.ModelParams.Temperature != 0.4 {
		t.Errorf("params should survive clear, got %v", rec.ModelParams.Temperature)
	}
}

func TestSetParameterValidation(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	tests := []struct {
		name, value string
		wantErr     error
	}{
		{"temperature", "0.4", nil},
		{"temperature", "1.5", ErrInvalidParameter},
		{"temperature", "-0.1", ErrInvalidParameter},
		{"temperature", "abc", ErrInvalidParameter},
		{"top_p", "0.95", nil},
		{"top_p", "2", ErrInvalidParameter},
		{"num_predict", "2048", nil},
		{"num_predict", "0", ErrInvalidParameter},
		{"num_predict", "1.5", ErrInvalidParameter},
		{"repeat_penalty", "1.1", ErrUnknownParameter},
	}
	for _, tt := range tests {
		err := s.SetParameter("phys", "s1", tt.name, tt.value)
		if tt.wantErr == nil && err != nil {
			t.Errorf("SetParameter(%s, %s): unexpected error %v", tt.name, tt.value, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("SetParameter(%s, %s): expected %v, got %v", tt.name, tt.value, tt.wantErr, err)
		}
	}

	rec, _ := s.GetSession("phys", "s1")
	if rec.ModelParams.Temperature != 0.4 {
		t.Errorf("expected temperature 0.4, got %v", rec.ModelParams.Temperature)
	}
	if rec.ModelParams.TopP != 0.95 {
		t.Errorf("expected top_p 0.95, got %v", rec.ModelParams.TopP)
	}
	if rec.ModelParams.NumPredict != 2048 {
		t.Errorf("expected num_predict 2048, got %v", rec.ModelParams.NumPredict)
	}
}

func TestSetParameterErrorMessages(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	err := s.SetParameter("phys", "s1", "temperature", "2")
	if err == nil || !strings.Contains(err.Error(), "temperature must be between 0.0 and 1.0") {
		t.Errorf("unexpected message: %v", err)
	}
	err = s.SetParameter("phys", "s1", "num_predict", "-5")
	if err == nil || !strings.Contains(err.Error(), "num_predict must be a positive integer") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestCorruptSessionRecordDegrades(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	s.AppendMessage("phys", "s1", Message{Role: RoleUser, Content: "gone"})

	if err := os.WriteFile(s.SessionPath("phys", "s1"), []byte("{broken"), 0644); err != nil {
		t.Fatalf("failed to corrupt record: %v", err)
	}

	// Reads see empty history
	msgs := s.ReadMessages("phys", "s1", 0, -1)
	if len(msgs) != 0 {
		t.Errorf("expected empty history from corrupt record, got %d messages", len(msgs))
	}

	// A write reconstructs a minimal valid record
	if err := s.AppendMessage("phys", "s1", Message{Role: RoleUser, Content: "fresh"}); err != nil {
		t.Fatalf("AppendMessage over corrupt record failed: %v", err)
	}
	rec, err := s.GetSession("phys", "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(rec.Messages) != 1 || rec.Messages[0].Content != "fresh" {
		t.Errorf("expected reconstructed record with one message, got %+v", rec.Messages)
	}
	if rec.Model != "test-model" {
		t.Errorf("reconstruction should use default model, got %q", rec.Model)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	src := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	if _, err := s.AddSessionDocument("phys", "s1", src); err != nil {
		t.Fatalf("AddSessionDocument failed: %v", err)
	}

	if err := s.DeleteSession("phys", "s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if s.SessionExists("phys", "s1") {
		t.Error("session record should be gone")
	}
	if _, err := os.Stat(s.SessionDocsDir("phys", "s1")); !os.IsNotExist(err) {
		t.Error("session docs dir should be gone")
	}
	if err := s.DeleteSession("phys", "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on double delete, got %v", err)
	}
}

func TestAppendMessagesBatch(t *testing.T) {
	s := newStoreWithLecture(t, "phys")
	if _, err := s.CreateSession("phys", "dest"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	batch := []Message{
		{Role: RoleSystem, Content: "=== Session: a ==="},
		{Role: RoleUser, Content: "q1"},
		{Role: RoleSystem, Content: "=== End of Session: a ==="},
	}
	info := &MergeInfo{MergeID: "id-1", OriginalSessions: []string{"a"}, TotalMessages: 1}
	if err := s.AppendMessages("phys", "dest", batch, []string{"phys"}, info); err != nil {
		t.Fatalf("AppendMessages failed: %v", err)
	}

	rec, err := s.GetSession("phys", "dest")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(rec.Messages) != 3 {
		t.Errorf("expected 3 messages, got %d", len(rec.Messages))
	}
	if rec.MergeInfo == nil || rec.MergeInfo.TotalMessages != 1 {
		t.Errorf("merge info not persisted: %+v", rec.MergeInfo)
	}
	if len(rec.LecturesReferenced) != 1 {
		t.Errorf("lecture refs not merged: %v", rec.LecturesReferenced)
	}
}
