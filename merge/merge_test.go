package merge

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lantern-study/lantern/store"
)

func newMergeFixture(t *testing.T, sessionMessages map[string]int) (*Engine, *store.Store) {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "lectures"), "test-model")
	if _, err := s.CreateLecture("cs"); err != nil {
		t.Fatalf("CreateLecture failed: %v", err)
	}
	for name, count := range sessionMessages {
		if _, err := s.CreateSession("cs", name); err != nil {
			t.Fatalf("CreateSession %s failed: %v", name, err)
		}
		for i := 0; i < count; i++ {
			err := s.AppendMessage("cs", name, store.Message{
				Role:    store.RoleUser,
				Content: fmt.Sprintf("%s-msg-%d", name, i),
			})
			if err != nil {
				t.Fatalf("AppendMessage failed: %v", err)
			}
		}
	}
	return NewEngine(s), s
}

func TestMergeAll(t *testing.T) {
	e, s := newMergeFixture(t, map[string]int{"a": 3, "b": 2, "c": 4})

	report, err := e.MergeAll("cs", Options{})
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if report.Cancelled {
		t.Fatalf("unexpected cancellation: %s", report.CancelReason)
	}
	if report.Destination != "MergedSess-cs" {
		t.Errorf("expected destination 'MergedSess-cs', got %q", report.Destination)
	}
	if report.SessionCount != 3 {
		t.Errorf("expected 3 sessions, got %d", report.SessionCount)
	}
	if report.TotalMessages != 9 {
		t.Errorf("expected 9 source messages, got %d", report.TotalMessages)
	}
	if report.MergeID == "" {
		t.Error("expected a merge id")
	}

	rec, err := s.GetSession("cs", "MergedSess-cs")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	// 9 source messages plus a begin and end marker per session
	if len(rec.Messages) != 15 {
		t.Errorf("expected 15 merged messages, got %d", len(rec.Messages))
	}
	if rec.MergeInfo == nil {
		t.Fatal("merge info missing")
	}
	if rec.MergeInfo.TotalMessages != 9 {
		t.Errorf("merge info counts source messages only, got %d", rec.MergeInfo.TotalMessages)
	}
	if len(rec.MergeInfo.OriginalSessions) != 3 {
		t.Errorf("expected 3 original sessions, got %v", rec.MergeInfo.OriginalSessions)
	}

	// Sources fold in sorted order with their boundary markers
	if rec.Messages[0].Content != "=== Session: a ===" {
		t.Errorf("expected opening marker for 'a', got %q", rec.Messages[0].Content)
	}
	if rec.Messages[0].Role != store.RoleSystem {
		t.Errorf("markers should be system messages, got %q", rec.Messages[0].Role)
	}
	if rec.Messages[4].Content != "=== End of Session: a ===" {
		t.Errorf("expected closing marker for 'a', got %q", rec.Messages[4].Content)
	}
	if rec.Messages[5].Content != "=== Session: b ===" {
		t.Errorf("expected opening marker for 'b', got %q", rec.Messages[5].Content)
	}
}

func TestMergeSkipsEmptySessions(t *testing.T) {
	e, s := newMergeFixture(t, map[string]int{"full": 2, "empty": 0})

	report, err := e.MergeAll("cs", Options{})
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if report.TotalMessages != 2 {
		t.Errorf("expected 2 messages, got %d", report.TotalMessages)
	}

	rec, _ := s.GetSession("cs", "MergedSess-cs")
	for _, m := range rec.Messages {
		if strings.Contains(m.Content, "empty") {
			t.Errorf("empty session should contribute no markers, found %q", m.Content)
		}
	}
}

func TestMergeNoSessions(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "lectures"), "test-model")
	if _, err := s.CreateLecture("cs"); err != nil {
		t.Fatalf("CreateLecture failed: %v", err)
	}

	if _, err := NewEngine(s).MergeAll("cs", Options{}); !errors.Is(err, ErrNoSessions) {
		t.Errorf("expected ErrNoSessions, got %v", err)
	}
}

func TestMergeMissingLecture(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "lectures"), "test-model")
	if _, err := NewEngine(s).MergeAll("ghost", Options{}); !errors.Is(err, store.ErrLectureNotFound) {
		t.Errorf("expected ErrLectureNotFound, got %v", err)
	}
}

func TestMergeExcludesPreviousDestination(t *testing.T) {
	e, s := newMergeFixture(t, map[string]int{"a": 2})

	if _, err := e.MergeAll("cs", Options{}); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}

	// Re-merge overwrites the destination without folding it into itself
	report, err := e.MergeAll("cs", Options{})
	if err != nil {
		t.Fatalf("second merge failed: %v", err)
	}
	if report.SessionCount != 1 {
		t.Errorf("previous destination must not be a source, got %d sessions", report.SessionCount)
	}
	if report.TotalMessages != 2 {
		t.Errorf("expected 2 messages, got %d", report.TotalMessages)
	}

	rec, _ := s.GetSession("cs", "MergedSess-cs")
	if len(rec.Messages) != 4 {
		t.Errorf("expected fresh destination with 4 messages, got %d", len(rec.Messages))
	}
}

func TestMergeOverwriteDeclined(t *testing.T) {
	e, s := newMergeFixture(t, map[string]int{"a": 2})

	if _, err := e.MergeAll("cs", Options{}); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}

	report, err := e.MergeAll("cs", Options{
		Confirm: func(prompt string) bool { return !strings.Contains(prompt, "already exists") },
	})
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if !report.Cancelled {
		t.Fatal("expected cancellation when overwrite is declined")
	}
	if report.CancelReason != "overwrite declined" {
		t.Errorf("unexpected cancel reason: %q", report.CancelReason)
	}

	// The existing destination survives untouched
	rec, err := s.GetSession("cs", "MergedSess-cs")
	if err != nil {
		t.Fatalf("destination should still exist: %v", err)
	}
	if len(rec.Messages) != 4 {
		t.Errorf("destination should be unchanged, got %d messages", len(rec.Messages))
	}
}

func TestMergeCustomDestination(t *testing.T) {
	e, s := newMergeFixture(t, map[string]int{"a": 1})

	report, err := e.MergeAll("cs", Options{DestinationName: "review"})
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if report.Destination != "review" {
		t.Errorf("expected destination 'review', got %q", report.Destination)
	}
	if !s.SessionExists("cs", "review") {
		t.Error("custom destination not created")
	}
}

func TestMergeBatchCheckpointing(t *testing.T) {
	// Seven single-message sessions span two batches of five
	sessions := map[string]int{}
	for i := 0; i < 7; i++ {
		sessions[fmt.Sprintf("s%d", i)] = 1
	}
	e, s := newMergeFixture(t, sessions)

	report, err := e.MergeAll("cs", Options{})
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if report.TotalMessages != 7 {
		t.Errorf("expected 7 messages, got %d", report.TotalMessages)
	}

	rec, _ := s.GetSession("cs", "MergedSess-cs")
	// 7 messages plus 14 markers, appended across two checkpoints
	if len(rec.Messages) != 21 {
		t.Errorf("expected 21 merged messages, got %d", len(rec.Messages))
	}
	if rec.MergeInfo.TotalMessages != 7 {
		t.Errorf("final merge info should count all batches, got %d", rec.MergeInfo.TotalMessages)
	}
}

func TestMergeInterruptedBetweenBatches(t *testing.T) {
	// Seven single-message sessions: batch 0 is s0..s4, batch 1 is s5, s6
	sessions := map[string]int{}
	for i := 0; i < 7; i++ {
		sessions[fmt.Sprintf("s%d", i)] = 1
	}
	e, s := newMergeFixture(t, sessions)

	boom := errors.New("interrupted")
	e.afterBatch = func(batch int) error {
		if batch == 0 {
			return boom
		}
		return nil
	}

	_, err := e.MergeAll("cs", Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected interruption error, got %v", err)
	}

	// The destination holds exactly the first batch, fully readable
	rec, getErr := s.GetSession("cs", "MergedSess-cs")
	if getErr != nil {
		t.Fatalf("destination should survive the interruption: %v", getErr)
	}
	// 5 source messages plus a begin and end marker per session
	if len(rec.Messages) != 15 {
		t.Errorf("expected batch 1's 15 messages, got %d", len(rec.Messages))
	}
	if rec.MergeInfo == nil {
		t.Fatal("merge info missing after checkpoint")
	}
	if rec.MergeInfo.TotalMessages != 5 {
		t.Errorf("checkpointed count should cover batch 1 only, got %d", rec.MergeInfo.TotalMessages)
	}
	if rec.Messages[0].Content != "=== Session: s0 ===" {
		t.Errorf("expected opening marker for 's0', got %q", rec.Messages[0].Content)
	}
	for _, m := range rec.Messages {
		if strings.Contains(m.Content, "s5") || strings.Contains(m.Content, "s6") {
			t.Errorf("batch 2 content must not be present, found %q", m.Content)
		}
	}
}

func TestMergeCollectsLectureRefs(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "lectures"), "test-model")
	if _, err := s.CreateLecture("cs"); err != nil {
		t.Fatalf("CreateLecture failed: %v", err)
	}
	if _, err := s.CreateSession("cs", "a"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	s.AppendMessage("cs", "a", store.Message{Role: store.RoleUser, Content: "x", LectureRef: "cs"})
	s.AppendMessage("cs", "a", store.Message{Role: store.RoleSystem, Content: "marker", LectureRef: "ignored"})

	if _, err := NewEngine(s).MergeAll("cs", Options{}); err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}

	rec, _ := s.GetSession("cs", "MergedSess-cs")
	if len(rec.LecturesReferenced) != 1 || rec.LecturesReferenced[0] != "cs" {
		t.Errorf("expected refs from user/assistant turns only, got %v", rec.LecturesReferenced)
	}
}
