package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestFingerprintStable(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "notes.txt", "hello")

	c := New(filepath.Join(dir, "cache"))

	fp1, err := c.FingerprintFile(path)
	if err != nil {
		t.Fatalf("FingerprintFile failed: %v", err)
	}
	fp2, err := c.FingerprintFile(path)
	if err != nil {
		t.Fatalf("FingerprintFile failed: %v", err)
	}

	if fp1 != fp2 {
		t.Errorf("fingerprint not stable for unchanged file: %s vs %s", fp1, fp2)
	}
}

func TestFingerprintChangesWithMetadata(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "notes.txt", "hello")
	c := New(filepath.Join(dir, "cache"))

	fp1, err := c.FingerprintFile(path)
	if err != nil {
		t.Fatalf("FingerprintFile failed: %v", err)
	}

	// Different size
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	fp2, err := c.FingerprintFile(path)
	if err != nil {
		t.Fatalf("FingerprintFile failed: %v", err)
	}
	if fp1 == fp2 {
		t.Error("fingerprint unchanged after size change")
	}

	// Same size, different mtime
	newTime := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, newTime, newTime); err != nil {
		t.Fatalf("failed to change mtime: %v", err)
	}
	fp3, err := c.FingerprintFile(path)
	if err != nil {
		t.Fatalf("FingerprintFile failed: %v", err)
	}
	if fp2 == fp3 {
		t.Error("fingerprint unchanged after mtime change")
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	c := New(t.TempDir())
	if _, err := c.FingerprintFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache"))

	fp := Fingerprint("abc123")
	if !c.Put(fp, "extracted text") {
		t.Fatal("Put failed")
	}

	text, ok := c.Get(fp)
	if !ok {
		t.Fatal("Get missed after Put")
	}
	if text != "extracted text" {
		t.Errorf("expected 'extracted text', got %q", text)
	}
}

func TestGetMiss(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache"))
	if _, ok := c.Get(Fingerprint("missing")); ok {
		t.Error("expected miss for unknown fingerprint")
	}
}

func TestStatsAndClear(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache"))

	files, bytes := c.Stats()
	if files != 0 || bytes != 0 {
		t.Errorf("expected empty stats, got files=%d bytes=%d", files, bytes)
	}

	c.Put(Fingerprint("a"), "12345")
	c.Put(Fingerprint("b"), "123")

	files, bytes = c.Stats()
	if files != 2 {
		t.Errorf("expected 2 entries, got %d", files)
	}
	if bytes != 8 {
		t.Errorf("expected 8 bytes, got %d", bytes)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	files, _ = c.Stats()
	if files != 0 {
		t.Errorf("expected 0 entries after clear, got %d", files)
	}
}

func TestClearMissingDir(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "never-created"))
	if err := c.Clear(); err != nil {
		t.Errorf("Clear on missing dir should succeed, got %v", err)
	}
}
