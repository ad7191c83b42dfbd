package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListCandidatesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "z.JPEG", "notes.txt", "c.Jpg", "d.gif"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListCandidates(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "z.JPEG"),
	}
	if len(got) != len(want) {
		t.Fatalf("ListCandidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListCandidatesIsCaseSensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "mixed.Jpg"))

	got, err := ListCandidates(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates for mixed-case extension, got %v", got)
	}
}

func TestSidecarPath(t *testing.T) {
	if got := SidecarPath("images/a.jpg"); got != "images/a.jpg.caption.txt" {
		t.Fatalf("SidecarPath = %q", got)
	}
}

func TestMoveKeepsBaseName(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.jpg")
	destDir := t.TempDir()
	touch(t, src)

	if err := Move(src, destDir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source still present after move")
	}
	if _, err := os.Stat(filepath.Join(destDir, "a.jpg")); err != nil {
		t.Fatalf("destination missing after move: %v", err)
	}
}

func TestMoveMissingSourceFails(t *testing.T) {
	if err := Move(filepath.Join(t.TempDir(), "missing.jpg"), t.TempDir()); err == nil {
		t.Fatal("expected error moving a missing file")
	}
}
