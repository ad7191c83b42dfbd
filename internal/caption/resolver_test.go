package caption

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"photopost/internal/fsutil"
	"photopost/internal/metadata"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countingExtract(calls *int, meta metadata.Metadata) ExtractFunc {
	return func(string) metadata.Metadata {
		*calls++
		return meta
	}
}

func TestResolveSkipsExtractionForPlainCaptions(t *testing.T) {
	var calls int
	got := Resolve("img.jpg", "a plain caption", true, countingExtract(&calls, nil), discardLogger())
	if got != "a plain caption" {
		t.Fatalf("Resolve = %q", got)
	}
	if calls != 0 {
		t.Fatalf("expected no metadata extraction, got %d calls", calls)
	}
}

func TestResolveOverrideBeatsSidecar(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(fsutil.SidecarPath(img), []byte("from sidecar"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls int
	got := Resolve(img, "override wins", true, countingExtract(&calls, nil), discardLogger())
	if got != "override wins" {
		t.Fatalf("Resolve = %q, want override", got)
	}
}

func TestResolveReadsSidecarAndRenders(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(fsutil.SidecarPath(img), []byte("{FILE_NAME} shot at {IMAGE_ISO}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls int
	meta := metadata.Metadata{"file_name": "a", "ISOSpeedRatings": int64(400)}
	got := Resolve(img, "", false, countingExtract(&calls, meta), discardLogger())
	if got != "a shot at ISO 400" {
		t.Fatalf("Resolve = %q", got)
	}
	if calls != 1 {
		t.Fatalf("expected one metadata extraction, got %d", calls)
	}
}

func TestResolveDefaultsToEmptyWithoutSidecar(t *testing.T) {
	var calls int
	got := Resolve(filepath.Join(t.TempDir(), "a.jpg"), "", false, countingExtract(&calls, nil), discardLogger())
	if got != "" {
		t.Fatalf("Resolve = %q, want empty default", got)
	}
	if calls != 0 {
		t.Fatalf("expected no metadata extraction for empty caption, got %d", calls)
	}
}
