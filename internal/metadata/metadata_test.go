package metadata

import (
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestExtractReadsDimensionsAndFileFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	writePNG(t, path, 640, 480)

	meta := Extract(path, discardLogger())

	if got := meta.String("file_name"); got != "frame" {
		t.Errorf("file_name = %q", got)
	}
	if got := meta.String("file_name_full"); got != "frame.png" {
		t.Errorf("file_name_full = %q", got)
	}
	if got := meta.String("file_path"); got != path {
		t.Errorf("file_path = %q", got)
	}
	if w, ok := meta.Int("width"); !ok || w != 640 {
		t.Errorf("width = %d, ok=%v", w, ok)
	}
	if h, ok := meta.Int("height"); !ok || h != 480 {
		t.Errorf("height = %d, ok=%v", h, ok)
	}
}

func TestExtractDegradesToFileFieldsOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.jpg")

	meta := Extract(path, discardLogger())

	if got := meta.String("file_name"); got != "gone" {
		t.Errorf("file_name = %q", got)
	}
	if _, ok := meta.Int("width"); ok {
		t.Errorf("width should be absent for an unreadable file")
	}
	if _, ok := meta.Int("height"); ok {
		t.Errorf("height should be absent for an unreadable file")
	}
}

func TestExtractDegradesOnUndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := Extract(path, discardLogger())
	if got := meta.String("file_name_full"); got != "junk.jpg" {
		t.Errorf("file_name_full = %q", got)
	}
	if _, ok := meta.Int("width"); ok {
		t.Errorf("width should be absent for junk data")
	}
}

func TestStringify(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"text", "text"},
		{int64(400), "400"},
		{float64(4), "4"},
		{2.8, "2.8"},
		{42.6, "42.6"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := Stringify(tc.in); got != tc.want {
			t.Errorf("Stringify(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
