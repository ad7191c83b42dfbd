// Package metadata reads image dimensions and EXIF tags into a flat mapping
// consumed by the caption variable registry.
package metadata

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Metadata maps tag names to values (string, int64 or float64). The three
// file-derived keys are always present; width/height and EXIF tags only when
// the file decodes.
type Metadata map[string]any

// String returns the value for key rendered as a string, or "" when absent.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Int returns the value for key as an int64 when it carries a numeric value.
func (m Metadata) Int(key string) (int64, bool) {
	switch v := m[key].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// Float returns the value for key as a float64 when it carries a numeric value.
func (m Metadata) Float(key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Extract reads dimensions and EXIF tags from the image at path. Failures to
// open or decode are downgraded to warnings; the returned mapping always holds
// at least file_name, file_name_full and file_path.
func Extract(path string, log *slog.Logger) Metadata {
	base := filepath.Base(path)
	meta := Metadata{
		"file_name":      strings.TrimSuffix(base, filepath.Ext(base)),
		"file_name_full": base,
		"file_path":      path,
	}

	f, err := os.Open(path)
	if err != nil {
		log.Warn("cannot open image for metadata", "path", path, "error", err)
		return meta
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		log.Warn("cannot decode image dimensions", "path", path, "error", err)
	} else {
		meta["width"] = int64(cfg.Width)
		meta["height"] = int64(cfg.Height)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return meta
	}

	x, err := exif.Decode(f)
	if err != nil {
		log.Warn("no EXIF data found", "path", path, "error", err)
		return meta
	}

	walker := tagWalker{meta: meta}
	if err := x.Walk(walker); err != nil {
		log.Warn("EXIF walk aborted", "path", path, "error", err)
	}

	return meta
}

type tagWalker struct {
	meta Metadata
}

// Walk stores each EXIF field under its dictionary name, normalizing rational
// values to decimals. A zero denominator keeps the numerator as-is.
func (w tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	key := string(name)
	switch tag.Format() {
	case tiff.RatVal:
		num, den, err := tag.Rat2(0)
		if err != nil {
			return nil
		}
		if den == 0 {
			w.meta[key] = num
		} else {
			w.meta[key] = float64(num) / float64(den)
		}
	case tiff.IntVal:
		v, err := tag.Int(0)
		if err != nil {
			return nil
		}
		w.meta[key] = int64(v)
	case tiff.FloatVal:
		v, err := tag.Float(0)
		if err != nil {
			return nil
		}
		w.meta[key] = v
	case tiff.StringVal:
		v, err := tag.StringVal()
		if err != nil {
			return nil
		}
		w.meta[key] = strings.TrimSpace(v)
	default:
		w.meta[key] = tag.String()
	}
	return nil
}

// Stringify renders a metadata value the way captions expect: integral floats
// without a trailing ".0", everything else in its shortest decimal form.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return formatInt(t)
	case float64:
		return formatFloat(t)
	default:
		return ""
	}
}
