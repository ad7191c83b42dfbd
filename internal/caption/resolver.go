package caption

import (
	"log/slog"
	"os"
	"strings"

	"photopost/internal/fsutil"
	"photopost/internal/metadata"
)

// ExtractFunc supplies metadata for an image path. Injected so tests can count
// extractions and the resolver can skip them for placeholder-free captions.
type ExtractFunc func(path string) metadata.Metadata

// Resolve picks the raw caption for imagePath and renders its placeholders.
// Precedence: explicit override, then the sidecar caption file, then the empty
// default. A sidecar read failure degrades to the default with a warning.
func Resolve(imagePath, override string, hasOverride bool, extract ExtractFunc, log *slog.Logger) string {
	var raw string

	switch {
	case hasOverride:
		log.Info("using caption override")
		raw = override
	default:
		sidecar := fsutil.SidecarPath(imagePath)
		data, err := os.ReadFile(sidecar)
		switch {
		case err == nil:
			raw = strings.TrimSpace(string(data))
			log.Info("using caption from sidecar", "path", sidecar)
		case os.IsNotExist(err):
			log.Info("using default caption")
		default:
			log.Warn("cannot read caption sidecar", "path", sidecar, "error", err)
		}
	}

	if !NeedsMetadata(raw) {
		return raw
	}

	resolved := Render(raw, extract(imagePath))
	if resolved != raw {
		log.Info("caption template variables resolved")
	}
	return resolved
}
