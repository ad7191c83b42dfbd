package caption

import (
	"strings"

	"photopost/internal/metadata"
)

// NeedsMetadata reports whether raw caption text can contain placeholders at
// all. Callers should skip metadata extraction entirely when it returns false.
func NeedsMetadata(raw string) bool {
	return strings.Contains(raw, "{")
}

// Render substitutes every registered {VARIABLE} placeholder present in raw
// with its extracted value. Unknown placeholders stay verbatim. An extractor
// panic is confined to its own placeholder, which falls back to "N/A".
func Render(raw string, meta metadata.Metadata) string {
	if !NeedsMetadata(raw) {
		return raw
	}

	out := raw
	for _, v := range Registry() {
		placeholder := "{" + v.Name + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		out = strings.ReplaceAll(out, placeholder, safeExtract(v, meta))
	}
	return out
}

func safeExtract(v Variable, meta metadata.Metadata) (value string) {
	defer func() {
		if recover() != nil {
			value = Fallback
		}
	}()
	return v.Extract(meta)
}
