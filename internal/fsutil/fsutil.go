package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"sort"
)

// The candidate set is deliberately case-sensitive: files named *.Jpg or
// *.jpG are not picked up.
var supportedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".JPG":  {},
	".JPEG": {},
	".PNG":  {},
}

// IsSupportedImage reports whether path has a supported image extension.
func IsSupportedImage(path string) bool {
	_, ok := supportedExts[filepath.Ext(path)]
	return ok
}

// ListCandidates returns all supported images directly inside dir, sorted
// lexicographically by full path.
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsSupportedImage(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// SidecarPath returns the caption sidecar path for an image.
func SidecarPath(imagePath string) string {
	return imagePath + ".caption.txt"
}

// EnsureDirs creates each directory if it does not exist.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Move renames src into destDir keeping the base name, copying across
// filesystems when rename fails.
func Move(src, destDir string) error {
	dest := filepath.Join(destDir, filepath.Base(src))
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
