package gallery

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoders for formats outside the imaging defaults.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrDirectoryList is returned when the gallery directory cannot be read.
var ErrDirectoryList = errors.New("cannot list directory")

// ScanImages lists dir (non-recursively) and returns the absolute paths of regular files whose
// extension, compared case-insensitively, is in extensions. Symlinks to regular files are included.
func ScanImages(dir string, extensions []string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrDirectoryList, dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrDirectoryList, dir, err)
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed["."+strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	var paths []string
	for _, entry := range entries {
		if !allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(abs, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// imageDimensions reads the width and height of an image file without decoding its pixels.
func imageDimensions(path string) (image.Point, error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Point{}, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}
