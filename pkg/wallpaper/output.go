package wallpaper

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/nitrohydra/config"
)

// SaveComposed encodes canvas as JPEG into dir under the well-known composed filename.
// The file is written to a sibling temporary path and renamed into place, so readers never
// observe a partial file.
func SaveComposed(canvas image.Image, dir string, quality int) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmpPath := filepath.Join(dir, config.ComposedTempFileName)
	finalPath := filepath.Join(dir, config.ComposedFileName)

	file, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create wallpaper file: %w", err)
	}
	if err := imaging.Encode(file, canvas, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save wallpaper: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save wallpaper: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename wallpaper file: %w", err)
	}
	return finalPath, nil
}
