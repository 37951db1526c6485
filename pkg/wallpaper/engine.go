package wallpaper

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/pkg/thumbcache"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

// ProgressFunc receives human-readable status messages while a wallpaper is applied.
type ProgressFunc func(msg string)

// Engine composes, saves and installs wallpapers.
type Engine struct {
	filter      imaging.ResampleFilter
	cropMode    CropMode
	smart       *smartCropper
	autoOrient  bool
	workers     int
	quality     int
	previewSize int
	outputDir   string
	cache       *thumbcache.Cache
	installer   Installer
}

// NewEngine creates an Engine writing into outputDir. cache is consulted for previews and may be nil.
func NewEngine(cfg *config.Config, outputDir string, cache *thumbcache.Cache, installer Installer) (*Engine, error) {
	filter, err := cfg.Filter()
	if err != nil {
		return nil, err
	}
	cropMode, err := ParseCropMode(cfg.CropMode)
	if err != nil {
		return nil, err
	}
	quality := cfg.JPEGQuality
	if quality <= 0 {
		quality = config.DefaultJPEGQuality
	}
	previewSize := cfg.PreviewSize
	if previewSize <= 0 {
		previewSize = config.DefaultPreviewSize
	}
	return &Engine{
		filter:      filter,
		cropMode:    cropMode,
		smart:       &smartCropper{resampler: filter},
		autoOrient:  cfg.AutoOrient,
		workers:     cfg.WorkerCount(),
		quality:     quality,
		previewSize: previewSize,
		outputDir:   outputDir,
		cache:       cache,
		installer:   installer,
	}, nil
}

// OutputDir returns the directory receiving the composed wallpaper.
func (e *Engine) OutputDir() string {
	return e.outputDir
}

// ComposeCanvas opens every assigned image at full resolution, cover-resizes it to its monitor and
// overlays it at the monitor's offset. Any failure aborts the whole composition.
func (e *Engine) ComposeCanvas(ctx context.Context, assignments []Assignment) (*image.NRGBA, error) {
	return e.compose(ctx, assignments, 1, false)
}

// ComposePreview composes the same layout shrunk to fit within the preview size, reading cached
// thumbnails where available. Nothing is saved or installed.
func (e *Engine) ComposePreview(ctx context.Context, assignments []Assignment) (*image.NRGBA, error) {
	scale := previewScale(CanvasSize(assignments), e.previewSize)
	return e.compose(ctx, assignments, scale, true)
}

// Save persists canvas as the composed wallpaper and returns its path.
func (e *Engine) Save(canvas image.Image) (string, error) {
	return SaveComposed(canvas, e.outputDir, e.quality)
}

// Install hands the saved wallpaper to the desktop.
func (e *Engine) Install(ctx context.Context, path string) error {
	if e.installer == nil {
		return ErrNoSupportedDesktopEnvironment
	}
	return e.installer.Install(ctx, path)
}

// Apply composes, saves and installs the wallpaper, reporting each step to progress.
func (e *Engine) Apply(ctx context.Context, assignments []Assignment, progress ProgressFunc) error {
	if progress == nil {
		progress = func(string) {}
	}

	size := CanvasSize(assignments)
	progress(fmt.Sprintf("Composing %dx%d canvas from %d images...", size.X, size.Y, len(assignments)))
	canvas, err := e.ComposeCanvas(ctx, assignments)
	if err != nil {
		return err
	}

	progress("Saving wallpaper...")
	path, err := e.Save(canvas)
	if err != nil {
		return err
	}

	progress("Setting wallpaper...")
	if err := e.Install(ctx, path); err != nil {
		return err
	}
	log.Printf("Compose: applied %s (%dx%d)", path, size.X, size.Y)
	return nil
}

// previewScale returns the factor shrinking size so its longest edge fits within limit.
func previewScale(size image.Point, limit int) float64 {
	if longest := max(size.X, size.Y); longest > limit {
		return float64(limit) / float64(longest)
	}
	return 1
}
