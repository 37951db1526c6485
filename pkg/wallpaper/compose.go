// Package wallpaper composes the selected images into one canvas spanning the monitor layout,
// persists it and installs it as the desktop background.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	// Decoders for formats outside the imaging defaults.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/dixieflatline76/nitrohydra/pkg/monitor"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

var (
	// ErrImageDecode marks a source file that could be read but not decoded.
	ErrImageDecode = errors.New("cannot decode image")
	// ErrNoAssignments is returned when there is nothing to compose.
	ErrNoAssignments = errors.New("no images assigned to monitors")
)

// ImageOpenError names the source file that could not be opened or decoded.
type ImageOpenError struct {
	Path string
	Err  error
}

func (e *ImageOpenError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.Path, e.Err)
}

func (e *ImageOpenError) Unwrap() error {
	return e.Err
}

// Assignment pairs a source image with the monitor it is rendered onto.
type Assignment struct {
	Path    string
	Monitor monitor.Monitor
}

// Assign pairs paths with monitors in order. Extra paths or monitors are ignored.
func Assign(paths []string, monitors []monitor.Monitor) []Assignment {
	n := min(len(paths), len(monitors))
	assignments := make([]Assignment, 0, n)
	for i := 0; i < n; i++ {
		assignments = append(assignments, Assignment{Path: paths[i], Monitor: monitors[i]})
	}
	return assignments
}

// CanvasSize returns the bounding box of all assigned monitors, anchored at the origin.
func CanvasSize(assignments []Assignment) image.Point {
	var size image.Point
	for _, a := range assignments {
		size.X = max(size.X, a.Monitor.X+a.Monitor.Width)
		size.Y = max(size.Y, a.Monitor.Y+a.Monitor.Height)
	}
	return size
}

// CoverResize scales img by a single factor so it covers width x height with no letterboxing,
// then center-crops the overflow. The result is exactly width x height.
// The crop window is taken from the source before resizing, so memory stays bounded by the
// target size whatever the source aspect ratio.
func CoverResize(img image.Image, width, height int, filter imaging.ResampleFilter) *image.NRGBA {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return &image.NRGBA{}
	}
	if srcW <= 0 || srcH <= 0 {
		return imaging.New(width, height, color.Black)
	}

	scale := math.Max(float64(width)/float64(srcW), float64(height)/float64(srcH))
	cropW := min(srcW, max(1, int(math.Round(float64(width)/scale))))
	cropH := min(srcH, max(1, int(math.Round(float64(height)/scale))))

	x0 := bounds.Min.X + (srcW-cropW)/2
	y0 := bounds.Min.Y + (srcH-cropH)/2
	cropped := imaging.Crop(img, image.Rect(x0, y0, x0+cropW, y0+cropH))
	return imaging.Resize(cropped, width, height, filter)
}

// openImage decodes a source file at full resolution.
func openImage(path string, autoOrient bool) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ImageOpenError{Path: path, Err: err}
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, &ImageOpenError{Path: path, Err: fmt.Errorf("%w: %v", ErrImageDecode, err)}
	}
	return img, nil
}

// tile is one fitted image and where it goes on the canvas.
type tile struct {
	img *image.NRGBA
	at  image.Point
}

// compose fits every assignment in parallel and overlays the results onto one canvas.
// scale shrinks the whole layout; preferThumbnails reads cached thumbnails when present.
func (e *Engine) compose(ctx context.Context, assignments []Assignment, scale float64, preferThumbnails bool) (*image.NRGBA, error) {
	if len(assignments) == 0 {
		return nil, ErrNoAssignments
	}
	size := CanvasSize(assignments)
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("empty canvas %dx%d", size.X, size.Y)
	}

	tiles := make([]tile, len(assignments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, a := range assignments {
		g.Go(func() error {
			rect := scaleRect(a.Monitor.Rect(), scale)
			if rect.Empty() {
				return nil
			}
			src, err := e.source(a.Path, preferThumbnails)
			if err != nil {
				return err
			}
			if err := checkContext(gctx); err != nil {
				return err
			}
			fitted, err := e.fit(gctx, src, rect.Dx(), rect.Dy())
			if err != nil {
				return err
			}
			tiles[i] = tile{img: fitted, at: rect.Min}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	canvasW := int(math.Round(float64(size.X) * scale))
	canvasH := int(math.Round(float64(size.Y) * scale))
	canvas := imaging.New(canvasW, canvasH, color.Black)
	for _, t := range tiles {
		if t.img == nil {
			continue
		}
		xdraw.Copy(canvas, t.at, t.img, t.img.Bounds(), xdraw.Src, nil)
	}
	log.Debugf("Compose: %d images onto %dx%d canvas", len(assignments), canvasW, canvasH)
	return canvas, nil
}

// source returns the image to fit for path, preferring a cached thumbnail when asked.
func (e *Engine) source(path string, preferThumbnails bool) (image.Image, error) {
	if preferThumbnails && e.cache != nil {
		if thumb, ok := e.cache.Load(path); ok {
			return thumb, nil
		}
	}
	return openImage(path, e.autoOrient)
}

// fit produces a width x height tile using the configured crop mode.
func (e *Engine) fit(ctx context.Context, img image.Image, width, height int) (*image.NRGBA, error) {
	if e.cropMode == CropSmart {
		cropped, err := e.smart.crop(ctx, img, width, height)
		if err == nil {
			return cropped, nil
		}
		if ctxErr := checkContext(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		log.Debugf("Compose: smart crop failed, using center crop: %v", err)
	}
	return CoverResize(img, width, height, e.filter), nil
}

// scaleRect scales both corners so adjacent rectangles still share an edge.
func scaleRect(r image.Rectangle, scale float64) image.Rectangle {
	if scale == 1 {
		return r
	}
	s := func(v int) int { return int(math.Round(float64(v) * scale)) }
	return image.Rect(s(r.Min.X), s(r.Min.Y), s(r.Max.X), s(r.Max.Y))
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
