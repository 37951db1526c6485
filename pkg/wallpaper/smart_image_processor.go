package wallpaper

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
)

// CropMode selects how a cover-resized image is cropped to its monitor.
type CropMode int

const (
	// CropCenter keeps the middle of the scaled image.
	CropCenter CropMode = iota
	// CropSmart lets smartcrop choose the most interesting window of the target aspect ratio.
	CropSmart
)

// ParseCropMode maps the crop_mode setting to a CropMode.
func ParseCropMode(s string) (CropMode, error) {
	switch strings.ToLower(s) {
	case "", "center":
		return CropCenter, nil
	case "smart":
		return CropSmart, nil
	default:
		return CropCenter, fmt.Errorf("unknown crop mode %q", s)
	}
}

func (m CropMode) String() string {
	if m == CropSmart {
		return "smart"
	}
	return "center"
}

// smartCropper crops with smartcrop and then resizes to the exact target.
type smartCropper struct {
	resampler imaging.ResampleFilter
}

// crop picks the best width:height window of img and scales it to width x height.
func (c *smartCropper) crop(ctx context.Context, img image.Image, width, height int) (*image.NRGBA, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r := &resizer{resampler: c.resampler}
	analyzer := smartcrop.NewAnalyzer(r)

	// FindBestCrop has no context; run it aside so cancellation is observed.
	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		topCrop, err := analyzer.FindBestCrop(img, width, height)
		resultChan <- cropResult{crop: topCrop, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return nil, fmt.Errorf("finding best crop: %w", result.err)
		}
		if result.crop.Empty() {
			return nil, fmt.Errorf("finding best crop: empty window")
		}
		cropped := imaging.Crop(img, result.crop)
		return imaging.Resize(cropped, width, height, c.resampler), nil
	}
}

// resizer implements the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}
