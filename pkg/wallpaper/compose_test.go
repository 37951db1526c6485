package wallpaper

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/pkg/monitor"
	"github.com/dixieflatline76/nitrohydra/pkg/thumbcache"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func writeSolid(t *testing.T, dir, name string, width, height int, c color.NRGBA) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(imaging.New(width, height, c), path))
	return path
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func newTestEngine(t *testing.T, cache *thumbcache.Cache, installer Installer) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Workers = 2
	e, err := NewEngine(cfg, t.TempDir(), cache, installer)
	require.NoError(t, err)
	return e
}

func TestCanvasSize(t *testing.T) {
	assignments := []Assignment{
		{Path: "a", Monitor: monitor.Monitor{Width: 1920, Height: 1080}},
		{Path: "b", Monitor: monitor.Monitor{X: 1920, Width: 2560, Height: 1440}},
	}
	assert.Equal(t, image.Pt(4480, 1440), CanvasSize(assignments))

	stacked := []Assignment{
		{Monitor: monitor.Monitor{Width: 1920, Height: 1080}},
		{Monitor: monitor.Monitor{Y: 1080, Width: 1280, Height: 1024}},
	}
	assert.Equal(t, image.Pt(1920, 2104), CanvasSize(stacked))
	assert.Equal(t, image.Point{}, CanvasSize(nil))
}

func TestAssign(t *testing.T) {
	monitors := []monitor.Monitor{{Name: "L"}, {Name: "R"}, {Name: "X"}}
	got := Assign([]string{"left.png", "right.png"}, monitors)
	require.Len(t, got, 2)
	assert.Equal(t, "left.png", got[0].Path)
	assert.Equal(t, "L", got[0].Monitor.Name)
	assert.Equal(t, "R", got[1].Monitor.Name)
}

func TestCoverResize(t *testing.T) {
	targets := []image.Point{{1920, 1080}, {1080, 1920}, {333, 777}, {50, 50}}
	sources := []image.Point{{4000, 1000}, {1000, 4000}, {640, 480}, {10, 7}, {1920, 1080}}

	for _, target := range targets {
		for _, src := range sources {
			img := imaging.New(src.X, src.Y, red)
			out := CoverResize(img, target.X, target.Y, imaging.CatmullRom)
			require.Equal(t, target, out.Bounds().Size(), "source %v target %v", src, target)

			// No letterbox: every corner is covered by the source.
			b := out.Bounds()
			for _, p := range []image.Point{b.Min, {b.Max.X - 1, b.Min.Y}, {b.Min.X, b.Max.Y - 1}, b.Max.Sub(image.Pt(1, 1))} {
				c := nrgbaAt(out, p.X, p.Y)
				assert.Equal(t, uint8(255), c.A)
				assert.Greater(t, c.R, uint8(200), "source %v target %v at %v", src, target, p)
			}
		}
	}
}

func TestCoverResize_CenterCrop(t *testing.T) {
	// 400x100 onto 100x100: scale 1, overflow 300, crop offset 150.
	src := imaging.New(400, 100, blue)
	src = imaging.Paste(src, imaging.New(100, 100, green), image.Pt(150, 0))
	src = imaging.Paste(src, imaging.New(150, 100, red), image.Pt(250, 0))

	out := CoverResize(src, 100, 100, imaging.CatmullRom)
	require.Equal(t, image.Pt(100, 100), out.Bounds().Size())
	assert.Equal(t, green, nrgbaAt(out, 0, 0))
	assert.Equal(t, green, nrgbaAt(out, 99, 99))
}

func TestCoverResize_ExtremeAspect(t *testing.T) {
	// Scaling the whole 1x20000 strip to cover 192x108 would need a 192x3840000 buffer.
	src := imaging.New(1, 20000, red)
	src = imaging.Paste(src, imaging.New(1, 10, green), image.Pt(0, 9995))

	out := CoverResize(src, 192, 108, imaging.CatmullRom)
	require.Equal(t, image.Pt(192, 108), out.Bounds().Size())
	assert.Equal(t, green, nrgbaAt(out, 0, 0))
	assert.Equal(t, green, nrgbaAt(out, 191, 107))
}

func TestCoverResize_OffsetBounds(t *testing.T) {
	src := imaging.New(300, 100, red)
	src = imaging.Paste(src, imaging.New(100, 100, green), image.Pt(100, 0))
	sub := src.SubImage(image.Rect(50, 0, 250, 100))

	out := CoverResize(sub, 50, 50, imaging.Box)
	require.Equal(t, image.Pt(50, 50), out.Bounds().Size())
	assert.Equal(t, green, nrgbaAt(out, 25, 25))
}

func TestCoverResize_Degenerate(t *testing.T) {
	out := CoverResize(&image.NRGBA{}, 4, 3, imaging.Box)
	assert.Equal(t, image.Pt(4, 3), out.Bounds().Size())

	empty := CoverResize(imaging.New(4, 4, red), 0, 10, imaging.Box)
	assert.True(t, empty.Bounds().Empty())
}

func TestComposeCanvas(t *testing.T) {
	dir := t.TempDir()
	left := writeSolid(t, dir, "left.png", 300, 200, red)
	right := writeSolid(t, dir, "right.png", 100, 300, blue)
	e := newTestEngine(t, nil, nil)

	assignments := []Assignment{
		{Path: left, Monitor: monitor.Monitor{Name: "L", Width: 192, Height: 108}},
		{Path: right, Monitor: monitor.Monitor{Name: "R", X: 192, Width: 256, Height: 144}},
	}
	canvas, err := e.ComposeCanvas(context.Background(), assignments)
	require.NoError(t, err)

	assert.Equal(t, image.Pt(448, 144), canvas.Bounds().Size())
	assert.Equal(t, red, nrgbaAt(canvas, 10, 10))
	assert.Equal(t, red, nrgbaAt(canvas, 191, 107))
	assert.Equal(t, blue, nrgbaAt(canvas, 192, 0))
	assert.Equal(t, blue, nrgbaAt(canvas, 447, 143))
	assert.Equal(t, black, nrgbaAt(canvas, 10, 130), "area below the shorter monitor stays empty")
}

func TestComposeCanvas_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeSolid(t, dir, "good.png", 10, 10, red)
	corrupt := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(corrupt, []byte("definitely not a jpeg"), 0644))
	missing := filepath.Join(dir, "missing.png")
	e := newTestEngine(t, nil, nil)

	mon := func(x int) monitor.Monitor { return monitor.Monitor{X: x, Width: 16, Height: 9} }

	t.Run("Missing", func(t *testing.T) {
		_, err := e.ComposeCanvas(context.Background(), []Assignment{{good, mon(0)}, {missing, mon(16)}})
		var openErr *ImageOpenError
		require.ErrorAs(t, err, &openErr)
		assert.Equal(t, missing, openErr.Path)
		assert.Contains(t, err.Error(), missing)
	})

	t.Run("Corrupt", func(t *testing.T) {
		_, err := e.ComposeCanvas(context.Background(), []Assignment{{corrupt, mon(0)}, {good, mon(16)}})
		assert.ErrorIs(t, err, ErrImageDecode)
	})

	t.Run("NoAssignments", func(t *testing.T) {
		_, err := e.ComposeCanvas(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoAssignments)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.ComposeCanvas(ctx, []Assignment{{good, mon(0)}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestComposeCanvas_SmartCrop(t *testing.T) {
	dir := t.TempDir()
	src := writeSolid(t, dir, "src.png", 400, 400, red)
	cfg := config.Default()
	cfg.CropMode = "smart"
	e, err := NewEngine(cfg, t.TempDir(), nil, nil)
	require.NoError(t, err)

	canvas, err := e.ComposeCanvas(context.Background(), []Assignment{
		{src, monitor.Monitor{Width: 160, Height: 90}},
		{src, monitor.Monitor{X: 160, Width: 90, Height: 160}},
	})
	require.NoError(t, err)
	assert.Equal(t, image.Pt(250, 160), canvas.Bounds().Size())
	assert.Greater(t, nrgbaAt(canvas, 200, 150).R, uint8(200))
}

func TestComposePreview(t *testing.T) {
	dir := t.TempDir()
	left := writeSolid(t, dir, "left.png", 400, 300, red)
	right := writeSolid(t, dir, "right.png", 400, 300, red)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(left, past, past))

	cache := thumbcache.New(t.TempDir())
	cache.Save(left, imaging.New(64, 48, green))

	e := newTestEngine(t, cache, nil)
	e.previewSize = 224

	canvas, err := e.ComposePreview(context.Background(), []Assignment{
		{left, monitor.Monitor{Width: 1920, Height: 1080}},
		{right, monitor.Monitor{X: 1920, Width: 2560, Height: 1440}},
	})
	require.NoError(t, err)

	// 4480x1440 scaled by 224/4480 = 0.05.
	assert.Equal(t, image.Pt(224, 72), canvas.Bounds().Size())
	assert.Equal(t, green, nrgbaAt(canvas, 10, 10), "cached thumbnail used for preview")
	assert.Equal(t, red, nrgbaAt(canvas, 150, 60), "full-resolution fallback")
}

func TestPreviewScale(t *testing.T) {
	assert.Equal(t, 1.0, previewScale(image.Pt(800, 600), 1024))
	assert.InDelta(t, 0.5, previewScale(image.Pt(2048, 600), 1024), 1e-9)
	assert.InDelta(t, 0.25, previewScale(image.Pt(100, 4096), 1024), 1e-9)
}
