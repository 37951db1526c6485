// Package session ties the gallery, the selection, the detected monitors and the apply and preview
// jobs together behind the operations a front end drives once per frame.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/dixieflatline76/nitrohydra/pkg/gallery"
	"github.com/dixieflatline76/nitrohydra/pkg/job"
	"github.com/dixieflatline76/nitrohydra/pkg/monitor"
	"github.com/dixieflatline76/nitrohydra/pkg/selection"
	"github.com/dixieflatline76/nitrohydra/pkg/wallpaper"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

var (
	// ErrSelectionIncomplete is returned when fewer than two images are selected.
	ErrSelectionIncomplete = errors.New("select two images first")
	// ErrNotEnoughMonitors is returned when fewer than two monitors are known.
	ErrNotEnoughMonitors = errors.New("need at least 2 monitors")
)

// Composer is the part of the wallpaper engine a session needs.
type Composer interface {
	Apply(ctx context.Context, assignments []wallpaper.Assignment, progress wallpaper.ProgressFunc) error
	ComposePreview(ctx context.Context, assignments []wallpaper.Assignment) (*image.NRGBA, error)
}

// MonitorDetector reports the current monitor layout.
type MonitorDetector interface {
	Detect(ctx context.Context) ([]monitor.Monitor, error)
}

// Session is the interactive state of one user. It is driven by a single goroutine.
type Session struct {
	path      string
	gallery   *gallery.Gallery
	selection selection.Selection

	monitors    []monitor.Monitor
	monitorsErr error

	apply   *job.Job[struct{}]
	preview *job.Job[*image.NRGBA]

	// previewPaths identifies the pair behind the current preview by source path, since
	// gallery indices shift while a scan is still sorting arrivals in.
	previewPaths    [2]string
	hasPreviewPaths bool
	previewImage    *image.NRGBA

	composer Composer
	detector MonitorDetector
}

// New creates a session over g. Monitors are unknown until DetectMonitors is called.
func New(g *gallery.Gallery, composer Composer, detector MonitorDetector) *Session {
	return &Session{
		gallery:  g,
		composer: composer,
		detector: detector,
		apply:    job.New[struct{}]("apply"),
		preview:  job.New[*image.NRGBA]("preview"),
	}
}

// Path returns the gallery directory.
func (s *Session) Path() string {
	return s.path
}

// SetPath changes the gallery directory. It takes effect on the next LoadImages.
func (s *Session) SetPath(path string) {
	s.path = path
}

// DetectMonitors refreshes the monitor layout. The error is also kept and returned by Monitors.
func (s *Session) DetectMonitors(ctx context.Context) error {
	s.monitors, s.monitorsErr = s.detector.Detect(ctx)
	if s.monitorsErr != nil {
		s.monitors = nil
		log.Printf("Session: monitor detection failed: %v", s.monitorsErr)
		return s.monitorsErr
	}
	log.Debugf("Session: %d monitors detected", len(s.monitors))
	return nil
}

// Monitors returns the last detection result.
func (s *Session) Monitors() ([]monitor.Monitor, error) {
	return s.monitors, s.monitorsErr
}

// LoadImages rescans the gallery directory and clears the selection.
func (s *Session) LoadImages() {
	s.gallery.Load(s.path)
	s.selection.Clear()
}

// HandleImageClick forgets the last apply outcome and feeds the click to the selection.
func (s *Session) HandleImageClick(index int, shift bool) {
	s.apply.ClearStatus()
	s.selection.Click(index, shift)
}

// Selection returns the current selection.
func (s *Session) Selection() *selection.Selection {
	return &s.selection
}

// Gallery returns the gallery snapshot.
func (s *Session) Gallery() *gallery.Gallery {
	return s.gallery
}

// ApplyJob exposes the apply job's progress and outcome.
func (s *Session) ApplyJob() *job.Job[struct{}] {
	return s.apply
}

// PreviewImage returns the last successfully composed preview, or nil.
func (s *Session) PreviewImage() *image.NRGBA {
	return s.previewImage
}

// CanAct reports whether a preview or an apply can be started.
func (s *Session) CanAct() bool {
	return s.selection.Len() == 2 && s.monitorsErr == nil && len(s.monitors) >= 2
}

// Assignments pairs the selected images with the monitors, left to right.
func (s *Session) Assignments() ([]wallpaper.Assignment, error) {
	if s.monitorsErr != nil {
		return nil, s.monitorsErr
	}
	if len(s.monitors) < 2 {
		return nil, fmt.Errorf("%w, found %d", ErrNotEnoughMonitors, len(s.monitors))
	}
	pair, ok := s.selection.Pair()
	if !ok {
		return nil, ErrSelectionIncomplete
	}

	entries := s.gallery.Entries()
	paths := make([]string, 0, len(pair))
	for _, idx := range pair {
		if idx < 0 || idx >= len(entries) {
			return nil, fmt.Errorf("selected image %d is no longer in the gallery", idx)
		}
		paths = append(paths, entries[idx].Name)
	}
	return wallpaper.Assign(paths, s.monitors), nil
}

// Apply starts composing and installing the selected pair.
// It returns job.ErrRunning while a previous apply is still in flight.
func (s *Session) Apply() error {
	if s.apply.IsRunning() {
		return job.ErrRunning
	}
	assignments, err := s.Assignments()
	if err != nil {
		return err
	}
	return s.apply.Start(func(ctx context.Context, progress job.ProgressFunc) (struct{}, error) {
		return struct{}{}, s.composer.Apply(ctx, assignments, wallpaper.ProgressFunc(progress))
	})
}

// AutoPreview keeps the preview in step with the selection. A preview is started once per pair of
// selected images, identified by path; when the selection no longer allows one, the preview is dropped.
func (s *Session) AutoPreview() {
	if !s.CanAct() {
		if s.hasPreviewPaths {
			s.clearPreview()
		}
		return
	}
	if s.preview.IsRunning() {
		return
	}

	assignments, err := s.Assignments()
	if err != nil {
		log.Debugf("Session: preview skipped: %v", err)
		return
	}
	paths := [2]string{assignments[0].Path, assignments[1].Path}
	if s.hasPreviewPaths && s.previewPaths == paths {
		return
	}
	if err := s.preview.Start(func(ctx context.Context, _ job.ProgressFunc) (*image.NRGBA, error) {
		return s.composer.ComposePreview(ctx, assignments)
	}); err != nil {
		return
	}
	s.previewPaths = paths
	s.hasPreviewPaths = true
}

func (s *Session) clearPreview() {
	s.preview.Abandon()
	s.preview.ClearStatus()
	s.previewImage = nil
	s.hasPreviewPaths = false
}

// Tick polls the gallery and both jobs once, then refreshes the preview. It never blocks and
// reports whether anything visible changed.
func (s *Session) Tick() bool {
	changed := s.gallery.Poll()

	if s.apply.Poll() {
		changed = true
	}

	if s.preview.Poll() {
		changed = true
		if res, ok := s.preview.Status(); ok {
			if res.Err != nil {
				log.Printf("Session: preview failed: %v", res.Err)
			} else {
				s.previewImage = res.Value
			}
		}
	}

	s.AutoPreview()
	return changed
}

// Close stops background work owned by the session.
func (s *Session) Close() {
	s.gallery.Close()
	s.preview.Abandon()
	s.apply.Abandon()
}
