package gallery

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/pkg/thumbcache"
	"github.com/dixieflatline76/nitrohydra/util"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

// resultBuffer bounds how far decoding may run ahead of the poller.
const resultBuffer = 32

// EventKind identifies what a Poll observed.
type EventKind int

const (
	// EventPending means no result is available yet.
	EventPending EventKind = iota
	// EventImage carries one decoded thumbnail.
	EventImage
	// EventError is the sole terminal event of a scan whose directory could not be listed.
	EventError
	// EventDone means every file has been attempted, or the loader was closed.
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventPending:
		return "pending"
	case EventImage:
		return "image"
	case EventError:
		return "error"
	case EventDone:
		return "done"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a single observation of a running scan.
type Event struct {
	Kind      EventKind
	Modified  time.Time   // source file modification time
	Name      string      // absolute source path
	Thumbnail image.Image // bounded to Options.ThumbnailSize
	Size      image.Point // original dimensions
	Err       error
}

// Options controls a scan.
type Options struct {
	ThumbnailSize int
	Workers       int
	Extensions    []string
	AutoOrient    bool
	Filter        imaging.ResampleFilter
}

// OptionsFromConfig builds scan options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	filter, err := cfg.Filter()
	if err != nil {
		filter = imaging.CatmullRom
	}
	return Options{
		ThumbnailSize: cfg.ThumbnailSize,
		Workers:       cfg.WorkerCount(),
		Extensions:    cfg.Extensions,
		AutoOrient:    cfg.AutoOrient,
		Filter:        filter,
	}
}

// Stats counts what a scan did so far.
type Stats struct {
	Found     util.SafeCounter
	Decoded   util.SafeCounter
	CacheHits util.SafeCounter
	Failed    util.SafeCounter
}

// Loader scans a directory in the background and streams thumbnails to a poller.
// Poll and Close must be called from the same goroutine.
type Loader struct {
	results   chan Event
	cancelled *util.SafeFlag
	cancel    context.CancelFunc
	stats     *Stats
	progress  *rate.Sometimes
	finished  bool
}

// StartLoader starts scanning dir. Thumbnails are read from and written back to cache; cache may be nil.
func StartLoader(dir string, cache *thumbcache.Cache, opts Options) *Loader {
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = config.DefaultThumbnailSize
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = config.DefaultExtensions
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		results:   make(chan Event, resultBuffer),
		cancelled: util.NewSafeBool(),
		cancel:    cancel,
		stats:     &Stats{},
		progress:  &rate.Sometimes{First: 1, Interval: 2 * time.Second},
	}
	go l.run(ctx, dir, cache, opts)
	return l
}

// Poll returns the next available event without blocking.
func (l *Loader) Poll() Event {
	if l.finished {
		return Event{Kind: EventDone}
	}
	select {
	case ev, ok := <-l.results:
		if !ok {
			l.finished = true
			return Event{Kind: EventDone}
		}
		return ev
	default:
		return Event{Kind: EventPending}
	}
}

// Close cancels the scan. Files not yet started are skipped, decodes in flight finish and are discarded.
// Subsequent polls report EventDone.
func (l *Loader) Close() {
	if l.cancelled.Value() {
		return
	}
	l.cancelled.Set(true)
	l.cancel()
	l.finished = true
}

// Stats returns the scan counters.
func (l *Loader) Stats() *Stats {
	return l.stats
}

func (l *Loader) run(ctx context.Context, dir string, cache *thumbcache.Cache, opts Options) {
	defer close(l.results)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Pipeline: scan of %s crashed: %v", dir, r)
			l.send(ctx, Event{Kind: EventError, Err: fmt.Errorf("scan crashed: %v", r)})
		}
	}()

	paths, err := ScanImages(dir, opts.Extensions)
	if err != nil {
		log.Printf("Pipeline: %v", err)
		l.send(ctx, Event{Kind: EventError, Err: err})
		return
	}
	l.stats.Found.Add(len(paths))
	log.Debugf("Pipeline: found %d images in %s", len(paths), dir)

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for _, path := range paths {
		if l.cancelled.Value() {
			break
		}
		g.Go(func() error {
			if l.cancelled.Value() {
				return nil
			}
			ev, err := processFile(path, cache, opts, l.stats)
			if err != nil {
				l.stats.Failed.Increment()
				log.Debugf("Pipeline: skipping %s: %v", path, err)
				return nil
			}
			done := l.stats.Decoded.Increment()
			l.progress.Do(func() {
				log.Debugf("Pipeline: %d/%d images ready", done, len(paths))
			})
			l.send(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("Pipeline: scanned %s: %d images, %d from cache, %d skipped",
		dir, l.stats.Decoded.Value(), l.stats.CacheHits.Value(), l.stats.Failed.Value())
}

// send delivers ev unless the loader was closed.
func (l *Loader) send(ctx context.Context, ev Event) bool {
	select {
	case l.results <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// processFile produces the event for one source file. Decoder panics are reported as errors.
func processFile(path string, cache *thumbcache.Cache, opts Options, stats *Stats) (ev Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoding %s: %v", path, r)
		}
	}()

	modified := time.Unix(0, 0)
	if info, statErr := os.Stat(path); statErr == nil {
		modified = info.ModTime()
	}

	size, err := imageDimensions(path)
	if err != nil {
		return Event{}, fmt.Errorf("reading dimensions: %w", err)
	}

	var thumb image.Image
	if cache != nil {
		if cached, ok := cache.Load(path); ok {
			thumb = cached
			stats.CacheHits.Increment()
		}
	}
	if thumb == nil {
		img, err := imaging.Open(path, imaging.AutoOrientation(opts.AutoOrient))
		if err != nil {
			return Event{}, fmt.Errorf("decoding: %w", err)
		}
		thumb = imaging.Fit(img, opts.ThumbnailSize, opts.ThumbnailSize, opts.Filter)
		if cache != nil {
			cache.Save(path, thumb)
		}
	}

	return Event{
		Kind:      EventImage,
		Modified:  modified,
		Name:      path,
		Thumbnail: thumb,
		Size:      size,
	}, nil
}
