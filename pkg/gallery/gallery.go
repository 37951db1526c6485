// Package gallery scans a directory for images and maintains the thumbnail snapshot shown to the user.
package gallery

import (
	"image"
	"slices"
	"sort"
	"time"

	"github.com/dixieflatline76/nitrohydra/pkg/thumbcache"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

// State is the gallery's load state.
type State int

const (
	StateEmpty State = iota
	StateError
	StateLoaded
)

// ImageEntry is one thumbnail in the gallery.
type ImageEntry struct {
	Name         string // absolute source path, used to reopen at full resolution
	Thumbnail    image.Image
	OriginalSize image.Point
	Modified     time.Time
}

// Gallery holds the entries of the current directory, newest first.
// It is driven by a single polling goroutine.
type Gallery struct {
	state      State
	err        error
	entries    []ImageEntry
	loader     *Loader
	cache      *thumbcache.Cache
	opts       Options
	generation int
}

// New creates an empty gallery.
func New(cache *thumbcache.Cache, opts Options) *Gallery {
	return &Gallery{cache: cache, opts: opts}
}

// Load replaces the snapshot with a fresh scan of dir, cancelling any scan in progress.
func (g *Gallery) Load(dir string) {
	if g.loader != nil {
		g.loader.Close()
	}
	g.loader = StartLoader(dir, g.cache, g.opts)
	g.state = StateLoaded
	g.err = nil
	g.entries = nil
	g.generation++
}

// Poll drains every available scan event. It reports whether the snapshot changed.
func (g *Gallery) Poll() bool {
	if g.loader == nil {
		return false
	}
	changed := false
	for {
		ev := g.loader.Poll()
		switch ev.Kind {
		case EventImage:
			g.insert(ImageEntry{
				Name:         ev.Name,
				Thumbnail:    ev.Thumbnail,
				OriginalSize: ev.Size,
				Modified:     ev.Modified,
			})
			changed = true
		case EventError:
			log.Printf("Gallery: %v", ev.Err)
			g.state = StateError
			g.err = ev.Err
			g.entries = nil
			g.loader.Close()
			g.loader = nil
			return true
		case EventDone:
			g.loader = nil
			return changed
		default:
			return changed
		}
	}
}

// insert places e after every entry at least as new, keeping the newest-first order.
func (g *Gallery) insert(e ImageEntry) {
	i := sort.Search(len(g.entries), func(i int) bool {
		return g.entries[i].Modified.Before(e.Modified)
	})
	g.entries = slices.Insert(g.entries, i, e)
}

// Close cancels any scan in progress.
func (g *Gallery) Close() {
	if g.loader != nil {
		g.loader.Close()
		g.loader = nil
	}
}

// IsLoading reports whether a scan is still producing entries.
func (g *Gallery) IsLoading() bool {
	return g.loader != nil
}

// State returns the load state.
func (g *Gallery) State() State {
	return g.state
}

// Err returns the listing error when State is StateError.
func (g *Gallery) Err() error {
	return g.err
}

// Entries returns the loaded entries, or nil unless State is StateLoaded.
func (g *Gallery) Entries() []ImageEntry {
	if g.state != StateLoaded {
		return nil
	}
	return g.entries
}

// Generation increments on every Load, so holders of indices can detect a reload.
func (g *Gallery) Generation() int {
	return g.generation
}
