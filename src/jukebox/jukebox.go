package jukebox

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"spotit/src/filter"
	"spotit/src/filter/keyed"
	"spotit/src/library"
	"spotit/src/library/catalog"
	"spotit/src/player"
	"spotit/src/queue"
	"spotit/src/util"
)

var (
	// ErrInvalidIndex is returned when selecting a position that is not in
	// the queue.
	ErrInvalidIndex = player.ErrInvalidIndex

	// ErrNoTitle is returned when queueing a track without a title that could
	// not be completed.
	ErrNoTitle = errors.New("track has no title")
)

// CatalogEvent is emitted after the catalog has been (re)loaded.
type CatalogEvent struct {
	Genres int
	Tracks int
}

// A TrackInfoer looks up the details of the media behind a media id.
type TrackInfoer interface {
	TrackInfo(ctx context.Context, mediaID string) (library.Track, error)
}

// Options holds the optional collaborators of a Jukebox.
type Options struct {
	// Remote title search. Optional.
	Search *catalog.SearchClient
	// Completes tracks that are queued by URL only. Optional.
	Info TrackInfoer
}

// Jukebox is the single façade through which the queue and the playback
// session are controlled. It augments the session with a catalog and search.
type Jukebox struct {
	util.Emitter

	session *player.Session
	loader  catalog.Loader
	opts    Options

	catalogLock sync.RWMutex
	catalog     *library.Catalog
}

// NewJukebox creates a Jukebox. The catalog is empty until ReloadCatalog is
// called. Failures to load a catalog never surface, an empty catalog is used
// instead.
func NewJukebox(session *player.Session, loader catalog.Loader, opts Options) *Jukebox {
	return &Jukebox{
		session: session,
		loader:  catalog.Fallback{Loader: loader},
		opts:    opts,
		catalog: &library.Catalog{},
	}
}

// Session returns the playback session.
func (jb *Jukebox) Session() *player.Session {
	return jb.session
}

// Events returns the emitter of catalog events. Session events are published
// by SessionEvents.
func (jb *Jukebox) Events() *util.Emitter {
	return &jb.Emitter
}

// SessionEvents returns the emitter of the playback session.
func (jb *Jukebox) SessionEvents() *util.Emitter {
	return jb.session.Events()
}

// Status returns a snapshot of the playback session.
func (jb *Jukebox) Status() player.Status {
	return jb.session.Status()
}

// Queue returns the current queue.
func (jb *Jukebox) Queue() queue.Queue {
	return jb.session.Queue()
}

// PlayPause toggles between playing and paused. On an empty queue or a track
// that can not be played, nothing happens.
func (jb *Jukebox) PlayPause(ctx context.Context) {
	jb.session.Toggle(ctx)
}

// SetPlaying explicitly plays or pauses.
func (jb *Jukebox) SetPlaying(ctx context.Context, playing bool) {
	if playing {
		jb.session.Play(ctx)
	} else {
		jb.session.Pause(ctx)
	}
}

// Next selects the track after the selection, if any.
func (jb *Jukebox) Next(ctx context.Context) {
	jb.session.SelectRelative(ctx, 1)
}

// Previous selects the track before the selection, if any.
func (jb *Jukebox) Previous(ctx context.Context) {
	jb.session.SelectRelative(ctx, -1)
}

// Seek moves the playback position of the selection.
func (jb *Jukebox) Seek(ctx context.Context, t time.Duration) {
	jb.session.Seek(ctx, t)
}

// SetVolume sets the playback volume, 0 to 100.
func (jb *Jukebox) SetVolume(ctx context.Context, vol int) {
	jb.session.SetVolume(ctx, vol)
}

// Select selects a track by its position in the queue. If relative is set,
// the index is an offset to the current selection.
func (jb *Jukebox) Select(ctx context.Context, index int, relative bool) error {
	if relative {
		jb.session.SelectRelative(ctx, index)
		return nil
	}
	return jb.session.SelectIndex(ctx, index)
}

// InsertAtTop places a track at the top of the queue and plays it.
func (jb *Jukebox) InsertAtTop(ctx context.Context, track library.Track) error {
	track, err := jb.complete(ctx, track)
	if err != nil {
		return err
	}
	jb.session.InsertAtTop(ctx, track)
	return nil
}

// Append places a track at the bottom of the queue unless it is queued
// already.
func (jb *Jukebox) Append(ctx context.Context, track library.Track) error {
	track, err := jb.complete(ctx, track)
	if err != nil {
		return err
	}
	jb.session.Append(ctx, track)
	return nil
}

// Reorder moves the track at fromPos to toPos. Invalid positions are ignored.
func (jb *Jukebox) Reorder(ctx context.Context, fromPos, toPos int) {
	jb.session.Reorder(ctx, fromPos, toPos)
}

// complete fills in the details of a track that is about to be queued. Known
// tracks are taken from the catalog, tracks that only have a URL are looked
// up with the TrackInfoer.
func (jb *Jukebox) complete(ctx context.Context, track library.Track) (library.Track, error) {
	library.InterpolateMissingFields(&track)
	if track.Title != "" {
		if known, ok := jb.Catalog().Lookup(track.Identity()); ok && track.URL == "" {
			return known, nil
		}
		return track, nil
	}

	mediaID := player.MediaID(track.URL)
	if mediaID == "" || jb.opts.Info == nil {
		return library.Track{}, ErrNoTitle
	}
	info, err := jb.opts.Info.TrackInfo(ctx, mediaID)
	if err != nil {
		return library.Track{}, err
	}
	info.URL = track.URL
	if track.Genre != "" {
		info.Genre = track.Genre
	}
	if info.Title == "" {
		return library.Track{}, ErrNoTitle
	}
	return info, nil
}

// Catalog returns the most recently loaded catalog.
func (jb *Jukebox) Catalog() *library.Catalog {
	jb.catalogLock.RLock()
	defer jb.catalogLock.RUnlock()
	return jb.catalog
}

// ReloadCatalog loads the catalog again.
func (jb *Jukebox) ReloadCatalog(ctx context.Context) {
	cat, _ := jb.loader.Load(ctx)
	jb.catalogLock.Lock()
	jb.catalog = cat
	jb.catalogLock.Unlock()

	numTracks := len(cat.Tracks())
	log.WithField("genres", len(cat.Genres)).Infof("Loaded catalog with %d tracks", numTracks)
	jb.Emit(CatalogEvent{Genres: len(cat.Genres), Tracks: numTracks})
}

// SearchCatalog searches the catalog with a keyed query. The results are
// ordered by relevance.
func (jb *Jukebox) SearchCatalog(ctx context.Context, query string, untagged []string) ([]filter.SearchResult, error) {
	untagged = cleanFields(untagged)
	compiledQuery, err := keyed.CompileQuery(query, untagged)
	if err != nil {
		return nil, err
	}
	results, err := filter.Tracks(ctx, compiledQuery, jb.Catalog().Tracks())
	if err != nil {
		return nil, err
	}
	sort.Stable(filter.ByNumMatches(results))
	return results, nil
}

// SearchRemote looks up tracks by title with the remote search API.
func (jb *Jukebox) SearchRemote(ctx context.Context, title string) ([]library.Track, error) {
	if jb.opts.Search == nil {
		return nil, catalog.ErrNoSource
	}
	return jb.opts.Search.SearchByTitle(ctx, title)
}

func cleanFields(fields []string) []string {
	out := fields[:0:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
