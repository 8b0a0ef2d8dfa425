// Package catalog loads the browsable catalog of genres and tracks.
package catalog

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"spotit/src/library"
)

// ErrNoSource is returned when a loader has nothing to load from.
var ErrNoSource = errors.New("no catalog source configured")

const unknownGenre = "unknown genre"

// A Loader produces a catalog.
type Loader interface {
	Load(ctx context.Context) (*library.Catalog, error)
}

// Fallback wraps a loader so that failures result in an empty catalog rather
// than an error.
type Fallback struct {
	Loader Loader
}

// Load implements the Loader interface. The returned error is always nil.
func (fb Fallback) Load(ctx context.Context) (*library.Catalog, error) {
	if fb.Loader == nil {
		return &library.Catalog{}, nil
	}
	catalog, err := fb.Loader.Load(ctx)
	if err != nil {
		log.Warnf("Could not load catalog, continuing with an empty one: %v", err)
		return &library.Catalog{}, nil
	}
	return catalog, nil
}

// Static is a Loader that always returns the same catalog.
type Static library.Catalog

// Load implements the Loader interface.
func (st *Static) Load(ctx context.Context) (*library.Catalog, error) {
	catalog := library.Catalog(*st)
	return &catalog, nil
}

func normalize(catalog *library.Catalog) {
	for i := range catalog.Genres {
		genre := &catalog.Genres[i]
		if genre.Name == "" {
			genre.Name = unknownGenre
		}
		if !genre.DisplayType.Valid() {
			genre.DisplayType = library.DisplaySlider
		}
		for j := range genre.Tracks {
			track := &genre.Tracks[j]
			library.InterpolateMissingFields(track)
			if track.ID == "" {
				track.ID = track.Title
			}
			if track.Genre == "" {
				track.Genre = genre.Name
			}
			if track.GenreID == "" {
				track.GenreID = genre.ID
			}
		}
	}
}
