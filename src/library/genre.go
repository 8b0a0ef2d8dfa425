package library

import (
	"github.com/samber/lo"
)

// DisplayType tells the rendering layer how to present a genre.
type DisplayType string

const (
	DisplaySlider             DisplayType = "slider"
	DisplayCircles            DisplayType = "circles"
	DisplayRadio              DisplayType = "radio"
	DisplaySearchResults      DisplayType = "searchResults"
	DisplayRecommended        DisplayType = "recommended"
	DisplayArtistRadio        DisplayType = "artistRadio"
	DisplayDailyMix           DisplayType = "dailyMix"
	DisplayTrending           DisplayType = "trending"
	DisplayDiscoverWeekly     DisplayType = "discoverWeekly"
	DisplayRecommendedArtists DisplayType = "recommendedArtists"
	DisplayRadioOfTheDay      DisplayType = "radioOfTheDay"
	DisplayTopCharts          DisplayType = "topCharts"
	DisplayThrowbackHits      DisplayType = "throwbackHits"
)

var displayTypes = []DisplayType{
	DisplaySlider,
	DisplayCircles,
	DisplayRadio,
	DisplaySearchResults,
	DisplayRecommended,
	DisplayArtistRadio,
	DisplayDailyMix,
	DisplayTrending,
	DisplayDiscoverWeekly,
	DisplayRecommendedArtists,
	DisplayRadioOfTheDay,
	DisplayTopCharts,
	DisplayThrowbackHits,
}

// Valid reports whether the display type is known.
func (dt DisplayType) Valid() bool {
	return lo.Contains(displayTypes, dt)
}

// A Genre is a named, ordered group of tracks.
type Genre struct {
	ID          string      `json:"_id,omitempty" yaml:"id,omitempty"`
	Name        string      `json:"genre" yaml:"genre"`
	DisplayType DisplayType `json:"displayType" yaml:"displayType"`
	Priority    int         `json:"priority,omitempty" yaml:"priority,omitempty"`
	CreatedAt   string      `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Tracks      []Track     `json:"songs" yaml:"songs"`
}

// Catalog is the browsable collection of genres.
type Catalog struct {
	Logo   string  `json:"logo,omitempty" yaml:"logo,omitempty"`
	Genres []Genre `json:"genres" yaml:"genres"`
}

// Tracks returns the tracks of all genres in order. A track that appears in
// multiple genres is only returned once.
func (catalog *Catalog) Tracks() []Track {
	if catalog == nil {
		return nil
	}
	all := lo.FlatMap(catalog.Genres, func(genre Genre, _ int) []Track {
		return genre.Tracks
	})
	return lo.UniqBy(all, func(track Track) Identity {
		return track.Identity()
	})
}

// Lookup finds a track by its identity.
func (catalog *Catalog) Lookup(id Identity) (Track, bool) {
	return lo.Find(catalog.Tracks(), func(track Track) bool {
		return track.Identity() == id
	})
}
