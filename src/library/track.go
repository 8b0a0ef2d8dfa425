package library

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var interpArtistTitleInTitle = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)

// Track holds all information associated with a single playable item.
//
// Only the title and artist take part in the identity of a track, everything
// else is for display.
type Track struct {
	ID        string `json:"_id,omitempty" yaml:"id,omitempty"`
	Title     string `json:"title" yaml:"title"`
	Artist    string `json:"artist,omitempty" yaml:"artist,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	Duration  string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Lyrics    string `json:"lyrics,omitempty" yaml:"lyrics,omitempty"`
	Image     string `json:"image,omitempty" yaml:"image,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	CreatedAt string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	GenreID   string `json:"genreId,omitempty" yaml:"genreId,omitempty"`
	Genre     string `json:"genre,omitempty" yaml:"genre,omitempty"`
}

// Identity is the key by which tracks are compared. Two tracks with the same
// title and artist are the same track.
type Identity struct {
	Title  string
	Artist string
}

// Identity returns the identity of the track.
func (track Track) Identity() Identity {
	return Identity{Title: track.Title, Artist: track.Artist}
}

// Same reports whether both tracks share the same identity.
func (track Track) Same(other Track) bool {
	return track.Identity() == other.Identity()
}

// Attr gets an attribute of a track by its name. Accepted names are:
//   - "id"
//   - "title"
//   - "artist"
//   - "url"
//   - "duration"
//   - "lyrics"
//   - "genre"
func (track *Track) Attr(attr string) interface{} {
	switch attr {
	case "id":
		return track.ID
	case "title":
		return track.Title
	case "artist":
		return track.Artist
	case "url":
		return track.URL
	case "duration":
		return track.Duration
	case "lyrics":
		return track.Lyrics
	case "genre":
		return track.Genre
	}
	return nil
}

func (track Track) String() string {
	if track.Artist == "" {
		return track.Title
	}
	return fmt.Sprintf("%s - %s", track.Artist, track.Title)
}

// InterpolateMissingFields fills in the artist from an "<artist> - <title>"
// formatted title when the artist is unknown.
//
// Loaders should use this to homogenize the catalog before the tracks are
// used as identities.
func InterpolateMissingFields(track *Track) {
	track.Title = strings.TrimSpace(track.Title)
	track.Artist = strings.TrimSpace(track.Artist)
	if track.Artist != "" || track.Title == "" {
		return
	}
	if match := interpArtistTitleInTitle.FindStringSubmatch(track.Title); match != nil {
		track.Artist, track.Title = match[1], match[2]
	}
}

// ParseDuration parses a display duration in the form of "m:ss" or "h:mm:ss".
func ParseDuration(str string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(str), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed duration %q", str)
	}
	var d time.Duration
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed duration %q", str)
		}
		d = d*60 + time.Duration(n)
	}
	return d * time.Second, nil
}

// FormatDuration formats a duration for display, the inverse of
// ParseDuration.
func FormatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
