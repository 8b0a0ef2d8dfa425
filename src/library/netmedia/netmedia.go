// Package netmedia resolves media ids into audio streams using youtube-dl or
// one of its forks.
package netmedia

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"

	"spotit/src/library"
)

var downloaders = []string{"yt-dlp", "youtube-dl"}

// A Resolver looks up the stream of a media id.
type Resolver struct {
	command string
}

// NewResolver creates a Resolver using the first downloader found in $PATH.
func NewResolver() (*Resolver, error) {
	for _, cmd := range downloaders {
		if _, err := exec.LookPath(cmd); err == nil {
			log.Debugf("Using %s to resolve media", cmd)
			return &Resolver{command: cmd}, nil
		}
	}
	return nil, fmt.Errorf("netmedia not available: none of %v found", downloaders)
}

// WatchURL returns the canonical page URL of a media id.
func WatchURL(mediaID string) string {
	return "https://www.youtube.com/watch?v=" + mediaID
}

// StreamURL returns a URL from which the audio of the media can be streamed.
// The URL is only valid for a limited amount of time.
func (r *Resolver) StreamURL(ctx context.Context, mediaID string) (string, error) {
	out, err := exec.CommandContext(ctx, r.command, "--get-url", "--format", "bestaudio/best", WatchURL(mediaID)).Output()
	if err != nil {
		return "", fmt.Errorf("could not resolve %q: %w", mediaID, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if !scanner.Scan() || scanner.Text() == "" {
		return "", fmt.Errorf("could not resolve %q: no url in output", mediaID)
	}
	return scanner.Text(), nil
}

type mediaInfo struct {
	Title     string  `json:"title"`
	Uploader  string  `json:"uploader"`
	Artist    string  `json:"artist"`
	Track     string  `json:"track"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
}

// TrackInfo reads the metadata of the media into a track.
func (r *Resolver) TrackInfo(ctx context.Context, mediaID string) (library.Track, error) {
	infoJSON, err := exec.CommandContext(ctx, r.command, "--dump-json", "--no-playlist", WatchURL(mediaID)).Output()
	if err != nil {
		return library.Track{}, fmt.Errorf("could not read info of %q: %w", mediaID, err)
	}
	var info mediaInfo
	if err := json.Unmarshal(infoJSON, &info); err != nil {
		return library.Track{}, err
	}
	return info.track(mediaID), nil
}

func (info mediaInfo) track(mediaID string) library.Track {
	track := library.Track{
		Title:    info.Title,
		Artist:   info.Artist,
		URL:      WatchURL(mediaID),
		ImageURL: info.Thumbnail,
	}
	if info.Track != "" && info.Artist != "" {
		track.Title = info.Track
	}
	if info.Duration > 0 {
		track.Duration = library.FormatDuration(time.Duration(info.Duration * float64(time.Second)))
	}
	library.InterpolateMissingFields(&track)
	if track.Artist == "" {
		track.Artist = info.Uploader
	}
	return track
}
