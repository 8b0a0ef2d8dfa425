package netmedia

import (
	"testing"
)

func TestMediaInfoTrack(t *testing.T) {
	info := mediaInfo{
		Title:     "Queen - Bohemian Rhapsody (Official Video)",
		Uploader:  "Queen Official",
		Thumbnail: "https://i.ytimg.com/vi/fJ9rUzIMcZQ/hq.jpg",
		Duration:  355,
	}
	track := info.track("fJ9rUzIMcZQ")
	if track.Artist != "Queen" || track.Title != "Bohemian Rhapsody (Official Video)" {
		t.Fatalf("Unexpected artist and title: %q - %q", track.Artist, track.Title)
	}
	if track.Duration != "5:55" {
		t.Fatalf("Unexpected duration: %q", track.Duration)
	}
	if track.URL != "https://www.youtube.com/watch?v=fJ9rUzIMcZQ" {
		t.Fatalf("Unexpected url: %q", track.URL)
	}

	info = mediaInfo{Title: "Live Session", Uploader: "Some Channel"}
	if track := info.track("x"); track.Artist != "Some Channel" {
		t.Fatalf("Uploader was not used as artist: %q", track.Artist)
	}

	info = mediaInfo{Title: "Whatever", Artist: "Deep Purple", Track: "Smoke on the Water"}
	if track := info.track("x"); track.Artist != "Deep Purple" || track.Title != "Smoke on the Water" {
		t.Fatalf("Unexpected artist and title: %q - %q", track.Artist, track.Title)
	}
}
