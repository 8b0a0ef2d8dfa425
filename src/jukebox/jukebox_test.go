package jukebox

import (
	"context"
	"errors"
	"testing"
	"time"

	"spotit/src/library"
	"spotit/src/library/catalog"
	"spotit/src/player"
	"spotit/src/util"
)

var testCatalog = catalog.Static{
	Genres: []library.Genre{
		{
			Name:        "Classic Rock",
			DisplayType: library.DisplaySlider,
			Tracks: []library.Track{
				{Title: "Bohemian Rhapsody", Artist: "Queen", URL: "https://www.youtube.com/watch?v=aaa", Duration: "5:55", Genre: "Classic Rock"},
				{Title: "Stairway to Heaven", Artist: "Led Zeppelin", URL: "https://youtu.be/bbb", Duration: "8:02", Genre: "Classic Rock"},
			},
		},
		{
			Name:        "Hard Rock",
			DisplayType: library.DisplayCircles,
			Tracks: []library.Track{
				{Title: "Smoke on the Water", Artist: "Deep Purple", URL: "https://youtu.be/ccc", Duration: "5:40", Genre: "Hard Rock"},
				{Title: "Bohemian Rhapsody", Artist: "Queen", URL: "https://www.youtube.com/watch?v=aaa", Duration: "5:55", Genre: "Hard Rock"},
			},
		},
	},
}

type staticInfo map[string]library.Track

func (si staticInfo) TrackInfo(ctx context.Context, mediaID string) (library.Track, error) {
	track, ok := si[mediaID]
	if !ok {
		return library.Track{}, errors.New("not found")
	}
	return track, nil
}

func newTestJukebox(t *testing.T, seed ...library.Track) (*Jukebox, *player.DummyBackend) {
	t.Helper()
	clock := &util.ManualClock{}
	backend := &player.DummyBackend{Clock: clock, Now: clock.Now}
	session := player.NewSession(backend, player.Config{Clock: clock}, seed...)
	t.Cleanup(func() { session.Close() })
	jb := NewJukebox(session, &testCatalog, Options{
		Info: staticInfo{"ddd": {Title: "Sweet Child O' Mine", Artist: "Guns N' Roses"}},
	})
	jb.ReloadCatalog(context.Background())
	return jb, backend
}

func TestSafeIdle(t *testing.T) {
	ctx := context.Background()
	jb, backend := newTestJukebox(t)

	jb.PlayPause(ctx)
	jb.Next(ctx)
	jb.Previous(ctx)
	jb.Seek(ctx, time.Second*10)
	jb.SetVolume(ctx, 10)
	jb.Reorder(ctx, 0, 1)
	if err := jb.Select(ctx, 1, true); err != nil {
		t.Fatal(err)
	}

	if err := jb.Select(ctx, 0, false); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n := len(backend.Devices()); n != 0 {
		t.Fatalf("No device should be bound, got %d", n)
	}
	if status := jb.Status(); status.State != player.PlayStateUnbound || status.Index != -1 {
		t.Fatalf("Unexpected status: %#v", status)
	}
}

func TestTransport(t *testing.T) {
	ctx := context.Background()
	tracks := testCatalog.Genres[0].Tracks
	jb, backend := newTestJukebox(t, append(tracks, testCatalog.Genres[1].Tracks[0])...)

	if err := jb.Select(ctx, 0, false); err != nil {
		t.Fatal(err)
	}
	backend.Last().Ready()
	if st := jb.Status().State; st != player.PlayStatePlaying {
		t.Fatalf("Unexpected state: %v", st)
	}

	jb.PlayPause(ctx)
	if st := jb.Status().State; st != player.PlayStatePaused {
		t.Fatalf("Unexpected state: %v", st)
	}
	jb.SetPlaying(ctx, true)
	if st := jb.Status().State; st != player.PlayStatePlaying {
		t.Fatalf("Unexpected state: %v", st)
	}

	jb.Next(ctx)
	if status := jb.Status(); status.Index != 1 {
		t.Fatalf("Next did not advance: %d", status.Index)
	}
	if err := jb.Select(ctx, 1, true); err != nil {
		t.Fatal(err)
	}
	if status := jb.Status(); status.Index != 2 {
		t.Fatalf("Relative select did not advance: %d", status.Index)
	}
	jb.Next(ctx)
	if status := jb.Status(); status.Index != 2 {
		t.Fatalf("Next past the end should do nothing: %d", status.Index)
	}
	jb.Previous(ctx)
	if status := jb.Status(); status.Index != 1 {
		t.Fatalf("Previous did not go back: %d", status.Index)
	}

	jb.SetVolume(ctx, 150)
	if vol := jb.Status().Volume; vol != 100 {
		t.Fatalf("Volume was not clamped: %d", vol)
	}
}

func TestInsertCompletesTracks(t *testing.T) {
	ctx := context.Background()
	jb, _ := newTestJukebox(t)

	if err := jb.InsertAtTop(ctx, library.Track{Title: "Smoke on the Water", Artist: "Deep Purple"}); err != nil {
		t.Fatal(err)
	}
	first, _ := jb.Queue().At(0)
	if first.URL != "https://youtu.be/ccc" {
		t.Fatalf("Track was not completed from the catalog: %#v", first)
	}

	if err := jb.Append(ctx, library.Track{URL: "https://youtu.be/ddd"}); err != nil {
		t.Fatal(err)
	}
	second, ok := jb.Queue().At(1)
	if !ok || second.Title != "Sweet Child O' Mine" || second.URL != "https://youtu.be/ddd" {
		t.Fatalf("Track was not completed from its media: %#v", second)
	}

	if err := jb.Append(ctx, library.Track{URL: "https://example.com/song.mp3"}); !errors.Is(err, ErrNoTitle) {
		t.Fatalf("Unexpected error: %v", err)
	}
	if l := jb.Queue().Len(); l != 2 {
		t.Fatalf("Unexpected queue length: %d", l)
	}

	// The head is selected after inserting at the top.
	if err := jb.InsertAtTop(ctx, library.Track{Title: "Queen - Bohemian Rhapsody"}); err != nil {
		t.Fatal(err)
	}
	status := jb.Status()
	if status.Index != 0 || status.Selection.Title != "Bohemian Rhapsody" || status.Selection.Artist != "Queen" {
		t.Fatalf("Unexpected selection: %#v", status.Selection)
	}
}

func TestCatalog(t *testing.T) {
	jb, _ := newTestJukebox(t)
	cat := jb.Catalog()
	if len(cat.Genres) != 2 {
		t.Fatalf("Unexpected genres: %d", len(cat.Genres))
	}
	if n := len(cat.Tracks()); n != 3 {
		t.Fatalf("Tracks should be deduplicated across genres, got %d", n)
	}
}

func TestReloadCatalogFailure(t *testing.T) {
	clock := &util.ManualClock{}
	session := player.NewSession(&player.DummyBackend{Clock: clock}, player.Config{Clock: clock})
	defer session.Close()
	jb := NewJukebox(session, catalog.FileLoader{Path: "/nonexistent/catalog.json"}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := jb.Events().Listen(ctx)
	jb.ReloadCatalog(ctx)

	if cat := jb.Catalog(); cat == nil || len(cat.Genres) != 0 {
		t.Fatalf("Expected an empty catalog, got %#v", cat)
	}
	select {
	case event := <-events:
		if ev, ok := event.(CatalogEvent); !ok || ev.Tracks != 0 {
			t.Fatalf("Unexpected event: %#v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("No catalog event was emitted")
	}
}

func TestSearchCatalog(t *testing.T) {
	ctx := context.Background()
	jb, _ := newTestJukebox(t)

	results, err := jb.SearchCatalog(ctx, "rock", []string{"title", "genre", " "})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("Unexpected number of results: %d", len(results))
	}

	results, err = jb.SearchCatalog(ctx, "artist:queen", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Title != "Bohemian Rhapsody" {
		t.Fatalf("Unexpected results: %#v", results)
	}

	results, err = jb.SearchCatalog(ctx, "duration>400", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Title != "Stairway to Heaven" {
		t.Fatalf("Unexpected results: %#v", results)
	}

	// Results with more matches come first.
	results, err = jb.SearchCatalog(ctx, "o", []string{"title", "artist"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].NumMatches() < results[i].NumMatches() {
			t.Fatalf("Results are not ordered by relevance")
		}
	}

	if _, err := jb.SearchCatalog(ctx, "", []string{"title"}); err == nil {
		t.Fatalf("An empty query should fail")
	}
}

func TestSearchRemoteUnconfigured(t *testing.T) {
	jb, _ := newTestJukebox(t)
	if _, err := jb.SearchRemote(context.Background(), "x"); !errors.Is(err, catalog.ErrNoSource) {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestAutoSelect(t *testing.T) {
	jb, backend := newTestJukebox(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		jb.AutoSelect(ctx)
		close(done)
	}()

	if err := jb.Append(context.Background(), testCatalog.Genres[0].Tracks[1]); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(time.Second * 2)
	for jb.Status().Index != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("The first track was not selected")
		}
		time.Sleep(time.Millisecond * 5)
	}
	if dev := backend.Last(); dev == nil || dev.MediaID() != "bbb" {
		t.Fatalf("The selection was not bound")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("AutoSelect did not stop")
	}
}
