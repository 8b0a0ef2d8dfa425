package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotit/src/jukebox"
	"spotit/src/library"
	"spotit/src/library/catalog"
	"spotit/src/player"
	"spotit/src/util"
)

func newTestServer(t *testing.T) (*httptest.Server, *jukebox.Jukebox) {
	t.Helper()
	clock := &util.ManualClock{}
	session := player.NewSession(&player.DummyBackend{Clock: clock}, player.Config{Clock: clock},
		library.Track{Title: "Bohemian Rhapsody", Artist: "Queen", URL: "https://www.youtube.com/watch?v=fJ9rUzIMcZQ", Duration: "5:55"},
		library.Track{Title: "Smoke on the Water", Artist: "Deep Purple", URL: "https://youtu.be/zUwEIt9ez7M", Duration: "5:40"},
	)
	jb := jukebox.NewJukebox(session, &catalog.Static{Logo: "/logo.png"}, jukebox.Options{})
	jb.ReloadCatalog(context.Background())

	router, err := New("release", "test", "/", jb)
	require.NoError(t, err)
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		session.Close()
	})
	return server, jb
}

func TestNowPlayingPage(t *testing.T) {
	server, jb := newTestServer(t)
	require.NoError(t, jb.Select(context.Background(), 1, false))

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, "Smoke on the Water")
	assert.Contains(t, page, "Bohemian Rhapsody")
	assert.Contains(t, page, "/logo.png")
	assert.Contains(t, page, "binding")
	assert.NotContains(t, page, "\n\t\t", "the page should be minified")
}

func TestAPIMounted(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/data/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestInvalidBuild(t *testing.T) {
	_, err := New("nightly", "test", "/", nil)
	assert.Error(t, err)
}
