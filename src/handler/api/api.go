package api

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"spotit/src/jukebox"
	"spotit/src/library"
	"spotit/src/player"
)

// InitRouter attaches all API routes to the specified router.
func InitRouter(r chi.Router, jukebox *jukebox.Jukebox) {
	api := API{jukebox: jukebox}
	r.Group(func(r chi.Router) {
		r.Use(jsonCtx)
		r.Get("/status", api.status)
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", api.queueContents)
			r.Put("/", api.queueInsert)
			r.Patch("/", api.queueMove)
		})
		r.Post("/current", api.setCurrent)
		r.Post("/playstate", api.setPlaystate)
		r.Post("/time", api.setTime)
		r.Post("/volume", api.setVolume)
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", api.catalog)
			r.Get("/search", api.catalogSearch)
			r.Post("/search", api.remoteSearch)
			r.Post("/reload", api.catalogReload)
		})
	})
	r.Get("/events", api.events)
	r.Get("/events/ws", api.eventsWebsocket)
}

// API contains the state that is accessible over the REST API.
type API struct {
	jukebox *jukebox.Jukebox
}

// WriteError writes an error to the client.
//
// An attempt is made to tune the response format to the requestor.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	log.Errorf("Error serving %s %s to %s: %v", r.Method, r.URL.Path, r.RemoteAddr, err)

	if r.Header.Get("X-Requested-With") == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Could not write response to %s: %v", r.RemoteAddr, err)
	}
}

func writeEmpty(w http.ResponseWriter) {
	_, _ = w.Write([]byte("{}"))
}

func jsonCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

// fromSeconds converts client supplied seconds to a duration. Values that do
// not fit are saturated instead of wrapping around.
func fromSeconds(secs float64) time.Duration {
	const maxSeconds = float64(math.MaxInt64 / int64(time.Second))
	switch {
	case math.IsNaN(secs) || secs <= 0:
		return 0
	case secs >= maxSeconds:
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(secs * float64(time.Second))
}

// toInt saturates a client supplied number to the range of an int32.
func toInt(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v <= math.MinInt32:
		return math.MinInt32
	case v >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(v)
}

func jsonStatus(status player.Status) map[string]interface{} {
	return map[string]interface{}{
		"state":     status.State.Name(),
		"current":   status.Index,
		"track":     status.Selection,
		"time":      seconds(status.Time),
		"duration":  seconds(status.Duration),
		"volume":    status.Volume,
		"lookahead": status.LookAhead,
		"mediaid":   status.MediaID,
		"playable":  status.Playable,
	}
}

// eventMessage maps an event to the name and body under which it is sent to
// clients.
func eventMessage(event interface{}) (string, interface{}, bool) {
	switch t := event.(type) {
	case player.SelectionEvent:
		return "selection", map[string]interface{}{"index": t.Index, "track": t.Track}, true
	case player.QueueEvent:
		return "queue", map[string]interface{}{"index": t.Index, "len": t.Len}, true
	case player.PlayStateEvent:
		return "playstate", map[string]interface{}{"state": t.State.Name()}, true
	case player.TimeEvent:
		return "time", map[string]interface{}{"time": seconds(t.Time), "duration": seconds(t.Duration)}, true
	case player.VolumeEvent:
		return "volume", map[string]interface{}{"volume": t.Volume}, true
	case player.LookAheadEvent:
		return "lookahead", map[string]interface{}{"track": t.Track}, true
	case player.MediaEvent:
		return "media", map[string]interface{}{"mediaid": t.MediaID, "playable": t.Playable}, true
	case jukebox.CatalogEvent:
		return "catalog", map[string]interface{}{"genres": t.Genres, "tracks": t.Tracks}, true
	default:
		log.Debugf("Unmapped event %#v", event)
		return "", nil, false
	}
}

func nextIndex(status player.Status, tracks []library.Track) int {
	if status.LookAhead == nil {
		return -1
	}
	for i, track := range tracks {
		if track.Same(*status.LookAhead) {
			return i
		}
	}
	return -1
}
