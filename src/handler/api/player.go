package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"spotit/src/library"
	"spotit/src/player"
)

func (api *API) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, jsonStatus(api.jukebox.Status()))
}

func (api *API) queueContents(w http.ResponseWriter, r *http.Request) {
	status := api.jukebox.Status()
	tracks := api.jukebox.Queue().Tracks()
	writeJSON(w, r, map[string]interface{}{
		"current": status.Index,
		"next":    nextIndex(status, tracks),
		"tracks":  tracks,
	})
}

func (api *API) queueInsert(w http.ResponseWriter, r *http.Request) {
	var data struct {
		At    string        `json:"at"`
		Track library.Track `json:"track"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	var err error
	switch data.At {
	case "top":
		err = api.jukebox.InsertAtTop(r.Context(), data.Track)
	case "bottom", "":
		err = api.jukebox.Append(r.Context(), data.Track)
	default:
		err = fmt.Errorf("invalid insert position %q", data.At)
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeEmpty(w)
}

func (api *API) queueMove(w http.ResponseWriter, r *http.Request) {
	var data struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}
	api.jukebox.Reorder(r.Context(), data.From, data.To)
	writeEmpty(w)
}

func (api *API) setCurrent(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Current  int  `json:"current"`
		Relative bool `json:"relative"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	if err := api.jukebox.Select(r.Context(), data.Current, data.Relative); err != nil {
		WriteError(w, r, err)
		return
	}
	writeEmpty(w)
}

func (api *API) setPlaystate(w http.ResponseWriter, r *http.Request) {
	var data struct {
		State *string `json:"playstate"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	if data.State == nil {
		api.jukebox.PlayPause(r.Context())
		writeEmpty(w)
		return
	}
	switch state := player.NamedPlayState(*data.State); state {
	case player.PlayStatePlaying:
		api.jukebox.SetPlaying(r.Context(), true)
	case player.PlayStatePaused:
		api.jukebox.SetPlaying(r.Context(), false)
	default:
		WriteError(w, r, fmt.Errorf("can not set the playstate to %q", *data.State))
		return
	}
	writeEmpty(w)
}

func (api *API) setTime(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Time float64 `json:"time"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}
	api.jukebox.Seek(r.Context(), fromSeconds(data.Time))
	writeEmpty(w)
}

func (api *API) setVolume(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Volume int `json:"volume"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}
	api.jukebox.SetVolume(r.Context(), data.Volume)
	writeEmpty(w)
}
