package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

func (api *API) catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, api.jukebox.Catalog())
}

func (api *API) catalogSearch(w http.ResponseWriter, r *http.Request) {
	untaggedFields := strings.Split(r.FormValue("untagged"), ",")
	results, err := api.jukebox.SearchCatalog(r.Context(), r.FormValue("query"), untaggedFields)
	if errors.Is(err, context.Canceled) {
		return
	} else if err != nil {
		WriteError(w, r, err)
		return
	}

	mappedResults := make([]interface{}, len(results))
	for i, res := range results {
		mappedResults[i] = map[string]interface{}{
			"matches": res.Matches,
			"track":   res.Track,
		}
	}
	writeJSON(w, r, map[string]interface{}{
		"tracks": mappedResults,
	})
}

func (api *API) remoteSearch(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Title string `json:"title"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		WriteError(w, r, err)
		return
	}

	tracks, err := api.jukebox.SearchRemote(r.Context(), data.Title)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]interface{}{
		"tracks": tracks,
	})
}

func (api *API) catalogReload(w http.ResponseWriter, r *http.Request) {
	api.jukebox.ReloadCatalog(r.Context())
	writeEmpty(w)
}
