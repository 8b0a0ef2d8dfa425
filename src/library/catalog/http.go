package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"spotit/src/library"
)

const defaultTimeout = time.Second * 15

// HTTPLoader reads a catalog from a remote API that serves the genres and the
// tracks from separate endpoints.
type HTTPLoader struct {
	BaseURL string
	// Token is sent as bearer token if not empty.
	Token  string
	Logo   string
	Client *http.Client
}

type remoteCategory struct {
	ID          string `json:"_id"`
	Category    string `json:"category"`
	DisplayType string `json:"displayType"`
	Priority    int    `json:"priority"`
	CreatedAt   string `json:"createdAt"`
}

type remoteTrack struct {
	library.Track
	CategoryID struct {
		ID string `json:"_id"`
	} `json:"categoryId"`
}

// Load implements the Loader interface.
func (hl HTTPLoader) Load(ctx context.Context) (*library.Catalog, error) {
	if hl.BaseURL == "" {
		return nil, ErrNoSource
	}
	var categories []remoteCategory
	if err := hl.get(ctx, "/api/categories", &categories); err != nil {
		return nil, err
	}
	var tracks []remoteTrack
	if err := hl.get(ctx, "/api/recipes", &tracks); err != nil {
		return nil, err
	}

	byCategory := lo.GroupBy(tracks, func(rt remoteTrack) string {
		return rt.CategoryID.ID
	})
	catalog := &library.Catalog{
		Logo: hl.Logo,
		Genres: lo.Map(categories, func(cat remoteCategory, _ int) library.Genre {
			name := firstNonEmpty(cat.Category, unknownGenre)
			return library.Genre{
				ID:          cat.ID,
				Name:        name,
				DisplayType: library.DisplayType(cat.DisplayType),
				Priority:    cat.Priority,
				CreatedAt:   cat.CreatedAt,
				Tracks: lo.Map(byCategory[cat.ID], func(rt remoteTrack, _ int) library.Track {
					track := rt.Track
					track.GenreID = cat.ID
					track.Genre = name
					return track
				}),
			}
		}),
	}
	normalize(catalog)
	return catalog, nil
}

func (hl HTTPLoader) get(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(hl.BaseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	return doJSON(hl.Client, req, hl.Token, v)
}

// A SearchClient looks up tracks by title with a remote API.
type SearchClient struct {
	URL    string
	Token  string
	Client *http.Client
}

// SearchGenre is the genre assigned to all tracks found by a SearchClient.
const SearchGenre = "API"

const defaultSearchTitle = "movie"

// SearchByTitle posts the title to the search endpoint and returns the tracks
// it responds with.
func (sc SearchClient) SearchByTitle(ctx context.Context, title string) ([]library.Track, error) {
	if sc.URL == "" {
		return nil, ErrNoSource
	}
	if strings.TrimSpace(title) == "" {
		title = defaultSearchTitle
	}
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sc.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var tracks []library.Track
	if err := doJSON(sc.Client, req, sc.Token, &tracks); err != nil {
		return nil, err
	}
	for i := range tracks {
		tracks[i].Genre = SearchGenre
		library.InterpolateMissingFields(&tracks[i])
	}
	return tracks, nil
}

func doJSON(client *http.Client, req *http.Request, token string, v interface{}) error {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
