package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"spotit/src/library"
)

// FileLoader reads a catalog from a JSON or YAML file. The format is picked by
// the file extension, JSON being the default.
//
// Both the current layout and the older one using "category", "itemPage" and
// "categoryId" are accepted. The document may be wrapped in one or more
// "site" objects.
type FileLoader struct {
	Path string
}

type fileSite struct {
	Site   *fileSite `json:"site" yaml:"site"`
	Header struct {
		Logo string `json:"logo" yaml:"logo"`
	} `json:"header" yaml:"header"`
	Logo   string      `json:"logo" yaml:"logo"`
	Genres []fileGenre `json:"genres" yaml:"genres"`
}

type fileGenre struct {
	ID          string      `json:"_id" yaml:"id"`
	Genre       string      `json:"genre" yaml:"genre"`
	Category    string      `json:"category" yaml:"category"`
	DisplayType string      `json:"displayType" yaml:"displayType"`
	Priority    int         `json:"priority" yaml:"priority"`
	CreatedAt   string      `json:"createdAt" yaml:"createdAt"`
	Songs       []fileTrack `json:"songs" yaml:"songs"`
	ItemPage    []fileTrack `json:"itemPage" yaml:"itemPage"`
}

type fileTrack struct {
	library.Track `yaml:",inline"`
	CategoryID    string `json:"categoryId" yaml:"categoryId"`
}

// Load implements the Loader interface.
func (fl FileLoader) Load(ctx context.Context) (*library.Catalog, error) {
	if fl.Path == "" {
		return nil, ErrNoSource
	}
	b, err := os.ReadFile(fl.Path)
	if err != nil {
		return nil, err
	}
	catalog, err := decodeFile(b, filepath.Ext(fl.Path))
	if err != nil {
		return nil, fmt.Errorf("could not decode catalog %q: %w", fl.Path, err)
	}
	return catalog, nil
}

func decodeFile(b []byte, ext string) (*library.Catalog, error) {
	var site fileSite
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &site); err != nil {
			return nil, err
		}
	default:
		if err := json.NewDecoder(bytes.NewReader(b)).Decode(&site); err != nil {
			return nil, err
		}
	}
	for site.Site != nil && len(site.Genres) == 0 {
		site = *site.Site
	}
	return site.catalog(), nil
}

func (site fileSite) catalog() *library.Catalog {
	catalog := &library.Catalog{
		Logo:   site.Header.Logo,
		Genres: make([]library.Genre, len(site.Genres)),
	}
	if catalog.Logo == "" {
		catalog.Logo = site.Logo
	}
	for i, fg := range site.Genres {
		name := firstNonEmpty(fg.Category, fg.Genre, unknownGenre)
		genre := library.Genre{
			ID:          firstNonEmpty(fg.ID, fg.Category, fg.Genre),
			Name:        name,
			DisplayType: library.DisplayType(fg.DisplayType),
			Priority:    fg.Priority,
			CreatedAt:   fg.CreatedAt,
		}
		songs := fg.Songs
		if len(songs) == 0 {
			songs = fg.ItemPage
		}
		genre.Tracks = make([]library.Track, len(songs))
		for j, ft := range songs {
			track := ft.Track
			track.GenreID = firstNonEmpty(ft.CategoryID, track.GenreID, genre.ID)
			track.Genre = name
			genre.Tracks[j] = track
		}
		catalog.Genres[i] = genre
	}
	normalize(catalog)
	return catalog
}

func firstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}
