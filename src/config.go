package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"spotit/src/library"
	"spotit/src/library/catalog"
	"spotit/src/player"
)

const (
	confFile = "config.yaml"

	catalogTokenEnv = "SPOTIT_CATALOG_TOKEN"
)

var defaultSeed = []library.Track{
	{Title: "Bohemian Rhapsody", Artist: "Queen", Duration: "5:55", URL: "https://www.youtube.com/watch?v=fJ9rUzIMcZQ"},
	{Title: "Stairway to Heaven", Artist: "Led Zeppelin", Duration: "8:02", URL: "https://www.youtube.com/watch?v=QkF3oxziUI4"},
	{Title: "Sweet Child O' Mine", Artist: "Guns N' Roses", Duration: "5:56", URL: "https://www.youtube.com/watch?v=1w7OgIMMRc4"},
	{Title: "Smoke on the Water", Artist: "Deep Purple", Duration: "5:40", URL: "https://www.youtube.com/watch?v=zUwEIt9ez7M"},
}

type mpdConfig struct {
	Network  string  `yaml:"network"`
	Address  string  `yaml:"address"`
	Password *string `yaml:"password"`
	// A URL with "{id}" in place of the media id from which MPD can stream.
	// If empty, media is resolved with yt-dlp.
	StreamURL string `yaml:"stream_url"`
}

type catalogConfig struct {
	File      string `yaml:"file"`
	URL       string `yaml:"url"`
	Token     string `yaml:"token"`
	Logo      string `yaml:"logo"`
	SearchURL string `yaml:"search_url"`
	Watch     bool   `yaml:"watch"`
}

type config struct {
	Address string `yaml:"bind"`
	URLRoot string `yaml:"url_root"`

	Backend string     `yaml:"backend"`
	MPD     *mpdConfig `yaml:"mpd"`

	Catalog catalogConfig   `yaml:"catalog"`
	Seed    []library.Track `yaml:"seed"`

	AutoSelect    bool          `yaml:"autoselect"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	LookAhead     time.Duration `yaml:"look_ahead"`
	DeviceTimeout time.Duration `yaml:"device_timeout"`
	Volume        int           `yaml:"volume"`

	LogFile string `yaml:"log_file"`
}

func defaultConfig() config {
	return config{
		Address:       ":3000",
		URLRoot:       "/",
		Backend:       "dummy",
		Seed:          append([]library.Track(nil), defaultSeed...),
		PollInterval:  player.DefaultPollInterval,
		LookAhead:     player.DefaultLookAhead,
		DeviceTimeout: player.DefaultDeviceTimeout,
		Volume:        player.DefaultVolume,
	}
}

func (conf *config) Validate() (errs []error) {
	if conf.Address == "" {
		errs = append(errs, fmt.Errorf("config: `bind` is required"))
	}
	switch conf.Backend {
	case "dummy":
	case "mpd":
		if conf.MPD == nil || conf.MPD.Address == "" {
			errs = append(errs, fmt.Errorf("config: `mpd.address` is required for the mpd backend"))
		} else if conf.MPD.StreamURL != "" && !strings.Contains(conf.MPD.StreamURL, "{id}") {
			errs = append(errs, fmt.Errorf("config: `mpd.stream_url` must contain {id}"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown backend %q, expected dummy or mpd", conf.Backend))
	}
	if conf.Catalog.File != "" && conf.Catalog.URL != "" {
		errs = append(errs, fmt.Errorf("config: `catalog.file` and `catalog.url` are mutually exclusive"))
	}
	if conf.Catalog.Watch && conf.Catalog.File == "" {
		errs = append(errs, fmt.Errorf("config: `catalog.watch` requires `catalog.file`"))
	}
	for i, track := range conf.Seed {
		if strings.TrimSpace(track.Title) == "" {
			errs = append(errs, fmt.Errorf("config: seed track %d has no title", i))
		}
	}
	if conf.Volume < 0 || conf.Volume > 100 {
		errs = append(errs, fmt.Errorf("config: `volume` must be between 0 and 100"))
	}
	if conf.PollInterval < 0 || conf.LookAhead < 0 || conf.DeviceTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: durations must not be negative"))
	}
	return
}

// LoadConfig reads the configuration file. Keys that are absent keep their
// default value.
func LoadConfig(filename string) (*config, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	d := yaml.NewDecoder(fd)
	d.KnownFields(true)
	conf := defaultConfig()
	if err := d.Decode(&conf); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", filename, err)
	}
	if token := os.Getenv(catalogTokenEnv); token != "" {
		conf.Catalog.Token = token
	}
	return &conf, nil
}

func (conf *config) sessionConfig() player.Config {
	return player.Config{
		PollInterval:  conf.PollInterval,
		LookAhead:     conf.LookAhead,
		DeviceTimeout: conf.DeviceTimeout,
		Volume:        conf.Volume,
	}
}

// catalogLoader returns the loader for the configured catalog source, nil if
// there is none.
func (conf *config) catalogLoader() catalog.Loader {
	switch {
	case conf.Catalog.File != "":
		return catalog.FileLoader{Path: conf.Catalog.File}
	case conf.Catalog.URL != "":
		return catalog.HTTPLoader{
			BaseURL: conf.Catalog.URL,
			Token:   conf.Catalog.Token,
			Logo:    conf.Catalog.Logo,
		}
	default:
		return nil
	}
}

func (conf *config) searchClient() *catalog.SearchClient {
	if conf.Catalog.SearchURL == "" {
		return nil
	}
	return &catalog.SearchClient{URL: conf.Catalog.SearchURL, Token: conf.Catalog.Token}
}

// streamTemplate resolves media ids by substituting them into a URL.
type streamTemplate string

func (st streamTemplate) StreamURL(ctx context.Context, mediaID string) (string, error) {
	return strings.ReplaceAll(string(st), "{id}", mediaID), nil
}
