package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"spotit/src/handler/web"
	"spotit/src/jukebox"
	"spotit/src/library/catalog"
	"spotit/src/library/netmedia"
	"spotit/src/player"
	"spotit/src/player/mpd"
	"spotit/src/util"
)

var (
	build       = "%BUILD%"
	version     = "%VERSION%"
	versionDate = "%VERSION_DATE%"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	defaultLogLevel := "warn"
	if build == "debug" {
		defaultLogLevel = "debug"
	}
	var configFile, logLevel string

	root := &cobra.Command{
		Use:          "spotit",
		Short:        "spotit plays a queue of songs from a browsable catalog",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "conf", confFile, "Path to the configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log", defaultLogLevel, "Sets the log level. [debug, info, warn, error]")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ll, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("could not parse log level: %w", err)
		}
		log.SetLevel(ll)
		log.SetReportCaller(true)
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("Could not load .env: %v", err)
		}
		return nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %v (%v)\n", version, versionDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Build: %v\n", build)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadValidConfig(configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, conf)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "catalog",
		Short: "Load the configured catalog and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadValidConfig(configFile)
			if err != nil {
				return err
			}
			return printCatalog(cmd.Context(), conf, cmd.OutOrStdout())
		},
	})
	return root
}

func loadValidConfig(filename string) (*config, error) {
	conf, err := LoadConfig(filename)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if errs := conf.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("could not load config: %v", errs)
	}
	if conf.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   conf.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}))
	}
	return conf, nil
}

func printCatalog(ctx context.Context, conf *config, w io.Writer) error {
	loader := conf.catalogLoader()
	if loader == nil {
		return catalog.ErrNoSource
	}
	cat, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(cat)
}

func connectBackend(conf *config) (player.Backend, error) {
	switch conf.Backend {
	case "mpd":
		var resolver mpd.StreamResolver
		if conf.MPD.StreamURL != "" {
			resolver = streamTemplate(conf.MPD.StreamURL)
		} else {
			nm, err := netmedia.NewResolver()
			if err != nil {
				return nil, err
			}
			resolver = nm
		}
		backend, err := mpd.Connect(conf.MPD.Network, conf.MPD.Address, conf.MPD.Password, resolver)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to MPD: %w", err)
		}
		return backend, nil
	default:
		return player.NewRealtimeDummyBackend(), nil
	}
}

func serve(ctx context.Context, conf *config) error {
	log.Infof("Version: %v (%v)", version, build)

	backend, err := connectBackend(conf)
	if err != nil {
		return err
	}
	session := player.NewSession(backend, conf.sessionConfig(), conf.Seed...)
	defer session.Close()

	opts := jukebox.Options{Search: conf.searchClient()}
	if nm, err := netmedia.NewResolver(); err != nil {
		log.Infof("Tracks can not be queued by URL alone: %v", err)
	} else {
		opts.Info = nm
	}
	jb := jukebox.NewJukebox(session, conf.catalogLoader(), opts)
	jb.ReloadCatalog(ctx)

	service, err := web.New(build, version, conf.URLRoot, jb)
	if err != nil {
		return err
	}
	if build == "debug" {
		service.Get("/debug/pprof/*", pprof.Index)
	}
	g, ctx := errgroup.WithContext(ctx)
	server := &http.Server{
		Addr:           conf.Address,
		Handler:        service,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
		// Event streams end with the server.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	g.Go(func() error {
		if fullURL, err := util.DetermineFullURLRoot(conf.URLRoot, conf.Address); err == nil {
			log.Infof("Now accepting HTTP connections on %v", fullURL)
		} else {
			log.Infof("Now accepting HTTP connections on %v", conf.Address)
		}
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error running webserver: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if conf.Catalog.Watch {
		g.Go(func() error {
			return catalog.Watch(ctx, conf.Catalog.File, func() {
				jb.ReloadCatalog(ctx)
			})
		})
	}
	if conf.AutoSelect {
		g.Go(func() error {
			jb.AutoSelect(ctx)
			return nil
		})
	}
	return g.Wait()
}
