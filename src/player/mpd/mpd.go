// Package mpd implements playback devices on top of the Music Player Daemon.
package mpd

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	log "github.com/sirupsen/logrus"

	"spotit/src/player"
)

// A StreamResolver turns a media id into a URL MPD can stream from.
type StreamResolver interface {
	StreamURL(ctx context.Context, mediaID string) (string, error)
}

// Backend binds media to the queue of an MPD instance. MPD has only one
// queue, so a single device should be bound at any time.
type Backend struct {
	network, address string
	passwd           string
	resolver         StreamResolver
}

// Connect checks whether the MPD instance is reachable and creates a Backend
// for it.
func Connect(network, address string, mpdPassword *string, resolver StreamResolver) (*Backend, error) {
	var passwd string
	if mpdPassword != nil {
		passwd = *mpdPassword
	}
	backend := &Backend{
		network:  network,
		address:  address,
		passwd:   passwd,
		resolver: resolver,
	}
	err := backend.withMpd(context.Background(), func(ctx context.Context, mpdc *mpd.Client) error {
		return mpdc.Ping()
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to mpd at %s: %w", address, err)
	}
	return backend, nil
}

// withMpd runs fn with a fresh connection. MPD closes idle connections, so
// connections are not kept around.
func (backend *Backend) withMpd(ctx context.Context, fn func(context.Context, *mpd.Client) error) error {
	client, err := mpd.DialAuthenticated(backend.network, backend.address, backend.passwd)
	if err != nil {
		return fmt.Errorf("%w: %v", player.ErrUnavailable, err)
	}
	defer client.Close()
	return fn(ctx, client)
}

// Bind implements the player.Backend interface.
func (backend *Backend) Bind(ctx context.Context, mediaID string, signal player.SignalFunc) (player.Device, error) {
	streamURL, err := backend.resolver.StreamURL(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	err = backend.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		cmd := mpdc.BeginCommandList()
		cmd.Stop()
		cmd.Clear()
		cmd.Add(streamURL)
		return cmd.End()
	})
	if err != nil {
		return nil, err
	}

	watcher, err := mpd.NewWatcher(backend.network, backend.address, backend.passwd, "player")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", player.ErrUnavailable, err)
	}
	dev := &device{
		backend: backend,
		mediaID: mediaID,
		signal:  signal,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go dev.eventLoop()
	return dev, nil
}

type device struct {
	backend *Backend
	mediaID string
	signal  player.SignalFunc
	watcher *mpd.Watcher
	done    chan struct{}

	lock    sync.Mutex
	started bool
	closed  bool
}

func (dev *device) eventLoop() {
	// The stream is queued once Bind has returned.
	dev.signal(dev.mediaID, player.SignalReady)
	for {
		select {
		case <-dev.done:
			return
		case subsystem, ok := <-dev.watcher.Event:
			if !ok {
				return
			}
			if subsystem != "player" {
				continue
			}
			if dev.checkEnded() {
				dev.signal(dev.mediaID, player.SignalEnded)
			}
		case err, ok := <-dev.watcher.Error:
			if !ok {
				return
			}
			log.WithField("media", dev.mediaID).Errorf("MPD watcher: %v", err)
		}
	}
}

// checkEnded reports whether MPD stopped by itself after the device was
// started.
func (dev *device) checkEnded() bool {
	dev.lock.Lock()
	started := dev.started && !dev.closed
	dev.lock.Unlock()
	if !started {
		return false
	}
	var stopped bool
	err := dev.backend.withMpd(context.Background(), func(ctx context.Context, mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		stopped = status["state"] == "stop"
		return nil
	})
	if err != nil {
		log.WithField("media", dev.mediaID).Errorf("Could not read MPD status: %v", err)
		return false
	}
	if !stopped {
		return false
	}
	dev.lock.Lock()
	defer dev.lock.Unlock()
	dev.started = false
	return !dev.closed
}

func (dev *device) Play(ctx context.Context) error {
	return dev.backend.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		if status["state"] == "pause" {
			err = mpdc.Pause(false)
		} else {
			err = mpdc.Play(0)
		}
		if err != nil {
			return err
		}
		dev.lock.Lock()
		dev.started = true
		dev.lock.Unlock()
		return nil
	})
}

func (dev *device) Pause(ctx context.Context) error {
	return dev.backend.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		return mpdc.Pause(true)
	})
}

func (dev *device) Seek(ctx context.Context, t time.Duration) error {
	return dev.backend.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		if status["state"] == "stop" {
			// MPD can only seek in the current song. Load it paused.
			if err := mpdc.Play(0); err != nil {
				return err
			}
			if err := mpdc.Pause(true); err != nil {
				return err
			}
		}
		return mpdc.SeekCur(t, false)
	})
}

func (dev *device) SetVolume(ctx context.Context, vol int) error {
	return dev.backend.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		return mpdc.SetVolume(vol)
	})
}

func (dev *device) CurrentTime(ctx context.Context) (time.Duration, error) {
	var t time.Duration
	err := dev.backend.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		t = parseSeconds(status["elapsed"])
		return nil
	})
	return t, err
}

func (dev *device) Duration(ctx context.Context) (time.Duration, error) {
	var d time.Duration
	err := dev.backend.withMpd(ctx, func(ctx context.Context, mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		// Streams only have a duration once MPD has started decoding.
		d = parseSeconds(status["duration"])
		return nil
	})
	return d, err
}

func (dev *device) Close() error {
	dev.lock.Lock()
	if dev.closed {
		dev.lock.Unlock()
		return nil
	}
	dev.closed = true
	dev.lock.Unlock()
	close(dev.done)
	return dev.watcher.Close()
}

func parseSeconds(str string) time.Duration {
	if str == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(str, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
