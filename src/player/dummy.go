package player

import (
	"context"
	"sync"
	"time"

	"spotit/src/util"
)

// DefaultDummyDuration is the length of media that has no entry in
// DummyBackend.Durations.
const DefaultDummyDuration = time.Minute * 3

// DummyBackend creates in-memory devices that pretend to play media.
type DummyBackend struct {
	// Clock schedules the ended signal of playing devices. Devices never end
	// by themselves if nil.
	Clock util.Clock
	// Now reports the passing of time. Time stands still if nil.
	Now func() time.Duration
	// Durations maps media ids to their length.
	Durations map[string]time.Duration
	// AutoReady makes devices signal ready right after binding.
	AutoReady bool

	lock    sync.Mutex
	devices []*DummyDevice
}

// NewRealtimeDummyBackend creates a backend for devices that play in real
// time and become ready by themselves.
func NewRealtimeDummyBackend() *DummyBackend {
	start := time.Now()
	return &DummyBackend{
		Clock:     util.SystemClock{},
		Now:       func() time.Duration { return time.Since(start) },
		AutoReady: true,
	}
}

// Bind implements the player.Backend interface.
func (backend *DummyBackend) Bind(ctx context.Context, mediaID string, signal SignalFunc) (Device, error) {
	duration, ok := backend.Durations[mediaID]
	if !ok {
		duration = DefaultDummyDuration
	}
	dev := &DummyDevice{
		backend:  backend,
		mediaID:  mediaID,
		signal:   signal,
		duration: duration,
		volume:   -1,
	}
	backend.lock.Lock()
	backend.devices = append(backend.devices, dev)
	backend.lock.Unlock()
	if backend.AutoReady {
		go dev.Ready()
	}
	return dev, nil
}

// Devices returns all devices created so far in order of creation.
func (backend *DummyBackend) Devices() []*DummyDevice {
	backend.lock.Lock()
	defer backend.lock.Unlock()
	return append([]*DummyDevice(nil), backend.devices...)
}

// Last returns the most recently created device, or nil.
func (backend *DummyBackend) Last() *DummyDevice {
	backend.lock.Lock()
	defer backend.lock.Unlock()
	if len(backend.devices) == 0 {
		return nil
	}
	return backend.devices[len(backend.devices)-1]
}

func (backend *DummyBackend) now() time.Duration {
	if backend.Now == nil {
		return 0
	}
	return backend.Now()
}

// A DummyDevice is a Device created by a DummyBackend.
type DummyDevice struct {
	backend *DummyBackend
	mediaID string
	signal  SignalFunc

	lock      sync.Mutex
	duration  time.Duration
	position  time.Duration
	startedAt time.Duration
	playing   bool
	closed    bool
	volume    int
	endTimer  util.Timer
}

// MediaID returns the id of the media the device was bound to.
func (dev *DummyDevice) MediaID() string {
	return dev.mediaID
}

// Ready sends the ready signal. It is delivered even after the device has
// been closed, like a signal that was already underway.
func (dev *DummyDevice) Ready() {
	dev.signal(dev.mediaID, SignalReady)
}

// End moves the position to the end of the media and sends the ended signal.
func (dev *DummyDevice) End() {
	dev.lock.Lock()
	dev.stopLocked()
	dev.position = dev.duration
	dev.lock.Unlock()
	dev.signal(dev.mediaID, SignalEnded)
}

// Playing reports whether the device is playing.
func (dev *DummyDevice) Playing() bool {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	return dev.playing
}

// Closed reports whether the device has been closed.
func (dev *DummyDevice) Closed() bool {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	return dev.closed
}

// Volume returns the volume last set, or -1 if it was never set.
func (dev *DummyDevice) Volume() int {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	return dev.volume
}

// Play implements the player.Device interface.
func (dev *DummyDevice) Play(ctx context.Context) error {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	if dev.closed {
		return ErrUnavailable
	}
	if dev.playing {
		return nil
	}
	dev.playing = true
	dev.startedAt = dev.backend.now()
	dev.scheduleEndLocked()
	return nil
}

// Pause implements the player.Device interface.
func (dev *DummyDevice) Pause(ctx context.Context) error {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	if dev.closed {
		return ErrUnavailable
	}
	dev.stopLocked()
	return nil
}

// Seek implements the player.Device interface.
func (dev *DummyDevice) Seek(ctx context.Context, t time.Duration) error {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	if dev.closed {
		return ErrUnavailable
	}
	if t > dev.duration {
		t = dev.duration
	}
	dev.position = t
	dev.startedAt = dev.backend.now()
	if dev.playing {
		dev.scheduleEndLocked()
	}
	return nil
}

// SetVolume implements the player.Device interface.
func (dev *DummyDevice) SetVolume(ctx context.Context, vol int) error {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	if dev.closed {
		return ErrUnavailable
	}
	dev.volume = vol
	return nil
}

// CurrentTime implements the player.Device interface.
func (dev *DummyDevice) CurrentTime(ctx context.Context) (time.Duration, error) {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	if dev.closed {
		return 0, ErrUnavailable
	}
	return dev.currentTimeLocked(), nil
}

// Duration implements the player.Device interface.
func (dev *DummyDevice) Duration(ctx context.Context) (time.Duration, error) {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	if dev.closed {
		return 0, ErrUnavailable
	}
	return dev.duration, nil
}

// Close implements the player.Device interface.
func (dev *DummyDevice) Close() error {
	dev.lock.Lock()
	defer dev.lock.Unlock()
	dev.stopLocked()
	dev.closed = true
	return nil
}

func (dev *DummyDevice) currentTimeLocked() time.Duration {
	t := dev.position
	if dev.playing {
		t += dev.backend.now() - dev.startedAt
	}
	if t > dev.duration {
		t = dev.duration
	}
	return t
}

func (dev *DummyDevice) stopLocked() {
	dev.position = dev.currentTimeLocked()
	dev.playing = false
	if dev.endTimer != nil {
		dev.endTimer.Stop()
		dev.endTimer = nil
	}
}

func (dev *DummyDevice) scheduleEndLocked() {
	if dev.endTimer != nil {
		dev.endTimer.Stop()
		dev.endTimer = nil
	}
	if dev.backend.Clock == nil {
		return
	}
	var timer util.Timer
	timer = dev.backend.Clock.AfterFunc(dev.duration-dev.position, func() {
		dev.lock.Lock()
		if dev.closed || dev.endTimer != timer {
			dev.lock.Unlock()
			return
		}
		dev.endTimer = nil
		dev.position = dev.duration
		dev.playing = false
		dev.lock.Unlock()
		dev.signal(dev.mediaID, SignalEnded)
	})
	dev.endTimer = timer
}
