package player

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by devices that can not be reached.
var ErrUnavailable = errors.New("the device is not available")

// A Signal is an asynchronous notification from a Device.
type Signal int

const (
	// SignalReady is sent once the bound media is loaded and can be played.
	SignalReady Signal = iota + 1
	// SignalEnded is sent once playback reaches the end of the media.
	SignalEnded
)

func (sig Signal) String() string {
	switch sig {
	case SignalReady:
		return "ready"
	case SignalEnded:
		return "ended"
	default:
		return "invalid"
	}
}

// A SignalFunc receives signals from a device along with the media id the
// device was bound to.
type SignalFunc func(mediaID string, sig Signal)

// A Backend creates devices for media ids.
type Backend interface {
	// Bind loads the media into a new device. Signals are delivered through
	// the specified function, which must not be called synchronously from
	// within Bind.
	Bind(ctx context.Context, mediaID string, signal SignalFunc) (Device, error)
}

// A Device plays a single bound piece of media.
type Device interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, t time.Duration) error
	// SetVolume sets the volume as a value between 0 and 100 inclusive.
	SetVolume(ctx context.Context, vol int) error
	CurrentTime(ctx context.Context) (time.Duration, error)
	// Duration returns the length of the media, or 0 if unknown.
	Duration(ctx context.Context) (time.Duration, error)
	// Close releases the device. No signals are delivered afterwards.
	Close() error
}
