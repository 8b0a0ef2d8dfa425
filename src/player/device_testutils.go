package player

import (
	"context"
	"testing"
	"time"
)

// TestDeviceImplementation tests the implementation of the player.Backend and
// player.Device interfaces. The backend must be able to play the media and
// signal ready by itself.
func TestDeviceImplementation(t *testing.T, backend Backend, mediaID string) {
	ctx := context.Background()

	bind := func(t *testing.T) Device {
		t.Helper()
		ready := make(chan string, 1)
		dev, err := backend.Bind(ctx, mediaID, func(id string, sig Signal) {
			if sig == SignalReady {
				select {
				case ready <- id:
				default:
				}
			}
		})
		if err != nil {
			t.Fatal(err)
		}
		select {
		case id := <-ready:
			if id != mediaID {
				t.Fatalf("Ready was signaled for the wrong media: %q != %q", id, mediaID)
			}
		case <-time.After(time.Second * 10):
			t.Fatalf("Device did not signal ready")
		}
		return dev
	}

	t.Run("playstate", func(t *testing.T) {
		dev := bind(t)
		defer dev.Close()
		testDevicePlayState(ctx, t, dev)
	})
	t.Run("seek", func(t *testing.T) {
		dev := bind(t)
		defer dev.Close()
		testDeviceSeek(ctx, t, dev)
	})
	t.Run("volume", func(t *testing.T) {
		dev := bind(t)
		defer dev.Close()
		testDeviceVolume(ctx, t, dev)
	})
	t.Run("close", func(t *testing.T) {
		dev := bind(t)
		if err := dev.Close(); err != nil {
			t.Fatal(err)
		}
	})
}

func testDevicePlayState(ctx context.Context, t *testing.T, dev Device) {
	if err := dev.Play(ctx); err != nil {
		t.Fatal(err)
	}
	if err := dev.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	paused, err := dev.CurrentTime(ctx)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond * 100)
	if tm, err := dev.CurrentTime(ctx); err != nil {
		t.Fatal(err)
	} else if tm != paused {
		t.Fatalf("Time advanced while paused: %v != %v", paused, tm)
	}
}

func testDeviceSeek(ctx context.Context, t *testing.T, dev Device) {
	const target = time.Second * 2
	duration, err := dev.Duration(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if duration != 0 && duration < target {
		t.Skipf("Media is too short to seek in: %v", duration)
	}
	if err := dev.Seek(ctx, target); err != nil {
		t.Fatal(err)
	}
	tm, err := dev.CurrentTime(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tm < target || tm > target+time.Second {
		t.Fatalf("Unexpected time after seeking: %v", tm)
	}
}

func testDeviceVolume(ctx context.Context, t *testing.T, dev Device) {
	for _, vol := range []int{20, 40, 0, 100} {
		if err := dev.SetVolume(ctx, vol); err != nil {
			t.Fatalf("Could not set volume to %d: %v", vol, err)
		}
	}
}
