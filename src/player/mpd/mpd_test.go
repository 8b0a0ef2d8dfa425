package mpd

import (
	"context"
	"os"
	"testing"
	"time"

	"spotit/src/player"
)

type staticResolver string

func (r staticResolver) StreamURL(ctx context.Context, mediaID string) (string, error) {
	return string(r), nil
}

func connectForTesting(t *testing.T) *Backend {
	stream := os.Getenv("SPOTIT_TEST_STREAM")
	if stream == "" {
		t.Skip("SPOTIT_TEST_STREAM is not set")
	}
	backend, err := Connect("tcp", "127.0.0.1:6600", nil, staticResolver(stream))
	if err != nil {
		t.Skipf("MPD is not available: %v", err)
	}
	return backend
}

func TestDeviceImplementation(t *testing.T) {
	player.TestDeviceImplementation(t, connectForTesting(t), "fJ9rUzIMcZQ")
}

func TestParseSeconds(t *testing.T) {
	testCases := []struct {
		str string
		d   time.Duration
	}{
		{"", 0},
		{"12.500", time.Millisecond * 12500},
		{"355", time.Second * 355},
		{"-1", 0},
		{"nan?", 0},
	}
	for _, tc := range testCases {
		if d := parseSeconds(tc.str); d != tc.d {
			t.Fatalf("Unexpected duration for %q: %v != %v", tc.str, d, tc.d)
		}
	}
}
