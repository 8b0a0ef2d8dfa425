package player

import (
	"testing"
)

func TestDummyImplementation(t *testing.T) {
	TestDeviceImplementation(t, NewRealtimeDummyBackend(), "fJ9rUzIMcZQ")
}
