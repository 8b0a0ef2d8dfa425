package player

import (
	"time"

	"spotit/src/library"
)

// PlayState is the state of a playback session.
type PlayState int

// Ready and Ended are transient: a session passes through them while handling
// the matching device signal but never rests in them.
const (
	PlayStateInvalid PlayState = iota
	PlayStateUnbound
	PlayStateBinding
	PlayStateReady
	PlayStatePlaying
	PlayStatePaused
	PlayStateEnded
)

// NamedPlayState looks up a state by its name.
func NamedPlayState(str string) PlayState {
	switch str {
	case "unbound":
		return PlayStateUnbound
	case "binding":
		return PlayStateBinding
	case "ready":
		return PlayStateReady
	case "playing":
		return PlayStatePlaying
	case "paused":
		return PlayStatePaused
	case "ended":
		return PlayStateEnded
	default:
		return PlayStateInvalid
	}
}

// Name returns the name of the state.
func (state PlayState) Name() string {
	switch state {
	case PlayStateUnbound:
		return "unbound"
	case PlayStateBinding:
		return "binding"
	case PlayStateReady:
		return "ready"
	case PlayStatePlaying:
		return "playing"
	case PlayStatePaused:
		return "paused"
	case PlayStateEnded:
		return "ended"
	default:
		return "invalid"
	}
}

func (state PlayState) String() string {
	return state.Name()
}

// Status is a snapshot of a playback session.
type Status struct {
	State PlayState
	// The selected track, nil if nothing is selected.
	Selection *library.Track
	// The index of the selection in the queue, -1 if nothing is selected.
	Index    int
	Time     time.Duration
	Duration time.Duration
	Volume   int
	// The track that is about to be played next, set shortly before the
	// selected track ends.
	LookAhead *library.Track
	MediaID   string
	Playable  bool
}

// SelectionEvent is emitted when another track is selected.
type SelectionEvent struct {
	Index int
	Track *library.Track
}

// QueueEvent is emitted when the contents or order of the queue change.
type QueueEvent struct {
	// The index of the selection after the change.
	Index int
	Len   int
}

// PlayStateEvent is emitted when the session enters another state.
type PlayStateEvent struct {
	State PlayState
}

// TimeEvent is emitted when the playback position changes.
type TimeEvent struct {
	Time     time.Duration
	Duration time.Duration
}

// VolumeEvent is emitted when the volume changes.
type VolumeEvent struct {
	Volume int
}

// LookAheadEvent is emitted when the look-ahead highlight is set or cleared.
type LookAheadEvent struct {
	Track *library.Track
}

// MediaEvent is emitted after a selection change to tell whether the selected
// track can be played.
type MediaEvent struct {
	MediaID  string
	Playable bool
}
