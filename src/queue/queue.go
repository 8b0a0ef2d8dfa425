// Package queue implements the ordered, identity-unique list of tracks that
// the playback session plays from.
//
// A Queue is a value: every mutation returns a new Queue and leaves the
// receiver untouched, so callers can hand out snapshots without copying.
package queue

import (
	"spotit/src/library"
)

// A Queue is an ordered sequence of tracks. The index of a track is its play
// order. No two tracks in a queue share the same identity.
type Queue struct {
	tracks []library.Track
}

// New creates a queue from a seed list. Later duplicates of an identity are
// dropped.
func New(tracks ...library.Track) Queue {
	var q Queue
	for _, t := range tracks {
		q = q.Append(t)
	}
	return q
}

// Len returns the number of tracks in the queue.
func (q Queue) Len() int {
	return len(q.tracks)
}

// At returns the track at the specified index. The bool is false if the index
// is out of range.
func (q Queue) At(i int) (library.Track, bool) {
	if i < 0 || i >= len(q.tracks) {
		return library.Track{}, false
	}
	return q.tracks[i], true
}

// Tracks returns a copy of all tracks in play order.
func (q Queue) Tracks() []library.Track {
	tracks := make([]library.Track, len(q.tracks))
	copy(tracks, q.tracks)
	return tracks
}

// IndexOf returns the index of the track with the same identity as the
// specified track, or -1 if no such track is present.
func (q Queue) IndexOf(track library.Track) int {
	id := track.Identity()
	for i, t := range q.tracks {
		if t.Identity() == id {
			return i
		}
	}
	return -1
}

// InsertAtTop removes any track with the same identity and places the track
// at the head of the queue.
func (q Queue) InsertAtTop(track library.Track) Queue {
	tracks := make([]library.Track, 0, len(q.tracks)+1)
	tracks = append(tracks, track)
	for _, t := range q.tracks {
		if !t.Same(track) {
			tracks = append(tracks, t)
		}
	}
	return Queue{tracks: tracks}
}

// Append places the track at the end of the queue. Nothing happens if a track
// with the same identity is already present.
func (q Queue) Append(track library.Track) Queue {
	if q.IndexOf(track) != -1 {
		return q
	}
	tracks := make([]library.Track, len(q.tracks), len(q.tracks)+1)
	copy(tracks, q.tracks)
	return Queue{tracks: append(tracks, track)}
}

// Reorder moves the track at fromPos to toPos, shifting the tracks in between.
// Out of range or equal positions leave the queue as is.
func (q Queue) Reorder(fromPos, toPos int) Queue {
	if fromPos == toPos || fromPos < 0 || toPos < 0 || fromPos >= len(q.tracks) || toPos >= len(q.tracks) {
		return q
	}
	tracks := q.Tracks()
	track := tracks[fromPos]
	tracks = append(tracks[:fromPos], tracks[fromPos+1:]...)
	tracks = append(tracks[:toPos], append([]library.Track{track}, tracks[toPos:]...)...)
	return Queue{tracks: tracks}
}

// Next returns the track that follows the specified track. The bool is false
// if the track is not present or is the last one.
func (q Queue) Next(track library.Track) (library.Track, bool) {
	i := q.IndexOf(track)
	if i == -1 {
		return library.Track{}, false
	}
	return q.At(i + 1)
}

// Previous returns the track that precedes the specified track. The bool is
// false if the track is not present or is the first one.
func (q Queue) Previous(track library.Track) (library.Track, bool) {
	i := q.IndexOf(track)
	if i == -1 {
		return library.Track{}, false
	}
	return q.At(i - 1)
}
