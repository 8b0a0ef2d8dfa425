package queue

import (
	"fmt"
	"math/rand"
	"testing"

	"spotit/src/library"
)

func track(title string) library.Track {
	return library.Track{Title: title, Artist: "Artist", URL: "https://www.youtube.com/watch?v=" + title}
}

func titles(q Queue) []string {
	out := make([]string, q.Len())
	for i, t := range q.Tracks() {
		out[i] = t.Title
	}
	return out
}

func assertTitles(t *testing.T, q Queue, expected ...string) {
	t.Helper()
	actual := titles(q)
	if fmt.Sprint(actual) != fmt.Sprint(expected) {
		t.Fatalf("Unexpected queue contents: %v != %v", actual, expected)
	}
}

func assertUnique(t *testing.T, q Queue) {
	t.Helper()
	seen := map[library.Identity]bool{}
	for _, tr := range q.Tracks() {
		if seen[tr.Identity()] {
			t.Fatalf("Duplicate identity in queue: %v", tr)
		}
		seen[tr.Identity()] = true
	}
}

func TestNewDedups(t *testing.T) {
	q := New(track("a"), track("b"), track("a"), track("c"))
	assertTitles(t, q, "a", "b", "c")
}

func TestInsertAtTop(t *testing.T) {
	q := New(track("a"), track("b"), track("c"))

	assertTitles(t, q.InsertAtTop(track("d")), "d", "a", "b", "c")
	assertTitles(t, q.InsertAtTop(track("c")), "c", "a", "b")

	// The head itself keeps length and position.
	head := q.InsertAtTop(track("a"))
	assertTitles(t, head, "a", "b", "c")
	if head.IndexOf(track("a")) != 0 {
		t.Fatalf("Head moved")
	}

	// The receiver is never modified.
	assertTitles(t, q, "a", "b", "c")
}

func TestInsertAtTopReplacesByIdentity(t *testing.T) {
	q := New(track("a"), track("b"))
	updated := track("b")
	updated.Duration = "3:00"
	q = q.InsertAtTop(updated)
	if tr, _ := q.At(0); tr.Duration != "3:00" {
		t.Fatalf("Inserted track did not replace the existing one: %v", tr)
	}
	if q.Len() != 2 {
		t.Fatalf("Unexpected length: %d", q.Len())
	}
}

func TestAppend(t *testing.T) {
	q := New(track("a"))
	q = q.Append(track("b"))
	q = q.Append(track("a"))
	assertTitles(t, q, "a", "b")
}

func TestReorder(t *testing.T) {
	q := New(track("a"), track("b"), track("c"), track("d"))

	assertTitles(t, q.Reorder(0, 2), "b", "c", "a", "d")
	assertTitles(t, q.Reorder(3, 1), "a", "d", "b", "c")
	assertTitles(t, q.Reorder(0, 3), "b", "c", "d", "a")
	assertTitles(t, q.Reorder(3, 0), "d", "a", "b", "c")

	// Invalid moves are ignored.
	assertTitles(t, q.Reorder(1, 1), "a", "b", "c", "d")
	assertTitles(t, q.Reorder(-1, 2), "a", "b", "c", "d")
	assertTitles(t, q.Reorder(1, 4), "a", "b", "c", "d")
	assertTitles(t, q.Reorder(9, 0), "a", "b", "c", "d")

	assertTitles(t, q, "a", "b", "c", "d")
}

func TestReorderPreservesSelection(t *testing.T) {
	q := New(track("a"), track("b"), track("c"), track("d"))
	selected := track("b")
	for from := 0; from < q.Len(); from++ {
		for to := 0; to < q.Len(); to++ {
			moved := q.Reorder(from, to)
			i := moved.IndexOf(selected)
			if i == -1 {
				t.Fatalf("Selection lost after %d -> %d", from, to)
			}
			if tr, _ := moved.At(i); !tr.Same(selected) {
				t.Fatalf("Selection resolves to %v after %d -> %d", tr, from, to)
			}
		}
	}
}

func TestIdentityUniqueness(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	q := New()
	for i := 0; i < 1000; i++ {
		tr := track(fmt.Sprintf("%d", rng.Intn(10)))
		switch rng.Intn(3) {
		case 0:
			q = q.InsertAtTop(tr)
		case 1:
			q = q.Append(tr)
		case 2:
			q = q.Reorder(rng.Intn(12)-1, rng.Intn(12)-1)
		}
		assertUnique(t, q)
	}
}

func TestNeighbours(t *testing.T) {
	q := New(track("a"), track("b"), track("c"))

	if next, ok := q.Next(track("a")); !ok || next.Title != "b" {
		t.Fatalf("Unexpected next track: %v, %v", next, ok)
	}
	if _, ok := q.Next(track("c")); ok {
		t.Fatalf("The last track should not have a next track")
	}
	if prev, ok := q.Previous(track("c")); !ok || prev.Title != "b" {
		t.Fatalf("Unexpected previous track: %v, %v", prev, ok)
	}
	if _, ok := q.Previous(track("a")); ok {
		t.Fatalf("The first track should not have a previous track")
	}
	if _, ok := q.Next(track("x")); ok {
		t.Fatalf("An absent track has no neighbours")
	}
	if q.IndexOf(track("x")) != -1 {
		t.Fatalf("An absent track should have index -1")
	}
}
