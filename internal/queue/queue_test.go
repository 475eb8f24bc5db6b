package queue

import (
	"testing"

	"github.com/verte-zerg/lyrictype/internal/model"
)

func songs(titles ...string) []model.SongRecord {
	out := make([]model.SongRecord, len(titles))
	for i, title := range titles {
		out[i] = model.SongRecord{Title: title, Index: i}
	}
	return out
}

func TestQueueNavigation(t *testing.T) {
	var q Queue
	if _, ok := q.Current(); ok {
		t.Fatalf("expected empty queue to have no current song")
	}
	q.AddMany(songs("a", "b", "c"))
	if cur, _ := q.Current(); cur.Title != "a" || q.CurrentIndex() != 0 {
		t.Fatalf("expected first song current, got %q at %d", cur.Title, q.CurrentIndex())
	}
	if _, ok := q.Previous(); ok {
		t.Fatalf("expected previous at start to be a no-op")
	}
	if next, ok := q.Next(); !ok || next.Title != "b" {
		t.Fatalf("expected b, got %q %v", next.Title, ok)
	}
	if next, ok := q.Next(); !ok || next.Title != "c" {
		t.Fatalf("expected c, got %q %v", next.Title, ok)
	}
	if _, ok := q.Next(); ok {
		t.Fatalf("expected next at end to be a no-op")
	}
	if q.CurrentIndex() != 2 {
		t.Fatalf("expected index unchanged after no-op, got %d", q.CurrentIndex())
	}
	if prev, ok := q.Previous(); !ok || prev.Title != "b" {
		t.Fatalf("expected b, got %q %v", prev.Title, ok)
	}
}

func TestQueueJump(t *testing.T) {
	var q Queue
	q.AddMany(songs("a", "b", "c"))
	if song, ok := q.Jump(2); !ok || song.Title != "c" || q.CurrentIndex() != 2 {
		t.Fatalf("expected jump to c, got %q %v", song.Title, ok)
	}
	for _, idx := range []int{-1, 3} {
		if _, ok := q.Jump(idx); ok {
			t.Fatalf("expected jump to %d to fail", idx)
		}
	}
	if q.CurrentIndex() != 2 {
		t.Fatalf("expected failed jumps to leave the pointer, got %d", q.CurrentIndex())
	}
}

func TestQueueUpcoming(t *testing.T) {
	var q Queue
	q.AddMany(songs("a", "b", "c", "d"))
	up := q.Upcoming(2)
	if len(up) != 2 || up[0].Title != "b" || up[1].Title != "c" {
		t.Fatalf("unexpected upcoming: %+v", up)
	}
	q.Jump(2)
	if up := q.Upcoming(5); len(up) != 1 || up[0].Title != "d" {
		t.Fatalf("unexpected upcoming near end: %+v", up)
	}
	q.Jump(3)
	if up := q.Upcoming(5); len(up) != 0 {
		t.Fatalf("expected nothing upcoming at end, got %+v", up)
	}
}

func TestQueueAddManyKeepsOrderAndDuplicates(t *testing.T) {
	var q Queue
	batch := songs("x", "y")
	q.AddMany(batch)
	q.AddMany(batch)
	if q.Len() != 4 {
		t.Fatalf("expected 4 songs, got %d", q.Len())
	}
	if s, _ := q.At(2); s.Title != "x" {
		t.Fatalf("expected order preserved, got %q", s.Title)
	}
}

func TestQueueClear(t *testing.T) {
	var q Queue
	q.AddMany(songs("a", "b"))
	q.Next()
	q.Clear()
	if q.Len() != 0 || q.CurrentIndex() != 0 {
		t.Fatalf("expected empty queue, got len %d index %d", q.Len(), q.CurrentIndex())
	}
	q.Add(model.SongRecord{Title: "z"})
	if cur, ok := q.Current(); !ok || cur.Title != "z" {
		t.Fatalf("expected new first song to be current")
	}
}
