package recent

import (
	"fmt"
	"testing"

	"github.com/verte-zerg/lyrictype/internal/model"
)

func TestUpsertPromotesExisting(t *testing.T) {
	c := New(nil)
	c.Upsert(model.RecentArtist{ID: "1", Name: "One"})
	c.Upsert(model.RecentArtist{ID: "2", Name: "Two"})
	c.Upsert(model.RecentArtist{ID: "1", Name: "One", ImageURL: "img"})
	list := c.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(list))
	}
	if list[0].ID != "1" || list[0].ImageURL != "img" || list[1].ID != "2" {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestUpsertEvictsOldest(t *testing.T) {
	c := New(nil)
	for i := 0; i < Capacity+2; i++ {
		c.Upsert(model.RecentArtist{ID: fmt.Sprint(i)})
	}
	list := c.List()
	if len(list) != Capacity {
		t.Fatalf("expected %d artists, got %d", Capacity, len(list))
	}
	if list[0].ID != fmt.Sprint(Capacity+1) {
		t.Fatalf("expected newest first, got %q", list[0].ID)
	}
	if _, ok := c.Get("0"); ok {
		t.Fatalf("expected oldest artist evicted")
	}
	if _, ok := c.Get("1"); ok {
		t.Fatalf("expected second oldest artist evicted")
	}
	if a, ok := c.Get("2"); !ok || a.ID != "2" {
		t.Fatalf("expected artist 2 kept")
	}
}

func TestNewKeepsSeedOrder(t *testing.T) {
	c := New([]model.RecentArtist{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	list := c.List()
	if list[0].ID != "a" || list[2].ID != "c" {
		t.Fatalf("unexpected seed order: %+v", list)
	}
}

func TestUpsertIgnoresEmptyID(t *testing.T) {
	c := New(nil)
	c.Upsert(model.RecentArtist{Name: "nameless"})
	if len(c.List()) != 0 {
		t.Fatalf("expected empty id to be ignored")
	}
}
