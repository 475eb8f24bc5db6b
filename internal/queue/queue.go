// Package queue keeps the ordered list of songs to type and fetches more
// from the lyrics provider on demand.
package queue

import "github.com/verte-zerg/lyrictype/internal/model"

// Queue is an ordered song list with a current-position pointer.
type Queue struct {
	songs   []model.SongRecord
	current int
}

// Add appends a song. The first song becomes current.
func (q *Queue) Add(song model.SongRecord) {
	if len(q.songs) == 0 {
		q.current = 0
	}
	q.songs = append(q.songs, song)
}

// AddMany appends songs in the given order without deduplication.
func (q *Queue) AddMany(songs []model.SongRecord) {
	for _, song := range songs {
		q.Add(song)
	}
}

// Next advances the pointer. It returns false without changing anything
// when the current song is the last one.
func (q *Queue) Next() (model.SongRecord, bool) {
	if q.current+1 >= len(q.songs) {
		return model.SongRecord{}, false
	}
	q.current++
	return q.songs[q.current], true
}

// Previous moves the pointer back one song.
func (q *Queue) Previous() (model.SongRecord, bool) {
	if q.current <= 0 || len(q.songs) == 0 {
		return model.SongRecord{}, false
	}
	q.current--
	return q.songs[q.current], true
}

// Jump moves the pointer to index.
func (q *Queue) Jump(index int) (model.SongRecord, bool) {
	if index < 0 || index >= len(q.songs) {
		return model.SongRecord{}, false
	}
	q.current = index
	return q.songs[index], true
}

// Upcoming returns up to n songs after the current one.
func (q *Queue) Upcoming(n int) []model.SongRecord {
	if n <= 0 || len(q.songs) == 0 {
		return nil
	}
	start := q.current + 1
	end := min(start+n, len(q.songs))
	if start >= end {
		return nil
	}
	out := make([]model.SongRecord, end-start)
	copy(out, q.songs[start:end])
	return out
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.songs = nil
	q.current = 0
}

// Current returns the song under the pointer.
func (q *Queue) Current() (model.SongRecord, bool) {
	if len(q.songs) == 0 {
		return model.SongRecord{}, false
	}
	return q.songs[q.current], true
}

// CurrentIndex returns the pointer position.
func (q *Queue) CurrentIndex() int {
	return q.current
}

// Len returns the number of songs.
func (q *Queue) Len() int {
	return len(q.songs)
}

// At returns the song at index.
func (q *Queue) At(index int) (model.SongRecord, bool) {
	if index < 0 || index >= len(q.songs) {
		return model.SongRecord{}, false
	}
	return q.songs[index], true
}

// Songs returns a copy of all songs in order.
func (q *Queue) Songs() []model.SongRecord {
	out := make([]model.SongRecord, len(q.songs))
	copy(out, q.songs)
	return out
}
