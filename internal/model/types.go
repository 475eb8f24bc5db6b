// Package model defines shared data structures.
package model

import "time"

// Config defines game settings merged from the config file and flags.
type Config struct {
	Capitalization bool
	Punctuation    bool
	APIBaseURL     string        `validate:"required,url"`
	APITimeout     time.Duration `validate:"gt=0"`
	SearchLimit    int           `validate:"gte=1,lte=50"`
	PrefetchCount  int           `validate:"gte=1,lte=20"`
	LowWater       int           `validate:"gte=0,ltefield=PrefetchCount"`
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	ArtistID    string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// ArtistRef identifies an artist at the lyrics provider.
type ArtistRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URLKey string `json:"urlKey,omitempty"`
}

// ArtistInfo is display metadata for an artist.
type ArtistInfo struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// SongRecord is a fetched song. Index is the song's position in the
// artist catalog and is what the queue manager deduplicates on.
type SongRecord struct {
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Lyrics         string `json:"lyrics"`
	ImageURL       string `json:"imageUrl"`
	ArtistID       string `json:"artistId"`
	SongID         string `json:"songId"`
	SourceURL      string `json:"url"`
	PrimaryArtist  string `json:"primaryArtist"`
	ArtistImageURL string `json:"artistImageUrl"`
	Index          int    `json:"songIndex"`
}

// TestResult captures a finished typing test.
type TestResult struct {
	SessionID       string
	StartedAt       time.Time
	EndedAt         time.Time
	ArtistID        string
	Artist          string
	Title           string
	SongID          string
	Capitalization  bool
	Punctuation     bool
	CharactersTyped int
	Incorrect       int
	RawWPM          float64
	WPM             float64
	Accuracy        float64
	ActiveMs        int64
}

// RecentArtist is a cached recently played artist.
type RecentArtist struct {
	ID       string
	Name     string
	ImageURL string
}
