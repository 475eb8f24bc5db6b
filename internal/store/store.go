// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/lyrictype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for results and recent artists.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			session_id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			artist_id TEXT NOT NULL,
			artist TEXT NOT NULL,
			title TEXT NOT NULL,
			song_id TEXT NOT NULL,
			capitalization INTEGER NOT NULL,
			punctuation INTEGER NOT NULL,
			characters_typed INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			raw_wpm REAL NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			active_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS recent_artists (
			artist_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			image_url TEXT NOT NULL,
			position INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_artist_id ON results(artist_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a finished test.
func (s *Store) InsertResult(ctx context.Context, r model.TestResult) error {
	if r.SessionID == "" {
		return fmt.Errorf("result has no session id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (session_id, started_at, ended_at, artist_id, artist, title, song_id, capitalization, punctuation, characters_typed, incorrect, raw_wpm, wpm, accuracy, active_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.EndedAt.UTC().Format(time.RFC3339Nano),
		r.ArtistID,
		r.Artist,
		r.Title,
		r.SongID,
		boolInt(r.Capitalization),
		boolInt(r.Punctuation),
		r.CharactersTyped,
		r.Incorrect,
		r.RawWPM,
		r.WPM,
		r.Accuracy,
		r.ActiveMs,
	)
	return err
}

// ListResults returns results filtered by stats config, oldest first.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.TestResult, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.ArtistID != "" {
		clauses = append(clauses, "artist_id = ?")
		args = append(args, cfg.ArtistID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT session_id, started_at, ended_at, artist_id, artist, title, song_id, capitalization, punctuation, characters_typed, incorrect, raw_wpm, wpm, accuracy, active_ms
		FROM results
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.TestResult
	for rows.Next() {
		var r model.TestResult
		var startedAt, endedAt string
		var caps, punct int
		if err := rows.Scan(&r.SessionID, &startedAt, &endedAt, &r.ArtistID, &r.Artist, &r.Title, &r.SongID,
			&caps, &punct, &r.CharactersTyped, &r.Incorrect, &r.RawWPM, &r.WPM, &r.Accuracy, &r.ActiveMs); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if r.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		r.Capitalization = caps != 0
		r.Punctuation = punct != 0
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// SaveRecentArtists replaces the persisted recent artist list. artists is
// most recent first.
func (s *Store) SaveRecentArtists(ctx context.Context, artists []model.RecentArtist) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM recent_artists`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO recent_artists (artist_id, name, image_url, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, a := range artists {
		if _, err = stmt.ExecContext(ctx, a.ID, a.Name, a.ImageURL, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadRecentArtists returns the persisted recent artists, most recent first.
func (s *Store) LoadRecentArtists(ctx context.Context) ([]model.RecentArtist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT artist_id, name, image_url FROM recent_artists ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var artists []model.RecentArtist
	for rows.Next() {
		var a model.RecentArtist
		if err := rows.Scan(&a.ID, &a.Name, &a.ImageURL); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return artists, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
