// Package recodb persists reconstructed tracks and their quality records in
// sqlite. It is the only package that talks SQL; the engine itself stays
// storage-free.
package recodb

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/polar-array/trackwalk/internal/reco"
)

// Store wraps the sqlite handle holding reconstruction output.
type Store struct {
	*sql.DB
}

// Open opens (and if needed creates) the track database at path. Use
// ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open track db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reco_tracks (
			track_id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			partition TEXT NOT NULL,
			dir_x DOUBLE, dir_y DOUBLE, dir_z DOUBLE,
			ref_x DOUBLE, ref_y DOUBLE, ref_z DOUBLE,
			t0 DOUBLE,
			flipped INTEGER,
			rank DOUBLE,
			avg_qtc DOUBLE,
			qtc_max DOUBLE,
			n_elements INTEGER,
			n_sensors INTEGER,
			n_strings INTEGER,
			n_hits INTEGER,
			n_coincident INTEGER,
			created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS reco_track_hits (
			track_id TEXT NOT NULL,
			hit_index INTEGER NOT NULL,
			FOREIGN KEY(track_id) REFERENCES reco_tracks(track_id)
		);
		CREATE INDEX IF NOT EXISTS idx_reco_tracks_event ON reco_tracks(event_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create track schema: %w", err)
	}

	return &Store{db}, nil
}

// TrackRecord is one stored track row.
type TrackRecord struct {
	TrackID   string
	EventID   string
	Partition string
	Dir       reco.Vec3
	Ref       reco.Vec3
	T0        float64
	Flipped   bool

	Rank        float64
	AvgQtc      float64
	QtcMax      float64
	NElements   int
	NSensors    int
	NStrings    int
	NHits       int
	NCoincident int

	Hits []int
}

// InsertTrack stores one reconstructed track under the given event and
// returns the generated track identifier.
func (s *Store) InsertTrack(eventID string, t reco.Track) (string, error) {
	trackID := uuid.NewString()

	tx, err := s.Begin()
	if err != nil {
		return "", fmt.Errorf("begin insert track tx: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO reco_tracks (
			track_id, event_id, partition,
			dir_x, dir_y, dir_z,
			ref_x, ref_y, ref_z,
			t0, flipped,
			rank, avg_qtc, qtc_max,
			n_elements, n_sensors, n_strings, n_hits, n_coincident
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		trackID, eventID, t.Partition.String(),
		t.Dir.X, t.Dir.Y, t.Dir.Z,
		t.Ref.X, t.Ref.Y, t.Ref.Z,
		t.T0, t.Flipped,
		t.Q.Rank, t.Q.AvgQtc, t.Q.QtcMax,
		t.Q.NTracks, t.Q.NSensors, t.Q.NStrings, t.Q.NHits, t.Q.NCoincident,
	)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("insert track: %w", err)
	}

	for _, hi := range t.Hits {
		if _, err := tx.Exec(
			`INSERT INTO reco_track_hits (track_id, hit_index) VALUES (?, ?)`,
			trackID, hi,
		); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert track hit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit insert track tx: %w", err)
	}
	return trackID, nil
}

// InsertEventTracks stores every track of one event and returns the
// generated identifiers in input order.
func (s *Store) InsertEventTracks(eventID string, tracks []reco.Track) ([]string, error) {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		id, err := s.InsertTrack(eventID, t)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// TracksForEvent returns the stored tracks of one event, best rank first.
func (s *Store) TracksForEvent(eventID string) ([]*TrackRecord, error) {
	rows, err := s.Query(`
		SELECT track_id, event_id, partition,
			dir_x, dir_y, dir_z,
			ref_x, ref_y, ref_z,
			t0, flipped,
			rank, avg_qtc, qtc_max,
			n_elements, n_sensors, n_strings, n_hits, n_coincident
		FROM reco_tracks
		WHERE event_id = ?
		ORDER BY rank DESC, track_id ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*TrackRecord
	for rows.Next() {
		tr := &TrackRecord{}
		if err := rows.Scan(
			&tr.TrackID, &tr.EventID, &tr.Partition,
			&tr.Dir.X, &tr.Dir.Y, &tr.Dir.Z,
			&tr.Ref.X, &tr.Ref.Y, &tr.Ref.Z,
			&tr.T0, &tr.Flipped,
			&tr.Rank, &tr.AvgQtc, &tr.QtcMax,
			&tr.NElements, &tr.NSensors, &tr.NStrings, &tr.NHits, &tr.NCoincident,
		); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}

	for _, tr := range tracks {
		hits, err := s.trackHits(tr.TrackID)
		if err != nil {
			return nil, err
		}
		tr.Hits = hits
	}
	return tracks, nil
}

func (s *Store) trackHits(trackID string) ([]int, error) {
	rows, err := s.Query(
		`SELECT hit_index FROM reco_track_hits WHERE track_id = ? ORDER BY rowid ASC`,
		trackID)
	if err != nil {
		return nil, fmt.Errorf("query track hits: %w", err)
	}
	defer rows.Close()

	var hits []int
	for rows.Next() {
		var hi int
		if err := rows.Scan(&hi); err != nil {
			return nil, fmt.Errorf("scan track hit: %w", err)
		}
		hits = append(hits, hi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate track hits: %w", err)
	}
	return hits, nil
}
