package kpi

import (
	"database/sql"
	"time"

	core "github.com/kilianp07/v2g-planner/core/metrics/eco"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists daily KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS eco_kpi (
        mode TEXT,
        day INTEGER,
        solar REAL,
        grid REAL,
        discharged REAL,
        solves INTEGER,
        PRIMARY KEY(mode, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add accumulates the record into its mode and day row.
func (s *SQLiteStore) Add(r core.Record) error {
	d := core.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO eco_kpi (mode, day, solar, grid, discharged, solves)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(mode, day) DO UPDATE SET
            solar = solar + excluded.solar,
            grid = grid + excluded.grid,
            discharged = discharged + excluded.discharged,
            solves = solves + excluded.solves`,
		r.Mode, d.Unix(), r.SolarKWh, r.GridKWh, r.DischargedKWh, r.Solves)
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(mode string, start, end time.Time) ([]core.Record, error) {
	start = core.Day(start)
	end = core.Day(end)
	rows, err := s.db.Query(`SELECT mode, day, solar, grid, discharged, solves
        FROM eco_kpi WHERE mode = ? AND day >= ? AND day <= ? ORDER BY day`,
		mode, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var r core.Record
		var ts int64
		if err := rows.Scan(&r.Mode, &ts, &r.SolarKWh, &r.GridKWh, &r.DischargedKWh, &r.Solves); err != nil {
			return nil, err
		}
		r.Date = time.Unix(ts, 0).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
