// Package store persists annotation grids in a SQLite corpus database.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Grids are stored normalized, one row per grid, tier and annotation,
// with cascading deletes. LoadGrid rebuilds grids through the model
// constructors and validates the result, so stored corruption surfaces
// as an error rather than an invalid grid.
package store

import (
	"database/sql"
	"time"

	"github.com/hbuschme/TextGridTools/core/annot"
	"github.com/hbuschme/TextGridTools/core/errors"
	"github.com/hbuschme/TextGridTools/core/textgrid"
	"github.com/hbuschme/TextGridTools/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS grids (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	xmin        REAL NOT NULL,
	xmax        REAL NOT NULL,
	fingerprint TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tiers (
	id       INTEGER PRIMARY KEY,
	grid_id  INTEGER NOT NULL REFERENCES grids(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	class    TEXT NOT NULL,
	name     TEXT NOT NULL,
	xmin     REAL NOT NULL,
	xmax     REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS annotations (
	id         INTEGER PRIMARY KEY,
	tier_id    INTEGER NOT NULL REFERENCES tiers(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	start_time REAL NOT NULL,
	end_time   REAL,
	text       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS tiers_by_grid ON tiers(grid_id, position);
CREATE INDEX IF NOT EXISTS annotations_by_tier ON annotations(tier_id, position);
`

// Store is a handle on a corpus database.
type Store struct {
	db   *sql.DB
	path string
}

// GridInfo describes one stored grid.
type GridInfo struct {
	Name        string
	Start       annot.Time
	End         annot.Time
	Tiers       int
	Fingerprint string
	CreatedAt   time.Time
}

// Open opens the corpus database at path, creating file and schema when
// they do not exist yet.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	// Foreign key enforcement is per connection in SQLite; pin a single
	// connection so the pragma holds for every statement.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewIO("init schema", path, err)
	}
	logging.StoreEvent("open", path, "driver", driverType)
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.NewIO("close", s.path, err)
	}
	return nil
}

// SaveGrid stores the grid under the given name, replacing any previous
// grid stored under it. The write is transactional.
func (s *Store) SaveGrid(name string, g *annot.Grid) error {
	const op = "save grid"
	if name == "" {
		return errors.NewStructure(op, "grid name must not be empty")
	}
	if err := g.Validate(); err != nil {
		return errors.Wrapf(err, "%s %q", op, name)
	}
	fingerprint, err := textgrid.Fingerprint(g)
	if err != nil {
		return errors.Wrapf(err, "%s %q", op, name)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.NewIO(op, s.path, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM grids WHERE name = ?`, name); err != nil {
		return errors.NewIO(op, s.path, err)
	}
	res, err := tx.Exec(
		`INSERT INTO grids (name, xmin, xmax, fingerprint, created_at) VALUES (?, ?, ?, ?, ?)`,
		name, float64(g.Start()), float64(g.End()), fingerprint,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.NewIO(op, s.path, err)
	}
	gridID, err := res.LastInsertId()
	if err != nil {
		return errors.NewIO(op, s.path, err)
	}

	position := 0
	for t := range g.Tiers() {
		if err := s.saveTier(tx, gridID, position, t); err != nil {
			return errors.Wrapf(err, "%s %q", op, name)
		}
		position++
	}
	if err := tx.Commit(); err != nil {
		return errors.NewIO(op, s.path, err)
	}
	logging.StoreEvent("save", s.path, "grid", name, "tiers", g.Len())
	return nil
}

func (s *Store) saveTier(tx *sql.Tx, gridID int64, position int, t annot.Tier) error {
	const op = "save tier"
	res, err := tx.Exec(
		`INSERT INTO tiers (grid_id, position, class, name, xmin, xmax) VALUES (?, ?, ?, ?, ?, ?)`,
		gridID, position, string(t.Class()), t.Name(), float64(t.Start()), float64(t.End()))
	if err != nil {
		return errors.NewIO(op, s.path, err)
	}
	tierID, err := res.LastInsertId()
	if err != nil {
		return errors.NewIO(op, s.path, err)
	}

	const insert = `INSERT INTO annotations (tier_id, position, start_time, end_time, text) VALUES (?, ?, ?, ?, ?)`
	i := 0
	switch tt := t.(type) {
	case *annot.IntervalTier:
		for iv := range tt.Intervals() {
			if _, err := tx.Exec(insert, tierID, i, float64(iv.Start), float64(iv.End), iv.Text); err != nil {
				return errors.NewIO(op, s.path, err)
			}
			i++
		}
	case *annot.PointTier:
		for p := range tt.Points() {
			if _, err := tx.Exec(insert, tierID, i, float64(p.Time), nil, p.Text); err != nil {
				return errors.NewIO(op, s.path, err)
			}
			i++
		}
	default:
		return errors.NewStructuref(op, "unknown tier type %T", t)
	}
	return nil
}

// LoadGrid loads the named grid. Unknown names fail with a
// NotFoundError; rows that no longer satisfy the model invariants fail
// with a StructureError.
func (s *Store) LoadGrid(name string) (*annot.Grid, error) {
	const op = "load grid"
	var (
		gridID     int64
		xmin, xmax float64
	)
	err := s.db.QueryRow(`SELECT id, xmin, xmax FROM grids WHERE name = ?`, name).
		Scan(&gridID, &xmin, &xmax)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("grid", name)
	}
	if err != nil {
		return nil, errors.NewIO(op, s.path, err)
	}
	g, err := annot.NewGrid(annot.Time(xmin), annot.Time(xmax))
	if err != nil {
		return nil, errors.Wrapf(err, "%s %q", op, name)
	}

	type tierRow struct {
		id         int64
		class      string
		name       string
		xmin, xmax float64
	}
	rows, err := s.db.Query(
		`SELECT id, class, name, xmin, xmax FROM tiers WHERE grid_id = ? ORDER BY position`, gridID)
	if err != nil {
		return nil, errors.NewIO(op, s.path, err)
	}
	defer rows.Close()
	var tiers []tierRow
	for rows.Next() {
		var tr tierRow
		if err := rows.Scan(&tr.id, &tr.class, &tr.name, &tr.xmin, &tr.xmax); err != nil {
			return nil, errors.NewIO(op, s.path, err)
		}
		tiers = append(tiers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO(op, s.path, err)
	}
	// Release the pinned connection before the per-tier queries below.
	rows.Close()

	for _, tr := range tiers {
		tier, err := s.loadTier(tr.id, tr.class, tr.name, annot.Time(tr.xmin), annot.Time(tr.xmax))
		if err != nil {
			return nil, errors.Wrapf(err, "%s %q", op, name)
		}
		if err := g.AddTier(tier); err != nil {
			return nil, errors.Wrapf(err, "%s %q", op, name)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s %q", op, name)
	}
	logging.StoreEvent("load", s.path, "grid", name)
	return g, nil
}

func (s *Store) loadTier(tierID int64, class, name string, xmin, xmax annot.Time) (annot.Tier, error) {
	const op = "load tier"
	rows, err := s.db.Query(
		`SELECT start_time, end_time, text FROM annotations WHERE tier_id = ? ORDER BY position`, tierID)
	if err != nil {
		return nil, errors.NewIO(op, s.path, err)
	}
	defer rows.Close()

	type annRow struct {
		start float64
		end   sql.NullFloat64
		text  string
	}
	var anns []annRow
	for rows.Next() {
		var ar annRow
		if err := rows.Scan(&ar.start, &ar.end, &ar.text); err != nil {
			return nil, errors.NewIO(op, s.path, err)
		}
		anns = append(anns, ar)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO(op, s.path, err)
	}

	switch annot.Class(class) {
	case annot.ClassInterval:
		tier, err := annot.NewIntervalTier(name, xmin, xmax)
		if err != nil {
			return nil, err
		}
		for _, ar := range anns {
			if !ar.end.Valid {
				return nil, errors.NewStructuref(op, "interval in tier %q has no end time", name)
			}
			iv := annot.Interval{Start: annot.Time(ar.start), End: annot.Time(ar.end.Float64), Text: ar.text}
			if err := tier.Add(iv); err != nil {
				return nil, err
			}
		}
		return tier, nil
	case annot.ClassPoint:
		tier, err := annot.NewPointTier(name, xmin, xmax)
		if err != nil {
			return nil, err
		}
		for _, ar := range anns {
			if err := tier.Add(annot.Point{Time: annot.Time(ar.start), Text: ar.text}); err != nil {
				return nil, err
			}
		}
		return tier, nil
	default:
		return nil, errors.NewStructuref(op, "tier %q has unknown class %q", name, class)
	}
}

// ListGrids returns the stored grids ordered by name.
func (s *Store) ListGrids() ([]GridInfo, error) {
	const op = "list grids"
	rows, err := s.db.Query(`
		SELECT g.name, g.xmin, g.xmax, g.fingerprint, g.created_at, COUNT(t.id)
		FROM grids g LEFT JOIN tiers t ON t.grid_id = g.id
		GROUP BY g.id ORDER BY g.name`)
	if err != nil {
		return nil, errors.NewIO(op, s.path, err)
	}
	defer rows.Close()

	var infos []GridInfo
	for rows.Next() {
		var (
			info       GridInfo
			xmin, xmax float64
			created    string
		)
		if err := rows.Scan(&info.Name, &xmin, &xmax, &info.Fingerprint, &created, &info.Tiers); err != nil {
			return nil, errors.NewIO(op, s.path, err)
		}
		info.Start, info.End = annot.Time(xmin), annot.Time(xmax)
		info.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, errors.NewStructuref(op, "grid %q has invalid created_at %q", info.Name, created)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO(op, s.path, err)
	}
	return infos, nil
}

// DeleteGrid removes the named grid and its tiers and annotations.
func (s *Store) DeleteGrid(name string) error {
	const op = "delete grid"
	res, err := s.db.Exec(`DELETE FROM grids WHERE name = ?`, name)
	if err != nil {
		return errors.NewIO(op, s.path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewIO(op, s.path, err)
	}
	if n == 0 {
		return errors.NewNotFound("grid", name)
	}
	logging.StoreEvent("delete", s.path, "grid", name)
	return nil
}

// Info describes the SQLite driver configuration in use.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo reports which SQLite driver this binary was built with.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      driverType == "cgo",
		Package:    driverPackage,
	}
}
