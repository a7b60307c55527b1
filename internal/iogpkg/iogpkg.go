// Package iogpkg reads and writes vector layers as GeoPackage files.
//
// A GeoPackage is a SQLite database with a few metadata tables and
// feature tables whose geometry column holds "GP" headed WKB blobs.
package iogpkg

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGo)
)

const geomColumn = "geom"

const metadataDDL = `
CREATE TABLE gpkg_spatial_ref_sys (
  srs_name TEXT NOT NULL,
  srs_id INTEGER NOT NULL PRIMARY KEY,
  organization TEXT NOT NULL,
  organization_coordsys_id INTEGER NOT NULL,
  definition TEXT NOT NULL,
  description TEXT
);
CREATE TABLE gpkg_contents (
  table_name TEXT NOT NULL PRIMARY KEY,
  data_type TEXT NOT NULL,
  identifier TEXT UNIQUE,
  description TEXT DEFAULT '',
  last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
  min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
  srs_id INTEGER
);
CREATE TABLE gpkg_geometry_columns (
  table_name TEXT NOT NULL,
  column_name TEXT NOT NULL,
  geometry_type_name TEXT NOT NULL,
  srs_id INTEGER NOT NULL,
  z TINYINT NOT NULL,
  m TINYINT NOT NULL,
  CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name)
);
INSERT INTO gpkg_spatial_ref_sys VALUES
  ('Undefined cartesian SRS', -1, 'NONE', -1, 'undefined', NULL),
  ('Undefined geographic SRS', 0, 'NONE', 0, 'undefined', NULL);
PRAGMA application_id = 1196444487;
PRAGMA user_version = 10300;
`

// Write creates a GeoPackage at path holding the layers. An existing
// file is replaced.
func Write(ctx context.Context, path string, layers ...*vector.Layer) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return OpenError(path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return OpenError(path, err)
	}
	defer db.Close()

	if _, err = db.ExecContext(ctx, metadataDDL); err != nil {
		return OpenError(path, err)
	}
	for _, l := range layers {
		if err = writeLayer(ctx, db, l); err != nil {
			return WriteError(path, l.Name, err)
		}
	}
	return nil
}

func writeLayer(ctx context.Context, db *sql.DB, l *vector.Layer) error {
	cols := l.Columns
	if len(cols) == 0 {
		cols = inferColumns(l)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err = addSRS(ctx, tx, l.CRS); err != nil {
		return err
	}

	defs := []string{"fid INTEGER PRIMARY KEY AUTOINCREMENT", geomColumn + " BLOB"}
	names := []string{geomColumn}
	for _, c := range cols {
		defs = append(defs, quote(c.Name)+" "+c.Type)
		names = append(names, quote(c.Name))
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quote(l.Name), strings.Join(defs, ", "))
	if _, err = tx.ExecContext(ctx, ddl); err != nil {
		return err
	}

	gtype := "GEOMETRY"
	if len(l.Features) > 0 && l.Features[0].Geometry != nil {
		gtype = geometryType(l.Features[0].Geometry)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO gpkg_geometry_columns VALUES (?, ?, ?, ?, 0, 0)`,
		l.Name, geomColumn, gtype, l.CRS)
	if err != nil {
		return err
	}
	var minX, minY, maxX, maxY any
	if b := l.Bounds(); b != nil {
		minX, minY, maxX, maxY = b.Min.X, b.Min.Y, b.Max.X, b.Max.Y
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO gpkg_contents
		 (table_name, data_type, identifier, min_x, min_y, max_x, max_y, srs_id)
		 VALUES (?, 'features', ?, ?, ?, ?, ?, ?)`,
		l.Name, l.Name, minX, minY, maxX, maxY, l.CRS)
	if err != nil {
		return err
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	ins := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(l.Name), strings.Join(names, ", "), marks)
	stmt, err := tx.PrepareContext(ctx, ins)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for _, f := range l.Features {
		args[0] = nil
		if f.Geometry != nil {
			blob, err := encodeGeom(f.Geometry, l.CRS)
			if err != nil {
				return err
			}
			args[0] = blob
		}
		for i, c := range cols {
			args[i+1] = f.Props[c.Name]
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func addSRS(ctx context.Context, tx *sql.Tx, code int) error {
	if code <= 0 {
		return nil
	}
	def, ok := proj4[code]
	if !ok {
		def = "undefined"
	}
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO gpkg_spatial_ref_sys VALUES (?, ?, 'EPSG', ?, ?, NULL)`,
		fmt.Sprintf("EPSG:%d", code), code, code, def)
	return err
}

// Layers returns names of feature tables in the GeoPackage.
func Layers(ctx context.Context, path string) ([]string, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx,
		`SELECT table_name FROM gpkg_geometry_columns ORDER BY table_name`)
	if err != nil {
		return nil, OpenError(path, err)
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, OpenError(path, err)
		}
		res = append(res, name)
	}
	return res, rows.Err()
}

// Read loads a layer. An empty name reads the first layer. When crs is
// not zero the layer is reprojected to it.
func Read(ctx context.Context, path, name string, crs int) (*vector.Layer, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT g.table_name, g.column_name, g.srs_id,
	        COALESCE(s.organization, ''), COALESCE(s.organization_coordsys_id, g.srs_id)
	      FROM gpkg_geometry_columns g
	      LEFT JOIN gpkg_spatial_ref_sys s ON s.srs_id = g.srs_id`
	args := []any{}
	if name != "" {
		q += ` WHERE g.table_name = ?`
		args = append(args, name)
	}
	q += ` ORDER BY g.table_name LIMIT 1`

	var table, gcol, org string
	var srs, code int
	err = db.QueryRowContext(ctx, q, args...).Scan(&table, &gcol, &srs, &org, &code)
	if err != nil {
		return nil, ReadError(path, name, err)
	}
	l := &vector.Layer{Name: table, CRS: srs}
	if strings.EqualFold(org, "EPSG") {
		l.CRS = code
	}

	if l.Columns, err = columns(ctx, db, table, gcol); err != nil {
		return nil, ReadError(path, table, err)
	}
	if err = readFeatures(ctx, db, l, gcol); err != nil {
		return nil, ReadError(path, table, err)
	}
	if crs != 0 {
		if err = Reproject(l, crs); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, OpenError(path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	return db, nil
}

func columns(ctx context.Context, db *sql.DB, table, gcol string) ([]vector.Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quote(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []vector.Column
	for rows.Next() {
		var cid, notNull, pk int
		var name, typ string
		var dflt sql.NullString
		if err = rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		if pk > 0 || strings.EqualFold(name, gcol) {
			continue
		}
		res = append(res, vector.Column{Name: name, Type: columnType(typ)})
	}
	return res, rows.Err()
}

func readFeatures(ctx context.Context, db *sql.DB, l *vector.Layer, gcol string) error {
	names := []string{quote(gcol)}
	for _, c := range l.Columns {
		names = append(names, quote(c.Name))
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), quote(l.Name))
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return err
		}
		f := vector.Feature{Props: make(map[string]any, len(l.Columns))}
		if blob, ok := vals[0].([]byte); ok {
			if f.Geometry, err = decodeGeom(blob); err != nil {
				return err
			}
		}
		for i, c := range l.Columns {
			switch v := vals[i+1].(type) {
			case nil:
			case []byte:
				f.Props[c.Name] = string(v)
			default:
				f.Props[c.Name] = v
			}
		}
		l.Features = append(l.Features, f)
	}
	return rows.Err()
}

func inferColumns(l *vector.Layer) []vector.Column {
	types := make(map[string]string)
	for _, f := range l.Features {
		for k, v := range f.Props {
			if _, ok := types[k]; ok {
				continue
			}
			switch v.(type) {
			case int, int32, int64:
				types[k] = "INTEGER"
			case float32, float64:
				types[k] = "REAL"
			default:
				types[k] = "TEXT"
			}
		}
	}
	res := make([]vector.Column, 0, len(types))
	for k, t := range types {
		res = append(res, vector.Column{Name: k, Type: t})
	}
	slices.SortFunc(res, func(a, b vector.Column) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return res
}

func columnType(typ string) string {
	t := strings.ToUpper(typ)
	switch {
	case strings.Contains(t, "INT"):
		return "INTEGER"
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"),
		strings.Contains(t, "DOUB"), strings.Contains(t, "NUMERIC"):
		return "REAL"
	default:
		return "TEXT"
	}
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
