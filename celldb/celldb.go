// Package celldb resolves cell-site IDs to addresses from a read-only sqlite
// database with a `cellids` table.
package celldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Site is one row of the cellids table.
type Site struct {
	CellID    string
	Address   string
	Latitude  string
	Longitude string
	Azimuth   string
}

// DB wraps the sqlite handle. Safe for concurrent use.
type DB struct {
	db *sql.DB
}

// Open opens path read-only and checks the connection.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("celldb: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("celldb: open %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

const siteQuery = `
        SELECT cellid, address, latitude, longitude, azimuth
          FROM cellids
         WHERE cellid=? OR REPLACE(cellid,'-','')=?
         LIMIT 1`

// Site looks up one cell ID. IDs match with or without dashes.
// A missing row returns (nil, nil).
func (d *DB) Site(ctx context.Context, id string) (*Site, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	bare := strings.ReplaceAll(id, "-", "")

	var s Site
	var addr, lat, lon, az sql.NullString
	err := d.db.QueryRowContext(ctx, siteQuery, id, bare).Scan(&s.CellID, &addr, &lat, &lon, &az)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("celldb: lookup %s: %w", id, err)
	}
	s.Address, s.Latitude, s.Longitude, s.Azimuth = addr.String, lat.String, lon.String, az.String
	return &s, nil
}

// Lookup satisfies aggregate.AddressResolver. Errors are treated as misses.
func (d *DB) Lookup(ctx context.Context, id string) (string, bool) {
	s, err := d.Site(ctx, id)
	if err != nil || s == nil || strings.TrimSpace(s.Address) == "" {
		return "", false
	}
	return strings.TrimSpace(s.Address), true
}
