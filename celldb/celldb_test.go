package celldb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cells.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE cellids (
		cellid TEXT PRIMARY KEY, address TEXT, latitude TEXT, longitude TEXT, azimuth TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO cellids VALUES
		('410-01-1234-5678', 'F-7 Markaz, Islamabad', '33.72', '73.05', '120'),
		('410069999', NULL, NULL, NULL, NULL)`)
	require.NoError(t, err)
	return path
}

func TestSite(t *testing.T) {
	db, err := Open(seed(t))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	s, err := db.Site(ctx, "410-01-1234-5678")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "F-7 Markaz, Islamabad", s.Address)
	assert.Equal(t, "120", s.Azimuth)

	s, err = db.Site(ctx, "4100112345678")
	require.NoError(t, err)
	require.NotNil(t, s, "dashless id matches")
	assert.Equal(t, "410-01-1234-5678", s.CellID)

	s, err = db.Site(ctx, "404-00-0000-0000")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestLookup(t *testing.T) {
	db, err := Open(seed(t))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	addr, ok := db.Lookup(ctx, " 410-01-1234-5678 ")
	assert.True(t, ok)
	assert.Equal(t, "F-7 Markaz, Islamabad", addr)

	_, ok = db.Lookup(ctx, "410069999")
	assert.False(t, ok, "null address is a miss")

	_, ok = db.Lookup(ctx, "")
	assert.False(t, ok)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}
